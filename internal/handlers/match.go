package handlers

import (
	"context"
	"net/http"
	"time"

	"campus-match-backend/internal/middleware"
	"campus-match-backend/internal/models"
	"campus-match-backend/internal/services"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

const pushTimeout = 10 * time.Second

// MatchHandler handles candidate and match HTTP requests
type MatchHandler struct {
	matchService *services.MatchService
	candidates   *services.CandidateSelector
	userService  *services.UserService
	wsHub        *services.WSHub
	notifier     services.Notifier
}

// NewMatchHandler creates a new match handler
func NewMatchHandler(
	matchService *services.MatchService,
	candidates *services.CandidateSelector,
	userService *services.UserService,
	wsHub *services.WSHub,
	notifier services.Notifier,
) *MatchHandler {
	if notifier == nil {
		notifier = services.NoopNotifier{}
	}
	return &MatchHandler{
		matchService: matchService,
		candidates:   candidates,
		userService:  userService,
		wsHub:        wsHub,
		notifier:     notifier,
	}
}

// LikeRequest represents the request body for a like
type LikeRequest struct {
	TargetUserID string `json:"targetUserId"`
}

// MatchTarget is the slice of the target's profile shown with a new match
type MatchTarget struct {
	ID         string `json:"id"`
	FullName   string `json:"fullName"`
	ProfilePic string `json:"profilePic"`
}

// MatchFormedResponse is returned when a like completes a match
type MatchFormedResponse struct {
	Message    string        `json:"message"`
	Match      *models.Match `json:"match"`
	TargetUser MatchTarget   `json:"targetUser"`
}

// GetPotentialMatches handles GET /api/matches/potential
func (h *MatchHandler) GetPotentialMatches(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	candidates, err := h.candidates.PotentialMatches(r.Context(), userID)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("Failed to get potential matches")
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, candidates)
}

// Like handles POST /api/matches/like
func (h *MatchHandler) Like(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	var req LikeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	outcome, err := h.matchService.Like(ctx, userID, req.TargetUserID)
	if err != nil {
		logServiceError(err).
			Str("user_id", userID).
			Str("target_id", req.TargetUserID).
			Msg("Like not registered")
		respondServiceError(w, err)
		return
	}

	if outcome.Result != services.MatchFormed {
		log.Debug().
			Str("user_id", userID).
			Str("target_id", req.TargetUserID).
			Msg("Like registered")
		respondJSON(w, http.StatusOK, MessageResponse{Message: "Like registered successfully"})
		return
	}

	log.Info().
		Str("user_id", userID).
		Str("target_id", req.TargetUserID).
		Str("match_id", outcome.Match.ID).
		Msg("Match formed")

	// only the request that wrote the ledger record announces it
	if outcome.Created {
		h.announceMatch(ctx, userID, outcome)
	}

	respondJSON(w, http.StatusOK, MatchFormedResponse{
		Message: "It's a match!",
		Match:   outcome.Match,
		TargetUser: MatchTarget{
			ID:         outcome.Target.ID,
			FullName:   outcome.Target.FullName,
			ProfilePic: outcome.Target.ProfilePic,
		},
	})
}

// announceMatch tells both members over WebSocket and pushes to the target.
// Failures here never undo the match.
func (h *MatchHandler) announceMatch(ctx context.Context, userID string, outcome *services.LikeOutcome) {
	targetID := outcome.Target.ID

	actor, err := h.userService.GetUser(ctx, userID)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("Failed to load user for match notification")
		return
	}

	if h.wsHub.IsOnline(userID) {
		if err := h.wsHub.NotifyMatchCreated(userID, outcome.Match, *outcome.Target); err != nil {
			log.Error().Err(err).Str("user_id", userID).Msg("Failed to notify user about match")
		}
	}
	if h.wsHub.IsOnline(targetID) {
		if err := h.wsHub.NotifyMatchCreated(targetID, outcome.Match, actor.Public()); err != nil {
			log.Error().Err(err).Str("target_id", targetID).Msg("Failed to notify target about match")
		}
	}

	go func(partner models.PublicProfile) {
		pushCtx, cancel := context.WithTimeout(context.Background(), pushTimeout)
		defer cancel()

		target, err := h.userService.GetUser(pushCtx, targetID)
		if err != nil {
			log.Error().Err(err).Str("target_id", targetID).Msg("Failed to load target for push")
			return
		}
		if err := h.notifier.NotifyMatch(pushCtx, target, partner); err != nil {
			log.Error().Err(err).Str("target_id", targetID).Msg("Failed to push match notification")
		}
	}(actor.Public())
}

// GetMatches handles GET /api/matches
func (h *MatchHandler) GetMatches(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	users, err := h.matchService.ListMatches(r.Context(), userID)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("Failed to get matches")
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, users)
}

// Unmatch handles DELETE /api/matches/{match_id}
func (h *MatchHandler) Unmatch(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	matchID := chi.URLParam(r, "match_id")

	match, err := h.matchService.Unmatch(r.Context(), userID, matchID)
	if err != nil {
		log.Error().
			Err(err).
			Str("user_id", userID).
			Str("match_id", matchID).
			Msg("Failed to unmatch")
		respondServiceError(w, err)
		return
	}

	log.Info().
		Str("user_id", userID).
		Str("match_id", matchID).
		Msg("Match removed")

	partnerID := match.PartnerOf(userID)
	if h.wsHub.IsOnline(partnerID) {
		if err := h.wsHub.NotifyMatchRemoved(partnerID, match.ID); err != nil {
			log.Error().Err(err).Str("partner_id", partnerID).Msg("Failed to notify partner about unmatch")
		}
	}

	respondJSON(w, http.StatusOK, match)
}
