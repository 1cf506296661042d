package services

import (
	"context"
	"errors"
	"time"

	"campus-match-backend/internal/metrics"
	"campus-match-backend/internal/models"
	"campus-match-backend/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// LikeResult is the kind of outcome of a successful like
type LikeResult string

const (
	LikeRecorded LikeResult = "like_recorded"
	MatchFormed  LikeResult = "match_formed"
)

// LikeOutcome is returned by MatchService.Like. Match and Target are set only
// when Result is MatchFormed. Created is true for the one request that wrote
// the ledger record; only that request announces the match.
type LikeOutcome struct {
	Result  LikeResult
	Match   *models.Match
	Target  *models.PublicProfile
	Created bool
}

// MatchService is the match engine. It turns unilateral likes into matches.
type MatchService struct {
	users   UserStore
	likes   LikeStore
	matches MatchStore
	locker  *PairLocker
	now     func() time.Time
	newID   func() string
}

// NewMatchService creates a new match service
func NewMatchService(users UserStore, likes LikeStore, matches MatchStore) *MatchService {
	return &MatchService{
		users:   users,
		likes:   likes,
		matches: matches,
		locker:  NewPairLocker(),
		now:     time.Now,
		newID:   func() string { return uuid.New().String() },
	}
}

// Like records that actorID is interested in targetID and forms a match when
// targetID already liked actorID.
//
// The like is committed before reciprocity is checked. The check and the match
// creation run under a lock on the pair and the ledger rejects a second record
// for the same pair, so concurrent reciprocal likes produce exactly one match.
func (s *MatchService) Like(ctx context.Context, actorID, targetID string) (*LikeOutcome, error) {
	outcome, err := s.like(ctx, actorID, targetID)
	switch {
	case err == nil && outcome.Result == MatchFormed:
		metrics.LikesTotal.WithLabelValues(metrics.OutcomeMatched).Inc()
	case err == nil:
		metrics.LikesTotal.WithLabelValues(metrics.OutcomeRecorded).Inc()
	case errors.Is(err, ErrAlreadyLiked):
		metrics.LikesTotal.WithLabelValues(metrics.OutcomeAlreadyLiked).Inc()
	default:
		metrics.LikesTotal.WithLabelValues(metrics.OutcomeFailed).Inc()
	}
	return outcome, err
}

func (s *MatchService) like(ctx context.Context, actorID, targetID string) (*LikeOutcome, error) {
	if targetID == "" {
		return nil, invalidArgument("Target user ID is required")
	}
	if targetID == actorID {
		return nil, invalidArgument("Cannot match with yourself")
	}

	var actor, target *models.User
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		u, err := s.users.GetByID(gctx, actorID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return notFound("User not found")
			}
			return unavailable("failed to get user", err)
		}
		actor = u
		return nil
	})
	g.Go(func() error {
		u, err := s.users.GetByID(gctx, targetID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return notFound("Target user not found")
			}
			return unavailable("failed to get target user", err)
		}
		target = u
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if actor.HasLiked(target.ID) {
		return s.resume(ctx, actor, target)
	}

	added, err := s.likes.Add(ctx, actor.ID, target.ID)
	if err != nil {
		return nil, unavailable("failed to record like", err)
	}
	if !added {
		// a concurrent request from the same actor won the insert
		return s.resume(ctx, actor, target)
	}

	return s.settle(ctx, actor, target)
}

// settle checks reciprocity for a freshly recorded like
func (s *MatchService) settle(ctx context.Context, actor, target *models.User) (*LikeOutcome, error) {
	unlock := s.locker.Lock(actor.ID, target.ID)
	defer unlock()

	reciprocal, err := s.likes.Exists(ctx, target.ID, actor.ID)
	if err != nil {
		return nil, unavailable("failed to check reciprocity", err)
	}
	if !reciprocal {
		return &LikeOutcome{Result: LikeRecorded}, nil
	}

	match, created, err := s.formMatch(ctx, actor.ID, target.ID)
	if err != nil {
		return nil, err
	}
	if match.Status != models.MatchStatusMatched {
		return &LikeOutcome{Result: LikeRecorded}, nil
	}

	return matchFormed(match, target, created), nil
}

// resume handles a like that already exists. It completes a match left
// unfinished by an earlier failed request, otherwise reports AlreadyLiked.
func (s *MatchService) resume(ctx context.Context, actor, target *models.User) (*LikeOutcome, error) {
	unlock := s.locker.Lock(actor.ID, target.ID)
	defer unlock()

	reciprocal, err := s.likes.Exists(ctx, target.ID, actor.ID)
	if err != nil {
		return nil, unavailable("failed to check reciprocity", err)
	}
	if !reciprocal {
		return nil, alreadyLiked()
	}

	_, err = s.matches.GetByPair(ctx, actor.ID, target.ID)
	if err == nil {
		return nil, alreadyLiked()
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, unavailable("failed to get match", err)
	}

	match, created, err := s.formMatch(ctx, actor.ID, target.ID)
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("user_id", actor.ID).
		Str("target_id", target.ID).
		Str("match_id", match.ID).
		Msg("Completed interrupted match")

	return matchFormed(match, target, created), nil
}

// formMatch returns the ledger record of the pair, creating it when missing.
// created reports whether this call wrote the record. The caller must hold the
// pair lock.
func (s *MatchService) formMatch(ctx context.Context, a, b string) (match *models.Match, created bool, err error) {
	existing, err := s.matches.GetByPair(ctx, a, b)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, false, unavailable("failed to get match", err)
	}

	match, err = models.NewMatch(s.newID(), a, b, s.now())
	if err != nil {
		return nil, false, invariant("failed to build match", err)
	}

	if err := s.matches.Create(ctx, match); err != nil {
		if !errors.Is(err, repository.ErrDuplicate) {
			return nil, false, unavailable("failed to create match", err)
		}
		// another process created the record first
		existing, err := s.matches.GetByPair(ctx, a, b)
		if err != nil {
			return nil, false, unavailable("failed to get match", err)
		}
		return existing, false, nil
	}

	metrics.MatchesFormed.Inc()
	return match, true, nil
}

func matchFormed(match *models.Match, target *models.User, created bool) *LikeOutcome {
	profile := target.Public()
	return &LikeOutcome{
		Result:  MatchFormed,
		Match:   match,
		Target:  &profile,
		Created: created,
	}
}

// ListMatches returns the full records of the users matched with userID
func (s *MatchService) ListMatches(ctx context.Context, userID string) ([]*models.User, error) {
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, notFound("User not found")
		}
		return nil, unavailable("failed to get user", err)
	}

	users, err := s.users.ListMatchedWith(ctx, userID)
	if err != nil {
		return nil, unavailable("failed to list matches", err)
	}
	if users == nil {
		users = []*models.User{}
	}
	return users, nil
}

// GetMatch returns a match record visible to userID
func (s *MatchService) GetMatch(ctx context.Context, userID, matchID string) (*models.Match, error) {
	match, err := s.matches.GetByID(ctx, matchID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, notFound("Match not found")
		}
		return nil, unavailable("failed to get match", err)
	}
	if !match.HasMember(userID) {
		return nil, forbidden("User is not a member of this match")
	}
	return match, nil
}

// Unmatch moves a match to rejected. Likes stand, so the pair cannot re-match
// and stays out of each other's candidates.
func (s *MatchService) Unmatch(ctx context.Context, userID, matchID string) (*models.Match, error) {
	match, err := s.GetMatch(ctx, userID, matchID)
	if err != nil {
		return nil, err
	}

	unlock := s.locker.Lock(match.UserAID, match.UserBID)
	defer unlock()

	if match.Status != models.MatchStatusMatched {
		return nil, conflict("Match already removed")
	}

	at := s.now()
	err = s.matches.UpdateStatus(ctx, match.ID, models.MatchStatusMatched, models.MatchStatusRejected, at)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, conflict("Match already removed")
		}
		return nil, unavailable("failed to update match", err)
	}

	metrics.Unmatches.Inc()
	match.Status = models.MatchStatusRejected
	match.UpdatedAt = at
	return match, nil
}

// ActiveMatch returns the record of a and b when they are currently matched.
// It fails with Forbidden otherwise.
func (s *MatchService) ActiveMatch(ctx context.Context, a, b string) (*models.Match, error) {
	if a == b {
		return nil, forbidden("You can only message your matches")
	}
	match, err := s.matches.GetByPair(ctx, a, b)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, forbidden("You can only message your matches")
		}
		return nil, unavailable("failed to get match", err)
	}
	if match.Status != models.MatchStatusMatched {
		return nil, forbidden("You can only message your matches")
	}
	return match, nil
}

// OpenChatRoom returns the chat room of a match, attaching a new one to the
// record the first time it is needed.
func (s *MatchService) OpenChatRoom(ctx context.Context, match *models.Match) (string, error) {
	if match.ChatRoomID != nil {
		return *match.ChatRoomID, nil
	}

	room, err := s.matches.AttachChatRoom(ctx, match.ID, s.newID(), s.now())
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", notFound("Match not found")
		}
		return "", unavailable("failed to attach chat room", err)
	}
	match.ChatRoomID = &room
	return room, nil
}
