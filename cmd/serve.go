package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"campus-match-backend/internal/config"
	"campus-match-backend/internal/handlers"
	"campus-match-backend/internal/services"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func runServe(cmd *cobra.Command, args []string) error {
	// Load configuration
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Setup logger
	setupLogger(cfg.Log.Level)

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize repositories
	st, err := openStores(ctx, cfg, !skipMigrate)
	if err != nil {
		return err
	}
	defer st.close()

	// Initialize services
	userService := services.NewUserService(st.users, cfg.JWT.Secret, time.Duration(cfg.JWT.TTLHours)*time.Hour)
	matchService := services.NewMatchService(st.users, st.likes, st.matches)
	messageService := services.NewMessageService(st.users, matchService, st.messages)
	candidates := services.NewCandidateSelector(st.users)
	wsHub := services.NewWSHub()

	var pictures handlers.PictureUploader
	if cfg.AWS.S3Bucket != "" {
		pictureService, err := services.NewPictureService(ctx, services.PictureConfig{
			Region:        cfg.AWS.Region,
			Bucket:        cfg.AWS.S3Bucket,
			AccessKey:     cfg.AWS.AccessKey,
			SecretKey:     cfg.AWS.SecretKey,
			Endpoint:      cfg.AWS.Endpoint,
			PublicBaseURL: cfg.AWS.PublicBaseURL,
		})
		if err != nil {
			return fmt.Errorf("failed to create picture service: %w", err)
		}
		pictures = pictureService
	} else {
		log.Warn().Msg("No S3 bucket configured, picture uploads are disabled")
	}

	notifier, err := newNotifier(cfg.APNs)
	if err != nil {
		return err
	}

	router := handlers.NewRouter(handlers.RouterConfig{
		UserService:    userService,
		MatchService:   matchService,
		MessageService: messageService,
		Candidates:     candidates,
		Pictures:       pictures,
		Hub:            wsHub,
		Notifier:       notifier,
		AllowedOrigins: cfg.Server.AllowedOrigins,
	})

	// Create HTTP server
	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info().
			Str("host", cfg.Server.Host).
			Int("port", cfg.Server.Port).
			Str("storage", cfg.Storage.Driver).
			Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serveErr <- err
		}
		close(serveErr)
	}()

	// Wait for interrupt signal for graceful shutdown
	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("server failed to start: %w", err)
		}
	case <-ctx.Done():
	}

	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	// Hijacked WebSocket connections are not tracked by Shutdown; they close with the process
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
	return nil
}

func newNotifier(cfg config.APNsConfig) (services.Notifier, error) {
	if !cfg.Enabled {
		return services.NoopNotifier{}, nil
	}

	notifier, err := services.NewAPNsNotifier(services.APNsConfig{
		KeyPath:    cfg.KeyPath,
		KeyID:      cfg.KeyID,
		TeamID:     cfg.TeamID,
		Topic:      cfg.Topic,
		Production: cfg.Production,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create APNs notifier: %w", err)
	}

	log.Info().Str("topic", cfg.Topic).Bool("production", cfg.Production).Msg("APNs push enabled")
	return notifier, nil
}
