package cmd

import (
	"context"
	"fmt"

	"campus-match-backend/internal/config"
	"campus-match-backend/internal/repository"
	"campus-match-backend/internal/repository/memory"
	"campus-match-backend/internal/services"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// stores bundles the repositories behind the configured driver
type stores struct {
	users    services.UserStore
	likes    services.LikeStore
	matches  services.MatchStore
	messages services.MessageStore
	close    func()
}

func openStores(ctx context.Context, cfg *config.Config, migrate bool) (*stores, error) {
	if cfg.Storage.Driver == config.DriverMemory {
		log.Warn().Msg("Using in-memory storage, data is lost on restart")
		db := memory.NewDB()
		return &stores{
			users:    memory.NewUserRepository(db),
			likes:    memory.NewLikeRepository(db),
			matches:  memory.NewMatchRepository(db),
			messages: memory.NewMessageRepository(db),
			close:    func() {},
		}, nil
	}

	db, err := connectDatabase(ctx, cfg)
	if err != nil {
		return nil, err
	}

	if migrate {
		if err := repository.Migrate(ctx, db); err != nil {
			db.Close()
			return nil, err
		}
		log.Info().Msg("Database migrations applied")
	}

	return &stores{
		users:    repository.NewUserRepository(db),
		likes:    repository.NewLikeRepository(db),
		matches:  repository.NewMatchRepository(db),
		messages: repository.NewMessageRepository(db),
		close:    db.Close,
	}, nil
}

func connectDatabase(ctx context.Context, cfg *config.Config) (*pgxpool.Pool, error) {
	db, err := pgxpool.New(ctx, cfg.Database.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Test database connection
	if err := db.Ping(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	log.Info().Msg("Database connection established")

	return db, nil
}

func runMigrate(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	setupLogger(cfg.Log.Level)

	if cfg.Storage.Driver != config.DriverPostgres {
		return fmt.Errorf("migrations need the %q storage driver, got %q", config.DriverPostgres, cfg.Storage.Driver)
	}

	db, err := connectDatabase(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := repository.Migrate(cmd.Context(), db); err != nil {
		return err
	}

	log.Info().Msg("Database migrations applied")
	return nil
}
