// Command mindpilotctl is the operator CLI for MindPilot accounts.
package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"time"

	"github.com/DukeRupert/mindpilot/internal"
	"github.com/DukeRupert/mindpilot/internal/domain"
	"github.com/DukeRupert/mindpilot/internal/repository"
	"github.com/DukeRupert/mindpilot/internal/service"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
)

func main() {
	if err := newRootCmd(openApp).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// openApp connects to Postgres and builds the account services.
func openApp(ctx context.Context, opts globalOptions) (*app, error) {
	_ = godotenv.Load()

	dsn := opts.databaseURL
	if dsn == "" {
		dsn = os.Getenv("DATABASE_URL")
	}
	if dsn == "" {
		return nil, fmt.Errorf("DATABASE_URL or --database-url is required")
	}

	tz := opts.timezone
	if tz == "" {
		tz = os.Getenv("TIMEZONE")
	}
	loc := time.Local
	if tz != "" {
		var err error
		if loc, err = time.LoadLocation(tz); err != nil {
			return nil, fmt.Errorf("invalid timezone %q: %w", tz, err)
		}
	}

	logger := internal.NewLogger(os.Stderr, "development", os.Getenv("LOG_LEVEL"))

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("database ping failed: %w", err)
	}

	repo := repository.New(db)
	clock := domain.NewClock(loc)

	return &app{
		// Trials are only started by sign-in, never by the CLI.
		accounts: service.NewAccountService(repo, clock, 0, logger),
		status:   service.NewEntitlementService(repo, clock, logger),
		migrate: func(ctx context.Context, action string) error {
			switch action {
			case "up":
				return internal.RunMigrations(ctx, db)
			case "down":
				return internal.RollbackMigration(ctx, db)
			case "status":
				return internal.MigrationStatus(ctx, db)
			case "version":
				version, err := internal.MigrationVersion(ctx, db)
				if err != nil {
					return err
				}
				logger.Info("schema version", "version", version)
				return nil
			default:
				return fmt.Errorf("unknown action %q", action)
			}
		},
		logger: logger,
		close:  func() { _ = db.Close() },
	}, nil
}
