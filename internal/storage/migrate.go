package storage

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"

	"travelbot/internal/config"
	"travelbot/internal/logger"
)

// RunMigrations applies all up migrations from the migrations directory.
func RunMigrations(cfg config.DatabaseConfig) error {
	ctx := context.Background()
	dsn := fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		cfg.User, cfg.Password, cfg.Host, cfg.Port, cfg.Name, cfg.SSLMode,
	)
	if err := WaitForPostgres(dsn, 30*time.Second); err != nil {
		logger.Error(ctx, "db.migrate", "db.not_ready", slog.String("err", err.Error()))
		return fmt.Errorf("database not ready: %w", err)
	}

	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("get working directory: %w", err)
	}
	sourceURL := "file://" + filepath.Join(cwd, "migrations")

	m, err := migrate.New(sourceURL, dsn)
	if err != nil {
		logger.Error(ctx, "db.migrate", "init.failed", slog.String("err", err.Error()))
		return fmt.Errorf("failed to initialize migrations: %w", err)
	}

	start := time.Now()
	upErr := m.Up()
	took := time.Since(start)

	switch upErr {
	case nil, migrate.ErrNoChange:
	default:
		logger.Error(ctx, "db.migrate", "apply.failed",
			slog.String("err", upErr.Error()),
			slog.Duration("duration", logger.RoundMS(took)),
		)
		return fmt.Errorf("migration execution failed: %w", upErr)
	}

	ver, _, _ := m.Version()
	logger.Info(ctx, "db.migrate", "summary",
		slog.Uint64("version", uint64(ver)),
		slog.Bool("changed", upErr == nil),
		slog.Duration("duration", logger.RoundMS(took)),
	)
	return nil
}
