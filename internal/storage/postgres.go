package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"travelbot/internal/config"
	"travelbot/internal/logger"
	"travelbot/internal/scheduler"
)

// Connect opens the database connection, configures the pool, and verifies
// connectivity.
func Connect(cfg config.DatabaseConfig) (*sqlx.DB, error) {
	dsn := fmt.Sprintf(
		"user=%s password=%s host=%s port=%s dbname=%s sslmode=%s",
		cfg.User, cfg.Password, cfg.Host, cfg.Port, cfg.Name, cfg.SSLMode,
	)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	start := time.Now()
	db, err := sqlx.ConnectContext(ctx, "postgres", dsn)
	took := time.Since(start)
	if err != nil {
		logger.Error(ctx, "db", "db.connect",
			slog.String("host", cfg.Host),
			slog.String("db", cfg.Name),
			slog.String("err", err.Error()),
		)
		return nil, fmt.Errorf("db connect: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxConnections)
	db.SetMaxIdleConns(cfg.MaxConnections)

	logger.Info(ctx, "db", "db.connect",
		slog.String("host", cfg.Host),
		slog.String("db", cfg.Name),
		slog.Int("pool_open", cfg.MaxConnections),
		slog.Duration("duration", logger.RoundMS(took)),
	)
	return db, nil
}

// WaitForPostgres tries to connect to the DB until it is ready or timeout is
// reached.
func WaitForPostgres(dsn string, timeout time.Duration) error {
	start := time.Now()
	var lastErr error
	for {
		db, err := sql.Open("postgres", dsn)
		if err == nil {
			if err = db.Ping(); err == nil {
				_ = db.Close()
				return nil
			}
			_ = db.Close()
		}
		lastErr = err
		if time.Since(start) > timeout {
			return fmt.Errorf("timeout reached waiting for database: %w", lastErr)
		}
		time.Sleep(2 * time.Second)
	}
}

// PostgresTripLog appends trip records to the trips table.
type PostgresTripLog struct {
	db *sqlx.DB
}

// NewPostgresTripLog wraps the given connection pool.
func NewPostgresTripLog(db *sqlx.DB) *PostgresTripLog {
	return &PostgresTripLog{db: db}
}

// Append inserts one trip record.
func (l *PostgresTripLog) Append(ctx context.Context, rec TripRecord) error {
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	_, err := l.db.NamedExecContext(ctx,
		`INSERT INTO trips (chat_id, kind, description, created_at)
		 VALUES (:chat_id, :kind, :description, :created_at)`, rec)
	if err != nil {
		return fmt.Errorf("trip append: %w", err)
	}
	return nil
}

// PostgresJournal persists reminder entries in the reminders table.
type PostgresJournal struct {
	db *sqlx.DB
}

// NewPostgresJournal wraps the given connection pool.
func NewPostgresJournal(db *sqlx.DB) *PostgresJournal {
	return &PostgresJournal{db: db}
}

// Insert stores a new reminder entry.
func (j *PostgresJournal) Insert(ctx context.Context, rem scheduler.Reminder) error {
	_, err := j.db.NamedExecContext(ctx,
		`INSERT INTO reminders (id, chat_id, message, fire_at, status, created_at)
		 VALUES (:id, :chat_id, :message, :fire_at, :status, :created_at)`, rem)
	if err != nil {
		return fmt.Errorf("reminder insert: %w", err)
	}
	return nil
}

// UpdateStatus moves an entry to a terminal status.
func (j *PostgresJournal) UpdateStatus(ctx context.Context, id string, status scheduler.Status) error {
	_, err := j.db.ExecContext(ctx,
		`UPDATE reminders SET status = $1 WHERE id = $2`, string(status), id)
	if err != nil {
		return fmt.Errorf("reminder status update: %w", err)
	}
	return nil
}

// ListScheduled returns entries that were never fired or cancelled.
func (j *PostgresJournal) ListScheduled(ctx context.Context) ([]scheduler.Reminder, error) {
	var rems []scheduler.Reminder
	err := j.db.SelectContext(ctx, &rems,
		`SELECT id, chat_id, message, fire_at, status, created_at
		 FROM reminders WHERE status = $1 ORDER BY fire_at`, string(scheduler.StatusScheduled))
	if err != nil {
		return nil, fmt.Errorf("reminder list: %w", err)
	}
	return rems, nil
}
