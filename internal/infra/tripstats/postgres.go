package tripstats

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// PostgresHistory reads trips completed before bookings moved to this service.
type PostgresHistory struct {
	db *sql.DB
}

func NewPostgresHistory(ctx context.Context, dsn string) (*PostgresHistory, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres connection: %w", err)
	}
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	h := &PostgresHistory{db: db}
	if err := h.ensureSchema(pingCtx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return h, nil
}

func (h *PostgresHistory) ensureSchema(ctx context.Context) error {
	_, err := h.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS legacy_trips (
			guest_id     TEXT PRIMARY KEY,
			trips        INTEGER NOT NULL DEFAULT 0 CHECK (trips >= 0),
			imported_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`)
	if err != nil {
		return fmt.Errorf("ensure legacy_trips schema: %w", err)
	}
	return nil
}

func (h *PostgresHistory) CompletedTrips(ctx context.Context, guestID string) (int, error) {
	var trips int
	err := h.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(trips), 0) FROM legacy_trips WHERE guest_id = $1`, guestID).Scan(&trips)
	if err != nil {
		return 0, fmt.Errorf("query legacy trips: %w", err)
	}
	return trips, nil
}

func (h *PostgresHistory) Ping(ctx context.Context) error {
	return h.db.PingContext(ctx)
}

func (h *PostgresHistory) Close() error {
	return h.db.Close()
}
