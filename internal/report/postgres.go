package report

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mattroach1111-glitch/BuildMate-MJR-sub003/internal/notify"
)

// Postgres persists delivery outcomes and their per-channel attempt trails.
type Postgres struct {
	pool *pgxpool.Pool
}

// NewPostgres connects to the database, verifies the connection and ensures
// the outcome tables exist.
func NewPostgres(ctx context.Context, dsn string) (*Postgres, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	p := &Postgres{pool: pool}
	if err := p.migrate(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return p, nil
}

func (p *Postgres) migrate(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS notification_deliveries (
		id UUID PRIMARY KEY,
		recipient_email TEXT NOT NULL,
		succeeded BOOLEAN NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	);
	CREATE TABLE IF NOT EXISTS notification_attempts (
		id UUID PRIMARY KEY,
		delivery_id UUID NOT NULL REFERENCES notification_deliveries(id) ON DELETE CASCADE,
		channel TEXT NOT NULL,
		target TEXT NOT NULL,
		outcome TEXT NOT NULL,
		reason TEXT NOT NULL DEFAULT '',
		attempted_at TIMESTAMPTZ NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_notification_attempts_delivery
		ON notification_attempts(delivery_id);
	`
	if _, err := p.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("migrate outcome tables: %w", err)
	}
	return nil
}

// Report stores the delivery row and one row per channel attempt.
func (p *Postgres) Report(ctx context.Context, r notify.RecipientProfile, res notify.Result) error {
	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin outcome tx: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx,
		`INSERT INTO notification_deliveries (id, recipient_email, succeeded) VALUES ($1, $2, $3)`,
		res.ID, r.Email, res.Succeeded)
	if err != nil {
		return fmt.Errorf("insert delivery %s: %w", res.ID, err)
	}

	for _, a := range res.Attempts {
		_, err = tx.Exec(ctx,
			`INSERT INTO notification_attempts (id, delivery_id, channel, target, outcome, reason, attempted_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			a.ID, res.ID, string(a.Channel), a.Target, string(a.Outcome), a.Reason, a.AttemptedAt)
		if err != nil {
			return fmt.Errorf("insert attempt %s: %w", a.ID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit outcome tx: %w", err)
	}
	return nil
}

// Close releases the connection pool.
func (p *Postgres) Close() {
	p.pool.Close()
}
