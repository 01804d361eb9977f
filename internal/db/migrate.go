package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// The partial unique index is what makes "insert if the slot is free" a
// single atomic step: two concurrent inserts for the same active slot
// cannot both commit.
const schema = `
CREATE TABLE IF NOT EXISTS appointments (
    id                UUID PRIMARY KEY,
    name              TEXT NOT NULL,
    email             TEXT NOT NULL,
    phone             TEXT,
    message           TEXT,
    slot_date         DATE NOT NULL,
    slot_time         TEXT NOT NULL,
    status            TEXT NOT NULL DEFAULT 'pending'
                      CHECK (status IN ('pending', 'validated', 'rejected')),
    created_at        TIMESTAMPTZ NOT NULL DEFAULT now(),
    status_changed_at TIMESTAMPTZ
);

CREATE UNIQUE INDEX IF NOT EXISTS uq_active_slot
    ON appointments (slot_date, slot_time)
    WHERE status IN ('pending', 'validated');

CREATE INDEX IF NOT EXISTS ix_appointments_status_created
    ON appointments (status, created_at DESC);
`

// Migrate creates the appointments schema if it does not exist yet.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}
