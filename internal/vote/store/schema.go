package store

import (
	"context"
	"database/sql"
	"fmt"
)

// CreateSchema creates the election tables. Safe to call repeatedly;
// statements use IF NOT EXISTS.
func CreateSchema(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

const schema = `
CREATE TABLE IF NOT EXISTS vote_record (
    student_id TEXT PRIMARY KEY,
    revision   INTEGER NOT NULL,
    state      TEXT NOT NULL DEFAULT 'available' CHECK (state IN ('available', 'used')),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS auth_code (
    code      TEXT PRIMARY KEY,
    kind      TEXT NOT NULL,
    issued    BOOLEAN NOT NULL DEFAULT FALSE,
    issued_at TIMESTAMPTZ
);

CREATE INDEX IF NOT EXISTS idx_auth_code_kind_available
    ON auth_code (kind) WHERE NOT issued;

CREATE TABLE IF NOT EXISTS department_entry (
    dpt_code TEXT PRIMARY KEY,
    kind     TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS override_entry (
    student_id TEXT PRIMARY KEY,
    kind       TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS station (
    id          UUID PRIMARY KEY,
    name        TEXT NOT NULL UNIQUE,
    secret_hash TEXT NOT NULL,
    registered_at TIMESTAMPTZ NOT NULL DEFAULT now(),
    last_seen   TIMESTAMPTZ
);

CREATE TABLE IF NOT EXISTS audit_event (
    id         BIGSERIAL PRIMARY KEY,
    station_id TEXT NOT NULL,
    student_id TEXT,
    action     TEXT NOT NULL,
    reason     TEXT,
    at         TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_audit_event_station ON audit_event (station_id);
`
