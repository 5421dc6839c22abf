package station

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"voteauth/pkg/platform/sentinel"
)

// PostgresStore persists stations in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore constructs a PostgreSQL-backed station store.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const uniqueViolation = "23505"

func (s *PostgresStore) Create(ctx context.Context, st *Station) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO station (id, name, secret_hash, registered_at) VALUES ($1, $2, $3, $4)`,
		st.ID, st.Name, st.SecretHash, st.RegisteredAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return fmt.Errorf("station %s: %w", st.Name, sentinel.ErrConflict)
		}
		return fmt.Errorf("create station: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, id uuid.UUID) (*Station, error) {
	return scanStation(s.db.QueryRowContext(ctx,
		`SELECT id, name, secret_hash, registered_at, COALESCE(last_seen, 'epoch'::timestamptz)
		 FROM station WHERE id = $1`, id))
}

func (s *PostgresStore) FindByName(ctx context.Context, name string) (*Station, error) {
	return scanStation(s.db.QueryRowContext(ctx,
		`SELECT id, name, secret_hash, registered_at, COALESCE(last_seen, 'epoch'::timestamptz)
		 FROM station WHERE name = $1`, name))
}

func (s *PostgresStore) Touch(ctx context.Context, id uuid.UUID, seen time.Time) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE station SET last_seen = $2 WHERE id = $1`, id, seen)
	if err != nil {
		return fmt.Errorf("touch station: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("touch station: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("station %s: %w", id, sentinel.ErrNotFound)
	}
	return nil
}

func scanStation(row *sql.Row) (*Station, error) {
	var st Station
	if err := row.Scan(&st.ID, &st.Name, &st.SecretHash, &st.RegisteredAt, &st.LastSeen); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("station: %w", sentinel.ErrNotFound)
		}
		return nil, fmt.Errorf("find station: %w", err)
	}
	return &st, nil
}
