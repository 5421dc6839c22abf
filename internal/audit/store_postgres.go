package audit

import (
	"context"
	"database/sql"
	"fmt"

	id "voteauth/pkg/domain"
)

// PostgresStore persists the audit trail in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore constructs a PostgreSQL-backed audit store.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Append(ctx context.Context, event Event) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO audit_event (station_id, student_id, action, reason, at)
		 VALUES ($1, NULLIF($2, ''), $3, NULLIF($4, ''), $5)`,
		event.StationID, event.StudentID.String(), string(event.Action), event.Reason, event.At,
	)
	if err != nil {
		return fmt.Errorf("append audit event: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListByStation(ctx context.Context, stationID string) ([]Event, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT station_id, COALESCE(student_id, ''), action, COALESCE(reason, ''), at
		 FROM audit_event WHERE station_id = $1 ORDER BY at, id`,
		stationID,
	)
	if err != nil {
		return nil, fmt.Errorf("list audit events: %w", err)
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		var (
			e       Event
			student string
			action  string
		)
		if err := rows.Scan(&e.StationID, &student, &action, &e.Reason, &e.At); err != nil {
			return nil, fmt.Errorf("scan audit event: %w", err)
		}
		e.StudentID = id.StudentID(student)
		e.Action = Action(action)
		events = append(events, e)
	}
	return events, rows.Err()
}
