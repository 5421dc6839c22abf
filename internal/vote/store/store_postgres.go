package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"voteauth/internal/vote/models"
	id "voteauth/pkg/domain"
	"voteauth/pkg/platform/sentinel"
)

// PostgresRecordStore persists voter records in PostgreSQL.
type PostgresRecordStore struct {
	db *sql.DB
}

// NewPostgresRecordStore constructs a PostgreSQL-backed record store.
func NewPostgresRecordStore(db *sql.DB) *PostgresRecordStore {
	return &PostgresRecordStore{db: db}
}

func (s *PostgresRecordStore) Get(ctx context.Context, studentID id.StudentID) (*models.Record, error) {
	return scanRecord(s.db.QueryRowContext(ctx,
		`SELECT student_id, revision, state, updated_at FROM vote_record WHERE student_id = $1`,
		studentID.String(),
	), studentID)
}

func (s *PostgresRecordStore) GetOrInitialize(ctx context.Context, studentID id.StudentID, revision id.Revision) (*models.Record, error) {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO vote_record (student_id, revision, state, updated_at)
		 VALUES ($1, $2, $3, now())
		 ON CONFLICT (student_id) DO NOTHING`,
		studentID.String(), int(revision), string(models.RecordAvailable),
	)
	if err != nil {
		return nil, fmt.Errorf("initialize record: %w", err)
	}
	return s.Get(ctx, studentID)
}

func (s *PostgresRecordStore) Check(ctx context.Context, studentID id.StudentID, revision id.Revision) error {
	record, err := s.Get(ctx, studentID)
	if err != nil {
		return err
	}
	return record.CheckPresented(revision)
}

func scanRecord(row *sql.Row, studentID id.StudentID) (*models.Record, error) {
	var (
		rawID    string
		revision int
		state    string
		updated  time.Time
	)
	if err := row.Scan(&rawID, &revision, &state, &updated); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("record %s: %w", studentID, sentinel.ErrNotFound)
		}
		return nil, fmt.Errorf("find record: %w", err)
	}
	return &models.Record{
		StudentID: id.StudentID(rawID),
		Revision:  id.Revision(revision),
		State:     models.RecordState(state),
		UpdatedAt: updated,
	}, nil
}

// PostgresCodeStore persists the authorization code pools.
type PostgresCodeStore struct {
	db *sql.DB
}

// NewPostgresCodeStore constructs a PostgreSQL-backed code store.
func NewPostgresCodeStore(db *sql.DB) *PostgresCodeStore {
	return &PostgresCodeStore{db: db}
}

func (s *PostgresCodeStore) Add(ctx context.Context, codes []models.AuthCode) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin provision: %w", err)
	}
	defer tx.Rollback()

	for _, c := range codes {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO auth_code (code, kind, issued) VALUES ($1, $2, FALSE)`,
			c.Code, c.Kind.String(),
		); err != nil {
			return fmt.Errorf("provision code: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit provision: %w", err)
	}
	return nil
}

func (s *PostgresCodeStore) CountAvailable(ctx context.Context, kind id.KindCode) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM auth_code WHERE kind = $1 AND NOT issued`,
		kind.String(),
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count available: %w", err)
	}
	return n, nil
}

// PostgresIssuer runs the issuance step as one SQL transaction. Row
// locks scope contention exactly as the contract requires: the voter's
// record row plus one code row of the kind, claimed with SKIP LOCKED so
// concurrent claims against the same pool never deadlock or double
// issue.
type PostgresIssuer struct {
	db *sql.DB
}

// NewPostgresIssuer constructs a PostgreSQL-backed issuer.
func NewPostgresIssuer(db *sql.DB) *PostgresIssuer {
	return &PostgresIssuer{db: db}
}

func (i *PostgresIssuer) Issue(ctx context.Context, studentID id.StudentID, revision id.Revision, kind id.KindCode, now time.Time) (*models.AuthCode, error) {
	tx, err := i.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin issue: %w", err)
	}
	defer tx.Rollback()

	// Materialize the record row first so two first-time requests for
	// the same voter serialize on the row lock below instead of both
	// claiming codes.
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO vote_record (student_id, revision, state, updated_at)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (student_id) DO NOTHING`,
		studentID.String(), int(revision), string(models.RecordAvailable), now,
	); err != nil {
		return nil, fmt.Errorf("initialize record: %w", err)
	}

	var (
		storedRevision int
		storedState    string
	)
	if err := tx.QueryRowContext(ctx,
		`SELECT revision, state FROM vote_record WHERE student_id = $1 FOR UPDATE`,
		studentID.String(),
	).Scan(&storedRevision, &storedState); err != nil {
		return nil, fmt.Errorf("lock record: %w", err)
	}
	if id.Revision(storedRevision) != revision {
		return nil, fmt.Errorf("record %s: %w", studentID, sentinel.ErrRevisionMismatch)
	}
	if models.RecordState(storedState) != models.RecordAvailable {
		return nil, fmt.Errorf("record %s: %w", studentID, sentinel.ErrAlreadyUsed)
	}

	var code string
	err = tx.QueryRowContext(ctx,
		`UPDATE auth_code SET issued = TRUE, issued_at = $2
		 WHERE code = (
		 	SELECT code FROM auth_code
		 	WHERE kind = $1 AND NOT issued
		 	LIMIT 1
		 	FOR UPDATE SKIP LOCKED
		 )
		 RETURNING code`,
		kind.String(), now,
	).Scan(&code)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// The rollback also discards the lazily created record, so
			// the voter can retry once more codes are provisioned.
			return nil, fmt.Errorf("kind %s: %w", kind, sentinel.ErrExhausted)
		}
		return nil, fmt.Errorf("claim code: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE vote_record SET state = $2, updated_at = $3 WHERE student_id = $1`,
		studentID.String(), string(models.RecordUsed), now,
	); err != nil {
		return nil, fmt.Errorf("consume record: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit issue: %w", err)
	}
	return &models.AuthCode{Code: code, Kind: kind, Issued: true, IssuedAt: now}, nil
}
