package entry

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	id "voteauth/pkg/domain"
	"voteauth/pkg/platform/sentinel"
)

// PostgresStore reads the reference tables from PostgreSQL. Rows are
// provisioned by the election admin tooling before the event opens.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed reference table store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) KindByDepartment(ctx context.Context, departmentCode string) (id.KindCode, error) {
	var kind string
	err := s.db.QueryRowContext(ctx,
		`SELECT kind FROM department_entry WHERE dpt_code = $1`,
		departmentCode,
	).Scan(&kind)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", fmt.Errorf("department %s: %w", departmentCode, sentinel.ErrNotFound)
		}
		return "", fmt.Errorf("find department entry: %w", err)
	}
	return id.KindCode(kind), nil
}

func (s *PostgresStore) KindByStudent(ctx context.Context, studentID id.StudentID) (id.KindCode, error) {
	var kind string
	err := s.db.QueryRowContext(ctx,
		`SELECT kind FROM override_entry WHERE student_id = $1`,
		studentID.String(),
	).Scan(&kind)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", fmt.Errorf("override %s: %w", studentID, sentinel.ErrNotFound)
		}
		return "", fmt.Errorf("find override entry: %w", err)
	}
	return id.KindCode(kind), nil
}
