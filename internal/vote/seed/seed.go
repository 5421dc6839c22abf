// Package seed loads reference data at process start: department and
// override classification entries plus the pre-generated code pools.
package seed

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"

	"voteauth/internal/vote/models"
	id "voteauth/pkg/domain"
)

// Data is the parsed seed file content.
type Data struct {
	Departments []models.DepartmentEntry
	Overrides   []models.OverrideEntry
	Codes       []models.AuthCode
}

type file struct {
	Departments []struct {
		Department string `json:"department"`
		Kind       string `json:"kind"`
	} `json:"departments"`
	Overrides []struct {
		StudentID string `json:"student_id"`
		Kind      string `json:"kind"`
	} `json:"overrides"`
	Codes []struct {
		Code string `json:"code"`
		Kind string `json:"kind"`
	} `json:"codes"`
}

// Load reads and validates a JSON seed file. Every kind must be a
// member of the catalog so typos fail at boot instead of classifying
// voters as unqualified at the counter.
func Load(path string, catalog models.Catalog) (Data, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Data{}, fmt.Errorf("read seed file: %w", err)
	}

	var f file
	if err := json.Unmarshal(raw, &f); err != nil {
		return Data{}, fmt.Errorf("parse seed file: %w", err)
	}

	var data Data
	for _, d := range f.Departments {
		kind, err := parseKind(d.Kind, catalog)
		if err != nil {
			return Data{}, fmt.Errorf("department %q: %w", d.Department, err)
		}
		if d.Department == "" {
			return Data{}, fmt.Errorf("department entry with empty code")
		}
		data.Departments = append(data.Departments, models.DepartmentEntry{
			DepartmentCode: d.Department,
			Kind:           kind,
		})
	}
	for _, o := range f.Overrides {
		kind, err := parseKind(o.Kind, catalog)
		if err != nil {
			return Data{}, fmt.Errorf("override %q: %w", o.StudentID, err)
		}
		if o.StudentID == "" {
			return Data{}, fmt.Errorf("override entry with empty student id")
		}
		data.Overrides = append(data.Overrides, models.OverrideEntry{
			StudentID: id.StudentID(o.StudentID),
			Kind:      kind,
		})
	}
	for _, c := range f.Codes {
		kind, err := parseKind(c.Kind, catalog)
		if err != nil {
			return Data{}, fmt.Errorf("code %q: %w", c.Code, err)
		}
		if c.Code == "" {
			return Data{}, fmt.Errorf("code entry with empty code")
		}
		data.Codes = append(data.Codes, models.AuthCode{Code: c.Code, Kind: kind})
	}
	return data, nil
}

func parseKind(raw string, catalog models.Catalog) (id.KindCode, error) {
	kind, err := id.ParseKindCode(raw)
	if err != nil {
		return "", err
	}
	if !catalog.Valid(kind) {
		return "", fmt.Errorf("kind %q is not in the catalog", raw)
	}
	return kind, nil
}

// Apply inserts seed data into PostgreSQL. Inserts are idempotent so
// the seed file can be re-applied on every boot.
func Apply(ctx context.Context, db *sql.DB, data Data) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin seed tx: %w", err)
	}
	defer tx.Rollback()

	for _, d := range data.Departments {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO department_entry (dpt_code, kind) VALUES ($1, $2)
			 ON CONFLICT (dpt_code) DO UPDATE SET kind = EXCLUDED.kind`,
			d.DepartmentCode, d.Kind.String())
		if err != nil {
			return fmt.Errorf("seed department %s: %w", d.DepartmentCode, err)
		}
	}
	for _, o := range data.Overrides {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO override_entry (student_id, kind) VALUES ($1, $2)
			 ON CONFLICT (student_id) DO UPDATE SET kind = EXCLUDED.kind`,
			o.StudentID.String(), o.Kind.String())
		if err != nil {
			return fmt.Errorf("seed override %s: %w", o.StudentID, err)
		}
	}
	for _, c := range data.Codes {
		// Never resurrect an already issued code.
		_, err := tx.ExecContext(ctx,
			`INSERT INTO auth_code (code, kind, issued) VALUES ($1, $2, FALSE)
			 ON CONFLICT (code) DO NOTHING`,
			c.Code, c.Kind.String())
		if err != nil {
			return fmt.Errorf("seed code %s: %w", c.Code, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit seed tx: %w", err)
	}
	return nil
}
