package postgres

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/andresuchdata/kitchenops/internal/domain"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
)

const (
	codeUniqueViolation      = "23505"
	codeSerializationFailure = "40001"
	codeDeadlockDetected     = "40P01"
	codeLockNotAvailable     = "55P03"
)

// SQLState extracts the SQLSTATE from lib/pq or pgx errors.
func SQLState(err error) string {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

// classify marks lost races on uniqueness or locking as domain.ErrIntegrity.
func classify(err error) error {
	if err == nil {
		return nil
	}
	switch SQLState(err) {
	case codeUniqueViolation, codeSerializationFailure, codeDeadlockDetected, codeLockNotAvailable:
		return fmt.Errorf("%w: %w", domain.ErrIntegrity, err)
	}
	return err
}

// classifyName turns a lost race on a unique name column into the same
// validation error the service reports for a known duplicate.
func classifyName(entity, name string, err error) error {
	if SQLState(err) == codeUniqueViolation && strings.HasSuffix(constraintName(err), "_name_key") {
		return domain.NewValidationError("name", "%s %q already exists", entity, name)
	}
	return classify(err)
}

func constraintName(err error) string {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Constraint
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.ConstraintName
	}
	return ""
}

func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}
