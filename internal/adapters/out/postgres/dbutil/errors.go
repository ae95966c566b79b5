package dbutil

import (
	"errors"
	"strings"

	"maintenance/internal/pkg/errs"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

const pgUniqueViolation = "23505"

// IsUniqueViolation recognizes a unique index violation from either of the
// supported drivers.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgUniqueViolation
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// Translate maps driver errors onto the domain error kinds.
func Translate(entity string, err error) error {
	switch {
	case err == nil:
		return nil
	case IsUniqueViolation(err):
		return errs.NewConflictError(entity, "duplicate key")
	default:
		return err
	}
}
