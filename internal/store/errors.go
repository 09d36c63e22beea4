package store

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/magheya/lds-backend/internal/apperr"
)

// translateErr maps driver failures onto the shared taxonomy while keeping
// the original error in the chain.
func translateErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, apperr.ErrConstraint) || errors.Is(err, apperr.ErrNotFound) {
		return err
	}
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: %w", apperr.ErrNotFound, err)
	}
	if isConstraint(err) {
		return fmt.Errorf("%w: %w", apperr.ErrConstraint, err)
	}
	return err
}

func isConstraint(err error) bool {
	var sqliteErr *sqlite.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.Code()&0xff == sqlite3.SQLITE_CONSTRAINT
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		// Class 23: integrity constraint violation.
		return strings.HasPrefix(pgErr.Code, "23")
	}
	return false
}
