package repository

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/atinyakov/TwoHearts/internal/common"
	"github.com/lib/pq"
)

// SQLSTATE codes mapped to sentinels.
const (
	pgUniqueViolation = "23505"
	// pgInvalidText is raised when an id is not a valid uuid; no row can
	// have such an id.
	pgInvalidText = "22P02"
)

// mapError converts driver errors to the sentinels in common and annotates
// everything else with op.
func mapError(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s: %w", op, common.ErrNotFound)
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case pgUniqueViolation:
			return fmt.Errorf("%s: %w", op, common.ErrAlreadyExists)
		case pgInvalidText:
			return fmt.Errorf("%s: %w", op, common.ErrNotFound)
		}
	}
	return fmt.Errorf("%s: %w", op, err)
}

// requireAffected turns a zero-row UPDATE or DELETE into ErrNotFound.
func requireAffected(op string, res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", op, common.ErrNotFound)
	}
	return nil
}
