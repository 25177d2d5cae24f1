package repository

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// ErrConflict is returned when the database rejects a write because of a
// unique constraint. The application-level uniqueness pre-checks are racy
// by nature; this is the storage backstop surfacing through.
var ErrConflict = errors.New("unique constraint violated")

const uniqueViolationCode = "23505"

// translateError maps driver-level unique violations to ErrConflict and
// passes everything else through unchanged.
func translateError(err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
		return ErrConflict
	}
	return err
}
