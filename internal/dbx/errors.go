package dbx

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// PostgreSQL SQLSTATE codes.
const (
	uniqueViolation           = "23505"
	invalidTextRepresentation = "22P02"
)

func hasCode(err error, code string) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == code
	}
	return false
}

// IsUniqueViolation reports whether err (or anything it wraps) is a
// PostgreSQL unique-constraint violation.
func IsUniqueViolation(err error) bool {
	return hasCode(err, uniqueViolation)
}

// IsInvalidText reports whether PostgreSQL rejected a parameter that does not
// parse as the column type, e.g. "abc" compared with a uuid column.
func IsInvalidText(err error) bool {
	return hasCode(err, invalidTextRepresentation)
}
