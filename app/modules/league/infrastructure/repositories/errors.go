package leaguedb

import (
	"errors"

	"github.com/uptrace/bun/driver/pgdriver"
)

// Sentinel errors for the repository layer. These are infrastructure-level
// conditions; domain rejections live in leaguedomain.
var (
	// ErrNotFound indicates the requested record does not exist.
	ErrNotFound = errors.New("not found")

	// ErrDuplicateMember indicates an insert hit the one-membership-per-
	// epoch unique constraint.
	ErrDuplicateMember = errors.New("user already has a membership for this epoch")

	// ErrNoRowsAffected indicates an UPDATE matched no rows.
	ErrNoRowsAffected = errors.New("no rows affected")
)

const pgUniqueViolation = "23505"

// isUniqueViolation reports whether err is a Postgres unique-constraint
// violation.
func isUniqueViolation(err error) bool {
	var pgErr pgdriver.Error
	if errors.As(err, &pgErr) {
		return pgErr.Field('C') == pgUniqueViolation
	}
	return false
}
