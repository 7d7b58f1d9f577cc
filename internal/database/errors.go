package database

import (
	"errors"

	"github.com/mattn/go-sqlite3"
)

var (
	// ErrDuplicate is returned when an insert violates a uniqueness
	// constraint, e.g. adding the same (user, external id) pair twice.
	ErrDuplicate = errors.New("record already exists")
	// ErrNotFound is returned when a conditional read, update, or delete
	// matches no row owned by the caller.
	ErrNotFound = errors.New("record not found")
)

// isUniqueViolation reports whether err is a sqlite unique-constraint error.
func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.Code == sqlite3.ErrConstraint &&
			sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique
	}
	return false
}
