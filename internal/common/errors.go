package common

import (
	"errors"

	"github.com/jackc/pgx/v5"
)

// ErrNotFound is the lookup-not-found outcome surfaced to handlers so they can
// answer 404 instead of 500.
var ErrNotFound = errors.New("record not found")

// TranslateNotFound maps pgx's no-rows error to ErrNotFound and leaves
// everything else untouched.
func TranslateNotFound(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

// IsNotFound reports whether err represents a missing record.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) || errors.Is(err, pgx.ErrNoRows)
}
