// Package id generates entity identifiers.
//
// Entities use UUIDv7, so rows sort by creation time without an extra index.
// Business numbers such as P-000001 are separate and come from the allocator.
package id

import (
	"github.com/google/uuid"
)

// ID identifies every stored entity.
type ID = uuid.UUID

// New returns a fresh UUIDv7. It falls back to a random UUID only when the
// clock source fails.
func New() ID {
	v, err := uuid.NewV7()
	if err != nil {
		return uuid.New()
	}
	return v
}

// Parse parses a path or body identifier.
func Parse(s string) (ID, error) {
	return uuid.Parse(s)
}

// MustParse is for tests and constants.
func MustParse(s string) ID {
	return uuid.MustParse(s)
}

func Nil() ID {
	return uuid.Nil
}

func IsNil(v ID) bool {
	return v == uuid.Nil
}
