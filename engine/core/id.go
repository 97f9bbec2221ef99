package core

import (
	"fmt"

	"github.com/segmentio/ksuid"
)

// ID is an opaque, sortable, globally unique identifier.
type ID string

func (id ID) String() string { return string(id) }

// IsZero reports whether id is the zero value.
func (id ID) IsZero() bool { return id == "" }

// NewID generates a new random ID.
func NewID() (ID, error) {
	id, err := ksuid.NewRandom()
	if err != nil {
		return "", fmt.Errorf("failed to generate new id: %w", err)
	}
	return ID(id.String()), nil
}

// MustNewID generates a new ID, panicking on failure. Used only in contexts
// (tests, one-shot CLI paths) where an ID generation failure is unrecoverable
// and immediate.
func MustNewID() ID {
	id, err := NewID()
	if err != nil {
		panic(err)
	}
	return id
}

// ShortID returns a short (non-cryptographic) tag suitable for the wrapper
// codec's traceability id: the last 8 characters of a fresh KSUID.
func ShortID() string {
	id := MustNewID()
	s := string(id)
	if len(s) <= 8 {
		return s
	}
	return s[len(s)-8:]
}
