package id

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// ShortLen is the number of characters shown when listing records.
const ShortLen = 8

var (
	// ErrNoMatch is returned when no ID starts with the given prefix.
	ErrNoMatch = errors.New("no record matches id")
	// ErrAmbiguous is returned when several IDs start with the given prefix.
	ErrAmbiguous = errors.New("id prefix is ambiguous")
)

// New returns a fresh random record ID.
func New() string {
	return uuid.NewString()
}

// Short returns the display prefix of an ID.
// "6f1c2a9e-..." -> "6f1c2a9e"
func Short(id string) string {
	if len(id) <= ShortLen {
		return id
	}
	return id[:ShortLen]
}

// Resolve finds the single ID in ids that equals or starts with prefix.
func Resolve(prefix string, ids []string) (string, error) {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		return "", fmt.Errorf("empty id: %w", ErrNoMatch)
	}

	var found []string
	for _, id := range ids {
		if id == prefix {
			return id, nil
		}
		if strings.HasPrefix(id, prefix) {
			found = append(found, id)
		}
	}

	switch len(found) {
	case 0:
		return "", fmt.Errorf("%q: %w", prefix, ErrNoMatch)
	case 1:
		return found[0], nil
	default:
		return "", fmt.Errorf("%q matches %d records: %w", prefix, len(found), ErrAmbiguous)
	}
}
