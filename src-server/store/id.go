package store

import (
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"
)

// maxIDAttempts bounds re-rolls of an id that collides with a stored one.
const maxIDAttempts = 8

// NewID returns a random UUID, or an evt-<unix millis>-<hex> id when the
// secure random source fails. The fallback is only best-effort unique.
func NewID() (string, error) {
	id, err := uuid.NewRandom()
	if err == nil {
		return id.String(), nil
	}
	return fallbackID(time.Now()), nil
}

func fallbackID(now time.Time) string {
	return fmt.Sprintf("evt-%d-%x", now.UnixMilli(), rand.Uint64())
}

// generateID asks the configured generator for an id that no current event
// carries.
func (s *EventStore) generateID() (string, error) {
	for attempt := 0; attempt < maxIDAttempts; attempt++ {
		id, err := s.newID()
		if err != nil {
			return "", fmt.Errorf("generateID: %w", err)
		}
		if id == "" {
			continue
		}
		if s.indexOf(id) < 0 {
			return id, nil
		}
	}
	return "", ErrIDExhausted
}
