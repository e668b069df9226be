package store

import (
	"joincal/src-server/model"
	"log/slog"
)

// DefaultKey is the storage slot the event list lives in.
const DefaultKey = "calendar-events"

type Option func(*EventStore)

// WithKey changes the storage slot.
func WithKey(key string) Option {
	return func(s *EventStore) {
		if key != "" {
			s.key = key
		}
	}
}

// WithSeed sets the list used when storage holds nothing usable.
func WithSeed(seed []model.CalendarEvent) Option {
	return func(s *EventStore) {
		s.seed = clone(seed)
	}
}

// WithIDGenerator replaces NewID.
func WithIDGenerator(gen func() (string, error)) Option {
	return func(s *EventStore) {
		if gen != nil {
			s.newID = gen
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *EventStore) {
		if logger != nil {
			s.logger = logger
		}
	}
}
