// Package store owns the authoritative list of calendar events.
//
// The list is loaded from a key-value storage slot when the store is built
// and the whole list is written back, as one JSON array, at the end of every
// mutation. Unusable stored data (absent, malformed, not an array, empty)
// silently falls back to the seed list. Individual events are not validated:
// a damaged field is zeroed, the event and the list are kept.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"joincal/src-server/model"
	"joincal/src-server/storage"
	"log/slog"
	"sync"
)

var (
	// ErrPersist wraps storage write failures. The in-memory change is kept.
	ErrPersist = errors.New("store: persist events")
	// ErrIDExhausted means every generated id collided with a stored one.
	ErrIDExhausted = errors.New("store: can't generate a unique id")
)

type EventStore struct {
	mu      sync.RWMutex
	backend storage.Storage
	key     string
	seed    []model.CalendarEvent
	events  []model.CalendarEvent
	newID   func() (string, error)
	logger  *slog.Logger

	// version counts changes under mu; delivered is the newest version
	// observers have seen, guarded by deliverMu
	version   uint64
	deliverMu sync.Mutex
	delivered uint64

	observersMu    sync.Mutex
	observers      map[int]func([]model.CalendarEvent)
	nextObserverID int
}

// New builds the store and loads the current list from backend.
func New(ctx context.Context, backend storage.Storage, opts ...Option) *EventStore {
	s := &EventStore{
		backend:   backend,
		key:       DefaultKey,
		seed:      []model.CalendarEvent{},
		newID:     NewID,
		logger:    slog.Default(),
		observers: make(map[int]func([]model.CalendarEvent)),
	}
	for _, opt := range opts {
		opt(s)
	}
	events, ok := s.load(ctx)
	if !ok {
		events = clone(s.seed)
	}
	s.events = events
	return s
}

func (s *EventStore) Key() string { return s.key }

// load reads the slot. ok is false when it holds nothing usable: a read
// error, absence, malformed JSON, anything but an array, or an empty array.
// Whether the slot is usable depends on the array alone, elements are decoded
// leniently (see model.CalendarEvent.UnmarshalJSON).
func (s *EventStore) load(ctx context.Context) (events []model.CalendarEvent, ok bool) {
	raw, found, err := s.backend.GetItem(ctx, s.key)
	switch {
	case err != nil:
		s.logger.Warn("can't read events", "key", s.key, "error", err)
		return nil, false
	case !found || raw == "":
		s.logger.Debug("no stored events", "key", s.key)
		return nil, false
	}

	var elements []json.RawMessage
	if err := json.Unmarshal([]byte(raw), &elements); err != nil {
		s.logger.Warn("stored events are not a JSON array", "key", s.key, "error", err)
		return nil, false
	}
	if len(elements) == 0 {
		s.logger.Debug("stored event list is empty", "key", s.key)
		return nil, false
	}

	events = make([]model.CalendarEvent, len(elements))
	for i, element := range elements {
		// never fails on a valid JSON value
		_ = json.Unmarshal(element, &events[i])
	}
	return events, true
}

// persist writes the full list. Callers hold s.mu.
func (s *EventStore) persist(ctx context.Context) error {
	b, err := json.Marshal(s.events)
	if err != nil {
		return fmt.Errorf("%w: marshal: %w", ErrPersist, err)
	}
	if err := s.backend.SetItem(ctx, s.key, string(b)); err != nil {
		s.logger.Error("can't persist events", "key", s.key, "count", len(s.events), "error", err)
		return fmt.Errorf("%w: %w", ErrPersist, err)
	}
	return nil
}

// Reload replaces the in-memory list with what storage holds now. When the
// slot can't be read or holds nothing usable the current list is kept, so a
// transient storage problem never swaps user events for the seed list.
// It reports whether the list was replaced.
func (s *EventStore) Reload(ctx context.Context) bool {
	s.mu.Lock()
	events, ok := s.load(ctx)
	if !ok {
		s.mu.Unlock()
		s.logger.Warn("storage holds no usable events, keeping current list", "key", s.key)
		return false
	}
	s.events = events
	seq, snapshot := s.commit()
	s.mu.Unlock()

	s.notify(seq, snapshot)
	return true
}

// Replace swaps the in-memory list for events without writing it back. It is
// meant for lists that were just read from storage.
func (s *EventStore) Replace(events []model.CalendarEvent) {
	s.mu.Lock()
	s.events = clone(events)
	seq, snapshot := s.commit()
	s.mu.Unlock()

	s.notify(seq, snapshot)
}

// Events returns a copy of the current list in insertion order.
func (s *EventStore) Events() []model.CalendarEvent {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return clone(s.events)
}

func (s *EventStore) Get(id string) (model.CalendarEvent, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.indexOf(id); i >= 0 {
		return s.events[i], true
	}
	return model.CalendarEvent{}, false
}

// Add appends a new event with a store-assigned id.
func (s *EventStore) Add(ctx context.Context, draft model.EventDraft) (model.CalendarEvent, error) {
	s.mu.Lock()
	id, err := s.generateID()
	if err != nil {
		s.mu.Unlock()
		return model.CalendarEvent{}, fmt.Errorf("(*EventStore).Add: %w", err)
	}
	next := draft.WithID(id)

	events := make([]model.CalendarEvent, 0, len(s.events)+1)
	events = append(events, s.events...)
	s.events = append(events, next)

	err = s.persist(ctx)
	seq, snapshot := s.commit()
	s.mu.Unlock()

	s.notify(seq, snapshot)
	if err != nil {
		return next, fmt.Errorf("(*EventStore).Add: %w", err)
	}
	return next, nil
}

// Update overlays patch on the event with the given id. An unknown id leaves
// the list as it is, it is still written back.
func (s *EventStore) Update(ctx context.Context, id string, patch model.EventPatch) error {
	s.mu.Lock()
	events := make([]model.CalendarEvent, len(s.events))
	for i, event := range s.events {
		if event.ID == id {
			event = patch.Apply(event)
		}
		events[i] = event
	}
	s.events = events

	err := s.persist(ctx)
	seq, snapshot := s.commit()
	s.mu.Unlock()

	s.notify(seq, snapshot)
	if err != nil {
		return fmt.Errorf("(*EventStore).Update: %w", err)
	}
	return nil
}

// Delete drops the event with the given id. An unknown id leaves the list as
// it is, it is still written back.
func (s *EventStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	events := make([]model.CalendarEvent, 0, len(s.events))
	for _, event := range s.events {
		if event.ID != id {
			events = append(events, event)
		}
	}
	s.events = events

	err := s.persist(ctx)
	seq, snapshot := s.commit()
	s.mu.Unlock()

	s.notify(seq, snapshot)
	if err != nil {
		return fmt.Errorf("(*EventStore).Delete: %w", err)
	}
	return nil
}

// Subscribe registers fn to receive a copy of the list after every change.
// fn runs on the caller's goroutine, after the change has been persisted.
// Deliveries are ordered: a list older than one already delivered is
// dropped, so the last call always carries the current list. fn must not
// modify the store.
func (s *EventStore) Subscribe(fn func([]model.CalendarEvent)) (unsubscribe func()) {
	s.observersMu.Lock()
	defer s.observersMu.Unlock()
	id := s.nextObserverID
	s.nextObserverID++
	s.observers[id] = fn

	var once sync.Once
	return func() {
		once.Do(func() {
			s.observersMu.Lock()
			delete(s.observers, id)
			s.observersMu.Unlock()
		})
	}
}

// commit numbers the current list. Callers hold s.mu.
func (s *EventStore) commit() (uint64, []model.CalendarEvent) {
	s.version++
	return s.version, clone(s.events)
}

func (s *EventStore) notify(seq uint64, snapshot []model.CalendarEvent) {
	s.deliverMu.Lock()
	defer s.deliverMu.Unlock()
	if seq <= s.delivered {
		return
	}
	s.delivered = seq

	s.observersMu.Lock()
	fns := make([]func([]model.CalendarEvent), 0, len(s.observers))
	for _, fn := range s.observers {
		fns = append(fns, fn)
	}
	s.observersMu.Unlock()

	for _, fn := range fns {
		fn(clone(snapshot))
	}
}

func (s *EventStore) indexOf(id string) int {
	for i, event := range s.events {
		if event.ID == id {
			return i
		}
	}
	return -1
}

func clone(events []model.CalendarEvent) []model.CalendarEvent {
	out := make([]model.CalendarEvent, len(events))
	copy(out, events)
	return out
}
