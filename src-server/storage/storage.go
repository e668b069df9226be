// Package storage holds the key-value backends the event store persists to.
//
// A backend behaves like a browser's local storage: string keys, string
// values, a missing key is not an error.
package storage

import (
	"context"
	"errors"
)

type Storage interface {
	// GetItem returns the value stored at key. ok is false when nothing is
	// stored there.
	GetItem(ctx context.Context, key string) (value string, ok bool, err error)
	// SetItem overwrites the value stored at key.
	SetItem(ctx context.Context, key, value string) error
	// RemoveItem deletes key. Removing a missing key is not an error.
	RemoveItem(ctx context.Context, key string) error
}

var ErrBlankKey = errors.New("storage: key is blank")
