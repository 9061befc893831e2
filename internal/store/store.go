// Package store persists the application's named collections as whole JSON
// documents. Every mutation is a load-modify-save of the full collection;
// Update serializes those cycles per collection so concurrent requests cannot
// lose each other's writes.
package store

import (
	"context"
	"errors"
)

// Collection names one of the persisted record sets.
type Collection string

const (
	// Users is the account collection.
	Users Collection = "users"
	// Events is the calendar event collection.
	Events Collection = "events"
)

// ErrUnknownCollection is returned for a collection the store was not opened with.
var ErrUnknownCollection = errors.New("unknown collection")

// Txn gives exclusive access to one collection for the duration of an Update.
type Txn interface {
	// Load decodes the collection into out, a pointer to a slice. A missing
	// or unreadable document decodes to an empty slice.
	Load(out any) error
	// Save overwrites the whole collection document with records.
	Save(records any) error
}

// Store is the durable collection store. Load alone is enough for read-only
// operations; any read-validate-mutate-write cycle must run inside Update so
// it holds the collection's write lock end to end.
type Store interface {
	Load(ctx context.Context, c Collection, out any) error
	Update(ctx context.Context, c Collection, fn func(tx Txn) error) error
}
