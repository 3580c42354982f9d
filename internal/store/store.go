package store

import (
	"context"
	"encoding/json"
)

//go:generate mockgen -source=store.go -destination=mock_store.go -package=store

// UpdateFunc computes the next value of a record from its current value.
// current is nil when the record does not exist. Returning commit=false
// aborts without writing; a nil next with commit=true deletes the record.
// Backends with optimistic concurrency may call it more than once, so it
// must not have side effects.
type UpdateFunc func(current json.RawMessage) (next json.RawMessage, commit bool)

// Store is the document store shared with the web front-end.
// Records are JSON documents addressed by collection and id.
type Store interface {
	// GetAll returns every record of a collection keyed by id.
	GetAll(ctx context.Context, collection string) (map[string]json.RawMessage, error)
	// Get returns a single record, or nil when it does not exist.
	Get(ctx context.Context, collection, id string) (json.RawMessage, error)
	// TransactionalUpdate runs fn as a compare-and-swap on one record and
	// reports whether a write was committed along with the resulting value.
	TransactionalUpdate(ctx context.Context, collection, id string, fn UpdateFunc) (bool, json.RawMessage, error)
	// Set replaces a record with the JSON encoding of record.
	Set(ctx context.Context, collection, id string, record any) error
	// MultiUpdate atomically writes several fields. Keys are paths of the
	// form "collection/id/field[/sub...]".
	MultiUpdate(ctx context.Context, updates map[string]any) error
	// Close releases the backend connection.
	Close() error
}

// Path joins path segments for MultiUpdate.
func Path(collection, id string, fields ...string) string {
	p := collection + "/" + id
	for _, f := range fields {
		p += "/" + f
	}
	return p
}

func encode(record any) (json.RawMessage, error) {
	if raw, ok := record.(json.RawMessage); ok {
		return clone(raw), nil
	}
	return json.Marshal(record)
}

func clone(raw json.RawMessage) json.RawMessage {
	if raw == nil {
		return nil
	}
	return append(json.RawMessage(nil), raw...)
}
