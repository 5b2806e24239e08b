// Package cache implements a response cache for request/response handlers
// whose entries are evicted by a static table of write-to-read dependencies.
//
// Entries live in named resources, one per cached read operation. Inside a
// resource every entry is addressed by the fingerprint of the identifiers
// the request carried (see [Key]). Reads go through a [Guard]; writes go
// through a [Trigger], which evicts every entry the write can make stale
// before the write itself runs.
package cache

import "context"

// Store is a resource-scoped map from key fingerprints to entries.
// Implementations serialize field-level operations themselves; callers do
// not lock around them.
type Store interface {
	// Get returns the entry stored under key. The boolean reports whether
	// the entry exists.
	Get(ctx context.Context, resource string, key Key) (Entry, bool, error)

	// Set stores entry under key, replacing any previous entry.
	Set(ctx context.Context, resource string, key Key, entry Entry) error

	// Exists reports whether an entry is stored under key.
	Exists(ctx context.Context, resource string, key Key) (bool, error)

	// DeleteOne removes the entry stored under key. Deleting a missing
	// entry is not an error.
	DeleteOne(ctx context.Context, resource string, key Key) error

	// DeleteAll removes every entry of resource.
	DeleteAll(ctx context.Context, resource string) error

	// DeleteByPrefix removes every entry of resource whose key starts with
	// the fields of prefix, and returns how many were removed.
	DeleteByPrefix(ctx context.Context, resource string, prefix Key) (int, error)
}
