package cache

import "errors"

var (
	// ErrUnsupportedShape is returned by [Envelope.Encode] when a response is
	// neither a single item, a list of items nor an error payload. It points
	// at a handler whose result type is missing from the shape taxonomy and
	// is always surfaced to the caller.
	ErrUnsupportedShape = errors.New("cache: unsupported response shape")

	// ErrUnknownKind is returned when an item kind is not present in the
	// [Kinds] table used by the envelope.
	ErrUnknownKind = errors.New("cache: unknown item kind")

	// ErrCorruptEntry is returned by stores when a stored entry cannot be
	// parsed.
	ErrCorruptEntry = errors.New("cache: corrupt entry")

	// ErrUndeclaredField is returned when an invalidation rule names an
	// identifier the request does not carry.
	ErrUndeclaredField = errors.New("cache: undeclared key field")

	// ErrEvictionFailed is returned by [Trigger.Write] when an eviction
	// still fails after its retries. The write does not run.
	ErrEvictionFailed = errors.New("cache: eviction failed")

	// ErrStoreUnavailable is returned by [BreakerStore] while its breaker is
	// open.
	ErrStoreUnavailable = errors.New("cache: store unavailable")

	// ErrNearTTLRequired is returned by [NewTiered] without a positive TTL.
	// Deletes made by other processes never reach the near tier, so its
	// entries must expire on their own.
	ErrNearTTLRequired = errors.New("cache: near cache needs a positive ttl")
)
