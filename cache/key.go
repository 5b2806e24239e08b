package cache

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Field is a single named identifier taking part in a cache key.
type Field struct {
	Name  string
	Value string
}

// Key is an ordered set of identifier fields. The order is the order in
// which the owning operation declares its identifiers; it is never sorted.
type Key []Field

// Keyed is implemented by request types that carry identifiers. CacheKey
// must return the identifiers in a stable declared order.
type Keyed interface {
	CacheKey() Key
}

// KeyOf returns the identifiers carried by req, or an empty Key when req
// does not implement [Keyed].
func KeyOf(req any) Key {
	if k, ok := req.(Keyed); ok {
		return k.CacheKey()
	}
	return nil
}

// Fingerprint serializes k into the field name used inside a resource.
// Names and values are JSON-escaped and written in declared order:
//
//	{"menu_id":"a","submenu_id":"b"}
//
// An empty key yields the empty fingerprint.
func (k Key) Fingerprint() string {
	if len(k) == 0 {
		return ""
	}
	return k.Prefix() + "}"
}

// Prefix returns the fingerprint of k without its closing brace. Every
// fingerprint whose leading fields equal k starts with Prefix, and no other
// fingerprint does, because each value ends with a closing quote.
func (k Key) Prefix() string {
	if len(k) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteByte('{')
	for i, f := range k {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(quote(f.Name))
		b.WriteByte(':')
		b.WriteString(quote(f.Value))
	}
	return b.String()
}

// Names returns the field names of k in order.
func (k Key) Names() []string {
	names := make([]string, len(k))
	for i, f := range k {
		names[i] = f.Name
	}
	return names
}

// Lookup returns the value of the named field.
func (k Key) Lookup(name string) (string, bool) {
	for _, f := range k {
		if f.Name == name {
			return f.Value, true
		}
	}
	return "", false
}

// Pick builds a new key holding the named fields in the order given. It
// fails with [ErrUndeclaredField] when k does not carry one of them.
func (k Key) Pick(names ...string) (Key, error) {
	out := make(Key, 0, len(names))
	for _, n := range names {
		v, ok := k.Lookup(n)
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUndeclaredField, n)
		}
		out = append(out, Field{Name: n, Value: v})
	}
	return out, nil
}

func quote(s string) string {
	// Marshalling a string cannot fail.
	b, _ := json.Marshal(s)
	return string(b)
}
