// Package core orders the server's interceptors.
package core

import (
	"cmp"
	"slices"

	"google.golang.org/grpc"
)

type middleware struct {
	name  string
	order int
	unary grpc.UnaryServerInterceptor
}

// MiddlewareBuilder collects interceptors with a fixed order. Lower orders
// run first, i.e. further out. Entries with the same order keep the order
// they were added in.
type MiddlewareBuilder struct {
	entries []middleware
}

// Add registers unary under name at order. Adding a name twice replaces the
// earlier entry.
func (b *MiddlewareBuilder) Add(order int, name string, unary grpc.UnaryServerInterceptor) {
	for i := range b.entries {
		if b.entries[i].name == name {
			b.entries[i] = middleware{name: name, order: order, unary: unary}
			return
		}
	}
	b.entries = append(b.entries, middleware{name: name, order: order, unary: unary})
}

// Build returns the interceptors sorted by order.
func (b *MiddlewareBuilder) Build() []grpc.UnaryServerInterceptor {
	sorted := b.sorted()
	out := make([]grpc.UnaryServerInterceptor, 0, len(sorted))
	for _, m := range sorted {
		out = append(out, m.unary)
	}
	return out
}

// Names returns the registered names in execution order.
func (b *MiddlewareBuilder) Names() []string {
	sorted := b.sorted()
	out := make([]string, 0, len(sorted))
	for _, m := range sorted {
		out = append(out, m.name)
	}
	return out
}

func (b *MiddlewareBuilder) sorted() []middleware {
	s := slices.Clone(b.entries)
	slices.SortStableFunc(s, func(a, c middleware) int {
		return cmp.Compare(a.order, c.order)
	})
	return s
}
