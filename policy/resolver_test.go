package policy

import (
	"testing"
	"time"
)

const (
	getMenus   = "/menu.v1.MenuService/GetMenus"
	getMenu    = "/menu.v1.MenuService/GetMenu"
	createDish = "/menu.v1.MenuService/CreateDish"
)

func TestResolve_Kinds(t *testing.T) {
	r := NewResolver(
		Group("reads").
			Regex(`/Get[A-Za-z]+$`).
			Policy(Policy{Timeout: time.Second}),
		Group("service").
			Prefix("/menu.v1.MenuService/").
			Policy(Policy{Timeout: 2 * time.Second}),
		Group("listing").
			Exact(getMenus).
			Policy(Policy{Timeout: 3 * time.Second}),
	)

	tests := []struct {
		method string
		group  string
		want   time.Duration
	}{
		{getMenus, "listing", 3 * time.Second},
		{getMenu, "service", 2 * time.Second},
		{createDish, "service", 2 * time.Second},
		{"/other.Service/GetThing", "reads", time.Second},
	}
	for _, tt := range tests {
		t.Run(tt.method, func(t *testing.T) {
			m, ok := r.Resolve(tt.method)
			if !ok {
				t.Fatal("expected a match")
			}
			if m.Group != tt.group || m.Policy.Timeout != tt.want {
				t.Fatalf("got %q/%v, want %q/%v", m.Group, m.Policy.Timeout, tt.group, tt.want)
			}
		})
	}
}

func TestResolve_NoMatch(t *testing.T) {
	r := NewResolver(Group("writes").Exact(createDish))
	if _, ok := r.Resolve(getMenu); ok {
		t.Fatal("expected no match")
	}
	// Memoized misses stay misses.
	if _, ok := r.Resolve(getMenu); ok {
		t.Fatal("expected no match on the second lookup")
	}
}

func TestResolve_NilResolver(t *testing.T) {
	var r *Resolver
	if _, ok := r.Resolve(getMenu); ok {
		t.Fatal("nil resolver must not match")
	}
}

func TestResolve_LongerPrefixWins(t *testing.T) {
	r := NewResolver(
		Group("short").Prefix("/menu."),
		Group("long").Prefix("/menu.v1.MenuService/"),
	)
	if m, _ := r.Resolve(getMenu); m.Group != "long" {
		t.Fatalf("longer prefix should win: got %q", m.Group)
	}
}

func TestResolve_FirstRegisteredWinsTies(t *testing.T) {
	r := NewResolver(
		Group("first").Exact(getMenu),
		Group("second").Exact(getMenu),
	)
	if m, _ := r.Resolve(getMenu); m.Group != "first" {
		t.Fatalf("first-registered group should win: got %q", m.Group)
	}
}

func TestGroup_ExactMany(t *testing.T) {
	r := NewResolver(Group("writes").Exact(createDish, getMenus))
	for _, method := range []string{createDish, getMenus} {
		if m, ok := r.Resolve(method); !ok || m.Group != "writes" {
			t.Fatalf("%s resolved to %q, %v", method, m.Group, ok)
		}
	}
}

func TestRateLimitRule_PerSecond(t *testing.T) {
	tests := []struct {
		rule RateLimitRule
		want float64
	}{
		{RateLimitRule{Rate: 120, Window: time.Minute}, 2},
		{RateLimitRule{Rate: 5, Window: time.Second}, 5},
		{RateLimitRule{Rate: 7}, 7},
	}
	for _, tt := range tests {
		if got := tt.rule.PerSecond(); got != tt.want {
			t.Errorf("%+v.PerSecond() = %v, want %v", tt.rule, got, tt.want)
		}
	}
}
