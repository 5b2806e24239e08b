package contextx

import "testing"

func TestGroup(t *testing.T) {
	if got := GroupFromContext(WithGroup(t.Context(), "writes")); got != "writes" {
		t.Fatalf("got %q, want %q", got, "writes")
	}
	if got := GroupFromContext(t.Context()); got != "" {
		t.Fatalf("expected no group, got %q", got)
	}
}
