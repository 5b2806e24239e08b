package interceptors

import (
	"context"
	"errors"
	"testing"

	"google.golang.org/grpc"
)

type checked struct{ err error }

func (c checked) Validate() error { return c.err }

func TestValidateUnary(t *testing.T) {
	bad := errors.New("bad")
	ic := ValidateUnary()
	called := false
	h := func(context.Context, any) (any, error) { called = true; return "ok", nil }

	if _, err := ic(t.Context(), checked{err: bad}, &grpc.UnaryServerInfo{}, h); !errors.Is(err, bad) || called {
		t.Fatalf("invalid request: err = %v, handler called = %v", err, called)
	}
	if resp, err := ic(t.Context(), checked{}, &grpc.UnaryServerInfo{}, h); err != nil || resp != "ok" {
		t.Fatalf("valid request: %v, %v", resp, err)
	}
	if resp, err := ic(t.Context(), "plain", &grpc.UnaryServerInfo{}, h); err != nil || resp != "ok" {
		t.Fatalf("request without Validate: %v, %v", resp, err)
	}
}
