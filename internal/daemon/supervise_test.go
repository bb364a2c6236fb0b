package daemon

import (
	"context"
	"errors"
	"testing"

	"github.com/thejerf/suture/v4"
)

func TestSanitizeError(t *testing.T) {
	ctx := context.Background()

	if err := SanitizeError(ctx, nil); err != nil {
		t.Fatalf("nil error became %v", err)
	}

	plain := errors.New("socket in use")
	if err := SanitizeError(ctx, plain); err != plain {
		t.Fatalf("plain error changed: %v", err)
	}

	err := SanitizeError(ctx, context.DeadlineExceeded)
	if errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("own deadline still reads as a context error: %v", err)
	}
	if err == nil || err.Error() != context.DeadlineExceeded.Error() {
		t.Fatalf("message lost: %v", err)
	}

	err = SanitizeError(ctx, errors.Join(context.Canceled, suture.ErrDoNotRestart))
	if !errors.Is(err, suture.ErrDoNotRestart) || errors.Is(err, context.Canceled) {
		t.Fatalf("sanitized = %v", err)
	}

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	if err := SanitizeError(cancelled, errors.New("late")); !errors.Is(err, context.Canceled) {
		t.Fatalf("shutdown error = %v, want context.Canceled", err)
	}
}

func TestServiceFunc(t *testing.T) {
	called := false
	svc := NewServiceFunc("x11-events", func(context.Context) error {
		called = true
		return nil
	})
	if svc.String() != "x11-events" {
		t.Fatalf("name = %q", svc.String())
	}
	if err := svc.Serve(context.Background()); err != nil || !called {
		t.Fatalf("Serve = %v, called = %v", err, called)
	}
}
