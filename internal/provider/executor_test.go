package provider

import (
	"context"
	"errors"
	"testing"
	"time"
)

var (
	errQuota     = errors.New("429: quota exceeded for this key")
	errTransient = errors.New("connection reset by peer")
	errPermanent = errors.New("unsupported input")
)

func newExec(t *testing.T, keys ...string) *Executor {
	t.Helper()
	pool, err := NewKeyPool("test", keys)
	if err != nil {
		t.Fatalf("new pool: %v", err)
	}
	return &Executor{
		Pool:             pool,
		Classify:         MessageClass,
		RetryFactor:      2,
		TransientRetries: 3,
		BackoffBase:      time.Millisecond,
	}
}

func TestExecutor_QuotaRotatesToNextKey(t *testing.T) {
	e := newExec(t, "k0", "k1", "k2")
	var used []string
	err := e.Execute(context.Background(), func(_ context.Context, key string) error {
		used = append(used, key)
		if key == "k0" {
			return errQuota
		}
		return nil
	})
	if err != nil {
		t.Fatalf("expected success after rotation, got %v", err)
	}
	if len(used) != 2 || used[0] != "k0" || used[1] != "k1" {
		t.Fatalf("unexpected key sequence %v", used)
	}
}

func TestExecutor_AllKeysExhausted(t *testing.T) {
	e := newExec(t, "k0", "k1", "k2")
	calls := 0
	err := e.Execute(context.Background(), func(_ context.Context, _ string) error {
		calls++
		return errQuota
	})
	if !errors.Is(err, ErrAllKeysExhausted) {
		t.Fatalf("expected ErrAllKeysExhausted, got %v", err)
	}
	if calls != 3 {
		t.Fatalf("expected exactly one attempt per key, got %d", calls)
	}
}

func TestExecutor_TransientRetriesSameKey(t *testing.T) {
	e := newExec(t, "k0", "k1")
	var used []string
	fails := 2
	err := e.Execute(context.Background(), func(_ context.Context, key string) error {
		used = append(used, key)
		if fails > 0 {
			fails--
			return errTransient
		}
		return nil
	})
	if err != nil {
		t.Fatalf("expected success after transient retries, got %v", err)
	}
	for _, k := range used {
		if k != "k0" {
			t.Fatalf("transient retry switched credential: %v", used)
		}
	}
	if len(used) != 3 {
		t.Fatalf("expected 3 attempts, got %d", len(used))
	}
}

func TestExecutor_TransientCeilingEscalates(t *testing.T) {
	e := newExec(t, "k0", "k1")
	calls := 0
	err := e.Execute(context.Background(), func(_ context.Context, _ string) error {
		calls++
		return errTransient
	})
	if !errors.Is(err, errTransient) {
		t.Fatalf("expected transient error escalated, got %v", err)
	}
	// initial attempt + TransientRetries before escalation
	if calls != 4 {
		t.Fatalf("expected 4 calls, got %d", calls)
	}
}

func TestExecutor_PermanentAbortsImmediately(t *testing.T) {
	e := newExec(t, "k0", "k1", "k2")
	calls := 0
	err := e.Execute(context.Background(), func(_ context.Context, _ string) error {
		calls++
		return errPermanent
	})
	if !errors.Is(err, errPermanent) {
		t.Fatalf("expected permanent error, got %v", err)
	}
	if calls != 1 {
		t.Fatalf("permanent errors must not retry, got %d calls", calls)
	}
}

func TestExecutor_ContextCancellation(t *testing.T) {
	e := newExec(t, "k0")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := e.Execute(ctx, func(_ context.Context, _ string) error {
		t.Fatal("op must not run with canceled context")
		return nil
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
