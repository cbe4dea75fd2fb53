package provider

import (
	"errors"
	"testing"
)

func TestNewKeyPool_Empty(t *testing.T) {
	if _, err := NewKeyPool("t", nil); !errors.Is(err, ErrPoolEmpty) {
		t.Fatalf("expected ErrPoolEmpty, got %v", err)
	}
	if _, err := NewKeyPool("t", []string{"", "  "}); !errors.Is(err, ErrPoolEmpty) {
		t.Fatalf("expected ErrPoolEmpty for blank keys, got %v", err)
	}
}

func TestKeyPool_CurrentBeforeExhaustion(t *testing.T) {
	p, err := NewKeyPool("t", []string{"k0", "k1", "k2"})
	if err != nil {
		t.Fatalf("new pool: %v", err)
	}
	key, idx := p.Current()
	if key != "k0" || idx != 0 {
		t.Fatalf("expected k0/0, got %s/%d", key, idx)
	}
}

func TestKeyPool_RotationVisitsEveryIndexOnce(t *testing.T) {
	p, _ := NewKeyPool("t", []string{"k0", "k1", "k2", "k3"})

	seen := map[int]bool{}
	for i := 0; i < 3; i++ {
		_, idx := p.Current()
		if seen[idx] {
			t.Fatalf("index %d visited twice", idx)
		}
		seen[idx] = true
		if !p.Rotate(idx) {
			t.Fatalf("rotation %d should succeed", i)
		}
	}
	_, last := p.Current()
	if seen[last] {
		t.Fatalf("final index %d already visited", last)
	}
}

func TestKeyPool_AllExhausted(t *testing.T) {
	p, _ := NewKeyPool("t", []string{"k0", "k1", "k2"})
	for i := 0; i < 2; i++ {
		_, idx := p.Current()
		if !p.Rotate(idx) {
			t.Fatalf("rotation %d should succeed", i)
		}
	}
	_, idx := p.Current()
	if p.Rotate(idx) {
		t.Fatal("expected rotation to fail with all keys exhausted")
	}
}

func TestKeyPool_IdempotentMark(t *testing.T) {
	p, _ := NewKeyPool("t", []string{"k0", "k1", "k2"})
	if !p.Rotate(0) {
		t.Fatal("first rotate should succeed")
	}
	// A second, stale report for the same failed index must not skip the
	// now-active usable key.
	if !p.Rotate(0) {
		t.Fatal("stale rotate should still report availability")
	}
	key, _ := p.Current()
	if key != "k1" {
		t.Fatalf("expected k1 to stay current, got %s", key)
	}
}

func TestKeyPool_Reset(t *testing.T) {
	p, _ := NewKeyPool("t", []string{"k0", "k1"})
	p.Rotate(0)
	p.Rotate(1)
	p.Reset()
	key, idx := p.Current()
	if key != "k0" || idx != 0 {
		t.Fatalf("expected pool back at k0 after reset, got %s/%d", key, idx)
	}
	if !p.Rotate(0) {
		t.Fatal("rotation should work again after reset")
	}
}
