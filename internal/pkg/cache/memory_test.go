package cache

import (
	"context"
	"testing"
	"time"
)

func TestMemory_GetSetExpiry(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	if _, err := m.Get(ctx, "missing"); err != Miss {
		t.Fatalf("expected Miss for an unknown key, got %v", err)
	}

	if err := m.Set(ctx, "k", "v", time.Minute); err != nil {
		t.Fatalf("set failed: %v", err)
	}
	got, err := m.Get(ctx, "k")
	if err != nil || got != "v" {
		t.Fatalf("get = (%q, %v), want (v, nil)", got, err)
	}

	if err := m.Set(ctx, "short", "v", time.Nanosecond); err != nil {
		t.Fatalf("set failed: %v", err)
	}
	time.Sleep(2 * time.Millisecond)
	if _, err := m.Get(ctx, "short"); err != Miss {
		t.Fatalf("expected expired key to miss, got %v", err)
	}
}

func TestMemory_DeletePattern(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	keys := []string{
		"proposals:client=:page=1:limit=10:search=:from=:to=",
		"proposals:client=c1:page=1:limit=10:search=:from=:to=",
		"proposal:id=abc",
	}
	for _, k := range keys {
		if err := m.Set(ctx, k, "v", 0); err != nil {
			t.Fatalf("set %q failed: %v", k, err)
		}
	}

	if err := m.DeletePattern(ctx, "proposals:*"); err != nil {
		t.Fatalf("delete pattern failed: %v", err)
	}
	if m.Len() != 1 {
		t.Fatalf("expected only the by-id key to survive, have %d entries", m.Len())
	}
	if _, err := m.Get(ctx, "proposal:id=abc"); err != nil {
		t.Fatalf("by-id key must survive the list invalidation: %v", err)
	}

	if err := m.DeletePattern(ctx, "proposal:id=abc"); err != nil {
		t.Fatalf("exact delete failed: %v", err)
	}
	if m.Len() != 0 {
		t.Fatalf("expected empty cache, have %d entries", m.Len())
	}
}

func TestSafeHelpersTolerateNilAccessor(t *testing.T) {
	ctx := context.Background()

	if _, ok := SafeGet(ctx, nil, "k"); ok {
		t.Fatalf("nil accessor must read as a miss")
	}
	SafeSet(ctx, nil, "k", "v", time.Minute)
	SafeDelPattern(ctx, nil, "k*")
}
