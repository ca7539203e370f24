package cache

import (
	"context"
	"errors"
	"testing"
	"time"
)

type payload struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}

func TestMemorySetGet(t *testing.T) {
	m := NewMemory(time.Minute)
	defer m.Close()
	ctx := context.Background()

	if err := m.Set(ctx, "k", payload{Name: "close", Value: 1.5}, time.Minute); err != nil {
		t.Fatalf("set: %v", err)
	}

	var got payload
	if err := m.Get(ctx, "k", &got); err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Name != "close" || got.Value != 1.5 {
		t.Fatalf("unexpected value %+v", got)
	}
}

func TestMemoryMiss(t *testing.T) {
	m := NewMemory(time.Minute)
	defer m.Close()

	var got payload
	err := m.Get(context.Background(), "absent", &got)
	if !errors.Is(err, ErrCacheMiss) {
		t.Fatalf("expected ErrCacheMiss, got %v", err)
	}
}

func TestMemoryExpiry(t *testing.T) {
	m := NewMemory(time.Minute)
	defer m.Close()
	ctx := context.Background()

	if err := m.Set(ctx, "k", payload{}, time.Nanosecond); err != nil {
		t.Fatalf("set: %v", err)
	}
	time.Sleep(5 * time.Millisecond)

	var got payload
	if err := m.Get(ctx, "k", &got); !errors.Is(err, ErrCacheMiss) {
		t.Fatalf("expected expiry miss, got %v", err)
	}
}

func TestMemoryDelete(t *testing.T) {
	m := NewMemory(time.Minute)
	defer m.Close()
	ctx := context.Background()

	if err := m.Set(ctx, "k", payload{}, time.Minute); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := m.Delete(ctx, "k"); err != nil {
		t.Fatalf("delete: %v", err)
	}

	var got payload
	if err := m.Get(ctx, "k", &got); !errors.Is(err, ErrCacheMiss) {
		t.Fatalf("expected miss after delete, got %v", err)
	}
}

func TestLayeredBackfillsLocal(t *testing.T) {
	local := NewMemory(time.Minute)
	shared := NewMemory(time.Minute)
	defer local.Close()
	defer shared.Close()

	layered := NewLayered(local, shared)
	ctx := context.Background()

	// Seed only the shared layer, as another instance would.
	if err := shared.Set(ctx, "k", payload{Name: "x", Value: 2}, time.Minute); err != nil {
		t.Fatalf("set: %v", err)
	}

	var got payload
	if err := layered.Get(ctx, "k", &got); err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Value != 2 {
		t.Fatalf("unexpected value %+v", got)
	}

	// The read-through populates the local layer.
	var local2 payload
	if err := local.Get(ctx, "k", &local2); err != nil {
		t.Fatalf("local get after backfill: %v", err)
	}
}
