package memory_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/terraskye/fmodel"
	"github.com/terraskye/fmodel/fixtures"
	"github.com/terraskye/fmodel/memory"
)

func newRepository() *memory.EventRepository[fixtures.OrderCommand, fixtures.OrderEvent] {
	return memory.NewEventRepository[fixtures.OrderCommand, fixtures.OrderEvent]()
}

func ptr(v uint64) *uint64 { return &v }

func created(id uint32) fixtures.OrderEvent {
	return fixtures.OrderCreated{OrderID: id, CustomerName: "John Doe", Items: []string{"Item 1"}}
}

func updated(id uint32, items ...string) fixtures.OrderEvent {
	return fixtures.OrderUpdated{OrderID: id, UpdatedItems: items}
}

// Save Tests

func TestSave_EmptySlice(t *testing.T) {
	repo := newRepository()

	saved, err := repo.Save(context.Background(), nil, ptr(3))
	if err != nil {
		t.Errorf("expected no error, got %v", err)
	}
	if len(saved) != 0 {
		t.Errorf("expected no saved events, got %d", len(saved))
	}
	if got := repo.LoadFromAll(0); len(got) != 0 {
		t.Errorf("expected empty log, got %d events", len(got))
	}
}

func TestSave_NewStream_StartsAtZero(t *testing.T) {
	repo := newRepository()

	saved, err := repo.Save(context.Background(), []fixtures.OrderEvent{created(1), updated(1, "Item 2")}, nil)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(saved) != 2 {
		t.Fatalf("expected 2 events, got %d", len(saved))
	}
	for i, ev := range saved {
		if ev.Version != uint64(i) {
			t.Errorf("event %d: expected version %d, got %d", i, i, ev.Version)
		}
	}
}

func TestSave_StreamExists_Success(t *testing.T) {
	repo := newRepository()
	ctx := context.Background()

	if _, err := repo.Save(ctx, []fixtures.OrderEvent{created(1)}, nil); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	saved, err := repo.Save(ctx, []fixtures.OrderEvent{updated(1, "Item 2")}, ptr(0))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if saved[0].Version != 1 {
		t.Errorf("expected version 1, got %d", saved[0].Version)
	}
}

func TestSave_NoStream_FailsWhenStreamExists(t *testing.T) {
	repo := newRepository()
	ctx := context.Background()

	_, _ = repo.Save(ctx, []fixtures.OrderEvent{created(1)}, nil)
	_, err := repo.Save(ctx, []fixtures.OrderEvent{created(1)}, nil)

	if !errors.Is(err, fmodel.ErrConcurrencyConflict) {
		t.Fatalf("expected concurrency conflict, got %v", err)
	}
	var conflict *fmodel.VersionConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("expected *VersionConflictError, got %T", err)
	}
	if conflict.Stream != "order-1" || conflict.Expected != nil || conflict.Actual != uint64(0) {
		t.Errorf("unexpected conflict details: %+v", conflict)
	}
}

func TestSave_StreamExists_FailsWhenNoStream(t *testing.T) {
	repo := newRepository()

	_, err := repo.Save(context.Background(), []fixtures.OrderEvent{updated(1)}, ptr(0))
	if !errors.Is(err, fmodel.ErrConcurrencyConflict) {
		t.Errorf("expected concurrency conflict, got %v", err)
	}
}

func TestSave_Revision_Conflict(t *testing.T) {
	repo := newRepository()
	ctx := context.Background()

	_, _ = repo.Save(ctx, []fixtures.OrderEvent{created(1), updated(1, "Item 2")}, nil)

	_, err := repo.Save(ctx, []fixtures.OrderEvent{updated(1, "Item 3")}, ptr(0))
	if !errors.Is(err, fmodel.ErrConcurrencyConflict) {
		t.Errorf("expected concurrency conflict, got %v", err)
	}

	stream, _ := repo.LoadStream("order-1")
	if len(stream) != 2 {
		t.Errorf("expected stream untouched with 2 events, got %d", len(stream))
	}
}

func TestSave_MixedStreamIDs_Fails(t *testing.T) {
	repo := newRepository()

	_, err := repo.Save(context.Background(), []fixtures.OrderEvent{created(1), created(2)}, nil)
	if err == nil {
		t.Fatal("expected error for mixed stream ids")
	}
	if _, err := repo.LoadStream("order-1"); !errors.Is(err, fmodel.ErrStreamNotFound) {
		t.Errorf("expected nothing stored, got %v", err)
	}
}

func TestSave_ContextCancellation(t *testing.T) {
	repo := newRepository()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := repo.Save(ctx, []fixtures.OrderEvent{created(1)}, nil); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

// Fetch Tests

func TestFetchEvents_ByCommandIdentifier(t *testing.T) {
	repo := newRepository()
	ctx := context.Background()

	_, _ = repo.Save(ctx, []fixtures.OrderEvent{created(1)}, nil)
	_, _ = repo.Save(ctx, []fixtures.OrderEvent{created(2)}, nil)

	events, err := repo.FetchEvents(ctx, fixtures.CancelOrder{OrderID: 2})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	if events[0].Value.Identifier() != "order-2" {
		t.Errorf("expected order-2, got %s", events[0].Value.Identifier())
	}
}

func TestFetchEvents_NoHistory(t *testing.T) {
	events, err := newRepository().FetchEvents(context.Background(), fixtures.CancelOrder{OrderID: 9})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if events == nil || len(events) != 0 {
		t.Errorf("expected empty non-nil slice, got %v", events)
	}
}

// LoadStream / LoadFromAll Tests

func TestLoadStream_Envelopes(t *testing.T) {
	at := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	repo := memory.NewEventRepository[fixtures.OrderCommand, fixtures.OrderEvent](
		memory.WithClock(func() time.Time { return at }),
	)

	_, _ = repo.Save(context.Background(), []fixtures.OrderEvent{created(1), updated(1)}, nil)

	stream, err := repo.LoadStream("order-1")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	for i, env := range stream {
		if env.StreamID != "order-1" {
			t.Errorf("envelope %d: expected stream order-1, got %s", i, env.StreamID)
		}
		if !env.OccurredAt.Equal(at) {
			t.Errorf("envelope %d: expected %v, got %v", i, at, env.OccurredAt)
		}
		if env.Version != uint64(i) {
			t.Errorf("envelope %d: expected version %d, got %d", i, i, env.Version)
		}
	}
	if stream[0].EventID == stream[1].EventID {
		t.Error("expected unique event ids")
	}
}

func TestLoadFromAll_FromPosition(t *testing.T) {
	repo := newRepository()
	ctx := context.Background()

	_, _ = repo.Save(ctx, []fixtures.OrderEvent{created(1)}, nil)
	_, _ = repo.Save(ctx, []fixtures.OrderEvent{created(2)}, nil)
	_, _ = repo.Save(ctx, []fixtures.OrderEvent{updated(1)}, ptr(0))

	all := repo.LoadFromAll(1)
	if len(all) != 2 {
		t.Fatalf("expected 2 events, got %d", len(all))
	}
	if all[0].StreamID != "order-2" || all[1].StreamID != "order-1" {
		t.Errorf("unexpected order: %s, %s", all[0].StreamID, all[1].StreamID)
	}
	if all[1].GlobalVersion != 2 {
		t.Errorf("expected global version 2, got %d", all[1].GlobalVersion)
	}
	if got := repo.LoadFromAll(10); got != nil {
		t.Errorf("expected nil past the end, got %v", got)
	}
}

// Concurrency Tests

func TestConcurrent_SameExpectedVersion(t *testing.T) {
	repo := newRepository()
	ctx := context.Background()
	_, _ = repo.Save(ctx, []fixtures.OrderEvent{created(1)}, nil)

	const writers = 10
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
		conflicts int
	)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := repo.Save(ctx, []fixtures.OrderEvent{updated(1, "Item")}, ptr(0))
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				succeeded++
			case errors.Is(err, fmodel.ErrConcurrencyConflict):
				conflicts++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	if succeeded != 1 || conflicts != writers-1 {
		t.Errorf("expected 1 success and %d conflicts, got %d and %d", writers-1, succeeded, conflicts)
	}
}
