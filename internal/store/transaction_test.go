package store

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/efreitasn/tradesim/internal/domain"
)

func newTestEntry(id, accountID string, executedAt time.Time) domain.LedgerEntry {
	return domain.LedgerEntry{
		EntryID:    id,
		AccountID:  accountID,
		Symbol:     "AAPL",
		Side:       domain.OrderSideBuy,
		Quantity:   10,
		ExecutedAt: executedAt,
	}
}

func TestTransactionStore_Append_and_List(t *testing.T) {
	s := NewTransactionStore()
	ctx := context.Background()
	now := time.Now()

	_ = s.Append(ctx, newTestEntry("e-1", "acc-1", now))
	_ = s.Append(ctx, newTestEntry("e-2", "acc-1", now.Add(time.Second)))
	_ = s.Append(ctx, newTestEntry("e-3", "acc-2", now))

	entries, err := s.ListByAccount(ctx, "acc-1")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].EntryID != "e-1" || entries[1].EntryID != "e-2" {
		t.Fatalf("expected chronological order, got %s, %s", entries[0].EntryID, entries[1].EntryID)
	}
}

func TestTransactionStore_List_Empty(t *testing.T) {
	s := NewTransactionStore()

	entries, _ := s.ListByAccount(context.Background(), "nobody")
	if entries == nil {
		t.Fatal("expected non-nil empty slice, got nil")
	}
	if len(entries) != 0 {
		t.Fatalf("expected 0 entries, got %d", len(entries))
	}
}

func TestTransactionStore_List_ReturnsCopy(t *testing.T) {
	s := NewTransactionStore()
	ctx := context.Background()
	_ = s.Append(ctx, newTestEntry("e-1", "acc-1", time.Now()))

	entries, _ := s.ListByAccount(ctx, "acc-1")
	entries[0].EntryID = "tampered"

	again, _ := s.ListByAccount(ctx, "acc-1")
	if again[0].EntryID != "e-1" {
		t.Fatalf("internal slice was mutated: %s", again[0].EntryID)
	}
}

func TestTransactionStore_ConcurrentAppend(t *testing.T) {
	s := NewTransactionStore()
	ctx := context.Background()
	var wg sync.WaitGroup

	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_ = s.Append(ctx, newTestEntry(fmt.Sprintf("e-%d", i), "acc-1", time.Now()))
		}(i)
	}
	wg.Wait()

	entries, _ := s.ListByAccount(ctx, "acc-1")
	if len(entries) != 100 {
		t.Fatalf("expected 100 entries, got %d", len(entries))
	}
}
