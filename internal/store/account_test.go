package store

import (
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/efreitasn/tradesim/internal/domain"
	"github.com/shopspring/decimal"
)

func newTestAccount(id string, role domain.Role) *domain.Account {
	return &domain.Account{
		AccountID: id,
		Name:      "Test " + id,
		Role:      role,
		KYCStatus: domain.KYCApproved,
		Mode:      domain.AccountModeVirtual,
		Balance:   decimal.NewFromInt(1000),
		Active:    true,
		CreatedAt: time.Now(),
	}
}

func TestAccountStore_Create(t *testing.T) {
	s := NewAccountStore()
	a := newTestAccount("acc-1", domain.RoleRegularUser)

	if err := s.Create(a); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	// Duplicate should fail.
	if err := s.Create(a); err != domain.ErrAccountAlreadyExists {
		t.Fatalf("expected ErrAccountAlreadyExists, got %v", err)
	}
}

func TestAccountStore_Get(t *testing.T) {
	s := NewAccountStore()
	_ = s.Create(newTestAccount("acc-1", domain.RoleRegularUser))

	got, err := s.Get("acc-1")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if got.AccountID != "acc-1" {
		t.Fatalf("expected acc-1, got %s", got.AccountID)
	}

	if _, err := s.Get("nope"); err != domain.ErrAccountNotFound {
		t.Fatalf("expected ErrAccountNotFound, got %v", err)
	}
}

func TestAccountStore_Get_ReturnsCopy(t *testing.T) {
	s := NewAccountStore()
	_ = s.Create(newTestAccount("acc-1", domain.RoleRegularUser))

	got, _ := s.Get("acc-1")
	got.Balance = decimal.Zero

	again, _ := s.Get("acc-1")
	if !again.Balance.Equal(decimal.NewFromInt(1000)) {
		t.Fatalf("mutating a returned account leaked into the store: %s", again.Balance)
	}
}

func TestAccountStore_Update_RollsBackOnError(t *testing.T) {
	s := NewAccountStore()
	_ = s.Create(newTestAccount("acc-1", domain.RoleRegularUser))

	boom := errors.New("boom")
	err := s.Update("acc-1", func(a *domain.Account) error {
		a.Balance = decimal.NewFromInt(5)
		return boom
	})
	if err != boom {
		t.Fatalf("expected boom, got %v", err)
	}
	got, _ := s.Get("acc-1")
	if !got.Balance.Equal(decimal.NewFromInt(1000)) {
		t.Fatalf("failed update changed balance to %s", got.Balance)
	}

	if err := s.Update("nope", func(*domain.Account) error { return nil }); err != domain.ErrAccountNotFound {
		t.Fatalf("expected ErrAccountNotFound, got %v", err)
	}
}

func TestAccountStore_Update_Concurrent(t *testing.T) {
	s := NewAccountStore()
	_ = s.Create(newTestAccount("acc-1", domain.RoleRegularUser))

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = s.Update("acc-1", func(a *domain.Account) error {
				a.Balance = a.Balance.Add(decimal.NewFromInt(1))
				return nil
			})
		}()
	}
	wg.Wait()

	got, _ := s.Get("acc-1")
	if !got.Balance.Equal(decimal.NewFromInt(1100)) {
		t.Fatalf("expected 1100, got %s", got.Balance)
	}
}

func TestAccountStore_ListByRole(t *testing.T) {
	s := NewAccountStore()
	for i := 3; i > 0; i-- {
		_ = s.Create(newTestAccount(fmt.Sprintf("broker-%d", i), domain.RoleBroker))
	}
	_ = s.Create(newTestAccount("user-1", domain.RoleRegularUser))

	brokers := s.ListByRole(domain.RoleBroker)
	if len(brokers) != 3 {
		t.Fatalf("expected 3 brokers, got %d", len(brokers))
	}
	for i, b := range brokers {
		if want := fmt.Sprintf("broker-%d", i+1); b.AccountID != want {
			t.Fatalf("index %d: expected %s, got %s", i, want, b.AccountID)
		}
	}
	if admins := s.ListByRole(domain.RoleAdmin); len(admins) != 0 {
		t.Fatalf("expected no admins, got %d", len(admins))
	}
}
