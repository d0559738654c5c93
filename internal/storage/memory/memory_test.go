package memory

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/tinoosan/bank/internal/errs"
	"github.com/tinoosan/bank/internal/ledger"
)

func seeded(t *testing.T) *Store {
	t.Helper()
	s := New("gbp")
	err := s.Seed(context.Background(), ledger.Seed{
		Accounts: []ledger.SeedAccount{
			{ID: 1234567890, BalanceMinor: 3448},
			{ID: 1234567891, BalanceMinor: 2424},
		},
		Usernames: ledger.Registry{"user1": 0, "user2": 1234567891},
	})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	return s
}

func minor(t *testing.T, a ledger.Account) int64 {
	t.Helper()
	m, ok := a.Balance.MinorUnits()
	if !ok {
		t.Fatalf("minor units of %v", a.Balance)
	}
	return m
}

func TestSeedAndList(t *testing.T) {
	s := seeded(t)
	ctx := context.Background()
	accs, err := s.ListAccounts(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(accs) != 2 || accs[0].ID != 1234567890 || accs[1].ID != 1234567891 {
		t.Fatalf("unexpected order: %+v", accs)
	}
	if minor(t, accs[0]) != 3448 || accs[0].Balance.Curr().Code() != "GBP" {
		t.Fatalf("unexpected balance: %v", accs[0].Balance)
	}
	id, ok, _ := s.LookupUser(ctx, "user2")
	if !ok || id != 1234567891 {
		t.Fatalf("lookup user2: %d %v", id, ok)
	}
	if _, ok, _ := s.LookupUser(ctx, "nobody"); ok {
		t.Fatalf("nobody should not be registered")
	}
}

func TestSeedRejectsExistingID(t *testing.T) {
	s := seeded(t)
	err := s.Seed(context.Background(), ledger.Seed{Accounts: []ledger.SeedAccount{{ID: 1111111111}, {ID: 1234567890}}})
	if !errors.Is(err, errs.ErrDuplicateAccount) {
		t.Fatalf("want ErrDuplicateAccount, got %v", err)
	}
	// nothing from the failed seed is applied
	if _, err := s.GetAccount(context.Background(), 1111111111); !errors.Is(err, errs.ErrAccountNotFound) {
		t.Fatalf("partial seed applied: %v", err)
	}
}

func TestReseedKeepsBinding(t *testing.T) {
	s := seeded(t)
	ctx := context.Background()
	if _, err := s.CreateAccount(ctx, "user1", ledger.Account{ID: 1234567892}); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := s.Seed(ctx, ledger.Seed{Usernames: ledger.Registry{"user1": 0, "user3": 0}}); err != nil {
		t.Fatalf("reseed: %v", err)
	}
	if id, ok, _ := s.LookupUser(ctx, "user1"); !ok || id != 1234567892 {
		t.Fatalf("user1 binding lost: %d %v", id, ok)
	}
	if id, ok, _ := s.LookupUser(ctx, "user3"); !ok || id != 0 {
		t.Fatalf("user3: %d %v", id, ok)
	}
}

func TestCreateAccountBindsUsername(t *testing.T) {
	s := seeded(t)
	ctx := context.Background()
	acc, err := s.CreateAccount(ctx, "user1", ledger.Account{ID: 1234567892})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if acc.ID != 1234567892 || minor(t, acc) != 0 {
		t.Fatalf("unexpected account: %+v", acc)
	}
	if id, _, _ := s.LookupUser(ctx, "user1"); id != 1234567892 {
		t.Fatalf("user1 bound to %d", id)
	}
	if _, err := s.CreateAccount(ctx, "user1", ledger.Account{ID: 1234567892}); !errors.Is(err, errs.ErrDuplicateAccount) {
		t.Fatalf("want ErrDuplicateAccount, got %v", err)
	}
	if _, err := s.CreateAccount(ctx, "user9", ledger.Account{ID: 1234567899}); !errors.Is(err, errs.ErrUnknownUser) {
		t.Fatalf("want ErrUnknownUser, got %v", err)
	}
	if got := s.Usernames()["user1"]; got != 1234567892 {
		t.Fatalf("registry copy: %d", got)
	}
}

func TestCreditDebit(t *testing.T) {
	s := seeded(t)
	ctx := context.Background()
	acc, err := s.Credit(ctx, 1234567890, 200)
	if err != nil || minor(t, acc) != 3648 {
		t.Fatalf("credit: %+v %v", acc, err)
	}
	if _, err := s.Debit(ctx, 1234567890, 5000); !errors.Is(err, errs.ErrInsufficientFunds) {
		t.Fatalf("want ErrInsufficientFunds, got %v", err)
	}
	acc, _ = s.GetAccount(ctx, 1234567890)
	if minor(t, acc) != 3648 {
		t.Fatalf("balance changed after failed debit: %v", acc.Balance)
	}
	if _, err := s.Credit(ctx, 9999999999, 1); !errors.Is(err, errs.ErrAccountNotFound) {
		t.Fatalf("want ErrAccountNotFound, got %v", err)
	}
	if _, err := s.Debit(ctx, 9999999999, 1); !errors.Is(err, errs.ErrAccountNotFound) {
		t.Fatalf("want ErrAccountNotFound, got %v", err)
	}
}

func TestConcurrentCredits(t *testing.T) {
	s := seeded(t)
	ctx := context.Background()
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := s.Credit(ctx, 1234567891, 10); err != nil {
				t.Errorf("credit: %v", err)
			}
		}()
	}
	wg.Wait()
	acc, _ := s.GetAccount(ctx, 1234567891)
	if minor(t, acc) != 2424+1000 {
		t.Fatalf("lost updates: %v", acc.Balance)
	}
}

func TestReset(t *testing.T) {
	s := seeded(t)
	s.Reset()
	accs, _ := s.ListAccounts(context.Background())
	if len(accs) != 0 || len(s.Usernames()) != 0 {
		t.Fatalf("reset left state: %d accounts", len(accs))
	}
}
