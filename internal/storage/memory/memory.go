// Package memory provides the default in-memory ledger store.
// Accounts keep insertion order; an id index replaces the linear scan.
package memory

import (
	"context"
	"fmt"
	"math"
	"strings"
	"sync"

	"github.com/tinoosan/bank/internal/errs"
	"github.com/tinoosan/bank/internal/ledger"
)

// record is the stored form of an account: balance in minor units.
type record struct {
	ID    ledger.AccountID
	Minor int64
}

// Store holds accounts and the username registry behind one RWMutex, which
// serialises every mutation.
type Store struct {
	mu       sync.RWMutex
	currency string
	accounts []*record
	index    map[ledger.AccountID]int
	users    ledger.Registry
}

// New constructs an empty store whose balances are held in currency.
func New(currency string) *Store {
	return &Store{
		currency: strings.ToUpper(currency),
		index:    make(map[ledger.AccountID]int),
		users:    ledger.Registry{},
	}
}

// Seed loads initial accounts (in order) and usernames. It fails without
// changing anything if the seed is invalid or an id already exists. An
// unassigned username in the seed keeps any binding it already has.
func (s *Store) Seed(_ context.Context, seed ledger.Seed) error {
	if err := seed.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range seed.Accounts {
		if _, ok := s.index[a.ID]; ok {
			return fmt.Errorf("%w: %d", errs.ErrDuplicateAccount, a.ID)
		}
	}
	for _, a := range seed.Accounts {
		s.appendLocked(a.ID, a.BalanceMinor)
	}
	for name, id := range seed.Usernames {
		if _, ok := s.users[name]; ok && id == 0 {
			continue
		}
		s.users[name] = id
	}
	return nil
}

// Reset drops all accounts and usernames.
func (s *Store) Reset() {
	s.mu.Lock()
	s.accounts = nil
	s.index = map[ledger.AccountID]int{}
	s.users = ledger.Registry{}
	s.mu.Unlock()
}

// GetAccount returns the account with the given id.
func (s *Store) GetAccount(_ context.Context, id ledger.AccountID) (ledger.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.findLocked(id)
	if !ok {
		return ledger.Account{}, fmt.Errorf("%w: %d", errs.ErrAccountNotFound, id)
	}
	return s.toAccount(r), nil
}

// ListAccounts returns all accounts in insertion order.
func (s *Store) ListAccounts(_ context.Context) ([]ledger.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]ledger.Account, 0, len(s.accounts))
	for _, r := range s.accounts {
		out = append(out, s.toAccount(r))
	}
	return out, nil
}

// LookupUser implements account.Repo.
func (s *Store) LookupUser(_ context.Context, username string) (ledger.AccountID, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.users[username]
	return id, ok, nil
}

// Usernames returns a copy of the registry.
func (s *Store) Usernames() ledger.Registry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.users.Clone()
}

// CreateAccount implements account.Writer.
func (s *Store) CreateAccount(_ context.Context, username string, a ledger.Account) (ledger.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[username]; !ok {
		return ledger.Account{}, fmt.Errorf("%w: %q", errs.ErrUnknownUser, username)
	}
	if _, ok := s.index[a.ID]; ok {
		return ledger.Account{}, fmt.Errorf("%w: %d", errs.ErrDuplicateAccount, a.ID)
	}
	r := s.appendLocked(a.ID, 0)
	s.users[username] = a.ID
	return s.toAccount(r), nil
}

// Credit implements account.Writer.
func (s *Store) Credit(_ context.Context, id ledger.AccountID, minor int64) (ledger.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.findLocked(id)
	if !ok {
		return ledger.Account{}, fmt.Errorf("%w: %d", errs.ErrAccountNotFound, id)
	}
	if minor > math.MaxInt64-r.Minor {
		return ledger.Account{}, fmt.Errorf("%w: balance overflow", errs.ErrInvalidAmount)
	}
	r.Minor += minor
	return s.toAccount(r), nil
}

// Debit implements account.Writer.
func (s *Store) Debit(_ context.Context, id ledger.AccountID, minor int64) (ledger.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.findLocked(id)
	if !ok {
		return ledger.Account{}, fmt.Errorf("%w: %d", errs.ErrAccountNotFound, id)
	}
	if r.Minor < minor {
		return ledger.Account{}, errs.ErrInsufficientFunds
	}
	r.Minor -= minor
	return s.toAccount(r), nil
}

// Caller must hold s.mu.
func (s *Store) findLocked(id ledger.AccountID) (*record, bool) {
	i, ok := s.index[id]
	if !ok {
		return nil, false
	}
	return s.accounts[i], true
}

// Caller must hold s.mu (write lock).
func (s *Store) appendLocked(id ledger.AccountID, minor int64) *record {
	r := &record{ID: id, Minor: minor}
	s.index[id] = len(s.accounts)
	s.accounts = append(s.accounts, r)
	return r
}

func (s *Store) toAccount(r *record) ledger.Account {
	return ledger.Account{ID: r.ID, Balance: ledger.NewBalance(s.currency, r.Minor)}
}
