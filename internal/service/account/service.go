// Package account implements the ledger rules: who may open an account,
// which account numbers are acceptable, and how balances move.
// Every operation validates before touching the store, so a failed call
// leaves all state as it was.
package account

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/govalues/money"
	"github.com/tinoosan/bank/internal/errs"
	"github.com/tinoosan/bank/internal/ledger"
)

// Repo is the read side of a ledger store.
type Repo interface {
	GetAccount(ctx context.Context, id ledger.AccountID) (ledger.Account, error)
	ListAccounts(ctx context.Context) ([]ledger.Account, error)
	// LookupUser returns the account bound to username (zero when unassigned)
	// and whether the username is registered at all.
	LookupUser(ctx context.Context, username string) (ledger.AccountID, bool, error)
}

// Writer is the write side of a ledger store. Implementations must apply each
// call atomically.
type Writer interface {
	// CreateAccount appends a zero-balance account and binds username to it.
	// It fails with errs.ErrDuplicateAccount if the id already exists.
	CreateAccount(ctx context.Context, username string, a ledger.Account) (ledger.Account, error)
	// Credit adds minor units to the balance.
	Credit(ctx context.Context, id ledger.AccountID, minor int64) (ledger.Account, error)
	// Debit subtracts minor units, failing with errs.ErrInsufficientFunds
	// rather than going negative.
	Debit(ctx context.Context, id ledger.AccountID, minor int64) (ledger.Account, error)
}

// Seeder loads the initial accounts and registry into a store.
type Seeder interface {
	Seed(ctx context.Context, s ledger.Seed) error
}

type Service interface {
	OpenAccount(ctx context.Context, username string, age int, id ledger.AccountID) (ledger.Account, error)
	Deposit(ctx context.Context, id ledger.AccountID, amount money.Amount) (ledger.Account, error)
	Withdraw(ctx context.Context, id ledger.AccountID, amount money.Amount) (ledger.Account, error)
	CheckBalance(ctx context.Context, id ledger.AccountID) (money.Amount, error)
	AccountFor(ctx context.Context, username string) (ledger.AccountID, error)
	List(ctx context.Context) ([]ledger.Account, error)
	Currency() string
}

type service struct {
	repo     Repo
	writer   Writer
	currency string
	log      *slog.Logger
}

// New builds the ledger service over a store. currency is the single currency
// every balance and amount is held in.
func New(repo Repo, writer Writer, currency string, logger *slog.Logger) Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &service{repo: repo, writer: writer, currency: strings.ToUpper(currency), log: logger}
}

func (s *service) Currency() string { return s.currency }

// OpenAccount creates a zero-balance account for a pre-registered username.
// The age rule is checked first; then username, account number and uniqueness.
// A username that already owns an account is rebound to the new one.
func (s *service) OpenAccount(ctx context.Context, username string, age int, id ledger.AccountID) (acc ledger.Account, err error) {
	defer func() { observe("open_account", err) }()
	if age < ledger.MinAge {
		return ledger.Account{}, fmt.Errorf("%w: age %d, must be %d or above", errs.ErrUnderage, age, ledger.MinAge)
	}
	prev, ok, err := s.repo.LookupUser(ctx, username)
	if err != nil {
		return ledger.Account{}, err
	}
	if !ok {
		return ledger.Account{}, fmt.Errorf("%w: %q", errs.ErrUnknownUser, username)
	}
	if !id.Valid() {
		return ledger.Account{}, fmt.Errorf("%w: %d is not a 10-digit number", errs.ErrInvalidAccountID, id)
	}
	acc, err = s.writer.CreateAccount(ctx, username, ledger.Account{ID: id, Balance: ledger.NewBalance(s.currency, 0)})
	if err != nil {
		return ledger.Account{}, err
	}
	if prev != 0 && prev != id {
		// Rebinding is allowed; the previous account stays reachable by id only.
		s.log.Warn("username rebound to new account", "username", username, "previous_account_id", prev.String(), "account_id", id.String())
	}
	s.log.Info("account opened", "username", username, "account_id", id.String())
	return acc, nil
}

func (s *service) Deposit(ctx context.Context, id ledger.AccountID, amount money.Amount) (acc ledger.Account, err error) {
	defer func() { observe("deposit", err) }()
	minor, err := s.minorUnits(amount)
	if err != nil {
		return ledger.Account{}, err
	}
	return s.writer.Credit(ctx, id, minor)
}

func (s *service) Withdraw(ctx context.Context, id ledger.AccountID, amount money.Amount) (acc ledger.Account, err error) {
	defer func() { observe("withdraw", err) }()
	minor, err := s.minorUnits(amount)
	if err != nil {
		return ledger.Account{}, err
	}
	return s.writer.Debit(ctx, id, minor)
}

func (s *service) CheckBalance(ctx context.Context, id ledger.AccountID) (bal money.Amount, err error) {
	defer func() { observe("check_balance", err) }()
	acc, err := s.repo.GetAccount(ctx, id)
	if err != nil {
		return money.Amount{}, err
	}
	return acc.Balance, nil
}

// AccountFor resolves the account currently bound to username.
func (s *service) AccountFor(ctx context.Context, username string) (ledger.AccountID, error) {
	id, ok, err := s.repo.LookupUser(ctx, username)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, fmt.Errorf("%w: %q", errs.ErrUnknownUser, username)
	}
	if id == 0 {
		return 0, fmt.Errorf("%w: %q has no account", errs.ErrAccountNotFound, username)
	}
	return id, nil
}

func (s *service) List(ctx context.Context) ([]ledger.Account, error) {
	return s.repo.ListAccounts(ctx)
}

// minorUnits converts a positive amount in the ledger currency to minor units.
// Amounts finer than the currency's minor unit are rejected instead of rounded.
func (s *service) minorUnits(amount money.Amount) (int64, error) {
	if !amount.IsPos() {
		return 0, fmt.Errorf("%w: amount must be > 0", errs.ErrInvalidAmount)
	}
	if code := amount.Curr().Code(); code != s.currency {
		return 0, fmt.Errorf("%w: currency %s, ledger holds %s", errs.ErrInvalidAmount, code, s.currency)
	}
	if c, err := amount.Cmp(amount.Round(amount.Curr().Scale())); err != nil || c != 0 {
		return 0, fmt.Errorf("%w: amount has more precision than %s allows", errs.ErrInvalidAmount, s.currency)
	}
	minor, ok := amount.MinorUnits()
	if !ok || minor <= 0 {
		return 0, fmt.Errorf("%w: amount out of range", errs.ErrInvalidAmount)
	}
	return minor, nil
}
