// Package postgres provides a pgx-backed ledger store with the same Repo and
// Writer surface as the in-memory store. The schema lives in db/migrations.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tinoosan/bank/internal/errs"
	"github.com/tinoosan/bank/internal/ledger"
)

// Store holds a pgx connection pool. All methods are safe for concurrent use.
type Store struct {
	pool     *pgxpool.Pool
	currency string
}

// Open establishes a pgx pool using the provided connection string. Balances
// are reported in currency.
func Open(ctx context.Context, dsn, currency string) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, err
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return &Store{pool: pool, currency: strings.ToUpper(currency)}, nil
}

// Close releases the underlying pool.
func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// Ready pings the pool to verify connectivity.
func (s *Store) Ready(ctx context.Context) error { return s.pool.Ping(ctx) }

// Seed inserts the initial accounts in order and upserts the usernames in one
// transaction. An id that already exists fails the whole seed. An unassigned
// username in the seed keeps any binding it already has.
func (s *Store) Seed(ctx context.Context, seed ledger.Seed) error {
	if err := seed.Validate(); err != nil {
		return err
	}
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()
	for _, a := range seed.Accounts {
		ct, err := tx.Exec(ctx, `
            insert into accounts (id, balance_minor, currency)
            values ($1, $2, $3)
            on conflict (id) do nothing
        `, int64(a.ID), a.BalanceMinor, s.currency)
		if err != nil {
			return fmt.Errorf("seed account %d: %w", a.ID, err)
		}
		if ct.RowsAffected() == 0 {
			return fmt.Errorf("%w: %d", errs.ErrDuplicateAccount, a.ID)
		}
	}
	for name, id := range seed.Usernames {
		if _, err := tx.Exec(ctx, `
            insert into usernames (username, account_id)
            values ($1, $2)
            on conflict (username) do update set account_id = coalesce(excluded.account_id, usernames.account_id)
        `, name, nullableID(id)); err != nil {
			return fmt.Errorf("seed username %q: %w", name, err)
		}
	}
	return tx.Commit(ctx)
}

// --- Reads ---

// GetAccount fetches a single account by id.
func (s *Store) GetAccount(ctx context.Context, id ledger.AccountID) (ledger.Account, error) {
	var minor int64
	var currency string
	err := s.pool.QueryRow(ctx, `
        select balance_minor, currency from accounts where id = $1
    `, int64(id)).Scan(&minor, &currency)
	if errors.Is(err, pgx.ErrNoRows) {
		return ledger.Account{}, fmt.Errorf("%w: %d", errs.ErrAccountNotFound, id)
	}
	if err != nil {
		return ledger.Account{}, err
	}
	return ledger.Account{ID: id, Balance: ledger.NewBalance(currency, minor)}, nil
}

// ListAccounts returns all accounts in insertion order.
func (s *Store) ListAccounts(ctx context.Context) ([]ledger.Account, error) {
	rows, err := s.pool.Query(ctx, `
        select id, balance_minor, currency
        from accounts
        order by position asc
    `)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]ledger.Account, 0)
	for rows.Next() {
		var id, minor int64
		var currency string
		if err := rows.Scan(&id, &minor, &currency); err != nil {
			return nil, err
		}
		out = append(out, ledger.Account{ID: ledger.AccountID(id), Balance: ledger.NewBalance(currency, minor)})
	}
	return out, rows.Err()
}

// LookupUser returns the account bound to username and whether it is registered.
func (s *Store) LookupUser(ctx context.Context, username string) (ledger.AccountID, bool, error) {
	var id *int64
	err := s.pool.QueryRow(ctx, `
        select account_id from usernames where username = $1
    `, username).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	if id == nil {
		return 0, true, nil
	}
	return ledger.AccountID(*id), true, nil
}

// --- Writes ---

// CreateAccount inserts a zero-balance account and binds username to it in
// one transaction.
func (s *Store) CreateAccount(ctx context.Context, username string, a ledger.Account) (ledger.Account, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return ledger.Account{}, err
	}
	defer func() { _ = tx.Rollback(ctx) }()
	ct, err := tx.Exec(ctx, `
        insert into accounts (id, balance_minor, currency)
        values ($1, 0, $2)
        on conflict (id) do nothing
    `, int64(a.ID), s.currency)
	if err != nil {
		return ledger.Account{}, err
	}
	if ct.RowsAffected() == 0 {
		return ledger.Account{}, fmt.Errorf("%w: %d", errs.ErrDuplicateAccount, a.ID)
	}
	ct, err = tx.Exec(ctx, `
        update usernames set account_id = $1 where username = $2
    `, int64(a.ID), username)
	if err != nil {
		return ledger.Account{}, err
	}
	if ct.RowsAffected() == 0 {
		return ledger.Account{}, fmt.Errorf("%w: %q", errs.ErrUnknownUser, username)
	}
	if err := tx.Commit(ctx); err != nil {
		return ledger.Account{}, err
	}
	return ledger.Account{ID: a.ID, Balance: ledger.NewBalance(s.currency, 0)}, nil
}

// Credit adds minor units to an account balance.
func (s *Store) Credit(ctx context.Context, id ledger.AccountID, minor int64) (ledger.Account, error) {
	var balance int64
	var currency string
	err := s.pool.QueryRow(ctx, `
        update accounts set balance_minor = balance_minor + $1
        where id = $2
        returning balance_minor, currency
    `, minor, int64(id)).Scan(&balance, &currency)
	if errors.Is(err, pgx.ErrNoRows) {
		return ledger.Account{}, fmt.Errorf("%w: %d", errs.ErrAccountNotFound, id)
	}
	if isOutOfRange(err) {
		return ledger.Account{}, fmt.Errorf("%w: balance overflow", errs.ErrInvalidAmount)
	}
	if err != nil {
		return ledger.Account{}, err
	}
	return ledger.Account{ID: id, Balance: ledger.NewBalance(currency, balance)}, nil
}

// Debit subtracts minor units under a row lock so the balance never goes negative.
func (s *Store) Debit(ctx context.Context, id ledger.AccountID, minor int64) (ledger.Account, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return ledger.Account{}, err
	}
	defer func() { _ = tx.Rollback(ctx) }()
	var balance int64
	var currency string
	err = tx.QueryRow(ctx, `
        select balance_minor, currency from accounts where id = $1 for update
    `, int64(id)).Scan(&balance, &currency)
	if errors.Is(err, pgx.ErrNoRows) {
		return ledger.Account{}, fmt.Errorf("%w: %d", errs.ErrAccountNotFound, id)
	}
	if err != nil {
		return ledger.Account{}, err
	}
	if balance < minor {
		return ledger.Account{}, errs.ErrInsufficientFunds
	}
	if _, err := tx.Exec(ctx, `
        update accounts set balance_minor = balance_minor - $1 where id = $2
    `, minor, int64(id)); err != nil {
		return ledger.Account{}, err
	}
	if err := tx.Commit(ctx); err != nil {
		return ledger.Account{}, err
	}
	return ledger.Account{ID: id, Balance: ledger.NewBalance(currency, balance-minor)}, nil
}

func nullableID(id ledger.AccountID) *int64 {
	if id == 0 {
		return nil
	}
	v := int64(id)
	return &v
}

// isOutOfRange reports a bigint overflow (SQLSTATE 22003).
func isOutOfRange(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "22003"
}
