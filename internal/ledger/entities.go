package ledger

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/govalues/money"
	"github.com/tinoosan/bank/internal/errs"
)

const (
	// MinAccountID and MaxAccountID bound the ten-digit account number range.
	MinAccountID AccountID = 1_000_000_000
	MaxAccountID AccountID = 9_999_999_999

	// MinAge is the youngest age allowed to open an account.
	MinAge = 18
)

// AccountID is the numeric account number. Zero means "no account".
type AccountID int64

// Valid reports whether id has exactly ten decimal digits.
func (id AccountID) Valid() bool { return id >= MinAccountID && id <= MaxAccountID }

func (id AccountID) String() string { return strconv.FormatInt(int64(id), 10) }

// ParseAccountID parses a decimal account number. It only checks the syntax;
// use Valid to check the ten-digit rule.
func ParseAccountID(s string) (AccountID, error) {
	if s == "" {
		return 0, fmt.Errorf("%w: empty", errs.ErrInvalidAccountID)
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return 0, fmt.Errorf("%w: %q is not numeric", errs.ErrInvalidAccountID, s)
		}
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", errs.ErrInvalidAccountID, s)
	}
	return AccountID(n), nil
}

// Account is a balance-holding record keyed by its account number.
type Account struct {
	ID      AccountID
	Balance money.Amount
}

// Registry maps pre-registered usernames to the account bound to them.
// A zero AccountID marks a verified username with no account yet.
type Registry map[string]AccountID

// Usernames builds a registry where every username is still unassigned.
func Usernames(names ...string) Registry {
	r := make(Registry, len(names))
	for _, n := range names {
		r[n] = 0
	}
	return r
}

// Has reports whether username is pre-registered.
func (r Registry) Has(username string) bool { _, ok := r[username]; return ok }

// Clone returns an independent copy.
func (r Registry) Clone() Registry {
	out := make(Registry, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// UnmarshalJSON accepts either a list of usernames or a username -> account id object.
func (r *Registry) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*r = Registry{}
		return nil
	}
	switch b[0] {
	case '[':
		var names []string
		if err := json.Unmarshal(b, &names); err != nil {
			return err
		}
		*r = Usernames(names...)
		return nil
	case '{':
		var m map[string]AccountID
		if err := json.Unmarshal(b, &m); err != nil {
			return err
		}
		*r = Registry(m)
		return nil
	default:
		return errors.New("usernames must be a list or an object")
	}
}

// SeedAccount is an initial account record as supplied from outside the ledger.
type SeedAccount struct {
	ID           AccountID `json:"id"`
	BalanceMinor int64     `json:"balance_minor"`
}

// Seed carries the two construction inputs of a ledger: the initial accounts
// (kept in order) and the username registry.
type Seed struct {
	Accounts  []SeedAccount `json:"accounts"`
	Usernames Registry      `json:"usernames"`
}

// Validate checks ids and balances. Duplicate ids are reported as ErrDuplicateAccount.
func (s Seed) Validate() error {
	seen := make(map[AccountID]struct{}, len(s.Accounts))
	for i, a := range s.Accounts {
		if !a.ID.Valid() {
			return fmt.Errorf("%w: accounts[%d] id %d", errs.ErrInvalidAccountID, i, a.ID)
		}
		if a.BalanceMinor < 0 {
			return fmt.Errorf("%w: accounts[%d] negative balance", errs.ErrInvalidAmount, i)
		}
		if _, ok := seen[a.ID]; ok {
			return fmt.Errorf("%w: accounts[%d] id %d", errs.ErrDuplicateAccount, i, a.ID)
		}
		seen[a.ID] = struct{}{}
	}
	for name, id := range s.Usernames {
		if name == "" {
			return fmt.Errorf("%w: empty username", errs.ErrUnknownUser)
		}
		if id != 0 && !id.Valid() {
			return fmt.Errorf("%w: username %q bound to %d", errs.ErrInvalidAccountID, name, id)
		}
	}
	return nil
}

// NewBalance builds an amount from minor units in the given currency.
func NewBalance(currency string, minor int64) money.Amount {
	amt, _ := money.NewAmountFromMinorUnits(currency, minor)
	return amt
}
