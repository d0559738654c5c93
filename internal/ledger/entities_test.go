package ledger

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/tinoosan/bank/internal/errs"
)

func TestAccountIDValid(t *testing.T) {
	cases := []struct {
		id   AccountID
		want bool
	}{
		{1234567890, true},
		{MinAccountID, true},
		{MaxAccountID, true},
		{123456789, false},
		{12345678901, false},
		{0, false},
		{-123456789, false},
	}
	for _, c := range cases {
		if got := c.id.Valid(); got != c.want {
			t.Fatalf("Valid(%d)=%v want %v", c.id, got, c.want)
		}
	}
}

func TestParseAccountID(t *testing.T) {
	id, err := ParseAccountID("1234567890")
	if err != nil || id != 1234567890 {
		t.Fatalf("parse: id=%d err=%v", id, err)
	}
	// syntax only: nine digits parse but are not valid
	id, err = ParseAccountID("0123456789")
	if err != nil || id.Valid() {
		t.Fatalf("expected parsed but invalid id, got %d err=%v", id, err)
	}
	for _, in := range []string{"", "12345abcde", "-123456789", "99999999999999999999"} {
		if _, err := ParseAccountID(in); !errors.Is(err, errs.ErrInvalidAccountID) {
			t.Fatalf("ParseAccountID(%q) want ErrInvalidAccountID, got %v", in, err)
		}
	}
}

func TestRegistryJSONForms(t *testing.T) {
	var list Registry
	if err := json.Unmarshal([]byte(`["user1","user2"]`), &list); err != nil {
		t.Fatalf("list form: %v", err)
	}
	if !list.Has("user1") || !list.Has("user2") || list["user1"] != 0 {
		t.Fatalf("unexpected list registry: %+v", list)
	}

	var mapped Registry
	if err := json.Unmarshal([]byte(`{"user1": 1234567890, "user2": 0}`), &mapped); err != nil {
		t.Fatalf("object form: %v", err)
	}
	if mapped["user1"] != 1234567890 || !mapped.Has("user2") || mapped["user2"] != 0 {
		t.Fatalf("unexpected object registry: %+v", mapped)
	}

	var bad Registry
	if err := json.Unmarshal([]byte(`"user1"`), &bad); err == nil {
		t.Fatalf("expected error for scalar registry")
	}
}

func TestReadSeed(t *testing.T) {
	doc := `{"accounts":[{"id":1234567890,"balance_minor":3448},{"id":1234567891,"balance_minor":2424}],"usernames":["user1","user2"]}`
	s, err := ReadSeed(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(s.Accounts) != 2 || s.Accounts[0].ID != 1234567890 || s.Accounts[1].BalanceMinor != 2424 {
		t.Fatalf("unexpected accounts: %+v", s.Accounts)
	}
	if len(s.Usernames) != 2 {
		t.Fatalf("unexpected usernames: %+v", s.Usernames)
	}
}

func TestReadSeedRejects(t *testing.T) {
	cases := []struct {
		doc  string
		want error
	}{
		{`{"accounts":[{"id":123,"balance_minor":1}]}`, errs.ErrInvalidAccountID},
		{`{"accounts":[{"id":1234567890,"balance_minor":-1}]}`, errs.ErrInvalidAmount},
		{`{"accounts":[{"id":1234567890,"balance_minor":1},{"id":1234567890,"balance_minor":2}]}`, errs.ErrDuplicateAccount},
		{`{"usernames":{"user1":42}}`, errs.ErrInvalidAccountID},
	}
	for _, c := range cases {
		if _, err := ReadSeed(strings.NewReader(c.doc)); !errors.Is(err, c.want) {
			t.Fatalf("ReadSeed(%s) want %v, got %v", c.doc, c.want, err)
		}
	}
	if _, err := ReadSeed(strings.NewReader(`{"unknown":1}`)); err == nil {
		t.Fatalf("expected error for unknown field")
	}
}
