package v1

import (
	"encoding/json"

	"github.com/govalues/money"
	"github.com/tinoosan/bank/internal/ledger"
)

// openAccountRequest keeps account_id as a raw number so that out-of-range
// values reach the service instead of failing decoding.
type openAccountRequest struct {
	Username  string      `json:"username"`
	Age       int         `json:"age"`
	AccountID json.Number `json:"account_id"`
}

type openAccountInput struct {
	Username  string
	Age       int
	AccountID ledger.AccountID
}

// movementRequest is the body of deposit and withdraw. Exactly one of
// AmountMinor or Amount must be set.
type movementRequest struct {
	AmountMinor *int64  `json:"amount_minor,omitempty"`
	Amount      *string `json:"amount,omitempty"`
}

// movement holds the validated deposit/withdraw input.
type movement struct {
	AccountID ledger.AccountID
	Amount    money.Amount
}

type accountResponse struct {
	ID           ledger.AccountID `json:"id"`
	BalanceMinor int64            `json:"balance_minor"`
	Balance      string           `json:"balance"`
	Currency     string           `json:"currency"`
}

type balanceResponse struct {
	AccountID    ledger.AccountID `json:"account_id"`
	BalanceMinor int64            `json:"balance_minor"`
	Balance      string           `json:"balance"`
	Currency     string           `json:"currency"`
}

type userAccountResponse struct {
	Username  string           `json:"username"`
	AccountID ledger.AccountID `json:"account_id"`
}

func toAccountResponse(a ledger.Account) accountResponse {
	units, _ := a.Balance.MinorUnits()
	return accountResponse{
		ID:           a.ID,
		BalanceMinor: units,
		Balance:      a.Balance.Decimal().String(),
		Currency:     a.Balance.Curr().Code(),
	}
}

func toBalanceResponse(id ledger.AccountID, bal money.Amount) balanceResponse {
	units, _ := bal.MinorUnits()
	return balanceResponse{
		AccountID:    id,
		BalanceMinor: units,
		Balance:      bal.Decimal().String(),
		Currency:     bal.Curr().Code(),
	}
}
