package errs

import "errors"

// Error kinds shared by the service, storage and HTTP layers.
// Wrap with fmt.Errorf("%w: ...") for detail and match with errors.Is.
var (
	ErrUnknownUser      = errors.New("unknown_user")
	ErrInvalidAccountID = errors.New("invalid_account_id")
	ErrDuplicateAccount = errors.New("duplicate_account")
	ErrUnderage         = errors.New("underage")
	// ErrInvalidAmount covers non-positive amounts, foreign currencies and sub-minor-unit precision.
	ErrInvalidAmount     = errors.New("invalid_amount")
	ErrAccountNotFound   = errors.New("account_not_found")
	ErrInsufficientFunds = errors.New("insufficient_funds")
)
