package account

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/tinoosan/bank/internal/errs"
)

var operationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "bank",
		Subsystem: "ledger",
		Name:      "operations_total",
		Help:      "Ledger operations by outcome",
	},
	[]string{"op", "result"},
)

func observe(op string, err error) {
	operationsTotal.WithLabelValues(op, resultLabel(err)).Inc()
}

// resultLabel keeps the label set bounded to the known error kinds.
func resultLabel(err error) string {
	if err == nil {
		return "ok"
	}
	for _, kind := range []error{
		errs.ErrUnknownUser,
		errs.ErrInvalidAccountID,
		errs.ErrDuplicateAccount,
		errs.ErrUnderage,
		errs.ErrInvalidAmount,
		errs.ErrAccountNotFound,
		errs.ErrInsufficientFunds,
	} {
		if errors.Is(err, kind) {
			return kind.Error()
		}
	}
	return "error"
}
