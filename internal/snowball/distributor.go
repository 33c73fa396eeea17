// Package snowball applies a single payment across the outstanding debt
// items of one envelope, smallest balance first.
//
// The distributor itself is not idempotent and holds no lock: the
// calling layer must serialize payment application per envelope (see
// services.PaymentService), because two concurrent distributions read
// the same pre-payment balances and would double-apply the funds.
package snowball

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"buste/internal/core"
)

var ErrInvalidPayment = errors.New("payment amount must be positive")

// BalanceStore is the persistence port the distributor writes through.
// Implementations persist one item at a time; a failed write affects
// only that item.
type BalanceStore interface {
	UpdateDebtBalance(ctx context.Context, itemID int64, balance core.Money) error
	MarkDebtPaidOff(ctx context.Context, itemID int64, at time.Time) error
}

// FailedUpdate records one debt item whose balance could not be
// persisted. Its share of the payment is not consumed.
type FailedUpdate struct {
	ItemID int64
	Err    error
}

// MarshalJSON flattens the wrapped error to its message so failures
// survive the trip through the API.
func (f FailedUpdate) MarshalJSON() ([]byte, error) {
	msg := ""
	if f.Err != nil {
		msg = f.Err.Error()
	}
	return json.Marshal(struct {
		ItemID int64  `json:"item_id"`
		Error  string `json:"error"`
	}{f.ItemID, msg})
}

// Result reports what one distribution actually did.
type Result struct {
	// Applied is the portion of the payment that reached a balance.
	Applied core.Money `json:"applied"`
	// Remaining is the unapplied overflow, non-zero when the payment
	// exceeds the total outstanding debt (or when writes failed).
	Remaining core.Money `json:"remaining"`
	// PaidOff lists the items whose balance hit zero, in payoff order,
	// with PaidOffAt set.
	PaidOff []core.DebtItem `json:"paid_off"`
	// Failed lists items whose balance update did not persist.
	Failed []FailedUpdate `json:"failed,omitempty"`
}

// Distribute applies payment across items ascending by balance and
// persists each new balance through store.
//
// items must be the full set of currently-unpaid items for one
// envelope; already-paid items are the caller's job to exclude. A
// persistence failure on one item is recorded and skipped, and the
// distribution continues with the next item: a partially updated set
// beats a fully stale one.
func Distribute(ctx context.Context, store BalanceStore, items []core.DebtItem, payment core.Money, now time.Time) (Result, error) {
	if !payment.IsPositive() {
		return Result{}, ErrInvalidPayment
	}

	ordered := make([]core.DebtItem, len(items))
	copy(ordered, items)
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].Balance.Cents != ordered[j].Balance.Cents {
			return ordered[i].Balance.LessThan(ordered[j].Balance)
		}
		return ordered[i].ID < ordered[j].ID
	})

	res := Result{Remaining: payment}
	for _, item := range ordered {
		if !res.Remaining.IsPositive() {
			break
		}
		if !item.Balance.IsPositive() {
			continue
		}

		apply := res.Remaining.Min(item.Balance)
		newBalance := item.Balance.Sub(apply)

		if err := store.UpdateDebtBalance(ctx, item.ID, newBalance); err != nil {
			res.Failed = append(res.Failed, FailedUpdate{
				ItemID: item.ID,
				Err:    fmt.Errorf("update balance: %w", err),
			})
			slog.ErrorContext(ctx, "Debt balance update failed, skipping item",
				"item_id", item.ID,
				"error", err)
			continue
		}

		res.Remaining = res.Remaining.Sub(apply)

		if newBalance.IsZero() {
			paidAt := now
			if err := store.MarkDebtPaidOff(ctx, item.ID, paidAt); err != nil {
				// The zero balance is already persisted; record the
				// marker failure but still report the payoff.
				res.Failed = append(res.Failed, FailedUpdate{
					ItemID: item.ID,
					Err:    fmt.Errorf("mark paid off: %w", err),
				})
				slog.ErrorContext(ctx, "Paid-off marker update failed",
					"item_id", item.ID,
					"error", err)
			}
			item.Balance = newBalance
			item.PaidOffAt = &paidAt
			res.PaidOff = append(res.PaidOff, item)
		}
	}

	res.Applied = payment.Sub(res.Remaining)
	return res, nil
}
