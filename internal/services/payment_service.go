package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"buste/internal/core"
	"buste/internal/snowball"
)

// DebtStore is the repository slice the payment service needs: the
// unpaid set plus the snowball distributor's write port.
type DebtStore interface {
	ListUnpaidDebtItems(ctx context.Context, envelopeID int64) ([]core.DebtItem, error)
	snowball.BalanceStore
}

// PayoffPublisher notifies downstream consumers of payoff events. May
// be nil when messaging is disabled.
type PayoffPublisher interface {
	PublishDebtPaidOff(ctx context.Context, itemID, envelopeID int64, at time.Time) error
}

// PaymentService applies approved payments to a debt envelope. It owns
// the at-most-once boundary the distributor cannot: payments for the
// same envelope are serialized behind a per-envelope mutex, so two
// near-simultaneous approvals can never read the same pre-payment
// balances.
type PaymentService struct {
	store     DebtStore
	publisher PayoffPublisher

	mu    sync.Mutex
	locks map[int64]*sync.Mutex
}

func NewPaymentService(store DebtStore, publisher PayoffPublisher) *PaymentService {
	return &PaymentService{
		store:     store,
		publisher: publisher,
		locks:     make(map[int64]*sync.Mutex),
	}
}

func (s *PaymentService) envelopeLock(envelopeID int64) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[envelopeID]
	if !ok {
		l = &sync.Mutex{}
		s.locks[envelopeID] = l
	}
	return l
}

// ApplyPayment distributes one payment across the envelope's unpaid
// debt items and publishes a notification per payoff event. Publish
// failures are logged, never propagated: the balances are already
// persisted and a retry would double-apply.
func (s *PaymentService) ApplyPayment(ctx context.Context, envelopeID int64, amount core.Money, now time.Time) (snowball.Result, error) {
	lock := s.envelopeLock(envelopeID)
	lock.Lock()
	defer lock.Unlock()

	items, err := s.store.ListUnpaidDebtItems(ctx, envelopeID)
	if err != nil {
		return snowball.Result{}, fmt.Errorf("load unpaid debt items: %w", err)
	}

	res, err := snowball.Distribute(ctx, s.store, items, amount, now)
	if err != nil {
		return snowball.Result{}, fmt.Errorf("distribute payment: %w", err)
	}

	slog.InfoContext(ctx, "Payment applied",
		"envelope_id", envelopeID,
		"payment_cents", amount.Cents,
		"applied_cents", res.Applied.Cents,
		"remaining_cents", res.Remaining.Cents,
		"paid_off", len(res.PaidOff),
		"failed_updates", len(res.Failed))

	for _, item := range res.PaidOff {
		s.publishPayoff(ctx, item)
	}

	return res, nil
}

func (s *PaymentService) publishPayoff(ctx context.Context, item core.DebtItem) {
	if s.publisher == nil {
		return
	}
	at := time.Time{}
	if item.PaidOffAt != nil {
		at = *item.PaidOffAt
	}
	if err := s.publisher.PublishDebtPaidOff(ctx, item.ID, item.EnvelopeID, at); err != nil {
		slog.ErrorContext(ctx, "Failed to publish payoff notification",
			"item_id", item.ID,
			"envelope_id", item.EnvelopeID,
			"error", err)
	}
}
