package core

import (
	"errors"
	"strings"
	"time"
)

// Frequency is the closed set of pay and bill cadences the engine
// understands. Anything else is a caller bug, caught by Validate at the
// storage boundary before it reaches the engine.
type Frequency string

const (
	Weekly      Frequency = "weekly"
	Fortnightly Frequency = "fortnightly"
	Monthly     Frequency = "monthly"
	Quarterly   Frequency = "quarterly"
	Annually    Frequency = "annually"
)

var (
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrInvalidFrequency = errors.New("invalid frequency")
	ErrEmptyName        = errors.New("empty name")
	ErrNegativeBalance  = errors.New("negative balance")
)

func (f Frequency) Validate() error {
	switch f {
	case Weekly, Fortnightly, Monthly, Quarterly, Annually:
		return nil
	}
	return ErrInvalidFrequency
}

// WeeksPer returns how many weeks one period of this frequency spans.
// 4.33 weeks per month is a deliberate average, not calendar arithmetic.
func (f Frequency) WeeksPer() float64 {
	switch f {
	case Weekly:
		return 1
	case Fortnightly:
		return 2
	case Monthly:
		return WeeksPerMonth
	case Quarterly:
		return 13
	case Annually:
		return 52
	}
	return 1
}

// WeeksPerMonth is the documented approximation used to convert monthly
// amounts to a weekly rate. Exposed so tests can reference it by name.
const WeeksPerMonth = 4.33

// ApproxDays returns the approximate period length in days, used to count
// remaining pay periods before a due date.
func (f Frequency) ApproxDays() int {
	switch f {
	case Weekly:
		return 7
	case Fortnightly:
		return 14
	case Monthly:
		return 30
	case Quarterly:
		return 91
	case Annually:
		return 365
	}
	return 7
}

// Next returns the occurrence that follows t, using real calendar
// arithmetic (months and years keep the day of month where possible).
func (f Frequency) Next(t time.Time) time.Time {
	switch f {
	case Weekly:
		return t.AddDate(0, 0, 7)
	case Fortnightly:
		return t.AddDate(0, 0, 14)
	case Monthly:
		return t.AddDate(0, 1, 0)
	case Quarterly:
		return t.AddDate(0, 3, 0)
	case Annually:
		return t.AddDate(1, 0, 0)
	}
	return t.AddDate(0, 0, 7)
}

type (
	// Envelope is a named funding bucket. TargetAmount of zero means the
	// target is derived from the recurring bill; a zero DueDate marks the
	// envelope as ongoing (funded per pay cycle, no horizon of its own).
	Envelope struct {
		ID             int64     `json:"id"`
		Name           string    `json:"name"`
		TargetAmount   Money     `json:"target_amount"`
		BillAmount     Money     `json:"bill_amount"`
		BillFrequency  Frequency `json:"bill_frequency,omitempty"`
		DueDate        time.Time `json:"due_date"`
		CurrentBalance Money     `json:"current_balance"`
	}

	// Allocation routes a fixed slice of one income source's pay event to
	// one envelope.
	Allocation struct {
		EnvelopeID int64 `json:"envelope_id"`
		Amount     Money `json:"amount"`
	}

	// IncomeSource is a recurring income stream with its per-envelope
	// allocations.
	IncomeSource struct {
		ID          int64        `json:"id"`
		Name        string       `json:"name"`
		Frequency   Frequency    `json:"frequency"`
		NextDate    time.Time    `json:"next_date"`
		Allocations []Allocation `json:"allocations"`
	}

	// DebtItem is one outstanding balance inside a debt envelope.
	// PaidOffAt is set exactly once, the first time the balance reaches
	// zero; it is never cleared.
	DebtItem struct {
		ID         int64      `json:"id"`
		EnvelopeID int64      `json:"envelope_id"`
		Balance    Money      `json:"balance"`
		PaidOffAt  *time.Time `json:"paid_off_at,omitempty"`
	}

	// FutureIncomeEvent is one projected pay occurrence's contribution to
	// one envelope. Derived, never stored.
	FutureIncomeEvent struct {
		Date       time.Time `json:"date"`
		SourceID   int64     `json:"source_id"`
		SourceName string    `json:"source_name"`
		Amount     Money     `json:"amount"`
	}

	// EnvelopePrediction is the engine's per-envelope output, produced
	// fresh on every invocation.
	EnvelopePrediction struct {
		EnvelopeID       int64               `json:"envelope_id"`
		Name             string              `json:"name"`
		CurrentBalance   Money               `json:"current_balance"`
		ProjectedBalance Money               `json:"projected_balance"`
		TargetAmount     Money               `json:"target_amount"`
		Gap              Money               `json:"gap"`
		Status           Status              `json:"status"`
		DaysUntilDue     int                 `json:"days_until_due"`
		FutureIncome     []FutureIncomeEvent `json:"future_income"`
		Suggestions      []Suggestion        `json:"suggestions"`
	}
)

// Status classifies an envelope's funding outlook.
type Status string

const (
	StatusOnTrack    Status = "on_track"
	StatusBehind     Status = "behind"
	StatusCritical   Status = "critical"
	StatusOverfunded Status = "overfunded"
)

// SuggestionType identifies a remediation action for an underfunded
// envelope.
type SuggestionType string

const (
	SuggestIncreaseAllocation SuggestionType = "increase_allocation"
	SuggestOneTimeIncome      SuggestionType = "one_time_income"
	SuggestReduceBill         SuggestionType = "reduce_bill"
	SuggestExtendDueDate      SuggestionType = "extend_due_date"
	SuggestLifestyleChange    SuggestionType = "lifestyle_change"
)

// Suggestion is one remediation action. Amount is nil for actions that
// carry no figure (reduce_bill, extend_due_date, lifestyle_change).
type Suggestion struct {
	Type    SuggestionType `json:"type"`
	Amount  *Money         `json:"amount,omitempty"`
	Message string         `json:"message"`
}

// AllocationFor returns the amount this source routes to the given
// envelope, and whether an allocation entry exists at all.
func (s IncomeSource) AllocationFor(envelopeID int64) (Money, bool) {
	for _, a := range s.Allocations {
		if a.EnvelopeID == envelopeID {
			return a.Amount, true
		}
	}
	return Money{}, false
}

func (e Envelope) Validate() error {
	if len(strings.TrimSpace(e.Name)) == 0 {
		return ErrEmptyName
	}
	if e.TargetAmount.IsNegative() {
		return ErrInvalidAmount
	}
	if e.BillAmount.IsNegative() {
		return ErrInvalidAmount
	}
	if e.BillAmount.IsPositive() {
		if err := e.BillFrequency.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// HasDueDate reports whether the envelope has a funding horizon of its
// own, as opposed to being an ongoing per-cycle envelope.
func (e Envelope) HasDueDate() bool {
	return !e.DueDate.IsZero()
}

func (s IncomeSource) Validate() error {
	if len(strings.TrimSpace(s.Name)) == 0 {
		return ErrEmptyName
	}
	if err := s.Frequency.Validate(); err != nil {
		return err
	}
	if s.NextDate.IsZero() {
		return errors.New("next date cannot be zero")
	}
	for _, a := range s.Allocations {
		if a.Amount.IsNegative() {
			return ErrInvalidAmount
		}
	}
	return nil
}

func (d DebtItem) Validate() error {
	if d.Balance.IsNegative() {
		return ErrNegativeBalance
	}
	return nil
}
