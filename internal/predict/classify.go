package predict

import "buste/internal/core"

// Policy holds the engine's tunable thresholds. The defaults reproduce
// the documented behavior; config may override them so a policy change
// never touches algorithm code.
type Policy struct {
	// SurplusThreshold is the surplus beyond which an envelope counts as
	// overfunded rather than merely on track.
	SurplusThreshold core.Money

	// RunwayDays is the minimum number of days before the due date that
	// still leaves room to correct a shortfall without urgency.
	RunwayDays int

	// NoDueDateDays is the days-until-due stand-in for envelopes with no
	// due date. Large enough that they never classify as critical.
	NoDueDateDays int

	// DefaultHorizonDays is how far ahead the projector looks when an
	// envelope has neither an explicit horizon nor a due date.
	DefaultHorizonDays int
}

// DefaultPolicy returns the documented thresholds: $10 surplus, 14 days
// of runway, a 999-day stand-in for undated envelopes and a 30-day
// default horizon.
func DefaultPolicy() Policy {
	return Policy{
		SurplusThreshold:   core.NewMoney(1000),
		RunwayDays:         14,
		NoDueDateDays:      999,
		DefaultHorizonDays: 30,
	}
}

// Classify maps a funding gap and the remaining runway to a status.
// Branches are evaluated in order; boundary values resolve to the first
// match.
func (p Policy) Classify(gap core.Money, daysUntilDue int) core.Status {
	if gap.Cents <= 0 {
		if gap.Cents < -p.SurplusThreshold.Cents {
			return core.StatusOverfunded
		}
		return core.StatusOnTrack
	}
	if daysUntilDue > p.RunwayDays {
		return core.StatusBehind
	}
	return core.StatusCritical
}
