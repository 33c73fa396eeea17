package predict

import (
	"sort"
	"time"

	"buste/internal/core"
)

// Projection is the funding projector's output for one envelope.
type Projection struct {
	ProjectedBalance core.Money
	TargetAmount     core.Money
	Gap              core.Money
	FutureIncome     []core.FutureIncomeEvent
}

// Project combines an envelope's balance with every future allocated pay
// event up to the horizon. A zero horizon falls back to the envelope's
// due date, then to DefaultHorizonDays from now.
//
// Sources whose allocation for this envelope is absent or non-positive
// are skipped, not errored. Events are sorted chronologically; ties keep
// the income-source order they were supplied in.
func (p Policy) Project(env core.Envelope, sources []core.IncomeSource, now, horizon time.Time) Projection {
	if horizon.IsZero() {
		if env.HasDueDate() {
			horizon = env.DueDate
		} else {
			horizon = now.AddDate(0, 0, p.DefaultHorizonDays)
		}
	}

	target := env.TargetAmount
	if !target.IsPositive() && env.BillAmount.IsPositive() {
		// No explicit target: the bill itself defines how much must be
		// set aside by the horizon, in whole bill periods.
		target = PerPayContribution(env.BillAmount, env.BillFrequency, env.BillFrequency, daysBetween(now, horizon))
	}

	var events []core.FutureIncomeEvent
	for _, src := range sources {
		amount, ok := src.AllocationFor(env.ID)
		if !ok || !amount.IsPositive() {
			continue
		}
		for _, date := range PayDates(src.Frequency, src.NextDate, horizon) {
			events = append(events, core.FutureIncomeEvent{
				Date:       date,
				SourceID:   src.ID,
				SourceName: src.Name,
				Amount:     amount,
			})
		}
	}
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Date.Before(events[j].Date)
	})

	projected := env.CurrentBalance
	for _, ev := range events {
		projected = projected.Add(ev.Amount)
	}

	return Projection{
		ProjectedBalance: projected,
		TargetAmount:     target,
		Gap:              target.Sub(projected),
		FutureIncome:     events,
	}
}

// daysBetween counts whole days from a to b, negative when b is in the
// past.
func daysBetween(a, b time.Time) int {
	return int(b.Sub(a) / (24 * time.Hour))
}
