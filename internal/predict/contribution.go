package predict

import (
	"math"

	"buste/internal/core"
)

// openEndedDays is the cutoff beyond which a due date stops influencing
// the contribution and the bill is smoothed as open-ended instead.
const openEndedDays = 365

// PerPayContribution converts a bill's own amount and cadence into the
// equivalent amount to set aside per pay event of the income frequency.
//
// Open-ended mode (daysUntilDue > 365, which includes envelopes without
// a due date): the bill is reduced to a weekly rate through the
// weeks-per-period factors (core.WeeksPerMonth for monthly) and scaled
// back up to the income cadence.
//
// Due-date mode (daysUntilDue <= 365): the bill is split evenly across
// the whole pay periods remaining before the due date. Zero or negative
// periods short-circuit to the full bill amount, due next pay.
func PerPayContribution(billAmount core.Money, billFreq, incomeFreq core.Frequency, daysUntilDue int) core.Money {
	if daysUntilDue <= openEndedDays {
		periods := daysUntilDue / incomeFreq.ApproxDays()
		if periods <= 0 {
			return billAmount
		}
		return core.NewMoney(roundHalfUp(float64(billAmount.Cents) / float64(periods)))
	}
	weeklyRate := float64(billAmount.Cents) / billFreq.WeeksPer()
	return core.NewMoney(roundHalfUp(weeklyRate * incomeFreq.WeeksPer()))
}

func roundHalfUp(v float64) int64 {
	return int64(math.Floor(v + 0.5))
}
