package predict

import (
	"fmt"

	"buste/internal/core"
)

// extendDueDateMinDays: extending the due date is only worth suggesting
// while more than a week of runway is left.
const extendDueDateMinDays = 7

// Suggest produces the ordered remediation list for an underfunded
// envelope. A gap of zero or a surplus yields no suggestions.
//
// The primary income source is the first element of sources; callers
// order by priority, the generator never reorders.
func (p Policy) Suggest(gap core.Money, env core.Envelope, sources []core.IncomeSource, daysUntilDue int) []core.Suggestion {
	if !gap.IsPositive() {
		return nil
	}

	var out []core.Suggestion

	if len(sources) > 0 && daysUntilDue > 0 {
		primary := sources[0]
		periods := daysUntilDue / primary.Frequency.ApproxDays()
		if periods > 0 {
			perPay := gap.CeilDiv(int64(periods))
			out = append(out, core.Suggestion{
				Type:   core.SuggestIncreaseAllocation,
				Amount: &perPay,
				Message: fmt.Sprintf("Increase the allocation from %s by %s per pay for the next %d pays",
					primary.Name, perPay, periods),
			})
		}
	}

	oneOff := gap
	out = append(out, core.Suggestion{
		Type:    core.SuggestOneTimeIncome,
		Amount:  &oneOff,
		Message: fmt.Sprintf("Add a one-off top-up of %s to close the gap", oneOff),
	})

	out = append(out, core.Suggestion{
		Type:    core.SuggestReduceBill,
		Message: fmt.Sprintf("Renegotiate or reduce the bill behind %s", env.Name),
	})

	if daysUntilDue > extendDueDateMinDays {
		out = append(out, core.Suggestion{
			Type:    core.SuggestExtendDueDate,
			Message: "Push the due date out to earn more pay cycles",
		})
	}

	out = append(out, core.Suggestion{
		Type:    core.SuggestLifestyleChange,
		Message: "Trim discretionary spending and redirect it here",
	})

	return out
}
