package predict

import (
	"testing"

	"buste/internal/core"
)

func TestPerPayContributionOpenEnded(t *testing.T) {
	// daysUntilDue above the one-year cutoff selects open-ended mode.
	const noDue = 999

	tests := []struct {
		name       string
		billCents  int64
		billFreq   core.Frequency
		incomeFreq core.Frequency
		want       int64
	}{
		{"weekly to weekly is identity", 10000, core.Weekly, core.Weekly, 10000},
		{"fortnightly bill to weekly income", 10000, core.Fortnightly, core.Weekly, 5000},
		{"weekly bill to fortnightly income", 5000, core.Weekly, core.Fortnightly, 10000},
		{"monthly bill to weekly income", 43300, core.Monthly, core.Weekly, 10000},
		{"weekly bill to monthly income", 10000, core.Weekly, core.Monthly, 43300},
		{"annual bill to weekly income", 52000, core.Annually, core.Weekly, 1000},
		{"quarterly bill to monthly income", 39000, core.Quarterly, core.Monthly, 12990},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := PerPayContribution(core.NewMoney(tt.billCents), tt.billFreq, tt.incomeFreq, noDue)
			if got.Cents != tt.want {
				t.Errorf("PerPayContribution() = %d, want %d", got.Cents, tt.want)
			}
		})
	}
}

func TestPerPayContributionDueDate(t *testing.T) {
	tests := []struct {
		name       string
		billCents  int64
		incomeFreq core.Frequency
		days       int
		want       int64
	}{
		{"four fortnights left", 10000, core.Fortnightly, 60, 2500},
		{"one week left", 10000, core.Weekly, 10, 10000},
		{"less than one period", 10000, core.Weekly, 5, 10000},
		{"zero days", 10000, core.Monthly, 0, 10000},
		{"past due", 10000, core.Monthly, -3, 10000},
		{"two months left", 9000, core.Monthly, 65, 4500},
		{"rounding to nearest cent", 10000, core.Weekly, 21, 3333},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := PerPayContribution(core.NewMoney(tt.billCents), core.Monthly, tt.incomeFreq, tt.days)
			if got.Cents != tt.want {
				t.Errorf("PerPayContribution() = %d, want %d", got.Cents, tt.want)
			}
		})
	}
}

func TestPerPayContributionModeCutoff(t *testing.T) {
	bill := core.NewMoney(52000)
	// 365 days is still due-date mode, 366 flips to open-ended.
	atCutoff := PerPayContribution(bill, core.Annually, core.Weekly, 365)
	if atCutoff.Cents != 1000 { // 365/7 = 52 periods
		t.Errorf("at cutoff got %d, want 1000", atCutoff.Cents)
	}
	pastCutoff := PerPayContribution(bill, core.Annually, core.Weekly, 366)
	if pastCutoff.Cents != 1000 { // 52000/52 weeks
		t.Errorf("past cutoff got %d, want 1000", pastCutoff.Cents)
	}
}
