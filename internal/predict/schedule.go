// Package predict implements the cash-flow allocation and funding-gap
// prediction engine. Every function here is pure: no I/O, no clock, no
// shared state. The current time is always an explicit argument so that
// identical inputs give identical outputs.
package predict

import (
	"time"

	"buste/internal/core"
)

// MaxPayDates caps the number of generated pay dates per schedule. It is
// a safety bound against pathological horizons, not a business rule;
// callers must not rely on more than a year of projected dates.
const MaxPayDates = 365

// PayDates returns the ordered pay dates for the given frequency,
// starting at start and ending strictly before end. start == end yields
// an empty slice, not an error.
func PayDates(freq core.Frequency, start, end time.Time) []time.Time {
	var dates []time.Time
	cur := start
	for i := 0; i < MaxPayDates && cur.Before(end); i++ {
		dates = append(dates, cur)
		cur = freq.Next(cur)
	}
	return dates
}
