// internal/loans/fee.go
package loans

import (
	"time"

	"github.com/shopspring/decimal"
)

// GraceDays is the calendar-day window after the loan date during which
// no fee accrues. A book returned on day GraceDays or earlier owes
// nothing; day GraceDays+1 onward accrues one fee-day per elapsed day.
const GraceDays = 10

// DefaultFinePerDay is the fallback per-day rate.
var DefaultFinePerDay = decimal.NewFromInt(1)

// FeeCalculator converts overdue days into a monetary fee at a fixed
// per-day rate. It is deterministic and has no failure modes.
type FeeCalculator struct {
	perDay decimal.Decimal
}

func NewFeeCalculator(perDay decimal.Decimal) FeeCalculator {
	if perDay.IsNegative() || perDay.IsZero() {
		perDay = DefaultFinePerDay
	}
	return FeeCalculator{perDay: perDay}
}

// Calculate returns the fee for the given number of overdue days.
func (c FeeCalculator) Calculate(overdueDays int) decimal.Decimal {
	if overdueDays <= 0 {
		return decimal.Zero
	}
	return c.perDay.Mul(decimal.NewFromInt(int64(overdueDays)))
}

// truncateToDay normalizes a timestamp to midnight UTC so that day
// arithmetic ignores fractional time of day.
func truncateToDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// daysBetween counts whole calendar days from a to b.
func daysBetween(a, b time.Time) int {
	return int(truncateToDay(b).Sub(truncateToDay(a)).Hours() / 24)
}

// overdueDays applies the grace period to the elapsed calendar days,
// clamping at zero.
func overdueDays(loanedAt, returnedAt time.Time) int {
	elapsed := daysBetween(loanedAt, returnedAt)
	if elapsed <= GraceDays {
		return 0
	}
	return elapsed - GraceDays
}
