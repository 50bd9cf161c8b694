package ticket

import (
	"fmt"
	"time"

	"github.com/fekuna/omnipos-backoffice/internal/dates"
)

// Next computes the ticket counter following (lastNumber, lastDate) at now.
// The counter restarts at 1 on the first ticket of a calendar day in now's
// location.
func Next(lastNumber int, lastDate *time.Time, now time.Time) (int, string) {
	next := 1
	if lastDate != nil && dates.SameDay(now, *lastDate) && lastNumber > 0 {
		next = lastNumber + 1
	}
	return next, Format(now, next)
}

// Format renders YYYYMMDD followed by a five-digit, zero-padded counter.
func Format(day time.Time, n int) string {
	return fmt.Sprintf("%s%05d", day.Format("20060102"), n)
}
