package ticket

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNext_FirstTicketEver(t *testing.T) {
	now := time.Date(2026, 5, 2, 9, 0, 0, 0, time.UTC)

	n, s := Next(0, nil, now)

	assert.Equal(t, 1, n)
	assert.Equal(t, "2026050200001", s)
}

func TestNext_SameDayIncrements(t *testing.T) {
	now := time.Date(2026, 5, 2, 9, 0, 0, 0, time.UTC)
	last := now.Add(-2 * time.Hour)

	n, s := Next(0, &last, now)
	assert.Equal(t, 1, n)
	assert.Equal(t, "2026050200001", s)

	n, s = Next(n, &last, now)
	assert.Equal(t, 2, n)
	assert.Equal(t, "2026050200002", s)
}

func TestNext_ResetsOnNewDay(t *testing.T) {
	yesterday := time.Date(2026, 5, 1, 23, 59, 0, 0, time.UTC)
	now := time.Date(2026, 5, 2, 0, 1, 0, 0, time.UTC)

	n, s := Next(187, &yesterday, now)

	assert.Equal(t, 1, n)
	assert.Equal(t, "2026050200001", s)
}

func TestNext_StrictlyIncreasingWithinDay(t *testing.T) {
	day := time.Date(2026, 5, 2, 8, 0, 0, 0, time.UTC)
	last := day
	counter := 0
	for i := 1; i <= 250; i++ {
		n, _ := Next(counter, &last, day.Add(time.Duration(i)*time.Minute))
		assert.Equal(t, counter+1, n)
		counter = n
	}
}

func TestFormat_WidensPastFiveDigits(t *testing.T) {
	day := time.Date(2026, 5, 2, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "20260502123456", Format(day, 123456))
}
