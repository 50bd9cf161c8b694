package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDayRange(t *testing.T) {
	loc, err := time.LoadLocation("Africa/Libreville")
	require.NoError(t, err)

	start, end, err := dayRange("2026-03-01", "2026-03-14", loc)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 3, 1, 0, 0, 0, 0, loc), *start)
	assert.Equal(t, time.Date(2026, 3, 15, 0, 0, 0, 0, loc), *end)

	start, end, err = dayRange("2026-03-14", "2026-03-14", loc)
	require.NoError(t, err)
	assert.Equal(t, 24*time.Hour, end.Sub(*start))
}

func TestDayRange_OpenSides(t *testing.T) {
	start, end, err := dayRange("", "", time.UTC)
	require.NoError(t, err)
	assert.Nil(t, start)
	assert.Nil(t, end)

	start, end, err = dayRange("", "2026-03-14", time.UTC)
	require.NoError(t, err)
	assert.Nil(t, start)
	assert.Equal(t, time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC), *end)
}

func TestDayRange_Invalid(t *testing.T) {
	_, _, err := dayRange("14/03/2026", "", time.UTC)
	assert.Error(t, err)

	_, _, err = dayRange("2026-03-14", "2026-03-01", time.UTC)
	assert.Error(t, err)
}

func TestRootCmd_Commands(t *testing.T) {
	cmd, _, err := rootCmd().Find([]string{"sale", "summary"})
	require.NoError(t, err)
	assert.Equal(t, "summary", cmd.Name())

	cmd, _, err = rootCmd().Find([]string{"login"})
	require.NoError(t, err)
	assert.NotNil(t, cmd.Flags().Lookup("email"))
}
