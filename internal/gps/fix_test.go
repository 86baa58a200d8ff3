package gps

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEpochFromCalendar(t *testing.T) {
	assert.Equal(t, int64(0), EpochFromCalendar(1970, 1, 1, 0, 0, 0))
	assert.Equal(t, int64(946684800), EpochFromCalendar(2000, 1, 1, 0, 0, 0))
	assert.Equal(t, int64(1749985605), EpochFromCalendar(2025, 6, 15, 11, 6, 45))
}

func TestEpochFromCalendarIgnoresDST(t *testing.T) {
	// Exactly six months apart in UTC regardless of any local DST rules.
	winter := EpochFromCalendar(2025, 1, 15, 12, 0, 0)
	summer := EpochFromCalendar(2025, 7, 15, 12, 0, 0)
	assert.Equal(t, int64(181*24*3600), summer-winter)
}
