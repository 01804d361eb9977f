package booking

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestTemplateForWeekday(t *testing.T) {
	s := DefaultSchedule()

	// 2025-06-10 is a Tuesday
	got := s.TemplateFor(date(2025, time.June, 10))
	assert.Equal(t, DefaultWeekdaySlots, got)
}

func TestTemplateForWeekend(t *testing.T) {
	s := DefaultSchedule()

	saturday := date(2025, time.June, 14)
	sunday := date(2025, time.June, 15)
	assert.Equal(t, DefaultWeekendSlots, s.TemplateFor(saturday))
	assert.Equal(t, DefaultWeekendSlots, s.TemplateFor(sunday))
}

func TestTemplateForHoliday(t *testing.T) {
	bastilleDay := date(2026, time.July, 14) // a Tuesday
	s := NewSchedule(nil, nil, func(d time.Time) bool {
		return d.Month() == time.July && d.Day() == 14
	})

	assert.Equal(t, DefaultWeekendSlots, s.TemplateFor(bastilleDay))
	assert.Equal(t, DefaultWeekdaySlots, s.TemplateFor(date(2026, time.July, 15)))
}

func TestTemplateIsOrderedAndDeterministic(t *testing.T) {
	s := DefaultSchedule()
	d := date(2025, time.June, 10)

	first := s.TemplateFor(d)
	second := s.TemplateFor(d)
	require.Equal(t, first, second)

	for i := 1; i < len(first); i++ {
		assert.Less(t, first[i-1], first[i], "slots must stay in ascending order")
	}
}

func TestContains(t *testing.T) {
	s := DefaultSchedule()
	tuesday := date(2025, time.June, 10)
	saturday := date(2025, time.June, 14)

	assert.True(t, s.Contains(tuesday, "17:00"))
	assert.False(t, s.Contains(tuesday, "10:00"), "daytime slot is weekend-only")
	assert.True(t, s.Contains(saturday, "10:00"))
	assert.False(t, s.Contains(saturday, "19:30"))
	assert.False(t, s.Contains(tuesday, "17:15"))
}

func TestCustomTemplates(t *testing.T) {
	s := NewSchedule([]string{"08:00"}, []string{"09:00"}, nil)

	assert.Equal(t, []string{"08:00"}, s.TemplateFor(date(2025, time.June, 10)))
	assert.Equal(t, []string{"09:00"}, s.TemplateFor(date(2025, time.June, 14)))
}
