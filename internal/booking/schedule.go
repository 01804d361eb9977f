package booking

import "time"

// Default slot templates. Weekdays only offer evening slots (the owner has
// a day job); weekends open up the daytime.
var (
	DefaultWeekdaySlots = []string{"17:00", "17:30", "18:00", "18:30", "19:00", "19:30"}
	DefaultWeekendSlots = []string{"10:00", "11:00", "12:00", "14:00", "15:00", "16:00", "17:00"}
)

// HolidayFunc marks extra dates as weekend-class (public holidays etc).
type HolidayFunc func(date time.Time) bool

// Schedule maps a calendar date to the ordered candidate slots for that
// date's weekday class. Pure configuration data, no I/O.
type Schedule struct {
	weekday   []string
	weekend   []string
	isHoliday HolidayFunc
}

// NewSchedule builds a schedule with the given templates. Nil templates
// fall back to the defaults; a nil holiday predicate means weekday class
// is decided by the weekday alone.
func NewSchedule(weekday, weekend []string, isHoliday HolidayFunc) *Schedule {
	if weekday == nil {
		weekday = DefaultWeekdaySlots
	}
	if weekend == nil {
		weekend = DefaultWeekendSlots
	}
	return &Schedule{
		weekday:   weekday,
		weekend:   weekend,
		isHoliday: isHoliday,
	}
}

// DefaultSchedule returns the schedule with the stock templates.
func DefaultSchedule() *Schedule {
	return NewSchedule(nil, nil, nil)
}

// TemplateFor returns the ordered candidate slot times for date.
// The returned slice must not be mutated by callers.
func (s *Schedule) TemplateFor(date time.Time) []string {
	if s.isWeekendClass(date) {
		return s.weekend
	}
	return s.weekday
}

// Contains reports whether slotTime is a legal slot for date.
func (s *Schedule) Contains(date time.Time, slotTime string) bool {
	for _, t := range s.TemplateFor(date) {
		if t == slotTime {
			return true
		}
	}
	return false
}

func (s *Schedule) isWeekendClass(date time.Time) bool {
	wd := date.Weekday()
	if wd == time.Saturday || wd == time.Sunday {
		return true
	}
	return s.isHoliday != nil && s.isHoliday(date)
}
