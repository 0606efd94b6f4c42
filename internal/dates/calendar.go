package dates

import "time"

// Calendar answers working-day questions against a configured set of
// public holidays. Weekends are always Saturday and Sunday.
type Calendar struct {
	holidays map[string]bool
}

// NewCalendar creates a calendar from a list of YYYY-MM-DD holiday strings
func NewCalendar(holidays []string) *Calendar {
	set := make(map[string]bool, len(holidays))
	for _, h := range holidays {
		set[h] = true
	}
	return &Calendar{holidays: set}
}

// IsWeekend returns true for Saturday and Sunday
func (c *Calendar) IsWeekend(d time.Time) bool {
	wd := d.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

// IsHoliday returns true if the date is a configured public holiday
func (c *Calendar) IsHoliday(d time.Time) bool {
	return c.holidays[d.Format("2006-01-02")]
}

// IsWorkingDay returns true if the date is neither a weekend nor a holiday
func (c *Calendar) IsWorkingDay(d time.Time) bool {
	return !c.IsWeekend(d) && !c.IsHoliday(d)
}

// WorkingDays returns the first n working days starting at start, skipping
// weekends and holidays.
func (c *Calendar) WorkingDays(start time.Time, n int) []time.Time {
	days := make([]time.Time, 0, n)
	cur := Midnight(start)
	for len(days) < n {
		if c.IsWorkingDay(cur) {
			days = append(days, cur)
		}
		cur = cur.AddDate(0, 0, 1)
	}
	return days
}

// Midnight truncates a time to the start of its calendar day
func Midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// SameDay reports whether two times fall on the same calendar day
func SameDay(a, b time.Time) bool {
	return a.Year() == b.Year() && a.YearDay() == b.YearDay()
}
