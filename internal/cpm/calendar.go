package cpm

import (
	"time"

	"construction-scheduler-backend/internal/database/models"
)

// Work-days bitmask positions: Monday=1, Tuesday=2, Wednesday=4, Thursday=8,
// Friday=16, Saturday=32, Sunday=64.
const (
	WorkDaysMonFri = 31
	WorkDaysAll    = 127
)

// Calendar resolves which dates are workable. All date arithmetic in the
// engine runs through it. Dates are normalized to UTC midnight.
type Calendar struct {
	workDays    int
	hoursPerDay float64

	nonWork  map[string]struct{} // "2006-01-02" → not workable
	overtime map[string]float64  // "2006-01-02" → hours available on an off day

	recurringNonWork  map[string]struct{} // "01-02" (month-day), repeats annually
	recurringOvertime map[string]float64
}

// NewCalendar creates a calendar from a work-days bitmask and hours per day.
func NewCalendar(workDays int, hoursPerDay float64) *Calendar {
	if hoursPerDay <= 0 {
		hoursPerDay = 8
	}
	return &Calendar{
		workDays:          workDays,
		hoursPerDay:       hoursPerDay,
		nonWork:           make(map[string]struct{}),
		overtime:          make(map[string]float64),
		recurringNonWork:  make(map[string]struct{}),
		recurringOvertime: make(map[string]float64),
	}
}

// DefaultCalendar returns a Monday-Friday, 8-hours calendar.
func DefaultCalendar() *Calendar {
	return NewCalendar(WorkDaysMonFri, 8)
}

// NewCalendarFromModel builds a Calendar from a persisted work calendar and
// its exceptions.
func NewCalendarFromModel(cal *models.WorkCalendar) *Calendar {
	if cal == nil {
		return DefaultCalendar()
	}
	c := NewCalendar(cal.WorkDays, cal.HoursPerDay)
	for _, exc := range cal.Exceptions {
		c.AddException(exc.Date, exc.ExceptionType, exc.HoursWorked, exc.IsRecurring)
	}
	return c
}

// AddException registers a date-scoped override. Overtime makes an off day
// workable; every other exception kind zeroes the day.
func (c *Calendar) AddException(date time.Time, excType models.ExceptionType, hours float64, recurring bool) {
	d := DateOnly(date)
	if excType == models.ExceptionOvertime {
		if hours <= 0 {
			hours = c.hoursPerDay
		}
		if recurring {
			c.recurringOvertime[d.Format("01-02")] = hours
		} else {
			c.overtime[d.Format("2006-01-02")] = hours
		}
		return
	}
	if recurring {
		c.recurringNonWork[d.Format("01-02")] = struct{}{}
	} else {
		c.nonWork[d.Format("2006-01-02")] = struct{}{}
	}
}

// HoursPerDay returns the standard working hours of one work day.
func (c *Calendar) HoursPerDay() float64 {
	return c.hoursPerDay
}

// IsWorkDay reports whether the date is workable. Exceptions take precedence
// over the weekly mask, and overtime beats the mask in the other direction.
func (c *Calendar) IsWorkDay(date time.Time) bool {
	d := DateOnly(date)
	key := d.Format("2006-01-02")
	monthDay := d.Format("01-02")

	if _, off := c.nonWork[key]; off {
		return false
	}
	if _, off := c.recurringNonWork[monthDay]; off {
		return false
	}
	if _, ot := c.overtime[key]; ot {
		return true
	}
	if _, ot := c.recurringOvertime[monthDay]; ot {
		return true
	}

	return c.workDays&weekdayBit(d.Weekday()) != 0
}

// NextWorkDay returns date itself if workable, otherwise the next work day.
func (c *Calendar) NextWorkDay(date time.Time) time.Time {
	d := DateOnly(date)
	for !c.IsWorkDay(d) {
		d = d.AddDate(0, 0, 1)
	}
	return d
}

// AddWorkDays advances the date by the given number of working days,
// skipping non-working days. Zero or negative day counts return the date
// unchanged.
func (c *Calendar) AddWorkDays(date time.Time, days int) time.Time {
	d := DateOnly(date)
	for remaining := days; remaining > 0; {
		d = d.AddDate(0, 0, 1)
		if c.IsWorkDay(d) {
			remaining--
		}
	}
	return d
}

// SubtractWorkDays regresses the date by the given number of working days.
func (c *Calendar) SubtractWorkDays(date time.Time, days int) time.Time {
	d := DateOnly(date)
	for remaining := days; remaining > 0; {
		d = d.AddDate(0, 0, -1)
		if c.IsWorkDay(d) {
			remaining--
		}
	}
	return d
}

// WorkDaysBetween counts working days in (start, end]. Returns 0 when end is
// not after start.
func (c *Calendar) WorkDaysBetween(start, end time.Time) int {
	a, b := DateOnly(start), DateOnly(end)
	if !b.After(a) {
		return 0
	}
	count := 0
	for d := a; d.Before(b); {
		d = d.AddDate(0, 0, 1)
		if c.IsWorkDay(d) {
			count++
		}
	}
	return count
}

// DateOnly truncates a time to UTC midnight.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func weekdayBit(w time.Weekday) int {
	if w == time.Sunday {
		return 64
	}
	return 1 << (int(w) - 1)
}
