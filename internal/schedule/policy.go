package schedule

import (
	"time"
)

// Business hours for the canonical grid. 23:00 is the last start key; a
// start is structurally eligible only when start+duration fits before
// midnight. That end-of-day rule is applied in one place (timeKeys) so every
// caller agrees on it.
const (
	OpenHour            = 8
	LastStartHour       = 23
	SlotIntervalMinutes = 30

	dateLayout = "2006-01-02"
	timeLayout = "15:04"

	minutesPerDay = 24 * 60
)

// Policy decides which dates and slot start times are bookable given the
// clock, the minimum advance window and the advance-booking horizon. Dates
// and times are treated in local time, no timezone conversion.
type Policy struct {
	MinAdvance     time.Duration
	MaxAdvanceDays int
	AllowSameDay   bool

	// Now is the clock, swappable in tests. Defaults to time.Now.
	Now func() time.Time
}

func (p *Policy) now() time.Time {
	if p.Now != nil {
		return p.Now()
	}
	return time.Now()
}

// Bookable reports whether a slot starting at slotTime on slotDate may still
// be booked. Only the start time is gated against the advance window; the
// end-of-day fit is handled by grid key generation.
func (p *Policy) Bookable(slotDate, slotTime string) bool {
	slotDT, err := time.ParseInLocation(dateLayout+" "+timeLayout, slotDate+" "+slotTime, time.Local)
	if err != nil {
		return false
	}

	now := p.now()
	today := now.Format(dateLayout)

	switch {
	case slotDate < today:
		return false
	case slotDate == today:
		return slotDT.After(now.Add(p.MinAdvance))
	default:
		return slotDT.After(now)
	}
}

// SelectableDates returns the bookable date range, bounded at generation
// time rather than filtered afterwards. Today is included only when
// same-day booking is allowed; the last entry is MaxAdvanceDays ahead of the
// first selectable day.
func (p *Policy) SelectableDates() []string {
	first := p.now()
	if !p.AllowSameDay {
		first = first.AddDate(0, 0, 1)
	}

	dates := make([]string, 0, p.MaxAdvanceDays+1)
	for i := 0; i <= p.MaxAdvanceDays; i++ {
		dates = append(dates, first.AddDate(0, 0, i).Format(dateLayout))
	}
	return dates
}

// ValidDuration reports whether d is a 30-minute multiple between 30 minutes
// and 8 hours.
func ValidDuration(d int) bool {
	return d >= 30 && d <= 480 && d%30 == 0
}

// ValidDate reports whether s is a well-formed ISO date.
func ValidDate(s string) bool {
	_, err := time.Parse(dateLayout, s)
	return err == nil
}

// ValidTime reports whether s is a well-formed HH:MM time.
func ValidTime(s string) bool {
	_, err := time.Parse(timeLayout, s)
	return err == nil
}

// timeKeys generates the canonical half-hour start keys between 08:00 and
// 23:00, keeping only starts whose end fits before midnight for the given
// duration.
func timeKeys(durationMinutes int) []string {
	keys := make([]string, 0, (LastStartHour-OpenHour)*2+1)
	for m := OpenHour * 60; m <= LastStartHour*60; m += SlotIntervalMinutes {
		if m+durationMinutes > minutesPerDay {
			continue
		}
		keys = append(keys, minutesToKey(m))
	}
	return keys
}

func minutesToKey(m int) string {
	return twoDigits(m/60) + ":" + twoDigits(m%60)
}

func twoDigits(n int) string {
	return string([]byte{byte('0' + n/10), byte('0' + n%10)})
}

// AddMinutes returns the HH:MM time that is durationMinutes after start,
// wrapping at midnight.
func AddMinutes(start string, durationMinutes int) string {
	t, err := time.Parse(timeLayout, start)
	if err != nil {
		return start
	}
	total := (t.Hour()*60 + t.Minute() + durationMinutes) % minutesPerDay
	return minutesToKey(total)
}
