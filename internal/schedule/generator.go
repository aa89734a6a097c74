// Package schedule expands a recurring-availability request into the
// concrete time intervals an instructor offers for consultations. The
// expansion is pure; persistence of the generated slots happens in the
// repository layer.
package schedule

import (
	"errors"
	"time"
)

// Request describes a recurring availability window. StartDate and
// EndDate bound the calendar range (inclusive, only the date component
// is used). DayStart and DayEnd are offsets from midnight marking the
// daily window. SlotDuration is the length of each generated slot.
// Weekdays restricts generation to the listed days; an empty slice
// means every day in the range.
type Request struct {
	StartDate    time.Time
	EndDate      time.Time
	DayStart     time.Duration
	DayEnd       time.Duration
	SlotDuration time.Duration
	Weekdays     []time.Weekday
}

// Interval is one generated slot. End is always Start + SlotDuration.
type Interval struct {
	Start time.Time
	End   time.Time
}

var (
	// ErrInvalidDuration is returned when the slot duration is zero or negative.
	ErrInvalidDuration = errors.New("slot duration must be positive")
	// ErrInvalidWindow is returned when the daily window is outside a single day.
	ErrInvalidWindow = errors.New("daily window must lie within one day")
	// ErrInvalidRange is returned when the end date precedes the start date.
	ErrInvalidRange = errors.New("end date before start date")
)

// Validate reports whether the request can be expanded. A window whose
// length is not a multiple of the duration is still valid; the trailing
// partial slot is simply dropped during expansion.
func (r Request) Validate() error {
	if r.SlotDuration <= 0 {
		return ErrInvalidDuration
	}
	if r.DayStart < 0 || r.DayEnd > 24*time.Hour || r.DayEnd <= r.DayStart {
		return ErrInvalidWindow
	}
	if dateOnly(r.EndDate).Before(dateOnly(r.StartDate)) {
		return ErrInvalidRange
	}
	return nil
}

// Expand walks every allowed calendar date in [StartDate, EndDate] and
// emits contiguous slots of exactly SlotDuration starting at DayStart.
// A slot is emitted only when its end does not exceed DayEnd, so only
// whole slots are produced and none of them overlap. The request must
// have been validated first.
func Expand(r Request) []Interval {
	allowed := func(time.Weekday) bool { return true }
	if len(r.Weekdays) > 0 {
		set := make(map[time.Weekday]bool, len(r.Weekdays))
		for _, wd := range r.Weekdays {
			set[wd] = true
		}
		allowed = func(wd time.Weekday) bool { return set[wd] }
	}

	var out []Interval
	end := dateOnly(r.EndDate)
	for day := dateOnly(r.StartDate); !day.After(end); day = day.AddDate(0, 0, 1) {
		if !allowed(day.Weekday()) {
			continue
		}
		windowEnd := day.Add(r.DayEnd)
		for cur := day.Add(r.DayStart); !cur.Add(r.SlotDuration).After(windowEnd); cur = cur.Add(r.SlotDuration) {
			out = append(out, Interval{Start: cur, End: cur.Add(r.SlotDuration)})
		}
	}
	return out
}

// dateOnly truncates t to midnight UTC.
func dateOnly(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
