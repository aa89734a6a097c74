package schedule

import (
	"testing"
	"time"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestValidate(t *testing.T) {
	base := Request{
		StartDate:    date(2025, time.March, 3),
		EndDate:      date(2025, time.March, 7),
		DayStart:     9 * time.Hour,
		DayEnd:       17 * time.Hour,
		SlotDuration: 60 * time.Minute,
	}
	if err := base.Validate(); err != nil {
		t.Fatalf("valid request rejected: %v", err)
	}

	cases := []struct {
		name   string
		mutate func(*Request)
		want   error
	}{
		{"zero duration", func(r *Request) { r.SlotDuration = 0 }, ErrInvalidDuration},
		{"negative duration", func(r *Request) { r.SlotDuration = -time.Minute }, ErrInvalidDuration},
		{"window end before start", func(r *Request) { r.DayEnd = 8 * time.Hour }, ErrInvalidWindow},
		{"window past midnight", func(r *Request) { r.DayEnd = 25 * time.Hour }, ErrInvalidWindow},
		{"negative day start", func(r *Request) { r.DayStart = -time.Hour }, ErrInvalidWindow},
		{"end date before start date", func(r *Request) { r.EndDate = date(2025, time.March, 1) }, ErrInvalidRange},
	}
	for _, tc := range cases {
		r := base
		tc.mutate(&r)
		if err := r.Validate(); err != tc.want {
			t.Errorf("%s: err = %v, want %v", tc.name, err, tc.want)
		}
	}
}

// Single Monday, 09:00-11:00 window, 60 minute slots, Monday filter:
// exactly two slots, 09:00-10:00 and 10:00-11:00.
func TestExpandSingleMonday(t *testing.T) {
	monday := date(2025, time.March, 3) // a Monday
	r := Request{
		StartDate:    monday,
		EndDate:      monday,
		DayStart:     9 * time.Hour,
		DayEnd:       11 * time.Hour,
		SlotDuration: 60 * time.Minute,
		Weekdays:     []time.Weekday{time.Monday},
	}
	if err := r.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	got := Expand(r)
	if len(got) != 2 {
		t.Fatalf("expected 2 slots, got %d: %v", len(got), got)
	}
	wantStarts := []time.Time{monday.Add(9 * time.Hour), monday.Add(10 * time.Hour)}
	for i, iv := range got {
		if !iv.Start.Equal(wantStarts[i]) {
			t.Errorf("slot %d start = %v, want %v", i, iv.Start, wantStarts[i])
		}
		if !iv.End.Equal(iv.Start.Add(time.Hour)) {
			t.Errorf("slot %d end = %v, want %v", i, iv.End, iv.Start.Add(time.Hour))
		}
	}
}

func TestExpandDropsPartialTail(t *testing.T) {
	day := date(2025, time.March, 4)
	r := Request{
		StartDate:    day,
		EndDate:      day,
		DayStart:     9 * time.Hour,
		DayEnd:       10*time.Hour + 30*time.Minute, // 90 minute window
		SlotDuration: 60 * time.Minute,
	}
	got := Expand(r)
	if len(got) != 1 {
		t.Fatalf("expected 1 whole slot, got %d", len(got))
	}
	if !got[0].End.Equal(day.Add(10 * time.Hour)) {
		t.Errorf("slot end = %v, want %v", got[0].End, day.Add(10*time.Hour))
	}
}

func TestExpandWeekdayFilter(t *testing.T) {
	// 2025-03-03 (Mon) through 2025-03-09 (Sun).
	r := Request{
		StartDate:    date(2025, time.March, 3),
		EndDate:      date(2025, time.March, 9),
		DayStart:     9 * time.Hour,
		DayEnd:       10 * time.Hour,
		SlotDuration: 30 * time.Minute,
		Weekdays:     []time.Weekday{time.Tuesday, time.Thursday},
	}
	got := Expand(r)
	if len(got) != 4 { // 2 slots per allowed day, 2 allowed days
		t.Fatalf("expected 4 slots, got %d", len(got))
	}
	for _, iv := range got {
		wd := iv.Start.Weekday()
		if wd != time.Tuesday && wd != time.Thursday {
			t.Errorf("slot on %v violates weekday filter", wd)
		}
	}
}

func TestExpandEmptyFilterCoversAllDays(t *testing.T) {
	r := Request{
		StartDate:    date(2025, time.March, 3),
		EndDate:      date(2025, time.March, 5),
		DayStart:     8 * time.Hour,
		DayEnd:       9 * time.Hour,
		SlotDuration: time.Hour,
	}
	got := Expand(r)
	if len(got) != 3 {
		t.Fatalf("expected 3 slots, got %d", len(got))
	}
}

func TestExpandNoOverlapsAndExactDuration(t *testing.T) {
	r := Request{
		StartDate:    date(2025, time.March, 3),
		EndDate:      date(2025, time.March, 14),
		DayStart:     9*time.Hour + 15*time.Minute,
		DayEnd:       12 * time.Hour,
		SlotDuration: 25 * time.Minute,
	}
	got := Expand(r)
	if len(got) == 0 {
		t.Fatal("expected slots")
	}
	for i, iv := range got {
		if iv.End.Sub(iv.Start) != r.SlotDuration {
			t.Errorf("slot %d has duration %v", i, iv.End.Sub(iv.Start))
		}
		if iv.End.After(dateOnly(iv.Start).Add(r.DayEnd)) {
			t.Errorf("slot %d exceeds daily window: %v", i, iv)
		}
		if i > 0 && got[i-1].End.After(iv.Start) && dateOnly(got[i-1].Start).Equal(dateOnly(iv.Start)) {
			t.Errorf("slots %d and %d overlap", i-1, i)
		}
	}
}

func TestExpandWindowSmallerThanDuration(t *testing.T) {
	day := date(2025, time.March, 3)
	r := Request{
		StartDate:    day,
		EndDate:      day,
		DayStart:     9 * time.Hour,
		DayEnd:       9*time.Hour + 30*time.Minute,
		SlotDuration: time.Hour,
	}
	if err := r.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if got := Expand(r); len(got) != 0 {
		t.Fatalf("expected no slots, got %d", len(got))
	}
}
