package model

import (
	"fmt"
	"time"
)

const dateLayout = "2006-01-02"

// Period is the reporting window a fact applies to: either an instant date
// or a start/end duration.
type Period struct {
	Instant *time.Time `json:"instant,omitempty"`
	Start   *time.Time `json:"start,omitempty"`
	End     *time.Time `json:"end,omitempty"`
	Label   string     `json:"label,omitempty"`
}

// InstantPeriod returns an instant period for the given date.
func InstantPeriod(t time.Time) Period {
	return Period{Instant: &t}
}

// DurationPeriod returns a duration period spanning start to end.
func DurationPeriod(start, end time.Time) Period {
	return Period{Start: &start, End: &end}
}

// IsInstant reports whether the period is a point-in-time date.
func (p Period) IsInstant() bool {
	return p.Instant != nil
}

// IsDuration reports whether the period spans a start/end range.
func (p Period) IsDuration() bool {
	return p.Start != nil && p.End != nil
}

// DurationDays returns the number of days the period spans, or 0 for
// instants and malformed periods.
func (p Period) DurationDays() int {
	if !p.IsDuration() {
		return 0
	}
	return int(p.End.Sub(*p.Start).Hours() / 24)
}

// EndDate returns the instant date or the duration end date, whichever
// applies. The zero time is returned for malformed periods.
func (p Period) EndDate() time.Time {
	if p.Instant != nil {
		return *p.Instant
	}
	if p.End != nil {
		return *p.End
	}
	return time.Time{}
}

// Key returns a canonical identifier for the period. Two periods with the
// same dates collapse to the same key regardless of source context ID, which
// is what keeps duplicate contexts from producing duplicate columns.
func (p Period) Key() string {
	if p.IsInstant() {
		return "instant:" + p.Instant.Format(dateLayout)
	}
	if p.IsDuration() {
		return fmt.Sprintf("duration:%s:%s", p.Start.Format(dateLayout), p.End.Format(dateLayout))
	}
	return "invalid"
}

// DisplayLabel returns the explicit label if set, otherwise a label derived
// from the period dates.
func (p Period) DisplayLabel() string {
	if p.Label != "" {
		return p.Label
	}
	if p.IsInstant() {
		return p.Instant.Format(dateLayout)
	}
	if p.IsDuration() {
		return fmt.Sprintf("%s to %s", p.Start.Format(dateLayout), p.End.Format(dateLayout))
	}
	return "unknown period"
}

// SamePeriod reports whether two periods cover identical dates.
func SamePeriod(a, b Period) bool {
	return a.Key() == b.Key()
}

// ParseDate parses a YYYY-MM-DD date string.
func ParseDate(s string) (time.Time, error) {
	return time.Parse(dateLayout, s)
}
