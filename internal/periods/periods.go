// Package periods classifies reporting periods by duration and selects the
// columns a rendered statement shows.
package periods

import (
	"sort"

	"github.com/rotisserie/eris"

	"github.com/sells-group/statement-engine/internal/model"
)

// Class buckets a period by the span of its own dates. Upstream fiscal
// labels are never consulted: a 90-day context mislabeled as a fiscal year
// still classifies quarterly.
type Class string

const (
	Annual    Class = "annual"
	Quarterly Class = "quarterly"
	Instant   Class = "instant"
	Other     Class = "other"
)

const (
	annualMinDays   = 300
	quarterlyMinDay = 80
	quarterlyMaxDay = 100
)

// Classify buckets one period by its derived duration.
func Classify(p model.Period) Class {
	if p.IsInstant() {
		return Instant
	}
	days := p.DurationDays()
	switch {
	case days > annualMinDays:
		return Annual
	case days >= quarterlyMinDay && days <= quarterlyMaxDay:
		return Quarterly
	default:
		return Other
	}
}

// Request selects which period classes a view shows.
type Request string

const (
	All         Request = "all"
	AnnualOnly  Request = "annual"
	QuarterOnly Request = "quarterly"
)

// ParseRequest validates a period request string.
func ParseRequest(s string) (Request, error) {
	switch Request(s) {
	case All, AnnualOnly, QuarterOnly:
		return Request(s), nil
	}
	return "", eris.Errorf("periods: unknown period request %q (want all, annual, or quarterly)", s)
}

// Select returns the statement's periods filtered by the request and
// stripped of empty columns, most-recent-first. Pass chronological=true for
// oldest-first ordering.
//
// Instant periods pass duration filters: a balance sheet column is a point
// in time regardless of whether the caller asked for annual or quarterly
// data.
func Select(stmt *model.Statement, req Request, chronological bool) []model.Period {
	var out []model.Period
	for _, p := range stmt.Periods {
		if !matches(Classify(p), req) {
			continue
		}
		if empty(stmt, p.Key()) {
			continue
		}
		out = append(out, p)
	}

	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i].EndDate(), out[j].EndDate()
		if !a.Equal(b) {
			if chronological {
				return a.Before(b)
			}
			return a.After(b)
		}
		return out[i].Key() < out[j].Key()
	})
	return out
}

func matches(c Class, req Request) bool {
	switch req {
	case AnnualOnly:
		return c == Annual || c == Instant
	case QuarterOnly:
		return c == Quarterly || c == Instant
	default:
		return true
	}
}

// empty reports whether every non-abstract cell in the column is missing.
// A nil cell, an empty string, and a whitespace-only string are all the same
// kind of absent.
func empty(stmt *model.Statement, periodKey string) bool {
	for _, li := range stmt.Lines {
		if li.IsAbstract {
			continue
		}
		if c, ok := li.Values[periodKey]; ok && !c.Empty() {
			return false
		}
	}
	return true
}
