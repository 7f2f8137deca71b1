package assemble

import (
	"time"

	"github.com/sells-group/statement-engine/internal/model"
)

// labelBoundaryRows splits equity-statement rows whose concept carries
// instant values at both boundaries of a reporting period into distinct
// "Beginning balance" / "Ending balance" rows, with the instant values
// re-keyed into the duration period's column.
//
// Matching runs per row against that row's own instant cells, including
// every dimensional (per-equity-component) occurrence — a shared lookup
// across rows is exactly how all rows end up labeled with the same wrong
// instant.
func labelBoundaryRows(stmt *model.Statement) {
	if stmt.Role != model.RoleEquity {
		return
	}

	var durations []model.Period
	for _, p := range stmt.Periods {
		if p.IsDuration() {
			durations = append(durations, p)
		}
	}
	if len(durations) == 0 {
		return
	}

	consumed := make(map[string]bool) // instant period keys folded into duration columns
	var out []model.LineItem

	for _, li := range stmt.Lines {
		begin, end, matched := splitBoundaries(li, durations, consumed)
		if !matched {
			out = append(out, li)
			continue
		}
		out = append(out, begin, end)
	}
	stmt.Lines = out

	// Drop instant columns whose every use was folded into a duration
	// column; keep any instant still referenced by a surviving row.
	stillUsed := make(map[string]bool)
	for _, li := range stmt.Lines {
		for k := range li.Values {
			stillUsed[k] = true
		}
	}
	var periods []model.Period
	for _, p := range stmt.Periods {
		if consumed[p.Key()] && !stillUsed[p.Key()] {
			continue
		}
		periods = append(periods, p)
	}
	stmt.Periods = periods
}

// splitBoundaries checks one row for instant values matching a duration's
// start and end. XBRL instants for an opening balance land either on the
// period start or the day before it.
func splitBoundaries(li model.LineItem, durations []model.Period, consumed map[string]bool) (begin, end model.LineItem, matched bool) {
	if li.IsAbstract || len(li.Values) == 0 {
		return li, li, false
	}

	type fold struct {
		durKey           string
		beginKey, endKey string
		beginCell, endCell model.Cell
	}
	var folds []fold

	for _, d := range durations {
		bk, bc, okB := instantCellAt(li, *d.Start, d.Start.AddDate(0, 0, -1))
		ek, ec, okE := instantCellAt(li, *d.End)
		if okB && okE {
			folds = append(folds, fold{d.Key(), bk, ek, bc, ec})
		}
	}
	if len(folds) == 0 {
		return li, li, false
	}

	begin = cloneLine(li)
	end = cloneLine(li)
	begin.Label = li.Label + ", Beginning balance"
	end.Label = li.Label + ", Ending balance"

	for _, f := range folds {
		begin.Values[f.durKey] = f.beginCell
		end.Values[f.durKey] = f.endCell
		delete(begin.Values, f.beginKey)
		delete(begin.Values, f.endKey)
		delete(end.Values, f.beginKey)
		delete(end.Values, f.endKey)
		consumed[f.beginKey] = true
		consumed[f.endKey] = true
	}
	return begin, end, true
}

func instantCellAt(li model.LineItem, dates ...time.Time) (key string, cell model.Cell, ok bool) {
	for _, d := range dates {
		k := model.InstantPeriod(d).Key()
		if c, have := li.Values[k]; have && !c.Empty() {
			return k, c, true
		}
	}
	return "", model.Cell{}, false
}

func cloneLine(li model.LineItem) model.LineItem {
	cp := li
	cp.Values = make(map[string]model.Cell, len(li.Values))
	for k, v := range li.Values {
		cp.Values[k] = v
	}
	return cp
}
