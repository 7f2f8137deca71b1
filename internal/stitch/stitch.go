// Package stitch merges per-filing statements of the same role into one
// continuous multi-period table.
package stitch

import (
	"sort"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/statement-engine/internal/model"
)

// Stitch combines statements of one role across filings of the same filer.
// When two inputs supply the same period, the more complete source (fewest
// missing values in that period) wins outright; among equally complete
// sources, the most recently filed wins. Values are copied by reference from
// the winning source — stitching never interpolates or sums sub-periods.
//
// maxPeriods caps the output columns, most recent first; pass 0 for
// unbounded.
func Stitch(stmts []*model.Statement, role model.StatementRole, maxPeriods int) (*model.Statement, error) {
	var inputs []*model.Statement
	for _, s := range stmts {
		if s != nil && s.Role == role {
			inputs = append(inputs, s)
		}
	}
	if len(inputs) == 0 {
		return nil, eris.Errorf("stitch: no statements for role %s", role)
	}

	// Most recently filed first: the spine of the output takes the newest
	// filing's row ordering.
	sort.SliceStable(inputs, func(i, j int) bool {
		return inputs[i].Filing.FilingDate.After(inputs[j].Filing.FilingDate)
	})

	winners := pickPeriodWinners(inputs)

	cols := make([]model.Period, 0, len(winners))
	for _, w := range winners {
		cols = append(cols, w.period)
	}
	sort.SliceStable(cols, func(i, j int) bool {
		a, b := cols[i].EndDate(), cols[j].EndDate()
		if !a.Equal(b) {
			return a.After(b)
		}
		return cols[i].Key() < cols[j].Key()
	})
	if maxPeriods > 0 && len(cols) > maxPeriods {
		cols = cols[:maxPeriods]
	}
	kept := make(map[string]bool, len(cols))
	for _, p := range cols {
		kept[p.Key()] = true
	}

	out := &model.Statement{
		Role:    role,
		Filing:  inputs[0].Filing,
		View:    inputs[0].View,
		Periods: cols,
	}

	// Row spine: newest filing's rows first, then rows that only older
	// filings carry, in their own order.
	type rowKey struct {
		concept, axis, member, label string
	}
	haveRow := make(map[rowKey]int)
	for _, src := range inputs {
		for _, li := range src.Lines {
			k := rowKey{li.Concept, li.DimensionAxis, li.DimensionMember, li.Label}
			if _, ok := haveRow[k]; !ok {
				cp := li
				cp.Values = make(map[string]model.Cell)
				haveRow[k] = len(out.Lines)
				out.Lines = append(out.Lines, cp)
			}
		}
	}

	// Fill each kept period column from its winning source only.
	for key, w := range winners {
		if !kept[key] {
			continue
		}
		for _, li := range w.source.Lines {
			k := rowKey{li.Concept, li.DimensionAxis, li.DimensionMember, li.Label}
			idx, ok := haveRow[k]
			if !ok {
				continue
			}
			if c, has := li.Values[key]; has {
				out.Lines[idx].Values[key] = c
			}
		}
	}

	zap.L().Debug("stitched statements",
		zap.String("role", string(role)),
		zap.Int("inputs", len(inputs)),
		zap.Int("periods", len(cols)),
	)
	return out, nil
}

type winner struct {
	period model.Period
	source *model.Statement
}

// pickPeriodWinners resolves the union of periods to one source statement
// per period key.
func pickPeriodWinners(inputs []*model.Statement) map[string]winner {
	winners := make(map[string]winner)
	for _, src := range inputs {
		for _, p := range src.Periods {
			key := p.Key()
			cur, ok := winners[key]
			if !ok {
				winners[key] = winner{p, src}
				continue
			}
			// Lower missing-value count wins outright. Inputs are ordered
			// newest-filed first, so on a tie the holder (earlier in that
			// order) already is the most recently filed.
			if src.MissingValueCount(key) < cur.source.MissingValueCount(key) {
				winners[key] = winner{p, src}
			}
		}
	}
	return winners
}
