package render

import (
	"github.com/sells-group/statement-engine/internal/dimension"
	"github.com/sells-group/statement-engine/internal/model"
	"github.com/sells-group/statement-engine/internal/periods"
)

// TableOptions selects what a projected table shows.
type TableOptions struct {
	View model.View
	// Periods filters columns to all, annual, or quarterly.
	Periods periods.Request
	// IncludeDimensions keeps breakdown-classified dimension rows;
	// when false only the face grid (including face-classified dimension
	// rows) is shown.
	IncludeDimensions bool
	// Chronological orders columns oldest-first instead of the default
	// most-recent-first.
	Chronological bool
}

// TableRow is one flat row of the projected table. The audit columns
// (balance type, weight, preferred sign, parent concepts) always travel with
// the values so a consumer can see why a cell has the sign it does.
type TableRow struct {
	Concept             string            `json:"concept"`
	Label               string            `json:"label"`
	Level               int               `json:"level"`
	IsAbstract          bool              `json:"is_abstract"`
	IsDimension         bool              `json:"is_dimension"`
	DimensionAxis       string            `json:"dimension_axis,omitempty"`
	DimensionMember     string            `json:"dimension_member,omitempty"`
	DimensionConfidence string            `json:"dimension_confidence,omitempty"`
	BalanceType         model.BalanceType `json:"balance_type,omitempty"`
	Weight              float64           `json:"weight"`
	PreferredSign       float64           `json:"preferred_sign"`
	CalculationParent   string            `json:"calculation_parent_concept,omitempty"`
	PresentationParent  string            `json:"presentation_parent_concept,omitempty"`
	// Cells align with Table.Periods. The column is numeric from the start:
	// a missing value is nil, never an empty-string placeholder.
	Cells []*float64 `json:"cells"`
}

// Table is the flat tabular projection of one rendered statement.
type Table struct {
	Role    model.StatementRole `json:"role"`
	Filing  model.FilingMeta    `json:"filing"`
	View    model.View          `json:"view"`
	Periods []model.Period      `json:"periods"`
	Rows    []TableRow          `json:"rows"`
}

// ToTable renders the statement under the requested view and projects it
// into a flat table with one column per selected period.
func ToTable(stmt *model.Statement, opts TableOptions) (*Table, error) {
	view := opts.View
	if view == "" {
		view = model.ViewRaw
	}
	req := opts.Periods
	if req == "" {
		req = periods.All
	}

	rendered, err := Render(stmt, view)
	if err != nil {
		return nil, err
	}

	cols := periods.Select(rendered, req, opts.Chronological)

	t := &Table{
		Role:    rendered.Role,
		Filing:  rendered.Filing,
		View:    rendered.View,
		Periods: cols,
	}

	for _, li := range rendered.Lines {
		if !opts.IncludeDimensions && li.IsDimension && li.DimensionClass == string(dimension.Breakdown) {
			continue
		}
		row := TableRow{
			Concept:             li.Concept,
			Label:               li.Label,
			Level:               li.Level,
			IsAbstract:          li.IsAbstract,
			IsDimension:         li.IsDimension,
			DimensionAxis:       li.DimensionAxis,
			DimensionMember:     li.DimensionMember,
			DimensionConfidence: dimensionConfidence(li),
			BalanceType:         li.BalanceType,
			Weight:              li.Weight,
			PreferredSign:       li.PreferredSign,
			CalculationParent:   li.CalculationParent,
			PresentationParent:  li.PresentationParent,
			Cells:               make([]*float64, len(cols)),
		}
		for i, p := range cols {
			if c, ok := li.Values[p.Key()]; ok && c.Num != nil {
				v := *c.Num
				row.Cells[i] = &v
			}
		}
		t.Rows = append(t.Rows, row)
	}
	return t, nil
}

func dimensionConfidence(li model.LineItem) string {
	if !li.IsDimension {
		return ""
	}
	return li.DimensionConfidence.String()
}
