package assemble

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/statement-engine/internal/model"
)

// equityInput builds an equity-statement input where StockholdersEquity has
// instant values at both boundaries of the fiscal year.
func equityInput(t *testing.T) Input {
	t.Helper()
	fy := model.DurationPeriod(date(t, "2023-10-01"), date(t, "2024-09-28"))
	opening := model.InstantPeriod(date(t, "2023-09-30")) // day before period start
	closing := model.InstantPeriod(date(t, "2024-09-28"))

	return Input{
		Role: model.RoleEquity,
		Facts: []model.Fact{
			numFact("us-gaap:StockholdersEquity", 62146000000, opening),
			numFact("us-gaap:StockholdersEquity", 56950000000, closing),
			numFact("us-gaap:NetIncomeLoss", 93736000000, fy),
		},
		Presentation: []model.PresentationEdge{
			{Parent: "seng:StatementOfEquityTable", Child: "us-gaap:StockholdersEquity", Order: 0},
			{Parent: "seng:StatementOfEquityTable", Child: "us-gaap:NetIncomeLoss", Order: 1},
		},
		Meta: map[string]model.ConceptMeta{
			"us-gaap:StockholdersEquity": {Concept: "us-gaap:StockholdersEquity", Label: "Total Stockholders' Equity"},
			"us-gaap:NetIncomeLoss":      {Concept: "us-gaap:NetIncomeLoss", Label: "Net Income"},
		},
	}
}

func TestEquityBoundaryRows(t *testing.T) {
	stmt, err := Assemble(equityInput(t), nil)
	require.NoError(t, err)

	var labels []string
	for _, li := range stmt.Lines {
		labels = append(labels, li.Label)
	}
	require.Equal(t, []string{
		"Total Stockholders' Equity, Beginning balance",
		"Total Stockholders' Equity, Ending balance",
		"Net Income",
	}, labels)

	fyKey := "duration:2023-10-01:2024-09-28"
	begin, end := stmt.Lines[0], stmt.Lines[1]

	require.Contains(t, begin.Values, fyKey)
	assert.Equal(t, 62146000000.0, *begin.Values[fyKey].Num)
	require.Contains(t, end.Values, fyKey)
	assert.Equal(t, 56950000000.0, *end.Values[fyKey].Num)

	// The folded instant columns disappear; only the duration remains.
	require.Len(t, stmt.Periods, 1)
	assert.Equal(t, fyKey, stmt.Periods[0].Key())
}

func TestEquityBoundaryRowsPerDimensionalRow(t *testing.T) {
	in := equityInput(t)
	opening := model.InstantPeriod(date(t, "2023-09-30"))
	closing := model.InstantPeriod(date(t, "2024-09-28"))
	retained := model.Dimension{
		Axis:   "us-gaap:StatementEquityComponentsAxis",
		Member: "us-gaap:RetainedEarningsMember",
	}
	in.Facts = append(in.Facts,
		numFact("us-gaap:StockholdersEquity", 214000000, opening, retained),
		numFact("us-gaap:StockholdersEquity", -19154000000, closing, retained),
	)

	stmt, err := Assemble(in, nil)
	require.NoError(t, err)

	fyKey := "duration:2023-10-01:2024-09-28"
	var dimBegin, dimEnd *model.LineItem
	for i := range stmt.Lines {
		li := &stmt.Lines[i]
		if !li.IsDimension {
			continue
		}
		switch {
		case li.Label == "Total Stockholders' Equity: RetainedEarningsMember, Beginning balance":
			dimBegin = li
		case li.Label == "Total Stockholders' Equity: RetainedEarningsMember, Ending balance":
			dimEnd = li
		}
	}
	require.NotNil(t, dimBegin)
	require.NotNil(t, dimEnd)

	// Each row folds its own instant values, not a shared lookup's.
	assert.Equal(t, 214000000.0, *dimBegin.Values[fyKey].Num)
	assert.Equal(t, -19154000000.0, *dimEnd.Values[fyKey].Num)
}

func TestBoundaryLabelingSkipsNonEquityRoles(t *testing.T) {
	in := equityInput(t)
	in.Role = model.RoleBalanceSheet
	in.RoleContext = nil

	stmt, err := Assemble(in, nil)
	require.NoError(t, err)
	for _, li := range stmt.Lines {
		assert.NotContains(t, li.Label, "Beginning balance")
	}
}

func TestBoundaryRowsRequireBothEnds(t *testing.T) {
	in := equityInput(t)
	// Only the closing instant exists; no split happens and the instant
	// column survives.
	in.Facts = []model.Fact{
		numFact("us-gaap:StockholdersEquity", 56950000000, model.InstantPeriod(date(t, "2024-09-28"))),
		numFact("us-gaap:NetIncomeLoss", 93736000000, model.DurationPeriod(date(t, "2023-10-01"), date(t, "2024-09-28"))),
	}

	stmt, err := Assemble(in, nil)
	require.NoError(t, err)

	var labels []string
	keys := make(map[string]bool)
	for _, li := range stmt.Lines {
		labels = append(labels, li.Label)
		for k := range li.Values {
			keys[k] = true
		}
	}
	assert.Contains(t, labels, "Total Stockholders' Equity")
	assert.NotContains(t, labels, "Total Stockholders' Equity, Ending balance")
	assert.True(t, keys["instant:2024-09-28"])
}
