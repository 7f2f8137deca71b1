package render

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/statement-engine/internal/model"
)

func date(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := model.ParseDate(s)
	require.NoError(t, err)
	return d
}

const fyKey = "duration:2023-10-01:2024-09-28"

// cashFlowFixture is a raw-view cash-flow statement: dividends filed as a
// positive outflow, capex with a negative roll-up weight, and an operating
// total that keeps its sign.
func cashFlowFixture(t *testing.T) *model.Statement {
	t.Helper()
	stmt := &model.Statement{
		Role: model.RoleCashFlow,
		View: model.ViewRaw,
		Lines: []model.LineItem{
			{
				Concept:     "us-gaap:NetCashProvidedByUsedInOperatingActivities",
				Label:       "Cash Flow from Operations",
				BalanceType: model.BalanceNone,
				Values:      map[string]model.Cell{fyKey: model.NumCell(118254000000)},
			},
			{
				Concept:     "us-gaap:PaymentsOfDividends",
				Label:       "Dividends Paid",
				BalanceType: model.BalanceCredit,
				Values:      map[string]model.Cell{fyKey: model.NumCell(15234000000)},
			},
			{
				Concept:     "us-gaap:PaymentsToAcquirePropertyPlantAndEquipment",
				Label:       "Capital Expenditures",
				Weight:      -1,
				BalanceType: model.BalanceCredit,
				Values:      map[string]model.Cell{fyKey: model.NumCell(9447000000)},
			},
		},
	}
	stmt.AddPeriod(model.DurationPeriod(date(t, "2023-10-01"), date(t, "2024-09-28")))
	return stmt
}

func cell(t *testing.T, stmt *model.Statement, concept string) float64 {
	t.Helper()
	for _, li := range stmt.Lines {
		if li.Concept == concept {
			c, ok := li.Value(fyKey)
			require.True(t, ok)
			require.NotNil(t, c.Num)
			return *c.Num
		}
	}
	t.Fatalf("concept %s not found", concept)
	return 0
}

func TestRenderRawPassesValuesThrough(t *testing.T) {
	stmt := cashFlowFixture(t)
	out, err := Render(stmt, model.ViewRaw)
	require.NoError(t, err)

	assert.Equal(t, 15234000000.0, cell(t, out, "us-gaap:PaymentsOfDividends"))
	assert.Equal(t, 9447000000.0, cell(t, out, "us-gaap:PaymentsToAcquirePropertyPlantAndEquipment"))
}

func TestRenderRawCarriesPreferredSign(t *testing.T) {
	out, err := Render(cashFlowFixture(t), model.ViewRaw)
	require.NoError(t, err)

	// Raw output keeps filed values but still carries the sign audit
	// trail, so consumers can see what presentation would apply.
	for _, li := range out.Lines {
		assert.Contains(t, []float64{1, -1}, li.PreferredSign, "%s carries no preferred sign", li.Concept)
	}

	pres, err := Render(cashFlowFixture(t), model.ViewPresentation)
	require.NoError(t, err)
	for i, li := range out.Lines {
		raw, ok := li.Value(fyKey)
		require.True(t, ok)
		got, ok := pres.Lines[i].Value(fyKey)
		require.True(t, ok)
		assert.Equal(t, *raw.Num*li.PreferredSign, *got.Num, li.Concept)
	}
}

func TestRenderPresentationFlipsByPreferredSign(t *testing.T) {
	out, err := Render(cashFlowFixture(t), model.ViewPresentation)
	require.NoError(t, err)

	// Uses of cash display negative: credit balance on a cash-flow
	// statement, or an explicit negative roll-up weight.
	assert.Equal(t, -15234000000.0, cell(t, out, "us-gaap:PaymentsOfDividends"))
	assert.Equal(t, -9447000000.0, cell(t, out, "us-gaap:PaymentsToAcquirePropertyPlantAndEquipment"))
	assert.Equal(t, 118254000000.0, cell(t, out, "us-gaap:NetCashProvidedByUsedInOperatingActivities"))
}

func TestSignRoundTrip(t *testing.T) {
	raw := cashFlowFixture(t)
	pres, err := Render(raw, model.ViewPresentation)
	require.NoError(t, err)

	// presentation == raw * preferred_sign, cell by cell.
	for i, li := range pres.Lines {
		rawCell, ok := raw.Lines[i].Value(fyKey)
		require.True(t, ok)
		got, ok := li.Value(fyKey)
		require.True(t, ok)
		assert.Equal(t, *rawCell.Num*li.PreferredSign, *got.Num, li.Concept)
	}
}

func TestRenderNormalizedUsesMagnitudes(t *testing.T) {
	raw := cashFlowFixture(t)
	// A filer that already reports dividends as a negative outflow.
	raw.Lines[1].Values[fyKey] = model.NumCell(-15234000000)

	out, err := Render(raw, model.ViewNormalized)
	require.NoError(t, err)

	// Normalize targets become positive magnitudes regardless of the
	// filed polarity; everything else follows the presentation rule.
	assert.Equal(t, 15234000000.0, cell(t, out, "us-gaap:PaymentsOfDividends"))
	assert.Equal(t, 9447000000.0, cell(t, out, "us-gaap:PaymentsToAcquirePropertyPlantAndEquipment"))
	assert.Equal(t, 118254000000.0, cell(t, out, "us-gaap:NetCashProvidedByUsedInOperatingActivities"))
}

func TestNormalizeMatchesExtensionConcepts(t *testing.T) {
	assert.True(t, isNormalizeTarget("acme:PaymentsOfDividendsAndDistributions"))
	assert.True(t, isNormalizeTarget("us-gaap:RepaymentsOfLongTermDebt"))
	assert.False(t, isNormalizeTarget("us-gaap:Revenues"))
}

func TestRenderSameViewIsIdempotent(t *testing.T) {
	once, err := Render(cashFlowFixture(t), model.ViewNormalized)
	require.NoError(t, err)
	twice, err := Render(once, model.ViewNormalized)
	require.NoError(t, err)
	assert.Equal(t, once, twice)
}

func TestRenderCrossViewFromNonRawFails(t *testing.T) {
	pres, err := Render(cashFlowFixture(t), model.ViewPresentation)
	require.NoError(t, err)

	_, err = Render(pres, model.ViewNormalized)
	assert.Error(t, err)
}

func TestRenderUnknownViewFails(t *testing.T) {
	_, err := Render(cashFlowFixture(t), model.View("display"))
	assert.Error(t, err)
}

func TestRenderNeverMutatesInput(t *testing.T) {
	raw := cashFlowFixture(t)
	_, err := Render(raw, model.ViewPresentation)
	require.NoError(t, err)

	assert.Equal(t, model.ViewRaw, raw.View)
	assert.Equal(t, 15234000000.0, cell(t, raw, "us-gaap:PaymentsOfDividends"))
}

func TestRenderSkipsNonNumericCells(t *testing.T) {
	stmt := cashFlowFixture(t)
	stmt.Lines[1].Values[fyKey] = model.Cell{Raw: ""}

	out, err := Render(stmt, model.ViewPresentation)
	require.NoError(t, err)

	c, ok := out.Lines[1].Value(fyKey)
	require.True(t, ok)
	assert.Nil(t, c.Num)
}
