package dimension

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sells-group/statement-engine/internal/model"
)

func TestClassifyHypercubeEvidenceWins(t *testing.T) {
	c := NewClassifier(nil)
	ctx := &RoleContext{
		Role:          model.RoleBalanceSheet,
		HypercubeAxes: map[string]bool{"us-gaap:StatementGeographicalAxis": true},
	}

	// Geography is a curated breakdown axis, but the role's hypercube
	// declares it, and definition-linkbase evidence outranks the lists.
	got := c.Classify("us-gaap:StatementGeographicalAxis", "country:US", ctx)
	assert.Equal(t, Face, got.Class)
	assert.Equal(t, model.ConfidenceHigh, got.Confidence)
}

func TestClassifyStructuralAxisForRole(t *testing.T) {
	c := NewClassifier(nil)

	got := c.Classify("us-gaap:StatementEquityComponentsAxis", "us-gaap:RetainedEarningsMember",
		&RoleContext{Role: model.RoleEquity})
	assert.Equal(t, Face, got.Class)
	assert.Equal(t, model.ConfidenceHigh, got.Confidence)

	// The same axis carries no structural meaning on the income statement.
	got = c.Classify("us-gaap:StatementEquityComponentsAxis", "us-gaap:RetainedEarningsMember",
		&RoleContext{Role: model.RoleIncomeStatement})
	assert.NotEqual(t, model.ConfidenceHigh, got.Confidence)
}

func TestClassifyCuratedLists(t *testing.T) {
	c := NewClassifier(nil)

	got := c.Classify("srt:ProductOrServiceAxis", "us-gaap:ProductMember", nil)
	assert.Equal(t, Face, got.Class)
	assert.Equal(t, model.ConfidenceMedium, got.Confidence)

	got = c.Classify("us-gaap:MajorCustomersAxis", "", nil)
	assert.Equal(t, Breakdown, got.Class)
	assert.Equal(t, model.ConfidenceMedium, got.Confidence)
}

func TestClassifyPatternFallback(t *testing.T) {
	c := NewClassifier(nil)

	got := c.Classify("us-gaap:FairValueByMeasurementFrequencyAxis", "", nil)
	assert.Equal(t, Breakdown, got.Class)
	assert.Equal(t, model.ConfidenceLow, got.Confidence)
}

func TestClassifyUnknownAxisDefaultsToFace(t *testing.T) {
	c := NewClassifier(nil)

	got := c.Classify("acme:WidgetColorAxis", "acme:BlueMember", nil)
	assert.Equal(t, Face, got.Class)
	assert.Equal(t, model.ConfidenceLow, got.Confidence)
	assert.Contains(t, got.Reason, "defaulting to face")
}

func TestClassifyIsDeterministic(t *testing.T) {
	c := NewClassifier(nil)
	ctx := &RoleContext{Role: model.RoleEquity}

	first := c.Classify("us-gaap:StatementClassOfStockAxis", "us-gaap:CommonClassAMember", ctx)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, c.Classify("us-gaap:StatementClassOfStockAxis", "us-gaap:CommonClassAMember", ctx))
	}
}
