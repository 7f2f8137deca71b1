package edgarfacts

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/statement-engine/internal/model"
)

const companyFactsJSON = `{
	"cik": 320193,
	"entityName": "Apple Inc.",
	"facts": {
		"dei": {
			"EntityCommonStockSharesOutstanding": {
				"label": "Entity Common Stock, Shares Outstanding",
				"units": {"shares": [{"end": "2024-10-18", "val": 15115823000, "accn": "0000320193-24-000123", "fy": 2024, "fp": "FY", "form": "10-K", "filed": "2024-11-01"}]}
			}
		},
		"us-gaap": {
			"Assets": {
				"label": "Total Assets",
				"units": {"USD": [
					{"end": "2024-09-28", "val": 364980000000, "accn": "0000320193-24-000123", "fy": 2024, "fp": "FY", "form": "10-K", "filed": "2024-11-01"},
					{"end": "2023-09-30", "val": 352583000000, "accn": "0000320193-24-000123", "fy": 2024, "fp": "FY", "form": "10-K", "filed": "2024-11-01"}
				]}
			},
			"Revenues": {
				"label": "Revenue",
				"units": {"USD": [
					{"start": "2023-10-01", "end": "2024-09-28", "val": 391035000000, "accn": "0000320193-24-000123", "fy": 2024, "fp": "FY", "form": "10-K", "filed": "2024-11-01"}
				]}
			},
			"DeferredTaxAssetsNet": {
				"label": "Deferred Tax Assets",
				"units": {"USD": [{"end": "2024-09-28", "val": 12000000, "accn": "0000320193-24-000123", "fy": 2024, "fp": "FY", "form": "10-K", "filed": "2024-11-01"}]}
			},
			"NetIncomeLoss": {
				"label": "Net Income",
				"units": {"USD": [{"end": "", "val": 93736000000, "accn": "0000320193-24-000123", "fy": 2024, "fp": "FY", "form": "10-K", "filed": "2024-11-01"}]}
			}
		}
	}
}`

func parseFixture(t *testing.T) *Facts {
	t.Helper()
	f, err := Parse(strings.NewReader(companyFactsJSON))
	require.NoError(t, err)
	return f
}

func TestParse(t *testing.T) {
	f := parseFixture(t)
	assert.Equal(t, 320193, f.CIK)
	assert.Equal(t, "Apple Inc.", f.EntityName)
	require.Contains(t, f.Facts, "us-gaap")
	assert.Contains(t, f.Facts["us-gaap"], "Assets")
}

func TestParseRejectsMalformedJSON(t *testing.T) {
	_, err := Parse(strings.NewReader("{not json"))
	assert.Error(t, err)
}

func TestFiling(t *testing.T) {
	meta := parseFixture(t).Filing()
	assert.Equal(t, "Apple Inc.", meta.FilerName)
	assert.Equal(t, "320193", meta.CIK)
}

func TestRawFactsFlattens(t *testing.T) {
	raw := parseFixture(t).RawFacts()

	// Assets x2 and Revenues survive; DeferredTaxAssetsNet is outside the
	// standard layouts, the dei namespace is skipped, and the NetIncomeLoss
	// value without an end date is dropped.
	require.Len(t, raw, 3)

	assert.Equal(t, "us-gaap:Assets", raw[0].Concept)
	assert.Equal(t, "Total Assets", raw[0].Label)
	assert.Equal(t, "USD", raw[0].Unit)
	assert.Equal(t, "2024-09-28", raw[0].Instant)
	assert.Equal(t, model.RoleBalanceSheet, raw[0].Role)
	assert.Equal(t, "2023-09-30", raw[1].Instant)

	rev := raw[2]
	assert.Equal(t, "us-gaap:Revenues", rev.Concept)
	assert.Equal(t, "2023-10-01", rev.Start)
	assert.Equal(t, "2024-09-28", rev.End)
	assert.Empty(t, rev.Instant)
	assert.Equal(t, model.RoleIncomeStatement, rev.Role)
}

func TestRawFactsValueFormats(t *testing.T) {
	raw := parseFixture(t).RawFacts()
	require.NotEmpty(t, raw)
	// json decodes numbers into float64; big values arrive in scientific
	// notation, which the coercion layer parses fine.
	assert.Equal(t, "3.6498e+11", raw[0].Value)
}

func TestRawFactsDeterministicOrder(t *testing.T) {
	first := parseFixture(t).RawFacts()
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, parseFixture(t).RawFacts())
	}
}

func TestRawFactsEmptyDocument(t *testing.T) {
	var f *Facts
	assert.Nil(t, f.RawFacts())
	assert.Nil(t, (&Facts{}).RawFacts())
}
