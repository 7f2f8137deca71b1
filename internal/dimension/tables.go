package dimension

import (
	"os"
	"regexp"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/statement-engine/internal/model"
)

// Tables holds the curated axis classification lists. A Tables value is
// immutable after construction and safe for unsynchronized concurrent reads;
// tests inject alternate taxonomy versions instead of patching globals.
type Tables struct {
	faceAxes          map[string]bool
	breakdownAxes     map[string]bool
	structuralAxes    map[model.StatementRole]map[string]bool
	breakdownPatterns []*regexp.Regexp
}

// tablesFile is the YAML override shape for Tables.
type tablesFile struct {
	FaceAxes          []string                       `yaml:"face_axes"`
	BreakdownAxes     []string                       `yaml:"breakdown_axes"`
	StructuralAxes    map[string][]string            `yaml:"structural_axes"`
	BreakdownPatterns []string                       `yaml:"breakdown_patterns"`
}

// DefaultTables returns the built-in classification lists, maintained from
// axes observed across US-GAAP and IFRS filers.
func DefaultTables() *Tables {
	return &Tables{
		// Identity dimensions that belong on the statement face.
		faceAxes: toSet([]string{
			"ProductOrServiceAxis",
			"DebtInstrumentAxis",
			"LongtermDebtTypeAxis",
			"ContractWithCustomerBasisOfPricingAxis",
			"ShortTermDebtTypeAxis",
			"FinancialInstrumentAxis",
			"AwardTypeAxis",
		}),
		// Disclosure-only dimensions hidden from the face by default.
		breakdownAxes: toSet([]string{
			"MajorCustomersAxis",
			"ConcentrationRiskByTypeAxis",
			"ConcentrationRiskByBenchmarkAxis",
			"StatementGeographicalAxis",
			"RestatementAxis",
			"RestatementAxisAxis",
			"SrtRestatementAxis",
			"RetirementPlanTypeAxis",
			"RetirementPlanNameAxis",
			"LitigationCaseAxis",
			"LossContingenciesByNatureOfContingencyAxis",
			"FairValueByFairValueHierarchyLevelAxis",
			"IncomeStatementLocationAxis",
			"BalanceSheetLocationAxis",
		}),
		// Axes that define the columns of a specific statement rather than a
		// note breakdown. Role-aware: the same axis may be a breakdown
		// elsewhere.
		structuralAxes: map[model.StatementRole]map[string]bool{
			model.RoleEquity: toSet([]string{
				"StatementEquityComponentsAxis",
				"StatementClassOfStockAxis",
			}),
			model.RoleBalanceSheet: toSet([]string{
				"StatementClassOfStockAxis",
			}),
		},
		breakdownPatterns: compileAll([]string{
			"FairValueBy",
			"ConcentrationRisk",
			"Restatement",
			"RetirementPlan",
			"Litigation",
			"ByNatureOf",
		}),
	}
}

// LoadTables reads a YAML override file and returns the resulting Tables.
// Lists in the file replace the corresponding built-in list wholesale; an
// absent list keeps the default.
func LoadTables(path string) (*Tables, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "dimension: read tables %s", path)
	}
	var tf tablesFile
	if err := yaml.Unmarshal(data, &tf); err != nil {
		return nil, eris.Wrapf(err, "dimension: parse tables %s", path)
	}

	t := DefaultTables()
	if tf.FaceAxes != nil {
		t.faceAxes = toSet(tf.FaceAxes)
	}
	if tf.BreakdownAxes != nil {
		t.breakdownAxes = toSet(tf.BreakdownAxes)
	}
	if tf.StructuralAxes != nil {
		t.structuralAxes = make(map[model.StatementRole]map[string]bool, len(tf.StructuralAxes))
		for role, axes := range tf.StructuralAxes {
			r, err := model.ParseRole(role)
			if err != nil {
				return nil, err
			}
			t.structuralAxes[r] = toSet(axes)
		}
	}
	if tf.BreakdownPatterns != nil {
		pats := make([]*regexp.Regexp, 0, len(tf.BreakdownPatterns))
		for _, p := range tf.BreakdownPatterns {
			re, err := regexp.Compile(p)
			if err != nil {
				return nil, eris.Wrapf(err, "dimension: compile pattern %q", p)
			}
			pats = append(pats, re)
		}
		t.breakdownPatterns = pats
	}
	return t, nil
}

func toSet(names []string) map[string]bool {
	set := make(map[string]bool, len(names))
	for _, n := range names {
		set[n] = true
	}
	return set
}

func compileAll(patterns []string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(patterns))
	for i, p := range patterns {
		out[i] = regexp.MustCompile(p)
	}
	return out
}
