// Package taxonomy carries the built-in standard-statement layouts used when
// a fact source (such as the EDGAR company-facts API) supplies facts without
// their filing's own presentation and calculation linkbases.
package taxonomy

import (
	"strings"

	"github.com/sells-group/statement-engine/internal/model"
)

// entry is one row of a standard layout: a concept, its display label, its
// parent in the roll-up, and the roll-up weight.
type entry struct {
	concept string
	label   string
	parent  string
	weight  float64
	balance model.BalanceType
	periodT string
}

// standardLayouts order the common US-GAAP concepts per statement role the
// way rendered filings conventionally present them.
var standardLayouts = map[model.StatementRole][]entry{
	model.RoleBalanceSheet: {
		{"us-gaap:AssetsAbstract", "Assets", "", 0, model.BalanceNone, "duration"},
		{"us-gaap:CashAndCashEquivalentsAtCarryingValue", "Cash and Cash Equivalents", "us-gaap:AssetsCurrent", 1, model.BalanceDebit, "instant"},
		{"us-gaap:AccountsReceivableNetCurrent", "Accounts Receivable", "us-gaap:AssetsCurrent", 1, model.BalanceDebit, "instant"},
		{"us-gaap:InventoryNet", "Inventory", "us-gaap:AssetsCurrent", 1, model.BalanceDebit, "instant"},
		{"us-gaap:AssetsCurrent", "Total Current Assets", "us-gaap:Assets", 1, model.BalanceDebit, "instant"},
		{"us-gaap:PropertyPlantAndEquipmentNet", "Property, Plant and Equipment", "us-gaap:Assets", 1, model.BalanceDebit, "instant"},
		{"us-gaap:Goodwill", "Goodwill", "us-gaap:Assets", 1, model.BalanceDebit, "instant"},
		{"us-gaap:Assets", "Total Assets", "", 0, model.BalanceDebit, "instant"},
		{"us-gaap:LiabilitiesAbstract", "Liabilities", "", 0, model.BalanceNone, "duration"},
		{"us-gaap:AccountsPayableCurrent", "Accounts Payable", "us-gaap:LiabilitiesCurrent", 1, model.BalanceCredit, "instant"},
		{"us-gaap:LiabilitiesCurrent", "Total Current Liabilities", "us-gaap:Liabilities", 1, model.BalanceCredit, "instant"},
		{"us-gaap:LongTermDebtNoncurrent", "Long-Term Debt", "us-gaap:Liabilities", 1, model.BalanceCredit, "instant"},
		{"us-gaap:Liabilities", "Total Liabilities", "", 0, model.BalanceCredit, "instant"},
		{"us-gaap:StockholdersEquity", "Total Stockholders' Equity", "", 0, model.BalanceCredit, "instant"},
	},
	model.RoleIncomeStatement: {
		{"us-gaap:Revenues", "Revenue", "us-gaap:OperatingIncomeLoss", 1, model.BalanceCredit, "duration"},
		{"us-gaap:RevenueFromContractWithCustomerExcludingAssessedTax", "Revenue from Contracts with Customers", "us-gaap:OperatingIncomeLoss", 1, model.BalanceCredit, "duration"},
		{"us-gaap:CostOfRevenue", "Cost of Revenue", "us-gaap:GrossProfit", -1, model.BalanceDebit, "duration"},
		{"us-gaap:GrossProfit", "Gross Profit", "us-gaap:OperatingIncomeLoss", 1, model.BalanceCredit, "duration"},
		{"us-gaap:ResearchAndDevelopmentExpense", "Research and Development Expense", "us-gaap:OperatingExpenses", 1, model.BalanceDebit, "duration"},
		{"us-gaap:GeneralAndAdministrativeExpense", "General and Administrative Expense", "us-gaap:OperatingExpenses", 1, model.BalanceDebit, "duration"},
		{"us-gaap:OperatingExpenses", "Total Operating Expenses", "us-gaap:OperatingIncomeLoss", -1, model.BalanceDebit, "duration"},
		{"us-gaap:OperatingIncomeLoss", "Operating Income (Loss)", "us-gaap:NetIncomeLoss", 1, model.BalanceCredit, "duration"},
		{"us-gaap:InterestExpense", "Interest Expense", "us-gaap:NetIncomeLoss", -1, model.BalanceDebit, "duration"},
		{"us-gaap:IncomeTaxExpenseBenefit", "Income Tax Expense", "us-gaap:NetIncomeLoss", -1, model.BalanceDebit, "duration"},
		{"us-gaap:NetIncomeLoss", "Net Income (Loss)", "", 0, model.BalanceCredit, "duration"},
		{"us-gaap:EarningsPerShareBasic", "EPS Basic", "", 0, model.BalanceNone, "duration"},
		{"us-gaap:EarningsPerShareDiluted", "EPS Diluted", "", 0, model.BalanceNone, "duration"},
	},
	model.RoleCashFlow: {
		{"us-gaap:NetCashProvidedByUsedInOperatingActivities", "Cash Flow from Operations", "", 0, model.BalanceNone, "duration"},
		{"us-gaap:PaymentsToAcquirePropertyPlantAndEquipment", "Capital Expenditures", "us-gaap:NetCashProvidedByUsedInInvestingActivities", -1, model.BalanceCredit, "duration"},
		{"us-gaap:NetCashProvidedByUsedInInvestingActivities", "Cash Flow from Investing", "", 0, model.BalanceNone, "duration"},
		{"us-gaap:PaymentsOfDividends", "Dividends Paid", "us-gaap:NetCashProvidedByUsedInFinancingActivities", -1, model.BalanceCredit, "duration"},
		{"us-gaap:PaymentsForRepurchaseOfCommonStock", "Repurchases of Common Stock", "us-gaap:NetCashProvidedByUsedInFinancingActivities", -1, model.BalanceCredit, "duration"},
		{"us-gaap:RepaymentsOfLongTermDebt", "Repayments of Long-Term Debt", "us-gaap:NetCashProvidedByUsedInFinancingActivities", -1, model.BalanceCredit, "duration"},
		{"us-gaap:NetCashProvidedByUsedInFinancingActivities", "Cash Flow from Financing", "", 0, model.BalanceNone, "duration"},
		{"us-gaap:DepreciationDepletionAndAmortization", "Depreciation and Amortization", "us-gaap:NetCashProvidedByUsedInOperatingActivities", 1, model.BalanceDebit, "duration"},
		{"us-gaap:ShareBasedCompensation", "Stock-Based Compensation", "us-gaap:NetCashProvidedByUsedInOperatingActivities", 1, model.BalanceDebit, "duration"},
	},
	model.RoleEquity: {
		{"us-gaap:StockholdersEquity", "Total Stockholders' Equity", "", 0, model.BalanceCredit, "instant"},
		{"us-gaap:StockIssuedDuringPeriodValueNewIssues", "Stock Issued", "us-gaap:StockholdersEquity", 1, model.BalanceCredit, "duration"},
		{"us-gaap:DividendsCommonStock", "Dividends Declared", "us-gaap:StockholdersEquity", -1, model.BalanceDebit, "duration"},
		{"us-gaap:NetIncomeLoss", "Net Income (Loss)", "us-gaap:StockholdersEquity", 1, model.BalanceCredit, "duration"},
	},
	model.RoleComprehensiveIncome: {
		{"us-gaap:NetIncomeLoss", "Net Income (Loss)", "us-gaap:ComprehensiveIncomeNetOfTax", 1, model.BalanceCredit, "duration"},
		{"us-gaap:OtherComprehensiveIncomeLossNetOfTax", "Other Comprehensive Income (Loss)", "us-gaap:ComprehensiveIncomeNetOfTax", 1, model.BalanceCredit, "duration"},
		{"us-gaap:ComprehensiveIncomeNetOfTax", "Comprehensive Income", "", 0, model.BalanceCredit, "duration"},
	},
}

// Layout returns the standard presentation edges, calculation edges, and
// concept metadata for one role.
func Layout(role model.StatementRole) (pres []model.PresentationEdge, calc []model.CalculationEdge, meta map[string]model.ConceptMeta) {
	entries := standardLayouts[role]
	meta = make(map[string]model.ConceptMeta, len(entries))
	// The synthetic root is named as a [Table] element so the scaffolding
	// filter keeps it out of rendered output.
	root := "seng:" + string(role) + "Table"

	for i, e := range entries {
		parent := e.parent
		if parent == "" {
			parent = root
		}
		pres = append(pres, model.PresentationEdge{Parent: parent, Child: e.concept, Order: i})
		if e.parent != "" && e.weight != 0 {
			calc = append(calc, model.CalculationEdge{Parent: e.parent, Child: e.concept, Weight: e.weight})
		}
		meta[e.concept] = model.ConceptMeta{
			Concept:     e.concept,
			Label:       e.label,
			BalanceType: e.balance,
			PeriodType:  e.periodT,
			IsAbstract:  strings.HasSuffix(model.LocalName(e.concept), "Abstract"),
		}
	}
	return pres, calc, meta
}

// RoleForConcept returns the statement role a standard concept belongs to.
// Concepts outside the standard layouts return false.
func RoleForConcept(concept string) (model.StatementRole, bool) {
	for _, role := range model.Roles {
		for _, e := range standardLayouts[role] {
			if e.concept == concept || model.LocalName(e.concept) == model.LocalName(concept) {
				return role, true
			}
		}
	}
	return "", false
}

// RoleConcepts lists the local names of the concepts in one role's standard
// layout. Concepts like NetIncomeLoss appear in several layouts, so a fact's
// single role tag is not enough to select a role's facts.
func RoleConcepts(role model.StatementRole) map[string]bool {
	set := make(map[string]bool)
	for _, e := range standardLayouts[role] {
		set[model.LocalName(e.concept)] = true
	}
	return set
}

// Concepts lists the local names of every concept in the standard layouts,
// used to filter company-facts responses down to statement material.
func Concepts() []string {
	seen := make(map[string]bool)
	var out []string
	for _, role := range model.Roles {
		for _, e := range standardLayouts[role] {
			local := model.LocalName(e.concept)
			if !seen[local] {
				seen[local] = true
				out = append(out, local)
			}
		}
	}
	return out
}
