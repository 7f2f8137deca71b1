// Package render applies sign-convention views to assembled statements and
// projects them into flat tables.
package render

import (
	"math"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/statement-engine/internal/model"
)

// normalizeTargets are standard concept local names whose values the
// normalized view represents as positive magnitudes, independent of any one
// filer's presentation choice. Matching tolerates custom/extension concepts
// whose local name is a superstring of a target, so
// custom:PaymentsOfDividendsAndDistributions still normalizes as dividends.
var normalizeTargets = []string{
	"PaymentsOfDividends",
	"PaymentsOfDistributions",
	"PaymentsForRepurchaseOfCommonStock",
	"PaymentsForRepurchaseOfPreferredStock",
	"PaymentsToAcquirePropertyPlantAndEquipment",
	"PaymentsToAcquireBusinesses",
	"PaymentsToAcquireInvestments",
	"RepaymentsOfLongTermDebt",
	"RepaymentsOfShortTermDebt",
	"RepaymentsOfLinesOfCredit",
	"TreasuryStockValueAcquired",
	"InterestPaid",
	"IncomeTaxesPaid",
}

// Render produces a statement with final cell values under the requested
// view. The input must be a raw-view statement (the assembler's output);
// re-rendering a rendered statement into its own view is a no-op clone,
// which makes normalization idempotent. Every output row carries
// PreferredSign, raw view included. Requesting a different view from a
// non-raw statement is a caller error.
func Render(stmt *model.Statement, view model.View) (*model.Statement, error) {
	switch view {
	case model.ViewRaw, model.ViewPresentation, model.ViewNormalized:
	default:
		return nil, eris.Errorf("render: unknown view %q", view)
	}

	// Re-rendering a presentation or normalized statement into its own view
	// is a no-op clone; PreferredSign was stamped on the first pass. A raw
	// request falls through so raw output carries the sign audit trail too.
	if stmt.View == view && view != model.ViewRaw {
		return stmt.Clone(), nil
	}
	if stmt.View != model.ViewRaw {
		return nil, eris.Errorf("render: cannot render %s statement into %s view; start from raw", stmt.View, view)
	}

	out := stmt.Clone()
	out.View = view

	for i := range out.Lines {
		li := &out.Lines[i]
		li.PreferredSign = preferredSign(out.Role, *li)
		if li.IsAbstract {
			continue
		}
		switch view {
		case model.ViewRaw:
			// The foundational contract: values pass through unchanged.
		case model.ViewPresentation:
			applySign(li, li.PreferredSign)
		case model.ViewNormalized:
			if isNormalizeTarget(li.Concept) {
				applyAbs(li)
			} else {
				applySign(li, li.PreferredSign)
			}
		}
	}
	return out, nil
}

// preferredSign derives the multiplier that makes a raw value match its
// conventional display polarity. The calculation-tree weight wins when
// declared; otherwise cash-flow credits (uses of cash) display negative.
func preferredSign(role model.StatementRole, li model.LineItem) float64 {
	if li.Weight < 0 {
		return -1
	}
	if role == model.RoleCashFlow && li.BalanceType == model.BalanceCredit {
		return -1
	}
	return 1
}

func isNormalizeTarget(concept string) bool {
	local := model.LocalName(concept)
	for _, t := range normalizeTargets {
		if strings.Contains(local, t) {
			return true
		}
	}
	return false
}

// applySign multiplies every numeric cell by sign. Cells are rebuilt as new
// values; never-populated placeholders stay non-numeric rather than being
// coerced into fake zeros.
func applySign(li *model.LineItem, sign float64) {
	if sign == 1 {
		return
	}
	for k, c := range li.Values {
		if c.Num == nil {
			continue
		}
		v := *c.Num * sign
		li.Values[k] = model.Cell{Raw: c.Raw, Num: &v}
	}
}

func applyAbs(li *model.LineItem) {
	for k, c := range li.Values {
		if c.Num == nil {
			continue
		}
		v := math.Abs(*c.Num)
		li.Values[k] = model.Cell{Raw: c.Raw, Num: &v}
	}
}
