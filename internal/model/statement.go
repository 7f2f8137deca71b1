package model

import (
	"sort"
	"strings"

	"github.com/rotisserie/eris"
)

// StatementRole identifies which financial statement a fact or line item
// belongs to.
type StatementRole string

const (
	RoleBalanceSheet        StatementRole = "BalanceSheet"
	RoleIncomeStatement     StatementRole = "IncomeStatement"
	RoleCashFlow            StatementRole = "CashFlowStatement"
	RoleEquity              StatementRole = "StatementOfEquity"
	RoleComprehensiveIncome StatementRole = "ComprehensiveIncome"
)

// Roles lists the statement roles the engine assembles, in display order.
var Roles = []StatementRole{
	RoleBalanceSheet,
	RoleIncomeStatement,
	RoleCashFlow,
	RoleEquity,
	RoleComprehensiveIncome,
}

// ParseRole validates a statement role string.
func ParseRole(s string) (StatementRole, error) {
	for _, r := range Roles {
		if strings.EqualFold(string(r), s) {
			return r, nil
		}
	}
	return "", eris.Errorf("model: unknown statement role %q", s)
}

// View selects how rendered values are signed.
type View string

const (
	// ViewRaw passes values through unchanged from the source document.
	// This is the default: no sign transform is ever applied unless the
	// caller opts in.
	ViewRaw View = "raw"
	// ViewPresentation matches the sign shown in the rendered source
	// document, using each concept's preferred sign.
	ViewPresentation View = "presentation"
	// ViewNormalized applies a cross-filer-consistent sign convention,
	// independent of any one filer's presentation choice.
	ViewNormalized View = "normalized"
)

// ParseView validates a view string. An unknown view is a caller programming
// error and fails loudly.
func ParseView(s string) (View, error) {
	switch View(strings.ToLower(s)) {
	case ViewRaw:
		return ViewRaw, nil
	case ViewPresentation:
		return ViewPresentation, nil
	case ViewNormalized:
		return ViewNormalized, nil
	}
	return "", eris.Errorf("model: unknown view %q (want raw, presentation, or normalized)", s)
}

// DimensionScope selects which dimensional rows a table includes.
type DimensionScope string

const (
	ScopeFaceOnly DimensionScope = "face_only"
	ScopeAll      DimensionScope = "all"
)

// Confidence grades how certain a dimension classification is.
type Confidence int

const (
	ConfidenceNone Confidence = iota
	ConfidenceLow
	ConfidenceMedium
	ConfidenceHigh
)

func (c Confidence) String() string {
	switch c {
	case ConfidenceLow:
		return "low"
	case ConfidenceMedium:
		return "medium"
	case ConfidenceHigh:
		return "high"
	default:
		return "none"
	}
}

// Cell is one value of a line item in one period. Raw preserves the source
// string so that empty-string and absent values can be told apart from real
// zeros; Num is nil when the value is non-numeric or missing.
type Cell struct {
	Raw string   `json:"raw,omitempty"`
	Num *float64 `json:"num,omitempty"`
}

// Empty reports whether the cell holds no usable value. A whitespace-only
// raw string is as empty as no value at all.
func (c Cell) Empty() bool {
	return c.Num == nil && strings.TrimSpace(c.Raw) == ""
}

// NumCell builds a numeric cell.
func NumCell(v float64) Cell {
	return Cell{Num: &v}
}

// LineItem is one row of a statement.
type LineItem struct {
	Concept             string          `json:"concept"`
	Label               string          `json:"label"`
	Level               int             `json:"level"`
	IsAbstract          bool            `json:"is_abstract"`
	IsDimension         bool            `json:"is_dimension"`
	DimensionAxis       string          `json:"dimension_axis,omitempty"`
	DimensionMember     string          `json:"dimension_member,omitempty"`
	// DimensionClass, DimensionConfidence, and DimensionReason carry the
	// classifier's face/breakdown verdict for dimensional rows so callers
	// can audit why a row is shown or hidden.
	DimensionClass      string          `json:"dimension_class,omitempty"`
	DimensionConfidence Confidence      `json:"dimension_confidence,omitempty"`
	DimensionReason     string          `json:"dimension_reason,omitempty"`
	BalanceType         BalanceType     `json:"balance_type,omitempty"`
	Weight              float64         `json:"weight,omitempty"`
	PreferredSign       float64         `json:"preferred_sign,omitempty"`
	CalculationParent   string          `json:"calculation_parent_concept,omitempty"`
	PresentationParent  string          `json:"presentation_parent_concept,omitempty"`
	Values              map[string]Cell `json:"values,omitempty"`
}

// Value returns the cell for a period key.
func (li LineItem) Value(periodKey string) (Cell, bool) {
	c, ok := li.Values[periodKey]
	return c, ok
}

// Statement is an ordered sequence of line items for one role, plus the set
// of available periods. Statements are derived values, recomputed per call;
// they never share mutable state with the fact store.
type Statement struct {
	Role    StatementRole `json:"role"`
	Filing  FilingMeta    `json:"filing"`
	Lines   []LineItem    `json:"lines"`
	Periods []Period      `json:"periods"`
	// View records which sign transform has been applied to Values.
	// Statements come out of assembly as ViewRaw.
	View View `json:"view"`
}

// Clone returns a deep copy of the statement. Renderers transform copies so
// the assembled statement is never mutated in place.
func (s *Statement) Clone() *Statement {
	out := &Statement{
		Role:    s.Role,
		Filing:  s.Filing,
		View:    s.View,
		Lines:   make([]LineItem, len(s.Lines)),
		Periods: append([]Period(nil), s.Periods...),
	}
	for i, li := range s.Lines {
		cp := li
		cp.Values = make(map[string]Cell, len(li.Values))
		for k, v := range li.Values {
			cp.Values[k] = v
		}
		out.Lines[i] = cp
	}
	return out
}

// AddPeriod records a period on the statement, collapsing periods with
// identical dates into one column.
func (s *Statement) AddPeriod(p Period) {
	for _, have := range s.Periods {
		if SamePeriod(have, p) {
			return
		}
	}
	s.Periods = append(s.Periods, p)
}

// SortPeriodsDesc orders the statement's periods most-recent-first, with the
// period key as a deterministic tie-break.
func (s *Statement) SortPeriodsDesc() {
	sort.SliceStable(s.Periods, func(i, j int) bool {
		a, b := s.Periods[i].EndDate(), s.Periods[j].EndDate()
		if !a.Equal(b) {
			return a.After(b)
		}
		return s.Periods[i].Key() < s.Periods[j].Key()
	})
}

// MissingValueCount counts non-abstract lines with no usable value in the
// given period. Stitching uses it to pick the more complete source.
func (s *Statement) MissingValueCount(periodKey string) int {
	missing := 0
	for _, li := range s.Lines {
		if li.IsAbstract {
			continue
		}
		if c, ok := li.Values[periodKey]; !ok || c.Empty() {
			missing++
		}
	}
	return missing
}
