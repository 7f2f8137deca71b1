// Package assemble builds ordered, leveled statement row trees from facts
// and taxonomy relationship edges.
package assemble

import (
	"sort"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/statement-engine/internal/dimension"
	"github.com/sells-group/statement-engine/internal/model"
)

// Input is everything one statement assembly needs: the filing's facts in
// ingestion order plus the taxonomy edges for the requested role.
type Input struct {
	Facts        []model.Fact
	Role         model.StatementRole
	Presentation []model.PresentationEdge
	Calculation  []model.CalculationEdge
	Meta         map[string]model.ConceptMeta
	Filing       model.FilingMeta
	// RoleContext optionally carries definition-linkbase hypercube evidence
	// for high-confidence dimension classification.
	RoleContext *dimension.RoleContext
}

// conceptInfo is the per-concept metadata captured during the fact scan.
type conceptInfo struct {
	label         string
	calcParent    string
	weight        float64
	balance       model.BalanceType
	hasDimensions bool
}

// Assemble produces the raw-view statement for one role. The row tree comes
// strictly from the presentation edges; concepts unreachable from the role's
// roots are excluded. The result is deterministic for identical input.
func Assemble(in Input, cl *dimension.Classifier) (*model.Statement, error) {
	if cl == nil {
		cl = dimension.NewClassifier(nil)
	}
	roleCtx := in.RoleContext
	if roleCtx == nil {
		roleCtx = &dimension.RoleContext{Role: in.Role}
	}

	calcParent := make(map[string]model.CalculationEdge, len(in.Calculation))
	for _, e := range in.Calculation {
		// First-occurrence-wins: duplicate calculation edges for a child keep
		// the first declared parent.
		if _, seen := calcParent[e.Child]; !seen {
			calcParent[e.Child] = e
		}
	}

	info := collectConceptInfo(in, calcParent)

	order, levels, presParent, err := walkPresentation(in.Presentation)
	if err != nil {
		return nil, err
	}

	stmt := &model.Statement{
		Role:   in.Role,
		Filing: in.Filing,
		View:   model.ViewRaw,
	}

	byConcept := groupFactsByConcept(in.Facts)

	for _, concept := range order {
		ci := info[concept]
		label := conceptLabel(concept, ci, in.Meta)
		if isScaffolding(concept, label) {
			continue
		}

		abstract := isAbstractConcept(concept, in.Meta)
		base := model.LineItem{
			Concept:            concept,
			Label:              label,
			Level:              levels[concept],
			IsAbstract:         abstract,
			BalanceType:        ci.balance,
			Weight:             ci.weight,
			CalculationParent:  ci.calcParent,
			PresentationParent: presParent[concept],
		}

		if abstract {
			// Section header: no values.
			stmt.Lines = append(stmt.Lines, base)
			continue
		}

		facts := byConcept[concept]
		appendConceptRows(stmt, base, facts, func(axis, member string) dimension.Result {
			return cl.Classify(axis, member, roleCtx)
		})
	}

	labelBoundaryRows(stmt)
	stmt.SortPeriodsDesc()

	zap.L().Debug("assembled statement",
		zap.String("role", string(in.Role)),
		zap.Int("lines", len(stmt.Lines)),
		zap.Int("periods", len(stmt.Periods)),
	)
	return stmt, nil
}

// collectConceptInfo scans facts in ingestion order and records per-concept
// metadata on first encounter only. Dimensional breakdown occurrences of a
// concept generally lack calculation-tree membership; letting them overwrite
// the primary occurrence's record is exactly the bug this reducer prevents.
func collectConceptInfo(in Input, calcParent map[string]model.CalculationEdge) map[string]conceptInfo {
	info := make(map[string]conceptInfo)
	for _, f := range in.Facts {
		if _, seen := info[f.Concept]; seen {
			// Insert-if-absent only. Still track whether any occurrence is
			// dimensional.
			if f.HasDimensions() {
				ci := info[f.Concept]
				ci.hasDimensions = true
				info[f.Concept] = ci
			}
			continue
		}
		ci := conceptInfo{label: f.Label, hasDimensions: f.HasDimensions()}
		if e, ok := calcParent[f.Concept]; ok {
			ci.calcParent = e.Parent
			ci.weight = e.Weight
		}
		if m, ok := in.Meta[f.Concept]; ok {
			ci.balance = m.BalanceType
			if ci.label == "" {
				ci.label = m.Label
			}
		}
		info[f.Concept] = ci
	}
	return info
}

// walkPresentation flattens the role's presentation edges into a
// deterministic depth-first concept order with levels and parent links.
// A cycle in the presentation tree is a taxonomy integrity problem and
// propagates as an error rather than being papered over.
func walkPresentation(edges []model.PresentationEdge) (order []string, levels map[string]int, parent map[string]string, err error) {
	children := make(map[string][]model.PresentationEdge)
	isChild := make(map[string]bool)
	seen := make(map[string]bool)
	var nodes []string

	for _, e := range edges {
		children[e.Parent] = append(children[e.Parent], e)
		isChild[e.Child] = true
		for _, c := range []string{e.Parent, e.Child} {
			if !seen[c] {
				seen[c] = true
				nodes = append(nodes, c)
			}
		}
	}
	for p := range children {
		kids := children[p]
		sort.SliceStable(kids, func(i, j int) bool { return kids[i].Order < kids[j].Order })
	}

	// Roots in first-declaration order keep the walk deterministic.
	var roots []string
	for _, n := range nodes {
		if !isChild[n] {
			roots = append(roots, n)
		}
	}

	levels = make(map[string]int)
	parent = make(map[string]string)
	visited := make(map[string]bool)
	onPath := make(map[string]bool)

	var walk func(concept string, level int) error
	walk = func(concept string, level int) error {
		if onPath[concept] {
			return eris.Errorf("assemble: presentation tree cycle at %s", concept)
		}
		if visited[concept] {
			return nil
		}
		visited[concept] = true
		onPath[concept] = true
		defer func() { onPath[concept] = false }()

		order = append(order, concept)
		levels[concept] = level
		for _, e := range children[concept] {
			if _, has := parent[e.Child]; !has {
				parent[e.Child] = concept
			}
			if err := walk(e.Child, level+1); err != nil {
				return err
			}
		}
		return nil
	}

	for _, r := range roots {
		if err := walk(r, 0); err != nil {
			return nil, nil, nil, err
		}
	}
	return order, levels, parent, nil
}

func groupFactsByConcept(facts []model.Fact) map[string][]model.Fact {
	out := make(map[string][]model.Fact)
	for _, f := range facts {
		out[f.Concept] = append(out[f.Concept], f)
	}
	return out
}

// appendConceptRows adds the face row for a concept, then one row per
// distinct axis/member combination, in first-appearance order.
func appendConceptRows(stmt *model.Statement, base model.LineItem, facts []model.Fact, classify func(axis, member string) dimension.Result) {
	face := base
	face.Values = make(map[string]model.Cell)

	type dimKey struct{ axis, member string }
	var dimOrder []dimKey
	dimRows := make(map[dimKey]*model.LineItem)

	for _, f := range facts {
		// Placeholder cells keep their raw string so the emptiness filter
		// can treat "" and absent identically downstream.
		cell := model.Cell{Raw: f.Value, Num: f.Numeric}

		if !f.HasDimensions() {
			if _, exists := face.Values[f.Period.Key()]; !exists {
				face.Values[f.Period.Key()] = cell
			}
			stmt.AddPeriod(f.Period)
			continue
		}

		// One row per leading axis/member pair; deeper nesting collapses to
		// the first qualifier, matching the face grid's one-level breakdown.
		d := f.Dimensions[0]
		k := dimKey{d.Axis, d.Member}
		row, ok := dimRows[k]
		if !ok {
			res := classify(d.Axis, d.Member)
			li := base
			li.IsDimension = true
			li.DimensionAxis = d.Axis
			li.DimensionMember = d.Member
			li.DimensionClass = string(res.Class)
			li.DimensionConfidence = res.Confidence
			li.DimensionReason = res.Reason
			li.Label = base.Label + ": " + memberLabel(d.Member)
			li.Level = base.Level + 1
			li.Values = make(map[string]model.Cell)
			// Breakdown rows keep no calculation parent of their own; the
			// face row owns the roll-up link.
			li.CalculationParent = ""
			li.PresentationParent = base.Concept
			dimRows[k] = &li
			dimOrder = append(dimOrder, k)
			row = &li
		}
		if _, exists := row.Values[f.Period.Key()]; !exists {
			row.Values[f.Period.Key()] = cell
		}
		stmt.AddPeriod(f.Period)
	}

	stmt.Lines = append(stmt.Lines, face)
	for _, k := range dimOrder {
		stmt.Lines = append(stmt.Lines, *dimRows[k])
	}
}

func conceptLabel(concept string, ci conceptInfo, meta map[string]model.ConceptMeta) string {
	if ci.label != "" {
		return ci.label
	}
	if m, ok := meta[concept]; ok && m.Label != "" {
		return m.Label
	}
	return model.LocalName(concept)
}

func memberLabel(member string) string {
	return model.LocalName(member)
}
