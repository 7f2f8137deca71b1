// Package dimension decides whether an XBRL axis is a face dimension (shown
// in the primary statement grid) or a breakdown dimension (footnote
// disclosure, hidden by default).
package dimension

import (
	"fmt"

	"github.com/sells-group/statement-engine/internal/model"
)

// Class is the face-or-breakdown decision.
type Class string

const (
	Face      Class = "face"
	Breakdown Class = "breakdown"
)

// RoleContext carries the optional definition-linkbase evidence for a
// statement role: the set of axes the role's hypercube declares.
type RoleContext struct {
	Role          model.StatementRole
	HypercubeAxes map[string]bool
}

// Result is one classification outcome. Confidence and Reason surface why
// the decision was made; ambiguity is never an error.
type Result struct {
	Class      Class
	Confidence model.Confidence
	Reason     string
}

// Classifier classifies axes against an immutable Tables value.
type Classifier struct {
	tables *Tables
}

// NewClassifier builds a classifier over the given tables. Pass
// DefaultTables() for the built-in lists.
func NewClassifier(t *Tables) *Classifier {
	if t == nil {
		t = DefaultTables()
	}
	return &Classifier{tables: t}
}

// Classify decides face vs. breakdown for one axis. It is a pure function of
// (axis, member, roleCtx): identical inputs always yield identical results.
//
// Resolution order, decreasing confidence:
//  1. definition-linkbase hypercube evidence for the role (high)
//  2. role-structural axes, e.g. equity components on the equity statement (high)
//  3. curated face-axis list (medium)
//  4. curated breakdown-axis list (medium)
//  5. breakdown-suggestive local-name patterns (low)
//  6. default to face (low) — unknown axes are shown, never silently dropped
func (c *Classifier) Classify(axis, member string, roleCtx *RoleContext) Result {
	local := model.LocalName(axis)

	if roleCtx != nil {
		if roleCtx.HypercubeAxes[axis] || roleCtx.HypercubeAxes[local] {
			return Result{Face, model.ConfidenceHigh,
				fmt.Sprintf("axis %s declared by hypercube for role %s", local, roleCtx.Role)}
		}
		if structural, ok := c.tables.structuralAxes[roleCtx.Role]; ok && structural[local] {
			return Result{Face, model.ConfidenceHigh,
				fmt.Sprintf("axis %s is structural for role %s", local, roleCtx.Role)}
		}
	}

	if c.tables.faceAxes[local] {
		return Result{Face, model.ConfidenceMedium, "curated face axis " + local}
	}
	if c.tables.breakdownAxes[local] {
		return Result{Breakdown, model.ConfidenceMedium, "curated breakdown axis " + local}
	}

	for _, re := range c.tables.breakdownPatterns {
		if re.MatchString(local) {
			return Result{Breakdown, model.ConfidenceLow,
				fmt.Sprintf("axis %s matches breakdown pattern %s", local, re.String())}
		}
	}

	return Result{Face, model.ConfidenceLow, "unknown axis " + local + ", defaulting to face"}
}
