package assemble

import (
	"strings"

	"github.com/sells-group/statement-engine/internal/model"
)

// bracketMarkers are label fragments that mark XBRL structural scaffolding
// rather than financial line items.
var bracketMarkers = []string{
	"[Axis]",
	"[Domain]",
	"[Table]",
	"[Line Items]",
	"[Member]",
	"[Abstract]",
}

// scaffoldSuffixes are concept local-name endings of structural elements.
var scaffoldSuffixes = []string{
	"Axis",
	"Domain",
	"Table",
	"LineItems",
	"Member",
}

// isScaffolding reports whether a concept is XBRL structural metadata
// (axis, domain, table, line-items container, member). Scaffolding never
// appears as a row in any rendered table, regardless of view or dimension
// scope. Abstract section headers are not scaffolding: they carry grouping
// structure the statement keeps.
func isScaffolding(concept, label string) bool {
	for _, m := range bracketMarkers {
		if strings.Contains(label, m) {
			return true
		}
	}
	local := model.LocalName(concept)
	for _, suf := range scaffoldSuffixes {
		if strings.HasSuffix(local, suf) && local != suf {
			return true
		}
	}
	return false
}

// isAbstractConcept reports whether a concept is a taxonomy abstract header.
func isAbstractConcept(concept string, meta map[string]model.ConceptMeta) bool {
	if m, ok := meta[concept]; ok && m.IsAbstract {
		return true
	}
	return strings.HasSuffix(model.LocalName(concept), "Abstract")
}
