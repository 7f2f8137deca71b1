package edgarfacts

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"github.com/rotisserie/eris"

	"github.com/sells-group/statement-engine/internal/factstore"
	"github.com/sells-group/statement-engine/internal/model"
	"github.com/sells-group/statement-engine/internal/taxonomy"
)

// Facts represents the EDGAR company facts JSON-LD structure.
type Facts struct {
	CIK        int                  `json:"cik"`
	EntityName string               `json:"entityName"`
	Facts      map[string]Namespace `json:"facts"`
}

// Namespace groups concepts by taxonomy namespace (e.g., "us-gaap", "dei").
type Namespace map[string]Concept

// Concept is a single reported concept with its units and values.
type Concept struct {
	Label       string             `json:"label"`
	Description string             `json:"description"`
	Units       map[string][]Value `json:"units"`
}

// Value is one data point for a concept.
type Value struct {
	Start string `json:"start,omitempty"`
	End   string `json:"end"`
	Val   any    `json:"val"`
	Accn  string `json:"accn"`
	FY    int    `json:"fy"`
	FP    string `json:"fp"`
	Form  string `json:"form"`
	Filed string `json:"filed"`
	Frame string `json:"frame,omitempty"`
}

// Parse decodes company facts JSON-LD from a reader.
func Parse(r io.Reader) (*Facts, error) {
	var facts Facts
	if err := json.NewDecoder(r).Decode(&facts); err != nil {
		return nil, eris.Wrap(err, "edgarfacts: parse company facts")
	}
	return &facts, nil
}

// Filing returns the filing metadata carried by the document.
func (f *Facts) Filing() model.FilingMeta {
	return model.FilingMeta{
		FilerName: f.EntityName,
		CIK:       fmt.Sprintf("%d", f.CIK),
	}
}

// RawFacts flattens the document into ingestion records for the fact store,
// keeping only concepts the standard statement layouts know, tagged with
// their statement role. Values without an end date are skipped.
func (f *Facts) RawFacts() []factstore.RawFact {
	if f == nil || len(f.Facts) == 0 {
		return nil
	}

	wanted := make(map[string]bool)
	for _, name := range taxonomy.Concepts() {
		wanted[name] = true
	}

	var out []factstore.RawFact
	for _, ns := range []string{"us-gaap", "ifrs-full"} {
		nsMap, ok := f.Facts[ns]
		if !ok {
			continue
		}
		// Map iteration order is randomized; sort so identical documents
		// always ingest in identical order.
		names := make([]string, 0, len(nsMap))
		for name := range nsMap {
			if wanted[name] {
				names = append(names, name)
			}
		}
		sort.Strings(names)

		for _, name := range names {
			concept := nsMap[name]
			qualified := ns + ":" + name
			role, _ := taxonomy.RoleForConcept(qualified)

			units := make([]string, 0, len(concept.Units))
			for unit := range concept.Units {
				units = append(units, unit)
			}
			sort.Strings(units)

			for _, unit := range units {
				for _, v := range concept.Units[unit] {
					if v.End == "" {
						continue
					}
					rf := factstore.RawFact{
						Concept: qualified,
						Label:   concept.Label,
						Value:   fmt.Sprintf("%v", v.Val),
						Unit:    unit,
						Role:    role,
					}
					if v.Start != "" {
						rf.Start, rf.End = v.Start, v.End
					} else {
						rf.Instant = v.End
					}
					out = append(out, rf)
				}
			}
		}
	}
	return out
}
