// Package factstore holds the in-memory fact collection for one parsed
// filing. Facts are immutable once ingested; everything downstream derives
// fresh values from them.
package factstore

import (
	"go.uber.org/zap"

	"github.com/sells-group/statement-engine/internal/model"
)

// RawFact is the ingestion record handed over by the document/parsing layer:
// a dereferenced fact with its context, before value coercion.
type RawFact struct {
	Concept    string
	Label      string
	Value      string
	Unit       string
	Decimals   *int
	Instant    string // YYYY-MM-DD, mutually exclusive with Start/End
	Start, End string
	Dimensions []model.Dimension
	Role       model.StatementRole
}

// Store owns the normalized facts of one filing, in ingestion order, plus
// the taxonomy metadata that arrived with them.
type Store struct {
	filing model.FilingMeta
	facts  []model.Fact
	meta   map[string]model.ConceptMeta
}

// New creates an empty store for one filing.
func New(filing model.FilingMeta) *Store {
	return &Store{
		filing: filing,
		meta:   make(map[string]model.ConceptMeta),
	}
}

// Filing returns the filing metadata, passed through unchanged.
func (s *Store) Filing() model.FilingMeta { return s.filing }

// Ingest coerces and appends raw facts. A malformed fact (bad date,
// non-numeric value where numeric was expected) is dropped with a debug log;
// one bad fact never aborts ingestion of the rest.
func (s *Store) Ingest(raw []RawFact) {
	for _, rf := range raw {
		f, err := s.normalize(rf)
		if err != nil {
			zap.L().Debug("factstore: dropping malformed fact",
				zap.String("concept", rf.Concept),
				zap.Error(err),
			)
			continue
		}
		s.facts = append(s.facts, f)
	}
}

// SetConceptMeta records taxonomy schema attributes. First occurrence wins:
// a later (typically dimensional) record for the same concept never
// overwrites the metadata captured from the primary occurrence.
func (s *Store) SetConceptMeta(meta []model.ConceptMeta) {
	for _, m := range meta {
		if _, seen := s.meta[m.Concept]; !seen {
			s.meta[m.Concept] = m
		}
	}
}

// ConceptMeta returns the recorded metadata for a concept.
func (s *Store) ConceptMeta(concept string) (model.ConceptMeta, bool) {
	m, ok := s.meta[concept]
	return m, ok
}

// Meta returns the full concept metadata lookup.
func (s *Store) Meta() map[string]model.ConceptMeta { return s.meta }

// Facts returns all facts in ingestion order.
func (s *Store) Facts() []model.Fact { return s.facts }

// ByRole returns facts tagged with the given statement role, in ingestion
// order.
func (s *Store) ByRole(role model.StatementRole) []model.Fact {
	var out []model.Fact
	for _, f := range s.facts {
		if f.Role == role {
			out = append(out, f)
		}
	}
	return out
}

// ByConcept returns facts for one concept, in ingestion order.
func (s *Store) ByConcept(concept string) []model.Fact {
	var out []model.Fact
	for _, f := range s.facts {
		if f.Concept == concept {
			out = append(out, f)
		}
	}
	return out
}

func (s *Store) normalize(rf RawFact) (model.Fact, error) {
	coerced, err := Coerce(KindForUnit(rf.Unit), rf.Value)
	if err != nil {
		return model.Fact{}, err
	}

	period, err := parsePeriod(rf)
	if err != nil {
		return model.Fact{}, err
	}

	return model.Fact{
		Concept:    rf.Concept,
		Label:      rf.Label,
		Value:      coerced.Raw,
		Numeric:    coerced.Num,
		Unit:       rf.Unit,
		Decimals:   rf.Decimals,
		Period:     period,
		Dimensions: append([]model.Dimension(nil), rf.Dimensions...),
		Role:       rf.Role,
	}, nil
}

func parsePeriod(rf RawFact) (model.Period, error) {
	if rf.Instant != "" {
		t, err := model.ParseDate(rf.Instant)
		if err != nil {
			return model.Period{}, err
		}
		return model.InstantPeriod(t), nil
	}
	start, err := model.ParseDate(rf.Start)
	if err != nil {
		return model.Period{}, err
	}
	end, err := model.ParseDate(rf.End)
	if err != nil {
		return model.Period{}, err
	}
	return model.DurationPeriod(start, end), nil
}
