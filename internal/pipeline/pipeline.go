// Package pipeline orchestrates the full statement build: fetch company
// facts, ingest, assemble each statement role, render, and persist.
package pipeline

import (
	"bytes"
	"context"
	"sync"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/statement-engine/internal/assemble"
	"github.com/sells-group/statement-engine/internal/config"
	"github.com/sells-group/statement-engine/internal/currency"
	"github.com/sells-group/statement-engine/internal/dimension"
	"github.com/sells-group/statement-engine/internal/factstore"
	"github.com/sells-group/statement-engine/internal/model"
	"github.com/sells-group/statement-engine/internal/periods"
	"github.com/sells-group/statement-engine/internal/render"
	"github.com/sells-group/statement-engine/internal/stitch"
	"github.com/sells-group/statement-engine/internal/store"
	"github.com/sells-group/statement-engine/internal/taxonomy"
	"github.com/sells-group/statement-engine/pkg/edgarfacts"
)

const factsCacheTTL = 24 * time.Hour

// Fetcher downloads raw company facts documents.
type Fetcher interface {
	CompanyFactsRaw(ctx context.Context, cik string) ([]byte, error)
}

// Pipeline builds statements for one filer at a time.
type Pipeline struct {
	cfg   *config.Config
	store store.Store
	edgar Fetcher
	cl    *dimension.Classifier
}

// New creates a Pipeline. The store is optional; without one nothing is
// cached or persisted.
func New(cfg *config.Config, st store.Store, edgar Fetcher, tables *dimension.Tables) *Pipeline {
	return &Pipeline{
		cfg:   cfg,
		store: st,
		edgar: edgar,
		cl:    dimension.NewClassifier(tables),
	}
}

// Result holds everything one build produced: the raw statements for
// further processing (stitching, conversion) and the rendered tables.
type Result struct {
	Filing     model.FilingMeta
	Statements map[model.StatementRole]*model.Statement
	Tables     map[model.StatementRole]*render.Table
	Converter  *currency.Converter
	FactCount  int
}

// Build fetches the company facts for a CIK and assembles every statement
// role that has facts.
func (p *Pipeline) Build(ctx context.Context, cik string) (*Result, error) {
	log := zap.L().With(zap.String("cik", cik))

	opts, err := p.tableOptions()
	if err != nil {
		return nil, err
	}

	data, err := p.fetchFacts(ctx, cik)
	if err != nil {
		return nil, err
	}

	doc, err := edgarfacts.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}

	fs := factstore.New(doc.Filing())
	fs.Ingest(doc.RawFacts())
	log.Info("pipeline: facts ingested", zap.Int("count", len(fs.Facts())))

	res := &Result{
		Filing:     fs.Filing(),
		Statements: make(map[model.StatementRole]*model.Statement),
		Tables:     make(map[model.StatementRole]*render.Table),
		Converter:  currency.New(fs.Facts()),
		FactCount:  len(fs.Facts()),
	}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	for _, role := range model.Roles {
		g.Go(func() error {
			facts := factsForRole(fs, role)
			if len(facts) == 0 {
				log.Debug("pipeline: no facts for role", zap.String("role", string(role)))
				return nil
			}

			pres, calc, meta := taxonomy.Layout(role)
			stmt, err := assemble.Assemble(assemble.Input{
				Facts:        facts,
				Role:         role,
				Presentation: pres,
				Calculation:  calc,
				Meta:         meta,
				Filing:       fs.Filing(),
			}, p.cl)
			if err != nil {
				return eris.Wrapf(err, "pipeline: assemble %s", role)
			}

			tbl, err := render.ToTable(stmt, opts)
			if err != nil {
				return eris.Wrapf(err, "pipeline: render %s", role)
			}

			mu.Lock()
			res.Statements[role] = stmt
			res.Tables[role] = tbl
			mu.Unlock()

			if p.store != nil {
				if err := p.store.SaveStatement(gctx, cik, tbl, false); err != nil {
					return err
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	log.Info("pipeline: build complete", zap.Int("statements", len(res.Statements)))
	return res, nil
}

// StitchAndSave merges statements for one role across filings, renders the
// result, and persists it as the filer's stitched statement.
func (p *Pipeline) StitchAndSave(ctx context.Context, cik string, stmts []*model.Statement, role model.StatementRole) (*render.Table, error) {
	opts, err := p.tableOptions()
	if err != nil {
		return nil, err
	}

	merged, err := stitch.Stitch(stmts, role, p.cfg.Render.MaxStitchPeriods)
	if err != nil {
		return nil, err
	}

	tbl, err := render.ToTable(merged, opts)
	if err != nil {
		return nil, err
	}

	if p.store != nil {
		if err := p.store.SaveStatement(ctx, cik, tbl, true); err != nil {
			return nil, err
		}
	}
	return tbl, nil
}

// factsForRole selects the filing's facts belonging to a role's standard
// layout, in ingestion order. Selection goes through the layout's concept
// set because shared concepts carry only one role tag.
func factsForRole(fs *factstore.Store, role model.StatementRole) []model.Fact {
	want := taxonomy.RoleConcepts(role)
	var out []model.Fact
	for _, f := range fs.Facts() {
		if want[model.LocalName(f.Concept)] {
			out = append(out, f)
		}
	}
	return out
}

// fetchFacts returns the raw company facts document, from cache when fresh.
func (p *Pipeline) fetchFacts(ctx context.Context, cik string) ([]byte, error) {
	if p.store != nil {
		data, err := p.store.GetCachedFacts(ctx, cik)
		if err != nil {
			zap.L().Warn("pipeline: facts cache read failed", zap.Error(err))
		} else if data != nil {
			zap.L().Debug("pipeline: facts cache hit", zap.String("cik", cik))
			return data, nil
		}
	}

	data, err := p.edgar.CompanyFactsRaw(ctx, cik)
	if err != nil {
		return nil, err
	}

	if p.store != nil {
		if err := p.store.SetCachedFacts(ctx, cik, data, factsCacheTTL); err != nil {
			zap.L().Warn("pipeline: facts cache write failed", zap.Error(err))
		}
	}
	return data, nil
}

func (p *Pipeline) tableOptions() (render.TableOptions, error) {
	view, err := model.ParseView(p.cfg.Render.View)
	if err != nil {
		return render.TableOptions{}, err
	}
	req, err := periods.ParseRequest(p.cfg.Render.Periods)
	if err != nil {
		return render.TableOptions{}, err
	}
	return render.TableOptions{
		View:              view,
		Periods:           req,
		IncludeDimensions: p.cfg.Render.IncludeDimensions,
	}, nil
}
