// Package store persists rendered statement tables and caches raw
// company-facts documents.
package store

import (
	"context"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/statement-engine/internal/render"
)

// StatementFilter specifies criteria for listing stored statements.
type StatementFilter struct {
	CIK      string `json:"cik,omitempty"`
	Role     string `json:"role,omitempty"`
	View     string `json:"view,omitempty"`
	Stitched *bool  `json:"stitched,omitempty"`
	Limit    int    `json:"limit,omitempty"`
	Offset   int    `json:"offset,omitempty"`
}

// StatementRecord describes one stored statement without its table body.
type StatementRecord struct {
	CIK       string    `json:"cik"`
	FilerName string    `json:"filer_name"`
	Role      string    `json:"role"`
	View      string    `json:"view"`
	Stitched  bool      `json:"stitched"`
	Periods   int       `json:"periods"`
	SavedAt   time.Time `json:"saved_at"`
}

// Store defines the persistence interface for assembled statements.
type Store interface {
	// Statements
	SaveStatement(ctx context.Context, cik string, tbl *render.Table, stitched bool) error
	GetStatement(ctx context.Context, cik, role, view string, stitched bool) (*render.Table, error)
	ListStatements(ctx context.Context, filter StatementFilter) ([]StatementRecord, error)

	// Company facts cache
	GetCachedFacts(ctx context.Context, cik string) ([]byte, error)
	SetCachedFacts(ctx context.Context, cik string, data []byte, ttl time.Duration) error
	DeleteExpiredFacts(ctx context.Context) (int, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}

// Open returns a migrated Store for the configured driver.
func Open(ctx context.Context, driver, dsn string) (Store, error) {
	var (
		s   Store
		err error
	)
	switch driver {
	case "", "sqlite":
		s, err = NewSQLite(dsn)
	case "postgres":
		s, err = NewPostgres(ctx, dsn, nil)
	default:
		return nil, eris.Errorf("store: unknown driver %q", driver)
	}
	if err != nil {
		return nil, err
	}
	if err := s.Migrate(ctx); err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}
