package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/sells-group/statement-engine/internal/db"
	"github.com/sells-group/statement-engine/internal/render"
)

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool    db.Pool
	closeFn func()
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

// cellColumns is the flattened per-cell schema written alongside each
// statement body so statements are queryable cell-by-cell in SQL.
var cellColumns = []string{
	"cik", "role", "view", "stitched", "row_idx", "concept", "label",
	"period_key", "value", "preferred_sign", "saved_at",
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	maxConns := int32(10)
	minConns := int32(2)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool, closeFn: pool.Close}, nil
}

// Pool returns the underlying database pool for subsystems that need
// direct query access.
func (s *PostgresStore) Pool() db.Pool {
	return s.pool
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS statements (
	id         TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	cik        TEXT NOT NULL,
	filer_name TEXT NOT NULL DEFAULT '',
	role       TEXT NOT NULL,
	view       TEXT NOT NULL,
	stitched   BOOLEAN NOT NULL DEFAULT false,
	periods    INTEGER NOT NULL DEFAULT 0,
	body       JSONB NOT NULL,
	saved_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
	UNIQUE (cik, role, view, stitched)
);

CREATE TABLE IF NOT EXISTS statement_cells (
	cik            TEXT NOT NULL,
	role           TEXT NOT NULL,
	view           TEXT NOT NULL,
	stitched       BOOLEAN NOT NULL DEFAULT false,
	row_idx        INTEGER NOT NULL,
	concept        TEXT NOT NULL,
	label          TEXT NOT NULL DEFAULT '',
	period_key     TEXT NOT NULL,
	value          DOUBLE PRECISION,
	preferred_sign DOUBLE PRECISION NOT NULL DEFAULT 1,
	saved_at       TIMESTAMPTZ NOT NULL DEFAULT now(),
	PRIMARY KEY (cik, role, view, stitched, row_idx, period_key)
);

CREATE TABLE IF NOT EXISTS facts_cache (
	id         TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	cik        TEXT NOT NULL UNIQUE,
	data       JSONB NOT NULL,
	cached_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
	expires_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_statements_cik ON statements(cik);
CREATE INDEX IF NOT EXISTS idx_statements_role ON statements(role);
CREATE INDEX IF NOT EXISTS idx_statement_cells_concept ON statement_cells(concept);
CREATE INDEX IF NOT EXISTS idx_facts_cache_cik ON facts_cache(cik);
CREATE INDEX IF NOT EXISTS idx_facts_cache_expires_at ON facts_cache(expires_at);
`

func (s *PostgresStore) Ping(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, "SELECT 1")
	return eris.Wrap(err, "postgres: ping")
}

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}

func (s *PostgresStore) SaveStatement(ctx context.Context, cik string, tbl *render.Table, stitched bool) error {
	body, err := json.Marshal(tbl)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal statement")
	}
	now := time.Now().UTC()

	_, err = s.pool.Exec(ctx,
		`INSERT INTO statements (id, cik, filer_name, role, view, stitched, periods, body, saved_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 ON CONFLICT (cik, role, view, stitched) DO UPDATE SET
		   filer_name = $3, periods = $7, body = $8, saved_at = $9`,
		uuid.New().String(), cik, tbl.Filing.FilerName, string(tbl.Role), string(tbl.View),
		stitched, len(tbl.Periods), body, now,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: save statement %s %s", cik, tbl.Role)
	}

	if _, err := db.BulkUpsert(ctx, s.pool, db.UpsertConfig{
		Table:        "statement_cells",
		Columns:      cellColumns,
		ConflictKeys: []string{"cik", "role", "view", "stitched", "row_idx", "period_key"},
	}, flattenCells(cik, tbl, stitched, now)); err != nil {
		return eris.Wrapf(err, "postgres: save cells %s %s", cik, tbl.Role)
	}
	return nil
}

// flattenCells projects a table into one row per (line, period) for the
// statement_cells table.
func flattenCells(cik string, tbl *render.Table, stitched bool, now time.Time) [][]any {
	var rows [][]any
	for i, row := range tbl.Rows {
		for j, p := range tbl.Periods {
			var val any
			if j < len(row.Cells) && row.Cells[j] != nil {
				val = *row.Cells[j]
			}
			rows = append(rows, []any{
				cik, string(tbl.Role), string(tbl.View), stitched, i,
				row.Concept, row.Label, p.Key(), val, row.PreferredSign, now,
			})
		}
	}
	return rows
}

func (s *PostgresStore) GetStatement(ctx context.Context, cik, role, view string, stitched bool) (*render.Table, error) {
	var body []byte
	err := s.pool.QueryRow(ctx,
		`SELECT body FROM statements WHERE cik = $1 AND role = $2 AND view = $3 AND stitched = $4`,
		cik, role, view, stitched,
	).Scan(&body)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, eris.Wrapf(err, "postgres: get statement %s %s", cik, role)
	}

	var tbl render.Table
	if err := json.Unmarshal(body, &tbl); err != nil {
		return nil, eris.Wrap(err, "postgres: unmarshal statement")
	}
	return &tbl, nil
}

func (s *PostgresStore) ListStatements(ctx context.Context, filter StatementFilter) ([]StatementRecord, error) {
	query := `SELECT cik, filer_name, role, view, stitched, periods, saved_at FROM statements WHERE true`
	args := []any{}
	argIdx := 1

	if filter.CIK != "" {
		query += fmt.Sprintf(` AND cik = $%d`, argIdx)
		args = append(args, filter.CIK)
		argIdx++
	}
	if filter.Role != "" {
		query += fmt.Sprintf(` AND role = $%d`, argIdx)
		args = append(args, filter.Role)
		argIdx++
	}
	if filter.View != "" {
		query += fmt.Sprintf(` AND view = $%d`, argIdx)
		args = append(args, filter.View)
		argIdx++
	}
	if filter.Stitched != nil {
		query += fmt.Sprintf(` AND stitched = $%d`, argIdx)
		args = append(args, *filter.Stitched)
		argIdx++
	}
	query += ` ORDER BY saved_at DESC`

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	query += fmt.Sprintf(` LIMIT $%d`, argIdx)
	args = append(args, limit)
	argIdx++

	if filter.Offset > 0 {
		query += fmt.Sprintf(` OFFSET $%d`, argIdx)
		args = append(args, filter.Offset)
		argIdx++
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list statements")
	}
	defer rows.Close()

	var recs []StatementRecord
	for rows.Next() {
		var r StatementRecord
		if err := rows.Scan(&r.CIK, &r.FilerName, &r.Role, &r.View, &r.Stitched, &r.Periods, &r.SavedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan statement record")
		}
		recs = append(recs, r)
	}
	return recs, eris.Wrap(rows.Err(), "postgres: list statements iterate")
}

func (s *PostgresStore) GetCachedFacts(ctx context.Context, cik string) ([]byte, error) {
	var data []byte
	err := s.pool.QueryRow(ctx,
		`SELECT data FROM facts_cache
		 WHERE cik = $1 AND expires_at > now()
		 ORDER BY cached_at DESC LIMIT 1`,
		cik,
	).Scan(&data)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, eris.Wrap(err, "postgres: get cached facts")
	}
	return data, nil
}

func (s *PostgresStore) SetCachedFacts(ctx context.Context, cik string, data []byte, ttl time.Duration) error {
	now := time.Now().UTC()
	_, err := s.pool.Exec(ctx,
		`INSERT INTO facts_cache (id, cik, data, cached_at, expires_at) VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (cik) DO UPDATE SET data = $3, cached_at = $4, expires_at = $5`,
		uuid.New().String(), cik, data, now, now.Add(ttl),
	)
	return eris.Wrap(err, "postgres: set cached facts")
}

func (s *PostgresStore) DeleteExpiredFacts(ctx context.Context) (int, error) {
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM facts_cache WHERE expires_at <= now()`,
	)
	if err != nil {
		return 0, eris.Wrap(err, "postgres: delete expired facts")
	}
	return int(tag.RowsAffected()), nil
}
