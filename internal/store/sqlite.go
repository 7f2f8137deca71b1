package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/statement-engine/internal/render"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS statements (
	id         TEXT PRIMARY KEY,
	cik        TEXT NOT NULL,
	filer_name TEXT NOT NULL DEFAULT '',
	role       TEXT NOT NULL,
	view       TEXT NOT NULL,
	stitched   INTEGER NOT NULL DEFAULT 0,
	periods    INTEGER NOT NULL DEFAULT 0,
	body       TEXT NOT NULL,
	saved_at   DATETIME NOT NULL DEFAULT (datetime('now')),
	UNIQUE (cik, role, view, stitched)
);

CREATE TABLE IF NOT EXISTS facts_cache (
	id         TEXT PRIMARY KEY,
	cik        TEXT NOT NULL UNIQUE,
	data       TEXT NOT NULL,
	cached_at  DATETIME NOT NULL DEFAULT (datetime('now')),
	expires_at DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_statements_cik ON statements(cik);
CREATE INDEX IF NOT EXISTS idx_statements_role ON statements(role);
CREATE INDEX IF NOT EXISTS idx_facts_cache_cik ON facts_cache(cik);
CREATE INDEX IF NOT EXISTS idx_facts_cache_expires_at ON facts_cache(expires_at);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) SaveStatement(ctx context.Context, cik string, tbl *render.Table, stitched bool) error {
	body, err := json.Marshal(tbl)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal statement")
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO statements (id, cik, filer_name, role, view, stitched, periods, body, saved_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (cik, role, view, stitched) DO UPDATE SET
		   filer_name = excluded.filer_name, periods = excluded.periods,
		   body = excluded.body, saved_at = excluded.saved_at`,
		uuid.New().String(), cik, tbl.Filing.FilerName, string(tbl.Role), string(tbl.View),
		boolToInt(stitched), len(tbl.Periods), string(body), time.Now().UTC(),
	)
	return eris.Wrapf(err, "sqlite: save statement %s %s", cik, tbl.Role)
}

func (s *SQLiteStore) GetStatement(ctx context.Context, cik, role, view string, stitched bool) (*render.Table, error) {
	var body string
	err := s.db.QueryRowContext(ctx,
		`SELECT body FROM statements WHERE cik = ? AND role = ? AND view = ? AND stitched = ?`,
		cik, role, view, boolToInt(stitched),
	).Scan(&body)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get statement %s %s", cik, role)
	}

	var tbl render.Table
	if err := json.Unmarshal([]byte(body), &tbl); err != nil {
		return nil, eris.Wrap(err, "sqlite: unmarshal statement")
	}
	return &tbl, nil
}

func (s *SQLiteStore) ListStatements(ctx context.Context, filter StatementFilter) ([]StatementRecord, error) {
	query := `SELECT cik, filer_name, role, view, stitched, periods, saved_at FROM statements WHERE 1=1`
	var args []any

	if filter.CIK != "" {
		query += ` AND cik = ?`
		args = append(args, filter.CIK)
	}
	if filter.Role != "" {
		query += ` AND role = ?`
		args = append(args, filter.Role)
	}
	if filter.View != "" {
		query += ` AND view = ?`
		args = append(args, filter.View)
	}
	if filter.Stitched != nil {
		query += ` AND stitched = ?`
		args = append(args, boolToInt(*filter.Stitched))
	}
	query += ` ORDER BY saved_at DESC`

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	query += ` LIMIT ?`
	args = append(args, limit)

	if filter.Offset > 0 {
		query += ` OFFSET ?`
		args = append(args, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list statements")
	}
	defer rows.Close()

	var recs []StatementRecord
	for rows.Next() {
		var r StatementRecord
		var stitched int
		if err := rows.Scan(&r.CIK, &r.FilerName, &r.Role, &r.View, &stitched, &r.Periods, &r.SavedAt); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan statement record")
		}
		r.Stitched = stitched != 0
		recs = append(recs, r)
	}
	return recs, eris.Wrap(rows.Err(), "sqlite: list statements iterate")
}

func (s *SQLiteStore) GetCachedFacts(ctx context.Context, cik string) ([]byte, error) {
	var data string
	err := s.db.QueryRowContext(ctx,
		`SELECT data FROM facts_cache
		 WHERE cik = ? AND expires_at > datetime('now')
		 ORDER BY cached_at DESC LIMIT 1`,
		cik,
	).Scan(&data)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: get cached facts")
	}
	return []byte(data), nil
}

func (s *SQLiteStore) SetCachedFacts(ctx context.Context, cik string, data []byte, ttl time.Duration) error {
	now := time.Now().UTC()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO facts_cache (id, cik, data, cached_at, expires_at) VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT (cik) DO UPDATE SET data = excluded.data,
		   cached_at = excluded.cached_at, expires_at = excluded.expires_at`,
		uuid.New().String(), cik, string(data), now, now.Add(ttl),
	)
	return eris.Wrap(err, "sqlite: set cached facts")
}

func (s *SQLiteStore) DeleteExpiredFacts(ctx context.Context) (int, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM facts_cache WHERE expires_at <= datetime('now')`,
	)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: delete expired facts")
	}
	n, err := res.RowsAffected()
	return int(n), eris.Wrap(err, "sqlite: rows affected")
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
