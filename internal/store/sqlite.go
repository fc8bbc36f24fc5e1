package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/prospect-cli/internal/model"
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
			db.Close() //nolint:errcheck
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS leads (
	id               TEXT PRIMARY KEY,
	name             TEXT NOT NULL,
	name_key         TEXT NOT NULL,
	phone            TEXT NOT NULL,
	normalized_phone TEXT NOT NULL DEFAULT '',
	instagram        TEXT NOT NULL DEFAULT '',
	website          TEXT NOT NULL DEFAULT '',
	description      TEXT NOT NULL DEFAULT '',
	pain_points      TEXT NOT NULL DEFAULT '[]',
	match_reason     TEXT NOT NULL DEFAULT '',
	quality_tier     TEXT NOT NULL DEFAULT 'opportunity',
	score            TEXT NOT NULL DEFAULT 'cold',
	status           TEXT NOT NULL DEFAULT 'new',
	audit            TEXT NOT NULL DEFAULT '',
	confidence_score REAL NOT NULL DEFAULT 0,
	rating           REAL NOT NULL DEFAULT 0,
	review_count     INTEGER NOT NULL DEFAULT 0,
	created_at       DATETIME NOT NULL DEFAULT (datetime('now')),
	updated_at       DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS search_history (
	id         TEXT PRIMARY KEY,
	niche      TEXT NOT NULL,
	location   TEXT NOT NULL,
	size       TEXT NOT NULL DEFAULT '',
	count      INTEGER NOT NULL DEFAULT 0,
	found      INTEGER NOT NULL DEFAULT 0,
	created_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS service_context (
	id         INTEGER PRIMARY KEY CHECK (id = 1),
	data       TEXT NOT NULL,
	updated_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_leads_status ON leads(status);
CREATE INDEX IF NOT EXISTS idx_leads_name_key ON leads(name_key);
CREATE INDEX IF NOT EXISTS idx_search_history_created_at ON search_history(created_at);
`

const leadColumns = `id, name, phone, normalized_phone, instagram, website, description, pain_points,
	match_reason, quality_tier, score, status, audit, confidence_score, rating, review_count, created_at, updated_at`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) SaveLead(ctx context.Context, lead model.Lead) error {
	return s.saveLead(ctx, s.db, lead)
}

// SaveLeads upserts leads in one transaction.
func (s *SQLiteStore) SaveLeads(ctx context.Context, leads []model.Lead) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: begin save leads")
	}
	defer tx.Rollback() //nolint:errcheck

	for _, l := range leads {
		if err := s.saveLead(ctx, tx, l); err != nil {
			return 0, err
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, eris.Wrap(err, "sqlite: commit save leads")
	}
	return len(leads), nil
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (s *SQLiteStore) saveLead(ctx context.Context, ex execer, lead model.Lead) error {
	lead = prepareLead(lead, time.Now().UTC())
	painJSON, err := json.Marshal(lead.PainPoints)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal pain points")
	}

	_, err = ex.ExecContext(ctx,
		`INSERT INTO leads (id, name, name_key, phone, normalized_phone, instagram, website, description, pain_points,
			match_reason, quality_tier, score, status, audit, confidence_score, rating, review_count, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			name = excluded.name, name_key = excluded.name_key, phone = excluded.phone,
			normalized_phone = excluded.normalized_phone, instagram = excluded.instagram, website = excluded.website,
			description = excluded.description, pain_points = excluded.pain_points, match_reason = excluded.match_reason,
			quality_tier = excluded.quality_tier, score = excluded.score, status = excluded.status, audit = excluded.audit,
			confidence_score = excluded.confidence_score, rating = excluded.rating, review_count = excluded.review_count,
			updated_at = excluded.updated_at`,
		lead.ID, lead.Name, nameKey(lead.Name), lead.Phone, lead.NormalizedPhone, lead.Instagram, lead.Website,
		lead.Description, string(painJSON), lead.MatchReason, string(lead.QualityTier), string(lead.Score),
		string(lead.Status), lead.Audit, lead.ConfidenceScore, lead.Rating, lead.ReviewCount, lead.CreatedAt, lead.UpdatedAt,
	)
	return eris.Wrapf(err, "sqlite: save lead %s", lead.ID)
}

func (s *SQLiteStore) GetLead(ctx context.Context, id string) (*model.Lead, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+leadColumns+` FROM leads WHERE id = ?`, id)
	l, err := scanLead(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, eris.Wrapf(ErrNotFound, "lead %s", id)
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: get lead")
	}
	return l, nil
}

func (s *SQLiteStore) ListLeads(ctx context.Context, filter LeadFilter) ([]model.Lead, error) {
	query := `SELECT ` + leadColumns + ` FROM leads WHERE 1=1`
	var args []any

	if filter.Status != "" {
		query += ` AND status = ?`
		args = append(args, string(filter.Status))
	}
	if filter.Score != "" {
		query += ` AND score = ?`
		args = append(args, string(filter.Score))
	}
	if q := strings.TrimSpace(filter.Query); q != "" {
		query += ` AND name_key LIKE ?`
		args = append(args, "%"+nameKey(q)+"%")
	}
	query += ` ORDER BY created_at DESC, name LIMIT ?`
	args = append(args, filter.limit())
	if filter.Offset > 0 {
		query += ` OFFSET ?`
		args = append(args, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list leads")
	}
	defer rows.Close() //nolint:errcheck

	leads := []model.Lead{}
	for rows.Next() {
		l, err := scanLead(rows)
		if err != nil {
			return nil, eris.Wrap(err, "sqlite: scan lead")
		}
		leads = append(leads, *l)
	}
	return leads, eris.Wrap(rows.Err(), "sqlite: list leads iterate")
}

func (s *SQLiteStore) UpdateLeadStatus(ctx context.Context, id string, status model.LeadStatus) error {
	if !status.Valid() {
		return eris.Wrapf(ErrInvalidStatus, "%q", status)
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE leads SET status = ?, updated_at = ? WHERE id = ?`,
		string(status), time.Now().UTC(), id,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: update lead status %s", id)
	}
	return checkRowsAffected(res, id)
}

func (s *SQLiteStore) UpdateLeadAudit(ctx context.Context, id, audit string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE leads SET audit = ?, updated_at = ? WHERE id = ?`,
		audit, time.Now().UTC(), id,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: update lead audit %s", id)
	}
	return checkRowsAffected(res, id)
}

func (s *SQLiteStore) UpdateLeadEnrichment(ctx context.Context, id string, rating float64, reviews int, painPoints []string) error {
	if painPoints == nil {
		painPoints = []string{}
	}
	painJSON, err := json.Marshal(painPoints)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal pain points")
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE leads SET rating = ?, review_count = ?, pain_points = ?, updated_at = ? WHERE id = ?`,
		rating, reviews, string(painJSON), time.Now().UTC(), id,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: update lead enrichment %s", id)
	}
	return checkRowsAffected(res, id)
}

func (s *SQLiteStore) DeleteLead(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM leads WHERE id = ?`, id)
	if err != nil {
		return eris.Wrapf(err, "sqlite: delete lead %s", id)
	}
	return checkRowsAffected(res, id)
}

func (s *SQLiteStore) LeadNames(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT name FROM leads ORDER BY created_at`)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: lead names")
	}
	defer rows.Close() //nolint:errcheck

	names := []string{}
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan lead name")
		}
		names = append(names, n)
	}
	return names, eris.Wrap(rows.Err(), "sqlite: lead names iterate")
}

func (s *SQLiteStore) AddSearchHistory(ctx context.Context, item model.SearchHistoryItem) error {
	if item.ID == "" {
		item.ID = uuid.NewString()
	}
	if item.Timestamp.IsZero() {
		item.Timestamp = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO search_history (id, niche, location, size, count, found, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		item.ID, item.Niche, item.Location, string(item.Size), item.Count, item.Found, item.Timestamp,
	)
	return eris.Wrap(err, "sqlite: add search history")
}

func (s *SQLiteStore) ListSearchHistory(ctx context.Context, limit int) ([]model.SearchHistoryItem, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, niche, location, size, count, found, created_at FROM search_history ORDER BY created_at DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list search history")
	}
	defer rows.Close() //nolint:errcheck

	items := []model.SearchHistoryItem{}
	for rows.Next() {
		var it model.SearchHistoryItem
		if err := rows.Scan(&it.ID, &it.Niche, &it.Location, &it.Size, &it.Count, &it.Found, &it.Timestamp); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan search history")
		}
		items = append(items, it)
	}
	return items, eris.Wrap(rows.Err(), "sqlite: list search history iterate")
}

func (s *SQLiteStore) GetServiceContext(ctx context.Context) (*model.ServiceContext, error) {
	var data string
	err := s.db.QueryRowContext(ctx, `SELECT data FROM service_context WHERE id = 1`).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: get service context")
	}
	var svc model.ServiceContext
	if err := json.Unmarshal([]byte(data), &svc); err != nil {
		return nil, eris.Wrap(err, "sqlite: unmarshal service context")
	}
	return &svc, nil
}

func (s *SQLiteStore) SetServiceContext(ctx context.Context, svc model.ServiceContext) error {
	data, err := json.Marshal(svc)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal service context")
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO service_context (id, data, updated_at) VALUES (1, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at`,
		string(data), time.Now().UTC(),
	)
	return eris.Wrap(err, "sqlite: set service context")
}

// helpers

func checkRowsAffected(res sql.Result, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return eris.Wrap(err, "rows affected")
	}
	if n == 0 {
		return eris.Wrapf(ErrNotFound, "lead %s", id)
	}
	return nil
}

type scannable interface {
	Scan(dest ...any) error
}

func scanLead(row scannable) (*model.Lead, error) {
	var l model.Lead
	var painJSON []byte
	err := row.Scan(&l.ID, &l.Name, &l.Phone, &l.NormalizedPhone, &l.Instagram, &l.Website, &l.Description, &painJSON,
		&l.MatchReason, &l.QualityTier, &l.Score, &l.Status, &l.Audit, &l.ConfidenceScore, &l.Rating, &l.ReviewCount,
		&l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		return nil, err
	}
	l.PainPoints = []string{}
	if len(painJSON) > 0 {
		if err := json.Unmarshal(painJSON, &l.PainPoints); err != nil {
			return nil, eris.Wrap(err, "unmarshal pain points")
		}
	}
	return &l, nil
}
