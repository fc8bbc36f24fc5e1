package store

import (
	"context"
	"encoding/json"
	"errors"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/sells-group/prospect-cli/internal/db"
	"github.com/sells-group/prospect-cli/internal/model"
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

const (
	sqlGetLead      = `SELECT ` + leadColumns + ` FROM leads WHERE id = $1`
	sqlUpdateStatus = `UPDATE leads SET status = $1, updated_at = $2 WHERE id = $3`
	sqlLeadNames    = `SELECT name FROM leads ORDER BY created_at`
	sqlAddHistory   = `INSERT INTO search_history (id, niche, location, size, count, found, created_at) VALUES ($1, $2, $3, $4, $5, $6, $7)`
)

// preparedStatements are prepared on each new connection.
var preparedStatements = map[string]string{
	"get_lead":           sqlGetLead,
	"update_lead_status": sqlUpdateStatus,
	"lead_names":         sqlLeadNames,
	"add_search_history": sqlAddHistory,
}

// leadCopyColumns is the column order used for bulk upserts.
var leadCopyColumns = []string{
	"id", "name", "name_key", "phone", "normalized_phone", "instagram", "website", "description", "pain_points",
	"match_reason", "quality_tier", "score", "status", "audit", "confidence_score", "rating", "review_count",
	"created_at", "updated_at",
}

// leadUpdateColumns are rewritten on conflict; id and created_at are kept.
var leadUpdateColumns = slices.DeleteFunc(slices.Clone(leadCopyColumns), func(c string) bool {
	return c == "id" || c == "created_at"
})

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	maxConns := int32(10)
	minConns := int32(1)
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

	pgxCfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		// Tables may not exist before the first Migrate.
		var exists bool
		if err := conn.QueryRow(ctx, `SELECT to_regclass('leads') IS NOT NULL`).Scan(&exists); err != nil || !exists {
			return nil
		}
		for name, sql := range preparedStatements {
			if _, err := conn.Prepare(ctx, name, sql); err != nil {
				return eris.Wrapf(err, "postgres: prepare %s", name)
			}
		}
		return nil
	}

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

// Pool returns the underlying database pool.
func (s *PostgresStore) Pool() db.Pool {
	return s.pool
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS leads (
	id               TEXT PRIMARY KEY,
	name             TEXT NOT NULL,
	name_key         TEXT NOT NULL,
	phone            TEXT NOT NULL,
	normalized_phone TEXT NOT NULL DEFAULT '',
	instagram        TEXT NOT NULL DEFAULT '',
	website          TEXT NOT NULL DEFAULT '',
	description      TEXT NOT NULL DEFAULT '',
	pain_points      JSONB NOT NULL DEFAULT '[]',
	match_reason     TEXT NOT NULL DEFAULT '',
	quality_tier     TEXT NOT NULL DEFAULT 'opportunity',
	score            TEXT NOT NULL DEFAULT 'cold',
	status           TEXT NOT NULL DEFAULT 'new',
	audit            TEXT NOT NULL DEFAULT '',
	confidence_score DOUBLE PRECISION NOT NULL DEFAULT 0,
	rating           DOUBLE PRECISION NOT NULL DEFAULT 0,
	review_count     INTEGER NOT NULL DEFAULT 0,
	created_at       TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at       TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS search_history (
	id         TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	niche      TEXT NOT NULL,
	location   TEXT NOT NULL,
	size       TEXT NOT NULL DEFAULT '',
	count      INTEGER NOT NULL DEFAULT 0,
	found      INTEGER NOT NULL DEFAULT 0,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS service_context (
	id         INTEGER PRIMARY KEY CHECK (id = 1),
	data       JSONB NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_leads_status ON leads(status);
CREATE INDEX IF NOT EXISTS idx_leads_name_key ON leads(name_key);
CREATE INDEX IF NOT EXISTS idx_search_history_created_at ON search_history(created_at DESC);
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

func (s *PostgresStore) SaveLead(ctx context.Context, lead model.Lead) error {
	_, err := s.SaveLeads(ctx, []model.Lead{lead})
	return err
}

// SaveLeads upserts leads through a COPY into a temp table.
func (s *PostgresStore) SaveLeads(ctx context.Context, leads []model.Lead) (int, error) {
	now := time.Now().UTC()
	rows := make([][]any, 0, len(leads))
	for _, l := range leads {
		l = prepareLead(l, now)
		painJSON, err := json.Marshal(l.PainPoints)
		if err != nil {
			return 0, eris.Wrap(err, "postgres: marshal pain points")
		}
		rows = append(rows, []any{
			l.ID, l.Name, nameKey(l.Name), l.Phone, l.NormalizedPhone, l.Instagram, l.Website, l.Description, painJSON,
			l.MatchReason, string(l.QualityTier), string(l.Score), string(l.Status), l.Audit, l.ConfidenceScore,
			l.Rating, l.ReviewCount, l.CreatedAt, l.UpdatedAt,
		})
	}

	n, err := db.BulkUpsert(ctx, s.pool, db.UpsertConfig{
		Table:        "leads",
		Columns:      leadCopyColumns,
		ConflictKeys: []string{"id"},
		UpdateCols:   leadUpdateColumns,
	}, rows)
	if err != nil {
		return 0, eris.Wrap(err, "postgres: save leads")
	}
	return int(n), nil
}

func (s *PostgresStore) GetLead(ctx context.Context, id string) (*model.Lead, error) {
	l, err := scanLead(s.pool.QueryRow(ctx, sqlGetLead, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, eris.Wrapf(ErrNotFound, "lead %s", id)
	}
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: get lead %s", id)
	}
	return l, nil
}

func (s *PostgresStore) ListLeads(ctx context.Context, filter LeadFilter) ([]model.Lead, error) {
	var (
		where []string
		args  []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return "$" + strconv.Itoa(len(args))
	}
	if filter.Status != "" {
		where = append(where, "status = "+arg(string(filter.Status)))
	}
	if filter.Score != "" {
		where = append(where, "score = "+arg(string(filter.Score)))
	}
	if q := strings.TrimSpace(filter.Query); q != "" {
		where = append(where, "name_key LIKE "+arg("%"+nameKey(q)+"%"))
	}

	query := `SELECT ` + leadColumns + ` FROM leads`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY created_at DESC, name LIMIT ` + arg(filter.limit())
	if filter.Offset > 0 {
		query += ` OFFSET ` + arg(filter.Offset)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list leads")
	}
	defer rows.Close()

	leads := []model.Lead{}
	for rows.Next() {
		l, err := scanLead(rows)
		if err != nil {
			return nil, eris.Wrap(err, "postgres: scan lead")
		}
		leads = append(leads, *l)
	}
	return leads, eris.Wrap(rows.Err(), "postgres: list leads iterate")
}

func (s *PostgresStore) UpdateLeadStatus(ctx context.Context, id string, status model.LeadStatus) error {
	if !status.Valid() {
		return eris.Wrapf(ErrInvalidStatus, "%q", status)
	}
	tag, err := s.pool.Exec(ctx, sqlUpdateStatus, string(status), time.Now().UTC(), id)
	if err != nil {
		return eris.Wrapf(err, "postgres: update lead status %s", id)
	}
	if tag.RowsAffected() == 0 {
		return eris.Wrapf(ErrNotFound, "lead %s", id)
	}
	return nil
}

func (s *PostgresStore) UpdateLeadAudit(ctx context.Context, id, audit string) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE leads SET audit = $1, updated_at = $2 WHERE id = $3`,
		audit, time.Now().UTC(), id,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: update lead audit %s", id)
	}
	if tag.RowsAffected() == 0 {
		return eris.Wrapf(ErrNotFound, "lead %s", id)
	}
	return nil
}

func (s *PostgresStore) UpdateLeadEnrichment(ctx context.Context, id string, rating float64, reviews int, painPoints []string) error {
	if painPoints == nil {
		painPoints = []string{}
	}
	painJSON, err := json.Marshal(painPoints)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal pain points")
	}
	tag, err := s.pool.Exec(ctx,
		`UPDATE leads SET rating = $1, review_count = $2, pain_points = $3, updated_at = $4 WHERE id = $5`,
		rating, reviews, painJSON, time.Now().UTC(), id,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: update lead enrichment %s", id)
	}
	if tag.RowsAffected() == 0 {
		return eris.Wrapf(ErrNotFound, "lead %s", id)
	}
	return nil
}

func (s *PostgresStore) DeleteLead(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM leads WHERE id = $1`, id)
	if err != nil {
		return eris.Wrapf(err, "postgres: delete lead %s", id)
	}
	if tag.RowsAffected() == 0 {
		return eris.Wrapf(ErrNotFound, "lead %s", id)
	}
	return nil
}

func (s *PostgresStore) LeadNames(ctx context.Context) ([]string, error) {
	rows, err := s.pool.Query(ctx, sqlLeadNames)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: lead names")
	}
	defer rows.Close()

	names := []string{}
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			return nil, eris.Wrap(err, "postgres: scan lead name")
		}
		names = append(names, n)
	}
	return names, eris.Wrap(rows.Err(), "postgres: lead names iterate")
}

func (s *PostgresStore) AddSearchHistory(ctx context.Context, item model.SearchHistoryItem) error {
	if item.ID == "" {
		item.ID = uuid.NewString()
	}
	if item.Timestamp.IsZero() {
		item.Timestamp = time.Now().UTC()
	}
	_, err := s.pool.Exec(ctx, sqlAddHistory,
		item.ID, item.Niche, item.Location, string(item.Size), item.Count, item.Found, item.Timestamp,
	)
	return eris.Wrap(err, "postgres: add search history")
}

func (s *PostgresStore) ListSearchHistory(ctx context.Context, limit int) ([]model.SearchHistoryItem, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.pool.Query(ctx,
		`SELECT id, niche, location, size, count, found, created_at FROM search_history ORDER BY created_at DESC LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list search history")
	}
	defer rows.Close()

	items := []model.SearchHistoryItem{}
	for rows.Next() {
		var it model.SearchHistoryItem
		if err := rows.Scan(&it.ID, &it.Niche, &it.Location, &it.Size, &it.Count, &it.Found, &it.Timestamp); err != nil {
			return nil, eris.Wrap(err, "postgres: scan search history")
		}
		items = append(items, it)
	}
	return items, eris.Wrap(rows.Err(), "postgres: list search history iterate")
}

func (s *PostgresStore) GetServiceContext(ctx context.Context) (*model.ServiceContext, error) {
	var data []byte
	err := s.pool.QueryRow(ctx, `SELECT data FROM service_context WHERE id = 1`).Scan(&data)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrap(err, "postgres: get service context")
	}
	var svc model.ServiceContext
	if err := json.Unmarshal(data, &svc); err != nil {
		return nil, eris.Wrap(err, "postgres: unmarshal service context")
	}
	return &svc, nil
}

func (s *PostgresStore) SetServiceContext(ctx context.Context, svc model.ServiceContext) error {
	data, err := json.Marshal(svc)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal service context")
	}
	_, err = s.pool.Exec(ctx,
		`INSERT INTO service_context (id, data, updated_at) VALUES (1, $1, $2)
		 ON CONFLICT (id) DO UPDATE SET data = EXCLUDED.data, updated_at = EXCLUDED.updated_at`,
		data, time.Now().UTC(),
	)
	return eris.Wrap(err, "postgres: set service context")
}
