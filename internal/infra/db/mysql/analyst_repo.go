package mysql

import (
	"context"
	"database/sql"
	"strings"
	"time"

	domain "github.com/dvillegas/scam-radar/internal/domain/analyst"
)

type AnalystRepository struct {
	db *sql.DB
}

func NewAnalystRepository(db *sql.DB) *AnalystRepository {
	return &AnalystRepository{db: db}
}

// Save inserts an analysis record
func (r *AnalystRepository) Save(ctx context.Context, a *domain.Analysis) error {
	const q = `
INSERT INTO radar_analyses
  (id, kind, risk_score, flags, provider, result_json, artifact_url, created_at)
VALUES (?,?,?,?,?,?,?,?)
ON DUPLICATE KEY UPDATE
  risk_score=VALUES(risk_score), flags=VALUES(flags), result_json=VALUES(result_json), artifact_url=VALUES(artifact_url);
`
	result := a.Result
	if strings.TrimSpace(result) == "" {
		// result_json column requires valid JSON; use empty object
		result = "{}"
	}
	createdAt := a.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	_, err := r.db.ExecContext(ctx, q,
		a.ID, a.Kind, a.RiskScore, joinFlags(a.Flags), a.Provider, result, a.ArtifactURL, createdAt)
	return err
}

// Paginate returns a page of analysis records ordered by created_at desc
func (r *AnalystRepository) Paginate(ctx context.Context, page, pageSize int) ([]*domain.Analysis, error) {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	offset := (page - 1) * pageSize

	const q = `
SELECT id, kind, risk_score, flags, provider, result_json, artifact_url, created_at
FROM radar_analyses
ORDER BY created_at DESC, id DESC
LIMIT ? OFFSET ?;
`
	return r.query(ctx, q, pageSize, offset)
}

// Latest returns the most recent analyses
func (r *AnalystRepository) Latest(ctx context.Context, limit int) ([]*domain.Analysis, error) {
	if limit <= 0 {
		limit = 20
	}
	const q = `
SELECT id, kind, risk_score, flags, provider, result_json, artifact_url, created_at
FROM radar_analyses
ORDER BY created_at DESC, id DESC
LIMIT ?;
`
	return r.query(ctx, q, limit)
}

func (r *AnalystRepository) query(ctx context.Context, q string, args ...any) ([]*domain.Analysis, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.Analysis
	for rows.Next() {
		var a domain.Analysis
		var flags string
		if err := rows.Scan(&a.ID, &a.Kind, &a.RiskScore, &flags, &a.Provider, &a.Result, &a.ArtifactURL, &a.CreatedAt); err != nil {
			return nil, err
		}
		a.Flags = splitFlags(flags)
		out = append(out, &a)
	}
	return out, rows.Err()
}
