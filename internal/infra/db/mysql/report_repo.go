package mysql

import (
	"context"
	"database/sql"
	"time"

	domain "github.com/dvillegas/scam-radar/internal/domain/reports"
)

type ReportRepository struct {
	db *sql.DB
}

func NewReportRepository(db *sql.DB) *ReportRepository {
	return &ReportRepository{db: db}
}

// Save inserts/updates a Report record
func (r *ReportRepository) Save(ctx context.Context, rep *domain.Report) error {
	const q = `
INSERT INTO scam_reports
(id, type, url, title, platform, reason, email, linkedin, name, expertise, risk_score, flags, created_at)
VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?)
ON DUPLICATE KEY UPDATE
 url=VALUES(url), title=VALUES(title), platform=VALUES(platform), reason=VALUES(reason),
 risk_score=VALUES(risk_score), flags=VALUES(flags);
`
	createdAt := rep.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	_, err := r.db.ExecContext(ctx, q,
		rep.ID, rep.Type, rep.URL, rep.Title, rep.Platform, rep.Reason,
		rep.Email, rep.LinkedIn, rep.Name, rep.Expertise,
		rep.RiskScore, joinFlags(rep.Flags), createdAt,
	)
	return err
}

// Get by ID
func (r *ReportRepository) Get(ctx context.Context, id domain.ReportID) (*domain.Report, error) {
	const q = `
SELECT id, type, url, title, platform, reason, email, linkedin, name, expertise, risk_score, flags, created_at
FROM scam_reports
WHERE id=? LIMIT 1;
`
	row := r.db.QueryRowContext(ctx, q, id)
	return scanReport(row)
}

// Paginate returns a page of reports ordered by created_at desc
func (r *ReportRepository) Paginate(ctx context.Context, page, pageSize int) ([]*domain.Report, error) {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	offset := (page - 1) * pageSize

	const q = `
SELECT id, type, url, title, platform, reason, email, linkedin, name, expertise, risk_score, flags, created_at
FROM scam_reports
ORDER BY created_at DESC, id DESC
LIMIT ? OFFSET ?;
`
	rows, err := r.db.QueryContext(ctx, q, pageSize, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.Report
	for rows.Next() {
		rep, err := scanReport(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rep)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanReport(row rowScanner) (*domain.Report, error) {
	var rep domain.Report
	var flags string
	if err := row.Scan(
		&rep.ID, &rep.Type, &rep.URL, &rep.Title, &rep.Platform, &rep.Reason,
		&rep.Email, &rep.LinkedIn, &rep.Name, &rep.Expertise,
		&rep.RiskScore, &flags, &rep.CreatedAt,
	); err != nil {
		return nil, err
	}
	rep.Flags = splitFlags(flags)
	return &rep, nil
}
