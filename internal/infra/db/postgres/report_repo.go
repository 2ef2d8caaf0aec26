package postgres

import (
	"context"
	"database/sql"
	"strings"
	"time"

	_ "github.com/lib/pq"

	domain "github.com/dvillegas/scam-radar/internal/domain/reports"
)

type ReportRepository struct{ db *sql.DB }

func NewReportRepository(db *sql.DB) *ReportRepository { return &ReportRepository{db: db} }

// Connect opens a postgres pool and verifies it with a bounded ping.
func Connect(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	ctx2, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx2); err != nil {
		return nil, err
	}
	return db, nil
}

// Save insert/update Report record
func (r *ReportRepository) Save(ctx context.Context, rep *domain.Report) error {
	const q = `
INSERT INTO scam_reports
(id, type, url, title, platform, reason, email, linkedin, name, expertise, risk_score, flags, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
ON CONFLICT (id) DO UPDATE SET
 url = EXCLUDED.url,
 title = EXCLUDED.title,
 platform = EXCLUDED.platform,
 reason = EXCLUDED.reason,
 risk_score = EXCLUDED.risk_score,
 flags = EXCLUDED.flags;`

	createdAt := rep.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	_, err := r.db.ExecContext(ctx, q,
		rep.ID, rep.Type, rep.URL, rep.Title, rep.Platform, rep.Reason,
		rep.Email, rep.LinkedIn, rep.Name, rep.Expertise,
		rep.RiskScore, strings.Join(rep.Flags, ","), createdAt,
	)
	return err
}

// Get by ID
func (r *ReportRepository) Get(ctx context.Context, id domain.ReportID) (*domain.Report, error) {
	const q = `
SELECT id, type, url, title, platform, reason, email, linkedin, name, expertise, risk_score, flags, created_at
FROM scam_reports
WHERE id=$1 LIMIT 1;`
	return scanReport(r.db.QueryRowContext(ctx, q, id))
}

// Paginate reports ordered by created_at desc
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
LIMIT $1 OFFSET $2;`
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
	if strings.TrimSpace(flags) == "" {
		rep.Flags = []string{}
	} else {
		rep.Flags = strings.Split(flags, ",")
	}
	return &rep, nil
}
