package reports

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/dvillegas/scam-radar/internal/application"
	domain "github.com/dvillegas/scam-radar/internal/domain/reports"
)

var (
	// ErrInvalidReport rejects submissions missing required fields.
	ErrInvalidReport = errors.New("invalid report")

	// ErrHoneypot rejects submissions that filled the hidden form field.
	ErrHoneypot = errors.New("rejected")
)

// Service implements report submission and listing use cases.
type Service struct {
	Repo  domain.Repository
	Clock application.Clock
}

// SubmitCommand carries one report submission. Website is a honeypot: any
// non-empty value marks the submission as bot traffic.
type SubmitCommand struct {
	Type      string
	URL       string
	Title     string
	Platform  string
	Reason    string
	Email     string
	LinkedIn  string
	Name      string
	Expertise string
	RiskScore int
	Flags     []string
	Website   string
}

// Submit validates and persists a community report.
func (s *Service) Submit(ctx context.Context, cmd SubmitCommand) (domain.ReportID, error) {
	if strings.TrimSpace(cmd.Website) != "" {
		return "", ErrHoneypot
	}
	t := domain.ReportType(cmd.Type)
	if t != domain.TypeChat && t != domain.TypeRepo {
		return "", ErrInvalidReport
	}
	// Either a title or a URL must identify the subject.
	if strings.TrimSpace(cmd.Title) == "" && strings.TrimSpace(cmd.URL) == "" {
		return "", ErrInvalidReport
	}
	if strings.TrimSpace(cmd.Reason) == "" {
		return "", ErrInvalidReport
	}

	flags := cmd.Flags
	if flags == nil {
		flags = []string{}
	}
	r := &domain.Report{
		ID:        domain.ReportID(uuid.New().String()),
		Type:      t,
		URL:       cmd.URL,
		Title:     cmd.Title,
		Platform:  cmd.Platform,
		Reason:    cmd.Reason,
		Email:     cmd.Email,
		LinkedIn:  cmd.LinkedIn,
		Name:      cmd.Name,
		Expertise: cmd.Expertise,
		RiskScore: cmd.RiskScore,
		Flags:     flags,
		CreatedAt: s.Clock.Now(),
	}
	if err := s.Repo.Save(ctx, r); err != nil {
		return "", err
	}
	return r.ID, nil
}

// List returns a page of reports, newest first.
func (s *Service) List(ctx context.Context, page, pageSize int) ([]*domain.Report, error) {
	return s.Repo.Paginate(ctx, page, pageSize)
}

// Get fetches one report by ID.
func (s *Service) Get(ctx context.Context, id string) (*domain.Report, error) {
	return s.Repo.Get(ctx, domain.ReportID(id))
}
