package reports

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dvillegas/scam-radar/internal/application"
	domain "github.com/dvillegas/scam-radar/internal/domain/reports"
)

type memRepo struct {
	saved []*domain.Report
}

func (m *memRepo) Save(ctx context.Context, r *domain.Report) error {
	m.saved = append(m.saved, r)
	return nil
}

func (m *memRepo) Get(ctx context.Context, id domain.ReportID) (*domain.Report, error) {
	for _, r := range m.saved {
		if r.ID == id {
			return r, nil
		}
	}
	return nil, nil
}

func (m *memRepo) Paginate(ctx context.Context, page, pageSize int) ([]*domain.Report, error) {
	return m.saved, nil
}

type fixedClock struct{ at time.Time }

func (c fixedClock) Now() time.Time { return c.at }

var _ application.Clock = fixedClock{}

func validCmd() SubmitCommand {
	return SubmitCommand{
		Type:   string(domain.TypeRepo),
		URL:    "https://github.com/acme/payload",
		Reason: "postinstall script downloads a second stage",
	}
}

func TestSubmitPersistsReport(t *testing.T) {
	repo := &memRepo{}
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	svc := &Service{Repo: repo, Clock: fixedClock{at: now}}

	id, err := svc.Submit(context.Background(), validCmd())
	if err != nil {
		t.Fatal(err)
	}
	if id == "" {
		t.Fatal("empty report id")
	}
	if len(repo.saved) != 1 {
		t.Fatalf("saved %d, want 1", len(repo.saved))
	}
	if !repo.saved[0].CreatedAt.Equal(now) {
		t.Fatalf("createdAt = %v", repo.saved[0].CreatedAt)
	}
	if repo.saved[0].Flags == nil {
		t.Fatal("flags must be non-nil")
	}
}

func TestSubmitValidation(t *testing.T) {
	svc := &Service{Repo: &memRepo{}, Clock: fixedClock{at: time.Now()}}

	tests := []struct {
		name   string
		mutate func(*SubmitCommand)
	}{
		{"bad type", func(c *SubmitCommand) { c.Type = "tweet" }},
		{"no subject", func(c *SubmitCommand) { c.URL = ""; c.Title = "" }},
		{"no reason", func(c *SubmitCommand) { c.Reason = "  " }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := validCmd()
			tt.mutate(&cmd)
			if _, err := svc.Submit(context.Background(), cmd); !errors.Is(err, ErrInvalidReport) {
				t.Fatalf("err = %v, want ErrInvalidReport", err)
			}
		})
	}
}

func TestSubmitHoneypot(t *testing.T) {
	svc := &Service{Repo: &memRepo{}, Clock: fixedClock{at: time.Now()}}
	cmd := validCmd()
	cmd.Website = "http://bot.example"
	if _, err := svc.Submit(context.Background(), cmd); !errors.Is(err, ErrHoneypot) {
		t.Fatalf("err = %v, want ErrHoneypot", err)
	}
}

func TestSubmitTitleOnlyIsEnough(t *testing.T) {
	svc := &Service{Repo: &memRepo{}, Clock: fixedClock{at: time.Now()}}
	cmd := validCmd()
	cmd.URL = ""
	cmd.Title = "Fake recruiter on LinkedIn"
	if _, err := svc.Submit(context.Background(), cmd); err != nil {
		t.Fatal(err)
	}
}
