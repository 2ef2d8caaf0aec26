package reports

import "time"

// ReportID identifier type
type ReportID string

// ReportType enum
type ReportType string

const (
	TypeChat ReportType = "chat"
	TypeRepo ReportType = "repo"
)

// Report is a community scam report, usually promoted from an analysis
// result by the submitting user.
type Report struct {
	ID        ReportID   `json:"id"`
	Type      ReportType `json:"type"`
	URL       string     `json:"url,omitempty"`
	Title     string     `json:"title"`
	Platform  string     `json:"platform,omitempty"`
	Reason    string     `json:"reason"`
	Email     string     `json:"email,omitempty"`
	LinkedIn  string     `json:"linkedin,omitempty"`
	Name      string     `json:"name,omitempty"`
	Expertise string     `json:"expertise,omitempty"`
	RiskScore int        `json:"risk_score"`
	Flags     []string   `json:"flags"`
	CreatedAt time.Time  `json:"created_at"`
}
