package analyst

import "time"

// AnalysisID identifier type
type AnalysisID string

// Kind of analysis pipeline that produced the record.
type Kind string

const (
	KindChat Kind = "chat"
	KindRepo Kind = "repo"
)

// Analysis represents one completed analysis stored for auditing and
// retrieval. Result holds the merged verdict as JSON.
type Analysis struct {
	ID          AnalysisID `json:"id"`
	Kind        Kind       `json:"kind"`
	RiskScore   int        `json:"risk_score"`
	Flags       []string   `json:"flags"`
	Provider    string     `json:"provider,omitempty"`
	Result      string     `json:"result"`
	ArtifactURL string     `json:"artifact_url,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}
