package analysis

// FindingType classifies a single scan hit.
type FindingType string

const (
	FindingPattern   FindingType = "pattern"
	FindingEndpoint  FindingType = "endpoint"
	FindingBlob      FindingType = "blob"
	FindingFS        FindingType = "fs"
	FindingWalletDep FindingType = "wallet_dep"
)

// Finding is one append-only piece of scan evidence. Line numbers are
// 1-based; snippets are whitespace-collapsed and capped at 120 chars.
type Finding struct {
	Type    FindingType `json:"type"`
	File    string      `json:"file,omitempty"`
	Line    int         `json:"line,omitempty"`
	Snippet string      `json:"snippet,omitempty"`
	Note    string      `json:"note"`
}

// CodeHit records the location of one matched pattern inside a file.
type CodeHit struct {
	File    string `json:"file"`
	Line    int    `json:"line"`
	Snippet string `json:"snippet"`
}

// DecodedBlob is a base64 string literal whose decoded content looked like
// code or an URL.
type DecodedBlob struct {
	File    string `json:"file"`
	Line    int    `json:"line"`
	Preview string `json:"preview"`
}

// RepoSignals aggregates everything the archive scan extracted. Meta is an
// open mapping reserved for provenance signals (commit counts, author age)
// supplied by external collaborators.
type RepoSignals struct {
	Scripts       map[string]string `json:"scripts"`
	FilesWithHits []string          `json:"filesWithHits"`
	Endpoints     []string          `json:"endpoints"`
	DecodedBlobs  []DecodedBlob     `json:"decodedBlobs"`
	WalletDeps    []string          `json:"walletDeps"`
	FSSensitive   []CodeHit         `json:"fsSensitive"`
	DynamicExec   []CodeHit         `json:"dynamicExec"`
	Lifecycle     []string          `json:"lifecycle"`
	ChildProcess  []CodeHit         `json:"childProcess"`
	Obfuscation   []CodeHit         `json:"obfuscation"`
	Findings      []Finding         `json:"findings"`
	Meta          map[string]any    `json:"meta"`
}

// RepoEvidence is one explanatory quote in a merged repo verdict.
type RepoEvidence struct {
	File    string `json:"file,omitempty"`
	Line    int    `json:"line,omitempty"`
	Snippet string `json:"snippet,omitempty"`
	Note    string `json:"note,omitempty"`
}

// RepoResult is the analysis verdict for an uploaded repository archive.
type RepoResult struct {
	RiskScore int            `json:"riskScore"`
	Flags     []string       `json:"flags"`
	Summary   string         `json:"summary"`
	Guidance  []string       `json:"guidance"`
	Signals   RepoSignals    `json:"signals"`
	Evidence  []RepoEvidence `json:"evidence,omitempty"`
}

// RepoGuidance is the fixed guidance list for the deterministic repo result.
var RepoGuidance = []string{
	"Never run untrusted repos locally.",
	"Remove postinstall/preinstall scripts before testing.",
	"Search for eval/new Function & base64 decode sinks.",
	"Check all outbound network calls and domains.",
}

// BaseRepoResult assembles the deterministic verdict from a scan report,
// guaranteeing summary and guidance are always populated.
func BaseRepoResult(rep ScanReport) RepoResult {
	summary := "Low risk by heuristics; still review before execution."
	switch {
	case rep.Score >= 70:
		summary = "High risk: dynamic execution and/or install-time commands detected."
	case rep.Score >= 40:
		summary = "Moderate risk: review flagged files and scripts before running anything."
	}
	return RepoResult{
		RiskScore: rep.Score,
		Flags:     rep.Flags,
		Summary:   summary,
		Guidance:  RepoGuidance,
		Signals:   rep.Signals,
	}
}
