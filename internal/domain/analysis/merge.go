package analysis

import (
	"encoding/json"
	"errors"
	"strings"
)

// ErrMalformedResult is returned when LLM output cannot be parsed into the
// expected result shape.
var ErrMalformedResult = errors.New("malformed analysis result")

const evidenceMaxLen = 120

// ChatPartial is an untrusted, partially-typed chat verdict parsed from raw
// LLM output. Every field is optional; coercion happens at merge time.
type ChatPartial struct {
	RiskScore *float64  `json:"riskScore"`
	Flags     []string  `json:"flags"`
	Entities  *Entities `json:"entities"`
	Summary   *string   `json:"summary"`
	Guidance  []string  `json:"guidance"`
	Evidence  []string  `json:"evidence"`
}

// RepoPartial is the repo-analysis counterpart of ChatPartial.
type RepoPartial struct {
	RiskScore *float64       `json:"riskScore"`
	Flags     []string       `json:"flags"`
	Summary   *string        `json:"summary"`
	Guidance  []string       `json:"guidance"`
	Evidence  []RepoEvidence `json:"evidence"`
}

// ParseChatPartial decodes raw model output. Surrounding code fences are
// tolerated; anything else non-JSON is an error the caller degrades on.
func ParseChatPartial(raw string) (*ChatPartial, error) {
	var p ChatPartial
	if err := json.Unmarshal([]byte(stripFences(raw)), &p); err != nil {
		return nil, ErrMalformedResult
	}
	return &p, nil
}

// ParseRepoPartial decodes raw model output for a repo analysis.
func ParseRepoPartial(raw string) (*RepoPartial, error) {
	var p RepoPartial
	if err := json.Unmarshal([]byte(stripFences(raw)), &p); err != nil {
		return nil, ErrMalformedResult
	}
	return &p, nil
}

// stripFences removes a markdown code fence wrapper if the model added one
// despite the JSON-only instruction.
func stripFences(raw string) string {
	s := strings.TrimSpace(raw)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	}
	return strings.TrimSpace(s)
}

// MergeChat combines the deterministic base with an optional LLM verdict.
// Risk score and flags follow a never-decrease-certainty policy: the score is
// the max of both and flags are the taxonomy-filtered union, so an evasive
// model cannot suppress a deterministically detected risk. Free-text fields
// are overridden by the model when present.
func MergeChat(base ChatResult, llm *ChatPartial) ChatResult {
	out := base
	out.Flags = FilterChatFlags(base.Flags)
	out.Entities = base.Entities.Deduped()
	if llm == nil {
		return out
	}

	out.RiskScore = ClampScore(maxScore(base.RiskScore, llm.RiskScore))
	out.Flags = FilterChatFlags(append(append([]string{}, base.Flags...), llm.Flags...))
	if llm.Entities != nil {
		out.Entities = llm.Entities.Deduped()
	}
	if llm.Summary != nil && *llm.Summary != "" {
		out.Summary = *llm.Summary
	}
	if len(llm.Guidance) > 0 {
		out.Guidance = llm.Guidance
	}
	if len(llm.Evidence) > 0 {
		out.Evidence = boundQuotes(llm.Evidence)
	}
	return out
}

// MergeRepo applies the same policy to repo verdicts. Signals always come
// from the deterministic scan; the model never contributes raw signals.
func MergeRepo(base RepoResult, llm *RepoPartial) RepoResult {
	out := base
	out.Flags = FilterRepoFlags(base.Flags)
	if llm == nil {
		return out
	}

	out.RiskScore = ClampScore(maxScore(base.RiskScore, llm.RiskScore))
	out.Flags = FilterRepoFlags(append(append([]string{}, base.Flags...), llm.Flags...))
	if llm.Summary != nil && *llm.Summary != "" {
		out.Summary = *llm.Summary
	}
	if len(llm.Guidance) > 0 {
		out.Guidance = llm.Guidance
	}
	if len(llm.Evidence) > 0 {
		evidence := make([]RepoEvidence, 0, len(llm.Evidence))
		for _, e := range llm.Evidence {
			e.Snippet = truncate(e.Snippet, evidenceMaxLen)
			evidence = append(evidence, e)
		}
		out.Evidence = evidence
	}
	return out
}

func maxScore(base int, llm *float64) int {
	if llm == nil {
		return base
	}
	s := int(*llm)
	if s > base {
		return s
	}
	return base
}

func boundQuotes(quotes []string) []string {
	out := make([]string, 0, len(quotes))
	for _, q := range quotes {
		out = append(out, truncate(q, evidenceMaxLen))
	}
	return out
}
