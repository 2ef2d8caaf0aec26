// Package prompt renders the instruction blocks sent to the model. Both
// builders embed the authoritative taxonomy, an additive scoring rubric
// anchored on the heuristic floor, and a strict JSON-only output contract.
package prompt

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/dvillegas/scam-radar/internal/domain/analysis"
)

// Chat renders the reviewer instruction for a recruiting-chat transcript.
func Chat(transcript string, heuristicScore int, signals analysis.ChatSignals) string {
	signalsJSON, _ := json.MarshalIndent(signals, "", "  ")
	return fmt.Sprintf(`You are a senior security reviewer auditing a RECRUITING CHAT for scam patterns.

RULES:
- Think first, then output ONLY one JSON object (no extra text).
- Valid JSON, camelCase keys, no trailing commas.
- Use ONLY the taxonomy slugs below. If none apply, use [].

FLAG TAXONOMY:
%s

SCORING (0-100):
- Start from heuristicScore (ceil).
- Add:
  +25 if asks_to_run_code OR repo_invite_before_screening
  +20 if no_deployed_demo AND no_public_org_or_domain
  +15 if off_platform_contact OR non_corporate_email
  +15 if requests_secrets OR web3_targeting
  +10 if urgency_pressure OR skips_interview_steps
  +10 if inconsistent_story OR suspicious_repo_claims
  +10 if base64_decode_reference OR rce_pattern_reference
- Cap at 100. >=70 High risk, 40-69 Medium, <40 Low.

OUTPUT (JSON only):
{
  "riskScore": number,
  "flags": string[],
  "entities": { "emails": string[], "urls": string[], "wallets": string[] },
  "summary": string,
  "guidance": string[],
  "evidence": string[]
}

EVIDENCE RULES:
- Use verbatim quotes strictly from the transcript.
- Max 120 chars each. Pick the most indicative lines.

INPUT_TRANSCRIPT:
<<<
%s
>>>

EXTRACTED_SIGNALS: (regex/heuristics already computed by the system)
%s

HEURISTIC_SCORE:
%d
`, taxonomyJSON(analysis.ChatTaxonomy), transcript, signalsJSON, heuristicScore)
}

func taxonomyJSON(slugs []string) string {
	quoted := make([]string, len(slugs))
	for i, s := range slugs {
		quoted[i] = `"` + s + `"`
	}
	return "[" + strings.Join(quoted, ",") + "]"
}
