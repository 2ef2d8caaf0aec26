package prompt

import (
	"encoding/json"
	"fmt"

	"github.com/dvillegas/scam-radar/internal/domain/analysis"
)

// Repo renders the reviewer instruction for a scanned repository archive.
// The full signals structure is serialized into the prompt so the model can
// only cite evidence the scanner actually extracted.
func Repo(signals analysis.RepoSignals, heuristicScore int) string {
	signalsJSON, _ := json.MarshalIndent(signals, "", "  ")
	return fmt.Sprintf(`You are a senior security reviewer auditing a JS/TS repository for recruiting-malware patterns.

RULES:
- Think through the signals internally, then output ONLY a single JSON object (no prose).
- Use camelCase keys, valid JSON, no trailing commas.
- Do NOT hallucinate files/endpoints that are not in "signals".
- If uncertain, leave arrays empty; never invent data.

KNOWN RED-FLAG TAXONOMY (use these slugs):
- "eval_usage"                  // eval(...)
- "new_function"                // new Function(...) or Function.constructor(...)
- "function_ctor"               // Function("...") variants
- "child_process"               // child_process/exec/spawn
- "base64_decode"               // atob, Buffer.from(...,"base64"), long base64 blobs
- "remote_cmd"                  // curl/wget/powershell in scripts
- "npm_lifecycle_install"       // postinstall/preinstall/prepare/install side-effects
- "suspicious_build_script"     // server/start in build/test
- "exfiltration_endpoint"       // outbound POST/GET to non-corporate domain
- "wallet_targeting"            // seed/mnemonic/privateKey patterns, wallet deps
- "fs_sensitive_access"         // .ssh, keychain, AppData, credential stores
- "obfuscation"                 // nested atob/hex/indirection to hide code
- "one_commit_repo"             // if provided in signals.meta.repoHistory
- "author_anomaly"              // ghost/fresh account (if in signals.meta)
(If none apply, return an empty array.)

SCORING RUBRIC (0-100):
- Start from heuristicScore (ceil).
- Add up to:
  +25 if dynamic code exec ("eval_usage"/"new_function"/"function_ctor")
  +25 if "child_process" OR "remote_cmd"
  +20 if "base64_decode" AND used to build code/URL
  +15 if "npm_lifecycle_install" OR "suspicious_build_script"
  +15 if "exfiltration_endpoint" (non-corporate domain)
  +15 if "wallet_targeting"
  +10 if "fs_sensitive_access" OR "obfuscation"
  +10 if "one_commit_repo" OR "author_anomaly"
- Cap at 100.
- Map: >=70 High risk, 40-69 Moderate, <40 Low.

OUTPUT (JSON only):
{
  "riskScore": number,
  "flags": string[],
  "summary": string,
  "guidance": string[],
  "evidence": [
    {"file": "path", "snippet": "...", "note": "why it's relevant"}
  ]
}

INPUT SIGNALS:
%s

HEURISTIC SCORE:
%d
`, signalsJSON, heuristicScore)
}
