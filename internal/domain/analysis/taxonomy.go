package analysis

// Closed flag vocabularies shared by the heuristic layer and the LLM prompt
// contract. Producers must not emit slugs outside these lists; anything else
// coming back from a model is dropped before merge.

// Chat taxonomy slugs.
const (
	FlagAsksToRunCode       = "asks_to_run_code"
	FlagRepoInvite          = "repo_invite_before_screening"
	FlagNoDeployedDemo      = "no_deployed_demo"
	FlagOffPlatformContact  = "off_platform_contact"
	FlagNonCorporateEmail   = "non_corporate_email"
	FlagSalaryUpfront       = "salary_upfront_unstructured"
	FlagSkipsInterview      = "skips_interview_steps"
	FlagInconsistentStory   = "inconsistent_story"
	FlagWeb3Targeting       = "web3_targeting"
	FlagRequestsSecrets     = "requests_secrets"
	FlagUrgencyPressure     = "urgency_pressure"
	FlagSuspiciousRepoClaim = "suspicious_repo_claims"
	FlagNoPublicOrg         = "no_public_org_or_domain"
	FlagBase64Reference     = "base64_decode_reference"
	FlagRCEReference        = "rce_pattern_reference"
)

// Repo scan taxonomy slugs. The last two are reserved for provenance signals
// supplied externally via signals.meta, never computed by the scanner.
const (
	FlagEvalUsage        = "eval_usage"
	FlagNewFunction      = "new_function"
	FlagFunctionCtor     = "function_ctor"
	FlagChildProcess     = "child_process"
	FlagBase64Decode     = "base64_decode"
	FlagRemoteCmd        = "remote_cmd"
	FlagNpmLifecycle     = "npm_lifecycle_install"
	FlagSuspiciousBuild  = "suspicious_build_script"
	FlagExfilEndpoint    = "exfiltration_endpoint"
	FlagWalletTargeting  = "wallet_targeting"
	FlagFSSensitive      = "fs_sensitive_access"
	FlagObfuscation      = "obfuscation"
	FlagOneCommitRepo    = "one_commit_repo"
	FlagAuthorAnomaly    = "author_anomaly"
)

// ChatTaxonomy is the authoritative slug list for chat analyses.
var ChatTaxonomy = []string{
	FlagAsksToRunCode,
	FlagRepoInvite,
	FlagNoDeployedDemo,
	FlagOffPlatformContact,
	FlagNonCorporateEmail,
	FlagSalaryUpfront,
	FlagSkipsInterview,
	FlagInconsistentStory,
	FlagWeb3Targeting,
	FlagRequestsSecrets,
	FlagUrgencyPressure,
	FlagSuspiciousRepoClaim,
	FlagNoPublicOrg,
	FlagBase64Reference,
	FlagRCEReference,
}

// RepoTaxonomy is the authoritative slug list for repository analyses.
var RepoTaxonomy = []string{
	FlagEvalUsage,
	FlagNewFunction,
	FlagFunctionCtor,
	FlagChildProcess,
	FlagBase64Decode,
	FlagRemoteCmd,
	FlagNpmLifecycle,
	FlagSuspiciousBuild,
	FlagExfilEndpoint,
	FlagWalletTargeting,
	FlagFSSensitive,
	FlagObfuscation,
	FlagOneCommitRepo,
	FlagAuthorAnomaly,
}

var (
	chatTaxonomySet = toSet(ChatTaxonomy)
	repoTaxonomySet = toSet(RepoTaxonomy)
)

// Per-flag scan weights. Flags outside the table score weightDefault.
var repoWeights = map[string]int{
	FlagEvalUsage:       25,
	FlagNewFunction:     20,
	FlagFunctionCtor:    20,
	FlagChildProcess:    25,
	FlagBase64Decode:    15,
	FlagRemoteCmd:       20,
	FlagNpmLifecycle:    15,
	FlagSuspiciousBuild: 15,
	FlagExfilEndpoint:   15,
	FlagWalletTargeting: 15,
	FlagFSSensitive:     10,
	FlagObfuscation:     10,
	FlagOneCommitRepo:   10,
	FlagAuthorAnomaly:   10,
}

const weightDefault = 5

// ScoreRepoFlags applies the additive weight table and clamps to [0,100].
// The sum is deliberately flat: no decay or interaction terms.
func ScoreRepoFlags(flags []string) int {
	total := 0
	for _, f := range flags {
		w, ok := repoWeights[f]
		if !ok {
			w = weightDefault
		}
		total += w
	}
	return ClampScore(total)
}

// ClampScore bounds a risk score to [0,100].
func ClampScore(score int) int {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

// FilterChatFlags deduplicates and drops slugs outside the chat taxonomy.
func FilterChatFlags(flags []string) []string {
	return filterFlags(flags, chatTaxonomySet)
}

// FilterRepoFlags deduplicates and drops slugs outside the repo taxonomy.
func FilterRepoFlags(flags []string) []string {
	return filterFlags(flags, repoTaxonomySet)
}

func filterFlags(flags []string, allowed map[string]struct{}) []string {
	out := make([]string, 0, len(flags))
	seen := make(map[string]struct{}, len(flags))
	for _, f := range flags {
		if _, ok := allowed[f]; !ok {
			continue
		}
		if _, dup := seen[f]; dup {
			continue
		}
		seen[f] = struct{}{}
		out = append(out, f)
	}
	return out
}

func toSet(slugs []string) map[string]struct{} {
	s := make(map[string]struct{}, len(slugs))
	for _, slug := range slugs {
		s[slug] = struct{}{}
	}
	return s
}
