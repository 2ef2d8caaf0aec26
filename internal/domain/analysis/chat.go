package analysis

import "regexp"

// ChatSignals is the pre-flag battery output handed to the prompt builder.
type ChatSignals struct {
	Entities Entities `json:"entities"`
	PreFlags []string `json:"preFlags"`
}

// ChatResult is the analysis verdict for a recruiting-chat transcript.
type ChatResult struct {
	RiskScore int      `json:"riskScore"`
	Flags     []string `json:"flags"`
	Entities  Entities `json:"entities"`
	Summary   string   `json:"summary"`
	Guidance  []string `json:"guidance"`
	Evidence  []string `json:"evidence"`
}

// chatCheck registers a battery entry: the flag fires only when every
// pattern matches the transcript.
type chatCheck struct {
	slug string
	all  []*regexp.Regexp
}

// Contextual pre-flag battery. Tests are independent and not mutually
// exclusive; several commonly co-fire on the same transcript.
var chatChecks = []chatCheck{
	{FlagAsksToRunCode, res(`(?i)\b(clone|git clone|npm\s+install|yarn\s+install|run\s+(the)?\s*repo)\b`)},
	{FlagRepoInvite, res(`(?i)send\s+(me\s+|you\s+|your\s+)?(a\s+|an\s+)?(github|gitlab).*(invite|invitation)|i will send you an invitation`)},
	{FlagNoDeployedDemo, res(`(?i)deployed|demo|landing`, `(?i)wasn'?t deployed|no demo`)},
	{FlagNonCorporateEmail, res(`(?i)gmail\.com|outlook\.com|proton\.me|yahoo\.com`)},
	{FlagSalaryUpfront, res(`(?i)salary|rate`, `(?i)what is your salary expectation\??`)},
	{FlagSkipsInterview, res(`(?i)skip|no need|we can bypass.*(interview|process)`)},
	{FlagWeb3Targeting, res(`(?i)seed|mnemonic|private\s*key|wallet`)},
	{FlagRequestsSecrets, res(`(?i)send.*(api|ssh|token|key|password)`)},
	{FlagUrgencyPressure, res(`(?i)\b(asap|immediately|right now|urgent)\b`)},
	{FlagInconsistentStory, res(`(?i)we'?ve already developed the mvp`, `(?i)wasn'?t deployed|not deployed`)},
	{FlagRCEReference, res(`(?i)base64|atob|new function|eval`)},
	{FlagNoPublicOrg, res(`(?i)domain|github`, `(?i)no domain|no org|no repo|no history`)},
}

func res(patterns ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(patterns))
	for i, p := range patterns {
		out[i] = regexp.MustCompile(p)
	}
	return out
}

// ExtractChatSignals runs the pre-flag battery over a transcript. It never
// fails; empty or non-matching text yields an empty pre-flag set.
func ExtractChatSignals(text string) ChatSignals {
	preFlags := []string{}
	for _, c := range chatChecks {
		hit := true
		for _, re := range c.all {
			if !re.MatchString(text) {
				hit = false
				break
			}
		}
		if hit {
			preFlags = append(preFlags, c.slug)
		}
	}
	return ChatSignals{
		Entities: ExtractEntities(text),
		PreFlags: preFlags,
	}
}

// Direct heuristic tests: a coarse subset of the taxonomy used as the
// deterministic safety floor, available with no network access.
var (
	reHeurRunCode  = regexp.MustCompile(`(?i)run.*(code|repo)|clon(e|ar)|npm\s+install|yarn\s+install`)
	reHeurWallet   = regexp.MustCompile(`(?i)seed|wallet|private\s*key`)
	reHeurUrgency  = regexp.MustCompile(`(?i)urgent|immediately|right\s*now|asap`)
	reHeurFreeMail = regexp.MustCompile(`(?i)gmail\.com|outlook\.com|proton\.me|yahoo\.com`)
)

// HeuristicGuidance is the fixed guidance list attached to every
// deterministic chat result.
var HeuristicGuidance = []string{
	"Don't run untrusted code locally.",
	"Verify company domain and presence.",
	"Ask for live coding or reputable platforms.",
	"Check links in a sandbox/VM.",
}

// HeuristicAnalyzeChat produces the deterministic base result for a chat
// transcript: flat score of 25 per fired flag, capped at 100.
func HeuristicAnalyzeChat(text string) ChatResult {
	flags := []string{}
	if reHeurRunCode.MatchString(text) {
		flags = append(flags, FlagAsksToRunCode)
	}
	if reHeurWallet.MatchString(text) {
		flags = append(flags, FlagWeb3Targeting)
	}
	if reHeurUrgency.MatchString(text) {
		flags = append(flags, FlagUrgencyPressure)
	}
	if reHeurFreeMail.MatchString(text) {
		flags = append(flags, FlagNonCorporateEmail)
	}

	entities := ExtractEntities(text).Deduped()
	riskScore := ClampScore(len(flags) * 25)

	summary := "Potentially risky. Review carefully."
	if riskScore >= 70 {
		summary = "High risk conversation."
	}

	evidence := entities.URLs
	if len(evidence) > 3 {
		evidence = evidence[:3]
	}

	return ChatResult{
		RiskScore: riskScore,
		Flags:     flags,
		Entities:  entities,
		Summary:   summary,
		Guidance:  HeuristicGuidance,
		Evidence:  evidence,
	}
}

// HeuristicFloor anchors the LLM rubric: the richer pre-flag battery can
// raise the floor above the basic heuristic score but never lower it.
func HeuristicFloor(baseScore int, preFlags []string) int {
	floor := ClampScore(len(preFlags) * 15)
	if baseScore > floor {
		return baseScore
	}
	return floor
}
