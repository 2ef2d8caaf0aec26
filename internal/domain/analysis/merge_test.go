package analysis

import (
	"reflect"
	"strings"
	"testing"
)

func baseChat() ChatResult {
	return HeuristicAnalyzeChat("clone the repo and run npm install, contact me@gmail.com asap")
}

func TestMergeChatNilPartialEqualsBase(t *testing.T) {
	base := baseChat()
	got := MergeChat(base, nil)

	if got.RiskScore != base.RiskScore {
		t.Fatalf("riskScore = %d, want %d", got.RiskScore, base.RiskScore)
	}
	if !reflect.DeepEqual(got.Flags, base.Flags) {
		t.Fatalf("flags = %v, want %v", got.Flags, base.Flags)
	}
	if got.Summary != base.Summary || !reflect.DeepEqual(got.Guidance, base.Guidance) {
		t.Fatalf("free-text fields changed without an llm verdict")
	}
}

func TestMergeChatScoreNeverDecreases(t *testing.T) {
	base := baseChat()

	lower := 5.0
	got := MergeChat(base, &ChatPartial{RiskScore: &lower})
	if got.RiskScore != base.RiskScore {
		t.Fatalf("riskScore = %d, model must not lower %d", got.RiskScore, base.RiskScore)
	}

	higher := 95.0
	got = MergeChat(base, &ChatPartial{RiskScore: &higher})
	if got.RiskScore != 95 {
		t.Fatalf("riskScore = %d, want 95", got.RiskScore)
	}

	got = MergeChat(base, &ChatPartial{})
	if got.RiskScore != base.RiskScore {
		t.Fatalf("riskScore = %d with absent model score, want %d", got.RiskScore, base.RiskScore)
	}
}

func TestMergeChatFlagsAreUnionFilteredByTaxonomy(t *testing.T) {
	base := baseChat()
	partial := &ChatPartial{
		Flags: []string{FlagRequestsSecrets, "invented_by_model", FlagAsksToRunCode},
	}
	got := MergeChat(base, partial)

	for _, f := range base.Flags {
		if !hasFlag(got.Flags, f) {
			t.Fatalf("merged flags %v lost base flag %q", got.Flags, f)
		}
	}
	if !hasFlag(got.Flags, FlagRequestsSecrets) {
		t.Fatalf("merged flags %v missing model contribution", got.Flags)
	}
	if hasFlag(got.Flags, "invented_by_model") {
		t.Fatalf("merged flags %v contain out-of-taxonomy slug", got.Flags)
	}
	// Union must not duplicate flags present on both sides.
	seen := map[string]int{}
	for _, f := range got.Flags {
		seen[f]++
		if seen[f] > 1 {
			t.Fatalf("flag %q duplicated in %v", f, got.Flags)
		}
	}
}

func TestMergeChatModelOverridesFreeText(t *testing.T) {
	base := baseChat()
	summary := "Classic fake-recruiter playbook."
	partial := &ChatPartial{
		Summary:  &summary,
		Guidance: []string{"Walk away."},
		Evidence: []string{strings.Repeat("x", 300)},
	}
	got := MergeChat(base, partial)

	if got.Summary != summary {
		t.Fatalf("summary = %q", got.Summary)
	}
	if len(got.Guidance) != 1 || got.Guidance[0] != "Walk away." {
		t.Fatalf("guidance = %v", got.Guidance)
	}
	if len(got.Evidence) != 1 || len(got.Evidence[0]) != 120 {
		t.Fatalf("evidence quotes must be capped at 120 chars, got %d", len(got.Evidence[0]))
	}
}

func TestMergeChatEmptySummaryDoesNotOverride(t *testing.T) {
	base := baseChat()
	empty := ""
	got := MergeChat(base, &ChatPartial{Summary: &empty})
	if got.Summary != base.Summary {
		t.Fatalf("summary = %q, empty model summary must not override", got.Summary)
	}
}

func TestMergeRepoPolicy(t *testing.T) {
	base := RepoResult{
		RiskScore: 40,
		Flags:     []string{FlagEvalUsage, FlagNpmLifecycle},
		Summary:   "Moderate risk: review flagged files and scripts before running anything.",
		Guidance:  RepoGuidance,
	}

	got := MergeRepo(base, nil)
	if got.RiskScore != 40 || !reflect.DeepEqual(got.Flags, base.Flags) {
		t.Fatalf("nil partial changed the verdict: %+v", got)
	}

	score := 20.0
	partial := &RepoPartial{
		RiskScore: &score,
		Flags:     []string{FlagWalletTargeting, "bogus"},
		Evidence:  []RepoEvidence{{File: "a.js", Snippet: strings.Repeat("y", 200)}},
	}
	got = MergeRepo(base, partial)
	if got.RiskScore != 40 {
		t.Fatalf("riskScore = %d, model must not lower the base", got.RiskScore)
	}
	if !hasFlag(got.Flags, FlagWalletTargeting) || hasFlag(got.Flags, "bogus") {
		t.Fatalf("flags = %v", got.Flags)
	}
	if len(got.Evidence) != 1 || len(got.Evidence[0].Snippet) != 120 {
		t.Fatalf("evidence snippet must be capped at 120 chars")
	}
}

func TestParseChatPartialToleratesFences(t *testing.T) {
	raw := "```json\n{\"riskScore\": 80, \"flags\": [\"asks_to_run_code\"]}\n```"
	p, err := ParseChatPartial(raw)
	if err != nil {
		t.Fatal(err)
	}
	if p.RiskScore == nil || *p.RiskScore != 80 {
		t.Fatalf("riskScore = %v", p.RiskScore)
	}
	if len(p.Flags) != 1 || p.Flags[0] != FlagAsksToRunCode {
		t.Fatalf("flags = %v", p.Flags)
	}
}

func TestParseChatPartialRejectsNonJSON(t *testing.T) {
	if _, err := ParseChatPartial("I think this is a scam, score 90"); err == nil {
		t.Fatal("expected parse error for prose output")
	}
}

func TestParseRepoPartialRejectsGarbage(t *testing.T) {
	if _, err := ParseRepoPartial("```\nnot json\n```"); err == nil {
		t.Fatal("expected parse error")
	}
}
