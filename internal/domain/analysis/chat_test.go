package analysis

import (
	"testing"
)

func hasFlag(flags []string, want string) bool {
	for _, f := range flags {
		if f == want {
			return true
		}
	}
	return false
}

func TestExtractChatSignalsGithubInviteTranscript(t *testing.T) {
	text := "We'll send you a github invite first, just clone and run npm install, it's urgent"
	sig := ExtractChatSignals(text)

	for _, want := range []string{FlagRepoInvite, FlagAsksToRunCode, FlagUrgencyPressure} {
		if !hasFlag(sig.PreFlags, want) {
			t.Fatalf("preFlags = %v, missing %q", sig.PreFlags, want)
		}
	}
}

func TestExtractChatSignalsBenignText(t *testing.T) {
	sig := ExtractChatSignals("Thanks for applying, our recruiter will schedule a call next week.")
	if len(sig.PreFlags) != 0 {
		t.Fatalf("preFlags = %v, want none", sig.PreFlags)
	}
}

func TestExtractChatSignalsMultiPatternChecks(t *testing.T) {
	// no_deployed_demo needs both the topic mention and the negation.
	sig := ExtractChatSignals("The demo exists somewhere")
	if hasFlag(sig.PreFlags, FlagNoDeployedDemo) {
		t.Fatalf("preFlags = %v, flag should need every pattern to match", sig.PreFlags)
	}

	sig = ExtractChatSignals("We have a demo but it wasn't deployed yet")
	if !hasFlag(sig.PreFlags, FlagNoDeployedDemo) {
		t.Fatalf("preFlags = %v, want %s", sig.PreFlags, FlagNoDeployedDemo)
	}
}

func TestHeuristicAnalyzeChatScoresPerFlag(t *testing.T) {
	tests := []struct {
		name      string
		text      string
		wantScore int
		wantFlags []string
	}{
		{
			name:      "benign",
			text:      "Looking forward to the onsite interview next Tuesday.",
			wantScore: 0,
			wantFlags: []string{},
		},
		{
			name:      "single flag",
			text:      "Please clone the repository and take a look.",
			wantScore: 25,
			wantFlags: []string{FlagAsksToRunCode},
		},
		{
			name:      "three flags",
			text:      "Run npm install asap, we need your wallet seed phrase immediately.",
			wantScore: 75,
			wantFlags: []string{FlagAsksToRunCode, FlagWeb3Targeting, FlagUrgencyPressure},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := HeuristicAnalyzeChat(tt.text)
			if got.RiskScore != tt.wantScore {
				t.Fatalf("riskScore = %d, want %d", got.RiskScore, tt.wantScore)
			}
			if len(got.Flags) != len(tt.wantFlags) {
				t.Fatalf("flags = %v, want %v", got.Flags, tt.wantFlags)
			}
			for _, f := range tt.wantFlags {
				if !hasFlag(got.Flags, f) {
					t.Fatalf("flags = %v, missing %q", got.Flags, f)
				}
			}
		})
	}
}

func TestHeuristicAnalyzeChatSummaryBands(t *testing.T) {
	low := HeuristicAnalyzeChat("Please clone the repository.")
	if low.Summary != "Potentially risky. Review carefully." {
		t.Fatalf("summary = %q", low.Summary)
	}

	high := HeuristicAnalyzeChat("clone it urgent, send the wallet seed to me@gmail.com")
	if high.RiskScore < 70 {
		t.Fatalf("riskScore = %d, want >= 70", high.RiskScore)
	}
	if high.Summary != "High risk conversation." {
		t.Fatalf("summary = %q", high.Summary)
	}
}

func TestHeuristicAnalyzeChatEvidenceIsFirstThreeURLs(t *testing.T) {
	got := HeuristicAnalyzeChat("see https://a.test https://b.test https://c.test https://d.test")
	if len(got.Evidence) != 3 {
		t.Fatalf("evidence = %v, want first 3 urls", got.Evidence)
	}
	if got.Evidence[0] != "https://a.test" || got.Evidence[2] != "https://c.test" {
		t.Fatalf("evidence = %v, wrong order", got.Evidence)
	}
}

func TestHeuristicAnalyzeChatAlwaysGuided(t *testing.T) {
	got := HeuristicAnalyzeChat("completely ordinary message with enough length")
	if len(got.Guidance) != len(HeuristicGuidance) {
		t.Fatalf("guidance = %v", got.Guidance)
	}
}

func TestHeuristicFloor(t *testing.T) {
	tests := []struct {
		base     int
		preFlags int
		want     int
	}{
		{0, 0, 0},
		{25, 1, 25},  // base above flag floor
		{10, 2, 30},  // flag floor above base
		{0, 8, 100},  // floor clamps at 100
		{90, 3, 90},
	}
	for _, tt := range tests {
		flags := make([]string, tt.preFlags)
		if got := HeuristicFloor(tt.base, flags); got != tt.want {
			t.Fatalf("HeuristicFloor(%d, %d flags) = %d, want %d", tt.base, tt.preFlags, got, tt.want)
		}
	}
}
