package analysis

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestExtractEntitiesRoundTrip(t *testing.T) {
	text := "contact a@b.co or visit https://x.test/y, again https://x.test/y and A@B.co"
	got := ExtractEntities(text).Deduped()

	if len(got.Emails) != 1 || got.Emails[0] != "a@b.co" {
		t.Fatalf("emails = %v, want [a@b.co]", got.Emails)
	}
	if len(got.URLs) != 1 || got.URLs[0] != "https://x.test/y" {
		t.Fatalf("urls = %v, want [https://x.test/y]", got.URLs)
	}
}

func TestExtractEntitiesLowercasesEmails(t *testing.T) {
	got := ExtractEntities("write to Recruiter@Example.COM please")
	if len(got.Emails) != 1 || got.Emails[0] != "recruiter@example.com" {
		t.Fatalf("emails = %v, want [recruiter@example.com]", got.Emails)
	}
}

func TestExtractEntitiesKeepsMatchOrder(t *testing.T) {
	got := ExtractEntities("first https://one.test then https://two.test")
	if len(got.URLs) != 2 || got.URLs[0] != "https://one.test" || got.URLs[1] != "https://two.test" {
		t.Fatalf("urls = %v, want match order preserved", got.URLs)
	}
}

func TestExtractEntitiesEmptyText(t *testing.T) {
	got := ExtractEntities("nothing to see here")
	if got.Emails == nil || got.URLs == nil || got.Wallets == nil {
		t.Fatal("entity slices must be non-nil")
	}
	if len(got.Emails)+len(got.URLs)+len(got.Wallets) != 0 {
		t.Fatalf("expected empty extraction, got %+v", got)
	}
}

func TestEntitiesWalletsAlwaysEmptyArray(t *testing.T) {
	// wallets is declared but never populated; it must serialize as [].
	out, err := json.Marshal(ExtractEntities("seed phrase talk, wallet 0xdeadbeef"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(out), `"wallets":[]`) {
		t.Fatalf("wallets should marshal as empty array, got %s", out)
	}
}
