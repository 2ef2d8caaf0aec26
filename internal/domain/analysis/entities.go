package analysis

import (
	"regexp"
	"strings"
)

// Entity extraction patterns, compiled once at package load.
var (
	reURL   = regexp.MustCompile(`(?i)\bhttps?://[^\s)]+`)
	reEmail = regexp.MustCompile(`(?i)[a-z0-9._%+-]+@[a-z0-9.-]+\.[a-z]{2,}`)
)

// Entities holds the mentions extracted from free text. Wallets is declared
// for contract compatibility but no wallet-address extractor exists; it is
// always present and empty in extractor output.
type Entities struct {
	Emails  []string `json:"emails"`
	URLs    []string `json:"urls"`
	Wallets []string `json:"wallets"`
}

// ExtractEntities pulls email and URL mentions out of text in match order.
// Duplicates are kept here; callers dedupe before producing a result.
// It never fails: text with no matches yields empty slices.
func ExtractEntities(text string) Entities {
	e := Entities{
		Emails:  []string{},
		URLs:    []string{},
		Wallets: []string{},
	}
	for _, m := range reURL.FindAllString(text, -1) {
		e.URLs = append(e.URLs, m)
	}
	for _, m := range reEmail.FindAllString(text, -1) {
		e.Emails = append(e.Emails, strings.ToLower(m))
	}
	return e
}

// Deduped returns a copy with order-preserving deduplication applied to every
// entity list.
func (e Entities) Deduped() Entities {
	return Entities{
		Emails:  uniq(e.Emails),
		URLs:    uniq(e.URLs),
		Wallets: uniq(e.Wallets),
	}
}

// uniq deduplicates while preserving first-seen order. Always returns a
// non-nil slice so results marshal as [] rather than null.
func uniq(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]struct{}, len(in))
	for _, s := range in {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
