package llm

import (
	"context"

	"github.com/dvillegas/scam-radar/internal/domain/analysis"
)

// Provider identifies a configured model backend. The set is closed;
// ProviderHeuristic short-circuits to "no call made".
type Provider string

const (
	ProviderHeuristic  Provider = "heuristic"
	ProviderOpenRouter Provider = "openrouter"
	ProviderCloudflare Provider = "cloudflare"
	ProviderDeepSeek   Provider = "deepseek"
	ProviderOpenAI     Provider = "openai"
)

// Valid reports whether p belongs to the closed provider enum.
func (p Provider) Valid() bool {
	switch p {
	case ProviderHeuristic, ProviderOpenRouter, ProviderCloudflare, ProviderDeepSeek, ProviderOpenAI:
		return true
	}
	return false
}

// CloudflareConfig carries Workers AI credentials and model selection.
type CloudflareConfig struct {
	Token     string `json:"token,omitempty"`
	AccountID string `json:"accountId,omitempty"`
	Model     string `json:"model,omitempty"`
}

// ProviderConfig is a per-request provider override with optional BYO
// credentials. Missing fields fall back to server configuration; resolution
// is an explicit chain evaluated once per request, never ambient state.
type ProviderConfig struct {
	Provider      Provider          `json:"provider"`
	OpenRouterKey string            `json:"openRouterKey,omitempty"`
	DeepSeekKey   string            `json:"deepseekKey,omitempty"`
	OpenAIKey     string            `json:"openaiKey,omitempty"`
	Cloudflare    *CloudflareConfig `json:"cloudflare,omitempty"`
}

// Message is one turn submitted to a provider.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Client is the transport capability the core consumes: send messages, get
// raw text back, may fail.
type Client interface {
	Chat(ctx context.Context, messages []Message, wantJSON bool) (string, error)
}

// Analyzer is the enrichment port the analysis services depend on. A nil
// partial with nil error means the provider short-circuited (heuristic) and
// the deterministic result stands alone.
type Analyzer interface {
	AnalyzeChat(ctx context.Context, override *ProviderConfig, transcript string, floor int, signals analysis.ChatSignals) (*analysis.ChatPartial, error)
	AnalyzeRepo(ctx context.Context, override *ProviderConfig, signals analysis.RepoSignals, score int) (*analysis.RepoPartial, error)
}
