// Package ai wires provider resolution, prompt construction and response
// parsing into the llm.Analyzer port consumed by the analysis services.
package ai

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/dvillegas/scam-radar/internal/domain/analysis"
	"github.com/dvillegas/scam-radar/internal/domain/llm"
	"github.com/dvillegas/scam-radar/internal/infra/ai/cloudflare"
	"github.com/dvillegas/scam-radar/internal/infra/ai/openai"
	"github.com/dvillegas/scam-radar/internal/infra/ai/prompt"
	"github.com/dvillegas/scam-radar/internal/metrics"
)

// Credentials are the server-side provider keys used when a request does not
// bring its own.
type Credentials struct {
	OpenRouterKey       string
	DeepSeekKey         string
	OpenAIKey           string
	CloudflareToken     string
	CloudflareAccountID string
	CloudflareModel     string
}

const defaultTimeout = 20 * time.Second

// Gateway resolves a provider per request and runs one bounded LLM call.
// All transport and parse failures surface as errors that callers degrade
// on; the gateway never panics or hangs past its timeout.
type Gateway struct {
	defaultProvider llm.Provider
	creds           Credentials
	timeout         time.Duration
	logger          *zap.Logger

	// dial is swappable in tests.
	dial func(p llm.Provider, override *llm.ProviderConfig) (llm.Client, error)
}

func NewGateway(defaultProvider llm.Provider, creds Credentials, timeout time.Duration, logger *zap.Logger) *Gateway {
	if defaultProvider == "" {
		defaultProvider = llm.ProviderHeuristic
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	g := &Gateway{
		defaultProvider: defaultProvider,
		creds:           creds,
		timeout:         timeout,
		logger:          logger,
	}
	g.dial = g.connect
	return g
}

// Resolve picks the provider for one request: explicit override first, then
// the configured default. A nil client with nil error means the heuristic
// provider short-circuited and no call should be made.
func (g *Gateway) Resolve(override *llm.ProviderConfig) (llm.Client, llm.Provider, error) {
	provider := g.defaultProvider
	if override != nil && override.Provider != "" {
		provider = override.Provider
	}
	if !provider.Valid() {
		return nil, provider, llm.ErrUnsupportedProvider
	}
	if provider == llm.ProviderHeuristic {
		return nil, provider, nil
	}
	client, err := g.dial(provider, override)
	return client, provider, err
}

func (g *Gateway) connect(p llm.Provider, override *llm.ProviderConfig) (llm.Client, error) {
	switch p {
	case llm.ProviderOpenAI:
		key := pick(overrideKey(override, func(o *llm.ProviderConfig) string { return o.OpenAIKey }), g.creds.OpenAIKey)
		if key == "" {
			return nil, llm.ErrMissingCredentials
		}
		return openai.NewClient(key, openai.BaseOpenAI, openai.ModelOpenAI), nil

	case llm.ProviderDeepSeek:
		key := pick(overrideKey(override, func(o *llm.ProviderConfig) string { return o.DeepSeekKey }), g.creds.DeepSeekKey)
		if key == "" {
			return nil, llm.ErrMissingCredentials
		}
		return openai.NewClient(key, openai.BaseDeepSeek, openai.ModelDeepSeek), nil

	case llm.ProviderOpenRouter:
		key := pick(overrideKey(override, func(o *llm.ProviderConfig) string { return o.OpenRouterKey }), g.creds.OpenRouterKey)
		if key == "" {
			return nil, llm.ErrMissingCredentials
		}
		return openai.NewClient(key, openai.BaseOpenRouter, openai.ModelOpenRouter), nil

	case llm.ProviderCloudflare:
		token, account, model := g.creds.CloudflareToken, g.creds.CloudflareAccountID, g.creds.CloudflareModel
		if override != nil && override.Cloudflare != nil {
			token = pick(override.Cloudflare.Token, token)
			account = pick(override.Cloudflare.AccountID, account)
			model = pick(override.Cloudflare.Model, model)
		}
		if token == "" || account == "" {
			return nil, llm.ErrMissingCredentials
		}
		return cloudflare.NewClient(token, account, model), nil
	}
	return nil, llm.ErrUnsupportedProvider
}

// AnalyzeChat implements llm.Analyzer for chat transcripts.
func (g *Gateway) AnalyzeChat(ctx context.Context, override *llm.ProviderConfig, transcript string, floor int, signals analysis.ChatSignals) (*analysis.ChatPartial, error) {
	raw, provider, err := g.call(ctx, override, prompt.Chat(transcript, floor, signals))
	if err != nil || raw == "" {
		return nil, err
	}
	partial, err := analysis.ParseChatPartial(raw)
	if err != nil {
		metrics.RecordLLMCall(string(provider), "parse_error")
		return nil, err
	}
	metrics.RecordLLMCall(string(provider), "ok")
	return partial, nil
}

// AnalyzeRepo implements llm.Analyzer for repository archives.
func (g *Gateway) AnalyzeRepo(ctx context.Context, override *llm.ProviderConfig, signals analysis.RepoSignals, score int) (*analysis.RepoPartial, error) {
	raw, provider, err := g.call(ctx, override, prompt.Repo(signals, score))
	if err != nil || raw == "" {
		return nil, err
	}
	partial, err := analysis.ParseRepoPartial(raw)
	if err != nil {
		metrics.RecordLLMCall(string(provider), "parse_error")
		return nil, err
	}
	metrics.RecordLLMCall(string(provider), "ok")
	return partial, nil
}

// call performs the single bounded LLM round-trip. No retries.
func (g *Gateway) call(ctx context.Context, override *llm.ProviderConfig, userPrompt string) (string, llm.Provider, error) {
	client, provider, err := g.Resolve(override)
	if err != nil {
		metrics.RecordLLMCall(string(provider), "resolve_error")
		return "", provider, err
	}
	if client == nil {
		return "", provider, nil
	}

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	start := time.Now()
	raw, err := client.Chat(ctx, []llm.Message{{Role: llm.RoleUser, Content: userPrompt}}, true)
	if err != nil {
		metrics.RecordLLMCall(string(provider), "transport_error")
		return "", provider, err
	}
	g.logger.Debug("llm call completed",
		zap.String("provider", string(provider)),
		zap.Duration("elapsed", time.Since(start)))
	return raw, provider, nil
}

func overrideKey(o *llm.ProviderConfig, get func(*llm.ProviderConfig) string) string {
	if o == nil {
		return ""
	}
	return get(o)
}

func pick(first, second string) string {
	if first != "" {
		return first
	}
	return second
}
