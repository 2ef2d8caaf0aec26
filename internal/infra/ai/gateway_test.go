package ai

import (
	"context"
	"errors"
	"testing"

	"github.com/dvillegas/scam-radar/internal/domain/analysis"
	"github.com/dvillegas/scam-radar/internal/domain/llm"
)

type stubClient struct {
	reply string
	err   error
}

func (c *stubClient) Chat(ctx context.Context, messages []llm.Message, wantJSON bool) (string, error) {
	return c.reply, c.err
}

func stubbed(g *Gateway, c *stubClient) *Gateway {
	g.dial = func(p llm.Provider, override *llm.ProviderConfig) (llm.Client, error) {
		return c, nil
	}
	return g
}

func TestResolveHeuristicShortCircuits(t *testing.T) {
	g := NewGateway(llm.ProviderHeuristic, Credentials{}, 0, nil)
	client, provider, err := g.Resolve(nil)
	if err != nil {
		t.Fatal(err)
	}
	if client != nil {
		t.Fatal("heuristic provider must not dial a client")
	}
	if provider != llm.ProviderHeuristic {
		t.Fatalf("provider = %s", provider)
	}
}

func TestResolveOverrideBeatsDefault(t *testing.T) {
	g := NewGateway(llm.ProviderHeuristic, Credentials{OpenAIKey: "server-key"}, 0, nil)
	client, provider, err := g.Resolve(&llm.ProviderConfig{Provider: llm.ProviderOpenAI})
	if err != nil {
		t.Fatal(err)
	}
	if client == nil || provider != llm.ProviderOpenAI {
		t.Fatalf("client=%v provider=%s", client, provider)
	}
}

func TestResolveMissingCredentials(t *testing.T) {
	g := NewGateway(llm.ProviderDeepSeek, Credentials{}, 0, nil)
	_, _, err := g.Resolve(nil)
	if !errors.Is(err, llm.ErrMissingCredentials) {
		t.Fatalf("err = %v, want ErrMissingCredentials", err)
	}
}

func TestResolveUnknownProvider(t *testing.T) {
	g := NewGateway(llm.ProviderHeuristic, Credentials{}, 0, nil)
	_, _, err := g.Resolve(&llm.ProviderConfig{Provider: "bard"})
	if !errors.Is(err, llm.ErrUnsupportedProvider) {
		t.Fatalf("err = %v, want ErrUnsupportedProvider", err)
	}
}

func TestResolveBYOKeyTakesPrecedence(t *testing.T) {
	g := NewGateway(llm.ProviderOpenAI, Credentials{}, 0, nil)
	client, _, err := g.Resolve(&llm.ProviderConfig{Provider: llm.ProviderOpenAI, OpenAIKey: "user-key"})
	if err != nil || client == nil {
		t.Fatalf("client=%v err=%v, BYO key should satisfy credentials", client, err)
	}
}

func TestAnalyzeChatHeuristicProviderReturnsNil(t *testing.T) {
	g := NewGateway(llm.ProviderHeuristic, Credentials{}, 0, nil)
	partial, err := g.AnalyzeChat(context.Background(), nil, "some transcript", 25, analysis.ChatSignals{})
	if err != nil {
		t.Fatal(err)
	}
	if partial != nil {
		t.Fatalf("partial = %+v, want nil short-circuit", partial)
	}
}

func TestAnalyzeChatParsesModelOutput(t *testing.T) {
	g := stubbed(NewGateway(llm.ProviderOpenAI, Credentials{OpenAIKey: "k"}, 0, nil), &stubClient{
		reply: `{"riskScore": 85, "flags": ["asks_to_run_code"], "summary": "scam"}`,
	})

	partial, err := g.AnalyzeChat(context.Background(), nil, "transcript", 25, analysis.ChatSignals{})
	if err != nil {
		t.Fatal(err)
	}
	if partial.RiskScore == nil || *partial.RiskScore != 85 {
		t.Fatalf("riskScore = %v", partial.RiskScore)
	}
	if *partial.Summary != "scam" {
		t.Fatalf("summary = %v", partial.Summary)
	}
}

func TestAnalyzeChatSurfacesTransportError(t *testing.T) {
	g := stubbed(NewGateway(llm.ProviderOpenAI, Credentials{OpenAIKey: "k"}, 0, nil), &stubClient{
		err: errors.New("connection reset"),
	})
	if _, err := g.AnalyzeChat(context.Background(), nil, "transcript", 25, analysis.ChatSignals{}); err == nil {
		t.Fatal("expected transport error to surface")
	}
}

func TestAnalyzeRepoSurfacesParseError(t *testing.T) {
	g := stubbed(NewGateway(llm.ProviderOpenAI, Credentials{OpenAIKey: "k"}, 0, nil), &stubClient{
		reply: "the repository looks dangerous",
	})
	_, err := g.AnalyzeRepo(context.Background(), nil, analysis.RepoSignals{}, 40)
	if !errors.Is(err, analysis.ErrMalformedResult) {
		t.Fatalf("err = %v, want ErrMalformedResult", err)
	}
}
