package analysis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/dvillegas/scam-radar/internal/application"
	domain "github.com/dvillegas/scam-radar/internal/domain/analysis"
	"github.com/dvillegas/scam-radar/internal/domain/analyst"
	"github.com/dvillegas/scam-radar/internal/domain/llm"
	"github.com/dvillegas/scam-radar/internal/domain/ocr"
	"github.com/dvillegas/scam-radar/internal/metrics"
)

const minTextLen = 10

var (
	// ErrTextTooShort rejects transcripts below the minimum length.
	ErrTextTooShort = errors.New("text too short")

	// ErrOCRUnavailable is returned when screenshots are submitted but no
	// recognizer is configured.
	ErrOCRUnavailable = errors.New("ocr not configured")
)

// ArtifactStore is the optional object-storage port for archiving submitted
// zips and merged verdicts.
type ArtifactStore interface {
	PutBytes(ctx context.Context, key string, data []byte, contentType string) (string, error)
}

// Service implements the chat and repo analysis use cases. It is stateless
// between requests and safe for concurrent use. Analyzer, History, Artifacts
// and Recognizer are optional; a nil Analyzer means heuristic-only operation.
type Service struct {
	Analyzer   llm.Analyzer
	Recognizer ocr.Recognizer
	History    analyst.Repository
	Artifacts  ArtifactStore
	Clock      application.Clock
	Logger     *zap.Logger
}

// ChatCommand is one chat analysis request.
type ChatCommand struct {
	Text        string
	Screenshots [][]byte
	UseLLM      bool
	Provider    *llm.ProviderConfig
}

// RepoCommand is one repository archive analysis request.
type RepoCommand struct {
	Archive  []byte
	UseLLM   bool
	Provider *llm.ProviderConfig
}

// AnalyzeChat runs the chat pipeline: OCR concatenation, signal extraction,
// heuristic scoring, optional LLM enrichment and merge. The LLM is strictly
// best-effort; any failure at that boundary degrades to the deterministic
// result and is never surfaced to the caller.
func (s *Service) AnalyzeChat(ctx context.Context, cmd ChatCommand) (domain.ChatResult, error) {
	text := cmd.Text
	if len(cmd.Screenshots) > 0 {
		transcribed, err := s.transcribe(ctx, cmd.Screenshots)
		if err != nil {
			return domain.ChatResult{}, err
		}
		text = strings.TrimSpace(text + "\n" + transcribed)
	}
	if len(strings.TrimSpace(text)) < minTextLen {
		return domain.ChatResult{}, ErrTextTooShort
	}

	base := domain.HeuristicAnalyzeChat(text)
	signals := domain.ExtractChatSignals(text)
	floor := domain.HeuristicFloor(base.RiskScore, signals.PreFlags)

	var partial *domain.ChatPartial
	if cmd.UseLLM && s.Analyzer != nil {
		p, err := s.Analyzer.AnalyzeChat(ctx, cmd.Provider, text, floor, signals)
		if err != nil {
			s.logger().Warn("llm chat analysis failed, using heuristic result",
				zap.Error(err))
		} else {
			partial = p
		}
	}

	merged := domain.MergeChat(base, partial)
	metrics.RecordAnalysis("chat", merged.RiskScore)
	s.record(ctx, analyst.KindChat, merged.RiskScore, merged.Flags, cmd.Provider, merged)
	return merged, nil
}

// AnalyzeRepo runs the archive pipeline. The only hard failure is an
// unreadable archive; everything past the scan degrades gracefully.
func (s *Service) AnalyzeRepo(ctx context.Context, cmd RepoCommand) (domain.RepoResult, error) {
	rep, err := domain.ScanArchive(cmd.Archive)
	if err != nil {
		return domain.RepoResult{}, err
	}
	base := domain.BaseRepoResult(rep)

	var partial *domain.RepoPartial
	if cmd.UseLLM && s.Analyzer != nil {
		p, err := s.Analyzer.AnalyzeRepo(ctx, cmd.Provider, rep.Signals, rep.Score)
		if err != nil {
			s.logger().Warn("llm repo analysis failed, using heuristic result",
				zap.Error(err))
		} else {
			partial = p
		}
	}

	merged := domain.MergeRepo(base, partial)
	metrics.RecordAnalysis("repo", merged.RiskScore)

	id := s.record(ctx, analyst.KindRepo, merged.RiskScore, merged.Flags, cmd.Provider, merged)
	s.archive(ctx, id, cmd.Archive)
	return merged, nil
}

// transcribe runs OCR over every screenshot concurrently and concatenates
// the texts in input order, not completion order.
func (s *Service) transcribe(ctx context.Context, images [][]byte) (string, error) {
	if s.Recognizer == nil {
		return "", ErrOCRUnavailable
	}

	texts := make([]string, len(images))
	errs := make([]error, len(images))
	var wg sync.WaitGroup
	for i, img := range images {
		wg.Add(1)
		go func(i int, img []byte) {
			defer wg.Done()
			texts[i], errs[i] = s.Recognizer.Recognize(ctx, img)
		}(i, img)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return "", fmt.Errorf("ocr failed: %w", err)
		}
	}
	return strings.Join(texts, "\n"), nil
}

// record persists the merged verdict when a history repository is wired.
// Persistence failures are logged, never propagated.
func (s *Service) record(ctx context.Context, kind analyst.Kind, score int, flags []string, provider *llm.ProviderConfig, result any) string {
	id := uuid.New().String()
	if s.History == nil {
		return id
	}
	raw, err := json.Marshal(result)
	if err != nil {
		return id
	}
	providerName := ""
	if provider != nil {
		providerName = string(provider.Provider)
	}
	rec := &analyst.Analysis{
		ID:        analyst.AnalysisID(id),
		Kind:      kind,
		RiskScore: score,
		Flags:     flags,
		Provider:  providerName,
		Result:    string(raw),
		CreatedAt: s.now(),
	}
	if err := s.History.Save(ctx, rec); err != nil {
		s.logger().Warn("failed to save analysis record", zap.Error(err))
	}
	return id
}

// archive uploads the submitted zip for audit when object storage is wired.
func (s *Service) archive(ctx context.Context, id string, zipBytes []byte) {
	if s.Artifacts == nil {
		return
	}
	key := fmt.Sprintf("archives/%s.zip", id)
	if _, err := s.Artifacts.PutBytes(ctx, key, zipBytes, "application/zip"); err != nil {
		s.logger().Warn("failed to archive submitted zip", zap.Error(err))
	}
}

// History listing use case.
func (s *Service) ListAnalyses(ctx context.Context, page, pageSize int) ([]*analyst.Analysis, error) {
	if s.History == nil {
		return []*analyst.Analysis{}, nil
	}
	return s.History.Paginate(ctx, page, pageSize)
}

func (s *Service) now() time.Time {
	if s.Clock != nil {
		return s.Clock.Now()
	}
	return time.Now()
}

func (s *Service) logger() *zap.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return zap.NewNop()
}
