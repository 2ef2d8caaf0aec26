package httpserver

import (
	"archive/zip"
	"bytes"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/dvillegas/scam-radar/internal/application"
	appanalysis "github.com/dvillegas/scam-radar/internal/application/analysis"
)

func testRouter(t *testing.T) http.Handler {
	t.Helper()
	analysisSvc := &appanalysis.Service{Clock: application.SystemClock{}}
	return NewRouter(analysisSvc, nil, Options{})
}

func postJSON(t *testing.T, h http.Handler, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(body)
	if err != nil {
		t.Fatal(err)
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestAnalyseChatShortTextRejected(t *testing.T) {
	rec := postJSON(t, testRouter(t), "/v1/analyse/chat", map[string]any{"text": "hey"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	var envelope map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatal(err)
	}
	if envelope["error"] == "" {
		t.Fatalf("body = %s, want error envelope", rec.Body.String())
	}
}

func TestAnalyseChatHeuristicVerdict(t *testing.T) {
	rec := postJSON(t, testRouter(t), "/v1/analyse/chat", map[string]any{
		"text": "clone the repo and run npm install asap, seed phrase needed",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d body = %s", rec.Code, rec.Body.String())
	}

	var result struct {
		RiskScore int      `json:"riskScore"`
		Flags     []string `json:"flags"`
		Summary   string   `json:"summary"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatal(err)
	}
	if result.RiskScore < 1 || result.RiskScore > 100 {
		t.Fatalf("riskScore = %d", result.RiskScore)
	}
	if len(result.Flags) == 0 || result.Summary == "" {
		t.Fatalf("incomplete verdict: %+v", result)
	}
}

func TestAnalyseChatInvalidScreenshotBase64(t *testing.T) {
	rec := postJSON(t, testRouter(t), "/v1/analyse/chat", map[string]any{
		"text":              "long enough transcript text",
		"screenshotsBase64": []string{"%%% not base64 %%%"},
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestAnalyseChatUnknownProviderRejected(t *testing.T) {
	rec := postJSON(t, testRouter(t), "/v1/analyse/chat", map[string]any{
		"text":           "long enough transcript text",
		"useLlm":         true,
		"providerConfig": map[string]string{"provider": "bard"},
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestAnalyseRepoInvalidBase64(t *testing.T) {
	rec := postJSON(t, testRouter(t), "/v1/analyse/repo", map[string]any{
		"zipBase64": "!!definitely not base64!!",
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestAnalyseRepoNotAZip(t *testing.T) {
	rec := postJSON(t, testRouter(t), "/v1/analyse/repo", map[string]any{
		"zipBase64": base64.StdEncoding.EncodeToString([]byte("plain text, not a zip")),
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d body = %s", rec.Code, rec.Body.String())
	}
}

func TestAnalyseRepoVerdict(t *testing.T) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, _ := zw.Create("index.js")
	w.Write([]byte("eval(payload); const cp = require('child_process');"))
	zw.Close()

	rec := postJSON(t, testRouter(t), "/v1/analyse/repo", map[string]any{
		"zipBase64": base64.StdEncoding.EncodeToString(buf.Bytes()),
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d body = %s", rec.Code, rec.Body.String())
	}

	var result struct {
		RiskScore int      `json:"riskScore"`
		Flags     []string `json:"flags"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatal(err)
	}
	if result.RiskScore < 40 {
		t.Fatalf("riskScore = %d for eval+child_process archive", result.RiskScore)
	}
	if !strings.Contains(rec.Body.String(), "eval_usage") {
		t.Fatalf("flags = %v", result.Flags)
	}
}

func TestReportsDisabledWithoutRepository(t *testing.T) {
	rec := postJSON(t, testRouter(t), "/v1/reports", map[string]any{
		"type":   "repo",
		"url":    "https://github.com/x/y",
		"reason": "malicious postinstall",
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestListAnalysesEmpty(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/v1/analyses", nil)
	rec := httptest.NewRecorder()
	testRouter(t).ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if strings.TrimSpace(rec.Body.String()) != "[]" {
		t.Fatalf("body = %q, want empty array", rec.Body.String())
	}
}

func TestHealthDefault(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	testRouter(t).ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
}
