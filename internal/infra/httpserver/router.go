package httpserver

import (
	"database/sql"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	appanalysis "github.com/dvillegas/scam-radar/internal/application/analysis"
	appreports "github.com/dvillegas/scam-radar/internal/application/reports"
	domain "github.com/dvillegas/scam-radar/internal/domain/analysis"
	"github.com/dvillegas/scam-radar/internal/domain/llm"
	"github.com/dvillegas/scam-radar/internal/middleware"
)

type Router struct {
	analysisSvc *appanalysis.Service
	reportsSvc  *appreports.Service
}

// Options carries the optional handlers and middleware the router mounts
// alongside the core API.
type Options struct {
	Health  http.HandlerFunc
	Metrics http.Handler
	Use     []func(http.Handler) http.Handler
}

func NewRouter(analysisSvc *appanalysis.Service, reportsSvc *appreports.Service, opts Options) http.Handler {
	r := &Router{analysisSvc: analysisSvc, reportsSvc: reportsSvc}
	mux := chi.NewRouter()

	mux.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	}))
	for _, m := range opts.Use {
		mux.Use(m)
	}

	if opts.Health != nil {
		mux.Get("/health", opts.Health)
	} else {
		mux.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("ok"))
		})
	}
	if opts.Metrics != nil {
		mux.Method(http.MethodGet, "/metrics", opts.Metrics)
	}

	mux.Route("/v1", func(rt chi.Router) {
		rt.Post("/analyse/chat", r.wrap(r.handleAnalyseChat))
		rt.Post("/analyse/repo", r.wrap(r.handleAnalyseRepo))
		rt.Get("/analyses", r.wrap(r.handleListAnalyses))
		rt.Post("/reports", r.wrap(r.handleSubmitReport))
		rt.Get("/reports", r.wrap(r.handleListReports))
		rt.Get("/reports/{id}", r.wrap(r.handleGetReport))
	})

	return mux
}

type handlerFunc func(http.ResponseWriter, *http.Request) error

// badRequest marks handler-level input validation failures.
type badRequest struct{ msg string }

func (e badRequest) Error() string { return e.msg }

func (r *Router) wrap(h handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		if err := h(w, req); err != nil {
			var br badRequest
			switch {
			case errors.As(err, &br),
				errors.Is(err, appanalysis.ErrTextTooShort),
				errors.Is(err, appanalysis.ErrOCRUnavailable),
				errors.Is(err, appreports.ErrInvalidReport),
				errors.Is(err, appreports.ErrHoneypot),
				errors.Is(err, domain.ErrInvalidArchive):
				writeError(w, http.StatusBadRequest, err.Error())
			case errors.Is(err, sql.ErrNoRows):
				writeError(w, http.StatusNotFound, "not found")
			default:
				writeError(w, http.StatusInternalServerError, "internal server error")
			}
		}
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

func writeJSON(w http.ResponseWriter, v any) error {
	w.Header().Set("Content-Type", "application/json")
	return json.NewEncoder(w).Encode(v)
}

// POST /v1/analyse/chat
// Body: {"text": "...", "screenshotsBase64": [...], "useLlm": true, "providerConfig": {...}}
func (r *Router) handleAnalyseChat(w http.ResponseWriter, req *http.Request) error {
	var body struct {
		Text              string              `json:"text"`
		ScreenshotsBase64 []string            `json:"screenshotsBase64"`
		UseLLM            bool                `json:"useLlm"`
		ProviderConfig    *llm.ProviderConfig `json:"providerConfig"`
	}
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		return badRequest{"invalid request body"}
	}
	if err := validateProviderConfig(body.ProviderConfig); err != nil {
		return err
	}

	screenshots := make([][]byte, 0, len(body.ScreenshotsBase64))
	for i, s := range body.ScreenshotsBase64 {
		img, err := base64.StdEncoding.DecodeString(s)
		if err != nil {
			return badRequest{fmt.Sprintf("screenshot %d is not valid base64", i)}
		}
		screenshots = append(screenshots, img)
	}

	result, err := r.analysisSvc.AnalyzeChat(req.Context(), appanalysis.ChatCommand{
		Text:        body.Text,
		Screenshots: screenshots,
		UseLLM:      body.UseLLM,
		Provider:    body.ProviderConfig,
	})
	if err != nil {
		return err
	}
	return writeJSON(w, result)
}

// POST /v1/analyse/repo
// Body: {"zipBase64": "...", "useLlm": true, "providerConfig": {...}}
func (r *Router) handleAnalyseRepo(w http.ResponseWriter, req *http.Request) error {
	var body struct {
		ZipBase64      string              `json:"zipBase64"`
		UseLLM         bool                `json:"useLlm"`
		ProviderConfig *llm.ProviderConfig `json:"providerConfig"`
	}
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		return badRequest{"invalid request body"}
	}
	if len(body.ZipBase64) < 10 {
		return badRequest{"zipBase64 is required"}
	}
	if err := validateProviderConfig(body.ProviderConfig); err != nil {
		return err
	}

	archive, err := base64.StdEncoding.DecodeString(body.ZipBase64)
	if err != nil {
		return badRequest{"zipBase64 is not valid base64"}
	}

	result, err := r.analysisSvc.AnalyzeRepo(req.Context(), appanalysis.RepoCommand{
		Archive:  archive,
		UseLLM:   body.UseLLM,
		Provider: body.ProviderConfig,
	})
	if err != nil {
		return err
	}
	return writeJSON(w, result)
}

// GET /v1/analyses?page=&page_size=
func (r *Router) handleListAnalyses(w http.ResponseWriter, req *http.Request) error {
	page, _ := strconv.Atoi(req.URL.Query().Get("page"))
	size, _ := strconv.Atoi(req.URL.Query().Get("page_size"))

	list, err := r.analysisSvc.ListAnalyses(req.Context(), page, middleware.ValidateLimit(size))
	if err != nil {
		return err
	}
	return writeJSON(w, list)
}

// POST /v1/reports
func (r *Router) handleSubmitReport(w http.ResponseWriter, req *http.Request) error {
	if r.reportsSvc == nil {
		return badRequest{"reports are not enabled"}
	}
	var body struct {
		Type      string   `json:"type"`
		URL       string   `json:"url"`
		Title     string   `json:"title"`
		Platform  string   `json:"platform"`
		Reason    string   `json:"reason"`
		Email     string   `json:"email"`
		LinkedIn  string   `json:"linkedin"`
		Name      string   `json:"name"`
		Expertise string   `json:"expertise"`
		RiskScore int      `json:"riskScore"`
		Flags     []string `json:"flags"`
		Website   string   `json:"website"`
	}
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		return badRequest{"invalid request body"}
	}
	if body.URL != "" {
		if err := middleware.ValidateURL(body.URL); err != nil {
			return badRequest{err.Error()}
		}
	}

	id, err := r.reportsSvc.Submit(req.Context(), appreports.SubmitCommand{
		Type:      body.Type,
		URL:       body.URL,
		Title:     middleware.SanitizeString(body.Title),
		Platform:  middleware.SanitizeString(body.Platform),
		Reason:    middleware.SanitizeString(body.Reason),
		Email:     body.Email,
		LinkedIn:  body.LinkedIn,
		Name:      middleware.SanitizeString(body.Name),
		Expertise: middleware.SanitizeString(body.Expertise),
		RiskScore: body.RiskScore,
		Flags:     body.Flags,
		Website:   body.Website,
	})
	if err != nil {
		return err
	}

	w.WriteHeader(http.StatusCreated)
	return writeJSON(w, map[string]string{"id": string(id)})
}

// GET /v1/reports?page=&page_size=
func (r *Router) handleListReports(w http.ResponseWriter, req *http.Request) error {
	if r.reportsSvc == nil {
		return writeJSON(w, []any{})
	}
	page, _ := strconv.Atoi(req.URL.Query().Get("page"))
	size, _ := strconv.Atoi(req.URL.Query().Get("page_size"))

	list, err := r.reportsSvc.List(req.Context(), page, middleware.ValidateLimit(size))
	if err != nil {
		return err
	}
	return writeJSON(w, list)
}

// GET /v1/reports/{id}
func (r *Router) handleGetReport(w http.ResponseWriter, req *http.Request) error {
	if r.reportsSvc == nil {
		return sql.ErrNoRows
	}
	id := chi.URLParam(req, "id")
	if err := middleware.ValidateAnalysisID(id); err != nil {
		return badRequest{err.Error()}
	}

	report, err := r.reportsSvc.Get(req.Context(), id)
	if err != nil {
		return err
	}
	if report == nil {
		return sql.ErrNoRows
	}
	return writeJSON(w, report)
}

func validateProviderConfig(cfg *llm.ProviderConfig) error {
	if cfg == nil {
		return nil
	}
	if err := middleware.ValidateProvider(string(cfg.Provider)); err != nil {
		return badRequest{err.Error()}
	}
	return nil
}
