package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"strconv"

	"github.com/atvirokodosprendimai/validate-json-schema/internal/core/domain"
	"github.com/atvirokodosprendimai/validate-json-schema/internal/core/usecase"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

const (
	timeFormat      = "2006-01-02T15:04:05.999999999Z07:00"
	maxJSONBodySize = 8 << 20
)

type Handler struct {
	validation *usecase.ValidationService
	cache      *usecase.CacheService
}

func NewHandler(validation *usecase.ValidationService, cache *usecase.CacheService) *Handler {
	return &Handler{validation: validation, cache: cache}
}

func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/healthz", h.healthz)
	r.Get("/openapi.json", h.openapi)

	r.Post("/v1/validate", h.validate)
	r.Get("/v1/cache", h.listCache)
	r.Delete("/v1/cache", h.clearCache)
	r.Get("/v1/runs", h.listRuns)

	return r
}

// validateRequest carries either an inline schema or a schema URL. Local
// schema paths are deliberately not accepted over HTTP.
type validateRequest struct {
	Schema    json.RawMessage `json:"schema"`
	SchemaURL string          `json:"schema_url"`
	Document  string          `json:"document"`
	Format    string          `json:"format"`
}

type validateResponse struct {
	RunID        string             `json:"run_id"`
	Valid        bool               `json:"valid"`
	SchemaSource string             `json:"schema_source"`
	Format       string             `json:"format"`
	FormatOrigin string             `json:"format_origin"`
	Message      string             `json:"message,omitempty"`
	Errors       []domain.Violation `json:"errors"`
}

type cacheEntryResponse struct {
	Key       string `json:"key"`
	URL       string `json:"url"`
	SizeBytes int64  `json:"size_bytes"`
	FetchedAt string `json:"fetched_at"`
	Present   bool   `json:"present"`
}

type runResponse struct {
	ID           string `json:"id"`
	DocumentPath string `json:"document_path,omitempty"`
	SchemaInput  string `json:"schema_input"`
	SchemaSource string `json:"schema_source"`
	Format       string `json:"format"`
	FormatOrigin string `json:"format_origin"`
	Valid        bool   `json:"valid"`
	ErrorKind    string `json:"error_kind,omitempty"`
	ErrorCount   int    `json:"error_count"`
	Message      string `json:"message,omitempty"`
	CreatedAt    string `json:"created_at"`
}

func (h *Handler) validate(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBodySize)

	var req validateRequest
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}
	if err := ensureEOF(decoder); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}

	hasSchema := len(req.Schema) > 0 && string(req.Schema) != "null"
	if hasSchema == (req.SchemaURL != "") {
		writeError(w, http.StatusBadRequest, "exactly one of schema and schema_url is required")
		return
	}
	if req.SchemaURL != "" && !domain.IsURL(req.SchemaURL) {
		writeError(w, http.StatusBadRequest, "schema_url must start with http:// or https://")
		return
	}
	format, ok := domain.ParseFormat(req.Format)
	if !ok {
		writeError(w, http.StatusBadRequest, "format must be json, yaml or auto")
		return
	}

	report, err := h.validation.ValidateContent(r.Context(), usecase.ContentRequest{
		SchemaURL:  req.SchemaURL,
		SchemaText: string(req.Schema),
		Document:   req.Document,
		Format:     format,
	})
	var failed *domain.ValidationFailedError
	if err != nil && !errors.As(err, &failed) {
		handleDomainError(w, err)
		return
	}

	resp := validateResponse{
		RunID:        report.RunID,
		Valid:        report.Result.Valid(),
		SchemaSource: string(report.SchemaSource),
		Format:       string(report.Format),
		FormatOrigin: string(report.FormatOrigin),
		Message:      report.Result.Message(),
		Errors:       report.Result.Violations,
	}
	if resp.Errors == nil {
		resp.Errors = []domain.Violation{}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) listCache(w http.ResponseWriter, r *http.Request) {
	entries, err := h.cache.List(r.Context())
	if err != nil {
		handleDomainError(w, err)
		return
	}

	result := make([]cacheEntryResponse, 0, len(entries))
	for _, e := range entries {
		result = append(result, cacheEntryResponse{
			Key:       string(e.Key),
			URL:       e.URL,
			SizeBytes: e.SizeBytes,
			FetchedAt: e.FetchedAt.UTC().Format(timeFormat),
			Present:   e.Present,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"dir": h.cache.Dir(), "items": result})
}

func (h *Handler) clearCache(w http.ResponseWriter, r *http.Request) {
	if err := h.cache.Clear(r.Context()); err != nil {
		handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"cleared": true})
}

func (h *Handler) listRuns(w http.ResponseWriter, r *http.Request) {
	limit, ok := parseLimit(w, r)
	if !ok {
		return
	}

	runs, err := h.validation.History(r.Context(), domain.RunFilter{
		Limit:      limit,
		OnlyFailed: r.URL.Query().Get("failed") == "true",
	})
	if err != nil {
		handleDomainError(w, err)
		return
	}

	result := make([]runResponse, 0, len(runs))
	for _, run := range runs {
		result = append(result, toRunResponse(run))
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": result})
}

func (h *Handler) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (h *Handler) openapi(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, openapiSpec())
}

func toRunResponse(run domain.ValidationRun) runResponse {
	return runResponse{
		ID:           run.ID,
		DocumentPath: run.DocumentPath,
		SchemaInput:  run.SchemaInput,
		SchemaSource: string(run.SchemaSource),
		Format:       string(run.Format),
		FormatOrigin: string(run.FormatOrigin),
		Valid:        run.Valid,
		ErrorKind:    string(run.ErrorKind),
		ErrorCount:   run.ErrorCount,
		Message:      run.Message,
		CreatedAt:    run.CreatedAt.UTC().Format(timeFormat),
	}
}

func parseLimit(w http.ResponseWriter, r *http.Request) (int, bool) {
	limit := 20
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "limit must be integer")
			return 0, false
		}
		limit = parsed
	}
	return limit, true
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	data, err := json.Marshal(body)
	if err != nil {
		log.Printf("encode json response: %v", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(append(data, '\n')); err != nil {
		log.Printf("write response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{"error": message})
}

func handleDomainError(w http.ResponseWriter, err error) {
	if errors.Is(err, usecase.ErrCacheIndexDisabled) || errors.Is(err, usecase.ErrHistoryDisabled) {
		writeError(w, http.StatusNotImplemented, err.Error())
		return
	}

	kind, ok := domain.KindOf(err)
	if !ok {
		log.Printf("unhandled error: %v", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	status := http.StatusInternalServerError
	switch kind {
	case domain.KindJSONParse, domain.KindYAMLParse, domain.KindInvalidURL:
		status = http.StatusBadRequest
	case domain.KindSchemaCompilation:
		status = http.StatusUnprocessableEntity
	case domain.KindHTTPRequest:
		status = http.StatusBadGateway
	case domain.KindFileRead, domain.KindCacheDirectory:
		log.Printf("%s: %v", kind, err)
	}
	writeJSON(w, status, map[string]any{"error": err.Error(), "kind": kind})
}

func ensureEOF(decoder *json.Decoder) error {
	var extra json.RawMessage
	if err := decoder.Decode(&extra); err != nil {
		if err == io.EOF {
			return nil
		}
		return err
	}
	return errors.New("extra json tokens")
}

func openapiSpec() map[string]any {
	return map[string]any{
		"openapi": "3.0.3",
		"info": map[string]any{
			"title":   "validate-json-schema",
			"version": "0.1.0",
		},
		"paths": map[string]any{
			"/v1/validate": map[string]any{
				"post": map[string]any{"summary": "Validate a JSON or YAML document against an inline schema or a schema URL"},
			},
			"/v1/cache": map[string]any{
				"get":    map[string]any{"summary": "List cached remote schemas"},
				"delete": map[string]any{"summary": "Clear the schema cache"},
			},
			"/v1/runs": map[string]any{
				"get": map[string]any{"summary": "List recent validation runs"},
			},
		},
	}
}
