package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/atvirokodosprendimai/validate-json-schema/internal/adapters/filecache"
	"github.com/atvirokodosprendimai/validate-json-schema/internal/core/domain"
	"github.com/atvirokodosprendimai/validate-json-schema/internal/core/usecase"
)

const personSchema = `{"type":"object","properties":{"name":{"type":"string"}},"required":["name"]}`

type stubRuns struct {
	runs []domain.ValidationRun
}

func (s *stubRuns) Log(_ context.Context, run domain.ValidationRun) error {
	s.runs = append(s.runs, run)
	return nil
}

func (s *stubRuns) List(_ context.Context, filter domain.RunFilter) ([]domain.ValidationRun, error) {
	var out []domain.ValidationRun
	for i := len(s.runs) - 1; i >= 0 && len(out) < filter.Limit; i-- {
		if filter.OnlyFailed && s.runs[i].Valid {
			continue
		}
		out = append(out, s.runs[i])
	}
	return out, nil
}

type stubIndex struct {
	entries []domain.CacheEntry
}

func (s *stubIndex) Record(_ context.Context, entry domain.CacheEntry) error {
	s.entries = append(s.entries, entry)
	return nil
}

func (s *stubIndex) List(context.Context) ([]domain.CacheEntry, error) {
	return s.entries, nil
}

func (s *stubIndex) Clear(context.Context) (int64, error) {
	n := int64(len(s.entries))
	s.entries = nil
	return n, nil
}

type testEnv struct {
	router http.Handler
	store  *filecache.Store
	index  *stubIndex
	runs   *stubRuns
}

func newTestEnv(t *testing.T) testEnv {
	t.Helper()
	store := filecache.New(t.TempDir())
	index := &stubIndex{}
	runs := &stubRuns{}
	fetcher := usecase.NewSchemaFetcher(store, usecase.WithCacheIndex(index))
	factory := usecase.NewValidatorFactory(fetcher)
	h := NewHandler(
		usecase.NewValidationService(factory, usecase.WithRunRepository(runs)),
		usecase.NewCacheService(store, index),
	)
	return testEnv{router: h.Router(), store: store, index: index, runs: runs}
}

func serve(h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
}

func TestHealthz(t *testing.T) {
	env := newTestEnv(t)
	rec := serve(env.router, http.MethodGet, "/healthz", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestValidateInlineSchema(t *testing.T) {
	env := newTestEnv(t)
	body := `{"schema":` + personSchema + `,"document":"name: Alice"}`

	rec := serve(env.router, http.MethodPost, "/v1/validate", body)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp validateResponse
	decode(t, rec, &resp)
	if !resp.Valid || resp.Format != "yaml" || resp.FormatOrigin != "content" || len(resp.Errors) != 0 {
		t.Fatalf("unexpected response: %+v", resp)
	}
	if len(env.runs.runs) != 1 || env.runs.runs[0].ID != resp.RunID {
		t.Fatalf("run not recorded: %+v", env.runs.runs)
	}
}

func TestValidateReportsViolationsWith200(t *testing.T) {
	env := newTestEnv(t)
	body := `{"schema":` + personSchema + `,"document":"{\"name\": 1}","format":"json"}`

	rec := serve(env.router, http.MethodPost, "/v1/validate", body)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var resp validateResponse
	decode(t, rec, &resp)
	if resp.Valid || len(resp.Errors) != 1 || resp.Errors[0].Location != "name" {
		t.Fatalf("unexpected response: %+v", resp)
	}
	if resp.FormatOrigin != "explicit" {
		t.Fatalf("format origin = %q", resp.FormatOrigin)
	}
}

func TestValidateRemoteSchemaIsCached(t *testing.T) {
	env := newTestEnv(t)
	hits := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits++
		_, _ = w.Write([]byte(personSchema))
	}))
	defer srv.Close()

	body := `{"schema_url":"` + srv.URL + `/person.json","document":"name: Alice"}`
	for i := 0; i < 2; i++ {
		rec := serve(env.router, http.MethodPost, "/v1/validate", body)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
	}
	if hits != 1 {
		t.Fatalf("expected one fetch, got %d", hits)
	}

	rec := serve(env.router, http.MethodGet, "/v1/cache", "")
	var listing struct {
		Dir   string               `json:"dir"`
		Items []cacheEntryResponse `json:"items"`
	}
	decode(t, rec, &listing)
	if listing.Dir != env.store.Dir() || len(listing.Items) != 1 || !listing.Items[0].Present {
		t.Fatalf("unexpected cache listing: %+v", listing)
	}

	rec = serve(env.router, http.MethodDelete, "/v1/cache", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if len(env.index.entries) != 0 {
		t.Fatalf("index not cleared")
	}
}

func TestValidateRejectsBadRequests(t *testing.T) {
	env := newTestEnv(t)
	tests := []struct {
		name string
		body string
	}{
		{name: "unknown field", body: `{"schema":{},"document":"a: 1","extra":1}`},
		{name: "trailing json", body: `{"schema":{},"document":"a: 1"} {}`},
		{name: "no schema", body: `{"document":"a: 1"}`},
		{name: "both schemas", body: `{"schema":{},"schema_url":"https://example.com/s.json","document":"a: 1"}`},
		{name: "local path", body: `{"schema_url":"/etc/schema.json","document":"a: 1"}`},
		{name: "bad format", body: `{"schema":{},"document":"a: 1","format":"toml"}`},
		{name: "malformed document", body: `{"schema":{},"document":"{\"a\": ","format":"json"}`},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec := serve(env.router, http.MethodPost, "/v1/validate", tc.body)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
			}
		})
	}
}

func TestValidateInvalidSchemaReturns422(t *testing.T) {
	env := newTestEnv(t)
	rec := serve(env.router, http.MethodPost, "/v1/validate", `{"schema":{"type":123},"document":"a: 1"}`)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", rec.Code)
	}
	var body map[string]string
	decode(t, rec, &body)
	if body["kind"] != string(domain.KindSchemaCompilation) {
		t.Fatalf("unexpected body: %v", body)
	}
}

func TestValidateUpstreamFailureReturns502(t *testing.T) {
	env := newTestEnv(t)
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	rec := serve(env.router, http.MethodPost, "/v1/validate", `{"schema_url":"`+srv.URL+`","document":"a: 1"}`)
	if rec.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", rec.Code)
	}
}

func TestListRuns(t *testing.T) {
	env := newTestEnv(t)
	env.runs.runs = []domain.ValidationRun{
		{ID: "a", Valid: true, CreatedAt: time.Now()},
		{ID: "b", Valid: false, ErrorKind: domain.KindValidationFailed, CreatedAt: time.Now()},
	}

	rec := serve(env.router, http.MethodGet, "/v1/runs?failed=true", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var listing struct {
		Items []runResponse `json:"items"`
	}
	decode(t, rec, &listing)
	if len(listing.Items) != 1 || listing.Items[0].ID != "b" {
		t.Fatalf("unexpected runs: %+v", listing.Items)
	}

	rec = serve(env.router, http.MethodGet, "/v1/runs?limit=bad", "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestCacheAndRunsWithoutStateDB(t *testing.T) {
	store := filecache.New(t.TempDir())
	factory := usecase.NewValidatorFactory(usecase.NewSchemaFetcher(store))
	h := NewHandler(usecase.NewValidationService(factory), usecase.NewCacheService(store, nil)).Router()

	for _, target := range []string{"/v1/cache", "/v1/runs"} {
		rec := serve(h, http.MethodGet, target, "")
		if rec.Code != http.StatusNotImplemented {
			t.Fatalf("%s: expected 501, got %d", target, rec.Code)
		}
	}
	if rec := serve(h, http.MethodDelete, "/v1/cache", ""); rec.Code != http.StatusOK {
		t.Fatalf("clearing files alone should succeed, got %d", rec.Code)
	}
}
