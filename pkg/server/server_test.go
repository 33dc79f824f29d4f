package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"daybook-hq/daybook/pkg/auth"
	"daybook-hq/daybook/pkg/config"
	"daybook-hq/daybook/pkg/limits/admission"
	"daybook-hq/daybook/pkg/limits/ratelimit"
	"daybook-hq/daybook/pkg/period"
	"daybook-hq/daybook/pkg/providers"
	"daybook-hq/daybook/pkg/reflection"
	"daybook-hq/daybook/pkg/store"
	"daybook-hq/daybook/pkg/telemetry/logging"
)

const testReflectionJSON = `{"summary":"A fine week.","highlights":["one"],"mood":{"avg_valence":0.2,"top_labels":["steady"]}}`

type stubProvider struct {
	content string
	err     error
}

func (p *stubProvider) SendCompletion(_ context.Context, req *providers.CompletionRequest) (*providers.CompletionResponse, error) {
	if p.err != nil {
		return nil, p.err
	}
	return &providers.CompletionResponse{Content: p.content, Model: req.Model}, nil
}

func (p *stubProvider) GetName() string { return "stub" }
func (p *stubProvider) Close() error    { return nil }

type testServer struct {
	handler http.Handler
	store   *store.MemoryStore
	token   string
}

func newTestServer(t *testing.T, provider providers.Provider) *testServer {
	t.Helper()

	cfg := &config.Config{}
	config.ApplyDefaults(cfg)
	cfg.Provider.APIKey = "sk-test"
	cfg.Auth.Secret = "test-secret"

	logger, err := logging.New(logging.Config{Level: "error", Format: "json", Writer: io.Discard})
	if err != nil {
		t.Fatalf("logging.New: %v", err)
	}

	st := store.NewMemoryStore()
	counter := ratelimit.NewCounter()
	gate, err := admission.NewGate(counter, cfg.Limits.AdmissionRules())
	if err != nil {
		t.Fatalf("NewGate: %v", err)
	}
	authn, err := auth.NewTokenAuthenticator(auth.Config{Secret: cfg.Auth.Secret})
	if err != nil {
		t.Fatalf("NewTokenAuthenticator: %v", err)
	}
	coordinator := reflection.NewCoordinator(st, provider, reflection.Config{}, logger, nil)

	srv := NewServer(cfg, Deps{
		Store:       st,
		Coordinator: coordinator,
		Gate:        gate,
		Auth:        authn,
		Logger:      logger,
	})

	token, err := authn.Issue("u1")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	return &testServer{handler: srv.Handler(), store: st, token: token}
}

func (ts *testServer) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.RemoteAddr = "10.0.0.1:50000"
	req.Header.Set("Authorization", "Bearer "+ts.token)
	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("response is not JSON: %v\n%s", err, rec.Body.String())
	}
	return body
}

func TestCreateEntry(t *testing.T) {
	ts := newTestServer(t, &stubProvider{content: testReflectionJSON})

	rec := ts.do(t, http.MethodPost, "/api/entries", `{"content":"today I wrote Go"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", rec.Code, rec.Body.String())
	}
	body := decodeBody(t, rec)
	if body["content"] != "today I wrote Go" {
		t.Errorf("content = %v", body["content"])
	}
	if body["day"] != period.DayKey(time.Now().UTC()) {
		t.Errorf("day = %v", body["day"])
	}

	// Second entry the same day hits the daily limit.
	rec = ts.do(t, http.MethodPost, "/api/entries", `{"content":"again"}`)
	if rec.Code != http.StatusConflict {
		t.Fatalf("duplicate status = %d, want 409", rec.Code)
	}
	if body := decodeBody(t, rec); body["error"] != "daily_limit" {
		t.Errorf("error = %v, want daily_limit", body["error"])
	}
}

func TestCreateEntry_Validation(t *testing.T) {
	ts := newTestServer(t, &stubProvider{content: testReflectionJSON})

	tests := []struct {
		name string
		body string
	}{
		{"empty content", `{"content":""}`},
		{"not json", `not json`},
		{"oversized", `{"content":"` + strings.Repeat("x", maxEntryBytes+1) + `"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := ts.do(t, http.MethodPost, "/api/entries", tt.body)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", rec.Code)
			}
		})
	}
}

func TestListEntries(t *testing.T) {
	ts := newTestServer(t, &stubProvider{content: testReflectionJSON})

	rec := ts.do(t, http.MethodPost, "/api/entries", `{"content":"hello"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d", rec.Code)
	}

	rec = ts.do(t, http.MethodGet, "/api/entries", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("list status = %d", rec.Code)
	}
	body := decodeBody(t, rec)
	entries, ok := body["entries"].([]any)
	if !ok || len(entries) != 1 {
		t.Fatalf("entries = %v, want 1", body["entries"])
	}

	rec = ts.do(t, http.MethodGet, "/api/entries?from=bogus", "")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("bad from status = %d, want 400", rec.Code)
	}
}

func TestWeekly_OutcomeMapping(t *testing.T) {
	t.Run("no data", func(t *testing.T) {
		ts := newTestServer(t, &stubProvider{content: testReflectionJSON})
		rec := ts.do(t, http.MethodPost, "/api/weekly", "")
		if rec.Code != http.StatusConflict {
			t.Fatalf("status = %d, want 409", rec.Code)
		}
		if body := decodeBody(t, rec); body["error"] != "no_data" {
			t.Errorf("error = %v, want no_data", body["error"])
		}
	})

	t.Run("executed then cached", func(t *testing.T) {
		ts := newTestServer(t, &stubProvider{content: testReflectionJSON})
		if rec := ts.do(t, http.MethodPost, "/api/entries", `{"content":"an entry"}`); rec.Code != http.StatusCreated {
			t.Fatalf("create status = %d", rec.Code)
		}

		rec := ts.do(t, http.MethodPost, "/api/weekly", "")
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
		}
		body := decodeBody(t, rec)
		if body["status"] != "executed" {
			t.Errorf("status = %v, want executed", body["status"])
		}

		rec = ts.do(t, http.MethodPost, "/api/weekly", "")
		if rec.Code != http.StatusOK {
			t.Fatalf("second status = %d, want 200", rec.Code)
		}
		if body := decodeBody(t, rec); body["status"] != "cached" {
			t.Errorf("second status = %v, want cached", body["status"])
		}
	})

	t.Run("upstream failure", func(t *testing.T) {
		ts := newTestServer(t, &stubProvider{err: &providers.ProviderError{Provider: "stub", StatusCode: 500}})
		if rec := ts.do(t, http.MethodPost, "/api/entries", `{"content":"an entry"}`); rec.Code != http.StatusCreated {
			t.Fatalf("create status = %d", rec.Code)
		}

		rec := ts.do(t, http.MethodPost, "/api/weekly", "")
		if rec.Code != http.StatusBadGateway {
			t.Fatalf("status = %d, want 502", rec.Code)
		}
	})
}

func TestWeekly_AdmissionLimit(t *testing.T) {
	// The weekly route carries a 2-per-minute quota; the third trigger is
	// rejected by the gate before reaching the coordinator.
	ts := newTestServer(t, &stubProvider{content: testReflectionJSON})

	for i := 0; i < 2; i++ {
		rec := ts.do(t, http.MethodPost, "/api/weekly", "")
		if rec.Code == http.StatusTooManyRequests {
			t.Fatalf("request %d rate limited early", i+1)
		}
	}

	rec := ts.do(t, http.MethodPost, "/api/weekly", "")
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429", rec.Code)
	}
	if rec.Header().Get("Retry-After") == "" {
		t.Error("Retry-After missing on gate rejection")
	}
	if body := decodeBody(t, rec); body["error"] != "rate_limited" {
		t.Errorf("error = %v, want rate_limited", body["error"])
	}
}

func TestListReflections(t *testing.T) {
	ts := newTestServer(t, &stubProvider{content: testReflectionJSON})

	now := time.Now().UTC()
	err := ts.store.InsertReflection(context.Background(), &store.Reflection{
		ID:        "r1",
		UserID:    "u1",
		WeekStart: period.WeekKey(now),
		Summary:   "stored summary",
	})
	if err != nil {
		t.Fatalf("seed reflection: %v", err)
	}

	rec := ts.do(t, http.MethodGet, "/api/reflections", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	body := decodeBody(t, rec)
	reflections, ok := body["reflections"].([]any)
	if !ok || len(reflections) != 1 {
		t.Fatalf("reflections = %v, want 1", body["reflections"])
	}
}

func TestAuthRequired(t *testing.T) {
	ts := newTestServer(t, &stubProvider{content: testReflectionJSON})

	req := httptest.NewRequest(http.MethodGet, "/api/entries", nil)
	req.RemoteAddr = "10.0.0.1:50000"
	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestProbes(t *testing.T) {
	ts := newTestServer(t, &stubProvider{content: testReflectionJSON})

	// Probes need no token.
	for _, path := range []string{"/healthz", "/readyz"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		req.RemoteAddr = "10.0.0.1:50000"
		rec := httptest.NewRecorder()
		ts.handler.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Errorf("%s status = %d, want 200", path, rec.Code)
		}
	}
}
