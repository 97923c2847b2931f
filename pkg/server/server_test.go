package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/pario-ai/ipstrategy/pkg/backend"
	"github.com/pario-ai/ipstrategy/pkg/cache/memory"
	"github.com/pario-ai/ipstrategy/pkg/gateway"
	"github.com/pario-ai/ipstrategy/pkg/models"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func setupServer(t *testing.T, b backend.Backend) *Server {
	t.Helper()
	gw := gateway.New(b, memory.New(100, time.Hour), gateway.WithLogger(quietLogger()))
	return New(":0", gw, quietLogger())
}

func post(srv http.Handler, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)
	return w
}

func TestGenerate(t *testing.T) {
	srv := setupServer(t, backend.NewStatic())
	body := `{"name":"Acme","type":"Software","description":"widget maker"}`

	w := post(srv, "/v1/strategies", body)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if w.Header().Get("X-IPStrategy-Cache") != "miss" {
		t.Error("expected cache miss on first request")
	}

	var res models.Result
	if err := json.Unmarshal(w.Body.Bytes(), &res); err != nil {
		t.Fatal(err)
	}
	if len(res.Strategy.Recommendations) != 3 || res.Strategy.Recommendations[0] != "Copyright registration for source code" {
		t.Errorf("unexpected recommendations: %v", res.Strategy.Recommendations)
	}

	w2 := post(srv, "/v1/strategies", body)
	if w2.Header().Get("X-IPStrategy-Cache") != "hit" {
		t.Error("expected cache hit on second request")
	}
}

func TestGenerateValidationError(t *testing.T) {
	srv := setupServer(t, backend.NewStatic())

	for _, body := range []string{
		`{"name":"","type":"Software"}`,
		`{"name":"Acme","type":"Farming"}`,
		`{"name":"Acme","type":"Software","extra":1}`,
		`not json`,
	} {
		w := post(srv, "/v1/strategies", body)
		if w.Code != http.StatusBadRequest {
			t.Errorf("%s: expected 400, got %d", body, w.Code)
		}
		var eb errorBody
		if err := json.Unmarshal(w.Body.Bytes(), &eb); err != nil {
			t.Fatalf("%s: error body is not JSON: %v", body, err)
		}
		if eb.Error.Kind != string(models.KindValidation) {
			t.Errorf("%s: expected ValidationError kind, got %q", body, eb.Error.Kind)
		}
	}
}

type failingGenerator struct{ err error }

func (f failingGenerator) Generate(context.Context, models.BusinessProfile) (models.Result, error) {
	return models.Result{}, f.err
}
func (failingGenerator) Stats(context.Context) (models.CacheStats, error) {
	return models.CacheStats{}, errors.New("store down")
}
func (failingGenerator) Purge(context.Context) error { return nil }

func TestFailureStatus(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{models.Configurationf("no token"), http.StatusServiceUnavailable},
		{models.NetworkFailure("timeout", nil), http.StatusGatewayTimeout},
		{models.BackendFailure(503, "unavailable", nil), http.StatusBadGateway},
		{errors.New("plain"), http.StatusBadGateway},
	}
	for _, tt := range tests {
		srv := New(":0", failingGenerator{err: tt.err}, quietLogger())
		w := post(srv, "/v1/strategies", `{"name":"Acme","type":"Software"}`)
		if w.Code != tt.want {
			t.Errorf("%v: expected %d, got %d", tt.err, tt.want, w.Code)
		}
	}
}

func TestDownload(t *testing.T) {
	srv := setupServer(t, backend.NewStatic())

	w := post(srv, "/v1/strategies/download", `{"name":"Acme","type":"Consulting"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if cd := w.Header().Get("Content-Disposition"); cd != `attachment; filename=Acme_ip_strategy.md` {
		t.Errorf("unexpected Content-Disposition %q", cd)
	}
	if !strings.HasPrefix(w.Header().Get("Content-Type"), "text/markdown") {
		t.Errorf("unexpected content type %q", w.Header().Get("Content-Type"))
	}
	if !strings.Contains(w.Body.String(), "Non-disclosure agreements") {
		t.Errorf("unexpected body:\n%s", w.Body.String())
	}
}

func TestBusinessTypes(t *testing.T) {
	srv := setupServer(t, backend.NewStatic())
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/business-types", nil))

	var body struct {
		BusinessTypes []string `json:"business_types"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if len(body.BusinessTypes) != 8 || body.BusinessTypes[6] != "E-commerce" {
		t.Errorf("unexpected types %v", body.BusinessTypes)
	}
}

func TestCacheEndpoints(t *testing.T) {
	srv := setupServer(t, backend.NewStatic())
	post(srv, "/v1/strategies", `{"name":"Acme","type":"Software"}`)

	w := httptest.NewRecorder()
	srv.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/cache/stats", nil))
	var stats models.CacheStats
	if err := json.Unmarshal(w.Body.Bytes(), &stats); err != nil {
		t.Fatal(err)
	}
	if stats.Entries != 1 || stats.Misses != 1 {
		t.Errorf("unexpected stats %+v", stats)
	}

	w = httptest.NewRecorder()
	srv.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/v1/cache", nil))
	if w.Code != http.StatusNoContent {
		t.Errorf("expected 204, got %d", w.Code)
	}

	w = post(srv, "/v1/strategies", `{"name":"Acme","type":"Software"}`)
	if w.Header().Get("X-IPStrategy-Cache") != "miss" {
		t.Error("expected miss after purge")
	}
}

func TestCacheStatsError(t *testing.T) {
	srv := New(":0", failingGenerator{}, quietLogger())
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/cache/stats", nil))
	if w.Code != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", w.Code)
	}
}

func TestHealth(t *testing.T) {
	srv := setupServer(t, backend.NewStatic())
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
}

func TestMethodNotAllowed(t *testing.T) {
	srv := setupServer(t, backend.NewStatic())
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/strategies", nil))
	if w.Code != http.StatusMethodNotAllowed {
		t.Errorf("expected 405, got %d", w.Code)
	}
}
