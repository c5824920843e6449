package api

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/use-agent/domhash/api/handler"
	"github.com/use-agent/domhash/config"
	"github.com/use-agent/domhash/domhash"
)

func newTestServer(t *testing.T, authEnabled bool) http.Handler {
	t.Helper()
	cfg := config.Load()
	cfg.Server.Mode = "test"
	cfg.Auth.Enabled = authEnabled
	cfg.Auth.APIKeys = []string{"secret"}

	dg := &handler.Digester{Defaults: domhash.DefaultOptions()}
	return NewRouter(cfg, dg, handler.NewBatches(t.Context(), dg, cfg.Batch), time.Now())
}

func request(r http.Handler, method, path, body, key string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if key != "" {
		req.Header.Set("X-API-Key", key)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRouter_Routes(t *testing.T) {
	r := newTestServer(t, false)

	const doc = `{"content":"<div>Hello World, this is a sample document for testing.</div>"}`
	tests := []struct {
		method, path, body string
		status             int
	}{
		{http.MethodGet, "/api/v1/health", "", http.StatusOK},
		{http.MethodPost, "/api/v1/digest", doc, http.StatusOK},
		{http.MethodPost, "/api/v1/compare", `{"digest_a":"c1:ab","digest_b":"c1:ab"}`, http.StatusOK},
		{http.MethodPost, "/api/v1/batch/digest", `{"items":[` + doc + `]}`, http.StatusAccepted},
		{http.MethodGet, "/api/v1/batch/unknown", "", http.StatusNotFound},
		{http.MethodPost, "/api/v1/unknown", doc, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			w := request(r, tt.method, tt.path, tt.body, "")
			assert.Equal(t, tt.status, w.Code, w.Body.String())
		})
	}
}

func TestRouter_Auth(t *testing.T) {
	r := newTestServer(t, true)

	assert.Equal(t, http.StatusOK, request(r, http.MethodGet, "/api/v1/health", "", "").Code)

	body := `{"digest_a":"c1:ab","digest_b":"c1:ab"}`
	assert.Equal(t, http.StatusUnauthorized, request(r, http.MethodPost, "/api/v1/compare", body, "").Code)
	assert.Equal(t, http.StatusUnauthorized, request(r, http.MethodPost, "/api/v1/compare", body, "wrong").Code)
	assert.Equal(t, http.StatusOK, request(r, http.MethodPost, "/api/v1/compare", body, "secret").Code)
}
