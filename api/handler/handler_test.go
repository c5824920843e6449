package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/use-agent/domhash/cache"
	"github.com/use-agent/domhash/config"
	"github.com/use-agent/domhash/domhash"
	"github.com/use-agent/domhash/fetch"
	"github.com/use-agent/domhash/models"
)

const page = "<html><body><div>Hello World, this is a sample document for testing.</div></body></html>"

type stubFetcher struct {
	html string
	err  error
}

func (s stubFetcher) Fetch(_ context.Context, targetURL string) (*fetch.Result, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &fetch.Result{HTML: s.html, StatusCode: http.StatusOK, FinalURL: targetURL}, nil
}

func newDigester(t *testing.T) *Digester {
	t.Helper()
	cc, err := cache.New(16)
	require.NoError(t, err)
	return &Digester{
		Defaults: domhash.DefaultOptions(),
		Cache:    cc,
		Fetcher:  stubFetcher{html: page},
	}
}

func newTestRouter(d *Digester, b *Batches) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/digest", PostDigest(d))
	r.POST("/compare", PostCompare(d))
	r.GET("/health", Health(d.Cache, time.Now()))
	if b != nil {
		r.POST("/batch", b.Post())
		r.GET("/batch/:id", b.Get())
	}
	return r
}

func doJSON(t *testing.T, r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func TestPostDigest(t *testing.T) {
	r := newTestRouter(newDigester(t), nil)

	w := doJSON(t, r, http.MethodPost, "/digest", models.DigestRequest{Content: page})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	resp := decode[models.DigestResponse](t, w)
	assert.True(t, resp.Success)
	assert.True(t, strings.HasPrefix(resp.Digest, "n1-5-0:"))
	assert.Equal(t, "ngram", resp.Strategy)
	assert.Equal(t, 5, resp.Units)
	assert.Equal(t, cache.StatusMiss, resp.CacheStatus)

	w = doJSON(t, r, http.MethodPost, "/digest", models.DigestRequest{Content: page})
	again := decode[models.DigestResponse](t, w)
	assert.Equal(t, cache.StatusHit, again.CacheStatus)
	assert.Equal(t, resp.Digest, again.Digest)
}

func TestPostDigest_ChunkOptions(t *testing.T) {
	r := newTestRouter(newDigester(t), nil)

	w := doJSON(t, r, http.MethodPost, "/digest", models.DigestRequest{
		Content: page,
		Options: models.DigestOptions{Strategy: "chunk", DigestLength: 20},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	resp := decode[models.DigestResponse](t, w)
	assert.Equal(t, "chunk", resp.Strategy)
	assert.Len(t, resp.Digest, len("c1:")+20)
}

func TestPostDigest_HashPrefixOverride(t *testing.T) {
	d := newDigester(t)
	d.Defaults.HashPrefixLength = 6
	r := newTestRouter(d, nil)

	w := doJSON(t, r, http.MethodPost, "/digest", models.DigestRequest{Content: page})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.True(t, strings.HasPrefix(decode[models.DigestResponse](t, w).Digest, "n1-5-6:"))

	full := 0
	w = doJSON(t, r, http.MethodPost, "/digest", models.DigestRequest{
		Content: page,
		Options: models.DigestOptions{HashPrefixLength: &full},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	resp := decode[models.DigestResponse](t, w)
	require.True(t, strings.HasPrefix(resp.Digest, "n1-5-0:"), resp.Digest)
	units := strings.Split(strings.TrimPrefix(resp.Digest, "n1-5-0:"), ".")
	assert.Len(t, units[0], 64)

	tooLong := 44
	w = doJSON(t, r, http.MethodPost, "/digest", models.DigestRequest{
		Content: page,
		Options: models.DigestOptions{HashPrefixLength: &tooLong},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPostDigest_URL(t *testing.T) {
	r := newTestRouter(newDigester(t), nil)

	w := doJSON(t, r, http.MethodPost, "/digest", models.DigestRequest{URL: "https://example.com/a"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	resp := decode[models.DigestResponse](t, w)
	assert.Equal(t, "https://example.com/a", resp.SourceURL)
	assert.True(t, resp.Success)
}

func TestPostDigest_Errors(t *testing.T) {
	d := newDigester(t)
	failing := &Digester{Defaults: d.Defaults, Fetcher: stubFetcher{err: errors.New("connection refused")}}

	tests := []struct {
		name     string
		digester *Digester
		body     any
		status   int
		code     string
	}{
		{"empty", d, models.DigestRequest{}, http.StatusBadRequest, models.ErrCodeNoContent},
		{"whitespace", d, models.DigestRequest{Content: "   \n"}, http.StatusBadRequest, models.ErrCodeNoContent},
		{"not markup", d, models.DigestRequest{Content: "plain text that has no tags in it at all"}, http.StatusBadRequest, models.ErrCodeInvalidContent},
		{"too short", d, models.DigestRequest{Content: "<p>short</p>"}, http.StatusBadRequest, models.ErrCodeInvalidContent},
		{"both inputs", d, models.DigestRequest{Content: page, URL: "https://example.com"}, http.StatusBadRequest, models.ErrCodeInvalidInput},
		{"bad strategy", d, map[string]any{"content": page, "options": map[string]any{"strategy": "md5"}}, http.StatusBadRequest, models.ErrCodeInvalidInput},
		{"bad selector", d, models.DigestRequest{Content: page, Scope: models.ScopeOptions{CSSSelector: "[["}}, http.StatusBadRequest, models.ErrCodeInvalidInput},
		{"fetch failed", failing, models.DigestRequest{URL: "https://example.com"}, http.StatusBadGateway, models.ErrCodeFetchFailed},
		{"fetch disabled", &Digester{Defaults: d.Defaults}, models.DigestRequest{URL: "https://example.com"}, http.StatusBadRequest, models.ErrCodeInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newTestRouter(tt.digester, nil)
			w := doJSON(t, r, http.MethodPost, "/digest", tt.body)
			assert.Equal(t, tt.status, w.Code, w.Body.String())

			resp := decode[models.DigestResponse](t, w)
			assert.False(t, resp.Success)
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.code, resp.Error.Code)
			assert.Empty(t, resp.Digest)
		})
	}
}

func TestPostDigest_Scope(t *testing.T) {
	r := newTestRouter(newDigester(t), nil)
	doc := `<html><body><nav>Home About Contact Careers Blog Press</nav>` +
		`<main><p>Hello World, this is a sample document for testing.</p></main></body></html>`

	scoped := decode[models.DigestResponse](t, doJSON(t, r, http.MethodPost, "/digest", models.DigestRequest{
		Content: doc,
		Scope:   models.ScopeOptions{CSSSelector: "main"},
	}))
	plain := decode[models.DigestResponse](t, doJSON(t, r, http.MethodPost, "/digest", models.DigestRequest{
		Content: page,
	}))
	full := decode[models.DigestResponse](t, doJSON(t, r, http.MethodPost, "/digest", models.DigestRequest{
		Content: doc,
	}))

	require.True(t, scoped.Success)
	assert.Equal(t, plain.Digest, scoped.Digest)
	assert.NotEqual(t, full.Digest, scoped.Digest)
}

func TestPostCompare_Digests(t *testing.T) {
	r := newTestRouter(newDigester(t), nil)

	w := doJSON(t, r, http.MethodPost, "/compare", models.CompareRequest{DigestA: "c1:abcd", DigestB: "c1:abcf"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	resp := decode[models.CompareResponse](t, w)
	assert.True(t, resp.Success)
	assert.Equal(t, 75.0, resp.Score)
	assert.Equal(t, "positional", resp.Metric)
}

func TestPostCompare_Content(t *testing.T) {
	r := newTestRouter(newDigester(t), nil)

	w := doJSON(t, r, http.MethodPost, "/compare", models.CompareRequest{ContentA: page, ContentB: page})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	resp := decode[models.CompareResponse](t, w)
	assert.Equal(t, 1.0, resp.Score)
	assert.Equal(t, "jaccard", resp.Metric)
	assert.Equal(t, resp.DigestA, resp.DigestB)
}

func TestPostCompare_Errors(t *testing.T) {
	r := newTestRouter(newDigester(t), nil)

	tests := []struct {
		name   string
		body   models.CompareRequest
		status int
		code   string
	}{
		{"nothing", models.CompareRequest{}, http.StatusBadRequest, models.ErrCodeInvalidInput},
		{"mixed schemes", models.CompareRequest{DigestA: "c1:abcd", DigestB: "n1:aa.bb"}, http.StatusBadRequest, models.ErrCodeIncompatibleDigests},
		{"mismatched n-gram settings", models.CompareRequest{DigestA: "n1-5-2:aa.bb", DigestB: "n1-3-2:aa.bb"}, http.StatusBadRequest, models.ErrCodeIncompatibleDigests},
		{"only digest_a", models.CompareRequest{DigestA: "c1:abcd"}, http.StatusBadRequest, models.ErrCodeInvalidInput},
		{"only digest_b", models.CompareRequest{DigestB: "c1:abcd"}, http.StatusBadRequest, models.ErrCodeInvalidInput},
		{"malformed", models.CompareRequest{DigestA: "x9:abcd", DigestB: "c1:abcd"}, http.StatusBadRequest, models.ErrCodeInvalidDigest},
		{"empty chunk", models.CompareRequest{DigestA: "c1:", DigestB: "c1:abcd"}, http.StatusUnprocessableEntity, models.ErrCodeNoComparableContent},
		{"bad content", models.CompareRequest{ContentA: page, ContentB: "no markup here at all, only words"}, http.StatusBadRequest, models.ErrCodeInvalidContent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doJSON(t, r, http.MethodPost, "/compare", tt.body)
			assert.Equal(t, tt.status, w.Code, w.Body.String())

			resp := decode[models.CompareResponse](t, w)
			assert.False(t, resp.Success)
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.code, resp.Error.Code)
		})
	}
}

func TestPostCompare_MissingDigest(t *testing.T) {
	r := newTestRouter(newDigester(t), nil)

	w := doJSON(t, r, http.MethodPost, "/compare", models.CompareRequest{DigestA: "c1:abcd"})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "digest_b is required", decode[models.CompareResponse](t, w).Error.Message)

	w = doJSON(t, r, http.MethodPost, "/compare", models.CompareRequest{DigestB: "c1:abcd", ContentA: page})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "digest_a is required", decode[models.CompareResponse](t, w).Error.Message)
}

func TestHealth(t *testing.T) {
	d := newDigester(t)
	r := newTestRouter(d, nil)
	doJSON(t, r, http.MethodPost, "/digest", models.DigestRequest{Content: page})

	w := doJSON(t, r, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, w.Code)

	resp := decode[models.HealthResponse](t, w)
	assert.Equal(t, "healthy", resp.Status)
	assert.Equal(t, domhash.Version, resp.Version)
	assert.Equal(t, 1, resp.CacheStats.Entries)
	assert.Equal(t, 16, resp.CacheStats.MaxEntries)
}

func TestHealth_NoCache(t *testing.T) {
	r := newTestRouter(&Digester{Defaults: domhash.DefaultOptions()}, nil)
	w := doJSON(t, r, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Zero(t, decode[models.HealthResponse](t, w).CacheStats.MaxEntries)
}

func TestMapErrorToStatus(t *testing.T) {
	assert.Equal(t, http.StatusOK, statusFor(nil))
	assert.Equal(t, http.StatusTooManyRequests, mapErrorToStatus(models.ErrCodeRateLimited))
	assert.Equal(t, http.StatusUnauthorized, mapErrorToStatus(models.ErrCodeUnauthorized))
	assert.Equal(t, http.StatusInternalServerError, mapErrorToStatus(models.ErrCodeInternal))
	assert.Equal(t, http.StatusInternalServerError, mapErrorToStatus("SOMETHING_ELSE"))
}

func waitForBatch(t *testing.T, r http.Handler, id string) models.BatchStatusResponse {
	t.Helper()
	var status models.BatchStatusResponse
	require.Eventually(t, func() bool {
		w := doJSON(t, r, http.MethodGet, "/batch/"+id, nil)
		if w.Code != http.StatusOK {
			return false
		}
		status = decode[models.BatchStatusResponse](t, w)
		return status.Status != "processing"
	}, 5*time.Second, 10*time.Millisecond)
	return status
}

func TestBatch(t *testing.T) {
	d := newDigester(t)
	r := newTestRouter(d, NewBatches(t.Context(), d, config.BatchConfig{MaxItems: 10, Concurrency: 2}))

	w := doJSON(t, r, http.MethodPost, "/batch", models.BatchRequest{Items: []models.BatchItem{
		{ID: "a", Content: page},
		{ID: "b", URL: "https://example.com/b"},
		{ID: "c", Content: "not markup, just words in a row"},
	}})
	require.Equal(t, http.StatusAccepted, w.Code, w.Body.String())

	created := decode[models.BatchResponse](t, w)
	require.NotEmpty(t, created.ID)
	assert.Equal(t, "processing", created.Status)
	assert.Equal(t, 3, created.Total)

	status := waitForBatch(t, r, created.ID)
	assert.Equal(t, "partial", status.Status)
	assert.Equal(t, 3, status.Completed)
	require.Len(t, status.Results, 3)

	assert.Equal(t, "a", status.Results[0].ID)
	assert.True(t, status.Results[0].Response.Success)
	assert.True(t, status.Results[1].Response.Success)
	assert.Equal(t, status.Results[0].Response.Digest, status.Results[1].Response.Digest)
	assert.False(t, status.Results[2].Response.Success)
	assert.Equal(t, models.ErrCodeInvalidContent, status.Results[2].Response.Error.Code)
}

func TestBatch_AllFailed(t *testing.T) {
	d := newDigester(t)
	r := newTestRouter(d, NewBatches(t.Context(), d, config.BatchConfig{MaxItems: 10, Concurrency: 2}))

	w := doJSON(t, r, http.MethodPost, "/batch", models.BatchRequest{Items: []models.BatchItem{
		{Content: "<p>x</p>"},
	}})
	require.Equal(t, http.StatusAccepted, w.Code)

	status := waitForBatch(t, r, decode[models.BatchResponse](t, w).ID)
	assert.Equal(t, "failed", status.Status)
}

func TestBatch_Validation(t *testing.T) {
	d := newDigester(t)
	r := newTestRouter(d, NewBatches(t.Context(), d, config.BatchConfig{MaxItems: 1, Concurrency: 1}))

	w := doJSON(t, r, http.MethodPost, "/batch", models.BatchRequest{})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, r, http.MethodPost, "/batch", models.BatchRequest{Items: []models.BatchItem{
		{Content: page}, {Content: page},
	}})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "maximum 1 items")

	w = doJSON(t, r, http.MethodGet, "/batch/batch-missing", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestBatch_Webhook(t *testing.T) {
	received := make(chan []byte, 1)
	hook := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var buf bytes.Buffer
		_, _ = buf.ReadFrom(r.Body)
		select {
		case received <- buf.Bytes():
		default:
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer hook.Close()

	d := newDigester(t)
	r := newTestRouter(d, NewBatches(t.Context(), d, config.BatchConfig{MaxItems: 10, Concurrency: 2}))

	w := doJSON(t, r, http.MethodPost, "/batch", models.BatchRequest{
		Items:      []models.BatchItem{{Content: page}},
		WebhookURL: hook.URL,
	})
	require.Equal(t, http.StatusAccepted, w.Code, w.Body.String())
	id := decode[models.BatchResponse](t, w).ID

	select {
	case body := <-received:
		var event struct {
			Type  string                     `json:"type"`
			JobID string                     `json:"job_id"`
			Data  models.BatchStatusResponse `json:"data"`
		}
		require.NoError(t, json.Unmarshal(body, &event))
		assert.Equal(t, "batch.completed", event.Type)
		assert.Equal(t, id, event.JobID)
		assert.Equal(t, "completed", event.Data.Status)
		assert.Len(t, event.Data.Results, 1)
	case <-time.After(5 * time.Second):
		t.Fatal("webhook not delivered")
	}
}

func TestBatches_StopsWithContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	b := NewBatches(ctx, newDigester(t), config.BatchConfig{})

	select {
	case <-b.Done():
		t.Fatal("expiry loop stopped before cancel")
	default:
	}

	cancel()
	select {
	case <-b.Done():
	case <-time.After(time.Second):
		t.Fatal("expiry loop still running after cancel")
	}
}

func TestBatches_Expire(t *testing.T) {
	b := NewBatches(t.Context(), newDigester(t), config.BatchConfig{})
	now := time.Now()

	b.store.Store("old", &batchEntry{job: models.BatchJob{ID: "old", CreatedAt: now.Add(-2 * batchTTL).Unix()}})
	b.store.Store("fresh", &batchEntry{job: models.BatchJob{ID: "fresh", CreatedAt: now.Unix()}})

	b.expire(now.Add(-batchTTL).Unix())

	_, ok := b.store.Load("old")
	assert.False(t, ok)
	_, ok = b.store.Load("fresh")
	assert.True(t, ok)
}
