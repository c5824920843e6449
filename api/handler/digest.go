package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/use-agent/domhash/cache"
	"github.com/use-agent/domhash/cleaner"
	"github.com/use-agent/domhash/domhash"
	"github.com/use-agent/domhash/fetch"
	"github.com/use-agent/domhash/models"
)

// Digester bundles what the digest endpoints need. Cache and Fetcher may be
// nil: no memoization, and url inputs are rejected.
type Digester struct {
	Defaults domhash.Options
	Cache    *cache.Cache
	Fetcher  fetch.Fetcher
}

// Digest handles one document end to end and always returns a response;
// failures are reported in its Error field.
//
// Flow:
//  1. Merge per-request options over the defaults and build an Engine.
//  2. Resolve input: inline content, or fetch the URL.
//  3. Apply scoping (selector, include/exclude, main-content extraction).
//  4. Normalize + digest, through the cache when enabled.
func (d *Digester) Digest(ctx context.Context, content, url string, o models.DigestOptions, s models.ScopeOptions) *models.DigestResponse {
	totalStart := time.Now()
	var timing models.TimingInfo
	fail := func(err error) *models.DigestResponse {
		timing.TotalMs = time.Since(totalStart).Milliseconds()
		return &models.DigestResponse{
			Success: false,
			Error:   models.AsDigestError(err).ToDetail(),
			Timing:  timing,
		}
	}

	// ── 1. Engine ───────────────────────────────────────────────────
	engine, err := domhash.New(d.Defaults.Override(o))
	if err != nil {
		return fail(err)
	}

	// ── 2. Input ────────────────────────────────────────────────────
	switch {
	case content != "" && url != "":
		return fail(models.NewDigestError(models.ErrCodeInvalidInput, "provide either content or url, not both", nil))
	case url != "":
		if d.Fetcher == nil {
			return fail(models.NewDigestError(models.ErrCodeInvalidInput, "url fetching is disabled", nil))
		}
		fetchStart := time.Now()
		page, err := d.Fetcher.Fetch(ctx, url)
		timing.FetchMs = time.Since(fetchStart).Milliseconds()
		if err != nil {
			return fail(models.NewDigestError(models.ErrCodeFetchFailed, "failed to fetch url", err))
		}
		content = page.HTML
	}
	if strings.TrimSpace(content) == "" {
		return fail(models.NoContent("no content supplied"))
	}

	// ── 3. Scope ────────────────────────────────────────────────────
	digestStart := time.Now()
	scoped, err := cleaner.ScopeFromOptions(s, url).Apply(content)
	if err != nil {
		return fail(err)
	}

	// ── 4. Digest ───────────────────────────────────────────────────
	var (
		res    *domhash.Result
		status string
	)
	if d.Cache != nil {
		res, status, err = d.Cache.Generate(engine, scoped)
	} else {
		res, err = engine.Generate(scoped)
	}
	timing.DigestMs = time.Since(digestStart).Milliseconds()
	if err != nil {
		return fail(err)
	}

	timing.TotalMs = time.Since(totalStart).Milliseconds()
	return &models.DigestResponse{
		Success:          true,
		Digest:           res.Digest.String(),
		Strategy:         string(res.Digest.Strategy),
		Units:            res.Units,
		NormalizedLength: res.NormalizedLength,
		SourceURL:        url,
		CacheStatus:      status,
		Timing:           timing,
	}
}

// PostDigest returns a handler for POST /api/v1/digest.
func PostDigest(d *Digester) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.DigestRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, models.DigestResponse{
				Success: false,
				Error: &models.ErrorDetail{
					Code:    models.ErrCodeInvalidInput,
					Message: err.Error(),
				},
			})
			return
		}
		req.Defaults()

		resp := d.Digest(c.Request.Context(), req.Content, req.URL, req.Options, req.Scope)
		c.JSON(statusFor(resp.Error), resp)
	}
}

// statusFor maps an error detail to its HTTP status; nil is 200.
func statusFor(detail *models.ErrorDetail) int {
	if detail == nil {
		return http.StatusOK
	}
	return mapErrorToStatus(detail.Code)
}

// mapErrorToStatus translates error codes to HTTP status codes.
func mapErrorToStatus(code string) int {
	switch code {
	case models.ErrCodeInvalidContent,
		models.ErrCodeNoContent,
		models.ErrCodeInvalidDigest,
		models.ErrCodeIncompatibleDigests,
		models.ErrCodeInvalidInput:
		return http.StatusBadRequest // 400
	case models.ErrCodeNoComparableContent:
		return http.StatusUnprocessableEntity // 422
	case models.ErrCodeFetchFailed:
		return http.StatusBadGateway // 502
	case models.ErrCodeRateLimited:
		return http.StatusTooManyRequests // 429
	case models.ErrCodeUnauthorized:
		return http.StatusUnauthorized // 401
	default:
		return http.StatusInternalServerError // 500
	}
}
