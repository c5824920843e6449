package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/use-agent/domhash/domhash"
	"github.com/use-agent/domhash/models"
)

// PostCompare returns a handler for POST /api/v1/compare.
//
// With digest_a/digest_b the tokens are compared as-is. With
// content_a/content_b both documents are digested under the same options
// first, so the two digests are always of one scheme.
func PostCompare(d *Digester) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.CompareRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondCompareError(c, models.NewDigestError(models.ErrCodeInvalidInput, err.Error(), err))
			return
		}

		if missing := req.MissingDigest(); missing != "" {
			respondCompareError(c, models.NewDigestError(models.ErrCodeInvalidInput, missing+" is required", nil))
			return
		}

		digestA, digestB := req.DigestA, req.DigestB
		if !req.HasDigests() {
			if req.ContentA == "" && req.ContentB == "" {
				respondCompareError(c, models.NewDigestError(models.ErrCodeInvalidInput,
					"provide digest_a and digest_b, or content_a and content_b", nil))
				return
			}

			ctx := c.Request.Context()
			respA := d.Digest(ctx, req.ContentA, "", req.Options, models.ScopeOptions{})
			if respA.Error != nil {
				c.JSON(statusFor(respA.Error), models.CompareResponse{Success: false, Error: respA.Error})
				return
			}
			respB := d.Digest(ctx, req.ContentB, "", req.Options, models.ScopeOptions{})
			if respB.Error != nil {
				c.JSON(statusFor(respB.Error), models.CompareResponse{Success: false, Error: respB.Error})
				return
			}
			digestA, digestB = respA.Digest, respB.Digest
		}

		score, err := domhash.CompareStrings(digestA, digestB)
		if err != nil {
			respondCompareError(c, err)
			return
		}

		c.JSON(http.StatusOK, models.CompareResponse{
			Success: true,
			Score:   score.Value,
			Metric:  string(score.Metric),
			DigestA: digestA,
			DigestB: digestB,
		})
	}
}

func respondCompareError(c *gin.Context, err error) {
	detail := models.AsDigestError(err).ToDetail()
	c.JSON(statusFor(detail), models.CompareResponse{Success: false, Error: detail})
}
