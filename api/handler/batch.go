package handler

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/use-agent/domhash/config"
	"github.com/use-agent/domhash/models"
	"github.com/use-agent/domhash/webhook"
)

// batchEntry guards one job; workers write results while GET reads them.
type batchEntry struct {
	mu  sync.Mutex
	job models.BatchJob
}

// Batches holds all in-flight and completed batch jobs. Jobs older than
// batchTTL are expired by a background goroutine that runs until the
// context passed to NewBatches is cancelled.
type Batches struct {
	store       sync.Map
	digester    *Digester
	maxItems    int
	concurrency int
	done        chan struct{}
}

const (
	batchTTL           = time.Hour
	batchSweepInterval = 5 * time.Minute
)

// NewBatches creates the batch job store and starts its expiry loop.
func NewBatches(ctx context.Context, d *Digester, cfg config.BatchConfig) *Batches {
	b := &Batches{
		digester:    d,
		maxItems:    cfg.MaxItems,
		concurrency: cfg.Concurrency,
		done:        make(chan struct{}),
	}
	if b.concurrency <= 0 {
		b.concurrency = 5
	}

	go b.expireLoop(ctx, batchSweepInterval)
	return b
}

// Done is closed once the expiry loop has stopped.
func (b *Batches) Done() <-chan struct{} {
	return b.done
}

func (b *Batches) expireLoop(ctx context.Context, interval time.Duration) {
	defer close(b.done)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			b.expire(now.Add(-batchTTL).Unix())
		}
	}
}

// expire drops jobs created before cutoff.
func (b *Batches) expire(cutoff int64) {
	b.store.Range(func(key, value any) bool {
		e := value.(*batchEntry)
		e.mu.Lock()
		expired := e.job.CreatedAt < cutoff
		e.mu.Unlock()
		if expired {
			b.store.Delete(key)
		}
		return true
	})
}

// Post returns a handler for POST /api/v1/batch/digest.
// It validates the request, creates a batch job, and digests the items in
// the background.
func (b *Batches) Post() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.BatchRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, models.BatchResponse{
				Status: "failed",
				Error: &models.ErrorDetail{
					Code:    models.ErrCodeInvalidInput,
					Message: err.Error(),
				},
			})
			return
		}

		if b.maxItems > 0 && len(req.Items) > b.maxItems {
			c.JSON(http.StatusBadRequest, models.BatchResponse{
				Status: "failed",
				Error: &models.ErrorDetail{
					Code:    models.ErrCodeInvalidInput,
					Message: fmt.Sprintf("maximum %d items per batch", b.maxItems),
				},
			})
			return
		}
		req.Scope.Defaults()

		jobID := "batch-" + randomID()
		e := &batchEntry{job: models.BatchJob{
			ID:        jobID,
			Status:    "processing",
			Total:     len(req.Items),
			Results:   make([]*models.BatchItemResult, len(req.Items)),
			CreatedAt: time.Now().Unix(),
		}}
		b.store.Store(jobID, e)

		go b.run(e, req)

		c.JSON(http.StatusAccepted, models.BatchResponse{
			ID:     jobID,
			Status: "processing",
			Total:  len(req.Items),
		})
	}
}

// Get returns a handler for GET /api/v1/batch/:id.
func (b *Batches) Get() gin.HandlerFunc {
	return func(c *gin.Context) {
		val, ok := b.store.Load(c.Param("id"))
		if !ok {
			c.JSON(http.StatusNotFound, models.ErrorResponse{
				Success: false,
				Error: &models.ErrorDetail{
					Code:    models.ErrCodeInvalidInput,
					Message: "batch job not found",
				},
			})
			return
		}

		c.JSON(http.StatusOK, val.(*batchEntry).snapshot())
	}
}

func (e *batchEntry) snapshot() models.BatchStatusResponse {
	e.mu.Lock()
	defer e.mu.Unlock()

	results := make([]*models.BatchItemResult, len(e.job.Results))
	copy(results, e.job.Results)
	return models.BatchStatusResponse{
		ID:        e.job.ID,
		Status:    e.job.Status,
		Completed: e.job.Completed,
		Total:     e.job.Total,
		Results:   results,
	}
}

// run digests all items with concurrency limited by a semaphore.
func (b *Batches) run(e *batchEntry, req models.BatchRequest) {
	sem := make(chan struct{}, b.concurrency)

	var wg sync.WaitGroup
	failed := 0

	for i, item := range req.Items {
		wg.Add(1)
		go func(idx int, item models.BatchItem) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			resp := b.digester.Digest(context.Background(), item.Content, item.URL, req.Options, req.Scope)

			e.mu.Lock()
			e.job.Results[idx] = &models.BatchItemResult{ID: item.ID, Response: resp}
			e.job.Completed++
			if !resp.Success {
				failed++
			}
			e.mu.Unlock()
		}(i, item)
	}

	wg.Wait()

	e.mu.Lock()
	switch {
	case failed == e.job.Total:
		e.job.Status = "failed"
	case failed > 0:
		e.job.Status = "partial"
	default:
		e.job.Status = "completed"
	}
	status := e.job.Status
	e.mu.Unlock()

	slog.Info("batch job finished",
		"id", e.job.ID,
		"status", status,
		"failed", failed,
		"total", e.job.Total,
	)

	if req.WebhookURL != "" {
		eventType := webhook.EventBatchCompleted
		if status == "failed" {
			eventType = webhook.EventBatchFailed
		}
		webhook.DeliverAsync(req.WebhookURL, req.WebhookSecret, &webhook.Event{
			Type:      eventType,
			JobID:     e.job.ID,
			Timestamp: time.Now().Unix(),
			Data:      e.snapshot(),
		}, nil, nil)
	}
}

// randomID generates a short random hex string for job IDs.
func randomID() string {
	b := make([]byte, 8)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}
