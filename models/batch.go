package models

// BatchRequest is the payload for POST /api/v1/batch/digest.
type BatchRequest struct {
	// Items is the list of documents to digest. Required.
	Items []BatchItem `json:"items" binding:"required,min=1,dive"`

	// Options are shared digest settings applied to every item.
	Options DigestOptions `json:"options"`

	// Scope is shared scoping applied to every item.
	Scope ScopeOptions `json:"scope"`

	// WebhookURL receives a batch.completed event when the job finishes.
	WebhookURL string `json:"webhook_url,omitempty" binding:"omitempty,url"`

	// WebhookSecret signs the webhook body with HMAC-SHA256.
	WebhookSecret string `json:"webhook_secret,omitempty"`
}

// BatchItem is one document in a batch. Exactly one of Content or URL is set.
type BatchItem struct {
	ID      string `json:"id,omitempty"`
	Content string `json:"content,omitempty"`
	URL     string `json:"url,omitempty" binding:"omitempty,url"`
}

// BatchResponse is the immediate response for POST /api/v1/batch/digest.
type BatchResponse struct {
	ID     string       `json:"id,omitempty"`
	Status string       `json:"status"`
	Total  int          `json:"total"`
	Error  *ErrorDetail `json:"error,omitempty"`
}

// BatchStatusResponse is the response for GET /api/v1/batch/:id.
type BatchStatusResponse struct {
	ID        string             `json:"id"`
	Status    string             `json:"status"`
	Completed int                `json:"completed"`
	Total     int                `json:"total"`
	Results   []*BatchItemResult `json:"results,omitempty"`
}

// BatchItemResult is the digest outcome for one BatchItem.
type BatchItemResult struct {
	ID       string          `json:"id,omitempty"`
	Response *DigestResponse `json:"response"`
}

// BatchJob tracks an in-progress batch digest operation.
type BatchJob struct {
	ID        string
	Status    string // "processing", "completed", "failed", "partial"
	Total     int
	Completed int
	Results   []*BatchItemResult
	CreatedAt int64 // unix timestamp
}
