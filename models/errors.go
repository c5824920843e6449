package models

import (
	"errors"
	"fmt"
)

// Error codes used in API responses and internal error handling.
const (
	// Core engine codes.
	ErrCodeInvalidContent      = "INVALID_CONTENT"
	ErrCodeNoContent           = "NO_CONTENT"
	ErrCodeNoComparableContent = "NO_COMPARABLE_CONTENT"
	ErrCodeInvalidDigest       = "INVALID_DIGEST"
	ErrCodeIncompatibleDigests = "INCOMPATIBLE_DIGESTS"

	// Service layer codes.
	ErrCodeInvalidInput = "INVALID_INPUT"
	ErrCodeFetchFailed  = "FETCH_FAILED"
	ErrCodeRateLimited  = "RATE_LIMITED"
	ErrCodeUnauthorized = "UNAUTHORIZED"
	ErrCodeInternal     = "INTERNAL_ERROR"
)

// Sentinels for errors.Is checks. A *DigestError matches any sentinel
// carrying the same code, regardless of message.
var (
	ErrInvalidContent      = &DigestError{Code: ErrCodeInvalidContent, Message: "invalid content"}
	ErrNoContent           = &DigestError{Code: ErrCodeNoContent, Message: "no content"}
	ErrNoComparableContent = &DigestError{Code: ErrCodeNoComparableContent, Message: "no comparable content"}
	ErrInvalidDigest       = &DigestError{Code: ErrCodeInvalidDigest, Message: "invalid digest"}
	ErrIncompatibleDigests = &DigestError{Code: ErrCodeIncompatibleDigests, Message: "incompatible digests"}
)

// ErrorDetail is the structured error in API responses.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// DigestError is the internal error type carrying an error code.
// It implements the error interface and supports error wrapping via Unwrap.
type DigestError struct {
	Code    string
	Message string
	Err     error // wrapped original error
}

func (e *DigestError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *DigestError) Unwrap() error {
	return e.Err
}

// Is reports whether target is a *DigestError with the same code.
func (e *DigestError) Is(target error) bool {
	t, ok := target.(*DigestError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// NewDigestError creates a new DigestError.
func NewDigestError(code, message string, err error) *DigestError {
	return &DigestError{Code: code, Message: message, Err: err}
}

// InvalidContent reports markup that failed the heuristic or the length floor.
func InvalidContent(message string) *DigestError {
	return &DigestError{Code: ErrCodeInvalidContent, Message: message}
}

// NoContent reports a digest request with nothing to digest.
func NoContent(message string) *DigestError {
	return &DigestError{Code: ErrCodeNoContent, Message: message}
}

// NoComparableContent reports a comparison with zero overlap-eligible length.
func NoComparableContent(message string) *DigestError {
	return &DigestError{Code: ErrCodeNoComparableContent, Message: message}
}

// ToDetail converts an internal error to an API-facing ErrorDetail.
func (e *DigestError) ToDetail() *ErrorDetail {
	return &ErrorDetail{Code: e.Code, Message: e.Message}
}

// AsDigestError returns err as a *DigestError, wrapping foreign errors
// under ErrCodeInternal.
func AsDigestError(err error) *DigestError {
	var de *DigestError
	if errors.As(err, &de) {
		return de
	}
	return NewDigestError(ErrCodeInternal, err.Error(), err)
}
