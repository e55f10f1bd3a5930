package agrivaani

import (
	"fmt"
	"time"
)

// MissingInputError indicates a required input (such as audio) was not supplied.
// No network call is made when this error is returned.
type MissingInputError struct {
	Operation Operation
	Field     string
}

func (e *MissingInputError) Error() string {
	return fmt.Sprintf("%s: missing input: %s", e.Operation, e.Field)
}

// RemoteServiceError indicates a network failure or non-2xx response from the
// remote service.
type RemoteServiceError struct {
	Operation  Operation
	StatusCode int // HTTP status, 0 when the request never got a response
	Message    string
	Cause      error
	Retryable  bool          // Whether the operation can be retried
	RetryAfter time.Duration // Server-requested delay before retrying, 0 if none
}

func (e *RemoteServiceError) Error() string {
	msg := fmt.Sprintf("remote service error (%s): %s", e.Operation, e.Message)
	if e.StatusCode != 0 {
		msg = fmt.Sprintf("remote service error (%s): status %d: %s", e.Operation, e.StatusCode, e.Message)
	}
	if e.Cause != nil {
		return msg + ": " + e.Cause.Error()
	}
	return msg
}

func (e *RemoteServiceError) Unwrap() error {
	return e.Cause
}

// DecodeError indicates a malformed audio payload in a service response.
type DecodeError struct {
	Message string
	Cause   error
}

func (e *DecodeError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("decode error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("decode error: %s", e.Message)
}

func (e *DecodeError) Unwrap() error {
	return e.Cause
}

// BusyError is returned when an operation is invoked while a previous call of
// the same operation is still pending.
type BusyError struct {
	Operation Operation
}

func (e *BusyError) Error() string {
	return fmt.Sprintf("%s: operation already in progress", e.Operation)
}

// UnsupportedLanguageError indicates a language code outside the catalog.
type UnsupportedLanguageError struct {
	Code string
}

func (e *UnsupportedLanguageError) Error() string {
	return fmt.Sprintf("unsupported language: %q", e.Code)
}

// CacheError indicates a cache operation failure.
type CacheError struct {
	Message string
	Cause   error
}

func (e *CacheError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("cache error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("cache error: %s", e.Message)
}

func (e *CacheError) Unwrap() error {
	return e.Cause
}

// ProcessorError indicates a content processing failure (parse error, etc.).
type ProcessorError struct {
	Message     string
	Cause       error
	ContentType string // The type of content that failed to process
}

func (e *ProcessorError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("processor error (%s): %s: %v", e.ContentType, e.Message, e.Cause)
	}
	return fmt.Sprintf("processor error (%s): %s", e.ContentType, e.Message)
}

func (e *ProcessorError) Unwrap() error {
	return e.Cause
}
