package agrivaani

import (
	"context"
	"errors"
	"time"
)

// RetryConfig controls how a RetryableBackend repeats failed operations.
type RetryConfig struct {
	MaxRetries int           // Maximum number of retry attempts
	BaseDelay  time.Duration // Delay before the first retry, doubled per attempt
	MaxDelay   time.Duration // Upper bound for any single delay

	// Operations limits retries to the listed operations. Empty means all.
	Operations []Operation

	// OnRetry, when set, is called before each retry is scheduled.
	OnRetry func(op Operation, attempt int, delay time.Duration, err error)
}

// DefaultRetryConfig returns the defaults used by the CLI's --retries flag.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries: 3,
		BaseDelay:  1 * time.Second,
		MaxDelay:   30 * time.Second,
	}
}

// retries reports whether op is covered by the config.
func (c RetryConfig) retries(op Operation) bool {
	if len(c.Operations) == 0 {
		return true
	}
	for _, o := range c.Operations {
		if o == op {
			return true
		}
	}
	return false
}

// delay returns the wait before retry number attempt (0-based). A
// Retry-After hint from the service raises the backoff but MaxDelay still
// caps it.
func (c RetryConfig) delay(attempt int, err error) time.Duration {
	d := c.BaseDelay << attempt
	if d <= 0 || d > c.MaxDelay {
		d = c.MaxDelay
	}

	var remote *RemoteServiceError
	if errors.As(err, &remote) && remote.RetryAfter > d {
		d = remote.RetryAfter
		if c.MaxDelay > 0 && d > c.MaxDelay {
			d = c.MaxDelay
		}
	}
	return d
}

// RetryOperation runs fn until it succeeds, fails with an error that is not
// retryable, or MaxRetries retries are spent. Operations outside
// cfg.Operations run once. The last error is returned unchanged.
func RetryOperation[T any](ctx context.Context, op Operation, cfg RetryConfig, fn func() (T, error)) (T, error) {
	var zero T
	if !cfg.retries(op) {
		return fn()
	}

	var lastErr error
	for attempt := 0; attempt <= cfg.MaxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return zero, err
		}

		result, err := fn()
		if err == nil {
			return result, nil
		}
		lastErr = err

		if !IsRetryable(err) || attempt == cfg.MaxRetries {
			break
		}

		wait := cfg.delay(attempt, err)
		if cfg.OnRetry != nil {
			cfg.OnRetry(op, attempt+1, wait, err)
		}

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return zero, ctx.Err()
		case <-timer.C:
		}
	}

	return zero, lastErr
}

// IsRetryable reports whether err is a RemoteServiceError marked retryable.
// Cancellation, missing input and decode failures never are.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var remoteErr *RemoteServiceError
	if errors.As(err, &remoteErr) {
		return remoteErr.Retryable
	}

	return false
}

// RetryableBackend wraps a Backend with retry logic.
// The Client never retries on its own; wrap its backend to opt in.
type RetryableBackend struct {
	backend Backend
	config  RetryConfig
}

// NewRetryableBackend creates a new backend with retry logic.
func NewRetryableBackend(backend Backend, cfg RetryConfig) *RetryableBackend {
	return &RetryableBackend{
		backend: backend,
		config:  cfg,
	}
}

// Translate implements Backend.
func (b *RetryableBackend) Translate(ctx context.Context, req TranslationRequest) (string, error) {
	return RetryOperation(ctx, OpTranslate, b.config, func() (string, error) {
		return b.backend.Translate(ctx, req)
	})
}

// Synthesize implements Backend.
func (b *RetryableBackend) Synthesize(ctx context.Context, req SpeechRequest) (string, error) {
	return RetryOperation(ctx, OpSpeech, b.config, func() (string, error) {
		return b.backend.Synthesize(ctx, req)
	})
}

// Transcribe implements Backend. Missing audio fails on the first attempt
// since MissingInputError is not retryable.
func (b *RetryableBackend) Transcribe(ctx context.Context, req TranscribeRequest) (TranscribeResult, error) {
	return RetryOperation(ctx, OpTranscribe, b.config, func() (TranscribeResult, error) {
		return b.backend.Transcribe(ctx, req)
	})
}

var _ Backend = (*RetryableBackend)(nil)
