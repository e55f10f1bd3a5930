package agrivaani

import (
	"context"
	"sync"
	"time"
)

// RateLimiter is a token bucket guarding requests to the remote service.
type RateLimiter struct {
	mu         sync.Mutex
	tokens     float64
	maxTokens  float64
	refillRate float64 // tokens per second
	lastRefill time.Time
}

// RateLimitConfig configures request rate limiting.
type RateLimitConfig struct {
	RequestsPerMinute int // Sustained rate (default: 60)
	BurstSize         int // Bucket size (default: same as RequestsPerMinute)

	// PerOperation gives translate, tts and asr separate buckets of the
	// same size, so a burst of one cannot starve the others.
	PerOperation bool
}

// NewRateLimiter creates a full bucket.
func NewRateLimiter(cfg RateLimitConfig) *RateLimiter {
	rpm := float64(cfg.RequestsPerMinute)
	if rpm <= 0 {
		rpm = 60
	}

	burst := float64(cfg.BurstSize)
	if burst <= 0 {
		burst = rpm
	}

	return &RateLimiter{
		tokens:     burst,
		maxTokens:  burst,
		refillRate: rpm / 60.0,
		lastRefill: time.Now(),
	}
}

// Wait blocks until a token is taken or ctx is done.
func (r *RateLimiter) Wait(ctx context.Context) error {
	for {
		wait := r.reserve()
		if wait == 0 {
			return nil
		}

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

// reserve takes a token and returns 0, or returns how long until one is
// available.
func (r *RateLimiter) reserve() time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.refill()
	if r.tokens >= 1 {
		r.tokens--
		return 0
	}

	deficit := 1 - r.tokens
	wait := time.Duration(deficit / r.refillRate * float64(time.Second))
	if wait < time.Millisecond {
		wait = time.Millisecond
	}
	return wait
}

// TryAcquire takes a token if one is available.
func (r *RateLimiter) TryAcquire() bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.refill()
	if r.tokens >= 1 {
		r.tokens--
		return true
	}
	return false
}

// refill must be called with mu held.
func (r *RateLimiter) refill() {
	now := time.Now()
	r.tokens += now.Sub(r.lastRefill).Seconds() * r.refillRate
	r.lastRefill = now
	if r.tokens > r.maxTokens {
		r.tokens = r.maxTokens
	}
}

// Available returns the current number of tokens.
func (r *RateLimiter) Available() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.refill()
	return r.tokens
}

// RateLimitedBackend wraps a Backend with a token bucket, shared by all
// operations unless PerOperation is set.
type RateLimitedBackend struct {
	backend  Backend
	limiters map[Operation]*RateLimiter
}

// NewRateLimitedBackend creates a new rate-limited backend.
func NewRateLimitedBackend(backend Backend, cfg RateLimitConfig) *RateLimitedBackend {
	limiters := make(map[Operation]*RateLimiter, len(Operations))
	shared := NewRateLimiter(cfg)
	for _, op := range Operations {
		if cfg.PerOperation {
			limiters[op] = NewRateLimiter(cfg)
		} else {
			limiters[op] = shared
		}
	}

	return &RateLimitedBackend{
		backend:  backend,
		limiters: limiters,
	}
}

func (b *RateLimitedBackend) wait(ctx context.Context, op Operation) error {
	if err := b.limiters[op].Wait(ctx); err != nil {
		return &RemoteServiceError{
			Operation: op,
			Message:   "rate limit wait cancelled",
			Cause:     err,
		}
	}
	return nil
}

// Translate implements Backend.
func (b *RateLimitedBackend) Translate(ctx context.Context, req TranslationRequest) (string, error) {
	if err := b.wait(ctx, OpTranslate); err != nil {
		return "", err
	}
	return b.backend.Translate(ctx, req)
}

// Synthesize implements Backend.
func (b *RateLimitedBackend) Synthesize(ctx context.Context, req SpeechRequest) (string, error) {
	if err := b.wait(ctx, OpSpeech); err != nil {
		return "", err
	}
	return b.backend.Synthesize(ctx, req)
}

// Transcribe implements Backend.
func (b *RateLimitedBackend) Transcribe(ctx context.Context, req TranscribeRequest) (TranscribeResult, error) {
	if err := b.wait(ctx, OpTranscribe); err != nil {
		return TranscribeResult{}, err
	}
	return b.backend.Transcribe(ctx, req)
}

// Limiter returns the bucket guarding op.
func (b *RateLimitedBackend) Limiter(op Operation) *RateLimiter {
	return b.limiters[op]
}

var _ Backend = (*RateLimitedBackend)(nil)
