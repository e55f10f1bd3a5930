package agrivaani

import (
	"context"
	"errors"
	"sync/atomic"

	"go.uber.org/zap"
)

// Client is the translation client facade. Each of its three operations is
// single-flight: a call made while the same operation is pending fails with
// *BusyError and never reaches the backend.
type Client struct {
	backend     Backend
	cache       TranslationCache
	state       *State
	logger      *zap.Logger
	defaultMIME string
	strict      bool
	busyHook    func(op Operation, busy bool)
	inflight    map[Operation]*atomic.Bool
}

// ClientOption is a functional option for configuring the Client.
type ClientOption func(*Client)

// WithCache caches successful translations.
func WithCache(cache TranslationCache) ClientOption {
	return func(c *Client) {
		c.cache = cache
	}
}

// WithState sets the state container the client writes into.
func WithState(state *State) ClientOption {
	return func(c *Client) {
		c.state = state
	}
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithDefaultAudioMIME sets the MIME type used when synthesized audio
// cannot be sniffed (default: audio/wav).
func WithDefaultAudioMIME(mime string) ClientOption {
	return func(c *Client) {
		c.defaultMIME = mime
	}
}

// WithStrictLanguages rejects languages outside the catalog before any
// request is sent.
func WithStrictLanguages() ClientOption {
	return func(c *Client) {
		c.strict = true
	}
}

// WithBusyHook registers a callback invoked on every busy-flag transition.
func WithBusyHook(fn func(op Operation, busy bool)) ClientOption {
	return func(c *Client) {
		c.busyHook = fn
	}
}

// NewClient creates a new Client backed by the given service.
func NewClient(backend Backend, opts ...ClientOption) *Client {
	c := &Client{
		backend:     backend,
		logger:      zap.NewNop(),
		defaultMIME: MIMEWav,
		inflight:    make(map[Operation]*atomic.Bool, len(Operations)),
	}
	for _, op := range Operations {
		c.inflight[op] = &atomic.Bool{}
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.state == nil {
		c.state = NewState(nil)
	}

	return c
}

// Translate translates text. On failure the displayed translation is left
// unchanged.
func (c *Client) Translate(ctx context.Context, req TranslationRequest) (string, error) {
	if err := c.begin(OpTranslate); err != nil {
		return "", err
	}
	defer c.end(OpTranslate)

	if err := c.validate(req.SourceLanguage, req.TargetLanguage); err != nil {
		return "", c.fail(OpTranslate, err)
	}

	key := CacheKey(HashText(req.Text), req.SourceLanguage, req.TargetLanguage)
	if c.cache != nil {
		if cached, ok := c.cache.Get(key); ok {
			c.logger.Debug("translation cache hit", zap.String("key", key))
			c.succeed(OpTranslate, cached)
			return cached, nil
		}
	}

	translated, err := c.backend.Translate(ctx, req)
	if err != nil {
		return "", c.fail(OpTranslate, err)
	}

	if translated == "" {
		c.logger.Warn("response carried no translated text",
			zap.String("op", string(OpTranslate)))
		c.succeed(OpTranslate, PlaceholderTranslation)
		return PlaceholderTranslation, nil
	}

	if c.cache != nil {
		if err := c.cache.Set(key, translated); err != nil {
			c.logger.Warn("caching translation failed", zap.Error(err))
		}
	}

	c.succeed(OpTranslate, translated)
	return translated, nil
}

// SynthesizeSpeech converts text to audio. The blob becomes the state's
// current audio, its URL field holds the registered URL, and the previous
// audio URL is revoked.
func (c *Client) SynthesizeSpeech(ctx context.Context, req SpeechRequest) (*AudioBlob, error) {
	if err := c.begin(OpSpeech); err != nil {
		return nil, err
	}
	defer c.end(OpSpeech)

	if err := c.validate(req.SourceLanguage, req.TargetLanguage); err != nil {
		return nil, c.fail(OpSpeech, err)
	}

	payload, err := c.backend.Synthesize(ctx, req)
	if err != nil {
		return nil, c.fail(OpSpeech, err)
	}

	blob, err := DecodeAudio(payload, c.defaultMIME)
	if err != nil {
		return nil, c.fail(OpSpeech, err)
	}

	url := c.state.SetAudio(blob)
	c.state.setError(OpSpeech, "")
	c.logger.Debug("synthesized audio",
		zap.String("url", url),
		zap.String("mime", blob.MIMEType),
		zap.Int("bytes", blob.Len()))

	return blob, nil
}

// TranscribeAndTranslate recognizes speech in the request audio and returns
// its translation. Without audio it fails with *MissingInputError and sends
// nothing.
func (c *Client) TranscribeAndTranslate(ctx context.Context, req TranscribeRequest) (string, error) {
	if err := c.begin(OpTranscribe); err != nil {
		return "", err
	}
	defer c.end(OpTranscribe)

	if len(req.Audio) == 0 {
		return "", c.fail(OpTranscribe, &MissingInputError{Operation: OpTranscribe, Field: "audio"})
	}

	if err := c.validate(req.SourceLanguage, req.TargetLanguage); err != nil {
		return "", c.fail(OpTranscribe, err)
	}

	result, err := c.backend.Transcribe(ctx, req)
	if err != nil {
		return "", c.fail(OpTranscribe, err)
	}

	c.state.setRecognizedText(result.RecognizedText)

	if result.TranslatedText == "" {
		c.logger.Warn("response carried no translated text",
			zap.String("op", string(OpTranscribe)))
		c.succeed(OpTranscribe, PlaceholderTranscription)
		return PlaceholderTranscription, nil
	}

	c.succeed(OpTranscribe, result.TranslatedText)
	return result.TranslatedText, nil
}

// Busy reports whether an operation is pending.
func (c *Client) Busy(op Operation) bool {
	flag, ok := c.inflight[op]
	return ok && flag.Load()
}

// BusyStates returns the busy flag of every operation.
func (c *Client) BusyStates() map[Operation]bool {
	out := make(map[Operation]bool, len(c.inflight))
	for op, flag := range c.inflight {
		out[op] = flag.Load()
	}
	return out
}

// State returns the state container.
func (c *Client) State() *State {
	return c.state
}

// Backend returns the underlying backend.
func (c *Client) Backend() Backend {
	return c.backend
}

func (c *Client) begin(op Operation) error {
	if !c.inflight[op].CompareAndSwap(false, true) {
		c.logger.Debug("operation already in progress", zap.String("op", string(op)))
		return &BusyError{Operation: op}
	}
	if c.busyHook != nil {
		c.busyHook(op, true)
	}
	return nil
}

func (c *Client) end(op Operation) {
	c.inflight[op].Store(false)
	if c.busyHook != nil {
		c.busyHook(op, false)
	}
}

func (c *Client) validate(langs ...string) error {
	if !c.strict {
		return nil
	}
	for _, code := range langs {
		if !IsSupported(code) {
			return &UnsupportedLanguageError{Code: code}
		}
	}
	return nil
}

func (c *Client) succeed(op Operation, translated string) {
	c.state.SetTranslatedText(translated)
	c.state.setError(op, "")
}

// fail logs err, records it as the operation's user-visible failure and
// returns it. Errors outside the package taxonomy are wrapped as
// *RemoteServiceError.
func (c *Client) fail(op Operation, err error) error {
	err = classify(op, err)
	c.logger.Error("operation failed", zap.String("op", string(op)), zap.Error(err))
	c.state.setError(op, err.Error())
	return err
}

func classify(op Operation, err error) error {
	var (
		missing     *MissingInputError
		remote      *RemoteServiceError
		decode      *DecodeError
		unsupported *UnsupportedLanguageError
	)
	switch {
	case errors.As(err, &missing), errors.As(err, &remote),
		errors.As(err, &decode), errors.As(err, &unsupported):
		return err
	}
	return &RemoteServiceError{
		Operation: op,
		Message:   "request failed",
		Cause:     err,
		Retryable: false,
	}
}
