package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/ZaguanLabs/agrivaani"
)

// ASREncoding selects how audio is sent to the ASR endpoint.
type ASREncoding string

const (
	// ASRMultipart uploads audio as a multipart form file (default).
	ASRMultipart ASREncoding = "multipart"
	// ASRBase64 sends audio base64-encoded inside a JSON body.
	ASRBase64 ASREncoding = "base64"
)

// Default endpoint paths of the Bhashini gateway.
const (
	DefaultTranslatePath = "/translate"
	DefaultTTSPath       = "/tts"
	DefaultASRPath       = "/asr_nmt"
	DefaultASRFileField  = "audio_file"
)

// maxErrorBody caps how much of an error response body is kept in errors.
const maxErrorBody = 512

// BhashiniProvider implements agrivaani.Backend against a Bhashini-style
// HTTP gateway.
type BhashiniProvider struct {
	client        *http.Client
	baseURL       string
	translatePath string
	ttsPath       string
	asrPath       string
	asrEncoding   ASREncoding
	asrFileField  string
	userAgent     string
}

// BhashiniConfig holds configuration for the Bhashini provider.
type BhashiniConfig struct {
	BaseURL       string       // Gateway base URL (required)
	TranslatePath string       // Translate endpoint (default: "/translate")
	TTSPath       string       // TTS endpoint (default: "/tts")
	ASRPath       string       // ASR endpoint (default: "/asr_nmt")
	ASREncoding   ASREncoding  // Audio encoding (default: multipart)
	ASRFileField  string       // Multipart file field (default: "audio_file")
	HTTPClient    *http.Client // HTTP client (default: http.DefaultClient)
	UserAgent     string       // User-Agent header (default: agrivaani/<version>)
}

// NewBhashiniProvider creates a new Bhashini provider.
func NewBhashiniProvider(cfg BhashiniConfig) *BhashiniProvider {
	p := &BhashiniProvider{
		client:        cfg.HTTPClient,
		baseURL:       strings.TrimRight(cfg.BaseURL, "/"),
		translatePath: orDefault(cfg.TranslatePath, DefaultTranslatePath),
		ttsPath:       orDefault(cfg.TTSPath, DefaultTTSPath),
		asrPath:       orDefault(cfg.ASRPath, DefaultASRPath),
		asrEncoding:   cfg.ASREncoding,
		asrFileField:  orDefault(cfg.ASRFileField, DefaultASRFileField),
		userAgent:     orDefault(cfg.UserAgent, agrivaani.UserAgent()),
	}
	if p.client == nil {
		p.client = http.DefaultClient
	}
	if p.asrEncoding == "" {
		p.asrEncoding = ASRMultipart
	}
	return p
}

type languagePair struct {
	SourceLanguage string `json:"source_language"`
	TargetLanguage string `json:"target_language"`
}

type textRequest struct {
	languagePair
	Text string `json:"text"`
}

type base64AudioRequest struct {
	languagePair
	AudioBase64 string `json:"audio_base64"`
}

type translationResponse struct {
	TranslatedText string `json:"translated_text"`
	RecognizedText string `json:"recognized_text"`
}

type speechResponse struct {
	AudioBase64  string `json:"audio_base64"`
	Base64String string `json:"base64_string"`
}

// Translate sends text to the translate endpoint.
func (p *BhashiniProvider) Translate(ctx context.Context, req TranslationRequest) (string, error) {
	body := textRequest{
		languagePair: languagePair{req.SourceLanguage, req.TargetLanguage},
		Text:         req.Text,
	}

	var resp translationResponse
	if err := p.postJSON(ctx, agrivaani.OpTranslate, p.translatePath, body, &resp); err != nil {
		return "", err
	}
	return resp.TranslatedText, nil
}

// Synthesize sends text to the TTS endpoint and returns the base64 audio.
func (p *BhashiniProvider) Synthesize(ctx context.Context, req SpeechRequest) (string, error) {
	body := textRequest{
		languagePair: languagePair{req.SourceLanguage, req.TargetLanguage},
		Text:         req.Text,
	}

	var resp speechResponse
	if err := p.postJSON(ctx, agrivaani.OpSpeech, p.ttsPath, body, &resp); err != nil {
		return "", err
	}

	if resp.AudioBase64 != "" {
		return resp.AudioBase64, nil
	}
	return resp.Base64String, nil
}

// Transcribe uploads audio to the ASR endpoint.
func (p *BhashiniProvider) Transcribe(ctx context.Context, req TranscribeRequest) (TranscribeResult, error) {
	if len(req.Audio) == 0 {
		return TranscribeResult{}, &agrivaani.MissingInputError{Operation: agrivaani.OpTranscribe, Field: "audio"}
	}

	var resp translationResponse
	var err error

	if p.asrEncoding == ASRBase64 {
		body := base64AudioRequest{
			languagePair: languagePair{req.SourceLanguage, req.TargetLanguage},
			AudioBase64:  agrivaani.EncodeAudio(req.Audio),
		}
		err = p.postJSON(ctx, agrivaani.OpTranscribe, p.asrPath, body, &resp)
	} else {
		err = p.postMultipart(ctx, req, &resp)
	}
	if err != nil {
		return TranscribeResult{}, err
	}

	return TranscribeResult{
		TranslatedText: resp.TranslatedText,
		RecognizedText: resp.RecognizedText,
	}, nil
}

func (p *BhashiniProvider) postJSON(ctx context.Context, op agrivaani.Operation, path string, body, out interface{}) error {
	data, err := json.Marshal(body)
	if err != nil {
		return &agrivaani.RemoteServiceError{Operation: op, Message: "encoding request", Cause: err}
	}
	return p.do(ctx, op, path, "application/json", bytes.NewReader(data), out)
}

func (p *BhashiniProvider) postMultipart(ctx context.Context, req TranscribeRequest, out interface{}) error {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	filename := req.Filename
	if filename == "" {
		filename = "audio" + (&agrivaani.AudioBlob{MIMEType: agrivaani.DetectAudioMIME(req.Audio, agrivaani.MIMEWav)}).Extension()
	}

	part, err := w.CreateFormFile(p.asrFileField, filename)
	if err == nil {
		_, err = part.Write(req.Audio)
	}
	if err == nil {
		err = w.WriteField("source_language", req.SourceLanguage)
	}
	if err == nil {
		err = w.WriteField("target_language", req.TargetLanguage)
	}
	if err == nil {
		err = w.Close()
	}
	if err != nil {
		return &agrivaani.RemoteServiceError{Operation: agrivaani.OpTranscribe, Message: "encoding form", Cause: err}
	}

	return p.do(ctx, agrivaani.OpTranscribe, p.asrPath, w.FormDataContentType(), &buf, out)
}

func (p *BhashiniProvider) do(ctx context.Context, op agrivaani.Operation, path, contentType string, body io.Reader, out interface{}) error {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+path, body)
	if err != nil {
		return &agrivaani.RemoteServiceError{Operation: op, Message: "building request", Cause: err}
	}
	httpReq.Header.Set("Content-Type", contentType)
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("User-Agent", p.userAgent)

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return &agrivaani.RemoteServiceError{
			Operation: op,
			Message:   "request failed",
			Cause:     err,
			Retryable: ctx.Err() == nil,
		}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		msg := strings.TrimSpace(string(snippet))
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return &agrivaani.RemoteServiceError{
			Operation:  op,
			StatusCode: resp.StatusCode,
			Message:    msg,
			Retryable:  isRetryableStatus(resp.StatusCode),
			RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After"), time.Now()),
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &agrivaani.RemoteServiceError{
			Operation:  op,
			StatusCode: resp.StatusCode,
			Message:    "invalid response body",
			Cause:      err,
		}
	}

	return nil
}

func isRetryableStatus(code int) bool {
	switch code {
	case http.StatusTooManyRequests, http.StatusBadGateway,
		http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return true
	}
	return false
}

// parseRetryAfter reads a Retry-After header given in seconds or as an
// HTTP date. Missing, malformed or past values yield 0.
func parseRetryAfter(v string, now time.Time) time.Duration {
	v = strings.TrimSpace(v)
	if v == "" {
		return 0
	}
	if secs, err := strconv.Atoi(v); err == nil {
		if secs <= 0 {
			return 0
		}
		return time.Duration(secs) * time.Second
	}
	if at, err := http.ParseTime(v); err == nil && at.After(now) {
		return at.Sub(now)
	}
	return 0
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

// BaseURL returns the gateway base URL.
func (p *BhashiniProvider) BaseURL() string {
	return p.baseURL
}

// Verify BhashiniProvider implements Backend
var _ Backend = (*BhashiniProvider)(nil)

// String describes the provider for logs.
func (p *BhashiniProvider) String() string {
	return fmt.Sprintf("bhashini(%s)", p.baseURL)
}
