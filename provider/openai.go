package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/ZaguanLabs/agrivaani"
	"github.com/sashabaranov/go-openai"
)

// OpenAIProvider implements agrivaani.Backend using OpenAI's chat, speech
// and transcription APIs.
type OpenAIProvider struct {
	client      *openai.Client
	model       string
	ttsModel    openai.SpeechModel
	voice       openai.SpeechVoice
	asrModel    string
	temperature float32
}

// OpenAIConfig holds configuration for the OpenAI provider.
type OpenAIConfig struct {
	APIKey      string  // OpenAI API key
	Model       string  // Chat model for translation (default: "gpt-4o-mini")
	TTSModel    string  // Speech model (default: "tts-1")
	Voice       string  // Speech voice (default: "alloy")
	ASRModel    string  // Transcription model (default: "whisper-1")
	Temperature float32 // Temperature for generation (default: 0.3)
	BaseURL     string  // Custom base URL (optional)
}

// NewOpenAIProvider creates a new OpenAI provider.
func NewOpenAIProvider(cfg OpenAIConfig) *OpenAIProvider {
	config := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		config.BaseURL = cfg.BaseURL
	}

	temperature := cfg.Temperature
	if temperature == 0 {
		temperature = 0.3
	}

	return &OpenAIProvider{
		client:      openai.NewClientWithConfig(config),
		model:       orDefault(cfg.Model, "gpt-4o-mini"),
		ttsModel:    openai.SpeechModel(orDefault(cfg.TTSModel, string(openai.TTSModel1))),
		voice:       openai.SpeechVoice(orDefault(cfg.Voice, string(openai.VoiceAlloy))),
		asrModel:    orDefault(cfg.ASRModel, openai.Whisper1),
		temperature: temperature,
	}
}

// Translate translates text with a chat completion.
func (p *OpenAIProvider) Translate(ctx context.Context, req TranslationRequest) (string, error) {
	if strings.TrimSpace(req.Text) == "" {
		return "", nil
	}

	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: p.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: buildSystemPrompt(req.SourceLanguage, req.TargetLanguage)},
			{Role: openai.ChatMessageRoleUser, Content: req.Text},
		},
		Temperature: p.temperature,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		return "", openAIError(agrivaani.OpTranslate, "chat completion failed", err)
	}

	if len(resp.Choices) == 0 {
		return "", &agrivaani.RemoteServiceError{
			Operation: agrivaani.OpTranslate,
			Message:   "no response from OpenAI",
			Retryable: true,
		}
	}

	return parseTranslation(resp.Choices[0].Message.Content)
}

// Synthesize converts text to WAV speech and returns it base64-encoded.
func (p *OpenAIProvider) Synthesize(ctx context.Context, req SpeechRequest) (string, error) {
	resp, err := p.client.CreateSpeech(ctx, openai.CreateSpeechRequest{
		Model:          p.ttsModel,
		Input:          req.Text,
		Voice:          p.voice,
		ResponseFormat: openai.SpeechResponseFormatWav,
	})
	if err != nil {
		return "", openAIError(agrivaani.OpSpeech, "speech request failed", err)
	}
	defer resp.Close()

	audio, err := io.ReadAll(resp)
	if err != nil {
		return "", &agrivaani.RemoteServiceError{
			Operation: agrivaani.OpSpeech,
			Message:   "reading speech response",
			Cause:     err,
			Retryable: true,
		}
	}

	return agrivaani.EncodeAudio(audio), nil
}

// Transcribe transcribes audio with Whisper, then translates the transcript.
func (p *OpenAIProvider) Transcribe(ctx context.Context, req TranscribeRequest) (TranscribeResult, error) {
	if len(req.Audio) == 0 {
		return TranscribeResult{}, &agrivaani.MissingInputError{Operation: agrivaani.OpTranscribe, Field: "audio"}
	}

	filename := req.Filename
	if filename == "" {
		filename = "audio" + (&agrivaani.AudioBlob{MIMEType: agrivaani.DetectAudioMIME(req.Audio, agrivaani.MIMEWav)}).Extension()
	}

	resp, err := p.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    p.asrModel,
		Reader:   bytes.NewReader(req.Audio),
		FilePath: filename,
		Language: agrivaani.NormalizeLanguage(req.SourceLanguage),
	})
	if err != nil {
		return TranscribeResult{}, openAIError(agrivaani.OpTranscribe, "transcription failed", err)
	}

	result := TranscribeResult{RecognizedText: strings.TrimSpace(resp.Text)}
	if result.RecognizedText == "" {
		return result, nil
	}

	if agrivaani.NormalizeLanguage(req.SourceLanguage) == agrivaani.NormalizeLanguage(req.TargetLanguage) {
		result.TranslatedText = result.RecognizedText
		return result, nil
	}

	translated, err := p.Translate(ctx, TranslationRequest{
		SourceLanguage: req.SourceLanguage,
		TargetLanguage: req.TargetLanguage,
		Text:           result.RecognizedText,
	})
	if err != nil {
		var remote *agrivaani.RemoteServiceError
		if errors.As(err, &remote) {
			remote.Operation = agrivaani.OpTranscribe
		}
		return TranscribeResult{}, err
	}
	result.TranslatedText = translated

	return result, nil
}

func buildSystemPrompt(sourceLang, targetLang string) string {
	if sourceLang == "" {
		sourceLang = agrivaani.DefaultSourceLanguage
	}

	return fmt.Sprintf(`# Role
You are an expert translator for farmers and agricultural extension workers in India.

# Task
Translate the user's text from %s to %s.

# Style Guide
- Use simple, everyday vocabulary a farmer would use.
- Keep crop names, units and numbers accurate.
- Write in the native script of the target language (%s).

# Format
Return a valid JSON object with a single key "translation" holding the translated string.
Example: { "translation": "..." }
- Do NOT wrap in Markdown code blocks.`,
		agrivaani.LanguageLabel(sourceLang),
		agrivaani.LanguageLabel(targetLang),
		agrivaani.ScriptTag(targetLang))
}

func parseTranslation(content string) (string, error) {
	var obj map[string]interface{}
	if err := json.Unmarshal([]byte(content), &obj); err == nil {
		if s, ok := obj["translation"].(string); ok {
			return s, nil
		}
		// Fallback: first string value
		for _, v := range obj {
			if s, ok := v.(string); ok {
				return s, nil
			}
		}
		return "", nil
	}

	return "", &agrivaani.RemoteServiceError{
		Operation: agrivaani.OpTranslate,
		Message:   "invalid response format from OpenAI",
		Retryable: false,
	}
}

func openAIError(op agrivaani.Operation, msg string, err error) error {
	remote := &agrivaani.RemoteServiceError{
		Operation: op,
		Message:   msg,
		Cause:     err,
		Retryable: isRetryableError(err),
	}

	var apiErr *openai.APIError
	var reqErr *openai.RequestError
	switch {
	case errors.As(err, &apiErr):
		remote.StatusCode = apiErr.HTTPStatusCode
	case errors.As(err, &reqErr):
		remote.StatusCode = reqErr.HTTPStatusCode
	}
	if remote.StatusCode != 0 {
		remote.Retryable = isRetryableStatus(remote.StatusCode) || remote.StatusCode == 500
	}

	return remote
}

func isRetryableError(err error) bool {
	errStr := strings.ToLower(err.Error())
	retryablePatterns := []string{
		"rate limit",
		"timeout",
		"connection refused",
		"temporary",
	}

	for _, pattern := range retryablePatterns {
		if strings.Contains(errStr, pattern) {
			return true
		}
	}
	return false
}

// Verify OpenAIProvider implements Backend
var _ Backend = (*OpenAIProvider)(nil)
