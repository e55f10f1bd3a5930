package provider

import (
	"context"
	"fmt"
	"sync"

	"github.com/ZaguanLabs/agrivaani"
)

// silentWAV is a 44-byte WAV header followed by four zero samples.
var silentWAV = []byte{
	'R', 'I', 'F', 'F', 44, 0, 0, 0, 'W', 'A', 'V', 'E',
	'f', 'm', 't', ' ', 16, 0, 0, 0, 1, 0, 1, 0,
	0x80, 0x3e, 0, 0, 0, 0x7d, 0, 0, 2, 0, 16, 0,
	'd', 'a', 't', 'a', 8, 0, 0, 0,
	0, 0, 0, 0, 0, 0, 0, 0,
}

// MockProvider is a deterministic in-memory backend for testing and dry runs.
type MockProvider struct {
	mu sync.Mutex

	Translations map[string]string // Map of source text to translation
	Audio        []byte            // Audio returned by Synthesize (base64-encoded on the way out)
	Transcript   string            // RecognizedText returned by Transcribe
	Err          error             // When set, every call fails with it

	CallCount   int         // Number of backend calls of any kind
	LastRequest interface{} // Last request received
}

// NewMockProvider creates a new mock provider with default translations.
func NewMockProvider() *MockProvider {
	return &MockProvider{
		Translations: map[string]string{
			"Hello":                   "नमस्ते",
			"Water":                   "पानी",
			"Thank you":               "धन्यवाद",
			"When should I sow rice?": "मुझे धान कब बोना चाहिए?",
		},
		Audio:      silentWAV,
		Transcript: "When should I sow rice?",
	}
}

func (m *MockProvider) record(req interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CallCount++
	m.LastRequest = req
	return m.Err
}

func (m *MockProvider) lookup(text string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if translation, ok := m.Translations[text]; ok {
		return translation
	}
	// Return bracketed text for unknown translations
	return fmt.Sprintf("[%s]", text)
}

// Translate returns mock translations.
func (m *MockProvider) Translate(ctx context.Context, req TranslationRequest) (string, error) {
	if err := m.record(req); err != nil {
		return "", err
	}
	return m.lookup(req.Text), nil
}

// Synthesize returns the configured audio, base64-encoded.
func (m *MockProvider) Synthesize(ctx context.Context, req SpeechRequest) (string, error) {
	if err := m.record(req); err != nil {
		return "", err
	}
	return agrivaani.EncodeAudio(m.Audio), nil
}

// Transcribe returns the configured transcript and its translation.
func (m *MockProvider) Transcribe(ctx context.Context, req TranscribeRequest) (TranscribeResult, error) {
	if err := m.record(req); err != nil {
		return TranscribeResult{}, err
	}
	return TranscribeResult{
		RecognizedText: m.Transcript,
		TranslatedText: m.lookup(m.Transcript),
	}, nil
}

// Calls returns the number of backend calls so far.
func (m *MockProvider) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.CallCount
}

// Reset resets the call count and last request.
func (m *MockProvider) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CallCount = 0
	m.LastRequest = nil
}

// Verify MockProvider implements Backend
var _ Backend = (*MockProvider)(nil)
