package agrivaani

import "context"

// Backend is the interface for remote translation/TTS/ASR services.
//
// Translate returns an empty string when the service response carries no
// translated text. Synthesize returns the base64 audio payload exactly as the
// service sent it; decoding is left to the caller.
type Backend interface {
	Translate(ctx context.Context, req TranslationRequest) (string, error)
	Synthesize(ctx context.Context, req SpeechRequest) (string, error)
	Transcribe(ctx context.Context, req TranscribeRequest) (TranscribeResult, error)
}

// TranslationCache is the interface for translation caching.
type TranslationCache interface {
	Get(key string) (string, bool)
	Set(key string, value string) error
}

// ContentProcessor is the interface for document content processing.
type ContentProcessor interface {
	Extract(content string) (interface{}, []TextNode, error)
	Apply(parsed interface{}, nodes []TextNode, translations map[string]string) (string, error)
	ContentType() string
}
