package agrivaani

// Operation identifies one of the three remote operations of the client.
type Operation string

const (
	// OpTranslate translates text between two languages.
	OpTranslate Operation = "translate"
	// OpSpeech synthesizes speech from text.
	OpSpeech Operation = "tts"
	// OpTranscribe recognizes speech in audio and translates the transcript.
	OpTranscribe Operation = "asr"
)

// Operations lists all operations in display order.
var Operations = []Operation{OpTranslate, OpSpeech, OpTranscribe}

// LanguageOption is a selectable language in the static catalog.
type LanguageOption struct {
	Code  string `json:"code"`  // Short language code (e.g., "hi")
	Label string `json:"label"` // Display name (e.g., "Hindi")
}

// TranslationRequest holds the parameters for a text translation.
type TranslationRequest struct {
	SourceLanguage string
	TargetLanguage string
	Text           string
}

// SpeechRequest holds the parameters for speech synthesis.
type SpeechRequest struct {
	SourceLanguage string
	TargetLanguage string
	Text           string
}

// TranscribeRequest holds the parameters for speech recognition plus translation.
type TranscribeRequest struct {
	SourceLanguage string
	TargetLanguage string
	Audio          []byte // Raw audio file contents
	Filename       string // Original filename, sent with multipart uploads
}

// TranscribeResult is the backend response for a transcription.
type TranscribeResult struct {
	TranslatedText string // Translation of the transcript (may be empty)
	RecognizedText string // Transcript in the source language, when the backend returns it
}

// ResultKind discriminates OperationResult values.
type ResultKind string

const (
	// KindSuccess marks a result carrying a payload.
	KindSuccess ResultKind = "success"
	// KindError marks a result carrying an error message.
	KindError ResultKind = "error"
)

// Result is the outcome of an operation as seen by a presentation layer.
type Result[T any] struct {
	Kind    ResultKind `json:"kind"`
	Payload T          `json:"payload,omitempty"`
	Message string     `json:"message,omitempty"`
}

// ResultOf converts a (value, error) pair into a Result.
func ResultOf[T any](payload T, err error) Result[T] {
	if err != nil {
		return Result[T]{Kind: KindError, Message: err.Error()}
	}
	return Result[T]{Kind: KindSuccess, Payload: payload}
}

// OK reports whether the result is a success.
func (r Result[T]) OK() bool {
	return r.Kind == KindSuccess
}

// TextNode represents a translatable unit of document content.
type TextNode struct {
	ID       string            // Position-based identifier
	Text     string            // Original text content (trimmed)
	Hash     string            // SHA-256 hash of Text
	NodeType string            // Content type: "html_text"
	Context  string            // Where the text appears in the document
	Metadata map[string]string // Additional info (parent tag, etc.)
}

// ProcessedContent is the result of a document translation.
type ProcessedContent struct {
	Content         string // Translated content
	TranslatedCount int    // Number of newly translated items
	CachedCount     int    // Number of cache hits
	TotalNodes      int    // Total translatable nodes found
}

// RTLLanguages contains language codes that use right-to-left text direction.
var RTLLanguages = map[string]bool{
	"ar": true, // Arabic
	"fa": true, // Persian
	"ks": true, // Kashmiri
	"sd": true, // Sindhi
	"ur": true, // Urdu
}

// IgnoredTags contains HTML tags whose content should not be translated.
var IgnoredTags = map[string]bool{
	"script":   true,
	"style":    true,
	"code":     true,
	"pre":      true,
	"textarea": true,
	"noscript": true,
}

// Placeholder messages stored in State when a response lacks translated text.
const (
	PlaceholderTranslation   = "Your translated text will appear here."
	PlaceholderTranscription = "Error: No translated text returned from ASR"
)
