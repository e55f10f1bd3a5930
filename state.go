package agrivaani

import "sync"

// State is the explicit UI state container the client writes into.
// It is safe for concurrent use.
type State struct {
	mu             sync.RWMutex
	text           string
	translatedText string
	recognizedText string
	audioURL       string
	theme          Theme
	errors         map[Operation]string
	urls           *AudioURLs
}

// StateSnapshot is a point-in-time copy of State for presentation.
type StateSnapshot struct {
	Text           string               `json:"text"`
	TranslatedText string               `json:"translated_text"`
	RecognizedText string               `json:"recognized_text,omitempty"`
	AudioURL       string               `json:"audio_url,omitempty"`
	Theme          Theme                `json:"theme"`
	Errors         map[Operation]string `json:"errors,omitempty"`
}

// NewState creates a state container. A nil registry gets a fresh one.
func NewState(urls *AudioURLs) *State {
	if urls == nil {
		urls = NewAudioURLs()
	}
	return &State{
		theme:  ThemeLight,
		errors: make(map[Operation]string),
		urls:   urls,
	}
}

// SetText sets the input text.
func (s *State) SetText(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.text = text
}

// Text returns the input text.
func (s *State) Text() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.text
}

// SetTranslatedText sets the displayed translation.
func (s *State) SetTranslatedText(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.translatedText = text
}

// TranslatedText returns the displayed translation.
func (s *State) TranslatedText() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.translatedText
}

// RecognizedText returns the last transcript, if the backend returned one.
func (s *State) RecognizedText() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.recognizedText
}

func (s *State) setRecognizedText(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.recognizedText = text
}

// SetAudio registers blob as the current audio and revokes the previous URL.
func (s *State) SetAudio(blob *AudioBlob) string {
	url := s.urls.Create(blob)

	s.mu.Lock()
	prev := s.audioURL
	s.audioURL = url
	s.mu.Unlock()

	s.urls.Revoke(prev)
	return url
}

// AudioURL returns the URL of the current audio, or "" if none.
func (s *State) AudioURL() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.audioURL
}

// Audio returns the current audio blob.
func (s *State) Audio() (*AudioBlob, bool) {
	url := s.AudioURL()
	if url == "" {
		return nil, false
	}
	return s.urls.Resolve(url)
}

// AudioURLs returns the registry backing audio URLs.
func (s *State) AudioURLs() *AudioURLs {
	return s.urls
}

// SetTheme sets the theme.
func (s *State) SetTheme(theme Theme) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.theme = theme
}

// Theme returns the theme.
func (s *State) Theme() Theme {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.theme
}

// LastError returns the user-visible failure message of an operation, or ""
// if its last call succeeded.
func (s *State) LastError(op Operation) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.errors[op]
}

func (s *State) setError(op Operation, msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if msg == "" {
		delete(s.errors, op)
		return
	}
	s.errors[op] = msg
}

// Snapshot returns a copy of the state.
func (s *State) Snapshot() StateSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	errs := make(map[Operation]string, len(s.errors))
	for op, msg := range s.errors {
		errs[op] = msg
	}

	return StateSnapshot{
		Text:           s.text,
		TranslatedText: s.translatedText,
		RecognizedText: s.recognizedText,
		AudioURL:       s.audioURL,
		Theme:          s.theme,
		Errors:         errs,
	}
}

// Close revokes the current audio URL.
func (s *State) Close() {
	s.mu.Lock()
	url := s.audioURL
	s.audioURL = ""
	s.mu.Unlock()

	s.urls.Revoke(url)
}
