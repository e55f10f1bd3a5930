package provider

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ZaguanLabs/agrivaani"
)

func newBhashiniTestServer(t *testing.T, cfg BhashiniConfig, handler http.HandlerFunc) *BhashiniProvider {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	cfg.BaseURL = srv.URL + "/"
	return NewBhashiniProvider(cfg)
}

func TestBhashiniProvider_Translate(t *testing.T) {
	p := newBhashiniTestServer(t, BhashiniConfig{}, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/translate" {
			t.Errorf("unexpected %s %s", r.Method, r.URL.Path)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("Content-Type = %q", ct)
		}
		if ua := r.Header.Get("User-Agent"); ua != agrivaani.UserAgent() {
			t.Errorf("User-Agent = %q", ua)
		}

		var body map[string]string
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		if body["source_language"] != "en" || body["target_language"] != "hi" || body["text"] != "Hello" {
			t.Errorf("unexpected body %v", body)
		}

		json.NewEncoder(w).Encode(map[string]string{"translated_text": "नमस्ते"})
	})

	got, err := p.Translate(context.Background(), TranslationRequest{SourceLanguage: "en", TargetLanguage: "hi", Text: "Hello"})
	if err != nil {
		t.Fatalf("Translate failed: %v", err)
	}
	if got != "नमस्ते" {
		t.Errorf("got %q, want %q", got, "नमस्ते")
	}
}

func TestBhashiniProvider_TranslateMissingField(t *testing.T) {
	p := newBhashiniTestServer(t, BhashiniConfig{}, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status": "ok"}`))
	})

	got, err := p.Translate(context.Background(), TranslationRequest{Text: "Hello"})
	if err != nil {
		t.Fatalf("missing field should not be an error: %v", err)
	}
	if got != "" {
		t.Errorf("got %q, want empty", got)
	}
}

func TestBhashiniProvider_HTTPErrors(t *testing.T) {
	tests := []struct {
		status    int
		body      string
		retryable bool
		message   string
	}{
		{http.StatusInternalServerError, "boom", false, "boom"},
		{http.StatusServiceUnavailable, "", true, "Service Unavailable"},
		{http.StatusTooManyRequests, "slow down", true, "slow down"},
		{http.StatusBadRequest, "bad language", false, "bad language"},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			p := newBhashiniTestServer(t, BhashiniConfig{}, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			})

			_, err := p.Translate(context.Background(), TranslationRequest{Text: "Hello"})

			var remote *agrivaani.RemoteServiceError
			if !errors.As(err, &remote) {
				t.Fatalf("expected RemoteServiceError, got %T: %v", err, err)
			}
			if remote.StatusCode != tt.status {
				t.Errorf("StatusCode = %d, want %d", remote.StatusCode, tt.status)
			}
			if remote.Retryable != tt.retryable {
				t.Errorf("Retryable = %v, want %v", remote.Retryable, tt.retryable)
			}
			if remote.Message != tt.message {
				t.Errorf("Message = %q, want %q", remote.Message, tt.message)
			}
			if remote.Operation != agrivaani.OpTranslate {
				t.Errorf("Operation = %q", remote.Operation)
			}
		})
	}
}

func TestBhashiniProvider_RetryAfter(t *testing.T) {
	p := newBhashiniTestServer(t, BhashiniConfig{}, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "7")
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	_, err := p.Synthesize(context.Background(), SpeechRequest{Text: "नमस्ते"})

	var remote *agrivaani.RemoteServiceError
	if !errors.As(err, &remote) {
		t.Fatalf("expected RemoteServiceError, got %v", err)
	}
	if remote.RetryAfter != 7*time.Second {
		t.Errorf("RetryAfter = %v, want 7s", remote.RetryAfter)
	}
	if !remote.Retryable {
		t.Error("503 should be retryable")
	}
}

func TestParseRetryAfter(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name  string
		value string
		want  time.Duration
	}{
		{"empty", "", 0},
		{"seconds", "30", 30 * time.Second},
		{"padded", " 2 ", 2 * time.Second},
		{"zero", "0", 0},
		{"negative", "-5", 0},
		{"http date", now.Add(90 * time.Second).Format(http.TimeFormat), 90 * time.Second},
		{"past date", now.Add(-time.Minute).Format(http.TimeFormat), 0},
		{"garbage", "soon", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := parseRetryAfter(tt.value, now); got != tt.want {
				t.Errorf("parseRetryAfter(%q) = %v, want %v", tt.value, got, tt.want)
			}
		})
	}
}

func TestBhashiniProvider_InvalidJSON(t *testing.T) {
	p := newBhashiniTestServer(t, BhashiniConfig{}, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html>gateway</html>`))
	})

	_, err := p.Translate(context.Background(), TranslationRequest{Text: "Hello"})

	var remote *agrivaani.RemoteServiceError
	if !errors.As(err, &remote) {
		t.Fatalf("expected RemoteServiceError, got %v", err)
	}
}

func TestBhashiniProvider_NetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	p := NewBhashiniProvider(BhashiniConfig{BaseURL: url})
	_, err := p.Translate(context.Background(), TranslationRequest{Text: "Hello"})

	var remote *agrivaani.RemoteServiceError
	if !errors.As(err, &remote) {
		t.Fatalf("expected RemoteServiceError, got %v", err)
	}
	if remote.StatusCode != 0 {
		t.Errorf("StatusCode = %d, want 0", remote.StatusCode)
	}
}

func TestBhashiniProvider_Synthesize(t *testing.T) {
	want := base64.StdEncoding.EncodeToString(silentWAV)

	p := newBhashiniTestServer(t, BhashiniConfig{}, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/tts" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		json.NewEncoder(w).Encode(map[string]string{"audio_base64": want})
	})

	got, err := p.Synthesize(context.Background(), SpeechRequest{SourceLanguage: "en", TargetLanguage: "hi", Text: "नमस्ते"})
	if err != nil {
		t.Fatalf("Synthesize failed: %v", err)
	}
	if got != want {
		t.Error("payload mismatch")
	}
}

func TestBhashiniProvider_SynthesizeLegacyField(t *testing.T) {
	p := newBhashiniTestServer(t, BhashiniConfig{TTSPath: "/v2/tts"}, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v2/tts" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		json.NewEncoder(w).Encode(map[string]string{"base64_string": "AAAA"})
	})

	got, err := p.Synthesize(context.Background(), SpeechRequest{Text: "x"})
	if err != nil {
		t.Fatalf("Synthesize failed: %v", err)
	}
	if got != "AAAA" {
		t.Errorf("got %q", got)
	}
}

func TestBhashiniProvider_TranscribeMultipart(t *testing.T) {
	p := newBhashiniTestServer(t, BhashiniConfig{}, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/asr_nmt" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Fatalf("ParseMultipartForm: %v", err)
		}
		if r.FormValue("source_language") != "hi" || r.FormValue("target_language") != "en" {
			t.Errorf("unexpected languages %v", r.MultipartForm.Value)
		}

		f, hdr, err := r.FormFile("audio_file")
		if err != nil {
			t.Fatalf("FormFile: %v", err)
		}
		defer f.Close()
		data, _ := io.ReadAll(f)
		if len(data) != len(silentWAV) {
			t.Errorf("uploaded %d bytes, want %d", len(data), len(silentWAV))
		}
		if hdr.Filename != "question.wav" {
			t.Errorf("filename = %q", hdr.Filename)
		}

		json.NewEncoder(w).Encode(map[string]string{
			"recognized_text": "मुझे धान कब बोना चाहिए?",
			"translated_text": "When should I sow rice?",
		})
	})

	res, err := p.Transcribe(context.Background(), TranscribeRequest{
		SourceLanguage: "hi",
		TargetLanguage: "en",
		Audio:          silentWAV,
		Filename:       "question.wav",
	})
	if err != nil {
		t.Fatalf("Transcribe failed: %v", err)
	}
	if res.TranslatedText != "When should I sow rice?" || res.RecognizedText != "मुझे धान कब बोना चाहिए?" {
		t.Errorf("unexpected result %+v", res)
	}
}

func TestBhashiniProvider_TranscribeCustomField(t *testing.T) {
	p := newBhashiniTestServer(t, BhashiniConfig{ASRPath: "/asr", ASRFileField: "file"}, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/asr" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if _, hdr, err := r.FormFile("file"); err != nil {
			t.Errorf("FormFile(file): %v", err)
		} else if hdr.Filename != "audio.wav" {
			t.Errorf("default filename = %q", hdr.Filename)
		}
		json.NewEncoder(w).Encode(map[string]string{"translated_text": "ok"})
	})

	if _, err := p.Transcribe(context.Background(), TranscribeRequest{Audio: silentWAV}); err != nil {
		t.Fatalf("Transcribe failed: %v", err)
	}
}

func TestBhashiniProvider_TranscribeBase64(t *testing.T) {
	p := newBhashiniTestServer(t, BhashiniConfig{ASREncoding: ASRBase64}, func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		raw, err := base64.StdEncoding.DecodeString(body["audio_base64"])
		if err != nil || len(raw) != len(silentWAV) {
			t.Errorf("bad audio_base64 (%d bytes, %v)", len(raw), err)
		}
		if body["source_language"] != "hi" {
			t.Errorf("source_language = %q", body["source_language"])
		}
		json.NewEncoder(w).Encode(map[string]string{"translated_text": "Water"})
	})

	res, err := p.Transcribe(context.Background(), TranscribeRequest{SourceLanguage: "hi", TargetLanguage: "en", Audio: silentWAV})
	if err != nil {
		t.Fatalf("Transcribe failed: %v", err)
	}
	if res.TranslatedText != "Water" {
		t.Errorf("got %q", res.TranslatedText)
	}
}

func TestBhashiniProvider_TranscribeNoAudio(t *testing.T) {
	p := newBhashiniTestServer(t, BhashiniConfig{}, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected without audio")
	})

	_, err := p.Transcribe(context.Background(), TranscribeRequest{})

	var missing *agrivaani.MissingInputError
	if !errors.As(err, &missing) {
		t.Errorf("expected MissingInputError, got %v", err)
	}
}

func TestMockProvider(t *testing.T) {
	m := NewMockProvider()

	got, err := m.Translate(context.Background(), TranslationRequest{Text: "Hello", TargetLanguage: "hi"})
	if err != nil {
		t.Fatalf("Translate failed: %v", err)
	}
	if got != "नमस्ते" {
		t.Errorf("Expected 'नमस्ते', got %q", got)
	}

	got, _ = m.Translate(context.Background(), TranslationRequest{Text: "Unknown text"})
	if got != "[Unknown text]" {
		t.Errorf("Expected '[Unknown text]', got %q", got)
	}

	if m.Calls() != 2 {
		t.Errorf("Expected 2 calls, got %d", m.Calls())
	}

	m.Err = errors.New("down")
	if _, err := m.Synthesize(context.Background(), SpeechRequest{}); err == nil {
		t.Error("Expected configured error")
	}

	m.Reset()
	if m.Calls() != 0 || m.LastRequest != nil {
		t.Error("Reset should clear call tracking")
	}
}
