package agrivaani

import (
	"errors"
	"testing"
)

func TestMissingInputError(t *testing.T) {
	err := &MissingInputError{Operation: OpTranscribe, Field: "audio"}

	if err.Error() != "asr: missing input: audio" {
		t.Errorf("unexpected error message: %s", err.Error())
	}
}

func TestRemoteServiceError(t *testing.T) {
	cause := errors.New("connection refused")
	err := &RemoteServiceError{Operation: OpTranslate, Message: "request failed", Cause: cause, Retryable: true}

	if err.Error() != "remote service error (translate): request failed: connection refused" {
		t.Errorf("unexpected error message: %s", err.Error())
	}

	if err.Unwrap() != cause {
		t.Error("Unwrap() should return the cause")
	}

	// With status
	err2 := &RemoteServiceError{Operation: OpSpeech, StatusCode: 500, Message: "Internal Server Error"}
	if err2.Error() != "remote service error (tts): status 500: Internal Server Error" {
		t.Errorf("unexpected error message: %s", err2.Error())
	}
}

func TestDecodeError(t *testing.T) {
	err := &DecodeError{Message: "empty audio payload"}

	if err.Error() != "decode error: empty audio payload" {
		t.Errorf("unexpected error message: %s", err.Error())
	}

	cause := errors.New("illegal base64 data at input byte 3")
	err2 := &DecodeError{Message: "invalid base64 audio payload", Cause: cause}
	if !errors.Is(err2, cause) {
		t.Error("DecodeError should unwrap to its cause")
	}
}

func TestBusyError(t *testing.T) {
	err := &BusyError{Operation: OpSpeech}

	if err.Error() != "tts: operation already in progress" {
		t.Errorf("unexpected error message: %s", err.Error())
	}
}

func TestUnsupportedLanguageError(t *testing.T) {
	err := &UnsupportedLanguageError{Code: "xx"}

	if err.Error() != `unsupported language: "xx"` {
		t.Errorf("unexpected error message: %s", err.Error())
	}
}

func TestCacheError(t *testing.T) {
	err := &CacheError{Message: "connection failed"}

	if err.Error() != "cache error: connection failed" {
		t.Errorf("unexpected error message: %s", err.Error())
	}
}

func TestProcessorError(t *testing.T) {
	err := &ProcessorError{Message: "parse failed", ContentType: "html"}

	if err.Error() != "processor error (html): parse failed" {
		t.Errorf("unexpected error message: %s", err.Error())
	}
}
