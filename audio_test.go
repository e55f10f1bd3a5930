package agrivaani

import (
	"bytes"
	"encoding/base64"
	"errors"
	"io"
	"testing"
)

func TestDecodeAudio_RoundTrip(t *testing.T) {
	raw := []byte{0x00, 0x01, 0x02, 0xfe, 0xff, 0x10, 0x20}

	blob, err := DecodeAudio(EncodeAudio(raw), "")
	if err != nil {
		t.Fatalf("DecodeAudio failed: %v", err)
	}
	if blob.Len() != len(raw) {
		t.Errorf("length = %d, want %d", blob.Len(), len(raw))
	}
	if !bytes.Equal(blob.Data, raw) {
		t.Error("decoded bytes differ from input")
	}
	if blob.MIMEType != MIMEWav {
		t.Errorf("MIME = %q, want default %q", blob.MIMEType, MIMEWav)
	}
}

func TestDecodeAudio_WAVHeader(t *testing.T) {
	blob, err := DecodeAudio(base64.StdEncoding.EncodeToString(testWAV()), MIMEMpeg)
	if err != nil {
		t.Fatalf("DecodeAudio failed: %v", err)
	}
	if blob.Len() != 44 {
		t.Errorf("length = %d, want 44", blob.Len())
	}
	if blob.MIMEType != MIMEWav {
		t.Errorf("sniffed MIME = %q, want %q", blob.MIMEType, MIMEWav)
	}

	data, _ := io.ReadAll(blob.Reader())
	if len(data) != 44 {
		t.Errorf("reader returned %d bytes", len(data))
	}
}

func TestDecodeAudio_Variants(t *testing.T) {
	wav := testWAV()
	padded := base64.StdEncoding.EncodeToString([]byte("abcd"))

	tests := []struct {
		name    string
		payload string
		want    int
	}{
		{"data url", "data:audio/wav;base64," + base64.StdEncoding.EncodeToString(wav), 44},
		{"surrounding whitespace", "\n " + padded + " \n", 4},
		{"unpadded", base64.RawStdEncoding.EncodeToString([]byte("abcde")), 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			blob, err := DecodeAudio(tt.payload, "")
			if err != nil {
				t.Fatalf("DecodeAudio failed: %v", err)
			}
			if blob.Len() != tt.want {
				t.Errorf("length = %d, want %d", blob.Len(), tt.want)
			}
		})
	}
}

func TestDecodeAudio_Errors(t *testing.T) {
	tests := []struct {
		name    string
		payload string
	}{
		{"empty", ""},
		{"blank", "   "},
		{"malformed data url", "data:audio/wav;base64"},
		{"invalid characters", "not base64 !!"},
		{"short padding", "QQ="},
		{"extra padding", "QQ==="},
		{"padding on full quantum", "QUJD="},
		{"single pad after two bytes", "QUJDRA="},
		{"padding mid payload", "QQ==QUJD"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeAudio(tt.payload, "")
			var decode *DecodeError
			if !errors.As(err, &decode) {
				t.Errorf("expected DecodeError, got %v", err)
			}
		})
	}
}

func TestDetectAudioMIME(t *testing.T) {
	tests := []struct {
		name     string
		data     []byte
		expected string
	}{
		{"wav", testWAV(), MIMEWav},
		{"mp3 id3", []byte("ID3\x04\x00"), MIMEMpeg},
		{"mp3 frame", []byte{0xFF, 0xFB, 0x90, 0x00}, MIMEMpeg},
		{"ogg", []byte("OggS\x00\x02"), MIMEOgg},
		{"flac", []byte("fLaC\x00\x00"), MIMEFlac},
		{"unknown", []byte("hello"), "fallback"},
		{"empty", nil, "fallback"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DetectAudioMIME(tt.data, "fallback"); got != tt.expected {
				t.Errorf("DetectAudioMIME() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestAudioBlob_Extension(t *testing.T) {
	tests := map[string]string{
		MIMEWav:  ".wav",
		MIMEMpeg: ".mp3",
		MIMEOgg:  ".ogg",
		MIMEFlac: ".flac",
		"":       ".wav",
	}
	for mime, ext := range tests {
		if got := (&AudioBlob{MIMEType: mime}).Extension(); got != ext {
			t.Errorf("Extension(%q) = %q, want %q", mime, got, ext)
		}
	}
}
