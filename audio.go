package agrivaani

import (
	"bytes"
	"encoding/base64"
	"io"
	"strings"
)

// Audio MIME types recognized by DetectAudioMIME.
const (
	MIMEWav  = "audio/wav"
	MIMEMpeg = "audio/mpeg"
	MIMEOgg  = "audio/ogg"
	MIMEFlac = "audio/flac"
)

// AudioBlob is a decoded, playable audio payload.
type AudioBlob struct {
	Data     []byte
	MIMEType string
	URL      string // Set when the blob is registered with AudioURLs
}

// Len returns the payload size in bytes.
func (b *AudioBlob) Len() int {
	return len(b.Data)
}

// Reader returns a reader over the payload.
func (b *AudioBlob) Reader() io.Reader {
	return bytes.NewReader(b.Data)
}

// Extension returns a file extension matching the MIME type.
func (b *AudioBlob) Extension() string {
	switch b.MIMEType {
	case MIMEMpeg:
		return ".mp3"
	case MIMEOgg:
		return ".ogg"
	case MIMEFlac:
		return ".flac"
	default:
		return ".wav"
	}
}

// DecodeAudio decodes a base64 audio payload into an AudioBlob.
// A "data:<mime>;base64," prefix is accepted. The MIME type is sniffed from
// the decoded bytes, falling back to defaultMIME (audio/wav when empty).
func DecodeAudio(payload, defaultMIME string) (*AudioBlob, error) {
	payload = strings.TrimSpace(payload)
	if strings.HasPrefix(payload, "data:") {
		idx := strings.Index(payload, ",")
		if idx < 0 {
			return nil, &DecodeError{Message: "malformed data URL"}
		}
		payload = payload[idx+1:]
	}

	if payload == "" {
		return nil, &DecodeError{Message: "empty audio payload"}
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		// Unpadded payloads are accepted; wrongly padded ones are not
		if strings.Contains(payload, "=") {
			return nil, &DecodeError{Message: "invalid base64 audio payload", Cause: err}
		}
		var rawErr error
		if data, rawErr = base64.RawStdEncoding.DecodeString(payload); rawErr != nil {
			return nil, &DecodeError{Message: "invalid base64 audio payload", Cause: err}
		}
	}

	if defaultMIME == "" {
		defaultMIME = MIMEWav
	}

	return &AudioBlob{
		Data:     data,
		MIMEType: DetectAudioMIME(data, defaultMIME),
	}, nil
}

// EncodeAudio returns the standard base64 encoding of raw audio bytes.
func EncodeAudio(data []byte) string {
	return base64.StdEncoding.EncodeToString(data)
}

// DetectAudioMIME sniffs the audio container from its magic bytes.
func DetectAudioMIME(data []byte, fallback string) string {
	switch {
	case len(data) >= 12 && string(data[0:4]) == "RIFF" && string(data[8:12]) == "WAVE":
		return MIMEWav
	case len(data) >= 3 && string(data[0:3]) == "ID3":
		return MIMEMpeg
	case len(data) >= 2 && data[0] == 0xFF && data[1]&0xE0 == 0xE0:
		return MIMEMpeg
	case len(data) >= 4 && string(data[0:4]) == "OggS":
		return MIMEOgg
	case len(data) >= 4 && string(data[0:4]) == "fLaC":
		return MIMEFlac
	}
	return fallback
}
