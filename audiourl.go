package agrivaani

import (
	"strings"
	"sync"

	"github.com/google/uuid"
)

// AudioURLPrefix is the scheme prefix of audio handle URLs.
const AudioURLPrefix = "blob:"

// AudioURLs is a registry of audio blobs addressable by opaque URLs.
// Every URL returned by Create holds its blob until Revoke is called.
type AudioURLs struct {
	mu    sync.RWMutex
	blobs map[string]*AudioBlob
}

// NewAudioURLs creates an empty registry.
func NewAudioURLs() *AudioURLs {
	return &AudioURLs{blobs: make(map[string]*AudioBlob)}
}

// Create registers a blob, records the URL on it and returns the URL.
func (u *AudioURLs) Create(blob *AudioBlob) string {
	url := AudioURLPrefix + uuid.NewString()
	blob.URL = url

	u.mu.Lock()
	defer u.mu.Unlock()
	u.blobs[url] = blob
	return url
}

// Resolve returns the blob for a URL. Bare IDs without the prefix are accepted.
func (u *AudioURLs) Resolve(url string) (*AudioBlob, bool) {
	if !strings.HasPrefix(url, AudioURLPrefix) {
		url = AudioURLPrefix + url
	}

	u.mu.RLock()
	defer u.mu.RUnlock()
	blob, ok := u.blobs[url]
	return blob, ok
}

// Revoke releases a URL. Returns false if it was unknown or already revoked.
func (u *AudioURLs) Revoke(url string) bool {
	if url == "" {
		return false
	}
	if !strings.HasPrefix(url, AudioURLPrefix) {
		url = AudioURLPrefix + url
	}

	u.mu.Lock()
	defer u.mu.Unlock()
	if _, ok := u.blobs[url]; !ok {
		return false
	}
	delete(u.blobs, url)
	return true
}

// Len returns the number of live URLs.
func (u *AudioURLs) Len() int {
	u.mu.RLock()
	defer u.mu.RUnlock()
	return len(u.blobs)
}

// AudioURLID strips the prefix from an audio URL.
func AudioURLID(url string) string {
	return strings.TrimPrefix(url, AudioURLPrefix)
}
