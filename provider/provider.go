// Package provider defines remote service backends for the client facade.
package provider

import "github.com/ZaguanLabs/agrivaani"

// Backend is an alias to the main package interface for convenience.
type Backend = agrivaani.Backend

// TranslationRequest is an alias to the main package type.
type TranslationRequest = agrivaani.TranslationRequest

// SpeechRequest is an alias to the main package type.
type SpeechRequest = agrivaani.SpeechRequest

// TranscribeRequest is an alias to the main package type.
type TranscribeRequest = agrivaani.TranscribeRequest

// TranscribeResult is an alias to the main package type.
type TranscribeResult = agrivaani.TranscribeResult
