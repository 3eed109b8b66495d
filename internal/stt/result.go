package stt

import (
	"encoding/json"
	"path"
	"strings"
)

// Audio is the payload handed to a provider.
type Audio struct {
	Data []byte
	Name string // original object name, its extension drives encoding detection
}

// Ext returns the lower-cased extension of the audio name, without the dot.
func (a Audio) Ext() string {
	return strings.TrimPrefix(strings.ToLower(path.Ext(a.Name)), ".")
}

// Attempt represents the result of one transcription strategy.
type Attempt struct {
	Strategy   Strategy        // The slot that produced it
	Provider   string          // The provider used (e.g., "google", "openai-whisper")
	Text       string          // The transcribed text
	Confidence *float64        // Native confidence (0.0-1.0), nil when the provider has none
	Raw        json.RawMessage // Raw provider payload (for debugging/logging)
}
