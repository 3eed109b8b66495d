// Package quality scores transcripts so the router can decide whether a
// transcription attempt is good enough or a fallback provider should be tried.
package quality

import (
	"strings"
	"unicode/utf8"
)

// Reason explains why a score was reduced.
type Reason string

const (
	ReasonEmpty         Reason = "EMPTY"
	ReasonTooShort      Reason = "TOO_SHORT"
	ReasonNoisyTokens   Reason = "NOISY_TOKENS"
	ReasonLowConfidence Reason = "LOW_CONFIDENCE"
)

// Scoring policy. Changing any of these changes which transcripts are accepted.
const (
	ShortLength  = 12
	MediumLength = 30
	LongLength   = 80

	ShortBonus  = 0.25
	MediumBonus = 0.25
	LongBonus   = 0.15

	HighConfidence   = 0.75
	MediumConfidence = 0.60
	HighConfBonus    = 0.25
	MediumConfBonus  = 0.15
	AbsentConfBonus  = 0.10
	NoisyPenalty     = 0.20
	TooShortPenalty  = 0.15
)

// noiseMarkers are matched case-insensitively anywhere in the text.
var noiseMarkers = []string{
	"inaudible",
	"incompréhensible",
	"incomprehensible",
	"[bruit]",
	"[musique]",
	"...",
	"…",
}

// Assessment is the result of Evaluate.
type Assessment struct {
	Score   float64  `json:"score"`
	Reasons []Reason `json:"reasonCodes"`
}

// Has reports whether r was triggered.
func (a Assessment) Has(r Reason) bool {
	for _, got := range a.Reasons {
		if got == r {
			return true
		}
	}
	return false
}

// Evaluate scores text on a 0..1 scale. confidence is nil when the provider
// reports none. Evaluate is pure: identical inputs give identical results.
func Evaluate(text string, confidence *float64) Assessment {
	t := strings.TrimSpace(text)
	if t == "" {
		return Assessment{Score: 0, Reasons: []Reason{ReasonEmpty}}
	}

	reasons := make([]Reason, 0, 3)
	score := 0.0

	n := utf8.RuneCountInString(t)
	if n >= ShortLength {
		score += ShortBonus
	}
	if n >= MediumLength {
		score += MediumBonus
	}
	if n >= LongLength {
		score += LongBonus
	}

	tooShort := n < ShortLength
	if tooShort {
		reasons = append(reasons, ReasonTooShort)
	}

	noisy := isNoisy(t)
	if noisy {
		reasons = append(reasons, ReasonNoisyTokens)
	}

	switch {
	case confidence == nil:
		score += AbsentConfBonus
	case *confidence >= HighConfidence:
		score += HighConfBonus
	case *confidence >= MediumConfidence:
		score += MediumConfBonus
	default:
		reasons = append(reasons, ReasonLowConfidence)
	}

	if noisy {
		score -= NoisyPenalty
	}
	if tooShort {
		score -= TooShortPenalty
	}

	return Assessment{Score: clamp(score), Reasons: reasons}
}

func isNoisy(text string) bool {
	lower := strings.ToLower(text)
	for _, m := range noiseMarkers {
		if strings.Contains(lower, m) {
			return true
		}
	}
	return false
}

func clamp(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
