// Package settings holds the runtime policy of the audio router and the
// sources it is read from.
package settings

import (
	"context"
	"strings"

	"github.com/rs/zerolog"
)

// Mode selects which strategies the router may try.
type Mode string

const (
	ModeHybrid        Mode = "HYBRID"
	ModePrimaryOnly   Mode = "PRIMARY_ONLY"
	ModeSecondaryOnly Mode = "SECONDARY_ONLY"
)

// Valid reports whether m is one of the known modes.
func (m Mode) Valid() bool {
	switch m {
	case ModeHybrid, ModePrimaryOnly, ModeSecondaryOnly:
		return true
	}
	return false
}

// ParseMode normalises s. Unknown values return false.
func ParseMode(s string) (Mode, bool) {
	m := Mode(strings.ToUpper(strings.TrimSpace(s)))
	return m, m.Valid()
}

// Settings is a read-only snapshot taken once per invocation.
type Settings struct {
	Mode             Mode    `json:"mode"`
	FallbackEnabled  bool    `json:"fallbackEnabled"`
	QualityThreshold float64 `json:"qualityThreshold"`
	DefaultLanguage  string  `json:"languageCode"`
}

// Default is used for every field the source cannot provide.
func Default() Settings {
	return Settings{
		Mode:             ModeHybrid,
		FallbackEnabled:  true,
		QualityThreshold: 0.62,
		DefaultLanguage:  "fr-FR",
	}
}

// Partial is what a source actually found. Nil fields fall back to defaults.
type Partial struct {
	Mode             *string
	FallbackEnabled  *bool
	QualityThreshold *float64
	LanguageCode     *string
}

// Source loads the raw settings document.
type Source interface {
	Load(ctx context.Context) (Partial, error)
}

// Merge validates p field by field on top of Default.
func Merge(p Partial) Settings {
	s := Default()
	if p.Mode != nil {
		if m, ok := ParseMode(*p.Mode); ok {
			s.Mode = m
		}
	}
	if p.FallbackEnabled != nil {
		s.FallbackEnabled = *p.FallbackEnabled
	}
	if p.QualityThreshold != nil && *p.QualityThreshold >= 0 && *p.QualityThreshold <= 1 {
		s.QualityThreshold = *p.QualityThreshold
	}
	if p.LanguageCode != nil {
		if lang := strings.TrimSpace(*p.LanguageCode); lang != "" {
			s.DefaultLanguage = lang
		}
	}
	return s
}

// Resolve reads src once. A failing or absent source is logged and the
// defaults are used, it never fails the invocation.
func Resolve(ctx context.Context, src Source, log zerolog.Logger) Settings {
	if src == nil {
		return Default()
	}
	p, err := src.Load(ctx)
	if err != nil {
		log.Warn().Err(err).Str("error_kind", "CONFIG_UNAVAILABLE").Msg("settings unavailable, using defaults")
		return Default()
	}
	return Merge(p)
}
