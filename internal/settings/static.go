package settings

import "context"

// StaticSource serves settings from process configuration.
type StaticSource struct {
	Partial Partial
}

// NewStaticSource builds a source from raw config values. Empty strings are
// treated as absent; Merge range-checks the threshold.
func NewStaticSource(mode string, fallbackEnabled bool, threshold float64, language string) *StaticSource {
	p := Partial{FallbackEnabled: &fallbackEnabled, QualityThreshold: &threshold}
	if mode != "" {
		p.Mode = &mode
	}
	if language != "" {
		p.LanguageCode = &language
	}
	return &StaticSource{Partial: p}
}

func (s *StaticSource) Load(context.Context) (Partial, error) {
	return s.Partial, nil
}
