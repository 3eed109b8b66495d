package stt

import (
	"context"
	"strings"

	"github.com/rs/zerolog"
)

// Cleaner rewrites a raw transcript: fixes recognition errors and removes
// repetitions without adding information.
type Cleaner interface {
	CleanTranscript(ctx context.Context, transcript, language string) (string, error)
}

// HybridProvider runs a speech provider and pipes its text through a Cleaner.
// The confidence of the speech leg is kept as-is.
type HybridProvider struct {
	speech  Provider
	cleaner Cleaner
	log     zerolog.Logger
}

// NewHybridProvider creates the hybrid strategy from the primary provider and a cleaner.
func NewHybridProvider(speech Provider, cleaner Cleaner, log zerolog.Logger) *HybridProvider {
	return &HybridProvider{
		speech:  speech,
		cleaner: cleaner,
		log:     log.With().Str("provider", "hybrid").Logger(),
	}
}

// Name returns the provider name
func (p *HybridProvider) Name() string {
	return "hybrid(" + p.speech.Name() + ")"
}

// Strategy returns the hybrid slot.
func (p *HybridProvider) Strategy() Strategy {
	return StrategyHybrid
}

// Transcribe fails as a whole when the cleanup call fails; the raw text is
// never returned in place of a cleaned one.
func (p *HybridProvider) Transcribe(ctx context.Context, audio Audio, language string) (*Attempt, error) {
	raw, err := p.speech.Transcribe(ctx, audio, language)
	if err != nil {
		return nil, asProviderError(err, p.Name(), "speech leg failed")
	}

	if strings.TrimSpace(raw.Text) == "" {
		// Nothing to clean; the evaluator will flag it as EMPTY.
		return &Attempt{
			Strategy:   StrategyHybrid,
			Provider:   p.Name(),
			Confidence: raw.Confidence,
			Raw:        raw.Raw,
		}, nil
	}

	cleaned, err := p.cleaner.CleanTranscript(ctx, raw.Text, language)
	if err != nil {
		p.log.Warn().Err(err).Msg("cleanup failed, dropping attempt")
		return nil, newProviderError(OpenAIErrorKind(err), p.Name(), "cleanup failed", err)
	}

	p.log.Debug().
		Int("raw_length", len(raw.Text)).
		Int("cleaned_length", len(cleaned)).
		Msg("transcript cleaned")

	return &Attempt{
		Strategy:   StrategyHybrid,
		Provider:   p.Name(),
		Text:       strings.TrimSpace(cleaned),
		Confidence: raw.Confidence,
		Raw:        raw.Raw,
	}, nil
}
