package stt

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/sashabaranov/go-openai"

	"presto/internal/gcp"
)

// Set holds one provider per strategy. It is built once at process start and
// shared read-only by every invocation.
type Set struct {
	Primary   Provider
	Secondary Provider
	Hybrid    Provider
}

// For returns the provider filling the given strategy slot.
func (s *Set) For(strategy Strategy) (Provider, bool) {
	var p Provider
	switch strategy {
	case StrategyPrimary:
		p = s.Primary
	case StrategySecondary:
		p = s.Secondary
	case StrategyHybrid:
		p = s.Hybrid
	}
	return p, p != nil
}

// FactoryConfig carries what CreateProviders needs to build the set.
type FactoryConfig struct {
	// GoogleKeyData can be an API key, a key file path, a JSON string or empty (ADC).
	GoogleKeyData  string
	GoogleEndpoint string
	GoogleModel    string
	Timeout        time.Duration

	OpenAI       *openai.Client
	WhisperModel string
	Cleaner      Cleaner
}

// CreateProviders creates the primary, secondary and hybrid providers.
func CreateProviders(ctx context.Context, cfg FactoryConfig, log zerolog.Logger) (*Set, error) {
	if cfg.OpenAI == nil {
		return nil, fmt.Errorf("openai client is required for the secondary provider")
	}
	if cfg.Cleaner == nil {
		return nil, fmt.Errorf("cleaner is required for the hybrid provider")
	}

	creds, err := gcp.NewCredentials(ctx, cfg.GoogleKeyData, cfg.Timeout)
	if err != nil {
		return nil, fmt.Errorf("google speech credentials: %w", err)
	}
	if creds.APIKey != "" {
		log.Info().Msg("Creating Google STT provider with API key")
	} else {
		log.Info().Msg("Creating Google STT provider with oauth2 credentials")
	}

	primary := NewGoogleProvider(creds, cfg.GoogleEndpoint, cfg.GoogleModel, log)
	return &Set{
		Primary:   primary,
		Secondary: NewWhisperProvider(cfg.OpenAI, cfg.WhisperModel, log),
		Hybrid:    NewHybridProvider(primary, cfg.Cleaner, log),
	}, nil
}
