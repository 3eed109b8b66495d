package stt

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/sashabaranov/go-openai"
)

// WhisperProvider implements STT using the OpenAI audio transcription API.
// It never reports a confidence.
type WhisperProvider struct {
	client *openai.Client
	model  string
	log    zerolog.Logger
}

// NewWhisperProvider creates the secondary provider. An empty model uses whisper-1.
func NewWhisperProvider(client *openai.Client, model string, log zerolog.Logger) *WhisperProvider {
	if model == "" {
		model = openai.Whisper1
	}
	return &WhisperProvider{
		client: client,
		model:  model,
		log:    log.With().Str("provider", "openai-whisper").Logger(),
	}
}

// Name returns the provider name
func (p *WhisperProvider) Name() string {
	return "openai-whisper"
}

// Strategy returns the secondary slot.
func (p *WhisperProvider) Strategy() Strategy {
	return StrategySecondary
}

// Transcribe uploads the audio to the transcription endpoint.
func (p *WhisperProvider) Transcribe(ctx context.Context, audio Audio, language string) (*Attempt, error) {
	startTime := time.Now()

	if err := checkAudio(p.Name(), audio); err != nil {
		return nil, err
	}

	name := audio.Name
	if audio.Ext() == "" {
		// The API infers the container from the file name.
		name = "audio.wav"
	}

	resp, err := p.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    p.model,
		FilePath: name,
		Reader:   bytes.NewReader(audio.Data),
		Language: isoLanguage(language),
	})
	if err != nil {
		p.log.Warn().Err(err).Msg("transcription failed")
		return nil, newProviderError(OpenAIErrorKind(err), p.Name(), "transcription request failed", err)
	}

	text := strings.TrimSpace(resp.Text)
	p.log.Info().
		Int("length", len(text)).
		Dur("duration", time.Since(startTime)).
		Msg("transcription done")

	raw, _ := json.Marshal(resp)
	return &Attempt{
		Strategy: StrategySecondary,
		Provider: p.Name(),
		Text:     text,
		Raw:      raw,
	}, nil
}

// OpenAIErrorKind classifies errors returned by go-openai.
func OpenAIErrorKind(err error) ErrorKind {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		if apiErr.Code == "insufficient_quota" {
			return KindQuotaExceeded
		}
		return kindFromStatus(apiErr.HTTPStatusCode)
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return kindFromStatus(reqErr.HTTPStatusCode)
	}
	return KindUnavailable
}

// isoLanguage reduces a BCP-47 tag ("fr-FR") to its ISO-639-1 part ("fr").
func isoLanguage(tag string) string {
	tag = strings.TrimSpace(tag)
	if i := strings.IndexAny(tag, "-_"); i > 0 {
		tag = tag[:i]
	}
	return strings.ToLower(tag)
}
