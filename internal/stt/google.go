package stt

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"presto/internal/gcp"
)

const DefaultGoogleEndpoint = "https://speech.googleapis.com/v1/speech:recognize"

// GoogleProvider implements STT using Google Cloud Speech-to-Text REST API
type GoogleProvider struct {
	endpoint string
	model    string
	creds    *gcp.Credentials
	log      zerolog.Logger
}

// NewGoogleProvider creates a new Google STT provider. An empty endpoint uses
// the public v1 recognize endpoint.
func NewGoogleProvider(creds *gcp.Credentials, endpoint, model string, log zerolog.Logger) *GoogleProvider {
	if endpoint == "" {
		endpoint = DefaultGoogleEndpoint
	}
	return &GoogleProvider{
		endpoint: endpoint,
		model:    model,
		creds:    creds,
		log:      log.With().Str("provider", "google").Logger(),
	}
}

// Name returns the provider name
func (p *GoogleProvider) Name() string {
	return "google"
}

// Strategy returns the primary slot.
func (p *GoogleProvider) Strategy() Strategy {
	return StrategyPrimary
}

// GoogleSTTRequest represents Google Speech-to-Text API request
type GoogleSTTRequest struct {
	Config GoogleSTTConfig `json:"config"`
	Audio  GoogleSTTAudio  `json:"audio"`
}

// GoogleSTTConfig represents recognition config
type GoogleSTTConfig struct {
	Encoding                   string `json:"encoding"`
	SampleRateHertz            int    `json:"sampleRateHertz,omitempty"`
	LanguageCode               string `json:"languageCode"`
	EnableAutomaticPunctuation bool   `json:"enableAutomaticPunctuation"`
	Model                      string `json:"model,omitempty"`
}

// GoogleSTTAudio represents audio data
type GoogleSTTAudio struct {
	Content string `json:"content"` // Base64 encoded
}

// GoogleSTTResponse represents Google Speech-to-Text API response
type GoogleSTTResponse struct {
	Results []GoogleSTTResult `json:"results"`
	Error   *GoogleSTTError   `json:"error,omitempty"`
}

// GoogleSTTResult represents a recognition result
type GoogleSTTResult struct {
	Alternatives []GoogleSTTAlternative `json:"alternatives"`
}

// GoogleSTTAlternative represents a transcript alternative
type GoogleSTTAlternative struct {
	Transcript string  `json:"transcript"`
	Confidence float64 `json:"confidence"`
}

// GoogleSTTError represents an API error
type GoogleSTTError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Status  string `json:"status"`
}

// Transcribe sends the audio to the synchronous recognize endpoint.
// No results is not an error: the attempt simply carries empty text.
func (p *GoogleProvider) Transcribe(ctx context.Context, audio Audio, language string) (*Attempt, error) {
	startTime := time.Now()

	if err := checkAudio(p.Name(), audio); err != nil {
		return nil, err
	}

	encoding, sampleRate := googleAudioConfig(audio)
	if encoding == "" {
		return nil, newProviderError(KindInvalidAudio, p.Name(), "unsupported audio format "+audio.Ext(), nil)
	}
	p.log.Debug().
		Int("size", len(audio.Data)).
		Str("encoding", encoding).
		Int("sample_rate", sampleRate).
		Str("language", language).
		Msg("calling speech-to-text")

	reqBody := GoogleSTTRequest{
		Config: GoogleSTTConfig{
			Encoding:                   encoding,
			SampleRateHertz:            sampleRate,
			LanguageCode:               language,
			EnableAutomaticPunctuation: true,
			Model:                      p.model,
		},
		Audio: GoogleSTTAudio{
			Content: base64.StdEncoding.EncodeToString(audio.Data),
		},
	}

	reqJSON, err := json.Marshal(reqBody)
	if err != nil {
		return nil, newProviderError(KindUnavailable, p.Name(), "failed to marshal request", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint, bytes.NewReader(reqJSON))
	if err != nil {
		return nil, newProviderError(KindUnavailable, p.Name(), "failed to create request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	p.creds.Authorize(req)

	resp, err := p.creds.Client.Do(req)
	if err != nil {
		return nil, asProviderError(err, p.Name(), "failed to send request to Google Speech-to-Text")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, newProviderError(KindUnavailable, p.Name(), "failed to read response body", err)
	}

	var sttResp GoogleSTTResponse
	parseErr := json.Unmarshal(body, &sttResp)

	if resp.StatusCode != http.StatusOK {
		detail := fmt.Sprintf("API returned status %d", resp.StatusCode)
		if parseErr == nil && sttResp.Error != nil {
			detail = fmt.Sprintf("API error %s: %s", sttResp.Error.Status, sttResp.Error.Message)
		}
		p.log.Warn().Int("status", resp.StatusCode).Str("body", truncate(string(body), 500)).Msg("speech-to-text error")
		return nil, newProviderError(kindFromStatus(resp.StatusCode), p.Name(), detail, nil)
	}
	if parseErr != nil {
		return nil, newProviderError(KindUnavailable, p.Name(), "failed to parse response", parseErr)
	}
	if sttResp.Error != nil {
		return nil, newProviderError(KindUnavailable, p.Name(), "API error: "+sttResp.Error.Message, nil)
	}

	// Long audio comes back as several results; keep the best alternative of each.
	parts := make([]string, 0, len(sttResp.Results))
	var confidence *float64
	for i, r := range sttResp.Results {
		if len(r.Alternatives) == 0 {
			continue
		}
		best := r.Alternatives[0]
		if t := strings.TrimSpace(best.Transcript); t != "" {
			parts = append(parts, t)
		}
		if i == 0 && best.Confidence > 0 {
			c := best.Confidence
			confidence = &c
		}
	}
	transcript := strings.Join(parts, " ")

	p.log.Info().
		Int("length", len(transcript)).
		Bool("has_confidence", confidence != nil).
		Dur("duration", time.Since(startTime)).
		Msg("transcription done")

	return &Attempt{
		Strategy:   StrategyPrimary,
		Provider:   p.Name(),
		Text:       transcript,
		Confidence: confidence,
		Raw:        json.RawMessage(body),
	}, nil
}

// truncate truncates string to max length
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
