package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// CleanedTranscriptResult represents the cleaned transcript result
type CleanedTranscriptResult struct {
	CleanedText  string   `json:"cleaned_text"`
	DecodedWords []string `json:"decoded_words,omitempty"`
}

// CleanTranscript fixes recognition errors and removes repetitions without
// adding information. An unusable answer is an error: callers decide what to
// do with the raw text.
func (s *Service) CleanTranscript(ctx context.Context, transcript, language string) (string, error) {
	systemPrompt, userPrompt := BuildCleanupPrompt(transcript, language)

	s.log.Debug().Int("length", len(transcript)).Msg("cleaning transcript")

	content, err := s.complete(ctx, completion{
		system:      systemPrompt,
		user:        userPrompt,
		temperature: 0.2,
		jsonFormat:  true,
	})
	if err != nil {
		return "", fmt.Errorf("clean transcript: %w", err)
	}

	var result CleanedTranscriptResult
	if err := json.Unmarshal([]byte(content), &result); err != nil {
		if err := json.Unmarshal([]byte(extractJSONFromMarkdown(content)), &result); err != nil {
			return "", fmt.Errorf("clean transcript: failed to parse response as JSON: %w", err)
		}
	}

	cleaned := strings.TrimSpace(result.CleanedText)
	if cleaned == "" {
		return "", fmt.Errorf("clean transcript: model returned empty cleaned_text")
	}

	if len(result.DecodedWords) > 0 {
		s.log.Debug().Strs("decoded_words", result.DecodedWords).Msg("transcript corrections")
	}
	return cleaned, nil
}
