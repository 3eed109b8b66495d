package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidDraft is returned when the model answers with JSON that lacks a
// title or a description.
var ErrInvalidDraft = errors.New("invalid AI draft: missing title or description")

const defaultCategory = "Autre"

// DraftInput is what the app sends to generate a draft from a text hint.
type DraftInput struct {
	Hint     string
	City     string
	Category string
	Lang     string
}

// OfferDraft is the draft returned to the app.
type OfferDraft struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Category    string `json:"category"`
	City        string `json:"city"`
	PostalCode  string `json:"postalCode"`
}

// GenerateOfferDraft drafts a service request from a short text hint.
// Unparsable model output degrades to a minimal draft built from the hint.
func (s *Service) GenerateOfferDraft(ctx context.Context, in DraftInput) (*OfferDraft, error) {
	if in.Lang == "" {
		in.Lang = "fr"
	}
	systemPrompt, userPrompt := BuildHintDraftPrompt(in)

	s.log.Info().
		Int("hint_length", len(in.Hint)).
		Str("city", in.City).
		Str("category", in.Category).
		Str("lang", in.Lang).
		Msg("generating offer draft")

	content, err := s.complete(ctx, completion{
		system:      systemPrompt,
		user:        userPrompt,
		temperature: 0.4,
		maxTokens:   600,
	})
	if err != nil {
		return nil, fmt.Errorf("generate offer draft: %w", err)
	}

	fallback := OfferDraft{
		Title:       "Nouvelle demande",
		Description: "Je recherche: " + in.Hint,
	}
	return s.finishDraft(content, fallback, in.City, in.Category)
}

// DraftFromTranscript drafts a full offer from a voice transcript.
func (s *Service) DraftFromTranscript(ctx context.Context, transcript, city, category string) (*OfferDraft, error) {
	systemPrompt, userPrompt := BuildTranscriptDraftPrompt(transcript, city, category)

	content, err := s.complete(ctx, completion{
		system:      systemPrompt,
		user:        userPrompt,
		temperature: 0.7,
		maxTokens:   800,
	})
	if err != nil {
		return nil, fmt.Errorf("draft from transcript: %w", err)
	}

	fallback := OfferDraft{
		Title:       "Nouvelle offre",
		Description: transcript,
	}
	return s.finishDraft(content, fallback, city, category)
}

// finishDraft parses the model answer and fills empty fields from the
// caller's inputs.
func (s *Service) finishDraft(content string, fallback OfferDraft, city, category string) (*OfferDraft, error) {
	draft, err := parseDraft(content)
	if err != nil {
		s.log.Warn().Err(err).Msg("draft is not valid JSON, using fallback")
		draft = &fallback
	} else if strings.TrimSpace(draft.Title) == "" || strings.TrimSpace(draft.Description) == "" {
		return nil, ErrInvalidDraft
	}

	if draft.Category == "" {
		draft.Category = category
	}
	if draft.Category == "" {
		draft.Category = defaultCategory
	}
	if draft.City == "" {
		draft.City = city
	}

	s.log.Info().
		Int("title_length", len(draft.Title)).
		Int("description_length", len(draft.Description)).
		Str("category", draft.Category).
		Str("city", draft.City).
		Msg("offer draft ready")
	return draft, nil
}

func parseDraft(content string) (*OfferDraft, error) {
	var draft OfferDraft
	if err := json.Unmarshal([]byte(extractJSONFromMarkdown(content)), &draft); err != nil {
		return nil, err
	}
	return &draft, nil
}
