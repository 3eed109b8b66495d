package ai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/sashabaranov/go-openai"

	"presto/internal/logger"
)

// chatServer answers every chat completion with content and records the last request.
func chatServer(t *testing.T, status int, content string, last *openai.ChatCompletionRequest) *Service {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/chat/completions") {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if last != nil {
			_ = json.NewDecoder(r.Body).Decode(last)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		if status != http.StatusOK {
			_, _ = w.Write([]byte(`{"error":{"message":"upstream down","type":"server_error"}}`))
			return
		}
		resp := openai.ChatCompletionResponse{
			ID:     "chatcmpl-test",
			Object: "chat.completion",
			Model:  openai.GPT4oMini,
			Choices: []openai.ChatCompletionChoice{{
				Index:        0,
				Message:      openai.ChatCompletionMessage{Role: openai.ChatMessageRoleAssistant, Content: content},
				FinishReason: openai.FinishReasonStop,
			}},
			Usage: openai.Usage{PromptTokens: 10, CompletionTokens: 5, TotalTokens: 15},
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
	t.Cleanup(srv.Close)

	cfg := openai.DefaultConfig("test-key")
	cfg.BaseURL = srv.URL + "/v1"
	return NewService(openai.NewClientWithConfig(cfg), "", logger.Nop())
}

func TestCleanTranscript(t *testing.T) {
	var req openai.ChatCompletionRequest
	s := chatServer(t, http.StatusOK, `{"cleaned_text":" Je cherche un électricien à Fort-de-France. ","decoded_words":["électricité → électricien"]}`, &req)

	got, err := s.CleanTranscript(context.Background(), "je cherche un un électricité à fort de france", "fr-FR")
	if err != nil {
		t.Fatalf("CleanTranscript() error: %v", err)
	}
	if got != "Je cherche un électricien à Fort-de-France." {
		t.Errorf("got %q", got)
	}
	if req.ResponseFormat == nil || req.ResponseFormat.Type != openai.ChatCompletionResponseFormatTypeJSONObject {
		t.Error("cleanup should request a JSON object response")
	}
	if !strings.Contains(req.Messages[1].Content, "je cherche un un électricité") {
		t.Error("user prompt should carry the raw transcript")
	}
}

func TestCleanTranscript_MarkdownFence(t *testing.T) {
	s := chatServer(t, http.StatusOK, "```json\n{\"cleaned_text\":\"Texte propre.\"}\n```", nil)

	got, err := s.CleanTranscript(context.Background(), "texte sale", "fr-FR")
	if err != nil {
		t.Fatalf("CleanTranscript() error: %v", err)
	}
	if got != "Texte propre." {
		t.Errorf("got %q", got)
	}
}

func TestCleanTranscript_Failures(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		content string
	}{
		{"upstream error", http.StatusInternalServerError, ""},
		{"not json", http.StatusOK, "voici le texte corrigé"},
		{"empty cleaned text", http.StatusOK, `{"cleaned_text":"   "}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := chatServer(t, tt.status, tt.content, nil)
			got, err := s.CleanTranscript(context.Background(), "texte brut", "fr-FR")
			if err == nil {
				t.Fatalf("expected error, got %q", got)
			}
			if got != "" {
				t.Errorf("raw text must not leak on failure, got %q", got)
			}
		})
	}
}

func TestGenerateOfferDraft(t *testing.T) {
	var req openai.ChatCompletionRequest
	s := chatServer(t, http.StatusOK, `{"title":"Tonte de pelouse","description":"Je recherche un jardinier pour tondre ma pelouse au Gosier.","category":"Jardinage","city":"","postalCode":"97190"}`, &req)

	got, err := s.GenerateOfferDraft(context.Background(), DraftInput{Hint: "tondre pelouse", City: "Le Gosier"})
	if err != nil {
		t.Fatalf("GenerateOfferDraft() error: %v", err)
	}
	if got.Title != "Tonte de pelouse" || got.Category != "Jardinage" || got.PostalCode != "97190" {
		t.Errorf("unexpected draft %+v", got)
	}
	if got.City != "Le Gosier" {
		t.Errorf("City = %q, want caller city as default", got.City)
	}
	if req.MaxTokens != 600 {
		t.Errorf("MaxTokens = %d, want 600", req.MaxTokens)
	}
	if !strings.Contains(req.Messages[1].Content, "lang=fr") {
		t.Error("lang should default to fr")
	}
}

func TestGenerateOfferDraft_FallbackOnInvalidJSON(t *testing.T) {
	s := chatServer(t, http.StatusOK, "Désolé, je ne peux pas.", nil)

	got, err := s.GenerateOfferDraft(context.Background(), DraftInput{Hint: "ménage 3h", Category: "Ménage", City: "Basse-Terre"})
	if err != nil {
		t.Fatalf("GenerateOfferDraft() error: %v", err)
	}
	want := OfferDraft{Title: "Nouvelle demande", Description: "Je recherche: ménage 3h", Category: "Ménage", City: "Basse-Terre"}
	if *got != want {
		t.Errorf("got %+v, want %+v", *got, want)
	}
}

func TestGenerateOfferDraft_MissingTitle(t *testing.T) {
	s := chatServer(t, http.StatusOK, `{"title":"","description":"Je recherche quelqu'un."}`, nil)

	_, err := s.GenerateOfferDraft(context.Background(), DraftInput{Hint: "aide"})
	if !errors.Is(err, ErrInvalidDraft) {
		t.Fatalf("error = %v, want ErrInvalidDraft", err)
	}
}

func TestDraftFromTranscript_FallbackUsesTranscript(t *testing.T) {
	s := chatServer(t, http.StatusOK, "{broken", nil)

	got, err := s.DraftFromTranscript(context.Background(), "il me faut un DJ pour un mariage", "", "")
	if err != nil {
		t.Fatalf("DraftFromTranscript() error: %v", err)
	}
	if got.Title != "Nouvelle offre" || got.Description != "il me faut un DJ pour un mariage" || got.Category != "Autre" {
		t.Errorf("unexpected fallback draft %+v", got)
	}
}

func TestExtractJSONFromMarkdown(t *testing.T) {
	tests := map[string]string{
		"```json\n{\"a\":1}\n```": `{"a":1}`,
		"```\n{\"a\":1}```":        `{"a":1}`,
		`  {"a":1} `:               `{"a":1}`,
	}
	for in, want := range tests {
		if got := extractJSONFromMarkdown(in); got != want {
			t.Errorf("extractJSONFromMarkdown(%q) = %q, want %q", in, got, want)
		}
	}
}
