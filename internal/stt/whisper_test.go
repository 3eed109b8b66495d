package stt

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/sashabaranov/go-openai"

	"presto/internal/logger"
)

func newOpenAITestClient(t *testing.T, handler http.HandlerFunc) *openai.Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	cfg := openai.DefaultConfig("test-key")
	cfg.BaseURL = srv.URL + "/v1"
	return openai.NewClientWithConfig(cfg)
}

func TestWhisperProvider_Transcribe(t *testing.T) {
	client := newOpenAITestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/audio/transcriptions") {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("parse multipart: %v", err)
			return
		}
		if got := r.FormValue("language"); got != "fr" {
			t.Errorf("language = %q, want fr", got)
		}
		if got := r.FormValue("model"); got != openai.Whisper1 {
			t.Errorf("model = %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"text":"  Je cherche une baby-sitter pour samedi soir.  "}`))
	})

	p := NewWhisperProvider(client, "", logger.Nop())
	got, err := p.Transcribe(context.Background(), Audio{Data: make([]byte, 4096), Name: "hint.m4a"}, "fr-FR")
	if err != nil {
		t.Fatalf("Transcribe() error: %v", err)
	}
	if got.Text != "Je cherche une baby-sitter pour samedi soir." {
		t.Errorf("Text = %q", got.Text)
	}
	if got.Confidence != nil {
		t.Errorf("Confidence = %v, want absent", *got.Confidence)
	}
	if got.Strategy != StrategySecondary {
		t.Errorf("Strategy = %s", got.Strategy)
	}
}

func TestWhisperProvider_QuotaError(t *testing.T) {
	client := newOpenAITestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"message":"You exceeded your current quota","type":"insufficient_quota","code":"insufficient_quota"}}`))
	})

	p := NewWhisperProvider(client, "", logger.Nop())
	_, err := p.Transcribe(context.Background(), Audio{Data: make([]byte, 4096), Name: "hint.wav"}, "fr-FR")
	var pe *ProviderError
	if !errors.As(err, &pe) {
		t.Fatalf("error %v is not a ProviderError", err)
	}
	if pe.Kind != KindQuotaExceeded {
		t.Errorf("kind = %s, want QUOTA_EXCEEDED", pe.Kind)
	}
}

func TestIsoLanguage(t *testing.T) {
	tests := map[string]string{
		"fr-FR": "fr",
		"en_US": "en",
		"FR":    "fr",
		"":      "",
	}
	for in, want := range tests {
		if got := isoLanguage(in); got != want {
			t.Errorf("isoLanguage(%q) = %q, want %q", in, got, want)
		}
	}
}
