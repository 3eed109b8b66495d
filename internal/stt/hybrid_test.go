package stt

import (
	"context"
	"errors"
	"testing"

	"presto/internal/logger"
)

func TestHybridProvider_CleansAndKeepsConfidence(t *testing.T) {
	speech := &fakeProvider{
		name:     "google",
		strategy: StrategyPrimary,
		attempt:  &Attempt{Strategy: StrategyPrimary, Text: "je je cherche un un plombier", Confidence: floatPtr(0.81)},
	}
	cleaner := &fakeCleaner{out: " Je cherche un plombier. "}
	p := NewHybridProvider(speech, cleaner, logger.Nop())

	got, err := p.Transcribe(context.Background(), Audio{Data: make([]byte, 2048)}, "fr-FR")
	if err != nil {
		t.Fatalf("Transcribe() error: %v", err)
	}
	if got.Text != "Je cherche un plombier." {
		t.Errorf("Text = %q", got.Text)
	}
	if got.Confidence == nil || *got.Confidence != 0.81 {
		t.Errorf("Confidence = %v, want inherited 0.81", got.Confidence)
	}
	if got.Strategy != StrategyHybrid {
		t.Errorf("Strategy = %s", got.Strategy)
	}
	if cleaner.got != "je je cherche un un plombier" {
		t.Errorf("cleaner received %q", cleaner.got)
	}
}

func TestHybridProvider_CleanupFailureFailsAttempt(t *testing.T) {
	speech := &fakeProvider{
		name:     "google",
		strategy: StrategyPrimary,
		attempt:  &Attempt{Text: "un texte brut assez long pour être nettoyé"},
	}
	p := NewHybridProvider(speech, &fakeCleaner{err: errors.New("boom")}, logger.Nop())

	got, err := p.Transcribe(context.Background(), Audio{}, "fr-FR")
	if got != nil {
		t.Errorf("attempt = %+v, want nil on cleanup failure", got)
	}
	var pe *ProviderError
	if !errors.As(err, &pe) {
		t.Fatalf("error %v is not a ProviderError", err)
	}
	if pe.Kind != KindUnavailable {
		t.Errorf("kind = %s", pe.Kind)
	}
}

func TestHybridProvider_SpeechFailurePropagates(t *testing.T) {
	speechErr := &ProviderError{Kind: KindInvalidAudio, Provider: "google", Detail: "bad"}
	speech := &fakeProvider{name: "google", err: speechErr}
	cleaner := &fakeCleaner{out: "x"}
	p := NewHybridProvider(speech, cleaner, logger.Nop())

	_, err := p.Transcribe(context.Background(), Audio{}, "fr-FR")
	if !errors.Is(err, speechErr) {
		t.Fatalf("error = %v, want speech error", err)
	}
	if cleaner.calls != 0 {
		t.Error("cleaner must not be called when the speech leg fails")
	}
}

func TestHybridProvider_EmptySpeechSkipsCleanup(t *testing.T) {
	speech := &fakeProvider{name: "google", attempt: &Attempt{Text: "  "}}
	cleaner := &fakeCleaner{out: "invented"}
	p := NewHybridProvider(speech, cleaner, logger.Nop())

	got, err := p.Transcribe(context.Background(), Audio{}, "fr-FR")
	if err != nil {
		t.Fatalf("Transcribe() error: %v", err)
	}
	if got.Text != "" {
		t.Errorf("Text = %q, want empty", got.Text)
	}
	if cleaner.calls != 0 {
		t.Error("cleaner must not be called on empty text")
	}
}
