package stt

import (
	"context"
	"testing"

	"presto/internal/logger"
)

func TestSet_For(t *testing.T) {
	g := &GoogleProvider{}
	s := &Set{Primary: g}

	if p, ok := s.For(StrategyPrimary); !ok || p != g {
		t.Errorf("For(PRIMARY) = %v, %v", p, ok)
	}
	for _, strategy := range []Strategy{StrategySecondary, StrategyHybrid} {
		if _, ok := s.For(strategy); ok {
			t.Errorf("empty %s slot should not resolve", strategy)
		}
	}
	if _, ok := s.For(Strategy("UNKNOWN")); ok {
		t.Error("unknown strategy should not resolve")
	}
}

func TestCreateProviders_RequiresClients(t *testing.T) {
	if _, err := CreateProviders(context.Background(), FactoryConfig{}, logger.Nop()); err == nil {
		t.Error("expected error without an openai client")
	}
}
