// Package router picks a transcription strategy order from the runtime
// settings, runs the strategies one after another and keeps the first
// transcript whose quality clears the threshold.
package router

import (
	"context"
	"errors"
	"fmt"
	"path"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"presto/internal/logger"
	"presto/internal/quality"
	"presto/internal/settings"
	"presto/internal/storage"
	"presto/internal/stt"
)

const instrumentationName = "presto/internal/router"

// Providers resolves the provider for a strategy slot.
type Providers interface {
	For(strategy stt.Strategy) (stt.Provider, bool)
}

// Meta carries request-level details of a result.
type Meta struct {
	Language string `json:"language"`
}

// AttemptSummary records one strategy run, for logs and traces.
type AttemptSummary struct {
	Strategy stt.Strategy
	Provider string
	Score    float64
	Passed   bool
	Err      error
	Duration time.Duration
}

// Result is the single outcome of an invocation.
type Result struct {
	ModeUsed stt.Strategy       `json:"modeUsed"`
	Text     string             `json:"text"`
	Quality  quality.Assessment `json:"quality"`
	Meta     Meta               `json:"meta"`

	Attempts []AttemptSummary `json:"-"`
}

// TryOrder returns the strategies to run for a mode, in order.
func TryOrder(mode settings.Mode) []stt.Strategy {
	switch mode {
	case settings.ModePrimaryOnly:
		return []stt.Strategy{stt.StrategyPrimary}
	case settings.ModeSecondaryOnly:
		return []stt.Strategy{stt.StrategySecondary}
	default:
		return []stt.Strategy{stt.StrategyHybrid, stt.StrategySecondary, stt.StrategyPrimary}
	}
}

// Router is built once at startup and shared by every invocation.
type Router struct {
	providers Providers
	settings  settings.Source
	store     storage.Store
	log       zerolog.Logger

	tracer   trace.Tracer
	attempts metric.Int64Counter
}

// New creates a router. Telemetry goes to the global otel providers.
func New(providers Providers, src settings.Source, store storage.Store, log zerolog.Logger) *Router {
	meter := otel.Meter(instrumentationName)
	attempts, err := meter.Int64Counter("microia.attempts",
		metric.WithDescription("Transcription attempts by strategy and outcome"),
	)
	if err != nil {
		log.Warn().Err(err).Msg("failed to create attempts counter")
	}
	return &Router{
		providers: providers,
		settings:  src,
		store:     store,
		log:       logger.Component(log, "router"),
		tracer:    otel.Tracer(instrumentationName),
		attempts:  attempts,
	}
}

// Process turns the audio at audioRef into one quality-scored transcript.
// A non-empty languageOverride replaces the configured default language.
func (r *Router) Process(ctx context.Context, audioRef, languageOverride string) (*Result, error) {
	ctx, span := r.tracer.Start(ctx, "microia.process")
	defer span.End()

	log := logger.Scoped(ctx, r.log, "router")

	res, err := r.process(ctx, log, audioRef, languageOverride)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, string(KindOf(err)))
		log.Warn().Err(err).Str("audio_ref", audioRef).Msg("audio processing failed")
		return nil, err
	}

	span.SetAttributes(
		attribute.String("microia.mode_used", string(res.ModeUsed)),
		attribute.Float64("microia.score", res.Quality.Score),
	)
	log.Info().
		Str("mode_used", string(res.ModeUsed)).
		Float64("score", res.Quality.Score).
		Int("attempts", len(res.Attempts)).
		Int("text_length", len(res.Text)).
		Msg("audio processed")
	return res, nil
}

func (r *Router) process(ctx context.Context, log zerolog.Logger, audioRef, languageOverride string) (*Result, error) {
	cfg := settings.Resolve(ctx, r.settings, log)

	language := cfg.DefaultLanguage
	if languageOverride != "" {
		language = languageOverride
	}

	data, err := r.store.Read(ctx, audioRef)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, contextError(ctxErr)
		}
		return nil, &Error{Kind: KindAudioUnreadable, Message: "cannot read audio", Err: err}
	}
	audio := stt.Audio{Data: data, Name: path.Base(audioRef)}

	order := TryOrder(cfg.Mode)
	log.Debug().
		Str("mode", string(cfg.Mode)).
		Bool("fallback", cfg.FallbackEnabled).
		Float64("threshold", cfg.QualityThreshold).
		Str("language", language).
		Msg("routing audio")

	var (
		candidate *Result
		summaries []AttemptSummary
		failures  []error
	)
	for _, strategy := range order {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, contextError(ctxErr)
		}

		start := time.Now()
		attempt, err := r.run(ctx, strategy, audio, language)
		if errors.Is(err, errInvocationEnded) {
			return nil, contextError(ctx.Err())
		}
		summary := AttemptSummary{Strategy: strategy, Duration: time.Since(start)}

		if err != nil {
			summary.Err = err
			summaries = append(summaries, summary)
			failures = append(failures, fmt.Errorf("%s: %w", strategy, err))
			r.record(ctx, strategy, "failed")
			log.Warn().Err(err).Str(logger.FieldStrategy, string(strategy)).Msg("attempt failed")
			if !cfg.FallbackEnabled {
				break
			}
			continue
		}

		assessment := quality.Evaluate(attempt.Text, attempt.Confidence)
		summary.Provider = attempt.Provider
		summary.Score = assessment.Score
		summary.Passed = assessment.Score >= cfg.QualityThreshold
		summaries = append(summaries, summary)

		candidate = &Result{
			ModeUsed: strategy,
			Text:     attempt.Text,
			Quality:  assessment,
			Meta:     Meta{Language: language},
		}

		log.Debug().
			Str(logger.FieldStrategy, string(strategy)).
			Str("provider", attempt.Provider).
			Float64("score", assessment.Score).
			Interface("reasons", assessment.Reasons).
			Msg("attempt evaluated")

		if summary.Passed {
			r.record(ctx, strategy, "passed")
			break
		}
		r.record(ctx, strategy, "below_threshold")
		if !cfg.FallbackEnabled {
			break
		}
	}

	if candidate == nil {
		return nil, &Error{
			Kind:    KindAllProvidersFailed,
			Message: fmt.Sprintf("%d strategies failed", len(failures)),
			Err:     errors.Join(failures...),
		}
	}
	candidate.Attempts = summaries
	return candidate, nil
}

var errInvocationEnded = errors.New("invocation ended before the attempt finished")

type outcome struct {
	attempt *stt.Attempt
	err     error
}

// run executes one strategy. The provider call is detached from cancellation
// so it can finish cleanly, but the router stops waiting as soon as ctx ends.
func (r *Router) run(ctx context.Context, strategy stt.Strategy, audio stt.Audio, language string) (*stt.Attempt, error) {
	p, ok := r.providers.For(strategy)
	if !ok {
		return nil, &stt.ProviderError{Kind: stt.KindUnavailable, Provider: string(strategy), Detail: "provider not configured"}
	}

	ctx, span := r.tracer.Start(ctx, "microia.attempt", trace.WithAttributes(
		attribute.String("microia.strategy", string(strategy)),
		attribute.String("microia.provider", p.Name()),
	))
	defer span.End()

	done := make(chan outcome, 1)
	go func() {
		a, err := p.Transcribe(context.WithoutCancel(ctx), audio, language)
		done <- outcome{attempt: a, err: err}
	}()

	select {
	case o := <-done:
		if o.err == nil && o.attempt == nil {
			o.err = &stt.ProviderError{Kind: stt.KindUnavailable, Provider: p.Name(), Detail: "no attempt returned"}
		}
		if o.err != nil {
			span.RecordError(o.err)
			span.SetStatus(codes.Error, "attempt failed")
		}
		return o.attempt, o.err
	case <-ctx.Done():
		span.SetStatus(codes.Error, "invocation ended")
		return nil, errInvocationEnded
	}
}

func (r *Router) record(ctx context.Context, strategy stt.Strategy, result string) {
	if r.attempts == nil {
		return
	}
	r.attempts.Add(ctx, 1, metric.WithAttributes(
		attribute.String("strategy", string(strategy)),
		attribute.String("outcome", result),
	))
}
