package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/sashabaranov/go-openai"

	"presto/internal/ai"
	"presto/internal/api"
	"presto/internal/auth"
	"presto/internal/config"
	"presto/internal/gcp"
	"presto/internal/logger"
	"presto/internal/router"
	"presto/internal/settings"
	"presto/internal/storage"
	"presto/internal/stt"
	"presto/internal/telemetry"
)

const version = "1.0.0"

func main() {
	// Load configuration (.env is read when present)
	cfg, err := config.Load()
	if err != nil {
		boot := logger.New(logger.Config{})
		boot.Fatal().Err(err).Msg("failed to load configuration")
	}

	log := logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTelemetry, err := telemetry.Setup(ctx, telemetry.Config{
		ServiceName:    cfg.OTelServiceName,
		ServiceVersion: version,
		Endpoint:       cfg.OTelEndpoint,
		Insecure:       cfg.OTelInsecure,
		SampleRate:     cfg.OTelSampleRate,
	}, logger.Component(log, "telemetry"))
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize telemetry")
	}

	handler, err := build(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build service")
	}

	gin.SetMode(cfg.GinMode)
	r := gin.New()
	r.Use(gin.Recovery())
	handler.RegisterRoutes(r)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.Port).Msg("micro-IA backend running")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.InvocationTimeout+5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server shutdown failed")
	}
	if err := shutdownTelemetry(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("telemetry shutdown failed")
	}
}

// build creates every long-lived collaborator once. Invocations share them
// read-only.
func build(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*api.Handler, error) {
	openaiCfg := openai.DefaultConfig(cfg.OpenAIKey)
	if cfg.OpenAIBaseURL != "" {
		openaiCfg.BaseURL = cfg.OpenAIBaseURL
	}
	openaiCfg.HTTPClient = &http.Client{Timeout: cfg.ProviderTimeout}
	openaiClient := openai.NewClientWithConfig(openaiCfg)

	aiService := ai.NewService(openaiClient, cfg.OpenAIChatModel, logger.Component(log, "ai"))

	providers, err := stt.CreateProviders(ctx, stt.FactoryConfig{
		GoogleKeyData:  cfg.GoogleSTTKeyFile,
		GoogleEndpoint: cfg.GoogleSTTEndpoint,
		GoogleModel:    cfg.GoogleSTTModel,
		Timeout:        cfg.ProviderTimeout,
		OpenAI:         openaiClient,
		WhisperModel:   cfg.OpenAITranscriptionModel,
		Cleaner:        aiService,
	}, logger.Component(log, "stt"))
	if err != nil {
		return nil, err
	}

	src, err := settingsSource(ctx, cfg)
	if err != nil {
		return nil, err
	}

	store, err := audioStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	var verifier *auth.Verifier
	if cfg.AuthEnabled() {
		verifier = auth.NewVerifier(cfg.AuthProjectID, cfg.AuthCertsURL, nil)
		log.Info().Str("project", cfg.AuthProjectID).Msg("Firebase ID token verification enabled")
	} else {
		log.Warn().Msg("AUTH_PROJECT_ID not set, authenticated functions will reject every caller")
	}

	rt := router.New(providers, src, store, log)
	return api.NewHandler(rt, aiService, verifier, cfg.InvocationTimeout, log), nil
}

func settingsSource(ctx context.Context, cfg *config.Config) (settings.Source, error) {
	if cfg.SettingsSource != "firestore" {
		return settings.NewStaticSource(cfg.MicroIAMode, cfg.MicroIAFallbackEnabled, cfg.MicroIAQualityThreshold, cfg.MicroIALanguageCode), nil
	}
	creds, err := gcp.NewCredentials(ctx, cfg.GoogleSTTKeyFile, cfg.ProviderTimeout)
	if err != nil {
		return nil, err
	}
	return settings.NewFirestoreSource(creds, cfg.FirestoreEndpoint, cfg.GoogleProjectID, cfg.SettingsDocument), nil
}

// audioStore registers every backend that can be built; the configured one
// also serves plain paths.
func audioStore(ctx context.Context, cfg *config.Config) (storage.Store, error) {
	defaultScheme := map[string]string{
		"gcs":   storage.SchemeGCS,
		"s3":    storage.SchemeS3,
		"local": storage.SchemeFile,
	}[cfg.StorageBackend]
	mux := storage.NewMux(defaultScheme, cfg.StorageBucket)

	local, err := storage.NewLocal(cfg.StorageLocalRoot)
	if err != nil {
		return nil, err
	}
	mux.Register(storage.SchemeFile, local)

	if cfg.StorageBackend == "gcs" {
		creds, err := gcp.NewCredentials(ctx, cfg.GoogleSTTKeyFile, cfg.ProviderTimeout)
		if err != nil {
			return nil, err
		}
		mux.Register(storage.SchemeGCS, storage.NewGCS(creds, cfg.GCSEndpoint))
	}

	if cfg.StorageBackend == "s3" || cfg.S3AccessKey != "" {
		s3, err := storage.NewS3(ctx, storage.S3Config{
			Region:    cfg.S3Region,
			Endpoint:  cfg.S3Endpoint,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
		})
		if err != nil {
			return nil, err
		}
		mux.Register(storage.SchemeS3, s3)
	}
	return mux, nil
}
