package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config is the process configuration, read from the environment and an
// optional .env file.
type Config struct {
	Port              string        `mapstructure:"port" validate:"required,numeric"`
	GinMode           string        `mapstructure:"gin_mode" validate:"oneof=debug release test"`
	LogLevel          string        `mapstructure:"log_level"`
	LogFormat         string        `mapstructure:"log_format" validate:"oneof=json console pretty"`
	InvocationTimeout time.Duration `mapstructure:"invocation_timeout" validate:"gt=0"`
	ProviderTimeout   time.Duration `mapstructure:"provider_timeout" validate:"gt=0"`

	OpenAIKey                string `mapstructure:"openai_api_key" validate:"required"`
	OpenAIBaseURL            string `mapstructure:"openai_base_url" validate:"omitempty,url"`
	OpenAIChatModel          string `mapstructure:"openai_chat_model"`
	OpenAITranscriptionModel string `mapstructure:"openai_transcription_model"`

	GoogleSTTKeyFile  string `mapstructure:"google_stt_key_file"`
	GoogleSTTEndpoint string `mapstructure:"google_stt_endpoint" validate:"omitempty,url"`
	GoogleSTTModel    string `mapstructure:"google_stt_model"`
	GoogleProjectID   string `mapstructure:"google_project_id" validate:"required_if=SettingsSource firestore"`

	SettingsSource          string  `mapstructure:"settings_source" validate:"oneof=firestore static"`
	SettingsDocument        string  `mapstructure:"settings_document"`
	FirestoreEndpoint       string  `mapstructure:"firestore_endpoint" validate:"omitempty,url"`
	MicroIAMode             string  `mapstructure:"microia_mode" validate:"omitempty,oneof=HYBRID PRIMARY_ONLY SECONDARY_ONLY"`
	MicroIAFallbackEnabled  bool    `mapstructure:"microia_fallback_enabled"`
	MicroIAQualityThreshold float64 `mapstructure:"microia_quality_threshold" validate:"gte=0,lte=1"`
	MicroIALanguageCode     string  `mapstructure:"microia_language_code"`

	StorageBackend   string `mapstructure:"storage_backend" validate:"oneof=gcs s3 local"`
	StorageBucket    string `mapstructure:"storage_bucket" validate:"required_if=StorageBackend s3"`
	StorageLocalRoot string `mapstructure:"storage_local_root"`
	GCSEndpoint      string `mapstructure:"gcs_endpoint" validate:"omitempty,url"`
	S3Region         string `mapstructure:"s3_region"`
	S3Endpoint       string `mapstructure:"s3_endpoint" validate:"omitempty,url"`
	S3AccessKey      string `mapstructure:"s3_access_key"`
	S3SecretKey      string `mapstructure:"s3_secret_key"`

	AuthProjectID string `mapstructure:"auth_project_id"`
	AuthCertsURL  string `mapstructure:"auth_certs_url" validate:"omitempty,url"`

	OTelEndpoint    string  `mapstructure:"otel_exporter_otlp_endpoint"`
	OTelInsecure    bool    `mapstructure:"otel_exporter_otlp_insecure"`
	OTelServiceName string  `mapstructure:"otel_service_name"`
	OTelSampleRate  float64 `mapstructure:"otel_sample_rate" validate:"gte=0,lte=1"`
}

var defaults = map[string]any{
	"port":                        "8080",
	"gin_mode":                    "release",
	"log_level":                   "info",
	"log_format":                  "json",
	"invocation_timeout":          "120s",
	"provider_timeout":            "60s",
	"openai_api_key":              "",
	"openai_base_url":             "",
	"openai_chat_model":           "gpt-4o-mini",
	"openai_transcription_model":  "whisper-1",
	"google_stt_key_file":         "",
	"google_stt_endpoint":         "",
	"google_stt_model":            "",
	"google_project_id":           "",
	"settings_source":             "static",
	"settings_document":           "settings/microia",
	"firestore_endpoint":          "",
	"microia_mode":                "HYBRID",
	"microia_fallback_enabled":    true,
	"microia_quality_threshold":   0.62,
	"microia_language_code":       "fr-FR",
	"storage_backend":             "gcs",
	"storage_bucket":              "",
	"storage_local_root":          "uploads",
	"gcs_endpoint":                "",
	"s3_region":                   "us-east-1",
	"s3_endpoint":                 "",
	"s3_access_key":               "",
	"s3_secret_key":               "",
	"auth_project_id":             "",
	"auth_certs_url":              "",
	"otel_exporter_otlp_endpoint": "",
	"otel_exporter_otlp_insecure": false,
	"otel_service_name":           "presto-microia",
	"otel_sample_rate":            1.0,
}

// Load reads .env (if present) and the environment, applies defaults and
// validates the result.
func Load() (*Config, error) {
	// A missing .env file is normal in deployed environments.
	_ = godotenv.Load()

	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.AutomaticEnv()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode configuration: %w", err)
	}
	cfg.MicroIAMode = strings.ToUpper(strings.TrimSpace(cfg.MicroIAMode))
	cfg.StorageBackend = strings.ToLower(strings.TrimSpace(cfg.StorageBackend))
	cfg.SettingsSource = strings.ToLower(strings.TrimSpace(cfg.SettingsSource))

	if err := validator.New(validator.WithRequiredStructEnabled()).Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// AuthEnabled reports whether Firebase ID tokens are verified.
func (c *Config) AuthEnabled() bool {
	return c.AuthProjectID != ""
}
