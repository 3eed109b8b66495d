package settings

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"presto/internal/gcp"
	"presto/internal/logger"
)

func strPtr(s string) *string     { return &s }
func boolPtr(b bool) *bool        { return &b }
func floatPtr(f float64) *float64 { return &f }

type failingSource struct{}

func (failingSource) Load(context.Context) (Partial, error) {
	return Partial{}, errors.New("permission denied")
}

func TestMerge(t *testing.T) {
	tests := []struct {
		name string
		in   Partial
		want Settings
	}{
		{"empty uses defaults", Partial{}, Default()},
		{
			"all fields",
			Partial{Mode: strPtr("primary_only"), FallbackEnabled: boolPtr(false), QualityThreshold: floatPtr(0.8), LanguageCode: strPtr("en-US")},
			Settings{Mode: ModePrimaryOnly, FallbackEnabled: false, QualityThreshold: 0.8, DefaultLanguage: "en-US"},
		},
		{
			"invalid fields fall back individually",
			Partial{Mode: strPtr("TURBO"), QualityThreshold: floatPtr(1.5), LanguageCode: strPtr("  ")},
			Default(),
		},
		{
			"threshold bounds are inclusive",
			Partial{QualityThreshold: floatPtr(0)},
			Settings{Mode: ModeHybrid, FallbackEnabled: true, QualityThreshold: 0, DefaultLanguage: "fr-FR"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Merge(tt.in); got != tt.want {
				t.Errorf("Merge() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestResolve_SourceFailureUsesDefaults(t *testing.T) {
	got := Resolve(context.Background(), failingSource{}, logger.Nop())
	if got != Default() {
		t.Errorf("Resolve() = %+v, want defaults", got)
	}
	if got := Resolve(context.Background(), nil, logger.Nop()); got != Default() {
		t.Errorf("Resolve(nil) = %+v, want defaults", got)
	}
}

func TestStaticSource(t *testing.T) {
	tests := []struct {
		name      string
		threshold float64
		want      float64
	}{
		{"zero is a valid threshold", 0, 0},
		{"in range", 0.75, 0.75},
		{"out of range keeps default", 1.2, 0.62},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := NewStaticSource("SECONDARY_ONLY", false, tt.threshold, "")
			got := Resolve(context.Background(), src, logger.Nop())
			want := Settings{Mode: ModeSecondaryOnly, FallbackEnabled: false, QualityThreshold: tt.want, DefaultLanguage: "fr-FR"}
			if got != want {
				t.Errorf("got %+v, want %+v", got, want)
			}
		})
	}
}

func TestFirestoreSource(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"name": "projects/presto/databases/(default)/documents/settings/microia",
			"fields": {
				"mode": {"stringValue": "PRIMARY_ONLY"},
				"fallbackEnabled": {"booleanValue": false},
				"qualityThreshold": {"integerValue": "1"},
				"languageCode": {"booleanValue": true}
			}
		}`))
	}))
	defer srv.Close()

	src := NewFirestoreSource(gcp.Static(srv.Client()), srv.URL, "presto", "")
	got := Resolve(context.Background(), src, logger.Nop())

	if gotPath != "/projects/presto/databases/(default)/documents/settings/microia" {
		t.Errorf("path = %s", gotPath)
	}
	want := Settings{Mode: ModePrimaryOnly, FallbackEnabled: false, QualityThreshold: 1, DefaultLanguage: "fr-FR"}
	if got != want {
		t.Errorf("got %+v, want %+v", got, want)
	}
}

func TestFirestoreSource_Errors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr bool
	}{
		{"missing document", http.StatusNotFound, `{"error":{"code":404}}`, false},
		{"forbidden", http.StatusForbidden, `{"error":{"code":403}}`, true},
		{"malformed", http.StatusOK, `{"fields":`, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			src := NewFirestoreSource(gcp.Static(srv.Client()), srv.URL, "presto", "settings/microia")
			p, err := src.Load(context.Background())
			if (err != nil) != tt.wantErr {
				t.Fatalf("Load() error = %v, wantErr %v", err, tt.wantErr)
			}
			if Merge(p) != Default() {
				t.Errorf("Merge(%+v) should be defaults", p)
			}
		})
	}
}
