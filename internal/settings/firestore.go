package settings

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"presto/internal/gcp"
)

const (
	DefaultFirestoreEndpoint = "https://firestore.googleapis.com/v1"
	DefaultDocument          = "settings/microia"
)

// FirestoreSource reads the settings document through the Firestore REST API.
type FirestoreSource struct {
	endpoint string
	project  string
	document string
	creds    *gcp.Credentials
}

// NewFirestoreSource creates a source for project/document. Empty endpoint and
// document use the public API and settings/microia.
func NewFirestoreSource(creds *gcp.Credentials, endpoint, project, document string) *FirestoreSource {
	if endpoint == "" {
		endpoint = DefaultFirestoreEndpoint
	}
	if document == "" {
		document = DefaultDocument
	}
	return &FirestoreSource{
		endpoint: strings.TrimRight(endpoint, "/"),
		project:  project,
		document: strings.Trim(document, "/"),
		creds:    creds,
	}
}

type firestoreValue struct {
	StringValue  *string  `json:"stringValue,omitempty"`
	BooleanValue *bool    `json:"booleanValue,omitempty"`
	DoubleValue  *float64 `json:"doubleValue,omitempty"`
	IntegerValue *string  `json:"integerValue,omitempty"`
}

type firestoreDocument struct {
	Name   string                    `json:"name"`
	Fields map[string]firestoreValue `json:"fields"`
}

func (s *FirestoreSource) url() string {
	return fmt.Sprintf("%s/projects/%s/databases/(default)/documents/%s", s.endpoint, s.project, s.document)
}

// Load fetches the document. A missing document is not an error: every field
// is absent and defaults apply.
func (s *FirestoreSource) Load(ctx context.Context) (Partial, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url(), nil)
	if err != nil {
		return Partial{}, fmt.Errorf("failed to create firestore request: %w", err)
	}
	s.creds.Authorize(req)

	resp, err := s.creds.Client.Do(req)
	if err != nil {
		return Partial{}, fmt.Errorf("firestore request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Partial{}, fmt.Errorf("failed to read firestore response: %w", err)
	}
	if resp.StatusCode == http.StatusNotFound {
		return Partial{}, nil
	}
	if resp.StatusCode != http.StatusOK {
		return Partial{}, fmt.Errorf("firestore returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var doc firestoreDocument
	if err := json.Unmarshal(body, &doc); err != nil {
		return Partial{}, fmt.Errorf("failed to parse firestore document: %w", err)
	}
	return doc.partial(), nil
}

// partial keeps only fields of the expected type.
func (d firestoreDocument) partial() Partial {
	var p Partial
	if v, ok := d.Fields["mode"]; ok && v.StringValue != nil {
		p.Mode = v.StringValue
	}
	if v, ok := d.Fields["fallbackEnabled"]; ok && v.BooleanValue != nil {
		p.FallbackEnabled = v.BooleanValue
	}
	if v, ok := d.Fields["qualityThreshold"]; ok {
		switch {
		case v.DoubleValue != nil:
			p.QualityThreshold = v.DoubleValue
		case v.IntegerValue != nil:
			if n, err := strconv.ParseInt(*v.IntegerValue, 10, 64); err == nil {
				f := float64(n)
				p.QualityThreshold = &f
			}
		}
	}
	if v, ok := d.Fields["languageCode"]; ok && v.StringValue != nil {
		p.LanguageCode = v.StringValue
	}
	return p
}
