// Package gcp builds authenticated HTTP clients for the Google REST APIs the
// service talks to (Speech-to-Text, Firestore, Cloud Storage).
package gcp

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const CloudPlatformScope = "https://www.googleapis.com/auth/cloud-platform"

// Credentials is the resolved authentication for Google REST calls.
// Exactly one of APIKey or an oauth2-backed Client is meaningful.
type Credentials struct {
	APIKey string
	Client *http.Client
}

// IsAPIKey reports whether keyData looks like a Google API key
// (39 characters, typically starting with "AIzaSy").
func IsAPIKey(keyData string) bool {
	k := strings.TrimSpace(keyData)
	return len(k) == 39 && strings.HasPrefix(k, "AIzaSy")
}

// NewCredentials resolves keyData, which can be either:
//   - An API key
//   - A file path to a service account JSON key file
//   - A JSON string containing the service account credentials
//   - Empty, in which case application default credentials are used
func NewCredentials(ctx context.Context, keyData string, timeout time.Duration) (*Credentials, error) {
	keyData = strings.TrimSpace(keyData)
	base := &http.Client{Timeout: timeout}

	if IsAPIKey(keyData) {
		return &Credentials{APIKey: keyData, Client: base}, nil
	}

	// oauth2.NewClient picks up the base client (and its timeout) from the context.
	ctx = context.WithValue(ctx, oauth2.HTTPClient, base)

	var creds *google.Credentials
	var err error
	switch {
	case keyData == "":
		creds, err = google.FindDefaultCredentials(ctx, CloudPlatformScope)
		if err != nil {
			return nil, fmt.Errorf("failed to find default credentials: %w", err)
		}
	case strings.HasPrefix(keyData, "{"):
		creds, err = google.CredentialsFromJSON(ctx, []byte(keyData), CloudPlatformScope)
		if err != nil {
			return nil, fmt.Errorf("failed to create credentials from JSON: %w", err)
		}
	default:
		jsonData, readErr := os.ReadFile(keyData)
		if readErr != nil {
			return nil, fmt.Errorf("failed to read key file '%s': %w", keyData, readErr)
		}
		creds, err = google.CredentialsFromJSON(ctx, jsonData, CloudPlatformScope)
		if err != nil {
			return nil, fmt.Errorf("failed to create credentials from JSON: %w", err)
		}
	}

	client := oauth2.NewClient(ctx, creds.TokenSource)
	client.Timeout = timeout
	return &Credentials{Client: client}, nil
}

// Static wraps a plain client, used for emulators and tests.
func Static(client *http.Client) *Credentials {
	if client == nil {
		client = http.DefaultClient
	}
	return &Credentials{Client: client}
}

// Authorize appends the API key query parameter when one is configured.
func (c *Credentials) Authorize(req *http.Request) {
	if c.APIKey == "" {
		return
	}
	q := req.URL.Query()
	q.Set("key", c.APIKey)
	req.URL.RawQuery = q.Encode()
}
