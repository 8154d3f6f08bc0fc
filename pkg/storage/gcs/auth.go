package gcs

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/edelguur/admin-backend/pkg/config"
)

const storageScope = "https://www.googleapis.com/auth/devstorage.read_write"

// credentials picks the token source for the bucket client: inline service
// account JSON, then a key file, then the metadata server.
func credentials(ctx context.Context, httpClient *http.Client, gcp config.GCPConfig) (oauth2.TokenSource, error) {
	ctx = context.WithValue(context.WithoutCancel(ctx), oauth2.HTTPClient, httpClient)

	raw := []byte(gcp.CredentialsJSON)
	if len(raw) == 0 && gcp.ApplicationCredentials != "" {
		b, err := os.ReadFile(gcp.ApplicationCredentials)
		if err != nil {
			return nil, fmt.Errorf("reading credentials file: %w", err)
		}
		raw = b
	}
	if len(raw) == 0 {
		return oauth2.ReuseTokenSource(nil, google.ComputeTokenSource("", storageScope)), nil
	}
	return serviceAccountTokens(ctx, raw)
}

func serviceAccountTokens(ctx context.Context, raw []byte) (oauth2.TokenSource, error) {
	cfg, err := google.JWTConfigFromJSON(raw, storageScope)
	if err != nil {
		return nil, fmt.Errorf("parsing service account credentials: %w", err)
	}
	if cfg.Email == "" {
		return nil, fmt.Errorf("service account credentials missing client_email")
	}
	return cfg.TokenSource(ctx), nil
}
