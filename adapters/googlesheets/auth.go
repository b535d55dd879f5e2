package googlesheets

import (
	"context"
	"fmt"
	"os"
	"strings"

	"golang.org/x/oauth2/google"
	"golang.org/x/oauth2/jwt"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// New creates a SheetsAdaptor, resolving credentials from config in order:
// CredentialsJSON, ServiceAccountEmail with PrivateKey, CredentialsFile,
// GOOGLE_APPLICATION_CREDENTIALS, then application default credentials
func New(ctx context.Context, config Config) (*SheetsAdaptor, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	opt, err := clientOption(ctx, config)
	if err != nil {
		return nil, err
	}
	return NewSheetsAdaptor(ctx, config, opt)
}

func clientOption(ctx context.Context, config Config) (option.ClientOption, error) {
	switch {
	case config.CredentialsJSON != "":
		return jsonKeyOption(ctx, []byte(config.CredentialsJSON))

	case config.ServiceAccountEmail != "":
		jwtConfig := &jwt.Config{
			Email:      config.ServiceAccountEmail,
			PrivateKey: []byte(normalizePrivateKey(config.PrivateKey)),
			Scopes:     []string{sheets.SpreadsheetsScope},
			TokenURL:   google.JWTTokenURL,
		}
		return option.WithTokenSource(jwtConfig.TokenSource(ctx)), nil
	}

	path := config.CredentialsFile
	if path == "" {
		path = os.Getenv("GOOGLE_APPLICATION_CREDENTIALS")
	}
	if path != "" {
		jsonData, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read JSON key file: %w", err)
		}
		return jsonKeyOption(ctx, jsonData)
	}

	// gcloud application-default login, or the metadata server on Google Cloud
	tokenSource, err := google.DefaultTokenSource(ctx, sheets.SpreadsheetsScope)
	if err != nil {
		return nil, fmt.Errorf("failed to get default token source: %w", err)
	}
	return option.WithTokenSource(tokenSource), nil
}

func jsonKeyOption(ctx context.Context, jsonData []byte) (option.ClientOption, error) {
	creds, err := google.CredentialsFromJSON(ctx, jsonData, sheets.SpreadsheetsScope)
	if err != nil {
		return nil, fmt.Errorf("failed to parse credentials: %w", err)
	}
	return option.WithCredentials(creds), nil
}

// normalizePrivateKey restores newlines in a PEM key passed through an
// environment variable as a single line
func normalizePrivateKey(key string) string {
	if strings.Contains(key, "\n") {
		return key
	}
	return strings.ReplaceAll(key, `\n`, "\n")
}
