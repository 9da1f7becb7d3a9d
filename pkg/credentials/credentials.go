// Package credentials loads Reddit API credentials from the environment.
//
// Credentials deliberately never live in config.toml; they come from process
// environment variables, optionally seeded from a .env file. A variable
// already set in the environment always wins over the .env file.
package credentials

import (
	"errors"
	"os"

	"github.com/joho/godotenv"
)

// Environment variable names.
const (
	EnvClientID     = "REDDIT_CLIENT_ID"
	EnvClientSecret = "REDDIT_CLIENT_SECRET"
	EnvUserAgent    = "REDDIT_USER_AGENT"
)

// ErrMissingCredentials indicates the Reddit client id or secret is absent.
var ErrMissingCredentials = errors.New("reddit credentials missing: set REDDIT_CLIENT_ID and REDDIT_CLIENT_SECRET")

// Reddit holds the script-app credentials used for OAuth2 client-credentials
// authentication against the Reddit API.
type Reddit struct {
	ClientID     string
	ClientSecret string
	UserAgent    string
}

// Load reads Reddit credentials from the environment. When filenames are
// given they are loaded as .env files first; otherwise ./.env is tried.
// A missing .env file is not an error.
func Load(filenames ...string) *Reddit {
	// godotenv never overrides variables already present in the environment.
	_ = godotenv.Load(filenames...)

	return &Reddit{
		ClientID:     os.Getenv(EnvClientID),
		ClientSecret: os.Getenv(EnvClientSecret),
		UserAgent:    os.Getenv(EnvUserAgent),
	}
}

// Validate returns ErrMissingCredentials when the client id or secret is empty.
func (r *Reddit) Validate() error {
	if r.ClientID == "" || r.ClientSecret == "" {
		return ErrMissingCredentials
	}
	return nil
}

// ResolveUserAgent returns the credential user agent, falling back to the
// given default when the environment did not set one.
func (r *Reddit) ResolveUserAgent(fallback string) string {
	if r.UserAgent != "" {
		return r.UserAgent
	}
	return fallback
}
