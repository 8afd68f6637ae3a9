//
// Date: 2026-10-15
// Author: Spicer Matthews <spicer@cloudmanic.com>
// Copyright (c) 2026 Cloudmanic Labs, LLC. All rights reserved.
//
// Description: Authorization Code flow with PKCE against Spotify accounts.
// No client secret is ever used; the code is bound to a locally generated
// verifier that only this process knows.
//

package auth

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/charmbracelet/log"
	"golang.org/x/oauth2"

	spotifyauth "github.com/zmb3/spotify/v2/auth"
)

// Storage keys for the in-flight login.
const (
	StateKey    = "pkce_state"
	VerifierKey = "pkce_code_verifier"
)

// KeyValueStore is session-scoped storage that survives the redirect to the
// authorization server and back.
type KeyValueStore interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
	Clear(ctx context.Context) error
}

// Config holds the public client settings.
type Config struct {
	ClientID    string
	RedirectURI string
	Scopes      []string

	// AuthURL and TokenURL default to the Spotify accounts endpoints.
	AuthURL  string
	TokenURL string
}

// TokenGrant is the result of a successful code exchange.
type TokenGrant struct {
	AccessToken string
	Scopes      map[string]struct{}
}

// HasScope reports whether the scope was granted.
func (g *TokenGrant) HasScope(scope string) bool {
	if g == nil {
		return false
	}
	_, ok := g.Scopes[scope]
	return ok
}

// Flow runs the PKCE login handshake.
type Flow struct {
	oauth  *oauth2.Config
	store  KeyValueStore
	random RandomSource
	client *http.Client
	logger *log.Logger
}

// Option configures a Flow.
type Option func(*Flow)

// WithRandomSource replaces crypto/rand as the source for state and verifier.
func WithRandomSource(src RandomSource) Option {
	return func(f *Flow) { f.random = src }
}

// WithHTTPClient sets the client used for the token exchange.
func WithHTTPClient(client *http.Client) Option {
	return func(f *Flow) { f.client = client }
}

// WithLogger sets the logger.
func WithLogger(logger *log.Logger) Option {
	return func(f *Flow) { f.logger = logger }
}

// NewFlow creates a Flow for the given client settings and storage.
func NewFlow(cfg Config, store KeyValueStore, opts ...Option) (*Flow, error) {
	if cfg.ClientID == "" {
		return nil, fmt.Errorf("client ID is required")
	}
	if cfg.RedirectURI == "" {
		return nil, fmt.Errorf("redirect URI is required")
	}
	if store == nil {
		return nil, fmt.Errorf("storage is required")
	}

	authURL := cfg.AuthURL
	if authURL == "" {
		authURL = spotifyauth.AuthURL
	}
	tokenURL := cfg.TokenURL
	if tokenURL == "" {
		tokenURL = spotifyauth.TokenURL
	}

	f := &Flow{
		oauth: &oauth2.Config{
			ClientID:    cfg.ClientID,
			RedirectURL: cfg.RedirectURI,
			Scopes:      cfg.Scopes,
			Endpoint: oauth2.Endpoint{
				AuthURL:  authURL,
				TokenURL: tokenURL,
				// Public client: client_id goes in the form body, and a
				// fixed style keeps oauth2 from retrying with another one.
				AuthStyle: oauth2.AuthStyleInParams,
			},
		},
		store:  store,
		random: rand.Reader,
		logger: log.Default(),
	}

	for _, opt := range opts {
		opt(f)
	}

	return f, nil
}

// BeginLogin creates a new state nonce and code verifier, stores them and
// returns the authorization URL the browser must be sent to.
func (f *Flow) BeginLogin(ctx context.Context) (string, error) {
	state, err := RandomString(f.random, StateLength)
	if err != nil {
		return "", fmt.Errorf("failed to generate state: %w", err)
	}

	verifier, err := RandomString(f.random, VerifierLength)
	if err != nil {
		return "", fmt.Errorf("failed to generate code verifier: %w", err)
	}

	if err := f.store.Set(ctx, StateKey, state); err != nil {
		return "", fmt.Errorf("failed to store state: %w", err)
	}
	if err := f.store.Set(ctx, VerifierKey, verifier); err != nil {
		return "", fmt.Errorf("failed to store code verifier: %w", err)
	}

	authURL := f.oauth.AuthCodeURL(state,
		oauth2.SetAuthURLParam("code_challenge_method", "S256"),
		oauth2.SetAuthURLParam("code_challenge", Challenge(verifier)),
	)

	f.logger.Debug("login started", "redirect_uri", f.oauth.RedirectURL)
	return authURL, nil
}

// HandleCallback validates the query of a page load. Without a code parameter
// it does nothing and returns a nil grant. Otherwise it checks the state,
// exchanges the code and clears the stored nonce and verifier.
func (f *Flow) HandleCallback(ctx context.Context, query url.Values) (*TokenGrant, error) {
	code := query.Get("code")
	if code == "" {
		return nil, nil
	}

	state := query.Get("state")
	stored, ok, err := f.store.Get(ctx, StateKey)
	if err != nil {
		return nil, fmt.Errorf("failed to read stored state: %w", err)
	}

	if state == "" || !ok || subtle.ConstantTimeCompare([]byte(state), []byte(stored)) != 1 {
		f.logger.Warn("callback state mismatch, login discarded")
		f.discard(ctx)
		return nil, ErrCSRF
	}

	verifier, ok, err := f.store.Get(ctx, VerifierKey)
	if err != nil {
		return nil, fmt.Errorf("failed to read code verifier: %w", err)
	}
	if !ok || verifier == "" {
		f.logger.Warn("code verifier missing, login discarded")
		f.discard(ctx)
		return nil, ErrMissingVerifier
	}

	grant, err := f.ExchangeCodeForToken(ctx, code, verifier)

	// The nonce and verifier are single use whatever the outcome.
	f.discard(ctx)

	if err != nil {
		return nil, err
	}

	f.logger.Info("login completed", "scopes", len(grant.Scopes))
	return grant, nil
}

// ExchangeCodeForToken posts the authorization code and verifier to the
// token endpoint.
func (f *Flow) ExchangeCodeForToken(ctx context.Context, code, verifier string) (*TokenGrant, error) {
	if f.client != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, f.client)
	}

	tok, err := f.oauth.Exchange(ctx, code, oauth2.VerifierOption(verifier))
	if err != nil {
		var rerr *oauth2.RetrieveError
		if errors.As(err, &rerr) {
			status := 0
			if rerr.Response != nil {
				status = rerr.Response.StatusCode
			}
			return nil, &TokenExchangeError{Status: status, Body: string(rerr.Body)}
		}
		return nil, fmt.Errorf("token exchange failed: %w", err)
	}

	// Servers may omit scope when it equals the requested set.
	scopes := f.oauth.Scopes
	if raw, ok := tok.Extra("scope").(string); ok && raw != "" {
		scopes = strings.Fields(raw)
	}

	grant := &TokenGrant{
		AccessToken: tok.AccessToken,
		Scopes:      make(map[string]struct{}, len(scopes)),
	}
	for _, s := range scopes {
		grant.Scopes[s] = struct{}{}
	}

	return grant, nil
}

// Pending reports whether a login was started and is awaiting its callback.
func (f *Flow) Pending(ctx context.Context) bool {
	_, ok, err := f.store.Get(ctx, StateKey)
	return err == nil && ok
}

// Reset clears all session-scoped storage.
func (f *Flow) Reset(ctx context.Context) error {
	if err := f.store.Clear(ctx); err != nil {
		return fmt.Errorf("failed to clear session storage: %w", err)
	}
	return nil
}

// RedirectURI returns the bare redirect URI, without query.
func (f *Flow) RedirectURI() string {
	return f.oauth.RedirectURL
}

// discard removes the in-flight login from storage.
func (f *Flow) discard(ctx context.Context) {
	for _, key := range []string{StateKey, VerifierKey} {
		if err := f.store.Delete(ctx, key); err != nil {
			f.logger.Warn("failed to clear login key", "key", key, "err", err)
		}
	}
}
