//
// Date: 2026-10-15
// Author: Spicer Matthews <spicer@cloudmanic.com>
// Copyright (c) 2026 Cloudmanic Labs, LLC. All rights reserved.
//
// Description: Configuration defaults, config file loading and validation.
//

package main

import (
	"fmt"
	"net"
	"net/url"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/cloudmanic/spotify-remote/spotify"

	spotifyauth "github.com/zmb3/spotify/v2/auth"
)

const (
	defaultRedirectURI = "http://127.0.0.1:8080/"
	defaultLogoutURL   = "https://www.spotify.com/logout/"
	defaultLogoutDelay = 500 * time.Millisecond
	defaultSessionTTL  = 10 * time.Minute
)

// duration decodes Go duration strings such as "5s" from TOML.
type duration struct {
	time.Duration
}

// UnmarshalText parses a duration string.
func (d *duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// Config holds the application settings.
type Config struct {
	ClientID     string   `toml:"client_id"`
	RedirectURI  string   `toml:"redirect_uri"`
	ListenAddr   string   `toml:"listen_addr"`
	Scopes       []string `toml:"scopes"`
	PollInterval duration `toml:"poll_interval"`
	RefreshDelay duration `toml:"refresh_delay"`
	SessionTTL   duration `toml:"session_ttl"`
	LogoutURL    string   `toml:"logout_url"`
	LogoutDelay  duration `toml:"logout_delay"`
	Locale       string   `toml:"locale"`
	LogLevel     string   `toml:"log_level"`
}

// defaultConfig returns a Config with every optional setting filled in.
func defaultConfig() *Config {
	return &Config{
		RedirectURI: defaultRedirectURI,
		Scopes: []string{
			spotifyauth.ScopeUserReadPlaybackState,
			spotifyauth.ScopeUserModifyPlaybackState,
		},
		PollInterval: duration{spotify.DefaultPollInterval},
		RefreshDelay: duration{spotify.DefaultRefreshDelay},
		SessionTTL:   duration{defaultSessionTTL},
		LogoutURL:    defaultLogoutURL,
		LogoutDelay:  duration{defaultLogoutDelay},
		Locale:       "en",
		LogLevel:     "info",
	}
}

// loadConfigFile reads a TOML config file over the defaults.
func loadConfigFile(path string) (*Config, error) {
	cfg := defaultConfig()
	if path == "" {
		return cfg, nil
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	return cfg, nil
}

// validate checks required settings and fills the derived ones.
func (c *Config) validate() error {
	if c.ClientID == "" {
		return fmt.Errorf("SPOTIFY_CLIENT_ID is required. Use --client-id, the environment or the config file")
	}

	u, err := url.Parse(c.RedirectURI)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid redirect URI %q", c.RedirectURI)
	}
	if u.RawQuery != "" || u.Fragment != "" {
		return fmt.Errorf("redirect URI %q must not have a query or fragment", c.RedirectURI)
	}
	if u.Path == "" {
		u.Path = "/"
		c.RedirectURI = u.String()
	}

	if c.ListenAddr == "" {
		c.ListenAddr = listenAddrFor(u)
	}

	if len(c.Scopes) == 0 {
		return fmt.Errorf("at least one scope is required")
	}
	if c.PollInterval.Duration <= 0 {
		return fmt.Errorf("poll interval must be positive")
	}

	return nil
}

// callbackPath is the path part of the redirect URI.
func (c *Config) callbackPath() string {
	u, err := url.Parse(c.RedirectURI)
	if err != nil || u.Path == "" {
		return "/"
	}
	return u.Path
}

// listenAddrFor derives the listen address from the redirect URI host.
func listenAddrFor(u *url.URL) string {
	port := u.Port()
	if port == "" {
		port = "80"
		if u.Scheme == "https" {
			port = "443"
		}
	}
	return net.JoinHostPort(u.Hostname(), port)
}

// parseScopes splits a space or comma separated scope list.
func parseScopes(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return r == ' ' || r == ','
	})
}
