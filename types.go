//
// Date: 2026-10-15
// Author: Spicer Matthews <spicer@cloudmanic.com>
// Copyright (c) 2026 Cloudmanic Labs, LLC. All rights reserved.
//
// Description: Type definitions and interfaces for the Spotify Remote application.
//

package main

import (
	"context"
	"net/url"

	"github.com/cloudmanic/spotify-remote/auth"
	"github.com/cloudmanic/spotify-remote/spotify"
)

// LoginFlow defines the PKCE login operations used by the HTTP handlers.
// This allows for mocking in tests.
type LoginFlow interface {
	BeginLogin(ctx context.Context) (string, error)
	HandleCallback(ctx context.Context, query url.Values) (*auth.TokenGrant, error)
	Reset(ctx context.Context) error
	RedirectURI() string
}

// PlayerSession defines the session operations used by the HTTP handlers.
// This allows for mocking in tests.
type PlayerSession interface {
	Start(grant *auth.TokenGrant)
	Logout()
	LoggedIn() bool
	CanView() bool
	CanControl() bool
	Display() spotify.Display
	SendPlaybackCommand(ctx context.Context, action spotify.Action) error
}

// APIResponse represents a standard JSON response for the API.
type APIResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
	Data    any    `json:"data,omitempty"`
}
