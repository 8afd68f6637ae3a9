//
// Date: 2026-10-15
// Author: Spicer Matthews <spicer@cloudmanic.com>
// Copyright (c) 2026 Cloudmanic Labs, LLC. All rights reserved.
//
// Description: Login, callback and logout handlers.
//

package main

import (
	"net/http"

	"github.com/cloudmanic/spotify-remote/render"
	"github.com/cloudmanic/spotify-remote/spotify"
)

// handleHome serves the main page. When Spotify redirects back with a code or
// an error it settles the login first and then redirects to the clean URL.
func (a *app) handleHome(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	if query.Get("code") != "" {
		grant, err := a.flow.HandleCallback(r.Context(), query)
		if err != nil {
			a.logger.Error("login failed", "err", err)
			a.session.Logout()
			a.view.Notify(spotify.NoticeLoginFailed, err.Error())
		} else if grant != nil {
			a.logger.Info("logged in", "scopes", len(grant.Scopes))
			a.session.Start(grant)
		}

		http.Redirect(w, r, a.flow.RedirectURI(), http.StatusSeeOther)
		return
	}

	if reason := query.Get("error"); reason != "" {
		a.logger.Warn("authorization denied", "error", reason)
		if err := a.flow.Reset(r.Context()); err != nil {
			a.logger.Warn("failed to clear login storage", "err", err)
		}
		a.session.Logout()
		a.view.Notify(spotify.NoticeLoginFailed, reason)

		http.Redirect(w, r, a.flow.RedirectURI(), http.StatusSeeOther)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	err := a.html.WritePage(w, render.Page{
		LoggedIn:     a.session.LoggedIn(),
		CanView:      a.session.CanView(),
		CanControl:   a.session.CanControl(),
		PollInterval: a.cfg.PollInterval.Duration,
		RefreshDelay: a.cfg.RefreshDelay.Duration,
		LogoutURL:    a.cfg.LogoutURL,
	})
	if err != nil {
		a.logger.Error("failed to render page", "err", err)
	}
}

// handleLogin starts a new PKCE login and sends the browser to Spotify.
func (a *app) handleLogin(w http.ResponseWriter, r *http.Request) {
	authURL, err := a.flow.BeginLogin(r.Context())
	if err != nil {
		a.logger.Error("failed to begin login", "err", err)
		http.Error(w, "Failed to start login", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, authURL, http.StatusFound)
}

// handleLogout drops the session and any pending login, then serves a page
// that signs the browser out of Spotify and comes back here.
func (a *app) handleLogout(w http.ResponseWriter, r *http.Request) {
	a.session.Logout()
	if err := a.flow.Reset(r.Context()); err != nil {
		a.logger.Warn("failed to clear login storage", "err", err)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	err := a.html.WriteLogout(w, a.cfg.LogoutURL, a.flow.RedirectURI(), a.cfg.LogoutDelay.Duration)
	if err != nil {
		a.logger.Error("failed to render logout page", "err", err)
	}
}
