//
// Date: 2026-10-15
// Author: Spicer Matthews <spicer@cloudmanic.com>
// Copyright (c) 2026 Cloudmanic Labs, LLC. All rights reserved.
//
// Description: Playback control and now playing handlers.
//

package main

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/cloudmanic/spotify-remote/spotify"
	"github.com/gorilla/mux"
)

// handlePlayerCommand handles POST /api/v1/player/{action}.
func (a *app) handlePlayerCommand(w http.ResponseWriter, r *http.Request) {
	action, err := spotify.ParseAction(mux.Vars(r)["action"])
	if err != nil {
		writeJSON(w, http.StatusBadRequest, APIResponse{Success: false, Error: err.Error()})
		return
	}

	err = a.session.SendPlaybackCommand(r.Context(), action)
	if err != nil {
		status := http.StatusBadGateway
		if errors.Is(err, spotify.ErrNotLoggedIn) {
			status = http.StatusUnauthorized
		}
		writeJSON(w, status, APIResponse{Success: false, Error: err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Message: fmt.Sprintf("%s sent", action),
	})
}

// handleNowPlayingFragment serves the now playing HTML fragment.
func (a *app) handleNowPlayingFragment(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	if err := a.html.WriteNowPlaying(w); err != nil {
		a.logger.Error("failed to render now playing", "err", err)
	}
}

// handleNowPlaying serves the current display state as JSON.
func (a *app) handleNowPlaying(w http.ResponseWriter, r *http.Request) {
	if !a.session.LoggedIn() {
		writeJSON(w, http.StatusUnauthorized, APIResponse{Success: false, Error: spotify.ErrNotLoggedIn.Error()})
		return
	}

	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: a.session.Display()})
}
