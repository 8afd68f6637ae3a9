//
// Date: 2026-10-15
// Author: Spicer Matthews <spicer@cloudmanic.com>
// Copyright (c) 2026 Cloudmanic Labs, LLC. All rights reserved.
//
// Description: HTTP server, routes and request logging.
//

package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/cloudmanic/spotify-remote/render"
	"github.com/cloudmanic/spotify-remote/spotify"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 5 * time.Second

// app holds everything the HTTP handlers need.
type app struct {
	cfg     *Config
	flow    LoginFlow
	session PlayerSession
	html    *render.HTML
	view    spotify.View
	logger  *log.Logger

	// openBrowser is called with the redirect URI once the listener is up.
	openBrowser func(url string) error
}

// loggingResponseWriter wraps http.ResponseWriter to capture the status code.
type loggingResponseWriter struct {
	http.ResponseWriter
	statusCode int
}

// WriteHeader captures the status code before writing it.
func (lrw *loggingResponseWriter) WriteHeader(code int) {
	lrw.statusCode = code
	lrw.ResponseWriter.WriteHeader(code)
}

// loggingMiddleware tags each request with an id and logs it once served.
func (a *app) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		id := uuid.NewString()
		w.Header().Set("X-Request-Id", id)

		lrw := &loggingResponseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(lrw, r)

		a.logger.Info("request",
			"id", id,
			"method", r.Method,
			"path", r.URL.Path,
			"status", lrw.statusCode,
			"duration", time.Since(start),
		)
	})
}

// sameOriginMiddleware rejects state-changing requests sent from another
// site. Requests without browser origin headers (curl, scripts) pass.
func sameOriginMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet || r.Method == http.MethodHead || r.Method == http.MethodOptions {
			next.ServeHTTP(w, r)
			return
		}

		if !sameOrigin(r) {
			writeJSON(w, http.StatusForbidden, APIResponse{Success: false, Error: "cross-site request rejected"})
			return
		}

		next.ServeHTTP(w, r)
	})
}

// sameOrigin reports whether r came from a page served by this host.
func sameOrigin(r *http.Request) bool {
	switch r.Header.Get("Sec-Fetch-Site") {
	case "", "same-origin", "none":
	default:
		return false
	}

	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}

	u, err := url.Parse(origin)
	if err != nil || u.Host == "" {
		return false
	}
	return strings.EqualFold(u.Host, r.Host)
}

// routes builds the router.
func (a *app) routes() http.Handler {
	r := mux.NewRouter()
	r.Use(a.loggingMiddleware)

	r.HandleFunc("/login", a.handleLogin).Methods(http.MethodGet)
	r.HandleFunc("/logout", a.handleLogout).Methods(http.MethodGet)
	r.HandleFunc("/now-playing", a.handleNowPlayingFragment).Methods(http.MethodGet)

	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(sameOriginMiddleware)
	api.HandleFunc("/now-playing", a.handleNowPlaying).Methods(http.MethodGet)
	api.HandleFunc("/player/{action}", a.handlePlayerCommand).Methods(http.MethodPost)

	callback := a.cfg.callbackPath()
	r.HandleFunc(callback, a.handleHome).Methods(http.MethodGet)
	if callback != "/" {
		r.HandleFunc("/", a.handleHome).Methods(http.MethodGet)
	}

	return r
}

// serve runs the HTTP server until ctx is cancelled, then logs the session
// out and shuts the server down.
func (a *app) serve(ctx context.Context) error {
	srv := &http.Server{
		Addr:              a.cfg.ListenAddr,
		Handler:           a.routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ln, err := net.Listen("tcp", a.cfg.ListenAddr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", a.cfg.ListenAddr, err)
	}

	a.logger.Info("starting server", "addr", ln.Addr().String(), "redirect_uri", a.cfg.RedirectURI)
	if a.openBrowser != nil {
		if err := a.openBrowser(a.cfg.RedirectURI); err != nil {
			a.logger.Warn("could not open browser", "err", err)
		}
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		a.logger.Info("shutting down")
		a.session.Logout()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// writeJSON writes an APIResponse with the given status code.
func writeJSON(w http.ResponseWriter, status int, resp APIResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(resp)
}
