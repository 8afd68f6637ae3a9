//
// Date: 2026-10-15
// Author: Spicer Matthews <spicer@cloudmanic.com>
// Copyright (c) 2026 Cloudmanic Labs, LLC. All rights reserved.
//
// Description: Spotify remote. Logs in with OAuth 2.0 PKCE from the
// browser, shows what is playing and controls playback.
//

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/cloudmanic/spotify-remote/auth"
	"github.com/cloudmanic/spotify-remote/render"
	"github.com/cloudmanic/spotify-remote/spotify"
	"github.com/cloudmanic/spotify-remote/store"
	"github.com/joho/godotenv"
	"github.com/urfave/cli/v3"
)

// main is the entry point for the application.
func main() {
	// Load .env file if it exists (ignore error if not found)
	_ = godotenv.Load()

	app := &cli.Command{
		Name:   "spotify-remote",
		Usage:  "Browser remote for Spotify playback",
		Flags:  serveFlags(),
		Action: runServe,
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Run the web remote (default)",
				Flags:  serveFlags(),
				Action: runServe,
			},
			pkceCommand(),
		},
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := app.Run(ctx, os.Args); err != nil {
		log.Fatal("application error", "err", err)
	}
}

// serveFlags returns the flags of the serve command. Every setting can also
// come from the environment or the config file.
func serveFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "Path to a TOML configuration file",
			Sources: cli.EnvVars("SPOTIFY_REMOTE_CONFIG"),
		},
		&cli.StringFlag{
			Name:    "client-id",
			Usage:   "Spotify application client ID",
			Sources: cli.EnvVars("SPOTIFY_CLIENT_ID"),
		},
		&cli.StringFlag{
			Name:    "redirect-uri",
			Usage:   "Redirect URI registered with Spotify",
			Sources: cli.EnvVars("SPOTIFY_REDIRECT_URI"),
		},
		&cli.StringFlag{
			Name:    "listen",
			Usage:   "Address to listen on (derived from the redirect URI by default)",
			Sources: cli.EnvVars("LISTEN_ADDR"),
		},
		&cli.StringFlag{
			Name:    "scopes",
			Usage:   "Space separated OAuth scopes",
			Sources: cli.EnvVars("SPOTIFY_SCOPES"),
		},
		&cli.DurationFlag{
			Name:    "poll-interval",
			Usage:   "How often to fetch the current track",
			Sources: cli.EnvVars("POLL_INTERVAL"),
		},
		&cli.DurationFlag{
			Name:    "refresh-delay",
			Usage:   "Delay before refreshing after a playback command",
			Sources: cli.EnvVars("REFRESH_DELAY"),
		},
		&cli.StringFlag{
			Name:    "locale",
			Usage:   "Interface language (en or pt)",
			Sources: cli.EnvVars("UI_LOCALE"),
		},
		&cli.StringFlag{
			Name:    "log-level",
			Usage:   "Log level (debug, info, warn, error)",
			Sources: cli.EnvVars("LOG_LEVEL"),
		},
		&cli.BoolFlag{
			Name:  "open",
			Usage: "Open the remote in the default browser",
		},
		&cli.BoolFlag{
			Name:  "console",
			Usage: "Also print playback changes to the terminal",
		},
	}
}

// configFromCommand loads the config file and applies flag and environment
// overrides on top.
func configFromCommand(cmd *cli.Command) (*Config, error) {
	cfg, err := loadConfigFile(cmd.String("config"))
	if err != nil {
		return nil, err
	}

	if cmd.IsSet("client-id") {
		cfg.ClientID = cmd.String("client-id")
	}
	if cmd.IsSet("redirect-uri") {
		cfg.RedirectURI = cmd.String("redirect-uri")
	}
	if cmd.IsSet("listen") {
		cfg.ListenAddr = cmd.String("listen")
	}
	if cmd.IsSet("scopes") {
		cfg.Scopes = parseScopes(cmd.String("scopes"))
	}
	if cmd.IsSet("poll-interval") {
		cfg.PollInterval.Duration = cmd.Duration("poll-interval")
	}
	if cmd.IsSet("refresh-delay") {
		cfg.RefreshDelay.Duration = cmd.Duration("refresh-delay")
	}
	if cmd.IsSet("locale") {
		cfg.Locale = cmd.String("locale")
	}
	if cmd.IsSet("log-level") {
		cfg.LogLevel = cmd.String("log-level")
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// newLogger creates the application logger at the configured level.
func newLogger(level string) *log.Logger {
	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Prefix:          "spotify-remote",
	})

	if lvl, err := log.ParseLevel(level); err == nil {
		logger.SetLevel(lvl)
	} else {
		logger.Warn("unknown log level, using info", "level", level)
	}

	return logger
}

// runServe wires the login flow, the session and the views, then serves
// until interrupted.
func runServe(ctx context.Context, cmd *cli.Command) error {
	cfg, err := configFromCommand(cmd)
	if err != nil {
		return err
	}

	logger := newLogger(cfg.LogLevel)

	flow, err := auth.NewFlow(auth.Config{
		ClientID:    cfg.ClientID,
		RedirectURI: cfg.RedirectURI,
		Scopes:      cfg.Scopes,
	}, store.NewMemory(cfg.SessionTTL.Duration), auth.WithLogger(logger.WithPrefix("auth")))
	if err != nil {
		return fmt.Errorf("failed to set up login: %w", err)
	}

	html := render.NewHTML(cfg.Locale)
	var view spotify.View = html
	if cmd.Bool("console") {
		view = render.Multi{html, render.NewTerminal(os.Stdout, cfg.Locale)}
	}

	session := spotify.NewSession(
		spotify.WithPollInterval(cfg.PollInterval.Duration),
		spotify.WithRefreshDelay(cfg.RefreshDelay.Duration),
		spotify.WithView(view),
		spotify.WithLogger(logger.WithPrefix("session")),
	)

	a := &app{
		cfg:     cfg,
		flow:    flow,
		session: session,
		html:    html,
		view:    view,
		logger:  logger,
	}

	if cmd.Bool("open") {
		a.openBrowser = openBrowser
	}

	return a.serve(ctx)
}
