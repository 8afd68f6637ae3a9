//
// Date: 2026-10-15
// Author: Spicer Matthews <spicer@cloudmanic.com>
// Copyright (c) 2026 Cloudmanic Labs, LLC. All rights reserved.
//
// Description: Authenticated session against the Spotify Web API. Holds the
// token grant, owns the playback poller and tracks the login state.
//

package spotify

import (
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/cloudmanic/spotify-remote/auth"

	spotifyauth "github.com/zmb3/spotify/v2/auth"
)

const (
	// DefaultBaseURL is the Spotify Web API root.
	DefaultBaseURL = "https://api.spotify.com/v1"

	// DefaultPollInterval is how often the current track is fetched.
	DefaultPollInterval = 5 * time.Second

	// DefaultRefreshDelay is the wait between a playback command and the
	// refresh that shows its effect.
	DefaultRefreshDelay = 500 * time.Millisecond

	// DefaultRequestTimeout bounds a single Web API request.
	DefaultRequestTimeout = 10 * time.Second
)

// State is the login state of a session.
type State string

// Session states. AwaitingCallback is reported by the login flow while a
// login is pending.
const (
	StateLoggedOut        State = "logged_out"
	StateAwaitingCallback State = "awaiting_callback"
	StateLoggedIn         State = "logged_in"
)

// HTTPDoer sends HTTP requests. *http.Client satisfies it.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Session wraps a token grant for API access.
type Session struct {
	baseURL        string
	pollInterval   time.Duration
	refreshDelay   time.Duration
	requestTimeout time.Duration
	client         HTTPDoer
	view           View
	logger         *log.Logger

	// lifecycle serializes Start and Logout so at most one poller exists.
	lifecycle sync.Mutex

	mu         sync.Mutex
	grant      *auth.TokenGrant
	generation uint64
	poller     *Poller
	refresh    *time.Timer
	display    Display
}

// Option configures a Session.
type Option func(*Session)

// WithBaseURL overrides the Web API base URL.
func WithBaseURL(baseURL string) Option {
	return func(s *Session) { s.baseURL = baseURL }
}

// WithPollInterval sets how often playback is polled.
func WithPollInterval(d time.Duration) Option {
	return func(s *Session) { s.pollInterval = d }
}

// WithRefreshDelay sets the delay before the refresh that follows a command.
func WithRefreshDelay(d time.Duration) Option {
	return func(s *Session) { s.refreshDelay = d }
}

// WithHTTPClient sets the client used for API calls.
func WithHTTPClient(client HTTPDoer) Option {
	return func(s *Session) { s.client = client }
}

// WithView sets where display updates and notices go.
func WithView(view View) Option {
	return func(s *Session) { s.view = view }
}

// WithLogger sets the logger.
func WithLogger(logger *log.Logger) Option {
	return func(s *Session) { s.logger = logger }
}

// NewSession creates a logged out session.
func NewSession(opts ...Option) *Session {
	s := &Session{
		baseURL:        DefaultBaseURL,
		pollInterval:   DefaultPollInterval,
		refreshDelay:   DefaultRefreshDelay,
		requestTimeout: DefaultRequestTimeout,
		client:         &http.Client{Timeout: DefaultRequestTimeout},
		view:           nopView{},
		logger:         log.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start logs the session in with grant and installs the playback poller,
// tearing down any poller from an earlier login first.
func (s *Session) Start(grant *auth.TokenGrant) {
	if grant == nil || grant.AccessToken == "" {
		return
	}

	s.lifecycle.Lock()
	defer s.lifecycle.Unlock()

	s.mu.Lock()
	old := s.poller
	s.poller = nil
	s.stopRefreshLocked()
	s.grant = grant
	s.generation++
	s.display = Display{}
	s.mu.Unlock()

	old.Stop()

	poller := StartPoller(s.pollInterval, grant.HasScope(spotifyauth.ScopeUserReadPlaybackState), s.PollCurrentPlayback)

	s.mu.Lock()
	s.poller = poller
	s.mu.Unlock()

	s.logger.Info("session started", "can_view", s.CanView(), "can_control", s.CanControl())
}

// Logout drops the grant and cancels polling. Responses still in flight are
// discarded when they land.
func (s *Session) Logout() {
	s.lifecycle.Lock()
	defer s.lifecycle.Unlock()

	s.mu.Lock()
	old := s.poller
	wasLoggedIn := s.grant != nil
	s.poller = nil
	s.stopRefreshLocked()
	s.grant = nil
	s.generation++
	s.display = Display{}
	s.view.Reset()
	s.mu.Unlock()

	old.Stop()

	if wasLoggedIn {
		s.logger.Info("session ended")
	}
}

// State returns LoggedIn or LoggedOut. AwaitingCallback is not held in
// memory; it is derived from pending login storage by the caller.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.grant != nil {
		return StateLoggedIn
	}
	return StateLoggedOut
}

// LoggedIn reports whether a token is held.
func (s *Session) LoggedIn() bool {
	return s.State() == StateLoggedIn
}

// CanView reports whether the grant allows reading playback state.
func (s *Session) CanView() bool {
	return s.hasScope(spotifyauth.ScopeUserReadPlaybackState)
}

// CanControl reports whether the grant allows changing playback.
func (s *Session) CanControl() bool {
	return s.hasScope(spotifyauth.ScopeUserModifyPlaybackState)
}

// Display returns the last rendered display state.
func (s *Session) Display() Display {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.display
}

func (s *Session) hasScope(scope string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.grant.HasScope(scope)
}

// credentials returns the current token and the generation it belongs to.
func (s *Session) credentials() (string, uint64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.grant == nil {
		return "", s.generation, false
	}
	return s.grant.AccessToken, s.generation, true
}

// render shows d unless the session changed since generation gen.
func (s *Session) render(gen uint64, d Display) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.grant == nil || gen != s.generation {
		s.logger.Debug("stale playback response discarded")
		return false
	}
	s.display = d
	s.view.Render(d)
	return true
}

func (s *Session) notify(kind NoticeKind, detail string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.view.Notify(kind, detail)
}

func (s *Session) stopRefreshLocked() {
	if s.refresh != nil {
		s.refresh.Stop()
		s.refresh = nil
	}
}
