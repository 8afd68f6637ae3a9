//
// Date: 2026-10-15
// Author: Spicer Matthews <spicer@cloudmanic.com>
// Copyright (c) 2026 Cloudmanic Labs, LLC. All rights reserved.
//
// Description: Browser view. Keeps the latest display state and renders the
// page, the now-playing fragment and the logout page.
//

package render

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"sync"
	"time"

	"github.com/cloudmanic/spotify-remote/spotify"
)

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(template.ParseFS(templateFS, "templates/*.html"))

// Page describes what the main page shows around the display state.
type Page struct {
	LoggedIn     bool
	CanView      bool
	CanControl   bool
	PollInterval time.Duration
	RefreshDelay time.Duration

	// LogoutURL is the provider sign-out page opened by the logout button.
	LogoutURL string
}

type pageData struct {
	Msg        Messages
	LoggedIn   bool
	CanView    bool
	CanControl bool
	Notice     string
	NowPlaying nowPlayingData
	PollMS     int64
	RefreshMS  int64
	LogoutURL  string
}

type nowPlayingData struct {
	Msg      Messages
	Kind     spotify.DisplayKind
	Snapshot *spotify.Snapshot
	Alt      string
}

type logoutData struct {
	Msg               Messages
	ProviderLogoutURL string
	ReturnURL         string
	DelayMS           int64
}

// HTML is a spotify.View for the browser.
type HTML struct {
	msgs Messages

	mu      sync.RWMutex
	display spotify.Display
	notice  string
}

// NewHTML creates a browser view for locale.
func NewHTML(locale string) *HTML {
	return &HTML{msgs: MessagesFor(locale)}
}

// Render stores the new display state.
func (h *HTML) Render(d spotify.Display) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.display = d
}

// Notify stores a notice shown once on the next page render.
func (h *HTML) Notify(kind spotify.NoticeKind, detail string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.notice = h.msgs.Notice(kind, detail)
}

// Reset forgets the display state.
func (h *HTML) Reset() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.display = spotify.Display{}
}

// Display returns the stored display state.
func (h *HTML) Display() spotify.Display {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.display
}

// WritePage renders the full page and consumes the pending notice.
func (h *HTML) WritePage(w io.Writer, p Page) error {
	h.mu.Lock()
	notice := h.notice
	h.notice = ""
	display := h.display
	h.mu.Unlock()

	data := pageData{
		Msg:        h.msgs,
		LoggedIn:   p.LoggedIn,
		CanView:    p.CanView,
		CanControl: p.CanControl,
		Notice:     notice,
		NowPlaying: h.nowPlaying(display),
		PollMS:     p.PollInterval.Milliseconds(),
		RefreshMS:  p.RefreshDelay.Milliseconds(),
		LogoutURL:  p.LogoutURL,
	}

	if err := templates.ExecuteTemplate(w, "page", data); err != nil {
		return fmt.Errorf("failed to render page: %w", err)
	}
	return nil
}

// WriteNowPlaying renders only the now-playing region.
func (h *HTML) WriteNowPlaying(w io.Writer) error {
	if err := templates.ExecuteTemplate(w, "now-playing", h.nowPlaying(h.Display())); err != nil {
		return fmt.Errorf("failed to render now playing: %w", err)
	}
	return nil
}

// WriteLogout renders the page shown while logging out. It links to the
// provider logout in case the popup opened by the main page was blocked, and
// returns to returnURL after delay.
func (h *HTML) WriteLogout(w io.Writer, providerLogoutURL, returnURL string, delay time.Duration) error {
	data := logoutData{
		Msg:               h.msgs,
		ProviderLogoutURL: providerLogoutURL,
		ReturnURL:         returnURL,
		DelayMS:           delay.Milliseconds(),
	}

	if err := templates.ExecuteTemplate(w, "logout", data); err != nil {
		return fmt.Errorf("failed to render logout page: %w", err)
	}
	return nil
}

func (h *HTML) nowPlaying(d spotify.Display) nowPlayingData {
	data := nowPlayingData{
		Msg:      h.msgs,
		Kind:     d.Kind,
		Snapshot: d.Snapshot,
	}
	if d.Snapshot != nil {
		data.Alt = fmt.Sprintf(h.msgs.AlbumArtAlt, d.Snapshot.AlbumName)
	}
	return data
}
