//
// Date: 2026-10-15
// Author: Spicer Matthews <spicer@cloudmanic.com>
// Copyright (c) 2026 Cloudmanic Labs, LLC. All rights reserved.
//
// Description: Display state produced by the session and the View that
// consumes it.
//

package spotify

import "strings"

// DisplayKind is the coarse playback status shown to the user.
type DisplayKind string

// Display kinds. DisplayNone means nothing has been fetched yet.
const (
	DisplayNone     DisplayKind = ""
	DisplayIdle     DisplayKind = "idle"
	DisplayPlaying  DisplayKind = "playing"
	DisplayInactive DisplayKind = "inactive"
)

// Snapshot is the currently playing track as shown to the user.
type Snapshot struct {
	TrackName   string   `json:"track_name"`
	ArtistNames []string `json:"artist_names"`
	AlbumName   string   `json:"album_name,omitempty"`
	AlbumArtURL string   `json:"album_art_url,omitempty"`
}

// Artists joins the artist names for display.
func (s Snapshot) Artists() string {
	return strings.Join(s.ArtistNames, ", ")
}

// Display is what the view should show. Snapshot is set only for DisplayPlaying.
type Display struct {
	Kind     DisplayKind `json:"kind"`
	Snapshot *Snapshot   `json:"snapshot,omitempty"`
}

// NoticeKind identifies a one-off message for the user.
type NoticeKind string

// Notice kinds.
const (
	NoticeNotLoggedIn   NoticeKind = "not_logged_in"
	NoticeCommandFailed NoticeKind = "command_failed"
	NoticeLoginFailed   NoticeKind = "login_failed"
)

// View renders session output. Implementations must not call back into the
// Session.
type View interface {
	Render(d Display)
	Notify(kind NoticeKind, detail string)
	Reset()
}

type nopView struct{}

func (nopView) Render(Display)            {}
func (nopView) Notify(NoticeKind, string) {}
func (nopView) Reset()                    {}
