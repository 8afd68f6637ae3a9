//
// Date: 2026-10-15
// Author: Spicer Matthews <spicer@cloudmanic.com>
// Copyright (c) 2026 Cloudmanic Labs, LLC. All rights reserved.
//
// Description: Playback polling and playback control commands.
//

package spotify

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	spotifyLib "github.com/zmb3/spotify/v2"
)

// CurrentlyPlayingPath is the read endpoint polled for playback state.
const CurrentlyPlayingPath = "/me/player/currently-playing"

// Spotify lists album images widest first (640, 300, 64). The 300px one is
// the thumbnail shown next to the track.
const preferredArtWidth = 300

// Action is a playback command.
type Action string

// Supported playback commands.
const (
	ActionPlay  Action = "play"
	ActionPause Action = "pause"
	ActionNext  Action = "next"
)

type command struct {
	method string
	path   string
}

var commands = map[Action]command{
	ActionPlay:  {method: http.MethodPut, path: "/me/player/play"},
	ActionPause: {method: http.MethodPut, path: "/me/player/pause"},
	ActionNext:  {method: http.MethodPost, path: "/me/player/next"},
}

// ParseAction converts user input to an Action.
func ParseAction(s string) (Action, error) {
	a := Action(s)
	if _, ok := commands[a]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownAction, s)
	}
	return a, nil
}

// PollCurrentPlayback fetches what is playing and renders it. Failures never
// escape: they degrade the display to DisplayInactive.
func (s *Session) PollCurrentPlayback(ctx context.Context) {
	token, gen, ok := s.credentials()
	if !ok {
		return
	}

	display := Display{Kind: DisplayInactive}

	resp, err := s.do(ctx, token, CurrentlyPlayingPath, http.MethodGet, nil)
	if err == nil {
		display, err = interpretCurrentlyPlaying(resp)
	}

	if err != nil {
		if errors.Is(err, context.Canceled) {
			return
		}
		s.logger.Warn("failed to fetch current playback", "err", err)
		display = Display{Kind: DisplayInactive}
	}

	s.render(gen, display)
}

// interpretCurrentlyPlaying turns a currently-playing answer into a Display.
func interpretCurrentlyPlaying(resp *Response) (Display, error) {
	if resp.NoContent {
		return Display{Kind: DisplayIdle}, nil
	}

	var playing spotifyLib.CurrentlyPlaying
	if err := resp.Decode(&playing); err != nil {
		return Display{}, fmt.Errorf("failed to decode current playback: %w", err)
	}

	if playing.Item == nil {
		return Display{Kind: DisplayIdle}, nil
	}

	snap := SnapshotFromTrack(playing.Item)
	return Display{Kind: DisplayPlaying, Snapshot: &snap}, nil
}

// SnapshotFromTrack extracts the displayed fields of a track.
func SnapshotFromTrack(track *spotifyLib.FullTrack) Snapshot {
	snap := Snapshot{
		TrackName:   track.Name,
		ArtistNames: make([]string, 0, len(track.Artists)),
		AlbumName:   track.Album.Name,
		AlbumArtURL: pickAlbumArt(track.Album.Images),
	}
	for _, artist := range track.Artists {
		snap.ArtistNames = append(snap.ArtistNames, artist.Name)
	}
	return snap
}

// pickAlbumArt returns the thumbnail sized image, falling back to the second
// entry when no image declares the expected width.
func pickAlbumArt(images []spotifyLib.Image) string {
	for _, img := range images {
		if int(img.Width) == preferredArtWidth {
			return img.URL
		}
	}
	if len(images) > 1 {
		return images[1].URL
	}
	return ""
}

// SendPlaybackCommand runs a play, pause or next command and schedules one
// refresh of the display shortly after. On failure the displayed state is
// left as it was.
func (s *Session) SendPlaybackCommand(ctx context.Context, action Action) error {
	cmd, ok := commands[action]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownAction, action)
	}

	if _, err := s.CallAPI(ctx, cmd.path, cmd.method, nil); err != nil {
		s.logger.Error("playback command failed", "action", action, "err", err)
		if !errors.Is(err, ErrNotLoggedIn) {
			s.notify(NoticeCommandFailed, err.Error())
		}
		return fmt.Errorf("failed to %s: %w", action, err)
	}

	s.scheduleRefresh()
	return nil
}

// scheduleRefresh polls once after the refresh delay, replacing any refresh
// that is still pending.
func (s *Session) scheduleRefresh() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.grant == nil {
		return
	}

	s.stopRefreshLocked()
	s.refresh = time.AfterFunc(s.refreshDelay, func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.requestTimeout)
		defer cancel()
		s.PollCurrentPlayback(ctx)
	})
}
