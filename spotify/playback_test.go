//
// Date: 2026-10-15
// Author: Spicer Matthews <spicer@cloudmanic.com>
// Copyright (c) 2026 Cloudmanic Labs, LLC. All rights reserved.
//
// Description: Tests for playback polling and commands.
//

package spotify

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	spotifyLib "github.com/zmb3/spotify/v2"
)

const playingBody = `{
	"is_playing": true,
	"progress_ms": 1200,
	"item": {
		"name": "Song",
		"artists": [{"name": "A"}, {"name": "B"}],
		"album": {
			"name": "Record",
			"images": [
				{"url": "https://i.scdn.co/image/large", "width": 640, "height": 640},
				{"url": "https://i.scdn.co/image/medium", "width": 300, "height": 300},
				{"url": "https://i.scdn.co/image/small", "width": 64, "height": 64}
			]
		}
	}
}`

func TestPollCurrentPlayback(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		wantKind DisplayKind
		wantSnap *Snapshot
	}{
		{
			name:     "null item is idle",
			status:   http.StatusOK,
			body:     `{"is_playing": false, "item": null}`,
			wantKind: DisplayIdle,
		},
		{
			name:     "no content is idle",
			status:   http.StatusNoContent,
			wantKind: DisplayIdle,
		},
		{
			name:     "playing track",
			status:   http.StatusOK,
			body:     playingBody,
			wantKind: DisplayPlaying,
			wantSnap: &Snapshot{
				TrackName:   "Song",
				ArtistNames: []string{"A", "B"},
				AlbumName:   "Record",
				AlbumArtURL: "https://i.scdn.co/image/medium",
			},
		},
		{
			name:     "api error degrades to inactive",
			status:   http.StatusUnauthorized,
			body:     `{"error":{"status":401,"message":"The access token expired"}}`,
			wantKind: DisplayInactive,
		},
		{
			name:     "bad payload degrades to inactive",
			status:   http.StatusOK,
			body:     `{"item": "oops"}`,
			wantKind: DisplayInactive,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			as := newAPIServer(t, respond(tt.status, tt.body))
			view := &recordingView{}
			s := newTestSession(as, view)
			s.Start(testGrant())
			defer s.Logout()

			s.PollCurrentPlayback(context.Background())

			_, path := as.last()
			assert.Equal(t, "/v1"+CurrentlyPlayingPath, path)
			d, ok := view.last()
			require.True(t, ok)
			assert.Equal(t, tt.wantKind, d.Kind)
			assert.Equal(t, tt.wantSnap, d.Snapshot)
			assert.Equal(t, d, s.Display())
		})
	}
}

func TestPollCurrentPlayback_TransportFailure(t *testing.T) {
	as := newAPIServer(t, respond(http.StatusOK, `{}`))
	view := &recordingView{}
	s := newTestSession(as, view)
	s.Start(testGrant())
	defer s.Logout()

	as.Close()
	s.PollCurrentPlayback(context.Background())

	d, ok := view.last()
	require.True(t, ok)
	assert.Equal(t, DisplayInactive, d.Kind)
}

func TestPollCurrentPlayback_LoggedOut(t *testing.T) {
	as := newAPIServer(t, respond(http.StatusOK, playingBody))
	view := &recordingView{}
	s := newTestSession(as, view)

	s.PollCurrentPlayback(context.Background())
	assert.Equal(t, int32(0), as.calls.Load())
	assert.Equal(t, 0, view.count())
}

func TestSnapshotArtists(t *testing.T) {
	snap := Snapshot{TrackName: "Song", ArtistNames: []string{"A", "B"}}
	assert.Equal(t, "A, B", snap.Artists())
}

func TestPickAlbumArt(t *testing.T) {
	tests := []struct {
		name   string
		images []spotifyLib.Image
		want   string
	}{
		{
			name:   "none",
			images: nil,
			want:   "",
		},
		{
			name:   "single image without preferred width",
			images: []spotifyLib.Image{{URL: "only", Width: 640}},
			want:   "",
		},
		{
			name:   "preferred width wins regardless of position",
			images: []spotifyLib.Image{{URL: "small", Width: 64}, {URL: "large", Width: 640}, {URL: "medium", Width: 300}},
			want:   "medium",
		},
		{
			name:   "falls back to second entry",
			images: []spotifyLib.Image{{URL: "first"}, {URL: "second"}},
			want:   "second",
		},
		{
			name:   "single image with preferred width",
			images: []spotifyLib.Image{{URL: "medium", Width: 300}},
			want:   "medium",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, pickAlbumArt(tt.images))
		})
	}
}

func TestParseAction(t *testing.T) {
	for _, s := range []string{"play", "pause", "next"} {
		a, err := ParseAction(s)
		require.NoError(t, err)
		assert.Equal(t, Action(s), a)
	}

	_, err := ParseAction("rewind")
	assert.ErrorIs(t, err, ErrUnknownAction)
}

func TestSendPlaybackCommand(t *testing.T) {
	tests := []struct {
		action     Action
		wantMethod string
		wantPath   string
	}{
		{ActionPlay, http.MethodPut, "/v1/me/player/play"},
		{ActionPause, http.MethodPut, "/v1/me/player/pause"},
		{ActionNext, http.MethodPost, "/v1/me/player/next"},
	}

	for _, tt := range tests {
		t.Run(string(tt.action), func(t *testing.T) {
			as := newAPIServer(t, func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path == "/v1"+CurrentlyPlayingPath {
					respond(http.StatusOK, playingBody)(w, r)
					return
				}
				respond(http.StatusNoContent, "")(w, r)
			})
			view := &recordingView{}
			s := newTestSession(as, view)
			s.Start(testGrant())
			defer s.Logout()

			require.NoError(t, s.SendPlaybackCommand(context.Background(), tt.action))

			// One refresh follows the command.
			assert.Eventually(t, func() bool {
				d, ok := view.last()
				return ok && d.Kind == DisplayPlaying
			}, time.Second, 5*time.Millisecond)

			assert.Equal(t, []string{
				tt.wantMethod + " " + tt.wantPath,
				http.MethodGet + " /v1" + CurrentlyPlayingPath,
			}, as.requests())
		})
	}
}

func TestSendPlaybackCommand_UnknownAction(t *testing.T) {
	as := newAPIServer(t, respond(http.StatusNoContent, ""))
	s := newTestSession(as, &recordingView{})
	s.Start(testGrant())
	defer s.Logout()

	err := s.SendPlaybackCommand(context.Background(), Action("shuffle"))
	assert.ErrorIs(t, err, ErrUnknownAction)
	assert.Equal(t, int32(0), as.calls.Load())
}

func TestSendPlaybackCommand_NotLoggedIn(t *testing.T) {
	as := newAPIServer(t, respond(http.StatusNoContent, ""))
	view := &recordingView{}
	s := newTestSession(as, view)

	err := s.SendPlaybackCommand(context.Background(), ActionPlay)
	assert.ErrorIs(t, err, ErrNotLoggedIn)
	assert.Equal(t, int32(0), as.calls.Load())
	assert.Equal(t, []NoticeKind{NoticeNotLoggedIn}, view.notices)
}

func TestSendPlaybackCommand_FailureKeepsDisplay(t *testing.T) {
	as := newAPIServer(t, respond(http.StatusOK, playingBody))
	view := &recordingView{}
	s := newTestSession(as, view)
	s.Start(testGrant())
	defer s.Logout()

	s.PollCurrentPlayback(context.Background())
	before := s.Display()
	require.Equal(t, DisplayPlaying, before.Kind)

	as.setHandler(respond(http.StatusNotFound, `{"error":{"status":404,"message":"Player command failed: No active device found"}}`))

	err := s.SendPlaybackCommand(context.Background(), ActionNext)
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusNotFound, apiErr.Status)

	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, before, s.Display())
	assert.Equal(t, []NoticeKind{NoticeCommandFailed}, view.notices)
	assert.Equal(t, int32(2), as.calls.Load())
}
