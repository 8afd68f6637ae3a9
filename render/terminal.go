//
// Date: 2026-10-15
// Author: Spicer Matthews <spicer@cloudmanic.com>
// Copyright (c) 2026 Cloudmanic Labs, LLC. All rights reserved.
//
// Description: Terminal view. Prints playback changes as colored tables.
//

package render

import (
	"fmt"
	"io"
	"os"
	"reflect"
	"sync"

	"github.com/cloudmanic/spotify-remote/spotify"
	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
)

// Terminal is a spotify.View that writes to a terminal.
type Terminal struct {
	out  io.Writer
	msgs Messages

	mu   sync.Mutex
	last spotify.Display
}

// NewTerminal creates a terminal view writing to out (stdout when nil).
func NewTerminal(out io.Writer, locale string) *Terminal {
	if out == nil {
		out = os.Stdout
	}
	return &Terminal{out: out, msgs: MessagesFor(locale)}
}

// Render prints d when it differs from what was printed last.
func (t *Terminal) Render(d spotify.Display) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if reflect.DeepEqual(d, t.last) {
		return
	}
	t.last = d

	switch d.Kind {
	case spotify.DisplayPlaying:
		printSnapshotTable(t.out, t.msgs, d.Snapshot)
	case spotify.DisplayIdle:
		color.New(color.FgHiBlack).Fprintln(t.out, t.msgs.Idle)
	case spotify.DisplayInactive:
		color.New(color.FgYellow).Fprintln(t.out, t.msgs.Inactive)
	}
}

// Notify prints a notice in red.
func (t *Terminal) Notify(kind spotify.NoticeKind, detail string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	color.New(color.FgRed).Fprintln(t.out, t.msgs.Notice(kind, detail))
}

// Reset forgets the last printed state.
func (t *Terminal) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.last = spotify.Display{}
}

// printSnapshotTable displays the current track in a formatted table.
func printSnapshotTable(out io.Writer, msgs Messages, snap *spotify.Snapshot) {
	if snap == nil {
		return
	}

	cyan := color.New(color.FgCyan)

	fmt.Fprintln(out)
	cyan.Fprintf(out, "🎵 %s\n", msgs.NowPlaying)

	t := table.NewWriter()
	t.SetOutputMirror(out)
	t.AppendHeader(table.Row{"Track", "Artists", "Album"})
	t.AppendRow(table.Row{
		color.New(color.Bold).Sprint(snap.TrackName),
		snap.Artists(),
		color.HiBlackString(snap.AlbumName),
	})
	t.SetStyle(table.StyleRounded)
	t.Render()
}
