//
// Date: 2026-10-15
// Author: Spicer Matthews <spicer@cloudmanic.com>
// Copyright (c) 2026 Cloudmanic Labs, LLC. All rights reserved.
//
// Description: Fan-out view.
//

package render

import "github.com/cloudmanic/spotify-remote/spotify"

// Multi forwards every call to each of its views in order.
type Multi []spotify.View

func (m Multi) Render(d spotify.Display) {
	for _, v := range m {
		v.Render(d)
	}
}

func (m Multi) Notify(kind spotify.NoticeKind, detail string) {
	for _, v := range m {
		v.Notify(kind, detail)
	}
}

func (m Multi) Reset() {
	for _, v := range m {
		v.Reset()
	}
}
