//
// Date: 2026-10-15
// Author: Spicer Matthews <spicer@cloudmanic.com>
// Copyright (c) 2026 Cloudmanic Labs, LLC. All rights reserved.
//
// Description: User facing strings.
//

package render

import (
	"fmt"

	"github.com/cloudmanic/spotify-remote/spotify"
)

// Messages holds every user facing string of the UI.
type Messages struct {
	Title         string
	Login         string
	Logout        string
	LoggingOut    string
	SpotifyLogout string
	Play          string
	Pause         string
	Next          string
	NowPlaying    string
	By            string
	AlbumArtAlt   string
	Idle          string
	Inactive      string
	Loading       string
	NotLoggedIn   string
	CommandFailed string
	LoginFailed   string
}

var locales = map[string]Messages{
	"en": {
		Title:         "Spotify Remote",
		Login:         "Log in with Spotify",
		Logout:        "Log out",
		LoggingOut:    "Logging out...",
		SpotifyLogout: "Sign out of Spotify",
		Play:          "Play",
		Pause:         "Pause",
		Next:          "Next",
		NowPlaying:    "Now playing",
		By:            "by",
		AlbumArtAlt:   "Album cover for %s",
		Idle:          "Nothing playing.",
		Inactive:      "Could not load (player may be inactive).",
		Loading:       "Loading...",
		NotLoggedIn:   "You are not logged in.",
		CommandFailed: "Playback command failed",
		LoginFailed:   "Login failed",
	},
	"pt": {
		Title:         "Controle do Spotify",
		Login:         "Entrar com Spotify",
		Logout:        "Sair",
		LoggingOut:    "Saindo...",
		SpotifyLogout: "Sair do Spotify",
		Play:          "Tocar",
		Pause:         "Pausar",
		Next:          "Próxima",
		NowPlaying:    "Tocando agora",
		By:            "por",
		AlbumArtAlt:   "Capa do álbum %s",
		Idle:          "Nenhuma música tocando.",
		Inactive:      "Não foi possível carregar (Player talvez esteja inativo).",
		Loading:       "Carregando...",
		NotLoggedIn:   "Você não está logado.",
		CommandFailed: "Falha no comando de reprodução",
		LoginFailed:   "Falha no login",
	},
}

// DefaultLocale is used for unknown locales.
const DefaultLocale = "en"

// MessagesFor returns the strings for locale, falling back to English.
func MessagesFor(locale string) Messages {
	if m, ok := locales[locale]; ok {
		return m
	}
	return locales[DefaultLocale]
}

// Notice formats a session notice.
func (m Messages) Notice(kind spotify.NoticeKind, detail string) string {
	var text string
	switch kind {
	case spotify.NoticeNotLoggedIn:
		return m.NotLoggedIn
	case spotify.NoticeCommandFailed:
		text = m.CommandFailed
	case spotify.NoticeLoginFailed:
		text = m.LoginFailed
	default:
		text = string(kind)
	}
	if detail == "" {
		return text
	}
	return fmt.Sprintf("%s: %s", text, detail)
}
