//
// Date: 2026-10-15
// Author: Spicer Matthews <spicer@cloudmanic.com>
// Copyright (c) 2026 Cloudmanic Labs, LLC. All rights reserved.
//
// Description: Errors returned by the API session.
//

package spotify

import (
	"errors"
	"fmt"
)

var (
	// ErrNotLoggedIn is returned when an API call is attempted without a token.
	// No request is made.
	ErrNotLoggedIn = errors.New("not logged in")

	// ErrUnknownAction is returned for a playback command outside play, pause and next.
	ErrUnknownAction = errors.New("unknown playback action")
)

// APIError is a non-success, non-204 answer from the Web API.
type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API error (%d): %s", e.Status, e.Body)
}
