//
// Date: 2026-10-15
// Author: Spicer Matthews <spicer@cloudmanic.com>
// Copyright (c) 2026 Cloudmanic Labs, LLC. All rights reserved.
//
// Description: Errors returned by the PKCE login flow.
//

package auth

import (
	"errors"
	"fmt"
)

var (
	// ErrCSRF is returned when the callback state is missing or does not match
	// the stored nonce. The code is never exchanged in that case.
	ErrCSRF = errors.New("invalid state parameter")

	// ErrMissingVerifier is returned when the stored code verifier is gone,
	// usually because storage was cleared between the redirect and the callback.
	ErrMissingVerifier = errors.New("PKCE code verifier not found")
)

// TokenExchangeError is returned when the token endpoint answers with a
// non-success status.
type TokenExchangeError struct {
	Status int
	Body   string
}

func (e *TokenExchangeError) Error() string {
	return fmt.Sprintf("failed to obtain token (%d): %s", e.Status, e.Body)
}
