//
// Date: 2026-10-15
// Author: Spicer Matthews <spicer@cloudmanic.com>
// Copyright (c) 2026 Cloudmanic Labs, LLC. All rights reserved.
//
// Description: PKCE verifier, state and challenge generation.
//

package auth

import (
	"crypto/rand"
	"fmt"
	"io"

	"golang.org/x/oauth2"
)

const (
	// StateLength is the length of the anti-CSRF state nonce.
	StateLength = 16

	// VerifierLength is the length of the PKCE code verifier. RFC 7636 allows 43-128.
	VerifierLength = 64

	alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

	// Largest multiple of len(alphabet) that fits in a byte. Bytes at or
	// above it are rejected so every character is equally likely.
	maxUnbiased = 256 - 256%len(alphabet)
)

// RandomSource supplies random bytes. crypto/rand.Reader is the default.
type RandomSource = io.Reader

// RandomString returns a string of n characters drawn uniformly from the
// 62 character alphanumeric alphabet.
func RandomString(src RandomSource, n int) (string, error) {
	if src == nil {
		src = rand.Reader
	}

	out := make([]byte, 0, n)
	buf := make([]byte, n)

	for len(out) < n {
		if _, err := io.ReadFull(src, buf); err != nil {
			return "", fmt.Errorf("failed to read random bytes: %w", err)
		}
		for _, b := range buf {
			if int(b) >= maxUnbiased {
				continue
			}
			out = append(out, alphabet[int(b)%len(alphabet)])
			if len(out) == n {
				break
			}
		}
	}

	return string(out), nil
}

// Challenge derives the S256 code challenge for a verifier:
// base64url without padding of the raw SHA-256 digest.
func Challenge(verifier string) string {
	return oauth2.S256ChallengeFromVerifier(verifier)
}
