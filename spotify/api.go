//
// Date: 2026-10-15
// Author: Spicer Matthews <spicer@cloudmanic.com>
// Copyright (c) 2026 Cloudmanic Labs, LLC. All rights reserved.
//
// Description: Authenticated requests to the Spotify Web API.
//

package spotify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// Response is the result of a successful API call. NoContent is set for
// 204 answers, which carry no body.
type Response struct {
	Status    int
	NoContent bool
	Data      json.RawMessage
}

// Decode unmarshals the response body into v.
func (r *Response) Decode(v any) error {
	if r == nil || r.NoContent || len(r.Data) == 0 {
		return fmt.Errorf("response has no content")
	}
	return json.Unmarshal(r.Data, v)
}

// CallAPI sends an authenticated request to baseURL+path. Without a token the
// view is told the user is not logged in and ErrNotLoggedIn is returned
// without touching the network.
func (s *Session) CallAPI(ctx context.Context, path, method string, body any) (*Response, error) {
	token, _, ok := s.credentials()
	if !ok {
		s.notify(NoticeNotLoggedIn, "")
		return nil, ErrNotLoggedIn
	}

	return s.do(ctx, token, path, method, body)
}

func (s *Session) do(ctx context.Context, token, path, method string, body any) (*Response, error) {
	if method == "" {
		method = http.MethodGet
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, s.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNoContent {
		return &Response{Status: resp.StatusCode, NoContent: true}, nil
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &APIError{Status: resp.StatusCode, Body: string(data)}
	}

	// Some player endpoints answer 200 with an empty body.
	if len(bytes.TrimSpace(data)) == 0 {
		return &Response{Status: resp.StatusCode, NoContent: true}, nil
	}

	if !json.Valid(data) {
		return nil, fmt.Errorf("invalid JSON in response from %s", path)
	}

	return &Response{Status: resp.StatusCode, Data: data}, nil
}
