//
// Date: 2026-10-15
// Author: Spicer Matthews <spicer@cloudmanic.com>
// Copyright (c) 2026 Cloudmanic Labs, LLC. All rights reserved.
//
// Description: Tests for the PKCE login flow.
//

package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testRedirectURI = "http://127.0.0.1:8080/"

// memoryStore is a map backed KeyValueStore that counts mutations.
type memoryStore struct {
	mu        sync.Mutex
	data      map[string]string
	mutations int
}

func newMemoryStore() *memoryStore {
	return &memoryStore{data: map[string]string{}}
}

func (m *memoryStore) Get(ctx context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *memoryStore) Set(ctx context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.mutations++
	m.data[key] = value
	return nil
}

func (m *memoryStore) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.mutations++
	delete(m.data, key)
	return nil
}

func (m *memoryStore) Clear(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.mutations++
	m.data = map[string]string{}
	return nil
}

// tokenServer is a fake token endpoint that records every exchange.
type tokenServer struct {
	*httptest.Server
	calls atomic.Int32
	form  url.Values
	auth  string
}

func newTokenServer(t *testing.T, status int, body string) *tokenServer {
	t.Helper()

	ts := &tokenServer{}
	ts.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ts.calls.Add(1)
		if err := r.ParseForm(); err != nil {
			t.Errorf("failed to parse form: %v", err)
		}
		ts.form = r.PostForm
		ts.auth = r.Header.Get("Authorization")

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	t.Cleanup(ts.Close)
	return ts
}

func newTestFlow(t *testing.T, store KeyValueStore, ts *tokenServer) *Flow {
	t.Helper()

	flow, err := NewFlow(Config{
		ClientID:    "test-client",
		RedirectURI: testRedirectURI,
		Scopes:      []string{"user-read-playback-state", "user-modify-playback-state"},
		AuthURL:     "https://accounts.example.com/authorize",
		TokenURL:    ts.URL + "/api/token",
	}, store, WithHTTPClient(ts.Client()))
	require.NoError(t, err)
	return flow
}

const okTokenBody = `{"access_token":"access-123","token_type":"Bearer","expires_in":3600,"scope":"user-read-playback-state user-modify-playback-state"}`

func TestNewFlow_Validation(t *testing.T) {
	store := newMemoryStore()

	_, err := NewFlow(Config{RedirectURI: testRedirectURI}, store)
	assert.Error(t, err)

	_, err = NewFlow(Config{ClientID: "id"}, store)
	assert.Error(t, err)

	_, err = NewFlow(Config{ClientID: "id", RedirectURI: testRedirectURI}, nil)
	assert.Error(t, err)
}

func TestBeginLogin(t *testing.T) {
	store := newMemoryStore()
	ts := newTokenServer(t, http.StatusOK, okTokenBody)
	flow := newTestFlow(t, store, ts)

	raw, err := flow.BeginLogin(context.Background())
	require.NoError(t, err)

	u, err := url.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "accounts.example.com", u.Host)
	assert.Equal(t, "/authorize", u.Path)

	q := u.Query()
	state, _, _ := store.Get(context.Background(), StateKey)
	verifier, _, _ := store.Get(context.Background(), VerifierKey)

	assert.Len(t, state, StateLength)
	assert.Len(t, verifier, VerifierLength)
	assert.Equal(t, "test-client", q.Get("client_id"))
	assert.Equal(t, "code", q.Get("response_type"))
	assert.Equal(t, testRedirectURI, q.Get("redirect_uri"))
	assert.Equal(t, "user-read-playback-state user-modify-playback-state", q.Get("scope"))
	assert.Equal(t, state, q.Get("state"))
	assert.Equal(t, "S256", q.Get("code_challenge_method"))
	assert.Equal(t, Challenge(verifier), q.Get("code_challenge"))
	assert.True(t, flow.Pending(context.Background()))

	// Nothing is exchanged when starting a login.
	assert.Equal(t, int32(0), ts.calls.Load())
}

func TestBeginLogin_NewNonceEachTime(t *testing.T) {
	store := newMemoryStore()
	flow := newTestFlow(t, store, newTokenServer(t, http.StatusOK, okTokenBody))
	ctx := context.Background()

	_, err := flow.BeginLogin(ctx)
	require.NoError(t, err)
	first, _, _ := store.Get(ctx, StateKey)

	_, err = flow.BeginLogin(ctx)
	require.NoError(t, err)
	second, _, _ := store.Get(ctx, StateKey)

	assert.NotEqual(t, first, second)
}

func TestHandleCallback_NoCodeIsNoop(t *testing.T) {
	store := newMemoryStore()
	ts := newTokenServer(t, http.StatusOK, okTokenBody)
	flow := newTestFlow(t, store, ts)
	ctx := context.Background()

	_, err := flow.BeginLogin(ctx)
	require.NoError(t, err)
	before := store.mutations

	grant, err := flow.HandleCallback(ctx, url.Values{"state": {"whatever"}})
	require.NoError(t, err)
	assert.Nil(t, grant)
	assert.Equal(t, before, store.mutations)
	assert.Equal(t, int32(0), ts.calls.Load())
	assert.True(t, flow.Pending(ctx))
}

func TestHandleCallback_StateMismatch(t *testing.T) {
	tests := []struct {
		name  string
		query url.Values
	}{
		{name: "wrong state", query: url.Values{"code": {"abc"}, "state": {"forged"}}},
		{name: "missing state", query: url.Values{"code": {"abc"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newMemoryStore()
			ts := newTokenServer(t, http.StatusOK, okTokenBody)
			flow := newTestFlow(t, store, ts)
			ctx := context.Background()

			_, err := flow.BeginLogin(ctx)
			require.NoError(t, err)

			grant, err := flow.HandleCallback(ctx, tt.query)
			assert.ErrorIs(t, err, ErrCSRF)
			assert.Nil(t, grant)
			assert.Equal(t, int32(0), ts.calls.Load())

			// The partial session is discarded.
			_, ok, _ := store.Get(ctx, StateKey)
			assert.False(t, ok)
			_, ok, _ = store.Get(ctx, VerifierKey)
			assert.False(t, ok)
		})
	}
}

func TestHandleCallback_NoLoginStarted(t *testing.T) {
	store := newMemoryStore()
	ts := newTokenServer(t, http.StatusOK, okTokenBody)
	flow := newTestFlow(t, store, ts)

	_, err := flow.HandleCallback(context.Background(), url.Values{"code": {"abc"}, "state": {"abc"}})
	assert.ErrorIs(t, err, ErrCSRF)
	assert.Equal(t, int32(0), ts.calls.Load())
}

func TestHandleCallback_MissingVerifier(t *testing.T) {
	store := newMemoryStore()
	ts := newTokenServer(t, http.StatusOK, okTokenBody)
	flow := newTestFlow(t, store, ts)
	ctx := context.Background()

	_, err := flow.BeginLogin(ctx)
	require.NoError(t, err)
	state, _, _ := store.Get(ctx, StateKey)
	require.NoError(t, store.Delete(ctx, VerifierKey))

	_, err = flow.HandleCallback(ctx, url.Values{"code": {"abc"}, "state": {state}})
	assert.ErrorIs(t, err, ErrMissingVerifier)
	assert.Equal(t, int32(0), ts.calls.Load())
	assert.False(t, flow.Pending(ctx))
}

func TestHandleCallback_Success(t *testing.T) {
	store := newMemoryStore()
	ts := newTokenServer(t, http.StatusOK, okTokenBody)
	flow := newTestFlow(t, store, ts)
	ctx := context.Background()

	_, err := flow.BeginLogin(ctx)
	require.NoError(t, err)
	state, _, _ := store.Get(ctx, StateKey)
	verifier, _, _ := store.Get(ctx, VerifierKey)

	query := url.Values{"code": {"auth-code"}, "state": {state}}
	grant, err := flow.HandleCallback(ctx, query)
	require.NoError(t, err)
	require.NotNil(t, grant)

	assert.Equal(t, "access-123", grant.AccessToken)
	assert.True(t, grant.HasScope("user-read-playback-state"))
	assert.True(t, grant.HasScope("user-modify-playback-state"))
	assert.False(t, grant.HasScope("playlist-read-private"))

	require.Equal(t, int32(1), ts.calls.Load())
	assert.Equal(t, "authorization_code", ts.form.Get("grant_type"))
	assert.Equal(t, "auth-code", ts.form.Get("code"))
	assert.Equal(t, testRedirectURI, ts.form.Get("redirect_uri"))
	assert.Equal(t, "test-client", ts.form.Get("client_id"))
	assert.Equal(t, verifier, ts.form.Get("code_verifier"))
	assert.Empty(t, ts.form.Get("client_secret"))
	assert.Empty(t, ts.auth)

	// Nonce and verifier are gone, so the same callback cannot be replayed.
	_, ok, _ := store.Get(ctx, StateKey)
	assert.False(t, ok)
	_, ok, _ = store.Get(ctx, VerifierKey)
	assert.False(t, ok)

	_, err = flow.HandleCallback(ctx, query)
	assert.ErrorIs(t, err, ErrCSRF)
	assert.Equal(t, int32(1), ts.calls.Load())
}

func TestHandleCallback_ExchangeFailure(t *testing.T) {
	store := newMemoryStore()
	ts := newTokenServer(t, http.StatusBadRequest, `{"error":"invalid_grant","error_description":"Invalid authorization code"}`)
	flow := newTestFlow(t, store, ts)
	ctx := context.Background()

	_, err := flow.BeginLogin(ctx)
	require.NoError(t, err)
	state, _, _ := store.Get(ctx, StateKey)

	grant, err := flow.HandleCallback(ctx, url.Values{"code": {"bad"}, "state": {state}})
	assert.Nil(t, grant)

	var terr *TokenExchangeError
	require.True(t, errors.As(err, &terr))
	assert.Equal(t, http.StatusBadRequest, terr.Status)
	assert.Contains(t, terr.Body, "invalid_grant")
	assert.False(t, flow.Pending(ctx))
}

func TestExchangeCodeForToken_ScopeOmitted(t *testing.T) {
	ts := newTokenServer(t, http.StatusOK, `{"access_token":"access-456","token_type":"Bearer"}`)
	flow := newTestFlow(t, newMemoryStore(), ts)

	grant, err := flow.ExchangeCodeForToken(context.Background(), "code", "verifier")
	require.NoError(t, err)
	assert.Equal(t, "access-456", grant.AccessToken)
	assert.True(t, grant.HasScope("user-read-playback-state"))
	assert.True(t, grant.HasScope("user-modify-playback-state"))
}

func TestReset(t *testing.T) {
	store := newMemoryStore()
	flow := newTestFlow(t, store, newTokenServer(t, http.StatusOK, okTokenBody))
	ctx := context.Background()

	_, err := flow.BeginLogin(ctx)
	require.NoError(t, err)
	require.True(t, flow.Pending(ctx))

	require.NoError(t, flow.Reset(ctx))
	assert.False(t, flow.Pending(ctx))
	assert.Equal(t, testRedirectURI, flow.RedirectURI())
}

func TestTokenGrant_HasScopeNil(t *testing.T) {
	var grant *TokenGrant
	assert.False(t, grant.HasScope("user-read-playback-state"))
}
