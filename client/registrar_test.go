package client

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePermissions struct {
	state         PermissionState
	requestResult PermissionState
	requestErr    error
	requestCalls  int
}

func (p *fakePermissions) Current() PermissionState { return p.state }

func (p *fakePermissions) Request(ctx context.Context) (PermissionState, error) {
	p.requestCalls++
	if p.requestErr != nil {
		return PermissionDefault, p.requestErr
	}
	return p.requestResult, nil
}

type fakeTokenSource struct {
	token string
	err   error
	calls int
}

func (s *fakeTokenSource) DeliveryToken(ctx context.Context, vapidKey string) (string, error) {
	s.calls++
	if s.err != nil {
		return "", s.err
	}
	return s.token, nil
}

type upsertCall struct {
	userID, token, deviceType string
}

type fakeRegistry struct {
	err   error
	calls []upsertCall
}

func (r *fakeRegistry) UpsertToken(ctx context.Context, userID, token, deviceType string) error {
	r.calls = append(r.calls, upsertCall{userID, token, deviceType})
	return r.err
}

func newTestRegistrar(perms *fakePermissions, tokens *fakeTokenSource, registry *fakeRegistry, store TokenStore) *TokenRegistrar {
	return NewTokenRegistrar(RegistrarConfig{
		Permissions: perms,
		Tokens:      tokens,
		Registry:    registry,
		Store:       store,
		VAPIDKey:    "test-vapid-key",
		DeviceType:  "web",
	})
}

func TestRegister_registersTokenWhenGranted(t *testing.T) {
	perms := &fakePermissions{state: PermissionGranted}
	tokens := &fakeTokenSource{token: "abc"}
	registry := &fakeRegistry{}
	store := NewMemoryTokenStore()

	reg := newTestRegistrar(perms, tokens, registry, store)
	err := reg.Register(context.Background(), Session{LoggedIn: true, UserID: "user-1"})
	require.NoError(t, err)

	require.Len(t, registry.calls, 1, "expected exactly one backend write")
	assert.Equal(t, upsertCall{"user-1", "abc", "web"}, registry.calls[0])
	assert.Equal(t, "abc", store.Get(SentTokenKey), "expected cache to hold the sent token")
}

func TestRegister_noopWhenNotLoggedIn(t *testing.T) {
	tests := []struct {
		name    string
		session Session
	}{
		{"logged out", Session{LoggedIn: false}},
		{"missing user id", Session{LoggedIn: true, UserID: ""}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			perms := &fakePermissions{state: PermissionGranted}
			tokens := &fakeTokenSource{token: "abc"}
			registry := &fakeRegistry{}

			reg := newTestRegistrar(perms, tokens, registry, NewMemoryTokenStore())
			err := reg.Register(context.Background(), tt.session)
			require.NoError(t, err)

			assert.Zero(t, tokens.calls, "expected no token fetch")
			assert.Empty(t, registry.calls, "expected no backend write")
		})
	}
}

func TestRegister_deniedPermissionIsSilent(t *testing.T) {
	perms := &fakePermissions{state: PermissionDenied}
	tokens := &fakeTokenSource{token: "abc"}
	registry := &fakeRegistry{}

	reg := newTestRegistrar(perms, tokens, registry, NewMemoryTokenStore())
	err := reg.Register(context.Background(), Session{LoggedIn: true, UserID: "user-1"})
	require.NoError(t, err, "denied permission is not an error")

	assert.Zero(t, perms.requestCalls, "already-denied permission should not prompt again")
	assert.Zero(t, tokens.calls, "expected no token fetch")
	assert.Empty(t, registry.calls, "expected no backend write")
}

func TestRegister_promptsWhenPermissionDefault(t *testing.T) {
	t.Run("user grants", func(t *testing.T) {
		perms := &fakePermissions{state: PermissionDefault, requestResult: PermissionGranted}
		tokens := &fakeTokenSource{token: "abc"}
		registry := &fakeRegistry{}

		reg := newTestRegistrar(perms, tokens, registry, NewMemoryTokenStore())
		err := reg.Register(context.Background(), Session{LoggedIn: true, UserID: "user-1"})
		require.NoError(t, err)

		assert.Equal(t, 1, perms.requestCalls, "expected one permission prompt")
		require.Len(t, registry.calls, 1)
	})

	t.Run("user declines", func(t *testing.T) {
		perms := &fakePermissions{state: PermissionDefault, requestResult: PermissionDenied}
		tokens := &fakeTokenSource{token: "abc"}
		registry := &fakeRegistry{}

		reg := newTestRegistrar(perms, tokens, registry, NewMemoryTokenStore())
		err := reg.Register(context.Background(), Session{LoggedIn: true, UserID: "user-1"})
		require.NoError(t, err)

		assert.Zero(t, tokens.calls, "expected no token fetch after decline")
		assert.Empty(t, registry.calls, "expected no backend write after decline")
	})
}

func TestRegister_sameTokenWritesOnce(t *testing.T) {
	perms := &fakePermissions{state: PermissionGranted}
	tokens := &fakeTokenSource{token: "abc"}
	registry := &fakeRegistry{}
	store := NewMemoryTokenStore()
	session := Session{LoggedIn: true, UserID: "user-1"}

	reg := newTestRegistrar(perms, tokens, registry, store)
	require.NoError(t, reg.Register(context.Background(), session))
	// Immediate remount with unchanged conditions
	require.NoError(t, reg.Register(context.Background(), session))

	assert.Len(t, registry.calls, 1, "second cycle with the same token must not write")
}

func TestRegister_changedTokenWritesAgain(t *testing.T) {
	perms := &fakePermissions{state: PermissionGranted}
	tokens := &fakeTokenSource{token: "t1"}
	registry := &fakeRegistry{}
	store := NewMemoryTokenStore()
	session := Session{LoggedIn: true, UserID: "user-1"}

	reg := newTestRegistrar(perms, tokens, registry, store)
	require.NoError(t, reg.Register(context.Background(), session))

	tokens.token = "t2"
	require.NoError(t, reg.Register(context.Background(), session))

	require.Len(t, registry.calls, 2, "a rotated token must be re-registered")
	assert.Equal(t, "t1", registry.calls[0].token)
	assert.Equal(t, "t2", registry.calls[1].token)
	assert.Equal(t, "t2", store.Get(SentTokenKey), "cache must end at the latest token")
}

func TestRegister_tokenFetchFailureAborts(t *testing.T) {
	perms := &fakePermissions{state: PermissionGranted}
	tokens := &fakeTokenSource{err: errors.New("provider unavailable")}
	registry := &fakeRegistry{}
	store := NewMemoryTokenStore()

	reg := newTestRegistrar(perms, tokens, registry, store)
	err := reg.Register(context.Background(), Session{LoggedIn: true, UserID: "user-1"})
	require.Error(t, err)

	assert.Empty(t, registry.calls, "expected no backend write after fetch failure")
	assert.Empty(t, store.Get(SentTokenKey), "cache must stay empty after fetch failure")
}

func TestRegister_upsertFailureLeavesCacheStale(t *testing.T) {
	perms := &fakePermissions{state: PermissionGranted}
	tokens := &fakeTokenSource{token: "abc"}
	registry := &fakeRegistry{err: errors.New("backend down")}
	store := NewMemoryTokenStore()
	session := Session{LoggedIn: true, UserID: "user-1"}

	reg := newTestRegistrar(perms, tokens, registry, store)
	err := reg.Register(context.Background(), session)
	require.Error(t, err)
	assert.Empty(t, store.Get(SentTokenKey), "failed write must not update the cache")

	// Next natural trigger retries the same token
	registry.err = nil
	require.NoError(t, reg.Register(context.Background(), session))
	require.Len(t, registry.calls, 2)
	assert.Equal(t, "abc", store.Get(SentTokenKey))
}

func TestRegister_emptyTokenIsIgnored(t *testing.T) {
	perms := &fakePermissions{state: PermissionGranted}
	tokens := &fakeTokenSource{token: ""}
	registry := &fakeRegistry{}
	store := NewMemoryTokenStore()

	reg := newTestRegistrar(perms, tokens, registry, store)
	err := reg.Register(context.Background(), Session{LoggedIn: true, UserID: "user-1"})
	require.NoError(t, err)

	assert.Empty(t, registry.calls)
	assert.Empty(t, store.Get(SentTokenKey))
}
