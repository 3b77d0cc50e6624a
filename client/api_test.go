package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAPIClient_upsertTokenSuccess(t *testing.T) {
	var gotPath, gotAuth, gotDeviceType string
	var gotBody map[string]string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		gotDeviceType = r.Header.Get("X-Device-Type")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		json.NewEncoder(w).Encode(statusEnvelope{Status: "success"})
	}))
	defer srv.Close()

	api := NewAPIClient(srv.URL, "viewer-jwt")
	err := api.UpsertToken(context.Background(), "user-1", "fcm-abc", "web")
	require.NoError(t, err)

	assert.Equal(t, "/api/v1/devices", gotPath)
	assert.Equal(t, "Bearer viewer-jwt", gotAuth)
	assert.Equal(t, "web", gotDeviceType)
	assert.Equal(t, map[string]string{"token": "fcm-abc", "device_type": "web"}, gotBody)
}

func TestAPIClient_upsertTokenErrorEnvelope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(statusEnvelope{Status: "error", Message: "device_type must be one of web android ios"})
	}))
	defer srv.Close()

	api := NewAPIClient(srv.URL, "viewer-jwt")
	err := api.UpsertToken(context.Background(), "user-1", "fcm-abc", "toaster")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "device_type must be one of")
}

func TestAPIClient_upsertTokenRejectsMissingUserID(t *testing.T) {
	var requests atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
	}))
	defer srv.Close()

	api := NewAPIClient(srv.URL, "viewer-jwt")
	err := api.UpsertToken(context.Background(), "", "fcm-abc", "web")
	require.Error(t, err)
	assert.Zero(t, requests.Load(), "no request may leave without a resolved user")
}

func TestAPIClient_fetchRoster(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/teams/T1/roster", r.URL.Path)
		json.NewEncoder(w).Encode([]RosterMember{
			{ID: "p1", AccountID: "a1", Name: "Faker", SummonerName: "Hide on bush", IsOnline: true, IsSubscribed: true},
		})
	}))
	defer srv.Close()

	api := NewAPIClient(srv.URL, "")
	members, err := api.FetchRoster(context.Background(), Scope{Team: "T1"})
	require.NoError(t, err)
	require.Len(t, members, 1)
	assert.Equal(t, "Faker", members[0].Name)
	assert.True(t, members[0].IsOnline)
}

func TestAPIClient_fetchRosterUnexpectedStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]string{"error": "Team not found"})
	}))
	defer srv.Close()

	api := NewAPIClient(srv.URL, "")
	_, err := api.FetchRoster(context.Background(), Scope{Team: "NOPE"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")
}
