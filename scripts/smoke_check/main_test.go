package main

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTargetsDefaultsExpectedStatus(t *testing.T) {
	targets, err := parseTargets([]byte(`{"targets":[{"method":"GET","path":"/health"},{"path":"/api/v1/students","expect":401}]}`), "inline")
	require.NoError(t, err)
	require.Len(t, targets, 2)
	assert.Equal(t, http.StatusOK, targets[0].Expect)
	assert.Equal(t, http.StatusUnauthorized, targets[1].Expect)

	_, err = parseTargets([]byte(`{"targets":[]}`), "inline")
	assert.Error(t, err)
}

func TestEnveloped(t *testing.T) {
	assert.True(t, enveloped("application/json", []byte(`{"data":{"id":"1"}}`)))
	assert.True(t, enveloped("application/json", []byte(`{"error":{"code":"NOT_FOUND"}}`)))
	assert.True(t, enveloped("application/json", []byte(`{"status":"ok"}`)))
	assert.True(t, enveloped("text/plain", []byte("# HELP")))
	assert.False(t, enveloped("application/json", []byte(`{"items":[]}`)))
}

func TestLoginAndProbe(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/api/v1/auth/login":
			_, _ = w.Write([]byte(`{"data":{"access_token":"tok"}}`))
		case "/api/v1/rooms":
			if r.Header.Get("Authorization") != "Bearer tok" {
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = w.Write([]byte(`{"error":{"code":"UNAUTHORIZED"}}`))
				return
			}
			_, _ = w.Write([]byte(`{"data":[]}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	client := srv.Client()
	token, err := login(client, srv.URL, "admin@center.test", "secret")
	require.NoError(t, err)
	assert.Equal(t, "tok", token)

	p := run(client, srv.URL, token, target{Method: http.MethodGet, Path: "/api/v1/rooms", Expect: http.StatusOK})
	assert.True(t, p.ok())

	p = run(client, srv.URL, "", target{Method: http.MethodGet, Path: "/api/v1/rooms", Expect: http.StatusOK})
	assert.False(t, p.ok())
	assert.Equal(t, http.StatusUnauthorized, p.Status)

	_, err = login(client, srv.URL, "", "")
	assert.Error(t, err)
}
