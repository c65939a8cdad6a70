package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, srv *httptest.Server, tokenPath string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(append([]string{"--api", srv.URL, "--token-file", tokenPath}, args...))
	err := root.Execute()
	return out.String(), err
}

func TestLoginStoresTokenAndSendsIt(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "+919000000001", body["phone"])
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"farmerId":7,"name":"Alice","token":"tok-123"}`))
	})
	mux.HandleFunc("GET /api/farms", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer tok-123" {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"error":"missing auth"}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{"id":1,"name":"Paddy Field","location":"Kottayam","landSize":2.5,"cropTypes":["Rice"]}]`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	tokenPath := filepath.Join(t.TempDir(), "token")

	_, err := run(t, srv, tokenPath, "farms", "list")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing auth")

	out, err := run(t, srv, tokenPath, "auth", "login", "--phone", "+919000000001", "--password", "secret-pass-1")
	require.NoError(t, err)
	assert.Contains(t, out, "Logged in as Alice")

	data, err := os.ReadFile(tokenPath)
	require.NoError(t, err)
	assert.Equal(t, "tok-123", string(data))

	out, err = run(t, srv, tokenPath, "farms", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Paddy Field")

	_, err = run(t, srv, tokenPath, "auth", "logout")
	require.NoError(t, err)
	_, err = os.Stat(tokenPath)
	assert.True(t, os.IsNotExist(err))
}

func TestChatPrintsResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "when to plant rice", body["message"])
		assert.Equal(t, "ml", body["language"])
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"response":"June is best.","language":"ml","rule":"rice_planting"}`))
	}))
	defer srv.Close()

	out, err := run(t, srv, filepath.Join(t.TempDir(), "token"), "chat", "-l", "ml", "when", "to", "plant", "rice")
	require.NoError(t, err)
	assert.Equal(t, "June is best.\n", out)
}
