package main

import (
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestState(t *testing.T) {
	statePath = filepath.Join(t.TempDir(), "state.json")

	state, err := getState()
	require.NoError(t, err)
	require.Equal(t, initialState, state)

	err = setState(map[string]string{"rpcserver": "localhost:9999"})
	require.NoError(t, err)

	state, err = getState()
	require.NoError(t, err)
	require.Equal(t, "localhost:9999", state["rpcserver"])
	require.Equal(t, initialState["timeout"], state["timeout"])
	require.Equal(t, "localhost:18100", initialState["rpcserver"])
}

func TestClient(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			switch r.URL.Path {
			case "/v1/seed":
				w.Write([]byte(`{"mnemonic":["leave","dice","fine"]}`))
			case "/v1/sessions/unknown":
				w.WriteHeader(http.StatusNotFound)
				w.Write([]byte(`{"error":"session not found"}`))
			default:
				w.WriteHeader(http.StatusInternalServerError)
			}
		},
	))
	defer server.Close()

	statePath = filepath.Join(t.TempDir(), "state.json")
	err := setState(map[string]string{"rpcserver": server.URL})
	require.NoError(t, err)

	client, err := getClient()
	require.NoError(t, err)

	t.Run("valid", func(t *testing.T) {
		reply := genSeedReply{}
		err := client.call(http.MethodPost, "/v1/seed", nil, &reply)
		require.NoError(t, err)
		require.Equal(t, []string{"leave", "dice", "fine"}, reply.Mnemonic)
	})

	t.Run("invalid", func(t *testing.T) {
		err := client.call(http.MethodGet, "/v1/sessions/unknown", nil, &sessionReply{})
		require.EqualError(t, err, "session not found")

		err = client.call(http.MethodGet, "/v1/backups", nil, nil)
		require.Error(t, err)
	})
}

func TestCurrentGroup(t *testing.T) {
	session := sessionReply{
		Groups: []group{
			{Index: 0, Completed: true},
			{Index: 1},
			{Index: 2},
		},
	}
	require.Equal(t, 1, session.currentGroup())

	session.Groups[1].Completed = true
	session.Groups[2].Completed = true
	require.Equal(t, -1, session.currentGroup())
}
