package rest_handler_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"
	"github.com/vulpemventures/seedcheck/internal/core/application"
	"github.com/vulpemventures/seedcheck/internal/core/domain"
	phrase_seeded "github.com/vulpemventures/seedcheck/internal/infrastructure/random-source/phrase-seeded"
	"github.com/vulpemventures/seedcheck/internal/infrastructure/storage/db/inmemory"
	rest_handler "github.com/vulpemventures/seedcheck/internal/interfaces/rest/handler"
)

const (
	phraseLength = 24
	groupSize    = 3
)

type testStore struct {
	mnemonic []string
	lock     sync.RWMutex
}

func (s *testStore) Set(mnemonic string) {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.mnemonic = strings.Fields(mnemonic)
}

func (s *testStore) Unset() {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.mnemonic = nil
}

func (s *testStore) IsSet() bool {
	s.lock.RLock()
	defer s.lock.RUnlock()
	return len(s.mnemonic) > 0
}

func (s *testStore) Get() []string {
	s.lock.RLock()
	defer s.lock.RUnlock()
	return s.mnemonic
}

type chip struct {
	Position int    `json:"position"`
	Word     string `json:"word"`
}

type session struct {
	ID      string `json:"id"`
	Step    string `json:"step"`
	Outcome string `json:"outcome"`
	Attempt uint32 `json:"attempt"`
	Groups  []struct {
		Index     int  `json:"index"`
		Completed bool `json:"completed"`
		Slots     []struct {
			Kind     string `json:"kind"`
			Position int    `json:"position"`
			Word     string `json:"word"`
		} `json:"slots"`
	} `json:"groups"`
	Chips []chip `json:"chips"`
}

func TestMain(m *testing.M) {
	domain.MnemonicStore = &testStore{}

	os.Exit(m.Run())
}

func newTestRouter(t *testing.T) (*mux.Router, chan struct{}) {
	t.Helper()

	repoManager := inmemory.NewRepoManager()
	randomFactory, err := phrase_seeded.NewRandomSourceFactory(nil)
	require.NoError(t, err)

	svc := application.NewBackupService(
		repoManager, randomFactory, phraseLength, groupSize, time.Minute,
	)
	chClose := make(chan struct{})
	t.Cleanup(func() {
		close(chClose)
		repoManager.Close()
	})

	return rest_handler.NewRouter(svc, chClose), chClose
}

func doRequest(
	t *testing.T, router http.Handler, method, path string, body interface{},
	resBody interface{},
) int {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.NotEmpty(t, rec.Header().Get("X-Request-Id"))
	if resBody != nil && rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), resBody))
	}
	return rec.Code
}

func TestRouter(t *testing.T) {
	router, _ := newTestRouter(t)

	var seed struct {
		Mnemonic []string `json:"mnemonic"`
	}
	status := doRequest(t, router, http.MethodPost, "/v1/seed", nil, &seed)
	require.Equal(t, http.StatusOK, status)
	require.Len(t, seed.Mnemonic, phraseLength)
	mnemonic := strings.Join(seed.Mnemonic, " ")

	t.Run("start_validation", func(t *testing.T) {
		tests := []struct {
			name   string
			body   interface{}
			status int
		}{
			{"from_store", nil, http.StatusCreated},
			{"from_body", map[string]string{"mnemonic": mnemonic}, http.StatusCreated},
			{"invalid_mnemonic", map[string]string{"mnemonic": "not a mnemonic"}, http.StatusBadRequest},
			{"unknown_field", map[string]string{"password": "secret"}, http.StatusBadRequest},
		}
		for _, tt := range tests {
			tt := tt
			t.Run(tt.name, func(t *testing.T) {
				var s session
				status := doRequest(t, router, http.MethodPost, "/v1/sessions", tt.body, &s)
				require.Equal(t, tt.status, status)
				if status == http.StatusCreated {
					require.NotEmpty(t, s.ID)
					require.Equal(t, "initial", s.Step)
					require.Len(t, s.Groups, phraseLength/groupSize)
					require.Len(t, s.Chips, phraseLength/groupSize)
				}
			})
		}
	})

	t.Run("validation_flow", func(t *testing.T) {
		var s session
		status := doRequest(
			t, router, http.MethodPost, "/v1/sessions",
			map[string]string{"mnemonic": mnemonic}, &s,
		)
		require.Equal(t, http.StatusCreated, status)
		path := "/v1/sessions/" + s.ID
		chips := s.Chips

		status = doRequest(t, router, http.MethodGet, "/v1/sessions/unknown", nil, nil)
		require.Equal(t, http.StatusNotFound, status)

		status = doRequest(
			t, router, http.MethodPost, path+"/place",
			map[string]interface{}{"position": chips[0].Position, "word": chips[0].Word, "group": 99},
			nil,
		)
		require.Equal(t, http.StatusBadRequest, status)

		status = doRequest(
			t, router, http.MethodPost, path+"/place",
			map[string]interface{}{"position": chips[0].Position, "word": "wrong", "group": 0},
			nil,
		)
		require.Equal(t, http.StatusConflict, status)

		status = doRequest(
			t, router, http.MethodPost, path+"/unplace",
			map[string]interface{}{"group": 0}, nil,
		)
		require.Equal(t, http.StatusConflict, status)

		for _, c := range chips {
			s = session{}
			status = doRequest(
				t, router, http.MethodPost, path+"/place",
				map[string]interface{}{
					"position": c.Position, "word": c.Word, "group": c.Position / groupSize,
				},
				&s,
			)
			require.Equal(t, http.StatusOK, status)
		}
		require.Equal(t, "complete", s.Step)
		require.Equal(t, "success", s.Outcome)
		require.Empty(t, s.Chips)

		var backupStatus struct {
			Fingerprint string `json:"fingerprint"`
			Verified    bool   `json:"verified"`
			Backup      *struct {
				Attempts uint32 `json:"attempts"`
			} `json:"backup"`
		}
		status = doRequest(
			t, router, http.MethodPost, "/v1/backups/status",
			map[string]string{"mnemonic": mnemonic}, &backupStatus,
		)
		require.Equal(t, http.StatusOK, status)
		require.True(t, backupStatus.Verified)
		require.NotNil(t, backupStatus.Backup)
		require.Equal(t, uint32(1), backupStatus.Backup.Attempts)

		var backups struct {
			Backups []struct {
				Fingerprint string `json:"fingerprint"`
			} `json:"backups"`
		}
		status = doRequest(t, router, http.MethodGet, "/v1/backups", nil, &backups)
		require.Equal(t, http.StatusOK, status)
		require.Len(t, backups.Backups, 1)
		require.Equal(t, backupStatus.Fingerprint, backups.Backups[0].Fingerprint)

		s = session{}
		status = doRequest(t, router, http.MethodPost, path+"/unplace", map[string]interface{}{"group": 0}, &s)
		require.Equal(t, http.StatusOK, status)
		require.Equal(t, "incomplete", s.Step)
		require.Len(t, s.Chips, 1)

		s = session{}
		status = doRequest(t, router, http.MethodPost, path+"/reset", nil, &s)
		require.Equal(t, http.StatusOK, status)
		require.Equal(t, "initial", s.Step)
		require.Equal(t, uint32(1), s.Attempt)

		status = doRequest(t, router, http.MethodDelete, path, nil, nil)
		require.Equal(t, http.StatusNoContent, status)

		status = doRequest(t, router, http.MethodDelete, path, nil, nil)
		require.Equal(t, http.StatusNotFound, status)
	})
}

func TestEventsStream(t *testing.T) {
	router, _ := newTestRouter(t)
	srv := httptest.NewServer(router)
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/v1/events"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	// Give the server the time to subscribe the connection to the events.
	time.Sleep(100 * time.Millisecond)

	status := doRequest(t, router, http.MethodPost, "/v1/seed", nil, nil)
	require.Equal(t, http.StatusOK, status)

	var s session
	status = doRequest(t, router, http.MethodPost, "/v1/sessions", nil, &s)
	require.Equal(t, http.StatusCreated, status)

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var event struct {
		Source    string `json:"source"`
		EventType string `json:"event_type"`
		SessionID string `json:"session_id"`
		Step      string `json:"step"`
	}
	require.NoError(t, conn.ReadJSON(&event))
	require.Equal(t, "session", event.Source)
	require.Equal(t, domain.SessionStarted.String(), event.EventType)
	require.Equal(t, s.ID, event.SessionID)
	require.Equal(t, "initial", event.Step)
}
