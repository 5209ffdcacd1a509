package api

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chatwire/internal/history"
	"chatwire/internal/lifecycle"
	"chatwire/internal/presence"
	"chatwire/internal/room"
	"chatwire/internal/testutil"
	"chatwire/pkg/types"
)

func newTestServer() (*Server, *lifecycle.Manager, *presence.Registry, *room.Index, *history.Buffer) {
	lc := lifecycle.NewManager()
	pr := presence.NewRegistry()
	rooms := room.NewIndex()
	hist := history.NewBuffer()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewServer(lc, pr, rooms, hist, log), lc, pr, rooms, hist
}

func TestHealth(t *testing.T) {
	s, _, _, _, _ := newTestServer()

	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
}

func TestStatsReflectRegistries(t *testing.T) {
	s, lc, pr, rooms, hist := newTestServer()

	a := testutil.NewRecordingConn("a")
	b := testutil.NewRecordingConn("b")
	require.NoError(t, lc.Add(a))
	require.NoError(t, lc.Add(b))
	pr.Bind(a, "alice")
	rooms.Join(a, "r1")
	hist.Append(types.Message{ID: "m1", Sender: "alice", Body: "hi"})

	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/stats", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var stats Stats
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stats))
	assert.Equal(t, Stats{
		Connections:   2,
		OnlineUsers:   1,
		ActiveRooms:   1,
		HistoryLength: 1,
	}, stats)
}

func TestMethodNotAllowed(t *testing.T) {
	s, _, _, _, _ := newTestServer()

	for _, path := range []string{"/health", "/api/stats"} {
		rec := httptest.NewRecorder()
		s.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, path, nil))
		assert.Equal(t, http.StatusMethodNotAllowed, rec.Code, path)
	}
}

func TestCORSPreflight(t *testing.T) {
	s, _, _, _, _ := newTestServer()

	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodOptions, "/api/stats", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}
