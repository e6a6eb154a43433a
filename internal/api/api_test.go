package api_test

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkallio/harvestmate/internal/api"
	"github.com/mkallio/harvestmate/internal/config"
	"github.com/mkallio/harvestmate/internal/factory"
	"github.com/mkallio/harvestmate/internal/model"
	"github.com/mkallio/harvestmate/internal/room"
)

// testServer wires the router against the in-memory stack
type testServer struct {
	handler  http.Handler
	registry *room.Registry
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

	// API tests are integration tests - use production factory with real random/clock
	app, err := factory.New(config.Server{StorageType: config.StorageTypeMemory}, logger)
	require.NoError(t, err)

	router := api.NewRouter(api.RouterConfig{
		Logger:   logger,
		Registry: app.Registry,
	})

	return &testServer{
		handler:  router,
		registry: app.Registry,
	}
}

func (ts *testServer) request(method, path string, body any) *httptest.ResponseRecorder {
	var reqBody *bytes.Buffer
	if body != nil {
		b, _ := json.Marshal(body)
		reqBody = bytes.NewBuffer(b)
	} else {
		reqBody = bytes.NewBuffer(nil)
	}

	req := httptest.NewRequest(method, path, reqBody)
	req.Header.Set("Content-Type", "application/json")

	rr := httptest.NewRecorder()
	ts.handler.ServeHTTP(rr, req)
	return rr
}

func TestHealthCheck(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodGet, "/api/v1/health", nil)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "ok")
}

func TestCreateRoom(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodPost, "/api/v1/rooms", nil)
	assert.Equal(t, http.StatusCreated, rr.Code)

	var resp api.RoomResponse
	err := json.Unmarshal(rr.Body.Bytes(), &resp)
	require.NoError(t, err)

	assert.Len(t, string(resp.RoomID), room.RoomCodeLength)
	assert.Equal(t, model.PhaseWaitingForPlayers, resp.Phase)
	assert.Equal(t, 1, ts.registry.Count())
}

func TestCreateRoomWithPasscode(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodPost, "/api/v1/rooms", map[string]string{"passcode": "hunter2"})
	assert.Equal(t, http.StatusCreated, rr.Code)

	var resp api.RoomResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))

	created, err := ts.registry.Get(resp.RoomID)
	require.NoError(t, err)

	// The passcode gates joining, not room lookup
	_, err = created.Join(room.JoinRequest{Username: "alice", Passcode: "wrong", Sender: noopSender{}})
	assert.ErrorIs(t, err, model.ErrInvalidPasscode)
	_, err = created.Join(room.JoinRequest{Username: "alice", Passcode: "hunter2", Sender: noopSender{}})
	assert.NoError(t, err)
}

func TestCreateRoomRejectsBadJSON(t *testing.T) {
	ts := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/rooms", bytes.NewBufferString("{not json"))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	ts.handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "INVALID_REQUEST")
}

func TestGetRoom(t *testing.T) {
	ts := newTestServer(t)

	created, err := ts.registry.GetOrCreate("GAME01", "")
	require.NoError(t, err)
	_, err = created.Join(room.JoinRequest{Username: "alice", Sender: noopSender{}})
	require.NoError(t, err)

	rr := ts.request(http.MethodGet, "/api/v1/rooms/GAME01", nil)
	assert.Equal(t, http.StatusOK, rr.Code)

	var resp api.RoomStateResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))

	assert.Equal(t, model.RoomID("GAME01"), resp.RoomID)
	assert.Equal(t, model.PhaseWaitingForPlayers, resp.State.Phase)
	assert.Equal(t, "alice", resp.State.Players[model.ColorWhite].Username)
}

func TestGetUnknownRoom(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodGet, "/api/v1/rooms/NOPE99", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Contains(t, rr.Body.String(), "ROOM_NOT_FOUND")
}

// noopSender satisfies room.Sender for REST-only tests
type noopSender struct{}

func (noopSender) ID() model.ConnectionID          { return "conn-test" }
func (noopSender) Send(model.EventType, any) error { return nil }
