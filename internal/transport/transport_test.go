package transport_test

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"

	"github.com/mkallio/harvestmate/internal/config"
	"github.com/mkallio/harvestmate/internal/factory"
	"github.com/mkallio/harvestmate/internal/model"
	"github.com/mkallio/harvestmate/internal/transport"
)

type inboundEvent struct {
	Event   model.EventType `json:"event"`
	Payload json.RawMessage `json:"payload"`
}

type testClient struct {
	t    *testing.T
	conn *websocket.Conn
}

func newTestHarness(t *testing.T) (*httptest.Server, *factory.App) {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	app, err := factory.New(config.Server{StorageType: config.StorageTypeMemory}, logger)
	require.NoError(t, err)

	srv := httptest.NewServer(transport.NewHandler(app.Registry, logger))
	t.Cleanup(srv.Close)
	return srv, app
}

func dial(t *testing.T, srv *httptest.Server) *testClient {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	wsURL := strings.Replace(srv.URL, "http", "ws", 1)
	conn, _, err := websocket.Dial(ctx, wsURL, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close(websocket.StatusNormalClosure, "") })

	return &testClient{t: t, conn: conn}
}

func (c *testClient) send(kind transport.MessageKind, payload any) {
	c.t.Helper()

	var raw json.RawMessage
	if payload != nil {
		b, err := json.Marshal(payload)
		require.NoError(c.t, err)
		raw = b
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(c.t, wsjson.Write(ctx, c.conn, transport.Envelope{Kind: kind, Payload: raw}))
}

// waitFor reads events until the wanted one arrives, skipping others
func (c *testClient) waitFor(event model.EventType) json.RawMessage {
	c.t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	for {
		var ev inboundEvent
		require.NoError(c.t, wsjson.Read(ctx, c.conn, &ev), "waiting for %s", event)
		if ev.Event == event {
			return ev.Payload
		}
	}
}

func (c *testClient) join(roomID model.RoomID, username string) {
	c.t.Helper()
	c.send(transport.KindJoin, transport.JoinPayload{RoomID: roomID, Username: username})
}

func TestJoinAndPlayOverWebsocket(t *testing.T) {
	srv, app := newTestHarness(t)
	created, err := app.Registry.GetOrCreate("GAME01", "")
	require.NoError(t, err)

	white := dial(t, srv)
	white.join(created.ID(), "alice")

	var assigned model.PlayerAssignedPayload
	require.NoError(t, json.Unmarshal(white.waitFor(model.EventPlayerAssigned), &assigned))
	assert.Equal(t, model.ColorWhite, assigned.Color)

	black := dial(t, srv)
	black.join(created.ID(), "bob")
	black.waitFor(model.EventPlayerAssigned)

	var start model.GameStartPayload
	require.NoError(t, json.Unmarshal(white.waitFor(model.EventGameStart), &start))
	assert.Equal(t, model.ColorWhite, start.State.CurrentTurn)
	black.waitFor(model.EventGameStart)

	// A real opening move flows through the chess engine
	white.send(transport.KindMove, transport.MovePayload{Move: "e2e4"})

	var state model.StateUpdate
	require.NoError(t, json.Unmarshal(black.waitFor(model.EventStateUpdate), &state))
	assert.Contains(t, state.BoardToken, "4P3")

	white.send(transport.KindEndTurn, nil)

	var turn model.TurnChangedPayload
	require.NoError(t, json.Unmarshal(black.waitFor(model.EventTurnChanged), &turn))
	assert.Equal(t, model.ColorBlack, turn.Color)
}

func TestJoinUnknownCodeCreatesRoom(t *testing.T) {
	srv, app := newTestHarness(t)

	client := dial(t, srv)
	client.join("FRESH1", "alice")

	var assigned model.PlayerAssignedPayload
	require.NoError(t, json.Unmarshal(client.waitFor(model.EventPlayerAssigned), &assigned))
	assert.Equal(t, model.RoomID("FRESH1"), assigned.RoomID)
	assert.Equal(t, model.ColorWhite, assigned.Color)

	created, err := app.Registry.Get("FRESH1")
	require.NoError(t, err)
	assert.Equal(t, model.PhaseWaitingForPlayers, created.Phase())
}

func TestFirstMessageMustBeJoin(t *testing.T) {
	srv, app := newTestHarness(t)
	_, err := app.Registry.GetOrCreate("GAME01", "")
	require.NoError(t, err)

	client := dial(t, srv)
	client.send(transport.KindMove, transport.MovePayload{Move: "e2e4"})

	client.waitFor(model.EventActionRejected)
}

func TestMalformedMessageDoesNotKillConnection(t *testing.T) {
	srv, app := newTestHarness(t)
	created, err := app.Registry.GetOrCreate("GAME01", "")
	require.NoError(t, err)

	client := dial(t, srv)
	client.join(created.ID(), "alice")
	client.waitFor(model.EventPlayerAssigned)

	client.send("garbage", nil)

	var rejection model.ActionRejectedPayload
	require.NoError(t, json.Unmarshal(client.waitFor(model.EventActionRejected), &rejection))
	assert.Equal(t, "MALFORMED_INPUT", rejection.Code)

	// The connection is still bound to its seat
	assert.Equal(t, model.PhaseWaitingForPlayers, created.Phase())
}

func TestStaleConnectionToldAfterTakeover(t *testing.T) {
	srv, app := newTestHarness(t)
	created, err := app.Registry.GetOrCreate("GAME01", "")
	require.NoError(t, err)

	stale := dial(t, srv)
	stale.join(created.ID(), "alice")
	stale.waitFor(model.EventPlayerAssigned)

	// Page refresh: a new connection claims white while the old one is
	// still open, which unbinds the old connection from its seat
	refreshed := dial(t, srv)
	refreshed.send(transport.KindJoin, transport.JoinPayload{
		RoomID:       created.ID(),
		Username:     "alice",
		ClaimedColor: model.ColorWhite,
	})
	refreshed.waitFor(model.EventReconnectSuccess)

	stale.send(transport.KindMove, transport.MovePayload{Move: "e2e4"})

	var rejection model.ActionRejectedPayload
	require.NoError(t, json.Unmarshal(stale.waitFor(model.EventActionRejected), &rejection))
	assert.Equal(t, "SESSION_NOT_FOUND", rejection.Code)
}

func TestDisconnectNotifiesOpponent(t *testing.T) {
	srv, app := newTestHarness(t)
	created, err := app.Registry.GetOrCreate("GAME01", "")
	require.NoError(t, err)

	white := dial(t, srv)
	white.join(created.ID(), "alice")
	white.waitFor(model.EventPlayerAssigned)

	black := dial(t, srv)
	black.join(created.ID(), "bob")
	black.waitFor(model.EventGameStart)
	white.waitFor(model.EventGameStart)

	require.NoError(t, white.conn.Close(websocket.StatusNormalClosure, ""))

	var presence model.OpponentPresencePayload
	require.NoError(t, json.Unmarshal(black.waitFor(model.EventOpponentDisconnected), &presence))
	assert.Equal(t, model.ColorWhite, presence.Color)
}
