package transport

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"

	"github.com/mkallio/harvestmate/internal/model"
	"github.com/mkallio/harvestmate/internal/room"
)

// Handler upgrades connections to websockets and relays messages
// between a client and its room
type Handler struct {
	registry *room.Registry
	logger   *slog.Logger
}

func NewHandler(registry *room.Registry, logger *slog.Logger) *Handler {
	return &Handler{
		registry: registry,
		logger:   logger.With(slog.String("component", "ws")),
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		// Game clients are served from arbitrary origins during
		// development; auth happens at the join step.
		InsecureSkipVerify: true,
	})
	if err != nil {
		h.logger.Warn("websocket accept failed", slog.Any("error", err))
		return
	}
	defer conn.Close(websocket.StatusInternalError, "connection torn down")

	ctx := r.Context()
	sender := newWSConn(conn)
	logger := h.logger.With(slog.String("conn_id", string(sender.ID())))

	gameRoom, err := h.admit(ctx, conn, sender)
	if err != nil {
		logger.Info("join failed", slog.Any("error", err))
		h.rejectAndClose(ctx, conn, err)
		return
	}
	logger = logger.With(slog.String("room", string(gameRoom.ID())))
	logger.Info("connection joined room")

	h.relay(ctx, conn, sender, gameRoom, logger)

	gameRoom.Disconnect(sender.ID())
	logger.Info("connection closed")
	conn.Close(websocket.StatusNormalClosure, "")
}

// admit reads the mandatory first message, which must be a join, and
// binds the connection to its room
func (h *Handler) admit(ctx context.Context, conn *websocket.Conn, sender *wsConn) (*room.Room, error) {
	var env Envelope
	if err := wsjson.Read(ctx, conn, &env); err != nil {
		return nil, err
	}
	if env.Kind != KindJoin {
		return nil, errors.New("first message must be a join")
	}

	var payload JoinPayload
	if err := json.Unmarshal(env.Payload, &payload); err != nil {
		return nil, model.ErrMalformedSnapshot
	}
	if payload.Username == "" {
		return nil, errors.New("username is required")
	}

	// Joining an unknown code creates the room, so a code can be shared
	// before its first player has connected. A passcode can only be set
	// through the REST create endpoint.
	gameRoom, err := h.registry.GetOrCreate(payload.RoomID, "")
	if err != nil {
		return nil, err
	}

	if _, err := gameRoom.Join(room.JoinRequest{
		Username:       payload.Username,
		Passcode:       payload.Passcode,
		ClaimedColor:   payload.ClaimedColor,
		ClientSnapshot: payload.ClientSnapshot,
		Sender:         sender,
	}); err != nil {
		return nil, err
	}
	return gameRoom, nil
}

// relay pumps inbound messages into the room until the connection drops
func (h *Handler) relay(ctx context.Context, conn *websocket.Conn, sender *wsConn, gameRoom *room.Room, logger *slog.Logger) {
	for {
		var env Envelope
		if err := wsjson.Read(ctx, conn, &env); err != nil {
			if websocket.CloseStatus(err) == websocket.StatusNormalClosure {
				return
			}
			logger.Debug("read loop ended", slog.Any("error", err))
			return
		}

		action, err := decodeAction(env)
		if err != nil {
			// Unparseable input does not kill the connection; the
			// client is told and may try again
			_ = sender.Send(model.EventActionRejected, model.ActionRejectedPayload{
				Code:    "MALFORMED_INPUT",
				Message: err.Error(),
			})
			continue
		}

		if err := gameRoom.Submit(sender.ID(), action); err != nil {
			if errors.Is(err, model.ErrRoomClosed) {
				return
			}
			// Rejections were already sent to the offender by the room,
			// except when the room no longer knows the connection at
			// all: there is no seat to address, so answer directly
			if errors.Is(err, model.ErrSessionNotFound) {
				_ = sender.Send(model.EventActionRejected, room.Rejection(err))
			}
		}
	}
}

func decodeAction(env Envelope) (room.Action, error) {
	switch env.Kind {
	case KindMove:
		var p MovePayload
		if err := json.Unmarshal(env.Payload, &p); err != nil {
			return nil, err
		}
		if p.Move == "" {
			return nil, errors.New("move is required")
		}
		return room.MoveAction{Move: p.Move}, nil
	case KindFarm:
		var p FarmPayload
		if err := json.Unmarshal(env.Payload, &p); err != nil {
			return nil, err
		}
		return room.FarmAction{PlotIndex: p.PlotIndex, Crop: p.Crop}, nil
	case KindEndTurn:
		return room.EndTurnAction{}, nil
	case KindResign:
		return room.ResignAction{}, nil
	default:
		return nil, errors.New("unknown message kind: " + string(env.Kind))
	}
}

// rejectAndClose tells the client why the join failed before dropping
// the connection
func (h *Handler) rejectAndClose(ctx context.Context, conn *websocket.Conn, err error) {
	rejection := room.Rejection(err)
	_ = wsjson.Write(ctx, conn, OutboundEvent{Event: model.EventActionRejected, Payload: rejection})
	conn.Close(websocket.StatusPolicyViolation, rejection.Code)
}
