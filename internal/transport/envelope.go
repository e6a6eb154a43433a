package transport

import (
	"encoding/json"

	"github.com/mkallio/harvestmate/internal/model"
)

// MessageKind discriminates inbound client messages
type MessageKind string

const (
	KindJoin    MessageKind = "join"
	KindMove    MessageKind = "move"
	KindFarm    MessageKind = "farmAction"
	KindEndTurn MessageKind = "endTurn"
	KindResign  MessageKind = "resign"
)

// Envelope is the framing for every inbound client message. The payload
// shape depends on the kind.
type Envelope struct {
	Kind    MessageKind     `json:"kind"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// JoinPayload opens a session. It must be the first message on a
// connection.
type JoinPayload struct {
	RoomID   model.RoomID `json:"room_id"`
	Username string       `json:"username"`
	Passcode string       `json:"passcode,omitempty"`

	// ClaimedColor and ClientSnapshot are set on reconnection attempts
	ClaimedColor   model.Color     `json:"claimed_color,omitempty"`
	ClientSnapshot *model.Snapshot `json:"client_snapshot,omitempty"`
}

// MovePayload carries a move in coordinate or algebraic notation
type MovePayload struct {
	Move string `json:"move"`
}

// FarmPayload plants a crop on one of the caller's plots
type FarmPayload struct {
	PlotIndex int            `json:"plot_index"`
	Crop      model.CropType `json:"crop"`
}

// OutboundEvent is the framing for every server-to-client message
type OutboundEvent struct {
	Event   model.EventType `json:"event"`
	Payload any             `json:"payload,omitempty"`
}
