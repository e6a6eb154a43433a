package model

// EventType identifies an outbound event sent over the transport
type EventType string

const (
	EventPlayerAssigned       EventType = "playerAssigned"
	EventRoomFull             EventType = "roomFull"
	EventGameStart            EventType = "gameStart"
	EventReconnectSuccess     EventType = "reconnectSuccess"
	EventOpponentReconnected  EventType = "opponentReconnected"
	EventOpponentDisconnected EventType = "opponentDisconnected"
	EventTurnChanged          EventType = "turnChanged"
	EventStateUpdate          EventType = "stateUpdate"
	EventActionRejected       EventType = "actionRejected"
	EventGameOver             EventType = "gameOver"
)

// PlayerAssignedPayload tells a joiner which seat it was given
type PlayerAssignedPayload struct {
	RoomID RoomID `json:"room_id"`
	Color  Color  `json:"color"`
}

// RoomFullPayload rejects a join against a room with both seats held
type RoomFullPayload struct {
	RoomID RoomID `json:"room_id"`
}

// GameStartPayload carries the full state when both seats fill
type GameStartPayload struct {
	State StateUpdate `json:"state"`
}

// ReconnectSuccessPayload restores a returning player's view
type ReconnectSuccessPayload struct {
	Color Color       `json:"color"`
	State StateUpdate `json:"state"`
}

// OpponentPresencePayload reports the other seat connecting or dropping
type OpponentPresencePayload struct {
	Color Color `json:"color"`
}

// TurnChangedPayload announces the new turn owner
type TurnChangedPayload struct {
	Color Color `json:"color"`
}

// ActionRejectedPayload is sent only to the offending connection
type ActionRejectedPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// GameOverPayload announces the terminal result
type GameOverPayload struct {
	Winner Color     `json:"winner"`
	Reason WinReason `json:"reason"`
}
