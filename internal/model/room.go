package model

// RoomID is a human-readable identifier for joining rooms
type RoomID string

// RoomPhase represents the lifecycle state of a room
type RoomPhase string

const (
	PhaseWaitingForPlayers RoomPhase = "waiting_for_players" // Fewer than two active sessions
	PhaseActive            RoomPhase = "active"              // Both seats held, turns running
	PhaseGameOver          RoomPhase = "game_over"           // Terminal; no transition back
)
