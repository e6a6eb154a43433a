package model

import "errors"

// Common errors used across the application
var (
	// Room errors
	ErrRoomNotFound  = errors.New("room not found")
	ErrRoomFull      = errors.New("room is full")
	ErrRoomNotActive = errors.New("room is not active")
	ErrRoomClosed    = errors.New("room is closed")
	ErrGameOver      = errors.New("game is over")

	// Session errors
	ErrSessionNotFound = errors.New("connection is not bound to a session")
	ErrInvalidPasscode = errors.New("invalid room passcode")

	// Turn errors
	ErrNotYourTurn     = errors.New("not this player's turn")
	ErrMoveRequired    = errors.New("a move must be made before ending the turn")
	ErrMoveAlreadyMade = errors.New("a move was already made this turn")
	ErrIllegalMove     = errors.New("illegal move")

	// Farm errors
	ErrInsufficientResources = errors.New("insufficient resources")
	ErrPlotUnavailable       = errors.New("plot is not available for planting")
	ErrPlotOutOfRange        = errors.New("plot index out of range")
	ErrUnknownCrop           = errors.New("unknown crop type")

	// Reconnection errors
	ErrRecordNotFound = errors.New("no disconnected record for color")

	// Input errors
	ErrMalformedSnapshot = errors.New("malformed client snapshot")
)
