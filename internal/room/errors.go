package room

import (
	"errors"

	"github.com/mkallio/harvestmate/internal/model"
)

var rejectionCodes = map[error]string{
	model.ErrRoomNotFound:          "ROOM_NOT_FOUND",
	model.ErrRoomClosed:            "ROOM_CLOSED",
	model.ErrRoomFull:              "ROOM_FULL",
	model.ErrRoomNotActive:         "ROOM_NOT_ACTIVE",
	model.ErrGameOver:              "GAME_OVER",
	model.ErrSessionNotFound:       "SESSION_NOT_FOUND",
	model.ErrInvalidPasscode:       "INVALID_PASSCODE",
	model.ErrNotYourTurn:           "NOT_YOUR_TURN",
	model.ErrMoveRequired:          "MOVE_REQUIRED",
	model.ErrMoveAlreadyMade:       "MOVE_ALREADY_MADE",
	model.ErrIllegalMove:           "ILLEGAL_MOVE",
	model.ErrInsufficientResources: "INSUFFICIENT_RESOURCES",
	model.ErrPlotUnavailable:       "PLOT_UNAVAILABLE",
	model.ErrPlotOutOfRange:        "PLOT_OUT_OF_RANGE",
	model.ErrUnknownCrop:           "UNKNOWN_CROP",
	model.ErrMalformedSnapshot:     "MALFORMED_INPUT",
}

// Rejection maps a room error onto the wire-facing rejection payload
func Rejection(err error) model.ActionRejectedPayload {
	for sentinel, code := range rejectionCodes {
		if errors.Is(err, sentinel) {
			return model.ActionRejectedPayload{Code: code, Message: sentinel.Error()}
		}
	}
	return model.ActionRejectedPayload{Code: "INTERNAL_ERROR", Message: "internal error"}
}
