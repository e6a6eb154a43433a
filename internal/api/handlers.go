package api

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mkallio/harvestmate/internal/model"
	"github.com/mkallio/harvestmate/internal/room"
)

// RoomHandler exposes room lifecycle over REST. Gameplay itself runs
// over the websocket.
type RoomHandler struct {
	registry *room.Registry
}

func NewRoomHandler(registry *room.Registry) *RoomHandler {
	return &RoomHandler{registry: registry}
}

// CreateRoomRequest is the body for POST /rooms
type CreateRoomRequest struct {
	Passcode string `json:"passcode,omitempty"`
}

// RoomResponse describes a room without exposing player internals
type RoomResponse struct {
	RoomID model.RoomID    `json:"room_id"`
	Phase  model.RoomPhase `json:"phase"`
}

// RoomStateResponse is the full spectator view of a room
type RoomStateResponse struct {
	RoomID model.RoomID      `json:"room_id"`
	State  model.StateUpdate `json:"state"`
}

// Create makes a new room with a generated code
func (h *RoomHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateRoomRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			WriteError(w, NewInvalidRequestError("invalid JSON body"))
			return
		}
	}

	created, err := h.registry.GetOrCreate("", req.Passcode)
	if err != nil {
		WriteError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, RoomResponse{
		RoomID: created.ID(),
		Phase:  created.Phase(),
	})
}

// Get returns the current state of a room
func (h *RoomHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := model.RoomID(mux.Vars(r)["room_id"])

	found, err := h.registry.Get(id)
	if err != nil {
		WriteError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, RoomStateResponse{
		RoomID: found.ID(),
		State:  found.View(),
	})
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}
