package model

// WinReason explains how a finished game ended
type WinReason string

const (
	WinCheckmate         WinReason = "checkmate"
	WinResourceThreshold WinReason = "resource-threshold"
	WinResignation       WinReason = "resignation"
)

// GameState is the authoritative board and win bookkeeping for a room.
// BoardToken is an opaque position token owned and interpreted only by
// the rule engine; the session core never synthesizes or repairs it.
type GameState struct {
	BoardToken string        `json:"board_token"`
	Captures   map[Color]int `json:"captures"`
	GameOver   bool          `json:"game_over"`
	Winner     Color         `json:"winner,omitempty"`
	WinReason  WinReason     `json:"win_reason,omitempty"`
}

// NewGameState starts bookkeeping from the rule engine's initial token
func NewGameState(startingToken string) GameState {
	return GameState{
		BoardToken: startingToken,
		Captures:   map[Color]int{ColorWhite: 0, ColorBlack: 0},
	}
}

// Clone returns a deep copy safe to hand outside the owning room
func (g GameState) Clone() GameState {
	captures := make(map[Color]int, len(g.Captures))
	for c, n := range g.Captures {
		captures[c] = n
	}
	out := g
	out.Captures = captures
	return out
}

// PlayerState is the per-seat slice of a state broadcast
type PlayerState struct {
	Username  string `json:"username"`
	Balance   int    `json:"balance"`
	Plots     []Plot `json:"plots"`
	Connected bool   `json:"connected"`
}

// StateUpdate is the full current state sent to every active connection
// after each mutation. It is never a partial or placeholder payload.
type StateUpdate struct {
	GameState
	Players     map[Color]PlayerState `json:"players"`
	CurrentTurn Color                 `json:"current_turn,omitempty"`
	Phase       RoomPhase             `json:"phase"`
}
