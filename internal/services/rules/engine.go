package rules

import (
	"fmt"
	"strings"

	nchess "github.com/corentings/chess/v2"
)

// MoveResult is the rule engine's verdict on a single move attempt
type MoveResult struct {
	Legal     bool
	NewToken  string
	Captured  bool
	Checkmate bool
}

// Engine is the chess rule collaborator. Position tokens are opaque to
// the session core: it never computes legality or fabricates a token.
type Engine interface {
	// StartingPosition returns the token for a fresh game
	StartingPosition() string

	// TryMove applies a move descriptor to a position token. An illegal
	// move yields Legal=false and a nil error; a non-nil error means the
	// token itself could not be interpreted.
	TryMove(positionToken, move string) (MoveResult, error)
}

// ChessEngine implements Engine with FEN position tokens
type ChessEngine struct{}

// NewChessEngine creates the standard-rules chess engine
func NewChessEngine() *ChessEngine {
	return &ChessEngine{}
}

var _ Engine = (*ChessEngine)(nil)

// StartingPosition returns the standard initial FEN
func (e *ChessEngine) StartingPosition() string {
	return nchess.NewGame().FEN()
}

// TryMove decodes the move as UCI first, falling back to algebraic
// notation, and applies it to the given position
func (e *ChessEngine) TryMove(positionToken, move string) (MoveResult, error) {
	fen, err := nchess.FEN(positionToken)
	if err != nil {
		return MoveResult{}, fmt.Errorf("invalid position token: %w", err)
	}
	game := nchess.NewGame(fen)
	pos := game.Position()

	raw := strings.TrimSpace(move)
	if raw == "" {
		return MoveResult{}, nil
	}

	mv, decodeErr := nchess.UCINotation{}.Decode(pos, strings.ToLower(raw))
	if decodeErr != nil {
		mv, decodeErr = nchess.AlgebraicNotation{}.Decode(pos, raw)
	}
	if decodeErr != nil {
		return MoveResult{}, nil
	}
	if err := game.Move(mv, nil); err != nil {
		return MoveResult{}, nil
	}

	return MoveResult{
		Legal:     true,
		NewToken:  game.FEN(),
		Captured:  mv.HasTag(nchess.Capture) || mv.HasTag(nchess.EnPassant),
		Checkmate: game.Method() == nchess.Checkmate,
	}, nil
}
