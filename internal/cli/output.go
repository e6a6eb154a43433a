package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/mkallio/harvestmate/internal/model"
)

// Output handles formatting output based on the configured format
type Output struct {
	format string
}

// NewOutput creates a new Output formatter
func NewOutput(format string) *Output {
	return &Output{format: format}
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.format == "json" {
		o.printJSON(data)
	} else {
		o.printText(data)
	}
}

// PrintMessage outputs a simple message
func (o *Output) PrintMessage(msg string) {
	if o.format == "json" {
		data, _ := json.Marshal(map[string]string{"message": msg})
		fmt.Println(string(data))
	} else {
		fmt.Println(msg)
	}
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case HealthResult:
		fmt.Printf("Status: %s\n", v.Status)
	case RoomResult:
		fmt.Printf("Room:  %s\n", v.RoomID)
		fmt.Printf("Phase: %s\n", v.Phase)
	case RoomStateResult:
		fmt.Printf("Room:  %s\n", v.RoomID)
		o.printState(v.State)
	case model.StateUpdate:
		o.printState(v)
	default:
		o.printJSON(data)
	}
}

func (o *Output) printState(state model.StateUpdate) {
	fmt.Printf("Phase: %s\n", state.Phase)
	if state.CurrentTurn != "" {
		fmt.Printf("Turn:  %s\n", state.CurrentTurn)
	}
	fmt.Printf("Board: %s\n", state.BoardToken)
	for _, color := range model.Colors() {
		player, ok := state.Players[color]
		if !ok {
			fmt.Printf("%s: (open seat)\n", color)
			continue
		}
		presence := "connected"
		if !player.Connected {
			presence = "disconnected"
		}
		fmt.Printf("%s: %s (%s), balance %d, captures %d\n",
			color, player.Username, presence, player.Balance, state.Captures[color])
		fmt.Printf("  plots: %s\n", formatPlots(player.Plots))
	}
	if state.GameOver {
		fmt.Printf("Game over: %s wins (%s)\n", state.Winner, state.WinReason)
	}
}

func formatPlots(plots []model.Plot) string {
	parts := make([]string, len(plots))
	for i, plot := range plots {
		switch plot.State {
		case model.PlotLocked:
			parts[i] = fmt.Sprintf("[locked:%d]", plot.UnlockRequirement)
		case model.PlotEmpty:
			parts[i] = "[empty]"
		case model.PlotPlanted:
			parts[i] = fmt.Sprintf("[%s:%d]", plot.Crop, plot.TurnsRemaining)
		case model.PlotReady:
			parts[i] = fmt.Sprintf("[%s:ready]", plot.Crop)
		}
	}
	return strings.Join(parts, " ")
}

// HealthResult is the health check response
type HealthResult struct {
	Status string `json:"status"`
}

// RoomResult mirrors the room creation response
type RoomResult struct {
	RoomID model.RoomID    `json:"room_id"`
	Phase  model.RoomPhase `json:"phase"`
}

// RoomStateResult mirrors the room state response
type RoomStateResult struct {
	RoomID model.RoomID      `json:"room_id"`
	State  model.StateUpdate `json:"state"`
}
