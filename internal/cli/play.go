package cli

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"

	"github.com/mkallio/harvestmate/internal/model"
	"github.com/mkallio/harvestmate/internal/transport"
)

func newPlayCmd() *cobra.Command {
	var (
		username string
		passcode string
		claim    string
	)

	cmd := &cobra.Command{
		Use:   "play <room-id>",
		Short: "Play a game interactively over the websocket",
		Long: `Connects to a room and relays commands typed on stdin.

Commands:
  move <uci-or-san>     make a chess move (e.g. "move e2e4", "move Nf3")
  plant <plot> <crop>   plant a crop on one of your plots
  end                   end your turn
  resign                concede the game
  quit                  close the connection`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if username == "" {
				return fmt.Errorf("--username is required")
			}
			return runPlay(cmd.Context(), args[0], username, passcode, claim)
		},
	}

	cmd.Flags().StringVarP(&username, "username", "u", "", "Display name to join with")
	cmd.Flags().StringVar(&passcode, "passcode", "", "Room passcode, if protected")
	cmd.Flags().StringVar(&claim, "reconnect-as", "", "Claim a color after a disconnect (white or black)")

	return cmd
}

func runPlay(ctx context.Context, roomID, username, passcode, claim string) error {
	wsURL := strings.Replace(client.BaseURL(), "http", "ws", 1) + "/ws"

	conn, _, err := websocket.Dial(ctx, wsURL, nil)
	if err != nil {
		return fmt.Errorf("failed to connect: %w", err)
	}
	defer conn.Close(websocket.StatusNormalClosure, "")

	// nhooyr limits reads to 32KiB by default; full state updates with
	// plot arrays fit comfortably, but don't make it a cliff
	conn.SetReadLimit(1 << 20)

	joinPayload, err := json.Marshal(transport.JoinPayload{
		RoomID:       model.RoomID(roomID),
		Username:     username,
		Passcode:     passcode,
		ClaimedColor: model.Color(claim),
	})
	if err != nil {
		return err
	}
	if err := wsjson.Write(ctx, conn, transport.Envelope{
		Kind:    transport.KindJoin,
		Payload: joinPayload,
	}); err != nil {
		return fmt.Errorf("failed to join: %w", err)
	}

	out := NewOutput(cfg.Output)

	readDone := make(chan struct{})
	go func() {
		defer close(readDone)
		readEvents(ctx, conn, out)
	}()

	scanner := bufio.NewScanner(os.Stdin)
	for {
		select {
		case <-readDone:
			return nil
		default:
		}

		if !scanner.Scan() {
			return scanner.Err()
		}

		env, quit, err := parseCommand(scanner.Text())
		if err != nil {
			out.PrintMessage(err.Error())
			continue
		}
		if quit {
			return nil
		}
		if env == nil {
			continue
		}

		if err := wsjson.Write(ctx, conn, env); err != nil {
			return fmt.Errorf("connection lost: %w", err)
		}
	}
}

// parseCommand turns one stdin line into an outbound envelope
func parseCommand(line string) (*transport.Envelope, bool, error) {
	fields := strings.Fields(strings.TrimSpace(line))
	if len(fields) == 0 {
		return nil, false, nil
	}

	switch fields[0] {
	case "move":
		if len(fields) != 2 {
			return nil, false, fmt.Errorf("usage: move <uci-or-san>")
		}
		payload, _ := json.Marshal(transport.MovePayload{Move: fields[1]})
		return &transport.Envelope{Kind: transport.KindMove, Payload: payload}, false, nil
	case "plant":
		if len(fields) != 3 {
			return nil, false, fmt.Errorf("usage: plant <plot> <crop>")
		}
		plot, err := strconv.Atoi(fields[1])
		if err != nil {
			return nil, false, fmt.Errorf("plot must be a number")
		}
		payload, _ := json.Marshal(transport.FarmPayload{
			PlotIndex: plot,
			Crop:      model.CropType(fields[2]),
		})
		return &transport.Envelope{Kind: transport.KindFarm, Payload: payload}, false, nil
	case "end":
		return &transport.Envelope{Kind: transport.KindEndTurn}, false, nil
	case "resign":
		return &transport.Envelope{Kind: transport.KindResign}, false, nil
	case "quit", "exit":
		return nil, true, nil
	default:
		return nil, false, fmt.Errorf("unknown command: %s", fields[0])
	}
}

// inboundEvent defers payload decoding until the event type is known
type inboundEvent struct {
	Event   model.EventType `json:"event"`
	Payload json.RawMessage `json:"payload"`
}

func readEvents(ctx context.Context, conn *websocket.Conn, out *Output) {
	for {
		var ev inboundEvent
		if err := wsjson.Read(ctx, conn, &ev); err != nil {
			out.PrintMessage("connection closed")
			return
		}
		printEvent(ev, out)
	}
}

func printEvent(ev inboundEvent, out *Output) {
	switch ev.Event {
	case model.EventPlayerAssigned:
		var p model.PlayerAssignedPayload
		if json.Unmarshal(ev.Payload, &p) == nil {
			out.PrintMessage(fmt.Sprintf("joined room %s as %s", p.RoomID, p.Color))
		}
	case model.EventReconnectSuccess:
		var p model.ReconnectSuccessPayload
		if json.Unmarshal(ev.Payload, &p) == nil {
			out.PrintMessage(fmt.Sprintf("reconnected as %s", p.Color))
			out.Print(p.State)
		}
	case model.EventGameStart:
		var p model.GameStartPayload
		if json.Unmarshal(ev.Payload, &p) == nil {
			out.PrintMessage("game started")
			out.Print(p.State)
		}
	case model.EventStateUpdate:
		var state model.StateUpdate
		if json.Unmarshal(ev.Payload, &state) == nil {
			out.Print(state)
		}
	case model.EventTurnChanged:
		var p model.TurnChangedPayload
		if json.Unmarshal(ev.Payload, &p) == nil {
			out.PrintMessage(fmt.Sprintf("turn: %s", p.Color))
		}
	case model.EventOpponentDisconnected:
		var p model.OpponentPresencePayload
		if json.Unmarshal(ev.Payload, &p) == nil {
			out.PrintMessage(fmt.Sprintf("%s disconnected", p.Color))
		}
	case model.EventOpponentReconnected:
		var p model.OpponentPresencePayload
		if json.Unmarshal(ev.Payload, &p) == nil {
			out.PrintMessage(fmt.Sprintf("%s reconnected", p.Color))
		}
	case model.EventActionRejected:
		var p model.ActionRejectedPayload
		if json.Unmarshal(ev.Payload, &p) == nil {
			out.PrintMessage(fmt.Sprintf("rejected: %s (%s)", p.Message, p.Code))
		}
	case model.EventRoomFull:
		out.PrintMessage("room is full")
	case model.EventGameOver:
		var p model.GameOverPayload
		if json.Unmarshal(ev.Payload, &p) == nil {
			out.PrintMessage(fmt.Sprintf("game over: %s wins (%s)", p.Winner, p.Reason))
		}
	default:
		out.PrintMessage(fmt.Sprintf("event: %s", ev.Event))
	}
}
