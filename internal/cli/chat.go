package cli

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"os/signal"
	"strings"

	"github.com/gorilla/websocket"
	"github.com/spf13/cobra"
)

// wsEvent mirrors the room broadcast payload
type wsEvent struct {
	Type     string `json:"type"`
	PlayerID string `json:"playerId,omitempty"`
	RoomID   string `json:"roomId,omitempty"`
	Name     string `json:"name,omitempty"`
	Message  string `json:"message,omitempty"`
}

func newChatCmd() *cobra.Command {
	var userID string
	var playerID string

	cmd := &cobra.Command{
		Use:   "chat <code>",
		Short: "Attach to a room's live event stream",
		Long: `chat opens a websocket to a game room and relays its events.

With --session and --user the connection binds the session first, and with
--player it claims that player, so the room sees you as a participant.
Lines typed on stdin are sent as chat messages.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runChat(args[0], cfg.SessionID, userID, playerID)
		},
	}

	cmd.Flags().StringVar(&userID, "user", "", "User id to bind the session to")
	cmd.Flags().StringVar(&playerID, "player", "", "Player id to claim after binding")
	return cmd
}

func runChat(code, sessionID, userID, playerID string) error {
	wsURL, err := websocketURL(cfg.ServerURL, code)
	if err != nil {
		return err
	}

	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		return fmt.Errorf("failed to connect: %w", err)
	}
	defer func() { _ = conn.Close() }()

	if sessionID != "" && userID != "" {
		bind := map[string]string{
			"type":      "sessionUser",
			"sessionId": sessionID,
			"userId":    userID,
		}
		if err := conn.WriteJSON(bind); err != nil {
			return fmt.Errorf("failed to bind session: %w", err)
		}
		if playerID != "" {
			claim := map[string]string{
				"type":     "sessionPlayer",
				"playerId": playerID,
			}
			if err := conn.WriteJSON(claim); err != nil {
				return fmt.Errorf("failed to bind player: %w", err)
			}
		}
	}

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			_, data, err := conn.ReadMessage()
			if err != nil {
				return
			}
			printEvent(data)
		}
	}()

	// Relay stdin lines as chat messages
	lines := make(chan string)
	go func() {
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
		close(lines)
	}()

	for {
		select {
		case <-done:
			return nil
		case <-interrupt:
			_ = conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			<-done
			return nil
		case line, ok := <-lines:
			if !ok {
				return nil
			}
			if strings.TrimSpace(line) == "" {
				continue
			}
			msg := map[string]string{"type": "clientMessage", "message": line}
			if err := conn.WriteJSON(msg); err != nil {
				return fmt.Errorf("failed to send message: %w", err)
			}
		}
	}
}

func printEvent(data []byte) {
	var event wsEvent
	if err := json.Unmarshal(data, &event); err != nil {
		fmt.Println(string(data))
		return
	}

	switch event.Type {
	case "chat":
		fmt.Printf("[chat] %s\n", event.Message)
	case "add_player":
		fmt.Printf("[room] player joined: %s (%s)\n", event.Name, event.PlayerID)
	case "name_player":
		fmt.Printf("[room] player renamed: %s (%s)\n", event.Name, event.PlayerID)
	case "player_disconnected":
		fmt.Printf("[room] player disconnected: %s\n", event.PlayerID)
	default:
		fmt.Println(string(data))
	}
}

// websocketURL converts the configured HTTP server URL to the room's
// websocket endpoint
func websocketURL(serverURL, code string) (string, error) {
	u, err := url.Parse(serverURL)
	if err != nil {
		return "", fmt.Errorf("invalid server URL: %w", err)
	}

	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	default:
		return "", fmt.Errorf("unsupported scheme %q", u.Scheme)
	}

	u.Path = "/ws/game/" + code
	return u.String(), nil
}
