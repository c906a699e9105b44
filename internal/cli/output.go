package cli

import (
	"encoding/json"
	"fmt"
	"os"
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

// PrintError outputs an error
func (o *Output) PrintError(err error) {
	if o.format == "json" {
		errData := map[string]any{
			"error": map[string]string{
				"message": err.Error(),
			},
		}
		data, _ := json.Marshal(errData)
		fmt.Fprintln(os.Stderr, string(data))
	} else {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
	}
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case User:
		o.printUser(v)
	case Player:
		o.printPlayer(v)
	case Game:
		o.printGame(v)
	case GameInfo:
		o.printGameInfo(v)
	case ClaimResult:
		o.printPlayer(v.Player)
	case HealthResult:
		o.printHealthResult(v)
	default:
		// Fallback to JSON for unknown types
		o.printJSON(data)
	}
}

// User response type (matches API)
type User struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName"`
}

// Player response type
type Player struct {
	ID     string `json:"id"`
	GameID string `json:"gameId"`
	UserID string `json:"userId"`
	Name   string `json:"name"`
}

// Game response type
type Game struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

// GameInfo response type
type GameInfo struct {
	Game    Game     `json:"game"`
	Players []Player `json:"players"`
}

// ClaimResult response type
type ClaimResult struct {
	Player Player `json:"player"`
}

// HealthResult response type
type HealthResult struct {
	Status string `json:"status"`
}

func (o *Output) printUser(u User) {
	fmt.Printf("User: %s (%s)\n", u.DisplayName, u.ID)
}

func (o *Output) printPlayer(p Player) {
	fmt.Printf("Player: %s (%s)\n", p.Name, p.ID)
	fmt.Printf("Game: %s\n", p.GameID)
	fmt.Printf("User: %s\n", p.UserID)
}

func (o *Output) printGame(g Game) {
	fmt.Printf("Game: %s\n", g.ID)
	fmt.Printf("Status: %s\n", g.Status)
}

func (o *Output) printGameInfo(info GameInfo) {
	o.printGame(info.Game)
	fmt.Printf("Players (%d):\n", len(info.Players))
	for _, p := range info.Players {
		fmt.Printf("  - %s (%s) owned by %s\n", p.Name, p.ID, p.UserID)
	}
}

func (o *Output) printHealthResult(h HealthResult) {
	fmt.Printf("Status: %s\n", h.Status)
}
