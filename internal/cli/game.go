package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newGameCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "game",
		Short: "Game commands",
	}

	cmd.AddCommand(newGameNewCmd())
	cmd.AddCommand(newGameInfoCmd())
	cmd.AddCommand(newGameAddCmd())
	cmd.AddCommand(newGameClaimCmd())
	cmd.AddCommand(newGameNameCmd())

	return cmd
}

func newGameNewCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "new",
		Short: "Create a new game",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var result Game

			if err := client.Post("/api/game/new", nil, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}

func newGameInfoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info <code>",
		Short: "Show a game and its players",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result GameInfo

			if err := client.Get(fmt.Sprintf("/api/game/%s/info", args[0]), &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}

func newGameAddCmd() *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:   "add <code> <user-id>",
		Short: "Add a player for a user to a game",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var body any
			if name != "" {
				body = map[string]string{"name": name}
			}

			var result Player
			path := fmt.Sprintf("/api/game/%s/add?userId=%s", args[0], args[1])
			if err := client.Post(path, body, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Player name (defaults to the user's display name)")
	return cmd
}

func newGameClaimCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "claim <code>",
		Short: "Resolve which player the session controls",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if cfg.SessionID == "" {
				return fmt.Errorf("a session id is required (--session or GAMELOBBY_SESSION)")
			}

			req := map[string]string{"sessionId": cfg.SessionID}
			var result ClaimResult

			if err := client.Post(fmt.Sprintf("/api/game/%s/claim", args[0]), req, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}

func newGameNameCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "name <code> <player-id> <name>",
		Short: "Rename a player",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := map[string]string{"playerId": args[1], "name": args[2]}
			var result Player

			if err := client.Post(fmt.Sprintf("/api/game/%s/name", args[0]), req, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}
