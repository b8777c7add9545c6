package cli

import (
	"github.com/spf13/cobra"
)

func newRoomsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rooms",
		Short: "List live game rooms",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result RoomsResult

			if err := client.Get("/api/debug/rooms", &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}
