package cli

import (
	"github.com/spf13/cobra"
)

func newQueueCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "queue",
		Short: "List players waiting in the matchmaking queue",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result QueueResult

			if err := client.Get("/api/debug/queue", &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}
