package main

import (
	"encoding/json"
	"os"

	"github.com/spf13/cobra"

	"github.com/openprocure/procurement-pipeline/internal/queue"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Print queue depths, dead letters, and unmatchable records",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		env, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		depths := map[string]int{}
		for _, topic := range queue.Topics() {
			n, err := env.queue.Depth(ctx, topic)
			if err != nil {
				return err
			}
			depths[topic] = n
		}

		letters, err := env.queue.ListDeadLetters(ctx, "", 20)
		if err != nil {
			return err
		}
		unmatchable, err := env.store.ListUnmatchable(ctx, 20)
		if err != nil {
			return err
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(map[string]any{
			"queues":       depths,
			"dead_letters": letters,
			"unmatchable":  unmatchable,
		})
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
