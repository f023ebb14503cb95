package main

import (
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/openprocure/procurement-pipeline/internal/match"
	"github.com/openprocure/procurement-pipeline/internal/queue"
)

var rederiveCmd = &cobra.Command{
	Use:   "rederive <clean-record-id>...",
	Short: "Recompute the group binding of clean records",
	Long:  "Re-runs matching for the given clean records, replacing their existing group bindings. Intended for matcher upgrades; affected groups are re-queued for mastering.",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		env, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		matcher := match.New(env.store, match.PublicationRule{})
		for _, id := range args {
			rec, err := env.store.GetClean(ctx, id)
			if err != nil {
				return err
			}
			if rec == nil {
				return eris.Errorf("rederive: clean record %s not found", id)
			}

			old, err := env.store.GetMatched(ctx, id)
			if err != nil {
				return err
			}

			matched, err := matcher.Rederive(ctx, rec)
			if err != nil {
				return err
			}

			// Rebuild both the new group and, if the binding moved, the
			// group that lost this member.
			if err := env.queue.Publish(ctx, queue.MasterTopic(matched.Kind), matched.GroupID); err != nil {
				return err
			}
			if old != nil && old.GroupID != matched.GroupID {
				if err := env.queue.Publish(ctx, queue.MasterTopic(old.Kind), old.GroupID); err != nil {
					return err
				}
			}

			zap.L().Info("binding rederived",
				zap.String("record_id", id),
				zap.String("group_id", matched.GroupID),
			)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(rederiveCmd)
}
