package main

import (
	"os/signal"
	"syscall"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/openprocure/procurement-pipeline/internal/master"
	"github.com/openprocure/procurement-pipeline/internal/match"
	"github.com/openprocure/procurement-pipeline/internal/model"
	"github.com/openprocure/procurement-pipeline/internal/source"
	"github.com/openprocure/procurement-pipeline/internal/worker"
)

var workStage string

var workCmd = &cobra.Command{
	Use:   "work",
	Short: "Run pipeline stage workers until interrupted",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		handlers, err := buildHandlers(env, workStage)
		if err != nil {
			return err
		}

		pool := worker.NewPool(env.queue, worker.PoolConfig{
			Workers:       cfg.Worker.Workers,
			PollInterval:  time.Duration(cfg.Worker.PollIntervalSecs) * time.Second,
			MaxAttempts:   cfg.Worker.MaxAttempts,
			RatePerSecond: cfg.Worker.RatePerSecond,
		}, handlers...)

		zap.L().Info("workers starting",
			zap.String("stage", workStage),
			zap.Int("handlers", len(handlers)),
		)
		return pool.Run(ctx)
	},
}

// buildHandlers wires the stage handlers for one or all stages.
func buildHandlers(env *env, stage string) ([]worker.Handler, error) {
	sources := source.Default()
	matcher := match.New(env.store, match.PublicationRule{})
	masterer := master.New(env.store, masterPriorities(sources), master.Hooks{})

	var handlers []worker.Handler
	switch stage {
	case "clean":
		handlers = append(handlers,
			worker.NewCleanTenderHandler(env.store, env.queue, sources),
			worker.NewCleanBodyHandler(env.store, env.queue, sources),
		)
	case "match":
		handlers = append(handlers,
			&worker.MatchHandler{Store: env.store, Queue: env.queue, Engine: matcher, Kind: model.KindTender},
			&worker.MatchHandler{Store: env.store, Queue: env.queue, Engine: matcher, Kind: model.KindBody},
		)
	case "master":
		handlers = append(handlers,
			&worker.MasterHandler{Engine: masterer, Kind: model.KindTender},
			&worker.MasterHandler{Engine: masterer, Kind: model.KindBody},
		)
	case "all":
		handlers = append(handlers,
			worker.NewCleanTenderHandler(env.store, env.queue, sources),
			worker.NewCleanBodyHandler(env.store, env.queue, sources),
			&worker.MatchHandler{Store: env.store, Queue: env.queue, Engine: matcher, Kind: model.KindTender},
			&worker.MatchHandler{Store: env.store, Queue: env.queue, Engine: matcher, Kind: model.KindBody},
			&worker.MasterHandler{Engine: masterer, Kind: model.KindTender},
			&worker.MasterHandler{Engine: masterer, Kind: model.KindBody},
		)
	default:
		return nil, eris.Errorf("work: unknown stage %q", stage)
	}
	return handlers, nil
}

// masterPriorities merges configured overrides over the profile defaults.
func masterPriorities(sources *source.Registry) map[string]int {
	priorities := sources.Priorities()
	for name, p := range cfg.Master.Priorities {
		priorities[name] = p
	}
	return priorities
}

func init() {
	workCmd.Flags().StringVar(&workStage, "stage", "all", "stage to run: clean, match, master, or all")
	rootCmd.AddCommand(workCmd)
}
