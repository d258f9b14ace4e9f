package main

import (
	"context"
	"errors"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/markusc/posescout/internal/database"
	"github.com/markusc/posescout/internal/scheduler"
	"github.com/markusc/posescout/internal/search"
)

func newDaemonCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "daemon",
		Short: "Run the periodic search and classification loop",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := openDB()
			if err != nil {
				return err
			}
			defer db.Close()

			processor, err := buildProcessor(db)
			if err != nil {
				return err
			}

			lock, err := acquireLock()
			if err != nil {
				return err
			}
			defer lock.Unlock()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			var dispatcher scheduler.Task
			if cfg.Search.APIKey != "" {
				client, err := search.NewYouTubeClient(ctx, cfg.Search.APIKey)
				if err != nil {
					return err
				}
				dispatcher = search.NewDispatcher(
					client,
					database.NewKeywordRepo(db),
					database.NewVideoRepo(db),
					cfg.Search.KeywordsPerRun,
					cfg.Search.MaxResults,
					logger,
				)
			} else {
				logger.Warn("search.api_key is not configured, running without keyword search")
			}

			interval := time.Duration(cfg.Daemon.ScanIntervalSeconds) * time.Second
			logger.Info("daemon starting", "interval", interval)

			err = scheduler.NewScheduler(interval, dispatcher, processor, logger).Run(ctx)
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		},
	}
}
