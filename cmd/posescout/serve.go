package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/markusc/posescout/internal/api"
	"github.com/markusc/posescout/internal/database"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := openDB()
			if err != nil {
				return err
			}
			defer db.Close()

			app := &api.App{
				Keywords:   database.NewKeywordRepo(db),
				Videos:     database.NewVideoRepo(db),
				Scenes:     database.NewSceneRepo(db),
				Aggregator: buildAggregator(db),
				APIToken:   cfg.API.Token,
				Logger:     logger,
			}

			srv := &http.Server{
				Addr:         cfg.API.Bind,
				Handler:      api.NewRouter(app),
				ReadTimeout:  15 * time.Second,
				WriteTimeout: 60 * time.Second,
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			errCh := make(chan error, 1)
			go func() {
				logger.Info("http server listening", "addr", cfg.API.Bind)
				errCh <- srv.ListenAndServe()
			}()

			select {
			case err := <-errCh:
				return err
			case <-ctx.Done():
			}

			logger.Info("shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		},
	}
}
