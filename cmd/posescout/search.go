package main

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/markusc/posescout/internal/database"
	"github.com/markusc/posescout/internal/search"
)

func newSearchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "search",
		Short: "Run one keyword search pass and record discovered video URLs",
		RunE: func(cmd *cobra.Command, args []string) error {
			if cfg.Search.APIKey == "" {
				return errors.New("search.api_key is not configured")
			}

			db, err := openDB()
			if err != nil {
				return err
			}
			defer db.Close()

			ctx := cmd.Context()
			client, err := search.NewYouTubeClient(ctx, cfg.Search.APIKey)
			if err != nil {
				return err
			}

			dispatcher := search.NewDispatcher(
				client,
				database.NewKeywordRepo(db),
				database.NewVideoRepo(db),
				cfg.Search.KeywordsPerRun,
				cfg.Search.MaxResults,
				logger,
			)
			return dispatcher.Run(ctx)
		},
	}
}
