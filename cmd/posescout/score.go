package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/markusc/posescout/internal/database"
	"github.com/markusc/posescout/internal/metrics"
)

func newScoreCmd() *cobra.Command {
	var keyword string

	cmd := &cobra.Command{
		Use:   "score",
		Short: "Recompute keyword quality metrics and print the ranking",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := openDB()
			if err != nil {
				return err
			}
			defer db.Close()

			ctx := cmd.Context()
			aggregator := buildAggregator(db)

			if keyword != "" {
				metric, err := aggregator.ScoreKeyword(ctx, keyword)
				switch {
				case errors.Is(err, database.ErrNotFound):
					return fmt.Errorf("keyword %q is not registered", keyword)
				case errors.Is(err, metrics.ErrUnusedKeyword):
					return fmt.Errorf("keyword %q has not been searched yet", keyword)
				case err != nil:
					return err
				}
				fmt.Printf("%s: %.4f\n", keyword, metric)
				return nil
			}

			if err := aggregator.ScoreAll(ctx); err != nil {
				return err
			}

			keywords, err := database.NewKeywordRepo(db).List(ctx)
			if err != nil {
				return err
			}

			t := table.NewWriter()
			t.SetOutputMirror(os.Stdout)
			t.SetStyle(table.StyleLight)
			t.AppendHeader(table.Row{"Keyword", "Uses", "Last Processed", "Quality"})
			for _, kw := range keywords {
				last := "never"
				if !kw.LastProcessed.IsZero() {
					last = kw.LastProcessed.Format("2006-01-02 15:04")
				}
				t.AppendRow(table.Row{kw.Text, kw.UseCounter, last, fmt.Sprintf("%.4f", kw.QualityMetric)})
			}
			t.Render()
			return nil
		},
	}

	cmd.Flags().StringVarP(&keyword, "keyword", "k", "", "score a single keyword instead of all")
	return cmd
}
