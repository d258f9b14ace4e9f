package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/markusc/posescout/internal/analysis"
	"github.com/markusc/posescout/internal/config"
	"github.com/markusc/posescout/internal/database"
	"github.com/markusc/posescout/internal/logging"
	"github.com/markusc/posescout/internal/metrics"
	"github.com/markusc/posescout/internal/pose"
	"github.com/markusc/posescout/internal/scheduler"
	"github.com/markusc/posescout/internal/storage"
	"github.com/markusc/posescout/internal/video"
)

var (
	configPath string
	cfg        *config.Config
	logger     *slog.Logger
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "posescout",
		Short: "Keyword-driven video discovery and human pose scene classification",
		Long: `posescout searches video platforms for seed keywords, downloads the
results, splits each video into scenes, and classifies every scene by
how visibly a single person appears in it. Scene labels feed a quality
metric per keyword so that productive keywords float to the top.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			cfg, err = config.Load(configPath)
			if err != nil {
				return err
			}
			logger = logging.New(cfg.Log.Level)
			return nil
		},
	}

	root.PersistentFlags().StringVarP(&configPath, "config", "c", "posescout.toml", "path to config file")

	root.AddCommand(newServeCmd())
	root.AddCommand(newMigrateCmd())
	root.AddCommand(newSearchCmd())
	root.AddCommand(newProcessCmd())
	root.AddCommand(newDaemonCmd())
	root.AddCommand(newScoreCmd())

	return root
}

func openDB() (*database.DB, error) {
	db, err := database.NewDB(database.Config{
		Type:       cfg.Database.Type,
		Host:       cfg.Database.Host,
		Port:       cfg.Database.Port,
		User:       cfg.Database.User,
		Password:   cfg.Database.Password,
		Name:       cfg.Database.Name,
		SQLitePath: cfg.Database.SQLitePath,
	})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return db, nil
}

func buildAggregator(db *database.DB) *metrics.Aggregator {
	return metrics.NewAggregator(
		database.NewKeywordRepo(db),
		database.NewSceneRepo(db),
		cfg.Metrics.UseContainerDuration,
		logger,
	)
}

// buildProcessor assembles the download-classify-persist chain. It
// fails fast when ffmpeg, ffprobe, scenedetect, or yt-dlp are missing
// from PATH so the daemon does not limp along half-configured.
func buildProcessor(db *database.DB) (*scheduler.Processor, error) {
	store, err := storage.NewMediaStore(cfg.Media.Dir)
	if err != nil {
		return nil, err
	}
	downloader, err := video.NewDownloader(store.Dir())
	if err != nil {
		return nil, err
	}
	prober, err := video.NewProber()
	if err != nil {
		return nil, err
	}
	detector, err := video.NewContentDetector(cfg.Pipeline.SceneThreshold)
	if err != nil {
		return nil, err
	}
	extractor, err := video.NewFrameExtractor(cfg.Pipeline.FrameSize)
	if err != nil {
		return nil, err
	}

	pipeline := analysis.NewPipeline(
		prober,
		detector,
		extractor,
		pose.NewClient(cfg.Pipeline.PoseServiceURL),
		analysis.Config{
			MinSceneSeconds: cfg.Pipeline.MinSceneSeconds,
			FrameStride:     cfg.Pipeline.FrameStride,
		},
		logger,
	)

	return scheduler.NewProcessor(
		database.NewVideoRepo(db),
		database.NewSceneRepo(db),
		downloader,
		pipeline,
		store,
		0, // default batch size
		logger,
	), nil
}
