// Package scheduler drives the batch work: the processing backlog and
// the periodic search/process loop.
package scheduler

import (
	"context"
	"log/slog"
	"path/filepath"

	"github.com/markusc/posescout/internal/analysis"
	"github.com/markusc/posescout/internal/database"
	"github.com/markusc/posescout/internal/storage"
)

// Downloader fetches a video URL and returns the local file path.
type Downloader interface {
	Download(ctx context.Context, url string) (string, error)
}

// VideoProcessor classifies one downloaded video.
type VideoProcessor interface {
	ProcessVideo(ctx context.Context, videoID, videoPath string) (*analysis.VideoResult, error)
}

// Processor works through unprocessed video records one at a time:
// download, classify, persist, clean up. Videos are strictly
// sequential; the decoded-frame cursor of one video is never shared.
type Processor struct {
	videos     *database.VideoRepo
	scenes     *database.SceneRepo
	downloader Downloader
	pipeline   VideoProcessor
	store      *storage.MediaStore
	batchSize  int
	logger     *slog.Logger
}

func NewProcessor(videos *database.VideoRepo, scenes *database.SceneRepo, downloader Downloader, pipeline VideoProcessor, store *storage.MediaStore, batchSize int, logger *slog.Logger) *Processor {
	if batchSize <= 0 {
		batchSize = 50
	}
	return &Processor{
		videos:     videos,
		scenes:     scenes,
		downloader: downloader,
		pipeline:   pipeline,
		store:      store,
		batchSize:  batchSize,
		logger:     logger,
	}
}

// ProcessBacklog handles up to one batch of unprocessed videos. A
// video that fails to download or classify is logged and left
// unprocessed for a later run; the batch continues.
func (p *Processor) ProcessBacklog(ctx context.Context) error {
	videos, err := p.videos.ListUnprocessed(ctx, p.batchSize)
	if err != nil {
		return err
	}
	if len(videos) == 0 {
		p.logger.Debug("no unprocessed videos")
		return nil
	}

	p.logger.Info("processing backlog", "videos", len(videos))

	for _, v := range videos {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := p.processOne(ctx, v.ID, v.URL); err != nil {
			p.logger.Warn("video failed, leaving unprocessed", "url", v.URL, "error", err)
		}
	}
	return nil
}

func (p *Processor) processOne(ctx context.Context, videoID, url string) error {
	path, err := p.downloader.Download(ctx, url)
	if err != nil {
		return err
	}
	defer func() {
		if err := p.store.Remove(filepath.Base(path)); err != nil {
			p.logger.Warn("failed to remove media file", "path", path, "error", err)
		}
	}()

	result, err := p.pipeline.ProcessVideo(ctx, videoID, path)
	if err != nil {
		return err
	}

	if err := p.scenes.SaveResults(ctx, result.Scenes); err != nil {
		return err
	}
	if err := p.videos.MarkProcessed(ctx, videoID, result.Duration); err != nil {
		return err
	}

	p.logger.Info("video processed", "url", url, "scenes", len(result.Scenes))
	return nil
}
