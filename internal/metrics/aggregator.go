// Package metrics computes the per-keyword quality metric from
// persisted scene predictions.
package metrics

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/markusc/posescout/internal/database"
	"github.com/markusc/posescout/internal/models"
)

// ErrUnusedKeyword marks a keyword that has never been dispatched;
// its metric is left untouched rather than zeroed.
var ErrUnusedKeyword = errors.New("keyword has not been used yet")

// labelWeights grades how usable a scene with a given label is.
// Unlisted labels (nh, si, or anything unrecognized) weigh zero.
var labelWeights = map[models.Label]float64{
	models.LabelSingleHigh:   1.0,
	models.LabelSingleMedium: 0.7,
	models.LabelSingleLow:    0.3,
	models.LabelMultiple:     0.7,
}

// Aggregator recomputes keyword quality metrics from scratch on every
// run; nothing is accumulated between runs.
type Aggregator struct {
	keywords *database.KeywordRepo
	scenes   *database.SceneRepo

	// useContainerDuration switches a video's length from the last
	// scene end time to the probed container duration when one was
	// recorded. The end-time proxy undercounts whenever a trailing
	// short scene was dropped by the duration filter.
	useContainerDuration bool

	logger *slog.Logger
}

func NewAggregator(keywords *database.KeywordRepo, scenes *database.SceneRepo, useContainerDuration bool, logger *slog.Logger) *Aggregator {
	return &Aggregator{
		keywords:             keywords,
		scenes:               scenes,
		useContainerDuration: useContainerDuration,
		logger:               logger,
	}
}

// ScoreAll recomputes the metric for every keyword that has been used
// at least once. A keyword that fails to score is logged and skipped;
// the run continues.
func (a *Aggregator) ScoreAll(ctx context.Context) error {
	keywords, err := a.keywords.List(ctx)
	if err != nil {
		return fmt.Errorf("listing keywords: %w", err)
	}

	for _, kw := range keywords {
		if kw.UseCounter == 0 {
			continue
		}
		metric, err := a.ScoreKeyword(ctx, kw.Text)
		if err != nil {
			a.logger.Warn("skipping keyword", "keyword", kw.Text, "error", err)
			continue
		}
		a.logger.Info("scored keyword", "keyword", kw.Text, "quality_metric", metric)
	}
	return nil
}

// ScoreKeyword computes and persists the quality metric for one
// keyword: the duration-weighted share of usable footage across all of
// the keyword's processed videos. Each video contributes its scene
// durations weighted by label, against a video length taken from its
// latest scene end time (scenes are written in order, so the last one
// ends near the true end of the video).
func (a *Aggregator) ScoreKeyword(ctx context.Context, text string) (float64, error) {
	kw, err := a.keywords.GetByText(ctx, text)
	if err != nil {
		return 0, err
	}
	if kw.UseCounter == 0 {
		return 0, ErrUnusedKeyword
	}

	scenes, err := a.scenes.ListByKeyword(ctx, kw.Text)
	if err != nil {
		return 0, fmt.Errorf("listing scenes for %q: %w", kw.Text, err)
	}

	metric := computeMetric(scenes, a.useContainerDuration)

	if err := a.keywords.SetQualityMetric(ctx, kw.Text, metric); err != nil {
		return 0, err
	}
	return metric, nil
}

func computeMetric(scenes []database.LabeledScene, useContainerDuration bool) float64 {
	videoLength := make(map[string]float64)
	usable := 0.0

	for _, sc := range scenes {
		if useContainerDuration && sc.VideoDuration > 0 {
			videoLength[sc.VideoID] = sc.VideoDuration
		} else if sc.EndTime > videoLength[sc.VideoID] {
			videoLength[sc.VideoID] = sc.EndTime
		}
		usable += (sc.EndTime - sc.StartTime) * labelWeights[sc.Label]
	}

	total := 0.0
	for _, length := range videoLength {
		total += length
	}
	if total <= 0 {
		return 0
	}
	return usable / total
}
