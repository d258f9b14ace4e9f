package analysis

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/jpeg"
	"log/slog"

	"github.com/markusc/posescout/internal/models"
	"github.com/markusc/posescout/internal/pose"
	"github.com/markusc/posescout/internal/video"
)

// Prober reads container metadata for a video file.
type Prober interface {
	Probe(ctx context.Context, videoPath string) (*video.Info, error)
}

// CutDetector finds the content cuts of a video.
type CutDetector interface {
	DetectCuts(ctx context.Context, videoPath string) ([]video.Cut, error)
}

// FrameExtractor decodes single frames by index.
type FrameExtractor interface {
	ExtractFrame(ctx context.Context, videoPath string, frameIndex int, fps float64) ([]byte, error)
}

// Config holds the tunable pipeline parameters.
type Config struct {
	MinSceneSeconds float64
	FrameStride     int
}

// Pipeline classifies every scene of a video: probe, detect cuts, drop
// short scenes, sample frames, infer poses, score visibility, classify.
type Pipeline struct {
	prober     Prober
	cuts       CutDetector
	frames     FrameExtractor
	inferencer pose.Inferencer
	cfg        Config
	logger     *slog.Logger
}

func NewPipeline(prober Prober, cuts CutDetector, frames FrameExtractor, inferencer pose.Inferencer, cfg Config, logger *slog.Logger) *Pipeline {
	return &Pipeline{
		prober:     prober,
		cuts:       cuts,
		frames:     frames,
		inferencer: inferencer,
		cfg:        cfg,
		logger:     logger,
	}
}

// VideoResult is the outcome of classifying one video.
type VideoResult struct {
	Duration float64
	Scenes   []models.SceneResult
}

// frameReader adapts the per-index frame extractor to the sampler.
type frameReader struct {
	frames FrameExtractor
	path   string
	fps    float64
}

func (r frameReader) ReadFrame(ctx context.Context, frameIndex int) ([]byte, error) {
	return r.frames.ExtractFrame(ctx, r.path, frameIndex, r.fps)
}

// ProcessVideo runs the full classification over one downloaded video
// and returns a record per kept scene. Probe and cut detection failures
// abort the video; anything that goes wrong inside a single frame only
// costs that frame.
func (p *Pipeline) ProcessVideo(ctx context.Context, videoID, videoPath string) (*VideoResult, error) {
	info, err := p.prober.Probe(ctx, videoPath)
	if err != nil {
		return nil, fmt.Errorf("probing %s: %w", videoPath, err)
	}

	cuts, err := p.cuts.DetectCuts(ctx, videoPath)
	if err != nil {
		return nil, fmt.Errorf("detecting cuts in %s: %w", videoPath, err)
	}

	segments := SegmentScenes(cuts, info.FPS, p.cfg.MinSceneSeconds)
	p.logger.Info("segmented video",
		"video", videoID, "cuts", len(cuts), "kept_scenes", len(segments), "fps", info.FPS)

	reader := frameReader{frames: p.frames, path: videoPath, fps: info.FPS}
	sampler := Sampler{Stride: p.cfg.FrameStride}

	results := make([]models.SceneResult, 0, len(segments))
	for _, seg := range segments {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		frames := sampler.SampleScene(ctx, reader, seg.StartFrame, seg.EndFrame)
		scores := p.scoreFrames(ctx, videoID, frames)
		label := ClassifyScene(scores)

		results = append(results, models.SceneResult{
			VideoID:   videoID,
			StartTime: seg.Start,
			EndTime:   seg.End,
			Label:     label,
		})
		p.logger.Debug("classified scene",
			"video", videoID, "start", seg.Start, "end", seg.End,
			"frames", len(frames), "label", string(label))
	}

	return &VideoResult{Duration: info.Duration, Scenes: results}, nil
}

// scoreFrames runs pose inference and visibility scoring per sampled
// frame. A frame whose inference or decode fails is skipped; the scene
// is classified from the frames that survive.
func (p *Pipeline) scoreFrames(ctx context.Context, videoID string, frames [][]byte) []pose.FrameScore {
	var scores []pose.FrameScore
	for i, frame := range frames {
		area, err := frameArea(frame)
		if err != nil {
			p.logger.Warn("skipping undecodable frame", "video", videoID, "frame", i, "error", err)
			continue
		}

		detections, err := p.inferencer.InferPose(ctx, frame)
		if err != nil {
			p.logger.Warn("pose inference failed", "video", videoID, "frame", i, "error", err)
			continue
		}

		scores = append(scores, pose.ScoreFrame(detections, area))
	}
	return scores
}

// frameArea reads the image header to get the pixel area of the frame
// actually submitted to the inferencer, so bbox ratios stay consistent
// after any downscaling.
func frameArea(frame []byte) (float64, error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(frame))
	if err != nil {
		return 0, fmt.Errorf("decoding frame header: %w", err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return 0, fmt.Errorf("degenerate frame %dx%d", cfg.Width, cfg.Height)
	}
	return float64(cfg.Width) * float64(cfg.Height), nil
}
