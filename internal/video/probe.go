// Package video wraps the external media tools this pipeline shells out
// to: ffprobe/ffmpeg for probing and frame extraction, the scenedetect
// CLI for content cuts, and yt-dlp for acquisition.
package video

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

// Info describes a video container as reported by ffprobe.
type Info struct {
	Duration float64
	FPS      float64
	Width    int
	Height   int
}

// FrameArea returns the frame size in pixels.
func (i Info) FrameArea() float64 {
	return float64(i.Width) * float64(i.Height)
}

// Prober reads container metadata with ffprobe.
type Prober struct {
	ffprobePath string
}

func NewProber() (*Prober, error) {
	path, err := exec.LookPath("ffprobe")
	if err != nil {
		return nil, fmt.Errorf("ffprobe not found in PATH: %w", err)
	}
	return &Prober{ffprobePath: path}, nil
}

type probeOutput struct {
	Streams []struct {
		Width      int    `json:"width"`
		Height     int    `json:"height"`
		RFrameRate string `json:"r_frame_rate"`
	} `json:"streams"`
	Format struct {
		Duration string `json:"duration"`
	} `json:"format"`
}

func (p *Prober) Probe(ctx context.Context, videoPath string) (*Info, error) {
	cmd := exec.CommandContext(ctx, p.ffprobePath,
		"-v", "error",
		"-select_streams", "v:0",
		"-show_entries", "stream=width,height,r_frame_rate",
		"-show_entries", "format=duration",
		"-of", "json",
		videoPath)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("ffprobe %s: %w: %s", videoPath, err, strings.TrimSpace(stderr.String()))
	}

	var out probeOutput
	if err := json.Unmarshal(stdout.Bytes(), &out); err != nil {
		return nil, fmt.Errorf("parsing ffprobe output: %w", err)
	}
	if len(out.Streams) == 0 {
		return nil, fmt.Errorf("no video stream in %s", videoPath)
	}

	duration, err := strconv.ParseFloat(out.Format.Duration, 64)
	if err != nil || duration <= 0 {
		return nil, fmt.Errorf("invalid duration %q for %s", out.Format.Duration, videoPath)
	}

	fps, err := parseFrameRate(out.Streams[0].RFrameRate)
	if err != nil {
		return nil, fmt.Errorf("invalid frame rate for %s: %w", videoPath, err)
	}

	return &Info{
		Duration: duration,
		FPS:      fps,
		Width:    out.Streams[0].Width,
		Height:   out.Streams[0].Height,
	}, nil
}

// parseFrameRate converts ffprobe's rational rate ("30000/1001") to a
// float.
func parseFrameRate(rate string) (float64, error) {
	num, den, found := strings.Cut(rate, "/")
	if !found {
		return strconv.ParseFloat(rate, 64)
	}

	n, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return 0, err
	}
	d, err := strconv.ParseFloat(den, 64)
	if err != nil {
		return 0, err
	}
	if d == 0 || n <= 0 {
		return 0, fmt.Errorf("degenerate frame rate %q", rate)
	}
	return n / d, nil
}
