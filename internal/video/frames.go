package video

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/disintegration/imaging"
)

// FrameExtractor pulls single frames out of a container with ffmpeg,
// decoded straight from the pipe without touching the filesystem.
// Frames wider or taller than maxSize are downscaled before they are
// handed to the inference service.
type FrameExtractor struct {
	ffmpegPath string
	maxSize    int
}

func NewFrameExtractor(maxSize int) (*FrameExtractor, error) {
	path, err := exec.LookPath("ffmpeg")
	if err != nil {
		return nil, fmt.Errorf("ffmpeg not found in PATH: %w", err)
	}
	return &FrameExtractor{ffmpegPath: path, maxSize: maxSize}, nil
}

// ExtractFrame decodes the frame at the given index as a JPEG. The
// frame index is converted to a timestamp through the stream's frame
// rate. Failing to decode a frame (end of stream, truncated container)
// returns an error; callers treat that as the end of the scene.
func (fe *FrameExtractor) ExtractFrame(ctx context.Context, videoPath string, frameIndex int, fps float64) ([]byte, error) {
	if fps <= 0 {
		return nil, fmt.Errorf("invalid frame rate %f", fps)
	}
	timestamp := float64(frameIndex) / fps

	cmd := exec.CommandContext(ctx, fe.ffmpegPath,
		"-ss", fmt.Sprintf("%.4f", timestamp),
		"-i", videoPath,
		"-frames:v", "1",
		"-q:v", "2",
		"-f", "image2pipe",
		"-vcodec", "mjpeg",
		"pipe:1")

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("extracting frame %d at %.2fs: %w: %s",
			frameIndex, timestamp, err, tail(stderr.String()))
	}
	if stdout.Len() == 0 {
		return nil, fmt.Errorf("no frame decoded at index %d (%.2fs)", frameIndex, timestamp)
	}

	if fe.maxSize <= 0 {
		return stdout.Bytes(), nil
	}
	return fe.downscale(stdout.Bytes())
}

func (fe *FrameExtractor) downscale(frame []byte) ([]byte, error) {
	img, err := imaging.Decode(bytes.NewReader(frame))
	if err != nil {
		return nil, fmt.Errorf("decoding frame: %w", err)
	}

	bounds := img.Bounds()
	if bounds.Dx() <= fe.maxSize && bounds.Dy() <= fe.maxSize {
		return frame, nil
	}

	img = imaging.Fit(img, fe.maxSize, fe.maxSize, imaging.Lanczos)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(85)); err != nil {
		return nil, fmt.Errorf("encoding frame: %w", err)
	}
	return buf.Bytes(), nil
}

// tail keeps the last few lines of a stderr dump for error messages.
func tail(s string) string {
	s = strings.TrimSpace(s)
	lines := strings.Split(s, "\n")
	if len(lines) > 3 {
		lines = lines[len(lines)-3:]
	}
	return strings.Join(lines, " | ")
}
