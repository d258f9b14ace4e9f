// Package analysis contains the scene classification core: frame
// sampling, scene segmentation, the per-scene label state machine, and
// the pipeline that drives them over a whole video.
package analysis

import "context"

// DefaultFrameStride keeps one frame out of every 30 decoded frames,
// roughly one per second at common frame rates.
const DefaultFrameStride = 30

// FrameReader yields single decoded frames by absolute frame index.
type FrameReader interface {
	ReadFrame(ctx context.Context, frameIndex int) ([]byte, error)
}

// Sampler extracts the representative frames of a scene at a fixed
// stride.
type Sampler struct {
	Stride int
}

// SampleScene reads frames at stride intervals across the half-open
// range [startFrame, endFrame). A read failure ends the scene early:
// the frames gathered so far are returned and no error is reported,
// since a short read signals end-of-stream or a truncated container
// rather than a fault in the sampling itself.
func (s Sampler) SampleScene(ctx context.Context, r FrameReader, startFrame, endFrame int) [][]byte {
	stride := s.Stride
	if stride <= 0 {
		stride = DefaultFrameStride
	}

	var frames [][]byte
	for idx := startFrame; idx < endFrame; idx += stride {
		frame, err := r.ReadFrame(ctx, idx)
		if err != nil {
			break
		}
		frames = append(frames, frame)
	}
	return frames
}
