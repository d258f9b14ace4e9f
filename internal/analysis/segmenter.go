package analysis

import "github.com/markusc/posescout/internal/video"

// Segment is one scene selected for classification, carrying both the
// frame range used for sampling and the timestamps that get persisted.
type Segment struct {
	StartFrame int
	EndFrame   int
	Start      float64
	End        float64
}

// SegmentScenes converts frame-indexed cuts into second-indexed
// segments and drops every scene shorter than minSeconds. Order is
// preserved; gaps left by dropped scenes are not re-merged, since
// segments carry absolute timestamps.
func SegmentScenes(cuts []video.Cut, fps float64, minSeconds float64) []Segment {
	if fps <= 0 {
		return nil
	}

	var segments []Segment
	for _, cut := range cuts {
		if cut.EndFrame <= cut.StartFrame {
			continue
		}
		start := float64(cut.StartFrame) / fps
		end := float64(cut.EndFrame) / fps
		if end-start < minSeconds {
			continue
		}
		segments = append(segments, Segment{
			StartFrame: cut.StartFrame,
			EndFrame:   cut.EndFrame,
			Start:      start,
			End:        end,
		})
	}
	return segments
}
