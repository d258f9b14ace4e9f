package analysis

import (
	"testing"

	"github.com/markusc/posescout/internal/models"
	"github.com/markusc/posescout/internal/pose"
)

// single wraps one tier into a one-person frame score.
func single(t pose.Tier) pose.FrameScore {
	return pose.FrameScore{VisiblePeople: 1, Tiers: []pose.Tier{t}}
}

func singles(tiers ...pose.Tier) []pose.FrameScore {
	frames := make([]pose.FrameScore, len(tiers))
	for i, t := range tiers {
		frames[i] = single(t)
	}
	return frames
}

func TestClassifyScene(t *testing.T) {
	tests := []struct {
		name   string
		frames []pose.FrameScore
		want   models.Label
	}{
		{
			name:   "no sampled frames",
			frames: nil,
			want:   models.LabelNoHuman,
		},
		{
			name:   "empty frames only",
			frames: []pose.FrameScore{{}, {}, {}},
			want:   models.LabelNoHuman,
		},
		{
			name: "any crowded frame wins",
			frames: []pose.FrameScore{
				single(pose.TierHigh),
				{VisiblePeople: 2, Tiers: []pose.Tier{pose.TierHigh, pose.TierLow}},
				single(pose.TierHigh),
			},
			want: models.LabelMultiple,
		},
		{
			name:   "three consecutive high",
			frames: singles(pose.TierLow, pose.TierHigh, pose.TierHigh, pose.TierHigh, pose.TierLow),
			want:   models.LabelSingleHigh,
		},
		{
			name:   "high run broken by a medium",
			frames: singles(pose.TierHigh, pose.TierHigh, pose.TierMedium, pose.TierHigh, pose.TierHigh),
			want:   models.LabelSingleMedium,
		},
		{
			name:   "medium and high mixed window",
			frames: singles(pose.TierLow, pose.TierMedium, pose.TierHigh, pose.TierMedium, pose.TierLow),
			want:   models.LabelSingleMedium,
		},
		{
			name:   "every window broken by a low",
			frames: singles(pose.TierHigh, pose.TierHigh, pose.TierLow, pose.TierMedium, pose.TierMedium, pose.TierLow),
			want:   models.LabelSingleLow,
		},
		{
			name:   "two tiers cannot form a window",
			frames: singles(pose.TierHigh, pose.TierHigh),
			want:   models.LabelSingleLow,
		},
		{
			name: "person frames interleaved with empty frames",
			frames: []pose.FrameScore{
				single(pose.TierHigh),
				{},
				single(pose.TierHigh),
				{},
				single(pose.TierHigh),
			},
			want: models.LabelSingleHigh,
		},
		{
			name:   "all low",
			frames: singles(pose.TierLow, pose.TierLow, pose.TierLow, pose.TierLow),
			want:   models.LabelSingleLow,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ClassifyScene(tt.frames); got != tt.want {
				t.Errorf("ClassifyScene() = %q, want %q", got, tt.want)
			}
		})
	}
}
