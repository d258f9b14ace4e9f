package pose

// Tier grades how usable a qualifying person's pose is within one frame.
type Tier string

const (
	TierHigh   Tier = "high"
	TierMedium Tier = "medium"
	TierLow    Tier = "low"
)

const (
	// A person must occupy at least 1/60 of the frame to qualify and
	// more than 1/30 of the frame to reach the medium or high tier.
	minBBoxFraction  = 1.0 / 60
	tierBBoxFraction = 1.0 / 30

	minBBoxScore = 0.4

	headScoreThreshold = 0.7
	bodyScoreThreshold = 0.35
	minVisiblePoints   = 5

	// Threshold for the individual joints the tier rules look at.
	jointScoreThreshold = 0.5
	minVisibleArmJoints = 3
)

// FrameScore is the outcome of scoring all detections of one frame:
// how many qualifying people it shows and their tiers in detection order.
type FrameScore struct {
	VisiblePeople int
	Tiers         []Tier
}

// ScoreFrame applies the qualification gate and tier rules to every
// detection of a frame. frameArea is the full frame size in pixels.
func ScoreFrame(detections []Detection, frameArea float64) FrameScore {
	var fs FrameScore
	for _, d := range detections {
		if !Qualifies(d, frameArea) {
			continue
		}
		fs.VisiblePeople++
		fs.Tiers = append(fs.Tiers, AssignTier(d, frameArea))
	}
	return fs
}

// Qualifies reports whether the detection counts as a visible person:
// the box covers at least 1/60 but less than all of the frame, the
// detector is confident in the box, and at least five keypoints are
// visible. Head keypoints need a stricter confidence than body
// keypoints. A detection without the full 17 scores is malformed and
// never qualifies.
func Qualifies(d Detection, frameArea float64) bool {
	if len(d.KeypointScores) != KeypointCount || frameArea <= 0 {
		return false
	}

	area := d.BBoxArea()
	if area < frameArea*minBBoxFraction || area >= frameArea {
		return false
	}
	if d.BBoxScore < minBBoxScore {
		return false
	}

	visible := 0
	for i, score := range d.KeypointScores {
		threshold := bodyScoreThreshold
		if i < headKeypoints {
			threshold = headScoreThreshold
		}
		if score >= threshold {
			visible++
		}
	}
	return visible >= minVisiblePoints
}

// AssignTier grades a qualifying detection. Rules are checked in
// priority order and the first match wins. High needs a shoulder and a
// knee visible on a person larger than 1/30 of the frame; medium needs
// at least 3 of the 6 arm joints visible at the same size; low is
// everything else that qualifies.
func AssignTier(d Detection, frameArea float64) Tier {
	scores := d.KeypointScores
	large := d.BBoxArea()/frameArea > tierBBoxFraction

	shouldersVisible := scores[LeftShoulder] >= jointScoreThreshold || scores[RightShoulder] >= jointScoreThreshold
	kneesVisible := scores[LeftKnee] >= jointScoreThreshold || scores[RightKnee] >= jointScoreThreshold
	if shouldersVisible && kneesVisible && large {
		return TierHigh
	}

	armJoints := 0
	for _, i := range []int{LeftShoulder, RightShoulder, LeftElbow, RightElbow, LeftWrist, RightWrist} {
		if scores[i] >= jointScoreThreshold {
			armJoints++
		}
	}
	if armJoints >= minVisibleArmJoints && large {
		return TierMedium
	}

	return TierLow
}
