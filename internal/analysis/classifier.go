package analysis

import (
	"github.com/markusc/posescout/internal/models"
	"github.com/markusc/posescout/internal/pose"
)

// tierWindow is the number of consecutive sampled frames a tier must be
// sustained for before it counts. Three sampled intervals cover roughly
// 90 decoded frames, which filters out single-frame flickers.
const tierWindow = 3

// ClassifyScene reduces the per-frame scores of one scene to its label.
//
// The people count decides the coarse class first: a scene where no
// sampled frame shows a qualifying person is "nh", and a scene where
// any frame shows more than one is "mu". A scene with zero sampled
// frames is vacuously "nh". Everything else is a single-person scene,
// subdivided by scanning the flattened tier sequence: any window of
// three consecutive "high" tiers makes the scene "sh"; otherwise any
// window of three tiers from {medium, high} makes it "sm"; otherwise
// it is "sl". Fewer than three tiers means no window exists, and the
// scene falls through to "sl".
func ClassifyScene(frames []pose.FrameScore) models.Label {
	anyPerson := false
	for _, f := range frames {
		if f.VisiblePeople > 1 {
			return models.LabelMultiple
		}
		if f.VisiblePeople > 0 {
			anyPerson = true
		}
	}
	if !anyPerson {
		return models.LabelNoHuman
	}

	var tiers []pose.Tier
	for _, f := range frames {
		tiers = append(tiers, f.Tiers...)
	}

	if hasWindow(tiers, func(t pose.Tier) bool { return t == pose.TierHigh }) {
		return models.LabelSingleHigh
	}
	if hasWindow(tiers, func(t pose.Tier) bool { return t == pose.TierHigh || t == pose.TierMedium }) {
		return models.LabelSingleMedium
	}
	return models.LabelSingleLow
}

func hasWindow(tiers []pose.Tier, match func(pose.Tier) bool) bool {
	for i := 0; i+tierWindow <= len(tiers); i++ {
		ok := true
		for _, t := range tiers[i : i+tierWindow] {
			if !match(t) {
				ok = false
				break
			}
		}
		if ok {
			return true
		}
	}
	return false
}
