// Package pose holds the pose-estimation data model, the per-detection
// visibility scoring rules, and the HTTP client for the inference service.
package pose

// COCO keypoint order: 5 head points (nose, eyes, ears) followed by 12
// body points.
const (
	KeypointCount = 17

	headKeypoints = 5

	LeftShoulder  = 5
	RightShoulder = 6
	LeftElbow     = 7
	RightElbow    = 8
	LeftWrist     = 9
	RightWrist    = 10
	LeftHip       = 11
	RightHip      = 12
	LeftKnee      = 13
	RightKnee     = 14
	LeftAnkle     = 15
	RightAnkle    = 16
)

// Detection is one person found in a frame by the pose model.
// KeypointScores are confidence values in COCO keypoint order; BBox is
// (x1, y1, x2, y2) in pixels of the submitted image.
type Detection struct {
	KeypointScores []float64
	BBox           [4]float64
	BBoxScore      float64
}

// BBoxArea returns the bounding box area in pixels. Degenerate boxes
// yield zero, never a negative area.
func (d Detection) BBoxArea() float64 {
	w := d.BBox[2] - d.BBox[0]
	h := d.BBox[3] - d.BBox[1]
	if w <= 0 || h <= 0 {
		return 0
	}
	return w * h
}
