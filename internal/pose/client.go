package pose

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Inferencer runs pose estimation on one image and returns the detected
// people.
type Inferencer interface {
	InferPose(ctx context.Context, imageData []byte) ([]Detection, error)
}

// Client talks to an RTMPose-style inference service over HTTP: a JPEG
// goes in, a JSON list of per-person predictions comes out.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

type inferRequest struct {
	Image string `json:"image"`
}

// wireDetection mirrors the service's prediction JSON. The bbox comes
// nested one level deep, one box per person.
type wireDetection struct {
	KeypointScores []float64   `json:"keypoint_scores"`
	BBox           [][]float64 `json:"bbox"`
	BBoxScore      float64     `json:"bbox_score"`
}

func (c *Client) InferPose(ctx context.Context, imageData []byte) ([]Detection, error) {
	reqBody := inferRequest{
		Image: base64.StdEncoding.EncodeToString(imageData),
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/inference", bytes.NewReader(jsonData))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("pose service returned status %d: %s", resp.StatusCode, string(body))
	}

	var wire []wireDetection
	if err := json.NewDecoder(resp.Body).Decode(&wire); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}

	detections := make([]Detection, 0, len(wire))
	for _, w := range wire {
		// A prediction without a box or the full score set is dropped;
		// the rest of the frame is still usable.
		if len(w.BBox) == 0 || len(w.BBox[0]) != 4 || len(w.KeypointScores) != KeypointCount {
			continue
		}
		d := Detection{
			KeypointScores: w.KeypointScores,
			BBoxScore:      w.BBoxScore,
		}
		copy(d.BBox[:], w.BBox[0])
		detections = append(detections, d)
	}

	return detections, nil
}
