package video

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
)

// Cut is one contiguous shot reported by the scene-cut detector, as a
// half-open frame range [StartFrame, EndFrame).
type Cut struct {
	StartFrame int
	EndFrame   int
}

// ContentDetector finds scene cuts by running the PySceneDetect CLI and
// parsing its scene-list CSV.
type ContentDetector struct {
	binPath   string
	threshold float64
}

func NewContentDetector(threshold float64) (*ContentDetector, error) {
	path, err := exec.LookPath("scenedetect")
	if err != nil {
		return nil, fmt.Errorf("scenedetect not found in PATH: %w", err)
	}
	return &ContentDetector{binPath: path, threshold: threshold}, nil
}

func (d *ContentDetector) DetectCuts(ctx context.Context, videoPath string) ([]Cut, error) {
	outDir, err := os.MkdirTemp("", "posescout-scenes-")
	if err != nil {
		return nil, fmt.Errorf("creating scene output dir: %w", err)
	}
	defer os.RemoveAll(outDir)

	base := strings.TrimSuffix(filepath.Base(videoPath), filepath.Ext(videoPath))

	cmd := exec.CommandContext(ctx, d.binPath,
		"--input", videoPath,
		"--output", outDir,
		"--quiet",
		"detect-content",
		"--threshold", fmt.Sprintf("%.1f", d.threshold),
		"list-scenes",
		"--filename", base,
		"--skip-cuts")

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("scenedetect %s: %w: %s", videoPath, err, tail(stderr.String()))
	}

	csvPath := filepath.Join(outDir, base+"-Scenes.csv")
	f, err := os.Open(csvPath)
	if err != nil {
		return nil, fmt.Errorf("opening scene list: %w", err)
	}
	defer f.Close()

	return parseSceneCSV(f)
}

// parseSceneCSV reads PySceneDetect's scene-list CSV. Frame numbers in
// the file are 1-based and the end frame is inclusive; both are
// converted to the half-open 0-based convention used here.
func parseSceneCSV(r io.Reader) ([]Cut, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading scene list: %w", err)
	}
	if len(records) == 0 {
		return nil, nil
	}

	startCol, endCol := -1, -1
	for i, name := range records[0] {
		switch strings.TrimSpace(name) {
		case "Start Frame":
			startCol = i
		case "End Frame":
			endCol = i
		}
	}
	if startCol < 0 || endCol < 0 {
		return nil, fmt.Errorf("scene list missing frame columns")
	}

	var cuts []Cut
	for _, rec := range records[1:] {
		if len(rec) <= startCol || len(rec) <= endCol {
			continue
		}
		start, err := strconv.Atoi(strings.TrimSpace(rec[startCol]))
		if err != nil {
			return nil, fmt.Errorf("invalid start frame %q: %w", rec[startCol], err)
		}
		end, err := strconv.Atoi(strings.TrimSpace(rec[endCol]))
		if err != nil {
			return nil, fmt.Errorf("invalid end frame %q: %w", rec[endCol], err)
		}
		cuts = append(cuts, Cut{StartFrame: start - 1, EndFrame: end})
	}
	return cuts, nil
}
