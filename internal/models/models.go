package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Label is the classification assigned to one scene.
type Label string

const (
	LabelNoHuman      Label = "nh"
	LabelMultiple     Label = "mu"
	LabelSingle       Label = "si"
	LabelSingleHigh   Label = "sh"
	LabelSingleMedium Label = "sm"
	LabelSingleLow    Label = "sl"
)

func (l Label) Valid() bool {
	switch l {
	case LabelNoHuman, LabelMultiple, LabelSingle, LabelSingleHigh, LabelSingleMedium, LabelSingleLow:
		return true
	}
	return false
}

// Keyword is a search term used to discover candidate videos. Its
// quality metric estimates the fraction of usable footage the keyword
// has yielded so far and is fully recomputed on every aggregation run.
type Keyword struct {
	Text          string
	LastProcessed time.Time
	UseCounter    int
	QualityMetric float64
}

// NormalizeKeyword trims surrounding whitespace and lowercases so that
// "Workout " and "workout" map to the same row.
func NormalizeKeyword(text string) string {
	return strings.ToLower(strings.TrimSpace(text))
}

// VideoRecord tracks one discovered video URL through the pipeline.
// Duration is the probed container duration in seconds, recorded when
// the video is processed; zero until then.
type VideoRecord struct {
	ID            string
	URL           string
	OriginKeyword string
	IsProcessed   bool
	Duration      float64
	AddedAt       time.Time
}

func NewVideoRecord(url, originKeyword string) *VideoRecord {
	return &VideoRecord{
		ID:            uuid.New().String(),
		URL:           url,
		OriginKeyword: originKeyword,
		AddedAt:       time.Now().UTC(),
	}
}

// Scene is a content-coherent time range of a video bounded by two
// detected cuts. Times are seconds from the start of the container.
type Scene struct {
	ID        string
	VideoID   string
	StartTime float64
	EndTime   float64
}

func (s Scene) Duration() float64 {
	return s.EndTime - s.StartTime
}

// SceneResult is one classified scene as emitted by the pipeline,
// before it is persisted.
type SceneResult struct {
	VideoID   string
	StartTime float64
	EndTime   float64
	Label     Label
}
