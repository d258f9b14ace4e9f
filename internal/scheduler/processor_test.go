package scheduler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/markusc/posescout/internal/analysis"
	"github.com/markusc/posescout/internal/database"
	"github.com/markusc/posescout/internal/models"
	"github.com/markusc/posescout/internal/storage"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeDownloader drops a placeholder file into the store directory, the
// way yt-dlp would, and fails for URLs listed in failing.
type fakeDownloader struct {
	dir     string
	failing map[string]bool
	calls   int
}

func (f *fakeDownloader) Download(ctx context.Context, url string) (string, error) {
	f.calls++
	if f.failing[url] {
		return "", errors.New("download failed")
	}
	path := filepath.Join(f.dir, filepath.Base(url)+".mp4")
	if err := os.WriteFile(path, []byte("video"), 0o644); err != nil {
		return "", err
	}
	return path, nil
}

// fakePipeline returns one fixed scene per video and fails for paths
// listed in failing.
type fakePipeline struct {
	failing map[string]bool
}

func (f *fakePipeline) ProcessVideo(ctx context.Context, videoID, videoPath string) (*analysis.VideoResult, error) {
	if f.failing[filepath.Base(videoPath)] {
		return nil, errors.New("classification failed")
	}
	return &analysis.VideoResult{
		Duration: 90,
		Scenes: []models.SceneResult{
			{VideoID: videoID, StartTime: 0, EndTime: 30, Label: models.LabelSingleHigh},
		},
	}, nil
}

func newTestProcessor(t *testing.T) (*Processor, *database.DB, *fakeDownloader, *storage.MediaStore) {
	t.Helper()

	db, cleanup := database.NewTestDB(t)
	t.Cleanup(cleanup)

	store, err := storage.NewMediaStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewMediaStore() error: %v", err)
	}

	downloader := &fakeDownloader{dir: store.Dir(), failing: map[string]bool{}}
	processor := NewProcessor(
		database.NewVideoRepo(db),
		database.NewSceneRepo(db),
		downloader,
		&fakePipeline{failing: map[string]bool{}},
		store,
		0,
		discardLogger(),
	)
	return processor, db, downloader, store
}

func TestProcessBacklog(t *testing.T) {
	processor, db, _, store := newTestProcessor(t)
	ctx := context.Background()

	videos := database.NewVideoRepo(db)
	if _, err := videos.InsertURLs(ctx, []string{"vid-a", "vid-b"}, "kw"); err != nil {
		t.Fatalf("InsertURLs() error: %v", err)
	}

	if err := processor.ProcessBacklog(ctx); err != nil {
		t.Fatalf("ProcessBacklog() error: %v", err)
	}

	pending, err := videos.ListUnprocessed(ctx, 10)
	if err != nil {
		t.Fatalf("ListUnprocessed() error: %v", err)
	}
	if len(pending) != 0 {
		t.Fatalf("len(pending) = %d, want 0", len(pending))
	}

	v, err := videos.GetByURL(ctx, "vid-a")
	if err != nil {
		t.Fatalf("GetByURL() error: %v", err)
	}
	if v.Duration != 90 {
		t.Errorf("Duration = %v, want 90", v.Duration)
	}

	scenes, err := database.NewSceneRepo(db).ListByVideo(ctx, v.ID)
	if err != nil {
		t.Fatalf("ListByVideo() error: %v", err)
	}
	if len(scenes) != 1 || scenes[0].Label != models.LabelSingleHigh {
		t.Fatalf("scenes = %+v, want one sh scene", scenes)
	}

	// Downloaded files are cleaned up after classification.
	entries, err := os.ReadDir(store.Dir())
	if err != nil {
		t.Fatalf("ReadDir() error: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("store still holds %d files after processing", len(entries))
	}
}

func TestProcessBacklogContinuesPastFailures(t *testing.T) {
	processor, db, downloader, _ := newTestProcessor(t)
	ctx := context.Background()

	videos := database.NewVideoRepo(db)
	if _, err := videos.InsertURLs(ctx, []string{"broken", "good"}, "kw"); err != nil {
		t.Fatalf("InsertURLs() error: %v", err)
	}
	downloader.failing["broken"] = true

	if err := processor.ProcessBacklog(ctx); err != nil {
		t.Fatalf("ProcessBacklog() error: %v", err)
	}

	// The broken video stays queued for a later run.
	pending, err := videos.ListUnprocessed(ctx, 10)
	if err != nil {
		t.Fatalf("ListUnprocessed() error: %v", err)
	}
	if len(pending) != 1 || pending[0].URL != "broken" {
		t.Fatalf("pending = %+v, want just the broken video", pending)
	}

	good, err := videos.GetByURL(ctx, "good")
	if err != nil {
		t.Fatalf("GetByURL() error: %v", err)
	}
	if !good.IsProcessed {
		t.Error("good video not processed")
	}
}

func TestProcessBacklogEmptyQueue(t *testing.T) {
	processor, _, downloader, _ := newTestProcessor(t)

	if err := processor.ProcessBacklog(context.Background()); err != nil {
		t.Fatalf("ProcessBacklog() error: %v", err)
	}
	if downloader.calls != 0 {
		t.Errorf("downloader called %d times on an empty queue", downloader.calls)
	}
}
