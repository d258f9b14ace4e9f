package database

import (
	"context"
	"errors"
	"testing"
)

func TestVideoInsertURLsDeduplicates(t *testing.T) {
	db, cleanup := NewTestDB(t)
	defer cleanup()

	ctx := context.Background()
	repo := NewVideoRepo(db)

	added, err := repo.InsertURLs(ctx, []string{
		"https://www.youtube.com/watch?v=abc",
		"https://www.youtube.com/watch?v=def",
		"",
	}, "Dance Tutorial")
	if err != nil {
		t.Fatalf("InsertURLs() error: %v", err)
	}
	if added != 2 {
		t.Errorf("added = %d, want 2", added)
	}

	// A second batch overlapping the first only adds the new URL.
	added, err = repo.InsertURLs(ctx, []string{
		"https://www.youtube.com/watch?v=abc",
		"https://www.youtube.com/watch?v=ghi",
	}, "other keyword")
	if err != nil {
		t.Fatalf("second InsertURLs() error: %v", err)
	}
	if added != 1 {
		t.Errorf("added = %d, want 1", added)
	}

	v, err := repo.GetByURL(ctx, "https://www.youtube.com/watch?v=abc")
	if err != nil {
		t.Fatalf("GetByURL() error: %v", err)
	}
	// The duplicate keeps its original attribution.
	if v.OriginKeyword != "dance tutorial" {
		t.Errorf("OriginKeyword = %q, want %q", v.OriginKeyword, "dance tutorial")
	}
	if v.IsProcessed {
		t.Error("fresh video marked processed")
	}
}

func TestVideoListUnprocessed(t *testing.T) {
	db, cleanup := NewTestDB(t)
	defer cleanup()

	ctx := context.Background()
	repo := NewVideoRepo(db)

	if _, err := repo.InsertURLs(ctx, []string{"u1", "u2", "u3"}, "kw"); err != nil {
		t.Fatalf("InsertURLs() error: %v", err)
	}

	done, err := repo.GetByURL(ctx, "u2")
	if err != nil {
		t.Fatalf("GetByURL() error: %v", err)
	}
	if err := repo.MarkProcessed(ctx, done.ID, 123.5); err != nil {
		t.Fatalf("MarkProcessed() error: %v", err)
	}

	pending, err := repo.ListUnprocessed(ctx, 10)
	if err != nil {
		t.Fatalf("ListUnprocessed() error: %v", err)
	}
	if len(pending) != 2 {
		t.Fatalf("len(pending) = %d, want 2", len(pending))
	}
	for _, v := range pending {
		if v.URL == "u2" {
			t.Error("processed video listed as pending")
		}
	}

	processed := true
	finished, err := repo.List(ctx, &processed)
	if err != nil {
		t.Fatalf("List() error: %v", err)
	}
	if len(finished) != 1 || finished[0].URL != "u2" {
		t.Fatalf("finished = %+v, want just u2", finished)
	}
	if finished[0].Duration != 123.5 {
		t.Errorf("Duration = %v, want 123.5", finished[0].Duration)
	}

	all, err := repo.List(ctx, nil)
	if err != nil {
		t.Fatalf("List(nil) error: %v", err)
	}
	if len(all) != 3 {
		t.Errorf("len(all) = %d, want 3", len(all))
	}
}

func TestVideoListUnprocessedLimit(t *testing.T) {
	db, cleanup := NewTestDB(t)
	defer cleanup()

	ctx := context.Background()
	repo := NewVideoRepo(db)

	if _, err := repo.InsertURLs(ctx, []string{"a", "b", "c", "d"}, ""); err != nil {
		t.Fatalf("InsertURLs() error: %v", err)
	}

	pending, err := repo.ListUnprocessed(ctx, 2)
	if err != nil {
		t.Fatalf("ListUnprocessed() error: %v", err)
	}
	if len(pending) != 2 {
		t.Errorf("len(pending) = %d, want 2", len(pending))
	}
}

func TestVideoMarkProcessedMissing(t *testing.T) {
	db, cleanup := NewTestDB(t)
	defer cleanup()

	err := NewVideoRepo(db).MarkProcessed(context.Background(), "no-such-id", 10)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("MarkProcessed() error = %v, want ErrNotFound", err)
	}
}

func TestVideoGetByIDNotFound(t *testing.T) {
	db, cleanup := NewTestDB(t)
	defer cleanup()

	if _, err := NewVideoRepo(db).GetByID(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("GetByID() error = %v, want ErrNotFound", err)
	}
}

func TestVideoWithoutOriginKeyword(t *testing.T) {
	db, cleanup := NewTestDB(t)
	defer cleanup()

	ctx := context.Background()
	repo := NewVideoRepo(db)

	if _, err := repo.InsertURLs(ctx, []string{"manual-upload"}, ""); err != nil {
		t.Fatalf("InsertURLs() error: %v", err)
	}
	v, err := repo.GetByURL(ctx, "manual-upload")
	if err != nil {
		t.Fatalf("GetByURL() error: %v", err)
	}
	if v.OriginKeyword != "" {
		t.Errorf("OriginKeyword = %q, want empty", v.OriginKeyword)
	}
}
