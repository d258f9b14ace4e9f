package search

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"google.golang.org/api/googleapi"

	"github.com/markusc/posescout/internal/database"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeSearcher serves canned URL lists per query and fails queries
// listed in failWith.
type fakeSearcher struct {
	results  map[string][]string
	failWith map[string]error
	queries  []string
}

func (f *fakeSearcher) SearchVideoURLs(ctx context.Context, query string, maxResults int64) ([]string, error) {
	f.queries = append(f.queries, query)
	if err, ok := f.failWith[query]; ok {
		return nil, err
	}
	return f.results[query], nil
}

func quotaError() error {
	return &googleapi.Error{
		Code: 403,
		Errors: []googleapi.ErrorItem{
			{Reason: "quotaExceeded"},
		},
	}
}

func seedKeywords(t *testing.T, db *database.DB, texts ...string) *database.KeywordRepo {
	t.Helper()
	repo := database.NewKeywordRepo(db)
	ctx := context.Background()
	for _, text := range texts {
		if err := repo.Upsert(ctx, text); err != nil {
			t.Fatalf("Upsert(%q) error: %v", text, err)
		}
	}
	return repo
}

func TestDispatcherRun(t *testing.T) {
	db, cleanup := database.NewTestDB(t)
	defer cleanup()

	ctx := context.Background()
	keywords := seedKeywords(t, db, "surfing")
	videos := database.NewVideoRepo(db)

	searcher := &fakeSearcher{results: map[string][]string{
		"surfing": {
			"https://www.youtube.com/watch?v=a",
			"https://www.youtube.com/watch?v=b",
		},
	}}

	d := NewDispatcher(searcher, keywords, videos, 100, 50, discardLogger())
	if err := d.Run(ctx); err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	pending, err := videos.ListUnprocessed(ctx, 10)
	if err != nil {
		t.Fatalf("ListUnprocessed() error: %v", err)
	}
	if len(pending) != 2 {
		t.Fatalf("len(pending) = %d, want 2", len(pending))
	}
	for _, v := range pending {
		if v.OriginKeyword != "surfing" {
			t.Errorf("OriginKeyword = %q, want surfing", v.OriginKeyword)
		}
	}

	kw, err := keywords.GetByText(ctx, "surfing")
	if err != nil {
		t.Fatalf("GetByText() error: %v", err)
	}
	if kw.UseCounter != 1 {
		t.Errorf("UseCounter = %d, want 1", kw.UseCounter)
	}
	if kw.LastProcessed.IsZero() {
		t.Error("LastProcessed not stamped")
	}
}

func TestDispatcherQuotaAbortsButKeepsCompletedWork(t *testing.T) {
	db, cleanup := database.NewTestDB(t)
	defer cleanup()

	ctx := context.Background()
	keywords := seedKeywords(t, db, "first", "second", "third")
	videos := database.NewVideoRepo(db)

	// Fresh keywords dispatch in tied order; pin it by marking them
	// used in sequence so last_processed ascends first < second < third.
	for _, text := range []string{"first", "second", "third"} {
		if err := keywords.MarkUsed(ctx, text); err != nil {
			t.Fatalf("MarkUsed(%q) error: %v", text, err)
		}
	}

	searcher := &fakeSearcher{
		results: map[string][]string{
			"first": {"https://www.youtube.com/watch?v=a"},
		},
		failWith: map[string]error{
			"second": quotaError(),
		},
	}

	d := NewDispatcher(searcher, keywords, videos, 100, 50, discardLogger())
	err := d.Run(ctx)
	if err == nil {
		t.Fatal("expected the quota error to propagate")
	}
	if !IsQuotaError(err) {
		t.Errorf("error %v not recognized as a quota error", err)
	}

	// The keyword after the failure was never attempted.
	for _, q := range searcher.queries {
		if q == "third" {
			t.Error("dispatch continued past the quota error")
		}
	}

	// Work completed before the failure is preserved.
	pending, err := videos.ListUnprocessed(ctx, 10)
	if err != nil {
		t.Fatalf("ListUnprocessed() error: %v", err)
	}
	if len(pending) != 1 {
		t.Fatalf("len(pending) = %d, want 1", len(pending))
	}

	first, err := keywords.GetByText(ctx, "first")
	if err != nil {
		t.Fatalf("GetByText() error: %v", err)
	}
	if first.UseCounter != 2 {
		t.Errorf("first.UseCounter = %d, want 2", first.UseCounter)
	}

	second, err := keywords.GetByText(ctx, "second")
	if err != nil {
		t.Fatalf("GetByText() error: %v", err)
	}
	if second.UseCounter != 1 {
		t.Errorf("second.UseCounter = %d, want 1 (failed search must not count)", second.UseCounter)
	}
}

func TestDispatcherHonorsKeywordsPerRun(t *testing.T) {
	db, cleanup := database.NewTestDB(t)
	defer cleanup()

	keywords := seedKeywords(t, db, "a", "b", "c")
	searcher := &fakeSearcher{}

	d := NewDispatcher(searcher, keywords, database.NewVideoRepo(db), 2, 50, discardLogger())
	if err := d.Run(context.Background()); err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if len(searcher.queries) != 2 {
		t.Errorf("searched %d keywords, want 2", len(searcher.queries))
	}
}

func TestIsQuotaError(t *testing.T) {
	if !IsQuotaError(quotaError()) {
		t.Error("quotaExceeded not detected")
	}
	if IsQuotaError(errors.New("network down")) {
		t.Error("plain error misdetected as quota")
	}
	if IsQuotaError(&googleapi.Error{Code: 404}) {
		t.Error("404 misdetected as quota")
	}
}
