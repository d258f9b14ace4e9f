// Package search discovers candidate video URLs for keywords and
// records them for the pipeline.
package search

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"
)

// VideoSearcher finds watchable video URLs for a query.
type VideoSearcher interface {
	SearchVideoURLs(ctx context.Context, query string, maxResults int64) ([]string, error)
}

// YouTubeClient searches videos through the YouTube Data API.
type YouTubeClient struct {
	svc *youtube.Service
}

func NewYouTubeClient(ctx context.Context, apiKey string) (*YouTubeClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("youtube api key is required")
	}
	svc, err := youtube.NewService(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("creating youtube service: %w", err)
	}
	return &YouTubeClient{svc: svc}, nil
}

func (c *YouTubeClient) SearchVideoURLs(ctx context.Context, query string, maxResults int64) ([]string, error) {
	resp, err := c.svc.Search.List([]string{"id"}).
		Q(query).
		Type("video").
		MaxResults(maxResults).
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("searching %q: %w", query, err)
	}

	urls := make([]string, 0, len(resp.Items))
	for _, item := range resp.Items {
		if item.Id == nil || item.Id.VideoId == "" {
			continue
		}
		urls = append(urls, "https://www.youtube.com/watch?v="+item.Id.VideoId)
	}
	return urls, nil
}

// IsQuotaError reports whether the error is the API telling us the
// daily search quota is exhausted (or the key is no longer authorized).
func IsQuotaError(err error) bool {
	var gerr *googleapi.Error
	if !errors.As(err, &gerr) {
		return false
	}
	if gerr.Code != 403 {
		return false
	}
	for _, e := range gerr.Errors {
		switch e.Reason {
		case "quotaExceeded", "dailyLimitExceeded", "rateLimitExceeded", "accessNotConfigured":
			return true
		}
	}
	return false
}
