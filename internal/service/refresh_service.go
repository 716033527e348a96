package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"feedbox/backend/internal/feedparse"
	"feedbox/backend/internal/model"
	"feedbox/backend/internal/store"
	"feedbox/backend/pkg/logger"
)

// RefreshResult is one feed's outcome within a bulk refresh. Exactly one of
// NewArticles or Error is meaningful: a non-empty Error marks a failed
// attempt.
type RefreshResult struct {
	FeedID      string
	Name        string
	NewArticles int
	Error       string
}

type RefreshService interface {
	RefreshFeed(ctx context.Context, id string) (int, error)
	RefreshAll(ctx context.Context) ([]RefreshResult, error)
}

type refreshService struct {
	store   *store.ArticleStore
	fetcher Fetcher
}

func NewRefreshService(articles *store.ArticleStore, fetcher Fetcher) RefreshService {
	return &refreshService{store: articles, fetcher: fetcher}
}

// RefreshFeed runs one fetch→parse→merge cycle for the feed and returns the
// number of new articles. Zero new articles is a successful refresh.
func (s *refreshService) RefreshFeed(ctx context.Context, id string) (int, error) {
	feed, err := s.store.GetFeed(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return 0, ErrNotFound
		}
		return 0, fmt.Errorf("get feed: %w", err)
	}
	return s.refresh(ctx, feed)
}

// RefreshAll refreshes every registered feed sequentially, in registration
// order. A failed feed is recorded in its result entry and never aborts the
// remaining feeds.
func (s *refreshService) RefreshAll(ctx context.Context) ([]RefreshResult, error) {
	feeds, err := s.store.ListFeeds(ctx)
	if err != nil {
		return nil, fmt.Errorf("list feeds: %w", err)
	}

	logger.Info("refresh started", "feeds", len(feeds))
	results := make([]RefreshResult, 0, len(feeds))
	for _, feed := range feeds {
		result := RefreshResult{FeedID: feed.ID, Name: feed.Name}
		added, err := s.refresh(ctx, feed)
		if err != nil {
			logger.Warn("feed refresh failed", "feed_id", feed.ID, "feed_name", feed.Name, "error", err)
			result.Error = err.Error()
		} else {
			result.NewArticles = added
		}
		results = append(results, result)
	}
	logger.Info("refresh completed", "feeds", len(feeds))

	return results, nil
}

func (s *refreshService) refresh(ctx context.Context, feed model.Feed) (int, error) {
	raw, fetchErr := s.fetcher.Fetch(ctx, feed.URL)

	// LastFetched means "last attempted": it advances whether or not the
	// fetch succeeded.
	feed.LastFetched = time.Now().UTC()
	if err := s.store.UpdateFeed(ctx, feed); err != nil {
		logger.Warn("update lastFetched failed", "feed_id", feed.ID, "error", err)
	}

	if fetchErr != nil {
		return 0, fmt.Errorf("%w: %v", ErrFeedFetch, fetchErr)
	}

	parsed := feedparse.Parse(raw)
	added, err := s.store.MergeArticles(ctx, feed.ID, toArticles(feed, parsed.Items))
	if err != nil {
		return 0, fmt.Errorf("merge articles: %w", err)
	}
	if added > 0 {
		logger.Info("feed refreshed", "feed_id", feed.ID, "feed_name", feed.Name, "new", added)
	}
	return added, nil
}
