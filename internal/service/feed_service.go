package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"github.com/mmcdole/gofeed"

	"feedbox/backend/internal/feedparse"
	"feedbox/backend/internal/fetch"
	"feedbox/backend/internal/model"
	"feedbox/backend/internal/store"
	"feedbox/backend/pkg/snowflake"
)

// Fetcher retrieves raw feed bytes. Implemented by fetch.Fetcher.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

type FeedService interface {
	Add(ctx context.Context, feedURL string, name string) (model.Feed, int, error)
	List(ctx context.Context) ([]model.Feed, error)
	Delete(ctx context.Context, id string) error
	Preview(ctx context.Context, feedURL string) (FeedPreview, error)
}

// FeedPreview is a non-persisting look at a feed URL.
type FeedPreview struct {
	URL         string
	Title       string
	Description string
	ItemCount   int
	LastUpdated string
}

type feedService struct {
	store    *store.ArticleStore
	fetcher  Fetcher
	sanitize *bluemonday.Policy
}

func NewFeedService(articles *store.ArticleStore, fetcher Fetcher) FeedService {
	return &feedService{
		store:    articles,
		fetcher:  fetcher,
		sanitize: bluemonday.StrictPolicy(),
	}
}

// Add registers a feed after a validating fetch+parse and ingests every
// parsed item. A feed that fetches and parses to zero items is still
// accepted. Returns the created feed and the number of articles added.
func (s *feedService) Add(ctx context.Context, feedURL string, name string) (model.Feed, int, error) {
	trimmedURL := strings.TrimSpace(feedURL)
	if !isValidURL(trimmedURL) {
		return model.Feed{}, 0, ErrInvalid
	}

	feeds, err := s.store.ListFeeds(ctx)
	if err != nil {
		return model.Feed{}, 0, fmt.Errorf("list feeds: %w", err)
	}
	for _, existing := range feeds {
		if existing.URL == trimmedURL {
			return model.Feed{}, 0, ErrConflict
		}
	}

	raw, err := s.fetcher.Fetch(ctx, trimmedURL)
	if err != nil {
		return model.Feed{}, 0, fmt.Errorf("%w: %v", ErrFeedFetch, err)
	}
	parsed := feedparse.Parse(raw)

	feed := model.Feed{
		ID:          snowflake.NextIDString(),
		Name:        feedName(name, parsed.Title, trimmedURL),
		URL:         trimmedURL,
		LastFetched: time.Now().UTC(),
	}

	if err := s.store.AddFeed(ctx, feed); err != nil {
		if errors.Is(err, store.ErrDuplicateFeed) {
			return model.Feed{}, 0, ErrConflict
		}
		return model.Feed{}, 0, fmt.Errorf("add feed: %w", err)
	}

	added, err := s.store.MergeArticles(ctx, feed.ID, toArticles(feed, parsed.Items))
	if err != nil {
		return model.Feed{}, 0, fmt.Errorf("merge articles: %w", err)
	}
	return feed, added, nil
}

func (s *feedService) List(ctx context.Context) ([]model.Feed, error) {
	return s.store.ListFeeds(ctx)
}

func (s *feedService) Delete(ctx context.Context, id string) error {
	if err := s.store.RemoveFeed(ctx, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("remove feed: %w", err)
	}
	return nil
}

// Preview fetches and parses a feed URL without persisting anything.
func (s *feedService) Preview(ctx context.Context, feedURL string) (FeedPreview, error) {
	trimmedURL := strings.TrimSpace(feedURL)
	if !isValidURL(trimmedURL) {
		return FeedPreview{}, ErrInvalid
	}

	raw, err := s.fetcher.Fetch(ctx, trimmedURL)
	if err != nil {
		return FeedPreview{}, fmt.Errorf("%w: %v", ErrFeedFetch, err)
	}

	parsed, err := gofeed.NewParser().Parse(bytes.NewReader(raw))
	if err != nil {
		return FeedPreview{}, fmt.Errorf("%w: %v", ErrFeedFetch, err)
	}

	title := strings.TrimSpace(parsed.Title)
	if title == "" {
		title = trimmedURL
	}
	lastUpdated := ""
	if parsed.UpdatedParsed != nil {
		lastUpdated = parsed.UpdatedParsed.UTC().Format(time.RFC3339)
	} else if parsed.PublishedParsed != nil {
		lastUpdated = parsed.PublishedParsed.UTC().Format(time.RFC3339)
	}

	return FeedPreview{
		URL:         trimmedURL,
		Title:       title,
		Description: strings.TrimSpace(s.sanitize.Sanitize(parsed.Description)),
		ItemCount:   len(parsed.Items),
		LastUpdated: lastUpdated,
	}, nil
}

// feedName resolves a feed's display name: explicit override, then the
// parsed feed title, then the URL's host.
func feedName(override string, parsedTitle string, feedURL string) string {
	if name := strings.TrimSpace(override); name != "" {
		return name
	}
	if name := feedparse.CleanText(parsedTitle); name != "" {
		return name
	}
	if parsed, err := url.Parse(feedURL); err == nil && parsed.Host != "" {
		return parsed.Host
	}
	return feedURL
}

// toArticles normalizes parsed items into article candidates. The store
// assigns ids during merge.
func toArticles(feed model.Feed, items []feedparse.Item) []model.Article {
	articles := make([]model.Article, 0, len(items))
	for _, item := range items {
		body := item.Content
		if body == "" {
			body = item.Description
		}
		articles = append(articles, model.Article{
			FeedID:    feed.ID,
			Title:     feedparse.CleanText(item.Title),
			Excerpt:   feedparse.CleanText(body),
			Link:      strings.TrimSpace(item.Link),
			Source:    feed.Name,
			SourceURL: feed.URL,
			Date:      feedparse.ParseDate(item.PubDate),
		})
	}
	return articles
}

func isValidURL(value string) bool {
	parsed, err := url.ParseRequestURI(value)
	if err != nil {
		return false
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return false
	}
	return parsed.Host != ""
}

var _ Fetcher = (*fetch.Fetcher)(nil)
