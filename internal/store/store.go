package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"

	"feedbox/backend/internal/kv"
	"feedbox/backend/internal/model"
	"feedbox/backend/pkg/snowflake"
)

// Collection keys in the kv store. Each holds one whole JSON-serialized
// collection: the persistence layer offers no partial updates, so every
// mutation is load, change in memory, store back.
const (
	feedsKey    = "feeds"
	articlesKey = "articles"
	starredKey  = "starred"
	readKey     = "read"
)

var (
	ErrNotFound      = errors.New("feed not found")
	ErrDuplicateFeed = errors.New("duplicate feed url")
)

// ArticleStore owns the feed registry, the article set, and the starred and
// read flag sets. All mutations are serialized through a single-writer
// mutex: the kv substrate has no transactions or compare-and-swap, so
// in-process serialization is what prevents lost updates between
// overlapping refreshes.
type ArticleStore struct {
	mu sync.Mutex
	kv kv.Store
}

func New(store kv.Store) *ArticleStore {
	return &ArticleStore{kv: store}
}

// ArticleFilter narrows ListArticles output.
type ArticleFilter struct {
	FeedID      string
	StarredOnly bool
}

func (s *ArticleStore) ListFeeds(ctx context.Context) ([]model.Feed, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadFeeds(ctx)
}

func (s *ArticleStore) GetFeed(ctx context.Context, id string) (model.Feed, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	feeds, err := s.loadFeeds(ctx)
	if err != nil {
		return model.Feed{}, err
	}
	for _, feed := range feeds {
		if feed.ID == id {
			return feed, nil
		}
	}
	return model.Feed{}, ErrNotFound
}

// AddFeed registers a new feed. The URL must be unique across the registry;
// the comparison is a case-sensitive exact match.
func (s *ArticleStore) AddFeed(ctx context.Context, feed model.Feed) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	feeds, err := s.loadFeeds(ctx)
	if err != nil {
		return err
	}
	for _, existing := range feeds {
		if existing.URL == feed.URL {
			return ErrDuplicateFeed
		}
	}

	feeds = append(feeds, feed)
	return s.saveFeeds(ctx, feeds)
}

// UpdateFeed replaces the stored feed with the same ID.
func (s *ArticleStore) UpdateFeed(ctx context.Context, feed model.Feed) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	feeds, err := s.loadFeeds(ctx)
	if err != nil {
		return err
	}
	for i, existing := range feeds {
		if existing.ID == feed.ID {
			feeds[i] = feed
			return s.saveFeeds(ctx, feeds)
		}
	}
	return ErrNotFound
}

// RemoveFeed deletes the feed and cascades: its articles are removed and
// their ids pruned from both flag sets, so no flag entry outlives its
// article.
func (s *ArticleStore) RemoveFeed(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	feeds, err := s.loadFeeds(ctx)
	if err != nil {
		return err
	}

	index := -1
	for i, feed := range feeds {
		if feed.ID == id {
			index = i
			break
		}
	}
	if index < 0 {
		return ErrNotFound
	}

	feeds = append(feeds[:index], feeds[index+1:]...)
	if err := s.saveFeeds(ctx, feeds); err != nil {
		return err
	}

	articles, err := s.loadArticles(ctx)
	if err != nil {
		return err
	}
	removed := make(map[string]bool)
	kept := articles[:0]
	for _, article := range articles {
		if article.FeedID == id {
			removed[article.ID] = true
			continue
		}
		kept = append(kept, article)
	}
	if err := s.saveArticles(ctx, kept); err != nil {
		return err
	}

	for _, key := range []string{starredKey, readKey} {
		if err := s.pruneIDSet(ctx, key, removed); err != nil {
			return err
		}
	}
	return nil
}

// MergeArticles appends the subset of candidates that are new for the feed
// and returns how many were added. The dedup key is the article link,
// scoped to the feed: two feeds may share a link without either being a
// duplicate. Candidates with an empty link are dropped. Fresh ids are
// assigned here.
func (s *ArticleStore) MergeArticles(ctx context.Context, feedID string, candidates []model.Article) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	articles, err := s.loadArticles(ctx)
	if err != nil {
		return 0, err
	}

	existing := make(map[string]bool)
	for _, article := range articles {
		if article.FeedID == feedID {
			existing[article.Link] = true
		}
	}

	added := 0
	for _, candidate := range candidates {
		if candidate.Link == "" || existing[candidate.Link] {
			continue
		}
		existing[candidate.Link] = true
		candidate.ID = snowflake.NextIDString()
		candidate.FeedID = feedID
		articles = append(articles, candidate)
		added++
	}

	if added == 0 {
		return 0, nil
	}
	if err := s.saveArticles(ctx, articles); err != nil {
		return 0, err
	}
	return added, nil
}

// ListArticles returns articles matching the filter, newest first, each
// annotated with starred-set membership and read-set state.
func (s *ArticleStore) ListArticles(ctx context.Context, filter ArticleFilter) ([]model.StarredArticle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	articles, err := s.loadArticles(ctx)
	if err != nil {
		return nil, err
	}
	starred, err := s.loadIDSet(ctx, starredKey)
	if err != nil {
		return nil, err
	}
	read, err := s.loadIDSet(ctx, readKey)
	if err != nil {
		return nil, err
	}

	result := make([]model.StarredArticle, 0, len(articles))
	for _, article := range articles {
		if filter.FeedID != "" && article.FeedID != filter.FeedID {
			continue
		}
		if filter.StarredOnly && !starred[article.ID] {
			continue
		}
		article.Read = read[article.ID]
		result = append(result, model.StarredArticle{Article: article, Starred: starred[article.ID]})
	}

	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Date.After(result[j].Date)
	})
	return result, nil
}

// ToggleStar flips starred-set membership for the id and returns the new
// state. The id is not validated against the article set; toggling a
// since-deleted id silently flips membership, and cascade deletes prune
// stale entries.
func (s *ArticleStore) ToggleStar(ctx context.Context, articleID string) (bool, error) {
	return s.toggleID(ctx, starredKey, articleID)
}

// ToggleRead flips read-set membership for the id and returns the new state.
func (s *ArticleStore) ToggleRead(ctx context.Context, articleID string) (bool, error) {
	return s.toggleID(ctx, readKey, articleID)
}

func (s *ArticleStore) toggleID(ctx context.Context, key string, articleID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids, err := s.loadIDList(ctx, key)
	if err != nil {
		return false, err
	}

	for i, id := range ids {
		if id == articleID {
			ids = append(ids[:i], ids[i+1:]...)
			return false, s.saveIDList(ctx, key, ids)
		}
	}
	ids = append(ids, articleID)
	return true, s.saveIDList(ctx, key, ids)
}

func (s *ArticleStore) pruneIDSet(ctx context.Context, key string, removed map[string]bool) error {
	ids, err := s.loadIDList(ctx, key)
	if err != nil {
		return err
	}
	kept := ids[:0]
	changed := false
	for _, id := range ids {
		if removed[id] {
			changed = true
			continue
		}
		kept = append(kept, id)
	}
	if !changed {
		return nil
	}
	return s.saveIDList(ctx, key, kept)
}

func (s *ArticleStore) loadFeeds(ctx context.Context) ([]model.Feed, error) {
	var feeds []model.Feed
	if err := s.loadJSON(ctx, feedsKey, &feeds); err != nil {
		return nil, err
	}
	if feeds == nil {
		feeds = []model.Feed{}
	}
	return feeds, nil
}

func (s *ArticleStore) saveFeeds(ctx context.Context, feeds []model.Feed) error {
	return s.saveJSON(ctx, feedsKey, feeds)
}

func (s *ArticleStore) loadArticles(ctx context.Context) ([]model.Article, error) {
	var articles []model.Article
	if err := s.loadJSON(ctx, articlesKey, &articles); err != nil {
		return nil, err
	}
	if articles == nil {
		articles = []model.Article{}
	}
	return articles, nil
}

func (s *ArticleStore) saveArticles(ctx context.Context, articles []model.Article) error {
	return s.saveJSON(ctx, articlesKey, articles)
}

func (s *ArticleStore) loadIDList(ctx context.Context, key string) ([]string, error) {
	var ids []string
	if err := s.loadJSON(ctx, key, &ids); err != nil {
		return nil, err
	}
	if ids == nil {
		ids = []string{}
	}
	return ids, nil
}

func (s *ArticleStore) saveIDList(ctx context.Context, key string, ids []string) error {
	return s.saveJSON(ctx, key, ids)
}

func (s *ArticleStore) loadIDSet(ctx context.Context, key string) (map[string]bool, error) {
	ids, err := s.loadIDList(ctx, key)
	if err != nil {
		return nil, err
	}
	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set, nil
}

func (s *ArticleStore) loadJSON(ctx context.Context, key string, target any) error {
	raw, err := s.kv.Get(ctx, key)
	if err != nil {
		return fmt.Errorf("load %s: %w", key, err)
	}
	if raw == nil {
		return nil
	}
	if err := json.Unmarshal(raw, target); err != nil {
		return fmt.Errorf("decode %s: %w", key, err)
	}
	return nil
}

func (s *ArticleStore) saveJSON(ctx context.Context, key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := s.kv.Put(ctx, key, raw); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}
