package service

import (
	"context"

	"feedbox/backend/internal/store"
)

// FlagService flips starred/read state for an article id. It is a thin
// pass-through to the store; unknown ids are accepted and flip set
// membership like any other.
type FlagService interface {
	ToggleStar(ctx context.Context, articleID string) (bool, error)
	ToggleRead(ctx context.Context, articleID string) (bool, error)
}

type flagService struct {
	store *store.ArticleStore
}

func NewFlagService(articles *store.ArticleStore) FlagService {
	return &flagService{store: articles}
}

func (s *flagService) ToggleStar(ctx context.Context, articleID string) (bool, error) {
	return s.store.ToggleStar(ctx, articleID)
}

func (s *flagService) ToggleRead(ctx context.Context, articleID string) (bool, error) {
	return s.store.ToggleRead(ctx, articleID)
}
