package service

import (
	"context"

	"feedbox/backend/internal/model"
	"feedbox/backend/internal/store"
)

type ArticleService interface {
	List(ctx context.Context, filter store.ArticleFilter) ([]model.StarredArticle, error)
}

type articleService struct {
	store *store.ArticleStore
}

func NewArticleService(articles *store.ArticleStore) ArticleService {
	return &articleService{store: articles}
}

func (s *articleService) List(ctx context.Context, filter store.ArticleFilter) ([]model.StarredArticle, error) {
	return s.store.ListArticles(ctx, filter)
}
