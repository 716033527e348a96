package http_test

import (
	"net/http"
	"testing"

	"feedbox/backend/internal/fetch"
	"feedbox/backend/internal/handler"
	gh "feedbox/backend/internal/http"
	"feedbox/backend/internal/kv"
	"feedbox/backend/internal/service"
	"feedbox/backend/internal/store"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
)

func TestNewRouter_RegistersRoutes(t *testing.T) {
	articles := store.New(kv.NewMemory())
	fetcher := fetch.New()

	feedHandler := handler.NewFeedHandler(
		service.NewFeedService(articles, fetcher),
		service.NewRefreshService(articles, fetcher),
	)
	articleHandler := handler.NewArticleHandler(
		service.NewArticleService(articles),
		service.NewFlagService(articles),
	)

	e := gh.NewRouter(feedHandler, articleHandler)

	require.NotNil(t, e)
	require.True(t, hasRoute(e, http.MethodGet, "/healthz"))
	require.True(t, hasRoute(e, http.MethodPost, "/api/feeds"))
	require.True(t, hasRoute(e, http.MethodGet, "/api/feeds"))
	require.True(t, hasRoute(e, http.MethodGet, "/api/feeds/preview"))
	require.True(t, hasRoute(e, http.MethodDelete, "/api/feeds/:id"))
	require.True(t, hasRoute(e, http.MethodPost, "/api/feeds/:id/refresh"))
	require.True(t, hasRoute(e, http.MethodPost, "/api/refresh"))
	require.True(t, hasRoute(e, http.MethodGet, "/api/articles"))
	require.True(t, hasRoute(e, http.MethodPost, "/api/articles/:id/star"))
	require.True(t, hasRoute(e, http.MethodPost, "/api/articles/:id/read"))
}

func hasRoute(e *echo.Echo, method, path string) bool {
	for _, r := range e.Routes() {
		if r.Method == method && r.Path == path {
			return true
		}
	}
	return false
}
