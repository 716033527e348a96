package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"feedbox/backend/internal/model"
	"feedbox/backend/internal/service"
	"feedbox/backend/internal/store"
)

type ArticleHandler struct {
	articles service.ArticleService
	flags    service.FlagService
}

type articleResponse struct {
	ID        string `json:"id"`
	FeedID    string `json:"feedId"`
	Title     string `json:"title"`
	Excerpt   string `json:"excerpt"`
	Link      string `json:"link"`
	Source    string `json:"source"`
	SourceURL string `json:"sourceUrl"`
	Date      string `json:"date"`
	Read      bool   `json:"read"`
	Starred   bool   `json:"starred"`
}

type listArticlesResponse struct {
	Articles []articleResponse `json:"articles"`
}

type toggleStarResponse struct {
	ArticleID string `json:"articleId"`
	Starred   bool   `json:"starred"`
}

type toggleReadResponse struct {
	ArticleID string `json:"articleId"`
	Read      bool   `json:"read"`
}

func NewArticleHandler(articles service.ArticleService, flags service.FlagService) *ArticleHandler {
	return &ArticleHandler{articles: articles, flags: flags}
}

func (h *ArticleHandler) RegisterRoutes(g *echo.Group) {
	g.GET("/articles", h.List)
	g.POST("/articles/:id/star", h.ToggleStar)
	g.POST("/articles/:id/read", h.ToggleRead)
}

func (h *ArticleHandler) List(c echo.Context) error {
	filter := store.ArticleFilter{
		FeedID:      c.QueryParam("feedId"),
		StarredOnly: c.QueryParam("starredOnly") == "true",
	}

	articles, err := h.articles.List(c.Request().Context(), filter)
	if err != nil {
		return WriteServiceError(c, err)
	}

	response := listArticlesResponse{Articles: make([]articleResponse, 0, len(articles))}
	for _, article := range articles {
		response.Articles = append(response.Articles, toArticleResponse(article))
	}
	return c.JSON(http.StatusOK, response)
}

func (h *ArticleHandler) ToggleStar(c echo.Context) error {
	id := c.Param("id")
	starred, err := h.flags.ToggleStar(c.Request().Context(), id)
	if err != nil {
		return WriteServiceError(c, err)
	}
	return c.JSON(http.StatusOK, toggleStarResponse{ArticleID: id, Starred: starred})
}

func (h *ArticleHandler) ToggleRead(c echo.Context) error {
	id := c.Param("id")
	read, err := h.flags.ToggleRead(c.Request().Context(), id)
	if err != nil {
		return WriteServiceError(c, err)
	}
	return c.JSON(http.StatusOK, toggleReadResponse{ArticleID: id, Read: read})
}

func toArticleResponse(article model.StarredArticle) articleResponse {
	return articleResponse{
		ID:        article.ID,
		FeedID:    article.FeedID,
		Title:     article.Title,
		Excerpt:   article.Excerpt,
		Link:      article.Link,
		Source:    article.Source,
		SourceURL: article.SourceURL,
		Date:      article.Date.UTC().Format(time.RFC3339),
		Read:      article.Read,
		Starred:   article.Starred,
	}
}
