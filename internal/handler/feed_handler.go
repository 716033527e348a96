package handler

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"feedbox/backend/internal/model"
	"feedbox/backend/internal/service"
)

type FeedHandler struct {
	feeds   service.FeedService
	refresh service.RefreshService
}

type createFeedRequest struct {
	URL  string `json:"url"`
	Name string `json:"name"`
}

type feedResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	URL         string `json:"url"`
	LastFetched string `json:"lastFetched"`
}

type createFeedResponse struct {
	Feed          feedResponse `json:"feed"`
	ArticlesAdded int          `json:"articlesAdded"`
}

type feedPreviewResponse struct {
	URL         string `json:"url"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	ItemCount   int    `json:"itemCount"`
	LastUpdated string `json:"lastUpdated,omitempty"`
}

type refreshFeedResponse struct {
	Success     bool `json:"success"`
	NewArticles int  `json:"newArticles"`
}

type refreshResultEntry struct {
	FeedID      string `json:"feedId"`
	Name        string `json:"name"`
	NewArticles *int   `json:"newArticles,omitempty"`
	Error       string `json:"error,omitempty"`
}

type refreshAllResponse struct {
	Results []refreshResultEntry `json:"results"`
}

func NewFeedHandler(feeds service.FeedService, refresh service.RefreshService) *FeedHandler {
	return &FeedHandler{feeds: feeds, refresh: refresh}
}

func (h *FeedHandler) RegisterRoutes(g *echo.Group) {
	g.POST("/feeds", h.Create)
	g.GET("/feeds", h.List)
	g.GET("/feeds/preview", h.Preview)
	g.DELETE("/feeds/:id", h.Delete)
	g.POST("/feeds/:id/refresh", h.Refresh)
	g.POST("/refresh", h.RefreshAll)
}

func (h *FeedHandler) Create(c echo.Context) error {
	var req createFeedRequest
	if err := c.Bind(&req); err != nil {
		return Error(c, http.StatusBadRequest, "invalid request")
	}

	feed, added, err := h.feeds.Add(c.Request().Context(), req.URL, req.Name)
	if err != nil {
		// An unreachable or unparsable upstream is the caller's problem
		// at add time, not a gateway fault.
		if errors.Is(err, service.ErrFeedFetch) {
			return Error(c, http.StatusBadRequest, err.Error())
		}
		return WriteServiceError(c, err)
	}
	return c.JSON(http.StatusCreated, createFeedResponse{Feed: toFeedResponse(feed), ArticlesAdded: added})
}

func (h *FeedHandler) List(c echo.Context) error {
	feeds, err := h.feeds.List(c.Request().Context())
	if err != nil {
		return WriteServiceError(c, err)
	}
	response := make([]feedResponse, 0, len(feeds))
	for _, feed := range feeds {
		response = append(response, toFeedResponse(feed))
	}
	return c.JSON(http.StatusOK, response)
}

func (h *FeedHandler) Preview(c echo.Context) error {
	rawURL := strings.TrimSpace(c.QueryParam("url"))
	if rawURL == "" {
		return Error(c, http.StatusBadRequest, "invalid request")
	}
	preview, err := h.feeds.Preview(c.Request().Context(), rawURL)
	if err != nil {
		return WriteServiceError(c, err)
	}
	return c.JSON(http.StatusOK, feedPreviewResponse{
		URL:         preview.URL,
		Title:       preview.Title,
		Description: preview.Description,
		ItemCount:   preview.ItemCount,
		LastUpdated: preview.LastUpdated,
	})
}

func (h *FeedHandler) Delete(c echo.Context) error {
	if err := h.feeds.Delete(c.Request().Context(), c.Param("id")); err != nil {
		return WriteServiceError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]bool{"success": true})
}

func (h *FeedHandler) Refresh(c echo.Context) error {
	added, err := h.refresh.RefreshFeed(c.Request().Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, service.ErrFeedFetch) {
			return Error(c, http.StatusInternalServerError, err.Error())
		}
		return WriteServiceError(c, err)
	}
	return c.JSON(http.StatusOK, refreshFeedResponse{Success: true, NewArticles: added})
}

func (h *FeedHandler) RefreshAll(c echo.Context) error {
	results, err := h.refresh.RefreshAll(c.Request().Context())
	if err != nil {
		return WriteServiceError(c, err)
	}
	entries := make([]refreshResultEntry, 0, len(results))
	for _, result := range results {
		entry := refreshResultEntry{FeedID: result.FeedID, Name: result.Name}
		if result.Error != "" {
			entry.Error = result.Error
		} else {
			count := result.NewArticles
			entry.NewArticles = &count
		}
		entries = append(entries, entry)
	}
	return c.JSON(http.StatusOK, refreshAllResponse{Results: entries})
}

func toFeedResponse(feed model.Feed) feedResponse {
	return feedResponse{
		ID:          feed.ID,
		Name:        feed.Name,
		URL:         feed.URL,
		LastFetched: feed.LastFetched.UTC().Format(time.RFC3339),
	}
}
