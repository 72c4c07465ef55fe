package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/findash/articledesk/app/analytics"
	"github.com/findash/articledesk/app/article"
	"github.com/findash/articledesk/app/backend"
	"github.com/findash/articledesk/app/favorites"
	"github.com/findash/articledesk/app/metrics"
	"github.com/findash/articledesk/app/store"
)

func NewHandler(store ArticleStore, favs FavoriteReconciler,
	classifier *article.Classifier, timelineLimit int, scrapeWebsites []string) *Handler {
	return &Handler{
		store:          store,
		favorites:      favs,
		classifier:     classifier,
		timelineLimit:  timelineLimit,
		scrapeWebsites: scrapeWebsites,
	}
}

// GetArticles serves the canonical article list, optionally filtered by the
// "q" query parameter.
func (h *Handler) GetArticles(c *gin.Context) {
	articles := analytics.Filter(h.store.Articles(), c.Query("q"))

	views := make([]articleView, 0, len(articles))
	for _, a := range articles {
		views = append(views, articleView{
			Article:     a,
			SourceMeta:  h.classifier.Classify(a.SourceLabel),
			CanFavorite: a.CanFavorite(),
			Favorited:   a.CanFavorite() && h.favorites.IsFavorited(a.DBID),
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"articles": views,
		"total":    len(views),
	})
}

// GetStats serves the aggregate statistics snapshot for the current article
// collection.
func (h *Handler) GetStats(c *gin.Context) {
	c.JSON(http.StatusOK, analytics.Aggregate(h.store.Articles()))
}

// GetTimeline serves the most recent articles, newest first.
func (h *Handler) GetTimeline(c *gin.Context) {
	limit := h.timelineLimit
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid limit parameter"})
			return
		}
		limit = parsed
	}

	ranked := analytics.Rank(h.store.Articles(), limit)
	c.JSON(http.StatusOK, gin.H{
		"articles": ranked,
		"total":    len(ranked),
	})
}

// RefreshArticles reloads the saved-article collection from the backend.
func (h *Handler) RefreshArticles(c *gin.Context) {
	count, err := h.store.Refresh(c.Request.Context())
	if err != nil {
		slog.Error("Article refresh failed", "error", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to load articles from the content backend"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"count":   count,
	})
}

// ScrapeArticles triggers a backend scrape. Parameters pass through to the
// backend unchanged.
func (h *Handler) ScrapeArticles(c *gin.Context) {
	params := backend.ScrapeParams{}

	if raw := c.Query("count"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid count parameter"})
			return
		}
		params.Count = parsed
	}
	if raw := c.Query("max_articles"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid max_articles parameter"})
			return
		}
		params.MaxArticles = parsed
	}
	if raw := c.Query("websites"); raw != "" {
		for _, site := range strings.Split(raw, ",") {
			if site = strings.TrimSpace(site); site != "" {
				params.Websites = append(params.Websites, site)
			}
		}
	}
	if len(params.Websites) == 0 {
		params.Websites = h.scrapeWebsites
	}

	count, message, err := h.store.Scrape(c.Request.Context(), params)
	if err != nil {
		if errors.Is(err, store.ErrStaleLoad) {
			c.JSON(http.StatusConflict, gin.H{"error": "Scrape result superseded by a newer load"})
			return
		}
		slog.Error("Scrape failed", "error", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "Scrape request to the content backend failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"count":   count,
		"message": message,
	})
}

// GetFavorites serves the currently favorited id set.
func (h *Handler) GetFavorites(c *gin.Context) {
	ids := h.favorites.FavoritedIDs()
	c.JSON(http.StatusOK, gin.H{
		"favorites": ids,
		"total":     len(ids),
	})
}

// ToggleFavorite flips favorite state for one article id. POST and DELETE
// are equivalent; the reconciler decides the direction from current state.
func (h *Handler) ToggleFavorite(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing article id parameter"})
		return
	}

	err := h.favorites.Toggle(c.Request.Context(), id)
	switch {
	case err == nil:
		metrics.FavoriteToggles.WithLabelValues("ok").Inc()
		c.JSON(http.StatusOK, gin.H{
			"success":   true,
			"favorited": h.favorites.IsFavorited(id),
		})
	case errors.Is(err, favorites.ErrTogglePending):
		metrics.FavoriteToggles.WithLabelValues("rejected").Inc()
		c.JSON(http.StatusConflict, gin.H{"error": "A toggle for this article is already in flight"})
	case errors.Is(err, favorites.ErrMissingID), errors.Is(err, favorites.ErrNotAuthenticated):
		metrics.FavoriteToggles.WithLabelValues("rejected").Inc()
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	default:
		metrics.FavoriteToggles.WithLabelValues("failed").Inc()
		slog.Error("Favorite toggle failed", "id", id, "error", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "Favorite update failed at the content backend"})
	}
}

// FavoriteAllVisible favorites every article in the current (optionally
// filtered) view that has a persistence id and is not yet favorited.
func (h *Handler) FavoriteAllVisible(c *gin.Context) {
	articles := analytics.Filter(h.store.Articles(), c.Query("q"))

	ids := make([]string, 0, len(articles))
	for _, a := range articles {
		if a.CanFavorite() {
			ids = append(ids, a.DBID)
		}
	}

	added, err := h.favorites.FavoriteAll(c.Request.Context(), ids)
	if err != nil {
		slog.Error("Favorite-all failed", "added", added, "error", err)
		c.JSON(http.StatusBadGateway, gin.H{
			"error": "Some favorite updates failed at the content backend",
			"added": added,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"added":   added,
	})
}

// GetHealth reports service liveness and snapshot freshness.
func (h *Handler) GetHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"timestamp": time.Now().In(time.Local).Format(time.RFC3339),
		"articles":  h.store.Count(),
		"sources":   h.classifier.RuleCount(),
	})
}
