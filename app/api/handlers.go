package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/bmitrev/vesnik/app/article"
	"github.com/bmitrev/vesnik/app/query"
)

// Handler serves read-only queries over a corpus loaded at startup.
// The harvest run owns the data directory, so the server works on an
// in-memory snapshot rather than re-reading files per request.
type Handler struct {
	collections map[string][]article.Article
	version     string
	startedAt   time.Time
}

func NewHandler(collections map[string][]article.Article, version string) *Handler {
	return &Handler{
		collections: collections,
		version:     version,
		startedAt:   time.Now().UTC(),
	}
}

func (h *Handler) GetHealth(c *gin.Context) {
	stats := query.ComputeStats(h.collections)

	c.JSON(http.StatusOK, gin.H{
		"status":     "ok",
		"version":    h.version,
		"uptime":     time.Since(h.startedAt).String(),
		"categories": stats.TotalCategories,
		"articles":   stats.TotalArticles,
	})
}

func (h *Handler) GetStats(c *gin.Context) {
	stats := query.ComputeStats(h.collections)

	perCategory := make([]gin.H, 0, len(stats.PerCategory))
	for _, row := range stats.PerCategory {
		perCategory = append(perCategory, gin.H{"category": row.Category, "count": row.Count})
	}

	c.JSON(http.StatusOK, gin.H{
		"total_articles":   stats.TotalArticles,
		"total_categories": stats.TotalCategories,
		"empty_text":       stats.EmptyText,
		"per_category":     perCategory,
	})
}

func (h *Handler) ListCategories(c *gin.Context) {
	stats := query.ComputeStats(h.collections)

	names := make([]string, 0, len(stats.PerCategory))
	for _, row := range stats.PerCategory {
		names = append(names, row.Category)
	}

	c.JSON(http.StatusOK, gin.H{
		"categories": names,
		"total":      len(names),
	})
}

func (h *Handler) GetCategory(c *gin.Context) {
	name := c.Param("name")

	articles, ok := h.collections[name]
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "category not found"})
		return
	}

	limit := len(articles)
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit parameter"})
			return
		}
		if parsed < limit {
			limit = parsed
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"category": name,
		"total":    len(articles),
		"articles": articles[:limit],
	})
}

func (h *Handler) Search(c *gin.Context) {
	q := c.Query("q")
	if q == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing q parameter"})
		return
	}

	matches := query.Search(h.collections, q, c.Query("category"))
	if matches == nil {
		matches = []query.Match{}
	}

	c.JSON(http.StatusOK, gin.H{
		"query":   q,
		"total":   len(matches),
		"results": matches,
	})
}
