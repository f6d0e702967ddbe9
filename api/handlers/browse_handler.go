// api/handlers/browse_handler.go
package handlers

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Annany2002/flashdeck-backend/api/models"
	"github.com/Annany2002/flashdeck-backend/internal/catalog"
	"github.com/Annany2002/flashdeck-backend/internal/core"
	"github.com/Annany2002/flashdeck-backend/internal/search"
	"github.com/Annany2002/flashdeck-backend/internal/storage"
)

// BrowseHandler serves explore pages, search, lookups and site stats.
type BrowseHandler struct {
	DB  *sql.DB
	Svc *catalog.Service
}

func NewBrowseHandler(db *sql.DB, svc *catalog.Service) *BrowseHandler {
	return &BrowseHandler{DB: db, Svc: svc}
}

// Ping reports liveness and database reachability.
func (h *BrowseHandler) Ping(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	if err := h.DB.PingContext(ctx); err != nil {
		customLog.Errorf("Ping: database unreachable: %v", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func listOptions(c *gin.Context) (catalog.ListOptions, bool) {
	opts, err := core.ParseListQueryOptions(c.Request.URL.Query())
	if err != nil {
		badRequest(c, err)
		return catalog.ListOptions{}, false
	}
	return catalog.ListOptions{
		Limit:  opts.Limit,
		Offset: opts.Offset,
		Order:  storage.SortOrder(opts.Order),
	}, true
}

// Explore handles GET /user/:username/explore.
func (h *BrowseHandler) Explore(c *gin.Context) {
	if _, ok := pathUsername(c); !ok {
		return
	}
	opts, ok := listOptions(c)
	if !ok {
		return
	}

	page, err := h.Svc.Explore(c.Request.Context(), opts)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, page)
}

// ExploreGroup handles GET /user/:username/explore/:group/:index.
func (h *BrowseHandler) ExploreGroup(c *gin.Context) {
	if _, ok := pathUsername(c); !ok {
		return
	}
	sel, err := core.ParseExploreSelector(c.Param("group"), c.Param("index"))
	if err != nil {
		badRequest(c, err)
		return
	}
	opts, ok := listOptions(c)
	if !ok {
		return
	}

	page, err := h.Svc.ExploreGroup(c.Request.Context(), sel, opts)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, page)
}

// QuickSearch handles POST /quickSearch/:username.
func (h *BrowseHandler) QuickSearch(c *gin.Context) {
	var req models.QuickSearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	results, err := h.Svc.QuickSearch(c.Request.Context(), req.Query)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"results": results})
}

// AdvancedSearch handles POST /advancedSearch/:username.
func (h *BrowseHandler) AdvancedSearch(c *gin.Context) {
	var req models.AdvancedSearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	results, err := h.Svc.AdvancedSearch(c.Request.Context(), search.AdvancedParams{
		Title:       req.Title,
		Description: req.Description,
		Creator:     req.Creator,
		Language:    int64(req.Language),
		Category:    int64(req.Category),
	})
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"results": results})
}

func (h *BrowseHandler) Languages(c *gin.Context) {
	languages, err := h.Svc.Languages(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"languages": languages})
}

func (h *BrowseHandler) Categories(c *gin.Context) {
	categories, err := h.Svc.Categories(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"categories": categories})
}

// Stats returns site-wide row counts.
func (h *BrowseHandler) Stats(c *gin.Context) {
	totals, err := h.Svc.Stats(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, totals)
}
