// api/handlers/collection_handler.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Annany2002/flashdeck-backend/api/middleware"
	"github.com/Annany2002/flashdeck-backend/internal/catalog"
)

// CollectionHandler serves a user's bookmarked sets.
type CollectionHandler struct {
	Svc *catalog.Service
}

func NewCollectionHandler(svc *catalog.Service) *CollectionHandler {
	return &CollectionHandler{Svc: svc}
}

// AddSet handles POST /user/:username/addSet/:setID.
func (h *CollectionHandler) AddSet(c *gin.Context) {
	setID, ok := pathID(c, "setID")
	if !ok {
		return
	}

	username := middleware.CurrentUser(c)
	if err := h.Svc.AddToCollection(c.Request.Context(), username, setID); err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Set added to collection", "setID": setID})
}

// RemoveSet handles POST /user/:username/removeSet/:setID. Removing a set
// that is not collected succeeds.
func (h *CollectionHandler) RemoveSet(c *gin.Context) {
	setID, ok := pathID(c, "setID")
	if !ok {
		return
	}

	username := middleware.CurrentUser(c)
	if err := h.Svc.RemoveFromCollection(c.Request.Context(), username, setID); err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Set removed from collection", "setID": setID})
}

// HasSet handles GET /user/:username/hasSet/:setID.
func (h *CollectionHandler) HasSet(c *gin.Context) {
	username, ok := pathUsername(c)
	if !ok {
		return
	}
	setID, ok := pathID(c, "setID")
	if !ok {
		return
	}

	has, err := h.Svc.HasSet(c.Request.Context(), username, setID)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"hasSet": has})
}
