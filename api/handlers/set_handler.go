// api/handlers/set_handler.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Annany2002/flashdeck-backend/api/middleware"
	"github.com/Annany2002/flashdeck-backend/api/models"
	"github.com/Annany2002/flashdeck-backend/internal/catalog"
	"github.com/Annany2002/flashdeck-backend/internal/domain"
)

// SetHandler serves card set authoring and reading.
type SetHandler struct {
	Svc *catalog.Service
}

func NewSetHandler(svc *catalog.Service) *SetHandler {
	return &SetHandler{Svc: svc}
}

func toSetInput(req *models.SetRequest) catalog.SetInput {
	cards := make([]domain.Card, 0, len(req.Flashcards))
	for _, fc := range req.Flashcards {
		cards = append(cards, domain.Card{Word: fc.Word, Translation: fc.Translation})
	}
	return catalog.SetInput{
		Title:       req.Title,
		Description: req.Description,
		Language:    req.Language,
		Category:    req.Category,
		Cards:       cards,
	}
}

// CreateSet handles POST /create_set/:username.
func (h *SetHandler) CreateSet(c *gin.Context) {
	creator := middleware.CurrentUser(c)

	var req models.SetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		customLog.Warnf("CreateSet binding error for %s: %v", creator, err)
		badRequest(c, err)
		return
	}

	setID, err := h.Svc.CreateSet(c.Request.Context(), creator, toSetInput(&req))
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Set created successfully", "setID": setID})
}

// EditSet handles POST /edit_set/:setID. The card list is replaced wholesale.
func (h *SetHandler) EditSet(c *gin.Context) {
	setID, ok := pathID(c, "setID")
	if !ok {
		return
	}

	var req models.SetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		customLog.Warnf("EditSet binding error for set %d: %v", setID, err)
		badRequest(c, err)
		return
	}

	if err := h.Svc.EditSet(c.Request.Context(), middleware.CurrentUser(c), setID, toSetInput(&req)); err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Set updated successfully", "setID": setID})
}

// DeleteSet handles GET /user/:username/delete/:setID.
func (h *SetHandler) DeleteSet(c *gin.Context) {
	setID, ok := pathID(c, "setID")
	if !ok {
		return
	}

	actor := middleware.CurrentUser(c)
	if err := h.Svc.DeleteSet(c.Request.Context(), actor, setID); err != nil {
		_ = c.Error(err)
		return
	}

	customLog.Printf("Set %d deleted by %s", setID, actor)
	c.JSON(http.StatusOK, gin.H{"message": "Set deleted successfully"})
}

// GetSet returns the raw set row as {"result": ...}.
func (h *SetHandler) GetSet(c *gin.Context) {
	setID, ok := pathID(c, "setID")
	if !ok {
		return
	}

	set, err := h.Svc.GetSet(c.Request.Context(), setID)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"result": set})
}

// GetFlashcards returns {"flashcards": [...]}; unknown sets give an empty list.
func (h *SetHandler) GetFlashcards(c *gin.Context) {
	setID, ok := pathID(c, "setID")
	if !ok {
		return
	}

	cards, err := h.Svc.GetFlashcards(c.Request.Context(), setID)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"flashcards": cards})
}

// ViewSet counts a view and returns the set projection with its cards.
func (h *SetHandler) ViewSet(c *gin.Context) {
	if _, ok := pathUsername(c); !ok {
		return
	}
	setID, ok := pathID(c, "setID")
	if !ok {
		return
	}

	view, err := h.Svc.ViewSet(c.Request.Context(), setID)
	if err != nil {
		_ = c.Error(err)
		return
	}
	cards, err := h.Svc.GetFlashcards(c.Request.Context(), setID)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"result": view, "flashcards": cards})
}
