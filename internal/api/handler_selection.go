package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type selectionRequest struct {
	OrgID int64 `json:"orgId" binding:"required"`
}

// GetSelection handles GET /api/selection.
func (h *Handler) GetSelection(c *gin.Context) {
	ids := h.selection.IDs()
	if ids == nil {
		ids = []int64{}
	}
	c.JSON(http.StatusOK, gin.H{"selected": ids})
}

// PutSelection handles PUT /api/selection: add a facility to the comparison
// set. Adding an already-selected facility is a no-op.
func (h *Handler) PutSelection(c *gin.Context) {
	var req selectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	h.selection.Add(req.OrgID)
	c.Status(http.StatusNoContent)
}

// DeleteSelection handles DELETE /api/selection.
func (h *Handler) DeleteSelection(c *gin.Context) {
	var req selectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	h.selection.Remove(req.OrgID)
	c.Status(http.StatusNoContent)
}
