package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"facility-buddy-backend/internal/model"
)

type preferenceRequest struct {
	OrgID int64 `json:"orgId" binding:"required"`
}

// GetPreference handles GET /api/preference: the user's default facility.
func (h *Handler) GetPreference(c *gin.Context) {
	value, err := h.store.GetPreference(c.Request.Context(), model.PrefDesiredFacilityID)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if value == "" {
		c.JSON(http.StatusNotFound, gin.H{"error": "no default facility set"})
		return
	}
	orgID, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "corrupt preference value"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"orgId": orgID})
}

// PutPreference handles PUT /api/preference.
func (h *Handler) PutPreference(c *gin.Context) {
	var req preferenceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.store.SetPreference(c.Request.Context(), model.PrefDesiredFacilityID, strconv.FormatInt(req.OrgID, 10)); err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}

// ApplyPreference handles POST /api/preference/apply: point the upstream
// session at the default facility if it is not already there. This is the
// "make X your default facility" flow completing on the next page load.
func (h *Handler) ApplyPreference(c *gin.Context) {
	ctx := c.Request.Context()

	value, err := h.store.GetPreference(ctx, model.PrefDesiredFacilityID)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if value == "" {
		c.JSON(http.StatusNotFound, gin.H{"error": "no default facility set"})
		return
	}
	desired, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "corrupt preference value"})
		return
	}

	current, err := h.info.CurrentFacility(ctx)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	if current.OrgID == desired {
		c.JSON(http.StatusOK, gin.H{"orgId": desired, "applied": false})
		return
	}

	if _, err := h.info.SetFacility(ctx, desired); err != nil {
		c.AbortWithStatusJSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"orgId": desired, "applied": true})
}
