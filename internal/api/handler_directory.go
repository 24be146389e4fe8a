package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"facility-buddy-backend/internal/directory"
)

// GetFacilities handles GET /api/facilities. The directory is refreshed
// first if it is stale or incomplete.
func (h *Handler) GetFacilities(c *gin.Context) {
	dir, err := h.directory.EnsureFresh(c.Request.Context(), false)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, dir)
}

// RefreshFacilities handles POST /api/facilities/refresh: a forced full
// rebuild of the directory.
func (h *Handler) RefreshFacilities(c *gin.Context) {
	dir, err := h.directory.EnsureFresh(c.Request.Context(), true)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, dir)
}

// GetNearby handles GET /api/facilities/:org_id/nearby.
func (h *Handler) GetNearby(c *gin.Context) {
	orgID, err := strconv.ParseInt(c.Param("org_id"), 10, 64)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid facility ID"})
		return
	}

	count := h.nearbyCount
	if raw := c.Query("count"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			count = n
		}
	}

	dir, err := h.directory.EnsureFresh(c.Request.Context(), false)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, directory.Nearby(dir.Facilities, orgID, count))
}
