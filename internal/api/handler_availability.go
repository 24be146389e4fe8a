package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

// parseDate reads the ?date=YYYY-MM-DD query parameter, defaulting to today.
func parseDate(c *gin.Context) (time.Time, bool) {
	raw := c.Query("date")
	if raw == "" {
		return time.Now(), true
	}
	date, err := time.Parse("2006-01-02", raw)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid date, expected YYYY-MM-DD"})
		return time.Time{}, false
	}
	return date, true
}

// GetAvailability handles GET /api/facilities/:org_id/availability.
func (h *Handler) GetAvailability(c *gin.Context) {
	orgID, err := strconv.ParseInt(c.Param("org_id"), 10, 64)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid facility ID"})
		return
	}

	date, ok := parseDate(c)
	if !ok {
		return
	}

	slots, err := h.aggregator.GetOrFetch(c.Request.Context(), orgID, date)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"orgId": orgID, "date": date.Format("2006-01-02"), "slots": slots})
}

// GetComparison handles GET /api/comparison: availability for every facility
// in the selection set, side by side. Facilities whose fetch failed are
// simply absent; partial data beats a blocking error.
func (h *Handler) GetComparison(c *gin.Context) {
	date, ok := parseDate(c)
	if !ok {
		return
	}

	result := h.aggregator.RenderSet(c.Request.Context(), h.selection, date)
	c.JSON(http.StatusOK, gin.H{"date": date.Format("2006-01-02"), "facilities": result})
}
