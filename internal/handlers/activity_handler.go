package handlers

import (
	"net/http"
	"strconv"

	"github.com/crownvote/pageant-backend/internal/services"
	"github.com/gin-gonic/gin"
)

// ActivityHandler handles activity log HTTP requests
type ActivityHandler struct {
	activityService *services.ActivityLogService
}

// NewActivityHandler creates a new ActivityHandler
func NewActivityHandler(activityService *services.ActivityLogService) *ActivityHandler {
	return &ActivityHandler{activityService: activityService}
}

// ListActivity handles GET /activity
func (h *ActivityHandler) ListActivity(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	entries, err := h.activityService.List(c.Request.Context(), page, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list activity: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, entries)
}

// GetActivityCount handles GET /activity/count
func (h *ActivityHandler) GetActivityCount(c *gin.Context) {
	count, err := h.activityService.Count(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count activity: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"count": count})
}
