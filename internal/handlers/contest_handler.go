package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/crownvote/pageant-backend/internal/models"
	"github.com/crownvote/pageant-backend/internal/services"
	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// ContestHandler handles contest-related HTTP requests
type ContestHandler struct {
	contestService  services.ContestService
	activityService *services.ActivityLogService
}

// NewContestHandler creates a new ContestHandler
func NewContestHandler(contestService services.ContestService, activityService *services.ActivityLogService) *ContestHandler {
	return &ContestHandler{
		contestService:  contestService,
		activityService: activityService,
	}
}

// ListContests handles GET /contests
func (h *ContestHandler) ListContests(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))

	contests, err := h.contestService.ListContests(c.Request.Context(), page, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list contests: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, contests)
}

// GetContest handles GET /contests/:id
func (h *ContestHandler) GetContest(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ID format"})
		return
	}

	contest, err := h.contestService.GetContest(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Contest not found"})
		return
	}

	c.JSON(http.StatusOK, contest)
}

// CreateContest handles POST /contests
func (h *ContestHandler) CreateContest(c *gin.Context) {
	var contest models.Contest
	if err := c.ShouldBindJSON(&contest); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.contestService.CreateContest(c.Request.Context(), &contest); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to create contest: " + err.Error()})
		return
	}

	h.activityService.Record(c.Request.Context(), actorFromContext(c), "CONTEST_CREATED", contest.ID.Hex(), map[string]any{"name": contest.Name})
	c.JSON(http.StatusCreated, contest)
}

// UpdateContest handles PUT /contests/:id
func (h *ContestHandler) UpdateContest(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ID format"})
		return
	}

	var contest models.Contest
	if err := c.ShouldBindJSON(&contest); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	contest.ID = id

	if err := h.contestService.UpdateContest(c.Request.Context(), &contest); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Contest not found"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to update contest: " + err.Error()})
		return
	}

	h.activityService.Record(c.Request.Context(), actorFromContext(c), "CONTEST_UPDATED", id.Hex(), map[string]any{"status": contest.Status})
	c.JSON(http.StatusOK, contest)
}

// DeleteContest handles DELETE /contests/:id
func (h *ContestHandler) DeleteContest(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ID format"})
		return
	}

	if err := h.contestService.DeleteContest(c.Request.Context(), id); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Contest not found"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to delete contest: " + err.Error()})
		return
	}

	h.activityService.Record(c.Request.Context(), actorFromContext(c), "CONTEST_DELETED", id.Hex(), nil)
	c.JSON(http.StatusOK, gin.H{"message": "Contest deleted"})
}

// GetContestStats handles GET /contests/:id/stats
func (h *ContestHandler) GetContestStats(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ID format"})
		return
	}

	stats, err := h.contestService.GetContestStats(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Contest not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get contest stats: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, stats)
}

// actorFromContext returns the authenticated admin's email, or "system" for
// unauthenticated paths
func actorFromContext(c *gin.Context) string {
	if email, ok := c.Get("userEmail"); ok {
		if s, ok := email.(string); ok && s != "" {
			return s
		}
	}
	return "system"
}
