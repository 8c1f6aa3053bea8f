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

// CandidateHandler handles candidate-related HTTP requests
type CandidateHandler struct {
	candidateService services.CandidateService
	activityService  *services.ActivityLogService
}

// NewCandidateHandler creates a new CandidateHandler
func NewCandidateHandler(candidateService services.CandidateService, activityService *services.ActivityLogService) *CandidateHandler {
	return &CandidateHandler{
		candidateService: candidateService,
		activityService:  activityService,
	}
}

// ListByContest handles GET /contests/:id/candidates
func (h *CandidateHandler) ListByContest(c *gin.Context) {
	contestID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid contest ID format"})
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	candidates, err := h.candidateService.ListByContest(c.Request.Context(), contestID, page, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list candidates: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, candidates)
}

// GetCandidate handles GET /candidates/:id
func (h *CandidateHandler) GetCandidate(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ID format"})
		return
	}

	candidate, err := h.candidateService.GetCandidate(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Candidate not found"})
		return
	}

	c.JSON(http.StatusOK, candidate)
}

// CreateCandidate handles POST /contests/:id/candidates
func (h *CandidateHandler) CreateCandidate(c *gin.Context) {
	contestID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid contest ID format"})
		return
	}

	var candidate models.Candidate
	if err := c.ShouldBindJSON(&candidate); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	candidate.ContestID = contestID

	if err := h.candidateService.CreateCandidate(c.Request.Context(), &candidate); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Contest not found"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to create candidate: " + err.Error()})
		return
	}

	h.activityService.Record(c.Request.Context(), actorFromContext(c), "CANDIDATE_CREATED", candidate.ID.Hex(), map[string]any{"fullName": candidate.FullName})
	c.JSON(http.StatusCreated, candidate)
}

// UpdateCandidate handles PUT /candidates/:id
func (h *CandidateHandler) UpdateCandidate(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ID format"})
		return
	}

	var candidate models.Candidate
	if err := c.ShouldBindJSON(&candidate); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	candidate.ID = id

	if err := h.candidateService.UpdateCandidate(c.Request.Context(), &candidate); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Candidate not found"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to update candidate: " + err.Error()})
		return
	}

	h.activityService.Record(c.Request.Context(), actorFromContext(c), "CANDIDATE_UPDATED", id.Hex(), nil)
	c.JSON(http.StatusOK, candidate)
}

// SetApproval handles PUT /candidates/:id/approval
func (h *CandidateHandler) SetApproval(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ID format"})
		return
	}

	var request struct {
		Status models.ApprovalStatus `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	candidate, err := h.candidateService.SetApprovalStatus(c.Request.Context(), id, request.Status)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Candidate not found"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to update approval status: " + err.Error()})
		return
	}

	h.activityService.Record(c.Request.Context(), actorFromContext(c), "CANDIDATE_APPROVAL_CHANGED", id.Hex(), map[string]any{"status": request.Status})
	c.JSON(http.StatusOK, candidate)
}

// DeleteCandidate handles DELETE /candidates/:id
func (h *CandidateHandler) DeleteCandidate(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ID format"})
		return
	}

	if err := h.candidateService.DeleteCandidate(c.Request.Context(), id); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Candidate not found"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to delete candidate: " + err.Error()})
		return
	}

	h.activityService.Record(c.Request.Context(), actorFromContext(c), "CANDIDATE_DELETED", id.Hex(), nil)
	c.JSON(http.StatusOK, gin.H{"message": "Candidate deleted"})
}
