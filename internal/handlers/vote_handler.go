package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/crownvote/pageant-backend/internal/models"
	"github.com/crownvote/pageant-backend/internal/services"
	"github.com/crownvote/pageant-backend/pkg/paygate"
	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// WebhookVerifier checks a provider webhook body against its signature
type WebhookVerifier interface {
	VerifySignature(payload []byte, signature string) bool
}

// VoteHandler handles paid-vote HTTP requests: purchase initiation, the
// client confirm poll, the provider webhook, and quota lookups
type VoteHandler struct {
	settlementService services.SettlementService
	gateway           services.PaymentGateway
	verifier          WebhookVerifier
	skipSignature     bool // local development with the mock provider only
}

// NewVoteHandler creates a new VoteHandler
func NewVoteHandler(settlementService services.SettlementService, gateway services.PaymentGateway, verifier WebhookVerifier, skipSignature bool) *VoteHandler {
	return &VoteHandler{
		settlementService: settlementService,
		gateway:           gateway,
		verifier:          verifier,
		skipSignature:     skipSignature,
	}
}

// InitiateVote handles POST /votes/initiate
func (h *VoteHandler) InitiateVote(c *gin.Context) {
	var request struct {
		ContestID      string `json:"contestId" binding:"required"`
		CandidateID    string `json:"candidateId" binding:"required"`
		VoteCount      int    `json:"voteCount" binding:"required,gt=0"`
		ExpectedAmount int64  `json:"expectedAmount" binding:"required,gt=0"`
		PayerEmail     string `json:"payerEmail" binding:"required,email"`
		PayerPhone     string `json:"payerPhone"`
	}
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	contestID, err := primitive.ObjectIDFromHex(request.ContestID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid contest ID format"})
		return
	}
	candidateID, err := primitive.ObjectIDFromHex(request.CandidateID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid candidate ID format"})
		return
	}

	result, err := h.settlementService.Initiate(c.Request.Context(), &services.InitiateRequest{
		ContestID:      contestID,
		CandidateID:    candidateID,
		VoteCount:      request.VoteCount,
		ExpectedAmount: request.ExpectedAmount,
		PayerIdentity:  request.PayerEmail,
		PayerContact:   request.PayerPhone,
	})
	if err != nil {
		var quotaErr *services.QuotaExceededError
		switch {
		case errors.As(err, &quotaErr):
			c.JSON(http.StatusUnprocessableEntity, gin.H{
				"error":          quotaErr.Error(),
				"remainingQuota": quotaErr.Remaining,
			})
		case errors.Is(err, services.ErrContestNotOpen),
			errors.Is(err, services.ErrCandidateNotEligible),
			errors.Is(err, services.ErrAmountMismatch):
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to initiate vote purchase: " + err.Error()})
		}
		return
	}

	c.JSON(http.StatusCreated, result)
}

// ConfirmVote handles POST /votes/:ref/confirm. The client polls this after
// returning from the payment page; the handler asks the provider for the
// charge outcome and reports it to the settlement engine.
func (h *VoteHandler) ConfirmVote(c *gin.Context) {
	ref := c.Param("ref")

	charge, err := h.gateway.VerifyCharge(c.Request.Context(), ref)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to verify charge with provider: " + err.Error()})
		return
	}

	// The provider has not finalized the charge; nothing is reported so the
	// transaction stays PENDING and the client can poll again.
	if charge.Outcome == paygate.OutcomePending {
		c.JSON(http.StatusOK, gin.H{"transactionRef": ref, "status": models.TransactionStatusPending})
		return
	}

	status, err := h.settlementService.ReportOutcome(c.Request.Context(), ref, charge.Outcome, charge.ProviderRef, charge.RawPayload)
	if err != nil {
		if errors.Is(err, services.ErrTransactionNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Transaction not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to confirm vote purchase: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"transactionRef": ref, "status": status})
}

// HandleWebhook handles POST /webhooks/paygate. Providers retry deliveries
// and do not guarantee ordering, so the handler answers 200 for anything the
// engine processed or recognized as a duplicate, including unknown references.
func (h *VoteHandler) HandleWebhook(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read webhook body"})
		return
	}

	if !h.skipSignature {
		signature := c.GetHeader("X-Paygate-Signature")
		if signature == "" || !h.verifier.VerifySignature(body, signature) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid webhook signature"})
			return
		}
	}

	var payload struct {
		Event string `json:"event"`
		Data  struct {
			Reference   string `json:"reference"`
			ProviderRef string `json:"provider_ref"`
			Status      string `json:"status"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &payload); err != nil || payload.Data.Reference == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Malformed webhook payload"})
		return
	}

	outcome := paygate.NormalizeOutcome(payload.Data.Status)

	// Providers also emit progress events; only terminal outcomes are recorded
	if outcome == paygate.OutcomePending {
		c.JSON(http.StatusOK, gin.H{"transactionRef": payload.Data.Reference, "status": models.TransactionStatusPending})
		return
	}

	status, err := h.settlementService.ReportOutcome(c.Request.Context(), payload.Data.Reference, outcome, payload.Data.ProviderRef, body)
	if err != nil {
		if errors.Is(err, services.ErrTransactionNotFound) {
			// The provider retries on non-2xx; an unknown reference is not
			// worth a retry storm.
			c.JSON(http.StatusOK, gin.H{"status": "NOT_FOUND"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to process webhook: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"transactionRef": payload.Data.Reference, "status": status})
}

// RemainingQuota handles GET /votes/quota
func (h *VoteHandler) RemainingQuota(c *gin.Context) {
	contestID, err := primitive.ObjectIDFromHex(c.Query("contestId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid contest ID format"})
		return
	}
	payer := c.Query("payer")
	if payer == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "payer query parameter is required"})
		return
	}

	remaining, err := h.settlementService.RemainingQuota(c.Request.Context(), contestID, payer)
	if err != nil {
		if errors.Is(err, services.ErrContestNotOpen) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Contest not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get remaining quota: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"remaining": remaining})
}
