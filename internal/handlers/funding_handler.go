package handlers

import (
	"net/http"

	"cryptopredict/internal/auth"
	"cryptopredict/internal/models"
	"cryptopredict/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type FundingHandler struct {
	funding *services.FundingService
}

func NewFundingHandler(funding *services.FundingService) *FundingHandler {
	return &FundingHandler{funding: funding}
}

// RequestDeposit submits a deposit claim with payment proof
// POST /api/deposits
func (h *FundingHandler) RequestDeposit(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "unauthorized"})
		return
	}

	var req models.DepositRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}

	deposit, err := h.funding.RequestDeposit(c.Request.Context(), userID, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "deposit": deposit})
}

// Withdraw converts held asset to cash at the current price
// POST /api/withdraw
func (h *FundingHandler) Withdraw(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "unauthorized"})
		return
	}

	var req models.WithdrawRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}

	withdraw, err := h.funding.Withdraw(c.Request.Context(), userID, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "withdraw": withdraw})
}

// Send requests an outbound transfer; the asset is debited immediately
// POST /api/send
func (h *FundingHandler) Send(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "unauthorized"})
		return
	}

	var req models.SendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}

	send, err := h.funding.Send(c.Request.Context(), userID, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "send": send})
}

// ListPendingDeposits returns the admin approval queue
// GET /api/admin/deposits/pending
func (h *FundingHandler) ListPendingDeposits(c *gin.Context) {
	deposits, err := h.funding.ListPendingDeposits(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "deposits": deposits})
}

// ApproveDeposit credits an approved deposit exactly once
// POST /api/admin/deposits/:id/approve
func (h *FundingHandler) ApproveDeposit(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "invalid deposit id"})
		return
	}

	deposit, err := h.funding.ApproveDeposit(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "deposit": deposit})
}

// ListPendingSends returns pending outbound transfers
// GET /api/admin/sends/pending
func (h *FundingHandler) ListPendingSends(c *gin.Context) {
	sends, err := h.funding.ListPendingSends(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "sends": sends})
}

// UpdateSendStatus completes or rejects a pending send
// POST /api/admin/sends/:id/status
func (h *FundingHandler) UpdateSendStatus(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "invalid send id"})
		return
	}

	var req models.UpdateSendStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}

	send, err := h.funding.UpdateSendStatus(c.Request.Context(), id, req.Status)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "send": send})
}
