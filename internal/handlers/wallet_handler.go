package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"cryptopredict/internal/auth"
	"cryptopredict/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type WalletHandler struct {
	wallets *services.WalletService
	oracle  services.PriceOracle
}

func NewWalletHandler(wallets *services.WalletService, oracle services.PriceOracle) *WalletHandler {
	return &WalletHandler{wallets: wallets, oracle: oracle}
}

// GetWallet returns the authenticated user's wallet and balances
// GET /wallet
func (h *WalletHandler) GetWallet(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "unauthorized"})
		return
	}

	balances, err := h.wallets.GetBalances(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	wallet, err := h.wallets.GetWallet(c.Request.Context(), userID)
	if err != nil {
		// No wallet yet: the first balance-affecting operation creates it.
		c.JSON(http.StatusOK, gin.H{"success": true, "balances": balances})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"address":  wallet.Address,
		"invested": wallet.Invested,
		"balances": balances,
	})
}

// ListTransactions returns the user's ledger journal
// GET /transactions
func (h *WalletHandler) ListTransactions(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "unauthorized"})
		return
	}

	limit, offset := parsePagination(c)
	txs, err := h.wallets.ListTransactions(c.Request.Context(), userID, limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "transactions": txs})
}

// GetPrices returns current prices for the requested symbols
// GET /api/prices?symbols=btc,eth
func (h *WalletHandler) GetPrices(c *gin.Context) {
	raw := c.Query("symbols")
	if raw == "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "symbols query parameter required"})
		return
	}

	symbols := strings.Split(raw, ",")
	prices, err := h.oracle.GetPrices(c.Request.Context(), symbols)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "prices": prices})
}

// SetBalanceRequest is the payload for the admin absolute balance set
type SetBalanceRequest struct {
	UserID uint            `json:"user_id" binding:"required"`
	Symbol string          `json:"symbol" binding:"required"`
	Amount decimal.Decimal `json:"amount" binding:"required"`
}

// SetBalance sets a user's balance to an absolute amount
// POST /api/admin/wallet/balance
func (h *WalletHandler) SetBalance(c *gin.Context) {
	var req SetBalanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}

	if err := h.wallets.SetBalance(c.Request.Context(), req.UserID, req.Symbol, req.Amount); err != nil {
		respondError(c, err)
		return
	}

	balances, err := h.wallets.GetBalances(c.Request.Context(), req.UserID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "balances": balances})
}

// GetUserBalances returns balances for any user (admin view)
// GET /api/admin/wallet/:userId
func (h *WalletHandler) GetUserBalances(c *gin.Context) {
	userID, err := strconv.ParseUint(c.Param("userId"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "invalid user id"})
		return
	}

	balances, err := h.wallets.GetBalances(c.Request.Context(), uint(userID))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "balances": balances})
}
