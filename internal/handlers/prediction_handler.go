package handlers

import (
	"net/http"

	"cryptopredict/internal/auth"
	"cryptopredict/internal/models"
	"cryptopredict/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type PredictionHandler struct {
	predictions *services.PredictionService
	settlements *services.SettlementService
}

func NewPredictionHandler(predictions *services.PredictionService, settlements *services.SettlementService) *PredictionHandler {
	return &PredictionHandler{
		predictions: predictions,
		settlements: settlements,
	}
}

// Stake creates a new prediction
// POST /api/predictions
func (h *PredictionHandler) Stake(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "unauthorized"})
		return
	}

	var req models.StakeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}

	prediction, err := h.predictions.Stake(c.Request.Context(), userID, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "prediction": prediction})
}

// GetPrediction retrieves a prediction by ID
// GET /api/predictions/:id
func (h *PredictionHandler) GetPrediction(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "invalid prediction id"})
		return
	}

	prediction, err := h.predictions.GetByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "prediction": prediction})
}

// ListMyPredictions retrieves the authenticated user's predictions
// GET /api/predictions
func (h *PredictionHandler) ListMyPredictions(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "unauthorized"})
		return
	}

	limit, offset := parsePagination(c)
	predictions, err := h.predictions.ListByUser(c.Request.Context(), userID, limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "predictions": predictions})
}

// GetTiers returns the delivery-time tier schedule
// GET /api/predictions/tiers
func (h *PredictionHandler) GetTiers(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"success": true, "tiers": h.predictions.Tiers()})
}

// ListOpenPredictions returns all predictions without a result yet
// GET /api/admin/predictions/open
func (h *PredictionHandler) ListOpenPredictions(c *gin.Context) {
	predictions, err := h.predictions.ListOpen(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "predictions": predictions})
}

// ForceResult applies the admin result override
// POST /api/admin/predictions/:id/result
func (h *PredictionHandler) ForceResult(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "invalid prediction id"})
		return
	}

	var req models.ForceResultRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}

	prediction, err := h.settlements.ForceResult(c.Request.Context(), id, *req.Success)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "prediction": prediction})
}
