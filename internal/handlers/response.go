package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"cryptopredict/internal/services"

	"github.com/gin-gonic/gin"
)

// respondError maps service errors onto HTTP categories. Unknown errors
// are reported opaquely; no internal detail leaves the process.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrInvalidDeliveryTime),
		errors.Is(err, services.ErrAmountBelowMinimum),
		errors.Is(err, services.ErrInvalidAmount),
		errors.Is(err, services.ErrEmailTaken):
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
	case errors.Is(err, services.ErrInsufficientBalance):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"success": false, "message": err.Error()})
	case errors.Is(err, services.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": err.Error()})
	case errors.Is(err, services.ErrAlreadyApproved),
		errors.Is(err, services.ErrAlreadyFinalized):
		c.JSON(http.StatusConflict, gin.H{"success": false, "message": err.Error()})
	case errors.Is(err, services.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": err.Error()})
	case errors.Is(err, services.ErrOracleUnavailable):
		c.JSON(http.StatusServiceUnavailable, gin.H{"success": false, "message": "price feed temporarily unavailable"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "internal error"})
	}
}

// parsePagination reads limit/offset query parameters with sane bounds
func parsePagination(c *gin.Context) (int, int) {
	limit := 20
	offset := 0

	if l, ok := c.GetQuery("limit"); ok {
		if n, err := strconv.Atoi(l); err == nil && n > 0 && n <= 100 {
			limit = n
		}
	}
	if o, ok := c.GetQuery("offset"); ok {
		if n, err := strconv.Atoi(o); err == nil && n >= 0 {
			offset = n
		}
	}
	return limit, offset
}
