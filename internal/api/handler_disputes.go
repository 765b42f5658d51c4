package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"marketplace-booking-backend/internal/booking"
	"marketplace-booking-backend/internal/mw"
)

type openDisputeRequest struct {
	DisputeType string `json:"dispute_type" binding:"required"`
	Description string `json:"description" binding:"required"`
}

// OpenDispute handles POST /api/bookings/:number/dispute. Opening a dispute
// forces the booking into DISPUTED.
func (h *Handler) OpenDispute(c *gin.Context) {
	var req openDisputeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	number := c.Param("number")
	d, err := h.store.OpenDispute(c.Request.Context(), number, mw.ActorID(c),
		booking.DisputeType(req.DisputeType), req.Description)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, newDisputeResponse(d, number))
}

type resolveDisputeRequest struct {
	Resolution string           `json:"resolution" binding:"required"`
	Amount     *decimal.Decimal `json:"amount"`
}

// ResolveDispute handles POST /api/disputes/:id/resolve. Restricted to
// back-office roles by the router; the parent booking is left DISPUTED for
// an explicit follow-up transition.
func (h *Handler) ResolveDispute(c *gin.Context) {
	disputeID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid dispute ID"})
		return
	}

	var req resolveDisputeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	d, err := h.store.ResolveDispute(c.Request.Context(), disputeID, mw.ActorID(c), req.Resolution, req.Amount)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newDisputeResponse(d, ""))
}
