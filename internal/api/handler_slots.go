package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"marketplace-booking-backend/internal/mw"
)

type createSlotsRequest struct {
	StartTimes []time.Time `json:"start_times" binding:"required,min=1"`
}

// CreateSlots handles POST /api/services/:service_id/slots. Each start time
// becomes one available 90-minute slot.
func (h *Handler) CreateSlots(c *gin.Context) {
	serviceID, err := strconv.ParseInt(c.Param("service_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid service ID"})
		return
	}

	var req createSlotsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	slots, err := h.store.CreateSlots(c.Request.Context(), mw.ActorID(c), mw.Role(c), serviceID, req.StartTimes)
	if err != nil {
		respondError(c, err)
		return
	}

	resp := make([]SlotResponse, 0, len(slots))
	for _, s := range slots {
		resp = append(resp, newSlotResponse(s))
	}
	c.JSON(http.StatusCreated, gin.H{"slots": resp})
}

// ListSlots handles GET /api/services/:service_id/slots, returning the
// service's available future slots. Range defaults to the next 30 days.
func (h *Handler) ListSlots(c *gin.Context) {
	serviceID, err := strconv.ParseInt(c.Param("service_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid service ID"})
		return
	}

	var from, to time.Time
	if v := c.Query("from"); v != "" {
		from, err = time.Parse(time.RFC3339, v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid 'from' timestamp format, use RFC3339"})
			return
		}
	}
	if v := c.Query("to"); v != "" {
		to, err = time.Parse(time.RFC3339, v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid 'to' timestamp format, use RFC3339"})
			return
		}
	}

	slots, err := h.store.AvailableSlots(c.Request.Context(), serviceID, from, to)
	if err != nil {
		respondError(c, err)
		return
	}

	resp := make([]SlotResponse, 0, len(slots))
	for _, s := range slots {
		resp = append(resp, newSlotResponse(s))
	}
	c.JSON(http.StatusOK, gin.H{"slots": resp})
}
