package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"marketplace-booking-backend/internal/booking"
	"marketplace-booking-backend/internal/mw"
	"marketplace-booking-backend/internal/notification"
	"marketplace-booking-backend/internal/store"
)

type createBookingRequest struct {
	ServiceID int64  `json:"service_id" binding:"required"`
	SlotID    int64  `json:"slot_id" binding:"required"`
	Notes     string `json:"notes"`
}

// CreateBooking handles POST /api/bookings. The authenticated actor becomes
// the booking's client.
func (h *Handler) CreateBooking(c *gin.Context) {
	var req createBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	b, err := h.store.CreateBooking(c.Request.Context(), mw.ActorID(c), req.ServiceID, req.SlotID, req.Notes)
	if err != nil {
		respondError(c, err)
		return
	}

	h.dispatch(b.ID, notification.EventBookingCreated)
	c.JSON(http.StatusCreated, newBookingResponse(b, false))
}

// ListBookings handles GET /api/bookings with filtering, sorting and
// pagination. The actor's role scopes what is visible.
func (h *Handler) ListBookings(c *gin.Context) {
	f := store.BookingFilter{
		ActorID:   mw.ActorID(c),
		ActorRole: mw.Role(c),
		SortBy:    c.Query("sort_by"),
	}

	if v := c.Query("status"); v != "" {
		status := booking.Status(v)
		if !status.Valid() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown booking status"})
			return
		}
		f.Status = &status
	}
	if v := c.Query("from"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid 'from' timestamp format, use RFC3339"})
			return
		}
		f.From = &t
	}
	if v := c.Query("to"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid 'to' timestamp format, use RFC3339"})
			return
		}
		f.To = &t
	}
	f.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	f.PageSize, _ = strconv.Atoi(c.DefaultQuery("page_size", "20"))

	bookings, total, err := h.store.ListBookings(c.Request.Context(), f)
	if err != nil {
		respondError(c, err)
		return
	}

	results := make([]BookingResponse, 0, len(bookings))
	for i := range bookings {
		results = append(results, newBookingResponse(&bookings[i], false))
	}
	c.JSON(http.StatusOK, gin.H{
		"results": results,
		"count":   total,
	})
}

// GetBooking handles GET /api/bookings/:number, returning the full detail
// view. Only the booking's parties and back-office roles may read it.
func (h *Handler) GetBooking(c *gin.Context) {
	b, err := h.store.BookingByNumber(c.Request.Context(), c.Param("number"))
	if err != nil {
		respondError(c, err)
		return
	}

	actorID := mw.ActorID(c)
	if actorID != b.ClientID && actorID != b.PartnerID && !mw.Role(c).IsStaff() {
		respondError(c, booking.Unauthorizedf("you are not a party to this booking"))
		return
	}

	c.JSON(http.StatusOK, newBookingResponse(b, true))
}

type updateStatusRequest struct {
	Status string `json:"status" binding:"required"`
	Notes  string `json:"notes"`
}

// UpdateStatus handles POST /api/bookings/:number/status, advancing the
// booking along the transition table.
func (h *Handler) UpdateStatus(c *gin.Context) {
	var req updateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	next := booking.Status(req.Status)
	b, err := h.store.TransitionBooking(c.Request.Context(), c.Param("number"), mw.ActorID(c), mw.Role(c), next, req.Notes)
	if err != nil {
		respondError(c, err)
		return
	}

	if next == booking.StatusConfirmed {
		h.dispatch(b.ID, notification.EventBookingConfirmed)
	}
	c.JSON(http.StatusOK, newBookingResponse(b, false))
}

type rateBookingRequest struct {
	Rating  int    `json:"rating" binding:"required"`
	Comment string `json:"comment"`
}

// RateBooking handles POST /api/bookings/:number/rating. The client rates
// the service outcome, the partner rates the client.
func (h *Handler) RateBooking(c *gin.Context) {
	var req rateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	b, err := h.store.RateBooking(c.Request.Context(), c.Param("number"), mw.ActorID(c), req.Rating, req.Comment)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newBookingResponse(b, false))
}

// GetStats handles GET /api/bookings/stats, aggregating booking figures for
// the actor's scope.
func (h *Handler) GetStats(c *gin.Context) {
	stats, err := h.store.BookingStats(c.Request.Context(), mw.ActorID(c), mw.Role(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}
