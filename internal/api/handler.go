package api

import (
	"log"
	"net/http"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/gin-gonic/gin"

	"marketplace-booking-backend/internal/booking"
	"marketplace-booking-backend/internal/notification"
	"marketplace-booking-backend/internal/store"
)

// Handler holds shared dependencies for API handlers.
type Handler struct {
	store    store.Store
	notifier *notification.WorkerPool
	webpush  *webpush.Options
}

// NewHandler creates a new API handler.
func NewHandler(s store.Store, notifier *notification.WorkerPool, webpushOptions *webpush.Options) *Handler {
	return &Handler{
		store:    s,
		notifier: notifier,
		webpush:  webpushOptions,
	}
}

// respondError maps a domain error onto an HTTP status. Unclassified errors
// are logged and hidden behind a generic message.
func respondError(c *gin.Context, err error) {
	var status int
	switch booking.KindOf(err) {
	case booking.KindValidation:
		status = http.StatusBadRequest
	case booking.KindUnauthorized:
		status = http.StatusForbidden
	case booking.KindNotFound:
		status = http.StatusNotFound
	case booking.KindConflict:
		status = http.StatusConflict
	default:
		log.Printf("internal error: %v", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}
	c.AbortWithStatusJSON(status, gin.H{"error": err.Error()})
}

// dispatch queues a notification when a worker pool is wired in.
func (h *Handler) dispatch(bookingID int64, event notification.Event) {
	if h.notifier != nil {
		h.notifier.Dispatch(bookingID, event)
	}
}
