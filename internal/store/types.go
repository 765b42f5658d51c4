package store

import (
	"time"

	"github.com/shopspring/decimal"

	"marketplace-booking-backend/internal/booking"
	"marketplace-booking-backend/internal/model"
)

// BookingFilter narrows and orders a booking listing. The actor's role
// decides the base scope: clients see their own bookings, partners theirs,
// back-office roles everything.
type BookingFilter struct {
	ActorID   int64
	ActorRole model.UserRole

	Status *booking.Status
	From   *time.Time
	To     *time.Time

	// SortBy is one of date_asc, date_desc, amount_asc, amount_desc,
	// status. Empty means date_desc.
	SortBy   string
	Page     int
	PageSize int
}

// BookingStats aggregates a user's (or the whole platform's) booking figures.
type BookingStats struct {
	TotalBookings     int64           `json:"total_bookings"`
	PendingBookings   int64           `json:"pending_bookings"`
	ConfirmedBookings int64           `json:"confirmed_bookings"`
	CompletedBookings int64           `json:"completed_bookings"`
	CancelledBookings int64           `json:"cancelled_bookings"`
	AverageRating     float64         `json:"average_rating"`
	TotalRevenue      decimal.Decimal `json:"total_revenue"`
	CompletionRate    float64         `json:"completion_rate"`
}
