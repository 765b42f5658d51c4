package model

import (
	"time"

	"github.com/shopspring/decimal"

	"marketplace-booking-backend/internal/booking"
)

// Booking is a client's reservation of a service at a specific slot. It is
// created PENDING, mutated only through the transition table, and never
// deleted: cancellation is a status, not a row removal.
type Booking struct {
	ID            int64          `gorm:"primaryKey"`
	BookingNumber string         `gorm:"uniqueIndex;size:20;not null"`
	ClientID      int64          `gorm:"not null;index:idx_bookings_client_status"`
	PartnerID     int64          `gorm:"not null;index:idx_bookings_partner_status"`
	ServiceID     int64          `gorm:"index;not null"`
	SlotID        *int64         `gorm:"index"`
	Status        booking.Status `gorm:"size:15;not null;default:'PENDING';index:idx_bookings_client_status;index:idx_bookings_partner_status"`

	// Scheduling
	ScheduledStart time.Time `gorm:"index;not null"`
	ScheduledEnd   time.Time `gorm:"not null"`

	// Pricing, copied from the service (or slot override) at creation.
	BasePrice   decimal.Decimal `gorm:"type:numeric(10,2);not null"`
	TotalAmount decimal.Decimal `gorm:"type:numeric(10,2);not null"`
	Currency    string          `gorm:"size:3;not null"`

	// Notes
	ClientNotes  string `gorm:"type:text"`
	PartnerNotes string `gorm:"type:text"`

	// Ratings, one per side, written only after completion.
	ClientRating  *int   `gorm:"check:client_rating BETWEEN 1 AND 5"`
	ClientReview  string `gorm:"type:text"`
	PartnerRating *int   `gorm:"check:partner_rating BETWEEN 1 AND 5"`
	PartnerReview string `gorm:"type:text"`

	// Status timestamps
	ConfirmedAt        *time.Time
	StartedAt          *time.Time
	CompletedAt        *time.Time
	CancelledAt        *time.Time
	CancellationReason string `gorm:"type:text"`

	CreatedAt time.Time
	UpdatedAt time.Time

	// Associations
	StatusHistory []BookingStatusHistory `gorm:"foreignKey:BookingID"`
	Dispute       *Dispute               `gorm:"foreignKey:BookingID"`
}

// BookingStatusHistory is one immutable audit row per status change,
// strictly ordered within a booking by (created_at, id).
type BookingStatusHistory struct {
	ID          int64          `gorm:"primaryKey;autoIncrement"`
	BookingID   int64          `gorm:"index;not null"`
	OldStatus   booking.Status `gorm:"size:15"` // blank on the initial PENDING entry
	NewStatus   booking.Status `gorm:"size:15;not null"`
	ChangedByID *int64
	Notes       string    `gorm:"type:text"`
	CreatedAt   time.Time `gorm:"not null;index"`
}
