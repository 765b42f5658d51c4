package store

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"marketplace-booking-backend/internal/booking"
	"marketplace-booking-backend/internal/model"
)

// Store defines the interface for all database operations of the booking core.
type Store interface {
	// DB exposes the underlying handle for collaborators that run their
	// own queries (subscription handlers, notification worker).
	DB() *gorm.DB

	// Slot registry
	CreateSlots(ctx context.Context, actorID int64, actorRole model.UserRole, serviceID int64, startTimes []time.Time) ([]model.Slot, error)
	AvailableSlots(ctx context.Context, serviceID int64, from, to time.Time) ([]model.Slot, error)

	// Booking lifecycle
	CreateBooking(ctx context.Context, clientID, serviceID, slotID int64, notes string) (*model.Booking, error)
	TransitionBooking(ctx context.Context, number string, actorID int64, actorRole model.UserRole, next booking.Status, notes string) (*model.Booking, error)
	RateBooking(ctx context.Context, number string, actorID int64, rating int, comment string) (*model.Booking, error)

	// Dispute resolution
	OpenDispute(ctx context.Context, number string, raiserID int64, disputeType booking.DisputeType, description string) (*model.Dispute, error)
	ResolveDispute(ctx context.Context, disputeID uuid.UUID, resolverID int64, resolution string, amount *decimal.Decimal) (*model.Dispute, error)

	// Queries
	BookingByNumber(ctx context.Context, number string) (*model.Booking, error)
	ListBookings(ctx context.Context, f BookingFilter) ([]model.Booking, int64, error)
	BookingStats(ctx context.Context, actorID int64, actorRole model.UserRole) (*BookingStats, error)
}

// Options tunes store behavior from configuration.
type Options struct {
	// ReleaseSlotOnCancel frees a booking's slot on cancellation when the
	// slot start is still in the future.
	ReleaseSlotOnCancel bool
}

// gormStore implements the Store interface using GORM.
type gormStore struct {
	db   *gorm.DB
	opts Options
}

// NewGormStore creates a new GORM-backed store.
func NewGormStore(db *gorm.DB, opts Options) Store {
	return &gormStore{db: db, opts: opts}
}

func (s *gormStore) DB() *gorm.DB {
	return s.db
}

// isParty reports whether the actor is the booking's client or partner.
func isParty(b *model.Booking, actorID int64) bool {
	return actorID == b.ClientID || actorID == b.PartnerID
}

// fetchBooking loads a booking by number inside the given handle, mapping a
// missing row to a domain not-found error keyed by booking number only.
func fetchBooking(tx *gorm.DB, number string) (*model.Booking, error) {
	var b model.Booking
	if err := tx.First(&b, "booking_number = ?", number).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, booking.NotFoundf("booking %s not found", number)
		}
		return nil, err
	}
	return &b, nil
}
