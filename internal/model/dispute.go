package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"marketplace-booking-backend/internal/booking"
)

// Dispute is a flagged disagreement about a booking. At most one exists per
// booking, enforced by the unique index on BookingID.
type Dispute struct {
	ID             uuid.UUID             `gorm:"type:uuid;primaryKey"`
	BookingID      int64                 `gorm:"uniqueIndex;not null"`
	RaisedByID     int64                 `gorm:"index;not null"`
	DisputedUserID int64                 `gorm:"not null"`
	Type           booking.DisputeType   `gorm:"size:25;not null"`
	Status         booking.DisputeStatus `gorm:"size:15;not null;default:'OPEN'"`
	Description    string                `gorm:"type:text;not null"`

	// Resolution
	Resolution       string           `gorm:"type:text"`
	ResolutionAmount *decimal.Decimal `gorm:"type:numeric(10,2)"`
	ResolvedByID     *int64
	ResolvedAt       *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// BeforeCreate assigns the dispute ID when the caller has not set one.
func (d *Dispute) BeforeCreate(*gorm.DB) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	return nil
}
