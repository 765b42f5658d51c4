package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// SlotDuration is the fixed length of every availability slot.
const SlotDuration = 90 * time.Minute

// Slot is a fixed-length reservable time window tied to one service.
// Slots are created in bulk ahead of time by the service owner and flipped
// to unavailable at booking time; they are never deleted, only superseded.
type Slot struct {
	ID            int64            `gorm:"primaryKey"`
	ServiceID     int64            `gorm:"not null;uniqueIndex:idx_slots_service_start"`
	PartnerID     int64            `gorm:"index;not null"`
	StartTime     time.Time        `gorm:"not null;index;uniqueIndex:idx_slots_service_start"`
	EndTime       time.Time        `gorm:"not null"`
	IsAvailable   bool             `gorm:"not null;default:true"`
	PriceOverride *decimal.Decimal `gorm:"type:numeric(10,2)"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Duration returns the slot's time span.
func (s *Slot) Duration() time.Duration {
	return s.EndTime.Sub(s.StartTime)
}
