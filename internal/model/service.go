package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Service is a service offering published by a partner. The booking core
// consumes it read-only: price, currency and duration are copied onto a
// booking at creation time.
type Service struct {
	ID              int64           `gorm:"primaryKey"`
	PartnerID       int64           `gorm:"index;not null"`
	Name            string          `gorm:"size:200;not null"`
	Description     string          `gorm:"type:text"`
	BasePrice       decimal.Decimal `gorm:"type:numeric(10,2);not null"`
	Currency        string          `gorm:"size:3;not null;default:'AOA'"`
	DurationMinutes int             `gorm:"not null;default:90"`
	IsActive        bool            `gorm:"not null;default:true"`
	CreatedAt       time.Time
	UpdatedAt       time.Time

	// Associations
	Partner User `gorm:"foreignKey:PartnerID"`
}
