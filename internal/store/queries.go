package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"marketplace-booking-backend/internal/booking"
	"marketplace-booking-backend/internal/model"
)

// historyOrder keeps history rows strictly ordered within a booking; the id
// tiebreaker covers rows created inside the same timestamp tick.
const historyOrder = "created_at, id"

// BookingByNumber loads a booking with its full ordered history and
// dispute, if any.
func (s *gormStore) BookingByNumber(ctx context.Context, number string) (*model.Booking, error) {
	var b model.Booking
	err := s.db.WithContext(ctx).
		Preload("StatusHistory", func(db *gorm.DB) *gorm.DB {
			return db.Order(historyOrder)
		}).
		Preload("Dispute").
		First(&b, "booking_number = ?", number).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, booking.NotFoundf("booking %s not found", number)
		}
		return nil, fmt.Errorf("failed to load booking %s: %w", number, err)
	}
	return &b, nil
}

// scopeForActor narrows a booking query to what the actor may see.
func scopeForActor(db *gorm.DB, actorID int64, role model.UserRole) *gorm.DB {
	switch {
	case role.IsStaff():
		return db
	case role == model.RolePartner:
		return db.Where("partner_id = ?", actorID)
	default:
		return db.Where("client_id = ?", actorID)
	}
}

// ListBookings returns one page of bookings visible to the filter's actor,
// plus the total match count.
func (s *gormStore) ListBookings(ctx context.Context, f BookingFilter) ([]model.Booking, int64, error) {
	q := scopeForActor(s.db.WithContext(ctx).Model(&model.Booking{}), f.ActorID, f.ActorRole)

	if f.Status != nil {
		q = q.Where("status = ?", *f.Status)
	}
	if f.From != nil {
		q = q.Where("scheduled_start >= ?", *f.From)
	}
	if f.To != nil {
		q = q.Where("scheduled_start <= ?", *f.To)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count bookings: %w", err)
	}

	switch f.SortBy {
	case "date_asc":
		q = q.Order("scheduled_start")
	case "amount_asc":
		q = q.Order("total_amount")
	case "amount_desc":
		q = q.Order("total_amount DESC")
	case "status":
		q = q.Order("status")
	default:
		q = q.Order("scheduled_start DESC")
	}

	page := f.Page
	if page < 1 {
		page = 1
	}
	pageSize := f.PageSize
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	var bookings []model.Booking
	if err := q.Offset((page - 1) * pageSize).Limit(pageSize).Find(&bookings).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list bookings: %w", err)
	}
	return bookings, total, nil
}

// BookingStats aggregates booking figures for the actor's scope in three
// grouped queries: status counts, average client rating, completed revenue.
func (s *gormStore) BookingStats(ctx context.Context, actorID int64, actorRole model.UserRole) (*BookingStats, error) {
	base := func() *gorm.DB {
		return scopeForActor(s.db.WithContext(ctx).Model(&model.Booking{}), actorID, actorRole)
	}

	type statusCount struct {
		Status booking.Status
		Count  int64
	}
	var counts []statusCount
	if err := base().
		Select("status, COUNT(*) as count").
		Group("status").
		Scan(&counts).Error; err != nil {
		return nil, fmt.Errorf("failed to aggregate booking statuses: %w", err)
	}

	stats := &BookingStats{}
	for _, c := range counts {
		stats.TotalBookings += c.Count
		switch c.Status {
		case booking.StatusPending:
			stats.PendingBookings = c.Count
		case booking.StatusConfirmed:
			stats.ConfirmedBookings = c.Count
		case booking.StatusCompleted:
			stats.CompletedBookings = c.Count
		case booking.StatusCancelled:
			stats.CancelledBookings = c.Count
		}
	}

	var avg sql.NullFloat64
	if err := base().
		Select("AVG(client_rating)").
		Where("status = ? AND client_rating IS NOT NULL", booking.StatusCompleted).
		Scan(&avg).Error; err != nil {
		return nil, fmt.Errorf("failed to average ratings: %w", err)
	}
	if avg.Valid {
		stats.AverageRating = avg.Float64
	}

	if actorRole == model.RolePartner || actorRole.IsStaff() {
		var revenue sql.NullFloat64
		if err := base().
			Select("COALESCE(SUM(total_amount), 0)").
			Where("status = ?", booking.StatusCompleted).
			Scan(&revenue).Error; err != nil {
			return nil, fmt.Errorf("failed to sum revenue: %w", err)
		}
		stats.TotalRevenue = decimal.NewFromFloat(revenue.Float64).Round(2)
	}

	if stats.TotalBookings > 0 {
		stats.CompletionRate = float64(stats.CompletedBookings) / float64(stats.TotalBookings) * 100
	}
	return stats, nil
}
