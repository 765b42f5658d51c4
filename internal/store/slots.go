package store

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"marketplace-booking-backend/internal/booking"
	"marketplace-booking-backend/internal/model"
)

// CreateSlots produces one available slot per start time, each spanning
// exactly model.SlotDuration. Only the owning partner (or back-office staff)
// may create slots for a service.
func (s *gormStore) CreateSlots(ctx context.Context, actorID int64, actorRole model.UserRole, serviceID int64, startTimes []time.Time) ([]model.Slot, error) {
	if len(startTimes) == 0 {
		return nil, booking.Validationf("at least one start time is required")
	}

	seen := make(map[time.Time]bool, len(startTimes))
	for _, st := range startTimes {
		key := st.UTC()
		if seen[key] {
			return nil, booking.Validationf("duplicate start time %s", st.Format(time.RFC3339))
		}
		seen[key] = true
	}

	var created []model.Slot
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var svc model.Service
		if err := tx.First(&svc, serviceID).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return booking.NotFoundf("service %d not found", serviceID)
			}
			return err
		}

		if svc.PartnerID != actorID && !actorRole.IsStaff() {
			return booking.Unauthorizedf("only the service owner can create slots")
		}

		slots := make([]model.Slot, 0, len(startTimes))
		for _, st := range startTimes {
			slots = append(slots, model.Slot{
				ServiceID:   svc.ID,
				PartnerID:   svc.PartnerID,
				StartTime:   st,
				EndTime:     st.Add(model.SlotDuration),
				IsAvailable: true,
			})
		}

		if err := tx.Create(&slots).Error; err != nil {
			return fmt.Errorf("failed to create slots for service %d: %w", svc.ID, err)
		}
		created = slots
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// AvailableSlots lists a service's open future slots inside [from, to),
// ordered by start time. Zero bounds default to the next 30 days.
func (s *gormStore) AvailableSlots(ctx context.Context, serviceID int64, from, to time.Time) ([]model.Slot, error) {
	now := time.Now().UTC()
	if from.IsZero() || from.Before(now) {
		from = now
	}
	if to.IsZero() {
		to = from.Add(30 * 24 * time.Hour)
	}
	if !to.After(from) {
		return nil, booking.Validationf("time range end must be after start")
	}

	var slots []model.Slot
	err := s.db.WithContext(ctx).
		Where("service_id = ? AND is_available = ? AND start_time >= ? AND start_time < ?",
			serviceID, true, from, to).
		Order("start_time").
		Find(&slots).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list slots for service %d: %w", serviceID, err)
	}
	return slots, nil
}

// reserveSlot flips the availability flag with a guarded UPDATE so two
// concurrent reservations cannot both win: zero rows affected means another
// transaction already took the slot.
func reserveSlot(tx *gorm.DB, slotID int64) error {
	res := tx.Model(&model.Slot{}).
		Where("id = ? AND is_available = ?", slotID, true).
		Update("is_available", false)
	if res.Error != nil {
		return fmt.Errorf("failed to reserve slot %d: %w", slotID, res.Error)
	}
	if res.RowsAffected == 0 {
		return booking.Conflictf("slot is no longer available")
	}
	return nil
}

// releaseSlot re-opens a slot whose start is still ahead. Past slots stay
// consumed: there is nothing left to sell.
func releaseSlot(tx *gorm.DB, slotID int64, now time.Time) error {
	res := tx.Model(&model.Slot{}).
		Where("id = ? AND start_time > ?", slotID, now).
		Update("is_available", true)
	if res.Error != nil {
		return fmt.Errorf("failed to release slot %d: %w", slotID, res.Error)
	}
	return nil
}
