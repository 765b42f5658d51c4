package store

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"marketplace-booking-backend/internal/booking"
	"marketplace-booking-backend/internal/model"
)

// CreateBooking reserves a slot and creates the booking against it in one
// transaction: slot reservation, booking row and initial history entry are
// all-or-nothing.
func (s *gormStore) CreateBooking(ctx context.Context, clientID, serviceID, slotID int64, notes string) (*model.Booking, error) {
	now := time.Now().UTC()

	var created *model.Booking
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var svc model.Service
		if err := tx.First(&svc, serviceID).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return booking.NotFoundf("service %d not found", serviceID)
			}
			return err
		}

		var slot model.Slot
		if err := tx.First(&slot, slotID).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return booking.NotFoundf("slot %d not found", slotID)
			}
			return err
		}

		if slot.ServiceID != svc.ID {
			return booking.Validationf("slot does not belong to the selected service")
		}
		if slot.Duration() != model.SlotDuration {
			return booking.Validationf("booking slots must be exactly %d minutes", int(model.SlotDuration.Minutes()))
		}
		if !slot.StartTime.After(now) {
			return booking.Conflictf("cannot book past time slots")
		}

		if err := reserveSlot(tx, slot.ID); err != nil {
			return err
		}

		price := svc.BasePrice
		if slot.PriceOverride != nil {
			price = *slot.PriceOverride
		}

		b := model.Booking{
			BookingNumber:  booking.NewNumber(),
			ClientID:       clientID,
			PartnerID:      svc.PartnerID,
			ServiceID:      svc.ID,
			SlotID:         &slot.ID,
			Status:         booking.StatusPending,
			ScheduledStart: slot.StartTime,
			ScheduledEnd:   slot.EndTime,
			BasePrice:      price,
			TotalAmount:    price,
			Currency:       svc.Currency,
			ClientNotes:    notes,
		}
		if err := tx.Create(&b).Error; err != nil {
			return fmt.Errorf("failed to create booking: %w", err)
		}

		hist := model.BookingStatusHistory{
			BookingID:   b.ID,
			NewStatus:   booking.StatusPending,
			ChangedByID: &clientID,
			Notes:       "booking created",
		}
		if err := tx.Create(&hist).Error; err != nil {
			return fmt.Errorf("failed to record booking history: %w", err)
		}

		b.StatusHistory = []model.BookingStatusHistory{hist}
		created = &b
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// TransitionBooking advances a booking along the transition table and
// appends the audit row. The status update carries the expected current
// status in its WHERE clause, so a concurrent transition makes this one
// fail instead of silently overwriting it.
func (s *gormStore) TransitionBooking(ctx context.Context, number string, actorID int64, actorRole model.UserRole, next booking.Status, notes string) (*model.Booking, error) {
	if !next.Valid() {
		return nil, booking.Validationf("unknown booking status %q", string(next))
	}

	now := time.Now().UTC()

	var updated *model.Booking
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		b, err := fetchBooking(tx, number)
		if err != nil {
			return err
		}

		if !isParty(b, actorID) && !actorRole.IsStaff() {
			return booking.Unauthorizedf("you are not a party to this booking")
		}

		if !b.Status.CanTransitionTo(next) {
			return booking.Conflictf("cannot transition from %s to %s", b.Status, next)
		}

		updates := map[string]any{"status": next, "updated_at": now}
		switch next {
		case booking.StatusConfirmed:
			updates["confirmed_at"] = now
		case booking.StatusInProgress:
			updates["started_at"] = now
		case booking.StatusCompleted:
			updates["completed_at"] = now
		case booking.StatusCancelled:
			updates["cancelled_at"] = now
			if notes != "" {
				updates["cancellation_reason"] = notes
			}
		}

		res := tx.Model(&model.Booking{}).
			Where("id = ? AND status = ?", b.ID, b.Status).
			Updates(updates)
		if res.Error != nil {
			return fmt.Errorf("failed to update booking %s: %w", number, res.Error)
		}
		if res.RowsAffected == 0 {
			return booking.Conflictf("booking %s was modified concurrently", number)
		}

		hist, err := appendHistory(tx, b, next, &actorID, notes)
		if err != nil {
			return err
		}

		if next == booking.StatusCancelled && s.opts.ReleaseSlotOnCancel && b.SlotID != nil {
			if err := releaseSlot(tx, *b.SlotID, now); err != nil {
				return err
			}
		}

		b.Status = next
		applyStatusTimestamp(b, next, now)
		b.StatusHistory = []model.BookingStatusHistory{hist}
		updated = b
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// appendHistory writes one immutable audit row for the move old -> next.
// Blank notes get an auto-generated message.
func appendHistory(tx *gorm.DB, b *model.Booking, next booking.Status, actorID *int64, notes string) (model.BookingStatusHistory, error) {
	if notes == "" {
		notes = fmt.Sprintf("status changed from %s to %s", b.Status, next)
	}
	hist := model.BookingStatusHistory{
		BookingID:   b.ID,
		OldStatus:   b.Status,
		NewStatus:   next,
		ChangedByID: actorID,
		Notes:       notes,
	}
	if err := tx.Create(&hist).Error; err != nil {
		return hist, fmt.Errorf("failed to record booking history: %w", err)
	}
	return hist, nil
}

func applyStatusTimestamp(b *model.Booking, next booking.Status, now time.Time) {
	switch next {
	case booking.StatusConfirmed:
		b.ConfirmedAt = &now
	case booking.StatusInProgress:
		b.StartedAt = &now
	case booking.StatusCompleted:
		b.CompletedAt = &now
	case booking.StatusCancelled:
		b.CancelledAt = &now
	}
}

// RateBooking records a rating for one side of a completed booking. The
// client rates the service outcome, the partner rates the client;
// re-rating overwrites the previous value for that side.
func (s *gormStore) RateBooking(ctx context.Context, number string, actorID int64, rating int, comment string) (*model.Booking, error) {
	if rating < 1 || rating > 5 {
		return nil, booking.Validationf("rating must be between 1 and 5")
	}

	var updated *model.Booking
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		b, err := fetchBooking(tx, number)
		if err != nil {
			return err
		}

		if !isParty(b, actorID) {
			return booking.Unauthorizedf("only the client or partner can rate this booking")
		}
		if b.Status != booking.StatusCompleted {
			return booking.Conflictf("only completed bookings can be rated")
		}

		updates := map[string]any{}
		if actorID == b.ClientID {
			updates["client_rating"] = rating
			updates["client_review"] = comment
			b.ClientRating = &rating
			b.ClientReview = comment
		} else {
			updates["partner_rating"] = rating
			updates["partner_review"] = comment
			b.PartnerRating = &rating
			b.PartnerReview = comment
		}

		if err := tx.Model(&model.Booking{}).Where("id = ?", b.ID).Updates(updates).Error; err != nil {
			return fmt.Errorf("failed to rate booking %s: %w", number, err)
		}
		updated = b
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}
