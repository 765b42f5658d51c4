package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"marketplace-booking-backend/internal/booking"
	"marketplace-booking-backend/internal/model"
)

// OpenDispute creates the single dispute record for a booking and forces
// the parent booking into DISPUTED with a history entry, all in one
// transaction.
func (s *gormStore) OpenDispute(ctx context.Context, number string, raiserID int64, disputeType booking.DisputeType, description string) (*model.Dispute, error) {
	if !booking.ValidDisputeType(disputeType) {
		return nil, booking.Validationf("unknown dispute type %q", string(disputeType))
	}
	if description == "" {
		return nil, booking.Validationf("dispute description is required")
	}

	var created *model.Dispute
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		b, err := fetchBooking(tx, number)
		if err != nil {
			return err
		}

		if !isParty(b, raiserID) {
			return booking.Unauthorizedf("only the client or partner can open a dispute")
		}
		if !b.Status.CanTransitionTo(booking.StatusDisputed) {
			return booking.Conflictf("cannot transition from %s to %s", b.Status, booking.StatusDisputed)
		}

		var existing model.Dispute
		err = tx.Where("booking_id = ?", b.ID).First(&existing).Error
		if err == nil {
			return booking.Conflictf("a dispute already exists for booking %s", number)
		}
		if err != gorm.ErrRecordNotFound {
			return err
		}

		disputedUser := b.PartnerID
		if raiserID == b.PartnerID {
			disputedUser = b.ClientID
		}

		d := model.Dispute{
			BookingID:      b.ID,
			RaisedByID:     raiserID,
			DisputedUserID: disputedUser,
			Type:           disputeType,
			Status:         booking.DisputeStatusOpen,
			Description:    description,
		}
		if err := tx.Create(&d).Error; err != nil {
			return fmt.Errorf("failed to create dispute for booking %s: %w", number, err)
		}

		res := tx.Model(&model.Booking{}).
			Where("id = ? AND status = ?", b.ID, b.Status).
			Update("status", booking.StatusDisputed)
		if res.Error != nil {
			return fmt.Errorf("failed to mark booking %s disputed: %w", number, res.Error)
		}
		if res.RowsAffected == 0 {
			return booking.Conflictf("booking %s was modified concurrently", number)
		}

		if _, err := appendHistory(tx, b, booking.StatusDisputed, &raiserID,
			fmt.Sprintf("dispute opened: %s", description)); err != nil {
			return err
		}

		created = &d
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// ResolveDispute moves a dispute to RESOLVED and records who resolved it,
// when, and the optional settlement amount. The parent booking is left
// untouched; advancing it from DISPUTED is the caller's call.
func (s *gormStore) ResolveDispute(ctx context.Context, disputeID uuid.UUID, resolverID int64, resolution string, amount *decimal.Decimal) (*model.Dispute, error) {
	if resolution == "" {
		return nil, booking.Validationf("resolution text is required")
	}

	now := time.Now().UTC()

	var updated *model.Dispute
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var d model.Dispute
		if err := tx.First(&d, "id = ?", disputeID).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return booking.NotFoundf("dispute %s not found", disputeID)
			}
			return err
		}

		if !d.Status.CanTransitionTo(booking.DisputeStatusResolved) {
			return booking.Conflictf("cannot resolve a %s dispute", d.Status)
		}

		updates := map[string]any{
			"status":         booking.DisputeStatusResolved,
			"resolution":     resolution,
			"resolved_by_id": resolverID,
			"resolved_at":    now,
		}
		if amount != nil {
			updates["resolution_amount"] = *amount
		}

		res := tx.Model(&model.Dispute{}).
			Where("id = ? AND status = ?", d.ID, d.Status).
			Updates(updates)
		if res.Error != nil {
			return fmt.Errorf("failed to resolve dispute %s: %w", disputeID, res.Error)
		}
		if res.RowsAffected == 0 {
			return booking.Conflictf("dispute %s was modified concurrently", disputeID)
		}

		d.Status = booking.DisputeStatusResolved
		d.Resolution = resolution
		d.ResolutionAmount = amount
		d.ResolvedByID = &resolverID
		d.ResolvedAt = &now
		updated = &d
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}
