package api

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"marketplace-booking-backend/internal/model"
)

// HistoryEntryResponse is one audit row of a booking's status history.
type HistoryEntryResponse struct {
	OldStatus string    `json:"old_status,omitempty"`
	NewStatus string    `json:"new_status"`
	ChangedBy *int64    `json:"changed_by,omitempty"`
	Notes     string    `json:"notes,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// DisputeResponse is the API shape of a booking dispute.
type DisputeResponse struct {
	ID               uuid.UUID        `json:"id"`
	BookingNumber    string           `json:"booking_number,omitempty"`
	Type             string           `json:"dispute_type"`
	Status           string           `json:"status"`
	Description      string           `json:"description"`
	RaisedBy         int64            `json:"raised_by"`
	Resolution       string           `json:"resolution,omitempty"`
	ResolutionAmount *decimal.Decimal `json:"resolution_amount,omitempty"`
	ResolvedBy       *int64           `json:"resolved_by,omitempty"`
	ResolvedAt       *time.Time       `json:"resolved_at,omitempty"`
	CreatedAt        time.Time        `json:"created_at"`
}

// BookingResponse is the API shape of a booking. Every mutation returns it
// together with the latest history entry; the detail view also carries the
// full history and the dispute, if any.
type BookingResponse struct {
	BookingNumber  string          `json:"booking_number"`
	Status         string          `json:"status"`
	ClientID       int64           `json:"client_id"`
	PartnerID      int64           `json:"partner_id"`
	ServiceID      int64           `json:"service_id"`
	SlotID         *int64          `json:"slot_id,omitempty"`
	ScheduledStart time.Time       `json:"scheduled_start"`
	ScheduledEnd   time.Time       `json:"scheduled_end"`
	TotalAmount    decimal.Decimal `json:"total_amount"`
	Currency       string          `json:"currency"`
	ClientNotes    string          `json:"client_notes,omitempty"`
	PartnerNotes   string          `json:"partner_notes,omitempty"`
	ClientRating   *int            `json:"client_rating,omitempty"`
	ClientReview   string          `json:"client_review,omitempty"`
	PartnerRating  *int            `json:"partner_rating,omitempty"`
	PartnerReview  string          `json:"partner_review,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`

	LatestHistory *HistoryEntryResponse  `json:"latest_history,omitempty"`
	StatusHistory []HistoryEntryResponse `json:"status_history,omitempty"`
	Dispute       *DisputeResponse       `json:"dispute,omitempty"`
}

// SlotResponse is the API shape of an availability slot.
type SlotResponse struct {
	ID            int64            `json:"id"`
	ServiceID     int64            `json:"service_id"`
	StartTime     time.Time        `json:"start_time"`
	EndTime       time.Time        `json:"end_time"`
	IsAvailable   bool             `json:"is_available"`
	PriceOverride *decimal.Decimal `json:"price_override,omitempty"`
}

func newHistoryEntryResponse(h model.BookingStatusHistory) HistoryEntryResponse {
	return HistoryEntryResponse{
		OldStatus: string(h.OldStatus),
		NewStatus: string(h.NewStatus),
		ChangedBy: h.ChangedByID,
		Notes:     h.Notes,
		CreatedAt: h.CreatedAt,
	}
}

func newDisputeResponse(d *model.Dispute, bookingNumber string) *DisputeResponse {
	return &DisputeResponse{
		ID:               d.ID,
		BookingNumber:    bookingNumber,
		Type:             string(d.Type),
		Status:           string(d.Status),
		Description:      d.Description,
		RaisedBy:         d.RaisedByID,
		Resolution:       d.Resolution,
		ResolutionAmount: d.ResolutionAmount,
		ResolvedBy:       d.ResolvedByID,
		ResolvedAt:       d.ResolvedAt,
		CreatedAt:        d.CreatedAt,
	}
}

// newBookingResponse flattens a booking. With detail set, the full ordered
// history and dispute are included; otherwise only the latest history entry.
func newBookingResponse(b *model.Booking, detail bool) BookingResponse {
	resp := BookingResponse{
		BookingNumber:  b.BookingNumber,
		Status:         string(b.Status),
		ClientID:       b.ClientID,
		PartnerID:      b.PartnerID,
		ServiceID:      b.ServiceID,
		SlotID:         b.SlotID,
		ScheduledStart: b.ScheduledStart,
		ScheduledEnd:   b.ScheduledEnd,
		TotalAmount:    b.TotalAmount,
		Currency:       b.Currency,
		ClientNotes:    b.ClientNotes,
		PartnerNotes:   b.PartnerNotes,
		ClientRating:   b.ClientRating,
		ClientReview:   b.ClientReview,
		PartnerRating:  b.PartnerRating,
		PartnerReview:  b.PartnerReview,
		CreatedAt:      b.CreatedAt,
	}

	if n := len(b.StatusHistory); n > 0 {
		latest := newHistoryEntryResponse(b.StatusHistory[n-1])
		resp.LatestHistory = &latest
	}
	if detail {
		for _, h := range b.StatusHistory {
			resp.StatusHistory = append(resp.StatusHistory, newHistoryEntryResponse(h))
		}
		if b.Dispute != nil {
			resp.Dispute = newDisputeResponse(b.Dispute, b.BookingNumber)
		}
	}
	return resp
}

func newSlotResponse(s model.Slot) SlotResponse {
	return SlotResponse{
		ID:            s.ID,
		ServiceID:     s.ServiceID,
		StartTime:     s.StartTime,
		EndTime:       s.EndTime,
		IsAvailable:   s.IsAvailable,
		PriceOverride: s.PriceOverride,
	}
}
