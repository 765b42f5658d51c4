package booking

// DisputeStatus is the lifecycle state of a booking dispute.
type DisputeStatus string

const (
	DisputeStatusOpen     DisputeStatus = "OPEN"
	DisputeStatusInReview DisputeStatus = "IN_REVIEW"
	DisputeStatusResolved DisputeStatus = "RESOLVED"
	DisputeStatusClosed   DisputeStatus = "CLOSED"
)

var disputeTransitions = map[DisputeStatus][]DisputeStatus{
	DisputeStatusOpen:     {DisputeStatusInReview, DisputeStatusResolved, DisputeStatusClosed},
	DisputeStatusInReview: {DisputeStatusResolved, DisputeStatusClosed},
}

// CanTransitionTo reports whether the move s -> next is allowed.
func (s DisputeStatus) CanTransitionTo(next DisputeStatus) bool {
	for _, allowed := range disputeTransitions[s] {
		if next == allowed {
			return true
		}
	}
	return false
}

// DisputeType categorizes what a dispute is about.
type DisputeType string

const (
	DisputeTypeServiceNotProvided DisputeType = "SERVICE_NOT_PROVIDED"
	DisputeTypePoorQuality        DisputeType = "POOR_QUALITY"
	DisputeTypeBillingIssue       DisputeType = "BILLING_ISSUE"
	DisputeTypeCancellation       DisputeType = "CANCELLATION"
	DisputeTypeOther              DisputeType = "OTHER"
)

// ValidDisputeType reports whether t is a declared dispute type.
func ValidDisputeType(t DisputeType) bool {
	switch t {
	case DisputeTypeServiceNotProvided, DisputeTypePoorQuality,
		DisputeTypeBillingIssue, DisputeTypeCancellation, DisputeTypeOther:
		return true
	}
	return false
}
