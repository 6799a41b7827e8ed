package event

import "time"

// Event names carried on the finance_events queue.
const (
	EventMatchReviewRequired = "match.review_required"
	EventMatchAutoApproved   = "match.auto_approved"
	EventBillingRunCompleted = "billing_run.completed"
	EventBillingRunFailed    = "billing_run.failed"
	EventPaymentApplied      = "payment.applied"
)

// FinanceEvent is the envelope published for every finance notification.
// Consumers route on EventType; Data carries the record identifiers.
type FinanceEvent struct {
	EventType     string                 `json:"event_type"`
	AssociationID string                 `json:"association_id,omitempty"`
	Data          map[string]interface{} `json:"data,omitempty"`
	OccurredAt    time.Time              `json:"occurred_at"`
}

const FinanceEventsQueue string = "finance_events"
