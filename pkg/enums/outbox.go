package enums

import "fmt"

// OutboxAggregateType maps to the aggregate_type enum in Postgres.
type OutboxAggregateType string

const (
	AggregateTransaction  OutboxAggregateType = "transaction"
	AggregateProperty     OutboxAggregateType = "property"
	AggregateVerification OutboxAggregateType = "verification"
	AggregateInspection   OutboxAggregateType = "inspection"
	AggregateUser         OutboxAggregateType = "user"
)

var validAggregateTypes = []OutboxAggregateType{
	AggregateTransaction,
	AggregateProperty,
	AggregateVerification,
	AggregateInspection,
	AggregateUser,
}

// IsValid reports whether the value matches the canonical aggregate_type enum.
func (a OutboxAggregateType) IsValid() bool {
	for _, candidate := range validAggregateTypes {
		if candidate == a {
			return true
		}
	}
	return false
}

// ParseOutboxAggregateType converts raw input into OutboxAggregateType.
func ParseOutboxAggregateType(value string) (OutboxAggregateType, error) {
	for _, candidate := range validAggregateTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid aggregate type %q", value)
}

// OutboxEventType maps to the event_type enum in Postgres.
type OutboxEventType string

const (
	EventTokenPurchaseCompleted    OutboxEventType = "token_purchase_completed"
	EventInspectionPaymentSettled  OutboxEventType = "inspection_payment_settled"
	EventPaymentFailed             OutboxEventType = "payment_failed"
	EventPropertyApproved          OutboxEventType = "property_approved"
	EventPropertyRejected          OutboxEventType = "property_rejected"
	EventVerificationApproved      OutboxEventType = "verification_approved"
	EventVerificationRejected      OutboxEventType = "verification_rejected"
	EventUserSuspended             OutboxEventType = "user_suspended"
	EventUserReinstated            OutboxEventType = "user_reinstated"
	EventInspectionMarkedCompleted OutboxEventType = "inspection_marked_completed"
)

var validOutboxEventTypes = []OutboxEventType{
	EventTokenPurchaseCompleted,
	EventInspectionPaymentSettled,
	EventPaymentFailed,
	EventPropertyApproved,
	EventPropertyRejected,
	EventVerificationApproved,
	EventVerificationRejected,
	EventUserSuspended,
	EventUserReinstated,
	EventInspectionMarkedCompleted,
}

// IsValid reports whether the value matches the canonical event_type enum.
func (e OutboxEventType) IsValid() bool {
	for _, candidate := range validOutboxEventTypes {
		if candidate == e {
			return true
		}
	}
	return false
}

// ParseOutboxEventType converts raw input into OutboxEventType.
func ParseOutboxEventType(value string) (OutboxEventType, error) {
	for _, candidate := range validOutboxEventTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid event type %q", value)
}
