package enums

import "fmt"

// InspectionStatus tracks a booked inspection through assignment and completion.
type InspectionStatus string

const (
	InspectionStatusPending   InspectionStatus = "pending"
	InspectionStatusAssigned  InspectionStatus = "assigned"
	InspectionStatusCompleted InspectionStatus = "completed"
)

var validInspectionStatuses = []InspectionStatus{
	InspectionStatusPending,
	InspectionStatusAssigned,
	InspectionStatusCompleted,
}

// String implements fmt.Stringer.
func (i InspectionStatus) String() string {
	return string(i)
}

// IsValid reports whether the value is a known InspectionStatus.
func (i InspectionStatus) IsValid() bool {
	for _, candidate := range validInspectionStatuses {
		if candidate == i {
			return true
		}
	}
	return false
}

// ParseInspectionStatus converts raw input into an InspectionStatus.
func ParseInspectionStatus(value string) (InspectionStatus, error) {
	for _, candidate := range validInspectionStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid inspection status %q", value)
}

// PaymentStatus tracks whether an inspection's fee has been settled.
type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusCompleted PaymentStatus = "completed"
)

var validPaymentStatuses = []PaymentStatus{
	PaymentStatusPending,
	PaymentStatusCompleted,
}

// String implements fmt.Stringer.
func (p PaymentStatus) String() string {
	return string(p)
}

// IsValid reports whether the value is a known PaymentStatus.
func (p PaymentStatus) IsValid() bool {
	for _, candidate := range validPaymentStatuses {
		if candidate == p {
			return true
		}
	}
	return false
}

// ParsePaymentStatus converts raw input into a PaymentStatus.
func ParsePaymentStatus(value string) (PaymentStatus, error) {
	for _, candidate := range validPaymentStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid payment status %q", value)
}
