package enums

import "fmt"

// WithdrawStatus tracks an admin-reviewed withdrawal request.
// Pending → Approved → Completed, or Pending → Rejected (terminal).
type WithdrawStatus string

const (
	WithdrawStatusPending   WithdrawStatus = "pending"
	WithdrawStatusApproved  WithdrawStatus = "approved"
	WithdrawStatusRejected  WithdrawStatus = "rejected"
	WithdrawStatusCompleted WithdrawStatus = "completed"
)

var validWithdrawStatuses = []WithdrawStatus{
	WithdrawStatusPending,
	WithdrawStatusApproved,
	WithdrawStatusRejected,
	WithdrawStatusCompleted,
}

// String implements fmt.Stringer.
func (w WithdrawStatus) String() string {
	return string(w)
}

// IsValid reports whether the value is a known WithdrawStatus.
func (w WithdrawStatus) IsValid() bool {
	for _, candidate := range validWithdrawStatuses {
		if candidate == w {
			return true
		}
	}
	return false
}

// ParseWithdrawStatus converts raw input into a WithdrawStatus.
func ParseWithdrawStatus(value string) (WithdrawStatus, error) {
	for _, candidate := range validWithdrawStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid withdraw status %q", value)
}

// WithdrawAction is the admin decision applied to a pending request.
type WithdrawAction string

const (
	WithdrawActionApprove WithdrawAction = "approve"
	WithdrawActionReject  WithdrawAction = "reject"
)

// ParseWithdrawAction converts raw input into a WithdrawAction.
func ParseWithdrawAction(value string) (WithdrawAction, error) {
	switch WithdrawAction(value) {
	case WithdrawActionApprove:
		return WithdrawActionApprove, nil
	case WithdrawActionReject:
		return WithdrawActionReject, nil
	}
	return "", fmt.Errorf("invalid withdraw action %q", value)
}
