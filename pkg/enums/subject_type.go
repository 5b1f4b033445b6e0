package enums

import "fmt"

// SubjectType tags the party a commission, wallet entry, or withdrawal
// belongs to. Commissions, the wallet ledger, and withdrawals share one
// implementation each, parameterized by this tag.
type SubjectType string

const (
	SubjectTypeSeller      SubjectType = "seller"
	SubjectTypeDeliveryBoy SubjectType = "delivery_boy"
)

var validSubjectTypes = []SubjectType{
	SubjectTypeSeller,
	SubjectTypeDeliveryBoy,
}

// String implements fmt.Stringer.
func (s SubjectType) String() string {
	return string(s)
}

// IsValid reports whether the value is a known SubjectType.
func (s SubjectType) IsValid() bool {
	for _, candidate := range validSubjectTypes {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseSubjectType converts raw input into a SubjectType.
func ParseSubjectType(value string) (SubjectType, error) {
	for _, candidate := range validSubjectTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid subject type %q", value)
}
