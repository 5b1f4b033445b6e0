package enums

import "fmt"

// WalletDirection distinguishes ledger credits from debits.
type WalletDirection string

const (
	WalletDirectionCredit WalletDirection = "credit"
	WalletDirectionDebit  WalletDirection = "debit"
)

var validWalletDirections = []WalletDirection{
	WalletDirectionCredit,
	WalletDirectionDebit,
}

// String implements fmt.Stringer.
func (w WalletDirection) String() string {
	return string(w)
}

// IsValid reports whether the value is a known WalletDirection.
func (w WalletDirection) IsValid() bool {
	for _, candidate := range validWalletDirections {
		if candidate == w {
			return true
		}
	}
	return false
}

// WalletTxStatus is the settlement state of a ledger entry. Entries written
// by the ledger are completed at creation; the enum exists for imports from
// adjoining systems.
type WalletTxStatus string

const (
	WalletTxStatusPending   WalletTxStatus = "pending"
	WalletTxStatusCompleted WalletTxStatus = "completed"
	WalletTxStatusFailed    WalletTxStatus = "failed"
)

var validWalletTxStatuses = []WalletTxStatus{
	WalletTxStatusPending,
	WalletTxStatusCompleted,
	WalletTxStatusFailed,
}

// String implements fmt.Stringer.
func (w WalletTxStatus) String() string {
	return string(w)
}

// IsValid reports whether the value is a known WalletTxStatus.
func (w WalletTxStatus) IsValid() bool {
	for _, candidate := range validWalletTxStatuses {
		if candidate == w {
			return true
		}
	}
	return false
}

// ParseWalletDirection converts raw input into a WalletDirection.
func ParseWalletDirection(value string) (WalletDirection, error) {
	for _, candidate := range validWalletDirections {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid wallet direction %q", value)
}
