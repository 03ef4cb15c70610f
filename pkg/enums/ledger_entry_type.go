package enums

import "fmt"

// LedgerEntryType describes the direction of a coin ledger entry.
type LedgerEntryType string

const (
	LedgerEntryTypeEarn LedgerEntryType = "earn"
	LedgerEntryTypeBurn LedgerEntryType = "burn"
)

// String implements fmt.Stringer.
func (l LedgerEntryType) String() string {
	return string(l)
}

// IsValid reports whether the value is a known LedgerEntryType.
func (l LedgerEntryType) IsValid() bool {
	return l == LedgerEntryTypeEarn || l == LedgerEntryTypeBurn
}

// ParseLedgerEntryType converts raw input into a LedgerEntryType.
func ParseLedgerEntryType(value string) (LedgerEntryType, error) {
	entryType := LedgerEntryType(value)
	if !entryType.IsValid() {
		return "", fmt.Errorf("invalid ledger entry type %q", value)
	}
	return entryType, nil
}
