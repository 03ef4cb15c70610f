package enums

import "fmt"

// SessionStatus tracks the lifecycle of a payment session.
type SessionStatus string

const (
	SessionStatusPending        SessionStatus = "pending"
	SessionStatusConfirmed      SessionStatus = "confirmed"
	SessionStatusExpired        SessionStatus = "expired"
	SessionStatusAwaitingReview SessionStatus = "awaiting_review"
)

var validSessionStatuses = []SessionStatus{
	SessionStatusPending,
	SessionStatusConfirmed,
	SessionStatusExpired,
	SessionStatusAwaitingReview,
}

// String implements fmt.Stringer.
func (s SessionStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known SessionStatus.
func (s SessionStatus) IsValid() bool {
	for _, candidate := range validSessionStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// IsSettled reports whether a waiter should stop polling on this status.
func (s SessionStatus) IsSettled() bool {
	switch s {
	case SessionStatusConfirmed, SessionStatusAwaitingReview, SessionStatusExpired:
		return true
	}
	return false
}

// ParseSessionStatus converts raw input into a SessionStatus.
func ParseSessionStatus(value string) (SessionStatus, error) {
	for _, candidate := range validSessionStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid session status %q", value)
}
