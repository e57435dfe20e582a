package enums

import "fmt"

// SupportStatus tracks the handling state of a support message.
type SupportStatus string

const (
	SupportStatusOpen       SupportStatus = "open"
	SupportStatusInProgress SupportStatus = "in_progress"
	SupportStatusResolved   SupportStatus = "resolved"
)

var validSupportStatuses = []SupportStatus{
	SupportStatusOpen,
	SupportStatusInProgress,
	SupportStatusResolved,
}

// String implements fmt.Stringer.
func (s SupportStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known SupportStatus.
func (s SupportStatus) IsValid() bool {
	for _, candidate := range validSupportStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseSupportStatus converts raw input into a SupportStatus.
func ParseSupportStatus(value string) (SupportStatus, error) {
	for _, candidate := range validSupportStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid support status %q", value)
}

// CanTransitionTo encodes the support triage flow.
func (s SupportStatus) CanTransitionTo(next SupportStatus) bool {
	switch s {
	case SupportStatusOpen:
		return next == SupportStatusInProgress || next == SupportStatusResolved
	case SupportStatusInProgress:
		return next == SupportStatusResolved
	default:
		return false
	}
}
