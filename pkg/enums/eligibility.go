package enums

import "fmt"

// Eligibility is the tri-state purchase permission resolved for an email.
type Eligibility string

const (
	EligibilityUnknown Eligibility = "unknown"
	EligibilityAllowed Eligibility = "allowed"
	EligibilityDenied  Eligibility = "denied"
)

var validEligibilities = []Eligibility{
	EligibilityUnknown,
	EligibilityAllowed,
	EligibilityDenied,
}

// EligibilityFromFlag maps a resolved canPurchase flag onto the tri-state.
func EligibilityFromFlag(canPurchase bool) Eligibility {
	if canPurchase {
		return EligibilityAllowed
	}
	return EligibilityDenied
}

// String implements fmt.Stringer.
func (e Eligibility) String() string {
	return string(e)
}

// IsValid reports whether the value is a known Eligibility.
func (e Eligibility) IsValid() bool {
	for _, candidate := range validEligibilities {
		if candidate == e {
			return true
		}
	}
	return false
}

// ParseEligibility converts raw input into an Eligibility.
func ParseEligibility(value string) (Eligibility, error) {
	for _, candidate := range validEligibilities {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid eligibility %q", value)
}
