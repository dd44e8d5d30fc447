package enums

import "fmt"

// CheckoutPhase tracks where a visitor is in the checkout flow.
type CheckoutPhase string

const (
	CheckoutPhaseIdle           CheckoutPhase = "idle"
	CheckoutPhaseMethodsLoading CheckoutPhase = "methods_loading"
	CheckoutPhaseMethodsReady   CheckoutPhase = "methods_ready"
	CheckoutPhaseSubmitting     CheckoutPhase = "submitting"
	CheckoutPhaseSucceeded      CheckoutPhase = "succeeded"
	CheckoutPhaseFailed         CheckoutPhase = "failed"
)

var validCheckoutPhases = []CheckoutPhase{
	CheckoutPhaseIdle,
	CheckoutPhaseMethodsLoading,
	CheckoutPhaseMethodsReady,
	CheckoutPhaseSubmitting,
	CheckoutPhaseSucceeded,
	CheckoutPhaseFailed,
}

// checkoutTransitions lists the phases reachable from each phase.
var checkoutTransitions = map[CheckoutPhase][]CheckoutPhase{
	CheckoutPhaseIdle:           {CheckoutPhaseMethodsLoading},
	CheckoutPhaseMethodsLoading: {CheckoutPhaseMethodsReady, CheckoutPhaseIdle},
	CheckoutPhaseMethodsReady:   {CheckoutPhaseSubmitting, CheckoutPhaseMethodsLoading},
	CheckoutPhaseSubmitting:     {CheckoutPhaseSucceeded, CheckoutPhaseFailed},
	CheckoutPhaseFailed:         {CheckoutPhaseMethodsReady},
	CheckoutPhaseSucceeded:      {CheckoutPhaseIdle},
}

// String implements fmt.Stringer.
func (p CheckoutPhase) String() string {
	return string(p)
}

// IsValid reports whether the value is a known CheckoutPhase.
func (p CheckoutPhase) IsValid() bool {
	for _, candidate := range validCheckoutPhases {
		if candidate == p {
			return true
		}
	}
	return false
}

// CanTransitionTo reports whether next is a legal successor of p.
func (p CheckoutPhase) CanTransitionTo(next CheckoutPhase) bool {
	for _, candidate := range checkoutTransitions[p] {
		if candidate == next {
			return true
		}
	}
	return false
}

// ParseCheckoutPhase converts raw input into a CheckoutPhase.
func ParseCheckoutPhase(value string) (CheckoutPhase, error) {
	for _, candidate := range validCheckoutPhases {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid checkout phase %q", value)
}
