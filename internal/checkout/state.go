package checkout

import (
	"time"

	"github.com/angelmondragon/storefront/internal/catalog"
	"github.com/angelmondragon/storefront/pkg/enums"
	pkgerrors "github.com/angelmondragon/storefront/pkg/errors"
)

// LoginRedirect is where a visitor whose email already has an account is sent.
const LoginRedirect = "/login?redirect=/checkout"

const (
	labelPlaceOrder    = "Place Order"
	labelLoginRequired = "Login Required"
	labelProcessing    = "Processing..."
)

// Methods are the shipping, delivery and payment options offered by the store.
type Methods struct {
	Shipping []catalog.ShippingZoneView   `json:"shipping"`
	Delivery []catalog.DeliveryMethodView `json:"delivery"`
	Payment  []catalog.PaymentMethodView  `json:"payment"`
}

// Selection is a visitor's method choice. Zero ids leave the current choice untouched.
type Selection struct {
	ShippingMethodID int64 `json:"shipping_method_id"`
	DeliveryMethodID int64 `json:"delivery_method_id"`
	PaymentMethodID  int64 `json:"payment_method_id"`
}

// State is the per-session checkout progress.
type State struct {
	Phase            enums.CheckoutPhase `json:"phase"`
	ShippingMethodID int64               `json:"shipping_method_id"`
	DeliveryMethodID int64               `json:"delivery_method_id"`
	PaymentMethodID  int64               `json:"payment_method_id"`
	Eligibility      enums.Eligibility   `json:"eligibility"`
	EligibilityEmail string              `json:"eligibility_email,omitempty"`
	LastPayload      *OrderPayload       `json:"last_payload,omitempty"`
	LastError        string              `json:"last_error,omitempty"`
	UpdatedAt        time.Time           `json:"updated_at"`
}

func NewState() State {
	return State{Phase: enums.CheckoutPhaseIdle, Eligibility: enums.EligibilityUnknown}
}

// normalize repairs zero values left by older or partial documents.
func (s *State) normalize() {
	if !s.Phase.IsValid() {
		s.Phase = enums.CheckoutPhaseIdle
	}
	if !s.Eligibility.IsValid() {
		s.Eligibility = enums.EligibilityUnknown
	}
}

func (s *State) transition(next enums.CheckoutPhase) error {
	if !s.Phase.CanTransitionTo(next) {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "checkout transition not allowed").
			WithDetails(map[string]any{"from": s.Phase.String(), "to": next.String()})
	}
	s.Phase = next
	return nil
}

// Control describes the submit button for the current state.
type Control struct {
	Enabled       bool   `json:"enabled"`
	Label         string `json:"label"`
	LoginRedirect string `json:"login_redirect,omitempty"`
}

// SubmitControl derives the submit button. Only an allowed eligibility enables it.
func SubmitControl(state State) Control {
	if state.Phase == enums.CheckoutPhaseSubmitting {
		return Control{Label: labelProcessing}
	}
	switch state.Eligibility {
	case enums.EligibilityDenied:
		return Control{Label: labelLoginRequired, LoginRedirect: LoginRedirect}
	case enums.EligibilityAllowed:
		ready := state.Phase == enums.CheckoutPhaseMethodsReady || state.Phase == enums.CheckoutPhaseFailed
		return Control{Enabled: ready, Label: labelPlaceOrder}
	default:
		return Control{Label: labelPlaceOrder}
	}
}
