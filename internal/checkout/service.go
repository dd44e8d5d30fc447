package checkout

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/angelmondragon/storefront/internal/cart"
	"github.com/angelmondragon/storefront/internal/catalog"
	"github.com/angelmondragon/storefront/internal/repo"
	"github.com/angelmondragon/storefront/pkg/auth/session"
	"github.com/angelmondragon/storefront/pkg/enums"
	pkgerrors "github.com/angelmondragon/storefront/pkg/errors"
	"github.com/angelmondragon/storefront/pkg/logger"
	"github.com/angelmondragon/storefront/pkg/metrics"
	"github.com/angelmondragon/storefront/pkg/money"
	"github.com/angelmondragon/storefront/pkg/storefront"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

// submitStaleAfter bounds how long a submitting phase may persist before it
// is considered interrupted.
const submitStaleAfter = 2 * time.Minute

const (
	orderOutcomeSucceeded = "succeeded"
	orderOutcomeFailed    = "failed"
	orderOutcomeBlocked   = "blocked"
	eligibilityError      = "error"
)

type methodSource interface {
	ShippingZones(ctx context.Context) ([]catalog.ShippingZoneView, error)
	DeliveryMethods(ctx context.Context) ([]catalog.DeliveryMethodView, error)
	PaymentMethods(ctx context.Context) ([]catalog.PaymentMethodView, error)
}

type orderClient interface {
	CheckUser(ctx context.Context, email string) (bool, error)
	PlaceOrder(ctx context.Context, req storefront.PlaceOrderRequest) (*storefront.PlaceOrderResult, error)
}

type turnstileSource interface {
	TurnstileKey(ctx context.Context) (string, error)
}

// Overview is everything the checkout page renders.
type Overview struct {
	State          State           `json:"state"`
	Methods        Methods         `json:"methods"`
	Subtotal       decimal.Decimal `json:"subtotal"`
	Total          decimal.Decimal `json:"total"`
	FormattedTotal string          `json:"formatted_total"`
	ItemCount      int             `json:"item_count"`
	Control        Control         `json:"control"`
}

// Receipt is returned once the backend accepted an order.
type Receipt struct {
	Message        string          `json:"message"`
	Password       string          `json:"password,omitempty"`
	Total          decimal.Decimal `json:"total"`
	FormattedTotal string          `json:"formatted_total"`
}

// Service drives the checkout flow for a visitor session.
type Service interface {
	Load(ctx context.Context, sessionID string) (*Overview, error)
	Select(ctx context.Context, sessionID string, selection Selection) (*Overview, error)
	CheckEligibility(ctx context.Context, sessionID, email string) (*Overview, error)
	Submit(ctx context.Context, sessionID string, form Form) (*Receipt, error)
}

type service struct {
	repo      Repository
	locks     *repo.Locker
	carts     cart.Service
	methods   methodSource
	orders    orderClient
	turnstile turnstileSource
	logg      *logger.Logger
	metrics   *metrics.StorefrontMetrics
	now       func() time.Time
}

type ServiceParams struct {
	Repository Repository
	Locker     *repo.Locker
	Carts      cart.Service
	Methods    methodSource
	Orders     orderClient
	Turnstile  turnstileSource
	Logger     *logger.Logger
	Metrics    *metrics.StorefrontMetrics
}

func NewService(params ServiceParams) (Service, error) {
	if params.Repository == nil {
		return nil, fmt.Errorf("checkout repository required")
	}
	if params.Carts == nil {
		return nil, fmt.Errorf("cart service required")
	}
	if params.Methods == nil {
		return nil, fmt.Errorf("method source required")
	}
	if params.Orders == nil {
		return nil, fmt.Errorf("order client required")
	}
	if params.Turnstile == nil {
		return nil, fmt.Errorf("turnstile source required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	locks := params.Locker
	if locks == nil {
		locks = repo.NewLocker()
	}
	return &service{
		repo:      params.Repository,
		locks:     locks,
		carts:     params.Carts,
		methods:   params.Methods,
		orders:    params.Orders,
		turnstile: params.Turnstile,
		logg:      params.Logger,
		metrics:   params.Metrics,
		now:       time.Now,
	}, nil
}

// Load fetches the offered methods, applies default selections and, for a
// logged-in customer, resolves eligibility for the account email.
func (s *service) Load(ctx context.Context, sessionID string) (*Overview, error) {
	unlock, err := s.lock(sessionID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	state, err := s.loadState(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if state.Phase == enums.CheckoutPhaseSubmitting {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "order submission in progress")
	}
	if state.Phase == enums.CheckoutPhaseSucceeded {
		if err := state.transition(enums.CheckoutPhaseIdle); err != nil {
			return nil, err
		}
		state.LastPayload = nil
		state.LastError = ""
	}

	reloading := state.Phase != enums.CheckoutPhaseFailed
	if reloading {
		if err := state.transition(enums.CheckoutPhaseMethodsLoading); err != nil {
			return nil, err
		}
	}
	methods, err := s.loadMethods(ctx)
	if err != nil {
		return nil, err
	}
	if reloading {
		if err := state.transition(enums.CheckoutPhaseMethodsReady); err != nil {
			return nil, err
		}
	}
	ApplyDefaults(&state, methods)

	if creds := session.CredentialsFromContext(ctx); creds != nil {
		s.autoCheck(ctx, &state, creds.Customer.Email)
	}

	if err := s.saveState(ctx, sessionID, &state); err != nil {
		return nil, err
	}
	return s.overview(ctx, sessionID, state, methods)
}

func (s *service) Select(ctx context.Context, sessionID string, selection Selection) (*Overview, error) {
	unlock, err := s.lock(sessionID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	state, err := s.loadState(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if state.Phase != enums.CheckoutPhaseMethodsReady && state.Phase != enums.CheckoutPhaseFailed {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "checkout methods are not loaded").
			WithDetails(map[string]any{"phase": state.Phase.String()})
	}
	methods, err := s.loadMethods(ctx)
	if err != nil {
		return nil, err
	}

	invalid := map[string]string{}
	if id := selection.ShippingMethodID; id != 0 {
		if offers(shippingIDs(methods), id) {
			state.ShippingMethodID = id
		} else {
			invalid["shipping_method_id"] = "is not offered"
		}
	}
	if id := selection.DeliveryMethodID; id != 0 {
		if offers(deliveryIDs(methods), id) {
			state.DeliveryMethodID = id
		} else {
			invalid["delivery_method_id"] = "is not offered"
		}
	}
	if id := selection.PaymentMethodID; id != 0 {
		if offers(paymentIDs(methods), id) {
			state.PaymentMethodID = id
		} else {
			invalid["payment_method_id"] = "is not offered"
		}
	}
	if len(invalid) > 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown checkout method").WithDetails(invalid)
	}
	ApplyDefaults(&state, methods)

	if err := s.saveState(ctx, sessionID, &state); err != nil {
		return nil, err
	}
	return s.overview(ctx, sessionID, state, methods)
}

// CheckEligibility resolves whether email may purchase. A different email
// than the last checked one resets eligibility to unknown first.
func (s *service) CheckEligibility(ctx context.Context, sessionID, email string) (*Overview, error) {
	trimmed := strings.TrimSpace(email)
	if !validEmail(trimmed) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "validation failed").
			WithDetails(map[string]string{"email": "must be a valid email"})
	}

	unlock, err := s.lock(sessionID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	state, err := s.loadState(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if state.Phase == enums.CheckoutPhaseSubmitting {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "order submission in progress")
	}
	resetEligibility(&state, trimmed)

	canPurchase, err := s.orders.CheckUser(ctx, trimmed)
	if err != nil {
		s.metrics.IncEligibility(eligibilityError)
		if saveErr := s.saveState(ctx, sessionID, &state); saveErr != nil {
			s.logg.Error(ctx, "checkout.state_save_failed", saveErr)
		}
		return nil, err
	}
	state.Eligibility = enums.EligibilityFromFlag(canPurchase)
	s.metrics.IncEligibility(state.Eligibility.String())
	if err := s.saveState(ctx, sessionID, &state); err != nil {
		return nil, err
	}

	methods, err := s.loadMethods(ctx)
	if err != nil {
		return nil, err
	}
	return s.overview(ctx, sessionID, state, methods)
}

// Submit places the order once. Success clears the cart; failure keeps the
// payload and surfaces the backend message verbatim.
func (s *service) Submit(ctx context.Context, sessionID string, form Form) (*Receipt, error) {
	unlock, err := s.lock(sessionID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	state, err := s.loadState(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if state.Phase == enums.CheckoutPhaseFailed {
		if err := state.transition(enums.CheckoutPhaseMethodsReady); err != nil {
			return nil, err
		}
	}
	if state.Phase != enums.CheckoutPhaseMethodsReady {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "checkout is not ready for submission").
			WithDetails(map[string]any{"phase": state.Phase.String()})
	}

	email := strings.TrimSpace(form.Email)
	if !validEmail(email) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "validation failed").
			WithDetails(map[string]string{"email": "must be a valid email"})
	}
	resetEligibility(&state, email)
	switch state.Eligibility {
	case enums.EligibilityDenied:
		s.metrics.IncOrder(orderOutcomeBlocked)
		return nil, pkgerrors.New(pkgerrors.CodeLoginRequired, "You must be logged in to place an order.").
			WithDetails(map[string]any{"redirect": LoginRedirect})
	case enums.EligibilityUnknown:
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "purchase eligibility has not been checked for this email")
	}

	siteKey, err := s.turnstile.TurnstileKey(ctx)
	if err != nil {
		return nil, err
	}
	token := strings.TrimSpace(form.TurnstileToken)
	if siteKey != "" && token == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "Please complete the verification check").
			WithDetails(map[string]string{"turnstile_token": "is required"})
	}

	methods, err := s.loadMethods(ctx)
	if err != nil {
		return nil, err
	}
	ApplyDefaults(&state, methods)

	snap, err := s.carts.View(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	payload, err := BuildPayload(snap.Lines, form, state)
	if err != nil {
		return nil, err
	}
	total := Total(snap.Prices, methods, state)

	if err := state.transition(enums.CheckoutPhaseSubmitting); err != nil {
		return nil, err
	}
	if err := s.saveState(ctx, sessionID, &state); err != nil {
		return nil, err
	}

	result, placeErr := s.orders.PlaceOrder(ctx, payload.request(token))
	// the outcome must be recorded even if the caller went away
	persistCtx := context.WithoutCancel(ctx)
	if placeErr != nil {
		return nil, s.failSubmission(persistCtx, sessionID, &state, payload, placeErr)
	}

	if err := s.carts.Clear(persistCtx, sessionID); err != nil {
		s.logg.Error(s.logg.WithField(persistCtx, "session_id", sessionID), "checkout.cart_clear_failed", err)
	}
	if err := state.transition(enums.CheckoutPhaseSucceeded); err != nil {
		return nil, err
	}
	state.LastPayload = nil
	state.LastError = ""
	if err := s.saveState(persistCtx, sessionID, &state); err != nil {
		s.logg.Error(persistCtx, "checkout.state_save_failed", err)
	}
	s.metrics.IncOrder(orderOutcomeSucceeded)
	s.logg.Info(s.logg.WithFields(ctx, map[string]any{
		"lines": len(payload.Products),
		"total": total.StringFixed(2),
	}), "checkout.order_placed")

	return &Receipt{
		Message:        result.Message,
		Password:       result.Password,
		Total:          total,
		FormattedTotal: money.Format(total),
	}, nil
}

func (s *service) failSubmission(ctx context.Context, sessionID string, state *State, payload OrderPayload, cause error) error {
	message := "order could not be placed"
	var out error = cause
	if apiErr, ok := storefront.AsAPIError(cause); ok && apiErr.Message != "" {
		message = apiErr.Message
		if !pkgerrors.HasCode(cause, pkgerrors.CodeDependency) && !pkgerrors.HasCode(cause, pkgerrors.CodeUnauthorized) {
			out = pkgerrors.Wrap(pkgerrors.CodeOrderRejected, cause, message)
		}
	}

	if err := state.transition(enums.CheckoutPhaseFailed); err != nil {
		return err
	}
	state.LastPayload = &payload
	state.LastError = message
	if err := s.saveState(ctx, sessionID, state); err != nil {
		s.logg.Error(ctx, "checkout.state_save_failed", err)
	}
	s.metrics.IncOrder(orderOutcomeFailed)
	s.logg.Warn(s.logg.WithFields(ctx, map[string]any{
		"error":   cause.Error(),
		"message": message,
	}), "checkout.order_failed")
	return out
}

// autoCheck resolves eligibility for a logged-in customer's email. Failures
// leave it unknown.
func (s *service) autoCheck(ctx context.Context, state *State, email string) {
	email = strings.TrimSpace(email)
	if email == "" {
		return
	}
	if strings.EqualFold(state.EligibilityEmail, email) && state.Eligibility != enums.EligibilityUnknown {
		return
	}
	resetEligibility(state, email)
	canPurchase, err := s.orders.CheckUser(ctx, email)
	if err != nil {
		s.metrics.IncEligibility(eligibilityError)
		s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "checkout.eligibility_failed")
		return
	}
	state.Eligibility = enums.EligibilityFromFlag(canPurchase)
	s.metrics.IncEligibility(state.Eligibility.String())
}

func resetEligibility(state *State, email string) {
	if strings.EqualFold(state.EligibilityEmail, email) {
		return
	}
	state.EligibilityEmail = email
	state.Eligibility = enums.EligibilityUnknown
}

func (s *service) loadMethods(ctx context.Context) (Methods, error) {
	var methods Methods
	group, gctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		var err error
		methods.Shipping, err = s.methods.ShippingZones(gctx)
		return err
	})
	group.Go(func() error {
		var err error
		methods.Delivery, err = s.methods.DeliveryMethods(gctx)
		return err
	})
	group.Go(func() error {
		var err error
		methods.Payment, err = s.methods.PaymentMethods(gctx)
		return err
	})
	if err := group.Wait(); err != nil {
		return Methods{}, err
	}
	return methods, nil
}

func (s *service) overview(ctx context.Context, sessionID string, state State, methods Methods) (*Overview, error) {
	snap, err := s.carts.View(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	total := Total(snap.Prices, methods, state)
	return &Overview{
		State:          state,
		Methods:        methods,
		Subtotal:       snap.Subtotal(),
		Total:          total,
		FormattedTotal: money.Format(total),
		ItemCount:      snap.ItemCount(),
		Control:        SubmitControl(state),
	}, nil
}

func (s *service) lock(sessionID string) (func(), error) {
	if strings.TrimSpace(sessionID) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "visitor session required")
	}
	return s.locks.Lock("checkout:" + sessionID), nil
}

// loadState returns the stored state, failing a submission that never
// recorded its outcome.
func (s *service) loadState(ctx context.Context, sessionID string) (State, error) {
	state, found, err := s.repo.Load(ctx, sessionID)
	if err != nil {
		return State{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load checkout state")
	}
	if !found {
		return NewState(), nil
	}
	state.normalize()
	if state.Phase == enums.CheckoutPhaseSubmitting && s.now().Sub(state.UpdatedAt) > submitStaleAfter {
		state.Phase = enums.CheckoutPhaseFailed
		state.LastError = "order submission was interrupted"
	}
	return state, nil
}

func (s *service) saveState(ctx context.Context, sessionID string, state *State) error {
	state.UpdatedAt = s.now().UTC()
	if err := s.repo.Save(ctx, sessionID, *state); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save checkout state")
	}
	return nil
}
