package checkout

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/angelmondragon/storefront/internal/cart"
	pkgerrors "github.com/angelmondragon/storefront/pkg/errors"
	"github.com/angelmondragon/storefront/pkg/storefront"
	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		tag := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if tag == "" || tag == "-" {
			return f.Name
		}
		return tag
	})
	return v
}

// Form holds the contact and address fields entered at checkout.
type Form struct {
	FullName       string `json:"full_name"`
	Address        string `json:"address"`
	Email          string `json:"email"`
	Phone          string `json:"phone"`
	Note           string `json:"note,omitempty"`
	TurnstileToken string `json:"turnstile_token,omitempty"`
}

type OrderLine struct {
	VariationID int64 `json:"variation_id" validate:"gt=0"`
	Quantity    int   `json:"quantity" validate:"gt=0"`
}

// OrderPayload is a validated order ready for submission.
type OrderPayload struct {
	FullName         string      `json:"full_name" validate:"required,min=1,max=50"`
	Address          string      `json:"address" validate:"required,min=2,max=100"`
	Email            string      `json:"email" validate:"required,email,min=2,max=100"`
	Phone            string      `json:"phone" validate:"required,min=2,max=100"`
	DeliveryMethodID int64       `json:"delivery_method_id" validate:"required"`
	ShippingMethodID int64       `json:"shipping_method_id" validate:"required"`
	PaymentMethodID  int64       `json:"payment_method_id" validate:"required"`
	Products         []OrderLine `json:"products" validate:"min=1,max=10,dive"`
	Note             string      `json:"note,omitempty" validate:"max=500"`
}

// BuildPayload maps cart lines onto variation/quantity pairs and combines
// them with the form and the selected methods.
func BuildPayload(lines []cart.Line, form Form, state State) (OrderPayload, error) {
	payload := OrderPayload{
		FullName:         strings.TrimSpace(form.FullName),
		Address:          strings.TrimSpace(form.Address),
		Email:            strings.TrimSpace(form.Email),
		Phone:            strings.TrimSpace(form.Phone),
		DeliveryMethodID: state.DeliveryMethodID,
		ShippingMethodID: state.ShippingMethodID,
		PaymentMethodID:  state.PaymentMethodID,
		Products:         make([]OrderLine, 0, len(lines)),
		Note:             strings.TrimSpace(form.Note),
	}
	for _, line := range lines {
		payload.Products = append(payload.Products, OrderLine{VariationID: line.VariationID, Quantity: line.Quantity})
	}
	if err := validate.Struct(payload); err != nil {
		return OrderPayload{}, validationError(err)
	}
	return payload, nil
}

func (p OrderPayload) request(turnstileToken string) storefront.PlaceOrderRequest {
	products := make([]storefront.OrderLine, 0, len(p.Products))
	for _, line := range p.Products {
		products = append(products, storefront.OrderLine{VariationID: line.VariationID, Quantity: line.Quantity})
	}
	return storefront.PlaceOrderRequest{
		FullName:          p.FullName,
		Address:           p.Address,
		Email:             p.Email,
		Phone:             p.Phone,
		DeliveryMethodID:  p.DeliveryMethodID,
		ShippingMethodID:  p.ShippingMethodID,
		PaymentMethodID:   p.PaymentMethodID,
		Products:          products,
		Note:              p.Note,
		TurnstileResponse: turnstileToken,
	}
}

func validEmail(email string) bool {
	return validate.Var(email, "required,email,max=100") == nil
}

func validationError(err error) error {
	errs, ok := err.(validator.ValidationErrors)
	if !ok {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "validation failed")
	}
	details := map[string]string{}
	for _, fieldErr := range errs {
		details[fieldPath(fieldErr)] = validationMessage(fieldErr)
	}
	return pkgerrors.New(pkgerrors.CodeValidation, "validation failed").WithDetails(details)
}

// fieldPath drops the struct name, e.g. "products[0].quantity".
func fieldPath(fe validator.FieldError) string {
	_, path, found := strings.Cut(fe.Namespace(), ".")
	if !found {
		return fe.Field()
	}
	return path
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "gt":
		return fmt.Sprintf("must be greater than %s", fe.Param())
	case "email":
		return "must be a valid email"
	}
	return "is invalid"
}
