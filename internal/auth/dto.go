package auth

import "github.com/angelmondragon/storefront/pkg/storefront"

// LoginRequest captures the customer credentials sent to the login endpoint.
type LoginRequest struct {
	Email          string `json:"email" validate:"required,email"`
	Password       string `json:"password" validate:"required,min=3"`
	TurnstileToken string `json:"turnstile_token,omitempty"`
}

// RegisterRequest is the customer sign-up form.
type RegisterRequest struct {
	FullName       string `json:"full_name" validate:"required,max=50"`
	Email          string `json:"email" validate:"required,email"`
	Password       string `json:"password" validate:"required,min=8,containsany=0123456789"`
	TurnstileToken string `json:"turnstile_token,omitempty"`
}

type PasswordResetRequest struct {
	Email          string `json:"email" validate:"required,email"`
	TurnstileToken string `json:"turnstile_token,omitempty"`
}

type PasswordResetConfirm struct {
	Code           string `json:"code" validate:"required"`
	Password       string `json:"password" validate:"required,min=8,containsany=0123456789"`
	TurnstileToken string `json:"turnstile_token,omitempty"`
}

// CustomerDTO is the public view of a logged-in customer.
type CustomerDTO struct {
	ID       int64  `json:"id"`
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	Phone    string `json:"phone,omitempty"`
	Address  string `json:"address,omitempty"`
}

// LoginResponse never carries the backend token; it stays in the session store.
type LoginResponse struct {
	Message  string      `json:"message,omitempty"`
	Customer CustomerDTO `json:"customer"`
}

// MessageResponse relays a backend confirmation message.
type MessageResponse struct {
	Message string `json:"message"`
}

func toCustomerDTO(c storefront.Customer) CustomerDTO {
	return CustomerDTO{
		ID:       c.ID,
		FullName: c.FullName,
		Email:    c.Email,
		Phone:    c.Phone,
		Address:  c.Address,
	}
}
