package cart

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	cartdto "github.com/angelmondragon/storefront/api/controllers/cart/dto"
	"github.com/angelmondragon/storefront/api/middleware"
	"github.com/angelmondragon/storefront/api/responses"
	"github.com/angelmondragon/storefront/api/validators"
	"github.com/angelmondragon/storefront/internal/inventory"
	pkgerrors "github.com/angelmondragon/storefront/pkg/errors"
	"github.com/angelmondragon/storefront/pkg/logger"
)

type cartClearer interface {
	Clear(ctx context.Context, sessionID string) error
}

// CartFetch reconciles the visitor's cart against upstream and returns it.
func CartFetch(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}

		sessionID, err := middleware.SessionIDFromContext(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		view, err := svc.Reconcile(r.Context(), sessionID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newCartView(view))
	}
}

// CartAddItem adds a variation or raises the quantity of its existing line.
func CartAddItem(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}

		sessionID, err := middleware.SessionIDFromContext(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload cartdto.AddItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		view, err := svc.Add(r.Context(), sessionID, toAddInput(payload))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, newCartView(view))
	}
}

func CartIncrement(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return lineAction(svc, logg, inventory.Service.Increment)
}

func CartDecrement(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return lineAction(svc, logg, inventory.Service.Decrement)
}

func CartRemoveItem(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return lineAction(svc, logg, inventory.Service.Remove)
}

// CartSetQuantity replaces the quantity of one line.
func CartSetQuantity(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}

		sessionID, lineID, err := lineTarget(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload cartdto.SetQuantityRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		view, err := svc.SetQuantity(r.Context(), sessionID, lineID, payload.Quantity)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newCartView(view))
	}
}

// CartClear empties the cart.
func CartClear(carts cartClearer, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if carts == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}

		sessionID, err := middleware.SessionIDFromContext(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := carts.Clear(r.Context(), sessionID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newCartView(nil))
	}
}

func lineAction(svc inventory.Service, logg *logger.Logger, action func(inventory.Service, context.Context, string, uuid.UUID) (*inventory.View, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}

		sessionID, lineID, err := lineTarget(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		view, err := action(svc, r.Context(), sessionID, lineID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newCartView(view))
	}
}

func lineTarget(r *http.Request) (string, uuid.UUID, error) {
	sessionID, err := middleware.SessionIDFromContext(r.Context())
	if err != nil {
		return "", uuid.Nil, err
	}
	lineID, err := validators.ParseUUIDParam(r, "lineID")
	if err != nil {
		return "", uuid.Nil, err
	}
	return sessionID, lineID, nil
}
