package controllers

import (
	"net/http"

	"github.com/neonshoplabs/neonshop-backend/api/responses"
	"github.com/neonshoplabs/neonshop-backend/api/validators"
	"github.com/neonshoplabs/neonshop-backend/internal/orders"
	"github.com/neonshoplabs/neonshop-backend/pkg/logger"
	"github.com/neonshoplabs/neonshop-backend/pkg/types"
)

type checkoutRequest struct {
	ShippingAddress checkoutAddress `json:"shipping_address" validate:"required"`
}

type checkoutAddress struct {
	Line1      string  `json:"line1" validate:"required"`
	Line2      *string `json:"line2,omitempty"`
	City       string  `json:"city" validate:"required"`
	State      string  `json:"state"`
	PostalCode string  `json:"postal_code" validate:"required"`
	Country    string  `json:"country" validate:"required"`
}

// Checkout confirms the active cart into an order.
func Checkout(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := currentUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body checkoutRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		dto, err := svc.Checkout(r.Context(), userID, types.Address{
			Line1:      body.ShippingAddress.Line1,
			Line2:      body.ShippingAddress.Line2,
			City:       body.ShippingAddress.City,
			State:      body.ShippingAddress.State,
			PostalCode: body.ShippingAddress.PostalCode,
			Country:    body.ShippingAddress.Country,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, dto)
	}
}
