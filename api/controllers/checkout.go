package controllers

import (
	"net/http"

	"github.com/mosketh/storefront/api/responses"
	"github.com/mosketh/storefront/api/validators"
	"github.com/mosketh/storefront/internal/checkout"
	"github.com/mosketh/storefront/pkg/logger"
	"github.com/mosketh/storefront/pkg/money"
)

type checkoutResponse struct {
	OrderID      string `json:"orderId"`
	OrderNumber  string `json:"orderNumber"`
	Total        int64  `json:"total"`
	TotalDisplay string `json:"totalDisplay"`
	AttemptID    string `json:"attemptId"`
}

type checkoutStatusResponse struct {
	Phase      checkout.Phase `json:"phase"`
	CartLocked bool           `json:"cartLocked"`
}

// CheckoutSubmit places an order for the session's cart. The form is
// validated by the submitter so every failing field is reported at once.
func CheckoutSubmit(logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		bundle, ok := bundleFromRequest(w, r, logg)
		if !ok {
			return
		}

		var form checkout.Form
		if err := validators.DecodeJSON(r, &form); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := bundle.Checkout.Submit(r.Context(), form)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, checkout.Classify(err))
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, checkoutResponse{
			OrderID:      result.OrderID,
			OrderNumber:  result.OrderNumber,
			Total:        result.Total,
			TotalDisplay: money.FormatKES(result.Total),
			AttemptID:    result.AttemptID,
		})
	}
}

// CheckoutStatus reports the phase of the latest submission attempt.
func CheckoutStatus(logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		bundle, ok := bundleFromRequest(w, r, logg)
		if !ok {
			return
		}
		responses.WriteSuccess(w, checkoutStatusResponse{
			Phase:      bundle.Checkout.Phase(),
			CartLocked: bundle.Cart.Locked(),
		})
	}
}
