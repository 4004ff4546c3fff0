package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mosketh/storefront/api/responses"
	"github.com/mosketh/storefront/api/validators"
	"github.com/mosketh/storefront/internal/cart"
	"github.com/mosketh/storefront/pkg/logger"
	"github.com/mosketh/storefront/pkg/money"
)

type cartItemResponse struct {
	ProductID       string `json:"productId"`
	Name            string `json:"name"`
	UnitPrice       int64  `json:"unitPrice"`
	Image           string `json:"image,omitempty"`
	Slug            string `json:"slug,omitempty"`
	Quantity        int    `json:"quantity"`
	Subtotal        int64  `json:"subtotal"`
	SubtotalDisplay string `json:"subtotalDisplay"`
}

type cartResponse struct {
	Items        []cartItemResponse `json:"items"`
	Total        int64              `json:"total"`
	TotalDisplay string             `json:"totalDisplay"`
	ItemCount    int                `json:"itemCount"`
	Currency     string             `json:"currency"`
	Locked       bool               `json:"locked"`
}

func newCartResponse(snap cart.Snapshot, locked bool) cartResponse {
	items := make([]cartItemResponse, 0, len(snap.Items))
	for _, item := range snap.Items {
		items = append(items, cartItemResponse{
			ProductID:       item.ProductID,
			Name:            item.Name,
			UnitPrice:       item.UnitPrice,
			Image:           item.Image,
			Slug:            item.Slug,
			Quantity:        item.Quantity,
			Subtotal:        item.Subtotal(),
			SubtotalDisplay: money.FormatKES(item.Subtotal()),
		})
	}
	return cartResponse{
		Items:        items,
		Total:        snap.Total,
		TotalDisplay: money.FormatKES(snap.Total),
		ItemCount:    snap.ItemCount,
		Currency:     money.CurrencyKES,
		Locked:       locked,
	}
}

// CartGet returns the session's cart with derived totals.
func CartGet(logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		bundle, ok := bundleFromRequest(w, r, logg)
		if !ok {
			return
		}
		responses.WriteSuccess(w, newCartResponse(bundle.Cart.Snapshot(), bundle.Cart.Locked()))
	}
}

// CartAddItem adds one unit of a product: a new line with quantity 1, or +1 on
// an existing line. Larger quantities go through CartUpdateItem.
func CartAddItem(catalog Catalog, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		bundle, ok := bundleFromRequest(w, r, logg)
		if !ok {
			return
		}

		var payload productPayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := payload.resolve(r.Context(), catalog)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		snap, err := bundle.Cart.AddItem(r.Context(), product)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newCartResponse(snap, bundle.Cart.Locked()))
	}
}

type updateQuantityRequest struct {
	Quantity *int `json:"quantity" validate:"required,min=0,max=99"`
}

// CartUpdateItem sets a line's quantity. Zero removes the line.
func CartUpdateItem(logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		bundle, ok := bundleFromRequest(w, r, logg)
		if !ok {
			return
		}

		var payload updateQuantityRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		snap, err := bundle.Cart.UpdateQuantity(r.Context(), chi.URLParam(r, "productId"), *payload.Quantity)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newCartResponse(snap, bundle.Cart.Locked()))
	}
}

// CartRemoveItem drops a line. Unknown product ids leave the cart unchanged.
func CartRemoveItem(logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		bundle, ok := bundleFromRequest(w, r, logg)
		if !ok {
			return
		}
		snap, err := bundle.Cart.RemoveItem(r.Context(), chi.URLParam(r, "productId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newCartResponse(snap, bundle.Cart.Locked()))
	}
}

// CartClear empties the cart.
func CartClear(logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		bundle, ok := bundleFromRequest(w, r, logg)
		if !ok {
			return
		}
		snap, err := bundle.Cart.Clear(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newCartResponse(snap, bundle.Cart.Locked()))
	}
}
