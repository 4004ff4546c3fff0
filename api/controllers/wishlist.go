package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mosketh/storefront/api/responses"
	"github.com/mosketh/storefront/api/validators"
	"github.com/mosketh/storefront/internal/cart"
	"github.com/mosketh/storefront/internal/session"
	"github.com/mosketh/storefront/pkg/logger"
	"github.com/mosketh/storefront/pkg/money"
)

type wishlistItemResponse struct {
	ProductID    string `json:"productId"`
	Name         string `json:"name"`
	UnitPrice    int64  `json:"unitPrice"`
	PriceDisplay string `json:"priceDisplay"`
	Image        string `json:"image,omitempty"`
	Slug         string `json:"slug,omitempty"`
}

type wishlistResponse struct {
	Items []wishlistItemResponse `json:"items"`
	Count int                    `json:"count"`
}

func newWishlistResponse(products []cart.Product) wishlistResponse {
	items := make([]wishlistItemResponse, 0, len(products))
	for _, p := range products {
		items = append(items, wishlistItemResponse{
			ProductID:    p.ProductID,
			Name:         p.Name,
			UnitPrice:    p.UnitPrice,
			PriceDisplay: money.FormatKES(p.UnitPrice),
			Image:        p.Image,
			Slug:         p.Slug,
		})
	}
	return wishlistResponse{Items: items, Count: len(items)}
}

func WishlistGet(logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		bundle, ok := bundleFromRequest(w, r, logg)
		if !ok {
			return
		}
		responses.WriteSuccess(w, newWishlistResponse(bundle.Wishlist.Items()))
	}
}

// WishlistAdd wishlists a product. Re-adding a wishlisted product is a no-op.
func WishlistAdd(catalog Catalog, logg *logger.Logger) http.HandlerFunc {
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
		if err := bundle.Wishlist.Add(r.Context(), product); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newWishlistResponse(bundle.Wishlist.Items()))
	}
}

func WishlistRemove(logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		bundle, ok := bundleFromRequest(w, r, logg)
		if !ok {
			return
		}
		if err := bundle.Wishlist.Remove(r.Context(), chi.URLParam(r, "productId")); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newWishlistResponse(bundle.Wishlist.Items()))
	}
}

func WishlistClear(logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		bundle, ok := bundleFromRequest(w, r, logg)
		if !ok {
			return
		}
		if err := bundle.Wishlist.Clear(r.Context()); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newWishlistResponse(bundle.Wishlist.Items()))
	}
}

type moveToCartResponse struct {
	Cart     cartResponse     `json:"cart"`
	Wishlist wishlistResponse `json:"wishlist"`
}

// WishlistMoveToCart moves a wishlisted product into the cart.
func WishlistMoveToCart(logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		bundle, ok := bundleFromRequest(w, r, logg)
		if !ok {
			return
		}
		snap, err := bundle.Wishlist.MoveToCart(r.Context(), chi.URLParam(r, "productId"), bundle.Cart)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newMoveToCartResponse(bundle, snap))
	}
}

func newMoveToCartResponse(bundle *session.Bundle, snap cart.Snapshot) moveToCartResponse {
	return moveToCartResponse{
		Cart:     newCartResponse(snap, bundle.Cart.Locked()),
		Wishlist: newWishlistResponse(bundle.Wishlist.Items()),
	}
}
