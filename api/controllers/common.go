package controllers

import (
	"context"
	"fmt"
	"net/http"

	"github.com/mosketh/storefront/api/middleware"
	"github.com/mosketh/storefront/api/responses"
	"github.com/mosketh/storefront/api/validators"
	"github.com/mosketh/storefront/internal/cart"
	"github.com/mosketh/storefront/internal/session"
	pkgerrors "github.com/mosketh/storefront/pkg/errors"
	"github.com/mosketh/storefront/pkg/logger"
	"github.com/mosketh/storefront/pkg/storefrontapi"
)

const (
	maxSlugLen = 200
	// maxUnitPrice bounds client-supplied prices (KES) so line subtotals and
	// cart totals stay far from int64 overflow.
	maxUnitPrice int64 = 100_000_000
)

// Catalog looks products up by slug. *storefrontapi.Client satisfies it.
type Catalog interface {
	ProductBySlug(ctx context.Context, slug string) (storefrontapi.Product, error)
}

// productPayload identifies a product either by slug, resolved through the
// catalog, or inline with the fields the product card already shows.
type productPayload struct {
	Slug      string `json:"slug" validate:"required_without=ProductID"`
	ProductID string `json:"productId" validate:"required_without=Slug"`
	Name      string `json:"name" validate:"required_with=ProductID"`
	UnitPrice *int64 `json:"unitPrice" validate:"required_with=ProductID"`
	Image     string `json:"image"`
}

func (p productPayload) resolve(ctx context.Context, catalog Catalog) (cart.Product, error) {
	slug := validators.SanitizeString(p.Slug, maxSlugLen)
	if p.ProductID != "" {
		if *p.UnitPrice < 0 || *p.UnitPrice > maxUnitPrice {
			return cart.Product{}, pkgerrors.New(pkgerrors.CodeValidation, "validation failed").
				WithDetails(map[string]string{"unitPrice": fmt.Sprintf("must be between 0 and %d", maxUnitPrice)})
		}
		return cart.Product{
			ProductID: validators.SanitizeString(p.ProductID, 0),
			Name:      validators.SanitizeString(p.Name, 0),
			UnitPrice: *p.UnitPrice,
			Image:     p.Image,
			Slug:      slug,
		}, nil
	}
	if catalog == nil {
		return cart.Product{}, pkgerrors.New(pkgerrors.CodeInternal, "catalog unavailable")
	}
	product, err := catalog.ProductBySlug(ctx, slug)
	if err != nil {
		if storefrontapi.IsNotFound(err) {
			return cart.Product{}, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "product not found").
				WithDetails(map[string]string{"slug": slug})
		}
		if typed := pkgerrors.As(err); typed != nil {
			return cart.Product{}, typed
		}
		return cart.Product{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "product lookup failed")
	}
	return cart.Product{
		ProductID: product.ID,
		Name:      product.Name,
		UnitPrice: product.PriceKES,
		Image:     product.PrimaryImage(),
		Slug:      product.Slug,
	}, nil
}

func bundleFromRequest(w http.ResponseWriter, r *http.Request, logg *logger.Logger) (*session.Bundle, bool) {
	bundle := middleware.SessionFromContext(r.Context())
	if bundle == nil {
		responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "session context missing"))
		return nil, false
	}
	return bundle, true
}
