package storefrontapi

import (
	"context"
	"net/http"
	"net/url"
)

// Product is the catalog record served by GET /products/slug/{slug}.
type Product struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Slug     string   `json:"slug"`
	PriceKES int64    `json:"priceKES"`
	Images   []string `json:"images"`
	Stock    *int     `json:"stock,omitempty"`
}

// PrimaryImage returns the first image or "".
func (p Product) PrimaryImage() string {
	if len(p.Images) == 0 {
		return ""
	}
	return p.Images[0]
}

// ProductBySlug fetches a product by its URL slug.
func (c *Client) ProductBySlug(ctx context.Context, slug string) (Product, error) {
	var product Product
	err := c.do(ctx, request{
		method: http.MethodGet,
		path:   "/products/slug/" + url.PathEscape(slug),
	}, &product)
	if err != nil {
		return Product{}, err
	}
	return product, nil
}
