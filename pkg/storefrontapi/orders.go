package storefrontapi

import (
	"context"
	"errors"
	"net/http"
)

// OrderItem is one line of an order as the backend expects it.
type OrderItem struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
	PriceKES  int64  `json:"priceKES"`
}

// CreateOrderRequest is the POST /orders body.
type CreateOrderRequest struct {
	UserID          string      `json:"userId"`
	Items           []OrderItem `json:"items"`
	TotalKES        int64       `json:"totalKES"`
	CustomerName    string      `json:"customerName"`
	CustomerEmail   string      `json:"customerEmail"`
	CustomerPhone   string      `json:"customerPhone"`
	ShippingAddress string      `json:"shippingAddress"`
}

// Order is the created order returned by the backend.
type Order struct {
	ID          string `json:"id"`
	OrderNumber string `json:"orderNumber"`
	TotalKES    int64  `json:"totalKES"`
	Status      string `json:"status,omitempty"`
}

// CreateOrder places an order. idempotencyKey is forwarded so a retried attempt is not duplicated.
// A 2xx reply whose body cannot be read still means the order exists, so it
// returns an empty Order and no error.
func (c *Client) CreateOrder(ctx context.Context, token string, req CreateOrderRequest, idempotencyKey string) (Order, error) {
	var order Order
	err := c.do(ctx, request{
		method:         http.MethodPost,
		path:           "/orders",
		body:           req,
		token:          token,
		idempotencyKey: idempotencyKey,
	}, &order)
	if errors.Is(err, ErrUnreadableData) {
		logCtx := c.logg.WithFields(ctx, map[string]any{
			"idempotency_key": idempotencyKey,
			"error":           err.Error(),
		})
		c.logg.Warn(logCtx, "order created, response unreadable")
		return Order{}, nil
	}
	if err != nil {
		return Order{}, err
	}
	return order, nil
}
