package checkout

import (
	"context"
	"errors"

	pkgerrors "github.com/mosketh/storefront/pkg/errors"
	"github.com/mosketh/storefront/pkg/storefrontapi"
)

// TokenSource yields the bearer token for the current customer, or "".
type TokenSource interface {
	Token(ctx context.Context) string
}

// APIOrderCreator places orders through the storefront backend.
type APIOrderCreator struct {
	client *storefrontapi.Client
	tokens TokenSource
}

// NewAPIOrderCreator binds the backend client to a customer's token source.
func NewAPIOrderCreator(client *storefrontapi.Client, tokens TokenSource) *APIOrderCreator {
	return &APIOrderCreator{client: client, tokens: tokens}
}

// CreateOrder implements OrderCreator. Every failure is reported as *SubmissionFailedError.
func (c *APIOrderCreator) CreateOrder(ctx context.Context, req OrderRequest, idempotencyKey string) (Confirmation, error) {
	body := storefrontapi.CreateOrderRequest{
		UserID:          req.CustomerID,
		Items:           make([]storefrontapi.OrderItem, 0, len(req.Items)),
		TotalKES:        req.Total,
		CustomerName:    req.CustomerName,
		CustomerEmail:   req.CustomerEmail,
		CustomerPhone:   req.CustomerPhone,
		ShippingAddress: req.ShippingAddress,
	}
	for _, item := range req.Items {
		body.Items = append(body.Items, storefrontapi.OrderItem{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			PriceKES:  item.UnitPrice,
		})
	}

	token := ""
	if c.tokens != nil {
		token = c.tokens.Token(ctx)
	}
	order, err := c.client.CreateOrder(ctx, token, body, idempotencyKey)
	if err != nil {
		return Confirmation{}, submissionError(err)
	}
	return Confirmation{
		OrderID:     order.ID,
		OrderNumber: order.OrderNumber,
		Total:       order.TotalKES,
	}, nil
}

func submissionError(err error) *SubmissionFailedError {
	var apiErr *storefrontapi.APIError
	if errors.As(err, &apiErr) {
		detail := apiErr.Message
		if apiErr.Status == 0 {
			detail = "could not reach the order service"
		}
		return &SubmissionFailedError{Detail: detail, Code: apiErr.Code, Status: apiErr.Status, Cause: err}
	}
	if pkgerrors.IsCode(err, pkgerrors.CodeDependency) {
		return &SubmissionFailedError{Detail: "order service temporarily unavailable", Cause: err}
	}
	return &SubmissionFailedError{Detail: err.Error(), Cause: err}
}
