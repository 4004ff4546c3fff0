package checkout

import (
	"github.com/mosketh/storefront/internal/auth"
	"github.com/mosketh/storefront/internal/cart"
)

// OrderItem is one cart line reduced to what the order needs.
type OrderItem struct {
	ProductID string
	Quantity  int
	UnitPrice int64
}

// OrderRequest is the payload handed to the order-creation collaborator.
type OrderRequest struct {
	CustomerID      string
	Items           []OrderItem
	Total           int64
	CustomerName    string
	CustomerEmail   string
	CustomerPhone   string
	ShippingAddress string
}

// Confirmation is the collaborator's answer for a created order.
type Confirmation struct {
	OrderID     string
	OrderNumber string
	Total       int64
}

// BuildOrderRequest maps a validated form and a non-empty snapshot into an OrderRequest.
func BuildOrderRequest(snap cart.Snapshot, form Form, identity auth.Identity) OrderRequest {
	form = form.Normalized()
	items := make([]OrderItem, 0, len(snap.Items))
	for _, item := range snap.Items {
		items = append(items, OrderItem{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
		})
	}
	return OrderRequest{
		CustomerID:      identity.CustomerID(),
		Items:           items,
		Total:           snap.Total,
		CustomerName:    form.CustomerName(),
		CustomerEmail:   form.Email,
		CustomerPhone:   form.Phone,
		ShippingAddress: form.Address,
	}
}
