package cart

// Action is a cart mutation understood by Reduce.
type Action interface {
	apply(items []LineItem) []LineItem
}

// AddItem increments the matching item by one or appends the product with quantity 1.
type AddItem struct {
	Product Product
}

// RemoveItem drops the matching item. Absent ids are a no-op.
type RemoveItem struct {
	ProductID string
}

// SetQuantity sets the matching item's quantity. Quantities below 1 remove the item.
type SetQuantity struct {
	ProductID string
	Quantity  int
}

// ClearItems empties the cart.
type ClearItems struct{}

// Reduce applies action to items and returns the new item list. items is never modified in place.
func Reduce(items []LineItem, action Action) []LineItem {
	if action == nil {
		return cloneItems(items)
	}
	return action.apply(items)
}

func (a AddItem) apply(items []LineItem) []LineItem {
	next := cloneItems(items)
	if a.Product.ProductID == "" {
		return next
	}
	if idx := indexOf(next, a.Product.ProductID); idx >= 0 {
		next[idx].Quantity++
		return next
	}
	return append(next, LineItem{
		ProductID: a.Product.ProductID,
		Name:      a.Product.Name,
		UnitPrice: a.Product.UnitPrice,
		Image:     a.Product.Image,
		Slug:      a.Product.Slug,
		Quantity:  1,
	})
}

func (a RemoveItem) apply(items []LineItem) []LineItem {
	next := make([]LineItem, 0, len(items))
	for _, item := range items {
		if item.ProductID == a.ProductID {
			continue
		}
		next = append(next, item)
	}
	return next
}

func (a SetQuantity) apply(items []LineItem) []LineItem {
	if a.Quantity < 1 {
		return RemoveItem{ProductID: a.ProductID}.apply(items)
	}
	next := cloneItems(items)
	if idx := indexOf(next, a.ProductID); idx >= 0 {
		next[idx].Quantity = a.Quantity
	}
	return next
}

func (ClearItems) apply([]LineItem) []LineItem {
	return []LineItem{}
}

// normalize enforces the snapshot invariants on untrusted input: positive quantities,
// one entry per product id (quantities summed, first display data kept).
func normalize(items []LineItem) []LineItem {
	next := make([]LineItem, 0, len(items))
	for _, item := range items {
		if item.ProductID == "" || item.Quantity < 1 {
			continue
		}
		if idx := indexOf(next, item.ProductID); idx >= 0 {
			next[idx].Quantity += item.Quantity
			continue
		}
		next = append(next, item)
	}
	return next
}

func indexOf(items []LineItem, productID string) int {
	for i := range items {
		if items[i].ProductID == productID {
			return i
		}
	}
	return -1
}

func cloneItems(items []LineItem) []LineItem {
	next := make([]LineItem, len(items), len(items)+1)
	copy(next, items)
	return next
}
