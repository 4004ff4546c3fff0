package cart

// Product is the catalog tuple copied into the cart when an item is first added.
// Prices are whole Kenyan shillings.
type Product struct {
	ProductID string `json:"productId"`
	Name      string `json:"name"`
	UnitPrice int64  `json:"unitPrice"`
	Image     string `json:"image,omitempty"`
	Slug      string `json:"slug,omitempty"`
}

// LineItem is one product and its quantity. Display data is frozen at add time.
type LineItem struct {
	ProductID string `json:"productId"`
	Name      string `json:"name"`
	UnitPrice int64  `json:"unitPrice"`
	Image     string `json:"image,omitempty"`
	Slug      string `json:"slug,omitempty"`
	Quantity  int    `json:"quantity"`
}

// Subtotal is UnitPrice * Quantity.
func (l LineItem) Subtotal() int64 {
	return l.UnitPrice * int64(l.Quantity)
}

// Product returns the catalog tuple the item was created from.
func (l LineItem) Product() Product {
	return Product{
		ProductID: l.ProductID,
		Name:      l.Name,
		UnitPrice: l.UnitPrice,
		Image:     l.Image,
		Slug:      l.Slug,
	}
}

// Snapshot is a read-only view of the cart. Total and ItemCount are always derived from Items.
type Snapshot struct {
	Items     []LineItem `json:"items"`
	Total     int64      `json:"total"`
	ItemCount int        `json:"itemCount"`
}

// IsEmpty reports whether the snapshot holds no line items.
func (s Snapshot) IsEmpty() bool {
	return len(s.Items) == 0
}

// Summarize derives a snapshot from items. The returned snapshot owns a copy of items.
func Summarize(items []LineItem) Snapshot {
	snap := Snapshot{Items: make([]LineItem, len(items))}
	copy(snap.Items, items)
	for _, item := range items {
		snap.Total += item.Subtotal()
		snap.ItemCount += item.Quantity
	}
	return snap
}
