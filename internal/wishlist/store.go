package wishlist

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/multierr"

	"github.com/mosketh/storefront/internal/cart"
	pkgerrors "github.com/mosketh/storefront/pkg/errors"
	"github.com/mosketh/storefront/pkg/logger"
	"github.com/mosketh/storefront/pkg/metrics"
	"github.com/mosketh/storefront/pkg/storage"
)

// StorageName is the fixed key the wishlist is persisted under.
const StorageName = "wishlist-storage"

const schemaVersion = 1

type envelope struct {
	Version int            `json:"version"`
	Items   []cart.Product `json:"items"`
}

// CartAdder is the cart surface MoveToCart needs.
type CartAdder interface {
	AddItem(ctx context.Context, product cart.Product) (cart.Snapshot, error)
}

// StoreParams groups dependencies for the wishlist store.
type StoreParams struct {
	Storage storage.Store
	Key     string
	Logger  *logger.Logger
	Metrics *metrics.StorefrontMetrics
}

// Store is one client's wishlist: an ordered set of products keyed by product id.
type Store struct {
	mu      sync.Mutex
	items   []cart.Product
	storage storage.Store
	key     string
	logg    *logger.Logger
	metrics *metrics.StorefrontMetrics
}

// NewStore builds a wishlist and restores any persisted items.
func NewStore(ctx context.Context, params StoreParams) (*Store, error) {
	if params.Storage == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "wishlist storage is required")
	}
	s := &Store{
		items:   []cart.Product{},
		storage: params.Storage,
		key:     params.Key,
		logg:    params.Logger,
		metrics: params.Metrics,
	}
	if s.key == "" {
		s.key = StorageName
	}
	if s.logg == nil {
		s.logg = logger.Nop()
	}

	payload, err := s.storage.Load(ctx, s.key)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return s, nil
	case err != nil:
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading wishlist")
	}
	var env envelope
	if err := json.Unmarshal(payload, &env); err != nil || env.Version != schemaVersion {
		s.logg.Warn(s.logg.WithField(ctx, "storage_key", s.key), "discarding persisted wishlist")
		return s, nil
	}
	for _, p := range env.Items {
		if p.ProductID != "" && s.indexLocked(p.ProductID) < 0 {
			s.items = append(s.items, p)
		}
	}
	return s, nil
}

// Items returns a copy of the wishlisted products in insertion order.
func (s *Store) Items() []cart.Product {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]cart.Product, len(s.items))
	copy(out, s.items)
	return out
}

// Contains reports whether productID is wishlisted.
func (s *Store) Contains(productID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.indexLocked(productID) >= 0
}

// Add wishlists product. Adding a product that is already present is a no-op.
func (s *Store) Add(ctx context.Context, product cart.Product) error {
	if product.ProductID == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.indexLocked(product.ProductID) >= 0 {
		return nil
	}
	s.items = append(s.items, product)
	return s.persistLocked(ctx)
}

// Remove drops productID. Absent ids are a no-op.
func (s *Store) Remove(ctx context.Context, productID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.removeLocked(ctx, productID)
}

// Clear empties the wishlist.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = []cart.Product{}
	return s.persistLocked(ctx)
}

// MoveToCart adds the wishlisted product to c and removes it from the wishlist.
// The wishlist is left unchanged when the cart refuses the item.
func (s *Store) MoveToCart(ctx context.Context, productID string, c CartAdder) (cart.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexLocked(productID)
	if idx < 0 {
		return cart.Snapshot{}, pkgerrors.New(pkgerrors.CodeNotFound, "product is not in the wishlist")
	}
	snap, cartErr := c.AddItem(ctx, s.items[idx])
	if cartErr != nil && !pkgerrors.IsCode(cartErr, pkgerrors.CodeDependency) {
		return snap, cartErr
	}
	// A dependency error means the cart kept the item in memory, so the move still happens.
	return snap, multierr.Combine(cartErr, s.removeLocked(ctx, productID))
}

func (s *Store) removeLocked(ctx context.Context, productID string) error {
	idx := s.indexLocked(productID)
	if idx < 0 {
		return nil
	}
	next := make([]cart.Product, 0, len(s.items)-1)
	next = append(next, s.items[:idx]...)
	next = append(next, s.items[idx+1:]...)
	s.items = next
	return s.persistLocked(ctx)
}

func (s *Store) indexLocked(productID string) int {
	for i := range s.items {
		if s.items[i].ProductID == productID {
			return i
		}
	}
	return -1
}

func (s *Store) persistLocked(ctx context.Context) error {
	payload, err := json.Marshal(envelope{Version: schemaVersion, Items: s.items})
	if err != nil {
		return fmt.Errorf("encode wishlist: %w", err)
	}
	if err := s.storage.Save(ctx, s.key, payload); err != nil {
		s.metrics.IncPersistFailure("wishlist")
		s.logg.Warn(s.logg.WithField(ctx, "storage_key", s.key), "wishlist not persisted")
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persisting wishlist")
	}
	return nil
}
