package cart

import (
	"context"
	"errors"
	"sync"

	pkgerrors "github.com/mosketh/storefront/pkg/errors"
	"github.com/mosketh/storefront/pkg/logger"
	"github.com/mosketh/storefront/pkg/metrics"
	"github.com/mosketh/storefront/pkg/storage"
)

// StorageName is the fixed key the cart snapshot is persisted under.
const StorageName = "cart-storage"

// ErrCartLocked is returned by mutators while an order submission holds the cart.
var ErrCartLocked = errors.New("cart is locked while an order is being submitted")

// StoreParams groups dependencies for the cart store.
type StoreParams struct {
	Storage storage.Store
	// Key overrides StorageName, typically storage.Key(StorageName, sessionID).
	Key     string
	Logger  *logger.Logger
	Metrics *metrics.StorefrontMetrics
}

// Store owns one client's cart snapshot. Mutations are serialized and persisted after they
// are applied in memory.
type Store struct {
	mu      sync.Mutex
	snap    Snapshot
	locked  bool
	storage storage.Store
	key     string
	logg    *logger.Logger
	metrics *metrics.StorefrontMetrics
}

// NewStore builds a cart store and restores any snapshot persisted under its key.
func NewStore(ctx context.Context, params StoreParams) (*Store, error) {
	if params.Storage == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "cart storage is required")
	}
	key := params.Key
	if key == "" {
		key = StorageName
	}
	logg := params.Logger
	if logg == nil {
		logg = logger.Nop()
	}
	s := &Store{
		snap:    Summarize(nil),
		storage: params.Storage,
		key:     key,
		logg:    logg,
		metrics: params.Metrics,
	}
	if err := s.restore(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) restore(ctx context.Context) error {
	payload, err := s.storage.Load(ctx, s.key)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading cart snapshot")
	}
	snap, err := Decode(payload)
	if err != nil {
		ctx = s.logg.WithField(ctx, "storage_key", s.key)
		s.logg.Warn(ctx, "discarding persisted cart: "+err.Error())
		return nil
	}
	s.snap = snap
	return nil
}

// Snapshot returns a copy of the current cart.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Summarize(s.snap.Items)
}

// AddItem adds one unit of product.
func (s *Store) AddItem(ctx context.Context, product Product) (Snapshot, error) {
	return s.dispatch(ctx, AddItem{Product: product})
}

// RemoveItem removes the product's line item if present.
func (s *Store) RemoveItem(ctx context.Context, productID string) (Snapshot, error) {
	return s.dispatch(ctx, RemoveItem{ProductID: productID})
}

// UpdateQuantity sets the product's quantity. Quantities below 1 remove the item.
func (s *Store) UpdateQuantity(ctx context.Context, productID string, quantity int) (Snapshot, error) {
	return s.dispatch(ctx, SetQuantity{ProductID: productID, Quantity: quantity})
}

// Clear empties the cart.
func (s *Store) Clear(ctx context.Context) (Snapshot, error) {
	return s.dispatch(ctx, ClearItems{})
}

func (s *Store) dispatch(ctx context.Context, action Action) (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.locked {
		return Summarize(s.snap.Items), pkgerrors.Wrap(pkgerrors.CodeCartLocked, ErrCartLocked, "cart is locked")
	}
	s.snap = Summarize(Reduce(s.snap.Items, action))
	return Summarize(s.snap.Items), s.persistLocked(ctx)
}

// BeginCheckout locks the cart against mutation and returns the snapshot to submit.
// It fails with ErrCartLocked when another submission already holds the cart.
func (s *Store) BeginCheckout() (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.locked {
		return Snapshot{}, ErrCartLocked
	}
	s.locked = true
	return Summarize(s.snap.Items), nil
}

// CompleteCheckout clears the cart after a successful order and releases the lock.
func (s *Store) CompleteCheckout(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.locked = false
	s.snap = Summarize(nil)
	return s.persistLocked(ctx)
}

// AbortCheckout releases the lock and leaves the cart untouched.
func (s *Store) AbortCheckout() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.locked = false
}

// Locked reports whether a submission currently holds the cart.
func (s *Store) Locked() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.locked
}

func (s *Store) persistLocked(ctx context.Context) error {
	payload, err := Encode(s.snap)
	if err == nil {
		err = s.storage.Save(ctx, s.key, payload)
	}
	if err != nil {
		s.metrics.IncPersistFailure("cart")
		ctx = s.logg.WithFields(ctx, map[string]any{"storage_key": s.key, "error": err.Error()})
		s.logg.Warn(ctx, "cart snapshot not persisted")
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persisting cart snapshot")
	}
	return nil
}
