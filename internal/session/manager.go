package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mosketh/storefront/internal/auth"
	"github.com/mosketh/storefront/internal/cart"
	"github.com/mosketh/storefront/internal/checkout"
	"github.com/mosketh/storefront/internal/wishlist"
	"github.com/mosketh/storefront/pkg/logger"
	"github.com/mosketh/storefront/pkg/metrics"
	"github.com/mosketh/storefront/pkg/storage"
)

const defaultIdleTTL = 30 * time.Minute

// Bundle is the per-session set of client stores.
type Bundle struct {
	ID       string
	Cart     *cart.Store
	Wishlist *wishlist.Store
	Auth     *auth.Session
	Checkout *checkout.Submitter

	lastSeen time.Time
}

// OrderCreatorFactory binds an order creator to one session's token source.
type OrderCreatorFactory func(tokens checkout.TokenSource) checkout.OrderCreator

// ManagerParams groups dependencies for the session manager.
type ManagerParams struct {
	Storage       storage.Store
	Authenticator auth.Authenticator
	Orders        OrderCreatorFactory
	Logger        *logger.Logger
	Metrics       *metrics.StorefrontMetrics
	IdleTTL       time.Duration
	Now           func() time.Time
}

// Manager creates bundles on first use and evicts idle ones. Evicted bundles keep their
// persisted state and are restored on the next request.
type Manager struct {
	mu      sync.Mutex
	bundles map[string]*Bundle

	storage storage.Store
	authn   auth.Authenticator
	orders  OrderCreatorFactory
	logg    *logger.Logger
	metrics *metrics.StorefrontMetrics
	idleTTL time.Duration
	now     func() time.Time
}

// NewManager builds a session manager.
func NewManager(params ManagerParams) (*Manager, error) {
	if params.Storage == nil {
		return nil, errors.New("storage required")
	}
	if params.Authenticator == nil {
		return nil, errors.New("authenticator required")
	}
	if params.Orders == nil {
		return nil, errors.New("order creator factory required")
	}
	m := &Manager{
		bundles: map[string]*Bundle{},
		storage: params.Storage,
		authn:   params.Authenticator,
		orders:  params.Orders,
		logg:    params.Logger,
		metrics: params.Metrics,
		idleTTL: params.IdleTTL,
		now:     params.Now,
	}
	if m.logg == nil {
		m.logg = logger.Nop()
	}
	if m.idleTTL <= 0 {
		m.idleTTL = defaultIdleTTL
	}
	if m.now == nil {
		m.now = time.Now
	}
	return m, nil
}

// NewID returns a fresh session id.
func NewID() string {
	return uuid.NewString()
}

// Get returns the bundle for sessionID, restoring it from storage when it is not resident.
// Storage loads run without m.mu held; when two requests race to restore the same
// session, the first bundle inserted wins and the other is dropped.
func (m *Manager) Get(ctx context.Context, sessionID string) (*Bundle, error) {
	if sessionID == "" {
		return nil, errors.New("session id required")
	}
	if b, ok := m.resident(sessionID); ok {
		return b, nil
	}

	built, err := m.build(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if b, ok := m.bundles[sessionID]; ok {
		b.lastSeen = m.now()
		return b, nil
	}
	m.bundles[sessionID] = built
	m.logg.Debug(m.logg.WithSessionID(ctx, sessionID), "session bundle created")
	return built, nil
}

func (m *Manager) resident(sessionID string) (*Bundle, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.bundles[sessionID]
	if ok {
		b.lastSeen = m.now()
	}
	return b, ok
}

func (m *Manager) build(ctx context.Context, sessionID string) (*Bundle, error) {
	cartStore, err := cart.NewStore(ctx, cart.StoreParams{
		Storage: m.storage,
		Key:     storage.Key(cart.StorageName, sessionID),
		Logger:  m.logg,
		Metrics: m.metrics,
	})
	if err != nil {
		return nil, err
	}
	wishlistStore, err := wishlist.NewStore(ctx, wishlist.StoreParams{
		Storage: m.storage,
		Key:     storage.Key(wishlist.StorageName, sessionID),
		Logger:  m.logg,
		Metrics: m.metrics,
	})
	if err != nil {
		return nil, err
	}
	authSession, err := auth.NewSession(ctx, auth.SessionParams{
		Storage:       m.storage,
		Key:           storage.Key(auth.StorageName, sessionID),
		Authenticator: m.authn,
		Logger:        m.logg,
		Metrics:       m.metrics,
	})
	if err != nil {
		return nil, err
	}
	submitter, err := checkout.NewSubmitter(checkout.SubmitterParams{
		Cart:     cartStore,
		Identity: authSession,
		Orders:   m.orders(authSession),
		Logger:   m.logg,
		Metrics:  m.metrics,
	})
	if err != nil {
		return nil, err
	}
	return &Bundle{
		ID:       sessionID,
		Cart:     cartStore,
		Wishlist: wishlistStore,
		Auth:     authSession,
		Checkout: submitter,
		lastSeen: m.now(),
	}, nil
}

// Sweep evicts bundles idle for longer than the idle TTL and reports how many were dropped.
// Bundles whose cart is held by an in-flight submission are kept.
func (m *Manager) Sweep(ctx context.Context) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	cutoff := m.now().Add(-m.idleTTL)
	evicted := 0
	for id, b := range m.bundles {
		if b.lastSeen.After(cutoff) || b.Cart.Locked() {
			continue
		}
		delete(m.bundles, id)
		evicted++
	}
	if evicted > 0 {
		m.logg.Info(m.logg.WithField(ctx, "evicted", evicted), "idle sessions evicted")
	}
	return evicted
}

// Len reports the number of resident bundles.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.bundles)
}
