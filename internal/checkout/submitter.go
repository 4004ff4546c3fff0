package checkout

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/mosketh/storefront/internal/auth"
	"github.com/mosketh/storefront/internal/cart"
	pkgerrors "github.com/mosketh/storefront/pkg/errors"
	"github.com/mosketh/storefront/pkg/logger"
	"github.com/mosketh/storefront/pkg/metrics"
)

// Phase is the state of one submission attempt.
type Phase string

const (
	PhaseIdle       Phase = "idle"
	PhaseValidating Phase = "validating"
	PhaseSubmitting Phase = "submitting"
	PhaseSucceeded  Phase = "succeeded"
	PhaseFailed     Phase = "failed"
)

// Terminal reports whether the attempt has finished.
func (p Phase) Terminal() bool {
	return p == PhaseSucceeded || p == PhaseFailed
}

// Cart is the cart surface a submission needs.
type Cart interface {
	BeginCheckout() (cart.Snapshot, error)
	CompleteCheckout(ctx context.Context) error
	AbortCheckout()
}

// IdentitySource yields the current customer identity.
type IdentitySource interface {
	Identity(ctx context.Context) auth.Identity
}

// OrderCreator creates an order. Implementations own their timeout and retry policy.
type OrderCreator interface {
	CreateOrder(ctx context.Context, req OrderRequest, idempotencyKey string) (Confirmation, error)
}

// SubmitterParams groups dependencies for the order submitter.
type SubmitterParams struct {
	Cart     Cart
	Identity IdentitySource
	Orders   OrderCreator
	Logger   *logger.Logger
	Metrics  *metrics.StorefrontMetrics
	// NewAttemptID defaults to uuid.NewString and doubles as the idempotency key.
	NewAttemptID func() string
}

// Result describes a placed order.
type Result struct {
	OrderID     string
	OrderNumber string
	Total       int64
	AttemptID   string
}

// Submitter runs checkout attempts for one cart, at most one at a time.
type Submitter struct {
	cart     Cart
	identity IdentitySource
	orders   OrderCreator
	logg     *logger.Logger
	metrics  *metrics.StorefrontMetrics
	newID    func() string

	inFlight atomic.Bool
	mu       sync.Mutex
	phase    Phase
}

// NewSubmitter builds a submitter with the required dependencies.
func NewSubmitter(params SubmitterParams) (*Submitter, error) {
	if params.Cart == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "cart is required")
	}
	if params.Identity == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "identity source is required")
	}
	if params.Orders == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "order creator is required")
	}
	s := &Submitter{
		cart:     params.Cart,
		identity: params.Identity,
		orders:   params.Orders,
		logg:     params.Logger,
		metrics:  params.Metrics,
		newID:    params.NewAttemptID,
		phase:    PhaseIdle,
	}
	if s.logg == nil {
		s.logg = logger.Nop()
	}
	if s.newID == nil {
		s.newID = uuid.NewString
	}
	return s, nil
}

// Phase returns the phase of the latest attempt, or PhaseIdle before the first one.
func (s *Submitter) Phase() Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase
}

func (s *Submitter) setPhase(p Phase) {
	s.mu.Lock()
	s.phase = p
	s.mu.Unlock()
}

// Submit validates form, places the order for the current cart and clears the cart on success.
// On failure the cart is untouched and the error is one of *ValidationError, ErrEmptyCart,
// ErrSubmissionInProgress or *SubmissionFailedError.
func (s *Submitter) Submit(ctx context.Context, form Form) (Result, error) {
	if !s.inFlight.CompareAndSwap(false, true) {
		s.metrics.IncSubmission(metrics.OutcomeInProgress)
		return Result{}, ErrSubmissionInProgress
	}
	defer s.inFlight.Store(false)

	attemptID := s.newID()
	ctx = s.logg.WithField(ctx, "attempt_id", attemptID)
	s.setPhase(PhaseValidating)

	if err := Validate(form); err != nil {
		s.setPhase(PhaseFailed)
		s.metrics.IncSubmission(metrics.OutcomeValidation)
		var vErr *ValidationError
		if errors.As(err, &vErr) {
			ctx = s.logg.WithField(ctx, "invalid_fields", strings.Join(sortedFields(vErr.Fields), ","))
		}
		s.logg.Info(ctx, "checkout.validation_failed")
		return Result{}, err
	}

	snap, err := s.cart.BeginCheckout()
	if err != nil {
		s.setPhase(PhaseFailed)
		s.metrics.IncSubmission(metrics.OutcomeInProgress)
		if errors.Is(err, cart.ErrCartLocked) {
			return Result{}, ErrSubmissionInProgress
		}
		return Result{}, err
	}
	if snap.IsEmpty() {
		s.cart.AbortCheckout()
		s.setPhase(PhaseFailed)
		s.metrics.IncSubmission(metrics.OutcomeEmptyCart)
		s.logg.Info(ctx, "checkout.empty_cart")
		return Result{}, ErrEmptyCart
	}

	identity := s.identity.Identity(ctx)
	req := BuildOrderRequest(snap, form, identity)
	ctx = s.logg.WithFields(ctx, map[string]any{
		"customer_id": req.CustomerID,
		"total":       req.Total,
		"item_count":  snap.ItemCount,
	})

	s.setPhase(PhaseSubmitting)
	started := time.Now()
	confirmation, err := s.orders.CreateOrder(ctx, req, attemptID)
	if err != nil {
		s.cart.AbortCheckout()
		s.setPhase(PhaseFailed)
		s.metrics.ObserveSubmission(metrics.OutcomeFailed, time.Since(started))
		s.metrics.IncSubmission(metrics.OutcomeFailed)
		submitErr := asSubmissionFailed(err)
		s.logg.Error(ctx, "checkout.submission_failed", submitErr)
		return Result{}, submitErr
	}
	s.metrics.ObserveSubmission(metrics.OutcomeSucceeded, time.Since(started))

	if err := s.cart.CompleteCheckout(ctx); err != nil {
		// The order exists; the cart is already empty in memory.
		s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "cart cleared but not persisted after order")
	}
	s.setPhase(PhaseSucceeded)
	s.metrics.IncSubmission(metrics.OutcomeSucceeded)

	ctx = s.logg.WithFields(ctx, map[string]any{
		"order_id":     confirmation.OrderID,
		"order_number": confirmation.OrderNumber,
	})
	s.logg.Info(ctx, "checkout.succeeded")

	total := confirmation.Total
	if total == 0 {
		total = req.Total
	}
	return Result{
		OrderID:     confirmation.OrderID,
		OrderNumber: confirmation.OrderNumber,
		Total:       total,
		AttemptID:   attemptID,
	}, nil
}

func asSubmissionFailed(err error) *SubmissionFailedError {
	var submitErr *SubmissionFailedError
	if errors.As(err, &submitErr) {
		return submitErr
	}
	return &SubmissionFailedError{Detail: err.Error(), Cause: err}
}
