package checkout

import (
	"errors"
	"fmt"

	"github.com/mosketh/storefront/internal/cart"
	pkgerrors "github.com/mosketh/storefront/pkg/errors"
)

var (
	// ErrEmptyCart is returned when checkout is attempted with no line items.
	ErrEmptyCart = errors.New("cart is empty")
	// ErrSubmissionInProgress is returned while another submission for the same cart is in flight.
	ErrSubmissionInProgress = errors.New("an order submission is already in progress")
)

// ValidationError names the contact field that is missing or invalid.
type ValidationError struct {
	Field  string
	Reason string
	// Fields holds every failing field, keyed by its JSON name.
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// SubmissionFailedError carries the order-creation failure for display. The cart is left intact.
type SubmissionFailedError struct {
	Detail string
	Code   string
	Status int
	Cause  error
}

func (e *SubmissionFailedError) Error() string {
	return "order submission failed: " + e.Detail
}

func (e *SubmissionFailedError) Unwrap() error {
	return e.Cause
}

// Classify maps checkout and cart errors onto API error codes.
func Classify(err error) *pkgerrors.Error {
	if err == nil {
		return nil
	}

	var validationErr *ValidationError
	var submitErr *SubmissionFailedError
	switch {
	case errors.As(err, &validationErr):
		fields := validationErr.Fields
		if len(fields) == 0 {
			fields = map[string]string{validationErr.Field: validationErr.Reason}
		}
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "validation failed").WithDetails(fields)
	case errors.Is(err, ErrEmptyCart):
		return pkgerrors.Wrap(pkgerrors.CodeEmptyCart, err, "cart is empty")
	case errors.Is(err, ErrSubmissionInProgress):
		return pkgerrors.Wrap(pkgerrors.CodeSubmissionInProgress, err, "order submission already in progress")
	case errors.As(err, &submitErr):
		details := map[string]any{"detail": submitErr.Detail}
		if submitErr.Code != "" {
			details["code"] = submitErr.Code
		}
		return pkgerrors.Wrap(pkgerrors.CodeSubmissionFailed, err, submitErr.Detail).WithDetails(details)
	case errors.Is(err, cart.ErrCartLocked):
		return pkgerrors.Wrap(pkgerrors.CodeCartLocked, err, "cart is locked")
	}
	if typed := pkgerrors.As(err); typed != nil {
		return typed
	}
	return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "checkout failed")
}
