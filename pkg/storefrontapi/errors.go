package storefrontapi

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrUnreadableData marks a 2xx success whose body could not be decoded. The
// backend acted on the request; only the reply is lost.
var ErrUnreadableData = errors.New("success response with unreadable data")

// APIError is any non-success answer from the backend, including transport failures (Status 0).
type APIError struct {
	Status  int
	Message string
	Code    string
	Cause   error
}

func (e *APIError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = http.StatusText(e.Status)
	}
	if e.Status == 0 {
		if e.Cause != nil {
			return fmt.Sprintf("storefront api: %s: %v", msg, e.Cause)
		}
		return "storefront api: " + msg
	}
	return fmt.Sprintf("storefront api %d: %s", e.Status, msg)
}

func (e *APIError) Unwrap() error {
	return e.Cause
}

// IsUnauthorized reports whether err is a 401 from the backend.
func IsUnauthorized(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusUnauthorized
}

// IsNotFound reports whether err is a 404 from the backend.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound
}

func newAPIError(status int, env envelope, decoded bool) *APIError {
	apiErr := &APIError{Status: status}
	if decoded {
		apiErr.Code = env.Code
		apiErr.Message = env.Error
		if apiErr.Message == "" {
			apiErr.Message = env.Message
		}
	}
	if apiErr.Message == "" {
		apiErr.Message = http.StatusText(status)
	}
	if apiErr.Message == "" {
		apiErr.Message = "request failed"
	}
	return apiErr
}
