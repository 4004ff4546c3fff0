package controllers

import (
	"net/http"

	"github.com/mosketh/storefront/api/responses"
	"github.com/mosketh/storefront/api/validators"
	"github.com/mosketh/storefront/internal/auth"
	"github.com/mosketh/storefront/internal/session"
	"github.com/mosketh/storefront/pkg/logger"
)

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type sessionResponse struct {
	Authenticated   bool                 `json:"authenticated"`
	CustomerID      string               `json:"customerId"`
	User            *auth.User           `json:"user,omitempty"`
	ContactDefaults auth.ContactDefaults `json:"contactDefaults"`
}

func newSessionResponse(r *http.Request, bundle *session.Bundle) sessionResponse {
	ctx := r.Context()
	resp := sessionResponse{
		CustomerID:      bundle.Auth.Identity(ctx).CustomerID(),
		ContactDefaults: bundle.Auth.ContactDefaults(ctx),
	}
	if user, ok := bundle.Auth.User(ctx); ok {
		resp.Authenticated = true
		resp.User = &user
	}
	return resp
}

// AuthLogin exchanges credentials for a backend token held in the session.
func AuthLogin(logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		bundle, ok := bundleFromRequest(w, r, logg)
		if !ok {
			return
		}

		var payload loginRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if _, err := bundle.Auth.Login(r.Context(), payload.Email, payload.Password); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newSessionResponse(r, bundle))
	}
}

func AuthLogout(logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		bundle, ok := bundleFromRequest(w, r, logg)
		if !ok {
			return
		}
		if err := bundle.Auth.Logout(r.Context()); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newSessionResponse(r, bundle))
	}
}

// AuthMe reports the session's identity and the checkout prefill for it.
func AuthMe(logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		bundle, ok := bundleFromRequest(w, r, logg)
		if !ok {
			return
		}
		responses.WriteSuccess(w, newSessionResponse(r, bundle))
	}
}
