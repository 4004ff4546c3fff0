package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/mosketh/storefront/internal/checkout"
	"github.com/mosketh/storefront/internal/session"
	"github.com/mosketh/storefront/pkg/config"
	"github.com/mosketh/storefront/pkg/storage"
	"github.com/mosketh/storefront/pkg/storefrontapi"
)

type stubAuthn struct{}

func (stubAuthn) Login(context.Context, string, string) (storefrontapi.LoginResult, error) {
	return storefrontapi.LoginResult{}, nil
}

type stubOrders struct{}

func (stubOrders) CreateOrder(context.Context, checkout.OrderRequest, string) (checkout.Confirmation, error) {
	return checkout.Confirmation{}, nil
}

func newManager(t *testing.T) *session.Manager {
	t.Helper()
	m, err := session.NewManager(session.ManagerParams{
		Storage:       storage.NewMemoryStore(),
		Authenticator: stubAuthn{},
		Orders:        func(checkout.TokenSource) checkout.OrderCreator { return stubOrders{} },
	})
	if err != nil {
		t.Fatalf("new manager: %v", err)
	}
	return m
}

type failingLoader struct{}

func (failingLoader) Get(context.Context, string) (*session.Bundle, error) {
	return nil, errors.New("storage offline")
}

var sessionCfg = config.SessionConfig{CookieName: "mk_sid"}

func TestSessionIssuesCookieWhenMissing(t *testing.T) {
	var seen *session.Bundle
	handler := Session(newManager(t), sessionCfg, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = SessionFromContext(r.Context())
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/cart", nil))

	if seen == nil {
		t.Fatal("expected bundle in context")
	}
	cookies := rec.Result().Cookies()
	if len(cookies) != 1 || cookies[0].Name != "mk_sid" {
		t.Fatalf("expected session cookie, got %v", cookies)
	}
	if cookies[0].Value != seen.ID || !cookies[0].HttpOnly {
		t.Fatalf("cookie does not match bundle: %+v", cookies[0])
	}
}

func TestSessionReusesExistingCookie(t *testing.T) {
	manager := newManager(t)
	sid := session.NewID()
	var seen *session.Bundle
	handler := Session(manager, sessionCfg, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = SessionFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/cart", nil)
	req.AddCookie(&http.Cookie{Name: "mk_sid", Value: sid})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if seen == nil || seen.ID != sid {
		t.Fatalf("expected bundle for %s, got %+v", sid, seen)
	}
	if len(rec.Result().Cookies()) != 0 {
		t.Fatal("no new cookie expected for a valid session")
	}
}

func TestSessionReplacesMalformedCookie(t *testing.T) {
	var seen *session.Bundle
	handler := Session(newManager(t), sessionCfg, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = SessionFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/cart", nil)
	req.AddCookie(&http.Cookie{Name: "mk_sid", Value: "../../etc"})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if seen == nil || seen.ID == "../../etc" {
		t.Fatalf("malformed cookie should be replaced, got %+v", seen)
	}
}

func TestSessionLoadFailure(t *testing.T) {
	called := false
	handler := Session(failingLoader{}, sessionCfg, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/cart", nil))

	if called {
		t.Fatal("handler should not run without a bundle")
	}
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 got %d", rec.Code)
	}
}
