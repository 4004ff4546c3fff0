package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	pkgerrors "github.com/mosketh/storefront/pkg/errors"
	"github.com/mosketh/storefront/pkg/logger"
	"github.com/mosketh/storefront/pkg/metrics"
	"github.com/mosketh/storefront/pkg/storage"
	"github.com/mosketh/storefront/pkg/storefrontapi"
)

// StorageName is the fixed key the auth session is persisted under.
const StorageName = "auth-storage"

const schemaVersion = 1

// User is the logged-in account profile.
type User struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Role      string `json:"role,omitempty"`
}

// ContactDefaults prefills the checkout form for a logged-in user.
type ContactDefaults struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
}

// Authenticator exchanges credentials for a token.
type Authenticator interface {
	Login(ctx context.Context, email, password string) (storefrontapi.LoginResult, error)
}

// SessionParams groups dependencies for the auth session.
type SessionParams struct {
	Storage       storage.Store
	Key           string
	Authenticator Authenticator
	Logger        *logger.Logger
	Metrics       *metrics.StorefrontMetrics
	Now           func() time.Time
}

type persisted struct {
	Version int    `json:"version"`
	User    *User  `json:"user"`
	Token   string `json:"token"`
}

// Session holds one client's login state.
type Session struct {
	mu      sync.Mutex
	user    *User
	token   string
	storage storage.Store
	key     string
	authn   Authenticator
	logg    *logger.Logger
	metrics *metrics.StorefrontMetrics
	now     func() time.Time
}

// NewSession builds a session and restores any persisted login.
func NewSession(ctx context.Context, params SessionParams) (*Session, error) {
	if params.Storage == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "auth storage is required")
	}
	if params.Authenticator == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "authenticator is required")
	}
	s := &Session{
		storage: params.Storage,
		key:     params.Key,
		authn:   params.Authenticator,
		logg:    params.Logger,
		metrics: params.Metrics,
		now:     params.Now,
	}
	if s.key == "" {
		s.key = StorageName
	}
	if s.logg == nil {
		s.logg = logger.Nop()
	}
	if s.now == nil {
		s.now = time.Now
	}

	payload, err := s.storage.Load(ctx, s.key)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return s, nil
	case err != nil:
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading auth session")
	}
	var state persisted
	if err := json.Unmarshal(payload, &state); err != nil || state.Version != schemaVersion {
		s.logg.Warn(s.logg.WithField(ctx, "storage_key", s.key), "discarding persisted auth session")
		return s, nil
	}
	if state.User != nil && state.User.ID != "" && state.Token != "" {
		s.user = state.User
		s.token = state.Token
	}
	return s, nil
}

// Login authenticates against the backend and stores the returned token.
func (s *Session) Login(ctx context.Context, email, password string) (User, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return User{}, pkgerrors.New(pkgerrors.CodeValidation, "email and password are required")
	}

	res, err := s.authn.Login(ctx, email, password)
	if err != nil {
		if storefrontapi.IsUnauthorized(err) {
			return User{}, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid email or password")
		}
		if typed := pkgerrors.As(err); typed != nil {
			return User{}, typed
		}
		return User{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "login failed")
	}
	if res.Token == "" || res.User.ID == "" {
		return User{}, pkgerrors.New(pkgerrors.CodeDependency, "login response missing token or user")
	}

	user := User{
		ID:        res.User.ID,
		Email:     res.User.Email,
		FirstName: res.User.FirstName,
		LastName:  res.User.LastName,
		Role:      res.User.Role,
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = &user
	s.token = res.Token
	return user, s.persistLocked(ctx)
}

// Logout forgets the current login.
func (s *Session) Logout(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = nil
	s.token = ""
	if err := s.storage.Delete(ctx, s.key); err != nil {
		s.metrics.IncPersistFailure("auth")
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clearing auth session")
	}
	return nil
}

// Identity returns the current identity. An expired token is dropped and yields Guest.
func (s *Session) Identity(ctx context.Context) Identity {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.activeLocked(ctx) {
		return Guest()
	}
	return Authenticated(s.user.ID)
}

// Token returns the bearer token for backend calls, or "" for guests.
func (s *Session) Token(ctx context.Context) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.activeLocked(ctx) {
		return ""
	}
	return s.token
}

// User returns the logged-in profile.
func (s *Session) User(ctx context.Context) (User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.activeLocked(ctx) {
		return User{}, false
	}
	return *s.user, true
}

// ContactDefaults returns the checkout prefill for the logged-in user. Guests get empty defaults.
func (s *Session) ContactDefaults(ctx context.Context) ContactDefaults {
	user, ok := s.User(ctx)
	if !ok {
		return ContactDefaults{}
	}
	return ContactDefaults{FirstName: user.FirstName, LastName: user.LastName, Email: user.Email}
}

func (s *Session) activeLocked(ctx context.Context) bool {
	if s.user == nil || s.token == "" {
		return false
	}
	if exp, ok := tokenExpiry(s.token); ok && !s.now().Before(exp) {
		ctx = s.logg.WithUserID(ctx, s.user.ID)
		s.logg.Info(ctx, "auth token expired, falling back to guest")
		s.user = nil
		s.token = ""
		if err := s.storage.Delete(ctx, s.key); err != nil {
			s.metrics.IncPersistFailure("auth")
			s.logg.Warn(ctx, "expired auth session not cleared from storage")
		}
		return false
	}
	return true
}

func (s *Session) persistLocked(ctx context.Context) error {
	payload, err := json.Marshal(persisted{Version: schemaVersion, User: s.user, Token: s.token})
	if err != nil {
		return fmt.Errorf("encode auth session: %w", err)
	}
	if err := s.storage.Save(ctx, s.key, payload); err != nil {
		s.metrics.IncPersistFailure("auth")
		s.logg.Warn(s.logg.WithField(ctx, "storage_key", s.key), "auth session not persisted")
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persisting auth session")
	}
	return nil
}
