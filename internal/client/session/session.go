// Package session decides whether the current access token is usable,
// renews it through the refresh token and exposes the authenticated signal
// that gates guarded views.
package session

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/atinyakov/shopfront/internal/models"
)

// State is the session lifecycle state.
type State int

const (
	// StateUnknown is the initial state before the first check.
	StateUnknown State = iota
	// StateUnauthenticated means no usable access token exists.
	StateUnauthenticated
	// StateAuthenticated means the stored access token is not yet expired.
	StateAuthenticated
	// StateRefreshing means a token renewal is in flight.
	StateRefreshing
)

func (s State) String() string {
	switch s {
	case StateUnauthenticated:
		return "unauthenticated"
	case StateAuthenticated:
		return "authenticated"
	case StateRefreshing:
		return "refreshing"
	default:
		return "unknown"
	}
}

// TokenStorage is the persistence the manager reads and writes the pair
// through. Implemented by the client state store.
type TokenStorage interface {
	Tokens() *models.TokenPair
	SetTokens(pair models.TokenPair) error
	SetAccessToken(access string) error
	ClearTokens() error
}

// Doer issues requests against the backend. Implemented by the gateway.
type Doer interface {
	Do(ctx context.Context, method, path string, body any) (*http.Response, error)
}

// Manager owns the session state machine. All token reads and writes go
// through TokenStorage; the manager itself holds no credentials.
type Manager struct {
	gateway Doer
	store   TokenStorage
	log     *zap.Logger

	// now is the clock used for expiry checks; overridable in tests.
	now func() time.Time

	// group collapses concurrent refresh attempts: all callers holding the
	// same refresh token share one in-flight renewal and its outcome.
	group singleflight.Group

	mu       sync.Mutex
	state    State
	onChange []func(State)
}

// NewManager constructs a Manager in the Unknown state.
func NewManager(gateway Doer, store TokenStorage, log *zap.Logger) *Manager {
	if log == nil {
		log = zap.NewNop()
	}
	return &Manager{
		gateway: gateway,
		store:   store,
		log:     log,
		now:     time.Now,
		state:   StateUnknown,
	}
}

// State returns the last decided state without re-checking the token.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// OnChange registers fn to be called after every state transition.
// Callbacks run synchronously on the checking goroutine.
func (m *Manager) OnChange(fn func(State)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onChange = append(m.onChange, fn)
}

func (m *Manager) setState(s State) {
	m.mu.Lock()
	if m.state == s {
		m.mu.Unlock()
		return
	}
	m.state = s
	fns := make([]func(State), len(m.onChange))
	copy(fns, m.onChange)
	m.mu.Unlock()
	for _, fn := range fns {
		fn(s)
	}
}

// Check decides the current state, renewing the access token when it is
// expired and a refresh token is available. The expiry comparison uses
// wall-clock time at check time; there is no skew window, and renewal
// happens only at these guard boundaries, never mid-flight.
func (m *Manager) Check(ctx context.Context) State {
	pair := m.store.Tokens()
	if pair == nil || pair.Access == "" {
		m.setState(StateUnauthenticated)
		return StateUnauthenticated
	}

	exp, err := tokenExpiry(pair.Access)
	if err != nil {
		m.log.Debug("access token failed to decode", zap.Error(err))
		m.setState(StateUnauthenticated)
		return StateUnauthenticated
	}

	if exp.After(m.now()) {
		m.setState(StateAuthenticated)
		return StateAuthenticated
	}

	if pair.Refresh == "" {
		m.setState(StateUnauthenticated)
		return StateUnauthenticated
	}

	m.setState(StateRefreshing)
	if err := m.refresh(ctx, pair.Refresh); err != nil {
		// The stale pair stays in place; only an explicit logout clears it.
		m.log.Debug("token refresh failed", zap.Error(err))
		m.setState(StateUnauthenticated)
		return StateUnauthenticated
	}
	m.setState(StateAuthenticated)
	return StateAuthenticated
}

// IsAuthenticated runs Check and reports whether the session is usable.
func (m *Manager) IsAuthenticated(ctx context.Context) bool {
	return m.Check(ctx) == StateAuthenticated
}

// refresh renews the access token. Concurrent callers with the same refresh
// token share a single in-flight request through the singleflight group;
// the winning response is persisted once.
func (m *Manager) refresh(ctx context.Context, refreshToken string) error {
	_, err, _ := m.group.Do(refreshToken, func() (any, error) {
		resp, err := m.gateway.Do(ctx, http.MethodPost, "/token/refresh/", map[string]string{
			"refresh": refreshToken,
		})
		if err != nil {
			return nil, fmt.Errorf("refresh request: %w", err)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("refresh rejected: status %d", resp.StatusCode)
		}
		var out struct {
			Access string `json:"access"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
			return nil, fmt.Errorf("decode refresh response: %w", err)
		}
		if out.Access == "" {
			return nil, fmt.Errorf("refresh response missing access token")
		}
		if err := m.store.SetAccessToken(out.Access); err != nil {
			return nil, fmt.Errorf("persist access token: %w", err)
		}
		return nil, nil
	})
	return err
}

// Login authenticates with email and password and persists the minted pair.
func (m *Manager) Login(ctx context.Context, email, password string) error {
	resp, err := m.gateway.Do(ctx, http.MethodPost, "/login/", map[string]string{
		"email":    email,
		"password": password,
	})
	if err != nil {
		return fmt.Errorf("login request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("login rejected: status %d", resp.StatusCode)
	}
	var pair models.TokenPair
	if err := json.NewDecoder(resp.Body).Decode(&pair); err != nil {
		return fmt.Errorf("decode login response: %w", err)
	}
	if err := m.store.SetTokens(pair); err != nil {
		return fmt.Errorf("persist tokens: %w", err)
	}
	m.setState(StateAuthenticated)
	return nil
}

// Signup registers a new account and persists the pair returned by the
// backend, leaving the shopper signed in.
func (m *Manager) Signup(ctx context.Context, email, password, firstName, lastName string) error {
	resp, err := m.gateway.Do(ctx, http.MethodPost, "/signup/", map[string]string{
		"email":      email,
		"password":   password,
		"first_name": firstName,
		"last_name":  lastName,
	})
	if err != nil {
		return fmt.Errorf("signup request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return fmt.Errorf("signup rejected: status %d", resp.StatusCode)
	}
	var pair models.TokenPair
	if err := json.NewDecoder(resp.Body).Decode(&pair); err != nil {
		return fmt.Errorf("decode signup response: %w", err)
	}
	if err := m.store.SetTokens(pair); err != nil {
		return fmt.Errorf("persist tokens: %w", err)
	}
	m.setState(StateAuthenticated)
	return nil
}

// Logout destroys the persisted pair and moves to Unauthenticated. This is
// the only place tokens are cleared; a failed refresh leaves them alone.
func (m *Manager) Logout() error {
	if err := m.store.ClearTokens(); err != nil {
		return fmt.Errorf("clear tokens: %w", err)
	}
	m.setState(StateUnauthenticated)
	return nil
}

// tokenExpiry decodes the access token without verifying its signature
// (the client holds no signing key) and returns the exp claim.
func tokenExpiry(access string) (time.Time, error) {
	parser := jwt.NewParser()
	token, _, err := parser.ParseUnverified(access, jwt.MapClaims{})
	if err != nil {
		return time.Time{}, fmt.Errorf("parse access token: %w", err)
	}
	exp, err := token.Claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, fmt.Errorf("access token has no exp claim")
	}
	return exp.Time, nil
}
