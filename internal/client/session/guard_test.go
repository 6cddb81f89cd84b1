package session_test

import (
	"context"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/atinyakov/shopfront/internal/client/api"
	"github.com/atinyakov/shopfront/internal/client/session"
	"github.com/atinyakov/shopfront/internal/client/state"
	"github.com/atinyakov/shopfront/internal/models"
	"github.com/atinyakov/shopfront/internal/repository"
	handler "github.com/atinyakov/shopfront/internal/server/handler/http"
	"github.com/atinyakov/shopfront/internal/service"
)

const guardTestSecret = "guard-test-secret"

func startBackend(t *testing.T) *httptest.Server {
	t.Helper()
	store := repository.NewMemoryStore()
	authService := service.NewAuthService(store, []byte(guardTestSecret))
	cartService := service.NewCartService(store)
	router := handler.NewRouter(
		&handler.AuthHandler{AuthService: authService},
		&handler.CatalogHandler{CatalogService: cartService},
		&handler.CartHandler{CartService: cartService},
		&handler.OrderHandler{OrderService: cartService},
		authService,
		zap.NewNop(),
	)
	ts := httptest.NewServer(router)
	t.Cleanup(ts.Close)
	return ts
}

func signServerToken(t *testing.T, typ string, exp time.Time) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  "shopper@example.com",
		"type": typ,
		"exp":  exp.Unix(),
	})
	signed, err := token.SignedString([]byte(guardTestSecret))
	require.NoError(t, err)
	return signed
}

// TestGuard_ExpiredAccessValidRefresh exercises the guarded-view flow: an
// expired access token with a valid refresh token renews silently and the
// guard admits, exactly once and without a redirect.
func TestGuard_ExpiredAccessValidRefresh(t *testing.T) {
	ts := startBackend(t)

	clientState, err := state.Open(filepath.Join(t.TempDir(), "state.json"))
	require.NoError(t, err)
	require.NoError(t, clientState.SetTokens(models.TokenPair{
		Access:  signServerToken(t, "access", time.Now().Add(-time.Minute)),
		Refresh: signServerToken(t, "refresh", time.Now().Add(time.Hour)),
	}))

	gateway := api.NewGateway(ts.Client(), ts.URL, clientState, nil)
	manager := session.NewManager(gateway, clientState, nil)

	assert.True(t, manager.IsAuthenticated(context.Background()))
	assert.Equal(t, session.StateAuthenticated, manager.State())

	// The renewed token verifies against the backend.
	pair := clientState.Tokens()
	require.NotNil(t, pair)
	email, err := service.NewAuthService(repository.NewMemoryStore(), []byte(guardTestSecret)).VerifyAccess(pair.Access)
	require.NoError(t, err)
	assert.Equal(t, "shopper@example.com", email)
}

// TestGuard_ExpiredAccessBadRefresh exercises the other guard outcome: the
// refresh is rejected, the guard redirects to sign-in, and the stale pair
// stays in place for a manual logout.
func TestGuard_ExpiredAccessBadRefresh(t *testing.T) {
	ts := startBackend(t)

	expired := signServerToken(t, "access", time.Now().Add(-time.Minute))
	clientState, err := state.Open(filepath.Join(t.TempDir(), "state.json"))
	require.NoError(t, err)
	require.NoError(t, clientState.SetTokens(models.TokenPair{
		Access:  expired,
		Refresh: "not-a-refresh-token",
	}))

	gateway := api.NewGateway(ts.Client(), ts.URL, clientState, nil)
	manager := session.NewManager(gateway, clientState, nil)

	assert.False(t, manager.IsAuthenticated(context.Background()))
	assert.Equal(t, session.StateUnauthenticated, manager.State())

	pair := clientState.Tokens()
	require.NotNil(t, pair, "a failed refresh must not clear the pair")
	assert.Equal(t, expired, pair.Access)
}
