package cart_test

import (
	"context"
	"net/http/httptest"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/atinyakov/shopfront/internal/client/api"
	"github.com/atinyakov/shopfront/internal/client/badge"
	"github.com/atinyakov/shopfront/internal/client/cart"
	"github.com/atinyakov/shopfront/internal/client/state"
	"github.com/atinyakov/shopfront/internal/models"
	"github.com/atinyakov/shopfront/internal/repository"
	handler "github.com/atinyakov/shopfront/internal/server/handler/http"
	"github.com/atinyakov/shopfront/internal/service"
)

// startBackend runs the development backend on an httptest server.
func startBackend(t *testing.T) *httptest.Server {
	t.Helper()
	store := repository.NewMemoryStore()
	store.SeedProducts([]models.Product{
		{ID: 7, Name: "Hooded Sweatshirt", Category: "men", Price: 49.90, Sizes: []string{"S", "M", "L"}},
	})
	authService := service.NewAuthService(store, []byte("e2e-secret"))
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

// TestAnonymousShopperScenario walks the full anonymous flow: a new
// identity, an empty cart, add, increment, checkout, and a fresh identity
// afterwards.
func TestAnonymousShopperScenario(t *testing.T) {
	ts := startBackend(t)

	clientState, err := state.Open(filepath.Join(t.TempDir(), "state.json"))
	require.NoError(t, err)
	gateway := api.NewGateway(ts.Client(), ts.URL, clientState, nil)
	hub := badge.NewHub()
	controller := cart.NewController(gateway, clientState, hub, nil)
	ctx := context.Background()

	// Identity absent: the first need creates a well-formed code.
	code, err := clientState.GetOrCreateCartCode()
	require.NoError(t, err)
	assert.Regexp(t, regexp.MustCompile(`^[A-Za-z0-9]{10}$`), code)

	// No cart exists server-side yet; this is not an error.
	snap, err := controller.Fetch(ctx)
	require.NoError(t, err)
	assert.Empty(t, snap.Items)

	// Add two units of product 7 in size M.
	snap, err = controller.AddItem(ctx, 7, 2, "M")
	require.NoError(t, err)
	require.Len(t, snap.Items, 1)
	assert.Equal(t, 2, snap.Items[0].Quantity)
	assert.Equal(t, "M", snap.Items[0].Size)
	assert.NotEmpty(t, snap.Items[0].ID, "the server assigns line ids")
	assert.InDelta(t, 99.80, snap.SumTotal, 0.001)
	assert.Equal(t, 2, hub.Count())

	// Increment: the re-fetched snapshot shows quantity 3.
	snap, err = controller.UpdateQuantity(ctx, snap.Items[0].ID, +1)
	require.NoError(t, err)
	assert.Equal(t, 3, snap.Items[0].Quantity)
	assert.InDelta(t, 149.70, snap.SumTotal, 0.001)
	assert.Equal(t, 3, hub.Count())

	// Checkout returns an order id and clears the identity.
	orderID, err := controller.Checkout(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), orderID)
	assert.Equal(t, 0, hub.Count())

	fresh, err := clientState.GetOrCreateCartCode()
	require.NoError(t, err)
	assert.NotEqual(t, code, fresh, "a new anonymous session starts with a new identity")

	// The checked-out cart is gone server-side; the new identity sees an
	// empty cart.
	snap, err = controller.Fetch(ctx)
	require.NoError(t, err)
	assert.Empty(t, snap.Items)
}

// TestDecrementToRemoveIsNotAThing pins the decrement policy end to end:
// going below one never removes the line.
func TestDecrementToRemoveIsNotAThing(t *testing.T) {
	ts := startBackend(t)

	clientState, err := state.Open(filepath.Join(t.TempDir(), "state.json"))
	require.NoError(t, err)
	gateway := api.NewGateway(ts.Client(), ts.URL, clientState, nil)
	controller := cart.NewController(gateway, clientState, nil, nil)
	ctx := context.Background()

	snap, err := controller.AddItem(ctx, 7, 1, "S")
	require.NoError(t, err)
	require.Len(t, snap.Items, 1)
	itemID := snap.Items[0].ID

	snap, err = controller.UpdateQuantity(ctx, itemID, -1)
	require.NoError(t, err)
	require.Len(t, snap.Items, 1)
	assert.Equal(t, 1, snap.Items[0].Quantity)

	// Removal is explicit.
	snap, err = controller.RemoveItem(ctx, itemID)
	require.NoError(t, err)
	assert.Empty(t, snap.Items)
}
