// Package cart orchestrates read and mutate operations on the server-held
// cart and reconciles local view state after each mutation. The server is
// authoritative: every successful mutation is followed by a re-fetch instead
// of a local merge, so totals and server-assigned item ids never drift.
package cart

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sync"

	"go.uber.org/zap"

	"github.com/atinyakov/shopfront/internal/client/api"
	"github.com/atinyakov/shopfront/internal/models"
)

// IdentityStore provides the durable anonymous cart identity.
type IdentityStore interface {
	GetOrCreateCartCode() (string, error)
	ClearCartCode() error
}

// Doer issues requests against the backend. Implemented by the gateway.
type Doer interface {
	Do(ctx context.Context, method, path string, body any) (*http.Response, error)
}

// Publisher receives the item count after every completed operation.
// Implemented by the badge hub.
type Publisher interface {
	Publish(count int)
}

// Controller owns the client-side cart state. It holds the last
// successfully fetched snapshot; failed mutations leave it untouched.
type Controller struct {
	gateway  Doer
	identity IdentityStore
	badge    Publisher
	log      *zap.Logger

	mu       sync.Mutex
	snapshot *models.CartSnapshot
}

// NewController constructs a Controller. badge may be nil when no views
// display a count.
func NewController(gateway Doer, identity IdentityStore, badge Publisher, log *zap.Logger) *Controller {
	if log == nil {
		log = zap.NewNop()
	}
	return &Controller{gateway: gateway, identity: identity, badge: badge, log: log}
}

// Snapshot returns the last successfully fetched snapshot, or nil before
// the first fetch.
func (c *Controller) Snapshot() *models.CartSnapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshot
}

// cartCode resolves the current identity, wrapping storage failures into
// the fatal identity error.
func (c *Controller) cartCode() (string, error) {
	code, err := c.identity.GetOrCreateCartCode()
	if err != nil {
		return "", fmt.Errorf("%w: %v", api.ErrIdentityUnavailable, err)
	}
	return code, nil
}

// Fetch loads the current snapshot from the server. A cart that does not
// exist server-side yet is not an error: it yields an empty snapshot.
// Transport failures keep the previous snapshot in place.
func (c *Controller) Fetch(ctx context.Context) (*models.CartSnapshot, error) {
	code, err := c.cartCode()
	if err != nil {
		return nil, err
	}

	resp, err := c.gateway.Do(ctx, http.MethodGet, "/get_cart?cart_code="+url.QueryEscape(code), nil)
	if err != nil {
		return nil, &api.TransportError{Op: "fetch cart", Err: err}
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		var snap models.CartSnapshot
		if err := json.NewDecoder(resp.Body).Decode(&snap); err != nil {
			return nil, &api.TransportError{Op: "fetch cart", Err: err}
		}
		if snap.CartCode == "" {
			snap.CartCode = code
		}
		c.setSnapshot(&snap)
		return &snap, nil
	case http.StatusNotFound:
		// No identity-associated cart exists yet.
		snap := &models.CartSnapshot{CartCode: code}
		c.setSnapshot(snap)
		return snap, nil
	default:
		return nil, &api.TransportError{Op: "fetch cart", Status: resp.StatusCode}
	}
}

func (c *Controller) setSnapshot(snap *models.CartSnapshot) {
	c.mu.Lock()
	c.snapshot = snap
	c.mu.Unlock()
	if c.badge != nil {
		c.badge.Publish(snap.ItemCount())
	}
}

// AddItem puts quantity units of a product into the cart. Repeated calls
// are not idempotent; each one increments, and debouncing is the caller's
// job. On success the snapshot is re-fetched so the server-assigned line id
// and totals are reconciled.
func (c *Controller) AddItem(ctx context.Context, productID int64, quantity int, size string) (*models.CartSnapshot, error) {
	if quantity < 1 {
		return nil, &api.ValidationError{Reason: "quantity must be at least 1"}
	}
	code, err := c.cartCode()
	if err != nil {
		return nil, err
	}

	body := map[string]any{
		"cart_code":  code,
		"product_id": productID,
		"quantity":   quantity,
	}
	if size != "" {
		body["size"] = size
	}
	resp, err := c.gateway.Do(ctx, http.MethodPost, "/add_item?cart_code="+url.QueryEscape(code), body)
	if err != nil {
		return nil, &api.TransportError{Op: "add item", Err: err}
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, &api.TransportError{Op: "add item", Status: resp.StatusCode}
	}

	return c.Fetch(ctx)
}

// UpdateQuantity changes the quantity of a cart line by delta. A delta that
// would drive the quantity below 1 is a silent no-op checked against the
// locally held snapshot; removal is only ever explicit via RemoveItem.
func (c *Controller) UpdateQuantity(ctx context.Context, itemID string, delta int) (*models.CartSnapshot, error) {
	c.mu.Lock()
	snap := c.snapshot
	c.mu.Unlock()
	if snap == nil {
		return nil, &api.ValidationError{Reason: "cart not loaded"}
	}

	current := 0
	found := false
	for _, it := range snap.Items {
		if it.ID == itemID {
			current = it.Quantity
			found = true
			break
		}
	}
	if !found {
		return nil, &api.ValidationError{Reason: "item is not in the cart"}
	}
	if current+delta < 1 {
		// No request is issued; the snapshot stays as-is.
		return snap, nil
	}

	code, err := c.cartCode()
	if err != nil {
		return nil, err
	}
	resp, err := c.gateway.Do(ctx, http.MethodPatch, "/update_quantity?cart_code="+url.QueryEscape(code), map[string]any{
		"item_id":  itemID,
		"quantity": current + delta,
	})
	if err != nil {
		return nil, &api.TransportError{Op: "update quantity", Err: err}
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, &api.TransportError{Op: "update quantity", Status: resp.StatusCode}
	}

	// Always re-fetch instead of adjusting local counts; the server may
	// have clamped the quantity to stock.
	return c.Fetch(ctx)
}

// RemoveItem deletes a cart line regardless of its quantity.
func (c *Controller) RemoveItem(ctx context.Context, itemID string) (*models.CartSnapshot, error) {
	code, err := c.cartCode()
	if err != nil {
		return nil, err
	}
	resp, err := c.gateway.Do(ctx, http.MethodPost, "/remove_item?cart_code="+url.QueryEscape(code), map[string]any{
		"item_id": itemID,
	})
	if err != nil {
		return nil, &api.TransportError{Op: "remove item", Err: err}
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, &api.TransportError{Op: "remove item", Status: resp.StatusCode}
	}

	return c.Fetch(ctx)
}

// Checkout places an order for the current cart. An empty snapshot is
// rejected locally before any network call. On success the cart identity
// is cleared so the next anonymous session starts fresh, and the new order
// id is returned for the caller to navigate to.
func (c *Controller) Checkout(ctx context.Context) (int64, error) {
	c.mu.Lock()
	snap := c.snapshot
	c.mu.Unlock()
	if snap == nil || len(snap.Items) == 0 {
		return 0, &api.ValidationError{Reason: "cart is empty"}
	}

	code, err := c.cartCode()
	if err != nil {
		return 0, err
	}
	resp, err := c.gateway.Do(ctx, http.MethodPost, "/create_order", map[string]string{
		"cart_code": code,
	})
	if err != nil {
		return 0, &api.TransportError{Op: "place order", Err: err}
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return 0, &api.TransportError{Op: "place order", Status: resp.StatusCode}
	}

	var out struct {
		OrderID int64 `json:"order_id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return 0, &api.TransportError{Op: "place order", Err: err}
	}

	// The order is placed at this point; a failure to clear the identity
	// must not unwind it.
	if err := c.identity.ClearCartCode(); err != nil {
		c.log.Warn("failed to clear cart identity after checkout", zap.Error(err))
	}
	c.setSnapshot(&models.CartSnapshot{})
	return out.OrderID, nil
}
