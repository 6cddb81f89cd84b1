// Package orders reads placed orders and submits shipping information.
package orders

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/atinyakov/shopfront/internal/client/api"
	"github.com/atinyakov/shopfront/internal/models"
)

// Doer issues requests against the backend. Implemented by the gateway.
type Doer interface {
	Do(ctx context.Context, method, path string, body any) (*http.Response, error)
}

// Client accesses placed orders.
type Client struct {
	gateway Doer
}

// NewClient constructs an orders Client.
func NewClient(gateway Doer) *Client {
	return &Client{gateway: gateway}
}

// Get fetches a placed order by id.
func (c *Client) Get(ctx context.Context, id int64) (*models.Order, error) {
	resp, err := c.gateway.Do(ctx, http.MethodGet, fmt.Sprintf("/order/%d", id), nil)
	if err != nil {
		return nil, &api.TransportError{Op: "load order", Err: err}
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, &api.TransportError{Op: "load order", Status: resp.StatusCode}
	}
	var order models.Order
	if err := json.NewDecoder(resp.Body).Decode(&order); err != nil {
		return nil, &api.TransportError{Op: "load order", Err: err}
	}
	return &order, nil
}

// UpdateClientInfo attaches shipping information to an order. Required
// fields are validated locally before any network call.
func (c *Client) UpdateClientInfo(ctx context.Context, id int64, info models.ClientInfo) error {
	if info.FirstName == "" || info.LastName == "" || info.Email == "" || info.Address == "" {
		return &api.ValidationError{Reason: "name, email and address are required"}
	}
	resp, err := c.gateway.Do(ctx, http.MethodPatch, fmt.Sprintf("/order/%d/update_client_info/", id), info)
	if err != nil {
		return &api.TransportError{Op: "update order info", Err: err}
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return &api.TransportError{Op: "update order info", Status: resp.StatusCode}
	}
	return nil
}
