// Package catalog provides read-only access to the product catalog:
// category listings, free-text search and product detail.
package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/atinyakov/shopfront/internal/client/api"
	"github.com/atinyakov/shopfront/internal/models"
)

// Doer issues requests against the backend. Implemented by the gateway.
type Doer interface {
	Do(ctx context.Context, method, path string, body any) (*http.Response, error)
}

// Client reads the product catalog.
type Client struct {
	gateway Doer
}

// NewClient constructs a catalog Client.
func NewClient(gateway Doer) *Client {
	return &Client{gateway: gateway}
}

func (c *Client) list(ctx context.Context, op, path string) ([]models.Product, error) {
	resp, err := c.gateway.Do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, &api.TransportError{Op: op, Err: err}
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, &api.TransportError{Op: op, Status: resp.StatusCode}
	}
	var products []models.Product
	if err := json.NewDecoder(resp.Body).Decode(&products); err != nil {
		return nil, &api.TransportError{Op: op, Err: err}
	}
	return products, nil
}

// ByCategory lists the products of a category, optionally narrowed by a
// search term.
func (c *Client) ByCategory(ctx context.Context, category, search string) ([]models.Product, error) {
	path := fmt.Sprintf("/products/%s/", url.PathEscape(category))
	if search != "" {
		path += "?search=" + url.QueryEscape(search)
	}
	return c.list(ctx, "list products", path)
}

// Search runs a free-text search over the whole catalog.
func (c *Client) Search(ctx context.Context, query string) ([]models.Product, error) {
	return c.list(ctx, "search products", "/products/search/?search="+url.QueryEscape(query))
}

// Detail fetches a single product with its long-form fields.
func (c *Client) Detail(ctx context.Context, id int64) (*models.Product, error) {
	resp, err := c.gateway.Do(ctx, http.MethodGet, fmt.Sprintf("/products/detail/%d/", id), nil)
	if err != nil {
		return nil, &api.TransportError{Op: "load product", Err: err}
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, &api.TransportError{Op: "load product", Status: resp.StatusCode}
	}
	var p models.Product
	if err := json.NewDecoder(resp.Body).Decode(&p); err != nil {
		return nil, &api.TransportError{Op: "load product", Err: err}
	}
	return &p, nil
}
