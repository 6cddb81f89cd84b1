package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/atinyakov/shopfront/internal/client/api"
	"github.com/atinyakov/shopfront/internal/models"
)

type doerFunc func(ctx context.Context, method, path string, body any) (*http.Response, error)

func (f doerFunc) Do(ctx context.Context, method, path string, body any) (*http.Response, error) {
	return f(ctx, method, path, body)
}

func jsonResponse(status int, v any) *http.Response {
	b, _ := json.Marshal(v)
	return &http.Response{StatusCode: status, Body: io.NopCloser(strings.NewReader(string(b)))}
}

func TestByCategory_BuildsPath(t *testing.T) {
	var gotPath string
	c := NewClient(doerFunc(func(ctx context.Context, method, path string, body any) (*http.Response, error) {
		gotPath = path
		return jsonResponse(http.StatusOK, []models.Product{{ID: 1, Name: "Tee"}}), nil
	}))

	products, err := c.ByCategory(context.Background(), "men", "plain tee")
	if err != nil {
		t.Fatalf("ByCategory failed: %v", err)
	}
	if gotPath != "/products/men/?search=plain+tee" {
		t.Errorf("path = %q", gotPath)
	}
	if len(products) != 1 || products[0].ID != 1 {
		t.Errorf("products = %+v", products)
	}
}

func TestSearch_EscapesQuery(t *testing.T) {
	var gotPath string
	c := NewClient(doerFunc(func(ctx context.Context, method, path string, body any) (*http.Response, error) {
		gotPath = path
		return jsonResponse(http.StatusOK, []models.Product{}), nil
	}))

	if _, err := c.Search(context.Background(), "summer dress"); err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if gotPath != "/products/search/?search=summer+dress" {
		t.Errorf("path = %q", gotPath)
	}
}

func TestDetail_TransportFailure(t *testing.T) {
	c := NewClient(doerFunc(func(ctx context.Context, method, path string, body any) (*http.Response, error) {
		return nil, errors.New("network down")
	}))

	_, err := c.Detail(context.Background(), 7)
	var transport *api.TransportError
	if !errors.As(err, &transport) {
		t.Errorf("expected TransportError, got %v", err)
	}
}
