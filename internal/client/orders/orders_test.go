package orders

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

func TestGet(t *testing.T) {
	var gotPath string
	c := NewClient(doerFunc(func(ctx context.Context, method, path string, body any) (*http.Response, error) {
		gotPath = path
		b, _ := json.Marshal(models.Order{ID: 42, SumTotal: 150})
		return &http.Response{StatusCode: http.StatusOK, Body: io.NopCloser(strings.NewReader(string(b)))}, nil
	}))

	order, err := c.Get(context.Background(), 42)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if gotPath != "/order/42" {
		t.Errorf("path = %q", gotPath)
	}
	if order.ID != 42 || order.SumTotal != 150 {
		t.Errorf("order = %+v", order)
	}
}

func TestUpdateClientInfo_ValidatesLocally(t *testing.T) {
	c := NewClient(doerFunc(func(ctx context.Context, method, path string, body any) (*http.Response, error) {
		t.Fatal("no request expected for incomplete info")
		return nil, nil
	}))

	err := c.UpdateClientInfo(context.Background(), 42, models.ClientInfo{FirstName: "Ann"})
	var validation *api.ValidationError
	if !errors.As(err, &validation) {
		t.Errorf("expected ValidationError, got %v", err)
	}
}

func TestUpdateClientInfo_SendsPatch(t *testing.T) {
	var gotMethod, gotPath string
	c := NewClient(doerFunc(func(ctx context.Context, method, path string, body any) (*http.Response, error) {
		gotMethod, gotPath = method, path
		return &http.Response{StatusCode: http.StatusOK, Body: io.NopCloser(strings.NewReader("{}"))}, nil
	}))

	info := models.ClientInfo{FirstName: "Ann", LastName: "Bell", Email: "a@b.c", Address: "1 Main St"}
	if err := c.UpdateClientInfo(context.Background(), 42, info); err != nil {
		t.Fatalf("UpdateClientInfo failed: %v", err)
	}
	if gotMethod != http.MethodPatch || gotPath != "/order/42/update_client_info/" {
		t.Errorf("request = %s %s", gotMethod, gotPath)
	}
}
