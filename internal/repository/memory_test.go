package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/atinyakov/shopfront/internal/models"
)

func seededStore() *MemoryStore {
	s := NewMemoryStore()
	s.SeedProducts([]models.Product{
		{ID: 1, Name: "Plain White Tee", Category: "men", Price: 20},
		{ID: 2, Name: "Denim Jacket", Category: "men", Price: 90},
		{ID: 3, Name: "Summer Dress", Category: "women", Price: 50},
	})
	return s
}

func TestGetCart_UnknownCode(t *testing.T) {
	s := seededStore()
	if _, err := s.GetCart(context.Background(), "nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestAddItem_CreatesCartAndRecalculates(t *testing.T) {
	s := seededStore()
	ctx := context.Background()

	if err := s.AddItem(ctx, "abc", 1, 2, "M"); err != nil {
		t.Fatalf("AddItem failed: %v", err)
	}
	cart, err := s.GetCart(ctx, "abc")
	if err != nil {
		t.Fatalf("GetCart failed: %v", err)
	}
	if len(cart.Items) != 1 || cart.Items[0].Quantity != 2 || cart.Items[0].ID == "" {
		t.Errorf("cart = %+v; want one line, qty 2, server-assigned id", cart)
	}
	if cart.SumTotal != 40 {
		t.Errorf("SumTotal = %v; want 40", cart.SumTotal)
	}
}

func TestAddItem_SameProductAndSizeIncrements(t *testing.T) {
	s := seededStore()
	ctx := context.Background()

	_ = s.AddItem(ctx, "abc", 1, 1, "M")
	_ = s.AddItem(ctx, "abc", 1, 2, "M")
	_ = s.AddItem(ctx, "abc", 1, 1, "L") // different size, new line

	cart, _ := s.GetCart(ctx, "abc")
	if len(cart.Items) != 2 {
		t.Fatalf("lines = %d; want 2", len(cart.Items))
	}
	if cart.Items[0].Quantity != 3 {
		t.Errorf("first line qty = %d; want 3", cart.Items[0].Quantity)
	}
}

func TestAddItem_UnknownProduct(t *testing.T) {
	s := seededStore()
	if err := s.AddItem(context.Background(), "abc", 99, 1, ""); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestUpdateAndRemoveItem(t *testing.T) {
	s := seededStore()
	ctx := context.Background()
	_ = s.AddItem(ctx, "abc", 1, 1, "")
	cart, _ := s.GetCart(ctx, "abc")
	itemID := cart.Items[0].ID

	if err := s.UpdateQuantity(ctx, "abc", itemID, 4); err != nil {
		t.Fatalf("UpdateQuantity failed: %v", err)
	}
	cart, _ = s.GetCart(ctx, "abc")
	if cart.Items[0].Quantity != 4 || cart.SumTotal != 80 {
		t.Errorf("cart = %+v; want qty 4, total 80", cart)
	}

	if err := s.RemoveItem(ctx, "abc", itemID); err != nil {
		t.Fatalf("RemoveItem failed: %v", err)
	}
	cart, _ = s.GetCart(ctx, "abc")
	if len(cart.Items) != 0 || cart.SumTotal != 0 {
		t.Errorf("cart = %+v; want empty", cart)
	}

	if err := s.UpdateQuantity(ctx, "abc", "missing", 1); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestCreateOrder_FreezesCart(t *testing.T) {
	s := seededStore()
	ctx := context.Background()
	_ = s.AddItem(ctx, "abc", 2, 1, "")

	orderID, err := s.CreateOrder(ctx, "abc")
	if err != nil {
		t.Fatalf("CreateOrder failed: %v", err)
	}
	order, err := s.GetOrder(ctx, orderID)
	if err != nil {
		t.Fatalf("GetOrder failed: %v", err)
	}
	if len(order.Items) != 1 || order.SumTotal != 90 {
		t.Errorf("order = %+v; want one line, total 90", order)
	}

	// The cart is gone once the order exists.
	if _, err := s.GetCart(ctx, "abc"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound after checkout, got %v", err)
	}

	// An empty or unknown cart cannot be ordered.
	if _, err := s.CreateOrder(ctx, "abc"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestUpdateOrderClient(t *testing.T) {
	s := seededStore()
	ctx := context.Background()
	_ = s.AddItem(ctx, "abc", 1, 1, "")
	orderID, _ := s.CreateOrder(ctx, "abc")

	info := models.ClientInfo{FirstName: "Ann", LastName: "Bell", Email: "a@b.c", Address: "1 Main St"}
	if err := s.UpdateOrderClient(ctx, orderID, info); err != nil {
		t.Fatalf("UpdateOrderClient failed: %v", err)
	}
	order, _ := s.GetOrder(ctx, orderID)
	if order.Client.FirstName != "Ann" {
		t.Errorf("client info not stored: %+v", order.Client)
	}

	if err := s.UpdateOrderClient(ctx, 999, info); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestSearchAndCategories(t *testing.T) {
	s := seededStore()
	ctx := context.Background()

	men, err := s.ProductsByCategory(ctx, "men", "")
	if err != nil || len(men) != 2 {
		t.Errorf("men = %v (%v); want 2 products", men, err)
	}
	filtered, err := s.ProductsByCategory(ctx, "men", "jacket")
	if err != nil || len(filtered) != 1 || filtered[0].ID != 2 {
		t.Errorf("filtered = %v (%v); want the jacket", filtered, err)
	}
	hits, err := s.SearchProducts(ctx, "DRESS")
	if err != nil || len(hits) != 1 || hits[0].ID != 3 {
		t.Errorf("hits = %v (%v); want the dress", hits, err)
	}
}

func TestDeleteCartsIdleSince(t *testing.T) {
	s := seededStore()
	ctx := context.Background()
	_ = s.AddItem(ctx, "old", 1, 1, "")
	_ = s.AddItem(ctx, "fresh", 1, 1, "")

	// Age the first cart past the cutoff.
	s.mu.Lock()
	s.touched["old"] = time.Now().Add(-48 * time.Hour)
	s.mu.Unlock()

	removed, err := s.DeleteCartsIdleSince(ctx, time.Now().Add(-24*time.Hour))
	if err != nil {
		t.Fatalf("DeleteCartsIdleSince failed: %v", err)
	}
	if removed != 1 {
		t.Errorf("removed = %d; want 1", removed)
	}
	if _, err := s.GetCart(ctx, "old"); !errors.Is(err, ErrNotFound) {
		t.Errorf("stale cart survived eviction")
	}
	if _, err := s.GetCart(ctx, "fresh"); err != nil {
		t.Errorf("fresh cart was evicted: %v", err)
	}
}

func TestUsers(t *testing.T) {
	s := seededStore()
	ctx := context.Background()
	if err := s.CreateUser(ctx, "a@b.c", "pw", "Ann", "Bell"); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}
	if err := s.CreateUser(ctx, "a@b.c", "pw2", "", ""); !errors.Is(err, ErrExists) {
		t.Errorf("expected ErrExists, got %v", err)
	}
	ok, _ := s.CheckUser(ctx, "a@b.c", "pw")
	if !ok {
		t.Errorf("CheckUser rejected valid credentials")
	}
	ok, _ = s.CheckUser(ctx, "a@b.c", "wrong")
	if ok {
		t.Errorf("CheckUser accepted wrong password")
	}
}
