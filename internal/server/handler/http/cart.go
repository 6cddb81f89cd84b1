package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/atinyakov/shopfront/internal/models"
	"github.com/atinyakov/shopfront/internal/repository"
)

// CartService defines the interface for cart and order operations
// required by the HTTP handlers.
type CartService interface {
	GetCart(ctx context.Context, code string) (*models.CartSnapshot, error)
	AddItem(ctx context.Context, code string, productID int64, quantity int, size string) error
	UpdateQuantity(ctx context.Context, code, itemID string, quantity int) error
	RemoveItem(ctx context.Context, code, itemID string) error
	CreateOrder(ctx context.Context, code string) (int64, error)
}

// CartHandler handles HTTP requests against a server-held cart.
type CartHandler struct {
	CartService CartService
}

// cartCode extracts the cart_code query parameter shared by all cart routes.
func cartCode(r *http.Request) string {
	return r.URL.Query().Get("cart_code")
}

// GetCart handles GET /get_cart?cart_code=<id>. A code with no cart yet
// yields 404; the client treats that as an empty cart, not an error.
func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	code := cartCode(r)
	if code == "" {
		http.Error(w, "cart_code is required", http.StatusBadRequest)
		return
	}

	snap, err := h.CartService.GetCart(r.Context(), code)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			http.Error(w, "cart not found", http.StatusNotFound)
			return
		}
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(snap)
}

// AddItemRequest represents the JSON payload for adding a cart line.
// product_id/quantity is the listing flow; the product-detail flow also
// sends cart_code and size in the body.
type AddItemRequest struct {
	CartCode  string `json:"cart_code,omitempty"`
	ProductID int64  `json:"product_id"`
	Quantity  int    `json:"quantity"`
	Size      string `json:"size,omitempty"`
}

// AddItem handles POST /add_item?cart_code=<id>.
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	code := cartCode(r)
	var req AddItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}
	if code == "" {
		code = req.CartCode
	}
	if code == "" || req.ProductID == 0 || req.Quantity < 1 {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	if err := h.CartService.AddItem(r.Context(), code, req.ProductID, req.Quantity, req.Size); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			http.Error(w, "unknown product", http.StatusNotFound)
			return
		}
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusCreated)
}

// UpdateQuantity handles PATCH /update_quantity?cart_code=<id>.
func (h *CartHandler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	code := cartCode(r)
	var req struct {
		ItemID   string `json:"item_id"`
		Quantity int    `json:"quantity"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || code == "" || req.ItemID == "" {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	if err := h.CartService.UpdateQuantity(r.Context(), code, req.ItemID, req.Quantity); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			http.Error(w, "item not found", http.StatusNotFound)
			return
		}
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusOK)
}

// RemoveItem handles POST /remove_item?cart_code=<id>.
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	code := cartCode(r)
	var req struct {
		ItemID string `json:"item_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || code == "" || req.ItemID == "" {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	if err := h.CartService.RemoveItem(r.Context(), code, req.ItemID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			http.Error(w, "item not found", http.StatusNotFound)
			return
		}
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusOK)
}

// CreateOrder handles POST /create_order. The cart is deleted server-side
// once the order exists.
func (h *CartHandler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	var req struct {
		CartCode string `json:"cart_code"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.CartCode == "" {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	orderID, err := h.CartService.CreateOrder(r.Context(), req.CartCode)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			http.Error(w, "cart is empty or unknown", http.StatusNotFound)
			return
		}
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(map[string]int64{"order_id": orderID})
}
