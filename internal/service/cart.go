package service

import (
	"context"

	"github.com/atinyakov/shopfront/internal/models"
)

// CartRepository defines the persistence operations needed by the CartService.
type CartRepository interface {
	// ProductsByCategory lists products of a category, optionally filtered.
	ProductsByCategory(ctx context.Context, category, search string) ([]models.Product, error)
	// SearchProducts matches a search term across all categories.
	SearchProducts(ctx context.Context, search string) ([]models.Product, error)
	// ProductByID fetches a single product.
	ProductByID(ctx context.Context, id int64) (*models.Product, error)
	// GetCart returns the cart for a code.
	GetCart(ctx context.Context, code string) (*models.CartSnapshot, error)
	// AddItem appends units of a product to a cart, creating it on first use.
	AddItem(ctx context.Context, code string, productID int64, quantity int, size string) error
	// UpdateQuantity sets the quantity of a cart line.
	UpdateQuantity(ctx context.Context, code, itemID string, quantity int) error
	// RemoveItem deletes a cart line.
	RemoveItem(ctx context.Context, code, itemID string) error
	// CreateOrder freezes a cart into an order and deletes the cart.
	CreateOrder(ctx context.Context, code string) (int64, error)
	// GetOrder fetches a placed order.
	GetOrder(ctx context.Context, id int64) (*models.Order, error)
	// UpdateOrderClient attaches shipping information to an order.
	UpdateOrderClient(ctx context.Context, id int64, info models.ClientInfo) error
}

// CartService implements the storefront cart and order logic.
type CartService struct {
	repo CartRepository
}

// NewCartService constructs a CartService with the provided repository.
func NewCartService(repo CartRepository) *CartService {
	return &CartService{repo: repo}
}

// ProductsByCategory lists products of the given category.
func (s *CartService) ProductsByCategory(ctx context.Context, category, search string) ([]models.Product, error) {
	return s.repo.ProductsByCategory(ctx, category, search)
}

// SearchProducts runs a free-text catalog search.
func (s *CartService) SearchProducts(ctx context.Context, search string) ([]models.Product, error) {
	return s.repo.SearchProducts(ctx, search)
}

// ProductByID fetches a single product.
func (s *CartService) ProductByID(ctx context.Context, id int64) (*models.Product, error) {
	return s.repo.ProductByID(ctx, id)
}

// GetCart returns the snapshot for a cart code.
func (s *CartService) GetCart(ctx context.Context, code string) (*models.CartSnapshot, error) {
	return s.repo.GetCart(ctx, code)
}

// AddItem adds units of a product to the cart identified by code.
func (s *CartService) AddItem(ctx context.Context, code string, productID int64, quantity int, size string) error {
	return s.repo.AddItem(ctx, code, productID, quantity, size)
}

// UpdateQuantity sets a cart line to an absolute quantity. Quantities below
// one are clamped to one; removal is only ever explicit.
func (s *CartService) UpdateQuantity(ctx context.Context, code, itemID string, quantity int) error {
	if quantity < 1 {
		quantity = 1
	}
	return s.repo.UpdateQuantity(ctx, code, itemID, quantity)
}

// RemoveItem deletes a cart line.
func (s *CartService) RemoveItem(ctx context.Context, code, itemID string) error {
	return s.repo.RemoveItem(ctx, code, itemID)
}

// CreateOrder places an order for the cart identified by code.
func (s *CartService) CreateOrder(ctx context.Context, code string) (int64, error) {
	return s.repo.CreateOrder(ctx, code)
}

// GetOrder fetches a placed order.
func (s *CartService) GetOrder(ctx context.Context, id int64) (*models.Order, error) {
	return s.repo.GetOrder(ctx, id)
}

// UpdateOrderClient attaches shipping information to a placed order.
func (s *CartService) UpdateOrderClient(ctx context.Context, id int64, info models.ClientInfo) error {
	return s.repo.UpdateOrderClient(ctx, id, info)
}
