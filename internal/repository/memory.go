// Package repository provides the in-memory persistence for the development
// backend. The real storefront backend is an external collaborator; this
// store only needs to honor the documented HTTP contract for local runs and
// tests, so nothing here survives a process restart.
package repository

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/atinyakov/shopfront/internal/models"
)

// ErrNotFound is returned when a cart, order, product or user is missing.
var ErrNotFound = errors.New("not found")

// ErrExists is returned when a user with the same email already exists.
var ErrExists = errors.New("already exists")

// userRecord is a registered account. Passwords are kept verbatim; this is
// a dev double, not an auth system.
type userRecord struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
}

// MemoryStore is the in-memory backing store for the development backend.
type MemoryStore struct {
	mu        sync.Mutex
	products  map[int64]models.Product
	carts     map[string]*models.CartSnapshot
	touched   map[string]time.Time
	orders    map[int64]*models.Order
	users     map[string]userRecord
	nextOrder int64
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		products: make(map[int64]models.Product),
		carts:    make(map[string]*models.CartSnapshot),
		touched:  make(map[string]time.Time),
		orders:   make(map[int64]*models.Order),
		users:    make(map[string]userRecord),
	}
}

// SeedProducts loads the catalog served by the development backend.
func (s *MemoryStore) SeedProducts(products []models.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range products {
		s.products[p.ID] = p
	}
}

// ProductsByCategory returns the products of a category, optionally
// filtered by a case-insensitive name match.
func (s *MemoryStore) ProductsByCategory(ctx context.Context, category, search string) ([]models.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Product
	for _, p := range s.products {
		if p.Category != category {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(p.Name), strings.ToLower(search)) {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

// SearchProducts matches the search term against product names across all
// categories.
func (s *MemoryStore) SearchProducts(ctx context.Context, search string) ([]models.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Product
	for _, p := range s.products {
		if strings.Contains(strings.ToLower(p.Name), strings.ToLower(search)) {
			out = append(out, p)
		}
	}
	return out, nil
}

// ProductByID fetches a single product.
func (s *MemoryStore) ProductByID(ctx context.Context, id int64) (*models.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.products[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &p, nil
}

// GetCart returns the cart for the given code, or ErrNotFound when no cart
// was ever created for it.
func (s *MemoryStore) GetCart(ctx context.Context, code string) (*models.CartSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cart, ok := s.carts[code]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *cart
	cp.Items = append([]models.CartItem(nil), cart.Items...)
	return &cp, nil
}

// AddItem appends quantity units of a product to the cart, creating the
// cart on first use. An existing line with the same product and size is
// incremented instead of duplicated.
func (s *MemoryStore) AddItem(ctx context.Context, code string, productID int64, quantity int, size string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.products[productID]
	if !ok {
		return ErrNotFound
	}
	cart, ok := s.carts[code]
	if !ok {
		cart = &models.CartSnapshot{CartCode: code}
		s.carts[code] = cart
	}

	for i := range cart.Items {
		if cart.Items[i].Product.ID == productID && cart.Items[i].Size == size {
			cart.Items[i].Quantity += quantity
			s.recalc(cart)
			return nil
		}
	}
	cart.Items = append(cart.Items, models.CartItem{
		ID:       uuid.NewString(),
		Product:  p,
		Quantity: quantity,
		Size:     size,
	})
	s.recalc(cart)
	return nil
}

// UpdateQuantity sets the quantity of a cart line.
func (s *MemoryStore) UpdateQuantity(ctx context.Context, code, itemID string, quantity int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cart, ok := s.carts[code]
	if !ok {
		return ErrNotFound
	}
	for i := range cart.Items {
		if cart.Items[i].ID == itemID {
			cart.Items[i].Quantity = quantity
			s.recalc(cart)
			return nil
		}
	}
	return ErrNotFound
}

// RemoveItem deletes a cart line regardless of quantity.
func (s *MemoryStore) RemoveItem(ctx context.Context, code, itemID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cart, ok := s.carts[code]
	if !ok {
		return ErrNotFound
	}
	for i := range cart.Items {
		if cart.Items[i].ID == itemID {
			cart.Items = append(cart.Items[:i], cart.Items[i+1:]...)
			s.recalc(cart)
			return nil
		}
	}
	return ErrNotFound
}

// recalc recomputes the server-authoritative total and bumps the cart's
// last-touched time. Callers must hold mu.
func (s *MemoryStore) recalc(cart *models.CartSnapshot) {
	total := 0.0
	for _, it := range cart.Items {
		total += it.Product.Price * float64(it.Quantity)
	}
	cart.SumTotal = total
	s.touched[cart.CartCode] = time.Now()
}

// CreateOrder freezes the cart into a new order and deletes the cart.
func (s *MemoryStore) CreateOrder(ctx context.Context, code string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cart, ok := s.carts[code]
	if !ok || len(cart.Items) == 0 {
		return 0, ErrNotFound
	}
	s.nextOrder++
	order := &models.Order{
		ID:       s.nextOrder,
		Items:    append([]models.CartItem(nil), cart.Items...),
		SumTotal: cart.SumTotal,
	}
	s.orders[order.ID] = order
	delete(s.carts, code)
	delete(s.touched, code)
	return order.ID, nil
}

// GetOrder fetches a placed order.
func (s *MemoryStore) GetOrder(ctx context.Context, id int64) (*models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	order, ok := s.orders[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *order
	return &cp, nil
}

// UpdateOrderClient attaches shipping information to a placed order.
func (s *MemoryStore) UpdateOrderClient(ctx context.Context, id int64, info models.ClientInfo) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	order, ok := s.orders[id]
	if !ok {
		return ErrNotFound
	}
	order.Client = info
	return nil
}

// CreateUser registers an account.
func (s *MemoryStore) CreateUser(ctx context.Context, email, password, firstName, lastName string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[email]; ok {
		return ErrExists
	}
	s.users[email] = userRecord{Email: email, Password: password, FirstName: firstName, LastName: lastName}
	return nil
}

// CheckUser verifies the credentials of a registered account.
func (s *MemoryStore) CheckUser(ctx context.Context, email, password string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[email]
	return ok && u.Password == password, nil
}

// DeleteCartsIdleSince evicts carts untouched since the cutoff and returns
// how many were removed.
func (s *MemoryStore) DeleteCartsIdleSince(ctx context.Context, cutoff time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for code, last := range s.touched {
		if last.Before(cutoff) {
			delete(s.carts, code)
			delete(s.touched, code)
			removed++
		}
	}
	return removed, nil
}
