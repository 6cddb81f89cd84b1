package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/atinyakov/shopfront/internal/models"
	"github.com/atinyakov/shopfront/internal/repository"
)

// CatalogService defines the interface for catalog reads required by the
// HTTP handlers.
type CatalogService interface {
	ProductsByCategory(ctx context.Context, category, search string) ([]models.Product, error)
	SearchProducts(ctx context.Context, search string) ([]models.Product, error)
	ProductByID(ctx context.Context, id int64) (*models.Product, error)
}

// CatalogHandler handles HTTP requests for catalog browsing and search.
type CatalogHandler struct {
	CatalogService CatalogService
}

func writeProducts(w http.ResponseWriter, products []models.Product) {
	if products == nil {
		products = []models.Product{}
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(products)
}

// ByCategory handles GET /products/{category}/?search=.
func (h *CatalogHandler) ByCategory(w http.ResponseWriter, r *http.Request) {
	category := chi.URLParam(r, "category")
	products, err := h.CatalogService.ProductsByCategory(r.Context(), category, r.URL.Query().Get("search"))
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeProducts(w, products)
}

// Search handles GET /products/search/?search=.
func (h *CatalogHandler) Search(w http.ResponseWriter, r *http.Request) {
	products, err := h.CatalogService.SearchProducts(r.Context(), r.URL.Query().Get("search"))
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeProducts(w, products)
}

// Detail handles GET /products/detail/{id}/.
func (h *CatalogHandler) Detail(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "invalid product id", http.StatusBadRequest)
		return
	}
	product, err := h.CatalogService.ProductByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			http.Error(w, "product not found", http.StatusNotFound)
			return
		}
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(product)
}
