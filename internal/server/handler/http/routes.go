package http

import (
	"net/http"

	"github.com/atinyakov/shopfront/internal/middleware"
	"go.uber.org/zap"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
)

// NewRouter constructs and returns an HTTP handler that serves the
// storefront contract. It applies JSON content-type enforcement, request
// logging and bearer-token resolution, and mounts the auth, catalog, cart
// and order endpoints.
//
// Routes:
//
//	POST  /login/                         → authHandler.Login
//	POST  /signup/                        → authHandler.Signup
//	POST  /token/refresh/                 → authHandler.Refresh
//	GET   /products/search/?search=       → catalogHandler.Search
//	GET   /products/detail/{id}/          → catalogHandler.Detail
//	GET   /products/{category}/?search=   → catalogHandler.ByCategory
//	GET   /get_cart?cart_code=            → cartHandler.GetCart
//	POST  /add_item?cart_code=            → cartHandler.AddItem
//	PATCH /update_quantity?cart_code=     → cartHandler.UpdateQuantity
//	POST  /remove_item?cart_code=         → cartHandler.RemoveItem
//	POST  /create_order                   → cartHandler.CreateOrder
//	GET   /order/{id}                     → orderHandler.Get
//	PATCH /order/{id}/update_client_info/ → orderHandler.UpdateClientInfo
//
// Middleware chain (applied in order):
//  1. AllowContentType("application/json") — rejects non-JSON request bodies
//  2. WithRequestLogging(logger)           — logs incoming requests
//  3. BearerAuth(verifier)                 — resolves the bearer token
func NewRouter(
	authHandler *AuthHandler,
	catalogHandler *CatalogHandler,
	cartHandler *CartHandler,
	orderHandler *OrderHandler,
	verifier middleware.TokenVerifier,
	logger *zap.Logger,
) http.Handler {
	r := chi.NewRouter()

	// Only allow request bodies with Content-Type: application/json
	r.Use(chiMiddleware.AllowContentType("application/json"))

	// Log each request and its metadata
	r.Use(middleware.WithRequestLogging(logger))
	// Resolve the bearer token into a request-context user
	r.Use(middleware.BearerAuth(verifier))

	r.Post("/login/", authHandler.Login)
	r.Post("/signup/", authHandler.Signup)
	r.Post("/token/refresh/", authHandler.Refresh)

	r.Route("/products", func(r chi.Router) {
		r.Get("/search/", catalogHandler.Search)
		r.Get("/detail/{id}/", catalogHandler.Detail)
		r.Get("/{category}/", catalogHandler.ByCategory)
	})

	r.Get("/get_cart", cartHandler.GetCart)
	r.Post("/add_item", cartHandler.AddItem)
	r.Patch("/update_quantity", cartHandler.UpdateQuantity)
	r.Post("/remove_item", cartHandler.RemoveItem)
	r.Post("/create_order", cartHandler.CreateOrder)

	r.Get("/order/{id}", orderHandler.Get)
	r.Patch("/order/{id}/update_client_info/", orderHandler.UpdateClientInfo)

	return r
}
