// Package main starts the development storefront backend: an in-memory
// implementation of the HTTP contract the client is written against,
// wiring configuration, logging, repositories, services and handlers.
package main

import (
	"cmp"
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	nethttp "net/http"

	"github.com/atinyakov/shopfront/internal/logger"
	"github.com/atinyakov/shopfront/internal/models"
	"github.com/atinyakov/shopfront/internal/repository"
	"github.com/atinyakov/shopfront/internal/server/handler/http"
	"github.com/atinyakov/shopfront/internal/service"
	"go.uber.org/zap"
)

var (
	// version holds the build version set via ldflags.
	version string
	// buildDate holds the build timestamp set via ldflags.
	buildDate string
)

// seedCatalog is the catalog served out of the box so the client has
// something to browse without extra setup.
var seedCatalog = []models.Product{
	{ID: 1, Name: "Plain White Tee", Category: "men", Price: 19.90, Sizes: []string{"S", "M", "L", "XL"}},
	{ID: 2, Name: "Denim Jacket", Category: "men", Price: 89.00, Sizes: []string{"M", "L"}},
	{ID: 3, Name: "Summer Dress", Category: "women", Price: 54.50, Sizes: []string{"S", "M", "L"}},
	{ID: 4, Name: "Wool Scarf", Category: "women", Price: 24.00},
	{ID: 5, Name: "Canvas Sneakers", Category: "shoes", Price: 64.90, Sizes: []string{"40", "41", "42", "43"}},
	{ID: 6, Name: "Leather Belt", Category: "accessories", Price: 32.00},
	{ID: 7, Name: "Hooded Sweatshirt", Category: "men", Price: 49.90, Sizes: []string{"S", "M", "L", "XL"}},
}

func main() {
	var (
		addr    string
		secret  string
		showVer bool
	)
	flag.StringVar(&addr, "a", "localhost:8004", "run on ip:port server")
	flag.StringVar(&secret, "secret", "dev-secret-do-not-ship", "HS256 signing secret")
	flag.BoolVar(&showVer, "version", false, "show build version and date")
	flag.Parse()

	if showVer {
		fmt.Printf("Shopfront Mock Server\nVersion: %s\nBuild Date: %s\n", cmp.Or(version, "N/A"), cmp.Or(buildDate, "N/A"))
		return
	}

	// Initialize structured logging.
	log := logger.New()
	if err := log.Init("Info"); err != nil {
		fmt.Fprintf(os.Stderr, "failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Log.Sync() }()
	zapLogger := log.Log

	// Initialize the in-memory store and seed the catalog.
	store := repository.NewMemoryStore()
	store.SeedProducts(seedCatalog)

	// Evict carts abandoned by anonymous shoppers.
	repository.StartAbandonedCartCleaner(context.Background(), store,
		time.Hour,       // interval
		30*24*time.Hour, // retention: 30 days
		zapLogger,
	)

	// Initialize business-logic services.
	authService := service.NewAuthService(store, []byte(secret))
	cartService := service.NewCartService(store)

	// Create HTTP handlers for the storefront contract.
	authHandler := &http.AuthHandler{AuthService: authService}
	catalogHandler := &http.CatalogHandler{CatalogService: cartService}
	cartHandler := &http.CartHandler{CartService: cartService}
	orderHandler := &http.OrderHandler{OrderService: cartService}

	// Build the router with middleware and routes.
	router := http.NewRouter(authHandler, catalogHandler, cartHandler, orderHandler, authService, zapLogger)

	zapLogger.Info("starting mock storefront backend", zap.String("addr", addr))
	if err := nethttp.ListenAndServe(addr, router); err != nil {
		zapLogger.Fatal("failed to start HTTP server", zap.Error(err))
	}
}
