// Package main runs the interactive storefront shell: catalog browsing,
// cart management, checkout, order tracking and account handling against
// the storefront backend.
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/atinyakov/shopfront/internal/client/api"
	"github.com/atinyakov/shopfront/internal/client/badge"
	"github.com/atinyakov/shopfront/internal/client/cart"
	"github.com/atinyakov/shopfront/internal/client/catalog"
	"github.com/atinyakov/shopfront/internal/client/orders"
	"github.com/atinyakov/shopfront/internal/client/session"
	"github.com/atinyakov/shopfront/internal/client/state"
	"github.com/atinyakov/shopfront/internal/config"
	"github.com/atinyakov/shopfront/internal/logger"
	"github.com/atinyakov/shopfront/internal/models"
)

var (
	version   string
	buildDate string
)

// freeShippingThreshold is the order total above which shipping is free.
// Display-only: the server computes all real totals.
const freeShippingThreshold = 100.0

// app bundles the wired client components the shell commands operate on.
type app struct {
	store   *state.Store
	session *session.Manager
	cart    *cart.Controller
	catalog *catalog.Client
	orders  *orders.Client
	badge   *badge.Hub
}

// reportErr prints an operation failure the way the views would surface it:
// validation and transport problems become user-facing messages, an expired
// session redirects to sign-in, and identity loss is fatal.
func reportErr(err error) {
	var transport *api.TransportError
	var validation *api.ValidationError
	switch {
	case errors.Is(err, api.ErrIdentityUnavailable):
		log.Fatalf("client storage is unavailable: %v", err)
	case errors.Is(err, api.ErrSessionExpired):
		fmt.Println("Your session has expired. Please sign in again.")
	case errors.As(err, &transport):
		fmt.Println(transport.UserMessage())
	case errors.As(err, &validation):
		fmt.Println(validation.Reason)
	default:
		fmt.Println("Error:", err)
	}
}

func printProducts(products []models.Product) {
	if len(products) == 0 {
		fmt.Println("No products found")
		return
	}
	for _, p := range products {
		fmt.Printf("#%d  %-24s %8.2f\n", p.ID, p.Name, p.Price)
	}
}

func printCart(snap *models.CartSnapshot) {
	if snap == nil || len(snap.Items) == 0 {
		fmt.Println("Your cart is empty")
		return
	}
	for _, it := range snap.Items {
		size := ""
		if it.Size != "" {
			size = " (" + it.Size + ")"
		}
		fmt.Printf("%s  %dx %s%s  %8.2f\n", it.ID, it.Quantity, it.Product.Name, size, it.Product.Price)
	}
	fmt.Printf("Total: %.2f\n", snap.SumTotal)
	if snap.SumTotal < freeShippingThreshold {
		fmt.Printf("Add %.2f more for free shipping\n", freeShippingThreshold-snap.SumTotal)
	} else {
		fmt.Println("Free shipping!")
	}
}

// repl runs the interactive shell loop, accepting storefront commands.
func repl(a *app) {
	ctx := context.Background()
	scanner := bufio.NewScanner(os.Stdin)

	count := 0
	unsubscribe := a.badge.Subscribe(func(n int) { count = n })
	defer unsubscribe()

	// Paint the badge from the server before the first prompt.
	if _, err := a.cart.Fetch(ctx); err != nil && errors.Is(err, api.ErrIdentityUnavailable) {
		log.Fatalf("client storage is unavailable: %v", err)
	}

	for {
		fmt.Printf("shopfront[%d]> ", count)
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		args := strings.Fields(line)
		if len(args) == 0 {
			continue
		}
		switch args[0] {
		case "help":
			fmt.Println("Available commands: help, browse <category> [search], search <query>, detail <id>,")
			fmt.Println("  cart, add <product-id> <qty> [size], qty <item-id> <delta>, remove <item-id>,")
			fmt.Println("  checkout, order <id>, ship <order-id>, fav <product-id>, favs,")
			fmt.Println("  login, signup, logout, exit")
		case "browse":
			if len(args) < 2 {
				fmt.Println("Usage: browse <category> [search]")
				continue
			}
			search := ""
			if len(args) > 2 {
				search = strings.Join(args[2:], " ")
			}
			products, err := a.catalog.ByCategory(ctx, args[1], search)
			if err != nil {
				reportErr(err)
				continue
			}
			printProducts(products)
		case "search":
			if len(args) < 2 {
				fmt.Println("Usage: search <query>")
				continue
			}
			products, err := a.catalog.Search(ctx, strings.Join(args[1:], " "))
			if err != nil {
				reportErr(err)
				continue
			}
			printProducts(products)
		case "detail":
			if len(args) < 2 {
				fmt.Println("Usage: detail <product-id>")
				continue
			}
			id, err := strconv.ParseInt(args[1], 10, 64)
			if err != nil {
				fmt.Println("Product id must be a number")
				continue
			}
			p, err := a.catalog.Detail(ctx, id)
			if err != nil {
				reportErr(err)
				continue
			}
			fav := ""
			if a.store.IsFavorite(p.ID) {
				fav = "  ♥"
			}
			fmt.Printf("#%d  %s  %.2f%s\n", p.ID, p.Name, p.Price, fav)
			if len(p.Sizes) > 0 {
				fmt.Println("Sizes:", strings.Join(p.Sizes, ", "))
			}
			if p.Description != "" {
				fmt.Println(p.Description)
			}
		case "cart":
			snap, err := a.cart.Fetch(ctx)
			if err != nil {
				reportErr(err)
				continue
			}
			printCart(snap)
		case "add":
			if len(args) < 3 {
				fmt.Println("Usage: add <product-id> <qty> [size]")
				continue
			}
			id, err1 := strconv.ParseInt(args[1], 10, 64)
			qty, err2 := strconv.Atoi(args[2])
			if err1 != nil || err2 != nil {
				fmt.Println("Product id and quantity must be numbers")
				continue
			}
			size := ""
			if len(args) > 3 {
				size = args[3]
			}
			snap, err := a.cart.AddItem(ctx, id, qty, size)
			if err != nil {
				reportErr(err)
				continue
			}
			printCart(snap)
		case "qty":
			if len(args) < 3 {
				fmt.Println("Usage: qty <item-id> <delta>   (e.g. qty abc123 -1)")
				continue
			}
			delta, err := strconv.Atoi(args[2])
			if err != nil {
				fmt.Println("Delta must be a number")
				continue
			}
			snap, err := a.cart.UpdateQuantity(ctx, args[1], delta)
			if err != nil {
				reportErr(err)
				continue
			}
			printCart(snap)
		case "remove":
			if len(args) < 2 {
				fmt.Println("Usage: remove <item-id>")
				continue
			}
			snap, err := a.cart.RemoveItem(ctx, args[1])
			if err != nil {
				reportErr(err)
				continue
			}
			printCart(snap)
		case "checkout":
			orderID, err := a.cart.Checkout(ctx)
			if err != nil {
				reportErr(err)
				continue
			}
			fmt.Printf("Order placed! Your order id is %d\n", orderID)
			fmt.Printf("Use 'ship %d' to enter your shipping details.\n", orderID)
		case "order":
			if len(args) < 2 {
				fmt.Println("Usage: order <order-id>")
				continue
			}
			id, err := strconv.ParseInt(args[1], 10, 64)
			if err != nil {
				fmt.Println("Order id must be a number")
				continue
			}
			// Orders are a guarded view: consult the session first.
			if !a.session.IsAuthenticated(ctx) {
				fmt.Println("Please sign in to view your orders.")
				continue
			}
			order, err := a.orders.Get(ctx, id)
			if err != nil {
				reportErr(err)
				continue
			}
			fmt.Printf("Order #%d, total %.2f\n", order.ID, order.SumTotal)
			for _, it := range order.Items {
				fmt.Printf("  %dx %s\n", it.Quantity, it.Product.Name)
			}
		case "ship":
			if len(args) < 2 {
				fmt.Println("Usage: ship <order-id>")
				continue
			}
			id, err := strconv.ParseInt(args[1], 10, 64)
			if err != nil {
				fmt.Println("Order id must be a number")
				continue
			}
			info := promptClientInfo(scanner)
			if err := a.orders.UpdateClientInfo(ctx, id, info); err != nil {
				reportErr(err)
				continue
			}
			fmt.Println("Shipping details saved")
		case "fav":
			if len(args) < 2 {
				fmt.Println("Usage: fav <product-id>")
				continue
			}
			id, err := strconv.ParseInt(args[1], 10, 64)
			if err != nil {
				fmt.Println("Product id must be a number")
				continue
			}
			liked, err := a.store.ToggleFavorite(id)
			if err != nil {
				reportErr(err)
				continue
			}
			if liked {
				fmt.Println("Added to favorites")
			} else {
				fmt.Println("Removed from favorites")
			}
		case "favs":
			ids := a.store.Favorites()
			if len(ids) == 0 {
				fmt.Println("No favorites yet")
				continue
			}
			for _, id := range ids {
				fmt.Printf("#%d\n", id)
			}
		case "login":
			email := prompt(scanner, "Email: ")
			password := prompt(scanner, "Password: ")
			if err := a.session.Login(ctx, email, password); err != nil {
				fmt.Println("Sign in failed:", err)
				continue
			}
			fmt.Println("Signed in")
			if _, err := a.cart.Fetch(ctx); err != nil {
				reportErr(err)
			}
		case "signup":
			email := prompt(scanner, "Email: ")
			password := prompt(scanner, "Password: ")
			first := prompt(scanner, "First name: ")
			last := prompt(scanner, "Last name: ")
			if err := a.session.Signup(ctx, email, password, first, last); err != nil {
				fmt.Println("Sign up failed:", err)
				continue
			}
			fmt.Println("Account created, you are signed in")
		case "logout":
			if err := a.session.Logout(); err != nil {
				reportErr(err)
				continue
			}
			fmt.Println("Signed out")
		case "exit":
			fmt.Println("Bye")
			return
		default:
			fmt.Println("Unknown command. Type 'help' for a list of commands.")
		}
	}
}

func prompt(scanner *bufio.Scanner, label string) string {
	fmt.Print(label)
	scanner.Scan()
	return strings.TrimSpace(scanner.Text())
}

func promptClientInfo(scanner *bufio.Scanner) models.ClientInfo {
	return models.ClientInfo{
		FirstName: prompt(scanner, "First name: "),
		LastName:  prompt(scanner, "Last name: "),
		Email:     prompt(scanner, "Email: "),
		Address:   prompt(scanner, "Address: "),
		City:      prompt(scanner, "City: "),
		Zip:       prompt(scanner, "Zip: "),
		Phone:     prompt(scanner, "Phone: "),
	}
}

// main wires the client components together and starts the shell.
func main() {
	var showVer bool
	flag.BoolVar(&showVer, "version", false, "show build version and date")
	options := config.Parse()

	if showVer {
		fmt.Printf("Shopfront Client\nVersion: %s\nBuild Date: %s\n", version, buildDate)
		return
	}

	appLog := logger.New()
	if err := appLog.Init("Warn"); err != nil {
		log.Fatal(err)
	}
	defer func() { _ = appLog.Log.Sync() }()

	store, err := state.Open(options.StateFile)
	if err != nil {
		// Storage unavailability is fatal to all cart operations.
		log.Fatalf("client storage is unavailable: %v", err)
	}

	host := os.Getenv("SHOPFRONT_HOST")
	if host == "" {
		host = "localhost"
	}
	baseURL := api.ResolveBaseURL(host, options.LocalURL, options.BaseURL)

	gateway := api.NewGateway(nil, baseURL, store, appLog.Log)
	sessionManager := session.NewManager(gateway, store, appLog.Log)
	hub := badge.NewHub()
	cartController := cart.NewController(gateway, store, hub, appLog.Log)

	// Refresh the badge whenever the session becomes authenticated.
	sessionManager.OnChange(func(s session.State) {
		if s == session.StateAuthenticated {
			_, _ = cartController.Fetch(context.Background())
		}
	})

	repl(&app{
		store:   store,
		session: sessionManager,
		cart:    cartController,
		catalog: catalog.NewClient(gateway),
		orders:  orders.NewClient(gateway),
		badge:   hub,
	})
}
