// Package models defines the core data structures shared between the
// storefront client and the backend HTTP contract.
package models

// Product describes a catalog entry as returned by the backend.
type Product struct {
	// ID is the unique identifier of the product.
	ID int64 `json:"id"`
	// Name is the display name of the product.
	Name string `json:"name"`
	// Category is the catalog category slug the product belongs to.
	Category string `json:"category,omitempty"`
	// Price is the unit price in the shop currency.
	Price float64 `json:"price"`
	// Image is the URL of the product image.
	Image string `json:"image,omitempty"`
	// Description holds the long-form product text, present on detail views only.
	Description string `json:"description,omitempty"`
	// Sizes lists the selectable sizes, present on detail views only.
	Sizes []string `json:"sizes,omitempty"`
}

// CartItem is a single line of a server-held cart.
// The line ID is assigned by the server, never by the client.
type CartItem struct {
	// ID is the server-assigned identifier of this cart line.
	ID string `json:"id"`
	// Product is the catalog entry this line refers to.
	Product Product `json:"product"`
	// Quantity is the number of units, always >= 1.
	Quantity int `json:"quantity"`
	// Size is the selected size variant, empty when the product has none.
	Size string `json:"size,omitempty"`
}

// CartSnapshot is the server-authoritative state of a cart.
// The client never computes SumTotal locally; it re-fetches the snapshot
// after every mutation instead.
type CartSnapshot struct {
	// CartCode is the cart identity the snapshot belongs to.
	CartCode string `json:"cart_code"`
	// Items are the cart lines in server order.
	Items []CartItem `json:"items"`
	// SumTotal is the total price computed by the server.
	SumTotal float64 `json:"sum_total"`
}

// ItemCount returns the total number of units across all lines.
func (c *CartSnapshot) ItemCount() int {
	if c == nil {
		return 0
	}
	n := 0
	for _, it := range c.Items {
		n += it.Quantity
	}
	return n
}

// TokenPair holds the credentials of an authenticated session.
type TokenPair struct {
	// Access is the short-lived bearer token attached to guarded requests.
	Access string `json:"access_token"`
	// Refresh is the longer-lived token used only to mint new access tokens.
	Refresh string `json:"refresh_token"`
}

// Order is a placed order as returned by the backend.
type Order struct {
	// ID is the server-assigned order identifier.
	ID int64 `json:"order_id"`
	// Items are the cart lines frozen at checkout time.
	Items []CartItem `json:"items"`
	// SumTotal is the order total computed by the server.
	SumTotal float64 `json:"sum_total"`
	// Client holds the shipping information, empty until submitted.
	Client ClientInfo `json:"client_info"`
}

// ClientInfo is the shipping information attached to an order.
type ClientInfo struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Address   string `json:"address"`
	City      string `json:"city"`
	Zip       string `json:"zip"`
	Phone     string `json:"phone"`
}
