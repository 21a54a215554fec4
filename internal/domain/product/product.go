package product

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// Sentinel errors for catalog operations.
var (
	// ErrNotFound is returned when a requested product does not exist.
	ErrNotFound = errors.New("product not found")
	// ErrInvalidPrice is returned when a product price is zero or negative.
	ErrInvalidPrice = errors.New("price must be positive")
	// ErrInvalidStock is returned when a product stock is negative.
	ErrInvalidStock = errors.New("stock cannot be negative")
	// ErrEmptyName is returned when a product name is blank.
	ErrEmptyName = errors.New("product name is required")
	// ErrInvalidReservation is returned when a reservation quantity is not positive.
	ErrInvalidReservation = errors.New("reservation quantity must be positive")
)

// InsufficientStockError indicates a requested quantity exceeds the stock
// left for a product once the quantity already in the cart is counted.
type InsufficientStockError struct {
	Name      string
	Available int
	InCart    int
	Requested int
}

func (e *InsufficientStockError) Error() string {
	if e.InCart > 0 {
		return fmt.Sprintf("cannot add %d more %s, total would exceed available stock: available %d, in cart %d",
			e.Requested, e.Name, e.Available, e.InCart)
	}
	return fmt.Sprintf("not enough stock for %s: available %d, requested %d", e.Name, e.Available, e.Requested)
}

// ID is a stable handle to a product owned by a Catalog.
type ID int

// Product represents a catalog item available for purchase.
type Product struct {
	Name  string
	Price decimal.Decimal
	Stock int
}

func (p Product) String() string {
	return fmt.Sprintf("%s - $%s (Stock: %d)", p.Name, p.Price.StringFixed(2), p.Stock)
}

// Reservation asks a Catalog to take Quantity units of a product out of stock.
type Reservation struct {
	Product  ID
	Quantity int
}

// Catalog is the store inventory. It owns every Product; callers hold IDs.
type Catalog interface {
	Add(ctx context.Context, name string, price decimal.Decimal, stock int) (ID, error)
	List(ctx context.Context) ([]Product, error)
	Find(ctx context.Context, name string) (ID, Product, error)
	Get(ctx context.Context, id ID) (Product, error)
	// Commit applies all reservations or none of them.
	Commit(ctx context.Context, reservations []Reservation) error
	Len() int
}

// NormalizeName folds a product name for comparison. Stored names keep
// their original casing.
func NormalizeName(name string) string {
	return strings.ToLower(name)
}

// SameName reports whether two product names refer to the same product.
func SameName(a, b string) bool {
	return NormalizeName(a) == NormalizeName(b)
}

// Validate checks the attributes of a new product.
func Validate(name string, price decimal.Decimal, stock int) error {
	if !price.IsPositive() {
		return ErrInvalidPrice
	}
	if stock < 0 {
		return ErrInvalidStock
	}
	if strings.TrimSpace(name) == "" {
		return ErrEmptyName
	}
	return nil
}
