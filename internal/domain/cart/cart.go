package cart

import (
	"context"
	"fmt"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/xenking/ministore/internal/domain/product"
)

// Sentinel errors for cart operations.
var (
	ErrInvalidQuantity = errors.New("quantity must be positive")
	ErrItemNotFound    = errors.New("product not found in cart")
	ErrEmptyCart       = errors.New("cart is empty")
)

// Item pairs a catalog product handle with the quantity requested.
type Item struct {
	Product  product.ID
	Quantity int
}

// Line is a resolved cart item used for display and receipts.
type Line struct {
	Product   product.ID
	Name      string
	UnitPrice decimal.Decimal
	Quantity  int
	Total     decimal.Decimal
}

func (l Line) String() string {
	return fmt.Sprintf("%s x%d - $%s", l.Name, l.Quantity, l.Total.StringFixed(2))
}

// View is an ordered projection of the cart with its grand total.
type View struct {
	Lines []Line
	Total decimal.Decimal
}

// Empty reports whether the cart had no items.
func (v View) Empty() bool {
	return len(v.Lines) == 0
}

// Receipt is the result of a completed checkout.
type Receipt struct {
	ID        string
	Lines     []Line
	Total     decimal.Decimal
	CreatedAt time.Time
}

// Cart is a customer's uncommitted selection of catalog products. Stock is
// only read while items are added; Checkout is the one place it changes.
type Cart struct {
	catalog product.Catalog
	items   []Item
	now     func() time.Time
}

// New creates an empty Cart bound to the given catalog.
func New(catalog product.Catalog) *Cart {
	return &Cart{catalog: catalog, now: time.Now}
}

// Add puts quantity units of a product into the cart. The cumulative
// quantity of a product may never exceed its current stock.
func (c *Cart) Add(ctx context.Context, id product.ID, quantity int) (Line, error) {
	if quantity <= 0 {
		return Line{}, ErrInvalidQuantity
	}

	p, err := c.catalog.Get(ctx, id)
	if err != nil {
		return Line{}, errors.Wrap(err, "get product")
	}

	idx := c.indexOfID(id)
	inCart := 0
	if idx >= 0 {
		inCart = c.items[idx].Quantity
	}
	if quantity > p.Stock-inCart {
		return Line{}, &product.InsufficientStockError{
			Name:      p.Name,
			Available: p.Stock,
			InCart:    inCart,
			Requested: quantity,
		}
	}

	if idx >= 0 {
		c.items[idx].Quantity += quantity
	} else {
		c.items = append(c.items, Item{Product: id, Quantity: quantity})
	}

	return newLine(id, p, quantity), nil
}

// Remove drops the item whose product name matches case-insensitively and
// returns it. The order of the remaining items is kept.
func (c *Cart) Remove(ctx context.Context, name string) (Line, error) {
	idx := c.indexOf(ctx, name)
	if idx < 0 {
		return Line{}, ErrItemNotFound
	}

	item := c.items[idx]
	p, err := c.catalog.Get(ctx, item.Product)
	if err != nil {
		return Line{}, errors.Wrap(err, "get product")
	}

	c.items = append(c.items[:idx], c.items[idx+1:]...)
	return newLine(item.Product, p, item.Quantity), nil
}

// View resolves every item against the catalog.
func (c *Cart) View(ctx context.Context) (View, error) {
	v := View{
		Lines: make([]Line, 0, len(c.items)),
		Total: decimal.Zero,
	}
	for _, item := range c.items {
		p, err := c.catalog.Get(ctx, item.Product)
		if err != nil {
			return View{}, errors.Wrapf(err, "get product %d", item.Product)
		}
		line := newLine(item.Product, p, item.Quantity)
		v.Lines = append(v.Lines, line)
		v.Total = v.Total.Add(line.Total)
	}
	return v, nil
}

// Total returns the sum of all line totals.
func (c *Cart) Total(ctx context.Context) (decimal.Decimal, error) {
	v, err := c.View(ctx)
	if err != nil {
		return decimal.Zero, err
	}
	return v.Total, nil
}

// Checkout commits the cart against catalog stock, clears it and returns
// the receipt. On failure neither the cart nor the catalog changes.
func (c *Cart) Checkout(ctx context.Context) (*Receipt, error) {
	if len(c.items) == 0 {
		return nil, ErrEmptyCart
	}

	v, err := c.View(ctx)
	if err != nil {
		return nil, err
	}

	reservations := make([]product.Reservation, len(c.items))
	for i, item := range c.items {
		reservations[i] = product.Reservation{Product: item.Product, Quantity: item.Quantity}
	}
	if err := c.catalog.Commit(ctx, reservations); err != nil {
		return nil, errors.Wrap(err, "commit stock")
	}

	c.items = c.items[:0]

	return &Receipt{
		ID:        uuid.New().String(),
		Lines:     v.Lines,
		Total:     v.Total.Round(2),
		CreatedAt: c.now(),
	}, nil
}

// Len returns the number of distinct products in the cart.
func (c *Cart) Len() int {
	return len(c.items)
}

// Items returns a copy of the cart items in insertion order.
func (c *Cart) Items() []Item {
	out := make([]Item, len(c.items))
	copy(out, c.items)
	return out
}

func (c *Cart) indexOfID(id product.ID) int {
	for i, item := range c.items {
		if item.Product == id {
			return i
		}
	}
	return -1
}

// indexOf finds an item by product name. Names are resolved through the
// catalog so that display casing never affects matching.
func (c *Cart) indexOf(ctx context.Context, name string) int {
	for i, item := range c.items {
		p, err := c.catalog.Get(ctx, item.Product)
		if err != nil {
			continue
		}
		if product.SameName(p.Name, name) {
			return i
		}
	}
	return -1
}

func newLine(id product.ID, p product.Product, quantity int) Line {
	return Line{
		Product:   id,
		Name:      p.Name,
		UnitPrice: p.Price,
		Quantity:  quantity,
		Total:     p.Price.Mul(decimal.NewFromInt(int64(quantity))),
	}
}
