package cart

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xenking/ministore/internal/domain/product"
)

// --- Mock implementations ---

type mockCatalog struct {
	products  []product.Product
	commitErr error
	commits   int
}

func (m *mockCatalog) Add(_ context.Context, name string, price decimal.Decimal, stock int) (product.ID, error) {
	m.products = append(m.products, product.Product{Name: name, Price: price, Stock: stock})
	return product.ID(len(m.products) - 1), nil
}

func (m *mockCatalog) List(_ context.Context) ([]product.Product, error) {
	return m.products, nil
}

func (m *mockCatalog) Find(_ context.Context, name string) (product.ID, product.Product, error) {
	for i, p := range m.products {
		if product.SameName(p.Name, name) {
			return product.ID(i), p, nil
		}
	}
	return 0, product.Product{}, product.ErrNotFound
}

func (m *mockCatalog) Get(_ context.Context, id product.ID) (product.Product, error) {
	if id < 0 || int(id) >= len(m.products) {
		return product.Product{}, product.ErrNotFound
	}
	return m.products[id], nil
}

func (m *mockCatalog) Commit(_ context.Context, reservations []product.Reservation) error {
	if m.commitErr != nil {
		return m.commitErr
	}
	m.commits++
	for _, r := range reservations {
		m.products[r.Product].Stock -= r.Quantity
	}
	return nil
}

func (m *mockCatalog) Len() int {
	return len(m.products)
}

// --- Helpers ---

const (
	laptop product.ID = iota
	mouse
)

func newStore() *mockCatalog {
	return &mockCatalog{products: []product.Product{
		{Name: "Laptop", Price: decimal.RequireFromString("1200.00"), Stock: 5},
		{Name: "Mouse", Price: decimal.RequireFromString("25.00"), Stock: 20},
	}}
}

func requireTotal(t *testing.T, c *Cart, want string) {
	t.Helper()
	total, err := c.Total(context.Background())
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString(want).Equal(total), "total %s, want %s", total, want)
}

// --- Tests ---

func TestCart_Add(t *testing.T) {
	ctx := context.Background()
	c := New(newStore())

	line, err := c.Add(ctx, laptop, 2)
	require.NoError(t, err)
	assert.Equal(t, "Laptop", line.Name)
	assert.Equal(t, 2, line.Quantity)
	assert.True(t, decimal.RequireFromString("2400").Equal(line.Total))

	_, err = c.Add(ctx, mouse, 1)
	require.NoError(t, err)

	// Adding again increments the existing item in place.
	_, err = c.Add(ctx, laptop, 1)
	require.NoError(t, err)

	assert.Equal(t, []Item{
		{Product: laptop, Quantity: 3},
		{Product: mouse, Quantity: 1},
	}, c.Items())
	requireTotal(t, c, "3625.00")
}

func TestCart_AddInvalidQuantity(t *testing.T) {
	ctx := context.Background()
	c := New(newStore())
	_, err := c.Add(ctx, mouse, 1)
	require.NoError(t, err)

	for _, q := range []int{0, -1, -100} {
		_, err := c.Add(ctx, mouse, q)
		require.ErrorIs(t, err, ErrInvalidQuantity)
	}
	assert.Equal(t, []Item{{Product: mouse, Quantity: 1}}, c.Items())
}

func TestCart_AddInsufficientStock(t *testing.T) {
	ctx := context.Background()
	c := New(newStore())

	_, err := c.Add(ctx, laptop, 6)
	var stockErr *product.InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, 5, stockErr.Available)
	assert.Equal(t, 0, stockErr.InCart)
	assert.Equal(t, 0, c.Len())

	_, err = c.Add(ctx, laptop, 2)
	require.NoError(t, err)

	_, err = c.Add(ctx, laptop, 4)
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, 5, stockErr.Available)
	assert.Equal(t, 2, stockErr.InCart)
	assert.Equal(t, 4, stockErr.Requested)
	assert.Equal(t, []Item{{Product: laptop, Quantity: 2}}, c.Items())

	// Filling the cart up to exactly the stock is allowed.
	_, err = c.Add(ctx, laptop, 3)
	require.NoError(t, err)
	assert.Equal(t, []Item{{Product: laptop, Quantity: 5}}, c.Items())
}

func TestCart_AddUnknownProduct(t *testing.T) {
	c := New(newStore())

	_, err := c.Add(context.Background(), 99, 1)
	require.ErrorIs(t, err, product.ErrNotFound)
	assert.Equal(t, 0, c.Len())
}

func TestCart_Remove(t *testing.T) {
	ctx := context.Background()
	store := newStore()
	keyboard, _ := store.Add(ctx, "Keyboard", decimal.NewFromInt(45), 3)
	c := New(store)

	_, err := c.Add(ctx, laptop, 1)
	require.NoError(t, err)
	_, err = c.Add(ctx, mouse, 2)
	require.NoError(t, err)
	_, err = c.Add(ctx, keyboard, 1)
	require.NoError(t, err)

	removed, err := c.Remove(ctx, "mOUSE")
	require.NoError(t, err)
	assert.Equal(t, "Mouse", removed.Name)
	assert.Equal(t, 2, removed.Quantity)
	assert.Equal(t, []Item{
		{Product: laptop, Quantity: 1},
		{Product: keyboard, Quantity: 1},
	}, c.Items())

	_, err = c.Remove(ctx, "Mouse")
	require.ErrorIs(t, err, ErrItemNotFound)
}

func TestCart_RemoveRestoresPreAddState(t *testing.T) {
	ctx := context.Background()
	c := New(newStore())

	_, err := c.Add(ctx, mouse, 4)
	require.NoError(t, err)
	_, err = c.Remove(ctx, "Mouse")
	require.NoError(t, err)

	assert.Equal(t, 0, c.Len())
	requireTotal(t, c, "0")
}

func TestCart_View(t *testing.T) {
	ctx := context.Background()
	c := New(newStore())

	v, err := c.View(ctx)
	require.NoError(t, err)
	assert.True(t, v.Empty())
	assert.True(t, decimal.Zero.Equal(v.Total))

	_, err = c.Add(ctx, mouse, 3)
	require.NoError(t, err)
	_, err = c.Add(ctx, laptop, 1)
	require.NoError(t, err)

	v, err = c.View(ctx)
	require.NoError(t, err)
	require.Len(t, v.Lines, 2)
	assert.Equal(t, "Mouse x3 - $75.00", v.Lines[0].String())
	assert.Equal(t, "Laptop x1 - $1200.00", v.Lines[1].String())
	assert.True(t, decimal.RequireFromString("1275").Equal(v.Total))
}

func TestCart_Checkout(t *testing.T) {
	ctx := context.Background()
	store := newStore()
	c := New(store)
	fixed := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return fixed }

	_, err := c.Add(ctx, laptop, 2)
	require.NoError(t, err)
	_, err = c.Add(ctx, mouse, 3)
	require.NoError(t, err)

	receipt, err := c.Checkout(ctx)
	require.NoError(t, err)

	_, err = uuid.Parse(receipt.ID)
	require.NoError(t, err)
	assert.Equal(t, fixed, receipt.CreatedAt)
	assert.True(t, decimal.RequireFromString("2475.00").Equal(receipt.Total))
	require.Len(t, receipt.Lines, 2)

	assert.Equal(t, 1, store.commits)
	assert.Equal(t, 3, store.products[laptop].Stock)
	assert.Equal(t, 17, store.products[mouse].Stock)

	assert.Equal(t, 0, c.Len())
	requireTotal(t, c, "0")
}

func TestCart_CheckoutEmpty(t *testing.T) {
	store := newStore()
	c := New(store)

	_, err := c.Checkout(context.Background())
	require.ErrorIs(t, err, ErrEmptyCart)
	assert.Equal(t, 0, store.commits)
	assert.Equal(t, 5, store.products[laptop].Stock)
}

func TestCart_CheckoutCommitError(t *testing.T) {
	ctx := context.Background()
	store := newStore()
	c := New(store)

	_, err := c.Add(ctx, laptop, 2)
	require.NoError(t, err)

	store.commitErr = errors.New("stock changed")
	_, err = c.Checkout(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "commit stock")

	// The cart is kept so the customer can adjust it.
	assert.Equal(t, []Item{{Product: laptop, Quantity: 2}}, c.Items())
}

func TestCart_AddHugeQuantityDoesNotOverflow(t *testing.T) {
	ctx := context.Background()
	store := newStore()
	c := New(store)

	_, err := c.Add(ctx, laptop, 2)
	require.NoError(t, err)

	_, err = c.Add(ctx, laptop, math.MaxInt)
	var stockErr *product.InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, 2, stockErr.InCart)
	assert.Equal(t, []Item{{Product: laptop, Quantity: 2}}, c.Items())

	_, err = c.Checkout(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, store.products[laptop].Stock)
}

func TestCart_AddKeepsDuplicateNamesApart(t *testing.T) {
	ctx := context.Background()
	store := newStore()
	second, _ := store.Add(ctx, "LAPTOP", decimal.NewFromInt(999), 1)
	c := New(store)

	_, err := c.Add(ctx, laptop, 2)
	require.NoError(t, err)
	_, err = c.Add(ctx, second, 1)
	require.NoError(t, err)

	assert.Equal(t, []Item{
		{Product: laptop, Quantity: 2},
		{Product: second, Quantity: 1},
	}, c.Items())

	// The second product only has one unit, regardless of the first.
	_, err = c.Add(ctx, second, 1)
	var stockErr *product.InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, 1, stockErr.Available)
	assert.Equal(t, 1, stockErr.InCart)
}
