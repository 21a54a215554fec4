// Package memory provides the in-process storage backing the store catalog.
package memory

import (
	"context"
	"math"
	"sync"

	"github.com/bits-and-blooms/bloom/v3"
	"github.com/shopspring/decimal"

	"github.com/xenking/ministore/internal/domain/product"
)

var _ product.Catalog = (*Catalog)(nil)

// Catalog implements product.Catalog as an arena of products addressed by
// index. A bloom filter over normalized names lets Find skip the scan for
// names that were never added.
type Catalog struct {
	mu       sync.RWMutex
	products []product.Product
	names    *bloom.BloomFilter
}

// Options tunes the name filter of a Catalog.
type Options struct {
	// BloomCapacity is the expected number of products.
	BloomCapacity uint
	// BloomFPR is the target false positive rate of the name filter.
	BloomFPR float64
}

func (o *Options) setDefaults() {
	if o.BloomCapacity == 0 {
		o.BloomCapacity = 1024
	}
	if o.BloomFPR <= 0 || o.BloomFPR >= 1 {
		o.BloomFPR = 0.01
	}
}

// NewCatalog returns an empty Catalog.
func NewCatalog(opts Options) *Catalog {
	opts.setDefaults()
	return &Catalog{
		names: bloom.NewWithEstimates(opts.BloomCapacity, opts.BloomFPR),
	}
}

// Add validates and appends a new product. Names are not required to be
// unique; Find only ever reaches the first of several equal names.
func (c *Catalog) Add(_ context.Context, name string, price decimal.Decimal, stock int) (product.ID, error) {
	if err := product.Validate(name, price, stock); err != nil {
		return 0, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.products = append(c.products, product.Product{
		Name:  name,
		Price: price,
		Stock: stock,
	})
	c.names.AddString(product.NormalizeName(name))

	return product.ID(len(c.products) - 1), nil
}

// List returns snapshots of all products in insertion order.
func (c *Catalog) List(_ context.Context) ([]product.Product, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]product.Product, len(c.products))
	copy(out, c.products)
	return out, nil
}

// Find returns the first product whose name matches case-insensitively.
func (c *Catalog) Find(_ context.Context, name string) (product.ID, product.Product, error) {
	key := product.NormalizeName(name)

	c.mu.RLock()
	defer c.mu.RUnlock()

	if !c.names.TestString(key) {
		return 0, product.Product{}, product.ErrNotFound
	}
	for i, p := range c.products {
		if product.NormalizeName(p.Name) == key {
			return product.ID(i), p, nil
		}
	}
	return 0, product.Product{}, product.ErrNotFound
}

// Get resolves a product handle.
func (c *Catalog) Get(_ context.Context, id product.ID) (product.Product, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if !c.valid(id) {
		return product.Product{}, product.ErrNotFound
	}
	return c.products[id], nil
}

// Commit takes every reservation out of stock under a single lock. Stock is
// checked for all reservations before any of them is applied, so a failed
// commit leaves the catalog untouched.
func (c *Catalog) Commit(_ context.Context, reservations []product.Reservation) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	// Several reservations may target the same product.
	need := make(map[product.ID]int, len(reservations))
	for _, r := range reservations {
		if !c.valid(r.Product) {
			return product.ErrNotFound
		}
		if r.Quantity <= 0 {
			return product.ErrInvalidReservation
		}
		p := c.products[r.Product]
		if have := need[r.Product]; r.Quantity > p.Stock-have {
			requested := math.MaxInt
			if r.Quantity <= math.MaxInt-have {
				requested = have + r.Quantity
			}
			return &product.InsufficientStockError{
				Name:      p.Name,
				Available: p.Stock,
				Requested: requested,
			}
		}
		need[r.Product] += r.Quantity
	}

	for _, r := range reservations {
		c.products[r.Product].Stock -= r.Quantity
	}
	return nil
}

// Len returns the number of products in the catalog.
func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.products)
}

func (c *Catalog) valid(id product.ID) bool {
	return id >= 0 && int(id) < len(c.products)
}
