// Package seed loads the initial catalog contents.
//
// A seed file is a JSON array of products:
//
//	[{"name": "Laptop", "price": "1200.00", "stock": 5}]
//
// Prices may be JSON numbers or strings. Files with a .gz suffix are read
// through a parallel gzip decoder.
package seed

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	pgzip "github.com/klauspost/pgzip"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/xenking/ministore/internal/domain/product"
)

// Entry is one product to add to the catalog at startup.
type Entry struct {
	Name  string
	Price decimal.Decimal
	Stock int
}

// Defaults returns the products the store opens with when no seed files
// are configured.
func Defaults() []Entry {
	return []Entry{
		{Name: "Laptop", Price: decimal.RequireFromString("1200.00"), Stock: 5},
		{Name: "Mouse", Price: decimal.RequireFromString("25.00"), Stock: 20},
	}
}

// Load reads all seed files concurrently and returns their entries in the
// order the paths were given.
func Load(ctx context.Context, paths ...string) ([]Entry, error) {
	results := make([][]Entry, len(paths))

	g, ctx := errgroup.WithContext(ctx)
	for i, path := range paths {
		g.Go(func() error {
			entries, err := loadFile(ctx, path)
			if err != nil {
				return errors.Wrapf(err, "load %s", path)
			}
			results[i] = entries
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var out []Entry
	for _, r := range results {
		out = append(out, r...)
	}
	return out, nil
}

// Apply adds entries to the catalog. Entries the catalog rejects are logged
// and skipped; the number of products added is returned.
func Apply(ctx context.Context, catalog product.Catalog, entries []Entry, lg *zap.Logger) int {
	added := 0
	for _, e := range entries {
		if _, err := catalog.Add(ctx, e.Name, e.Price, e.Stock); err != nil {
			lg.Warn("Skipping seed product",
				zap.String("name", e.Name),
				zap.Error(err),
			)
			continue
		}
		added++
	}
	return added
}

func loadFile(ctx context.Context, path string) ([]Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open")
	}
	defer func() { _ = f.Close() }()

	var r io.Reader = f
	if filepath.Ext(path) == ".gz" {
		gz, err := pgzip.NewReader(f)
		if err != nil {
			return nil, errors.Wrap(err, "create gzip reader")
		}
		defer func() { _ = gz.Close() }()
		r = gz
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, "read")
	}
	return Decode(data)
}

// Decode parses a seed document.
func Decode(data []byte) ([]Entry, error) {
	var entries []Entry
	d := jx.DecodeBytes(data)
	if err := d.Arr(func(d *jx.Decoder) error {
		e, err := decodeEntry(d)
		if err != nil {
			return errors.Wrapf(err, "entry %d", len(entries))
		}
		entries = append(entries, e)
		return nil
	}); err != nil {
		return nil, errors.Wrap(err, "decode seed")
	}
	return entries, nil
}

func decodeEntry(d *jx.Decoder) (Entry, error) {
	var e Entry
	err := d.ObjBytes(func(d *jx.Decoder, key []byte) error {
		switch string(key) {
		case "name":
			v, err := d.Str()
			if err != nil {
				return errors.Wrap(err, "name")
			}
			e.Name = v
		case "price":
			v, err := decodePrice(d)
			if err != nil {
				return errors.Wrap(err, "price")
			}
			e.Price = v
		case "stock":
			v, err := d.Int()
			if err != nil {
				return errors.Wrap(err, "stock")
			}
			e.Stock = v
		default:
			return d.Skip()
		}
		return nil
	})
	return e, err
}

func decodePrice(d *jx.Decoder) (decimal.Decimal, error) {
	switch t := d.Next(); t {
	case jx.String:
		s, err := d.Str()
		if err != nil {
			return decimal.Zero, err
		}
		return decimal.NewFromString(s)
	case jx.Number:
		n, err := d.Num()
		if err != nil {
			return decimal.Zero, err
		}
		return decimal.NewFromString(string(n))
	default:
		return decimal.Zero, errors.Errorf("unexpected type %v", t)
	}
}
