// Package console implements the line-oriented menus through which the
// manager and customers operate the store.
package console

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/zap"

	"github.com/xenking/ministore/internal/domain/product"
)

// ErrMalformedNumber is returned when numeric console input cannot be parsed.
var ErrMalformedNumber = errors.New("malformed number")

var errLineTooLong = errors.New("input line too long")

const (
	// maxLineLength bounds a single line of operator input, in bytes.
	maxLineLength = 64 << 10
	// maxPriceDigits bounds the integer digits of a price.
	maxPriceDigits = 15
	// maxPriceScale bounds the fractional digits of a price.
	maxPriceScale = 10
)

// Authenticator checks manager credentials.
type Authenticator interface {
	Authenticate(username, password string) bool
}

// Config holds the dependencies of a Console.
type Config struct {
	Catalog        product.Catalog
	Auth           Authenticator
	In             io.Reader
	Out            io.Writer
	Logger         *zap.Logger
	MeterProvider  metric.MeterProvider
	TracerProvider trace.TracerProvider
}

// Console runs the store menus over a pair of text streams.
type Console struct {
	catalog product.Catalog
	auth    Authenticator
	in      *bufio.Reader
	out     io.Writer
	lg      *zap.Logger
	tracer  trace.Tracer
	metrics *metrics
}

// New creates a Console. Missing logger and telemetry providers default to
// no-op implementations.
func New(cfg Config) (*Console, error) {
	if cfg.Catalog == nil {
		return nil, errors.New("catalog is required")
	}
	if cfg.Auth == nil {
		return nil, errors.New("authenticator is required")
	}
	if cfg.In == nil || cfg.Out == nil {
		return nil, errors.New("input and output streams are required")
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.MeterProvider == nil {
		cfg.MeterProvider = noop.NewMeterProvider()
	}
	if cfg.TracerProvider == nil {
		cfg.TracerProvider = tracenoop.NewTracerProvider()
	}

	m, err := newMetrics(cfg.MeterProvider.Meter(instrumentationName))
	if err != nil {
		return nil, errors.Wrap(err, "create metrics")
	}

	return &Console{
		catalog: cfg.Catalog,
		auth:    cfg.Auth,
		in:      bufio.NewReader(cfg.In),
		out:     cfg.Out,
		lg:      cfg.Logger,
		tracer:  cfg.TracerProvider.Tracer(instrumentationName),
		metrics: m,
	}, nil
}

// Run shows the main menu until the operator exits or input ends.
func (c *Console) Run(ctx context.Context) error {
	ctx = zctx.Base(ctx, c.lg)

	err := c.mainMenu(ctx)
	if errors.Is(err, io.EOF) {
		zctx.From(ctx).Info("Input closed")
		return nil
	}
	return err
}

func (c *Console) mainMenu(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		c.println()
		c.println(strings.Repeat("=", 48))
		c.println("MINI STORE MANAGEMENT SYSTEM")
		c.println(strings.Repeat("=", 48))
		c.println("Welcome! Please select your role:")
		c.println("1. Store Manager")
		c.println("2. Customer")
		c.println("3. Exit Program")

		choice, err := c.readChoice()
		if err != nil {
			return err
		}

		switch choice {
		case "1":
			ok, err := c.login(ctx)
			if err != nil {
				return err
			}
			if ok {
				if err := c.managerMenu(zctx.With(ctx, zap.String("role", "manager"))); err != nil {
					return err
				}
			}
		case "2":
			if err := c.customerMenu(zctx.With(ctx, zap.String("role", "customer"))); err != nil {
				return err
			}
		case "3":
			c.println("Goodbye! See you next time.")
			return nil
		default:
			c.println("Invalid choice! Please select 1, 2, or 3.")
		}
	}
}

// listProducts prints the catalog with 1-based indices.
func (c *Console) listProducts(ctx context.Context) error {
	products, err := c.catalog.List(ctx)
	if err != nil {
		return errors.Wrap(err, "list products")
	}
	if len(products) == 0 {
		c.println("No products available in the store.")
		return nil
	}

	c.println("Available products:")
	for i, p := range products {
		c.printf("[%d] %s\n", i+1, p)
	}
	return nil
}

// readLine prompts and returns one line of input without its line ending.
// Lines longer than maxLineLength are discarded and the prompt is repeated.
// It returns io.EOF once the input is exhausted.
func (c *Console) readLine(prompt string) (string, error) {
	for {
		_, _ = io.WriteString(c.out, prompt)
		line, err := c.scanLine()
		if errors.Is(err, errLineTooLong) {
			c.printf("Input too long! Please keep it under %d characters.\n", maxLineLength)
			continue
		}
		return line, err
	}
}

func (c *Console) scanLine() (string, error) {
	var (
		buf     []byte
		tooLong bool
	)
	for {
		chunk, err := c.in.ReadSlice('\n')
		if !tooLong {
			if len(buf)+len(chunk) > maxLineLength {
				tooLong, buf = true, nil
			} else {
				buf = append(buf, chunk...)
			}
		}

		switch {
		case err == nil:
		case errors.Is(err, bufio.ErrBufferFull):
			continue
		case errors.Is(err, io.EOF):
			if len(buf) == 0 && !tooLong {
				return "", io.EOF
			}
		default:
			return "", errors.Wrap(err, "read input")
		}

		if tooLong {
			return "", errLineTooLong
		}
		return strings.TrimRight(string(buf), "\r\n"), nil
	}
}

func (c *Console) readChoice() (string, error) {
	line, err := c.readLine("Enter choice: ")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func (c *Console) println(a ...any) {
	_, _ = fmt.Fprintln(c.out, a...)
}

func (c *Console) printf(format string, a ...any) {
	_, _ = fmt.Fprintf(c.out, format, a...)
}

func parseQuantity(s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, errors.Wrapf(ErrMalformedNumber, "quantity %q", s)
	}
	return n, nil
}

func parsePrice(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero, errors.Wrapf(ErrMalformedNumber, "price %q", s)
	}
	// Exponent forms like 1e999999999 parse cheaply but expand on output.
	if exp := int64(d.Exponent()); exp < -maxPriceScale || int64(d.NumDigits())+exp > maxPriceDigits {
		return decimal.Zero, errors.Wrapf(ErrMalformedNumber, "price %q out of range", s)
	}
	return d, nil
}
