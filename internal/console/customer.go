package console

import (
	"context"
	"strings"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"

	"github.com/xenking/ministore/internal/domain/cart"
	"github.com/xenking/ministore/internal/domain/product"
)

// customerMenu runs one shopping session. The cart lives only as long as
// the session; checkout and return both end it.
func (c *Console) customerMenu(ctx context.Context) error {
	basket := cart.New(c.catalog)

	for {
		c.println()
		c.println(strings.Repeat("-", 20))
		c.println("CUSTOMER PORTAL")
		c.println(strings.Repeat("-", 20))
		c.println("Hello, dear customer!")
		if err := c.listProducts(ctx); err != nil {
			return err
		}

		c.println()
		c.println("What would you like to do?")
		c.println("1. Add item to cart")
		c.println("2. Remove item from cart")
		c.println("3. View cart")
		c.println("4. Checkout")
		c.println("5. Return to main menu")

		choice, err := c.readChoice()
		if err != nil {
			return err
		}

		switch choice {
		case "1":
			if err := c.addToCart(ctx, basket); err != nil {
				return err
			}
		case "2":
			if err := c.removeFromCart(ctx, basket); err != nil {
				return err
			}
		case "3":
			if err := c.viewCart(ctx, basket); err != nil {
				return err
			}
		case "4":
			return c.checkout(ctx, basket)
		case "5":
			c.println("Returning to main menu...")
			return nil
		default:
			c.println("Invalid choice! Please select 1-5.")
		}
	}
}

func (c *Console) addToCart(ctx context.Context, basket *cart.Cart) error {
	lg := zctx.From(ctx)

	name, err := c.readLine("Enter product name: ")
	if err != nil {
		return err
	}
	id, _, err := c.catalog.Find(ctx, name)
	if err != nil {
		if !errors.Is(err, product.ErrNotFound) {
			return errors.Wrap(err, "find product")
		}
		c.println("Product not found!")
		return nil
	}

	raw, err := c.readLine("Enter quantity: ")
	if err != nil {
		return err
	}
	quantity, err := parseQuantity(raw)
	if err != nil {
		lg.Debug("Rejected quantity", zap.Error(err))
		c.println("Please enter a valid number!")
		return nil
	}

	line, err := basket.Add(ctx, id, quantity)
	if err != nil {
		var stockErr *product.InsufficientStockError
		switch {
		case errors.Is(err, cart.ErrInvalidQuantity):
			c.rejected(ctx, "invalid_quantity")
			c.println("Quantity must be positive!")
		case errors.As(err, &stockErr):
			c.rejected(ctx, "insufficient_stock")
			if stockErr.InCart > 0 {
				c.printf("Cannot add %d more. Total would exceed available stock! Available: %d (in cart: %d)\n",
					stockErr.Requested, stockErr.Available, stockErr.InCart)
			} else {
				c.printf("Not enough stock! Available: %d\n", stockErr.Available)
			}
		default:
			return errors.Wrap(err, "add to cart")
		}
		lg.Debug("Rejected cart item", zap.String("name", name), zap.Int("quantity", quantity), zap.Error(err))
		return nil
	}

	lg.Debug("Added to cart", zap.String("name", line.Name), zap.Int("quantity", line.Quantity))
	c.printf("Added %d x %s to cart.\n", line.Quantity, line.Name)
	return nil
}

func (c *Console) removeFromCart(ctx context.Context, basket *cart.Cart) error {
	name, err := c.readLine("Enter product name to remove: ")
	if err != nil {
		return err
	}

	line, err := basket.Remove(ctx, name)
	if err != nil {
		if !errors.Is(err, cart.ErrItemNotFound) {
			return errors.Wrap(err, "remove from cart")
		}
		c.println("Product not found in cart!")
		return nil
	}

	zctx.From(ctx).Debug("Removed from cart", zap.String("name", line.Name))
	c.printf("Removed %s from cart.\n", line.Name)
	return nil
}

func (c *Console) viewCart(ctx context.Context, basket *cart.Cart) error {
	v, err := basket.View(ctx)
	if err != nil {
		return errors.Wrap(err, "view cart")
	}
	if v.Empty() {
		c.println("Your cart is empty!")
		return nil
	}

	c.println("Your cart:")
	for _, line := range v.Lines {
		c.printf(" - %s\n", line)
	}
	c.printf("Total: $%s\n", v.Total.StringFixed(2))
	return nil
}

func (c *Console) checkout(ctx context.Context, basket *cart.Cart) error {
	ctx, span := c.tracer.Start(ctx, "Checkout")
	defer span.End()

	lg := zctx.From(ctx)

	receipt, err := basket.Checkout(ctx)
	if err != nil {
		var stockErr *product.InsufficientStockError
		switch {
		case errors.Is(err, cart.ErrEmptyCart):
			c.println("Cart is empty!")
		case errors.As(err, &stockErr):
			c.printf("Checkout failed! Not enough %s in stock. Available: %d\n", stockErr.Name, stockErr.Available)
		default:
			span.RecordError(err)
			span.SetStatus(codes.Error, "checkout failed")
			return errors.Wrap(err, "checkout")
		}
		lg.Debug("Checkout rejected", zap.Error(err))
		return nil
	}

	span.SetAttributes(
		attribute.String("receipt.id", receipt.ID),
		attribute.Int("receipt.lines", len(receipt.Lines)),
	)
	c.metrics.checkouts.Add(ctx, 1)
	lg.Info("Checkout completed",
		zap.String("receipt_id", receipt.ID),
		zap.Int("lines", len(receipt.Lines)),
		zap.String("total", receipt.Total.StringFixed(2)),
	)

	c.println("Final Checkout:")
	for _, line := range receipt.Lines {
		c.printf(" - %s\n", line)
	}
	c.printf("Total amount due: $%s\n", receipt.Total.StringFixed(2))
	c.println("Thank you for shopping with us!")
	return nil
}

func (c *Console) rejected(ctx context.Context, reason string) {
	c.metrics.cartRejections.Add(ctx, 1, metric.WithAttributes(attribute.String("reason", reason)))
}
