package console

import (
	"context"
	"strings"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/xenking/ministore/internal/domain/product"
)

// doneSentinel ends the add-products loop, compared case-insensitively.
const doneSentinel = "done"

func (c *Console) login(ctx context.Context) (bool, error) {
	c.println()
	c.println(strings.Repeat("-", 32))
	c.println("Store Manager Login")
	c.println(strings.Repeat("-", 32))

	username, err := c.readLine("Username: ")
	if err != nil {
		return false, err
	}
	password, err := c.readLine("Password: ")
	if err != nil {
		return false, err
	}

	if !c.auth.Authenticate(username, password) {
		zctx.From(ctx).Warn("Manager login failed", zap.String("username", username))
		c.println("Login failed! Please try again or return to main menu.")
		return false, nil
	}

	zctx.From(ctx).Info("Manager logged in", zap.String("username", username))
	c.println("Login successful! Welcome, Manager.")
	return true, nil
}

func (c *Console) managerMenu(ctx context.Context) error {
	for {
		c.println()
		c.println(strings.Repeat("-", 32))
		c.println("Manager Menu")
		c.println(strings.Repeat("-", 32))
		c.println("1. Add Products")
		c.println("2. View Products")
		c.println("3. Back to Main Menu")

		choice, err := c.readChoice()
		if err != nil {
			return err
		}

		switch choice {
		case "1":
			if err := c.addProducts(ctx); err != nil {
				return err
			}
		case "2":
			if err := c.listProducts(ctx); err != nil {
				return err
			}
		case "3":
			c.println("Returning to main menu...")
			return nil
		default:
			c.println("Invalid choice!")
		}
	}
}

// addProducts reads products until the operator enters the done sentinel.
// A malformed or rejected entry is reported and discarded.
func (c *Console) addProducts(ctx context.Context) error {
	c.println()
	c.println(strings.Repeat("-", 32))
	c.println("Add Products")
	c.println(strings.Repeat("-", 32))

	lg := zctx.From(ctx)
	for {
		name, err := c.readLine("Enter product name (or 'done' to finish): ")
		if err != nil {
			return err
		}
		if strings.EqualFold(strings.TrimSpace(name), doneSentinel) {
			return nil
		}

		rawPrice, err := c.readLine("Enter product price: ")
		if err != nil {
			return err
		}
		price, err := parsePrice(rawPrice)
		if err != nil {
			lg.Debug("Rejected product input", zap.Error(err))
			c.println("Invalid input! Please enter valid numbers.")
			continue
		}

		rawStock, err := c.readLine("Enter product stock quantity: ")
		if err != nil {
			return err
		}
		stock, err := parseQuantity(rawStock)
		if err != nil {
			lg.Debug("Rejected product input", zap.Error(err))
			c.println("Invalid input! Please enter valid numbers.")
			continue
		}

		id, err := c.catalog.Add(ctx, name, price, stock)
		if err != nil {
			lg.Debug("Rejected product", zap.String("name", name), zap.Error(err))
			c.println(describeAddError(err))
			continue
		}

		p, err := c.catalog.Get(ctx, id)
		if err != nil {
			return errors.Wrap(err, "get added product")
		}
		c.metrics.productsAdded.Add(ctx, 1)
		lg.Info("Product added",
			zap.String("name", p.Name),
			zap.String("price", p.Price.StringFixed(2)),
			zap.Int("stock", p.Stock),
		)
		c.printf("Product added: %s\n", p)
	}
}

func describeAddError(err error) string {
	switch {
	case errors.Is(err, product.ErrInvalidPrice):
		return "Price must be positive!"
	case errors.Is(err, product.ErrInvalidStock):
		return "Stock cannot be negative!"
	case errors.Is(err, product.ErrEmptyName):
		return "Product name cannot be empty!"
	default:
		return "Could not add product: " + err.Error()
	}
}
