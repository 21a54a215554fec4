package console

import (
	"github.com/go-faster/errors"
	"go.opentelemetry.io/otel/metric"
)

const instrumentationName = "github.com/xenking/ministore/internal/console"

type metrics struct {
	productsAdded  metric.Int64Counter
	cartRejections metric.Int64Counter
	checkouts      metric.Int64Counter
}

func newMetrics(meter metric.Meter) (*metrics, error) {
	var (
		m   metrics
		err error
	)
	if m.productsAdded, err = meter.Int64Counter("ministore.products.added",
		metric.WithDescription("Products added to the catalog by the manager"),
	); err != nil {
		return nil, errors.Wrap(err, "products added counter")
	}
	if m.cartRejections, err = meter.Int64Counter("ministore.cart.rejections",
		metric.WithDescription("Cart additions rejected by validation or stock checks"),
	); err != nil {
		return nil, errors.Wrap(err, "cart rejections counter")
	}
	if m.checkouts, err = meter.Int64Counter("ministore.checkouts",
		metric.WithDescription("Completed checkouts"),
	); err != nil {
		return nil, errors.Wrap(err, "checkouts counter")
	}
	return &m, nil
}
