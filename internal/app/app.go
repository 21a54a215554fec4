package app

import (
	"context"
	"io"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/app"
	"go.uber.org/zap"

	"github.com/xenking/ministore/internal/console"
	"github.com/xenking/ministore/internal/domain/auth"
	"github.com/xenking/ministore/internal/seed"
	"github.com/xenking/ministore/internal/storage/memory"
)

// Run builds the catalog and console and serves the menus on in/out until
// the operator exits, input ends, or ctx is cancelled. It is the single
// wiring point for the application.
func Run(ctx context.Context, lg *zap.Logger, m *app.Telemetry, cfg *Config, in io.Reader, out io.Writer) error {
	lg.Info("Initializing", zap.Int("seed_files", len(cfg.SeedFiles)))

	// Catalog + seed data.
	catalog := memory.NewCatalog(memory.Options{
		BloomCapacity: cfg.Catalog.BloomCapacity,
		BloomFPR:      cfg.Catalog.BloomFPR,
	})

	entries := seed.Defaults()
	if len(cfg.SeedFiles) > 0 {
		loaded, err := seed.Load(ctx, cfg.SeedFiles...)
		if err != nil {
			return errors.Wrap(err, "load seed")
		}
		entries = loaded
	}
	added := seed.Apply(ctx, catalog, entries, lg)
	lg.Info("Catalog seeded", zap.Int("products", added), zap.Int("skipped", len(entries)-added))

	// Console.
	consoleCfg := console.Config{
		Catalog: catalog,
		Auth: auth.NewGate(auth.Credentials{
			Username: cfg.Manager.Username,
			Password: cfg.Manager.Password,
		}),
		In:     in,
		Out:    out,
		Logger: lg.Named("console"),
	}
	if m != nil {
		consoleCfg.MeterProvider = m.MeterProvider()
		consoleCfg.TracerProvider = m.TracerProvider()
	}
	c, err := console.New(consoleCfg)
	if err != nil {
		return errors.Wrap(err, "create console")
	}

	// The console blocks on reads, so it runs aside and an interrupt
	// returns without waiting for the next line.
	done := make(chan error, 1)
	go func() {
		done <- c.Run(ctx)
	}()

	select {
	case err := <-done:
		if err != nil && !errors.Is(err, context.Canceled) {
			return errors.Wrap(err, "console")
		}
		lg.Info("Store closed")
		return nil
	case <-ctx.Done():
		lg.Info("Interrupted, closing store")
		return nil
	}
}
