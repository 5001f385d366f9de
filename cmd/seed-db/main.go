// Command seed-db loads the catalog, starter promo codes and an admin API
// key into PostgreSQL.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/xenking/optic-storefront/db"
	"github.com/xenking/optic-storefront/internal/domain/auth"
	"github.com/xenking/optic-storefront/internal/domain/catalog"
	"github.com/xenking/optic-storefront/internal/domain/money"
	"github.com/xenking/optic-storefront/internal/domain/promo"
	"github.com/xenking/optic-storefront/internal/storage/postgres"
)

var starterPromos = []promo.Code{
	{Code: "WELCOME10", DiscountType: promo.DiscountPercent, Value: decimal.NewFromInt(10), Active: true},
	{Code: "SAVE20", DiscountType: promo.DiscountPercent, Value: decimal.NewFromInt(20), MinOrderValue: money.FromUnits(2000), Active: true},
	{Code: "FLAT500", DiscountType: promo.DiscountFixed, Value: decimal.NewFromInt(500), MinOrderValue: money.FromUnits(3000), MaxUses: 100, Active: true},
}

func main() {
	var (
		databaseURL  string
		productsFile string
		apiKey       string
		apiKeyPepper string
	)

	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.StringVar(&productsFile, "products-file", "", "products JSON file (defaults to the embedded catalog)")
	flag.StringVar(&apiKey, "api-key", "", "admin API key to seed (or OPTIC_SEED_API_KEY env)")
	flag.StringVar(&apiKeyPepper, "api-key-pepper", "", "HMAC pepper for API key hashing (or OPTIC_API_KEY_PEPPER env)")
	flag.Parse()

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		slog.Error("database URL is required: set --database-url or DATABASE_URL")
		os.Exit(1)
	}
	if apiKey == "" {
		apiKey = os.Getenv("OPTIC_SEED_API_KEY")
	}
	if apiKeyPepper == "" {
		apiKeyPepper = os.Getenv("OPTIC_API_KEY_PEPPER")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, databaseURL, productsFile, apiKey, apiKeyPepper); err != nil {
		slog.Error("seed failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
	slog.Info("seed completed successfully")
}

func run(ctx context.Context, databaseURL, productsFile, apiKey, pepper string) error {
	products, err := readProducts(productsFile)
	if err != nil {
		return err
	}

	slog.Info("connecting to database")
	pool, err := postgres.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	if err := postgres.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	if err := postgres.NewProductRepository(pool).Upsert(ctx, products); err != nil {
		return errors.Wrap(err, "seed products")
	}
	slog.Info("upserted products", slog.Int("count", len(products)))

	inserted, err := postgres.NewPromoRepository(pool).Import(ctx, starterPromos)
	if err != nil {
		return errors.Wrap(err, "seed promo codes")
	}
	slog.Info("seeded promo codes", slog.Int64("inserted", inserted), slog.Int("total", len(starterPromos)))

	if apiKey == "" {
		slog.Warn("no API key given, skipping admin key")
		return nil
	}
	id, err := postgres.NewAPIKeyRepository(pool).Upsert(ctx,
		auth.HashKey([]byte(pepper), apiKey), "Default admin key", []string{auth.ScopeAdmin})
	if err != nil {
		return errors.Wrap(err, "seed api key")
	}
	slog.Info("upserted API key", slog.String("id", id))
	return nil
}

func readProducts(path string) ([]catalog.Product, error) {
	data := db.SeedProducts
	if path != "" {
		slog.Info("reading products file", slog.String("path", path))
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.Wrap(err, "read products file")
		}
		data = b
	}
	products, err := catalog.DecodeProducts(data)
	if err != nil {
		return nil, errors.Wrap(err, "parse products")
	}
	for i := range products {
		if err := products[i].Check(); err != nil {
			return nil, errors.Wrapf(err, "product %s", products[i].ID)
		}
	}
	return products, nil
}
