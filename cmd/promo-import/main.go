// Command promo-import bulk-loads promo codes from gzip-compressed CSV files.
//
// Each row is code,discount_type,value[,min_order_value[,max_uses[,expires_at]]].
// A code found in several files is imported once, from the first file
// listed on the command line.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/go-faster/errors"

	"github.com/xenking/optic-storefront/internal/storage/postgres"
)

func main() {
	var (
		dataDir     string
		databaseURL string
		batchSize   int
	)

	flag.StringVar(&dataDir, "data-dir", "", "directory with *.csv.gz files (used when no files are given)")
	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.IntVar(&batchSize, "batch", 1000, "rows per insert batch")
	flag.Parse()

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		slog.Error("database URL is required: set --database-url or DATABASE_URL")
		os.Exit(1)
	}

	files := flag.Args()
	if len(files) == 0 && dataDir != "" {
		matches, err := filepath.Glob(filepath.Join(dataDir, "*.csv.gz"))
		if err != nil {
			slog.Error("list data dir", slog.String("error", err.Error()))
			os.Exit(1)
		}
		files = matches
	}
	if len(files) == 0 {
		slog.Error("no input files: pass paths or --data-dir")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, databaseURL, files, batchSize); err != nil {
		slog.Error("promo import failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
	slog.Info("promo import completed successfully")
}

func run(ctx context.Context, databaseURL string, files []string, batchSize int) error {
	for _, f := range files {
		if _, err := os.Stat(f); err != nil {
			return errors.Wrapf(err, "check file %s", f)
		}
	}

	owners, err := duplicateOwners(ctx, files)
	if err != nil {
		return errors.Wrap(err, "find duplicates")
	}
	slog.Info("cross-file duplicates", slog.Int("codes", len(owners)))

	pool, err := postgres.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	stats, err := importFiles(ctx, postgres.NewPromoRepository(pool), files, owners, batchSize)
	if err != nil {
		return err
	}
	slog.Info("import summary",
		slog.Int64("inserted", stats.Inserted),
		slog.Int64("rows", stats.Rows),
		slog.Int64("duplicates", stats.Duplicates),
		slog.Int64("invalid", stats.Invalid),
	)
	return nil
}
