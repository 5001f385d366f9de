package main

import (
	"context"
	"encoding/csv"
	"io"
	"log/slog"
	"math/bits"
	"os"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/bits-and-blooms/bloom/v3"
	"github.com/go-faster/errors"
	"github.com/klauspost/pgzip"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/xenking/optic-storefront/internal/domain/money"
	"github.com/xenking/optic-storefront/internal/domain/promo"
)

const (
	// maxFiles bounds the per-code file bitmask.
	maxFiles      = 64
	bloomCapacity = 10_000_000
	bloomFPR      = 0.001
	progressEvery = 1_000_000
)

// importer stores a batch of codes, skipping codes that already exist.
type importer interface {
	Import(ctx context.Context, codes []promo.Code) (int64, error)
}

type importStats struct {
	Rows       int64
	Inserted   int64
	Duplicates int64
	Invalid    int64
}

// streamCSV calls fn for every record of a gzip-compressed CSV file. A
// leading header row starting with "code" is skipped.
func streamCSV(ctx context.Context, path string, fn func(line int, record []string) error) error {
	f, err := os.Open(path)
	if err != nil {
		return errors.Wrapf(err, "open %s", path)
	}
	defer func() { _ = f.Close() }()

	gz, err := pgzip.NewReader(f)
	if err != nil {
		return errors.Wrapf(err, "create gzip reader for %s", path)
	}
	defer func() { _ = gz.Close() }()

	r := csv.NewReader(gz)
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true
	r.ReuseRecord = true
	for line := 1; ; line++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		record, err := r.Read()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return errors.Wrapf(err, "read %s", path)
		}
		if line == 1 && strings.EqualFold(strings.TrimSpace(record[0]), "code") {
			continue
		}
		if err := fn(line, record); err != nil {
			return err
		}
	}
}

func recordCode(record []string) string {
	if len(record) == 0 {
		return ""
	}
	return promo.Normalize(record[0])
}

// duplicateOwners finds codes present in more than one file and maps each
// to the index of the first file containing it.
//
// Pass one builds a bloom filter per file. Pass two flags codes that
// another file's filter reports; merging the per-file flags gives the
// exact set of files holding each flagged code, so false positives drop
// out as single-file codes.
func duplicateOwners(ctx context.Context, files []string) (map[string]int, error) {
	if len(files) > maxFiles {
		return nil, errors.Errorf("at most %d files are supported, got %d", maxFiles, len(files))
	}
	filters := make([]*bloom.BloomFilter, len(files))
	g, gctx := errgroup.WithContext(ctx)
	for i, path := range files {
		g.Go(func() error {
			filter := bloom.NewWithEstimates(bloomCapacity, bloomFPR)
			err := streamCSV(gctx, path, func(_ int, record []string) error {
				if code := recordCode(record); code != "" {
					filter.AddString(code)
				}
				return nil
			})
			if err != nil {
				return errors.Wrapf(err, "index file %d", i+1)
			}
			filters[i] = filter
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	flagged := make([]map[string]uint, len(files))
	g, gctx = errgroup.WithContext(ctx)
	for i, path := range files {
		g.Go(func() error {
			seen := map[string]uint{}
			bit := uint(1) << uint(i)
			err := streamCSV(gctx, path, func(_ int, record []string) error {
				code := recordCode(record)
				if code == "" {
					return nil
				}
				for j, f := range filters {
					if j != i && f.TestString(code) {
						seen[code] |= bit
						break
					}
				}
				return nil
			})
			if err != nil {
				return errors.Wrapf(err, "scan file %d", i+1)
			}
			flagged[i] = seen
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	merged := map[string]uint{}
	for _, m := range flagged {
		for code, mask := range m {
			merged[code] |= mask
		}
	}
	owners := map[string]int{}
	for code, mask := range merged {
		if bits.OnesCount(mask) >= 2 {
			owners[code] = bits.TrailingZeros(mask)
		}
	}
	return owners, nil
}

// importFiles parses every file concurrently and stores codes in batches.
// Rows of a duplicated code are only taken from its owning file.
func importFiles(ctx context.Context, store importer, files []string, owners map[string]int, batchSize int) (importStats, error) {
	if batchSize < 1 {
		batchSize = 1
	}
	var rows, inserted, dups, invalid atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	for i, path := range files {
		g.Go(func() error {
			lg := slog.With(slog.String("file", path))
			batch := make([]promo.Code, 0, batchSize)
			flush := func() error {
				if len(batch) == 0 {
					return nil
				}
				n, err := store.Import(gctx, batch)
				if err != nil {
					return errors.Wrapf(err, "import batch from %s", path)
				}
				inserted.Add(n)
				batch = batch[:0]
				return nil
			}
			err := streamCSV(gctx, path, func(line int, record []string) error {
				if n := rows.Add(1); n%progressEvery == 0 {
					slog.Info("import progress", slog.Int64("rows", n))
				}
				c, err := parseRecord(record)
				if err != nil {
					invalid.Add(1)
					lg.Warn("skipping row", slog.Int("line", line), slog.String("error", err.Error()))
					return nil
				}
				if owner, ok := owners[c.Code]; ok && owner != i {
					dups.Add(1)
					return nil
				}
				batch = append(batch, c)
				if len(batch) == batchSize {
					return flush()
				}
				return nil
			})
			if err != nil {
				return err
			}
			return flush()
		})
	}
	err := g.Wait()
	return importStats{
		Rows:       rows.Load(),
		Inserted:   inserted.Load(),
		Duplicates: dups.Load(),
		Invalid:    invalid.Load(),
	}, err
}

// parseRecord converts one CSV row into an active promo code. Amounts are
// in whole currency units, expires_at is RFC 3339 or a YYYY-MM-DD date.
func parseRecord(record []string) (promo.Code, error) {
	field := func(i int) string {
		if i < len(record) {
			return strings.TrimSpace(record[i])
		}
		return ""
	}
	if len(record) < 3 {
		return promo.Code{}, errors.Errorf("expected at least 3 columns, got %d", len(record))
	}

	c := promo.Code{
		Code:         field(0),
		DiscountType: promo.DiscountType(strings.ToLower(field(1))),
		Active:       true,
	}
	var err error
	if c.Value, err = decimal.NewFromString(field(2)); err != nil {
		return promo.Code{}, errors.Wrap(err, "value")
	}
	if v := field(3); v != "" {
		minOrder, err := decimal.NewFromString(v)
		if err != nil {
			return promo.Code{}, errors.Wrap(err, "min_order_value")
		}
		if c.MinOrderValue, err = money.Parse(minOrder); err != nil {
			return promo.Code{}, errors.Wrap(err, "min_order_value")
		}
	}
	if v := field(4); v != "" {
		if c.MaxUses, err = strconv.Atoi(v); err != nil {
			return promo.Code{}, errors.Wrap(err, "max_uses")
		}
	}
	if v := field(5); v != "" {
		t, err := parseExpiry(v)
		if err != nil {
			return promo.Code{}, err
		}
		c.ExpiresAt = &t
	}
	if err := c.Check(); err != nil {
		return promo.Code{}, err
	}
	return c, nil
}

func parseExpiry(v string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.DateOnly, v)
	if err != nil {
		return time.Time{}, errors.Errorf("expires_at %q is neither RFC 3339 nor YYYY-MM-DD", v)
	}
	// A date expires at the end of that day.
	return t.Add(24*time.Hour - time.Second), nil
}
