package series

import (
	"context"
	"errors"
	"fmt"

	"PriceSentinel/internal/model"
)

// ErrStorageUnavailable means the series could not be read or written.
var ErrStorageUnavailable = errors.New("historical series storage unavailable")

// Store is the append-only daily price series.
type Store interface {
	// Read returns the series in stored (chronological) order.
	Read(ctx context.Context) ([]model.PricePoint, error)
	// AppendIfAbsent appends p unless a point with the same date key exists.
	// It reports whether the point was written.
	AppendIfAbsent(ctx context.Context, p model.PricePoint) (bool, error)
	Close() error
}

// Config selects and locates the backend.
type Config struct {
	Backend    string `yaml:"backend" default:"csv" validate:"oneof=csv sqlite"`
	Path       string `yaml:"path" default:"data/bitcoin.csv"`
	SQLitePath string `yaml:"sqlite_path" default:"data/price_sentinel.db"`
}

// Open returns the configured backend.
func Open(cfg Config) (Store, error) {
	switch cfg.Backend {
	case "", "csv":
		return NewCSVStore(cfg.Path), nil
	case "sqlite":
		return NewSQLiteStore(cfg.SQLitePath)
	default:
		return nil, fmt.Errorf("unknown series backend %q", cfg.Backend)
	}
}

// ImportCSV copies every point of src into dst, skipping dates dst already holds.
func ImportCSV(ctx context.Context, src, dst Store) (int, error) {
	points, err := src.Read(ctx)
	if err != nil {
		return 0, err
	}
	imported := 0
	for _, p := range points {
		ok, err := dst.AppendIfAbsent(ctx, p)
		if err != nil {
			return imported, err
		}
		if ok {
			imported++
		}
	}
	return imported, nil
}

func unavailable(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrStorageUnavailable, op, err)
}
