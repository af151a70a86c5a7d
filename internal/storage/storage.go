package storage

import (
	"fmt"
	"strings"
	"time"
)

// Package storage provides local DB/cache abstraction.

// Store tracks catalog product codes that have already been announced downstream.
type Store interface {
	Close() error
	SeenProduct(code string) (bool, error)
	// MarkProduct records code as seen, refreshing its expiry but keeping its first-seen time.
	MarkProduct(code string) error
	ForgetProduct(code string) error
	// KnownProducts lists unexpired product codes in key order.
	KnownProducts() ([]string, error)
}

// Options controls retention characteristics for concrete store implementations.
type Options struct {
	ProductTTL      time.Duration
	CleanupInterval time.Duration
	// Now overrides the clock used for expiry; nil means time.Now.
	Now func() time.Time
}

const (
	defaultProductTTL      = 30 * 24 * time.Hour
	defaultCleanupInterval = 12 * time.Hour
)

// NewStore creates the configured storage backend.
func NewStore(typ, path string, opts Options) (Store, error) {
	typ = strings.TrimSpace(strings.ToLower(typ))
	opts = normalizeOptions(opts)

	switch typ {
	case "", "none", "disabled":
		return noopStore{}, nil
	case "bbolt":
		if strings.TrimSpace(path) == "" {
			return nil, fmt.Errorf("bbolt storage requires a path")
		}
		store, err := openBolt(path, opts)
		if err != nil {
			return nil, err
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unsupported storage type %q", typ)
	}
}

func normalizeOptions(opts Options) Options {
	if opts.ProductTTL <= 0 {
		opts.ProductTTL = defaultProductTTL
	}
	if opts.CleanupInterval <= 0 {
		opts.CleanupInterval = defaultCleanupInterval
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return opts
}

type noopStore struct{}

func (noopStore) Close() error                     { return nil }
func (noopStore) SeenProduct(string) (bool, error) { return false, nil }
func (noopStore) MarkProduct(string) error         { return nil }
func (noopStore) ForgetProduct(string) error       { return nil }
func (noopStore) KnownProducts() ([]string, error) { return nil, nil }
