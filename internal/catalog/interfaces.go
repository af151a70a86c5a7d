package catalog

import (
	"context"

	"github.com/samvad-hq/xplana-partner-client/pkg/publishers"
	"github.com/samvad-hq/xplana-partner-client/pkg/xplana"
)

// ProductSource lists the partner's current catalog.
type ProductSource interface {
	ListProducts(ctx context.Context) ([]xplana.Product, error)
}

// EventPublisher publishes catalog events downstream and reports how many sinks accepted them.
type EventPublisher interface {
	Publish(ctx context.Context, evt publishers.Event) (int, error)
}

// Deduper remembers which product codes have already been announced.
type Deduper interface {
	SeenProduct(code string) (bool, error)
	MarkProduct(code string) error
	ForgetProduct(code string) error
	KnownProducts() ([]string, error)
}
