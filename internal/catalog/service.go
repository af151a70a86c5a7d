package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/samvad-hq/xplana-partner-client/internal/logger"
	"github.com/samvad-hq/xplana-partner-client/pkg/publishers"
	"github.com/samvad-hq/xplana-partner-client/pkg/xplana"
)

// Service diffs the partner catalog against the seen-product store and announces changes.
type Service struct {
	source    ProductSource
	publisher EventPublisher
	store     Deduper
	partnerID string
	log       logger.Logger
}

// Result summarizes one sync pass.
type Result struct {
	Listed    int `json:"listed"`
	Published int `json:"published"`
	Removed   int `json:"removed"`
	Skipped   int `json:"skipped"`
}

// NewService wires a catalog sync over source, publisher and store.
func NewService(source ProductSource, publisher EventPublisher, store Deduper, partnerID string, log logger.Logger) *Service {
	if log == nil {
		log = logger.NopLogger{}
	}
	return &Service{
		source:    source,
		publisher: publisher,
		store:     store,
		partnerID: partnerID,
		log:       log,
	}
}

// Run performs a single sync pass. Products not yet announced are published as
// product.available; previously announced codes missing from the listing are published
// as product.removed and forgotten.
func (s *Service) Run(ctx context.Context) (Result, error) {
	if s == nil || s.source == nil || s.publisher == nil {
		return Result{}, fmt.Errorf("catalog service is not initialized")
	}

	products, err := s.source.ListProducts(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("list products: %w", err)
	}

	res := Result{Listed: len(products)}
	listed := make(map[string]struct{}, len(products))
	var errs []error

	for _, p := range products {
		if err := ctx.Err(); err != nil {
			return res, errors.Join(append(errs, err)...)
		}
		code := strings.TrimSpace(p.Code)
		if code == "" {
			res.Skipped++
			continue
		}
		if _, dup := listed[code]; dup {
			continue
		}
		listed[code] = struct{}{}

		if s.seen(code) {
			// Refresh expiry while the product stays listed.
			s.mark(code)
			continue
		}
		delivered, err := s.announce(ctx, p, code)
		if delivered {
			res.Published++
		}
		if err != nil {
			errs = append(errs, err)
		}
	}

	removed, removeErrs := s.sweepRemoved(ctx, listed)
	res.Removed = removed
	errs = append(errs, removeErrs...)

	s.log.InfoObj("catalog sync pass finished", "catalog_result", res)
	return res, errors.Join(errs...)
}

// seen treats lookup failures as unseen so a flaky store never hides a product.
func (s *Service) seen(code string) bool {
	if s.store == nil {
		return false
	}
	seen, err := s.store.SeenProduct(code)
	if err != nil {
		s.log.WarnObj("dedupe lookup failed", "dedupe_error", map[string]any{
			"product_code": code,
			"error":        err.Error(),
		})
		return false
	}
	return seen
}

// announce publishes code as available and marks it once any sink accepted the event.
// A partial delivery reports delivered together with the sink errors.
func (s *Service) announce(ctx context.Context, p xplana.Product, code string) (bool, error) {
	evt := publishers.NewEvent(publishers.KindProductAvailable, s.partnerID, code)
	evt.Title = p.Title
	evt.Product = p.Raw

	delivered, err := s.publisher.Publish(ctx, evt)
	if err != nil {
		s.log.ErrorObj("product publish failed", "publish_error", map[string]any{
			"product_code": code,
			"delivered":    delivered,
			"error":        err.Error(),
		})
	}
	if delivered == 0 {
		if err == nil {
			err = errors.New("no publisher accepted the event")
		}
		return false, fmt.Errorf("publish product %s: %w", code, err)
	}

	s.mark(code)
	if err != nil {
		return true, fmt.Errorf("publish product %s: %w", code, err)
	}
	return true, nil
}

func (s *Service) mark(code string) {
	if s.store == nil {
		return
	}
	if err := s.store.MarkProduct(code); err != nil {
		s.log.WarnObj("dedupe mark failed", "dedupe_error", map[string]any{
			"product_code": code,
			"error":        err.Error(),
		})
	}
}

func (s *Service) sweepRemoved(ctx context.Context, listed map[string]struct{}) (int, []error) {
	if s.store == nil {
		return 0, nil
	}
	known, err := s.store.KnownProducts()
	if err != nil {
		return 0, []error{fmt.Errorf("list known products: %w", err)}
	}

	removed := 0
	var errs []error
	for _, code := range known {
		if _, ok := listed[code]; ok {
			continue
		}
		if err := ctx.Err(); err != nil {
			return removed, append(errs, err)
		}
		evt := publishers.NewEvent(publishers.KindProductRemoved, s.partnerID, code)
		delivered, err := s.publisher.Publish(ctx, evt)
		if delivered == 0 {
			if err == nil {
				err = errors.New("no publisher accepted the event")
			}
			errs = append(errs, fmt.Errorf("publish removal %s: %w", code, err))
			continue
		}
		if err != nil {
			errs = append(errs, fmt.Errorf("publish removal %s: %w", code, err))
		}
		if err := s.store.ForgetProduct(code); err != nil {
			errs = append(errs, fmt.Errorf("forget product %s: %w", code, err))
			continue
		}
		removed++
	}
	return removed, errs
}
