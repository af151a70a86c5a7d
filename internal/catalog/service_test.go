package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"strings"
	"sync"
	"path/filepath"
	"testing"
	"time"

	"github.com/samvad-hq/xplana-partner-client/internal/storage"
	"github.com/samvad-hq/xplana-partner-client/pkg/publishers"
	"github.com/samvad-hq/xplana-partner-client/pkg/xplana"
)

type fakeSource struct {
	products []xplana.Product
	err      error
}

func (f *fakeSource) ListProducts(context.Context) ([]xplana.Product, error) {
	return f.products, f.err
}

// fakePublisher records events and fails for codes listed in failOn.
type fakePublisher struct {
	mu      sync.Mutex
	events  []publishers.Event
	failOn  map[string]bool
	partial map[string]bool
}

func (f *fakePublisher) Publish(_ context.Context, evt publishers.Event) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, evt)
	if f.failOn[evt.ProductCode] {
		return 0, errors.New("boom")
	}
	if f.partial[evt.ProductCode] {
		return 1, errors.New("one sink down")
	}
	return 1, nil
}

type fakeStore struct {
	mu      sync.Mutex
	seen    map[string]bool
	failID  string
	failErr error
}

func (f *fakeStore) SeenProduct(code string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if code == f.failID && f.failErr != nil {
		return false, f.failErr
	}
	return f.seen[code], nil
}

func (f *fakeStore) MarkProduct(code string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.seen == nil {
		f.seen = make(map[string]bool)
	}
	f.seen[code] = true
	return nil
}

func (f *fakeStore) ForgetProduct(code string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.seen, code)
	return nil
}

func (f *fakeStore) KnownProducts() ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.seen))
	for code := range f.seen {
		out = append(out, code)
	}
	sort.Strings(out)
	return out, nil
}

func TestRunPublishesUnseenProductsOnly(t *testing.T) {
	src := &fakeSource{products: []xplana.Product{
		{Code: "OLD", Title: "Old Book"},
		{Code: "NEW", Title: "New Book", Raw: json.RawMessage(`{"productCode":"NEW"}`)},
		{Code: "NEW"},
		{Code: "  "},
	}}
	store := &fakeStore{seen: map[string]bool{"OLD": true}}
	pub := &fakePublisher{}

	res, err := NewService(src, pub, store, "partner-1", nil).Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Listed != 4 || res.Published != 1 || res.Skipped != 1 || res.Removed != 0 {
		t.Fatalf("unexpected result %+v", res)
	}
	if len(pub.events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(pub.events))
	}
	evt := pub.events[0]
	if evt.Kind != publishers.KindProductAvailable || evt.ProductCode != "NEW" || evt.Title != "New Book" {
		t.Fatalf("unexpected event %+v", evt)
	}
	if evt.PartnerID != "partner-1" || string(evt.Product) != `{"productCode":"NEW"}` {
		t.Fatalf("event missing partner or payload: %+v", evt)
	}
	if !store.seen["NEW"] {
		t.Fatalf("NEW was not marked")
	}
}

func TestRunDoesNotMarkFailedDeliveries(t *testing.T) {
	src := &fakeSource{products: []xplana.Product{{Code: "BAD"}, {Code: "GOOD"}}}
	store := &fakeStore{}
	pub := &fakePublisher{failOn: map[string]bool{"BAD": true}}

	res, err := NewService(src, pub, store, "p", nil).Run(context.Background())
	if err == nil || !strings.Contains(err.Error(), "BAD") {
		t.Fatalf("expected error mentioning BAD, got %v", err)
	}
	if res.Published != 1 {
		t.Fatalf("expected 1 published, got %+v", res)
	}
	if store.seen["BAD"] {
		t.Fatalf("failed product should not be marked")
	}
	if !store.seen["GOOD"] {
		t.Fatalf("GOOD should be marked")
	}
}

func TestRunTreatsDedupeErrorsAsNew(t *testing.T) {
	src := &fakeSource{products: []xplana.Product{{Code: "A"}}}
	store := &fakeStore{seen: map[string]bool{"A": true}, failID: "A", failErr: errors.New("disk")}
	pub := &fakePublisher{}

	if _, err := NewService(src, pub, store, "p", nil).Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(pub.events) != 1 {
		t.Fatalf("expected product to be republished, got %d events", len(pub.events))
	}
}

func TestRunAnnouncesRemovedProducts(t *testing.T) {
	src := &fakeSource{products: []xplana.Product{{Code: "KEEP"}}}
	store := &fakeStore{seen: map[string]bool{"KEEP": true, "GONE": true}}
	pub := &fakePublisher{}

	res, err := NewService(src, pub, store, "p", nil).Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Removed != 1 || len(pub.events) != 1 {
		t.Fatalf("unexpected result %+v events=%d", res, len(pub.events))
	}
	if pub.events[0].Kind != publishers.KindProductRemoved || pub.events[0].ProductCode != "GONE" {
		t.Fatalf("unexpected event %+v", pub.events[0])
	}
	if store.seen["GONE"] {
		t.Fatalf("GONE should be forgotten")
	}
}

func TestRunKeepsRemovedProductWhenUndelivered(t *testing.T) {
	src := &fakeSource{}
	store := &fakeStore{seen: map[string]bool{"GONE": true}}
	pub := &fakePublisher{failOn: map[string]bool{"GONE": true}}

	if _, err := NewService(src, pub, store, "p", nil).Run(context.Background()); err == nil {
		t.Fatalf("expected error for undelivered removal")
	}
	if !store.seen["GONE"] {
		t.Fatalf("GONE should stay known until the removal is delivered")
	}
}

func TestRunPropagatesListError(t *testing.T) {
	apiErr := &xplana.APIError{Message: "500 - /products failed", StatusCode: 500}
	src := &fakeSource{err: apiErr}

	_, err := NewService(src, &fakePublisher{}, &fakeStore{}, "p", nil).Run(context.Background())
	var got *xplana.APIError
	if !errors.As(err, &got) || got.StatusCode != 500 {
		t.Fatalf("expected wrapped APIError, got %v", err)
	}
}

func TestRunStopsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	src := &fakeSource{products: []xplana.Product{{Code: "A"}}}
	pub := &fakePublisher{}
	_, err := NewService(src, pub, &fakeStore{}, "p", nil).Run(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if len(pub.events) != 0 {
		t.Fatalf("no events expected after cancellation")
	}
}

func TestRunCountsPartialDeliveryAsPublished(t *testing.T) {
	src := &fakeSource{products: []xplana.Product{{Code: "A"}}}
	store := &fakeStore{}
	pub := &fakePublisher{partial: map[string]bool{"A": true}}

	res, err := NewService(src, pub, store, "p", nil).Run(context.Background())
	if err == nil || !strings.Contains(err.Error(), "one sink down") {
		t.Fatalf("expected sink error to surface, got %v", err)
	}
	if res.Published != 1 {
		t.Fatalf("expected partial delivery counted, got %+v", res)
	}
	if !store.seen["A"] {
		t.Fatalf("partially delivered product should be marked")
	}
}

func TestRunKeepsListedProductsAliveInBoltStore(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	store, err := storage.NewStore("bbolt", filepath.Join(t.TempDir(), "catalog.db"), storage.Options{
		ProductTTL:      3 * time.Second,
		CleanupInterval: time.Second,
		Now:             func() time.Time { return now },
	})
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	defer store.Close()

	src := &fakeSource{products: []xplana.Product{{Code: "A"}}}
	pub := &fakePublisher{}
	svc := NewService(src, pub, store, "p", nil)

	for pass := 0; pass < 3; pass++ {
		res, err := svc.Run(context.Background())
		if err != nil {
			t.Fatalf("pass %d: %v", pass, err)
		}
		wantPublished := 0
		if pass == 0 {
			wantPublished = 1
		}
		if res.Published != wantPublished {
			t.Fatalf("pass %d: published = %d, want %d", pass, res.Published, wantPublished)
		}
		now = now.Add(1500 * time.Millisecond)
	}

	src.products = nil
	res, err := svc.Run(context.Background())
	if err != nil {
		t.Fatalf("removal pass: %v", err)
	}
	if res.Removed != 1 {
		t.Fatalf("expected A to be reported removed, got %+v", res)
	}

	var kinds []string
	for _, evt := range pub.events {
		kinds = append(kinds, evt.Kind+":"+evt.ProductCode)
	}
	want := []string{"product.available:A", "product.removed:A"}
	if strings.Join(kinds, ",") != strings.Join(want, ",") {
		t.Fatalf("events = %v, want %v", kinds, want)
	}
}
