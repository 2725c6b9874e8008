// SPDX-License-Identifier: Apache-2.0

package simulation

import (
	"errors"
	"io"
	"log/slog"
	"math"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/orderup/order-producer/internal/domain"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestGenerator(t *testing.T, seed uint64, catalog []domain.LifecyclePattern) *Generator {
	t.Helper()
	g, err := NewGenerator(GeneratorDeps{
		Rand:    NewRand(seed),
		Catalog: catalog,
		Logger:  discardLogger(),
	})
	if err != nil {
		t.Fatalf("new generator: %v", err)
	}
	return g
}

func TestGenerateDeterministic(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	for seed := uint64(0); seed < 10; seed++ {
		a := newTestGenerator(t, seed, nil)
		b := newTestGenerator(t, seed, nil)

		got, err := a.Generate("order_0001", base)
		if err != nil {
			t.Fatalf("seed %d: %v", seed, err)
		}
		want, err := b.Generate("order_0001", base)
		if err != nil {
			t.Fatalf("seed %d: %v", seed, err)
		}

		if !reflect.DeepEqual(got, want) {
			t.Fatalf("seed %d: identically seeded generators diverged", seed)
		}
	}
}

func TestGenerateTimestampsStrictlyIncreasing(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	for seed := uint64(0); seed < 50; seed++ {
		g := newTestGenerator(t, seed, nil)
		events, err := g.Generate("order_0001", base)
		if err != nil {
			t.Fatalf("seed %d: %v", seed, err)
		}

		for i := 1; i < len(events); i++ {
			if events[i].EventTS <= events[i-1].EventTS {
				t.Fatalf("seed %d: event_ts not strictly increasing at %d: %d then %d",
					seed, i, events[i-1].EventTS, events[i].EventTS)
			}
		}

		if events[0].EventType != domain.EventOrderCreated {
			t.Fatalf("seed %d: first event is %s", seed, events[0].EventType)
		}
	}
}

func TestGenerateEventIdentity(t *testing.T) {
	g := newTestGenerator(t, 42, nil)
	events, err := g.Generate("order_0042", time.Unix(1700000000, 0))
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	seen := map[string]bool{}
	for _, ev := range events {
		if seen[ev.EventID.String()] {
			t.Fatalf("duplicate event_id in clean sequence: %s", ev.EventID)
		}
		seen[ev.EventID.String()] = true

		if ev.OrderID != "order_0042" {
			t.Fatalf("unexpected order_id %s", ev.OrderID)
		}
		if ev.SchemaVersion != domain.SchemaVersion {
			t.Fatalf("unexpected schema_version %d", ev.SchemaVersion)
		}
		if ev.Payload.EventType() != ev.EventType {
			t.Fatalf("payload tag %s does not match envelope type %s",
				ev.Payload.EventType(), ev.EventType)
		}
	}
}

func TestGenerateNoDoubleRemoval(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	for seed := uint64(0); seed < 200; seed++ {
		g := newTestGenerator(t, seed, nil)
		events, err := g.Generate("order_0001", base)
		if err != nil {
			t.Fatalf("seed %d: %v", seed, err)
		}

		added := map[string]bool{}
		removed := map[string]bool{}
		for _, ev := range events {
			switch p := ev.Payload.(type) {
			case domain.OrderItemAddedPayload:
				added[p.ItemID] = true
			case domain.OrderItemRemovedPayload:
				// Synthetic ids from an empty ledger were never added
				// and are expected; a second removal of a real id is a
				// generator bug.
				if removed[p.ItemID] {
					t.Fatalf("seed %d: item %s removed twice", seed, p.ItemID)
				}
				if added[p.ItemID] {
					removed[p.ItemID] = true
				}
			}
		}
	}
}

func TestGenerateCompletedTotalMatchesLedger(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	completedSeen := false

	for seed := uint64(0); seed < 100; seed++ {
		g := newTestGenerator(t, seed, nil)
		events, err := g.Generate("order_0001", base)
		if err != nil {
			t.Fatalf("seed %d: %v", seed, err)
		}

		items := map[string]domain.OrderItemAddedPayload{}
		order := []string{}
		for _, ev := range events {
			switch p := ev.Payload.(type) {
			case domain.OrderItemAddedPayload:
				items[p.ItemID] = p
				order = append(order, p.ItemID)
			case domain.OrderItemRemovedPayload:
				delete(items, p.ItemID)
			case domain.OrderCompletedPayload:
				completedSeen = true
				var want float64
				for _, id := range order {
					if item, ok := items[id]; ok {
						want += float64(item.Quantity) * item.UnitPrice
					}
				}
				if len(items) == 0 {
					if p.TotalAmount < minFallbackTotal || p.TotalAmount > maxFallbackTotal {
						t.Fatalf("seed %d: fallback total %v out of range", seed, p.TotalAmount)
					}
					continue
				}
				if math.Abs(p.TotalAmount-want) > 1e-9 {
					t.Fatalf("seed %d: total %v, expected %v", seed, p.TotalAmount, want)
				}
			}
		}
	}

	if !completedSeen {
		t.Fatal("expected at least one completed order across seeds")
	}
}

func TestGenerateCompletedFallbackTotal(t *testing.T) {
	// No item ever enters the ledger, so the completed total must come
	// from the fallback range instead of a ledger sum.
	catalog := []domain.LifecyclePattern{
		{
			Name:   "BARE_COMPLETE",
			Weight: 1,
			Steps: []domain.EventType{
				domain.EventOrderCreated,
				domain.EventOrderCompleted,
			},
		},
	}

	for seed := uint64(0); seed < 50; seed++ {
		g := newTestGenerator(t, seed, catalog)
		events, err := g.Generate("order_0001", time.Unix(1700000000, 0))
		if err != nil {
			t.Fatalf("seed %d: %v", seed, err)
		}

		payload, ok := events[1].Payload.(domain.OrderCompletedPayload)
		if !ok {
			t.Fatalf("seed %d: expected OrderCompletedPayload, got %T", seed, events[1].Payload)
		}
		if payload.TotalAmount < minFallbackTotal || payload.TotalAmount > maxFallbackTotal {
			t.Fatalf("seed %d: fallback total %v outside [%v, %v]",
				seed, payload.TotalAmount, minFallbackTotal, maxFallbackTotal)
		}
	}
}

func TestGenerateEmptyLedgerRemoval(t *testing.T) {
	catalog := []domain.LifecyclePattern{
		{
			Name:   "REMOVE_FIRST",
			Weight: 1,
			Steps: []domain.EventType{
				domain.EventOrderCreated,
				domain.EventOrderItemRemoved,
			},
		},
	}

	g := newTestGenerator(t, 1, catalog)
	events, err := g.Generate("order_0001", time.Unix(1700000000, 0))
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	payload, ok := events[1].Payload.(domain.OrderItemRemovedPayload)
	if !ok {
		t.Fatalf("expected OrderItemRemovedPayload, got %T", events[1].Payload)
	}
	if !strings.HasPrefix(payload.ItemID, "item_") {
		t.Fatalf("expected synthetic item id, got %q", payload.ItemID)
	}
}

func TestGenerateUpdatedFeedsNextOldStatus(t *testing.T) {
	catalog := []domain.LifecyclePattern{
		{
			Name:   "DOUBLE_UPDATE",
			Weight: 1,
			Steps: []domain.EventType{
				domain.EventOrderCreated,
				domain.EventOrderUpdated,
				domain.EventOrderUpdated,
			},
		},
	}

	for seed := uint64(0); seed < 20; seed++ {
		g := newTestGenerator(t, seed, catalog)
		events, err := g.Generate("order_0001", time.Unix(1700000000, 0))
		if err != nil {
			t.Fatalf("seed %d: %v", seed, err)
		}

		first := events[1].Payload.(domain.OrderUpdatedPayload)
		second := events[2].Payload.(domain.OrderUpdatedPayload)

		if first.OldStatus != domain.StatusPending {
			t.Fatalf("seed %d: first old_status %s", seed, first.OldStatus)
		}
		if second.OldStatus != first.NewStatus {
			t.Fatalf("seed %d: second old_status %s, expected %s",
				seed, second.OldStatus, first.NewStatus)
		}
	}
}

func TestGenerateConfirmedEstimateAfterEvent(t *testing.T) {
	for seed := uint64(0); seed < 50; seed++ {
		g := newTestGenerator(t, seed, nil)
		events, err := g.Generate("order_0001", time.Unix(1700000000, 0))
		if err != nil {
			t.Fatalf("seed %d: %v", seed, err)
		}

		for _, ev := range events {
			if p, ok := ev.Payload.(domain.OrderConfirmedPayload); ok {
				if p.EstimatedDeliveryTS <= ev.EventTS {
					t.Fatalf("seed %d: estimate %d not after event_ts %d",
						seed, p.EstimatedDeliveryTS, ev.EventTS)
				}
			}
		}
	}
}

func TestNewGeneratorRejectsBadCatalog(t *testing.T) {
	_, err := NewGenerator(GeneratorDeps{
		Rand:    NewRand(1),
		Catalog: []domain.LifecyclePattern{},
		Logger:  discardLogger(),
	})
	if !errors.Is(err, ErrEmptyCatalog) {
		t.Fatalf("expected ErrEmptyCatalog, got %v", err)
	}

	_, err = NewGenerator(GeneratorDeps{
		Rand: NewRand(1),
		Catalog: []domain.LifecyclePattern{
			{Name: "BAD", Weight: -1, Steps: []domain.EventType{domain.EventOrderCreated}},
		},
		Logger: discardLogger(),
	})
	if !errors.Is(err, domain.ErrNonPositiveWeight) {
		t.Fatalf("expected ErrNonPositiveWeight, got %v", err)
	}
}

func TestBuildPayloadUnknownType(t *testing.T) {
	g := newTestGenerator(t, 1, nil)

	_, err := g.buildPayload(domain.EventType("ORDER_TELEPORTED"), "order_0001",
		&orderState{status: domain.StatusPending}, time.Unix(1700000000, 0))
	if !errors.Is(err, domain.ErrUnknownEventType) {
		t.Fatalf("expected ErrUnknownEventType, got %v", err)
	}
}
