// SPDX-License-Identifier: Apache-2.0

package simulation

import (
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/orderup/order-producer/internal/domain"
)

const (
	minEventGapSeconds = 1.0
	maxEventGapSeconds = 30.0

	minUnitPrice = 5.99
	maxUnitPrice = 29.99

	minDeliveryEstimateMinutes = 30
	maxDeliveryEstimateMinutes = 90

	minFallbackTotal = 15.99
	maxFallbackTotal = 99.99
)

var itemAdjectives = []string{
	"Golden", "Smoky", "Crispy", "Garden", "Spicy",
	"Rustic", "Classic", "Double", "Sunset", "Harvest",
}

var itemKinds = []string{"Burger", "Pizza", "Salad", "Pasta", "Taco"}

var cancelReasons = []*string{
	strPtr("Customer requested cancellation"),
	strPtr("Restaurant unavailable"),
	strPtr("Payment failed"),
	strPtr("Item out of stock"),
	nil, // sometimes no reason is given
}

func strPtr(s string) *string { return &s }

type GeneratorDeps struct {
	Rand    Rand
	Catalog []domain.LifecyclePattern
	Logger  *slog.Logger
}

// Generator walks a weighted-random lifecycle pattern and materializes
// each step into a fully-formed event record.
type Generator struct {
	rand    Rand
	catalog []domain.LifecyclePattern
	weights []float64
	logger  *slog.Logger
}

func NewGenerator(deps GeneratorDeps) (*Generator, error) {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	src := deps.Rand
	if src == nil {
		src = NewRand(uint64(time.Now().UnixNano()))
	}

	catalog := deps.Catalog
	if catalog == nil {
		catalog = DefaultCatalog()
	}
	if err := ValidateCatalog(catalog); err != nil {
		return nil, err
	}

	weights := make([]float64, len(catalog))
	for i, p := range catalog {
		weights[i] = p.Weight
	}

	return &Generator{
		rand:    src,
		catalog: catalog,
		weights: weights,
		logger:  logger,
	}, nil
}

// orderState is the per-order ephemeral context for one Generate call.
// It never escapes the call; only derived values reach emitted events.
type orderState struct {
	customerID   string
	restaurantID string
	status       domain.OrderStatus
	ledger       []domain.OrderItem
}

// Generate produces the ordered event sequence for one order. Event
// timestamps are strictly increasing; the first event is always
// ORDER_CREATED per catalog validation.
func (g *Generator) Generate(orderID string, base time.Time) ([]domain.EventRecord, error) {
	pattern := g.catalog[weightedIndex(g.rand, g.weights)]

	state := &orderState{
		customerID:   "cust_" + shortID(g.rand),
		restaurantID: "rest_" + shortID(g.rand),
		status:       domain.StatusPending,
	}

	g.logger.Debug("pattern selected",
		"order_id", orderID,
		"pattern", pattern.Name,
		"steps", len(pattern.Steps),
	)

	events := make([]domain.EventRecord, 0, len(pattern.Steps))
	current := base

	for _, step := range pattern.Steps {
		gap := minEventGapSeconds + g.rand.Float64()*(maxEventGapSeconds-minEventGapSeconds)
		current = current.Add(time.Duration(gap * float64(time.Second)))

		payload, err := g.buildPayload(step, orderID, state, current)
		if err != nil {
			return nil, err
		}

		events = append(events, domain.EventRecord{
			EventID:       randomUUID(g.rand),
			EventType:     step,
			EventTS:       current.UnixMilli(),
			OrderID:       orderID,
			Payload:       payload,
			SchemaVersion: domain.SchemaVersion,
		})
	}

	return events, nil
}

func (g *Generator) buildPayload(
	eventType domain.EventType,
	orderID string,
	state *orderState,
	eventTime time.Time,
) (domain.Payload, error) {
	switch eventType {
	case domain.EventOrderCreated:
		return domain.OrderCreatedPayload{
			CustomerID:    state.customerID,
			RestaurantID:  state.restaurantID,
			InitialStatus: domain.StatusPending,
		}, nil

	case domain.EventOrderItemAdded:
		item := domain.OrderItem{
			ItemID:    "item_" + shortID(g.rand),
			Name:      g.itemName(),
			Quantity:  1 + g.rand.IntN(5),
			UnitPrice: roundCents(minUnitPrice + g.rand.Float64()*(maxUnitPrice-minUnitPrice)),
		}
		state.ledger = append(state.ledger, item)
		return domain.OrderItemAddedPayload{
			ItemID:    item.ItemID,
			Name:      item.Name,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
		}, nil

	case domain.EventOrderItemRemoved:
		if len(state.ledger) == 0 {
			// Deliberate referential inconsistency: reference an item
			// that was never added. Downstream consumers must cope.
			itemID := "item_" + shortID(g.rand)
			g.logger.Debug("removal from empty ledger, emitting synthetic item",
				"order_id", orderID,
				"item_id", itemID,
			)
			return domain.OrderItemRemovedPayload{ItemID: itemID}, nil
		}
		idx := g.rand.IntN(len(state.ledger))
		removed := state.ledger[idx]
		state.ledger = append(state.ledger[:idx], state.ledger[idx+1:]...)
		return domain.OrderItemRemovedPayload{ItemID: removed.ItemID}, nil

	case domain.EventOrderUpdated:
		newStatus := domain.StatusPending
		if g.rand.IntN(2) == 1 {
			newStatus = domain.StatusConfirmed
		}
		payload := domain.OrderUpdatedPayload{
			OldStatus: state.status,
			NewStatus: newStatus,
		}
		// Observed external status flip: it feeds the next old_status
		// but is independent of the confirm/cancel/complete machine.
		state.status = newStatus
		return payload, nil

	case domain.EventOrderConfirmed:
		state.status = domain.StatusConfirmed
		estimate := eventTime.Add(time.Duration(
			minDeliveryEstimateMinutes+g.rand.IntN(maxDeliveryEstimateMinutes-minDeliveryEstimateMinutes+1),
		) * time.Minute)
		return domain.OrderConfirmedPayload{
			ConfirmedBy:         "user_" + shortID(g.rand),
			EstimatedDeliveryTS: estimate.UnixMilli(),
		}, nil

	case domain.EventOrderCancelled:
		state.status = domain.StatusCancelled
		return domain.OrderCancelledPayload{
			CancelledBy: "user_" + shortID(g.rand),
			Reason:      cancelReasons[g.rand.IntN(len(cancelReasons))],
		}, nil

	case domain.EventOrderCompleted:
		state.status = domain.StatusCompleted
		var total float64
		for _, item := range state.ledger {
			total += item.Subtotal()
		}
		if total == 0 {
			total = roundCents(minFallbackTotal + g.rand.Float64()*(maxFallbackTotal-minFallbackTotal))
		}
		return domain.OrderCompletedPayload{
			CompletedTS: eventTime.UnixMilli(),
			TotalAmount: total,
		}, nil

	default:
		return nil, fmt.Errorf("build payload: %w: %s", domain.ErrUnknownEventType, eventType)
	}
}

func (g *Generator) itemName() string {
	adjective := itemAdjectives[g.rand.IntN(len(itemAdjectives))]
	kind := itemKinds[g.rand.IntN(len(itemKinds))]
	return adjective + " " + kind
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}
