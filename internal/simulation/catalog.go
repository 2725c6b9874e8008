// SPDX-License-Identifier: Apache-2.0

package simulation

import (
	"errors"

	"github.com/orderup/order-producer/internal/domain"
)

var ErrEmptyCatalog = errors.New("pattern catalog has no patterns")

// DefaultCatalog returns the built-in order journeys and their
// selection weights.
func DefaultCatalog() []domain.LifecyclePattern {
	return []domain.LifecyclePattern{
		{
			Name:   "HAPPY_PATH",
			Weight: 0.5,
			Steps: []domain.EventType{
				domain.EventOrderCreated,
				domain.EventOrderItemAdded,
				domain.EventOrderItemAdded,
				domain.EventOrderConfirmed,
				domain.EventOrderCompleted,
			},
		},
		{
			Name:   "EARLY_CANCEL",
			Weight: 0.15,
			Steps: []domain.EventType{
				domain.EventOrderCreated,
				domain.EventOrderItemAdded,
				domain.EventOrderCancelled,
			},
		},
		{
			Name:   "LATE_CANCEL",
			Weight: 0.10,
			Steps: []domain.EventType{
				domain.EventOrderCreated,
				domain.EventOrderItemAdded,
				domain.EventOrderConfirmed,
				domain.EventOrderCancelled,
			},
		},
		{
			Name:   "COMPLEX_ORDER",
			Weight: 0.15,
			Steps: []domain.EventType{
				domain.EventOrderCreated,
				domain.EventOrderItemAdded,
				domain.EventOrderItemAdded,
				domain.EventOrderItemRemoved,
				domain.EventOrderItemAdded,
				domain.EventOrderConfirmed,
				domain.EventOrderCompleted,
			},
		},
		{
			Name:   "WITH_UPDATES",
			Weight: 0.10,
			Steps: []domain.EventType{
				domain.EventOrderCreated,
				domain.EventOrderItemAdded,
				domain.EventOrderUpdated,
				domain.EventOrderConfirmed,
				domain.EventOrderCompleted,
			},
		},
	}
}

// ValidateCatalog rejects malformed catalogs up front; a bad catalog is
// a programming error, not a runtime condition.
func ValidateCatalog(patterns []domain.LifecyclePattern) error {
	if len(patterns) == 0 {
		return ErrEmptyCatalog
	}
	for _, p := range patterns {
		if err := p.Validate(); err != nil {
			return err
		}
	}
	return nil
}
