// SPDX-License-Identifier: Apache-2.0

package domain

import "fmt"

// LifecyclePattern is a named, weighted template of event types
// describing one possible order journey. Weights across a catalog need
// not sum to 1; selection normalizes.
type LifecyclePattern struct {
	Name   string
	Weight float64
	Steps  []EventType
}

func (p LifecyclePattern) Validate() error {
	if len(p.Steps) == 0 {
		return fmt.Errorf("pattern %q: %w", p.Name, ErrEmptyPatternSteps)
	}
	if p.Weight <= 0 {
		return fmt.Errorf("pattern %q: %w", p.Name, ErrNonPositiveWeight)
	}
	if p.Steps[0] != EventOrderCreated {
		return fmt.Errorf("pattern %q: %w: first step is %s",
			p.Name, ErrInvalidPatternStart, p.Steps[0])
	}
	for _, step := range p.Steps {
		switch step {
		case EventOrderCreated, EventOrderItemAdded, EventOrderItemRemoved,
			EventOrderUpdated, EventOrderConfirmed, EventOrderCancelled,
			EventOrderCompleted:
		default:
			return fmt.Errorf("pattern %q: %w: %s", p.Name, ErrUnknownEventType, step)
		}
	}
	return nil
}
