// SPDX-License-Identifier: Apache-2.0

package simulation

import (
	"log/slog"
	"time"

	"github.com/orderup/order-producer/internal/domain"
)

const (
	minShuffleWindow = 2
	maxShuffleWindow = 5
)

type InjectorDeps struct {
	Rand                   Rand
	DuplicateProbability   float64
	OutOfOrderProbability  float64
	LateArrivalProbability float64
	Logger                 *slog.Logger
}

// Injector turns one order's clean event sequence into a main batch
// (possibly duplicated and locally shuffled) and a late-arrival batch.
type Injector struct {
	rand   Rand
	pDup   float64
	pOO    float64
	pLate  float64
	logger *slog.Logger
}

func NewInjector(deps InjectorDeps) *Injector {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	src := deps.Rand
	if src == nil {
		src = NewRand(uint64(time.Now().UnixNano()))
	}

	return &Injector{
		rand:   src,
		pDup:   deps.DuplicateProbability,
		pOO:    deps.OutOfOrderProbability,
		pLate:  deps.LateArrivalProbability,
		logger: logger,
	}
}

// Inject applies the three anomaly policies to an ordered sequence.
// The input is never mutated; records land in the output by value with
// their event ids intact. Every event in late also sits in main: late
// arrival is an additional re-delivery, not a removal.
func (in *Injector) Inject(events []domain.EventRecord) (main, late []domain.EventRecord) {
	main = make([]domain.EventRecord, 0, len(events))
	late = make([]domain.EventRecord, 0)

	for i, ev := range events {
		if in.rand.Float64() < in.pDup {
			// Duplicate immediately follows the original.
			main = append(main, ev, ev)
			in.logger.Debug("duplicate injected",
				"event_id", ev.EventID,
				"order_id", ev.OrderID,
			)
		} else {
			main = append(main, ev)
		}

		// The first event of an order is never delayed so the stream
		// keeps its causal anchor.
		if in.rand.Float64() < in.pLate && i > 0 {
			late = append(late, ev)
			in.logger.Debug("late arrival scheduled",
				"event_id", ev.EventID,
				"order_id", ev.OrderID,
			)
		}
	}

	if len(main) > 2 && in.rand.Float64() < in.pOO {
		size := minShuffleWindow + in.rand.IntN(min(maxShuffleWindow, len(main))-minShuffleWindow+1)
		start := in.rand.IntN(len(main) - size + 1)
		window := main[start : start+size]
		in.rand.Shuffle(len(window), func(i, j int) {
			window[i], window[j] = window[j], window[i]
		})
		in.logger.Debug("out-of-order window shuffled",
			"start", start,
			"size", size,
		)
	}

	return main, late
}
