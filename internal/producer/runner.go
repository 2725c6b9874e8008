// SPDX-License-Identifier: Apache-2.0

// Package producer orchestrates one simulation run: generate every
// order's lifecycle, inject anomalies, then hand the sequences to the
// delivery collaborator with configured pacing.
package producer

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/orderup/order-producer/internal/domain"
	"github.com/orderup/order-producer/internal/metrics"
	"github.com/orderup/order-producer/internal/simulation"
)

const orderSpacing = 5 * time.Minute

type Encoder interface {
	Encode(rec domain.EventRecord, subject string) ([]byte, error)
}

type Deliverer interface {
	Publish(ctx context.Context, key, value []byte) error
	Flush(ctx context.Context) error
	Stats() (delivered, failed int64)
}

type ReportWriter interface {
	InsertRunReport(ctx context.Context, report domain.RunReport) error
}

type Deps struct {
	Generator *simulation.Generator
	Injector  *simulation.Injector
	Encoder   Encoder
	Deliverer Deliverer
	// Reports may be nil; runs are then fire-and-forget.
	Reports ReportWriter
	Logger  *slog.Logger

	Seed    int64
	Orders  int
	Subject string

	// EventDelay of zero disables pacing; late arrivals are paced at
	// half the main-event delay.
	EventDelay       time.Duration
	LateArrivalDelay time.Duration
	FlushTimeout     time.Duration
}

type Runner struct {
	generator *simulation.Generator
	injector  *simulation.Injector
	encoder   Encoder
	deliverer Deliverer
	reports   ReportWriter
	logger    *slog.Logger

	seed    int64
	orders  int
	subject string

	eventDelay       time.Duration
	lateArrivalDelay time.Duration
	flushTimeout     time.Duration
}

func New(deps Deps) *Runner {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	orders := deps.Orders
	if orders <= 0 {
		orders = 20
	}

	subject := deps.Subject
	if subject == "" {
		subject = "orders.events.raw"
	}

	flushTimeout := deps.FlushTimeout
	if flushTimeout <= 0 {
		flushTimeout = 10 * time.Second
	}

	return &Runner{
		generator:        deps.Generator,
		injector:         deps.Injector,
		encoder:          deps.Encoder,
		deliverer:        deps.Deliverer,
		reports:          deps.Reports,
		logger:           logger,
		seed:             deps.Seed,
		orders:           orders,
		subject:          subject,
		eventDelay:       deps.EventDelay,
		lateArrivalDelay: deps.LateArrivalDelay,
		flushTimeout:     flushTimeout,
	}
}

// Run executes one complete simulation. Generation and injection finish
// before delivery begins, so cancellation mid-delivery abandons the
// remaining sends without corrupting the generated sequences.
func (r *Runner) Run(ctx context.Context) (domain.RunReport, error) {
	started := time.Now().UTC()
	base := started.Add(-2 * time.Hour)

	report := domain.RunReport{
		RunID:     uuid.New(),
		Seed:      r.seed,
		Orders:    r.orders,
		StartedAt: started,
	}

	r.logger.Info("simulation starting",
		"run_id", report.RunID,
		"orders", r.orders,
		"seed", r.seed,
	)

	mains := make([][]domain.EventRecord, 0, r.orders)
	var allLate []domain.EventRecord

	for i := 0; i < r.orders; i++ {
		orderID := fmt.Sprintf("order_%04d", i)

		events, err := r.generator.Generate(orderID, base.Add(time.Duration(i)*orderSpacing))
		if err != nil {
			return domain.RunReport{}, fmt.Errorf("generate %s: %w", orderID, err)
		}

		main, late := r.injector.Inject(events)

		report.EventsGenerated += len(events)
		report.Duplicates += len(main) - len(events)
		report.LateArrivals += len(late)
		report.Reordered += countDisorder(main)

		for _, ev := range events {
			metrics.IncEventGenerated(ev.EventType)
		}

		r.logger.Info("order prepared",
			"run_id", report.RunID,
			"order_id", orderID,
			"events", len(events),
			"main", len(main),
			"late", len(late),
		)

		mains = append(mains, main)
		allLate = append(allLate, late...)
	}

	metrics.AddAnomalies(metrics.AnomalyDuplicate, report.Duplicates)
	metrics.AddAnomalies(metrics.AnomalyLateArrival, report.LateArrivals)
	metrics.AddAnomalies(metrics.AnomalyReorder, report.Reordered)

	encodeFailures := 0

	for _, main := range mains {
		for _, ev := range main {
			if err := r.pace(ctx, r.eventDelay); err != nil {
				return domain.RunReport{}, err
			}
			if !r.send(ctx, ev) {
				encodeFailures++
			}
		}
	}

	r.flush(ctx, "main")

	if len(allLate) > 0 {
		r.logger.Info("waiting before late arrivals",
			"run_id", report.RunID,
			"delay", r.lateArrivalDelay,
			"count", len(allLate),
		)
		if err := r.pace(ctx, r.lateArrivalDelay); err != nil {
			return domain.RunReport{}, err
		}

		for _, ev := range allLate {
			if err := r.pace(ctx, r.eventDelay/2); err != nil {
				return domain.RunReport{}, err
			}
			if !r.send(ctx, ev) {
				encodeFailures++
			}
		}

		r.flush(ctx, "late")
	}

	delivered, failed := r.deliverer.Stats()
	report.Delivered = delivered
	report.Failed = failed + int64(encodeFailures)
	report.FinishedAt = time.Now().UTC()

	metrics.IncRuns()

	r.logger.Info("simulation complete",
		"run_id", report.RunID,
		"events", report.EventsGenerated,
		"duplicates", report.Duplicates,
		"late_arrivals", report.LateArrivals,
		"delivered", report.Delivered,
		"failed", report.Failed,
	)

	if r.reports != nil {
		if err := r.reports.InsertRunReport(ctx, report); err != nil {
			r.logger.Error("persist run report failed",
				"run_id", report.RunID,
				"error", err,
			)
		}
	}

	return report, nil
}

// send encodes and publishes one event. It reports false only when the
// event never reached the deliverer; transport failures surface through
// the deliverer's own stats.
func (r *Runner) send(ctx context.Context, ev domain.EventRecord) bool {
	data, err := r.encoder.Encode(ev, r.subject)
	if err != nil {
		r.logger.Error("encode event failed",
			"event_id", ev.EventID,
			"order_id", ev.OrderID,
			"error", err,
		)
		return false
	}

	if err := r.deliverer.Publish(ctx, []byte(ev.OrderID), data); err != nil {
		r.logger.Error("publish event failed",
			"event_id", ev.EventID,
			"order_id", ev.OrderID,
			"error", err,
		)
	}
	return true
}

func (r *Runner) pace(ctx context.Context, delay time.Duration) error {
	if delay <= 0 {
		return nil
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (r *Runner) flush(ctx context.Context, stage string) {
	flushCtx, cancel := context.WithTimeout(ctx, r.flushTimeout)
	defer cancel()

	if err := r.deliverer.Flush(flushCtx); err != nil {
		r.logger.Warn("flush incomplete", "stage", stage, "error", err)
	}
}

// countDisorder counts positions where a timestamp moves backwards
// relative to its predecessor.
func countDisorder(events []domain.EventRecord) int {
	n := 0
	for i := 1; i < len(events); i++ {
		if events[i].EventTS < events[i-1].EventTS {
			n++
		}
	}
	return n
}
