// SPDX-License-Identifier: Apache-2.0

package repository

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/orderup/order-producer/internal/domain"
)

type ReportRepository struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

func NewReportRepository(pool *pgxpool.Pool, logger *slog.Logger) *ReportRepository {
	if logger == nil {
		logger = slog.Default()
	}

	return &ReportRepository{
		pool:   pool,
		logger: logger,
	}
}

func (r *ReportRepository) InsertRunReport(ctx context.Context, report domain.RunReport) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO run_reports (
			run_id, seed, orders, events_generated,
			duplicates, late_arrivals, reordered,
			delivered, failed, started_at, finished_at
		)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
	`,
		report.RunID,
		report.Seed,
		report.Orders,
		report.EventsGenerated,
		report.Duplicates,
		report.LateArrivals,
		report.Reordered,
		report.Delivered,
		report.Failed,
		report.StartedAt,
		report.FinishedAt,
	)
	if err != nil {
		r.logger.Error("insert run report failed",
			"run_id", report.RunID,
			"error", err,
		)
		return err
	}

	return nil
}

func (r *ReportRepository) ListRunReports(ctx context.Context, limit int) ([]domain.RunReport, error) {
	if limit <= 0 || limit > 500 {
		limit = 50
	}

	rows, err := r.pool.Query(ctx, `
		SELECT run_id, seed, orders, events_generated,
		       duplicates, late_arrivals, reordered,
		       delivered, failed, started_at, finished_at
		FROM run_reports
		ORDER BY started_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		r.logger.Error("list run reports query failed", "error", err)
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.RunReport, 0, 8)
	for rows.Next() {
		var report domain.RunReport
		if err := rows.Scan(
			&report.RunID,
			&report.Seed,
			&report.Orders,
			&report.EventsGenerated,
			&report.Duplicates,
			&report.LateArrivals,
			&report.Reordered,
			&report.Delivered,
			&report.Failed,
			&report.StartedAt,
			&report.FinishedAt,
		); err != nil {
			r.logger.Error("scan run report row failed", "error", err)
			return nil, err
		}
		out = append(out, report)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error("run reports rows iteration failed", "error", err)
		return nil, err
	}

	return out, nil
}

func (r *ReportRepository) GetRunReport(ctx context.Context, runID uuid.UUID) (domain.RunReport, error) {
	var report domain.RunReport
	err := r.pool.QueryRow(ctx, `
		SELECT run_id, seed, orders, events_generated,
		       duplicates, late_arrivals, reordered,
		       delivered, failed, started_at, finished_at
		FROM run_reports
		WHERE run_id = $1
	`, runID).Scan(
		&report.RunID,
		&report.Seed,
		&report.Orders,
		&report.EventsGenerated,
		&report.Duplicates,
		&report.LateArrivals,
		&report.Reordered,
		&report.Delivered,
		&report.Failed,
		&report.StartedAt,
		&report.FinishedAt,
	)
	if err != nil {
		r.logger.Warn("get run report failed", "run_id", runID, "error", err)
		return domain.RunReport{}, err
	}

	return report, nil
}
