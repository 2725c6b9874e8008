// SPDX-License-Identifier: Apache-2.0

package httptransport

import (
	"context"

	"github.com/google/uuid"
	"github.com/orderup/order-producer/internal/domain"
)

type ReportStore interface {
	ListRunReports(ctx context.Context, limit int) ([]domain.RunReport, error)
	GetRunReport(ctx context.Context, runID uuid.UUID) (domain.RunReport, error)
}

type SimulationRunner interface {
	Run(ctx context.Context) (domain.RunReport, error)
}
