// SPDX-License-Identifier: Apache-2.0

package httptransport

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"sync/atomic"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/orderup/order-producer/internal/metrics"
	"github.com/orderup/order-producer/internal/transport/middleware"
)

type Deps struct {
	Reports    ReportStore
	Runner     SimulationRunner
	Logger     *slog.Logger
	AdminToken string
	Version    string
	Commit     string
	BuildDate  string
}

func NewRouter(deps Deps) http.Handler {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	metrics.Init()
	version := valueOrDefault(deps.Version, "dev")
	commit := valueOrDefault(deps.Commit, "none")
	buildDate := valueOrDefault(deps.BuildDate, "unknown")

	// One simulation at a time; a second trigger gets 409.
	var running atomic.Bool

	r := chi.NewRouter()
	r.Use(requestIDMiddleware())
	r.Use(requestLoggingMiddleware(logger))

	// ---------------- HEALTH ----------------

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		logger.Debug("health check hit")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	// ---------------- METRICS ----------------

	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		promhttp.Handler().ServeHTTP(w, r)
	})

	// ---------------- VERSION ----------------

	r.Get("/version", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{
			"version":    version,
			"commit":     commit,
			"build_date": buildDate,
		})
	})

	// ---------------- RUN HISTORY ----------------

	r.Get("/runs", func(w http.ResponseWriter, r *http.Request) {
		if deps.Reports == nil {
			http.Error(w, "run report store not configured", http.StatusServiceUnavailable)
			return
		}

		limit := 50
		if raw := r.URL.Query().Get("limit"); raw != "" {
			parsed, err := strconv.Atoi(raw)
			if err != nil || parsed <= 0 {
				http.Error(w, "invalid limit", http.StatusBadRequest)
				return
			}
			limit = parsed
		}

		reports, err := deps.Reports.ListRunReports(r.Context(), limit)
		if err != nil {
			logger.Error("list run reports failed", "error", err)
			http.Error(w, "failed to list run reports", http.StatusInternalServerError)
			return
		}

		writeJSON(w, http.StatusOK, reports)
	})

	r.Get("/runs/{id}", func(w http.ResponseWriter, r *http.Request) {
		if deps.Reports == nil {
			http.Error(w, "run report store not configured", http.StatusServiceUnavailable)
			return
		}

		runID, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			http.Error(w, "invalid run id", http.StatusBadRequest)
			return
		}

		report, err := deps.Reports.GetRunReport(r.Context(), runID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				http.Error(w, "run not found", http.StatusNotFound)
				return
			}
			logger.Error("get run report failed", "run_id", runID, "error", err)
			http.Error(w, "failed to get run report", http.StatusInternalServerError)
			return
		}

		writeJSON(w, http.StatusOK, report)
	})

	// ---------------- RUN TRIGGER (ADMIN) ----------------

	if deps.Runner != nil {
		adminOnly := middleware.AdminTokenAuth(deps.AdminToken, logger)

		r.With(adminOnly).Post("/runs", func(w http.ResponseWriter, r *http.Request) {
			if !running.CompareAndSwap(false, true) {
				http.Error(w, "a simulation is already running", http.StatusConflict)
				return
			}

			// The simulation outlives the request; it reports through
			// the store and the logs.
			runCtx := context.WithoutCancel(r.Context())
			go func() {
				defer running.Store(false)
				report, err := deps.Runner.Run(runCtx)
				if err != nil {
					logger.Error("triggered simulation failed", "error", err)
					return
				}
				logger.Info("triggered simulation complete",
					"run_id", report.RunID,
					"events", report.EventsGenerated,
				)
			}()

			writeJSON(w, http.StatusAccepted, map[string]string{
				"status": "accepted",
			})
		})
	}

	return r
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func valueOrDefault(value, defaultValue string) string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return defaultValue
	}
	return trimmed
}
