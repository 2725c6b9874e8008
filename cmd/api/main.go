// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/orderup/order-producer/internal/config"
	"github.com/orderup/order-producer/internal/domain"
	"github.com/orderup/order-producer/internal/logging"
	"github.com/orderup/order-producer/internal/messaging"
	"github.com/orderup/order-producer/internal/persistence/postgres"
	"github.com/orderup/order-producer/internal/producer"
	"github.com/orderup/order-producer/internal/repository"
	"github.com/orderup/order-producer/internal/serialize"
	"github.com/orderup/order-producer/internal/simulation"
	httptransport "github.com/orderup/order-producer/internal/transport/http"
)

var (
	Version   = "dev"
	Commit    = "none"
	BuildDate = "unknown"
)

func main() {
	cfg := config.Load()

	ctx, stop := signal.NotifyContext(
		context.Background(),
		os.Interrupt,
		syscall.SIGTERM,
	)
	defer stop()

	logger := logging.NewLogger(cfg.Env)

	var reports httptransport.ReportStore
	var reportWriter producer.ReportWriter
	if cfg.DatabaseURL != "" {
		pool, err := postgres.NewPool(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("db connect failed: %v", err)
		}
		defer pool.Close()

		if cfg.AutoMigrate {
			if err := postgres.EnsureSchema(ctx, pool, logger); err != nil {
				log.Fatalf("schema migration failed: %v", err)
			}
		}

		repo := repository.NewReportRepository(pool, logger)
		reports = repo
		reportWriter = repo
	} else {
		logger.Warn("DATABASE_URL not set, run history disabled")
	}

	// Kafka being down degrades the API to read-only rather than
	// preventing startup.
	var runner httptransport.SimulationRunner
	publisher, err := messaging.NewPublisher(messaging.Config{
		Brokers: cfg.KafkaBrokers,
		Topic:   cfg.KafkaTopic,
	}, logger)
	if err != nil {
		logger.Warn("kafka unavailable, run trigger disabled", "error", err)
	} else {
		defer publisher.Close()
		runner = buildRunner(cfg, publisher, reportWriter, logger)
	}

	handler := httptransport.NewRouter(httptransport.Deps{
		Reports:    reports,
		Runner:     runner,
		Logger:     logger,
		AdminToken: cfg.AdminToken,
		Version:    Version,
		Commit:     Commit,
		BuildDate:  BuildDate,
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("api listening",
			"addr", cfg.HTTPAddr,
			"version", Version,
			"commit", Commit,
			"build_date", BuildDate,
		)

		if err := srv.ListenAndServe(); err != nil &&
			err != http.ErrServerClosed {
			logger.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		5*time.Second,
	)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", "error", err)
	}
}

func buildRunner(cfg config.Config, publisher *messaging.Publisher, reports producer.ReportWriter, logger *slog.Logger) httptransport.SimulationRunner {
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := simulation.NewLockedRand(simulation.NewRand(uint64(seed)))

	generator, err := simulation.NewGenerator(simulation.GeneratorDeps{
		Rand:   rng,
		Logger: logger,
	})
	if err != nil {
		log.Fatalf("generator init failed: %v", err)
	}

	injector := simulation.NewInjector(simulation.InjectorDeps{
		Rand:                   rng,
		DuplicateProbability:   cfg.DuplicateProbability,
		OutOfOrderProbability:  cfg.OutOfOrderProbability,
		LateArrivalProbability: cfg.LateArrivalProbability,
		Logger:                 logger,
	})

	codec := serialize.NewCodec()
	codec.Register(cfg.KafkaTopic, domain.SchemaVersion)

	return producer.New(producer.Deps{
		Generator:        generator,
		Injector:         injector,
		Encoder:          codec,
		Deliverer:        publisher,
		Reports:          reports,
		Logger:           logger,
		Seed:             seed,
		Orders:           cfg.Orders,
		Subject:          cfg.KafkaTopic,
		EventDelay:       cfg.EventDelay,
		LateArrivalDelay: cfg.LateArrivalDelay,
		FlushTimeout:     cfg.FlushTimeout,
	})
}
