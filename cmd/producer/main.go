// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"log"
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

	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := simulation.NewRand(uint64(seed))

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

	publisher, err := messaging.NewPublisher(messaging.Config{
		Brokers: cfg.KafkaBrokers,
		Topic:   cfg.KafkaTopic,
	}, logger)
	if err != nil {
		log.Fatalf("kafka connect failed: %v", err)
	}
	defer publisher.Close()

	codec := serialize.NewCodec()
	codec.Register(cfg.KafkaTopic, domain.SchemaVersion)

	var reports producer.ReportWriter
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
		reports = repository.NewReportRepository(pool, logger)
	}

	runner := producer.New(producer.Deps{
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

	report, err := runner.Run(ctx)
	if err != nil {
		logger.Error("simulation aborted", "error", err)
		os.Exit(1)
	}

	logger.Info("run finished",
		"run_id", report.RunID,
		"events", report.EventsGenerated,
		"delivered", report.Delivered,
		"failed", report.Failed,
	)
}
