// SPDX-License-Identifier: Apache-2.0

// Package messaging delivers serialized events to Kafka. The publisher
// is asynchronous: Publish enqueues without blocking and broker
// acknowledgments arrive through the writer's completion callback.
package messaging

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/orderup/order-producer/internal/metrics"
)

type Config struct {
	Brokers []string
	Topic   string
}

type Publisher struct {
	writer *kafka.Writer
	topic  string
	logger *slog.Logger

	inflight  atomic.Int64
	delivered atomic.Int64
	failed    atomic.Int64
}

// NewPublisher verifies broker reachability, ensures the topic exists
// and returns a connected async publisher.
func NewPublisher(cfg Config, logger *slog.Logger) (*Publisher, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if len(cfg.Brokers) == 0 {
		return nil, fmt.Errorf("no kafka brokers configured")
	}

	var conn *kafka.Conn
	var connErr error
	for _, broker := range cfg.Brokers {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		conn, connErr = kafka.DialContext(ctx, "tcp", broker)
		cancel()
		if connErr == nil {
			logger.Info("kafka connected", "broker", broker)
			break
		}
	}
	if connErr != nil {
		return nil, fmt.Errorf("kafka connect: %w", connErr)
	}

	p := &Publisher{
		topic:  cfg.Topic,
		logger: logger,
	}

	p.ensureTopic(conn, cfg.Topic)
	conn.Close()

	p.writer = &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.LeastBytes{},
		RequiredAcks: kafka.RequireAll,
		Async:        true,
		Completion:   p.onCompletion,
	}

	return p, nil
}

// ensureTopic creates the topic if it doesn't already exist. Errors are
// logged but not fatal since the broker may have
// auto.create.topics.enable=true anyway.
func (p *Publisher) ensureTopic(conn *kafka.Conn, topic string) {
	controller, err := conn.Controller()
	if err != nil {
		p.logger.Warn("cannot find controller for topic creation", "error", err)
		return
	}

	controllerAddr := net.JoinHostPort(controller.Host, strconv.Itoa(controller.Port))
	controllerConn, err := kafka.Dial("tcp", controllerAddr)
	if err != nil {
		p.logger.Warn("cannot connect to controller", "error", err)
		return
	}
	defer controllerConn.Close()

	err = controllerConn.CreateTopics(kafka.TopicConfig{
		Topic:             topic,
		NumPartitions:     1,
		ReplicationFactor: 1,
	})
	if err != nil {
		p.logger.Warn("topic auto-create", "topic", topic, "error", err)
		return
	}
	p.logger.Info("ensured topic exists", "topic", topic)
}

// Publish enqueues one keyed message without waiting for the broker.
func (p *Publisher) Publish(ctx context.Context, key, value []byte) error {
	start := time.Now()
	p.inflight.Add(1)

	err := p.writer.WriteMessages(ctx, kafka.Message{
		Key:   key,
		Value: value,
	})
	metrics.ObservePublishLatency(time.Since(start))

	if err != nil {
		p.inflight.Add(-1)
		p.failed.Add(1)
		metrics.AddFailed(1)
		return fmt.Errorf("publish to %s: %w", p.topic, err)
	}
	return nil
}

func (p *Publisher) onCompletion(messages []kafka.Message, err error) {
	p.inflight.Add(-int64(len(messages)))
	if err != nil {
		p.failed.Add(int64(len(messages)))
		metrics.AddFailed(len(messages))
		p.logger.Error("message delivery failed", "count", len(messages), "error", err)
		return
	}
	p.delivered.Add(int64(len(messages)))
	metrics.AddDelivered(len(messages))
}

// Flush blocks until every enqueued message has been acknowledged or
// the context expires.
func (p *Publisher) Flush(ctx context.Context) error {
	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()

	for {
		if p.inflight.Load() == 0 {
			return nil
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("flush: %d messages still in flight: %w", p.inflight.Load(), ctx.Err())
		case <-ticker.C:
		}
	}
}

// Stats reports acknowledged and failed message counts so far.
func (p *Publisher) Stats() (delivered, failed int64) {
	return p.delivered.Load(), p.failed.Load()
}

func (p *Publisher) Close() error {
	return p.writer.Close()
}
