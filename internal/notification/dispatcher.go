// File: internal/notification/dispatcher.go
package notification

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"time"

	"unihomes_backend/internal/config"
	"unihomes_backend/internal/shared"

	"github.com/segmentio/kafka-go"
	"github.com/segmentio/kafka-go/sasl/plain"
	"go.uber.org/zap"
)

const (
	channelBufferSize  = 256
	kafkaConsumerGroup = "unihomes-notifications"
)

// Dispatcher is an EventDispatcher with a lifecycle: Start launches the
// consumer side (worker goroutine or Kafka reader) and Close drains it.
type Dispatcher interface {
	shared.EventDispatcher
	Start(ctx context.Context)
	Close() error
}

// NewDispatcher picks the event bus from configuration: Kafka when a broker
// is configured, an in-process channel worker otherwise.
func NewDispatcher(cfg *config.Config, svc *Service, logger *zap.Logger) Dispatcher {
	if cfg.KafkaBroker != "" {
		return NewKafkaDispatcher(cfg, svc, logger)
	}
	return NewChannelDispatcher(svc, logger)
}

// ChannelDispatcher queues events on a buffered channel consumed by a single
// worker goroutine in the same process.
type ChannelDispatcher struct {
	events chan shared.NotificationEvent
	svc    *Service
	logger *zap.Logger
	done   chan struct{}
}

// NewChannelDispatcher creates the in-process dispatcher.
func NewChannelDispatcher(svc *Service, logger *zap.Logger) *ChannelDispatcher {
	return &ChannelDispatcher{
		events: make(chan shared.NotificationEvent, channelBufferSize),
		svc:    svc,
		logger: logger,
		done:   make(chan struct{}),
	}
}

// Dispatch queues the event without blocking. A full queue drops the event;
// notifications are best effort.
func (d *ChannelDispatcher) Dispatch(_ context.Context, event shared.NotificationEvent) {
	select {
	case d.events <- event:
	default:
		d.logger.Warn("Notification queue full, dropping event", zap.String("type", event.Type))
	}
}

// Start launches the worker goroutine. It runs until ctx is cancelled, then
// drains whatever is already queued.
func (d *ChannelDispatcher) Start(ctx context.Context) {
	go func() {
		defer close(d.done)
		for {
			select {
			case event := <-d.events:
				d.svc.HandleEvent(context.Background(), event)
			case <-ctx.Done():
				for {
					select {
					case event := <-d.events:
						d.svc.HandleEvent(context.Background(), event)
					default:
						return
					}
				}
			}
		}
	}()
}

// Close waits for the worker to finish draining.
func (d *ChannelDispatcher) Close() error {
	<-d.done
	return nil
}

// KafkaDispatcher publishes events to a Kafka topic and consumes them in a
// reader loop, so notification delivery survives process restarts and can be
// scaled out.
type KafkaDispatcher struct {
	writer *kafka.Writer
	reader *kafka.Reader
	svc    *Service
	logger *zap.Logger
	done   chan struct{}
}

// NewKafkaDispatcher wires the producer and consumer for the notification
// topic. SASL/TLS is enabled when a Kafka username is configured.
func NewKafkaDispatcher(cfg *config.Config, svc *Service, logger *zap.Logger) *KafkaDispatcher {
	var dialer *kafka.Dialer
	var transport kafka.RoundTripper
	if cfg.KafkaUsername != "" {
		mechanism := plain.Mechanism{Username: cfg.KafkaUsername, Password: cfg.KafkaPassword}
		dialer = &kafka.Dialer{
			Timeout:       10 * time.Second,
			DualStack:     true,
			SASLMechanism: mechanism,
			TLS:           &tls.Config{MinVersion: tls.VersionTLS12},
		}
		transport = &kafka.Transport{
			SASL: mechanism,
			TLS:  &tls.Config{MinVersion: tls.VersionTLS12},
		}
	}

	writer := &kafka.Writer{
		Addr:      kafka.TCP(cfg.KafkaBroker),
		Topic:     cfg.KafkaNotificationTopic,
		Balancer:  &kafka.LeastBytes{},
		Transport: transport,
	}

	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  []string{cfg.KafkaBroker},
		GroupID:  kafkaConsumerGroup,
		Topic:    cfg.KafkaNotificationTopic,
		MinBytes: 10e3,
		MaxBytes: 10e6,
		Dialer:   dialer,
	})

	return &KafkaDispatcher{
		writer: writer,
		reader: reader,
		svc:    svc,
		logger: logger,
		done:   make(chan struct{}),
	}
}

// Dispatch publishes the event as JSON. Publish failures are logged and
// swallowed so the producing request is unaffected.
func (d *KafkaDispatcher) Dispatch(ctx context.Context, event shared.NotificationEvent) {
	payload, err := json.Marshal(event)
	if err != nil {
		d.logger.Error("Failed to marshal notification event", zap.Error(err), zap.String("type", event.Type))
		return
	}
	msg := kafka.Message{
		Key:   []byte(event.RecipientID.String()),
		Value: payload,
		Time:  time.Now(),
	}
	if err := d.writer.WriteMessages(ctx, msg); err != nil {
		d.logger.Error("Failed to publish notification event",
			zap.Error(err), zap.String("type", event.Type))
	}
}

// Start launches the consumer loop. It exits when ctx is cancelled.
func (d *KafkaDispatcher) Start(ctx context.Context) {
	go func() {
		defer close(d.done)
		d.logger.Info("Kafka notification consumer started",
			zap.String("topic", d.reader.Config().Topic),
			zap.String("groupID", d.reader.Config().GroupID))
		for {
			msg, err := d.reader.ReadMessage(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				d.logger.Error("Kafka read failed", zap.Error(err))
				continue
			}
			var event shared.NotificationEvent
			if err := json.Unmarshal(msg.Value, &event); err != nil {
				d.logger.Error("Skipping malformed notification message",
					zap.Error(err), zap.Int64("offset", msg.Offset))
				continue
			}
			d.svc.HandleEvent(context.Background(), event)
		}
	}()
}

// Close shuts down both sides of the topic connection.
func (d *KafkaDispatcher) Close() error {
	<-d.done
	if err := d.writer.Close(); err != nil {
		return err
	}
	return d.reader.Close()
}
