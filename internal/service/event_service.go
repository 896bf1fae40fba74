package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/yourorg/market-data-service/internal/config"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// EventService publishes operational events to Kafka. A nil writer makes
// every publish a no-op, so callers never need to check whether Kafka is
// configured.
type EventService struct {
	writer *kafka.Writer
	logger *zap.Logger
}

// Event is the payload published for every operational event
type Event struct {
	Type    string                 `json:"type"`
	Time    time.Time              `json:"time"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// NewEventService creates a new event service. When cfg.Enabled is false the
// service is returned without a writer and publishes nothing.
func NewEventService(cfg config.KafkaConfig, logger *zap.Logger) *EventService {
	svc := &EventService{logger: logger}
	if !cfg.Enabled || len(cfg.Brokers) == 0 {
		return svc
	}

	svc.writer = &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.LeastBytes{},
		BatchTimeout: 10 * time.Millisecond,
		RequiredAcks: kafka.RequireOne,
	}
	return svc
}

// PublishSessionRepaired records that the store session was repaired after a
// failed query
func (s *EventService) PublishSessionRepaired() {
	s.publish("session_repaired", nil)
}

// PublishReportGenerated records a completed trade log analysis
func (s *EventService) PublishReportGenerated(trades int, finalCapital float64) {
	s.publish("report_generated", map[string]interface{}{
		"trades":        trades,
		"final_capital": finalCapital,
	})
}

func (s *EventService) publish(eventType string, details map[string]interface{}) {
	if s.writer == nil {
		return
	}

	value, err := json.Marshal(Event{
		Type:    eventType,
		Time:    time.Now().UTC(),
		Details: details,
	})
	if err != nil {
		s.logger.Error("Failed to marshal event",
			zap.String("type", eventType),
			zap.Error(err))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := s.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(eventType),
		Value: value,
		Time:  time.Now(),
	}); err != nil {
		s.logger.Error("Failed to publish event",
			zap.String("type", eventType),
			zap.Error(err))
		return
	}

	s.logger.Debug("Event published", zap.String("type", eventType))
}

// Close closes the underlying Kafka writer if one was configured
func (s *EventService) Close() error {
	if s.writer == nil {
		return nil
	}
	return s.writer.Close()
}
