package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/yourorg/market-data-service/internal/config"
)

func TestEventServiceDisabledIsInert(t *testing.T) {
	svc := NewEventService(config.KafkaConfig{Enabled: false}, zap.NewNop())

	// No writer is configured; publishing must be a silent no-op.
	svc.PublishSessionRepaired()
	svc.PublishReportGenerated(3, 100100)
	assert.NoError(t, svc.Close())
}

func TestEventServiceEnabledWithoutBrokersIsInert(t *testing.T) {
	svc := NewEventService(config.KafkaConfig{Enabled: true}, zap.NewNop())

	svc.PublishSessionRepaired()
	assert.NoError(t, svc.Close())
}
