package noop_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"filewise/internal/domain"
	"filewise/internal/logger"
	"filewise/internal/port"
	"filewise/internal/progress/noop"
)

func TestPublisher(t *testing.T) {
	p := noop.NewPublisher(logger.Nop())

	assert.NoError(t, p.Publish(context.Background(), port.BatchProgressEvent{Type: port.EventBatchCompleted}))

	ch, err := p.Subscribe(context.Background())
	assert.Nil(t, ch)
	assert.ErrorIs(t, err, domain.ErrStreamUnavailable)
}
