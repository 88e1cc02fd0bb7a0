package kafka_test

import (
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"payment-stats/internal/kafka"
	"payment-stats/internal/logger"
	"payment-stats/internal/models"
)

func TestMockProducerPublishes(t *testing.T) {
	producer, err := kafka.NewProducer(nil, true, logger.New(io.Discard, false))
	require.NoError(t, err)
	defer producer.Close()

	event := &models.PaymentEvent{
		Type:      "payment.added",
		PaymentID: "PAY001",
		Timestamp: time.Now(),
	}

	assert.NoError(t, producer.PublishPaymentEvent(event))
}

func TestMockProducerCloseIsIdempotent(t *testing.T) {
	producer, err := kafka.NewProducer(nil, true, logger.New(io.Discard, false))
	require.NoError(t, err)

	assert.NoError(t, producer.Close())
	assert.NoError(t, producer.Close())
}
