package events

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/nebulashop-backend/internal/cart"
	"github.com/angelmondragon/nebulashop-backend/internal/orders"
	"github.com/angelmondragon/nebulashop-backend/pkg/enums"
	kafkax "github.com/angelmondragon/nebulashop-backend/pkg/kafka"
)

type capturedMessage struct {
	key, value []byte
	headers    []kafka.Header
}

type fakeProducer struct {
	messages []capturedMessage
}

func (f *fakeProducer) Publish(_ context.Context, key, value []byte, headers ...kafka.Header) error {
	f.messages = append(f.messages, capturedMessage{key: key, value: value, headers: headers})
	return nil
}

func TestKafkaPublisher_OrderCommitted(t *testing.T) {
	producer := &fakeProducer{}
	pub := NewKafkaPublisher(producer, "nebulashop-api")
	fixed := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	pub.now = func() time.Time { return fixed }

	reward := "drop-20"
	order := orders.Order{
		ID:          "sess-1",
		Subtotal:    decimal.NewFromInt(200),
		Discount:    decimal.NewFromInt(20),
		Total:       decimal.NewFromInt(180),
		RewardID:    &reward,
		CoinsEarned: 110,
		CreatedAt:   fixed,
		Status:      enums.OrderStatusPaid,
		Payment:     orders.PaymentSummary{Method: enums.PaymentMethodNebulaPay, Reference: "NB-X-ABCD"},
		Items: []cart.LineItem{
			{ProductID: "nova-hoodie", Quantity: 1},
			{ProductID: "comet-sticker-pack", Quantity: 3},
		},
	}

	require.NoError(t, pub.OrderCommitted(context.Background(), "shopper-7", order))
	require.Len(t, producer.messages, 1)
	msg := producer.messages[0]
	assert.Equal(t, "shopper-7", string(msg.key))
	assert.Equal(t, EventOrderCommitted, string(msg.headers[0].Value))

	var env Envelope
	require.NoError(t, json.Unmarshal(msg.value, &env))
	assert.Equal(t, EventOrderCommitted, env.EventType)
	assert.Equal(t, 1, env.EventVersion)
	assert.Equal(t, "nebulashop-api", env.Producer)
	assert.Equal(t, "sess-1", env.CorrelationID)
	assert.True(t, env.OccurredAt.Equal(fixed))
	assert.NotEmpty(t, env.EventID)

	payload, err := kafkax.UnwrapPayload[OrderCommittedPayload](env.Payload)
	require.NoError(t, err)
	assert.Equal(t, "sess-1", payload.OrderID)
	assert.Equal(t, 4, payload.ItemCount)
	assert.True(t, payload.Total.Equal(decimal.NewFromInt(180)))
	assert.Equal(t, "drop-20", *payload.RewardID)
	assert.Equal(t, int64(110), payload.CoinsEarned)
	assert.Equal(t, enums.PaymentMethodNebulaPay, payload.PaymentMethod)
}

func TestNopPublisher(t *testing.T) {
	var pub Publisher = NopPublisher{}
	assert.NoError(t, pub.OrderCommitted(context.Background(), "s", orders.Order{}))
}
