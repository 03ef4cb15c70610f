package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/nebulashop-backend/internal/orders"
	"github.com/angelmondragon/nebulashop-backend/pkg/enums"
	kafkax "github.com/angelmondragon/nebulashop-backend/pkg/kafka"
)

const (
	EventOrderCommitted = "order.committed"
	eventVersion        = 1
)

// Envelope wraps every event written to the orders topic.
type Envelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	EventVersion  int             `json:"event_version"`
	OccurredAt    time.Time       `json:"occurred_at"`
	Producer      string          `json:"producer"`
	CorrelationID string          `json:"correlation_id"`
	Payload       json.RawMessage `json:"payload"`
}

// OrderCommittedPayload describes an order that was just committed.
type OrderCommittedPayload struct {
	OrderID          string              `json:"order_id"`
	ShopperID        string              `json:"shopper_id"`
	Status           enums.OrderStatus   `json:"status"`
	Subtotal         decimal.Decimal     `json:"subtotal"`
	Discount         decimal.Decimal     `json:"discount"`
	Total            decimal.Decimal     `json:"total"`
	RewardID         *string             `json:"reward_id"`
	CoinsEarned      int64               `json:"coins_earned"`
	PaymentMethod    enums.PaymentMethod `json:"payment_method"`
	PaymentReference string              `json:"payment_reference"`
	ItemCount        int                 `json:"item_count"`
	CommittedAt      time.Time           `json:"committed_at"`
}

// Publisher announces committed orders to downstream consumers.
type Publisher interface {
	OrderCommitted(ctx context.Context, shopperID string, order orders.Order) error
}

type messagePublisher interface {
	Publish(ctx context.Context, key, value []byte, headers ...kafka.Header) error
}

// KafkaPublisher writes envelopes keyed by shopper so one shopper's events
// stay ordered on a single partition.
type KafkaPublisher struct {
	producer messagePublisher
	service  string
	now      func() time.Time
}

func NewKafkaPublisher(producer messagePublisher, service string) *KafkaPublisher {
	return &KafkaPublisher{producer: producer, service: service, now: time.Now}
}

func (p *KafkaPublisher) OrderCommitted(ctx context.Context, shopperID string, order orders.Order) error {
	items := 0
	for _, item := range order.Items {
		items += item.Quantity
	}
	payload := OrderCommittedPayload{
		OrderID:          order.ID,
		ShopperID:        shopperID,
		Status:           order.Status,
		Subtotal:         order.Subtotal,
		Discount:         order.Discount,
		Total:            order.Total,
		RewardID:         order.RewardID,
		CoinsEarned:      order.CoinsEarned,
		PaymentMethod:    order.Payment.Method,
		PaymentReference: order.Payment.Reference,
		ItemCount:        items,
		CommittedAt:      order.CreatedAt.UTC(),
	}
	envelope := Envelope{
		EventID:       uuid.NewString(),
		EventType:     EventOrderCommitted,
		EventVersion:  eventVersion,
		OccurredAt:    p.now().UTC(),
		Producer:      p.service,
		CorrelationID: order.ID,
		Payload:       kafkax.MustMarshal(payload),
	}
	return p.producer.Publish(ctx, []byte(shopperID), kafkax.MustMarshal(envelope),
		kafka.Header{Key: "x-event-type", Value: []byte(EventOrderCommitted)},
		kafka.Header{Key: "x-event-version", Value: []byte("1")},
	)
}

// NopPublisher drops events; used when no brokers are configured.
type NopPublisher struct{}

func (NopPublisher) OrderCommitted(context.Context, string, orders.Order) error {
	return nil
}
