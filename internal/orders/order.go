package orders

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/nebulashop-backend/internal/cart"
	"github.com/angelmondragon/nebulashop-backend/pkg/enums"
)

// PaymentSummary records how an order was settled.
type PaymentSummary struct {
	Method    enums.PaymentMethod `json:"method"`
	Reference string              `json:"reference"`
}

// Order is a committed checkout. Its ID is the payment session id.
type Order struct {
	ID          string            `json:"id"`
	Subtotal    decimal.Decimal   `json:"subtotal"`
	Discount    decimal.Decimal   `json:"discount"`
	Total       decimal.Decimal   `json:"total"`
	RewardID    *string           `json:"reward_id"`
	CoinsEarned int64             `json:"coins_earned"`
	CreatedAt   time.Time         `json:"created_at"`
	Status      enums.OrderStatus `json:"status"`
	Payment     PaymentSummary    `json:"payment"`
	Items       []cart.LineItem   `json:"items"`
}
