package payments

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/nebulashop-backend/internal/cart"
	"github.com/angelmondragon/nebulashop-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/nebulashop-backend/pkg/errors"
)

// Session is a simulated payment session. It is created once per idempotency
// key and only the manager changes its status afterwards.
type Session struct {
	ID             string              `json:"id"`
	IdempotencyKey string              `json:"idempotency_key"`
	Method         enums.PaymentMethod `json:"method"`
	Amount         decimal.Decimal     `json:"amount"`
	Currency       enums.Currency      `json:"currency"`
	Status         enums.SessionStatus `json:"status"`
	Reference      string              `json:"reference"`
	Instructions   []string            `json:"instructions"`
	CreatedAt      time.Time           `json:"created_at"`
	ExpiresAt      time.Time           `json:"expires_at"`
	Address        string              `json:"address,omitempty"`
	Memo           string              `json:"memo,omitempty"`
	QRPayload      string              `json:"qr_payload,omitempty"`
	VoucherHint    string              `json:"voucher_hint,omitempty"`
}

// PastDeadline reports whether a pending session has outlived ExpiresAt.
func (s Session) PastDeadline(now time.Time) bool {
	return s.Status == enums.SessionStatusPending && !now.Before(s.ExpiresAt)
}

func (s Session) clone() Session {
	out := s
	out.Instructions = append([]string(nil), s.Instructions...)
	return out
}

// CreateSessionRequest is what a checkout submits to open a payment session.
type CreateSessionRequest struct {
	IdempotencyKey string              `json:"idempotencyKey"`
	Subtotal       decimal.Decimal     `json:"subtotal"`
	Discount       decimal.Decimal     `json:"discount"`
	Total          decimal.Decimal     `json:"total"`
	RewardID       *string             `json:"rewardId"`
	Items          []cart.LineItem     `json:"items"`
	Method         enums.PaymentMethod `json:"method"`
}

func (r CreateSessionRequest) validate() error {
	if strings.TrimSpace(r.IdempotencyKey) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "idempotency key is required")
	}
	if !r.Method.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "unsupported payment method")
	}
	if r.Total.IsNegative() {
		return pkgerrors.New(pkgerrors.CodeValidation, "total must not be negative")
	}
	return nil
}
