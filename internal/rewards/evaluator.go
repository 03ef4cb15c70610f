package rewards

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/nebulashop-backend/internal/catalog"
	pkgerrors "github.com/angelmondragon/nebulashop-backend/pkg/errors"
)

// Shortfall describes how far a cart or balance is from unlocking a tier.
type Shortfall struct {
	RewardID      string          `json:"reward_id"`
	SpendRequired decimal.Decimal `json:"spend_required"`
	SpendShort    decimal.Decimal `json:"spend_short"`
	CoinsRequired int64           `json:"coins_required"`
	CoinsShort    int64           `json:"coins_short"`
}

// IsEligible reports whether the tier can be redeemed right now.
func IsEligible(tier catalog.RewardTier, subtotal decimal.Decimal, balance int64) bool {
	return subtotal.GreaterThanOrEqual(tier.MinSpend) && balance >= tier.Coins
}

// Evaluate returns nil when the tier is redeemable, otherwise a state-conflict
// error naming every unmet condition and its shortfall.
func Evaluate(tier catalog.RewardTier, subtotal decimal.Decimal, balance int64) error {
	if IsEligible(tier, subtotal, balance) {
		return nil
	}

	short := Shortfall{
		RewardID:      tier.ID,
		SpendRequired: tier.MinSpend,
		SpendShort:    decimal.Zero,
		CoinsRequired: tier.Coins,
	}
	reasons := make([]string, 0, 2)
	if subtotal.LessThan(tier.MinSpend) {
		short.SpendShort = tier.MinSpend.Sub(subtotal)
		reasons = append(reasons, fmt.Sprintf("requires a minimum spend of %s, subtotal is %s (short %s)",
			tier.MinSpend.StringFixed(2), subtotal.StringFixed(2), short.SpendShort.StringFixed(2)))
	}
	if balance < tier.Coins {
		short.CoinsShort = tier.Coins - balance
		reasons = append(reasons, fmt.Sprintf("requires %d coins, balance is %d (short %d coins)",
			tier.Coins, balance, short.CoinsShort))
	}

	label := tier.Label
	if label == "" {
		label = tier.ID
	}
	msg := fmt.Sprintf("%s %s", label, strings.Join(reasons, "; "))
	return pkgerrors.New(pkgerrors.CodeStateConflict, msg).WithDetails(short)
}

// ShortfallFrom extracts the shortfall attached to an Evaluate error.
func ShortfallFrom(err error) (Shortfall, bool) {
	typed := pkgerrors.As(err)
	if typed == nil {
		return Shortfall{}, false
	}
	short, ok := typed.Details().(Shortfall)
	return short, ok
}
