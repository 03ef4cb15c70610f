package enums

import "fmt"

// PaymentMethod identifies how a shopper settles a payment session.
type PaymentMethod string

const (
	PaymentMethodNebulaPay    PaymentMethod = "nebula_pay"
	PaymentMethodSolanaUSDC   PaymentMethod = "solana_usdc"
	PaymentMethodLightningBTC PaymentMethod = "lightning_btc"
	PaymentMethodOXXOVoucher  PaymentMethod = "oxxo_voucher"
	PaymentMethodSPEIHybrid   PaymentMethod = "spei_hybrid"
	PaymentMethodCashMeetup   PaymentMethod = "cash_meetup"
)

var validPaymentMethods = []PaymentMethod{
	PaymentMethodNebulaPay,
	PaymentMethodSolanaUSDC,
	PaymentMethodLightningBTC,
	PaymentMethodOXXOVoucher,
	PaymentMethodSPEIHybrid,
	PaymentMethodCashMeetup,
}

// String implements fmt.Stringer.
func (p PaymentMethod) String() string {
	return string(p)
}

// IsValid reports whether the value is a known PaymentMethod.
func (p PaymentMethod) IsValid() bool {
	for _, candidate := range validPaymentMethods {
		if candidate == p {
			return true
		}
	}
	return false
}

// RequiresManualReview reports whether sessions for this method wait on staff
// instead of settling on their own.
func (p PaymentMethod) RequiresManualReview() bool {
	return p == PaymentMethodCashMeetup
}

// PaymentMethods returns every supported method in display order.
func PaymentMethods() []PaymentMethod {
	return append([]PaymentMethod(nil), validPaymentMethods...)
}

// ParsePaymentMethod converts raw input into a PaymentMethod.
func ParsePaymentMethod(value string) (PaymentMethod, error) {
	for _, candidate := range validPaymentMethods {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid payment method %q", value)
}
