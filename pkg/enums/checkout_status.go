package enums

// CheckoutStatus is the state of a shopper's checkout state machine.
type CheckoutStatus string

const (
	CheckoutStatusIdle       CheckoutStatus = "idle"
	CheckoutStatusProcessing CheckoutStatus = "processing"
	CheckoutStatusSucceeded  CheckoutStatus = "succeeded"
	CheckoutStatusFailed     CheckoutStatus = "failed"
)

// String implements fmt.Stringer.
func (c CheckoutStatus) String() string {
	return string(c)
}
