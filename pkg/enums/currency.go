package enums

// Currency is the settlement currency. Only USD is supported.
type Currency string

const CurrencyUSD Currency = "USD"

// String implements fmt.Stringer.
func (c Currency) String() string {
	return string(c)
}
