package enums

// OrderStatus is the settlement state recorded on a committed order.
type OrderStatus string

const (
	OrderStatusPaid    OrderStatus = "paid"
	OrderStatusPending OrderStatus = "pending"
)

// String implements fmt.Stringer.
func (o OrderStatus) String() string {
	return string(o)
}
