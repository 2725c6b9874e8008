// SPDX-License-Identifier: Apache-2.0

package domain

type OrderStatus string

const (
	StatusPending   OrderStatus = "PENDING"
	StatusConfirmed OrderStatus = "CONFIRMED"
	StatusCancelled OrderStatus = "CANCELLED"
	StatusCompleted OrderStatus = "COMPLETED"
)

// OrderItem lives in the generator's per-order ledger while a lifecycle
// is being built. Only derived values end up in emitted events.
type OrderItem struct {
	ItemID    string
	Name      string
	Quantity  int
	UnitPrice float64
}

// Subtotal is quantity times unit price for one ledger entry.
func (i OrderItem) Subtotal() float64 {
	return float64(i.Quantity) * i.UnitPrice
}
