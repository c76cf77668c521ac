package enum

import (
	"database/sql/driver"
	"fmt"
)

// OrderStatus represents the lifecycle status of a billable order
type OrderStatus string

const (
	OrderStatusPending          OrderStatus = "pending"
	OrderStatusScheduled        OrderStatus = "scheduled"
	OrderStatusInProgress       OrderStatus = "in_progress"
	OrderStatusProcessing       OrderStatus = "processing"
	OrderStatusReadyForDelivery OrderStatus = "ready_for_delivery"
	OrderStatusPartiallyPaid    OrderStatus = "partially_paid"
	OrderStatusCompleted        OrderStatus = "completed"
	OrderStatusDelivered        OrderStatus = "delivered"
	OrderStatusCancelled        OrderStatus = "cancelled"
)

func (s OrderStatus) String() string {
	return string(s)
}

// IsTerminal reports whether the order has left the billing lifecycle
func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusDelivered || s == OrderStatusCancelled
}

// IsPaymentDerived reports whether the status is set only by the ledger
func (s OrderStatus) IsPaymentDerived() bool {
	return s == OrderStatusPartiallyPaid || s == OrderStatusCompleted
}

// Label is the human readable status name
func (s OrderStatus) Label() string {
	switch s {
	case OrderStatusPending:
		return "Pending"
	case OrderStatusScheduled:
		return "Scheduled"
	case OrderStatusInProgress:
		return "In Progress"
	case OrderStatusProcessing:
		return "Processing"
	case OrderStatusReadyForDelivery:
		return "Ready for Delivery"
	case OrderStatusPartiallyPaid:
		return "Partially Paid"
	case OrderStatusCompleted:
		return "Completed"
	case OrderStatusDelivered:
		return "Delivered"
	case OrderStatusCancelled:
		return "Cancelled"
	}
	return string(s)
}

func (s OrderStatus) Value() (driver.Value, error) {
	return string(s), nil
}

func (s *OrderStatus) Scan(value interface{}) error {
	switch v := value.(type) {
	case string:
		*s = OrderStatus(v)
	case []byte:
		*s = OrderStatus(v)
	case nil:
		*s = ""
	default:
		return fmt.Errorf("cannot scan %T into OrderStatus", value)
	}
	return nil
}
