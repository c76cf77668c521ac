package enum

import (
	"database/sql/driver"
	"fmt"
)

// OrderKind identifies which billable order variant a record belongs to
type OrderKind string

const (
	OrderKindPrintJob     OrderKind = "print_job"
	OrderKindPhotoSession OrderKind = "photo_session"
)

// OrderKinds lists every billable variant
var OrderKinds = []OrderKind{OrderKindPrintJob, OrderKindPhotoSession}

func (k OrderKind) String() string {
	return string(k)
}

// IsValid reports whether k is a known variant
func (k OrderKind) IsValid() bool {
	return k == OrderKindPrintJob || k == OrderKindPhotoSession
}

// OrderPrefix is the prefix of the order's own receipt number
func (k OrderKind) OrderPrefix() string {
	switch k {
	case OrderKindPrintJob:
		return "PRN"
	case OrderKindPhotoSession:
		return "PHO"
	}
	return ""
}

// ReceiptPrefix is the prefix of payment receipts issued against the variant
func (k OrderKind) ReceiptPrefix() string {
	switch k {
	case OrderKindPrintJob:
		return "RCPT-PRN"
	case OrderKindPhotoSession:
		return "RCPT-PHO"
	}
	return ""
}

// InitialStatus is the status a freshly created order of this variant starts in
func (k OrderKind) InitialStatus() OrderStatus {
	if k == OrderKindPhotoSession {
		return OrderStatusScheduled
	}
	return OrderStatusPending
}

// AllowsStatus reports whether the variant's status set contains s
func (k OrderKind) AllowsStatus(s OrderStatus) bool {
	switch s {
	case OrderStatusInProgress, OrderStatusCompleted, OrderStatusReadyForDelivery,
		OrderStatusDelivered, OrderStatusCancelled, OrderStatusPartiallyPaid:
		return k.IsValid()
	case OrderStatusPending:
		return k == OrderKindPrintJob
	case OrderStatusScheduled, OrderStatusProcessing:
		return k == OrderKindPhotoSession
	}
	return false
}

// Label is the human readable name used on printed documents
func (k OrderKind) Label() string {
	switch k {
	case OrderKindPrintJob:
		return "Print Job"
	case OrderKindPhotoSession:
		return "Photo Session"
	}
	return "Order"
}

// ParseOrderKind parses a stored or user supplied variant name
func ParseOrderKind(s string) (OrderKind, error) {
	k := OrderKind(s)
	if !k.IsValid() {
		return "", fmt.Errorf("unknown order kind %q", s)
	}
	return k, nil
}

func (k OrderKind) Value() (driver.Value, error) {
	return string(k), nil
}

func (k *OrderKind) Scan(value interface{}) error {
	switch v := value.(type) {
	case string:
		*k = OrderKind(v)
	case []byte:
		*k = OrderKind(v)
	case nil:
		*k = ""
	default:
		return fmt.Errorf("cannot scan %T into OrderKind", value)
	}
	return nil
}
