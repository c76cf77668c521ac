// Package ledger holds the pure rules of the billing ledger: identifier
// formatting, amount validation and status derivation.
package ledger

import (
	"fmt"
	"time"

	"github.com/sangkips/studio-ledger/internal/domain/enum"
)

// NumberTimeLayout is the timestamp component of every generated number
const NumberTimeLayout = "20060102150405"

// OrderNumber formats the receipt number of an order from its variant,
// its stored creation time and its store-assigned id
func OrderNumber(kind enum.OrderKind, createdAt time.Time, id uint) string {
	return formatNumber(kind.OrderPrefix(), createdAt, id)
}

// ReceiptNumber formats the number of a payment receipt issued against an
// order of the given variant
func ReceiptNumber(kind enum.OrderKind, issuedAt time.Time, id uint) string {
	return formatNumber(kind.ReceiptPrefix(), issuedAt, id)
}

func formatNumber(prefix string, at time.Time, id uint) string {
	return fmt.Sprintf("%s-%s-%d", prefix, at.UTC().Format(NumberTimeLayout), id)
}
