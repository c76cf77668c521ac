package ledger

import (
	"github.com/sangkips/studio-ledger/internal/domain/enum"
	"github.com/sangkips/studio-ledger/pkg/apperror"
	"github.com/shopspring/decimal"
)

// DeriveStatus computes an order's status from its balance. Terminal
// statuses are kept as they are. With nothing paid the order keeps a
// lifecycle status, or falls back to the variant's initial status. Any
// positive payment moves it to partially paid or completed.
func DeriveStatus(kind enum.OrderKind, paid, total decimal.Decimal, current enum.OrderStatus) enum.OrderStatus {
	if current.IsTerminal() {
		return current
	}
	if !paid.IsPositive() {
		if current == "" || current.IsPaymentDerived() {
			return kind.InitialStatus()
		}
		return current
	}
	if paid.GreaterThanOrEqual(total) {
		return enum.OrderStatusCompleted
	}
	return enum.OrderStatusPartiallyPaid
}

// CheckPayable reports whether a payment may be recorded against an order
// in the given status
func CheckPayable(ref string, status enum.OrderStatus) error {
	if status == enum.OrderStatusCancelled {
		return apperror.NewOrderInTerminalStateError(ref, status.String())
	}
	return nil
}

// CanTransition reports whether a lifecycle operation may move an order
// from one status to another. Payment-derived statuses are owned by the
// ledger and terminal statuses are final.
func CanTransition(kind enum.OrderKind, from, to enum.OrderStatus) bool {
	if from == to || from.IsTerminal() || to.IsPaymentDerived() {
		return false
	}
	if !kind.AllowsStatus(to) {
		return false
	}
	return to != kind.InitialStatus()
}
