package repository

import (
	"context"

	"github.com/sangkips/studio-ledger/internal/domain/entity"
	"github.com/sangkips/studio-ledger/internal/domain/enum"
	"github.com/shopspring/decimal"
)

// SortDirection orders receipt listings by issue time
type SortDirection string

const (
	SortAsc  SortDirection = "asc"
	SortDesc SortDirection = "desc"
)

// ParseSortDirection defaults to ascending for anything but "desc"
func ParseSortDirection(s string) SortDirection {
	if s == string(SortDesc) {
		return SortDesc
	}
	return SortAsc
}

// OrderBalance is the ledger view of one order used by reconciliation
type OrderBalance struct {
	Ref         entity.OrderRef
	Status      enum.OrderStatus
	TotalAmount decimal.Decimal
	PaidAmount  decimal.Decimal
	ReceiptSum  decimal.Decimal
}

// LedgerRepository defines the persistence port of the billing ledger.
// Writes happen only inside RunInTx; the read methods never take the
// per-order lock.
type LedgerRepository interface {
	// RunInTx runs fn as one unit of work. Nothing fn writes is visible to
	// other callers unless fn returns nil.
	RunInTx(ctx context.Context, fn func(tx LedgerTx) error) error

	// GetOrder returns nil, nil when the order does not exist
	GetOrder(ctx context.Context, ref entity.OrderRef) (entity.Billable, error)
	ListReceiptsByOrder(ctx context.Context, ref entity.OrderRef, dir SortDirection) ([]entity.PaymentReceipt, error)
	SumReceiptsByOrder(ctx context.Context, ref entity.OrderRef) (decimal.Decimal, error)
	// ClientRemaining sums the remaining balance of every order of a client
	// in a single consistent read
	ClientRemaining(ctx context.Context, clientID uint) (decimal.Decimal, error)

	ListOrdersMissingNumber(ctx context.Context, kind enum.OrderKind) ([]entity.Billable, error)
	ListReceiptsMissingNumber(ctx context.Context) ([]entity.PaymentReceipt, error)
	// ListBalances pages through the orders of a variant by id
	ListBalances(ctx context.Context, kind enum.OrderKind, afterID uint, limit int) ([]OrderBalance, error)
}

// LedgerTx is the write side of a ledger unit of work
type LedgerTx interface {
	// LockOrder loads the order and holds its mutation scope until the unit
	// of work ends. Missing orders yield an order_not_found error.
	LockOrder(ctx context.Context, ref entity.OrderRef) (entity.Billable, error)
	// SumReceipts sums the receipts of an order as seen by this unit of work
	SumReceipts(ctx context.Context, ref entity.OrderRef) (decimal.Decimal, error)
	// CreateOrder inserts the order without a receipt number and fills in
	// its id and timestamps
	CreateOrder(ctx context.Context, order entity.Billable) error
	// AssignOrderNumber sets the receipt number of an order that has none
	AssignOrderNumber(ctx context.Context, ref entity.OrderRef, number string) error
	// UpdateBalance writes paid amount and status, nothing else
	UpdateBalance(ctx context.Context, ref entity.OrderRef, paid decimal.Decimal, status enum.OrderStatus) error
	// CreateReceipt inserts the receipt without a number and fills in its id
	CreateReceipt(ctx context.Context, receipt *entity.PaymentReceipt) error
	// AssignReceiptNumber sets the number of a receipt that has none
	AssignReceiptNumber(ctx context.Context, id uint, number string) error
	// DeleteOrder removes the order and detaches its receipts
	DeleteOrder(ctx context.Context, ref entity.OrderRef) error
}
