package repository

import (
	"context"
	"time"

	"github.com/sangkips/studio-ledger/internal/domain/enum"
	"github.com/shopspring/decimal"
)

// StatusCountResult is the number of orders of one variant in one status
type StatusCountResult struct {
	OrderKind enum.OrderKind
	Status    enum.OrderStatus
	Count     int64
}

// MethodCollectionResult is the money collected through one payment method
type MethodCollectionResult struct {
	PaymentMethod enum.PaymentMethod
	Total         decimal.Decimal
	ReceiptCount  int64
}

// DebtorResult is a client with money still owed across their orders
type DebtorResult struct {
	ClientID   uint
	ClientName string
	Remaining  decimal.Decimal
	OrderCount int64
}

// DailyCollectionResult is the money collected on a single day
type DailyCollectionResult struct {
	Date      time.Time
	Collected decimal.Decimal
	Receipts  int64
}

// AnalyticsRepository defines the read-only aggregation queries behind the
// dashboard. None of them take ledger locks.
type AnalyticsRepository interface {
	CountClients(ctx context.Context) (int64, error)

	// CountOrdersByStatus groups every order of both variants by status
	CountOrdersByStatus(ctx context.Context) ([]StatusCountResult, error)

	// GetOutstanding sums total minus paid over orders that are not cancelled
	GetOutstanding(ctx context.Context) (decimal.Decimal, error)

	// GetCollected sums receipts issued in [start, end)
	GetCollected(ctx context.Context, start, end time.Time) (decimal.Decimal, error)

	// GetDailyCollections returns one entry per day for the last days days,
	// ending with the day containing now
	GetDailyCollections(ctx context.Context, now time.Time, days int) ([]DailyCollectionResult, error)

	// GetCollectionsByMethod groups receipts issued since start by method
	GetCollectionsByMethod(ctx context.Context, start time.Time) ([]MethodCollectionResult, error)

	// GetTopDebtors returns the clients owing the most, largest first
	GetTopDebtors(ctx context.Context, limit int) ([]DebtorResult, error)
}
