package service

import (
	"context"
	"time"

	"github.com/sangkips/studio-ledger/internal/domain/enum"
	"github.com/sangkips/studio-ledger/internal/domain/repository"
	"github.com/shopspring/decimal"
)

const (
	defaultDashboardDays = 7
	maxDashboardDays     = 90
	topDebtorsLimit      = 5
)

// DashboardService provides the studio's collection and balance figures
type DashboardService struct {
	analyticsRepo repository.AnalyticsRepository
	now           func() time.Time
}

// NewDashboardService creates a new dashboard service
func NewDashboardService(analyticsRepo repository.AnalyticsRepository) *DashboardService {
	return &DashboardService{analyticsRepo: analyticsRepo, now: time.Now}
}

// DashboardStats represents dashboard statistics
type DashboardStats struct {
	TotalClients        int64                  `json:"total_clients"`
	OrdersByStatus      []OrderStatusCount     `json:"orders_by_status"`
	OpenOrders          int64                  `json:"open_orders"`
	TotalOutstanding    decimal.Decimal        `json:"total_outstanding"`
	CollectedToday      decimal.Decimal        `json:"collected_today"`
	CollectedThisMonth  decimal.Decimal        `json:"collected_this_month"`
	CollectedLastMonth  decimal.Decimal        `json:"collected_last_month"`
	CollectionGrowth    float64                `json:"collection_growth"`
	DailyCollections    []DailyCollectionPoint `json:"daily_collections"`
	CollectionsByMethod []MethodCollection     `json:"collections_by_method"`
	TopDebtors          []Debtor               `json:"top_debtors"`
}

// OrderStatusCount is the number of orders of one kind in one status
type OrderStatusCount struct {
	Kind   enum.OrderKind   `json:"kind"`
	Status enum.OrderStatus `json:"status"`
	Count  int64            `json:"count"`
}

// DailyCollectionPoint represents a daily collections data point
type DailyCollectionPoint struct {
	Date      string          `json:"date"`
	Collected decimal.Decimal `json:"collected"`
	Receipts  int64           `json:"receipts"`
}

// MethodCollection represents money collected through one payment method
type MethodCollection struct {
	Method   enum.PaymentMethod `json:"payment_method"`
	Amount   decimal.Decimal    `json:"amount"`
	Receipts int64              `json:"receipts"`
}

// Debtor is a client who still owes money
type Debtor struct {
	ClientID   uint            `json:"client_id"`
	ClientName string          `json:"client_name"`
	Remaining  decimal.Decimal `json:"remaining"`
	OrderCount int64           `json:"order_count"`
}

// GetDashboardStats returns dashboard statistics covering the last days days
// of collections. Month boundaries are taken in UTC.
func (s *DashboardService) GetDashboardStats(ctx context.Context, days int) (*DashboardStats, error) {
	if days < 1 {
		days = defaultDashboardDays
	}
	if days > maxDashboardDays {
		days = maxDashboardDays
	}

	now := s.now().UTC()
	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	startOfMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	startOfLastMonth := startOfMonth.AddDate(0, -1, 0)
	tomorrow := startOfDay.AddDate(0, 0, 1)

	stats := &DashboardStats{}
	var err error

	if stats.TotalClients, err = s.analyticsRepo.CountClients(ctx); err != nil {
		return nil, err
	}

	counts, err := s.analyticsRepo.CountOrdersByStatus(ctx)
	if err != nil {
		return nil, err
	}
	stats.OrdersByStatus = make([]OrderStatusCount, 0, len(counts))
	for _, c := range counts {
		stats.OrdersByStatus = append(stats.OrdersByStatus, OrderStatusCount{Kind: c.OrderKind, Status: c.Status, Count: c.Count})
		if !c.Status.IsTerminal() && c.Status != enum.OrderStatusCompleted {
			stats.OpenOrders += c.Count
		}
	}

	if stats.TotalOutstanding, err = s.analyticsRepo.GetOutstanding(ctx); err != nil {
		return nil, err
	}
	if stats.CollectedToday, err = s.analyticsRepo.GetCollected(ctx, startOfDay, tomorrow); err != nil {
		return nil, err
	}
	if stats.CollectedThisMonth, err = s.analyticsRepo.GetCollected(ctx, startOfMonth, tomorrow); err != nil {
		return nil, err
	}
	if stats.CollectedLastMonth, err = s.analyticsRepo.GetCollected(ctx, startOfLastMonth, startOfMonth); err != nil {
		return nil, err
	}
	stats.CollectionGrowth = growth(stats.CollectedThisMonth, stats.CollectedLastMonth)

	daily, err := s.analyticsRepo.GetDailyCollections(ctx, now, days)
	if err != nil {
		return nil, err
	}
	stats.DailyCollections = make([]DailyCollectionPoint, 0, len(daily))
	for _, d := range daily {
		stats.DailyCollections = append(stats.DailyCollections, DailyCollectionPoint{
			Date:      d.Date.Format("2006-01-02"),
			Collected: d.Collected,
			Receipts:  d.Receipts,
		})
	}

	methods, err := s.analyticsRepo.GetCollectionsByMethod(ctx, startOfMonth)
	if err != nil {
		return nil, err
	}
	stats.CollectionsByMethod = make([]MethodCollection, 0, len(methods))
	for _, m := range methods {
		stats.CollectionsByMethod = append(stats.CollectionsByMethod, MethodCollection{
			Method:   m.PaymentMethod,
			Amount:   m.Total,
			Receipts: m.ReceiptCount,
		})
	}

	debtors, err := s.analyticsRepo.GetTopDebtors(ctx, topDebtorsLimit)
	if err != nil {
		return nil, err
	}
	stats.TopDebtors = make([]Debtor, 0, len(debtors))
	for _, d := range debtors {
		stats.TopDebtors = append(stats.TopDebtors, Debtor(d))
	}

	return stats, nil
}

// growth returns the percentage change from previous to current, rounded
// to one decimal place
func growth(current, previous decimal.Decimal) float64 {
	if previous.IsZero() {
		if current.IsZero() {
			return 0
		}
		return 100
	}
	pct, _ := current.Sub(previous).Div(previous).Mul(decimal.NewFromInt(100)).Round(1).Float64()
	return pct
}
