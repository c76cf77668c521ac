package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/sangkips/studio-ledger/internal/domain/entity"
	"github.com/sangkips/studio-ledger/internal/domain/enum"
	domainRepo "github.com/sangkips/studio-ledger/internal/domain/repository"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type analyticsRepository struct {
	db *gorm.DB
}

// NewAnalyticsRepository creates a new analytics repository
func NewAnalyticsRepository(db *gorm.DB) domainRepo.AnalyticsRepository {
	return &analyticsRepository{db: db}
}

// allOrders selects the billing columns of both order variants
func allOrders() string {
	cols := "client_id, total_amount, paid_amount, status"
	return fmt.Sprintf("SELECT '%s' AS order_kind, %s FROM %s UNION ALL SELECT '%s' AS order_kind, %s FROM %s",
		enum.OrderKindPrintJob, cols, entity.PrintJob{}.TableName(),
		enum.OrderKindPhotoSession, cols, entity.PhotoSession{}.TableName())
}

func (r *analyticsRepository) CountClients(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entity.Client{}).Count(&count).Error
	return count, translateError(err)
}

func (r *analyticsRepository) CountOrdersByStatus(ctx context.Context) ([]domainRepo.StatusCountResult, error) {
	var results []domainRepo.StatusCountResult

	err := r.db.WithContext(ctx).Raw(`
		SELECT o.order_kind, o.status, COUNT(*) AS count
		FROM (` + allOrders() + `) o
		GROUP BY o.order_kind, o.status
		ORDER BY o.order_kind, o.status
	`).Scan(&results).Error

	return results, translateError(err)
}

func (r *analyticsRepository) GetOutstanding(ctx context.Context) (decimal.Decimal, error) {
	var sum decimal.NullDecimal
	err := r.db.WithContext(ctx).Raw(`
		SELECT SUM(o.total_amount - o.paid_amount)
		FROM (`+allOrders()+`) o
		WHERE o.status <> ?
	`, enum.OrderStatusCancelled).Row().Scan(&sum)
	if err != nil {
		return decimal.Zero, translateError(err)
	}
	return sum.Decimal, nil
}

func (r *analyticsRepository) GetCollected(ctx context.Context, start, end time.Time) (decimal.Decimal, error) {
	var sum decimal.NullDecimal
	err := r.db.WithContext(ctx).
		Model(&entity.PaymentReceipt{}).
		Select("SUM(paid_amount)").
		Where("issued_at >= ? AND issued_at < ?", start, end).
		Row().Scan(&sum)
	if err != nil {
		return decimal.Zero, translateError(err)
	}
	return sum.Decimal, nil
}

func (r *analyticsRepository) GetDailyCollections(ctx context.Context, now time.Time, days int) ([]domainRepo.DailyCollectionResult, error) {
	results := make([]domainRepo.DailyCollectionResult, 0, days)

	for i := days - 1; i >= 0; i-- {
		date := now.AddDate(0, 0, -i)
		startOfDay := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
		endOfDay := startOfDay.AddDate(0, 0, 1)

		var (
			collected decimal.NullDecimal
			receipts  int64
		)
		err := r.db.WithContext(ctx).
			Model(&entity.PaymentReceipt{}).
			Select("SUM(paid_amount), COUNT(*)").
			Where("issued_at >= ? AND issued_at < ?", startOfDay.UTC(), endOfDay.UTC()).
			Row().Scan(&collected, &receipts)
		if err != nil {
			return nil, translateError(err)
		}

		results = append(results, domainRepo.DailyCollectionResult{
			Date:      startOfDay,
			Collected: collected.Decimal,
			Receipts:  receipts,
		})
	}

	return results, nil
}

func (r *analyticsRepository) GetCollectionsByMethod(ctx context.Context, start time.Time) ([]domainRepo.MethodCollectionResult, error) {
	var results []domainRepo.MethodCollectionResult

	err := r.db.WithContext(ctx).
		Model(&entity.PaymentReceipt{}).
		Select("payment_method, SUM(paid_amount) AS total, COUNT(*) AS receipt_count").
		Where("issued_at >= ?", start).
		Group("payment_method").
		Order("total DESC").
		Scan(&results).Error

	return results, translateError(err)
}

func (r *analyticsRepository) GetTopDebtors(ctx context.Context, limit int) ([]domainRepo.DebtorResult, error) {
	var results []domainRepo.DebtorResult

	err := r.db.WithContext(ctx).Raw(`
		SELECT
			c.id AS client_id,
			c.name AS client_name,
			SUM(o.total_amount - o.paid_amount) AS remaining,
			COUNT(*) AS order_count
		FROM (`+allOrders()+`) o
		JOIN clients c ON c.id = o.client_id
		WHERE o.status <> ? AND o.paid_amount < o.total_amount
		GROUP BY c.id, c.name
		ORDER BY remaining DESC
		LIMIT ?
	`, enum.OrderStatusCancelled, limit).Scan(&results).Error

	return results, translateError(err)
}
