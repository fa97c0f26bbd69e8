package persistence

import (
	"context"
	"time"

	"github.com/retailpos/backend/internal/domain/report"
	"github.com/retailpos/backend/internal/domain/sales"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GormReportRepository answers dashboard and sales report queries with
// aggregate SQL over sales, sale_items and cash_drawer_sessions
type GormReportRepository struct {
	db *gorm.DB
}

// NewGormReportRepository creates a new GormReportRepository
func NewGormReportRepository(db *gorm.DB) *GormReportRepository {
	return &GormReportRepository{db: db}
}

const saleRowSelect = `s.id AS sale_id, s.sale_number AS sale_number, s.created_at AS created_at,
	COALESCE(NULLIF(u.full_name, ''), u.username, '') AS cashier_name,
	COALESCE(c.name, '') AS customer_name,
	s.payment_method AS payment_method,
	(SELECT COALESCE(SUM(si.quantity), 0) FROM sale_items si WHERE si.sale_id = s.id) AS item_count,
	s.total_amount AS total_amount`

// SalesTotals sums sales with from <= created_at < to, split by payment method
func (r *GormReportRepository) SalesTotals(ctx context.Context, from, to time.Time) (report.SalesTotals, error) {
	var row struct {
		Total     decimal.Decimal
		CashTotal decimal.Decimal
		CardTotal decimal.Decimal
		Count     int64
	}
	err := r.db.WithContext(ctx).
		Table("sales").
		Select(`COALESCE(SUM(total_amount), 0) AS total,
			COALESCE(SUM(CASE WHEN payment_method = ? THEN total_amount ELSE 0 END), 0) AS cash_total,
			COALESCE(SUM(CASE WHEN payment_method = ? THEN total_amount ELSE 0 END), 0) AS card_total,
			COUNT(*) AS count`, sales.PaymentCash, sales.PaymentCard).
		Where("created_at >= ? AND created_at < ?", from, to).
		Scan(&row).Error
	if err != nil {
		return report.SalesTotals{}, err
	}
	return report.SalesTotals{
		Total:     row.Total,
		CashTotal: row.CashTotal,
		CardTotal: row.CardTotal,
		Count:     row.Count,
	}, nil
}

// TopProducts ranks products by units sold over all time
func (r *GormReportRepository) TopProducts(ctx context.Context, limit int) ([]report.TopProduct, error) {
	var rows []report.TopProduct
	err := r.db.WithContext(ctx).
		Table("sale_items").
		Select(`product_id, MAX(product_name) AS product_name, MAX(sku) AS sku,
			SUM(quantity) AS units_sold, SUM(quantity * unit_price) AS revenue`).
		Group("product_id").
		Order("units_sold DESC, revenue DESC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for i := range rows {
		rows[i].Rank = i + 1
	}
	return rows, nil
}

// SessionsStartedBetween lists drawer sessions with their cashier
func (r *GormReportRepository) SessionsStartedBetween(ctx context.Context, from, to time.Time) ([]report.SessionOverview, error) {
	var rows []report.SessionOverview
	err := r.db.WithContext(ctx).
		Table("cash_drawer_sessions AS ds").
		Select(`ds.id AS session_id, ds.user_id AS user_id, u.username AS username,
			COALESCE(u.full_name, '') AS full_name, ds.start_time AS start_time, ds.end_time AS end_time,
			ds.starting_balance AS starting_balance, ds.ending_balance AS ending_balance`).
		Joins("LEFT JOIN users u ON u.id = ds.user_id").
		Where("ds.start_time >= ? AND ds.start_time < ?", from, to).
		Order("ds.start_time DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// RecentSales returns the latest sales
func (r *GormReportRepository) RecentSales(ctx context.Context, limit int) ([]report.SaleRow, error) {
	var rows []report.SaleRow
	err := r.saleRows(ctx).
		Order("s.created_at DESC").
		Limit(limit).
		Scan(&rows).Error
	return rows, err
}

// SalesBetween returns sales with from <= created_at < to, newest first
func (r *GormReportRepository) SalesBetween(ctx context.Context, from, to time.Time) ([]report.SaleRow, error) {
	var rows []report.SaleRow
	err := r.saleRows(ctx).
		Where("s.created_at >= ? AND s.created_at < ?", from, to).
		Order("s.created_at DESC").
		Scan(&rows).Error
	return rows, err
}

func (r *GormReportRepository) saleRows(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Table("sales AS s").
		Select(saleRowSelect).
		Joins("LEFT JOIN users u ON u.id = s.cashier_id").
		Joins("LEFT JOIN customers c ON c.id = s.customer_id")
}

// Ensure GormReportRepository implements ReportRepository
var _ report.ReportRepository = (*GormReportRepository)(nil)
