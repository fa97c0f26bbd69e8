package telemetry

import (
	"context"
	"errors"
	"fmt"

	"github.com/retailpos/backend/internal/domain/drawer"
	"github.com/retailpos/backend/internal/domain/sales"
	"github.com/retailpos/backend/internal/domain/shared"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// ErrMeterNil is returned when POSMetrics is built without a meter
var ErrMeterNil = errors.New("telemetry: meter is nil")

// Attribute keys used on POS metrics
var (
	AttrPaymentMethod = attribute.Key("payment_method")
	AttrRefundMethod  = attribute.Key("refund_method")
	AttrDrawerStatus  = attribute.Key("drawer_status")
)

// StoreState is sampled on every collection for the stock and drawer gauges
type StoreState struct {
	LowStock       int64
	OutOfStock     int64
	ActiveSessions int64
}

// StoreStateFunc reads the current StoreState
type StoreStateFunc func(ctx context.Context) (StoreState, error)

// POSMetrics records sales, returns and drawer reconciliation figures. It
// subscribes to the domain events so the services stay unaware of it.
type POSMetrics struct {
	logger *zap.Logger

	salesTotal     metric.Int64Counter
	salesAmount    metric.Float64Counter
	itemsPerSale   metric.Int64Histogram
	returnsTotal   metric.Int64Counter
	refundAmount   metric.Float64Counter
	drawersClosed  metric.Int64Counter
	drawerVariance metric.Float64Histogram

	registration metric.Registration
}

// NewPOSMetrics creates the instruments on meter. When state is non-nil the
// stock and drawer gauges are observed through it.
func NewPOSMetrics(meter metric.Meter, state StoreStateFunc, logger *zap.Logger) (*POSMetrics, error) {
	if meter == nil {
		return nil, ErrMeterNil
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	m := &POSMetrics{logger: logger}

	var err error
	if m.salesTotal, err = meter.Int64Counter("pos_sales_total",
		metric.WithDescription("Completed sales"), metric.WithUnit("{sales}")); err != nil {
		return nil, fmt.Errorf("pos_sales_total: %w", err)
	}
	if m.salesAmount, err = meter.Float64Counter("pos_sales_amount",
		metric.WithDescription("Revenue from completed sales"), metric.WithUnit("{currency}")); err != nil {
		return nil, fmt.Errorf("pos_sales_amount: %w", err)
	}
	if m.itemsPerSale, err = meter.Int64Histogram("pos_sale_items",
		metric.WithDescription("Units sold per sale"), metric.WithUnit("{units}"),
		metric.WithExplicitBucketBoundaries(1, 2, 3, 5, 10, 20, 50)); err != nil {
		return nil, fmt.Errorf("pos_sale_items: %w", err)
	}
	if m.returnsTotal, err = meter.Int64Counter("pos_returns_total",
		metric.WithDescription("Processed returns"), metric.WithUnit("{returns}")); err != nil {
		return nil, fmt.Errorf("pos_returns_total: %w", err)
	}
	if m.refundAmount, err = meter.Float64Counter("pos_refund_amount",
		metric.WithDescription("Amount refunded on returns"), metric.WithUnit("{currency}")); err != nil {
		return nil, fmt.Errorf("pos_refund_amount: %w", err)
	}
	if m.drawersClosed, err = meter.Int64Counter("pos_drawer_closed_total",
		metric.WithDescription("Closed drawer sessions by reconciliation status"), metric.WithUnit("{sessions}")); err != nil {
		return nil, fmt.Errorf("pos_drawer_closed_total: %w", err)
	}
	if m.drawerVariance, err = meter.Float64Histogram("pos_drawer_discrepancy",
		metric.WithDescription("Absolute difference between counted and expected cash"), metric.WithUnit("{currency}"),
		metric.WithExplicitBucketBoundaries(0, 1, 5, 10, 50, 100, 500)); err != nil {
		return nil, fmt.Errorf("pos_drawer_discrepancy: %w", err)
	}

	if state != nil {
		if err := m.observeStoreState(meter, state); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *POSMetrics) observeStoreState(meter metric.Meter, state StoreStateFunc) error {
	lowStock, err := meter.Int64ObservableGauge("pos_products_low_stock",
		metric.WithDescription("Products below the low-stock threshold"), metric.WithUnit("{products}"))
	if err != nil {
		return fmt.Errorf("pos_products_low_stock: %w", err)
	}
	outOfStock, err := meter.Int64ObservableGauge("pos_products_out_of_stock",
		metric.WithDescription("Products with no stock"), metric.WithUnit("{products}"))
	if err != nil {
		return fmt.Errorf("pos_products_out_of_stock: %w", err)
	}
	active, err := meter.Int64ObservableGauge("pos_drawer_sessions_active",
		metric.WithDescription("Open drawer sessions"), metric.WithUnit("{sessions}"))
	if err != nil {
		return fmt.Errorf("pos_drawer_sessions_active: %w", err)
	}

	m.registration, err = meter.RegisterCallback(func(ctx context.Context, o metric.Observer) error {
		s, err := state(ctx)
		if err != nil {
			m.logger.Warn("Failed to sample store state", zap.Error(err))
			return nil
		}
		o.ObserveInt64(lowStock, s.LowStock)
		o.ObserveInt64(outOfStock, s.OutOfStock)
		o.ObserveInt64(active, s.ActiveSessions)
		return nil
	}, lowStock, outOfStock, active)
	return err
}

// EventTypes returns the events that feed the counters
func (m *POSMetrics) EventTypes() []string {
	return []string{
		sales.EventTypeSaleCompleted,
		sales.EventTypeSaleReturned,
		drawer.EventTypeSessionClosed,
	}
}

// Handle records a domain event
func (m *POSMetrics) Handle(ctx context.Context, event shared.DomainEvent) error {
	switch e := event.(type) {
	case *sales.SaleCompletedEvent:
		m.RecordSale(ctx, e)
	case *sales.SaleReturnedEvent:
		m.RecordReturn(ctx, e)
	case *drawer.SessionClosedEvent:
		m.RecordDrawerClosed(ctx, e)
	}
	return nil
}

// RecordSale counts a sale, its revenue and its units
func (m *POSMetrics) RecordSale(ctx context.Context, e *sales.SaleCompletedEvent) {
	attrs := metric.WithAttributes(AttrPaymentMethod.String(string(e.PaymentMethod)))
	m.salesTotal.Add(ctx, 1, attrs)
	m.salesAmount.Add(ctx, e.TotalAmount.InexactFloat64(), attrs)

	units := 0
	for _, item := range e.Items {
		units += item.Quantity
	}
	m.itemsPerSale.Record(ctx, int64(units), attrs)
}

// RecordReturn counts a return and its refund
func (m *POSMetrics) RecordReturn(ctx context.Context, e *sales.SaleReturnedEvent) {
	attrs := metric.WithAttributes(AttrRefundMethod.String(string(e.RefundMethod)))
	m.returnsTotal.Add(ctx, 1, attrs)
	m.refundAmount.Add(ctx, e.TotalRefund.InexactFloat64(), attrs)
}

// RecordDrawerClosed counts a closed drawer and records its discrepancy
func (m *POSMetrics) RecordDrawerClosed(ctx context.Context, e *drawer.SessionClosedEvent) {
	attrs := metric.WithAttributes(AttrDrawerStatus.String(string(e.Status)))
	m.drawersClosed.Add(ctx, 1, attrs)
	m.drawerVariance.Record(ctx, e.Difference.Abs().InexactFloat64(), attrs)
}

// Close stops observing the store state gauges
func (m *POSMetrics) Close() error {
	if m.registration == nil {
		return nil
	}
	return m.registration.Unregister()
}

var _ shared.EventHandler = (*POSMetrics)(nil)
