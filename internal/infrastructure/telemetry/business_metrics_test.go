package telemetry

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/retailpos/backend/internal/domain/drawer"
	"github.com/retailpos/backend/internal/domain/sales"
	"github.com/retailpos/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.uber.org/zap"
)

func newTestMetrics(t *testing.T, state StoreStateFunc) (*POSMetrics, *sdkmetric.ManualReader) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })

	m, err := NewPOSMetrics(provider.Meter("pos-test"), state, zap.NewNop())
	require.NoError(t, err)
	return m, reader
}

func collect(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Aggregation {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	out := make(map[string]metricdata.Aggregation)
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			out[m.Name] = m.Data
		}
	}
	return out
}

func intSum(t *testing.T, data metricdata.Aggregation, key attribute.Key, value string) int64 {
	t.Helper()
	sum, ok := data.(metricdata.Sum[int64])
	require.True(t, ok)
	for _, dp := range sum.DataPoints {
		if v, ok := dp.Attributes.Value(key); ok && v.AsString() == value {
			return dp.Value
		}
	}
	return 0
}

func floatSum(t *testing.T, data metricdata.Aggregation, key attribute.Key, value string) float64 {
	t.Helper()
	sum, ok := data.(metricdata.Sum[float64])
	require.True(t, ok)
	for _, dp := range sum.DataPoints {
		if v, ok := dp.Attributes.Value(key); ok && v.AsString() == value {
			return dp.Value
		}
	}
	return 0
}

func saleEvent(method sales.PaymentMethod, total string, quantities ...int) *sales.SaleCompletedEvent {
	items := make([]sales.SaleItemInfo, len(quantities))
	for i, q := range quantities {
		items[i] = sales.SaleItemInfo{ProductID: uuid.New(), Quantity: q}
	}
	id := uuid.New()
	return &sales.SaleCompletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(sales.EventTypeSaleCompleted, sales.AggregateTypeSale, id),
		SaleID:          id,
		PaymentMethod:   method,
		TotalAmount:     decimal.RequireFromString(total),
		Items:           items,
	}
}

func TestNewPOSMetrics_NilMeter(t *testing.T) {
	_, err := NewPOSMetrics(nil, nil, nil)
	assert.ErrorIs(t, err, ErrMeterNil)
}

func TestPOSMetrics_Sales(t *testing.T) {
	m, reader := newTestMetrics(t, nil)
	ctx := context.Background()

	require.NoError(t, m.Handle(ctx, saleEvent(sales.PaymentCash, "12.50", 2, 1)))
	require.NoError(t, m.Handle(ctx, saleEvent(sales.PaymentCash, "7.50", 1)))
	require.NoError(t, m.Handle(ctx, saleEvent(sales.PaymentCard, "40.00", 4)))

	data := collect(t, reader)
	assert.Equal(t, int64(2), intSum(t, data["pos_sales_total"], AttrPaymentMethod, "cash"))
	assert.Equal(t, int64(1), intSum(t, data["pos_sales_total"], AttrPaymentMethod, "card"))
	assert.InDelta(t, 20.0, floatSum(t, data["pos_sales_amount"], AttrPaymentMethod, "cash"), 0.001)
	assert.InDelta(t, 40.0, floatSum(t, data["pos_sales_amount"], AttrPaymentMethod, "card"), 0.001)

	hist, ok := data["pos_sale_items"].(metricdata.Histogram[int64])
	require.True(t, ok)
	var count uint64
	var units int64
	for _, dp := range hist.DataPoints {
		count += dp.Count
		units += dp.Sum
	}
	assert.Equal(t, uint64(3), count)
	assert.Equal(t, int64(8), units)
}

func TestPOSMetrics_ReturnsAndDrawers(t *testing.T) {
	m, reader := newTestMetrics(t, nil)
	ctx := context.Background()

	returnID := uuid.New()
	require.NoError(t, m.Handle(ctx, &sales.SaleReturnedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(sales.EventTypeSaleReturned, sales.AggregateTypeSaleReturn, returnID),
		ReturnID:        returnID,
		RefundMethod:    sales.PaymentCard,
		TotalRefund:     decimal.RequireFromString("9.99"),
	}))

	sessionID := uuid.New()
	require.NoError(t, m.Handle(ctx, &drawer.SessionClosedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(drawer.EventTypeSessionClosed, drawer.AggregateTypeSession, sessionID),
		SessionID:       sessionID,
		Difference:      decimal.RequireFromString("-3.25"),
		Status:          drawer.StatusShortage,
	}))

	data := collect(t, reader)
	assert.Equal(t, int64(1), intSum(t, data["pos_returns_total"], AttrRefundMethod, "card"))
	assert.InDelta(t, 9.99, floatSum(t, data["pos_refund_amount"], AttrRefundMethod, "card"), 0.001)
	assert.Equal(t, int64(1), intSum(t, data["pos_drawer_closed_total"], AttrDrawerStatus, "shortage"))

	hist, ok := data["pos_drawer_discrepancy"].(metricdata.Histogram[float64])
	require.True(t, ok)
	require.Len(t, hist.DataPoints, 1)
	assert.InDelta(t, 3.25, hist.DataPoints[0].Sum, 0.001)
}

func TestPOSMetrics_StoreStateGauges(t *testing.T) {
	calls := 0
	_, reader := newTestMetrics(t, func(ctx context.Context) (StoreState, error) {
		calls++
		return StoreState{LowStock: 3, OutOfStock: 1, ActiveSessions: 2}, nil
	})

	data := collect(t, reader)
	assert.Equal(t, 1, calls)

	gauge := func(name string) int64 {
		g, ok := data[name].(metricdata.Gauge[int64])
		require.True(t, ok, name)
		require.Len(t, g.DataPoints, 1)
		return g.DataPoints[0].Value
	}
	assert.Equal(t, int64(3), gauge("pos_products_low_stock"))
	assert.Equal(t, int64(1), gauge("pos_products_out_of_stock"))
	assert.Equal(t, int64(2), gauge("pos_drawer_sessions_active"))
}

func TestPOSMetrics_StoreStateErrorIsSwallowed(t *testing.T) {
	m, reader := newTestMetrics(t, func(ctx context.Context) (StoreState, error) {
		return StoreState{}, errors.New("db down")
	})

	data := collect(t, reader)
	_, found := data["pos_products_low_stock"]
	assert.False(t, found)
	assert.NoError(t, m.Close())
}

func TestPOSMetrics_EventTypes(t *testing.T) {
	m, _ := newTestMetrics(t, nil)
	assert.ElementsMatch(t, []string{"SaleCompleted", "SaleReturned", "SessionClosed"}, m.EventTypes())
}
