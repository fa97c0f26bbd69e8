package catalog

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/retailpos/backend/internal/domain/catalog"
	"github.com/retailpos/backend/internal/domain/sales"
	"github.com/retailpos/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// StockAlert describes a product that a sale pushed below the low-stock threshold
type StockAlert struct {
	ProductID  uuid.UUID           `json:"product_id"`
	Name       string              `json:"name"`
	SKU        string              `json:"sku"`
	Stock      int                 `json:"stock"`
	Threshold  int                 `json:"threshold"`
	Status     catalog.StockStatus `json:"status"`
	SaleNumber string              `json:"sale_number"`
}

// StockAlertNotifier delivers stock alerts to staff
type StockAlertNotifier interface {
	SendAlert(ctx context.Context, alert StockAlert) error
}

// StockAlertHandler re-reads the products of every completed sale and
// raises an alert for each one now low or out of stock.
type StockAlertHandler struct {
	productRepo catalog.ProductRepository
	notifier    StockAlertNotifier
	logger      *zap.Logger
}

// NewStockAlertHandler creates a StockAlertHandler
func NewStockAlertHandler(productRepo catalog.ProductRepository, notifier StockAlertNotifier, logger *zap.Logger) *StockAlertHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if notifier == nil {
		notifier = NewLoggingStockAlertNotifier(logger)
	}
	return &StockAlertHandler{productRepo: productRepo, notifier: notifier, logger: logger}
}

// EventTypes returns the event types this handler is interested in
func (h *StockAlertHandler) EventTypes() []string {
	return []string{sales.EventTypeSaleCompleted}
}

// Handle processes a SaleCompletedEvent
func (h *StockAlertHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	sold, ok := event.(*sales.SaleCompletedEvent)
	if !ok {
		return fmt.Errorf("unexpected event type: expected %s, got %s", sales.EventTypeSaleCompleted, event.EventType())
	}

	ids := make([]uuid.UUID, 0, len(sold.Items))
	for _, item := range sold.Items {
		ids = append(ids, item.ProductID)
	}
	if len(ids) == 0 {
		return nil
	}

	products, err := h.productRepo.FindByIDs(ctx, ids)
	if err != nil {
		return fmt.Errorf("load sold products: %w", err)
	}

	for _, p := range products {
		if p.Stock >= catalog.LowStockThreshold {
			continue
		}
		alert := StockAlert{
			ProductID:  p.ID,
			Name:       p.Name,
			SKU:        p.SKU,
			Stock:      p.Stock,
			Threshold:  catalog.LowStockThreshold,
			Status:     p.StockStatus(),
			SaleNumber: sold.SaleNumber,
		}
		if err := h.notifier.SendAlert(ctx, alert); err != nil {
			h.logger.Error("Failed to send stock alert",
				zap.String("product_id", p.ID.String()),
				zap.Error(err),
			)
		}
	}
	return nil
}

var _ shared.EventHandler = (*StockAlertHandler)(nil)

// LoggingStockAlertNotifier writes alerts to the log
type LoggingStockAlertNotifier struct {
	logger *zap.Logger
}

// NewLoggingStockAlertNotifier creates a new logging notifier
func NewLoggingStockAlertNotifier(logger *zap.Logger) *LoggingStockAlertNotifier {
	return &LoggingStockAlertNotifier{logger: logger}
}

// SendAlert logs the stock alert
func (n *LoggingStockAlertNotifier) SendAlert(ctx context.Context, alert StockAlert) error {
	n.logger.Warn("Stock alert",
		zap.String("status", string(alert.Status)),
		zap.String("product_id", alert.ProductID.String()),
		zap.String("sku", alert.SKU),
		zap.Int("stock", alert.Stock),
		zap.String("sale_number", alert.SaleNumber),
	)
	return nil
}
