package event

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/retailpos/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// DefaultDeliveryTTL is how long a handled event id is remembered
const DefaultDeliveryTTL = 24 * time.Hour

// DeliveryStats is a snapshot of an IdempotentHandler's counters
type DeliveryStats struct {
	Processed int64 `json:"processed"`
	Duplicate int64 `json:"duplicate"`
	Failed    int64 `json:"failed"`
}

// IdempotentHandler makes a handler safe against repeated delivery of the
// same event by claiming "<prefix>:<event id>" in an IdempotencyStore.
type IdempotentHandler struct {
	handler shared.EventHandler
	store   shared.IdempotencyStore
	prefix  string
	ttl     time.Duration
	logger  *zap.Logger

	processed atomic.Int64
	duplicate atomic.Int64
	failed    atomic.Int64
}

// NewIdempotentHandler wraps handler. prefix namespaces the claims so two
// handlers can both see the same event.
func NewIdempotentHandler(handler shared.EventHandler, store shared.IdempotencyStore, prefix string, ttl time.Duration, logger *zap.Logger) *IdempotentHandler {
	if ttl <= 0 {
		ttl = DefaultDeliveryTTL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &IdempotentHandler{
		handler: handler,
		store:   store,
		prefix:  prefix,
		ttl:     ttl,
		logger:  logger,
	}
}

// EventTypes returns the wrapped handler's event types
func (h *IdempotentHandler) EventTypes() []string {
	return h.handler.EventTypes()
}

// Handle runs the wrapped handler once per event id. A failed run releases
// the claim so a redelivery is processed again.
func (h *IdempotentHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	key := h.prefix + ":" + event.EventID().String()

	claimed, err := h.store.MarkProcessed(ctx, key, h.ttl)
	if err != nil {
		// store outage: handle anyway
		h.logger.Warn("Idempotency check failed",
			zap.String("event_id", event.EventID().String()),
			zap.String("event_type", event.EventType()),
			zap.Error(err),
		)
	} else if !claimed {
		h.duplicate.Add(1)
		h.logger.Debug("Duplicate event skipped",
			zap.String("event_id", event.EventID().String()),
			zap.String("event_type", event.EventType()),
		)
		return nil
	}

	if err := h.handler.Handle(ctx, event); err != nil {
		h.failed.Add(1)
		if releaseErr := h.store.Release(context.WithoutCancel(ctx), key); releaseErr != nil {
			h.logger.Warn("Failed to release event claim", zap.String("key", key), zap.Error(releaseErr))
		}
		return err
	}

	h.processed.Add(1)
	return nil
}

// Stats returns the handler's delivery counters
func (h *IdempotentHandler) Stats() DeliveryStats {
	return DeliveryStats{
		Processed: h.processed.Load(),
		Duplicate: h.duplicate.Load(),
		Failed:    h.failed.Load(),
	}
}

var _ shared.EventHandler = (*IdempotentHandler)(nil)
