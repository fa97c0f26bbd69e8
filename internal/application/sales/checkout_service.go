package sales

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/retailpos/backend/internal/domain/catalog"
	"github.com/retailpos/backend/internal/domain/drawer"
	"github.com/retailpos/backend/internal/domain/partner"
	"github.com/retailpos/backend/internal/domain/sales"
	"github.com/retailpos/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// DefaultCheckoutKeyTTL is how long a checkout key stays claimed
const DefaultCheckoutKeyTTL = 10 * time.Minute

// CheckoutService turns the cashier's cart into a sale
type CheckoutService struct {
	txScope        TransactionScope
	sessionRepo    drawer.SessionRepository
	customerRepo   partner.CustomerRepository
	cartStore      sales.CartStore
	idempotency    shared.IdempotencyStore
	eventPublisher shared.EventPublisher
	keyTTL         time.Duration
	logger         *zap.Logger
	now            func() time.Time
}

// NewCheckoutService creates a new CheckoutService. keyTTL bounds how long a
// completed checkout blocks a resubmission with the same key.
func NewCheckoutService(
	txScope TransactionScope,
	sessionRepo drawer.SessionRepository,
	customerRepo partner.CustomerRepository,
	cartStore sales.CartStore,
	idempotency shared.IdempotencyStore,
	keyTTL time.Duration,
	logger *zap.Logger,
) *CheckoutService {
	if keyTTL <= 0 {
		keyTTL = DefaultCheckoutKeyTTL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CheckoutService{
		txScope:      txScope,
		sessionRepo:  sessionRepo,
		customerRepo: customerRepo,
		cartStore:    cartStore,
		idempotency:  idempotency,
		keyTTL:       keyTTL,
		logger:       logger,
		now:          time.Now,
	}
}

// SetEventPublisher sets the event publisher for sale events
func (s *CheckoutService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// CheckoutKey builds the double-submit key. Without a client key the cart
// version and its last change identify the submission.
func CheckoutKey(userID uuid.UUID, idempotencyKey string, cart *sales.Cart) string {
	if key := strings.TrimSpace(idempotencyKey); key != "" {
		return fmt.Sprintf("checkout:%s:%s", userID, key)
	}
	return fmt.Sprintf("checkout:%s:v%d-%d", userID, cart.Version, cart.UpdatedAt.UnixNano())
}

// Checkout registers the cart as a sale. Stock is checked and decremented
// under row locks in the same transaction that writes the sale.
func (s *CheckoutService) Checkout(ctx context.Context, userID uuid.UUID, req CheckoutRequest, idempotencyKey string) (*CheckoutResponse, error) {
	method, err := sales.ParsePaymentMethod(req.PaymentMethod)
	if err != nil {
		return nil, err
	}

	session, err := s.sessionRepo.FindActiveByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	cart, err := s.cartStore.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if cart.IsEmpty() {
		return nil, sales.ErrCartEmpty
	}

	if req.CustomerID != nil {
		if _, err := s.customerRepo.FindByID(ctx, *req.CustomerID); err != nil {
			return nil, err
		}
	}

	key := CheckoutKey(userID, idempotencyKey, cart)
	claimed, err := s.idempotency.MarkProcessed(ctx, key, s.keyTTL)
	if err != nil {
		return nil, fmt.Errorf("claim checkout key: %w", err)
	}
	if !claimed {
		s.logger.Warn("Duplicate checkout rejected",
			zap.String("user_id", userID.String()),
			zap.String("key", key))
		return nil, sales.ErrDuplicateCheckout
	}

	var sale *sales.Sale
	err = s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		var txErr error
		sale, txErr = s.registerSale(ctx, repos, cart, userID, session.ID, req.CustomerID, method)
		return txErr
	})
	if err != nil {
		if relErr := s.idempotency.Release(context.WithoutCancel(ctx), key); relErr != nil {
			s.logger.Error("Failed to release checkout key", zap.String("key", key), zap.Error(relErr))
		}
		return nil, err
	}

	if err := s.cartStore.Delete(ctx, userID); err != nil {
		s.logger.Error("Failed to clear cart after checkout",
			zap.String("user_id", userID.String()),
			zap.Error(err))
	}

	s.publish(ctx, sale)

	s.logger.Info("Sale registered",
		zap.String("sale_id", sale.ID.String()),
		zap.String("sale_number", sale.SaleNumber),
		zap.String("payment_method", sale.PaymentMethod.String()),
		zap.String("total", sale.TotalAmount.StringFixed(2)))

	return &CheckoutResponse{
		Sale:    ToSaleResponse(sale),
		Message: fmt.Sprintf("Sale #%s registered - Total: %s", sale.SaleNumber, sale.TotalAmount.StringFixed(2)),
	}, nil
}

func (s *CheckoutService) registerSale(
	ctx context.Context,
	repos TransactionalRepositories,
	cart *sales.Cart,
	userID, sessionID uuid.UUID,
	customerID *uuid.UUID,
	method sales.PaymentMethod,
) (*sales.Sale, error) {
	// the session lock is taken before product locks, same order as returns
	if _, err := repos.SessionLocker().LockActive(ctx, sessionID); err != nil {
		return nil, err
	}

	locked, err := repos.ProductRepo().FindByIDsForUpdate(ctx, cart.ProductIDs())
	if err != nil {
		return nil, err
	}
	products := make(map[uuid.UUID]*catalog.Product, len(locked))
	for i := range locked {
		products[locked[i].ID] = &locked[i]
	}

	// all lines are checked before any stock moves
	for _, line := range cart.Lines {
		p, ok := products[line.ProductID]
		if !ok {
			return nil, shared.NewDomainError(catalog.ErrProductNotFound.Code,
				fmt.Sprintf("%s is no longer available", line.Name))
		}
		if !p.CanSell(line.Quantity) {
			return nil, catalog.NewInsufficientStockError(p.Name, p.Stock, line.Quantity)
		}
	}

	sid := sessionID
	sale, err := sales.NewSale(userID, &sid, customerID, method, s.now())
	if err != nil {
		return nil, err
	}
	for _, line := range cart.Lines {
		p := products[line.ProductID]
		if _, err := sale.AddItem(p.ID, p.Name, p.SKU, line.Quantity, p.Price); err != nil {
			return nil, err
		}
		if err := p.DecreaseStock(line.Quantity); err != nil {
			return nil, err
		}
		if err := repos.ProductRepo().SaveStock(ctx, p); err != nil {
			return nil, err
		}
	}
	if err := sale.Complete(); err != nil {
		return nil, err
	}
	if err := repos.SaleRepo().Save(ctx, sale); err != nil {
		return nil, err
	}
	return sale, nil
}

func (s *CheckoutService) publish(ctx context.Context, sale *sales.Sale) {
	if s.eventPublisher == nil {
		sale.ClearDomainEvents()
		return
	}
	for _, event := range sale.GetDomainEvents() {
		if err := s.eventPublisher.Publish(ctx, event); err != nil {
			s.logger.Error("Failed to publish sale event",
				zap.String("event_type", event.EventType()),
				zap.Error(err))
		}
	}
	sale.ClearDomainEvents()
}
