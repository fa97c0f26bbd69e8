package sales

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/retailpos/backend/internal/domain/catalog"
	"github.com/retailpos/backend/internal/domain/drawer"
	"github.com/retailpos/backend/internal/domain/identity"
	"github.com/retailpos/backend/internal/domain/sales"
	"github.com/retailpos/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// ErrReturnQueryRequired is returned when the return search box is empty
var ErrReturnQueryRequired = shared.NewDomainError("INVALID_QUERY", "Enter a sale number to search")

// ReturnService processes returns against completed sales
type ReturnService struct {
	txScope        TransactionScope
	saleRepo       sales.SaleRepository
	returnRepo     sales.SaleReturnRepository
	sessionRepo    drawer.SessionRepository
	userRepo       identity.UserRepository
	eventPublisher shared.EventPublisher
	location       *time.Location
	logger         *zap.Logger
	now            func() time.Time
}

// NewReturnService creates a new ReturnService
func NewReturnService(
	txScope TransactionScope,
	saleRepo sales.SaleRepository,
	returnRepo sales.SaleReturnRepository,
	sessionRepo drawer.SessionRepository,
	userRepo identity.UserRepository,
	loc *time.Location,
	logger *zap.Logger,
) *ReturnService {
	if loc == nil {
		loc = time.UTC
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReturnService{
		txScope:     txScope,
		saleRepo:    saleRepo,
		returnRepo:  returnRepo,
		sessionRepo: sessionRepo,
		userRepo:    userRepo,
		location:    loc,
		logger:      logger,
		now:         time.Now,
	}
}

// SetEventPublisher sets the event publisher for return events
func (s *ReturnService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SearchSaleForReturn finds a sale by number or ID with its returnable quantities
func (s *ReturnService) SearchSaleForReturn(ctx context.Context, query string) (*ReturnLookupResponse, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrReturnQueryRequired
	}

	var (
		sale *sales.Sale
		err  error
	)
	if id, parseErr := uuid.Parse(query); parseErr == nil {
		sale, err = s.saleRepo.FindByID(ctx, id)
	} else {
		sale, err = s.saleRepo.FindBySaleNumber(ctx, query)
	}
	if err != nil {
		return nil, err
	}

	returned, err := s.returnRepo.ReturnedQuantities(ctx, sale.ID)
	if err != nil {
		return nil, err
	}

	resp := &ReturnLookupResponse{
		Sale:          ToSaleResponse(sale),
		FullyReturned: true,
	}
	for _, line := range sales.ReturnableLines(sale, returned) {
		resp.Lines = append(resp.Lines, ReturnableLineResponse{
			ProductID:   line.Item.ProductID,
			ProductName: line.Item.ProductName,
			SKU:         line.Item.SKU,
			UnitPrice:   line.Item.UnitPrice,
			Sold:        line.Item.Quantity,
			Returned:    line.Returned,
			Returnable:  line.Returnable,
		})
		if line.Returnable > 0 {
			resp.FullyReturned = false
		}
	}
	return resp, nil
}

// ProcessReturn books a return, restores stock and records the refund
func (s *ReturnService) ProcessReturn(ctx context.Context, userID uuid.UUID, req ProcessReturnRequest) (*ProcessReturnResponse, error) {
	var sessionID *uuid.UUID
	session, err := s.sessionRepo.FindActiveByUser(ctx, userID)
	switch {
	case err == nil:
		sessionID = &session.ID
	case errors.Is(err, drawer.ErrNoActiveSession):
	default:
		return nil, err
	}

	lines := make([]sales.ReturnLine, len(req.Items))
	for i, item := range req.Items {
		lines[i] = sales.ReturnLine{ProductID: item.ProductID, Quantity: item.Quantity}
	}

	var ret *sales.SaleReturn
	err = s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		if sessionID != nil {
			if _, err := repos.SessionLocker().LockActive(ctx, *sessionID); err != nil {
				return err
			}
		}

		sale, err := repos.SaleRepo().FindByID(ctx, req.SaleID)
		if err != nil {
			return err
		}

		locked, err := repos.ProductRepo().FindByIDsForUpdate(ctx, sale.ProductIDs())
		if err != nil {
			return err
		}
		products := make(map[uuid.UUID]*catalog.Product, len(locked))
		for i := range locked {
			products[locked[i].ID] = &locked[i]
		}

		// read after the locks so concurrent returns of the same sale see each other
		returned, err := repos.ReturnRepo().ReturnedQuantities(ctx, sale.ID)
		if err != nil {
			return err
		}

		ret, err = sales.NewSaleReturn(sale, userID, sessionID, req.Reason, lines, returned, s.now())
		if err != nil {
			return err
		}

		for _, item := range ret.Items {
			p, ok := products[item.ProductID]
			if !ok {
				return catalog.ErrProductNotFound
			}
			if err := p.IncreaseStock(item.Quantity); err != nil {
				return err
			}
			if err := repos.ProductRepo().SaveStock(ctx, p); err != nil {
				return err
			}
		}
		return repos.ReturnRepo().Save(ctx, ret)
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, ret)

	s.logger.Info("Return processed",
		zap.String("return_id", ret.ID.String()),
		zap.String("sale_number", ret.SaleNumber),
		zap.String("refund", ret.TotalRefund.StringFixed(2)),
		zap.String("refund_method", ret.RefundMethod.String()))

	resp := ToReturnResponse(ret)
	return &ProcessReturnResponse{
		Return:  resp,
		Message: fmt.Sprintf("Return processed - Refund: %s", ret.TotalRefund.StringFixed(2)),
	}, nil
}

// GetReturn returns a return with its items
func (s *ReturnService) GetReturn(ctx context.Context, id uuid.UUID) (*ReturnResponse, error) {
	ret, err := s.returnRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	responses := []ReturnResponse{ToReturnResponse(ret)}
	if err := s.attachNames(ctx, responses); err != nil {
		return nil, err
	}
	return &responses[0], nil
}

// ListReturns returns returns matching the filter, newest first
func (s *ReturnService) ListReturns(ctx context.Context, filter ReturnListFilter) ([]ReturnResponse, int64, error) {
	domainFilter := shared.DefaultFilter()
	domainFilter.OrderBy = "returned_at"
	if filter.Page > 0 {
		domainFilter.Page = filter.Page
	}
	if filter.PageSize > 0 {
		domainFilter.PageSize = filter.PageSize
	}
	if err := applyDateFilter(&domainFilter, filter.From, filter.To, s.location); err != nil {
		return nil, 0, err
	}
	if filter.SaleID != nil {
		domainFilter.Filters[sales.FilterSaleID] = *filter.SaleID
	}

	list, err := s.returnRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.returnRepo.Count(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]ReturnResponse, len(list))
	for i := range list {
		responses[i] = ToReturnResponse(&list[i])
	}
	if err := s.attachNames(ctx, responses); err != nil {
		return nil, 0, err
	}
	return responses, total, nil
}

func (s *ReturnService) attachNames(ctx context.Context, responses []ReturnResponse) error {
	ids := make([]uuid.UUID, len(responses))
	for i, r := range responses {
		ids[i] = r.ProcessedBy
	}
	users, err := s.userRepo.FindByIDs(ctx, ids)
	if err != nil {
		return err
	}
	names := make(map[uuid.UUID]string, len(users))
	for i := range users {
		names[users[i].ID] = users[i].DisplayName()
	}
	for i := range responses {
		responses[i].ProcessedByName = names[responses[i].ProcessedBy]
	}
	return nil
}

func (s *ReturnService) publish(ctx context.Context, ret *sales.SaleReturn) {
	if s.eventPublisher == nil {
		ret.ClearDomainEvents()
		return
	}
	for _, event := range ret.GetDomainEvents() {
		if err := s.eventPublisher.Publish(ctx, event); err != nil {
			s.logger.Error("Failed to publish return event",
				zap.String("event_type", event.EventType()),
				zap.Error(err))
		}
	}
	ret.ClearDomainEvents()
}
