package sales

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/retailpos/backend/internal/domain/identity"
	"github.com/retailpos/backend/internal/domain/partner"
	"github.com/retailpos/backend/internal/domain/report"
	"github.com/retailpos/backend/internal/domain/sales"
	"github.com/retailpos/backend/internal/domain/shared"
	"github.com/retailpos/backend/internal/infrastructure/printing"
	"go.uber.org/zap"
)

// ReceiptPrinter renders sale receipts
type ReceiptPrinter interface {
	PrintReceipt(ctx context.Context, doc printing.ReceiptDocument) ([]byte, error)
}

// SaleService answers sale lookups and prints receipts
type SaleService struct {
	saleRepo     sales.SaleRepository
	userRepo     identity.UserRepository
	customerRepo partner.CustomerRepository
	printer      ReceiptPrinter
	location     *time.Location
	logger       *zap.Logger
}

// NewSaleService creates a new SaleService. printer may be nil when PDF
// rendering is not available.
func NewSaleService(
	saleRepo sales.SaleRepository,
	userRepo identity.UserRepository,
	customerRepo partner.CustomerRepository,
	printer ReceiptPrinter,
	loc *time.Location,
	logger *zap.Logger,
) *SaleService {
	if loc == nil {
		loc = time.UTC
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SaleService{
		saleRepo:     saleRepo,
		userRepo:     userRepo,
		customerRepo: customerRepo,
		printer:      printer,
		location:     loc,
		logger:       logger,
	}
}

// ErrReceiptUnavailable is returned when no PDF renderer is configured
var ErrReceiptUnavailable = shared.NewDomainError("RECEIPT_UNAVAILABLE", "Receipt printing is not available")

// GetByID returns a sale with its items, cashier and customer
func (s *SaleService) GetByID(ctx context.Context, id uuid.UUID) (*SaleResponse, error) {
	sale, err := s.saleRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToSaleResponse(sale)
	responses := []SaleResponse{resp}
	if err := s.attachNames(ctx, responses); err != nil {
		return nil, err
	}
	return &responses[0], nil
}

// List returns sales matching the filter, newest first
func (s *SaleService) List(ctx context.Context, filter SaleListFilter) ([]SaleResponse, int64, error) {
	domainFilter := shared.DefaultFilter()
	if filter.Page > 0 {
		domainFilter.Page = filter.Page
	}
	if filter.PageSize > 0 {
		domainFilter.PageSize = filter.PageSize
	}
	if err := applyDateFilter(&domainFilter, filter.From, filter.To, s.location); err != nil {
		return nil, 0, err
	}
	if filter.SessionID != nil {
		domainFilter.Filters[sales.FilterSessionID] = *filter.SessionID
	}
	if filter.CashierID != nil {
		domainFilter.Filters[sales.FilterCashierID] = *filter.CashierID
	}
	if filter.PaymentMethod != "" {
		method, err := sales.ParsePaymentMethod(filter.PaymentMethod)
		if err != nil {
			return nil, 0, err
		}
		domainFilter.Filters[sales.FilterPaymentMethod] = method
	}

	list, err := s.saleRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.saleRepo.Count(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]SaleResponse, len(list))
	for i := range list {
		responses[i] = ToSaleResponse(&list[i])
		responses[i].Items = nil
	}
	if err := s.attachNames(ctx, responses); err != nil {
		return nil, 0, err
	}
	return responses, total, nil
}

// Receipt renders the sale receipt as PDF
func (s *SaleService) Receipt(ctx context.Context, id uuid.UUID) ([]byte, string, error) {
	if s.printer == nil {
		return nil, "", ErrReceiptUnavailable
	}
	sale, err := s.saleRepo.FindByID(ctx, id)
	if err != nil {
		return nil, "", err
	}

	doc := printing.ReceiptDocument{
		SaleNumber:    sale.SaleNumber,
		CreatedAt:     sale.CreatedAt.In(s.location),
		PaymentMethod: sale.PaymentMethod.String(),
		ItemCount:     sale.ItemCount(),
		Total:         sale.TotalAmount,
		Items:         make([]printing.ReceiptLine, len(sale.Items)),
	}
	for i, item := range sale.Items {
		doc.Items[i] = printing.ReceiptLine{
			Name:      item.ProductName,
			SKU:       item.SKU,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
		}
	}
	if cashier, err := s.userRepo.FindByID(ctx, sale.CashierID); err == nil {
		doc.CashierName = cashier.DisplayName()
	}
	if sale.CustomerID != nil {
		if customer, err := s.customerRepo.FindByID(ctx, *sale.CustomerID); err == nil {
			doc.CustomerName = customer.Name
			doc.CustomerTaxID = customer.TaxID
		}
	}

	pdf, err := s.printer.PrintReceipt(ctx, doc)
	if err != nil {
		s.logger.Error("Failed to print receipt",
			zap.String("sale_number", sale.SaleNumber),
			zap.Error(err))
		return nil, "", err
	}
	return pdf, "receipt_" + sale.SaleNumber + ".pdf", nil
}

func (s *SaleService) attachNames(ctx context.Context, responses []SaleResponse) error {
	if len(responses) == 0 {
		return nil
	}

	cashierIDs := make([]uuid.UUID, 0, len(responses))
	customerIDs := make(map[uuid.UUID]string)
	for _, r := range responses {
		cashierIDs = append(cashierIDs, r.CashierID)
		if r.CustomerID != nil {
			customerIDs[*r.CustomerID] = ""
		}
	}

	users, err := s.userRepo.FindByIDs(ctx, cashierIDs)
	if err != nil {
		return err
	}
	cashiers := make(map[uuid.UUID]string, len(users))
	for i := range users {
		cashiers[users[i].ID] = users[i].DisplayName()
	}

	for id := range customerIDs {
		customer, err := s.customerRepo.FindByID(ctx, id)
		if err != nil {
			if errors.Is(err, partner.ErrCustomerNotFound) {
				continue
			}
			return err
		}
		customerIDs[id] = customer.Name
	}

	for i := range responses {
		responses[i].CashierName = cashiers[responses[i].CashierID]
		if responses[i].CustomerID != nil {
			responses[i].CustomerName = customerIDs[*responses[i].CustomerID]
		}
	}
	return nil
}

// applyDateFilter adds an inclusive YYYY-MM-DD range; a missing side copies the other
func applyDateFilter(filter *shared.Filter, from, to string, loc *time.Location) error {
	if from == "" && to == "" {
		return nil
	}
	if from == "" {
		from = to
	}
	if to == "" {
		to = from
	}
	r, err := report.ParseDateRange(from, to, loc)
	if err != nil {
		return err
	}
	filter.Filters[sales.FilterFrom] = r.From()
	filter.Filters[sales.FilterTo] = r.To()
	return nil
}
