// Package report serves the manager dashboard, the sales report and its
// spreadsheet and PDF exports.
package report

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/retailpos/backend/internal/domain/catalog"
	"github.com/retailpos/backend/internal/domain/drawer"
	"github.com/retailpos/backend/internal/domain/report"
	"github.com/retailpos/backend/internal/domain/shared"
	"github.com/retailpos/backend/internal/infrastructure/printing"
	"github.com/retailpos/backend/internal/infrastructure/storage"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var (
	ErrUnsupportedFormat = shared.NewDomainError("UNSUPPORTED_FORMAT", "Export format must be xlsx or pdf")
	ErrPDFUnavailable    = shared.NewDomainError("PDF_UNAVAILABLE", "PDF export is not available")
	ErrExportTooLarge    = shared.NewDomainError("EXPORT_TOO_LARGE", "The report has too many rows to export, narrow the date range")
)

// SpreadsheetWriter renders a sales report as a workbook
type SpreadsheetWriter interface {
	Write(rep *report.SalesReport) ([]byte, error)
}

// ReportPrinter renders a sales report as PDF
type ReportPrinter interface {
	PrintSalesReport(ctx context.Context, doc printing.SalesReportDocument) ([]byte, error)
}

const contentTypePDF = "application/pdf"

// ReportService answers the manager's dashboard and report queries
type ReportService struct {
	reportRepo  report.ReportRepository
	productRepo catalog.ProductRepository
	sessionRepo drawer.SessionRepository
	xlsx        SpreadsheetWriter
	xlsxType    string
	printer     ReportPrinter
	archive     storage.ObjectStorage
	keyPrefix   string
	maxRows     int
	location    *time.Location
	logger      *zap.Logger
	now         func() time.Time
}

// ReportServiceOption configures the ReportService
type ReportServiceOption func(*ReportService)

// WithSpreadsheetWriter enables XLSX export
func WithSpreadsheetWriter(w SpreadsheetWriter, contentType string) ReportServiceOption {
	return func(s *ReportService) {
		s.xlsx = w
		s.xlsxType = contentType
	}
}

// WithReportPrinter enables PDF export
func WithReportPrinter(p ReportPrinter) ReportServiceOption {
	return func(s *ReportService) {
		s.printer = p
	}
}

// WithArchive uploads exports to object storage under keyPrefix
func WithArchive(archive storage.ObjectStorage, keyPrefix string) ReportServiceOption {
	return func(s *ReportService) {
		s.archive = archive
		s.keyPrefix = keyPrefix
	}
}

// WithMaxRows caps the number of sales in an export
func WithMaxRows(n int) ReportServiceOption {
	return func(s *ReportService) {
		s.maxRows = n
	}
}

// NewReportService creates a new ReportService. Calendar days are taken in loc.
func NewReportService(
	reportRepo report.ReportRepository,
	productRepo catalog.ProductRepository,
	sessionRepo drawer.SessionRepository,
	loc *time.Location,
	logger *zap.Logger,
	opts ...ReportServiceOption,
) *ReportService {
	if loc == nil {
		loc = time.UTC
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &ReportService{
		reportRepo:  reportRepo,
		productRepo: productRepo,
		sessionRepo: sessionRepo,
		location:    loc,
		logger:      logger,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Dashboard gathers today's figures, best sellers and stock alerts
func (s *ReportService) Dashboard(ctx context.Context) (*report.Dashboard, error) {
	now := s.now().In(s.location)
	today := report.StartOfDay(now)
	tomorrow := today.AddDate(0, 0, 1)
	weekStart := today.AddDate(0, 0, -report.WeekDays)

	d := &report.Dashboard{Date: today, WeekStart: weekStart}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		totals, err := s.reportRepo.SalesTotals(gctx, today, tomorrow)
		d.Today = totals
		d.AverageTicket = totals.AverageTicket()
		return err
	})
	g.Go(func() error {
		week, err := s.reportRepo.SalesTotals(gctx, weekStart, tomorrow)
		d.WeekSales = week.Total
		return err
	})
	g.Go(func() error {
		n, err := s.sessionRepo.CountActive(gctx)
		d.ActiveSessions = n
		return err
	})
	g.Go(func() error {
		top, err := s.reportRepo.TopProducts(gctx, report.TopProductsLimit)
		d.TopProducts = nonNil(top)
		return err
	})
	g.Go(func() error {
		sessions, err := s.reportRepo.SessionsStartedBetween(gctx, today, tomorrow)
		d.TodaySessions = nonNil(sessions)
		return err
	})
	g.Go(func() error {
		recent, err := s.reportRepo.RecentSales(gctx, report.RecentSalesLimit)
		d.RecentSales = nonNil(recent)
		return err
	})
	g.Go(func() error {
		low, err := s.productRepo.FindLowStock(gctx, report.StockAlertLimit)
		d.LowStock = toStockAlerts(low)
		return err
	})
	g.Go(func() error {
		out, err := s.productRepo.FindOutOfStock(gctx, report.StockAlertLimit)
		d.OutOfStock = toStockAlerts(out)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return d, nil
}

// SalesReport lists the sales between two dates, both inclusive
func (s *ReportService) SalesReport(ctx context.Context, q SalesReportQuery) (*report.SalesReport, error) {
	r, err := report.ParseDateRange(q.StartDate, q.EndDate, s.location)
	if err != nil {
		return nil, err
	}
	rows, err := s.reportRepo.SalesBetween(ctx, r.From(), r.To())
	if err != nil {
		return nil, err
	}
	return report.NewSalesReport(r, rows, s.now().In(s.location)), nil
}

// Export renders the sales report as XLSX or PDF and optionally archives it
func (s *ReportService) Export(ctx context.Context, q ExportQuery) (*ExportResult, error) {
	format := strings.ToLower(strings.TrimSpace(q.Format))
	if format == "" {
		format = FormatXLSX
	}
	if format != FormatXLSX && format != FormatPDF {
		return nil, ErrUnsupportedFormat
	}

	rep, err := s.SalesReport(ctx, q.SalesReportQuery)
	if err != nil {
		return nil, err
	}
	if s.maxRows > 0 && len(rep.Sales) > s.maxRows {
		return nil, ErrExportTooLarge
	}

	result := &ExportResult{Filename: fmt.Sprintf("sales_%s.%s", rep.Range.Label(), format)}
	switch format {
	case FormatXLSX:
		if s.xlsx == nil {
			return nil, ErrUnsupportedFormat
		}
		result.Data, err = s.xlsx.Write(rep)
		result.ContentType = s.xlsxType
	case FormatPDF:
		if s.printer == nil {
			return nil, ErrPDFUnavailable
		}
		result.Data, err = s.printer.PrintSalesReport(ctx, toReportDocument(rep))
		result.ContentType = contentTypePDF
	}
	if err != nil {
		s.logger.Error("Sales report export failed",
			zap.String("format", format),
			zap.String("range", rep.Range.Label()),
			zap.Error(err))
		return nil, err
	}

	if q.Archive {
		if err := s.archiveExport(ctx, rep, format, result); err != nil {
			return nil, err
		}
	}

	s.logger.Info("Sales report exported",
		zap.String("format", format),
		zap.String("range", rep.Range.Label()),
		zap.Int("rows", len(rep.Sales)),
		zap.Int("bytes", len(result.Data)),
		zap.Bool("archived", result.ArchiveURL != ""))
	return result, nil
}

func (s *ReportService) archiveExport(ctx context.Context, rep *report.SalesReport, format string, result *ExportResult) error {
	if s.archive == nil {
		s.logger.Warn("Export archive requested but object storage is not configured")
		return nil
	}
	key := storage.ExportKey(s.keyPrefix, "sales_"+rep.Range.Label(), format, s.now())
	if err := s.archive.Upload(ctx, key, result.Data, result.ContentType); err != nil {
		return fmt.Errorf("archive export: %w", err)
	}
	url, expiresAt, err := s.archive.GenerateDownloadURL(ctx, key, 0)
	if err != nil {
		return fmt.Errorf("archive export: %w", err)
	}
	result.ArchiveURL = url
	result.ArchiveExpiresAt = expiresAt
	return nil
}

// StoreState is a point-in-time count of stock and drawer health
type StoreState struct {
	LowStock       int64
	OutOfStock     int64
	ActiveSessions int64
}

// StoreState counts low-stock and out-of-stock products and open drawers
func (s *ReportService) StoreState(ctx context.Context) (StoreState, error) {
	var state StoreState
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		n, err := s.productRepo.Count(gctx, stockStatusFilter(catalog.StockStatusLowStock))
		state.LowStock = n
		return err
	})
	g.Go(func() error {
		n, err := s.productRepo.Count(gctx, stockStatusFilter(catalog.StockStatusOutOfStock))
		state.OutOfStock = n
		return err
	})
	g.Go(func() error {
		n, err := s.sessionRepo.CountActive(gctx)
		state.ActiveSessions = n
		return err
	})
	if err := g.Wait(); err != nil {
		return StoreState{}, err
	}
	return state, nil
}

func stockStatusFilter(status catalog.StockStatus) shared.Filter {
	f := shared.DefaultFilter()
	f.Filters[catalog.FilterStockStatus] = string(status)
	return f
}

func toReportDocument(rep *report.SalesReport) printing.SalesReportDocument {
	doc := printing.SalesReportDocument{
		StartDate:     rep.Range.StartDate,
		EndDate:       rep.Range.EndDate,
		GeneratedAt:   rep.GeneratedAt,
		TotalSales:    rep.Totals.Total,
		SaleCount:     rep.Totals.Count,
		AverageTicket: rep.AverageTicket,
		CashSales:     rep.Totals.CashTotal,
		CardSales:     rep.Totals.CardTotal,
		Rows:          make([]printing.SalesReportRow, len(rep.Sales)),
	}
	for i, row := range rep.Sales {
		doc.Rows[i] = printing.SalesReportRow{
			SaleNumber:    row.SaleNumber,
			CreatedAt:     row.CreatedAt,
			CashierName:   row.CashierName,
			CustomerName:  row.CustomerName,
			PaymentMethod: row.PaymentMethod,
			ItemCount:     int(row.ItemCount),
			Total:         row.TotalAmount,
		}
	}
	return doc
}

func toStockAlerts(products []catalog.Product) []report.StockAlert {
	alerts := make([]report.StockAlert, len(products))
	for i, p := range products {
		alerts[i] = report.StockAlert{ProductID: p.ID, Name: p.Name, SKU: p.SKU, Stock: p.Stock}
	}
	return alerts
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
