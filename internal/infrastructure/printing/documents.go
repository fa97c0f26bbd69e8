package printing

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ReceiptLine is one product line on a receipt
type ReceiptLine struct {
	Name      string
	SKU       string
	Quantity  int
	UnitPrice decimal.Decimal
}

// ReceiptDocument is the data printed on a sale receipt
type ReceiptDocument struct {
	CompanyName   string
	SaleNumber    string
	CreatedAt     time.Time
	CashierName   string
	CustomerName  string
	CustomerTaxID string
	PaymentMethod string
	Items         []ReceiptLine
	ItemCount     int
	Total         decimal.Decimal
}

// SalesReportRow is one sale in the report table
type SalesReportRow struct {
	SaleNumber    string
	CreatedAt     time.Time
	CashierName   string
	CustomerName  string
	PaymentMethod string
	ItemCount     int
	Total         decimal.Decimal
}

// SalesReportDocument is the data printed on the sales report
type SalesReportDocument struct {
	CompanyName   string
	StartDate     time.Time
	EndDate       time.Time
	GeneratedAt   time.Time
	TotalSales    decimal.Decimal
	SaleCount     int64
	AverageTicket decimal.Decimal
	CashSales     decimal.Decimal
	CardSales     decimal.Decimal
	Rows          []SalesReportRow
}

// DocumentPrinter renders POS documents to PDF
type DocumentPrinter struct {
	engine      *TemplateEngine
	renderer    PDFRenderer
	companyName string
	logger      *zap.Logger
}

// NewDocumentPrinter creates a DocumentPrinter. companyName is printed on
// documents that do not carry their own.
func NewDocumentPrinter(engine *TemplateEngine, renderer PDFRenderer, companyName string, logger *zap.Logger) *DocumentPrinter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DocumentPrinter{
		engine:      engine,
		renderer:    renderer,
		companyName: companyName,
		logger:      logger,
	}
}

// PrintReceipt renders an 80mm receipt
func (p *DocumentPrinter) PrintReceipt(ctx context.Context, doc ReceiptDocument) ([]byte, error) {
	if doc.CompanyName == "" {
		doc.CompanyName = p.companyName
	}
	html, err := p.engine.Render(TemplateReceipt, doc)
	if err != nil {
		return nil, err
	}
	result, err := p.renderer.Render(ctx, &RenderRequest{
		HTML:        html,
		PaperSize:   PaperSizeReceipt80,
		Orientation: OrientationPortrait,
		Margins:     ReceiptMargins(),
		Title:       "Receipt " + doc.SaleNumber,
	})
	if err != nil {
		if IsRenderTimeout(err) {
			p.logger.Warn("Receipt render timed out", zap.String("sale_number", doc.SaleNumber))
		}
		return nil, err
	}
	p.logger.Debug("Receipt printed",
		zap.String("sale_number", doc.SaleNumber),
		zap.Duration("took", result.RenderDuration))
	return result.PDFData, nil
}

// PrintSalesReport renders the sales report on A4 landscape
func (p *DocumentPrinter) PrintSalesReport(ctx context.Context, doc SalesReportDocument) ([]byte, error) {
	if doc.CompanyName == "" {
		doc.CompanyName = p.companyName
	}
	html, err := p.engine.Render(TemplateSalesReport, doc)
	if err != nil {
		return nil, err
	}
	result, err := p.renderer.Render(ctx, &RenderRequest{
		HTML:        html,
		PaperSize:   PaperSizeA4,
		Orientation: OrientationLandscape,
		Margins:     DefaultMargins(),
		Title:       "Sales report",
		FooterHTML:  `<div style="font-size:8px;width:100%;text-align:center;"><span class="pageNumber"></span> / <span class="totalPages"></span></div>`,
	})
	if err != nil {
		return nil, err
	}
	p.logger.Debug("Sales report printed",
		zap.Int("rows", len(doc.Rows)),
		zap.Int("pages", result.PageCount))
	return result.PDFData, nil
}
