package report

import "time"

// Export formats
const (
	FormatXLSX = "xlsx"
	FormatPDF  = "pdf"
)

// SalesReportQuery selects the report range. Dates are YYYY-MM-DD, inclusive.
type SalesReportQuery struct {
	StartDate string `form:"start_date"`
	EndDate   string `form:"end_date"`
}

// ExportQuery selects the report range and output format
type ExportQuery struct {
	SalesReportQuery
	Format  string `form:"format" binding:"omitempty,oneof=xlsx pdf"`
	Archive bool   `form:"archive"`
}

// ExportResult is a rendered report file
type ExportResult struct {
	Data        []byte
	Filename    string
	ContentType string
	// ArchiveURL is a presigned download link, set when the file was archived
	ArchiveURL       string
	ArchiveExpiresAt time.Time
}
