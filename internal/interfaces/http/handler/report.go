package handler

import (
	"fmt"
	"net/http"
	"time"

	reportapp "github.com/retailpos/backend/internal/application/report"
	"github.com/gin-gonic/gin"
)

// Export response headers
const (
	ArchiveURLHeader     = "X-Archive-URL"
	ArchiveExpiresHeader = "X-Archive-Expires-At"
)

// ReportHandler serves the manager dashboard and the sales report
type ReportHandler struct {
	BaseHandler
	reportService *reportapp.ReportService
}

// NewReportHandler creates a new ReportHandler
func NewReportHandler(reportService *reportapp.ReportService) *ReportHandler {
	return &ReportHandler{reportService: reportService}
}

// Dashboard handles GET /reports/dashboard
func (h *ReportHandler) Dashboard(c *gin.Context) {
	dashboard, err := h.reportService.Dashboard(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, dashboard)
}

// SalesReport handles GET /reports/sales?start_date=&end_date=
func (h *ReportHandler) SalesReport(c *gin.Context) {
	var q reportapp.SalesReportQuery
	if !h.bindQuery(c, &q) {
		return
	}
	report, err := h.reportService.SalesReport(c.Request.Context(), q)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, report)
}

// Export handles GET /reports/sales/export and returns the file as an
// attachment. When the file was archived the download link is sent in
// X-Archive-URL.
func (h *ReportHandler) Export(c *gin.Context) {
	var q reportapp.ExportQuery
	if !h.bindQuery(c, &q) {
		return
	}
	result, err := h.reportService.Export(c.Request.Context(), q)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, result.Filename))
	if result.ArchiveURL != "" {
		c.Header(ArchiveURLHeader, result.ArchiveURL)
		c.Header(ArchiveExpiresHeader, result.ArchiveExpiresAt.UTC().Format(time.RFC3339))
	}
	c.Data(http.StatusOK, result.ContentType, result.Data)
}
