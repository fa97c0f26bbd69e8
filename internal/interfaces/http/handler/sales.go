package handler

import (
	"fmt"
	"net/http"

	salesapp "github.com/retailpos/backend/internal/application/sales"
	"github.com/gin-gonic/gin"
)

// SaleListQuery is the query string of the sales list
type SaleListQuery struct {
	From          string `form:"from"`
	To            string `form:"to"`
	SessionID     string `form:"session_id" binding:"omitempty,uuid"`
	CashierID     string `form:"cashier_id" binding:"omitempty,uuid"`
	PaymentMethod string `form:"payment_method" binding:"omitempty,oneof=cash card"`
	Page          int    `form:"page" binding:"omitempty,min=1"`
	PageSize      int    `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// ReturnListQuery is the query string of the returns list
type ReturnListQuery struct {
	SaleID   string `form:"sale_id" binding:"omitempty,uuid"`
	From     string `form:"from"`
	To       string `form:"to"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// SalesHandler serves the sale and return history
type SalesHandler struct {
	BaseHandler
	saleService   *salesapp.SaleService
	returnService *salesapp.ReturnService
}

// NewSalesHandler creates a new SalesHandler
func NewSalesHandler(saleService *salesapp.SaleService, returnService *salesapp.ReturnService) *SalesHandler {
	return &SalesHandler{saleService: saleService, returnService: returnService}
}

// ListSales handles GET /sales
func (h *SalesHandler) ListSales(c *gin.Context) {
	var q SaleListQuery
	if !h.bindQuery(c, &q) {
		return
	}
	filter := salesapp.SaleListFilter{
		From:          q.From,
		To:            q.To,
		PaymentMethod: q.PaymentMethod,
		Page:          q.Page,
		PageSize:      q.PageSize,
	}
	var err error
	if filter.SessionID, err = optionalUUID(q.SessionID); err != nil {
		h.BadRequest(c, "Invalid session_id format")
		return
	}
	if filter.CashierID, err = optionalUUID(q.CashierID); err != nil {
		h.BadRequest(c, "Invalid cashier_id format")
		return
	}

	sales, total, err := h.saleService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, sales, total, q.Page, q.PageSize)
}

// GetSale handles GET /sales/:id
func (h *SalesHandler) GetSale(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	sale, err := h.saleService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, sale)
}

// Receipt handles GET /sales/:id/receipt and streams the receipt PDF
func (h *SalesHandler) Receipt(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	pdf, filename, err := h.saleService.Receipt(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`inline; filename="%s"`, filename))
	c.Data(http.StatusOK, "application/pdf", pdf)
}

// ListReturns handles GET /returns
func (h *SalesHandler) ListReturns(c *gin.Context) {
	var q ReturnListQuery
	if !h.bindQuery(c, &q) {
		return
	}
	saleID, err := optionalUUID(q.SaleID)
	if err != nil {
		h.BadRequest(c, "Invalid sale_id format")
		return
	}

	returns, total, err := h.returnService.ListReturns(c.Request.Context(), salesapp.ReturnListFilter{
		SaleID:   saleID,
		From:     q.From,
		To:       q.To,
		Page:     q.Page,
		PageSize: q.PageSize,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, returns, total, q.Page, q.PageSize)
}

// GetReturn handles GET /returns/:id
func (h *SalesHandler) GetReturn(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	ret, err := h.returnService.GetReturn(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, ret)
}
