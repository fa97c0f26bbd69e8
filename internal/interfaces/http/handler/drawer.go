package handler

import (
	drawerapp "github.com/retailpos/backend/internal/application/drawer"
	"github.com/gin-gonic/gin"
)

// SessionListQuery is the query string of the manager's session list
type SessionListQuery struct {
	UserID   string `form:"user_id" binding:"omitempty,uuid"`
	Status   string `form:"status" binding:"omitempty,oneof=active closed"`
	From     string `form:"from"`
	To       string `form:"to"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// DrawerHandler lets managers review drawer sessions
type DrawerHandler struct {
	BaseHandler
	sessionService *drawerapp.SessionService
}

// NewDrawerHandler creates a new DrawerHandler
func NewDrawerHandler(sessionService *drawerapp.SessionService) *DrawerHandler {
	return &DrawerHandler{sessionService: sessionService}
}

// List handles GET /drawer/sessions
func (h *DrawerHandler) List(c *gin.Context) {
	var q SessionListQuery
	if !h.bindQuery(c, &q) {
		return
	}
	userID, err := optionalUUID(q.UserID)
	if err != nil {
		h.BadRequest(c, "Invalid user_id format")
		return
	}

	sessions, total, err := h.sessionService.List(c.Request.Context(), drawerapp.SessionListFilter{
		UserID:   userID,
		Status:   q.Status,
		From:     q.From,
		To:       q.To,
		Page:     q.Page,
		PageSize: q.PageSize,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, sessions, total, q.Page, q.PageSize)
}

// GetByID handles GET /drawer/sessions/:id
func (h *DrawerHandler) GetByID(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	session, err := h.sessionService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, session)
}
