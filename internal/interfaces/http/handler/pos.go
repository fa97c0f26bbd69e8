package handler

import (
	"errors"
	"strings"

	drawerapp "github.com/retailpos/backend/internal/application/drawer"
	salesapp "github.com/retailpos/backend/internal/application/sales"
	"github.com/retailpos/backend/internal/domain/drawer"
	"github.com/gin-gonic/gin"
)

// IdempotencyKeyHeader carries the client's checkout attempt id
const IdempotencyKeyHeader = "Idempotency-Key"

// ActiveSessionResponse is the till's view of the cashier's drawer
type ActiveSessionResponse struct {
	Active  bool                       `json:"active"`
	Session *drawerapp.SessionResponse `json:"session"`
}

// ReturnSearchQuery looks a sale up by number or id
type ReturnSearchQuery struct {
	Q string `form:"q" binding:"required,max=100"`
}

// POSHandler serves the till: the drawer session, the cart, checkout and
// returns at the counter
type POSHandler struct {
	BaseHandler
	sessionService  *drawerapp.SessionService
	cartService     *salesapp.CartService
	checkoutService *salesapp.CheckoutService
	returnService   *salesapp.ReturnService
}

// NewPOSHandler creates a new POSHandler
func NewPOSHandler(
	sessionService *drawerapp.SessionService,
	cartService *salesapp.CartService,
	checkoutService *salesapp.CheckoutService,
	returnService *salesapp.ReturnService,
) *POSHandler {
	return &POSHandler{
		sessionService:  sessionService,
		cartService:     cartService,
		checkoutService: checkoutService,
		returnService:   returnService,
	}
}

// GetSession handles GET /pos/session
func (h *POSHandler) GetSession(c *gin.Context) {
	userID, ok := h.currentUser(c)
	if !ok {
		return
	}
	session, err := h.sessionService.GetActive(c.Request.Context(), userID)
	if errors.Is(err, drawer.ErrNoActiveSession) {
		h.Success(c, ActiveSessionResponse{})
		return
	}
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, ActiveSessionResponse{Active: true, Session: session})
}

// OpenSession handles POST /pos/session/open
func (h *POSHandler) OpenSession(c *gin.Context) {
	userID, ok := h.currentUser(c)
	if !ok {
		return
	}
	var req drawerapp.OpenSessionRequest
	if !h.bindJSON(c, &req) {
		return
	}
	session, err := h.sessionService.Open(c.Request.Context(), userID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, session)
}

// CloseSession handles POST /pos/session/close
func (h *POSHandler) CloseSession(c *gin.Context) {
	userID, ok := h.currentUser(c)
	if !ok {
		return
	}
	var req drawerapp.CloseSessionRequest
	if !h.bindJSON(c, &req) {
		return
	}
	result, err := h.sessionService.Close(c.Request.Context(), userID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// GetCart handles GET /pos/cart
func (h *POSHandler) GetCart(c *gin.Context) {
	userID, ok := h.currentUser(c)
	if !ok {
		return
	}
	cart, err := h.cartService.GetCart(c.Request.Context(), userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, cart)
}

// AddToCart handles POST /pos/cart/items
func (h *POSHandler) AddToCart(c *gin.Context) {
	userID, ok := h.currentUser(c)
	if !ok {
		return
	}
	var req salesapp.AddToCartRequest
	if !h.bindJSON(c, &req) {
		return
	}
	result, err := h.cartService.AddBySKU(c.Request.Context(), userID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// SetQuantity handles PUT /pos/cart/items/:product_id
func (h *POSHandler) SetQuantity(c *gin.Context) {
	userID, ok := h.currentUser(c)
	if !ok {
		return
	}
	productID, ok := h.pathID(c, "product_id")
	if !ok {
		return
	}
	var req salesapp.SetQuantityRequest
	if !h.bindJSON(c, &req) {
		return
	}
	cart, err := h.cartService.SetQuantity(c.Request.Context(), userID, productID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, cart)
}

// RemoveFromCart handles DELETE /pos/cart/items/:product_id
func (h *POSHandler) RemoveFromCart(c *gin.Context) {
	userID, ok := h.currentUser(c)
	if !ok {
		return
	}
	productID, ok := h.pathID(c, "product_id")
	if !ok {
		return
	}
	cart, err := h.cartService.Remove(c.Request.Context(), userID, productID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, cart)
}

// ClearCart handles DELETE /pos/cart
func (h *POSHandler) ClearCart(c *gin.Context) {
	userID, ok := h.currentUser(c)
	if !ok {
		return
	}
	cart, err := h.cartService.Clear(c.Request.Context(), userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, cart)
}

// Checkout handles POST /pos/checkout. A repeated Idempotency-Key is
// rejected with DUPLICATE_CHECKOUT.
func (h *POSHandler) Checkout(c *gin.Context) {
	userID, ok := h.currentUser(c)
	if !ok {
		return
	}
	var req salesapp.CheckoutRequest
	if c.Request.ContentLength != 0 && !h.bindJSON(c, &req) {
		return
	}
	key := strings.TrimSpace(c.GetHeader(IdempotencyKeyHeader))
	if len(key) > 128 {
		h.BadRequest(c, "Idempotency-Key cannot exceed 128 characters")
		return
	}

	result, err := h.checkoutService.Checkout(c.Request.Context(), userID, req, key)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, result)
}

// SearchReturn handles GET /pos/returns/search?q=
func (h *POSHandler) SearchReturn(c *gin.Context) {
	var q ReturnSearchQuery
	if !h.bindQuery(c, &q) {
		return
	}
	result, err := h.returnService.SearchSaleForReturn(c.Request.Context(), q.Q)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// ProcessReturn handles POST /pos/returns
func (h *POSHandler) ProcessReturn(c *gin.Context) {
	userID, ok := h.currentUser(c)
	if !ok {
		return
	}
	var req salesapp.ProcessReturnRequest
	if !h.bindJSON(c, &req) {
		return
	}
	result, err := h.returnService.ProcessReturn(c.Request.Context(), userID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, result)
}
