package router

import (
	"github.com/gin-gonic/gin"
	"github.com/retailpos/backend/internal/interfaces/http/handler"
)

// Handlers bundles the HTTP handlers served under the API base path
type Handlers struct {
	Auth       *handler.AuthHandler
	Users      *handler.UserHandler
	Categories *handler.CategoryHandler
	Suppliers  *handler.SupplierHandler
	Products   *handler.ProductHandler
	Customers  *handler.CustomerHandler
	POS        *handler.POSHandler
	Drawer     *handler.DrawerHandler
	Sales      *handler.SalesHandler
	Reports    *handler.ReportHandler
	System     *handler.SystemHandler
}

// Guards are the per-route middlewares. A nil guard is skipped.
type Guards struct {
	// Manager restricts a route to managers
	Manager gin.HandlerFunc
	// DrawerSession makes cashiers open a drawer before using the till
	DrawerSession gin.HandlerFunc
	// LoginLimiter throttles credential guessing on /auth/login
	LoginLimiter gin.HandlerFunc
}

func with(guards ...gin.HandlerFunc) func(h gin.HandlerFunc) []gin.HandlerFunc {
	chain := make([]gin.HandlerFunc, 0, len(guards)+1)
	for _, g := range guards {
		if g != nil {
			chain = append(chain, g)
		}
	}
	return func(h gin.HandlerFunc) []gin.HandlerFunc {
		out := make([]gin.HandlerFunc, len(chain), len(chain)+1)
		copy(out, chain)
		return append(out, h)
	}
}

// APIGroups builds the domain route groups of the POS API
func APIGroups(h Handlers, g Guards) []*DomainGroup {
	manager := with(g.Manager)

	auth := NewDomainGroup("auth", "/auth")
	auth.POST("/login", with(g.LoginLimiter)(h.Auth.Login)...)
	auth.POST("/refresh", h.Auth.RefreshToken)
	auth.POST("/logout", h.Auth.Logout)
	auth.GET("/me", h.Auth.GetCurrentUser)
	auth.PUT("/password", h.Auth.ChangePassword)

	identity := NewDomainGroup("identity", "/identity")
	users := identity.Group("users", "/users")
	users.GET("", manager(h.Users.List)...)
	users.POST("", manager(h.Users.Create)...)
	users.GET("/:id", manager(h.Users.GetByID)...)
	users.POST("/:id/activate", manager(h.Users.Activate)...)
	users.POST("/:id/deactivate", manager(h.Users.Deactivate)...)

	catalog := NewDomainGroup("catalog", "/catalog")
	categories := catalog.Group("categories", "/categories")
	categories.GET("", h.Categories.List)
	categories.GET("/:id", h.Categories.GetByID)
	categories.POST("", manager(h.Categories.Create)...)
	categories.PUT("/:id", manager(h.Categories.Update)...)
	categories.DELETE("/:id", manager(h.Categories.Delete)...)

	suppliers := catalog.Group("suppliers", "/suppliers")
	suppliers.GET("", h.Suppliers.List)
	suppliers.GET("/:id", h.Suppliers.GetByID)
	suppliers.POST("", manager(h.Suppliers.Create)...)
	suppliers.PUT("/:id", manager(h.Suppliers.Update)...)
	suppliers.DELETE("/:id", manager(h.Suppliers.Delete)...)

	products := catalog.Group("products", "/products")
	products.GET("", h.Products.List)
	products.GET("/sku/:sku", h.Products.GetBySKU)
	products.GET("/:id", h.Products.GetByID)
	products.POST("", manager(h.Products.Create)...)
	products.PUT("/:id", manager(h.Products.Update)...)
	products.DELETE("/:id", manager(h.Products.Delete)...)
	products.POST("/:id/stock", manager(h.Products.AdjustStock)...)

	partner := NewDomainGroup("partner", "/partner")
	customers := partner.Group("customers", "/customers")
	customers.GET("", h.Customers.List)
	customers.GET("/search", h.Customers.Search)
	customers.GET("/:id", h.Customers.GetByID)
	customers.POST("", h.Customers.Create)
	customers.PUT("/:id", h.Customers.Update)
	customers.DELETE("/:id", h.Customers.Delete)

	pos := NewDomainGroup("pos", "/pos")
	session := pos.Group("session", "/session")
	session.GET("", h.POS.GetSession)
	session.POST("/open", h.POS.OpenSession)
	session.POST("/close", h.POS.CloseSession)

	till := with(g.DrawerSession)
	cart := pos.Group("cart", "/cart")
	cart.GET("", till(h.POS.GetCart)...)
	cart.DELETE("", till(h.POS.ClearCart)...)
	cart.POST("/items", till(h.POS.AddToCart)...)
	cart.PUT("/items/:product_id", till(h.POS.SetQuantity)...)
	cart.DELETE("/items/:product_id", till(h.POS.RemoveFromCart)...)
	pos.POST("/checkout", till(h.POS.Checkout)...)
	pos.GET("/returns/search", till(h.POS.SearchReturn)...)
	pos.POST("/returns", till(h.POS.ProcessReturn)...)

	drawer := NewDomainGroup("drawer", "/drawer").Use(nonNil(g.Manager)...)
	drawer.GET("/sessions", h.Drawer.List)
	drawer.GET("/sessions/:id", h.Drawer.GetByID)

	sales := NewDomainGroup("sales", "/sales")
	sales.GET("", manager(h.Sales.ListSales)...)
	sales.GET("/:id", manager(h.Sales.GetSale)...)
	sales.GET("/:id/receipt", h.Sales.Receipt)

	returns := NewDomainGroup("returns", "/returns").Use(nonNil(g.Manager)...)
	returns.GET("", h.Sales.ListReturns)
	returns.GET("/:id", h.Sales.GetReturn)

	reports := NewDomainGroup("reports", "/reports").Use(nonNil(g.Manager)...)
	reports.GET("/dashboard", h.Reports.Dashboard)
	reports.GET("/sales", h.Reports.SalesReport)
	reports.GET("/sales/export", h.Reports.Export)

	return []*DomainGroup{auth, identity, catalog, partner, pos, drawer, sales, returns, reports}
}

func nonNil(handlers ...gin.HandlerFunc) []gin.HandlerFunc {
	out := handlers[:0:0]
	for _, h := range handlers {
		if h != nil {
			out = append(out, h)
		}
	}
	return out
}

// Mount registers the POS API on r and the health routes on the engine root
func Mount(engine *gin.Engine, r *Router, h Handlers, g Guards) {
	for _, group := range APIGroups(h, g) {
		r.Register(group)
	}
	r.Setup()

	engine.GET("/health", h.System.Health)
	engine.GET(r.BasePath()+"/health", h.System.Health)
	engine.GET(r.BasePath()+"/system/info", h.System.GetSystemInfo)
}
