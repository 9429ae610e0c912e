package handlers

import (
	"github.com/gin-gonic/gin"

	"goldsphere/internal/middleware"
	"goldsphere/internal/services"
)

// Services bundles everything the HTTP layer depends on.
type Services struct {
	Users        services.UserServicer
	Products     services.ProductServicer
	Custody      services.CustodyServicer
	Portfolios   services.PortfolioServicer
	Positions    services.PositionServicer
	Transactions services.TransactionServicer
	Orders       services.OrderServicer
	Audit        services.AuditServicer
}

// RegisterRoutes mounts the public and authenticated API on v1.
func RegisterRoutes(v1 *gin.RouterGroup, svc Services) {
	authHandler := NewAuthHandler(svc.Users, svc.Audit)
	productHandler := NewProductHandler(svc.Products, svc.Audit)
	custodyHandler := NewCustodyHandler(svc.Custody, svc.Audit)
	portfolioHandler := NewPortfolioHandler(svc.Portfolios, svc.Audit)
	positionHandler := NewPositionHandler(svc.Positions, svc.Transactions)
	transactionHandler := NewTransactionHandler(svc.Transactions)
	orderHandler := NewOrderHandler(svc.Orders, svc.Audit)

	// Public routes
	auth := v1.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)
	auth.POST("/refresh", authHandler.Refresh)

	// Protected routes
	protected := v1.Group("/")
	protected.Use(middleware.AuthMiddleware())
	admin := middleware.RequireAdmin()

	protected.GET("/profile", authHandler.GetProfile)
	protected.PUT("/admin/users/:id/role", admin, authHandler.SetUserRole)

	products := protected.Group("/products")
	products.GET("", productHandler.GetProducts)
	products.GET("/:id", productHandler.GetProduct)
	products.POST("", admin, productHandler.CreateProduct)
	products.PUT("/:id", admin, productHandler.UpdateProduct)
	products.DELETE("/:id", admin, productHandler.DeleteProduct)

	custodians := protected.Group("/custodians")
	custodians.GET("", custodyHandler.GetCustodians)
	custodians.GET("/:id", custodyHandler.GetCustodian)
	custodians.POST("", admin, custodyHandler.CreateCustodian)
	custodians.PUT("/:id", admin, custodyHandler.UpdateCustodian)
	custodians.DELETE("/:id", admin, custodyHandler.DeleteCustodian)

	custodyServices := protected.Group("/custody-services")
	custodyServices.GET("", custodyHandler.GetCustodyServices)
	custodyServices.GET("/:id", custodyHandler.GetCustodyService)
	custodyServices.POST("", admin, custodyHandler.CreateCustodyService)
	custodyServices.PUT("/:id", admin, custodyHandler.UpdateCustodyService)
	custodyServices.DELETE("/:id", admin, custodyHandler.DeleteCustodyService)

	portfolios := protected.Group("/portfolios")
	portfolios.POST("", portfolioHandler.CreatePortfolio)
	portfolios.GET("", portfolioHandler.GetPortfolios)
	portfolios.GET("/:id", portfolioHandler.GetPortfolio)
	portfolios.PUT("/:id", portfolioHandler.UpdatePortfolio)
	portfolios.DELETE("/:id", portfolioHandler.DeletePortfolio)

	positions := protected.Group("/positions")
	positions.GET("", positionHandler.GetPositions)
	positions.GET("/:id", positionHandler.GetPosition)
	positions.GET("/:id/transactions", positionHandler.GetPositionTransactions)

	orders := protected.Group("/orders")
	orders.POST("", orderHandler.PlaceOrder)
	orders.GET("", orderHandler.GetOrders)
	orders.GET("/:id", orderHandler.GetOrder)
	orders.PUT("/:id/items", orderHandler.UpdateOrderItems)
	orders.POST("/:id/cancel", orderHandler.CancelOrder)
	orders.POST("/:id/advance", admin, orderHandler.AdvanceOrder)
	orders.DELETE("/:id", admin, orderHandler.DeleteOrder)

	transactions := protected.Group("/transactions")
	transactions.GET("", transactionHandler.GetUserTransactions)
	transactions.GET("/:id", transactionHandler.GetTransactionByID)
}
