// Package server assembles the HTTP surface of the ledger API.
package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"

	_ "ledger/internal/docs" // Import swagger docs
	"ledger/internal/handlers"
	"ledger/internal/middleware"
	"ledger/internal/services"
	"ledger/internal/store"
)

// NewRouter wires the store, services and handlers over db and returns the
// routed engine.
func NewRouter(db *gorm.DB) *gin.Engine {
	ledger := store.New(db)

	// Initialize services
	balanceService := services.NewBalanceService(ledger)
	categoryService := services.NewCategoryService(ledger)
	transactionService := services.NewTransactionService(ledger)
	auditService := services.NewAuditService(ledger)

	// Initialize handlers
	balanceHandler := handlers.NewBalanceHandler(balanceService)
	categoryHandler := handlers.NewCategoryHandler(categoryService)
	transactionHandler := handlers.NewTransactionHandler(transactionService)
	auditHandler := handlers.NewAuditHandler(auditService)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogging())
	router.Use(middleware.ErrorHandler())
	router.Use(cors())

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health check endpoint
	router.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := router.Group("/api/v1")
	protected := v1.Group("/")
	protected.Use(middleware.AuthMiddleware())

	// Balance routes
	balances := protected.Group("/balances")
	balances.POST("", balanceHandler.CreateBalance)
	balances.GET("", balanceHandler.GetUserBalances)
	balances.GET("/:id", balanceHandler.GetBalanceByID)
	balances.DELETE("/:id", balanceHandler.DeleteBalance)
	balances.GET("/:id/reconcile", balanceHandler.Reconcile)

	// Category routes
	categories := protected.Group("/categories")
	categories.POST("", categoryHandler.CreateCategory)
	categories.GET("", categoryHandler.GetUserCategories)
	categories.GET("/:id", categoryHandler.GetCategoryByID)
	categories.PUT("/:id", categoryHandler.UpdateCategory)
	categories.DELETE("/:id", categoryHandler.DeleteCategory)
	categories.POST("/:id/transactions", transactionHandler.CreateTransaction)
	categories.GET("/:id/transactions", transactionHandler.ListByCategory)

	// Transaction routes
	transactions := protected.Group("/transactions")
	transactions.GET("", transactionHandler.ListHistory)
	transactions.DELETE("/:id", transactionHandler.SoftDelete)
	transactions.DELETE("/:id/permanent", middleware.RequireAdmin(), transactionHandler.HardDelete)
	transactions.POST("/:id/revert", transactionHandler.Revert)
	transactions.PATCH("/:id/status", transactionHandler.SetStatus)

	protected.GET("/audit-logs", auditHandler.GetUserAuditLogs)

	return router
}

func cors() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Request-ID")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
