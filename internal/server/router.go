// Package server assembles the Juntos HTTP router from services, handlers
// and middleware.
package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"

	"juntos/internal/config"
	"juntos/internal/handlers"
	"juntos/internal/middleware"
	"juntos/internal/services"
)

// NewRouter builds the gin engine with every route of the API wired to
// services backed by db.
func NewRouter(cfg *config.Config, db *gorm.DB) *gin.Engine {
	// Initialize services
	userService := services.NewUserService(db)
	accountService := services.NewAccountService(db)
	categoryService := services.NewCategoryService(db)
	creditCardService := services.NewCreditCardService(db)
	transactionService := services.NewTransactionService(db)
	budgetService := services.NewBudgetService(db)
	goalService := services.NewGoalService(db)
	dashboardService := services.NewDashboardService(db)
	auditService := services.NewAuditService(db)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(userService, auditService)
	accountHandler := handlers.NewAccountHandler(accountService, auditService)
	categoryHandler := handlers.NewCategoryHandler(categoryService, auditService)
	creditCardHandler := handlers.NewCreditCardHandler(creditCardService, auditService)
	transactionHandler := handlers.NewTransactionHandler(transactionService, auditService)
	budgetHandler := handlers.NewBudgetHandler(budgetService, auditService)
	goalHandler := handlers.NewGoalHandler(goalService, auditService)
	dashboardHandler := handlers.NewDashboardHandler(dashboardService)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogging())
	router.Use(middleware.Metrics())
	router.Use(middleware.ErrorHandler())
	router.Use(cors())

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Prometheus metrics, guarded by the metrics API key
	router.GET("/metrics", middleware.APIKeyMiddleware(cfg.MetricsAPIKey), gin.WrapH(promhttp.Handler()))

	// Health check endpoint
	router.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := router.Group("/api/v1")

	// Public auth routes
	auth := v1.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)
	auth.POST("/refresh", authHandler.Refresh)

	// Protected routes
	protected := v1.Group("/")
	protected.Use(middleware.AuthMiddleware())

	profile := protected.Group("/auth")
	profile.GET("/profile", authHandler.GetProfile)
	profile.PUT("/profile", authHandler.UpdateProfile)
	profile.PUT("/password", authHandler.ChangePassword)
	profile.GET("/validate", authHandler.ValidateToken)

	accounts := protected.Group("/accounts")
	accounts.GET("", accountHandler.GetUserAccounts)
	accounts.GET("/stats", accountHandler.GetAccountStats)
	accounts.POST("", accountHandler.CreateAccount)
	accounts.POST("/transfer", accountHandler.Transfer)
	accounts.GET("/:id", accountHandler.GetAccountByID)
	accounts.PUT("/:id", accountHandler.UpdateAccount)
	accounts.DELETE("/:id", accountHandler.DeleteAccount)

	categories := protected.Group("/categories")
	categories.GET("", categoryHandler.GetUserCategories)
	categories.GET("/stats", categoryHandler.GetCategoryStats)
	categories.POST("/default", categoryHandler.CreateDefaultCategories)
	categories.POST("", categoryHandler.CreateCategory)
	categories.GET("/:id", categoryHandler.GetCategoryByID)
	categories.PUT("/:id", categoryHandler.UpdateCategory)
	categories.DELETE("/:id", categoryHandler.DeleteCategory)

	creditCards := protected.Group("/credit-cards")
	creditCards.POST("", creditCardHandler.CreateCreditCard)
	creditCards.GET("", creditCardHandler.GetUserCreditCards)
	creditCards.GET("/:id", creditCardHandler.GetCreditCardByID)
	creditCards.PUT("/:id", creditCardHandler.UpdateCreditCard)
	creditCards.DELETE("/:id", creditCardHandler.DeleteCreditCard)
	creditCards.GET("/:id/stats", creditCardHandler.GetCreditCardStats)

	transactions := protected.Group("/transactions")
	transactions.GET("", transactionHandler.GetUserTransactions)
	transactions.GET("/stats", transactionHandler.GetTransactionStats)
	transactions.POST("", transactionHandler.CreateTransaction)
	transactions.GET("/:id", transactionHandler.GetTransactionByID)
	transactions.PUT("/:id", transactionHandler.UpdateTransaction)
	transactions.DELETE("/:id", transactionHandler.DeleteTransaction)

	budgets := protected.Group("/budgets")
	budgets.POST("", budgetHandler.CreateBudget)
	budgets.GET("", budgetHandler.GetBudgets)
	budgets.GET("/month/:month/year/:year", budgetHandler.GetBudgetByMonthYear)
	budgets.PUT("/month/:month/year/:year/update-spent", budgetHandler.UpdateSpent)
	budgets.GET("/:id", budgetHandler.GetBudget)
	budgets.PUT("/:id", budgetHandler.UpdateBudget)
	budgets.DELETE("/:id", budgetHandler.DeleteBudget)

	goals := protected.Group("/goals")
	goals.POST("", goalHandler.CreateGoal)
	goals.GET("", goalHandler.GetUserGoals)
	goals.GET("/:id", goalHandler.GetGoalByID)
	goals.PUT("/:id", goalHandler.UpdateGoal)
	goals.DELETE("/:id", goalHandler.DeleteGoal)
	goals.GET("/:id/progress", goalHandler.GetGoalProgress)

	protected.GET("/dashboard", dashboardHandler.GetDashboard)

	return router
}

// cors allows browser clients from any origin.
func cors() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
