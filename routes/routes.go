package routes

import (
	"time"

	"invoicing-backend/config"
	"invoicing-backend/controllers"
	"invoicing-backend/services"
	"invoicing-backend/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Dependencies are the shared objects the handlers are built from
type Dependencies struct {
	Config *config.Config
	DB     *gorm.DB
	Logger *zap.Logger
	Tokens *utils.TokenManager
}

func SetupRouter(deps Dependencies) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.Use(cors.New(cors.Config{
		AllowOrigins:     deps.Config.CORS.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type", "Accept", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.Use(config.PerformanceLogger(deps.Logger))

	authController := controllers.NewAuthController(deps.DB, deps.Tokens, deps.Logger)
	profileController := controllers.NewProfileController(deps.DB)
	clientController := controllers.NewClientController(deps.DB)
	articleController := controllers.NewArticleController(deps.DB)
	invoiceController := controllers.NewInvoiceController(deps.DB, deps.Logger)
	dashboardController := controllers.NewDashboardController(services.NewDashboardService(deps.DB), deps.Logger)

	api := r.Group("/api")
	{
		api.POST("/register", authController.Register)
		api.POST("/register-check-user-data", authController.CheckUserData)
		api.POST("/login", authController.Login)
	}

	protected := api.Group("")
	protected.Use(utils.AuthMiddleware(deps.Tokens, deps.DB))
	{
		protected.POST("/logout", authController.Logout)
		protected.GET("/user", authController.Me)

		profile := protected.Group("/profile")
		{
			profile.PUT("/personal", profileController.UpdatePersonal)
			profile.PUT("/company", profileController.UpdateCompany)
			profile.PUT("/password", profileController.ChangePassword)
		}

		protected.GET("/dashboard", dashboardController.GetDashboard)

		clients := protected.Group("/clients")
		{
			clients.GET("", clientController.List)
			clients.POST("", clientController.Create)
			clients.GET("/:id", clientController.Show)
			clients.PUT("/:id", clientController.Update)
			clients.DELETE("/:id", clientController.Delete)
		}

		articles := protected.Group("/articles")
		{
			articles.GET("", articleController.List)
			articles.POST("", articleController.Create)
			articles.GET("/:id", articleController.Show)
			articles.PUT("/:id", articleController.Update)
			articles.DELETE("/:id", articleController.Delete)
		}

		// Sales stay off unless explicitly enabled
		if deps.Config.Features.SalesAPI {
			saleController := controllers.NewSaleController(services.NewSaleService(deps.DB, deps.Logger))
			sales := protected.Group("/sales")
			{
				sales.GET("", saleController.List)
				sales.POST("", saleController.Create)
				sales.GET("/:id", saleController.Show)
				sales.PUT("/:id", saleController.Update)
				sales.DELETE("/:id", saleController.Delete)
			}
		}

		invoices := protected.Group("/invoices")
		{
			invoices.GET("", invoiceController.List)
			invoices.POST("", invoiceController.Create)
			invoices.GET("/:id", invoiceController.Show)
			invoices.PUT("/:id", invoiceController.Update)
			invoices.DELETE("/:id", invoiceController.Delete)
		}
	}

	return r
}
