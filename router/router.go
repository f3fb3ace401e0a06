package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/taqueria-app/config"
	"github.com/yeremiapane/taqueria-app/controllers"
	"github.com/yeremiapane/taqueria-app/middlewares"
	"github.com/yeremiapane/taqueria-app/models"
	"github.com/yeremiapane/taqueria-app/services"
	"github.com/yeremiapane/taqueria-app/utils"
	"gorm.io/gorm"
)

func SetupRouter(db *gorm.DB, cfg *config.Config) *gin.Engine {
	utils.ConfigureTokens(cfg.JWTSecret, cfg.TokenTTL)
	utils.RegisterValidators()

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middlewares.LoggerMiddleware())
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddlewares(cfg.CORSOrigins))
	r.Use(middlewares.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst).Limit())

	// Services
	audit := services.NewAuditRecorder(db)
	kitchens := services.NewKitchenRegistry(db, audit)
	pairings := services.NewPairingService(db, kitchens, audit)
	orders := services.NewOrderService(db, kitchens, pairings, audit)
	users := services.NewUserService(db, audit)
	catalog := services.NewCatalogService(db)
	admin := services.NewAdminService(db, audit)

	// Controllers
	userCtrl := controllers.NewUserController(users)
	kitchenCtrl := controllers.NewKitchenController(kitchens, orders)
	pairingCtrl := controllers.NewPairingController(pairings)
	orderCtrl := controllers.NewOrderController(orders)
	menuCtrl := controllers.NewMenuController(catalog)
	tableCtrl := controllers.NewTableController(catalog)
	adminCtrl := controllers.NewAdminController(admin, audit)

	// ----------------------------------------------------------------
	//                      PUBLIC ROUTES
	// ----------------------------------------------------------------
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	public := r.Group("/")
	if cfg.AuthRateLimit > 0 {
		public.Use(middlewares.NewStrictRateLimiter(cfg.AuthRateLimit).Limit())
	}
	{
		public.POST("/register", userCtrl.Register)
		public.POST("/login", userCtrl.Login)
	}

	// ----------------------------------------------------------------
	//                      AUTHENTICATED ROUTES
	// ----------------------------------------------------------------
	api := r.Group("/api")
	api.Use(middlewares.AuthMiddleware(users))
	{
		api.POST("/logout", userCtrl.Logout)
		api.GET("/profile", userCtrl.GetProfile)
		api.GET("/products", menuCtrl.GetProducts)
		api.GET("/tables", tableCtrl.GetAllTables)
		api.GET("/orders/:order_id", orderCtrl.GetOrder)
		api.GET("/orders/:order_id/items", orderCtrl.GetOrderItems)

		kitchen := api.Group("/kitchen")
		kitchen.Use(middlewares.RequireRoles(models.RoleKitchen))
		{
			kitchen.GET("/code", kitchenCtrl.GetCode)
			kitchen.GET("/orders", kitchenCtrl.GetPendingOrders)
			kitchen.POST("/orders/:order_id/serve", kitchenCtrl.MarkServed)
		}

		waiter := api.Group("/waiter")
		waiter.Use(middlewares.RequireRoles(models.RoleWaiter))
		{
			waiter.POST("/link", pairingCtrl.Link)
			waiter.POST("/unlink", pairingCtrl.Unlink)
			waiter.GET("/link", pairingCtrl.Current)
			waiter.POST("/orders", orderCtrl.CreateOrder)
			waiter.GET("/orders", orderCtrl.GetWaiterOrders)
			waiter.POST("/items", orderCtrl.AddItem)
			waiter.POST("/orders/:order_id/submit", orderCtrl.SubmitOrder)
			waiter.POST("/orders/:order_id/cancel", orderCtrl.CancelOrder)
		}

		cashier := api.Group("/cashier")
		cashier.Use(middlewares.RequireRoles(models.RoleCashier))
		{
			cashier.POST("/link", pairingCtrl.Link)
			cashier.POST("/unlink", pairingCtrl.Unlink)
			cashier.GET("/link", pairingCtrl.Current)
			cashier.GET("/orders", orderCtrl.GetCashierOrders)
			cashier.POST("/orders/:order_id/close", orderCtrl.CloseOrder)
		}

		admin := api.Group("/admin")
		admin.Use(middlewares.RequireRoles(models.RoleAdmin))
		{
			admin.GET("/audit-logs", adminCtrl.GetAuditLogs)
			admin.GET("/entities/:entity", adminCtrl.ListEntities)
			admin.POST("/entities/:entity", adminCtrl.CreateEntity)
			admin.GET("/entities/:entity/:id", adminCtrl.GetEntity)
			admin.PUT("/entities/:entity/:id", adminCtrl.UpdateEntity)
			admin.DELETE("/entities/:entity/:id", adminCtrl.DeleteEntity)
		}
	}

	return r
}
