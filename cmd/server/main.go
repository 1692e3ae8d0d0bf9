package main

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"senorito-pos/config"
	"senorito-pos/internal/database"
	"senorito-pos/internal/httpapi"
	"senorito-pos/internal/inventory"
	"senorito-pos/internal/orders"
	"senorito-pos/internal/purchasing"
	"senorito-pos/internal/shifts"
	"senorito-pos/internal/thirdparty"
)

func main() {
	cfg := config.LoadConfig()

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer logger.Sync()

	db, err := database.NewConnection(cfg.DB.DSN())
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	rdb := config.NewRedisClient(cfg.Redis)
	defer rdb.Close()

	secret := []byte(cfg.Auth.JWTSecret)
	tokenTTL := time.Duration(cfg.Auth.TokenTTL) * time.Hour

	inventorySvc := inventory.NewService(db, logger)
	orderSvc := orders.NewService(db, rdb, logger)
	purchasingSvc := purchasing.NewService(db, rdb, logger)
	shiftSvc := shifts.NewService(db, logger)
	thirdPartySvc := thirdparty.NewService(db, logger)

	authHandler := httpapi.NewAuthHandler(db, secret, tokenTTL, logger)
	orderHandler := httpapi.NewOrderHandler(orderSvc)
	inventoryHandler := httpapi.NewInventoryHandler(inventorySvc)
	purchasingHandler := httpapi.NewPurchasingHandler(purchasingSvc)
	shiftHandler := httpapi.NewShiftHandler(shiftSvc)
	thirdPartyHandler := httpapi.NewThirdPartyHandler(thirdPartySvc)

	r := gin.Default()

	r.Use(httpapi.CORS())
	r.Use(gin.Logger())
	r.Use(gin.Recovery())
	r.Use(httpapi.RateLimit())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})

	// --- Public API Group ---
	public := r.Group("/api/v1")
	{
		auth := public.Group("/auth")
		{
			auth.POST("/login", authHandler.Login)
		}
	}

	// --- Protected API Group ---
	protected := r.Group("/api/v1")
	protected.Use(httpapi.JWTAuth(secret))
	{
		ordersGroup := protected.Group("/orders")
		{
			ordersGroup.POST("", orderHandler.Create)
			ordersGroup.GET("", orderHandler.History)
			ordersGroup.GET("/:id", orderHandler.Get)
			ordersGroup.POST("/:id/void", orderHandler.Void)
		}

		protected.GET("/catalog", orderHandler.Catalog)

		inventoryGroup := protected.Group("/inventory")
		{
			inventoryGroup.POST("", inventoryHandler.Create)
			inventoryGroup.GET("", inventoryHandler.List)
			inventoryGroup.GET("/valuation", inventoryHandler.Valuation)
			inventoryGroup.GET("/audit", inventoryHandler.AuditLog)
			inventoryGroup.POST("/bulk-restock", inventoryHandler.BulkRestock)
			inventoryGroup.POST("/bulk-reorder-level", inventoryHandler.BulkSetReorderLevel)
			inventoryGroup.GET("/:id", inventoryHandler.Get)
			inventoryGroup.PUT("/:id", inventoryHandler.Update)
			inventoryGroup.DELETE("/:id", inventoryHandler.Deactivate)
			inventoryGroup.POST("/:id/actions", inventoryHandler.LogAction)
			inventoryGroup.GET("/:id/history", inventoryHandler.ItemHistory)
		}

		poGroup := protected.Group("/purchase-orders")
		{
			poGroup.POST("", purchasingHandler.Create)
			poGroup.GET("", purchasingHandler.List)
			poGroup.GET("/:id", purchasingHandler.Get)
			poGroup.POST("/:id/order", purchasingHandler.MarkOrdered)
			poGroup.POST("/:id/receive", purchasingHandler.Receive)
			poGroup.POST("/:id/cancel", purchasingHandler.Cancel)
			poGroup.POST("/:id/expense", purchasingHandler.CreateExpense)
		}

		shiftGroup := protected.Group("/shifts")
		{
			shiftGroup.POST("", shiftHandler.Start)
			shiftGroup.GET("/current", shiftHandler.Current)
			shiftGroup.POST("/:id/end", shiftHandler.End)
			shiftGroup.GET("/:id/summary", shiftHandler.Summary)
		}

		salesGroup := protected.Group("/third-party-sales")
		{
			salesGroup.POST("", thirdPartyHandler.Create)
			salesGroup.GET("", thirdPartyHandler.ListMonth)
			salesGroup.DELETE("/:id", thirdPartyHandler.Delete)
		}
	}

	logger.Info("server starting", zap.String("port", cfg.Server.Port))
	if err := r.Run(":" + cfg.Server.Port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
