package main

import (
	"context"
	"log"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/Jaybeey1507/cartify-group3/internal/admin"
	"github.com/Jaybeey1507/cartify-group3/internal/alerts"
	"github.com/Jaybeey1507/cartify-group3/internal/auth"
	"github.com/Jaybeey1507/cartify-group3/internal/cart"
	"github.com/Jaybeey1507/cartify-group3/internal/catalog"
	"github.com/Jaybeey1507/cartify-group3/internal/config"
	"github.com/Jaybeey1507/cartify-group3/internal/db"
	"github.com/Jaybeey1507/cartify-group3/internal/dispute"
	"github.com/Jaybeey1507/cartify-group3/internal/metrics"
	mware "github.com/Jaybeey1507/cartify-group3/internal/middleware"
	"github.com/Jaybeey1507/cartify-group3/internal/order"
	"github.com/Jaybeey1507/cartify-group3/internal/review"
	"github.com/Jaybeey1507/cartify-group3/internal/settlement"
	"github.com/Jaybeey1507/cartify-group3/internal/user"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer logger.Sync()

	db.Init(cfg.DatabaseURL)
	alerts.Init(cfg.RedisAddr)
	defer alerts.Close()

	engine := settlement.NewEngine(settlement.NewPGStore(db.Conn), logger)
	order.Init(engine)
	dispute.Init(engine)

	e := echo.New()
	e.HideBanner = true

	e.Use(middleware.Recover())
	e.Use(middleware.Logger())

	// Health and readiness
	e.GET("/", func(c echo.Context) error {
		return c.JSON(http.StatusOK, echo.Map{"status": "ok", "service": "cartify"})
	})
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, echo.Map{"status": "ok"})
	})
	e.GET("/ready", func(c echo.Context) error {
		if db.Conn == nil {
			return c.JSON(http.StatusServiceUnavailable, echo.Map{"status": "not_ready", "error": "db not initialized"})
		}
		if err := db.Conn.Ping(context.Background()); err != nil {
			return c.JSON(http.StatusServiceUnavailable, echo.Map{"status": "not_ready", "error": "db unreachable"})
		}
		return c.JSON(http.StatusOK, echo.Map{"status": "ready"})
	})
	e.GET("/metrics", echo.WrapHandler(metrics.Handler()))

	// Public routes
	// Auth routes with per-IP rate limiting to protect signup/login from abuse
	authGroup := e.Group("/api/users")
	authGroup.Use(middleware.RateLimiter(middleware.NewRateLimiterMemoryStore(20)))
	authGroup.POST("/register", auth.Register)
	authGroup.POST("/login", auth.Login)

	e.GET("/api/users/:id/profile", user.GetPublicProfile)

	e.GET("/api/products", catalog.ListProducts)
	e.GET("/api/products/low-stock", catalog.ListLowStock)
	e.GET("/api/products/category/:category", catalog.ListByCategory)
	e.GET("/api/products/:id", catalog.GetProduct)
	e.GET("/api/reviews/product/:productId", review.ListForProduct)

	// Protected routes
	api := e.Group("/api")
	api.Use(mware.JWTMiddleware)

	api.GET("/users/me", auth.Me)
	api.PUT("/users/me", user.UpdateProfile)

	api.POST("/products", catalog.CreateProduct, mware.RequireRoles("seller"))
	api.GET("/products/seller/mine", catalog.ListMine, mware.RequireRoles("seller"))
	api.PUT("/products/:id", catalog.UpdateProduct, mware.RequireRoles("seller"))
	api.DELETE("/products/:id", catalog.DeleteProduct, mware.RequireRoles("seller", "admin"))

	api.POST("/cart/add", cart.AddItem, mware.RequireRoles("buyer"))
	api.GET("/cart", cart.GetCart, mware.RequireRoles("buyer"))
	api.PUT("/cart/update/:productId", cart.UpdateQuantity, mware.RequireRoles("buyer"))
	api.DELETE("/cart/remove/:productId", cart.RemoveItem, mware.RequireRoles("buyer"))

	api.POST("/orders/place", order.Place, mware.RequireRoles("buyer"))
	api.GET("/orders/all", order.ListAll, mware.RequireRoles("admin", "seller"))
	api.GET("/orders/by-product", order.SalesByProduct, mware.RequireRoles("seller"))
	api.GET("/orders/seller/summary", order.SellerSummary, mware.RequireRoles("seller"))
	api.GET("/orders/seller/orders", order.SellerOrders, mware.RequireRoles("seller"))
	api.GET("/orders/user/:userId", order.ListUserOrders)
	api.GET("/orders/:orderId", order.GetOrder)
	api.PUT("/orders/:orderId", order.EditShipping, mware.RequireRoles("buyer"))
	api.PUT("/orders/:orderId/status", order.UpdateStatus)

	api.POST("/reviews", review.Create)
	api.PUT("/reviews/:reviewId", review.Update)
	api.DELETE("/reviews/:reviewId", review.Delete)

	api.POST("/disputes", dispute.Open)
	api.GET("/disputes/mine", dispute.ListMine)

	api.GET("/notifications", alerts.ListNotifications)
	api.POST("/notifications/:id/read", alerts.MarkNotificationRead)

	// Admin routes
	adminGroup := e.Group("/api/admin")
	adminGroup.Use(mware.JWTMiddleware)
	adminGroup.Use(mware.AdminGuard)

	adminGroup.GET("/stats", admin.Stats)
	adminGroup.GET("/users", user.ListUsers)
	adminGroup.GET("/users/role/:role", user.ListUsersByRole)
	adminGroup.PUT("/users/:id", admin.UpdateUser)
	adminGroup.POST("/users/:id/balance", admin.UpdateBalance)
	adminGroup.DELETE("/users/:id", admin.DeleteUser)
	adminGroup.PUT("/orders/:orderId/payout-status", order.PayoutStatus)
	adminGroup.GET("/disputes", dispute.ListAll)
	adminGroup.PUT("/disputes/:id/resolve", dispute.Resolve)

	logger.Info("starting server", zap.String("port", cfg.Port))
	if err := e.Start(":" + cfg.Port); err != nil {
		logger.Fatal("server error", zap.Error(err))
	}
}
