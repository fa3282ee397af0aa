package router

import (
	"fmt"
	"sort"
	"strings"

	"github.com/luxdecor-shop/internal/authz"
	"github.com/luxdecor-shop/internal/cache"
	"github.com/luxdecor-shop/internal/config"
	adminhandlers "github.com/luxdecor-shop/internal/http/handlers/admin"
	cataloghandlers "github.com/luxdecor-shop/internal/http/handlers/catalog"
	publichandlers "github.com/luxdecor-shop/internal/http/handlers/public"
	"github.com/luxdecor-shop/internal/logger"
	"github.com/luxdecor-shop/internal/metrics"
	"github.com/luxdecor-shop/internal/provider"

	"github.com/gin-gonic/gin"
)

// SetupRouter 初始化路由
func SetupRouter(cfg *config.Config, c *provider.Container) *gin.Engine {
	log := logger.L
	if log == nil {
		log = logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	}
	r := gin.New()

	publicHandler := publichandlers.New(c)
	adminHandler := adminhandlers.New(c)
	catalogHandler := cataloghandlers.New(c)

	redisPrefix := strings.TrimSpace(cfg.Redis.Prefix)
	if redisPrefix == "" {
		redisPrefix = "lx"
	}
	redisClient := cache.Client()
	placeOrderRule := NewRateLimitRule(fmt.Sprintf("%s:rate:place_order", redisPrefix), cfg.RateLimit.PlaceOrder)
	callbackRule := NewRateLimitRule(fmt.Sprintf("%s:rate:vnpay_callback", redisPrefix), cfg.RateLimit.Callback)

	// 中间件
	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(LoggerMiddleware(log))
	r.Use(CORSMiddleware(cfg.CORS))
	if cfg.Metrics.Enabled {
		r.Use(MetricsMiddleware())
	}

	auth := AuthMiddleware(c.TokenManager)
	permission := RequirePermission(c.AuthzService)

	api := r.Group("/api")
	{
		carts := api.Group("/carts", auth)
		{
			carts.POST("/add", publicHandler.AddToCart)
			carts.GET("/my-cart", publicHandler.GetMyCart)
			carts.DELETE("/remove/:productId", publicHandler.RemoveFromCart)
		}

		orders := api.Group("/orders", auth)
		{
			orders.POST("/place", RateLimitMiddleware(redisClient, placeOrderRule, KeyByIdentity), publicHandler.PlaceOrder)
			orders.GET("/history", publicHandler.GetOrderHistory)

			// 管理端接口与订单详情共享前缀，静态段优先匹配
			orders.GET("/admin", permission, adminHandler.AdminListOrders)
			orders.PUT("/admin/:orderId/status", permission, adminHandler.AdminUpdateOrderStatus)
			orders.GET("/stats", permission, adminHandler.AdminOrderStats)
			orders.GET("/revenue-chart", permission, adminHandler.AdminRevenueChart)

			orders.GET("/:orderId", publicHandler.GetOrder)
			orders.PUT("/:orderId/cancel", publicHandler.CancelOrder)
		}

		products := api.Group("/products")
		{
			products.GET("/:id", catalogHandler.GetProduct)
			products.PUT("/reduce-stock", auth, permission, catalogHandler.ReduceStock)
			products.PUT("/restore-stock", auth, permission, catalogHandler.RestoreStock)
		}
	}

	payment := r.Group("/payment")
	{
		payment.GET("/create_payment", auth, publicHandler.CreatePayment)
		payment.GET("/vnpay-callback", RateLimitMiddleware(redisClient, callbackRule, KeyByIPAndQuery("vnp_TxnRef")), publicHandler.VNPayCallback)
	}

	// 健康检查
	r.GET("/healthz", func(ctx *gin.Context) {
		ctx.JSON(200, gin.H{"status": "ok"})
	})
	if cfg.Metrics.Enabled {
		r.GET("/metrics", gin.WrapH(metrics.Handler()))
	}

	return r
}

type permissionCatalogItem struct {
	Method     string `json:"method"`
	Object     string `json:"object"`
	Permission string `json:"permission"`
}

// buildPermissionCatalog 列出需要角色授权的路由，用于核对预置策略是否完整
func buildPermissionCatalog(engine *gin.Engine) []permissionCatalogItem {
	if engine == nil {
		return []permissionCatalogItem{}
	}

	routes := engine.Routes()
	seen := make(map[string]struct{}, len(routes))
	items := make([]permissionCatalogItem, 0, len(routes))

	for _, item := range routes {
		method := strings.ToUpper(strings.TrimSpace(item.Method))
		if method == "" || method == "OPTIONS" || method == "HEAD" {
			continue
		}
		if !isPermissionProtected(item.Path) {
			continue
		}
		object := authz.NormalizeObject(item.Path)
		permission := method + ":" + object
		if _, exists := seen[permission]; exists {
			continue
		}
		seen[permission] = struct{}{}
		items = append(items, permissionCatalogItem{
			Method:     method,
			Object:     object,
			Permission: permission,
		})
	}

	sort.Slice(items, func(i, j int) bool {
		if items[i].Object == items[j].Object {
			return items[i].Method < items[j].Method
		}
		return items[i].Object < items[j].Object
	})
	return items
}

func isPermissionProtected(path string) bool {
	switch path {
	case "/api/orders/stats", "/api/orders/revenue-chart",
		"/api/products/reduce-stock", "/api/products/restore-stock":
		return true
	}
	return strings.HasPrefix(path, "/api/orders/admin")
}
