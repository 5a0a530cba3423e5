package router

import (
	"fmt"
	"strings"

	"github.com/orderdesk-next/internal/cache"
	"github.com/orderdesk-next/internal/config"
	adminhandlers "github.com/orderdesk-next/internal/http/handlers/admin"
	publichandlers "github.com/orderdesk-next/internal/http/handlers/public"
	"github.com/orderdesk-next/internal/logger"
	"github.com/orderdesk-next/internal/provider"

	"github.com/gin-gonic/gin"
)

// SetupRouter 初始化路由
func SetupRouter(cfg *config.Config, c *provider.Container) *gin.Engine {
	log := logger.L
	if log == nil {
		log = logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	}
	r := gin.New()

	// 初始化 Handler（按公开/后台分组）
	publicHandler := publichandlers.New(c)
	adminHandler := adminhandlers.New(c)
	redisPrefix := strings.TrimSpace(cfg.Redis.Prefix)
	if redisPrefix == "" {
		redisPrefix = "od"
	}
	redisClient := cache.Client()
	loginRule := RateLimitRule{
		Prefix:        fmt.Sprintf("%s:rate:login", redisPrefix),
		WindowSeconds: cfg.Security.LoginRateLimit.WindowSeconds,
		MaxRequests:   cfg.Security.LoginRateLimit.MaxAttempts,
		BlockSeconds:  cfg.Security.LoginRateLimit.BlockSeconds,
		Message:       "too many login attempts",
	}

	// 中间件
	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(LoggerMiddleware(log))
	r.Use(CORSMiddleware(cfg.CORS))

	// API 路由组
	apiV1 := r.Group("/api/v1")
	{
		// 机器端点（无会话）
		apiV1.POST("/payments/webhook/stripe", publicHandler.StripeWebhook)
		apiV1.POST("/cron/refresh-tracking", publicHandler.CronRefreshTracking)

		// 后台接口
		admin := apiV1.Group("/admin")
		{
			// 登录接口（无需鉴权）
			admin.POST("/login", RateLimitMiddleware(redisClient, loginRule, KeyByIP), adminHandler.StaffLogin)

			// 需要鉴权的接口
			authorized := admin.Use(JWTAuthMiddleware(c.AuthService))
			{
				// 订单管理
				authorized.GET("/orders", adminHandler.AdminListOrders)
				authorized.POST("/orders", adminHandler.AdminCreateOrder)
				authorized.GET("/orders/:id", adminHandler.AdminGetOrder)
				authorized.PATCH("/orders/:id", adminHandler.AdminUpdateOrder)
				authorized.PUT("/orders/:id/paid", adminHandler.AdminSetOrderPaid)
				authorized.PUT("/orders/:id/ok-to-ship", adminHandler.AdminSetOrderOkToShip)
				authorized.POST("/orders/batch-delete", adminHandler.AdminBulkDeleteOrders)
				authorized.GET("/orders/:id/activities", adminHandler.AdminListOrderActivities)

				// 面单与物流
				authorized.POST("/orders/:id/label", adminHandler.AdminCreateLabel)
				authorized.POST("/orders/:id/return-label", adminHandler.AdminCreateReturnLabel)
				authorized.POST("/orders/:id/label/upgrade", adminHandler.AdminUpgradeLabel)
				authorized.POST("/orders/:id/refresh-tracking", adminHandler.AdminRefreshOrderTracking)
				authorized.POST("/orders/refresh-tracking", adminHandler.AdminRefreshTrackingBatch)

				// 客户管理
				authorized.GET("/customers", adminHandler.AdminListCustomers)
				authorized.POST("/customers", adminHandler.AdminCreateCustomer)
				authorized.GET("/customers/:id", adminHandler.AdminGetCustomer)
				authorized.PUT("/customers/:id", adminHandler.AdminUpdateCustomer)

				// 包裹目录
				authorized.GET("/packs", adminHandler.AdminListPacks)
				authorized.POST("/packs", adminHandler.AdminCreatePack)
				authorized.PUT("/packs/:id", adminHandler.AdminUpdatePack)
				authorized.DELETE("/packs/:id", adminHandler.AdminDeletePack)

				// 运输方式
				authorized.GET("/shipping-methods", adminHandler.AdminListShippingMethods)

				// 功能需求
				authorized.GET("/feature-requests", adminHandler.AdminListFeatureRequests)
				authorized.POST("/feature-requests", adminHandler.AdminCreateFeatureRequest)
				authorized.PUT("/feature-requests/:id", adminHandler.AdminUpdateFeatureRequest)
				authorized.DELETE("/feature-requests/:id", adminHandler.AdminDeleteFeatureRequest)

				// webhook 事件审计
				authorized.GET("/stripe-events", adminHandler.AdminListStripeEvents)
			}
		}
	}

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	return r
}
