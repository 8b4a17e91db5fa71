package router

import (
	"fmt"
	"sort"
	"strings"

	"github.com/boxmart-next/internal/authz"
	"github.com/boxmart-next/internal/cache"
	"github.com/boxmart-next/internal/config"
	adminhandlers "github.com/boxmart-next/internal/http/handlers/admin"
	publichandlers "github.com/boxmart-next/internal/http/handlers/public"
	"github.com/boxmart-next/internal/http/response"
	"github.com/boxmart-next/internal/logger"
	"github.com/boxmart-next/internal/provider"

	"github.com/gin-gonic/gin"
)

// SetupRouter 初始化路由
func SetupRouter(cfg *config.Config, c *provider.Container) *gin.Engine {
	log := logger.L
	if log == nil {
		log = logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	}
	r := gin.New()

	// 初始化 Handler（按前台/后台分组）
	publicHandler := publichandlers.New(c)
	adminHandler := adminhandlers.New(c)
	redisPrefix := strings.TrimSpace(cfg.Redis.Prefix)
	if redisPrefix == "" {
		redisPrefix = "bx"
	}
	redisClient := cache.Client()
	loginRule := RateLimitRule{
		Name:          "login",
		Prefix:        fmt.Sprintf("%s:rate:login", redisPrefix),
		WindowSeconds: cfg.Security.LoginRateLimit.WindowSeconds,
		MaxRequests:   cfg.Security.LoginRateLimit.MaxRequests,
		MessageKey:    "error.login_too_many",
	}
	registerRule := RateLimitRule{
		Name:          "register",
		Prefix:        fmt.Sprintf("%s:rate:register", redisPrefix),
		WindowSeconds: cfg.Security.LoginRateLimit.WindowSeconds,
		MaxRequests:   cfg.Security.LoginRateLimit.MaxRequests,
	}
	checkoutRule := RateLimitRule{
		Name:          "checkout",
		Prefix:        fmt.Sprintf("%s:rate:checkout", redisPrefix),
		WindowSeconds: cfg.Security.CheckoutRateLimit.WindowSeconds,
		MaxRequests:   cfg.Security.CheckoutRateLimit.MaxRequests,
		MessageKey:    "error.checkout_too_many",
	}
	paymentLinkRule := RateLimitRule{
		Name:          "payment_link",
		Prefix:        fmt.Sprintf("%s:rate:payment_link", redisPrefix),
		WindowSeconds: cfg.Security.CheckoutRateLimit.WindowSeconds,
		MaxRequests:   cfg.Security.CheckoutRateLimit.MaxRequests,
		MessageKey:    "error.payment_link_too_many",
	}

	// 中间件
	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(LoggerMiddleware(log))
	r.Use(CORSMiddleware(cfg.CORS))

	// PayOS 回调（验签后处理，不走 JWT）
	r.POST("/api/payos/webhook", publicHandler.PayOSWebhook)

	// API 路由组
	apiV1 := r.Group("/api/v1")
	{
		// 公开接口
		apiV1.GET("/box-types", publicHandler.ListBoxTypes)
		apiV1.GET("/box-types/:id", publicHandler.GetBoxType)
		apiV1.GET("/box-types/:id/reviews", publicHandler.ListBoxTypeReviews)
		apiV1.GET("/subscriptions/quote", publicHandler.QuoteSubscription)
		apiV1.POST("/ai/recipes", publicHandler.GenerateRecipe)
		apiV1.POST("/ai/greetings", publicHandler.GenerateGreeting)

		// 用户认证接口
		auth := apiV1.Group("/auth")
		{
			auth.POST("/register", RateLimitMiddleware(redisClient, registerRule, KeyByIP), publicHandler.Register)
			auth.POST("/login", RateLimitMiddleware(redisClient, loginRule, KeyByIPAndJSONField("email")), publicHandler.Login)
		}

		// 用户接口（需鉴权）
		user := apiV1.Group("")
		user.Use(JWTAuthMiddleware(c.UserAuthService))
		{
			user.GET("/me", publicHandler.GetMe)
			user.PUT("/me", publicHandler.UpdateMe)
			user.PUT("/me/password", publicHandler.ChangePassword)

			user.GET("/cart", publicHandler.GetCart)
			user.POST("/cart/items", publicHandler.AddCartItem)
			user.PUT("/cart/items/:itemId", publicHandler.UpdateCartItem)
			user.DELETE("/cart/items/:itemId", publicHandler.RemoveCartItem)
			user.DELETE("/cart", publicHandler.ClearCart)

			user.POST("/checkout", RateLimitMiddleware(redisClient, checkoutRule, KeyByUser), publicHandler.Checkout)
			user.POST("/discounts/preview", publicHandler.PreviewDiscount)
			user.GET("/orders", publicHandler.ListOrders)
			user.GET("/orders/:id", publicHandler.GetOrder)
			user.POST("/orders/:id/cancel", publicHandler.CancelOrder)

			user.POST("/payments/payos/link", RateLimitMiddleware(redisClient, paymentLinkRule, KeyByUserAndOrder), publicHandler.CreatePaymentLink)
			user.GET("/payments/payos/link/:orderId", publicHandler.GetPaymentLink)

			user.POST("/subscriptions", publicHandler.CreateSubscription)
			user.GET("/subscriptions", publicHandler.ListSubscriptions)
			user.GET("/subscriptions/:id", publicHandler.GetSubscription)
			user.POST("/subscriptions/:id/renew", publicHandler.RenewSubscription)
			user.POST("/subscriptions/:id/cancel", publicHandler.CancelSubscription)
			user.PUT("/subscriptions/:id/schedules/:scheduleId/pause", publicHandler.SetDeliveryPaused)

			user.POST("/reviews", publicHandler.CreateReview)
		}

		// 管理接口（staff / admin，按角色鉴权）
		admin := apiV1.Group("/admin")
		admin.Use(JWTAuthMiddleware(c.UserAuthService), RBACMiddleware(c.AuthzService))
		{
			// 盒子品类
			admin.GET("/box-types", adminHandler.GetAdminBoxTypes)
			admin.GET("/box-types/:id", adminHandler.GetAdminBoxType)
			admin.POST("/box-types", adminHandler.CreateBoxType)
			admin.PUT("/box-types/:id", adminHandler.UpdateBoxType)
			admin.DELETE("/box-types/:id", adminHandler.DeleteBoxType)

			// 折扣码
			admin.GET("/discounts", adminHandler.GetAdminDiscounts)
			admin.GET("/discounts/:id", adminHandler.GetAdminDiscount)
			admin.POST("/discounts", adminHandler.CreateDiscount)
			admin.PUT("/discounts/:id", adminHandler.UpdateDiscount)
			admin.DELETE("/discounts/:id", adminHandler.DeleteDiscount)

			// 订单管理
			admin.GET("/orders", adminHandler.AdminListOrders)
			admin.GET("/orders/:id", adminHandler.AdminGetOrder)
			admin.POST("/orders/batch-status", adminHandler.AdminBatchUpdateOrderStatus)
			admin.POST("/orders/:id/mark-paid", adminHandler.AdminMarkOrderPaid)

			// 订阅与配送
			admin.GET("/subscriptions", adminHandler.GetAdminSubscriptions)
			admin.POST("/subscriptions/:id/schedules/:scheduleId/deliver", adminHandler.MarkScheduleDelivered)

			// 评价
			admin.GET("/reviews", adminHandler.GetAdminReviews)
			admin.DELETE("/reviews/:id", adminHandler.DeleteReview)

			// 用户管理
			admin.GET("/users", adminHandler.GetAdminUsers)
			admin.PUT("/users/:id/role", adminHandler.UpdateAdminUserRole)

			// 权限管理
			admin.GET("/authz/policies", adminHandler.ListRolePolicies)
			admin.POST("/authz/policies", adminHandler.GrantRolePolicy)
			admin.DELETE("/authz/policies", adminHandler.RevokeRolePolicy)
			admin.GET("/authz/permission-catalog", func(ctx *gin.Context) {
				response.Success(ctx, buildAdminPermissionCatalog(r))
			})
		}
	}

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	return r
}

type adminPermissionCatalogItem struct {
	Module     string `json:"module"`
	Method     string `json:"method"`
	Object     string `json:"object"`
	Permission string `json:"permission"`
}

// buildAdminPermissionCatalog 列出可授权的管理端接口，供角色策略配置使用
func buildAdminPermissionCatalog(engine *gin.Engine) []adminPermissionCatalogItem {
	if engine == nil {
		return []adminPermissionCatalogItem{}
	}

	routes := engine.Routes()
	seen := make(map[string]struct{}, len(routes))
	items := make([]adminPermissionCatalogItem, 0, len(routes))
	for _, item := range routes {
		method := strings.ToUpper(strings.TrimSpace(item.Method))
		if method == "" || method == "OPTIONS" || method == "HEAD" {
			continue
		}
		if !strings.HasPrefix(item.Path, "/api/v1/admin/") {
			continue
		}
		object := authz.NormalizeObject(item.Path)
		permission := method + ":" + object
		if _, exists := seen[permission]; exists {
			continue
		}
		seen[permission] = struct{}{}
		items = append(items, adminPermissionCatalogItem{
			Module:     deriveAdminPermissionModule(object),
			Method:     method,
			Object:     object,
			Permission: permission,
		})
	}

	sort.Slice(items, func(i, j int) bool {
		if items[i].Module == items[j].Module {
			if items[i].Object == items[j].Object {
				return items[i].Method < items[j].Method
			}
			return items[i].Object < items[j].Object
		}
		return items[i].Module < items[j].Module
	})
	return items
}

func deriveAdminPermissionModule(object string) string {
	normalized := strings.TrimPrefix(strings.TrimSpace(object), "/")
	if normalized == "" {
		return "system"
	}
	segments := strings.Split(normalized, "/")
	if len(segments) <= 1 || segments[0] != "admin" {
		return segments[0]
	}
	return segments[1]
}
