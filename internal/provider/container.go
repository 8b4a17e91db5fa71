package provider

import (
	"time"

	"github.com/boxmart-next/internal/ai"
	"github.com/boxmart-next/internal/authz"
	"github.com/boxmart-next/internal/cache"
	"github.com/boxmart-next/internal/config"
	"github.com/boxmart-next/internal/logger"
	"github.com/boxmart-next/internal/models"
	"github.com/boxmart-next/internal/queue"
	"github.com/boxmart-next/internal/repository"
	"github.com/boxmart-next/internal/service"
)

// Container 依赖注入容器
type Container struct {
	Config      *config.Config
	QueueClient *queue.Client
	Store       cache.Store

	// Repositories
	UserRepo           repository.UserRepository
	BoxTypeRepo        repository.BoxTypeRepository
	OrderRepo          repository.OrderRepository
	DiscountRepo       repository.DiscountRepository
	UserDiscountRepo   repository.UserDiscountRepository
	SubscriptionRepo   repository.SubscriptionRepository
	ReviewRepo         repository.ReviewRepository
	PaymentWebhookRepo repository.PaymentWebhookEventRepository

	// Services
	AuthzService        *authz.Service
	UserAuthService     *service.UserAuthService
	EmailService        *service.EmailService
	NotificationService *service.NotificationService
	BoxTypeService      *service.BoxTypeService
	DiscountService     *service.DiscountService
	CartService         *service.CartService
	OrderService        *service.OrderService
	PaymentService      *service.PaymentService
	SubscriptionService *service.SubscriptionService
	ReviewService       *service.ReviewService
	AIService           *ai.Service
}

// NewContainer 初始化容器
func NewContainer(cfg *config.Config) *Container {
	// 初始化缓存，Redis 不可用时退化为进程内存储
	if err := cache.InitRedis(&cfg.Redis); err != nil {
		logger.Warnw("provider_init_redis_failed", "error", err)
	}

	// 初始化队列客户端
	var queueClient *queue.Client
	if cfg.Queue.Enabled {
		qc, err := queue.NewClient(&cfg.Queue)
		if err != nil {
			logger.Errorw("provider_init_queue_client_failed", "error", err)
		} else {
			queueClient = qc
		}
	}

	c := &Container{
		Config:      cfg,
		QueueClient: queueClient,
		Store:       cache.NewStore(),
	}

	// 1. 初始化 Repositories
	c.initRepositories()

	// 2. 初始化 Services
	c.initServices()

	return c
}

func (c *Container) initRepositories() {
	db := models.DB
	c.UserRepo = repository.NewUserRepository(db)
	c.BoxTypeRepo = repository.NewBoxTypeRepository(db)
	c.OrderRepo = repository.NewOrderRepository(db)
	c.DiscountRepo = repository.NewDiscountRepository(db)
	c.UserDiscountRepo = repository.NewUserDiscountRepository(db)
	c.SubscriptionRepo = repository.NewSubscriptionRepository(db)
	c.ReviewRepo = repository.NewReviewRepository(db)
	c.PaymentWebhookRepo = repository.NewPaymentWebhookEventRepository(db)
}

func (c *Container) initServices() {
	authzService, err := authz.NewService(models.DB)
	if err != nil {
		logger.Errorw("provider_init_authz_failed", "error", err)
		panic(err)
	}
	c.AuthzService = authzService
	if err := c.AuthzService.BootstrapBuiltinRoles(); err != nil {
		logger.Errorw("provider_bootstrap_builtin_roles_failed", "error", err)
		panic(err)
	}

	c.UserAuthService = service.NewUserAuthService(c.UserRepo, c.Config.JWT, c.Config.Security)
	c.EmailService = service.NewEmailService(&c.Config.Email)
	c.NotificationService = service.NewNotificationService(
		c.OrderRepo,
		c.UserRepo,
		c.EmailService,
		c.QueueClient,
		c.Config.Notification,
		c.Config.Order,
	)

	c.BoxTypeService = service.NewBoxTypeService(c.BoxTypeRepo, c.ReviewRepo)
	c.DiscountService = service.NewDiscountService(c.DiscountRepo, c.UserDiscountRepo)
	c.CartService = service.NewCartService(c.OrderRepo, c.BoxTypeRepo, c.Store, c.Config.Order)
	c.OrderService = service.NewOrderService(
		c.OrderRepo,
		c.UserRepo,
		c.BoxTypeRepo,
		c.DiscountService,
		c.Store,
		c.NotificationService,
		c.Config.Order,
	)
	c.PaymentService = service.NewPaymentService(
		c.OrderRepo,
		c.PaymentWebhookRepo,
		c.OrderService,
		c.Store,
		c.Config.PayOS,
		c.Config.Order,
	)
	// 取消订单时需要同步关闭 PayOS 支付链接
	c.OrderService.SetPaymentLinkCanceller(c.PaymentService)
	if !c.PaymentService.Configured() {
		logger.Warnw("provider_payos_not_configured")
	}

	c.SubscriptionService = service.NewSubscriptionService(
		c.SubscriptionRepo,
		c.BoxTypeRepo,
		c.UserRepo,
		c.OrderService,
		c.Config.Subscription,
	)
	c.ReviewService = service.NewReviewService(c.ReviewRepo, c.OrderRepo, c.BoxTypeRepo)
	c.AIService = c.newAIService()
}

func (c *Container) newAIService() *ai.Service {
	cfg := c.Config.AI
	ttl := time.Duration(cfg.CacheTTLSeconds) * time.Second
	if !cfg.Enabled {
		return ai.NewService(nil, c.Store, ttl)
	}
	client, err := ai.NewClient(ai.ClientConfig{
		BaseURL: cfg.BaseURL,
		APIKey:  cfg.APIKey,
		Model:   cfg.Model,
		Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second,
	})
	if err != nil {
		logger.Warnw("provider_init_ai_client_failed", "error", err)
		return ai.NewService(nil, c.Store, ttl)
	}
	return ai.NewService(client, c.Store, ttl)
}
