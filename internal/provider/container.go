package provider

import (
	"time"

	"github.com/orderdesk-next/internal/cache"
	"github.com/orderdesk-next/internal/carrier/sendcloud"
	"github.com/orderdesk-next/internal/config"
	"github.com/orderdesk-next/internal/crm/hubspot"
	"github.com/orderdesk-next/internal/logger"
	"github.com/orderdesk-next/internal/models"
	"github.com/orderdesk-next/internal/payment/stripe"
	"github.com/orderdesk-next/internal/queue"
	"github.com/orderdesk-next/internal/repository"
	"github.com/orderdesk-next/internal/service"
)

// Container 依赖注入容器
type Container struct {
	Config      *config.Config
	QueueClient *queue.Client

	// Repositories
	OrderRepo          repository.OrderRepository
	CustomerRepo       repository.CustomerRepository
	PackRepo           repository.OrderPackListRepository
	ShippingMethodRepo repository.ShippingMethodRepository
	ActivityRepo       repository.OrderActivityRepository
	StripeEventRepo    repository.StripeEventRepository
	FeatureRequestRepo repository.FeatureRequestRepository

	// Services
	AuthService           *service.AuthService
	OrderService          *service.OrderService
	CustomerService       *service.CustomerService
	PackService           *service.PackService
	LabelService          *service.LabelService
	TrackingService       *service.TrackingService
	WebhookService        *service.WebhookService
	ShippingMethodService *service.ShippingMethodService
	FeatureRequestService *service.FeatureRequestService
}

// NewContainer 初始化容器
func NewContainer(cfg *config.Config) *Container {
	// 初始化缓存
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
	}

	// 1. 初始化 Repositories
	c.initRepositories()

	// 2. 初始化 Services
	c.initServices()

	return c
}

func (c *Container) initRepositories() {
	db := models.DB
	c.OrderRepo = repository.NewOrderRepository(db)
	c.CustomerRepo = repository.NewCustomerRepository(db)
	c.PackRepo = repository.NewOrderPackListRepository(db)
	c.ShippingMethodRepo = repository.NewShippingMethodRepository(db)
	c.ActivityRepo = repository.NewOrderActivityRepository(db)
	c.StripeEventRepo = repository.NewStripeEventRepository(db)
	c.FeatureRequestRepo = repository.NewFeatureRequestRepository(db)
}

func (c *Container) initServices() {
	sendcloudCfg := &sendcloud.Config{
		APIBaseURL: c.Config.Sendcloud.APIBaseURL,
		PublicKey:  c.Config.Sendcloud.PublicKey,
		SecretKey:  c.Config.Sendcloud.SecretKey,
		TimeoutMS:  c.Config.Sendcloud.TimeoutMS,
	}
	carrier := service.NewSendcloudCarrier(sendcloudCfg)

	var crm service.CRMClient
	if c.Config.HubSpot.Enabled {
		crm = service.NewHubSpotCRM(&hubspot.Config{
			APIBaseURL:  c.Config.HubSpot.APIBaseURL,
			AccessToken: c.Config.HubSpot.AccessToken,
			TimeoutMS:   c.Config.HubSpot.TimeoutMS,
		})
	}

	stripeCfg := &stripe.Config{
		WebhookSecret:           c.Config.Stripe.WebhookSecret,
		WebhookToleranceSeconds: c.Config.Stripe.WebhookToleranceSeconds,
	}

	c.AuthService = service.NewAuthService(
		c.Config.Auth.Password,
		c.Config.Auth.PasswordHash,
		c.Config.Auth.JWTSecret,
		c.Config.Auth.ExpireHours,
	)
	c.OrderService = service.NewOrderService(c.OrderRepo, c.PackRepo, c.ActivityRepo)
	c.CustomerService = service.NewCustomerService(c.CustomerRepo, crm)
	c.PackService = service.NewPackService(c.PackRepo)
	c.LabelService = service.NewLabelService(c.OrderRepo, c.ActivityRepo, carrier)
	c.TrackingService = service.NewTrackingService(c.OrderRepo, c.ActivityRepo, carrier)
	c.WebhookService = service.NewWebhookService(stripeCfg, c.StripeEventRepo, c.OrderRepo, c.CustomerRepo, c.ActivityRepo)
	c.ShippingMethodService = service.NewShippingMethodService(
		carrier,
		c.ShippingMethodRepo,
		time.Duration(c.Config.Shipping.MethodCacheTTLSeconds)*time.Second,
		nil,
	)
	c.FeatureRequestService = service.NewFeatureRequestService(c.FeatureRequestRepo)
}
