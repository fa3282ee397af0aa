package provider

import (
	"fmt"
	"strings"
	"time"

	"github.com/luxdecor-shop/internal/authn"
	"github.com/luxdecor-shop/internal/authz"
	"github.com/luxdecor-shop/internal/cache"
	"github.com/luxdecor-shop/internal/config"
	"github.com/luxdecor-shop/internal/constants"
	"github.com/luxdecor-shop/internal/events"
	"github.com/luxdecor-shop/internal/inventory"
	"github.com/luxdecor-shop/internal/logger"
	"github.com/luxdecor-shop/internal/models"
	"github.com/luxdecor-shop/internal/payment/vnpay"
	"github.com/luxdecor-shop/internal/queue"
	"github.com/luxdecor-shop/internal/repository"
	"github.com/luxdecor-shop/internal/service"

	"gorm.io/gorm"
)

// Container 依赖注入容器
type Container struct {
	Config       *config.Config
	DB           *gorm.DB
	QueueClient  *queue.Client
	Publisher    events.Publisher
	TokenManager *authn.TokenManager

	// Repositories
	ProductRepo         repository.ProductRepository
	StockAdjustmentRepo repository.StockAdjustmentRepository
	CartRepo            repository.CartRepository
	OrderRepo           repository.OrderRepository

	// Catalog
	Ledger            *inventory.Ledger
	InventoryClient   inventory.Client
	CartCatalogClient inventory.Client

	// Services
	AuthzService   *authz.Service
	CartService    *service.CartService
	OrderService   *service.OrderService
	PaymentService *service.PaymentService
}

// NewContainer 使用全局数据库连接初始化容器
func NewContainer(cfg *config.Config) *Container {
	// 初始化缓存
	if err := cache.InitRedis(&cfg.Redis); err != nil {
		logger.Warnw("provider_init_redis_failed", "error", err)
	}

	c, err := NewContainerWithDB(cfg, models.DB)
	if err != nil {
		logger.Errorw("provider_init_failed", "error", err)
		panic(err)
	}
	return c
}

// NewContainerWithDB 在指定连接上初始化容器
func NewContainerWithDB(cfg *config.Config, db *gorm.DB) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is nil")
	}
	if db == nil {
		return nil, fmt.Errorf("db is nil")
	}

	// 初始化队列客户端
	queueClient, err := queue.NewClient(&cfg.Queue)
	if err != nil {
		logger.Errorw("provider_init_queue_client_failed", "error", err)
		queueClient = nil
	}

	c := &Container{
		Config:       cfg,
		DB:           db,
		QueueClient:  queueClient,
		Publisher:    newPublisher(&cfg.Kafka),
		TokenManager: authn.NewTokenManager(cfg.JWT.SecretKey, cfg.JWT.Issuer),
	}

	// 1. 初始化 Repositories
	c.initRepositories()

	// 2. 初始化商品服务访问
	c.initInventory()

	// 3. 初始化 Services
	if err := c.initServices(); err != nil {
		return nil, err
	}
	return c, nil
}

// Close 释放容器持有的外部连接
func (c *Container) Close() {
	if c == nil {
		return
	}
	if c.Publisher != nil {
		if err := c.Publisher.Close(); err != nil {
			logger.Warnw("provider_close_publisher_failed", "error", err)
		}
	}
	if err := c.QueueClient.Close(); err != nil {
		logger.Warnw("provider_close_queue_client_failed", "error", err)
	}
}

func (c *Container) initRepositories() {
	c.ProductRepo = repository.NewProductRepository(c.DB)
	c.StockAdjustmentRepo = repository.NewStockAdjustmentRepository(c.DB)
	c.CartRepo = repository.NewCartRepository(c.DB)
	c.OrderRepo = repository.NewOrderRepository(c.DB)
}

func (c *Container) initInventory() {
	c.Ledger = inventory.NewLedger(c.ProductRepo, c.StockAdjustmentRepo)

	catalog := c.Config.Catalog
	var client inventory.Client
	switch strings.ToLower(strings.TrimSpace(catalog.Mode)) {
	case constants.CatalogModeHTTP:
		tokenTTL := time.Duration(catalog.ServiceTokenTTLSeconds) * time.Second
		client = inventory.NewHTTPClient(
			catalog.BaseURL,
			time.Duration(catalog.TimeoutSeconds)*time.Second,
			func() (string, error) {
				return c.TokenManager.ServiceToken(tokenTTL)
			},
		)
		logger.Infow("provider_catalog_http", "base_url", catalog.BaseURL)
	default:
		client = inventory.NewLocalClient(c.Ledger)
	}
	c.InventoryClient, c.CartCatalogClient = splitCatalogClients(client, cache.Enabled(), time.Duration(catalog.SnapshotCacheSeconds)*time.Second)
}

// splitCatalogClients 返回结账与购物车各自使用的客户端
// 快照缓存只服务购物车展示，结账始终读取实时价格
func splitCatalogClients(client inventory.Client, cacheEnabled bool, ttl time.Duration) (inventory.Client, inventory.Client) {
	if !cacheEnabled || ttl <= 0 {
		return client, client
	}
	cached := inventory.NewCachedClient(client, ttl)
	return cached.Bypass(), cached
}

func (c *Container) initServices() error {
	authzService, err := authz.NewService(c.DB)
	if err != nil {
		return fmt.Errorf("init authz failed: %w", err)
	}
	if err := authzService.BootstrapBuiltinRoles(); err != nil {
		return fmt.Errorf("bootstrap builtin roles failed: %w", err)
	}
	c.AuthzService = authzService

	expireMinutes := c.Config.Order.PaymentExpireMinutes
	c.CartService = service.NewCartService(c.CartRepo, c.CartCatalogClient)
	c.OrderService = service.NewOrderService(c.OrderRepo, c.CartRepo, c.InventoryClient, c.QueueClient, c.Publisher, expireMinutes)
	c.PaymentService = service.NewPaymentService(c.OrderRepo, c.OrderService, &vnpay.Config{
		TmnCode:       c.Config.VNPay.TmnCode,
		HashSecret:    c.Config.VNPay.HashSecret,
		PayURL:        c.Config.VNPay.PayURL,
		ReturnURL:     c.Config.VNPay.ReturnURL,
		ExpireMinutes: c.Config.VNPay.ExpireMinutes,
	})
	return nil
}

func newPublisher(cfg *config.KafkaConfig) events.Publisher {
	if cfg == nil || !cfg.Enabled {
		return events.NopPublisher{}
	}
	publisher, err := events.NewKafkaPublisher(cfg.Brokers, cfg.Topic)
	if err != nil {
		logger.Warnw("provider_init_kafka_publisher_failed", "error", err)
		return events.NopPublisher{}
	}
	return publisher
}
