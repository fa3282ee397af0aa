package config

import (
	"fmt"
	"strings"

	"github.com/luxdecor-shop/internal/logger"

	"github.com/spf13/viper"
)

// Config 应用配置结构
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Log       LogConfig       `mapstructure:"log"`
	Database  DatabaseConfig  `mapstructure:"database"`
	JWT       JWTConfig       `mapstructure:"jwt"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Queue     QueueConfig     `mapstructure:"queue"`
	Catalog   CatalogConfig   `mapstructure:"catalog"`
	VNPay     VNPayConfig     `mapstructure:"vnpay"`
	Kafka     KafkaConfig     `mapstructure:"kafka"`
	CORS      CORSConfig      `mapstructure:"cors"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
	Order     OrderConfig     `mapstructure:"order"`
}

// ServerConfig 服务器配置
type ServerConfig struct {
	Host                string `mapstructure:"host"`
	Port                string `mapstructure:"port"`
	Mode                string `mapstructure:"mode"` // debug / release
	ReadTimeoutSeconds  int    `mapstructure:"read_timeout_seconds"`
	WriteTimeoutSeconds int    `mapstructure:"write_timeout_seconds"`
	IdleTimeoutSeconds  int    `mapstructure:"idle_timeout_seconds"`
}

// LogConfig 日志配置
type LogConfig struct {
	Dir        string `mapstructure:"dir"`
	Filename   string `mapstructure:"filename"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
	Compress   bool   `mapstructure:"compress"`
}

// ToLoggerOptions 转换为 logger 配置
func (c LogConfig) ToLoggerOptions() logger.Options {
	return logger.Options{
		Dir:        c.Dir,
		Filename:   c.Filename,
		MaxSizeMB:  c.MaxSizeMB,
		MaxBackups: c.MaxBackups,
		MaxAgeDays: c.MaxAgeDays,
		Compress:   c.Compress,
	}
}

// DatabasePoolConfig 数据库连接池配置
type DatabasePoolConfig struct {
	MaxOpenConns           int `mapstructure:"max_open_conns"`
	MaxIdleConns           int `mapstructure:"max_idle_conns"`
	ConnMaxLifetimeSeconds int `mapstructure:"conn_max_lifetime_seconds"`
	ConnMaxIdleTimeSeconds int `mapstructure:"conn_max_idle_time_seconds"`
}

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	Driver string             `mapstructure:"driver"` // 数据库驱动（sqlite/postgres）
	DSN    string             `mapstructure:"dsn"`    // 数据库连接串
	Pool   DatabasePoolConfig `mapstructure:"pool"`
}

// JWTConfig 身份服务签发的令牌校验配置
type JWTConfig struct {
	SecretKey string `mapstructure:"secret"`
	Issuer    string `mapstructure:"issuer"`
}

// RedisConfig Redis 配置
type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Prefix   string `mapstructure:"prefix"`
}

// QueueConfig 异步队列配置
type QueueConfig struct {
	Enabled     bool           `mapstructure:"enabled"`
	Host        string         `mapstructure:"host"`
	Port        int            `mapstructure:"port"`
	Password    string         `mapstructure:"password"`
	DB          int            `mapstructure:"db"`
	Concurrency int            `mapstructure:"concurrency"`
	Queues      map[string]int `mapstructure:"queues"`
}

// CatalogConfig 商品服务（库存账本）访问配置
type CatalogConfig struct {
	Mode                   string `mapstructure:"mode"`     // local / http
	BaseURL                string `mapstructure:"base_url"` // http 模式下的商品服务地址
	TimeoutSeconds         int    `mapstructure:"timeout_seconds"`
	ServiceTokenTTLSeconds int    `mapstructure:"service_token_ttl_seconds"`
	SnapshotCacheSeconds   int    `mapstructure:"snapshot_cache_seconds"`
}

// VNPayConfig VNPay 网关配置
type VNPayConfig struct {
	TmnCode       string `mapstructure:"tmn_code"`
	HashSecret    string `mapstructure:"hash_secret"`
	PayURL        string `mapstructure:"pay_url"`
	ReturnURL     string `mapstructure:"return_url"`
	ExpireMinutes int    `mapstructure:"expire_minutes"`
}

// KafkaConfig 订单事件投递配置
type KafkaConfig struct {
	Enabled bool     `mapstructure:"enabled"`
	Brokers []string `mapstructure:"brokers"`
	Topic   string   `mapstructure:"topic"`
}

// CORSConfig 跨域配置
type CORSConfig struct {
	AllowedOrigins   []string `mapstructure:"allowed_origins"`
	AllowedMethods   []string `mapstructure:"allowed_methods"`
	AllowedHeaders   []string `mapstructure:"allowed_headers"`
	AllowCredentials bool     `mapstructure:"allow_credentials"`
	MaxAge           int      `mapstructure:"max_age"`
}

// RateLimitConfig 接口限流配置
type RateLimitConfig struct {
	PlaceOrder RateLimitRuleConfig `mapstructure:"place_order"`
	Callback   RateLimitRuleConfig `mapstructure:"callback"`
}

// RateLimitRuleConfig 单条限流规则
type RateLimitRuleConfig struct {
	WindowSeconds int `mapstructure:"window_seconds"`
	MaxRequests   int `mapstructure:"max_requests"`
	BlockSeconds  int `mapstructure:"block_seconds"`
}

// MetricsConfig 指标暴露配置
type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// OrderConfig 订单配置
type OrderConfig struct {
	PaymentExpireMinutes int `mapstructure:"payment_expire_minutes"`
}

// Load 从 config.yml 加载配置
func Load() *Config {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")        // 从当前目录查找
	viper.AddConfigPath("../")      // 如果从 cmd/server 运行
	viper.AddConfigPath("./config") // config 文件夹

	setDefaults()

	// 环境变量支持
	viper.AutomaticEnv()                                   // 自动读取环境变量
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_")) // 将 . 替换为 _ (例如 vnpay.hash_secret -> VNPAY_HASH_SECRET)

	// 读取配置文件
	if err := viper.ReadInConfig(); err != nil {
		logger.Warnw("config_file_read_failed",
			"error", err,
			"fallback", "env_or_defaults",
		)
	} else {
		logger.Infow("config_file_loaded", "file", viper.ConfigFileUsed())
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		logger.Errorw("config_unmarshal_failed", "error", err)
		panic(fmt.Errorf("配置解析失败: %w", err))
	}

	return &cfg
}

func setDefaults() {
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", "8080")
	viper.SetDefault("server.mode", "debug")
	viper.SetDefault("server.read_timeout_seconds", 30)
	viper.SetDefault("server.write_timeout_seconds", 30)
	viper.SetDefault("server.idle_timeout_seconds", 120)
	viper.SetDefault("log.dir", "")
	viper.SetDefault("log.filename", "app.log")
	viper.SetDefault("log.max_size_mb", 100)
	viper.SetDefault("log.max_backups", 7)
	viper.SetDefault("log.max_age_days", 30)
	viper.SetDefault("log.compress", true)
	viper.SetDefault("database.driver", "sqlite")
	viper.SetDefault("database.dsn", "./db/luxdecor.db")
	viper.SetDefault("database.pool.max_open_conns", 1)
	viper.SetDefault("database.pool.max_idle_conns", 1)
	viper.SetDefault("database.pool.conn_max_lifetime_seconds", 0)
	viper.SetDefault("database.pool.conn_max_idle_time_seconds", 0)
	viper.SetDefault("jwt.secret", "change-me-in-production")
	viper.SetDefault("jwt.issuer", "identity-service")
	viper.SetDefault("redis.enabled", false)
	viper.SetDefault("redis.host", "127.0.0.1")
	viper.SetDefault("redis.port", 6379)
	viper.SetDefault("redis.password", "")
	viper.SetDefault("redis.db", 0)
	viper.SetDefault("redis.prefix", "lx")
	viper.SetDefault("queue.enabled", false)
	viper.SetDefault("queue.host", "127.0.0.1")
	viper.SetDefault("queue.port", 6379)
	viper.SetDefault("queue.password", "")
	viper.SetDefault("queue.db", 1)
	viper.SetDefault("queue.concurrency", 10)
	viper.SetDefault("queue.queues", map[string]int{
		"default":  10,
		"critical": 5,
	})
	viper.SetDefault("catalog.mode", "local")
	viper.SetDefault("catalog.base_url", "http://127.0.0.1:8081")
	viper.SetDefault("catalog.timeout_seconds", 5)
	viper.SetDefault("catalog.service_token_ttl_seconds", 60)
	viper.SetDefault("catalog.snapshot_cache_seconds", 30)
	viper.SetDefault("vnpay.tmn_code", "")
	viper.SetDefault("vnpay.hash_secret", "")
	viper.SetDefault("vnpay.pay_url", "https://sandbox.vnpayment.vn/paymentv2/vpcpay.html")
	viper.SetDefault("vnpay.return_url", "http://localhost:8080/payment/vnpay-callback")
	viper.SetDefault("vnpay.expire_minutes", 15)
	viper.SetDefault("kafka.enabled", false)
	viper.SetDefault("kafka.brokers", []string{"127.0.0.1:9092"})
	viper.SetDefault("kafka.topic", "order-events")
	viper.SetDefault("cors.allowed_origins", []string{"*"})
	viper.SetDefault("cors.allowed_methods", []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"})
	viper.SetDefault("cors.allowed_headers", []string{
		"Content-Type",
		"Content-Length",
		"Accept-Encoding",
		"Authorization",
		"Cache-Control",
		"X-Requested-With",
	})
	viper.SetDefault("cors.allow_credentials", true)
	viper.SetDefault("cors.max_age", 600)
	viper.SetDefault("rate_limit.place_order.window_seconds", 60)
	viper.SetDefault("rate_limit.place_order.max_requests", 10)
	viper.SetDefault("rate_limit.place_order.block_seconds", 60)
	viper.SetDefault("rate_limit.callback.window_seconds", 60)
	viper.SetDefault("rate_limit.callback.max_requests", 120)
	viper.SetDefault("rate_limit.callback.block_seconds", 60)
	viper.SetDefault("metrics.enabled", true)
	viper.SetDefault("order.payment_expire_minutes", 15)
}
