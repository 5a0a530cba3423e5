package config

import (
	"fmt"
	"strings"

	"github.com/orderdesk-next/internal/logger"

	"github.com/spf13/viper"
)

// Config 应用配置结构
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Log       LogConfig       `mapstructure:"log"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Auth      AuthConfig      `mapstructure:"auth"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Queue     QueueConfig     `mapstructure:"queue"`
	CORS      CORSConfig      `mapstructure:"cors"`
	Security  SecurityConfig  `mapstructure:"security"`
	Sendcloud SendcloudConfig `mapstructure:"sendcloud"`
	Stripe    StripeConfig    `mapstructure:"stripe"`
	HubSpot   HubSpotConfig   `mapstructure:"hubspot"`
	Tracking  TrackingConfig  `mapstructure:"tracking"`
	Shipping  ShippingConfig  `mapstructure:"shipping"`
}

// ServerConfig 服务器配置
type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port string `mapstructure:"port"`
	Mode string `mapstructure:"mode"` // debug / release
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

// AuthConfig 登录与会话配置
// 说明：后台使用单一共享口令登录，登录成功后签发 JWT 会话。
type AuthConfig struct {
	Password     string `mapstructure:"password"`      // 明文共享口令（与 password_hash 二选一）
	PasswordHash string `mapstructure:"password_hash"` // bcrypt 口令哈希，配置后优先生效
	JWTSecret    string `mapstructure:"jwt_secret"`
	ExpireHours  int    `mapstructure:"expire_hours"`
	CronSecret   string `mapstructure:"cron_secret"` // 定时任务触发接口的共享密钥
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

// CORSConfig 跨域配置
type CORSConfig struct {
	AllowedOrigins   []string `mapstructure:"allowed_origins"`
	AllowedMethods   []string `mapstructure:"allowed_methods"`
	AllowedHeaders   []string `mapstructure:"allowed_headers"`
	AllowCredentials bool     `mapstructure:"allow_credentials"`
	MaxAge           int      `mapstructure:"max_age"`
}

// SecurityConfig 安全配置
type SecurityConfig struct {
	LoginRateLimit LoginRateLimitConfig `mapstructure:"login_rate_limit"`
}

// LoginRateLimitConfig 登录限流配置
type LoginRateLimitConfig struct {
	WindowSeconds int `mapstructure:"window_seconds"`
	MaxAttempts   int `mapstructure:"max_attempts"`
	BlockSeconds  int `mapstructure:"block_seconds"`
}

// SendcloudConfig 承运商 API 配置
type SendcloudConfig struct {
	APIBaseURL string `mapstructure:"api_base_url"`
	PublicKey  string `mapstructure:"public_key"`
	SecretKey  string `mapstructure:"secret_key"`
	TimeoutMS  int    `mapstructure:"timeout_ms"`
}

// StripeConfig 支付 webhook 配置
type StripeConfig struct {
	WebhookSecret           string `mapstructure:"webhook_secret"`
	WebhookToleranceSeconds int    `mapstructure:"webhook_tolerance_seconds"`
}

// HubSpotConfig CRM 配置
type HubSpotConfig struct {
	Enabled     bool   `mapstructure:"enabled"`
	APIBaseURL  string `mapstructure:"api_base_url"`
	AccessToken string `mapstructure:"access_token"`
	TimeoutMS   int    `mapstructure:"timeout_ms"`
}

// TrackingConfig 物流状态轮询配置
type TrackingConfig struct {
	BatchLimit           int `mapstructure:"batch_limit"`
	SweepIntervalMinutes int `mapstructure:"sweep_interval_minutes"`
}

// ShippingConfig 运输方式目录配置
type ShippingConfig struct {
	MethodCacheTTLSeconds int `mapstructure:"method_cache_ttl_seconds"`
}

// Load 从 config.yml 加载配置
func Load() *Config {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")     // 从当前目录查找
	viper.AddConfigPath("../")   // 如果从 cmd/server 运行
	viper.AddConfigPath("./etc") // etc 文件夹

	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", "8080")
	viper.SetDefault("server.mode", "debug")
	viper.SetDefault("log.dir", "")
	viper.SetDefault("log.filename", "app.log")
	viper.SetDefault("log.max_size_mb", 100)
	viper.SetDefault("log.max_backups", 7)
	viper.SetDefault("log.max_age_days", 30)
	viper.SetDefault("log.compress", true)
	viper.SetDefault("database.driver", "sqlite")
	viper.SetDefault("database.dsn", "./db/orderdesk.db")
	viper.SetDefault("database.pool.max_open_conns", 1)
	viper.SetDefault("database.pool.max_idle_conns", 1)
	viper.SetDefault("database.pool.conn_max_lifetime_seconds", 0)
	viper.SetDefault("database.pool.conn_max_idle_time_seconds", 0)
	viper.SetDefault("auth.password", "")
	viper.SetDefault("auth.password_hash", "")
	viper.SetDefault("auth.jwt_secret", "change-me-in-production")
	viper.SetDefault("auth.expire_hours", 24)
	viper.SetDefault("auth.cron_secret", "")
	viper.SetDefault("redis.enabled", true)
	viper.SetDefault("redis.host", "127.0.0.1")
	viper.SetDefault("redis.port", 6379)
	viper.SetDefault("redis.password", "")
	viper.SetDefault("redis.db", 0)
	viper.SetDefault("redis.prefix", "od")
	viper.SetDefault("queue.enabled", true)
	viper.SetDefault("queue.host", "127.0.0.1")
	viper.SetDefault("queue.port", 6379)
	viper.SetDefault("queue.password", "")
	viper.SetDefault("queue.db", 1)
	viper.SetDefault("queue.concurrency", 10)
	viper.SetDefault("queue.queues", map[string]int{
		"default": 10,
	})
	viper.SetDefault("cors.allowed_origins", []string{"*"})
	viper.SetDefault("cors.allowed_methods", []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"})
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
	viper.SetDefault("security.login_rate_limit.window_seconds", 300)
	viper.SetDefault("security.login_rate_limit.max_attempts", 5)
	viper.SetDefault("security.login_rate_limit.block_seconds", 900)
	viper.SetDefault("sendcloud.api_base_url", "https://panel.sendcloud.sc/api/v2")
	viper.SetDefault("sendcloud.public_key", "")
	viper.SetDefault("sendcloud.secret_key", "")
	viper.SetDefault("sendcloud.timeout_ms", 12000)
	viper.SetDefault("stripe.webhook_secret", "")
	viper.SetDefault("stripe.webhook_tolerance_seconds", 300)
	viper.SetDefault("hubspot.enabled", false)
	viper.SetDefault("hubspot.api_base_url", "https://api.hubapi.com")
	viper.SetDefault("hubspot.access_token", "")
	viper.SetDefault("hubspot.timeout_ms", 8000)
	viper.SetDefault("tracking.batch_limit", 50)
	viper.SetDefault("tracking.sweep_interval_minutes", 1440)
	viper.SetDefault("shipping.method_cache_ttl_seconds", 300)

	// 环境变量支持
	viper.AutomaticEnv()                                   // 自动读取环境变量
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_")) // 将 . 替换为 _ (例如 server.port -> SERVER_PORT)

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
