package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server         ServerConfig
	Database       DatabaseConfig
	JWT            JWTConfig
	Tracing        TracingConfig `mapstructure:"tracing"`
	Redis          RedisConfig
	AI             AIConfig
	CORS           CORSConfig           `mapstructure:"cors"`
	RateLimit      RateLimitConfig      `mapstructure:"rate_limit"`
	Recommendation RecommendationConfig `mapstructure:"recommendation"`
	Breaker        BreakerConfig        `mapstructure:"breaker"`

	// 运行时标志（非配置文件，通过命令行参数设置）
	ForceMigrate bool   `mapstructure:"-"` // 强制执行数据库迁移
	MigrateOnly  bool   `mapstructure:"-"` // 仅迁移模式（迁移后退出）
	ConfigDir    string `mapstructure:"-"` // 热更新监听的目录
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type RateLimitConfig struct {
	MaxRequests   int `mapstructure:"max_requests"`
	WindowMinutes int `mapstructure:"window_minutes"`
}

type AIConfig struct {
	Enabled      bool          `mapstructure:"enabled"`
	BaseURL      string        `mapstructure:"base_url"`
	APIKey       string        `mapstructure:"api_key"`
	Model        string        `mapstructure:"model"`
	Timeout      time.Duration `mapstructure:"timeout"`
	TipsCacheTTL time.Duration `mapstructure:"tips_cache_ttl"`
}

type ServerConfig struct {
	Port string
	Mode string
}

type DatabaseConfig struct {
	Driver    string `mapstructure:"driver"` // mysql | postgres
	Host      string
	Port      int
	User      string
	Password  string
	DBName    string
	Charset   string
	ParseTime bool
	SSLMode   string `mapstructure:"sslmode"`
}

type JWTConfig struct {
	Secret     string        `mapstructure:"secret"`
	ExpireTime time.Duration `mapstructure:"expire_hours"`
}

type TracingConfig struct {
	Enabled           bool   `mapstructure:"enabled"`
	CollectorEndpoint string `mapstructure:"collector_endpoint"`
	ServiceName       string `mapstructure:"service_name"`
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// TopicSeedConfig 某个分类的薄弱/优势主题种子
type TopicSeedConfig struct {
	Category string   `mapstructure:"category"`
	Weak     []string `mapstructure:"weak"`
	Strong   []string `mapstructure:"strong"`
}

type RecommendationConfig struct {
	RecentWindow     int               `mapstructure:"recent_window"`
	BucketSize       int               `mapstructure:"bucket_size"`
	HistoryLimit     int               `mapstructure:"history_limit"`
	MinTopicAttempts int               `mapstructure:"min_topic_attempts"`
	CacheTTL         time.Duration     `mapstructure:"cache_ttl"`
	FetchTimeout     time.Duration     `mapstructure:"fetch_timeout"`
	MaxParallel      int               `mapstructure:"max_parallel"`
	CacheBackend     string            `mapstructure:"cache_backend"` // redis | memory
	Taxonomy         []TopicSeedConfig `mapstructure:"taxonomy"`
}

type BreakerConfig struct {
	MaxRequests      uint32        `mapstructure:"max_requests"`
	Interval         time.Duration `mapstructure:"interval"`
	Timeout          time.Duration `mapstructure:"timeout"`
	FailureThreshold uint32        `mapstructure:"failure_threshold"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.mode", "debug")

	v.SetDefault("database.driver", "mysql")
	v.SetDefault("database.charset", "utf8mb4")
	v.SetDefault("database.parsetime", true)
	v.SetDefault("database.sslmode", "disable")

	v.SetDefault("jwt.expire_hours", 72)

	v.SetDefault("ai.timeout", 15*time.Second)
	v.SetDefault("ai.tips_cache_ttl", 6*time.Hour)

	v.SetDefault("tracing.service_name", "quiz-adaptive-backend")

	v.SetDefault("rate_limit.max_requests", 600)
	v.SetDefault("rate_limit.window_minutes", 1)

	v.SetDefault("recommendation.recent_window", 10)
	v.SetDefault("recommendation.bucket_size", 10)
	v.SetDefault("recommendation.history_limit", 500)
	v.SetDefault("recommendation.min_topic_attempts", 3)
	v.SetDefault("recommendation.cache_ttl", 10*time.Minute)
	v.SetDefault("recommendation.fetch_timeout", 3*time.Second)
	v.SetDefault("recommendation.max_parallel", 4)
	v.SetDefault("recommendation.cache_backend", "redis")

	v.SetDefault("breaker.max_requests", 1)
	v.SetDefault("breaker.interval", time.Minute)
	v.SetDefault("breaker.timeout", 30*time.Second)
	v.SetDefault("breaker.failure_threshold", 5)
}

func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	v.SetEnvPrefix("QUIZ")
	v.AutomaticEnv()
	setDefaults(v)

	// Database
	v.BindEnv("database.driver", "DATABASE_DRIVER")
	v.BindEnv("database.host", "DATABASE_HOST")
	v.BindEnv("database.port", "DATABASE_PORT")
	v.BindEnv("database.user", "DATABASE_USER")
	v.BindEnv("database.password", "DATABASE_PASSWORD")
	v.BindEnv("database.dbname", "DATABASE_NAME")

	// JWT
	v.BindEnv("jwt.secret", "JWT_SECRET")

	// Redis
	v.BindEnv("redis.host", "REDIS_HOST")
	v.BindEnv("redis.port", "REDIS_PORT")
	v.BindEnv("redis.password", "REDIS_PASSWORD")

	// Server
	v.BindEnv("server.mode", "SERVER_MODE")

	// AI
	v.BindEnv("ai.enabled", "AI_ENABLED")
	v.BindEnv("ai.base_url", "AI_BASE_URL")
	v.BindEnv("ai.api_key", "AI_API_KEY")
	v.BindEnv("ai.model", "AI_MODEL")

	// Tracing
	v.BindEnv("tracing.enabled", "TRACING_ENABLED")
	v.BindEnv("tracing.collector_endpoint", "TRACING_COLLECTOR_ENDPOINT")

	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	cfg.JWT.ExpireTime = cfg.JWT.ExpireTime * time.Hour

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate 检查配置的取值范围
func (c *Config) Validate() error {
	// 生产环境校验 JWT Secret 强度
	if c.Server.Mode == "release" && len(c.JWT.Secret) < 32 {
		return fmt.Errorf("JWT secret is too short (%d chars), must be at least 32 characters in release mode", len(c.JWT.Secret))
	}

	switch c.Database.Driver {
	case "mysql", "postgres":
	default:
		return fmt.Errorf("unsupported database driver %q", c.Database.Driver)
	}

	r := c.Recommendation
	if r.RecentWindow <= 0 || r.BucketSize <= 0 {
		return fmt.Errorf("recommendation.recent_window and recommendation.bucket_size must be positive")
	}
	if r.HistoryLimit < 0 {
		return fmt.Errorf("recommendation.history_limit must not be negative")
	}
	if r.MaxParallel <= 0 {
		return fmt.Errorf("recommendation.max_parallel must be positive")
	}
	switch r.CacheBackend {
	case "redis", "memory":
	default:
		return fmt.Errorf("unsupported recommendation.cache_backend %q", r.CacheBackend)
	}
	seen := make(map[string]bool, len(r.Taxonomy))
	for _, t := range r.Taxonomy {
		if t.Category == "" {
			return fmt.Errorf("recommendation.taxonomy entry without category")
		}
		if seen[t.Category] {
			return fmt.Errorf("duplicate taxonomy category %q", t.Category)
		}
		seen[t.Category] = true
	}
	return nil
}
