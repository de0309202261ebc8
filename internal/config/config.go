package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// DefaultDatasetURL 默认电影数据集地址
const DefaultDatasetURL = "https://raw.githubusercontent.com/prust/wikipedia-movie-data/master/movies.json"

const defaultSecret = "your-secret-key-change-in-production"

// Config 应用配置
type Config struct {
	Env       string `envconfig:"APP_ENV" default:"development" validate:"oneof=development production test"`
	Port      string `envconfig:"PORT" default:"5005" validate:"required,numeric"`
	SiteName  string `envconfig:"SITE_NAME" default:"Movie List"`
	AppSecret string `envconfig:"APP_SECRET" validate:"required,min=16"`
	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`

	// 数据集
	DatasetURL   string        `envconfig:"DATASET_URL" validate:"required,url"`
	FetchTimeout time.Duration `envconfig:"FETCH_TIMEOUT" default:"30s" validate:"min=0"`

	// 过滤结果缓存
	CacheSize int           `envconfig:"CACHE_SIZE" default:"256" validate:"min=1"`
	CacheTTL  time.Duration `envconfig:"CACHE_TTL" default:"10m" validate:"min=0"`

	// 缩略图代理
	ProxyThumbnails    bool     `envconfig:"PROXY_THUMBNAILS" default:"true"`
	ThumbnailHosts     []string `envconfig:"THUMBNAIL_HOSTS" default:"upload.wikimedia.org"`
	ThumbnailCacheSize int      `envconfig:"THUMBNAIL_CACHE_SIZE" default:"64" validate:"min=1"`
	ProxyRate          float64  `envconfig:"PROXY_RATE" default:"10" validate:"gt=0"`
	ProxyBurst         int      `envconfig:"PROXY_BURST" default:"20" validate:"min=1"`
}

// Load 加载配置：先读取 .env（不存在则忽略），再从环境变量解析并校验
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := new(Config)
	if err := envconfig.Process("", cfg); err != nil {
		return nil, fmt.Errorf("加载配置失败: %w", err)
	}
	// 默认值只在这里定义一次
	if cfg.AppSecret == "" {
		cfg.AppSecret = defaultSecret
	}
	if cfg.DatasetURL == "" {
		cfg.DatasetURL = DefaultDatasetURL
	}
	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("配置校验失败: %w", err)
	}
	for i, host := range cfg.ThumbnailHosts {
		cfg.ThumbnailHosts[i] = strings.ToLower(strings.TrimSpace(host))
	}
	return cfg, nil
}

// IsProduction 是否生产环境
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// UsesDefaultSecret 是否仍在使用默认密钥
func (c *Config) UsesDefaultSecret() bool {
	return c.AppSecret == defaultSecret
}
