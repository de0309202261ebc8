package log

import (
	"io"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Config 日志配置
type Config struct {
	Level   string    // 日志级别（debug、info 等），为空时读取 LOG_LEVEL
	Output  io.Writer // 输出位置，默认 os.Stdout
	Service string    // 每条日志附带的服务名
}

var (
	once sync.Once
	base zerolog.Logger
)

// Configure 初始化全局 logger，仅第一次调用生效
func Configure(cfg Config) {
	once.Do(func() {
		level := zerolog.InfoLevel
		raw := cfg.Level
		if raw == "" {
			raw = os.Getenv("LOG_LEVEL")
		}
		if raw != "" {
			if parsed, err := zerolog.ParseLevel(raw); err == nil {
				level = parsed
			}
		}
		zerolog.SetGlobalLevel(level)
		zerolog.TimeFieldFormat = time.RFC3339

		writer := cfg.Output
		if writer == nil {
			writer = os.Stdout
		}

		service := cfg.Service
		if service == "" {
			service = "movietable"
		}

		base = zerolog.New(writer).With().
			Timestamp().
			Str("service", service).
			Logger()
	})
}

// Base 返回基础 logger
func Base() zerolog.Logger {
	Configure(Config{})
	return base
}

// WithComponent 返回带 component 字段的子 logger
func WithComponent(component string) zerolog.Logger {
	return Base().With().Str("component", component).Logger()
}
