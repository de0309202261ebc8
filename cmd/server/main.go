package main

import (
	"context"
	"encoding/gob"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/gzip"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"

	"github.com/user/movietable/internal/config"
	"github.com/user/movietable/internal/handler"
	applog "github.com/user/movietable/internal/log"
	"github.com/user/movietable/internal/middleware"
	"github.com/user/movietable/internal/model"
	"github.com/user/movietable/internal/repository"
	"github.com/user/movietable/internal/router"
	"github.com/user/movietable/internal/service"
	"github.com/user/movietable/internal/utils"
	"github.com/user/movietable/web"
)

func main() {
	// Session 中保存表格状态
	gob.Register(model.TableState{})

	// 加载配置（含 .env）
	cfg, err := config.Load()
	if err != nil {
		base := applog.Base()
		base.Fatal().Err(err).Msg("配置加载失败")
	}

	applog.Configure(applog.Config{Level: cfg.LogLevel})
	logger := applog.WithComponent("main")

	if cfg.IsProduction() && cfg.UsesDefaultSecret() {
		logger.Warn().Msg("【严重警告】生产环境正在使用默认密钥！请立即设置 APP_SECRET 环境变量。")
	}

	repos := repository.NewRepositories()

	// 后台拉取一次数据集，拉取完成前页面使用空列表
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	loader := service.NewDataLoader(utils.NewHTTPClient(0), repos.Movie, cfg.DatasetURL, cfg.FetchTimeout)
	loader.Start(ctx)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(gzip.Gzip(gzip.DefaultCompression))

	store := cookie.NewStore([]byte(cfg.AppSecret))
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 7,
		HttpOnly: true,
		Secure:   cfg.IsProduction(),
		SameSite: http.SameSiteLaxMode,
	})
	r.Use(sessions.Sessions("movietable", store))

	r.Use(middleware.Logger())
	r.Use(middleware.Security())

	h := handler.NewHandler(repos, cfg, loader)

	renderer, err := router.LoadTemplates(web.FS, h.TemplateFuncs())
	if err != nil {
		logger.Fatal().Err(err).Msg("模板加载失败")
	}
	r.HTMLRender = renderer

	static, err := router.StaticFS(web.FS)
	if err != nil {
		logger.Fatal().Err(err).Msg("静态资源加载失败")
	}
	r.StaticFS("/static", static)

	router.RegisterRoutes(r, h)

	srv := &http.Server{
		Addr:           ":" + cfg.Port,
		Handler:        r,
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   10 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	go func() {
		logger.Info().Msgf("服务器启动于 http://localhost:%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("服务器启动失败")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info().Msg("正在关闭服务器...")

	// 未完成的数据集拉取直接丢弃
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Fatal().Err(err).Msg("服务器强制关闭")
	}

	logger.Info().Msg("服务器已退出")
}
