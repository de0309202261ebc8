package router

import (
	"html/template"
	"io/fs"
	"net/http"
	"strings"

	"github.com/gin-contrib/multitemplate"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/user/movietable/internal/handler"
	"github.com/user/movietable/internal/middleware"
)

// RegisterRoutes 注册所有路由
func RegisterRoutes(r *gin.Engine, h *handler.Handler) {
	r.GET("/health", h.Health)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// ==================== 页面 ====================
	r.GET("/", h.Index)
	r.POST("/filter", h.Filter)
	r.POST("/page/prev", h.PrevPage)
	r.POST("/page/next", h.NextPage)

	// ==================== API ====================
	api := r.Group("/api")
	{
		api.GET("/movies", h.Movies)
		api.GET("/genres", h.Genres)

		limiter := middleware.NewIPLimiter(h.Config.ProxyRate, h.Config.ProxyBurst)
		api.GET("/proxy/image", middleware.RateLimit(limiter, "proxy_image"), h.ProxyImage)
	}

	r.NoRoute(h.NotFound)
}

// LoadTemplates 使用 multitemplate 从内嵌文件系统加载模板：每个页面一套（布局 + 局部模板 + 页面）
func LoadTemplates(fsys fs.FS, funcMap template.FuncMap) (multitemplate.Renderer, error) {
	r := multitemplate.NewRenderer()

	layouts, err := fs.Glob(fsys, "templates/layouts/*.html")
	if err != nil {
		return nil, err
	}
	partials, err := fs.Glob(fsys, "templates/partials/*.html")
	if err != nil {
		return nil, err
	}

	pages := []string{"index", "404"}
	for _, page := range pages {
		files := make([]string, 0, len(layouts)+len(partials)+1)
		files = append(files, layouts...)
		files = append(files, partials...)
		files = append(files, "templates/pages/"+page+".html")

		tmpl, err := template.New(baseName(files[0])).Funcs(funcMap).ParseFS(fsys, files...)
		if err != nil {
			return nil, err
		}
		r.Add(page+".html", tmpl)
	}

	// htmx 请求只返回局部模板
	for _, partial := range partials {
		name := baseName(partial)
		tmpl, err := template.New(name).Funcs(funcMap).ParseFS(fsys, partial)
		if err != nil {
			return nil, err
		}
		r.Add("partials/"+name, tmpl)
	}

	return r, nil
}

// StaticFS 静态资源子目录
func StaticFS(fsys fs.FS) (http.FileSystem, error) {
	sub, err := fs.Sub(fsys, "static")
	if err != nil {
		return nil, err
	}
	return http.FS(sub), nil
}

func baseName(path string) string {
	return path[strings.LastIndex(path, "/")+1:]
}
