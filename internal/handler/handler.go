package handler

import (
	"html/template"
	"net/http"
	"strings"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/user/movietable/internal/config"
	applog "github.com/user/movietable/internal/log"
	"github.com/user/movietable/internal/model"
	"github.com/user/movietable/internal/repository"
	"github.com/user/movietable/internal/service"
	"github.com/user/movietable/internal/utils"
)

// tableStateKey Session 中保存表格状态的键
const tableStateKey = "table"

// Handler HTTP 处理器
type Handler struct {
	Config     *config.Config
	Loader     *service.DataLoader
	Table      *service.TableService
	Thumbnails *service.ThumbnailProxy
	logger     zerolog.Logger
}

// NewHandler 创建处理器
func NewHandler(repos *repository.Repositories, cfg *config.Config, loader *service.DataLoader) *Handler {
	h := &Handler{
		Config: cfg,
		Loader: loader,
		Table:  service.NewTableService(repos.Movie, cfg.CacheSize, cfg.CacheTTL),
		logger: applog.WithComponent("handler"),
	}
	if cfg.ProxyThumbnails {
		h.Thumbnails = service.NewThumbnailProxy(utils.NewHTTPClient(cfg.FetchTimeout), cfg.ThumbnailHosts, cfg.ThumbnailCacheSize)
	}
	return h
}

// TemplateFuncs 模板函数
func (h *Handler) TemplateFuncs() template.FuncMap {
	return template.FuncMap{
		"join": strings.Join,
		"thumb": func(raw string) string {
			return h.Thumbnails.ProxyURL(raw)
		},
	}
}

// RenderData 统一封装公共渲染数据
func (h *Handler) RenderData(c *gin.Context, data gin.H) gin.H {
	res := gin.H{
		"SiteName": h.Config.SiteName,
		"Title":    h.Config.SiteName,
		"Path":     c.Request.URL.Path,
	}
	for k, v := range data {
		res[k] = v
	}
	return res
}

// ==================== 页面 ====================

// Index 电影列表页
func (h *Handler) Index(c *gin.Context) {
	page, state := h.Table.View(h.loadState(c))
	h.saveState(c, state)

	c.HTML(http.StatusOK, "index.html", h.RenderData(c, gin.H{
		"Genres": h.Table.Genres(),
		"State":  state,
		"Page":   page,
	}))
}

// filterForm 过滤表单。长度受限，保证状态能写进 Cookie
type filterForm struct {
	Title string `form:"title" binding:"max=200"`
	Genre string `form:"genre" binding:"max=100"`
}

// Filter 修改过滤条件（页码回到 1）
func (h *Handler) Filter(c *gin.Context) {
	var form filterForm
	if err := c.ShouldBind(&form); err != nil {
		utils.BadRequest(c, "参数错误: "+err.Error())
		return
	}
	state := h.Table.SetFilter(h.loadState(c), form.Title, form.Genre)
	h.respondTable(c, state)
}

// PrevPage 上一页
func (h *Handler) PrevPage(c *gin.Context) {
	h.respondTable(c, h.Table.Prev(h.loadState(c)))
}

// NextPage 下一页
func (h *Handler) NextPage(c *gin.Context) {
	h.respondTable(c, h.Table.Next(h.loadState(c)))
}

// NotFound 404 页面
func (h *Handler) NotFound(c *gin.Context) {
	if strings.HasPrefix(c.Request.URL.Path, "/api/") {
		utils.NotFound(c, "")
		return
	}
	c.HTML(http.StatusNotFound, "404.html", h.RenderData(c, gin.H{
		"Title": "Not Found - " + h.Config.SiteName,
	}))
}

// respondTable htmx 请求返回表格片段，普通表单提交重定向回列表页
func (h *Handler) respondTable(c *gin.Context, state model.TableState) {
	if c.GetHeader("HX-Request") != "true" {
		h.saveState(c, state)
		c.Redirect(http.StatusSeeOther, "/")
		return
	}

	page, state := h.Table.View(state)
	h.saveState(c, state)
	c.HTML(http.StatusOK, "partials/movie_table.html", gin.H{
		"State": state,
		"Page":  page,
	})
}

func (h *Handler) loadState(c *gin.Context) model.TableState {
	session := sessions.Default(c)
	if raw := session.Get(tableStateKey); raw != nil {
		if state, ok := raw.(model.TableState); ok {
			return state
		}
	}
	return model.TableState{Page: 1}
}

func (h *Handler) saveState(c *gin.Context, state model.TableState) {
	session := sessions.Default(c)
	session.Set(tableStateKey, state)
	if err := session.Save(); err != nil {
		h.logger.Warn().Err(err).Msg("保存 Session 失败")
	}
}
