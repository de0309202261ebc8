package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/user/movietable/internal/service"
	"github.com/user/movietable/internal/utils"
)

// movieQuery /api/movies 查询参数
type movieQuery struct {
	Title string `form:"title" binding:"max=200"`
	Genre string `form:"genre" binding:"max=100"`
	Page  int    `form:"page" binding:"omitempty,min=1"`
}

// Movies 无状态的过滤 + 分页查询
func (h *Handler) Movies(c *gin.Context) {
	var q movieQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		utils.BadRequest(c, "参数错误: "+err.Error())
		return
	}
	if q.Page == 0 {
		q.Page = 1
	}
	utils.Success(c, h.Table.Query(q.Title, q.Genre, q.Page))
}

// Genres 全部类型（首次出现顺序）
func (h *Handler) Genres(c *gin.Context) {
	utils.Success(c, h.Table.Genres())
}

// Health 健康检查，附带数据集加载状态
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"dataset": h.Loader.Status(),
	})
}

// ProxyImage 缩略图代理
func (h *Handler) ProxyImage(c *gin.Context) {
	if h.Thumbnails == nil {
		utils.NotFound(c, "缩略图代理未启用")
		return
	}
	targetURL := c.Query("url")
	if targetURL == "" {
		utils.BadRequest(c, "URL 不能为空")
		return
	}

	thumb, err := h.Thumbnails.Fetch(c.Request.Context(), targetURL)
	if err != nil {
		var statusErr *utils.StatusError
		switch {
		case errors.Is(err, service.ErrInvalidThumbnailURL):
			utils.BadRequest(c, "URL 无效")
		case errors.Is(err, service.ErrHostNotAllowed):
			utils.Forbidden(c, "不允许代理该域名")
		case errors.As(err, &statusErr):
			c.AbortWithStatus(statusErr.Code)
		default:
			h.logger.Warn().Err(err).Str("url", targetURL).Msg("请求缩略图失败")
			utils.BadGateway(c, "请求图片失败")
		}
		return
	}

	c.Header("Cache-Control", "public, max-age=86400")
	c.Data(http.StatusOK, thumb.ContentType, thumb.Data)
}
