package service

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"time"

	"github.com/user/movietable/internal/metrics"
	"github.com/user/movietable/internal/utils"
	"golang.org/x/sync/singleflight"
)

const (
	// maxThumbnailBytes 单张缩略图大小上限
	maxThumbnailBytes = 2 << 20
	// thumbnailTTL 缩略图缓存有效期
	thumbnailTTL = time.Hour
	// thumbnailFetchTimeout 共享拉取的超时，不受单个请求断开影响
	thumbnailFetchTimeout = 15 * time.Second
)

var (
	// ErrHostNotAllowed 缩略图地址不在白名单内
	ErrHostNotAllowed = errors.New("thumbnail host not allowed")
	// ErrInvalidThumbnailURL 缩略图地址无法解析或不是 http(s)
	ErrInvalidThumbnailURL = errors.New("invalid thumbnail url")
)

// Thumbnail 缩略图内容
type Thumbnail struct {
	Data        []byte
	ContentType string
}

// ThumbnailProxy 缩略图代理：仅允许白名单域名，结果写入定长 LRU 缓存，同一地址并发请求只拉取一次
type ThumbnailProxy struct {
	client *utils.HTTPClient
	hosts  map[string]struct{}
	cache  *utils.LRUCache[*Thumbnail]
	sf     singleflight.Group
}

// NewThumbnailProxy cacheSize 为最多缓存的图片张数
func NewThumbnailProxy(client *utils.HTTPClient, hosts []string, cacheSize int) *ThumbnailProxy {
	allowed := make(map[string]struct{}, len(hosts))
	for _, h := range hosts {
		if h = strings.ToLower(strings.TrimSpace(h)); h != "" {
			allowed[h] = struct{}{}
		}
	}
	return &ThumbnailProxy{
		client: client,
		hosts:  allowed,
		cache:  utils.NewLRUCache[*Thumbnail](cacheSize, thumbnailTTL),
	}
}

// Allowed 判断地址能否代理
func (p *ThumbnailProxy) Allowed(rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return ErrInvalidThumbnailURL
	}
	if _, ok := p.hosts[strings.ToLower(u.Hostname())]; !ok {
		return ErrHostNotAllowed
	}
	return nil
}

// Fetch 获取缩略图
func (p *ThumbnailProxy) Fetch(ctx context.Context, rawURL string) (*Thumbnail, error) {
	if err := p.Allowed(rawURL); err != nil {
		metrics.ThumbnailProxyTotal.WithLabelValues("rejected").Inc()
		return nil, err
	}

	if thumb, ok := p.cache.Get(rawURL); ok {
		metrics.ThumbnailProxyTotal.WithLabelValues("hit").Inc()
		return thumb, nil
	}

	// 调用方断开只影响自己，共享的拉取继续完成并写入缓存
	ch := p.sf.DoChan(rawURL, func() (interface{}, error) {
		fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), thumbnailFetchTimeout)
		defer cancel()

		data, contentType, err := p.client.GetBytes(fetchCtx, rawURL, maxThumbnailBytes)
		if err != nil {
			return nil, err
		}
		if !strings.HasPrefix(contentType, "image/") {
			contentType = "application/octet-stream"
		}
		thumb := &Thumbnail{Data: data, ContentType: contentType}
		p.cache.Set(rawURL, thumb)
		return thumb, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			metrics.ThumbnailProxyTotal.WithLabelValues("error").Inc()
			return nil, res.Err
		}
		metrics.ThumbnailProxyTotal.WithLabelValues("fetched").Inc()
		return res.Val.(*Thumbnail), nil
	}
}

// ProxyURL 返回页面上使用的图片地址；不可代理时原样返回
func (p *ThumbnailProxy) ProxyURL(rawURL string) string {
	if p == nil || rawURL == "" || p.Allowed(rawURL) != nil {
		return rawURL
	}
	return "/api/proxy/image?url=" + url.QueryEscape(rawURL)
}
