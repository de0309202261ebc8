// Package metrics 定义 Prometheus 指标
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// DatasetFetchTotal 数据集拉取次数，result 为 success / failure
	DatasetFetchTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "movietable_dataset_fetch_total",
		Help: "Total number of dataset fetch attempts, by result.",
	}, []string{"result"})

	// MoviesLoaded 当前已加载的电影数
	MoviesLoaded = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "movietable_movies_loaded",
		Help: "Number of movies currently held in memory.",
	})

	// FilterEvaluationsTotal 过滤计算次数，source 为 cache / compute
	FilterEvaluationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "movietable_filter_evaluations_total",
		Help: "Total number of filtered list lookups, by source.",
	}, []string{"source"})

	// ThumbnailProxyTotal 缩略图代理请求，result 为 hit / fetched / rejected / error
	ThumbnailProxyTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "movietable_thumbnail_proxy_total",
		Help: "Total number of thumbnail proxy requests, by result.",
	}, []string{"result"})

	// RateLimitExceededTotal 限流拒绝次数
	RateLimitExceededTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "movietable_ratelimit_exceeded_total",
		Help: "Total number of requests rejected by the rate limiter, by route.",
	}, []string{"route"})
)
