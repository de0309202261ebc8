package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	applog "github.com/user/movietable/internal/log"
	"github.com/user/movietable/internal/metrics"
	"github.com/user/movietable/internal/model"
	"github.com/user/movietable/internal/repository"
)

// ErrFetchFailed 数据获取失败（网络错误与 JSON 解析错误合并为这一种）
var ErrFetchFailed = errors.New("data fetch failed")

// JSONFetcher 拉取并解析 JSON
type JSONFetcher interface {
	GetJSON(ctx context.Context, url string, target interface{}) error
}

// DataLoader 启动时拉取一次电影数据集，失败只记录日志，不重试
type DataLoader struct {
	client    JSONFetcher
	movieRepo *repository.MovieRepository
	url       string
	timeout   time.Duration
	logger    zerolog.Logger

	once sync.Once
	done chan struct{}

	mu         sync.Mutex
	lastErr    error
	finishedAt time.Time
}

// NewDataLoader 创建加载器，timeout 为 0 表示不设超时
func NewDataLoader(client JSONFetcher, movieRepo *repository.MovieRepository, url string, timeout time.Duration) *DataLoader {
	return &DataLoader{
		client:    client,
		movieRepo: movieRepo,
		url:       url,
		timeout:   timeout,
		logger:    applog.WithComponent("loader"),
		done:      make(chan struct{}),
	}
}

// Start 在后台执行唯一一次加载；ctx 取消后返回的结果会被丢弃
func (l *DataLoader) Start(ctx context.Context) {
	l.once.Do(func() {
		go func() {
			defer close(l.done)
			_ = l.Load(ctx)
		}()
	})
}

// Done 加载结束（无论成功与否）后关闭
func (l *DataLoader) Done() <-chan struct{} {
	return l.done
}

// Load 拉取一次数据集。成功时整体替换列表，失败时列表保持不变
func (l *DataLoader) Load(ctx context.Context) error {
	if l.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.timeout)
		defer cancel()
	}

	start := time.Now()
	var movies []model.Movie
	err := l.client.GetJSON(ctx, l.url, &movies)
	if err == nil && ctx.Err() != nil {
		err = ctx.Err()
	}
	if err != nil {
		err = fmt.Errorf("%w: %v", ErrFetchFailed, err)
		l.finish(err)
		metrics.DatasetFetchTotal.WithLabelValues("failure").Inc()
		l.logger.Error().Err(err).Str("url", l.url).Msg("获取电影数据失败")
		return err
	}

	version := l.movieRepo.Replace(movies)
	l.finish(nil)
	metrics.DatasetFetchTotal.WithLabelValues("success").Inc()
	metrics.MoviesLoaded.Set(float64(len(movies)))
	l.logger.Info().
		Int("movies", len(movies)).
		Int("genres", len(l.movieRepo.Genres())).
		Uint64("version", version).
		Dur("elapsed", time.Since(start)).
		Msg("电影数据加载完成")
	return nil
}

func (l *DataLoader) finish(err error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.lastErr = err
	l.finishedAt = time.Now()
}

// Status 当前加载状态
func (l *DataLoader) Status() model.DatasetStatus {
	l.mu.Lock()
	defer l.mu.Unlock()

	status := model.DatasetStatus{
		Count:   l.movieRepo.Count(),
		Genres:  len(l.movieRepo.Genres()),
		Version: l.movieRepo.Version(),
	}
	status.Loaded = status.Version > 0
	if l.lastErr != nil {
		status.LastError = l.lastErr.Error()
	}
	if !l.finishedAt.IsZero() {
		finished := l.finishedAt
		status.FinishedAt = &finished
	}
	return status
}
