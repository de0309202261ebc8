package service

import (
	"strconv"
	"strings"
	"time"

	"github.com/user/movietable/internal/metrics"
	"github.com/user/movietable/internal/model"
	"github.com/user/movietable/internal/repository"
	"github.com/user/movietable/internal/utils"
	"golang.org/x/sync/singleflight"
)

// TableService 表格视图：过滤、分页与翻页
type TableService struct {
	movieRepo *repository.MovieRepository
	cache     *utils.LRUCache[[]int32]
	sf        singleflight.Group
	pageSize  int
}

// NewTableService 创建表格服务。过滤结果按（数据集版本, 标题, 类型）缓存，翻页时不重新过滤。
// 缓存只保存命中电影在当前数据集中的下标
func NewTableService(movieRepo *repository.MovieRepository, cacheSize int, cacheTTL time.Duration) *TableService {
	return &TableService{
		movieRepo: movieRepo,
		cache:     utils.NewLRUCache[[]int32](cacheSize, cacheTTL),
		pageSize:  PageSize,
	}
}

// PageSize 每页条数
func (s *TableService) PageSize() int {
	return s.pageSize
}

// Genres 类型下拉框选项，来自完整列表
func (s *TableService) Genres() []string {
	return s.movieRepo.Genres()
}

// Matches 返回当前数据集、过滤命中的下标及数据集版本
func (s *TableService) Matches(title, genre string) ([]model.Movie, []int32, uint64) {
	movies, version := s.movieRepo.All()
	if strings.TrimSpace(title) == "" && genre == "" {
		return movies, []int32{}, version
	}

	key := cacheKey(version, title, genre)
	if cached, ok := s.cache.Get(key); ok {
		metrics.FilterEvaluationsTotal.WithLabelValues("cache").Inc()
		return movies, cached, version
	}

	val, _, _ := s.sf.Do(key, func() (interface{}, error) {
		idx := FilterIndices(movies, title, genre)
		s.cache.Set(key, idx)
		return idx, nil
	})
	metrics.FilterEvaluationsTotal.WithLabelValues("compute").Inc()
	return movies, val.([]int32), version
}

// SetFilter 修改过滤条件，页码总是回到 1
func (s *TableService) SetFilter(state model.TableState, title, genre string) model.TableState {
	state.Title = title
	state.Genre = genre
	state.Page = 1
	state.Version = s.movieRepo.Version()
	return state
}

// Sync 数据集发生变化（过滤结果被重新计算）时页码回到 1
func (s *TableService) Sync(state model.TableState) model.TableState {
	if state.Page < 1 {
		state.Page = 1
	}
	if version := s.movieRepo.Version(); state.Version != version {
		state.Version = version
		state.Page = 1
	}
	return state
}

// Prev 上一页，第 1 页时不变
func (s *TableService) Prev(state model.TableState) model.TableState {
	state = s.Sync(state)
	state.Page = PrevPage(state.Page)
	return state
}

// Next 下一页，当前窗口已到末尾时不变
func (s *TableService) Next(state model.TableState) model.TableState {
	state = s.Sync(state)
	_, idx, _ := s.Matches(state.Title, state.Genre)
	state.Page = NextPage(ClampPage(state.Page, s.pageSize, len(idx)), s.pageSize, len(idx))
	return state
}

// View 渲染当前状态对应的页
func (s *TableService) View(state model.TableState) (model.Page, model.TableState) {
	state = s.Sync(state)
	movies, idx, _ := s.Matches(state.Title, state.Genre)
	page := BuildIndexedPage(movies, idx, state.Page, s.pageSize)
	state.Page = page.Page
	return page, state
}

// Query 无状态查询（JSON API 使用）
func (s *TableService) Query(title, genre string, page int) model.Page {
	movies, idx, _ := s.Matches(title, genre)
	return BuildIndexedPage(movies, idx, page, s.pageSize)
}

func cacheKey(version uint64, title, genre string) string {
	return strconv.FormatUint(version, 10) + "\x00" + strings.ToLower(title) + "\x00" + genre
}
