package repository

import (
	"sync"

	"github.com/user/movietable/internal/model"
)

// MovieRepository 进程内的电影列表，整表替换，只读访问
type MovieRepository struct {
	mu      sync.RWMutex
	movies  []model.Movie
	genres  []string
	version uint64
}

func NewMovieRepository() *MovieRepository {
	return &MovieRepository{}
}

// Replace 整体替换电影列表，同时重新枚举类型并递增版本号
func (r *MovieRepository) Replace(movies []model.Movie) uint64 {
	genres := EnumerateGenres(movies)

	r.mu.Lock()
	defer r.mu.Unlock()
	r.movies = movies
	r.genres = genres
	r.version++
	return r.version
}

// All 返回完整列表及其版本号。调用方不得修改返回的切片
func (r *MovieRepository) All() ([]model.Movie, uint64) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.movies, r.version
}

// Genres 返回全部类型（首次出现顺序）
func (r *MovieRepository) Genres() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.genres
}

// Version 当前数据集版本，0 表示尚未加载
func (r *MovieRepository) Version() uint64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.version
}

// Count 电影总数
func (r *MovieRepository) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.movies)
}

// EnumerateGenres 按首次出现顺序列出不重复的类型
func EnumerateGenres(movies []model.Movie) []string {
	seen := make(map[string]struct{})
	genres := make([]string, 0)
	for i := range movies {
		for _, g := range movies[i].Genres {
			if _, ok := seen[g]; ok {
				continue
			}
			seen[g] = struct{}{}
			genres = append(genres, g)
		}
	}
	return genres
}
