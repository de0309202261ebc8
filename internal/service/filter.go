package service

import (
	"strings"

	"github.com/user/movietable/internal/model"
)

// FilterMovies 按标题（不区分大小写的子串）和类型（精确匹配）过滤。
// 标题为空白且未选类型时结果为空：未输入任何条件前不展示列表。
func FilterMovies(movies []model.Movie, title, genre string) []model.Movie {
	idx := FilterIndices(movies, title, genre)
	filtered := make([]model.Movie, len(idx))
	for i, j := range idx {
		filtered[i] = movies[j]
	}
	return filtered
}

// FilterIndices 与 FilterMovies 规则相同，返回命中电影在 movies 中的下标
func FilterIndices(movies []model.Movie, title, genre string) []int32 {
	if strings.TrimSpace(title) == "" && genre == "" {
		return []int32{}
	}

	needle := strings.ToLower(title)
	idx := make([]int32, 0)
	for i := range movies {
		if MatchMovie(&movies[i], needle, genre) {
			idx = append(idx, int32(i))
		}
	}
	return idx
}

// MatchMovie needle 须已转为小写；genre 为空表示不限类型
func MatchMovie(m *model.Movie, needle, genre string) bool {
	if !strings.Contains(strings.ToLower(m.Title), needle) {
		return false
	}
	return genre == "" || m.HasGenre(genre)
}
