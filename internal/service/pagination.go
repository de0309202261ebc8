package service

import "github.com/user/movietable/internal/model"

// PageSize 每页条数
const PageSize = 20

// PageSlice 返回第 page 页的窗口 [(page-1)*size, page*size)，按列表长度截断
func PageSlice(movies []model.Movie, page, size int) []model.Movie {
	start, end := pageBounds(page, size, len(movies))
	if start == end {
		return []model.Movie{}
	}
	return movies[start:end]
}

// pageBounds 第 page 页在长度为 n 的列表中的 [start, end)
func pageBounds(page, size, n int) (int, int) {
	if page < 1 || size < 1 {
		return 0, 0
	}
	start := (page - 1) * size
	if start >= n {
		return 0, 0
	}
	end := start + size
	if end > n {
		end = n
	}
	return start, end
}

// TotalPages ceil(total/size)
func TotalPages(total, size int) int {
	if total <= 0 || size < 1 {
		return 0
	}
	return (total + size - 1) / size
}

// PrevPage 上一页，最小为 1
func PrevPage(page int) int {
	if page-1 < 1 {
		return 1
	}
	return page - 1
}

// NextPage 仅当当前窗口末尾仍小于总数时翻到下一页
func NextPage(page, size, total int) int {
	if page*size < total {
		return page + 1
	}
	return page
}

// ClampPage 将页码限制在 [1, TotalPages] 内
func ClampPage(page, size, total int) int {
	last := TotalPages(total, size)
	if page > last {
		page = last
	}
	if page < 1 {
		page = 1
	}
	return page
}

// BuildPage 组装当前页视图
func BuildPage(movies []model.Movie, page, size int) model.Page {
	total := len(movies)
	page = ClampPage(page, size, total)
	return newPage(PageSlice(movies, page, size), page, size, total)
}

// BuildIndexedPage 按过滤下标分页，只复制当前页的电影
func BuildIndexedPage(movies []model.Movie, idx []int32, page, size int) model.Page {
	total := len(idx)
	page = ClampPage(page, size, total)
	start, end := pageBounds(page, size, total)
	rows := make([]model.Movie, 0, end-start)
	for _, j := range idx[start:end] {
		rows = append(rows, movies[j])
	}
	return newPage(rows, page, size, total)
}

func newPage(rows []model.Movie, page, size, total int) model.Page {
	return model.Page{
		Movies:     rows,
		Page:       page,
		PageSize:   size,
		Total:      total,
		TotalPages: TotalPages(total, size),
		HasPrev:    page > 1,
		HasNext:    page*size < total,
	}
}
