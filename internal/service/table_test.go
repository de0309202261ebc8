package service

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/movietable/internal/model"
	"github.com/user/movietable/internal/repository"
)

func newTableService(movies []model.Movie) (*TableService, *repository.MovieRepository) {
	repo := repository.NewMovieRepository()
	if movies != nil {
		repo.Replace(movies)
	}
	return NewTableService(repo, 16, time.Minute), repo
}

func dramaMovies(n int) []model.Movie {
	movies := make([]model.Movie, 0, n+1)
	for i := 0; i < n; i++ {
		movies = append(movies, model.Movie{Title: fmt.Sprintf("Drama %02d", i+1), Genres: []string{"Drama"}})
	}
	return append(movies, model.Movie{Title: "Comedy", Genres: []string{"Comedy"}})
}

func TestTableService_Scenario(t *testing.T) {
	svc, _ := newTableService([]model.Movie{
		{Title: "Up", Year: 2009, Genres: []string{"Animation"}},
		{Title: "Uptown", Year: 2015, Genres: []string{"Drama"}},
	})

	state := svc.SetFilter(model.TableState{}, "up", "")
	page, _ := svc.View(state)
	assert.Equal(t, []string{"Up", "Uptown"}, titles(page.Movies))

	state = svc.SetFilter(state, "up", "Drama")
	page, _ = svc.View(state)
	assert.Equal(t, []string{"Uptown"}, titles(page.Movies))
	assert.Equal(t, []string{"Animation", "Drama"}, svc.Genres())
}

func TestTableService_DefaultStateShowsNothing(t *testing.T) {
	svc, _ := newTableService(dramaMovies(5))

	page, state := svc.View(model.TableState{})

	assert.Empty(t, page.Movies)
	assert.Equal(t, 0, page.Total)
	assert.Equal(t, 1, state.Page)
}

func TestTableService_Pagination(t *testing.T) {
	svc, _ := newTableService(dramaMovies(45))
	state := svc.SetFilter(model.TableState{}, "", "Drama")

	page, state := svc.View(state)
	require.Equal(t, 3, page.TotalPages)
	assert.Equal(t, "Drama 01", page.Movies[0].Title)
	assert.Equal(t, "Drama 20", page.Movies[19].Title)

	state = svc.Prev(state)
	assert.Equal(t, 1, state.Page)

	state = svc.Next(svc.Next(state))
	page, state = svc.View(state)
	assert.Equal(t, 3, page.Page)
	assert.Equal(t, "Drama 41", page.Movies[0].Title)
	assert.Equal(t, "Drama 45", page.Movies[4].Title)
	assert.False(t, page.HasNext)

	state = svc.Next(state)
	assert.Equal(t, 3, state.Page)

	state = svc.SetFilter(state, "drama 4", "Drama")
	assert.Equal(t, 1, state.Page)
	page, _ = svc.View(state)
	assert.Len(t, page.Movies, 7)
}

func TestTableService_DatasetChangeResetsPage(t *testing.T) {
	svc, repo := newTableService(dramaMovies(45))
	state := svc.Next(svc.SetFilter(model.TableState{}, "", "Drama"))
	require.Equal(t, 2, state.Page)

	repo.Replace(dramaMovies(60))

	page, state := svc.View(state)
	assert.Equal(t, 1, state.Page)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, 60, page.Total)
}

func TestTableService_MatchesIsCached(t *testing.T) {
	svc, _ := newTableService(dramaMovies(3))

	movies, first, v1 := svc.Matches("drama", "")
	_, second, v2 := svc.Matches("DRAMA", "")

	assert.Equal(t, v1, v2)
	assert.Equal(t, []int32{0, 1, 2}, first)
	assert.Same(t, &first[0], &second[0])
	assert.Equal(t, 1, svc.cache.Len())
	assert.Equal(t, "Drama 01", movies[first[0]].Title)
}

func TestTableService_CacheHoldsIndicesOnly(t *testing.T) {
	svc, repo := newTableService(dramaMovies(45))

	page := svc.Query("", "Comedy", 1)
	require.Len(t, page.Movies, 1)

	cached, ok := svc.cache.Get(cacheKey(repo.Version(), "", "Comedy"))
	require.True(t, ok)
	assert.Equal(t, []int32{45}, cached)

	// 当前页是副本，不引用缓存或数据集
	all, _ := repo.All()
	assert.NotSame(t, &all[45], &page.Movies[0])
	assert.Equal(t, all[45], page.Movies[0])
}

func TestTableService_Query(t *testing.T) {
	svc, _ := newTableService(dramaMovies(45))

	page := svc.Query("drama", "", 3)
	assert.Len(t, page.Movies, 5)
	assert.Equal(t, 45, page.Total)

	page = svc.Query("", "", 1)
	assert.Empty(t, page.Movies)
}
