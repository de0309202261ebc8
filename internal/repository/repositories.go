package repository

// Repositories 仓库集合
type Repositories struct {
	Movie *MovieRepository
}

// NewRepositories 创建仓库集合
func NewRepositories() *Repositories {
	return &Repositories{
		Movie: NewMovieRepository(),
	}
}
