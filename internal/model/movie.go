package model

// Movie 电影记录（原样来自外部数据集，不做校验和规范化）
type Movie struct {
	Title           string   `json:"title"`
	Year            int      `json:"year"`
	Cast            []string `json:"cast"`
	Genres          []string `json:"genres"`
	Href            string   `json:"href,omitempty"`
	Extract         string   `json:"extract,omitempty"`
	Thumbnail       string   `json:"thumbnail,omitempty"`
	ThumbnailWidth  int      `json:"thumbnail_width,omitempty"`
	ThumbnailHeight int      `json:"thumbnail_height,omitempty"`
}

// HasGenre 判断电影是否包含指定类型（精确匹配）
func (m *Movie) HasGenre(genre string) bool {
	for _, g := range m.Genres {
		if g == genre {
			return true
		}
	}
	return false
}
