package model

import (
	"strings"
	"time"
)

// TableState 表格视图状态（存放在 Session 中，每个访客一份）
type TableState struct {
	Title   string // 标题关键词，不区分大小写
	Genre   string // 类型，空字符串表示全部类型
	Page    int    // 当前页，从 1 开始
	Version uint64 // 计算过滤结果时的数据集版本
}

// IsDefault 两个过滤条件均为默认值（标题仅含空白也视为未填写）
func (s TableState) IsDefault() bool {
	return strings.TrimSpace(s.Title) == "" && s.Genre == ""
}

// Page 当前页视图
type Page struct {
	Movies     []Movie `json:"movies"`
	Page       int     `json:"page"`
	PageSize   int     `json:"page_size"`
	Total      int     `json:"total"`       // 过滤后的总数
	TotalPages int     `json:"total_pages"` // 总页数
	HasPrev    bool    `json:"has_prev"`
	HasNext    bool    `json:"has_next"`
}

// DatasetStatus 数据集加载状态
type DatasetStatus struct {
	Loaded     bool       `json:"loaded"`
	Count      int        `json:"count"`
	Genres     int        `json:"genres"`
	Version    uint64     `json:"version"`
	LastError  string     `json:"last_error,omitempty"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
}
