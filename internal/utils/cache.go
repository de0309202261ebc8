package utils

import (
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

type lruEntry[T any] struct {
	Value     T
	ExpiredAt time.Time
}

// LRUCache 带过期时间的 LRU 缓存，ttl 为 0 表示不过期
type LRUCache[T any] struct {
	storage *lru.Cache[string, lruEntry[T]]
	ttl     time.Duration
}

// NewLRUCache size 是最大条数，ttl 是有效期
func NewLRUCache[T any](size int, ttl time.Duration) *LRUCache[T] {
	if size < 1 {
		size = 1
	}
	// size >= 1 时 lru.New 不会返回错误
	c, _ := lru.New[string, lruEntry[T]](size)
	return &LRUCache[T]{storage: c, ttl: ttl}
}

// Set 写入（已存在则覆盖）
func (c *LRUCache[T]) Set(key string, value T) {
	entry := lruEntry[T]{Value: value}
	if c.ttl > 0 {
		entry.ExpiredAt = time.Now().Add(c.ttl)
	}
	c.storage.Add(key, entry)
}

// Get 读取，过期条目会被顺带删除
func (c *LRUCache[T]) Get(key string) (T, bool) {
	var zero T
	entry, ok := c.storage.Get(key)
	if !ok {
		return zero, false
	}
	if !entry.ExpiredAt.IsZero() && time.Now().After(entry.ExpiredAt) {
		c.storage.Remove(key)
		return zero, false
	}
	return entry.Value, true
}

// Purge 清空
func (c *LRUCache[T]) Purge() {
	c.storage.Purge()
}

// Len 当前条数
func (c *LRUCache[T]) Len() int {
	return c.storage.Len()
}
