package trendcache

import (
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/chotuoi/listing-pipeline/internal/core/domain"
)

const (
	DefaultSize = 256
	DefaultTTL  = 15 * time.Minute
)

// Cache bounds the trending-keyword feed from the automation system, keyed by
// category. Entries expire so stale trends fall out without explicit
// invalidation; inbound trending-keywords-updated webhooks overwrite eagerly.
type Cache struct {
	lru *expirable.LRU[string, []domain.KeywordStat]
}

func New(size int, ttl time.Duration) *Cache {
	if size <= 0 {
		size = DefaultSize
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Cache{
		lru: expirable.NewLRU[string, []domain.KeywordStat](size, nil, ttl),
	}
}

func (c *Cache) Get(category string) ([]domain.KeywordStat, bool) {
	return c.lru.Get(category)
}

func (c *Cache) Set(category string, stats []domain.KeywordStat) {
	c.lru.Add(category, stats)
}
