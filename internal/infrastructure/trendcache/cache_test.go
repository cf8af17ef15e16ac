package trendcache

import (
	"fmt"
	"testing"
	"time"

	"github.com/chotuoi/listing-pipeline/internal/core/domain"
)

func TestCacheRoundTrip(t *testing.T) {
	cache := New(4, time.Minute)
	cache.Set("trai-cay", []domain.KeywordStat{{Keyword: "xoài", Count: 3, Source: domain.KeywordSourceAutomation}})

	stats, ok := cache.Get("trai-cay")
	if !ok {
		t.Fatal("expected hit")
	}
	if len(stats) != 1 || stats[0].Keyword != "xoài" {
		t.Fatalf("unexpected stats: %+v", stats)
	}
	if _, ok := cache.Get("rau-cu"); ok {
		t.Fatal("unexpected hit for missing category")
	}
}

func TestCacheExpiresEntries(t *testing.T) {
	cache := New(4, 20*time.Millisecond)
	cache.Set("trai-cay", []domain.KeywordStat{{Keyword: "xoài"}})

	time.Sleep(50 * time.Millisecond)
	if _, ok := cache.Get("trai-cay"); ok {
		t.Fatal("expected entry to expire")
	}
}

func TestCacheBoundsEntryCount(t *testing.T) {
	cache := New(2, time.Minute)
	for i := 0; i < 5; i++ {
		cache.Set(fmt.Sprintf("cat-%d", i), []domain.KeywordStat{{Keyword: "k"}})
	}

	hits := 0
	for i := 0; i < 5; i++ {
		if _, ok := cache.Get(fmt.Sprintf("cat-%d", i)); ok {
			hits++
		}
	}
	if hits > 2 {
		t.Fatalf("expected at most 2 live entries, got %d", hits)
	}
}
