package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/chotuoi/listing-pipeline/internal/core/domain"
)

type keywordSuggesterFake struct {
	keywords []string
	err      error
	calls    int
}

func (f *keywordSuggesterFake) SuggestTrending(context.Context, string, int) ([]string, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.keywords, nil
}

type cacheFake struct {
	entries map[string][]domain.KeywordStat
	sets    int
}

func (f *cacheFake) Get(category string) ([]domain.KeywordStat, bool) {
	stats, ok := f.entries[category]
	return stats, ok
}

func (f *cacheFake) Set(category string, stats []domain.KeywordStat) {
	if f.entries == nil {
		f.entries = map[string][]domain.KeywordStat{}
	}
	f.entries[category] = stats
	f.sets++
}

func TestTrendingKeywordsDedupesAcrossCase(t *testing.T) {
	repo := &repoFake{trendingStats: []domain.KeywordStat{
		{Keyword: "Tươi", Count: 5, Source: domain.KeywordSourceStore},
	}}
	notifier := &notifierFake{trending: []domain.KeywordStat{
		{Keyword: "tươi", Count: 3, Source: domain.KeywordSourceAutomation},
		{Keyword: "hữu cơ", Count: 2, Source: domain.KeywordSourceAutomation},
	}}
	ai := &keywordSuggesterFake{keywords: []string{"TƯƠI", "ngon"}}

	uc := NewTrendingKeywordsUseCase(repo, notifier, ai, &cacheFake{})
	stats, err := uc.TrendingKeywords(context.Background(), "rau-cu", 10)
	if err != nil {
		t.Fatalf("trending: %v", err)
	}

	if len(stats) != 3 {
		t.Fatalf("expected 3 deduped keywords, got %+v", stats)
	}
	if stats[0].Keyword != "Tươi" || stats[0].Source != domain.KeywordSourceStore || stats[0].Count != 5 {
		t.Fatalf("first occurrence must win with its metadata: %+v", stats[0])
	}
	for _, stat := range stats[1:] {
		if stat.Keyword == "tươi" || stat.Keyword == "TƯƠI" {
			t.Fatalf("case variant leaked through: %+v", stats)
		}
	}
}

func TestTrendingKeywordsToleratesFailingSources(t *testing.T) {
	repo := &repoFake{trendingErr: errors.New("db down")}
	notifier := &notifierFake{trendingErr: errors.New("automation down")}
	ai := &keywordSuggesterFake{keywords: []string{"xoài cát"}}

	uc := NewTrendingKeywordsUseCase(repo, notifier, ai, &cacheFake{})
	stats, err := uc.TrendingKeywords(context.Background(), "trai-cay", 10)
	if err != nil {
		t.Fatalf("a failing source must not be fatal: %v", err)
	}
	if len(stats) != 1 || stats[0].Source != domain.KeywordSourceAI {
		t.Fatalf("unexpected stats: %+v", stats)
	}
}

func TestTrendingKeywordsServesAutomationFromCache(t *testing.T) {
	cache := &cacheFake{entries: map[string][]domain.KeywordStat{
		"trai-cay": {{Keyword: "xoài", Count: 7, Source: domain.KeywordSourceAutomation}},
	}}
	notifier := &notifierFake{trending: []domain.KeywordStat{{Keyword: "stale"}}}
	uc := NewTrendingKeywordsUseCase(&repoFake{}, notifier, &keywordSuggesterFake{}, cache)

	stats, err := uc.TrendingKeywords(context.Background(), "trai-cay", 10)
	if err != nil {
		t.Fatalf("trending: %v", err)
	}
	if notifier.fetchCalls != 0 {
		t.Fatal("cache hit must skip the automation fetch")
	}
	found := false
	for _, stat := range stats {
		if stat.Keyword == "xoài" {
			found = true
		}
	}
	if !found {
		t.Fatalf("cached entry missing from result: %+v", stats)
	}
}

func TestTrendingKeywordsCachesAutomationFeed(t *testing.T) {
	cache := &cacheFake{}
	notifier := &notifierFake{trending: []domain.KeywordStat{{Keyword: "rau sạch", Count: 4}}}
	uc := NewTrendingKeywordsUseCase(&repoFake{}, notifier, &keywordSuggesterFake{}, cache)

	if _, err := uc.TrendingKeywords(context.Background(), "rau-cu", 10); err != nil {
		t.Fatalf("trending: %v", err)
	}
	if cache.sets != 1 {
		t.Fatalf("expected automation feed cached once, got %d", cache.sets)
	}
}

func TestTrendingKeywordsTruncatesToLimit(t *testing.T) {
	repo := &repoFake{trendingStats: []domain.KeywordStat{
		{Keyword: "a"}, {Keyword: "b"}, {Keyword: "c"}, {Keyword: "d"},
	}}
	uc := NewTrendingKeywordsUseCase(repo, &notifierFake{}, &keywordSuggesterFake{}, &cacheFake{})

	stats, err := uc.TrendingKeywords(context.Background(), "", 2)
	if err != nil {
		t.Fatalf("trending: %v", err)
	}
	if len(stats) != 2 {
		t.Fatalf("expected limit applied, got %d", len(stats))
	}
}
