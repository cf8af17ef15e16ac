package usecase

import (
	"context"
	"log/slog"

	"golang.org/x/text/cases"

	"github.com/chotuoi/listing-pipeline/internal/core/domain"
	"github.com/chotuoi/listing-pipeline/internal/core/ports"
)

const defaultTrendingLimit = 10

// TrendingKeywordsUseCase merges trending keywords from three sources: the
// product store, the automation feed and the AI provider. Sources are
// best-effort; a failing source is logged and skipped, never fatal.
type TrendingKeywordsUseCase struct {
	repo       ports.ProductRepository
	automation ports.AutomationClient
	ai         ports.KeywordSuggester
	cache      ports.TrendCache
}

func NewTrendingKeywordsUseCase(
	repo ports.ProductRepository,
	automation ports.AutomationClient,
	ai ports.KeywordSuggester,
	cache ports.TrendCache,
) *TrendingKeywordsUseCase {
	return &TrendingKeywordsUseCase{
		repo:       repo,
		automation: automation,
		ai:         ai,
		cache:      cache,
	}
}

func (uc *TrendingKeywordsUseCase) TrendingKeywords(ctx context.Context, category string, limit int) ([]domain.KeywordStat, error) {
	if limit <= 0 {
		limit = defaultTrendingLimit
	}

	var merged []domain.KeywordStat
	merged = append(merged, uc.fromStore(ctx, category, limit)...)
	merged = append(merged, uc.fromAutomation(ctx, category)...)
	merged = append(merged, uc.fromAI(ctx, category, limit)...)

	deduped := dedupeKeywords(merged)
	if len(deduped) > limit {
		deduped = deduped[:limit]
	}
	return deduped, nil
}

func (uc *TrendingKeywordsUseCase) fromStore(ctx context.Context, category string, limit int) []domain.KeywordStat {
	stats, err := uc.repo.TrendingKeywords(ctx, category, limit)
	if err != nil {
		slog.Warn("trending_source_failed", "source", domain.KeywordSourceStore, "error", err)
		return nil
	}
	return stats
}

func (uc *TrendingKeywordsUseCase) fromAutomation(ctx context.Context, category string) []domain.KeywordStat {
	if stats, ok := uc.cache.Get(category); ok {
		return stats
	}
	stats, err := uc.automation.FetchTrending(ctx, category)
	if err != nil {
		slog.Warn("trending_source_failed", "source", domain.KeywordSourceAutomation, "error", err)
		return nil
	}
	if len(stats) > 0 {
		uc.cache.Set(category, stats)
	}
	return stats
}

func (uc *TrendingKeywordsUseCase) fromAI(ctx context.Context, category string, limit int) []domain.KeywordStat {
	keywords, err := uc.ai.SuggestTrending(ctx, category, limit)
	if err != nil {
		slog.Warn("trending_source_failed", "source", domain.KeywordSourceAI, "error", err)
		return nil
	}
	stats := make([]domain.KeywordStat, 0, len(keywords))
	for _, kw := range keywords {
		stats = append(stats, domain.KeywordStat{Keyword: kw, Count: 1, Source: domain.KeywordSourceAI})
	}
	return stats
}

// dedupeKeywords collapses case-insensitive duplicates, first occurrence wins.
// Folding handles non-ASCII casing ("Tươi" and "tươi" are one keyword).
func dedupeKeywords(stats []domain.KeywordStat) []domain.KeywordStat {
	folder := cases.Fold()
	seen := make(map[string]struct{}, len(stats))
	out := make([]domain.KeywordStat, 0, len(stats))
	for _, stat := range stats {
		key := folder.String(stat.Keyword)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, stat)
	}
	return out
}
