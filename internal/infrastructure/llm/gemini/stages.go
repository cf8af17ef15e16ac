package gemini

import (
	"context"
	"fmt"

	"github.com/chotuoi/listing-pipeline/internal/core/domain"
)

// Analyzer runs the image-analysis stage.
type Analyzer struct {
	client *Client
}

func NewAnalyzer(client *Client) *Analyzer {
	return &Analyzer{client: client}
}

func (a *Analyzer) Analyze(ctx context.Context, imageB64, declaredCategory string) (domain.ImageAnalysis, error) {
	parts := []part{
		{Text: buildAnalysisPrompt(declaredCategory)},
		{InlineData: &inlineData{MimeType: "image/jpeg", Data: imageB64}},
	}

	var result domain.ImageAnalysis
	decode := func(raw string) error {
		var parsed domain.ImageAnalysis
		if err := decodeStageJSON(raw, &parsed); err != nil {
			return err
		}
		if err := validateAnalysis(parsed); err != nil {
			return err
		}
		result = parsed
		return nil
	}

	if err := a.client.generateInto(ctx, "gemini.analyze_image", parts, decode); err != nil {
		return domain.ImageAnalysis{}, domain.WrapError(domain.ErrUpstreamAI, "image analysis", err)
	}
	if result.Features == nil {
		result.Features = []string{}
	}
	return result, nil
}

func validateAnalysis(a domain.ImageAnalysis) error {
	if a.Category == "" {
		return domain.WrapError(domain.ErrSchemaViolation, "image analysis", fmt.Errorf("missing category"))
	}
	if a.Confidence < 0 || a.Confidence > 1 {
		return domain.WrapError(domain.ErrSchemaViolation, "image analysis", fmt.Errorf("confidence %v outside [0,1]", a.Confidence))
	}
	return nil
}

// Generator runs the content-generation stage.
type Generator struct {
	client *Client
}

func NewGenerator(client *Client) *Generator {
	return &Generator{client: client}
}

func (g *Generator) Generate(ctx context.Context, analysis domain.ImageAnalysis, opts domain.GenerationOptions) (domain.GeneratedContent, error) {
	parts := []part{{Text: buildContentPrompt(analysis, opts)}}

	var result domain.GeneratedContent
	decode := func(raw string) error {
		var parsed domain.GeneratedContent
		if err := decodeStageJSON(raw, &parsed); err != nil {
			return err
		}
		if err := validateContent(parsed); err != nil {
			return err
		}
		result = parsed
		return nil
	}

	if err := g.client.generateInto(ctx, "gemini.generate_content", parts, decode); err != nil {
		return domain.GeneratedContent{}, domain.WrapError(domain.ErrUpstreamAI, "content generation", err)
	}
	return result, nil
}

func validateContent(c domain.GeneratedContent) error {
	if c.Description == "" {
		return domain.WrapError(domain.ErrSchemaViolation, "content generation", fmt.Errorf("missing description"))
	}
	if len(c.Titles) == 0 {
		return domain.WrapError(domain.ErrSchemaViolation, "content generation", fmt.Errorf("missing titles"))
	}
	return nil
}

// PriceSuggester runs the pricing stage.
type PriceSuggester struct {
	client *Client
}

func NewPriceSuggester(client *Client) *PriceSuggester {
	return &PriceSuggester{client: client}
}

func (p *PriceSuggester) Suggest(ctx context.Context, analysis domain.ImageAnalysis) (domain.PriceSuggestion, error) {
	parts := []part{{Text: buildPricingPrompt(analysis)}}

	var result domain.PriceSuggestion
	decode := func(raw string) error {
		var parsed domain.PriceSuggestion
		if err := decodeStageJSON(raw, &parsed); err != nil {
			return err
		}
		if err := validatePricing(parsed); err != nil {
			return err
		}
		result = parsed
		return nil
	}

	if err := p.client.generateInto(ctx, "gemini.suggest_price", parts, decode); err != nil {
		return domain.PriceSuggestion{}, domain.WrapError(domain.ErrUpstreamAI, "price suggestion", err)
	}
	if result.SuggestedRange.Currency == "" {
		result.SuggestedRange.Currency = "VND"
	}
	return result, nil
}

func validatePricing(p domain.PriceSuggestion) error {
	r := p.SuggestedRange
	if r.Max <= 0 || r.Max < r.Min || r.Min < 0 {
		return domain.WrapError(domain.ErrSchemaViolation, "price suggestion",
			fmt.Errorf("invalid range [%v, %v]", r.Min, r.Max))
	}
	return nil
}

// KeywordSuggester asks for fresh trending keywords for a category.
type KeywordSuggester struct {
	client *Client
}

func NewKeywordSuggester(client *Client) *KeywordSuggester {
	return &KeywordSuggester{client: client}
}

func (k *KeywordSuggester) SuggestTrending(ctx context.Context, category string, limit int) ([]string, error) {
	parts := []part{{Text: buildKeywordPrompt(category, limit)}}

	var result []string
	decode := func(raw string) error {
		var parsed struct {
			Keywords []string `json:"keywords"`
		}
		if err := decodeStageJSON(raw, &parsed); err != nil {
			return err
		}
		if len(parsed.Keywords) == 0 {
			return domain.WrapError(domain.ErrSchemaViolation, "trending keywords", fmt.Errorf("empty keyword list"))
		}
		result = parsed.Keywords
		return nil
	}

	if err := k.client.generateInto(ctx, "gemini.trending_keywords", parts, decode); err != nil {
		return nil, domain.WrapError(domain.ErrUpstreamAI, "trending keywords", err)
	}
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}
