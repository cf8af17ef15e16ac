package gemini

import (
	"fmt"
	"strings"

	"github.com/chotuoi/listing-pipeline/internal/core/domain"
)

func buildAnalysisPrompt(declaredCategory string) string {
	var b strings.Builder
	b.WriteString("You are a product analyst for a Vietnamese fresh-produce marketplace.\n")
	b.WriteString("Analyze the attached product photo")
	if declaredCategory != "" {
		fmt.Fprintf(&b, " (seller declared category: %q)", declaredCategory)
	}
	b.WriteString(" and respond with ONLY a JSON object, no prose, in this shape:\n")
	b.WriteString(`{
  "category": "string",
  "subcategory": "string",
  "features": ["string"],
  "quality": {"score": 0.0, "freshness": "string", "visualAppeal": 0.0, "notes": "string"},
  "targetAudience": ["string"],
  "sellingPoints": ["string"],
  "confidence": 0.0
}`)
	b.WriteString("\nScores are 0-10, confidence is 0-1.")
	return b.String()
}

func buildContentPrompt(analysis domain.ImageAnalysis, opts domain.GenerationOptions) string {
	var b strings.Builder
	b.WriteString("Write marketplace listing content in Vietnamese for this product.\n")
	fmt.Fprintf(&b, "Category: %s", analysis.Category)
	if analysis.Subcategory != "" {
		fmt.Fprintf(&b, " / %s", analysis.Subcategory)
	}
	b.WriteString("\n")
	if len(analysis.Features) > 0 {
		fmt.Fprintf(&b, "Features: %s\n", strings.Join(analysis.Features, ", "))
	}
	if len(analysis.SellingPoints) > 0 {
		fmt.Fprintf(&b, "Selling points: %s\n", strings.Join(analysis.SellingPoints, ", "))
	}
	tone := opts.Tone
	if tone == "" {
		tone = "friendly"
	}
	length := opts.Length
	if length == "" {
		length = "medium"
	}
	fmt.Fprintf(&b, "Tone: %s. Description length: %s.", tone, length)
	if opts.Platform != "" {
		fmt.Fprintf(&b, " Target platform: %s.", opts.Platform)
	}
	if opts.IncludeSpecs {
		b.WriteString(" Include product specifications.")
	}
	b.WriteString("\nRespond with ONLY a JSON object, no prose, in this shape:\n")
	b.WriteString(`{
  "titles": [{"text": "string", "length": 0}],
  "description": "string",
  "keywords": {"primary": ["string"], "seo": ["string"], "trending": ["string"]},
  "specifications": {"weight": "string", "origin": "string", "season": "string", "shelfLife": "string"}
}`)
	b.WriteString("\nProvide three titles of increasing length; length is the character count of text.")
	return b.String()
}

func buildPricingPrompt(analysis domain.ImageAnalysis) string {
	var b strings.Builder
	b.WriteString("Suggest retail pricing in Vietnamese Dong for this marketplace product.\n")
	fmt.Fprintf(&b, "Category: %s", analysis.Category)
	if analysis.Subcategory != "" {
		fmt.Fprintf(&b, " / %s", analysis.Subcategory)
	}
	b.WriteString("\n")
	if analysis.Quality.Freshness != "" {
		fmt.Fprintf(&b, "Freshness: %s. ", analysis.Quality.Freshness)
	}
	fmt.Fprintf(&b, "Quality score: %.1f/10.\n", analysis.Quality.Score)
	b.WriteString("Respond with ONLY a JSON object, no prose, in this shape:\n")
	b.WriteString(`{
  "suggestedRange": {"min": 0, "max": 0, "currency": "VND"},
  "strategy": "string",
  "reasoning": "string",
  "marketPosition": "budget|mid-range|premium",
  "recommendations": ["string"]
}`)
	return b.String()
}

func buildKeywordPrompt(category string, limit int) string {
	if limit <= 0 {
		limit = 10
	}
	var b strings.Builder
	fmt.Fprintf(&b, "List the %d search keywords currently trending on Vietnamese food marketplaces", limit)
	if category != "" {
		fmt.Fprintf(&b, " for the %q category", category)
	}
	b.WriteString(".\nRespond with ONLY a JSON object, no prose: {\"keywords\": [\"string\"]}")
	return b.String()
}
