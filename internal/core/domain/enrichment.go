package domain

// ImageAnalysis is the parsed output of the first enrichment stage.
type ImageAnalysis struct {
	Category       string          `json:"category"`
	Subcategory    string          `json:"subcategory"`
	Features       []string        `json:"features"`
	Quality        AnalyzedQuality `json:"quality"`
	TargetAudience []string        `json:"targetAudience"`
	SellingPoints  []string        `json:"sellingPoints"`
	Confidence     float64         `json:"confidence"`
}

type AnalyzedQuality struct {
	Score        float64 `json:"score"`
	Freshness    string  `json:"freshness"`
	VisualAppeal float64 `json:"visualAppeal"`
	Notes        string  `json:"notes"`
}

// GenerationOptions tune the content-generation stage.
type GenerationOptions struct {
	Tone         string `json:"tone"`
	Length       string `json:"length"`
	Platform     string `json:"platform"`
	IncludeSpecs bool   `json:"includeSpecs"`
}

// GeneratedContent is the parsed output of the second enrichment stage.
type GeneratedContent struct {
	Titles         []GeneratedTitle  `json:"titles"`
	Description    string            `json:"description"`
	Keywords       GeneratedKeywords `json:"keywords"`
	Specifications Specifications    `json:"specifications"`
}

type GeneratedTitle struct {
	Text   string `json:"text"`
	Length int    `json:"length"`
}

type GeneratedKeywords struct {
	Primary  []string `json:"primary"`
	SEO      []string `json:"seo"`
	Trending []string `json:"trending"`
}

type Specifications struct {
	Weight    string `json:"weight"`
	Origin    string `json:"origin"`
	Season    string `json:"season"`
	ShelfLife string `json:"shelfLife"`
}

// PriceSuggestion is the parsed output of the third enrichment stage.
type PriceSuggestion struct {
	SuggestedRange  PriceRange `json:"suggestedRange"`
	Strategy        string     `json:"strategy"`
	Reasoning       string     `json:"reasoning"`
	MarketPosition  string     `json:"marketPosition"`
	Recommendations []string   `json:"recommendations"`
}

// Completion is the terminal write of a successful enrichment run. It is
// applied with a compare-and-swap on the record version.
type Completion struct {
	FinalDescription    string
	ProcessingTimeMS    int64
	TextGenerationModel string
	Confidence          float64
	QualityScore        float64
	VisualAppeal        float64
	Freshness           string
}
