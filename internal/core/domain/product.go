package domain

import "time"

type ProductStatus string

const (
	StatusDraft      ProductStatus = "draft"
	StatusProcessing ProductStatus = "processing"
	StatusCompleted  ProductStatus = "completed"
	StatusError      ProductStatus = "error"
	StatusPublished  ProductStatus = "published"
	StatusArchived   ProductStatus = "archived"
)

// IsTerminal reports whether the enrichment pipeline is finished for this status.
// published/archived are catalog transitions that happen after completion.
func (s ProductStatus) IsTerminal() bool {
	return s == StatusCompleted || s == StatusError
}

// Product is the persisted record whose status field drives the pipeline.
// The pipeline owns it exclusively while status == processing.
type Product struct {
	ID       string        `json:"id"`
	Name     string        `json:"name"`
	Category string        `json:"category"`
	Status   ProductStatus `json:"status"`

	// Version is bumped on every write; the terminal completion write is
	// conditional on it so a racing manual edit surfaces as a conflict.
	Version int64 `json:"version"`

	Images      ImageSet     `json:"images"`
	Description Description  `json:"description"`
	Titles      []Title      `json:"titles"`
	Keywords    KeywordSets  `json:"keywords"`
	Pricing     Pricing      `json:"pricing"`
	AIAnalysis  AIAnalysis   `json:"aiAnalysis"`
	Marketing   Marketing    `json:"marketingInsights"`
	Metadata    Metadata     `json:"metadata"`

	// ProcessingTimeMS is written exactly once, on successful completion only.
	ProcessingTimeMS *int64 `json:"processingTime,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type ImageSet struct {
	Original OriginalImage `json:"original"`
	Variants []Variant     `json:"variants"`
}

type OriginalImage struct {
	Path      string `json:"path"`
	Width     int    `json:"width"`
	Height    int    `json:"height"`
	SizeBytes int64  `json:"size"`
}

// Variant is a resized, re-encoded copy for one display context.
type Variant struct {
	Label  string `json:"label"`
	Path   string `json:"path"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

type Description struct {
	Generated string `json:"generated"`
	Edited    string `json:"edited"`
	// Final is never empty: a placeholder at creation, overwritten only by a
	// successful enrichment run.
	Final string `json:"final"`
}

type Title struct {
	Text   string `json:"text"`
	Tone   string `json:"tone"`
	Length int    `json:"length"`
}

// KeywordSets are stored exactly as received; deduplication happens at
// aggregation time, not storage time.
type KeywordSets struct {
	Primary  []string `json:"primary"`
	Trending []string `json:"trending"`
	Seasonal []string `json:"seasonal"`
	SEO      []string `json:"seo"`
}

type Pricing struct {
	SuggestedRange *PriceRange `json:"suggestedRange,omitempty"`
}

type PriceRange struct {
	Min      float64 `json:"min"`
	Max      float64 `json:"max"`
	Currency string  `json:"currency"`
}

type AIAnalysis struct {
	Confidence       float64  `json:"confidence"`
	QualityScore     float64  `json:"qualityScore"`
	VisualAppeal     float64  `json:"visualAppeal"`
	DetectedFeatures []string `json:"detectedFeatures"`
	Freshness        string   `json:"freshness"`
}

type Marketing struct {
	TargetAudience []string `json:"targetAudience"`
	SellingPoints  []string `json:"sellingPoints"`
}

type Metadata struct {
	ProcessingDate      time.Time `json:"processingDate"`
	LastUpdated         time.Time `json:"lastUpdated"`
	TextGenerationModel string    `json:"textGenerationModel,omitempty"`
	ErrorMessage        string    `json:"errorMessage,omitempty"`
}
