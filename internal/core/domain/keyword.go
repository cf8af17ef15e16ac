package domain

// KeywordStat is one trending-keyword entry with its origin metadata.
// When duplicates collide case-insensitively during aggregation, the first
// occurrence wins and keeps its source and count.
type KeywordStat struct {
	Keyword string `json:"keyword"`
	Count   int    `json:"count"`
	Source  string `json:"source"`
}

const (
	KeywordSourceStore      = "store"
	KeywordSourceAutomation = "automation"
	KeywordSourceAI         = "ai"
)

// Event names published to the automation system on pipeline transitions.
const (
	EventProductProcessing = "product_processing"
	EventProductCompleted  = "product_completed"
	EventProductFailed     = "product_failed"
)
