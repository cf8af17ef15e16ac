package domain

// QualityReport is the deterministic image-quality assessment computed from
// pixel statistics at upload time. It never blocks the pipeline.
type QualityReport struct {
	Quality         QualityScores `json:"quality"`
	Sharpness       string        `json:"sharpness"`
	Brightness      string        `json:"brightness"`
	Contrast        string        `json:"contrast"`
	Recommendations []string      `json:"recommendations"`
}

type QualityScores struct {
	Score        float64 `json:"score"`
	VisualAppeal float64 `json:"visualAppeal"`
}
