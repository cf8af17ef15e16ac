package imageproc

import (
	"image"
	"math"

	"github.com/chotuoi/listing-pipeline/internal/core/domain"
)

// PixelStats are the per-image statistics the quality heuristics run on.
// Deterministic and independent of any external call.
type PixelStats struct {
	Width          int
	Height         int
	Channels       int
	MeanBrightness float64
	MeanStdDev     float64
}

// ComputeStats samples the image on a fixed grid and accumulates per-channel
// mean and standard deviation on the 0-255 scale.
func ComputeStats(img image.Image) PixelStats {
	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	if width == 0 || height == 0 {
		return PixelStats{Width: width, Height: height, Channels: 1}
	}

	// Cap the sample grid so large originals stay cheap to analyze.
	step := max(width, height) / 256
	if step < 1 {
		step = 1
	}

	var sum, sumSq [3]float64
	var n float64
	grayscale := true

	for y := bounds.Min.Y; y < bounds.Max.Y; y += step {
		for x := bounds.Min.X; x < bounds.Max.X; x += step {
			r16, g16, b16, _ := img.At(x, y).RGBA()
			c := [3]float64{float64(r16 >> 8), float64(g16 >> 8), float64(b16 >> 8)}
			if c[0] != c[1] || c[1] != c[2] {
				grayscale = false
			}
			for i := 0; i < 3; i++ {
				sum[i] += c[i]
				sumSq[i] += c[i] * c[i]
			}
			n++
		}
	}

	var meanSum, stdSum float64
	for i := 0; i < 3; i++ {
		mean := sum[i] / n
		variance := sumSq[i]/n - mean*mean
		if variance < 0 {
			variance = 0
		}
		meanSum += mean
		stdSum += math.Sqrt(variance)
	}

	channels := 3
	if grayscale {
		channels = 1
	}
	return PixelStats{
		Width:          width,
		Height:         height,
		Channels:       channels,
		MeanBrightness: meanSum / 3,
		MeanStdDev:     stdSum / 3,
	}
}

// Assess derives the 0-10 scores, categorical labels and advisory
// recommendations from pixel statistics.
func Assess(stats PixelStats) domain.QualityReport {
	megapixels := float64(stats.Width) * float64(stats.Height) / 1e6
	ratio := 0.0
	if stats.Height > 0 {
		ratio = float64(stats.Width) / float64(stats.Height)
	}

	score := 5.0
	switch {
	case megapixels >= 2:
		score += 2
	case megapixels >= 1:
		score++
	}
	switch {
	case ratio >= 0.9 && ratio <= 1.1:
		score++
	case ratio >= 0.75 && ratio <= 1.33:
		score += 0.5
	}
	if stats.Channels >= 3 {
		score++
	}

	appeal := 5.0
	switch {
	case stats.MeanBrightness >= 80 && stats.MeanBrightness <= 180:
		appeal += 2
	case stats.MeanBrightness >= 60 && stats.MeanBrightness <= 200:
		appeal++
	}
	switch {
	case stats.MeanStdDev >= 40:
		appeal += 2
	case stats.MeanStdDev >= 25:
		appeal++
	}

	return domain.QualityReport{
		Quality: domain.QualityScores{
			Score:        clamp(score, 0, 10),
			VisualAppeal: clamp(appeal, 0, 10),
		},
		Sharpness:       sharpnessLabel(stats.MeanStdDev),
		Brightness:      brightnessLabel(stats.MeanBrightness),
		Contrast:        contrastLabel(stats.MeanStdDev),
		Recommendations: recommendations(stats, megapixels, ratio),
	}
}

func sharpnessLabel(stdDev float64) string {
	switch {
	case stdDev >= 50:
		return "excellent"
	case stdDev >= 35:
		return "good"
	case stdDev >= 20:
		return "fair"
	default:
		return "poor"
	}
}

func brightnessLabel(brightness float64) string {
	switch {
	case brightness >= 200:
		return "too_bright"
	case brightness >= 150:
		return "bright"
	case brightness >= 80:
		return "optimal"
	case brightness >= 40:
		return "dark"
	default:
		return "too_dark"
	}
}

func contrastLabel(stdDev float64) string {
	switch {
	case stdDev >= 60:
		return "high"
	case stdDev >= 40:
		return "good"
	case stdDev >= 25:
		return "fair"
	default:
		return "low"
	}
}

func recommendations(stats PixelStats, megapixels, ratio float64) []string {
	hints := []string{}
	if megapixels < 1 {
		hints = append(hints, "resolution too low, use at least a 1 megapixel photo")
	}
	if stats.MeanBrightness < 60 {
		hints = append(hints, "photo is too dark, retake with more light")
	}
	if stats.MeanBrightness > 200 {
		hints = append(hints, "photo is overexposed, reduce lighting")
	}
	if stats.MeanStdDev < 25 {
		hints = append(hints, "photo lacks contrast")
	}
	if ratio < 0.9 || ratio > 1.1 {
		hints = append(hints, "aspect ratio is not square, marketplaces prefer square photos")
	}
	return hints
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
