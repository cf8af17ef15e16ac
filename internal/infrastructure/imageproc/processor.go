package imageproc

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"

	// webp uploads are accepted; register the decoder.
	_ "golang.org/x/image/webp"

	"github.com/chotuoi/listing-pipeline/internal/core/domain"
	"github.com/chotuoi/listing-pipeline/internal/core/ports"
)

// Size is one named variant dimension. Variants are cover-fit and
// center-cropped to exactly Width x Height.
type Size struct {
	Label  string
	Width  int
	Height int
}

// DefaultSizes covers the marketplace display contexts.
func DefaultSizes() []Size {
	return []Size{
		{Label: "thumbnail", Width: 300, Height: 300},
		{Label: "medium", Width: 600, Height: 600},
		{Label: "large", Width: 1200, Height: 1200},
		{Label: "square", Width: 1080, Height: 1080},
	}
}

const (
	DefaultQuality  = 85
	DefaultMaxBytes = 10 << 20
)

var allowedMimeTypes = map[string]struct{}{
	"image/jpeg": {},
	"image/jpg":  {},
	"image/png":  {},
	"image/webp": {},
}

var allowedExtensions = map[string]struct{}{
	".jpeg": {},
	".jpg":  {},
	".png":  {},
	".webp": {},
}

type Processor struct {
	storage  ports.ObjectStorage
	sizes    []Size
	quality  int
	maxBytes int64
	compress bool
}

func NewProcessor(storage ports.ObjectStorage, sizes []Size, quality int, maxBytes int64, compress bool) *Processor {
	if len(sizes) == 0 {
		sizes = DefaultSizes()
	}
	if quality <= 0 || quality > 100 {
		quality = DefaultQuality
	}
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	return &Processor{
		storage:  storage,
		sizes:    sizes,
		quality:  quality,
		maxBytes: maxBytes,
		compress: compress,
	}
}

// Process validates the upload, persists the re-encoded original plus every
// requested variant, and computes the quality heuristics. A single encode or
// save failure aborts the whole upload; no partial variant set is returned.
func (p *Processor) Process(ctx context.Context, data []byte, filename, mimeType string) (*domain.ImageSet, domain.QualityReport, error) {
	if err := p.validate(data, filename, mimeType); err != nil {
		return nil, domain.QualityReport{}, err
	}

	src, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, domain.QualityReport{}, domain.WrapError(domain.ErrImageProcessing, "decode image", err)
	}

	bounds := src.Bounds()
	prefix := uuid.NewString()
	quality := p.quality
	if !p.compress {
		quality = 100
	}

	originalKey := prefix + "_original.jpg"
	if err := p.encodeAndSave(ctx, src, originalKey, quality); err != nil {
		return nil, domain.QualityReport{}, err
	}

	variants := make([]domain.Variant, 0, len(p.sizes))
	for _, size := range p.sizes {
		cropped := imaging.Fill(src, size.Width, size.Height, imaging.Center, imaging.Lanczos)
		key := fmt.Sprintf("%s_%s.jpg", prefix, size.Label)
		if err := p.encodeAndSave(ctx, cropped, key, quality); err != nil {
			return nil, domain.QualityReport{}, err
		}
		variants = append(variants, domain.Variant{
			Label:  size.Label,
			Path:   key,
			Width:  size.Width,
			Height: size.Height,
		})
	}

	set := &domain.ImageSet{
		Original: domain.OriginalImage{
			Path:      originalKey,
			Width:     bounds.Dx(),
			Height:    bounds.Dy(),
			SizeBytes: int64(len(data)),
		},
		Variants: variants,
	}
	return set, Assess(ComputeStats(src)), nil
}

func (p *Processor) validate(data []byte, filename, mimeType string) error {
	if len(data) == 0 {
		return domain.WrapError(domain.ErrInvalidInput, "validate upload", fmt.Errorf("empty file"))
	}
	if int64(len(data)) > p.maxBytes {
		return domain.WrapError(domain.ErrInvalidInput, "validate upload",
			fmt.Errorf("file size %d exceeds limit %d", len(data), p.maxBytes))
	}

	mime := strings.ToLower(strings.TrimSpace(mimeType))
	ext := strings.ToLower(filepath.Ext(filename))
	if _, ok := allowedMimeTypes[mime]; !ok {
		if _, ok := allowedExtensions[ext]; !ok {
			return domain.WrapError(domain.ErrInvalidInput, "validate upload",
				fmt.Errorf("unsupported file type %q (%s)", mime, ext))
		}
	}
	return nil
}

func (p *Processor) encodeAndSave(ctx context.Context, img image.Image, key string, quality int) error {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(quality)); err != nil {
		return domain.WrapError(domain.ErrImageProcessing, "encode "+key, err)
	}
	if err := p.storage.Save(ctx, key, &buf); err != nil {
		return domain.WrapError(domain.ErrImageProcessing, "save "+key, err)
	}
	return nil
}
