package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/chotuoi/listing-pipeline/internal/core/domain"
)

type ProductRepository struct {
	db *sql.DB
}

func NewProductRepository(db *sql.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

func OpenDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("sql open: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("db ping: %w", err)
	}
	return db, nil
}

func (r *ProductRepository) EnsureSchema(ctx context.Context) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	// Serialize bootstrap DDL across api/worker startups.
	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, int64(2026083101)); err != nil {
		return fmt.Errorf("acquire schema lock: %w", err)
	}

	const query = `
CREATE TABLE IF NOT EXISTS products (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	category TEXT,
	status TEXT NOT NULL,
	version BIGINT NOT NULL DEFAULT 1,
	images JSONB NOT NULL DEFAULT '{}'::jsonb,
	description JSONB NOT NULL DEFAULT '{}'::jsonb,
	titles JSONB NOT NULL DEFAULT '[]'::jsonb,
	keywords JSONB NOT NULL DEFAULT '{}'::jsonb,
	pricing JSONB NOT NULL DEFAULT '{}'::jsonb,
	ai_analysis JSONB NOT NULL DEFAULT '{}'::jsonb,
	marketing JSONB NOT NULL DEFAULT '{}'::jsonb,
	processing_time_ms BIGINT,
	text_generation_model TEXT,
	error_message TEXT,
	processing_date TIMESTAMPTZ,
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_products_status ON products(status);
CREATE INDEX IF NOT EXISTS idx_products_category ON products(category);
CREATE INDEX IF NOT EXISTS idx_products_created_at ON products(created_at DESC);
`
	if _, err := tx.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("execute schema ddl: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema tx: %w", err)
	}
	return nil
}

func (r *ProductRepository) Create(ctx context.Context, product *domain.Product) error {
	imagesJSON, err := json.Marshal(product.Images)
	if err != nil {
		return fmt.Errorf("marshal images: %w", err)
	}
	descriptionJSON, err := json.Marshal(product.Description)
	if err != nil {
		return fmt.Errorf("marshal description: %w", err)
	}
	titlesJSON, err := json.Marshal(product.Titles)
	if err != nil {
		return fmt.Errorf("marshal titles: %w", err)
	}
	keywordsJSON, err := json.Marshal(product.Keywords)
	if err != nil {
		return fmt.Errorf("marshal keywords: %w", err)
	}
	pricingJSON, err := json.Marshal(product.Pricing)
	if err != nil {
		return fmt.Errorf("marshal pricing: %w", err)
	}
	analysisJSON, err := json.Marshal(product.AIAnalysis)
	if err != nil {
		return fmt.Errorf("marshal ai analysis: %w", err)
	}
	marketingJSON, err := json.Marshal(product.Marketing)
	if err != nil {
		return fmt.Errorf("marshal marketing: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
INSERT INTO products (
	id, name, category, status, version, images, description, titles, keywords, pricing, ai_analysis, marketing,
	processing_time_ms, text_generation_model, error_message, processing_date, created_at, updated_at
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18)
`,
		product.ID, product.Name, product.Category, string(product.Status), product.Version,
		imagesJSON, descriptionJSON, titlesJSON, keywordsJSON, pricingJSON, analysisJSON, marketingJSON,
		product.ProcessingTimeMS, nullString(product.Metadata.TextGenerationModel), nullString(product.Metadata.ErrorMessage),
		nullTime(product.Metadata.ProcessingDate), product.CreatedAt, product.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert product: %w", err)
	}
	return nil
}

func (r *ProductRepository) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT id, name, category, status, version, images, description, titles, keywords, pricing, ai_analysis, marketing,
	processing_time_ms, text_generation_model, error_message, processing_date, created_at, updated_at
FROM products
WHERE id = $1
`, id)

	var product domain.Product
	var status string
	var imagesRaw, descriptionRaw, titlesRaw, keywordsRaw, pricingRaw, analysisRaw, marketingRaw []byte
	var model, errMessage sql.NullString
	var processingDate sql.NullTime

	err := row.Scan(
		&product.ID, &product.Name, &product.Category, &status, &product.Version,
		&imagesRaw, &descriptionRaw, &titlesRaw, &keywordsRaw, &pricingRaw, &analysisRaw, &marketingRaw,
		&product.ProcessingTimeMS, &model, &errMessage, &processingDate, &product.CreatedAt, &product.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.WrapError(domain.ErrProductNotFound, "get product", fmt.Errorf("id %s", id))
		}
		return nil, fmt.Errorf("scan product: %w", err)
	}

	for _, field := range []struct {
		raw []byte
		out any
	}{
		{imagesRaw, &product.Images},
		{descriptionRaw, &product.Description},
		{titlesRaw, &product.Titles},
		{keywordsRaw, &product.Keywords},
		{pricingRaw, &product.Pricing},
		{analysisRaw, &product.AIAnalysis},
		{marketingRaw, &product.Marketing},
	} {
		if len(field.raw) == 0 {
			continue
		}
		if err := json.Unmarshal(field.raw, field.out); err != nil {
			return nil, fmt.Errorf("unmarshal product field: %w", err)
		}
	}

	product.Status = domain.ProductStatus(status)
	product.Metadata.TextGenerationModel = model.String
	product.Metadata.ErrorMessage = errMessage.String
	if processingDate.Valid {
		product.Metadata.ProcessingDate = processingDate.Time
	}
	product.Metadata.LastUpdated = product.UpdatedAt
	return &product, nil
}

func (r *ProductRepository) MarkProcessing(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `
UPDATE products
SET status = $2, version = version + 1, updated_at = $3
WHERE id = $1
`, id, string(domain.StatusProcessing), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("mark processing: %w", err)
	}
	return requireRow(result, id)
}

func (r *ProductRepository) SaveImageAnalysis(ctx context.Context, id string, analysis domain.ImageAnalysis) (int64, error) {
	analysisJSON, err := json.Marshal(domain.AIAnalysis{
		Confidence:       analysis.Confidence,
		QualityScore:     analysis.Quality.Score,
		VisualAppeal:     analysis.Quality.VisualAppeal,
		DetectedFeatures: analysis.Features,
		Freshness:        analysis.Quality.Freshness,
	})
	if err != nil {
		return 0, fmt.Errorf("marshal ai analysis: %w", err)
	}
	marketingJSON, err := json.Marshal(domain.Marketing{
		TargetAudience: analysis.TargetAudience,
		SellingPoints:  analysis.SellingPoints,
	})
	if err != nil {
		return 0, fmt.Errorf("marshal marketing: %w", err)
	}

	row := r.db.QueryRowContext(ctx, `
UPDATE products
SET ai_analysis = $2, marketing = $3, version = version + 1, updated_at = $4
WHERE id = $1
RETURNING version
`, id, analysisJSON, marketingJSON, time.Now().UTC())

	var version int64
	if err := row.Scan(&version); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, domain.WrapError(domain.ErrProductNotFound, "save image analysis", fmt.Errorf("id %s", id))
		}
		return 0, fmt.Errorf("save image analysis: %w", err)
	}
	return version, nil
}

func (r *ProductRepository) SaveGeneratedContent(ctx context.Context, id string, content domain.GeneratedContent, tone string) (int64, error) {
	titles := make([]domain.Title, 0, len(content.Titles))
	for _, t := range content.Titles {
		length := t.Length
		if length == 0 {
			length = len([]rune(t.Text))
		}
		titles = append(titles, domain.Title{Text: t.Text, Tone: tone, Length: length})
	}
	titlesJSON, err := json.Marshal(titles)
	if err != nil {
		return 0, fmt.Errorf("marshal titles: %w", err)
	}
	// Merged into the stored keyword sets so seasonal keywords survive.
	keywordsJSON, err := json.Marshal(map[string][]string{
		"primary":  content.Keywords.Primary,
		"seo":      content.Keywords.SEO,
		"trending": content.Keywords.Trending,
	})
	if err != nil {
		return 0, fmt.Errorf("marshal keywords: %w", err)
	}

	row := r.db.QueryRowContext(ctx, `
UPDATE products
SET description = jsonb_set(description, '{generated}', to_jsonb($2::text)),
	titles = $3,
	keywords = keywords || $4::jsonb,
	version = version + 1,
	updated_at = $5
WHERE id = $1
RETURNING version
`, id, content.Description, titlesJSON, keywordsJSON, time.Now().UTC())

	var version int64
	if err := row.Scan(&version); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, domain.WrapError(domain.ErrProductNotFound, "save generated content", fmt.Errorf("id %s", id))
		}
		return 0, fmt.Errorf("save generated content: %w", err)
	}
	return version, nil
}

func (r *ProductRepository) SavePricing(ctx context.Context, id string, pricing domain.PriceSuggestion) (int64, error) {
	pricingJSON, err := json.Marshal(domain.Pricing{SuggestedRange: &pricing.SuggestedRange})
	if err != nil {
		return 0, fmt.Errorf("marshal pricing: %w", err)
	}

	row := r.db.QueryRowContext(ctx, `
UPDATE products
SET pricing = $2, version = version + 1, updated_at = $3
WHERE id = $1
RETURNING version
`, id, pricingJSON, time.Now().UTC())

	var version int64
	if err := row.Scan(&version); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, domain.WrapError(domain.ErrProductNotFound, "save pricing", fmt.Errorf("id %s", id))
		}
		return 0, fmt.Errorf("save pricing: %w", err)
	}
	return version, nil
}

// Complete is the terminal write of a successful run. It is conditional on the
// version observed by the orchestrator; losing the race leaves the record to
// the competing writer.
func (r *ProductRepository) Complete(ctx context.Context, id string, version int64, completion domain.Completion) error {
	scoresJSON, err := json.Marshal(map[string]any{
		"confidence":   completion.Confidence,
		"qualityScore": completion.QualityScore,
		"visualAppeal": completion.VisualAppeal,
		"freshness":    completion.Freshness,
	})
	if err != nil {
		return fmt.Errorf("marshal completion scores: %w", err)
	}

	now := time.Now().UTC()
	result, err := r.db.ExecContext(ctx, `
UPDATE products
SET status = $3,
	description = jsonb_set(description, '{final}', to_jsonb($4::text)),
	ai_analysis = ai_analysis || $5::jsonb,
	processing_time_ms = $6,
	text_generation_model = $7,
	error_message = NULL,
	processing_date = $8,
	version = version + 1,
	updated_at = $8
WHERE id = $1 AND version = $2 AND status = $9
`, id, version, string(domain.StatusCompleted), completion.FinalDescription, scoresJSON,
		completion.ProcessingTimeMS, completion.TextGenerationModel, now, string(domain.StatusProcessing))
	if err != nil {
		return fmt.Errorf("complete product: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("complete product rows affected: %w", err)
	}
	if affected == 0 {
		if _, getErr := r.GetByID(ctx, id); getErr != nil {
			return getErr
		}
		return domain.WrapError(domain.ErrVersionConflict, "complete product",
			fmt.Errorf("id %s base version %d", id, version))
	}
	return nil
}

func (r *ProductRepository) MarkFailed(ctx context.Context, id string, errMessage string) error {
	result, err := r.db.ExecContext(ctx, `
UPDATE products
SET status = $2, error_message = $3, version = version + 1, updated_at = $4
WHERE id = $1
`, id, string(domain.StatusError), errMessage, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("mark failed: %w", err)
	}
	return requireRow(result, id)
}

// TrendingKeywords counts trending-keyword occurrences across completed
// products, most frequent first.
func (r *ProductRepository) TrendingKeywords(ctx context.Context, category string, limit int) ([]domain.KeywordStat, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := r.db.QueryContext(ctx, `
SELECT kw, COUNT(*) AS cnt
FROM products, jsonb_array_elements_text(keywords->'trending') AS kw
WHERE status = $1 AND ($2 = '' OR category = $2)
GROUP BY kw
ORDER BY cnt DESC, kw ASC
LIMIT $3
`, string(domain.StatusCompleted), category, limit)
	if err != nil {
		return nil, fmt.Errorf("query trending keywords: %w", err)
	}
	defer rows.Close()

	var stats []domain.KeywordStat
	for rows.Next() {
		var stat domain.KeywordStat
		if err := rows.Scan(&stat.Keyword, &stat.Count); err != nil {
			return nil, fmt.Errorf("scan trending keyword: %w", err)
		}
		stat.Source = domain.KeywordSourceStore
		stats = append(stats, stat)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate trending keywords: %w", err)
	}
	return stats, nil
}

func requireRow(result sql.Result, id string) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return domain.WrapError(domain.ErrProductNotFound, "update product", fmt.Errorf("id %s", id))
	}
	return nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullTime(t time.Time) sql.NullTime {
	return sql.NullTime{Time: t, Valid: !t.IsZero()}
}
