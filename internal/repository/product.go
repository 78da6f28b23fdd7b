package repository

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/CAMGREEN637/gift-ai-backend/internal/domain"
	"github.com/CAMGREEN637/gift-ai-backend/internal/recommend"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"
)

// ProductRepository persists the gift catalog. Tag fields live in a single
// JSONB column; historical rows may carry list or comma-string shapes, which
// the recommendation adapter normalizes at retrieval time.
type ProductRepository struct {
	db dbtx
}

func NewProductRepository(pool *pgxpool.Pool) *ProductRepository {
	return &ProductRepository{db: pool}
}

const productColumns = `id, name, description, price, currency, brand, link, image_url, source,
	rating, review_count, in_stock, tags, experience_level, created_at, updated_at`

// Create inserts a new product.
func (r *ProductRepository) Create(ctx context.Context, p *domain.GiftProduct) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO gifts (`+productColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`,
		p.ID, p.Name, nullableString(p.Description), p.Price, p.Currency,
		nullableString(p.Brand), nullableString(p.Link), nullableString(p.ImageURL), p.Source,
		p.Rating, p.ReviewCount, p.InStock, productTags(p), nullableString(p.ExperienceLevel),
		p.CreatedAt, p.UpdatedAt,
	)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return domain.ErrProductAlreadyExists
	}
	return err
}

// GetByID fetches one product.
func (r *ProductRepository) GetByID(ctx context.Context, id string) (*domain.GiftProduct, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+productColumns+` FROM gifts WHERE id = $1`, id)
	p, err := scanProduct(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrProductNotFound
		}
		return nil, err
	}
	return p, nil
}

// GetByName fetches a product by exact name. Feedback events reference gifts
// by name, not id.
func (r *ProductRepository) GetByName(ctx context.Context, name string) (*domain.GiftProduct, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+productColumns+` FROM gifts WHERE name = $1 LIMIT 1`, name)
	p, err := scanProduct(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrProductNotFound
		}
		return nil, err
	}
	return p, nil
}

// List returns products ordered by id with limit/offset paging.
func (r *ProductRepository) List(ctx context.Context, limit, offset int) ([]*domain.GiftProduct, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.db.Query(ctx,
		`SELECT `+productColumns+` FROM gifts ORDER BY id LIMIT $1 OFFSET $2`,
		limit, offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var products []*domain.GiftProduct
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

// Update replaces a product's fields and clears its embedding so the
// backfill worker re-embeds the changed document.
func (r *ProductRepository) Update(ctx context.Context, p *domain.GiftProduct) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE gifts
		 SET name = $2, description = $3, price = $4, currency = $5, brand = $6,
		     link = $7, image_url = $8, source = $9, rating = $10, review_count = $11,
		     in_stock = $12, tags = $13, experience_level = $14, embedding = NULL, updated_at = $15
		 WHERE id = $1`,
		p.ID, p.Name, nullableString(p.Description), p.Price, p.Currency,
		nullableString(p.Brand), nullableString(p.Link), nullableString(p.ImageURL), p.Source,
		p.Rating, p.ReviewCount, p.InStock, productTags(p), nullableString(p.ExperienceLevel),
		time.Now().UTC(),
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrProductNotFound
	}
	return nil
}

// Delete removes a product.
func (r *ProductRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM gifts WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrProductNotFound
	}
	return nil
}

// NextID returns the next sequential gift id (gift_0001, gift_0002, ...).
func (r *ProductRepository) NextID(ctx context.Context) (string, error) {
	var lastID string
	err := r.db.QueryRow(ctx,
		`SELECT id FROM gifts WHERE id LIKE 'gift_%' ORDER BY id DESC LIMIT 1`,
	).Scan(&lastID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "gift_0001", nil
		}
		return "", err
	}

	lastNum, err := strconv.Atoi(strings.TrimPrefix(lastID, "gift_"))
	if err != nil {
		return "", fmt.Errorf("unparseable gift id %q: %w", lastID, err)
	}
	return fmt.Sprintf("gift_%04d", lastNum+1), nil
}

// Stats summarizes catalog state for the admin dashboard.
type ProductStats struct {
	Total            int64 `json:"total"`
	InStock          int64 `json:"in_stock"`
	MissingEmbedding int64 `json:"missing_embedding"`
}

func (r *ProductRepository) Stats(ctx context.Context) (*ProductStats, error) {
	var stats ProductStats
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*),
		        COUNT(*) FILTER (WHERE in_stock),
		        COUNT(*) FILTER (WHERE embedding IS NULL)
		 FROM gifts`,
	).Scan(&stats.Total, &stats.InStock, &stats.MissingEmbedding)
	if err != nil {
		return nil, err
	}
	return &stats, nil
}

// ListMissingEmbeddings returns products awaiting an embedding.
func (r *ProductRepository) ListMissingEmbeddings(ctx context.Context, limit int) ([]*domain.GiftProduct, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := r.db.Query(ctx,
		`SELECT `+productColumns+` FROM gifts WHERE embedding IS NULL ORDER BY created_at LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var products []*domain.GiftProduct
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

// UpdateEmbedding stores a product's embedding vector.
func (r *ProductRepository) UpdateEmbedding(ctx context.Context, id string, embedding []float32) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE gifts SET embedding = $2, updated_at = $3 WHERE id = $1`,
		id, pgvector.NewVector(embedding), time.Now().UTC(),
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrProductNotFound
	}
	return nil
}

// SearchByEmbedding returns the closest embedded products as raw items with
// a cosine-similarity relevance estimate in [0, 1].
func (r *ProductRepository) SearchByEmbedding(ctx context.Context, embedding []float32, filters recommend.CandidateFilters) ([]recommend.RawItem, error) {
	limit := filters.Limit
	if limit <= 0 {
		limit = 20
	}

	query := `SELECT id, name, description, price, currency, brand, link, image_url,
	                 rating, review_count, in_stock, tags,
	                 1 - (embedding <=> $1) AS relevance
	          FROM gifts
	          WHERE embedding IS NOT NULL`
	args := []any{pgvector.NewVector(embedding)}

	if filters.InStockOnly {
		query += ` AND in_stock = TRUE`
	}
	if filters.MaxPrice != nil {
		args = append(args, *filters.MaxPrice)
		query += fmt.Sprintf(` AND price <= $%d`, len(args))
	}

	args = append(args, limit)
	query += fmt.Sprintf(` ORDER BY embedding <=> $1 LIMIT $%d`, len(args))

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []recommend.RawItem
	for rows.Next() {
		var item recommend.RawItem
		var description, brand, link, imageURL *string
		if err := rows.Scan(
			&item.ID, &item.Name, &description, &item.Price, &item.Currency,
			&brand, &link, &imageURL, &item.Rating, &item.ReviewCount,
			&item.InStock, &item.Tags, &item.RawRelevance,
		); err != nil {
			return nil, err
		}
		item.Description = derefString(description)
		item.Brand = derefString(brand)
		item.Link = derefString(link)
		item.ImageURL = derefString(imageURL)
		items = append(items, item)
	}
	return items, rows.Err()
}

func productTags(p *domain.GiftProduct) map[string]any {
	return map[string]any{
		"categories":         p.Categories,
		"interests":          p.Interests,
		"occasions":          p.Occasions,
		"vibe":               p.Vibe,
		"personality_traits": p.PersonalityTraits,
		"recipient": map[string]any{
			"gender":       p.Recipient.Gender,
			"relationship": p.Recipient.Relationship,
		},
	}
}

func scanProduct(row pgx.Row) (*domain.GiftProduct, error) {
	var p domain.GiftProduct
	var description, brand, link, imageURL, experienceLevel *string
	var tags map[string]any

	err := row.Scan(
		&p.ID, &p.Name, &description, &p.Price, &p.Currency,
		&brand, &link, &imageURL, &p.Source,
		&p.Rating, &p.ReviewCount, &p.InStock, &tags, &experienceLevel,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	p.Description = derefString(description)
	p.Brand = derefString(brand)
	p.Link = derefString(link)
	p.ImageURL = derefString(imageURL)
	p.ExperienceLevel = derefString(experienceLevel)

	p.Categories = tagList(tags, "categories")
	p.Interests = tagList(tags, "interests")
	p.Occasions = tagList(tags, "occasions")
	p.Vibe = tagList(tags, "vibe")
	p.PersonalityTraits = tagList(tags, "personality_traits")
	if recipient, ok := tags["recipient"].(map[string]any); ok {
		p.Recipient.Gender = tagList(recipient, "gender")
		p.Recipient.Relationship = tagList(recipient, "relationship")
	}

	return &p, nil
}

// tagList reads a tag field leniently: stored shapes vary between string
// lists and comma-delimited strings, so decoding reuses the candidate
// normalization rules.
func tagList(tags map[string]any, key string) []string {
	if tags == nil {
		return nil
	}
	set := recommend.NormalizeTagField(tags[key])
	if len(set) == 0 {
		return nil
	}
	return set.Values()
}
