package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/CAMGREEN637/gift-ai-backend/internal/domain"
	"github.com/CAMGREEN637/gift-ai-backend/internal/repository"
	"github.com/CAMGREEN637/gift-ai-backend/internal/scraper"
	"github.com/CAMGREEN637/gift-ai-backend/internal/telemetry"
)

const (
	categorizationTemperature = 0.3
	maxMirroredImageBytes     = 5 << 20
)

// ProductRepositoryInterface defines the repository interface for catalog
// persistence
type ProductRepositoryInterface interface {
	Create(ctx context.Context, p *domain.GiftProduct) error
	GetByID(ctx context.Context, id string) (*domain.GiftProduct, error)
	List(ctx context.Context, limit, offset int) ([]*domain.GiftProduct, error)
	Update(ctx context.Context, p *domain.GiftProduct) error
	Delete(ctx context.Context, id string) error
	NextID(ctx context.Context) (string, error)
	Stats(ctx context.Context) (*repository.ProductStats, error)
}

// AmazonFetcher scrapes one Amazon product page.
type AmazonFetcher interface {
	Scrape(ctx context.Context, url string) (*scraper.Product, error)
}

// ImageMirror stores a copy of a product image and returns its stored URL.
type ImageMirror interface {
	UploadImage(ctx context.Context, key, contentType string, data []byte) (string, error)
}

// Categorization is the AI-suggested tag set for one product, already
// filtered to the closed vocabularies.
type Categorization struct {
	Categories        []string             `json:"categories"`
	Interests         []string             `json:"interests"`
	Occasions         []string             `json:"occasions"`
	Recipient         domain.RecipientInfo `json:"recipient"`
	Vibe              []string             `json:"vibe"`
	PersonalityTraits []string             `json:"personality_traits"`
	ExperienceLevel   string               `json:"experience_level"`
}

// QualityIndicators summarize a scraped listing's fitness for the catalog.
type QualityIndicators struct {
	RatingStatus   string `json:"rating_status"`
	ReviewsStatus  string `json:"reviews_status"`
	StockStatus    string `json:"stock_status"`
	OverallQuality string `json:"overall_quality"`
}

// ScrapedProduct pairs a scraped listing with its quality assessment.
type ScrapedProduct struct {
	Product *scraper.Product  `json:"product"`
	Quality QualityIndicators `json:"quality"`
}

// CatalogService handles admin-side catalog management: CRUD, Amazon
// ingestion, AI categorization, and image mirroring.
type CatalogService struct {
	products ProductRepositoryInterface
	fetcher  AmazonFetcher
	chat     ExplanationClient
	mirror   ImageMirror
	client   *http.Client
	model    string
}

// NewCatalogService creates a CatalogService. fetcher, chat, and mirror may
// each be nil; the corresponding operation then reports a collaborator error
// or is skipped.
func NewCatalogService(products ProductRepositoryInterface, fetcher AmazonFetcher, chat ExplanationClient, mirror ImageMirror, model string) *CatalogService {
	return &CatalogService{
		products: products,
		fetcher:  fetcher,
		chat:     chat,
		mirror:   mirror,
		client:   &http.Client{Timeout: 15 * time.Second},
		model:    model,
	}
}

// CreateProduct validates and stores a new catalog entry. The id is assigned
// sequentially when empty; the embedding is left for the backfill worker.
func (s *CatalogService) CreateProduct(ctx context.Context, p *domain.GiftProduct) (*domain.GiftProduct, error) {
	ctx, span := telemetry.StartSpan(ctx, "CatalogService.CreateProduct", telemetry.SpanAttributes{
		Operation: "create_product",
	})
	defer span.End()

	if p.ID == "" {
		id, err := s.products.NextID(ctx)
		if err != nil {
			return nil, err
		}
		p.ID = id
	}
	if p.Currency == "" {
		p.Currency = "USD"
	}
	if p.Source == "" {
		p.Source = "manual"
	}

	s.enforceVocabularies(p)

	if err := domain.ValidateProduct(p); err != nil {
		return nil, domain.NewDomainErrorWithCause(domain.ErrCodeValidation, "invalid product", err)
	}

	now := time.Now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now

	if s.mirror != nil && p.ImageURL != "" {
		if mirrored, err := s.mirrorImage(ctx, p.ID, p.ImageURL); err != nil {
			log.Printf("catalog: image mirror failed for %s, keeping source URL: %v", p.ID, err)
		} else {
			p.ImageURL = mirrored
		}
	}

	if err := s.products.Create(ctx, p); err != nil {
		return nil, err
	}

	telemetry.AddBreadcrumb(ctx, "catalog", fmt.Sprintf("created product %s", p.ID))
	return p, nil
}

func (s *CatalogService) GetProduct(ctx context.Context, id string) (*domain.GiftProduct, error) {
	if id == "" {
		return nil, domain.ErrMissingRequiredField
	}
	return s.products.GetByID(ctx, id)
}

func (s *CatalogService) ListProducts(ctx context.Context, limit, offset int) ([]*domain.GiftProduct, error) {
	return s.products.List(ctx, limit, offset)
}

// UpdateProduct replaces an existing product's fields. The repository clears
// the embedding so the worker re-embeds the changed document.
func (s *CatalogService) UpdateProduct(ctx context.Context, p *domain.GiftProduct) (*domain.GiftProduct, error) {
	ctx, span := telemetry.StartSpan(ctx, "CatalogService.UpdateProduct", telemetry.SpanAttributes{
		ProductID: p.ID,
		Operation: "update_product",
	})
	defer span.End()

	if p.ID == "" {
		return nil, domain.ErrMissingRequiredField
	}

	s.enforceVocabularies(p)

	if err := domain.ValidateProduct(p); err != nil {
		return nil, domain.NewDomainErrorWithCause(domain.ErrCodeValidation, "invalid product", err)
	}

	if err := s.products.Update(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *CatalogService) DeleteProduct(ctx context.Context, id string) error {
	if id == "" {
		return domain.ErrMissingRequiredField
	}
	return s.products.Delete(ctx, id)
}

func (s *CatalogService) Stats(ctx context.Context) (*repository.ProductStats, error) {
	return s.products.Stats(ctx)
}

// FetchAmazonProduct scrapes one listing and assesses its quality.
func (s *CatalogService) FetchAmazonProduct(ctx context.Context, url string) (*ScrapedProduct, error) {
	ctx, span := telemetry.StartSpan(ctx, "CatalogService.FetchAmazonProduct", telemetry.SpanAttributes{
		Operation: "fetch_amazon",
	})
	defer span.End()

	if s.fetcher == nil {
		return nil, domain.ErrCatalogUnavailable
	}

	product, err := s.fetcher.Scrape(ctx, url)
	if err != nil {
		if errors.Is(err, scraper.ErrNoASIN) {
			return nil, domain.NewDomainErrorWithCause(domain.ErrCodeValidation, "not a valid Amazon product URL", err)
		}
		return nil, domain.NewDomainErrorWithCause(domain.ErrCodeCollaboratorUnavailable, "failed to scrape product", err)
	}

	return &ScrapedProduct{
		Product: product,
		Quality: assessQuality(product.Rating, product.ReviewCount, product.InStock),
	}, nil
}

const categorizationSystemPrompt = "You are a gift categorization expert. Return only valid JSON with no markdown formatting or explanations."

// CategorizeProduct asks the model to tag a product against the closed
// vocabularies. Model failures return safe defaults rather than an error so
// the admin flow can always proceed to manual review.
func (s *CatalogService) CategorizeProduct(ctx context.Context, name, description, brand string) (*Categorization, error) {
	ctx, span := telemetry.StartSpan(ctx, "CatalogService.CategorizeProduct", telemetry.SpanAttributes{
		Operation: "categorize",
	})
	defer span.End()

	if name == "" {
		return nil, domain.ErrMissingRequiredField
	}
	if s.chat == nil {
		return nil, domain.ErrEmbeddingUnavailable
	}

	result, err := s.chat.CreateChatJSON(ctx,
		s.model,
		categorizationSystemPrompt,
		buildCategorizationPrompt(name, description, brand),
		categorizationTemperature,
	)
	if err != nil {
		log.Printf("catalog: categorization call failed for %q: %v", name, err)
		return defaultCategorization(), nil
	}

	var raw Categorization
	if err := json.Unmarshal([]byte(result.Content), &raw); err != nil {
		log.Printf("catalog: categorization returned invalid JSON for %q: %v", name, err)
		return defaultCategorization(), nil
	}

	return filterCategorization(&raw), nil
}

// enforceVocabularies clips each tag field to its vocabulary and limit.
func (s *CatalogService) enforceVocabularies(p *domain.GiftProduct) {
	p.Categories = domain.FilterVocabulary(p.Categories, domain.ProductCategories, domain.MaxCategories)
	p.Interests = domain.FilterVocabulary(p.Interests, domain.ProductInterests, domain.MaxInterests)
	p.Occasions = domain.FilterVocabulary(p.Occasions, domain.ProductOccasions, domain.MaxOccasions)
	p.Vibe = domain.FilterVocabulary(p.Vibe, domain.ProductVibes, domain.MaxVibes)
	p.PersonalityTraits = domain.FilterVocabulary(p.PersonalityTraits, domain.PersonalityTraits, domain.MaxPersonalityTraits)
	p.Recipient.Gender = domain.FilterVocabulary(p.Recipient.Gender, domain.RecipientGenders, domain.MaxRecipientGenders)
	p.Recipient.Relationship = domain.FilterVocabulary(p.Recipient.Relationship, domain.RecipientRelationships, domain.MaxRecipientRelationships)
}

func (s *CatalogService) mirrorImage(ctx context.Context, productID, sourceURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, sourceURL, nil)
	if err != nil {
		return "", err
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to download image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("failed to download image: HTTP %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxMirroredImageBytes))
	if err != nil {
		return "", fmt.Errorf("failed to read image: %w", err)
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "image/jpeg"
	}

	key := fmt.Sprintf("products/%s%s", productID, imageExtension(contentType))
	return s.mirror.UploadImage(ctx, key, contentType, data)
}

func imageExtension(contentType string) string {
	switch contentType {
	case "image/png":
		return ".png"
	case "image/webp":
		return ".webp"
	default:
		return ".jpg"
	}
}

func buildCategorizationPrompt(name, description, brand string) string {
	if len(description) > 500 {
		description = description[:500]
	}
	if brand == "" {
		brand = "Unknown"
	}

	return fmt.Sprintf(`Based on this product:
Title: %s
Description: %s
Brand: %s

Suggest appropriate values for a gift recommendation database.

Return ONLY valid JSON (no markdown, no explanation, no code blocks):
{
  "categories": [],
  "interests": [],
  "occasions": [],
  "recipient": {
    "gender": [],
    "relationship": []
  },
  "vibe": [],
  "personality_traits": [],
  "experience_level": ""
}

STRICT Guidelines (follow these limits exactly):
- categories: Pick MAXIMUM %d from [%s]
- interests: Pick MAXIMUM %d from [%s]
- occasions: Pick MAXIMUM %d from [%s]
- recipient.gender: Pick 1-%d from [%s]
- recipient.relationship: Pick 1-%d from [%s]
- vibe: Pick MAXIMUM %d from [%s]
- personality_traits: Pick MAXIMUM %d from [%s]
- experience_level: Pick EXACTLY 1 from [%s]

Rules:
1. Be selective and choose only the MOST relevant categories
2. Consider who would actually use the product
3. Think about typical gift-giving scenarios
4. Match experience_level to product complexity
5. Return ONLY the JSON, nothing else`,
		name, description, brand,
		domain.MaxCategories, strings.Join(domain.ProductCategories, ", "),
		domain.MaxInterests, strings.Join(domain.ProductInterests, ", "),
		domain.MaxOccasions, strings.Join(domain.ProductOccasions, ", "),
		domain.MaxRecipientGenders, strings.Join(domain.RecipientGenders, ", "),
		domain.MaxRecipientRelationships, strings.Join(domain.RecipientRelationships, ", "),
		domain.MaxVibes, strings.Join(domain.ProductVibes, ", "),
		domain.MaxPersonalityTraits, strings.Join(domain.PersonalityTraits, ", "),
		strings.Join(domain.ExperienceLevels, ", "),
	)
}

func filterCategorization(raw *Categorization) *Categorization {
	experience := raw.ExperienceLevel
	if len(domain.FilterVocabulary([]string{experience}, domain.ExperienceLevels, 1)) == 0 {
		experience = "beginner"
	}

	return &Categorization{
		Categories: domain.FilterVocabulary(raw.Categories, domain.ProductCategories, domain.MaxCategories),
		Interests:  domain.FilterVocabulary(raw.Interests, domain.ProductInterests, domain.MaxInterests),
		Occasions:  domain.FilterVocabulary(raw.Occasions, domain.ProductOccasions, domain.MaxOccasions),
		Recipient: domain.RecipientInfo{
			Gender:       domain.FilterVocabulary(raw.Recipient.Gender, domain.RecipientGenders, domain.MaxRecipientGenders),
			Relationship: domain.FilterVocabulary(raw.Recipient.Relationship, domain.RecipientRelationships, domain.MaxRecipientRelationships),
		},
		Vibe:              domain.FilterVocabulary(raw.Vibe, domain.ProductVibes, domain.MaxVibes),
		PersonalityTraits: domain.FilterVocabulary(raw.PersonalityTraits, domain.PersonalityTraits, domain.MaxPersonalityTraits),
		ExperienceLevel:   experience,
	}
}

func defaultCategorization() *Categorization {
	return &Categorization{
		Categories: []string{},
		Interests:  []string{},
		Occasions:  []string{"just_because"},
		Recipient: domain.RecipientInfo{
			Gender:       []string{"unisex"},
			Relationship: []string{"friend"},
		},
		Vibe:              []string{"practical"},
		PersonalityTraits: []string{},
		ExperienceLevel:   "beginner",
	}
}

func assessQuality(rating float64, reviewCount int, inStock bool) QualityIndicators {
	ratingStatus := "warning"
	switch {
	case rating >= 4.0:
		ratingStatus = "excellent"
	case rating > 0 && rating < 3.0:
		ratingStatus = "poor"
	}

	reviewsStatus := "poor"
	switch {
	case reviewCount >= 50:
		reviewsStatus = "excellent"
	case reviewCount >= 10:
		reviewsStatus = "warning"
	}

	stockStatus := "in_stock"
	if !inStock {
		stockStatus = "out_of_stock"
	}

	overall := "good"
	switch {
	case !inStock:
		overall = "poor"
	case ratingStatus == "poor" || reviewsStatus == "poor":
		overall = "poor"
	case ratingStatus == "warning" || reviewsStatus == "warning":
		overall = "warning"
	case ratingStatus == "excellent" && reviewsStatus == "excellent":
		overall = "excellent"
	}

	return QualityIndicators{
		RatingStatus:   ratingStatus,
		ReviewsStatus:  reviewsStatus,
		StockStatus:    stockStatus,
		OverallQuality: overall,
	}
}
