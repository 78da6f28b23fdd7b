package jobs

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/CAMGREEN637/gift-ai-backend/internal/domain"
	"github.com/CAMGREEN637/gift-ai-backend/internal/telemetry"
)

// DefaultEmbeddingBatchSize bounds how many products one poll embeds.
const DefaultEmbeddingBatchSize = 20

// EmbeddingCatalog is the catalog capability the backfill needs.
type EmbeddingCatalog interface {
	ListMissingEmbeddings(ctx context.Context, limit int) ([]*domain.GiftProduct, error)
	UpdateEmbedding(ctx context.Context, id string, embedding []float32) error
}

// Embedder generates one embedding per document.
type Embedder interface {
	GenerateEmbedding(ctx context.Context, text string) ([]float32, int, error)
}

// EmbeddingBackfill embeds catalog products that have no embedding yet:
// freshly created products and products whose update cleared the old vector.
type EmbeddingBackfill struct {
	catalog   EmbeddingCatalog
	embedder  Embedder
	batchSize int
}

func NewEmbeddingBackfill(catalog EmbeddingCatalog, embedder Embedder) *EmbeddingBackfill {
	return &EmbeddingBackfill{
		catalog:   catalog,
		embedder:  embedder,
		batchSize: DefaultEmbeddingBatchSize,
	}
}

// ProcessJobs embeds one batch of products. A failure on one product is
// logged and skipped so a single bad document cannot stall the backfill.
func (b *EmbeddingBackfill) ProcessJobs(ctx context.Context) error {
	products, err := b.catalog.ListMissingEmbeddings(ctx, b.batchSize)
	if err != nil {
		return fmt.Errorf("failed to list products missing embeddings: %w", err)
	}
	if len(products) == 0 {
		return nil
	}

	for _, p := range products {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		embedding, _, err := b.embedder.GenerateEmbedding(ctx, BuildEmbeddingText(p))
		if err != nil {
			log.Printf("embedding backfill: failed to embed %s: %v", p.ID, err)
			telemetry.CaptureError(ctx, domain.NewDomainErrorWithCause(
				domain.ErrCodeCollaboratorUnavailable, "embedding generation failed", err))
			continue
		}

		if err := b.catalog.UpdateEmbedding(ctx, p.ID, embedding); err != nil {
			log.Printf("embedding backfill: failed to store embedding for %s: %v", p.ID, err)
			continue
		}
	}

	log.Printf("embedding backfill: processed %d products", len(products))
	return nil
}

// BuildEmbeddingText renders a product into the document shape the vector
// index was built from. Changing this format invalidates stored embeddings.
func BuildEmbeddingText(p *domain.GiftProduct) string {
	return fmt.Sprintf(`%s. %s
Categories: %s.
Interests: %s.
Occasions: %s.
Vibe: %s.
Personality traits: %s.`,
		p.Name, p.Description,
		strings.Join(p.Categories, ", "),
		strings.Join(p.Interests, ", "),
		strings.Join(p.Occasions, ", "),
		strings.Join(p.Vibe, ", "),
		strings.Join(p.PersonalityTraits, ", "),
	)
}
