package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/CAMGREEN637/gift-ai-backend/internal/domain"
	"github.com/CAMGREEN637/gift-ai-backend/internal/openai"
	"github.com/CAMGREEN637/gift-ai-backend/internal/recommend"
	"github.com/CAMGREEN637/gift-ai-backend/internal/telemetry"
)

const (
	explanationTemperature = 0.4

	fallbackIntro = "Here are a few thoughtful gift ideas you might like:"
	defaultIntro  = "Here are some thoughtful gift ideas based on your request."
	defaultReason = "This gift is a strong match based on your search and preferences."
)

// CatalogSearcher is the catalog capability the candidate source needs.
type CatalogSearcher interface {
	SearchByEmbedding(ctx context.Context, embedding []float32, filters recommend.CandidateFilters) ([]recommend.RawItem, error)
}

// EmbeddingClient generates query embeddings and reports their token cost.
type EmbeddingClient interface {
	GenerateEmbedding(ctx context.Context, text string) ([]float32, int, error)
}

// ExplanationClient runs the chat completion that produces gift explanations.
type ExplanationClient interface {
	CreateChatJSON(ctx context.Context, model, systemPrompt, userPrompt string, temperature float32) (openai.ChatResult, error)
}

// UsageRecorder records completed work against a client's budget.
type UsageRecorder interface {
	RecordUsage(ctx context.Context, clientID string, units int64, resource, operation string) error
}

// EmbeddingCandidateSource retrieves candidates by embedding the query and
// searching the vector index.
type EmbeddingCandidateSource struct {
	embedder EmbeddingClient
	catalog  CatalogSearcher
}

func NewEmbeddingCandidateSource(embedder EmbeddingClient, catalog CatalogSearcher) *EmbeddingCandidateSource {
	return &EmbeddingCandidateSource{embedder: embedder, catalog: catalog}
}

// FetchCandidates embeds the query text and returns the nearest catalog items.
// Embedding tokens land on the request's token tally even when the downstream
// search fails; the tokens were spent either way.
func (s *EmbeddingCandidateSource) FetchCandidates(ctx context.Context, query string, filters recommend.CandidateFilters) ([]recommend.RawItem, error) {
	embedding, tokens, err := s.embedder.GenerateEmbedding(ctx, query)
	AddTokens(ctx, int64(tokens))
	if err != nil {
		return nil, fmt.Errorf("query embedding failed: %w", err)
	}

	items, err := s.catalog.SearchByEmbedding(ctx, embedding, filters)
	if err != nil {
		return nil, fmt.Errorf("vector search failed: %w", err)
	}
	return items, nil
}

// GiftRecommendation is one recommended gift in API shape, carrying both the
// retrieval-owned product fields and the explanation layer's reason.
type GiftRecommendation struct {
	ID             string   `json:"id"`
	Name           string   `json:"name"`
	Description    string   `json:"description,omitempty"`
	Price          float64  `json:"price"`
	Currency       string   `json:"currency"`
	Brand          string   `json:"brand,omitempty"`
	Link           string   `json:"link,omitempty"`
	ImageURL       string   `json:"image_url,omitempty"`
	Rating         float64  `json:"rating,omitempty"`
	ReviewCount    int      `json:"review_count"`
	InStock        bool     `json:"in_stock"`
	Confidence     float64  `json:"confidence"`
	RankingReasons []string `json:"ranking_reasons"`
	Reason         string   `json:"reason"`

	Breakdown recommend.ScoreBreakdown `json:"score_breakdown"`
}

// RecommendInput is one recommendation request after transport decoding.
type RecommendInput struct {
	Query    string
	ClientID string
	UserID   string
	MaxPrice *float64
	K        int
}

// RecommendOutput is the assembled response. A non-nil Rejected means the
// rate gate denied the request and Gifts is empty.
type RecommendOutput struct {
	Intro    string               `json:"intro"`
	Gifts    []GiftRecommendation `json:"gifts"`
	Rejected *recommend.Rejection `json:"-"`
}

// RecommendationService runs the ranking pipeline and layers the LLM
// explanation on top. The explanation only rephrases; retrieval owns every
// product fact in the response.
type RecommendationService struct {
	pipeline  *recommend.Pipeline
	explainer ExplanationClient
	usage     UsageRecorder
	model     string
}

// NewRecommendationService creates a RecommendationService. A nil explainer
// disables explanations; gifts then carry the default reason text.
func NewRecommendationService(pipeline *recommend.Pipeline, explainer ExplanationClient, usage UsageRecorder, model string) *RecommendationService {
	return &RecommendationService{
		pipeline:  pipeline,
		explainer: explainer,
		usage:     usage,
		model:     model,
	}
}

// Recommend serves one recommendation request end to end.
func (s *RecommendationService) Recommend(ctx context.Context, input RecommendInput) (*RecommendOutput, error) {
	ctx, span := telemetry.StartSpan(ctx, "RecommendationService.Recommend", telemetry.SpanAttributes{
		ClientID:  input.ClientID,
		UserID:    input.UserID,
		Operation: "recommend",
	})
	defer span.End()

	if strings.TrimSpace(input.Query) == "" {
		return nil, domain.ErrEmptyQuery
	}

	ctx, tally := WithTokenTally(ctx)

	result, err := s.pipeline.Recommend(ctx, recommend.Request{
		Query:    input.Query,
		ClientID: input.ClientID,
		UserID:   input.UserID,
		MaxPrice: input.MaxPrice,
		K:        input.K,
	})
	if err != nil {
		return nil, err
	}
	if result.Rejected != nil {
		return &RecommendOutput{Rejected: result.Rejected}, nil
	}

	gifts := make([]GiftRecommendation, 0, len(result.Results))
	for _, r := range result.Results {
		gifts = append(gifts, GiftRecommendation{
			ID:             r.Candidate.ID,
			Name:           r.Candidate.Name,
			Description:    r.Candidate.Description,
			Price:          r.Candidate.Price,
			Currency:       r.Candidate.Currency,
			Brand:          r.Candidate.Brand,
			Link:           r.Candidate.Link,
			ImageURL:       r.Candidate.ImageURL,
			Rating:         r.Candidate.Rating,
			ReviewCount:    r.Candidate.ReviewCount,
			InStock:        r.Candidate.InStock,
			Confidence:     r.Confidence,
			RankingReasons: r.RankingReasons,
			Reason:         defaultReason,
			Breakdown:      r.Breakdown,
		})
	}

	intro := defaultIntro
	if s.explainer != nil && len(gifts) > 0 {
		intro = s.explain(ctx, input.Query, gifts, result.Preferences)
	}

	if total := tally.Total(); total > 0 {
		// Best effort; a failed write never fails the request.
		_ = s.usage.RecordUsage(ctx, input.ClientID, total, "openai", "recommend")
	}

	return &RecommendOutput{Intro: intro, Gifts: gifts}, nil
}

type explanationPayload struct {
	Intro string `json:"intro"`
	Gifts []struct {
		Name   string `json:"name"`
		Reason string `json:"reason"`
	} `json:"gifts"`
}

// explain asks the model for an intro and per-gift reasons, then merges them
// into the gift list in place. Any failure falls back to default text; the
// explanation layer never removes or blocks a recommendation.
func (s *RecommendationService) explain(ctx context.Context, query string, gifts []GiftRecommendation, prefs recommend.MergedPreferences) string {
	result, err := s.explainer.CreateChatJSON(ctx,
		s.model,
		buildExplanationSystemPrompt(prefs),
		buildExplanationUserPrompt(query, gifts),
		explanationTemperature,
	)
	AddTokens(ctx, int64(result.TokensUsed))
	if err != nil {
		log.Printf("recommendation: explanation call failed: %v", err)
		return fallbackIntro
	}

	var parsed explanationPayload
	if err := json.Unmarshal([]byte(result.Content), &parsed); err != nil {
		log.Printf("recommendation: explanation returned invalid JSON: %v", err)
		return fallbackIntro
	}

	reasonsByName := make(map[string]string, len(parsed.Gifts))
	for _, g := range parsed.Gifts {
		if g.Name != "" && g.Reason != "" {
			reasonsByName[g.Name] = g.Reason
		}
	}
	for i := range gifts {
		if reason, ok := reasonsByName[gifts[i].Name]; ok {
			gifts[i].Reason = reason
		}
	}

	if parsed.Intro == "" {
		return defaultIntro
	}
	return parsed.Intro
}

func buildExplanationSystemPrompt(prefs recommend.MergedPreferences) string {
	prefText := "User did not provide explicit preferences."
	if len(prefs.Interests) > 0 || len(prefs.Vibe) > 0 {
		prefText = fmt.Sprintf(`User preferences (IMPORTANT):
- Interests: %s
- Vibe: %s

You must prioritize gifts that match these preferences and
explicitly explain how each gift aligns with them.`,
			strings.Join(prefs.Interests, ", "),
			strings.Join(prefs.Vibe, ", "))
	}

	return fmt.Sprintf(`You are a thoughtful gift recommendation assistant.

Your job is to explain gift recommendations clearly, honestly,
and persuasively, without inventing facts.

%s

Rules:
- Treat higher confidence gifts as stronger recommendations
- Use ranking reasons verbatim
- Do NOT invent product details
- Do NOT invent preferences
- Keep explanations concise and warm`, prefText)
}

func buildExplanationUserPrompt(query string, gifts []GiftRecommendation) string {
	var giftContext strings.Builder
	for _, g := range gifts {
		reasons := strings.Join(g.RankingReasons, ", ")
		if reasons == "" {
			reasons = "Relevant to the search"
		}
		description := g.Description
		if description == "" {
			description = "No description provided"
		}
		fmt.Fprintf(&giftContext, `
Name: %s
Price: $%.2f
Confidence: %.2f
Ranking reasons: %s
Description: %s
---
`, g.Name, g.Price, g.Confidence, reasons, description)
	}

	return fmt.Sprintf(`User query: %q

Return STRICT JSON in this format:

{
  "intro": "one short sentence setting context",
  "gifts": [
    {
      "name": "gift name",
      "reason": "1-2 sentence explanation referencing ranking reasons"
    }
  ]
}

Gift options:
%s`, query, giftContext.String())
}
