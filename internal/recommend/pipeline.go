package recommend

import (
	"context"
	"log"
	"sort"
	"time"

	"github.com/CAMGREEN637/gift-ai-backend/internal/domain"
	"github.com/CAMGREEN637/gift-ai-backend/internal/ratelimit"
	"github.com/CAMGREEN637/gift-ai-backend/internal/telemetry"
)

// DefaultTopK caps the result list when the caller does not specify k.
const DefaultTopK = 5

// DefaultCandidateLimit bounds how many candidates one retrieval pulls in
// before scoring.
const DefaultCandidateLimit = 20

// CandidateFilters narrows candidate retrieval.
type CandidateFilters struct {
	MaxPrice    *float64
	InStockOnly bool
	Limit       int
}

// CandidateSource fetches raw catalog items relevant to a query.
type CandidateSource interface {
	FetchCandidates(ctx context.Context, query string, filters CandidateFilters) ([]RawItem, error)
}

// PreferenceStore reads stored preference state for one user.
type PreferenceStore interface {
	GetExplicitPreferences(ctx context.Context, userID string) (*domain.PreferenceProfile, error)
	GetInferredPreferences(ctx context.Context, userID string) (domain.InferredWeights, error)
}

// FeedbackStore reads like/dislike history for one user.
type FeedbackStore interface {
	GetFeedback(ctx context.Context, userID string) ([]domain.FeedbackEvent, error)
}

// AdmissionGate decides whether a client may consume the pipeline.
type AdmissionGate interface {
	CheckAndAdmit(ctx context.Context, clientID string) ratelimit.Decision
}

// Request is one inbound recommendation request.
type Request struct {
	Query    string
	ClientID string
	UserID   string
	MaxPrice *float64
	K        int
}

// Rejection is the mandatory payload returned when the gate denies a request.
type Rejection struct {
	TokensUsed        int64     `json:"tokens_used"`
	Limit             int64     `json:"limit"`
	ResetTime         time.Time `json:"reset_time"`
	RetryAfterSeconds int64     `json:"retry_after_seconds"`
}

// RankedResult is one recommended candidate with its display confidence and
// reasons. Produced fresh per request; never cached, since preference and
// feedback state can change between calls.
type RankedResult struct {
	Candidate      Candidate
	RawScore       float64
	Confidence     float64
	Breakdown      ScoreBreakdown
	RankingReasons []string
}

// Result is the outcome of one pipeline run. Exactly one of Results or
// Rejected is meaningful: a non-nil Rejected means the gate denied the
// request before any work happened.
type Result struct {
	Results     []RankedResult
	Preferences MergedPreferences
	Rejected    *Rejection
}

// Pipeline sequences one recommendation request: gate check, preference
// merge, candidate retrieval, scoring, confidence normalization, reason
// building. Stages run strictly in order with no re-entry; collaborator
// failures past the gate degrade to empty collections instead of aborting.
type Pipeline struct {
	gate        AdmissionGate
	preferences PreferenceStore
	feedback    FeedbackStore
	candidates  CandidateSource
}

// NewPipeline creates a Pipeline with its collaborators. Handles are
// constructed once at process start and shared across requests; the pipeline
// keeps no mutable state between runs.
func NewPipeline(gate AdmissionGate, preferences PreferenceStore, feedback FeedbackStore, candidates CandidateSource) *Pipeline {
	return &Pipeline{
		gate:        gate,
		preferences: preferences,
		feedback:    feedback,
		candidates:  candidates,
	}
}

// Recommend runs the pipeline for one request. The only error it returns is
// context cancellation; every collaborator failure resolves to a rejection
// or a possibly-degraded result.
func (p *Pipeline) Recommend(ctx context.Context, req Request) (*Result, error) {
	ctx, span := telemetry.StartSpan(ctx, "pipeline.recommend", telemetry.SpanAttributes{
		ClientID:  req.ClientID,
		Operation: "recommend",
	})
	defer span.End()

	decision := p.gate.CheckAndAdmit(ctx, req.ClientID)
	if !decision.Allowed {
		return &Result{Rejected: &Rejection{
			TokensUsed:        decision.UnitsUsed,
			Limit:             decision.Limit,
			ResetTime:         decision.ResetAt,
			RetryAfterSeconds: int64(decision.RetryAfterIn.Seconds()),
		}}, nil
	}

	merged := p.mergePreferences(ctx, req.UserID)

	k := req.K
	if k <= 0 {
		k = DefaultTopK
	}
	limit := DefaultCandidateLimit
	if k > limit {
		limit = k
	}

	rawItems, err := p.candidates.FetchCandidates(ctx, req.Query, CandidateFilters{
		MaxPrice:    req.MaxPrice,
		InStockOnly: true,
		Limit:       limit,
	})
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		// Degrade to an empty candidate list; a partial recommendation beats
		// a hard failure.
		log.Printf("pipeline: candidate retrieval failed for query %q: %v", req.Query, err)
		telemetry.CaptureError(ctx, domain.NewDomainErrorWithCause(
			domain.ErrCodeCollaboratorUnavailable, "candidate retrieval failed", err))
		rawItems = nil
	}

	history := p.feedbackHistory(ctx, req.UserID)

	results := make([]RankedResult, 0, len(rawItems))
	for _, raw := range rawItems {
		candidate := NormalizeCandidate(raw)
		rawScore, breakdown := ScoreCandidate(candidate, merged, history)
		results = append(results, RankedResult{
			Candidate: candidate,
			RawScore:  rawScore,
			Breakdown: breakdown,
		})
	}

	// Descending by raw score; ties keep retrieval order so identical
	// inputs rank identically.
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].RawScore > results[j].RawScore
	})

	if len(results) > k {
		results = results[:k]
	}

	scores := make([]float64, len(results))
	for i := range results {
		scores[i] = results[i].RawScore
	}
	confidences := NormalizeConfidence(scores)
	for i := range results {
		results[i].Confidence = confidences[i]
		results[i].RankingReasons = BuildReasons(results[i].Breakdown)
	}

	return &Result{Results: results, Preferences: merged}, nil
}

func (p *Pipeline) mergePreferences(ctx context.Context, userID string) MergedPreferences {
	if userID == "" {
		return MergePreferences(nil, nil)
	}

	explicit, err := p.preferences.GetExplicitPreferences(ctx, userID)
	if err != nil {
		log.Printf("pipeline: explicit preference read failed for %s: %v", userID, err)
		explicit = nil
	}

	inferred, err := p.preferences.GetInferredPreferences(ctx, userID)
	if err != nil {
		log.Printf("pipeline: inferred preference read failed for %s: %v", userID, err)
		inferred = nil
	}

	return MergePreferences(explicit, inferred)
}

func (p *Pipeline) feedbackHistory(ctx context.Context, userID string) []domain.FeedbackEvent {
	if userID == "" {
		return nil
	}

	history, err := p.feedback.GetFeedback(ctx, userID)
	if err != nil {
		log.Printf("pipeline: feedback read failed for %s: %v", userID, err)
		return nil
	}
	return history
}
