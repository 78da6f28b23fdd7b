package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/CAMGREEN637/gift-ai-backend/internal/domain"
	"github.com/CAMGREEN637/gift-ai-backend/internal/openai"
	"github.com/CAMGREEN637/gift-ai-backend/internal/ratelimit"
	"github.com/CAMGREEN637/gift-ai-backend/internal/recommend"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type stubGate struct {
	decision ratelimit.Decision
}

func (g *stubGate) CheckAndAdmit(ctx context.Context, clientID string) ratelimit.Decision {
	return g.decision
}

type stubPreferenceStore struct{}

func (stubPreferenceStore) GetExplicitPreferences(ctx context.Context, userID string) (*domain.PreferenceProfile, error) {
	return nil, nil
}

func (stubPreferenceStore) GetInferredPreferences(ctx context.Context, userID string) (domain.InferredWeights, error) {
	return nil, nil
}

type stubFeedbackStore struct{}

func (stubFeedbackStore) GetFeedback(ctx context.Context, userID string) ([]domain.FeedbackEvent, error) {
	return nil, nil
}

// MockEmbeddingClient is a mock implementation of EmbeddingClient
type MockEmbeddingClient struct {
	mock.Mock
}

func (m *MockEmbeddingClient) GenerateEmbedding(ctx context.Context, text string) ([]float32, int, error) {
	args := m.Called(ctx, text)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]float32), args.Int(1), args.Error(2)
}

// MockCatalogSearcher is a mock implementation of CatalogSearcher
type MockCatalogSearcher struct {
	mock.Mock
}

func (m *MockCatalogSearcher) SearchByEmbedding(ctx context.Context, embedding []float32, filters recommend.CandidateFilters) ([]recommend.RawItem, error) {
	args := m.Called(ctx, embedding, filters)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]recommend.RawItem), args.Error(1)
}

// MockExplanationClient is a mock implementation of ExplanationClient
type MockExplanationClient struct {
	mock.Mock
}

func (m *MockExplanationClient) CreateChatJSON(ctx context.Context, model, systemPrompt, userPrompt string, temperature float32) (openai.ChatResult, error) {
	args := m.Called(ctx, model, systemPrompt, userPrompt, temperature)
	return args.Get(0).(openai.ChatResult), args.Error(1)
}

// MockUsageRecorder is a mock implementation of UsageRecorder
type MockUsageRecorder struct {
	mock.Mock
}

func (m *MockUsageRecorder) RecordUsage(ctx context.Context, clientID string, units int64, resource, operation string) error {
	args := m.Called(ctx, clientID, units, resource, operation)
	return args.Error(0)
}

func allowedGate() *stubGate {
	return &stubGate{decision: ratelimit.Decision{Allowed: true, Limit: 10000}}
}

func kettleItem() recommend.RawItem {
	return recommend.RawItem{
		ID:           "gift_0001",
		Name:         "Pour Over Kettle",
		Description:  "Gooseneck kettle",
		Price:        45,
		Currency:     "USD",
		InStock:      true,
		Tags:         map[string]any{"interests": []string{"coffee"}},
		RawRelevance: 0.8,
	}
}

func newServiceUnderTest(source recommend.CandidateSource, explainer ExplanationClient, usage UsageRecorder) *RecommendationService {
	pipeline := recommend.NewPipeline(allowedGate(), stubPreferenceStore{}, stubFeedbackStore{}, source)
	return NewRecommendationService(pipeline, explainer, usage, "gpt-4o-mini")
}

func TestRecommendEndToEnd(t *testing.T) {
	embedder := new(MockEmbeddingClient)
	catalog := new(MockCatalogSearcher)
	explainer := new(MockExplanationClient)
	usage := new(MockUsageRecorder)

	embedding := []float32{0.1, 0.2}
	embedder.On("GenerateEmbedding", mock.Anything, "coffee gifts").Return(embedding, 7, nil)
	catalog.On("SearchByEmbedding", mock.Anything, embedding, mock.Anything).Return([]recommend.RawItem{kettleItem()}, nil)

	explainer.On("CreateChatJSON", mock.Anything, "gpt-4o-mini", mock.AnythingOfType("string"), mock.AnythingOfType("string"), float32(0.4)).
		Return(openai.ChatResult{
			Content:    `{"intro":"Coffee lovers rejoice","gifts":[{"name":"Pour Over Kettle","reason":"Matches the coffee interest"}]}`,
			TokensUsed: 93,
		}, nil)

	usage.On("RecordUsage", mock.Anything, "203.0.113.9", int64(100), "openai", "recommend").Return(nil)

	svc := newServiceUnderTest(NewEmbeddingCandidateSource(embedder, catalog), explainer, usage)

	output, err := svc.Recommend(context.Background(), RecommendInput{
		Query:    "coffee gifts",
		ClientID: "203.0.113.9",
	})

	require.NoError(t, err)
	assert.Nil(t, output.Rejected)
	assert.Equal(t, "Coffee lovers rejoice", output.Intro)
	require.Len(t, output.Gifts, 1)
	assert.Equal(t, "Matches the coffee interest", output.Gifts[0].Reason)
	usage.AssertExpectations(t)
}

func TestRecommendExplainerFailureFallsBack(t *testing.T) {
	embedder := new(MockEmbeddingClient)
	catalog := new(MockCatalogSearcher)
	explainer := new(MockExplanationClient)
	usage := new(MockUsageRecorder)

	embedder.On("GenerateEmbedding", mock.Anything, mock.Anything).Return([]float32{0.1}, 5, nil)
	catalog.On("SearchByEmbedding", mock.Anything, mock.Anything, mock.Anything).Return([]recommend.RawItem{kettleItem()}, nil)
	explainer.On("CreateChatJSON", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(openai.ChatResult{}, errors.New("api down"))
	usage.On("RecordUsage", mock.Anything, mock.Anything, int64(5), "openai", "recommend").Return(nil)

	svc := newServiceUnderTest(NewEmbeddingCandidateSource(embedder, catalog), explainer, usage)

	output, err := svc.Recommend(context.Background(), RecommendInput{Query: "gifts", ClientID: "c1"})

	require.NoError(t, err)
	assert.Equal(t, fallbackIntro, output.Intro)
	require.Len(t, output.Gifts, 1)
	assert.Equal(t, defaultReason, output.Gifts[0].Reason)
}

func TestRecommendInvalidExplanationJSONFallsBack(t *testing.T) {
	embedder := new(MockEmbeddingClient)
	catalog := new(MockCatalogSearcher)
	explainer := new(MockExplanationClient)
	usage := new(MockUsageRecorder)

	embedder.On("GenerateEmbedding", mock.Anything, mock.Anything).Return([]float32{0.1}, 5, nil)
	catalog.On("SearchByEmbedding", mock.Anything, mock.Anything, mock.Anything).Return([]recommend.RawItem{kettleItem()}, nil)
	explainer.On("CreateChatJSON", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(openai.ChatResult{Content: "not json at all", TokensUsed: 12}, nil)
	usage.On("RecordUsage", mock.Anything, mock.Anything, int64(17), "openai", "recommend").Return(nil)

	svc := newServiceUnderTest(NewEmbeddingCandidateSource(embedder, catalog), explainer, usage)

	output, err := svc.Recommend(context.Background(), RecommendInput{Query: "gifts", ClientID: "c1"})

	require.NoError(t, err)
	assert.Equal(t, fallbackIntro, output.Intro)
	usage.AssertExpectations(t)
}

func TestRecommendEmptyQuery(t *testing.T) {
	svc := newServiceUnderTest(NewEmbeddingCandidateSource(new(MockEmbeddingClient), new(MockCatalogSearcher)), nil, new(MockUsageRecorder))

	_, err := svc.Recommend(context.Background(), RecommendInput{Query: "   ", ClientID: "c1"})

	assert.ErrorIs(t, err, domain.ErrEmptyQuery)
}

func TestRecommendRejectionShortCircuits(t *testing.T) {
	explainer := new(MockExplanationClient)
	usage := new(MockUsageRecorder)

	gate := &stubGate{decision: ratelimit.Decision{
		Allowed:      false,
		UnitsUsed:    10300,
		Limit:        10000,
		ResetAt:      time.Date(2026, 3, 10, 13, 0, 0, 0, time.UTC),
		RetryAfterIn: 30 * time.Minute,
	}}
	pipeline := recommend.NewPipeline(gate, stubPreferenceStore{}, stubFeedbackStore{},
		NewEmbeddingCandidateSource(new(MockEmbeddingClient), new(MockCatalogSearcher)))
	svc := NewRecommendationService(pipeline, explainer, usage, "gpt-4o-mini")

	output, err := svc.Recommend(context.Background(), RecommendInput{Query: "gifts", ClientID: "c1"})

	require.NoError(t, err)
	require.NotNil(t, output.Rejected)
	assert.Equal(t, int64(10300), output.Rejected.TokensUsed)
	explainer.AssertNotCalled(t, "CreateChatJSON", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	usage.AssertNotCalled(t, "RecordUsage", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestRecommendNoExplainerUsesDefaults(t *testing.T) {
	embedder := new(MockEmbeddingClient)
	catalog := new(MockCatalogSearcher)
	usage := new(MockUsageRecorder)

	embedder.On("GenerateEmbedding", mock.Anything, mock.Anything).Return([]float32{0.1}, 5, nil)
	catalog.On("SearchByEmbedding", mock.Anything, mock.Anything, mock.Anything).Return([]recommend.RawItem{kettleItem()}, nil)
	usage.On("RecordUsage", mock.Anything, mock.Anything, int64(5), "openai", "recommend").Return(nil)

	svc := newServiceUnderTest(NewEmbeddingCandidateSource(embedder, catalog), nil, usage)

	output, err := svc.Recommend(context.Background(), RecommendInput{Query: "gifts", ClientID: "c1"})

	require.NoError(t, err)
	assert.Equal(t, defaultIntro, output.Intro)
	require.Len(t, output.Gifts, 1)
	assert.Equal(t, defaultReason, output.Gifts[0].Reason)
}

func TestEmbeddingCandidateSourceTallyOnFailure(t *testing.T) {
	embedder := new(MockEmbeddingClient)
	catalog := new(MockCatalogSearcher)

	embedder.On("GenerateEmbedding", mock.Anything, "gifts").Return(nil, 4, errors.New("api down"))

	source := NewEmbeddingCandidateSource(embedder, catalog)
	ctx, tally := WithTokenTally(context.Background())

	_, err := source.FetchCandidates(ctx, "gifts", recommend.CandidateFilters{})

	assert.Error(t, err)
	assert.Equal(t, int64(4), tally.Total())
	catalog.AssertNotCalled(t, "SearchByEmbedding", mock.Anything, mock.Anything, mock.Anything)
}
