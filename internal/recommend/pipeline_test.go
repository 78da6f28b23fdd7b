package recommend

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/CAMGREEN637/gift-ai-backend/internal/domain"
	"github.com/CAMGREEN637/gift-ai-backend/internal/ratelimit"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockCandidateSource is a mock implementation of CandidateSource
type MockCandidateSource struct {
	mock.Mock
}

func (m *MockCandidateSource) FetchCandidates(ctx context.Context, query string, filters CandidateFilters) ([]RawItem, error) {
	args := m.Called(ctx, query, filters)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]RawItem), args.Error(1)
}

// MockPreferenceStore is a mock implementation of PreferenceStore
type MockPreferenceStore struct {
	mock.Mock
}

func (m *MockPreferenceStore) GetExplicitPreferences(ctx context.Context, userID string) (*domain.PreferenceProfile, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PreferenceProfile), args.Error(1)
}

func (m *MockPreferenceStore) GetInferredPreferences(ctx context.Context, userID string) (domain.InferredWeights, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(domain.InferredWeights), args.Error(1)
}

// MockFeedbackStore is a mock implementation of FeedbackStore
type MockFeedbackStore struct {
	mock.Mock
}

func (m *MockFeedbackStore) GetFeedback(ctx context.Context, userID string) ([]domain.FeedbackEvent, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.FeedbackEvent), args.Error(1)
}

// stubGate admits or rejects every request with a fixed decision.
type stubGate struct {
	decision ratelimit.Decision
}

func (g *stubGate) CheckAndAdmit(ctx context.Context, clientID string) ratelimit.Decision {
	return g.decision
}

func allowAll() *stubGate {
	return &stubGate{decision: ratelimit.Decision{Allowed: true, Limit: 10000}}
}

func item(id, name string, tags map[string]any, relevance float64) RawItem {
	return RawItem{ID: id, Name: name, Tags: tags, InStock: true, RawRelevance: relevance}
}

func TestPipeline_Recommend(t *testing.T) {
	ctx := context.Background()

	t.Run("rejection carries the full quota payload", func(t *testing.T) {
		resetAt := time.Date(2026, 8, 23, 15, 0, 0, 0, time.UTC)
		gate := &stubGate{decision: ratelimit.Decision{
			Allowed:      false,
			UnitsUsed:    10300,
			Limit:        10000,
			ResetAt:      resetAt,
			RetryAfterIn: 90 * time.Second,
		}}
		pipeline := NewPipeline(gate, new(MockPreferenceStore), new(MockFeedbackStore), new(MockCandidateSource))

		result, err := pipeline.Recommend(ctx, Request{Query: "coffee gift", ClientID: "10.0.0.1"})

		require.NoError(t, err)
		require.NotNil(t, result.Rejected)
		assert.Equal(t, int64(10300), result.Rejected.TokensUsed)
		assert.Equal(t, int64(10000), result.Rejected.Limit)
		assert.Equal(t, resetAt, result.Rejected.ResetTime)
		assert.Equal(t, int64(90), result.Rejected.RetryAfterSeconds)
		assert.Empty(t, result.Results)
	})

	t.Run("results rank by raw score descending", func(t *testing.T) {
		prefs := new(MockPreferenceStore)
		prefs.On("GetExplicitPreferences", mock.Anything, "user-1").Return(&domain.PreferenceProfile{
			Interests: []string{"coffee"},
		}, nil)
		prefs.On("GetInferredPreferences", mock.Anything, "user-1").Return(domain.InferredWeights{}, nil)

		feedback := new(MockFeedbackStore)
		feedback.On("GetFeedback", mock.Anything, "user-1").Return([]domain.FeedbackEvent{}, nil)

		source := new(MockCandidateSource)
		source.On("FetchCandidates", mock.Anything, "coffee gift", mock.Anything).Return([]RawItem{
			item("g1", "Plain Mug", map[string]any{}, 0.1),
			item("g2", "Pour Over Kit", map[string]any{"interests": "coffee"}, 0.5),
			item("g3", "Espresso Machine", map[string]any{"interests": []string{"coffee"}}, 0.9),
		}, nil)

		pipeline := NewPipeline(allowAll(), prefs, feedback, source)

		result, err := pipeline.Recommend(ctx, Request{Query: "coffee gift", ClientID: "10.0.0.1", UserID: "user-1"})

		require.NoError(t, err)
		require.Len(t, result.Results, 3)
		assert.Equal(t, "Espresso Machine", result.Results[0].Candidate.Name)
		assert.Equal(t, "Pour Over Kit", result.Results[1].Candidate.Name)
		assert.Equal(t, "Plain Mug", result.Results[2].Candidate.Name)
		for i := 1; i < len(result.Results); i++ {
			assert.GreaterOrEqual(t, result.Results[i-1].RawScore, result.Results[i].RawScore)
			assert.GreaterOrEqual(t, result.Results[i-1].Confidence, result.Results[i].Confidence)
		}
	})

	t.Run("ties keep retrieval order", func(t *testing.T) {
		source := new(MockCandidateSource)
		source.On("FetchCandidates", mock.Anything, "gift", mock.Anything).Return([]RawItem{
			item("g1", "First", map[string]any{}, 0.5),
			item("g2", "Second", map[string]any{}, 0.5),
			item("g3", "Third", map[string]any{}, 0.5),
		}, nil)

		pipeline := NewPipeline(allowAll(), new(MockPreferenceStore), new(MockFeedbackStore), source)

		result, err := pipeline.Recommend(ctx, Request{Query: "gift", ClientID: "10.0.0.1"})

		require.NoError(t, err)
		require.Len(t, result.Results, 3)
		assert.Equal(t, "First", result.Results[0].Candidate.Name)
		assert.Equal(t, "Second", result.Results[1].Candidate.Name)
		assert.Equal(t, "Third", result.Results[2].Candidate.Name)
		for _, r := range result.Results {
			assert.Equal(t, 0.60, r.Confidence)
		}
	})

	t.Run("caps results at k", func(t *testing.T) {
		items := make([]RawItem, 0, 8)
		for i := 0; i < 8; i++ {
			items = append(items, item("g", "Gift", map[string]any{}, float64(i)/10))
		}
		source := new(MockCandidateSource)
		source.On("FetchCandidates", mock.Anything, "gift", mock.Anything).Return(items, nil)

		pipeline := NewPipeline(allowAll(), new(MockPreferenceStore), new(MockFeedbackStore), source)

		result, err := pipeline.Recommend(ctx, Request{Query: "gift", ClientID: "10.0.0.1", K: 3})

		require.NoError(t, err)
		assert.Len(t, result.Results, 3)
	})

	t.Run("anonymous request skips preference and feedback reads", func(t *testing.T) {
		source := new(MockCandidateSource)
		source.On("FetchCandidates", mock.Anything, "gift", mock.Anything).Return([]RawItem{
			item("g1", "Gift", map[string]any{}, 0.4),
		}, nil)

		prefs := new(MockPreferenceStore)
		feedback := new(MockFeedbackStore)
		pipeline := NewPipeline(allowAll(), prefs, feedback, source)

		result, err := pipeline.Recommend(ctx, Request{Query: "gift", ClientID: "10.0.0.1"})

		require.NoError(t, err)
		assert.Len(t, result.Results, 1)
		prefs.AssertNotCalled(t, "GetExplicitPreferences", mock.Anything, mock.Anything)
		feedback.AssertNotCalled(t, "GetFeedback", mock.Anything, mock.Anything)
	})

	t.Run("candidate source failure degrades to empty results", func(t *testing.T) {
		source := new(MockCandidateSource)
		source.On("FetchCandidates", mock.Anything, "gift", mock.Anything).Return(nil, errors.New("catalog down"))

		pipeline := NewPipeline(allowAll(), new(MockPreferenceStore), new(MockFeedbackStore), source)

		result, err := pipeline.Recommend(ctx, Request{Query: "gift", ClientID: "10.0.0.1"})

		require.NoError(t, err)
		assert.Nil(t, result.Rejected)
		assert.Empty(t, result.Results)
	})

	t.Run("preference store failure degrades to empty preferences", func(t *testing.T) {
		prefs := new(MockPreferenceStore)
		prefs.On("GetExplicitPreferences", mock.Anything, "user-1").Return(nil, errors.New("store down"))
		prefs.On("GetInferredPreferences", mock.Anything, "user-1").Return(nil, errors.New("store down"))

		feedback := new(MockFeedbackStore)
		feedback.On("GetFeedback", mock.Anything, "user-1").Return(nil, errors.New("store down"))

		source := new(MockCandidateSource)
		source.On("FetchCandidates", mock.Anything, "gift", mock.Anything).Return([]RawItem{
			item("g1", "Gift", map[string]any{"interests": "coffee"}, 0.4),
		}, nil)

		pipeline := NewPipeline(allowAll(), prefs, feedback, source)

		result, err := pipeline.Recommend(ctx, Request{Query: "gift", ClientID: "10.0.0.1", UserID: "user-1"})

		require.NoError(t, err)
		require.Len(t, result.Results, 1)
		assert.Empty(t, result.Preferences.Interests)
		assert.Equal(t, 0, result.Results[0].Breakdown.InterestMatches)
	})

	t.Run("every result carries at least one reason", func(t *testing.T) {
		source := new(MockCandidateSource)
		source.On("FetchCandidates", mock.Anything, "gift", mock.Anything).Return([]RawItem{
			item("g1", "Gift", map[string]any{}, 0.4),
		}, nil)

		pipeline := NewPipeline(allowAll(), new(MockPreferenceStore), new(MockFeedbackStore), source)

		result, err := pipeline.Recommend(ctx, Request{Query: "gift", ClientID: "10.0.0.1"})

		require.NoError(t, err)
		require.Len(t, result.Results, 1)
		assert.Equal(t, []string{ReasonFallback}, result.Results[0].RankingReasons)
	})
}
