package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/CAMGREEN637/gift-ai-backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// MockPreferenceService is a mock implementation of PreferenceServiceInterface
type MockPreferenceService struct {
	mock.Mock
}

func (m *MockPreferenceService) SavePreferences(ctx context.Context, profile domain.PreferenceProfile) error {
	args := m.Called(ctx, profile)
	return args.Error(0)
}

func (m *MockPreferenceService) GetPreferences(ctx context.Context, userID string) (*domain.PreferenceProfile, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PreferenceProfile), args.Error(1)
}

func (m *MockPreferenceService) RecordFeedback(ctx context.Context, event domain.FeedbackEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func TestSavePreferences(t *testing.T) {
	svc := new(MockPreferenceService)
	handler := NewPreferenceHandler(svc)

	svc.On("SavePreferences", mock.Anything, domain.PreferenceProfile{
		UserID:    "user123",
		Interests: []string{"coffee", "hiking"},
		Vibe:      []string{"cozy"},
	}).Return(nil)

	body := `{"user_id":"user123","interests":["coffee","hiking"],"vibe":["cozy"]}`
	req := httptest.NewRequest(http.MethodPost, "/preferences", strings.NewReader(body))
	rec := httptest.NewRecorder()

	handler.SavePreferences(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "saved")
	svc.AssertExpectations(t)
}

func TestSavePreferencesMissingUserID(t *testing.T) {
	handler := NewPreferenceHandler(new(MockPreferenceService))

	req := httptest.NewRequest(http.MethodPost, "/preferences", strings.NewReader(`{"interests":["coffee"]}`))
	rec := httptest.NewRecorder()

	handler.SavePreferences(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSavePreferencesInvalidBody(t *testing.T) {
	handler := NewPreferenceHandler(new(MockPreferenceService))

	req := httptest.NewRequest(http.MethodPost, "/preferences", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()

	handler.SavePreferences(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetPreferences(t *testing.T) {
	svc := new(MockPreferenceService)
	handler := NewPreferenceHandler(svc)

	svc.On("GetPreferences", mock.Anything, "user123").Return(&domain.PreferenceProfile{
		UserID:    "user123",
		Interests: []string{"coffee"},
	}, nil)

	req := httptest.NewRequest(http.MethodGet, "/preferences?user_id=user123", nil)
	rec := httptest.NewRecorder()

	handler.GetPreferences(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "coffee")
}

func TestGetPreferencesNotFound(t *testing.T) {
	svc := new(MockPreferenceService)
	handler := NewPreferenceHandler(svc)

	svc.On("GetPreferences", mock.Anything, "ghost").Return(nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/preferences?user_id=ghost", nil)
	rec := httptest.NewRecorder()

	handler.GetPreferences(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSubmitFeedback(t *testing.T) {
	svc := new(MockPreferenceService)
	handler := NewPreferenceHandler(svc)

	svc.On("RecordFeedback", mock.Anything, domain.FeedbackEvent{
		UserID:   "user123",
		GiftName: "Pour Over Kettle",
		Liked:    true,
	}).Return(nil)

	body := `{"user_id":"user123","gift_name":"Pour Over Kettle","liked":true}`
	req := httptest.NewRequest(http.MethodPost, "/feedback", strings.NewReader(body))
	rec := httptest.NewRecorder()

	handler.SubmitFeedback(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "feedback recorded")
	svc.AssertExpectations(t)
}

func TestSubmitFeedbackMissingFields(t *testing.T) {
	handler := NewPreferenceHandler(new(MockPreferenceService))

	req := httptest.NewRequest(http.MethodPost, "/feedback", strings.NewReader(`{"user_id":"user123"}`))
	rec := httptest.NewRecorder()

	handler.SubmitFeedback(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
