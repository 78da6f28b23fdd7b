package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/CAMGREEN637/gift-ai-backend/internal/api"
	"github.com/CAMGREEN637/gift-ai-backend/internal/domain"
)

type PreferenceServiceInterface interface {
	SavePreferences(ctx context.Context, profile domain.PreferenceProfile) error
	GetPreferences(ctx context.Context, userID string) (*domain.PreferenceProfile, error)
	RecordFeedback(ctx context.Context, event domain.FeedbackEvent) error
}

type PreferenceHandler struct {
	svc PreferenceServiceInterface
}

func NewPreferenceHandler(svc PreferenceServiceInterface) *PreferenceHandler {
	return &PreferenceHandler{svc: svc}
}

type PreferencesRequest struct {
	UserID    string   `json:"user_id"`
	Interests []string `json:"interests"`
	Vibe      []string `json:"vibe"`
}

type FeedbackRequest struct {
	UserID   string `json:"user_id"`
	GiftName string `json:"gift_name"`
	Liked    bool   `json:"liked"`
}

// SavePreferences serves POST /preferences.
func (h *PreferenceHandler) SavePreferences(w http.ResponseWriter, r *http.Request) {
	var req PreferencesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.UserID == "" {
		api.Error(w, http.StatusBadRequest, "user_id is required")
		return
	}

	err := h.svc.SavePreferences(r.Context(), domain.PreferenceProfile{
		UserID:    req.UserID,
		Interests: req.Interests,
		Vibe:      req.Vibe,
	})
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, map[string]string{"status": "saved"})
}

// GetPreferences serves GET /preferences?user_id=.
func (h *PreferenceHandler) GetPreferences(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		api.Error(w, http.StatusBadRequest, "user_id is required")
		return
	}

	profile, err := h.svc.GetPreferences(r.Context(), userID)
	if err != nil {
		api.HandleError(w, err)
		return
	}
	if profile == nil {
		api.HandleError(w, domain.ErrPreferencesNotFound)
		return
	}

	api.Success(w, http.StatusOK, profile)
}

// SubmitFeedback serves POST /feedback.
func (h *PreferenceHandler) SubmitFeedback(w http.ResponseWriter, r *http.Request) {
	var req FeedbackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.UserID == "" || req.GiftName == "" {
		api.Error(w, http.StatusBadRequest, "user_id and gift_name are required")
		return
	}

	err := h.svc.RecordFeedback(r.Context(), domain.FeedbackEvent{
		UserID:   req.UserID,
		GiftName: req.GiftName,
		Liked:    req.Liked,
	})
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, map[string]string{"status": "feedback recorded"})
}
