package handlers

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/CAMGREEN637/gift-ai-backend/internal/api"
	"github.com/CAMGREEN637/gift-ai-backend/internal/ratelimit"
	"github.com/CAMGREEN637/gift-ai-backend/internal/service"
)

type RecommendService interface {
	Recommend(ctx context.Context, input service.RecommendInput) (*service.RecommendOutput, error)
}

type RecommendHandler struct {
	svc RecommendService
}

func NewRecommendHandler(svc RecommendService) *RecommendHandler {
	return &RecommendHandler{svc: svc}
}

type RecommendResponse struct {
	Intro string                       `json:"intro"`
	Gifts []service.GiftRecommendation `json:"gifts"`
}

// RateLimitResponse is the mandatory rejection payload for denied requests.
type RateLimitResponse struct {
	Error             string    `json:"error"`
	TokensUsed        int64     `json:"tokens_used"`
	Limit             int64     `json:"limit"`
	ResetTime         time.Time `json:"reset_time"`
	RetryAfterSeconds int64     `json:"retry_after_seconds"`
}

// Recommend serves GET /recommend. The client identity for rate limiting is
// the caller's IP; user_id is optional and only unlocks personalization.
func (h *RecommendHandler) Recommend(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("query")
	if query == "" {
		api.Error(w, http.StatusBadRequest, "query is required")
		return
	}

	input := service.RecommendInput{
		Query:    query,
		ClientID: ratelimit.ClientIP(r),
		UserID:   r.URL.Query().Get("user_id"),
	}

	if raw := r.URL.Query().Get("max_price"); raw != "" {
		maxPrice, err := strconv.ParseFloat(raw, 64)
		if err != nil || maxPrice < 0 {
			api.Error(w, http.StatusBadRequest, "max_price must be a non-negative number")
			return
		}
		input.MaxPrice = &maxPrice
	}

	if raw := r.URL.Query().Get("k"); raw != "" {
		k, err := strconv.Atoi(raw)
		if err != nil || k < 0 {
			api.Error(w, http.StatusBadRequest, "k must be a non-negative integer")
			return
		}
		input.K = k
	}

	output, err := h.svc.Recommend(r.Context(), input)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	if output.Rejected != nil {
		w.Header().Set("Retry-After", fmt.Sprintf("%d", output.Rejected.RetryAfterSeconds))
		api.JSON(w, http.StatusTooManyRequests, RateLimitResponse{
			Error:             "hourly token limit exceeded",
			TokensUsed:        output.Rejected.TokensUsed,
			Limit:             output.Rejected.Limit,
			ResetTime:         output.Rejected.ResetTime,
			RetryAfterSeconds: output.Rejected.RetryAfterSeconds,
		})
		return
	}

	api.Success(w, http.StatusOK, RecommendResponse{
		Intro: output.Intro,
		Gifts: output.Gifts,
	})
}
