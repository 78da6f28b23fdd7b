package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/CAMGREEN637/gift-ai-backend/internal/api"
	"github.com/CAMGREEN637/gift-ai-backend/internal/domain"
	"github.com/CAMGREEN637/gift-ai-backend/internal/repository"
	"github.com/CAMGREEN637/gift-ai-backend/internal/service"
	"github.com/go-chi/chi/v5"
)

type CatalogServiceInterface interface {
	CreateProduct(ctx context.Context, p *domain.GiftProduct) (*domain.GiftProduct, error)
	GetProduct(ctx context.Context, id string) (*domain.GiftProduct, error)
	ListProducts(ctx context.Context, limit, offset int) ([]*domain.GiftProduct, error)
	UpdateProduct(ctx context.Context, p *domain.GiftProduct) (*domain.GiftProduct, error)
	DeleteProduct(ctx context.Context, id string) error
	Stats(ctx context.Context) (*repository.ProductStats, error)
	FetchAmazonProduct(ctx context.Context, url string) (*service.ScrapedProduct, error)
	CategorizeProduct(ctx context.Context, name, description, brand string) (*service.Categorization, error)
}

// AdminHandler exposes catalog management endpoints. All routes sit behind
// the admin key middleware.
type AdminHandler struct {
	svc CatalogServiceInterface
}

func NewAdminHandler(svc CatalogServiceInterface) *AdminHandler {
	return &AdminHandler{svc: svc}
}

type FetchAmazonRequest struct {
	URL string `json:"url"`
}

type CategorizeRequest struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Brand       string `json:"brand,omitempty"`
}

// CreateProduct serves POST /admin/products.
func (h *AdminHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var product domain.GiftProduct
	if err := json.NewDecoder(r.Body).Decode(&product); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	created, err := h.svc.CreateProduct(r.Context(), &product)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusCreated, created)
}

// GetProduct serves GET /admin/products/{id}.
func (h *AdminHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	product, err := h.svc.GetProduct(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, product)
}

// ListProducts serves GET /admin/products.
func (h *AdminHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
	if offset < 0 {
		offset = 0
	}

	products, err := h.svc.ListProducts(r.Context(), limit, offset)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, map[string]any{
		"products": products,
		"count":    len(products),
	})
}

// UpdateProduct serves PUT /admin/products/{id}.
func (h *AdminHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	var product domain.GiftProduct
	if err := json.NewDecoder(r.Body).Decode(&product); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	product.ID = chi.URLParam(r, "id")

	updated, err := h.svc.UpdateProduct(r.Context(), &product)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, updated)
}

// DeleteProduct serves DELETE /admin/products/{id}.
func (h *AdminHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteProduct(r.Context(), chi.URLParam(r, "id")); err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// Stats serves GET /admin/stats.
func (h *AdminHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.svc.Stats(r.Context())
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, stats)
}

// FetchAmazon serves POST /admin/fetch-amazon.
func (h *AdminHandler) FetchAmazon(w http.ResponseWriter, r *http.Request) {
	var req FetchAmazonRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.URL == "" {
		api.Error(w, http.StatusBadRequest, "url is required")
		return
	}

	scraped, err := h.svc.FetchAmazonProduct(r.Context(), req.URL)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, scraped)
}

// Categorize serves POST /admin/categorize.
func (h *AdminHandler) Categorize(w http.ResponseWriter, r *http.Request) {
	var req CategorizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name == "" {
		api.Error(w, http.StatusBadRequest, "name is required")
		return
	}

	categorization, err := h.svc.CategorizeProduct(r.Context(), req.Name, req.Description, req.Brand)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, categorization)
}
