package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/CAMGREEN637/gift-ai-backend/internal/domain"
	"github.com/CAMGREEN637/gift-ai-backend/internal/repository"
	"github.com/CAMGREEN637/gift-ai-backend/internal/scraper"
	"github.com/CAMGREEN637/gift-ai-backend/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// MockCatalogService is a mock implementation of CatalogServiceInterface
type MockCatalogService struct {
	mock.Mock
}

func (m *MockCatalogService) CreateProduct(ctx context.Context, p *domain.GiftProduct) (*domain.GiftProduct, error) {
	args := m.Called(ctx, p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.GiftProduct), args.Error(1)
}

func (m *MockCatalogService) GetProduct(ctx context.Context, id string) (*domain.GiftProduct, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.GiftProduct), args.Error(1)
}

func (m *MockCatalogService) ListProducts(ctx context.Context, limit, offset int) ([]*domain.GiftProduct, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.GiftProduct), args.Error(1)
}

func (m *MockCatalogService) UpdateProduct(ctx context.Context, p *domain.GiftProduct) (*domain.GiftProduct, error) {
	args := m.Called(ctx, p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.GiftProduct), args.Error(1)
}

func (m *MockCatalogService) DeleteProduct(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockCatalogService) Stats(ctx context.Context) (*repository.ProductStats, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.ProductStats), args.Error(1)
}

func (m *MockCatalogService) FetchAmazonProduct(ctx context.Context, url string) (*service.ScrapedProduct, error) {
	args := m.Called(ctx, url)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ScrapedProduct), args.Error(1)
}

func (m *MockCatalogService) CategorizeProduct(ctx context.Context, name, description, brand string) (*service.Categorization, error) {
	args := m.Called(ctx, name, description, brand)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.Categorization), args.Error(1)
}

func withURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

func TestCreateProduct(t *testing.T) {
	svc := new(MockCatalogService)
	handler := NewAdminHandler(svc)

	created := &domain.GiftProduct{ID: "gift_0001", Name: "Pour Over Kettle", Price: 45}
	svc.On("CreateProduct", mock.Anything, mock.MatchedBy(func(p *domain.GiftProduct) bool {
		return p.Name == "Pour Over Kettle"
	})).Return(created, nil)

	body := `{"name":"Pour Over Kettle","price":45,"currency":"USD"}`
	req := httptest.NewRequest(http.MethodPost, "/admin/products", strings.NewReader(body))
	rec := httptest.NewRecorder()

	handler.CreateProduct(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), "gift_0001")
}

func TestCreateProductValidationError(t *testing.T) {
	svc := new(MockCatalogService)
	handler := NewAdminHandler(svc)

	svc.On("CreateProduct", mock.Anything, mock.Anything).
		Return(nil, domain.NewDomainError(domain.ErrCodeValidation, "invalid product"))

	req := httptest.NewRequest(http.MethodPost, "/admin/products", strings.NewReader(`{"name":""}`))
	rec := httptest.NewRecorder()

	handler.CreateProduct(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetProductNotFound(t *testing.T) {
	svc := new(MockCatalogService)
	handler := NewAdminHandler(svc)

	svc.On("GetProduct", mock.Anything, "gift_9999").Return(nil, domain.ErrProductNotFound)

	req := withURLParam(httptest.NewRequest(http.MethodGet, "/admin/products/gift_9999", nil), "id", "gift_9999")
	rec := httptest.NewRecorder()

	handler.GetProduct(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDeleteProduct(t *testing.T) {
	svc := new(MockCatalogService)
	handler := NewAdminHandler(svc)

	svc.On("DeleteProduct", mock.Anything, "gift_0001").Return(nil)

	req := withURLParam(httptest.NewRequest(http.MethodDelete, "/admin/products/gift_0001", nil), "id", "gift_0001")
	rec := httptest.NewRecorder()

	handler.DeleteProduct(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	svc.AssertExpectations(t)
}

func TestFetchAmazon(t *testing.T) {
	svc := new(MockCatalogService)
	handler := NewAdminHandler(svc)

	scraped := &service.ScrapedProduct{
		Product: &scraper.Product{ASIN: "B0B8H9QZPX", Name: "Smart Mug", Rating: 4.6, ReviewCount: 12345, InStock: true},
		Quality: service.QualityIndicators{RatingStatus: "excellent", ReviewsStatus: "excellent", StockStatus: "in_stock", OverallQuality: "excellent"},
	}
	svc.On("FetchAmazonProduct", mock.Anything, "https://www.amazon.com/dp/B0B8H9QZPX").Return(scraped, nil)

	body := `{"url":"https://www.amazon.com/dp/B0B8H9QZPX"}`
	req := httptest.NewRequest(http.MethodPost, "/admin/fetch-amazon", strings.NewReader(body))
	rec := httptest.NewRecorder()

	handler.FetchAmazon(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Smart Mug")
	assert.Contains(t, rec.Body.String(), "excellent")
}

func TestFetchAmazonMissingURL(t *testing.T) {
	handler := NewAdminHandler(new(MockCatalogService))

	req := httptest.NewRequest(http.MethodPost, "/admin/fetch-amazon", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()

	handler.FetchAmazon(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCategorize(t *testing.T) {
	svc := new(MockCatalogService)
	handler := NewAdminHandler(svc)

	categorization := &service.Categorization{
		Categories:      []string{"kitchen"},
		Interests:       []string{"coffee"},
		ExperienceLevel: "enthusiast",
	}
	svc.On("CategorizeProduct", mock.Anything, "Smart Mug", "Keeps coffee warm", "Ember").Return(categorization, nil)

	body := `{"name":"Smart Mug","description":"Keeps coffee warm","brand":"Ember"}`
	req := httptest.NewRequest(http.MethodPost, "/admin/categorize", strings.NewReader(body))
	rec := httptest.NewRecorder()

	handler.Categorize(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "kitchen")
}
