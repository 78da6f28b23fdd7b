package server

import (
	"net/http"

	"github.com/CAMGREEN637/gift-ai-backend/internal/api"
	"github.com/CAMGREEN637/gift-ai-backend/internal/api/handlers"
	"github.com/CAMGREEN637/gift-ai-backend/internal/api/middleware"
	"github.com/go-chi/chi/v5"
)

type RouterConfig struct {
	AdminAPIKey       string
	RecommendHandler  *handlers.RecommendHandler
	PreferenceHandler *handlers.PreferenceHandler
	AdminHandler      *handlers.AdminHandler
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	const maxBodyBytes int64 = 1 * 1024 * 1024

	r.Use(middleware.RequestID)
	r.Use(middleware.SentryMiddleware)
	r.Use(middleware.AccessLog)
	r.Use(middleware.MaxBodyBytes(maxBodyBytes))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		api.Success(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Get("/recommend", cfg.RecommendHandler.Recommend)

	r.Post("/preferences", cfg.PreferenceHandler.SavePreferences)
	r.Get("/preferences", cfg.PreferenceHandler.GetPreferences)
	r.Post("/feedback", cfg.PreferenceHandler.SubmitFeedback)

	r.Route("/admin", func(r chi.Router) {
		r.Use(middleware.AdminKeyAuth(cfg.AdminAPIKey))

		r.Route("/products", func(r chi.Router) {
			r.Post("/", cfg.AdminHandler.CreateProduct)
			r.Get("/", cfg.AdminHandler.ListProducts)
			r.Get("/{id}", cfg.AdminHandler.GetProduct)
			r.Put("/{id}", cfg.AdminHandler.UpdateProduct)
			r.Delete("/{id}", cfg.AdminHandler.DeleteProduct)
		})

		r.Get("/stats", cfg.AdminHandler.Stats)
		r.Post("/fetch-amazon", cfg.AdminHandler.FetchAmazon)
		r.Post("/categorize", cfg.AdminHandler.Categorize)
	})

	return r
}
