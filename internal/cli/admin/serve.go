package admin

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/CAMGREEN637/gift-ai-backend/internal/api/handlers"
	"github.com/CAMGREEN637/gift-ai-backend/internal/config"
	"github.com/CAMGREEN637/gift-ai-backend/internal/database"
	"github.com/CAMGREEN637/gift-ai-backend/internal/jobs"
	giftopenai "github.com/CAMGREEN637/gift-ai-backend/internal/openai"
	"github.com/CAMGREEN637/gift-ai-backend/internal/ratelimit"
	"github.com/CAMGREEN637/gift-ai-backend/internal/recommend"
	"github.com/CAMGREEN637/gift-ai-backend/internal/repository"
	"github.com/CAMGREEN637/gift-ai-backend/internal/scraper"
	"github.com/CAMGREEN637/gift-ai-backend/internal/server"
	"github.com/CAMGREEN637/gift-ai-backend/internal/service"
	"github.com/CAMGREEN637/gift-ai-backend/internal/storage"
	"github.com/CAMGREEN637/gift-ai-backend/internal/telemetry"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/jackc/pgx/v5/stdlib"
	openai "github.com/sashabaranov/go-openai"
	"github.com/spf13/cobra"
)

// ServeCmd returns the serve command
func ServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		Long:  "Start the giftai API server on the specified port",
		RunE:  runServe,
	}

	cmd.Flags().StringP("port", "p", "8080", "Port to listen on")
	cmd.Flags().Bool("no-migrate", false, "Skip automatic database migrations on startup")

	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Initialize Sentry with tracing if SENTRY_DSN is set
	if dsn := os.Getenv("SENTRY_DSN"); dsn != "" {
		environment := os.Getenv("ENVIRONMENT")
		if environment == "" {
			environment = "development"
		}

		// Default to 10% sampling in production, 100% in development
		sampleRate := 0.1
		if environment == "development" {
			sampleRate = 1.0
		}

		shutdownTelemetry, err := telemetry.Init(telemetry.Config{
			DSN:              dsn,
			Environment:      environment,
			TracesSampleRate: sampleRate,
		})
		if err != nil {
			log.Printf("telemetry init failed (continuing without tracing): %v", err)
		} else {
			defer shutdownTelemetry()
		}
	}

	portFlag, _ := cmd.Flags().GetString("port")
	if portFlag != "" && portFlag != "8080" {
		cfg.Port = portFlag
	}

	pool, err := database.NewPool(ctx, database.Config{URL: cfg.DatabaseURL})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer pool.Close()
	log.Println("connected to database")

	// Run migrations unless --no-migrate flag is set
	noMigrate, _ := cmd.Flags().GetBool("no-migrate")
	if !noMigrate {
		if err := runMigrations(cfg.DatabaseURL); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}
	}

	productRepo := repository.NewProductRepository(pool)
	preferenceRepo := repository.NewPreferenceRepository(pool)
	feedbackRepo := repository.NewFeedbackRepository(pool)
	usageRepo := repository.NewUsageRepository(pool)

	gate := ratelimit.NewGate(usageRepo, cfg.RateLimitWindow(), cfg.HourlyTokenLimit)

	var aiClient *giftopenai.Client
	var explainer service.ExplanationClient
	var candidateSource recommend.CandidateSource = &noOpCandidateSource{}
	var embeddingWorker *jobs.Worker
	if cfg.HasOpenAI() {
		aiClient = giftopenai.NewClientWithConfig(giftopenai.Config{
			APIKey:         cfg.OpenAIAPIKey,
			EmbeddingModel: openai.EmbeddingModel(cfg.EmbeddingModel),
		})
		explainer = aiClient
		candidateSource = service.NewEmbeddingCandidateSource(aiClient, productRepo)

		backfill := jobs.NewEmbeddingBackfill(productRepo, aiClient)
		embeddingWorker = jobs.NewWorker("embedding", backfill, 10*time.Second)
		go embeddingWorker.Start(ctx)
		log.Println("embedding worker started")
	} else {
		log.Println("OPENAI_API_KEY not set: recommendations will return empty results")
	}

	retention := jobs.NewUsageRetention(usageRepo, cfg.UsageRetention())
	retentionWorker := jobs.NewWorker("usage-retention", retention, time.Hour)
	go retentionWorker.Start(ctx)

	var mirror service.ImageMirror
	if cfg.HasS3() {
		s3Client, err := storage.NewS3Client(ctx, storage.S3ClientConfig{
			Endpoint:        cfg.S3Endpoint,
			Region:          cfg.S3Region,
			AccessKeyID:     cfg.S3AccessKey,
			SecretAccessKey: cfg.S3SecretKey,
			Bucket:          cfg.S3Bucket,
			UsePathStyle:    true,
		})
		if err != nil {
			return fmt.Errorf("failed to create S3 client: %w", err)
		}
		if err := s3Client.EnsureBucket(ctx); err != nil {
			return fmt.Errorf("failed to ensure S3 bucket: %w", err)
		}
		log.Printf("S3 bucket '%s' ready", cfg.S3Bucket)
		mirror = s3Client
	}

	pipeline := recommend.NewPipeline(gate, preferenceRepo, feedbackRepo, candidateSource)
	recommendSvc := service.NewRecommendationService(pipeline, explainer, gate, cfg.ExplanationModel)
	preferenceSvc := service.NewPreferenceService(preferenceRepo, feedbackRepo, productRepo)
	catalogSvc := service.NewCatalogService(productRepo, scraper.NewAmazonScraper(), explainer, mirror, cfg.ExplanationModel)

	router := server.NewRouter(server.RouterConfig{
		AdminAPIKey:       cfg.AdminAPIKey,
		RecommendHandler:  handlers.NewRecommendHandler(recommendSvc),
		PreferenceHandler: handlers.NewPreferenceHandler(preferenceSvc),
		AdminHandler:      handlers.NewAdminHandler(catalogSvc),
	})

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		log.Printf("starting server on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("shutting down...")

	if embeddingWorker != nil {
		embeddingWorker.Stop()
	}
	retentionWorker.Stop()

	shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Println("server exited")
	return nil
}

// noOpCandidateSource stands in when no embedding provider is configured; the
// pipeline degrades its error to an empty candidate list.
type noOpCandidateSource struct{}

func (noOpCandidateSource) FetchCandidates(ctx context.Context, query string, filters recommend.CandidateFilters) ([]recommend.RawItem, error) {
	return nil, fmt.Errorf("candidate source not configured: OPENAI_API_KEY required")
}

func runMigrations(databaseURL string) error {
	// Create a sql.DB connection for golang-migrate
	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return fmt.Errorf("failed to open database for migrations: %w", err)
	}
	defer db.Close()

	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("failed to create migration driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance(
		"file://migrations",
		"postgres",
		driver,
	)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}

	err = m.Up()
	if err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}

	version, dirty, err := m.Version()
	if err != nil && err != migrate.ErrNilVersion {
		return fmt.Errorf("failed to get migration version: %w", err)
	}

	if err == migrate.ErrNilVersion {
		log.Println("migrations: database is up to date (no migrations applied)")
	} else if dirty {
		return fmt.Errorf("migration version %d is dirty - manual intervention required", version)
	} else if err == migrate.ErrNoChange {
		log.Printf("migrations: database is up to date (version %d)", version)
	} else {
		log.Printf("migrations: applied successfully (version %d)", version)
	}

	return nil
}
