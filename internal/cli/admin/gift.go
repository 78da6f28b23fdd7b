package admin

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/CAMGREEN637/gift-ai-backend/internal/config"
	"github.com/CAMGREEN637/gift-ai-backend/internal/database"
	"github.com/CAMGREEN637/gift-ai-backend/internal/domain"
	"github.com/CAMGREEN637/gift-ai-backend/internal/repository"
	"github.com/CAMGREEN637/gift-ai-backend/internal/scraper"
	"github.com/CAMGREEN637/gift-ai-backend/internal/service"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"
)

// GiftCmd returns the gift command group for direct catalog administration.
func GiftCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "gift",
		Short: "Manage the gift catalog",
		Long:  "Inspect and modify the gift catalog directly against the database",
	}

	cmd.AddCommand(GiftListCmd())
	cmd.AddCommand(GiftStatsCmd())
	cmd.AddCommand(GiftImportCmd())

	return cmd
}

func GiftListCmd() *cobra.Command {
	var (
		limit  int
		offset int
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List catalog products",
		RunE: func(cmd *cobra.Command, args []string) error {
			outputFormat, _ := cmd.Flags().GetString("output")
			return runGiftList(outputFormat, limit, offset)
		},
	}

	cmd.Flags().StringP("output", "o", "text", "Output format (text or json)")
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of results")
	cmd.Flags().IntVar(&offset, "offset", 0, "Number of results to skip")

	return cmd
}

func runGiftList(outputFormat string, limit, offset int) error {
	ctx := context.Background()

	pool, err := getDBPool(ctx)
	if err != nil {
		return err
	}
	defer pool.Close()

	productRepo := repository.NewProductRepository(pool)

	products, err := productRepo.List(ctx, limit, offset)
	if err != nil {
		return fmt.Errorf("failed to list products: %w", err)
	}

	if outputFormat == "json" {
		jsonBytes, _ := json.MarshalIndent(products, "", "  ")
		fmt.Println(string(jsonBytes))
		return nil
	}

	if len(products) == 0 {
		fmt.Println("No products found.")
		return nil
	}
	for _, p := range products {
		stock := "in stock"
		if !p.InStock {
			stock = "out of stock"
		}
		fmt.Printf("%s  %-40s  %8.2f %s  %s\n", p.ID, p.Name, p.Price, p.Currency, stock)
	}
	return nil
}

func GiftStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show catalog statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			outputFormat, _ := cmd.Flags().GetString("output")
			return runGiftStats(outputFormat)
		},
	}

	cmd.Flags().StringP("output", "o", "text", "Output format (text or json)")

	return cmd
}

func runGiftStats(outputFormat string) error {
	ctx := context.Background()

	pool, err := getDBPool(ctx)
	if err != nil {
		return err
	}
	defer pool.Close()

	productRepo := repository.NewProductRepository(pool)

	stats, err := productRepo.Stats(ctx)
	if err != nil {
		return fmt.Errorf("failed to read stats: %w", err)
	}

	if outputFormat == "json" {
		jsonBytes, _ := json.MarshalIndent(stats, "", "  ")
		fmt.Println(string(jsonBytes))
		return nil
	}

	fmt.Printf("Products:           %d\n", stats.Total)
	fmt.Printf("In stock:           %d\n", stats.InStock)
	fmt.Printf("Awaiting embedding: %d\n", stats.MissingEmbedding)
	return nil
}

func GiftImportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import <amazon-url>",
		Short: "Import a product from an Amazon listing",
		Long:  "Scrapes an Amazon product page and adds the listing to the catalog",
		Args:  cobra.ExactArgs(1),
		RunE:  runGiftImport,
	}

	cmd.Flags().StringP("output", "o", "text", "Output format (text or json)")

	return cmd
}

func runGiftImport(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	outputFormat, _ := cmd.Flags().GetString("output")

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	pool, err := database.NewPool(ctx, database.Config{URL: cfg.DatabaseURL})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer pool.Close()

	productRepo := repository.NewProductRepository(pool)
	catalogSvc := service.NewCatalogService(productRepo, scraper.NewAmazonScraper(), nil, nil, cfg.ExplanationModel)

	scraped, err := catalogSvc.FetchAmazonProduct(ctx, args[0])
	if err != nil {
		return fmt.Errorf("failed to fetch product: %w", err)
	}

	created, err := catalogSvc.CreateProduct(ctx, giftFromScrape(scraped.Product))
	if err != nil {
		return fmt.Errorf("failed to create product: %w", err)
	}

	if outputFormat == "json" {
		jsonBytes, _ := json.MarshalIndent(map[string]interface{}{
			"product": created,
			"quality": scraped.Quality,
		}, "", "  ")
		fmt.Println(string(jsonBytes))
		return nil
	}

	fmt.Printf("Imported: %s (%s)\n", created.Name, created.ID)
	fmt.Printf("Quality:  %s\n", scraped.Quality.OverallQuality)
	return nil
}

func giftFromScrape(p *scraper.Product) *domain.GiftProduct {
	return &domain.GiftProduct{
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
		Currency:    p.Currency,
		Brand:       p.Brand,
		Link:        p.Link,
		ImageURL:    p.ImageURL,
		Source:      "amazon",
		Rating:      p.Rating,
		ReviewCount: p.ReviewCount,
		InStock:     p.InStock,
	}
}

func getDBPool(ctx context.Context) (*pgxpool.Pool, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	pool, err := database.NewPool(ctx, database.Config{URL: cfg.DatabaseURL})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return pool, nil
}
