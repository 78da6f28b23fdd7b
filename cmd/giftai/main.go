package main

import (
	"fmt"
	"os"

	"github.com/CAMGREEN637/gift-ai-backend/internal/cli/client"
	"github.com/spf13/cobra"
)

var version = "dev"

func main() {
	rootCmd := &cobra.Command{
		Use:   "giftai",
		Short: "Giftai CLI - AI-powered gift recommendations",
		Long: `Giftai CLI talks to a running giftaid server.

Environment variables:
  GIFTAI_API_URL         API base URL (default: http://localhost:8080)
  GIFTAI_ADMIN_API_KEY   Admin API key for admin endpoints (optional)`,
		Version: version,
	}

	rootCmd.PersistentFlags().Bool("output", false, "Output as JSON")
	rootCmd.PersistentFlags().String("api-url", "", "API base URL (overrides env)")
	rootCmd.PersistentFlags().String("admin-key", "", "Admin API key (overrides env)")

	rootCmd.AddCommand(client.RecommendCmd())
	rootCmd.AddCommand(client.PreferencesCmd())
	rootCmd.AddCommand(client.FeedbackCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
