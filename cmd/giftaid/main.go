package main

import (
	"fmt"
	"os"

	"github.com/CAMGREEN637/gift-ai-backend/internal/cli/admin"
	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "giftaid",
		Short: "Giftai daemon and admin CLI",
		Long:  "Giftai daemon for running the recommendation API server and managing the gift catalog",
	}

	rootCmd.AddCommand(admin.ServeCmd())
	rootCmd.AddCommand(admin.GiftCmd())

	if len(os.Args) == 1 {
		os.Args = append(os.Args, "serve")
	}

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
