package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

// GiftResult is one recommended gift as returned by the API.
type GiftResult struct {
	ID             string   `json:"id"`
	Name           string   `json:"name"`
	Description    string   `json:"description,omitempty"`
	Price          float64  `json:"price"`
	Currency       string   `json:"currency"`
	Brand          string   `json:"brand,omitempty"`
	Link           string   `json:"link,omitempty"`
	Confidence     float64  `json:"confidence"`
	RankingReasons []string `json:"ranking_reasons"`
	Reason         string   `json:"reason"`
}

// RecommendResponse is the recommend API response.
type RecommendResponse struct {
	Intro string       `json:"intro"`
	Gifts []GiftResult `json:"gifts"`
}

type rateLimitPayload struct {
	Error             string    `json:"error"`
	TokensUsed        int64     `json:"tokens_used"`
	Limit             int64     `json:"limit"`
	ResetTime         time.Time `json:"reset_time"`
	RetryAfterSeconds int64     `json:"retry_after_seconds"`
}

// RecommendCmd creates the recommend command.
func RecommendCmd() *cobra.Command {
	var (
		userID   string
		maxPrice float64
		k        int
	)

	cmd := &cobra.Command{
		Use:   "recommend <query>",
		Short: "Get gift recommendations",
		Long:  "Asks the server for ranked gift recommendations for a free-text query.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")
			return runRecommend(cmd, args[0], userID, maxPrice, k, outputJSON)
		},
	}

	cmd.Flags().StringVarP(&userID, "user", "u", "", "User ID for personalized ranking")
	cmd.Flags().Float64Var(&maxPrice, "max-price", 0, "Maximum gift price")
	cmd.Flags().IntVarP(&k, "k", "n", 0, "Number of recommendations to return")

	return cmd
}

func runRecommend(cmd *cobra.Command, query, userID string, maxPrice float64, k int, outputJSON bool) error {
	api, err := NewAPIClientWithCmd(cmd)
	if err != nil {
		return err
	}

	params := url.Values{}
	params.Set("query", query)
	if userID != "" {
		params.Set("user_id", userID)
	}
	if maxPrice > 0 {
		params.Set("max_price", strconv.FormatFloat(maxPrice, 'f', -1, 64))
	}
	if k > 0 {
		params.Set("k", strconv.Itoa(k))
	}

	resp, err := api.Get("/recommend", params)
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.StatusCode == 429 {
			return formatRateLimit(apiErr)
		}
		return fmt.Errorf("recommend failed: %w", err)
	}

	var recResp RecommendResponse
	if err := json.Unmarshal(resp.Data, &recResp); err != nil {
		return fmt.Errorf("failed to parse recommendations: %w", err)
	}

	if outputJSON {
		output, _ := json.MarshalIndent(recResp, "", "  ")
		fmt.Println(string(output))
		return nil
	}

	if len(recResp.Gifts) == 0 {
		fmt.Println("No gifts found.")
		return nil
	}

	fmt.Printf("%s\n\n", recResp.Intro)
	for i, gift := range recResp.Gifts {
		fmt.Printf("%d. %s — %.2f %s (confidence %.2f)\n", i+1, gift.Name, gift.Price, gift.Currency, gift.Confidence)
		if gift.Reason != "" {
			fmt.Printf("   %s\n", gift.Reason)
		}
		if len(gift.RankingReasons) > 0 {
			fmt.Printf("   Why: %s\n", strings.Join(gift.RankingReasons, "; "))
		}
		if gift.Link != "" {
			fmt.Printf("   %s\n", gift.Link)
		}
		if i < len(recResp.Gifts)-1 {
			fmt.Println()
		}
	}

	return nil
}

func formatRateLimit(apiErr *APIError) error {
	var payload rateLimitPayload
	if err := json.Unmarshal(apiErr.Body, &payload); err != nil || payload.RetryAfterSeconds == 0 {
		return fmt.Errorf("rate limited: %s", apiErr.Message)
	}
	return fmt.Errorf("rate limited: %s (used %d of %d tokens, retry in %s)",
		payload.Error, payload.TokensUsed, payload.Limit,
		(time.Duration(payload.RetryAfterSeconds) * time.Second).String())
}
