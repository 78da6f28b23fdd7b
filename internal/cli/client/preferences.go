package client

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/spf13/cobra"
)

// PreferencesRequest is the save-preferences API request.
type PreferencesRequest struct {
	UserID    string   `json:"user_id"`
	Interests []string `json:"interests"`
	Vibe      []string `json:"vibe"`
}

// PreferencesResponse is a stored preference profile.
type PreferencesResponse struct {
	UserID    string   `json:"user_id"`
	Interests []string `json:"interests"`
	Vibe      []string `json:"vibe"`
}

// PreferencesCmd creates the preferences command group.
func PreferencesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "preferences",
		Short: "Manage gift preferences",
		Long:  "Save and inspect the explicit preference profile used for personalized ranking.",
	}

	cmd.AddCommand(preferencesSetCmd())
	cmd.AddCommand(preferencesGetCmd())

	return cmd
}

func preferencesSetCmd() *cobra.Command {
	var (
		userID    string
		interests string
		vibe      string
	)

	cmd := &cobra.Command{
		Use:   "set",
		Short: "Save preferences for a user",
		RunE: func(cmd *cobra.Command, args []string) error {
			if userID == "" {
				return fmt.Errorf("--user is required")
			}
			return runPreferencesSet(cmd, userID, splitTags(interests), splitTags(vibe))
		},
	}

	cmd.Flags().StringVarP(&userID, "user", "u", "", "User ID (required)")
	cmd.Flags().StringVar(&interests, "interests", "", "Comma-separated interests (e.g. coffee,hiking)")
	cmd.Flags().StringVar(&vibe, "vibe", "", "Comma-separated vibe tags (e.g. cozy,practical)")

	return cmd
}

func runPreferencesSet(cmd *cobra.Command, userID string, interests, vibe []string) error {
	api, err := NewAPIClientWithCmd(cmd)
	if err != nil {
		return err
	}

	_, err = api.Post("/preferences", PreferencesRequest{
		UserID:    userID,
		Interests: interests,
		Vibe:      vibe,
	})
	if err != nil {
		return fmt.Errorf("failed to save preferences: %w", err)
	}

	fmt.Printf("Preferences saved for %s\n", userID)
	return nil
}

func preferencesGetCmd() *cobra.Command {
	var userID string

	cmd := &cobra.Command{
		Use:   "get",
		Short: "Show stored preferences for a user",
		RunE: func(cmd *cobra.Command, args []string) error {
			if userID == "" {
				return fmt.Errorf("--user is required")
			}
			outputJSON, _ := cmd.Flags().GetBool("output")
			return runPreferencesGet(cmd, userID, outputJSON)
		},
	}

	cmd.Flags().StringVarP(&userID, "user", "u", "", "User ID (required)")

	return cmd
}

func runPreferencesGet(cmd *cobra.Command, userID string, outputJSON bool) error {
	api, err := NewAPIClientWithCmd(cmd)
	if err != nil {
		return err
	}

	params := url.Values{}
	params.Set("user_id", userID)

	resp, err := api.Get("/preferences", params)
	if err != nil {
		return fmt.Errorf("failed to get preferences: %w", err)
	}

	var prefs PreferencesResponse
	if err := json.Unmarshal(resp.Data, &prefs); err != nil {
		return fmt.Errorf("failed to parse preferences: %w", err)
	}

	if outputJSON {
		output, _ := json.MarshalIndent(prefs, "", "  ")
		fmt.Println(string(output))
		return nil
	}

	fmt.Printf("User: %s\n", prefs.UserID)
	fmt.Printf("Interests: %s\n", strings.Join(prefs.Interests, ", "))
	fmt.Printf("Vibe: %s\n", strings.Join(prefs.Vibe, ", "))
	return nil
}

func splitTags(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	tags := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			tags = append(tags, p)
		}
	}
	return tags
}
