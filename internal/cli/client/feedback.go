package client

import (
	"fmt"

	"github.com/spf13/cobra"
)

// FeedbackRequest is the feedback API request.
type FeedbackRequest struct {
	UserID   string `json:"user_id"`
	GiftName string `json:"gift_name"`
	Liked    bool   `json:"liked"`
}

// FeedbackCmd creates the feedback command.
func FeedbackCmd() *cobra.Command {
	var (
		userID   string
		liked    bool
		disliked bool
	)

	cmd := &cobra.Command{
		Use:   "feedback <gift-name>",
		Short: "Record feedback on a recommended gift",
		Long:  "Records a like or dislike for a gift. Likes feed back into personalized ranking.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if userID == "" {
				return fmt.Errorf("--user is required")
			}
			if liked == disliked {
				return fmt.Errorf("exactly one of --liked or --disliked is required")
			}
			return runFeedback(cmd, userID, args[0], liked)
		},
	}

	cmd.Flags().StringVarP(&userID, "user", "u", "", "User ID (required)")
	cmd.Flags().BoolVar(&liked, "liked", false, "Mark the gift as liked")
	cmd.Flags().BoolVar(&disliked, "disliked", false, "Mark the gift as disliked")

	return cmd
}

func runFeedback(cmd *cobra.Command, userID, giftName string, liked bool) error {
	api, err := NewAPIClientWithCmd(cmd)
	if err != nil {
		return err
	}

	_, err = api.Post("/feedback", FeedbackRequest{
		UserID:   userID,
		GiftName: giftName,
		Liked:    liked,
	})
	if err != nil {
		return fmt.Errorf("failed to record feedback: %w", err)
	}

	verdict := "liked"
	if !liked {
		verdict = "disliked"
	}
	fmt.Printf("Recorded: %s %s %q\n", userID, verdict, giftName)
	return nil
}
