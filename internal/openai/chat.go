package openai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

// DefaultChatModel is the model used for explanations and categorization.
const DefaultChatModel = "gpt-4o-mini"

// ChatResult carries one completion's content and its token cost.
type ChatResult struct {
	Content    string
	TokensUsed int
}

// CreateChatJSON runs a chat completion that is expected to return strict
// JSON. The caller owns parsing; this method only strips markdown fences
// some models wrap around JSON output.
func (c *Client) CreateChatJSON(ctx context.Context, model, systemPrompt, userPrompt string, temperature float32) (ChatResult, error) {
	if model == "" {
		model = DefaultChatModel
	}

	resp, err := c.chat.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       model,
		Temperature: temperature,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: userPrompt},
		},
	})
	if err != nil {
		return ChatResult{}, fmt.Errorf("chat completion failed: %w", err)
	}

	if len(resp.Choices) == 0 {
		return ChatResult{}, errors.New("no completion choices returned")
	}

	return ChatResult{
		Content:    stripJSONFences(resp.Choices[0].Message.Content),
		TokensUsed: resp.Usage.TotalTokens,
	}, nil
}

func stripJSONFences(content string) string {
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")
	return strings.TrimSpace(content)
}
