package openai

import (
	"context"
	"errors"
	"testing"

	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeEmbeddingAPI struct {
	embedding []float32
	tokens    int
	err       error
}

func (f *fakeEmbeddingAPI) CreateEmbeddings(ctx context.Context, text string) ([]float32, int, error) {
	return f.embedding, f.tokens, f.err
}

type fakeChatAPI struct {
	resp openai.ChatCompletionResponse
	err  error
}

func (f *fakeChatAPI) CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	return f.resp, f.err
}

func clientWith(api EmbeddingAPI, chat ChatAPI) *Client {
	return &Client{api: api, chat: chat, dimensions: DefaultEmbeddingDimensions}
}

func TestGenerateEmbedding(t *testing.T) {
	ctx := context.Background()

	t.Run("returns embedding and token count", func(t *testing.T) {
		embedding := make([]float32, DefaultEmbeddingDimensions)
		client := clientWith(&fakeEmbeddingAPI{embedding: embedding, tokens: 12}, nil)

		got, tokens, err := client.GenerateEmbedding(ctx, "coffee gift")

		require.NoError(t, err)
		assert.Len(t, got, DefaultEmbeddingDimensions)
		assert.Equal(t, 12, tokens)
	})

	t.Run("rejects empty text", func(t *testing.T) {
		client := clientWith(&fakeEmbeddingAPI{}, nil)

		_, _, err := client.GenerateEmbedding(ctx, "")

		assert.ErrorIs(t, err, ErrEmptyText)
	})

	t.Run("rejects wrong dimensions", func(t *testing.T) {
		client := clientWith(&fakeEmbeddingAPI{embedding: make([]float32, 8)}, nil)

		_, _, err := client.GenerateEmbedding(ctx, "coffee gift")

		assert.ErrorIs(t, err, ErrWrongDimensions)
	})

	t.Run("wraps API errors", func(t *testing.T) {
		client := clientWith(&fakeEmbeddingAPI{err: errors.New("boom")}, nil)

		_, _, err := client.GenerateEmbedding(ctx, "coffee gift")

		assert.ErrorContains(t, err, "failed to create embedding")
	})
}

func TestCreateChatJSON(t *testing.T) {
	ctx := context.Background()

	t.Run("returns content and token usage", func(t *testing.T) {
		client := clientWith(nil, &fakeChatAPI{resp: openai.ChatCompletionResponse{
			Choices: []openai.ChatCompletionChoice{
				{Message: openai.ChatCompletionMessage{Content: `{"intro":"hi"}`}},
			},
			Usage: openai.Usage{TotalTokens: 321},
		}})

		result, err := client.CreateChatJSON(ctx, "", "system", "user", 0.4)

		require.NoError(t, err)
		assert.Equal(t, `{"intro":"hi"}`, result.Content)
		assert.Equal(t, 321, result.TokensUsed)
	})

	t.Run("strips markdown fences", func(t *testing.T) {
		client := clientWith(nil, &fakeChatAPI{resp: openai.ChatCompletionResponse{
			Choices: []openai.ChatCompletionChoice{
				{Message: openai.ChatCompletionMessage{Content: "```json\n{\"a\":1}\n```"}},
			},
		}})

		result, err := client.CreateChatJSON(ctx, "", "system", "user", 0)

		require.NoError(t, err)
		assert.Equal(t, `{"a":1}`, result.Content)
	})

	t.Run("errors on empty choice list", func(t *testing.T) {
		client := clientWith(nil, &fakeChatAPI{resp: openai.ChatCompletionResponse{}})

		_, err := client.CreateChatJSON(ctx, "", "system", "user", 0)

		assert.Error(t, err)
	})
}
