package openai

import (
	"context"
	"encoding/json"

	"github.com/cockroachdb/errors"
	"github.com/horizone/hotel-bookings-and-payments/internal/domain"
	"github.com/horizone/hotel-bookings-and-payments/internal/observability"
	openai "github.com/sashabaranov/go-openai"
)

const embeddingDimensions = 1536

// Client wraps the OpenAI API for hotel embeddings and the recommendation
// assistant. It keeps no conversation state between requests.
type Client struct {
	api    *openai.Client
	logger observability.Logger
}

func NewClient(apiKey string, logger observability.Logger) *Client {
	return &Client{api: openai.NewClient(apiKey), logger: logger}
}

func (c *Client) Embed(ctx context.Context, text string) ([]float32, error) {
	resp, err := c.api.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input:      []string{text},
		Model:      openai.SmallEmbedding3,
		Dimensions: embeddingDimensions,
	})
	if err != nil {
		return nil, errors.Wrap(domain.ErrExternalService, err.Error())
	}
	if len(resp.Data) == 0 {
		return nil, errors.Wrap(domain.ErrExternalService, "empty embedding response")
	}
	return resp.Data[0].Embedding, nil
}

func (c *Client) RecommendHotel(ctx context.Context, query string, hotels []domain.Hotel) (string, error) {
	catalog, err := json.Marshal(hotels)
	if err != nil {
		return "", errors.Wrap(err, "marshal hotel catalog")
	}

	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: openai.GPT4o,
		Messages: []openai.ChatCompletionMessage{
			{
				Role: openai.ChatMessageRoleSystem,
				Content: "You are a helpful assistant that helps users to choose a hotel for a vibe they describe. " +
					"The available hotels are given below. Based on that recommend them a hotel along with the information: " +
					string(catalog),
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: query,
			},
		},
	})
	if err != nil {
		return "", errors.Wrap(domain.ErrExternalService, err.Error())
	}
	if len(resp.Choices) == 0 {
		return "", errors.Wrap(domain.ErrExternalService, "empty completion response")
	}
	return resp.Choices[0].Message.Content, nil
}
