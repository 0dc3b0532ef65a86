package semantic

import (
	"context"
	"fmt"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// DefaultGeminiModel is used when no embedding model is configured.
const DefaultGeminiModel = "text-embedding-004"

// GeminiEmbedder embeds text with the Gemini API.
type GeminiEmbedder struct {
	client *genai.Client
	model  *genai.EmbeddingModel
}

// NewGeminiEmbedder opens a Gemini client. Extra client options are passed
// through, after the API key.
func NewGeminiEmbedder(ctx context.Context, apiKey, model string, opts ...option.ClientOption) (*GeminiEmbedder, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("no API key")
	}
	if model == "" {
		model = DefaultGeminiModel
	}
	cl, err := genai.NewClient(ctx, append([]option.ClientOption{option.WithAPIKey(apiKey)}, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("genai client: %w", err)
	}
	return &GeminiEmbedder{client: cl, model: cl.EmbeddingModel(model)}, nil
}

// Embed implements Embedder.
func (e *GeminiEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	res, err := e.model.EmbedContent(ctx, genai.Text(text))
	if err != nil {
		return nil, fmt.Errorf("gemini embed: %w", err)
	}
	return geminiVector(res)
}

// Close releases the underlying client.
func (e *GeminiEmbedder) Close() error {
	return e.client.Close()
}

func geminiVector(res *genai.EmbedContentResponse) ([]float32, error) {
	if res == nil || res.Embedding == nil || len(res.Embedding.Values) == 0 {
		return nil, fmt.Errorf("empty embedding returned")
	}
	return res.Embedding.Values, nil
}
