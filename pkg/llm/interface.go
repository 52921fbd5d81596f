// Package llm wraps the OpenAI-compatible chat-completion and embedding API
// used by the recipe agent. Backend adds sampling defaults, JSON-schema
// structured output, retries and token accounting on top of a go-openai client.
package llm

import (
	"context"

	"github.com/sashabaranov/go-openai"
)

// Client is the part of *openai.Client the backend relies on.
type Client interface {
	CreateChatCompletion(ctx context.Context, request openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
	CreateEmbeddings(ctx context.Context, conv openai.EmbeddingRequestConverter) (openai.EmbeddingResponse, error)
}

var _ Client = (*openai.Client)(nil)
