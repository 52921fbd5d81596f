package llm

import (
	"context"
	"encoding/json"
	"strings"
	"sync"

	"github.com/invopop/jsonschema"
	"github.com/pkg/errors"
	"github.com/sashabaranov/go-openai"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/jingkaihe/recipe-agent/pkg/logger"
	"github.com/jingkaihe/recipe-agent/pkg/telemetry"
	llmtypes "github.com/jingkaihe/recipe-agent/pkg/types/llm"
)

// ErrNoChoices is returned when a completion response carries no choices.
var ErrNoChoices = errors.New("completion returned no choices")

// CompletionOpt tunes a single chat completion request.
type CompletionOpt struct {
	Tools          []openai.Tool
	ToolChoice     any
	ResponseFormat *openai.ChatCompletionResponseFormat
}

// Backend issues chat completions and embeddings against the configured
// deployments. It is safe for sequential use by the agent and its skills.
type Backend struct {
	client Client
	config llmtypes.Config

	mu    sync.Mutex
	usage llmtypes.Usage
}

// NewBackend wraps client. Zero-valued model and retry settings are filled
// from llmtypes.DefaultConfig.
func NewBackend(client Client, config llmtypes.Config) *Backend {
	defaults := llmtypes.DefaultConfig()
	if config.ChatModel == "" {
		config.ChatModel = defaults.ChatModel
	}
	if config.EmbeddingModel == "" {
		config.EmbeddingModel = defaults.EmbeddingModel
	}
	if config.Retry.Attempts == 0 {
		config.Retry = defaults.Retry
	}
	return &Backend{client: client, config: config}
}

// NewBackendFromConfig creates the go-openai client and wraps it.
func NewBackendFromConfig(config llmtypes.Config) (*Backend, error) {
	client, err := NewClient(config)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create openai client")
	}
	return NewBackend(client, config), nil
}

// ChatModel returns the chat deployment in use.
func (b *Backend) ChatModel() string {
	return b.config.ChatModel
}

// EmbeddingModel returns the embedding deployment in use.
func (b *Backend) EmbeddingModel() string {
	return b.config.EmbeddingModel
}

// Usage returns the tokens consumed so far.
func (b *Backend) Usage() llmtypes.Usage {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.usage
}

func (b *Backend) addUsage(u llmtypes.Usage) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.usage.Add(u)
}

// Complete sends messages to the chat deployment and returns the first
// choice's message.
func (b *Backend) Complete(ctx context.Context, messages []openai.ChatCompletionMessage, opt CompletionOpt) (_ openai.ChatCompletionMessage, err error) {
	ctx, span := telemetry.Tracer("recipe-agent.llm").Start(ctx, "llm.complete", trace.WithAttributes(
		attribute.String("model", b.config.ChatModel),
		attribute.Int("messages", len(messages)),
		attribute.Int("tools", len(opt.Tools)),
		attribute.Bool("structured", opt.ResponseFormat != nil),
	))
	defer func() {
		telemetry.End(span, err)
		span.End()
	}()

	request := openai.ChatCompletionRequest{
		Model:          b.config.ChatModel,
		Messages:       messages,
		Temperature:    b.config.Temperature,
		TopP:           b.config.TopP,
		ResponseFormat: opt.ResponseFormat,
	}
	if len(opt.Tools) > 0 {
		request.Tools = opt.Tools
		request.ToolChoice = opt.ToolChoice
	}

	var response openai.ChatCompletionResponse
	err = b.withRetry(ctx, "chat completion", func() error {
		var apiErr error
		response, apiErr = b.client.CreateChatCompletion(ctx, request)
		return apiErr
	})
	if err != nil {
		return openai.ChatCompletionMessage{}, err
	}
	if len(response.Choices) == 0 {
		return openai.ChatCompletionMessage{}, ErrNoChoices
	}

	b.addUsage(llmtypes.Usage{
		InputTokens:  response.Usage.PromptTokens,
		OutputTokens: response.Usage.CompletionTokens,
		Requests:     1,
	})
	span.SetAttributes(
		attribute.Int("usage.input_tokens", response.Usage.PromptTokens),
		attribute.Int("usage.output_tokens", response.Usage.CompletionTokens),
		attribute.Int("tool_calls", len(response.Choices[0].Message.ToolCalls)),
		attribute.String("finish_reason", string(response.Choices[0].FinishReason)),
	)

	logger.G(ctx).
		WithField("model", b.config.ChatModel).
		WithField("tool_calls", len(response.Choices[0].Message.ToolCalls)).
		WithField("finish_reason", response.Choices[0].FinishReason).
		Debug("chat completion finished")

	return response.Choices[0].Message, nil
}

// CompleteJSON asks for a reply conforming to schema and decodes it into
// target. It reports false, without error, when the model refused or the reply
// could not be decoded.
func (b *Backend) CompleteJSON(ctx context.Context, messages []openai.ChatCompletionMessage, name string, schema *jsonschema.Schema, target any) (bool, error) {
	message, err := b.Complete(ctx, messages, CompletionOpt{
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONSchema,
			JSONSchema: &openai.ChatCompletionResponseFormatJSONSchema{
				Name:   name,
				Schema: schema,
			},
		},
	})
	if err != nil {
		return false, err
	}

	log := logger.G(ctx).WithField("schema", name)
	if message.Refusal != "" {
		log.WithField("refusal", message.Refusal).Warn("model refused structured output")
		return false, nil
	}
	content := strings.TrimSpace(message.Content)
	if content == "" {
		return false, nil
	}
	if err := json.Unmarshal([]byte(content), target); err != nil {
		log.WithError(err).Warn("failed to decode structured output")
		return false, nil
	}
	return true, nil
}

// Embed returns the embedding of text from the embedding deployment.
func (b *Backend) Embed(ctx context.Context, text string) (_ []float32, err error) {
	ctx, span := telemetry.Tracer("recipe-agent.llm").Start(ctx, "llm.embed", trace.WithAttributes(
		attribute.String("model", b.config.EmbeddingModel),
		attribute.Int("text_length", len(text)),
	))
	defer func() {
		telemetry.End(span, err)
		span.End()
	}()

	request := openai.EmbeddingRequest{
		Input: []string{text},
		Model: openai.EmbeddingModel(b.config.EmbeddingModel),
	}

	var response openai.EmbeddingResponse
	err = b.withRetry(ctx, "embedding", func() error {
		var apiErr error
		response, apiErr = b.client.CreateEmbeddings(ctx, request)
		return apiErr
	})
	if err != nil {
		return nil, err
	}
	if len(response.Data) == 0 {
		return nil, errors.New("embedding response contained no data")
	}

	b.addUsage(llmtypes.Usage{
		EmbeddingTokens: response.Usage.PromptTokens,
		Requests:        1,
	})
	span.SetAttributes(
		attribute.Int("usage.embedding_tokens", response.Usage.PromptTokens),
		attribute.Int("dimensions", len(response.Data[0].Embedding)),
	)
	return response.Data[0].Embedding, nil
}
