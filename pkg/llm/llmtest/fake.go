// Package llmtest provides an in-memory llm.Client for tests.
package llmtest

import (
	"context"
	"hash/fnv"
	"math"
	"strings"
	"sync"

	"github.com/pkg/errors"
	"github.com/sashabaranov/go-openai"
)

// Dimensions is the length of vectors produced by HashEmbedding.
const Dimensions = 64

// ErrScriptExhausted is returned when more chat completions are requested
// than were scripted.
var ErrScriptExhausted = errors.New("llmtest: no scripted chat response left")

// FakeClient replays scripted chat responses in order and embeds text with
// EmbedFunc. Every request is recorded.
type FakeClient struct {
	mu sync.Mutex

	ChatResponses []openai.ChatCompletionResponse
	ChatErrors    []error
	EmbedFunc     func(text string) []float32
	EmbedErr      error

	ChatRequests  []openai.ChatCompletionRequest
	EmbedRequests []openai.EmbeddingRequest
}

// NewFakeClient returns a client that answers with responses in order.
func NewFakeClient(responses ...openai.ChatCompletionResponse) *FakeClient {
	return &FakeClient{ChatResponses: responses, EmbedFunc: HashEmbedding}
}

// CreateChatCompletion pops the next scripted error or response.
func (f *FakeClient) CreateChatCompletion(_ context.Context, request openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.ChatRequests = append(f.ChatRequests, request)
	if len(f.ChatErrors) > 0 {
		err := f.ChatErrors[0]
		f.ChatErrors = f.ChatErrors[1:]
		if err != nil {
			return openai.ChatCompletionResponse{}, err
		}
	}
	if len(f.ChatResponses) == 0 {
		return openai.ChatCompletionResponse{}, ErrScriptExhausted
	}
	response := f.ChatResponses[0]
	f.ChatResponses = f.ChatResponses[1:]
	return response, nil
}

// CreateEmbeddings embeds each input with EmbedFunc.
func (f *FakeClient) CreateEmbeddings(_ context.Context, conv openai.EmbeddingRequestConverter) (openai.EmbeddingResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	request := conv.Convert()
	f.EmbedRequests = append(f.EmbedRequests, request)
	if f.EmbedErr != nil {
		return openai.EmbeddingResponse{}, f.EmbedErr
	}

	embed := f.EmbedFunc
	if embed == nil {
		embed = HashEmbedding
	}

	var inputs []string
	switch in := request.Input.(type) {
	case string:
		inputs = []string{in}
	case []string:
		inputs = in
	default:
		return openai.EmbeddingResponse{}, errors.Errorf("llmtest: unsupported embedding input %T", request.Input)
	}

	response := openai.EmbeddingResponse{Model: request.Model}
	for i, text := range inputs {
		response.Data = append(response.Data, openai.Embedding{
			Object:    "embedding",
			Index:     i,
			Embedding: embed(text),
		})
		response.Usage.PromptTokens += len(strings.Fields(text))
	}
	response.Usage.TotalTokens = response.Usage.PromptTokens
	return response, nil
}

// EmbedCalls returns how many embedding requests were made.
func (f *FakeClient) EmbedCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.EmbedRequests)
}

// ChatCalls returns how many chat completion requests were made.
func (f *FakeClient) ChatCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.ChatRequests)
}

// HashEmbedding maps lower-cased words onto buckets and normalises the
// result, so texts sharing vocabulary score close to each other.
func HashEmbedding(text string) []float32 {
	vector := make([]float32, Dimensions)
	for _, word := range strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9')
	}) {
		h := fnv.New32a()
		_, _ = h.Write([]byte(word))
		vector[h.Sum32()%Dimensions]++
	}

	var norm float64
	for _, v := range vector {
		norm += float64(v) * float64(v)
	}
	if norm == 0 {
		return vector
	}
	norm = math.Sqrt(norm)
	for i := range vector {
		vector[i] = float32(float64(vector[i]) / norm)
	}
	return vector
}

// FixedEmbedding returns an EmbedFunc that answers every text with vector.
func FixedEmbedding(vector []float32) func(string) []float32 {
	return func(string) []float32 {
		out := make([]float32, len(vector))
		copy(out, vector)
		return out
	}
}

// TextResponse builds a response whose single choice is an assistant text
// message.
func TextResponse(content string) openai.ChatCompletionResponse {
	return openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{{
			Message: openai.ChatCompletionMessage{
				Role:    openai.ChatMessageRoleAssistant,
				Content: content,
			},
			FinishReason: openai.FinishReasonStop,
		}},
		Usage: openai.Usage{PromptTokens: 10, CompletionTokens: 5, TotalTokens: 15},
	}
}

// ToolCall is a scripted function call.
type ToolCall struct {
	ID        string
	Name      string
	Arguments string
}

// ToolCallResponse builds a response whose single choice requests calls.
func ToolCallResponse(calls ...ToolCall) openai.ChatCompletionResponse {
	message := openai.ChatCompletionMessage{Role: openai.ChatMessageRoleAssistant}
	for _, c := range calls {
		message.ToolCalls = append(message.ToolCalls, openai.ToolCall{
			ID:   c.ID,
			Type: openai.ToolTypeFunction,
			Function: openai.FunctionCall{
				Name:      c.Name,
				Arguments: c.Arguments,
			},
		})
	}
	return openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{{
			Message:      message,
			FinishReason: openai.FinishReasonToolCalls,
		}},
		Usage: openai.Usage{PromptTokens: 20, CompletionTokens: 8, TotalTokens: 28},
	}
}

// RefusalResponse builds a response whose single choice is a refusal.
func RefusalResponse(reason string) openai.ChatCompletionResponse {
	return openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{{
			Message: openai.ChatCompletionMessage{
				Role:    openai.ChatMessageRoleAssistant,
				Refusal: reason,
			},
			FinishReason: openai.FinishReasonStop,
		}},
	}
}
