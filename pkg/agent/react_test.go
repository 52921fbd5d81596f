package agent

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"

	"github.com/jingkaihe/recipe-agent/pkg/llm/llmtest"
	"github.com/jingkaihe/recipe-agent/pkg/telemetry/telemetrytest"
)

func validationResponse(t *testing.T, completed, inLoop bool, next string) openai.ChatCompletionResponse {
	t.Helper()

	data, err := json.Marshal(RequestValidation{
		IsRequestCompleted:        BooleanAnswer{Reason: "checked the conversation", Answer: completed},
		IsInLoop:                  BooleanAnswer{Reason: "checked for repeats", Answer: inLoop},
		NextInstructionOrQuestion: StringAnswer{Reason: "to make progress", Answer: next},
	})
	require.NoError(t, err)
	return llmtest.TextResponse(string(data))
}

func TestRequestValidationSchema(t *testing.T) {
	data, err := json.Marshal(requestValidationSchema)
	require.NoError(t, err)

	var schema map[string]any
	require.NoError(t, json.Unmarshal(data, &schema))
	assert.Equal(t, "object", schema["type"])
	assert.ElementsMatch(t, []any{"is_request_completed", "is_in_loop", "next_instruction_or_question"}, schema["required"])

	props := schema["properties"].(map[string]any)
	loop := props["is_in_loop"].(map[string]any)
	assert.Contains(t, loop["description"], "Loops can span multiple turns, and can include repeated actions.")
	answer := loop["properties"].(map[string]any)["answer"].(map[string]any)
	assert.Equal(t, "boolean", answer["type"])
}

func TestValidateRequest(t *testing.T) {
	f := newFixture(t, validationResponse(t, false, false, "Please list the ingredients."))

	history := userMessage("Find me a cake")
	history = append(history, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleAssistant, Content: "I found a cake."})

	validation, ok, err := f.agent.ValidateRequest(context.Background(), history)
	require.NoError(t, err)
	require.True(t, ok)
	assert.False(t, validation.IsRequestCompleted.Answer)
	assert.False(t, validation.IsInLoop.Answer)
	assert.Equal(t, "Please list the ingredients.", validation.NextInstructionOrQuestion.Answer)
	assert.Equal(t, "to make progress", validation.NextInstructionOrQuestion.Reason)

	require.Equal(t, 1, f.fake.ChatCalls())
	req := f.fake.ChatRequests[0]
	require.NotNil(t, req.ResponseFormat)
	require.NotNil(t, req.ResponseFormat.JSONSchema)
	assert.Equal(t, RequestValidationSchemaName, req.ResponseFormat.JSONSchema.Name)
	assert.Empty(t, req.Tools)

	require.Len(t, req.Messages, 3)
	assert.True(t, strings.HasPrefix(req.Messages[0].Content, "You are reviewing a conversation"))
	assert.Contains(t, req.Messages[0].Content, "- Name: Recipe Agent")
	assert.Equal(t, history, req.Messages[1:])
}

func TestValidateRequest_Refusal(t *testing.T) {
	f := newFixture(t, llmtest.RefusalResponse("no"))

	_, ok, err := f.agent.ValidateRequest(context.Background(), userMessage("hi"))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestValidateRequest_BackendError(t *testing.T) {
	f := newFixture(t)
	f.fake.ChatErrors = []error{&openai.APIError{HTTPStatusCode: 401, Message: "bad key"}}

	_, ok, err := f.agent.ValidateRequest(context.Background(), userMessage("hi"))
	require.Error(t, err)
	assert.False(t, ok)
	assert.Contains(t, err.Error(), "failed to validate request")
}

func TestRunReact_ContinuesUntilCompleted(t *testing.T) {
	f := newFixture(t,
		llmtest.TextResponse("Looking for a cake."),
		llmtest.TextResponse("Try the Eggs Benedict."),
		validationResponse(t, false, false, "Please give me a shopping list for Eggs Benedict."),
		llmtest.ToolCallResponse(llmtest.ToolCall{ID: "call_1", Name: "generate_shopping_list_from_recipe", Arguments: `{"recipe_name":"Eggs Benedict"}`}),
		llmtest.TextResponse("- Hollandaise sauce"),
		llmtest.TextResponse("You need Hollandaise sauce."),
		validationResponse(t, true, false, ""),
	)

	var turns []int
	result, err := f.agent.RunReact(context.Background(), "Breakfast and what to buy", ReactOptions{
		MaxTurns: 5,
		OnTurn:   func(turn int, _ RequestValidation) { turns = append(turns, turn) },
	})
	require.NoError(t, err)

	assert.Equal(t, StopCompleted, result.Stop)
	assert.Equal(t, 2, result.Turns)
	assert.Equal(t, []int{1, 2}, turns)
	assert.Equal(t, "You need Hollandaise sauce.", result.Answer)
	assert.True(t, result.Validation.IsRequestCompleted.Answer)

	require.Len(t, result.History, 4)
	assert.Equal(t, "Breakfast and what to buy", result.History[0].Content)
	assert.Equal(t, "Try the Eggs Benedict.", result.History[1].Content)
	assert.Equal(t, openai.ChatMessageRoleUser, result.History[2].Role)
	assert.Equal(t, "Please give me a shopping list for Eggs Benedict.", result.History[2].Content)

	require.Equal(t, 7, f.fake.ChatCalls())
	secondTurn := f.fake.ChatRequests[3].Messages
	require.Len(t, secondTurn, 4)
	assert.Equal(t, "Please give me a shopping list for Eggs Benedict.", secondTurn[3].Content)
}

func TestRunReact_Stops(t *testing.T) {
	tests := []struct {
		name       string
		validation func(t *testing.T) openai.ChatCompletionResponse
		maxTurns   int
		want       StopReason
	}{
		{
			name:       "loop detected",
			validation: func(t *testing.T) openai.ChatCompletionResponse { return validationResponse(t, false, true, "Ask again.") },
			want:       StopInLoop,
		},
		{
			name:       "no instruction",
			validation: func(t *testing.T) openai.ChatCompletionResponse { return validationResponse(t, false, false, "  ") },
			want:       StopNoInstruction,
		},
		{
			name:       "unvalidated",
			validation: func(*testing.T) openai.ChatCompletionResponse { return llmtest.RefusalResponse("no") },
			want:       StopUnvalidated,
		},
		{
			name:       "max turns",
			validation: func(t *testing.T) openai.ChatCompletionResponse { return validationResponse(t, false, false, "Keep going.") },
			maxTurns:   1,
			want:       StopMaxTurns,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t,
				llmtest.TextResponse("Thinking."),
				llmtest.TextResponse("Here is a recipe."),
				tt.validation(t),
			)

			result, err := f.agent.RunReact(context.Background(), "cake", ReactOptions{MaxTurns: tt.maxTurns})
			require.NoError(t, err)
			assert.Equal(t, tt.want, result.Stop)
			assert.Equal(t, 1, result.Turns)
			assert.Equal(t, "Here is a recipe.", result.Answer)
			assert.Len(t, result.History, 2, "no unanswered instruction is left in the history")
			assert.Equal(t, 3, f.fake.ChatCalls())
		})
	}
}

func TestRunReact_QueryError(t *testing.T) {
	f := newFixture(t)
	f.fake.ChatErrors = []error{&openai.APIError{HTTPStatusCode: 401, Message: "bad key"}}

	result, err := f.agent.RunReact(context.Background(), "cake", ReactOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "turn 1")
	assert.Zero(t, result.Turns)
}

func TestProcessQuery_Tracing(t *testing.T) {
	f := newFixture(t,
		llmtest.ToolCallResponse(llmtest.ToolCall{ID: "call_1", Name: "find_ingredients_in_kitchen", Arguments: "{}"}),
		llmtest.TextResponse("You have eggs and bread."),
		validationResponse(t, true, false, ""),
	)
	recorder := telemetrytest.Record(t)

	_, err := f.agent.RunReact(context.Background(), "What do I have?", ReactOptions{})
	require.NoError(t, err)

	names := telemetrytest.Names(recorder)
	assert.Equal(t, []string{
		"llm.complete",
		"skills.dispatch.find_ingredients_in_kitchen",
		"llm.complete",
		"agent.process_query",
		"llm.complete",
		"agent.validate_request",
	}, names)

	query, _ := telemetrytest.Span(recorder, "agent.process_query")
	attrs := telemetrytest.Attributes(query)
	assert.Equal(t, "Recipe Agent", attrs["agent.name"].AsString())
	assert.Equal(t, int64(1), attrs["tool_calls"].AsInt64())
	assert.NotEmpty(t, attrs["query_id"].AsString())
	assert.Equal(t, codes.Ok, query.Status().Code)

	dispatch, _ := telemetrytest.Span(recorder, "skills.dispatch.find_ingredients_in_kitchen")
	assert.Equal(t, query.SpanContext().SpanID(), dispatch.Parent().SpanID(), "skill spans are children of the query")

	validate, _ := telemetrytest.Span(recorder, "agent.validate_request")
	assert.True(t, telemetrytest.Attributes(validate)["is_request_completed"].AsBool())
}
