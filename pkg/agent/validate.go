package agent

import (
	"context"

	"github.com/pkg/errors"
	"github.com/sashabaranov/go-openai"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/jingkaihe/recipe-agent/pkg/logger"
	"github.com/jingkaihe/recipe-agent/pkg/prompts"
	"github.com/jingkaihe/recipe-agent/pkg/skills"
	"github.com/jingkaihe/recipe-agent/pkg/telemetry"
)

// BooleanAnswer is a yes/no judgement with its reason.
type BooleanAnswer struct {
	Reason string `json:"reason" jsonschema_description:"Reason for the answer."`
	Answer bool   `json:"answer" jsonschema_description:"The answer."`
}

// StringAnswer is a free-text judgement with its reason.
type StringAnswer struct {
	Reason string `json:"reason" jsonschema_description:"Reason for the answer."`
	Answer string `json:"answer" jsonschema_description:"The answer."`
}

// RequestValidation is the model's assessment of how far a conversation has
// progressed towards the user's original request.
type RequestValidation struct {
	IsRequestCompleted        BooleanAnswer `json:"is_request_completed" jsonschema_description:"Has enough of the plan been executed to successfully complete the original user request? This includes the execution of planned tasks, and the provision of all requested information."`
	IsInLoop                  BooleanAnswer `json:"is_in_loop" jsonschema_description:"Are we in a loop where we are repeating the same requests and/or getting the same responses? Loops can span multiple turns, and can include repeated actions."`
	NextInstructionOrQuestion StringAnswer  `json:"next_instruction_or_question" jsonschema_description:"What is the next instruction or question to make progress on the request? Phrase it as if the user is asking the system to perform the action, e.g. 'Please provide the weather forecast for tomorrow.'"`
}

// RequestValidationSchemaName names the response format sent with validation
// requests.
const RequestValidationSchemaName = "request_validation"

var requestValidationSchema = skills.GenerateSchema[RequestValidation]()

// ValidateRequest asks the model whether the request opening history has been
// completed, whether the conversation is looping and what to ask next. It
// reports false, without error, when the model refused or replied with
// something that does not fit the schema.
func (a *Agent) ValidateRequest(ctx context.Context, history []openai.ChatCompletionMessage) (_ RequestValidation, ok bool, err error) {
	ctx, span := telemetry.Tracer("recipe-agent.agent").Start(ctx, "agent.validate_request", trace.WithAttributes(
		attribute.String("agent.name", a.name),
		attribute.Int("messages", len(history)),
	))
	defer func() {
		telemetry.End(span, err)
		span.End()
	}()

	systemPrompt, err := a.renderer.RenderValidatePrompt(prompts.ValidateData{Agent: a.Details()})
	if err != nil {
		return RequestValidation{}, false, errors.Wrap(err, "failed to render validation prompt")
	}

	messages := make([]openai.ChatCompletionMessage, 0, len(history)+1)
	messages = append(messages, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleSystem, Content: systemPrompt})
	messages = append(messages, history...)

	var validation RequestValidation
	ok, err = a.backend.CompleteJSON(ctx, messages, RequestValidationSchemaName, requestValidationSchema, &validation)
	if err != nil {
		return RequestValidation{}, false, errors.Wrap(err, "failed to validate request")
	}
	if !ok {
		return RequestValidation{}, false, nil
	}

	span.SetAttributes(
		attribute.Bool("is_request_completed", validation.IsRequestCompleted.Answer),
		attribute.Bool("is_in_loop", validation.IsInLoop.Answer),
	)
	logger.G(ctx).
		WithField("completed", validation.IsRequestCompleted.Answer).
		WithField("in_loop", validation.IsInLoop.Answer).
		Debug("request validated")
	return validation, true, nil
}
