// Package agent runs the recipe agent's conversation loop: one model call
// offered every registered skill, at most one round of tool calls, and a final
// model call that turns the tool results into an answer.
package agent

import (
	"context"

	"github.com/google/uuid"
	"github.com/invopop/jsonschema"
	"github.com/pkg/errors"
	"github.com/sashabaranov/go-openai"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/jingkaihe/recipe-agent/pkg/llm"
	"github.com/jingkaihe/recipe-agent/pkg/logger"
	"github.com/jingkaihe/recipe-agent/pkg/prompts"
	"github.com/jingkaihe/recipe-agent/pkg/skills"
	"github.com/jingkaihe/recipe-agent/pkg/telemetry"
	llmtypes "github.com/jingkaihe/recipe-agent/pkg/types/llm"
)

// Backend sends conversations to the chat model, either free-form or
// constrained to a JSON schema.
type Backend interface {
	Complete(ctx context.Context, messages []openai.ChatCompletionMessage, opt llm.CompletionOpt) (openai.ChatCompletionMessage, error)
	CompleteJSON(ctx context.Context, messages []openai.ChatCompletionMessage, name string, schema *jsonschema.Schema, target any) (bool, error)
}

// Agent pairs an identity with a set of skills and a chat backend.
type Agent struct {
	name        string
	description string
	registry    *skills.Registry
	backend     Backend
	renderer    *prompts.Renderer
	handler     llmtypes.MessageHandler
}

// Option configures an Agent.
type Option func(*Agent)

// WithHandler sets the receiver of tool and text events.
func WithHandler(handler llmtypes.MessageHandler) Option {
	return func(a *Agent) {
		a.handler = handler
	}
}

// WithRenderer sets the prompt renderer. The embedded templates are used
// otherwise.
func WithRenderer(renderer *prompts.Renderer) Option {
	return func(a *Agent) {
		a.renderer = renderer
	}
}

// New creates an agent.
func New(name, description string, registry *skills.Registry, backend Backend, opts ...Option) *Agent {
	a := &Agent{
		name:        name,
		description: description,
		registry:    registry,
		backend:     backend,
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.renderer == nil {
		a.renderer = prompts.NewRenderer(prompts.TemplateFS)
	}
	if a.handler == nil {
		a.handler = &llmtypes.ConsoleMessageHandler{Silent: true}
	}
	return a
}

func (a *Agent) Name() string {
	return a.name
}

func (a *Agent) Description() string {
	return a.description
}

func (a *Agent) Registry() *skills.Registry {
	return a.registry
}

// Details describes the agent and its skills.
func (a *Agent) Details() string {
	return a.registry.AgentDetails(a.name, a.description)
}

// SystemPrompt renders the system prompt listing every skill.
func (a *Agent) SystemPrompt() (string, error) {
	var lines []prompts.SkillLine
	for _, d := range a.registry.Descriptors() {
		lines = append(lines, prompts.SkillLine{Name: d.Name, Description: d.Description})
	}
	return a.renderer.RenderSystemPrompt(prompts.SystemData{Skills: lines})
}

// ProcessQuery answers the last user message of messages. The model may call
// skills once. Its reply and the skill results are always sent back in a
// second call made without tools, whose content is the answer. Any tool call
// failure aborts the query and the remaining calls of the batch are not
// executed.
func (a *Agent) ProcessQuery(ctx context.Context, messages []openai.ChatCompletionMessage) (_ openai.ChatCompletionMessage, err error) {
	queryID := uuid.NewString()
	ctx = logger.WithFields(ctx, logrus.Fields{
		"query_id": queryID,
		"agent":    a.name,
	})
	log := logger.G(ctx)

	ctx, span := telemetry.Tracer("recipe-agent.agent").Start(ctx, "agent.process_query", trace.WithAttributes(
		attribute.String("agent.name", a.name),
		attribute.String("query_id", queryID),
		attribute.Int("messages", len(messages)),
	))
	defer func() {
		telemetry.End(span, err)
		span.End()
	}()

	systemPrompt, err := a.SystemPrompt()
	if err != nil {
		return openai.ChatCompletionMessage{}, errors.Wrap(err, "failed to render system prompt")
	}

	execute := make([]openai.ChatCompletionMessage, 0, len(messages)+2)
	execute = append(execute, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleSystem, Content: systemPrompt})
	execute = append(execute, messages...)

	reply, err := a.backend.Complete(ctx, execute, llm.CompletionOpt{
		Tools:      a.registry.ToOpenAITools(),
		ToolChoice: "auto",
	})
	if err != nil {
		return openai.ChatCompletionMessage{}, errors.Wrap(err, "failed to get model response")
	}

	reply.Role = openai.ChatMessageRoleAssistant
	execute = append(execute, reply)

	span.SetAttributes(attribute.Int("tool_calls", len(reply.ToolCalls)))
	if len(reply.ToolCalls) > 0 {
		log.WithField("tool_calls", len(reply.ToolCalls)).Info("executing skills")
	}
	for _, call := range reply.ToolCalls {
		name := call.Function.Name
		a.handler.HandleToolUse(call.ID, name, call.Function.Arguments)

		result, err := a.registry.DispatchJSON(ctx, name, call.Function.Arguments)
		if err != nil {
			log.WithError(err).WithField("skill", name).Error("skill call failed")
			return openai.ChatCompletionMessage{}, errors.Wrapf(err, "skill %s failed", name)
		}

		a.handler.HandleToolResult(call.ID, name, result)
		execute = append(execute, openai.ChatCompletionMessage{
			Role:       openai.ChatMessageRoleTool,
			Content:    result,
			Name:       name,
			ToolCallID: call.ID,
		})
	}

	final, err := a.backend.Complete(ctx, execute, llm.CompletionOpt{})
	if err != nil {
		return openai.ChatCompletionMessage{}, errors.Wrap(err, "failed to get final model response")
	}
	return a.finish(final.Content), nil
}

func (a *Agent) finish(content string) openai.ChatCompletionMessage {
	a.handler.HandleText(content)
	a.handler.HandleDone()
	return openai.ChatCompletionMessage{Role: openai.ChatMessageRoleAssistant, Content: content}
}
