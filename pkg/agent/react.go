package agent

import (
	"context"
	"strings"

	"github.com/pkg/errors"
	"github.com/sashabaranov/go-openai"

	"github.com/jingkaihe/recipe-agent/pkg/logger"
)

// DefaultMaxTurns bounds RunReact when no limit is given.
const DefaultMaxTurns = 5

// StopReason says why RunReact returned.
type StopReason string

const (
	StopCompleted     StopReason = "completed"
	StopInLoop        StopReason = "in_loop"
	StopNoInstruction StopReason = "no_instruction"
	StopUnvalidated   StopReason = "unvalidated"
	StopMaxTurns      StopReason = "max_turns"
)

// ReactOptions configures RunReact.
type ReactOptions struct {
	// MaxTurns caps the number of queries. Zero or less means DefaultMaxTurns.
	MaxTurns int
	// OnTurn, if set, is called after every validated turn.
	OnTurn func(turn int, validation RequestValidation)
}

// ReactResult is the outcome of RunReact.
type ReactResult struct {
	// Answer is the reply to the last query.
	Answer     string
	Turns      int
	Stop       StopReason
	History    []openai.ChatCompletionMessage
	Validation RequestValidation
}

// RunReact answers query, then keeps asking the model's next instruction or
// question as a new user turn until the request is judged complete, a loop is
// detected, no instruction is offered or MaxTurns queries were made.
func (a *Agent) RunReact(ctx context.Context, query string, opts ReactOptions) (ReactResult, error) {
	maxTurns := opts.MaxTurns
	if maxTurns <= 0 {
		maxTurns = DefaultMaxTurns
	}
	log := logger.G(ctx).WithField("agent", a.name)

	result := ReactResult{
		History: []openai.ChatCompletionMessage{{Role: openai.ChatMessageRoleUser, Content: query}},
		Stop:    StopMaxTurns,
	}
	for turn := 1; turn <= maxTurns; turn++ {
		reply, err := a.ProcessQuery(ctx, result.History)
		if err != nil {
			return result, errors.Wrapf(err, "turn %d", turn)
		}
		result.History = append(result.History, reply)
		result.Answer = reply.Content
		result.Turns = turn

		validation, ok, err := a.ValidateRequest(ctx, result.History)
		if err != nil {
			return result, errors.Wrapf(err, "turn %d", turn)
		}
		if !ok {
			log.WithField("turn", turn).Warn("request could not be validated, stopping")
			result.Stop = StopUnvalidated
			return result, nil
		}
		result.Validation = validation
		if opts.OnTurn != nil {
			opts.OnTurn(turn, validation)
		}

		switch {
		case validation.IsRequestCompleted.Answer:
			result.Stop = StopCompleted
			return result, nil
		case validation.IsInLoop.Answer:
			log.WithField("turn", turn).WithField("reason", validation.IsInLoop.Reason).Warn("conversation is looping, stopping")
			result.Stop = StopInLoop
			return result, nil
		}

		next := strings.TrimSpace(validation.NextInstructionOrQuestion.Answer)
		if next == "" {
			result.Stop = StopNoInstruction
			return result, nil
		}
		if turn < maxTurns {
			log.WithField("turn", turn).WithField("next", next).Info("continuing request")
			result.History = append(result.History, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: next})
		}
	}
	return result, nil
}
