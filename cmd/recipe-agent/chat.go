package main

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/pkg/errors"
	"github.com/sashabaranov/go-openai"
	"github.com/spf13/cobra"

	"github.com/jingkaihe/recipe-agent/pkg/agent"
	"github.com/jingkaihe/recipe-agent/pkg/presenter"
	llmtypes "github.com/jingkaihe/recipe-agent/pkg/types/llm"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start an interactive conversation with the recipe agent",
	Long:  `Start an interactive conversation. Earlier turns are sent with every query. Type 'exit' or 'quit' to end the session.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		a, err := loadApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		recipeAgent, err := a.agent(&llmtypes.ConsoleMessageHandler{Out: cmd.OutOrStdout()})
		if err != nil {
			return err
		}

		presenter.Section("Recipe Agent Chat")
		presenter.Info("Type 'exit' or 'quit' to end the session")
		presenter.Separator()

		if err := chatLoop(ctx, presenter.New(), recipeAgent); err != nil {
			return err
		}

		presenter.Separator()
		presenter.Stats(presenter.ConvertUsageStats(a.backend.Usage()))
		return nil
	},
}

// chatLoop reads user turns until exit, quit or end of input. A failed query
// is reported and dropped from the history.
func chatLoop(ctx context.Context, p presenter.Presenter, recipeAgent *agent.Agent) error {
	var history []openai.ChatCompletionMessage

	for {
		input, err := p.Prompt("[user]:")
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return errors.Wrap(err, "failed to read input")
		}

		switch input {
		case "":
			continue
		case "exit", "quit":
			return nil
		}

		history = append(history, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: input})
		reply, err := recipeAgent.ProcessQuery(ctx, history)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			p.Error(err, "Failed to answer")
			history = history[:len(history)-1]
			continue
		}
		history = append(history, reply)
	}
}
