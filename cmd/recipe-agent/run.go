package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/pkg/errors"
	"github.com/sashabaranov/go-openai"
	"github.com/spf13/cobra"

	"github.com/jingkaihe/recipe-agent/pkg/agent"
	"github.com/jingkaihe/recipe-agent/pkg/presenter"
	llmtypes "github.com/jingkaihe/recipe-agent/pkg/types/llm"
)

// RunOptions contains all options for the run command
type RunOptions struct {
	silent   bool
	noStats  bool
	react    bool
	maxTurns int
}

var runOptions = &RunOptions{}

var runCmd = &cobra.Command{
	Use:   "run [query]",
	Short: "Ask the recipe agent a single question",
	Long: `Ask the recipe agent a single question and print its answer. The query is
taken from the arguments, from piped stdin, or both (arguments first).

With --react the model judges after every answer whether the request is
complete and, if not, what to ask next. That instruction is sent as the next
query until the request is complete, a loop is detected or --max-turns is hit.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		query, err := readQuery(args, os.Stdin, isPipe(os.Stdin))
		if err != nil {
			return err
		}

		a, err := loadApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		presenter.SetQuiet(runOptions.silent)

		out := cmd.OutOrStdout()
		handler := &llmtypes.ConsoleMessageHandler{Silent: presenter.IsQuiet(), Out: out}
		var answer string
		if runOptions.react {
			answer, err = a.react(ctx, query, handler, presenter.Default(), runOptions.maxTurns)
		} else {
			answer, err = a.ask(ctx, query, handler)
		}
		if err != nil {
			return err
		}
		if presenter.IsQuiet() {
			presenter.Answer(answer)
		}

		if !runOptions.noStats {
			presenter.Stats(presenter.ConvertUsageStats(a.backend.Usage()))
		}
		return nil
	},
}

func init() {
	runCmd.Flags().BoolVar(&runOptions.silent, "silent", false, "Print only the final answer, without skill activity")
	runCmd.Flags().BoolVar(&runOptions.noStats, "no-stats", false, "Do not print token usage")
	runCmd.Flags().BoolVar(&runOptions.react, "react", false, "Keep asking follow-up instructions until the request is complete")
	runCmd.Flags().IntVar(&runOptions.maxTurns, "max-turns", agent.DefaultMaxTurns, "Maximum number of queries with --react")
}

// ask runs one query through a fresh recipe agent.
func (a *app) ask(ctx context.Context, query string, handler llmtypes.MessageHandler) (string, error) {
	recipeAgent, err := a.agent(handler)
	if err != nil {
		return "", err
	}

	reply, err := recipeAgent.ProcessQuery(ctx, []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleUser, Content: query},
	})
	if err != nil {
		return "", err
	}
	return reply.Content, nil
}

// react runs query through RunReact, reporting each turn's judgement on p.
func (a *app) react(ctx context.Context, query string, handler llmtypes.MessageHandler, p presenter.Presenter, maxTurns int) (string, error) {
	recipeAgent, err := a.agent(handler)
	if err != nil {
		return "", err
	}

	result, err := recipeAgent.RunReact(ctx, query, agent.ReactOptions{
		MaxTurns: maxTurns,
		OnTurn: func(turn int, v agent.RequestValidation) {
			if !v.IsRequestCompleted.Answer && !v.IsInLoop.Answer {
				p.Info(fmt.Sprintf("[turn %d] next: %s", turn, v.NextInstructionOrQuestion.Answer))
			}
		},
	})
	if err != nil {
		return "", err
	}

	switch result.Stop {
	case agent.StopCompleted:
		p.Success(fmt.Sprintf("Request completed after %d turns", result.Turns))
	case agent.StopInLoop:
		p.Warning(fmt.Sprintf("Stopped after %d turns, the conversation is looping: %s", result.Turns, result.Validation.IsInLoop.Reason))
	case agent.StopMaxTurns:
		p.Warning(fmt.Sprintf("Stopped after reaching the limit of %d turns", result.Turns))
	default:
		p.Warning(fmt.Sprintf("Stopped after %d turns (%s)", result.Turns, result.Stop))
	}
	return result.Answer, nil
}

func isPipe(f *os.File) bool {
	stat, err := f.Stat()
	if err != nil {
		return false
	}
	return stat.Mode()&os.ModeCharDevice == 0
}

// readQuery joins the arguments and, when piped, the content of stdin.
func readQuery(args []string, stdin io.Reader, piped bool) (string, error) {
	query := strings.Join(args, " ")

	if piped {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", errors.Wrap(err, "failed to read stdin")
		}
		if content := strings.TrimSpace(string(data)); content != "" {
			if query != "" {
				query += "\n"
			}
			query += content
		}
	}

	if strings.TrimSpace(query) == "" {
		return "", errors.New("no query provided")
	}
	return query, nil
}
