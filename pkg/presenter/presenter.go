// Package presenter provides consistent CLI output for user-facing messages,
// including success, error, warning and informational output with color
// support and quiet mode.
package presenter

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"

	llmtypes "github.com/jingkaihe/recipe-agent/pkg/types/llm"
)

// ColorEnv overrides color detection: always, force, never, off or auto.
const ColorEnv = "RECIPE_AGENT_COLOR"

// UsageStats is the token usage of a session as shown to the user.
type UsageStats struct {
	InputTokens     int64
	OutputTokens    int64
	EmbeddingTokens int64
	Requests        int64
}

// Presenter defines the interface for consistent CLI output
type Presenter interface {
	Error(err error, context string)
	Success(message string)
	Warning(message string)
	Info(message string)
	Section(title string)
	Answer(text string)
	Prompt(question string) (string, error)
	Stats(usage *UsageStats)
	Separator()
	SetQuiet(quiet bool)
	IsQuiet() bool
}

// TerminalPresenter implements Presenter for terminal output
type TerminalPresenter struct {
	output      io.Writer
	errorOutput io.Writer
	input       *bufio.Reader
	colorMode   ColorMode
	quiet       bool
}

// ColorMode represents different color output modes
type ColorMode int

const (
	// ColorAuto lets the color package decide from the terminal
	ColorAuto ColorMode = iota
	ColorAlways
	ColorNever
)

// New creates a TerminalPresenter on stdout, stderr and stdin.
func New() *TerminalPresenter {
	return NewWithOptions(os.Stdout, os.Stderr, detectColorMode())
}

// NewWithOptions creates a TerminalPresenter with custom writers. Prompts read
// from stdin unless SetInput is called.
func NewWithOptions(output, errorOutput io.Writer, colorMode ColorMode) *TerminalPresenter {
	presenter := &TerminalPresenter{
		output:      output,
		errorOutput: errorOutput,
		input:       bufio.NewReader(os.Stdin),
		colorMode:   colorMode,
	}

	switch colorMode {
	case ColorAlways:
		color.NoColor = false
	case ColorNever:
		color.NoColor = true
	case ColorAuto:
	}

	return presenter
}

func detectColorMode() ColorMode {
	if os.Getenv("NO_COLOR") != "" {
		return ColorNever
	}

	switch os.Getenv(ColorEnv) {
	case "always", "force":
		return ColorAlways
	case "never", "off":
		return ColorNever
	default:
		return ColorAuto
	}
}

// SetInput replaces the reader prompts read from.
func (p *TerminalPresenter) SetInput(r io.Reader) {
	p.input = bufio.NewReader(r)
}

// Error displays an error message to stderr
func (p *TerminalPresenter) Error(err error, context string) {
	if err == nil {
		return
	}

	errorColor := color.New(color.FgRed, color.Bold)
	if context != "" {
		errorColor.Fprintf(p.errorOutput, "[ERROR] %s: %v\n", context, err)
	} else {
		errorColor.Fprintf(p.errorOutput, "[ERROR] %v\n", err)
	}
}

func (p *TerminalPresenter) Success(message string) {
	if p.quiet {
		return
	}
	color.New(color.FgGreen, color.Bold).Fprintf(p.output, "✓ %s\n", message)
}

func (p *TerminalPresenter) Warning(message string) {
	if p.quiet {
		return
	}
	color.New(color.FgYellow, color.Bold).Fprintf(p.output, "⚠ %s\n", message)
}

func (p *TerminalPresenter) Info(message string) {
	if p.quiet {
		return
	}
	fmt.Fprintf(p.output, "%s\n", message)
}

// Section displays a section header underlined to the title's width
func (p *TerminalPresenter) Section(title string) {
	if p.quiet {
		return
	}

	headerColor := color.New(color.Bold)
	headerColor.Fprintf(p.output, "%s\n", title)
	headerColor.Fprintf(p.output, "%s\n", strings.Repeat("-", len(title)))
}

// Answer prints the agent's reply. Answers are printed even in quiet mode.
func (p *TerminalPresenter) Answer(text string) {
	fmt.Fprintf(p.output, "%s\n", strings.TrimRight(text, "\n"))
}

// Prompt displays question and reads one line. io.EOF is returned once the
// input is exhausted and nothing was read.
func (p *TerminalPresenter) Prompt(question string) (string, error) {
	color.New(color.FgCyan).Fprintf(p.output, "%s ", question)

	line, err := p.input.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// Stats displays token usage
func (p *TerminalPresenter) Stats(usage *UsageStats) {
	if p.quiet || usage == nil {
		return
	}

	total := usage.InputTokens + usage.OutputTokens + usage.EmbeddingTokens
	color.New(color.FgCyan, color.Bold).Fprintf(p.output,
		"[Usage Stats] Input tokens: %d | Output tokens: %d | Embedding tokens: %d | Total: %d | Requests: %d\n",
		usage.InputTokens, usage.OutputTokens, usage.EmbeddingTokens, total, usage.Requests)
}

func (p *TerminalPresenter) Separator() {
	if p.quiet {
		return
	}
	color.New(color.Faint).Fprintf(p.output, "%s\n", strings.Repeat("-", 60))
}

func (p *TerminalPresenter) SetQuiet(quiet bool) {
	p.quiet = quiet
}

func (p *TerminalPresenter) IsQuiet() bool {
	return p.quiet
}

// ConvertUsageStats converts backend usage to presenter stats.
func ConvertUsageStats(usage llmtypes.Usage) *UsageStats {
	return &UsageStats{
		InputTokens:     int64(usage.InputTokens),
		OutputTokens:    int64(usage.OutputTokens),
		EmbeddingTokens: int64(usage.EmbeddingTokens),
		Requests:        int64(usage.Requests),
	}
}

var defaultPresenter = New()

// Default returns the shared presenter used by the package-level functions.
func Default() Presenter {
	return defaultPresenter
}

// Error displays an error message using the default presenter instance.
func Error(err error, context string) {
	defaultPresenter.Error(err, context)
}

// Success displays a success message using the default presenter instance.
func Success(message string) {
	defaultPresenter.Success(message)
}

// Warning displays a warning message using the default presenter instance.
func Warning(message string) {
	defaultPresenter.Warning(message)
}

// Info displays an informational message using the default presenter instance.
func Info(message string) {
	defaultPresenter.Info(message)
}

// Section displays a section header using the default presenter instance.
func Section(title string) {
	defaultPresenter.Section(title)
}

// Answer prints an agent reply using the default presenter instance.
func Answer(text string) {
	defaultPresenter.Answer(text)
}

// Prompt reads a line of input using the default presenter instance.
func Prompt(question string) (string, error) {
	return defaultPresenter.Prompt(question)
}

// Stats displays usage statistics using the default presenter instance.
func Stats(usage *UsageStats) {
	defaultPresenter.Stats(usage)
}

// Separator displays a visual separator using the default presenter instance.
func Separator() {
	defaultPresenter.Separator()
}

// SetQuiet enables or disables quiet mode for the default presenter instance.
func SetQuiet(quiet bool) {
	defaultPresenter.SetQuiet(quiet)
}

// IsQuiet returns whether quiet mode is enabled for the default presenter instance.
func IsQuiet() bool {
	return defaultPresenter.IsQuiet()
}
