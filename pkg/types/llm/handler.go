package llm

import (
	"fmt"
	"io"
	"os"
	"strings"
)

// MessageHandler receives the events of one agent query.
type MessageHandler interface {
	HandleText(text string)
	HandleToolUse(toolCallID, toolName, input string)
	HandleToolResult(toolCallID, toolName, result string)
	HandleDone()
}

// Event types recorded by StringCollectorHandler.
const (
	EventTypeText       = "text"
	EventTypeToolUse    = "tool_use"
	EventTypeToolResult = "tool_result"
)

// MessageEvent is a single recorded handler event.
type MessageEvent struct {
	Type       string
	ToolCallID string
	ToolName   string
	Content    string
}

// ConsoleMessageHandler prints events to a writer, stdout by default.
type ConsoleMessageHandler struct {
	Silent bool
	Out    io.Writer
}

func (h *ConsoleMessageHandler) out() io.Writer {
	if h.Out == nil {
		return os.Stdout
	}
	return h.Out
}

func (h *ConsoleMessageHandler) HandleText(text string) {
	if !h.Silent {
		fmt.Fprintln(h.out(), text)
		fmt.Fprintln(h.out())
	}
}

func (h *ConsoleMessageHandler) HandleToolUse(_ string, toolName string, input string) {
	if !h.Silent {
		fmt.Fprintf(h.out(), "🔧 Using skill: %s: %s\n\n", toolName, input)
	}
}

func (h *ConsoleMessageHandler) HandleToolResult(_ string, toolName string, result string) {
	if !h.Silent {
		fmt.Fprintf(h.out(), "🔄 Skill result (%s): %s\n\n", toolName, result)
	}
}

func (h *ConsoleMessageHandler) HandleDone() {}

// StringCollectorHandler records every event and collects the text output.
type StringCollectorHandler struct {
	Events []MessageEvent
	text   strings.Builder
}

func (h *StringCollectorHandler) HandleText(text string) {
	h.text.WriteString(text)
	h.text.WriteString("\n")
	h.Events = append(h.Events, MessageEvent{Type: EventTypeText, Content: text})
}

func (h *StringCollectorHandler) HandleToolUse(toolCallID, toolName, input string) {
	h.Events = append(h.Events, MessageEvent{
		Type:       EventTypeToolUse,
		ToolCallID: toolCallID,
		ToolName:   toolName,
		Content:    input,
	})
}

func (h *StringCollectorHandler) HandleToolResult(toolCallID, toolName, result string) {
	h.Events = append(h.Events, MessageEvent{
		Type:       EventTypeToolResult,
		ToolCallID: toolCallID,
		ToolName:   toolName,
		Content:    result,
	})
}

func (h *StringCollectorHandler) HandleDone() {}

// CollectedText returns all text received so far.
func (h *StringCollectorHandler) CollectedText() string {
	return h.text.String()
}

// EventsOfType filters recorded events by type.
func (h *StringCollectorHandler) EventsOfType(eventType string) []MessageEvent {
	var out []MessageEvent
	for _, e := range h.Events {
		if e.Type == eventType {
			out = append(out, e)
		}
	}
	return out
}
