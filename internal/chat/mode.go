// Package chat orchestrates a conversation about a GitHub resource:
// fetch the source, build the prompt for the selected answer mode, call
// the user's chosen provider, persist the turns.
package chat

import "fmt"

// Mode selects the shape of the assistant's answer.
type Mode string

const (
	// ModeExplain walks through what the code or issue does.
	ModeExplain Mode = "explain"
	// ModeFlowchart renders the control flow as a Mermaid diagram.
	ModeFlowchart Mode = "flowchart"
	// ModePlan drafts a step-by-step solution plan for an issue.
	ModePlan Mode = "plan"
)

// ParseMode validates a mode string from the API.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeExplain, ModeFlowchart, ModePlan:
		return Mode(s), nil
	case "":
		return ModeExplain, nil
	default:
		return "", fmt.Errorf("unknown mode %q (want explain, flowchart, or plan)", s)
	}
}

// instruction is the mode-specific part of the system prompt.
func (m Mode) instruction() string {
	switch m {
	case ModeFlowchart:
		return `Produce a Mermaid flowchart that captures the control flow of the code or the lifecycle described in the issue.
Output the diagram in a fenced code block tagged "mermaid", followed by a short walkthrough of the main branches.`
	case ModePlan:
		return `Draft a concrete, step-by-step solution plan. Number the steps.
For each step name the files or components involved and what changes. Call out risks and what to test.`
	default:
		return `Explain the code or issue to a developer seeing it for the first time.
Start with a one-paragraph summary of its purpose, then walk through the structure. Use Markdown headings and fenced code blocks for excerpts.`
	}
}
