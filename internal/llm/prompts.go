package llm

import (
	_ "embed"
	"strings"

	"audit-backend/internal/shared/util"
)

var (
	//go:embed prompts/system.txt
	systemInstruction string
	//go:embed prompts/audit_task.txt
	auditTaskTemplate string
)

const urlPlaceholder = "{{WEBSITE_URL}}"

// Prompt is the pair of strings sent to the model for one audit.
type Prompt struct {
	System string
	Task   string
}

// Hash identifies the prompt text in logs without recording it.
func (p Prompt) Hash() string {
	return util.ShortHash(p.System+"\n\n"+p.Task, 16)
}

// PromptOption adjusts the task prompt.
type PromptOption func(*promptOptions)

type promptOptions struct {
	pageContext string
}

// WithPageContext appends directly fetched page evidence to the task prompt.
func WithPageContext(text string) PromptOption {
	return func(o *promptOptions) {
		o.pageContext = strings.TrimSpace(text)
	}
}

// BuildPrompt renders the system instruction and the audit task for url.
func BuildPrompt(url string, opts ...PromptOption) Prompt {
	var o promptOptions
	for _, opt := range opts {
		opt(&o)
	}

	task := strings.ReplaceAll(auditTaskTemplate, urlPlaceholder, url)
	if o.pageContext != "" {
		task = strings.TrimRight(task, "\n") +
			"\n\nHOMEPAGE SNAPSHOT (fetched directly, use as supporting evidence):\n" +
			o.pageContext + "\n"
	}
	return Prompt{
		System: strings.TrimSpace(systemInstruction),
		Task:   task,
	}
}
