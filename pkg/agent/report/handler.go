package report

import (
	"context"
	"fmt"
	"strings"

	"code-analyzer-be/internal/pkg/logger"
	"code-analyzer-be/pkg/agent/dispatch"
	"code-analyzer-be/pkg/agent/state"
)

// NoAnalysisMessage is appended when no file has been uploaded yet.
const NoAnalysisMessage = "No analysis yet."

// Handler renders a markdown report over every uploaded file, in upload
// order. It is read-only: running it twice yields the same report.
type Handler struct {
	logger logger.ILogger
}

func NewHandler(log logger.ILogger) *Handler {
	return &Handler{logger: log}
}

var _ dispatch.Handler = (*Handler)(nil)

func (h *Handler) Name() string {
	return dispatch.HandlerReport
}

func (h *Handler) Handle(ctx context.Context, conv state.Conversation) (state.Conversation, error) {
	content := Render(conv.Files)

	h.logger.Debug("report", "report generated", map[string]interface{}{
		"thread_id": conv.ThreadID,
		"files":     len(conv.Files),
	})

	return conv.WithMessage(state.Message{
		Role:    state.RoleAssistant,
		Name:    h.Name(),
		Content: content,
	}), nil
}

// Render builds the markdown report for the given files.
func Render(files []state.UploadedFile) string {
	if len(files) == 0 {
		return NoAnalysisMessage
	}

	var b strings.Builder
	b.WriteString("# Code Analysis Report\n")

	for i, f := range files {
		fmt.Fprintf(&b, "\n## %d. %s\n", i+1, f.Name)

		if f.Analysis == nil {
			b.WriteString("- metrics pending\n")
			continue
		}

		m := f.Analysis.Metrics
		fmt.Fprintf(&b, "- Lines: %d\n", m.TotalLines)
		fmt.Fprintf(&b, "- Functions: %d\n", m.FunctionCount)
		fmt.Fprintf(&b, "- Variables: %d\n", m.VariableCount)
		fmt.Fprintf(&b, "- Cyclomatic complexity: %d\n", m.CyclomaticComplexity)
		if m.Reasoning != "" {
			fmt.Fprintf(&b, "- Reasoning: %s\n", m.Reasoning)
		}

		if len(f.Analysis.AntiPatterns) == 0 {
			b.WriteString("- Anti-patterns: none\n")
		} else {
			b.WriteString("- Anti-patterns:\n")
			for _, ap := range f.Analysis.AntiPatterns {
				fmt.Fprintf(&b, "  - %s: %s\n", ap.Type, ap.Details)
			}
		}
	}

	return b.String()
}
