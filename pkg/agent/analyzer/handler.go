package analyzer

import (
	"context"
	"fmt"
	"strings"

	"code-analyzer-be/internal/pkg/logger"
	"code-analyzer-be/pkg/agent/dispatch"
	"code-analyzer-be/pkg/agent/state"
	"code-analyzer-be/pkg/analysis"
	"code-analyzer-be/pkg/retrieval"
)

// Handler analyzes an uploaded C snippet: static metrics, anti-pattern
// scan, and indexing into the retrieval store. The upload message
// carries the command and file name on its first line and the raw code
// after the first newline.
type Handler struct {
	index  retrieval.Index
	logger logger.ILogger
}

func NewHandler(index retrieval.Index, log logger.ILogger) *Handler {
	return &Handler{
		index:  index,
		logger: log,
	}
}

var _ dispatch.Handler = (*Handler)(nil)

func (h *Handler) Name() string {
	return dispatch.HandlerAnalyzer
}

func (h *Handler) Handle(ctx context.Context, conv state.Conversation) (state.Conversation, error) {
	last := conv.LastMessage()
	if last == nil || last.Role != state.RoleUser {
		return conv, nil
	}

	fileName, code := parseUpload(last.Content)
	if code == "" {
		// Bare upload command: re-analyze the most recent file.
		if len(conv.Files) == 0 {
			return conv.WithMessage(state.Message{
				Role:    state.RoleAssistant,
				Name:    h.Name(),
				Content: "Nothing to analyze. Upload a code snippet first.",
			}), nil
		}
		f := conv.Files[len(conv.Files)-1]
		fileName, code = f.Name, f.Code
	}
	if fileName == "" {
		fileName = fmt.Sprintf("snippet_%d.c", len(conv.Files)+1)
	}

	metrics := analysis.AnalyzeStatic(code)
	antiPatterns := analysis.DetectAntiPatterns(code)
	record := state.AnalysisRecord{
		Metrics:      metrics,
		AntiPatterns: antiPatterns,
	}

	if idx := conv.FileIndexByCode(code); idx >= 0 {
		conv = conv.WithAnalysis(idx, record)
	} else {
		conv = conv.WithFile(fileName, code)
		conv = conv.WithAnalysis(conv.FileIndexByName(fileName), record)
	}

	if err := h.index.IndexSnippet(ctx, conv.ThreadID, fileName, code); err != nil {
		return state.Conversation{}, fmt.Errorf("indexing %s failed: %w", fileName, err)
	}

	h.logger.Info("analyzer", "snippet analyzed", map[string]interface{}{
		"thread_id": conv.ThreadID,
		"file_name": fileName,
		"functions": metrics.FunctionCount,
	})

	summary := fmt.Sprintf(
		"Lines: %d, Functions: %d, Variables: %d, Cyclomatic: %d",
		metrics.TotalLines, metrics.FunctionCount, metrics.VariableCount, metrics.CyclomaticComplexity,
	)
	return conv.WithMessage(state.Message{
		Role:    state.RoleAssistant,
		Name:    h.Name(),
		Content: summary,
	}), nil
}

// parseUpload splits an upload message into the file name (remainder of
// the first line after the command token) and the code (everything
// after the first newline).
func parseUpload(text string) (fileName, code string) {
	text = strings.TrimSpace(text)

	firstLine := text
	if i := strings.IndexByte(text, '\n'); i >= 0 {
		firstLine = text[:i]
		code = strings.TrimLeft(text[i+1:], "\n")
	}

	firstLine = strings.TrimSpace(firstLine)
	lower := strings.ToLower(firstLine)
	for _, p := range []string{"upload", "업로드"} {
		if strings.HasPrefix(lower, p) {
			fileName = strings.TrimSpace(firstLine[len(p):])
			break
		}
	}
	return fileName, code
}
