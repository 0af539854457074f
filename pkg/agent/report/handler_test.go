package report

import (
	"context"
	"strings"
	"testing"

	"code-analyzer-be/internal/pkg/logger"
	"code-analyzer-be/pkg/agent/state"
	"code-analyzer-be/pkg/analysis"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func analyzedFile(name, code string) state.UploadedFile {
	return state.UploadedFile{
		Name: name,
		Code: code,
		Analysis: &state.AnalysisRecord{
			Metrics:      analysis.AnalyzeStatic(code),
			AntiPatterns: analysis.DetectAntiPatterns(code),
		},
	}
}

func TestHandle_NoFilesYieldsSentinel(t *testing.T) {
	h := NewHandler(logger.NewNopLogger())

	out, err := h.Handle(context.Background(), state.New("t1"))
	require.NoError(t, err)

	last := out.LastMessage()
	require.NotNil(t, last)
	assert.Equal(t, NoAnalysisMessage, last.Content)
	assert.Equal(t, "report", last.Name)
}

func TestHandle_SectionsFollowInsertionOrder(t *testing.T) {
	h := NewHandler(logger.NewNopLogger())

	conv := state.New("t1")
	conv.Files = []state.UploadedFile{
		analyzedFile("first.c", "int main() { return 0; }"),
		analyzedFile("second.c", "int helper() { return 1; }"),
	}

	out, err := h.Handle(context.Background(), conv)
	require.NoError(t, err)

	content := out.LastMessage().Content
	assert.Contains(t, content, "## 1. first.c")
	assert.Contains(t, content, "## 2. second.c")
	assert.Less(t, strings.Index(content, "first.c"), strings.Index(content, "second.c"))
}

func TestHandle_IsIdempotent(t *testing.T) {
	h := NewHandler(logger.NewNopLogger())

	conv := state.New("t1")
	conv.Files = []state.UploadedFile{analyzedFile("main.c", "int main() { return 0; }")}

	first, err := h.Handle(context.Background(), conv)
	require.NoError(t, err)
	second, err := h.Handle(context.Background(), conv)
	require.NoError(t, err)

	assert.Equal(t, first.LastMessage().Content, second.LastMessage().Content)
}

func TestRender_PendingAnalysisPlaceholder(t *testing.T) {
	out := Render([]state.UploadedFile{{Name: "raw.c", Code: "int x;"}})
	assert.Contains(t, out, "## 1. raw.c")
	assert.Contains(t, out, "metrics pending")
}

func TestRender_ListsAntiPatterns(t *testing.T) {
	code := "int counter = 0;\nint main() { return 0; }"
	out := Render([]state.UploadedFile{analyzedFile("main.c", code)})
	assert.Contains(t, out, analysis.AntiPatternGlobalVariable)
}

func TestRender_CleanFileShowsNone(t *testing.T) {
	out := Render([]state.UploadedFile{analyzedFile("clean.c", "void noop(void) {}")})
	assert.Contains(t, out, "Anti-patterns: none")
}
