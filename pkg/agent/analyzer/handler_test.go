package analyzer

import (
	"context"
	"errors"
	"testing"

	"code-analyzer-be/internal/pkg/logger"
	"code-analyzer-be/pkg/agent/state"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubIndex struct {
	err     error
	indexed []string
}

func (f *stubIndex) IndexSnippet(ctx context.Context, threadID, fileName, code string) error {
	if f.err != nil {
		return f.err
	}
	f.indexed = append(f.indexed, fileName)
	return nil
}

func (f *stubIndex) SearchSimilar(ctx context.Context, threadID, query string, k int) ([]string, error) {
	return nil, nil
}

const sampleUpload = "upload main.c\nint add(int a, int b) {\n    return a + b;\n}\n"

func TestHandle_AnalyzesAndIndexesUpload(t *testing.T) {
	index := &stubIndex{}
	h := NewHandler(index, logger.NewNopLogger())

	conv := state.New("t1").WithMessage(state.Message{Role: state.RoleUser, Content: sampleUpload})
	out, err := h.Handle(context.Background(), conv)
	require.NoError(t, err)

	require.Len(t, out.Files, 1)
	assert.Equal(t, "main.c", out.Files[0].Name)
	require.NotNil(t, out.Files[0].Analysis)
	assert.Equal(t, 1, out.Files[0].Analysis.Metrics.FunctionCount)

	assert.Equal(t, []string{"main.c"}, index.indexed)

	last := out.LastMessage()
	require.NotNil(t, last)
	assert.Equal(t, state.RoleAssistant, last.Role)
	assert.Equal(t, "analyzer", last.Name)
	assert.Contains(t, last.Content, "Functions: 1")
	assert.Contains(t, last.Content, "Lines:")
}

func TestHandle_SameNameOverwritesFile(t *testing.T) {
	index := &stubIndex{}
	h := NewHandler(index, logger.NewNopLogger())

	conv := state.New("t1").WithMessage(state.Message{Role: state.RoleUser, Content: sampleUpload})
	conv, err := h.Handle(context.Background(), conv)
	require.NoError(t, err)

	conv = conv.WithMessage(state.Message{Role: state.RoleUser, Content: "upload main.c\nint main() { return 0; }"})
	conv, err = h.Handle(context.Background(), conv)
	require.NoError(t, err)

	require.Len(t, conv.Files, 1)
	assert.Contains(t, conv.Files[0].Code, "return 0;")
	require.NotNil(t, conv.Files[0].Analysis)
}

func TestHandle_DistinctNamesAppendInOrder(t *testing.T) {
	h := NewHandler(&stubIndex{}, logger.NewNopLogger())

	conv := state.New("t1").WithMessage(state.Message{Role: state.RoleUser, Content: "upload a.c\nint a;"})
	conv, err := h.Handle(context.Background(), conv)
	require.NoError(t, err)

	conv = conv.WithMessage(state.Message{Role: state.RoleUser, Content: "upload b.c\nint b;"})
	conv, err = h.Handle(context.Background(), conv)
	require.NoError(t, err)

	require.Len(t, conv.Files, 2)
	assert.Equal(t, "a.c", conv.Files[0].Name)
	assert.Equal(t, "b.c", conv.Files[1].Name)
}

func TestHandle_MissingFileNameGetsGenerated(t *testing.T) {
	h := NewHandler(&stubIndex{}, logger.NewNopLogger())

	conv := state.New("t1").WithMessage(state.Message{Role: state.RoleUser, Content: "upload\nint x;"})
	out, err := h.Handle(context.Background(), conv)
	require.NoError(t, err)

	require.Len(t, out.Files, 1)
	assert.Equal(t, "snippet_1.c", out.Files[0].Name)
}

func TestHandle_BareUploadWithoutFilesReplies(t *testing.T) {
	h := NewHandler(&stubIndex{}, logger.NewNopLogger())

	conv := state.New("t1").WithMessage(state.Message{Role: state.RoleUser, Content: "upload"})
	out, err := h.Handle(context.Background(), conv)
	require.NoError(t, err)

	assert.Empty(t, out.Files)
	last := out.LastMessage()
	require.NotNil(t, last)
	assert.Contains(t, last.Content, "Nothing to analyze")
}

func TestHandle_IndexFailurePropagates(t *testing.T) {
	index := &stubIndex{err: errors.New("pgvector down")}
	h := NewHandler(index, logger.NewNopLogger())

	conv := state.New("t1").WithMessage(state.Message{Role: state.RoleUser, Content: sampleUpload})
	_, err := h.Handle(context.Background(), conv)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "pgvector down")
}

func TestParseUpload(t *testing.T) {
	name, code := parseUpload("upload main.c\nint main() {}")
	assert.Equal(t, "main.c", name)
	assert.Equal(t, "int main() {}", code)

	name, code = parseUpload("업로드 util.c\nvoid f() {}")
	assert.Equal(t, "util.c", name)
	assert.Equal(t, "void f() {}", code)

	name, code = parseUpload("upload")
	assert.Empty(t, name)
	assert.Empty(t, code)
}
