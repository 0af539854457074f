package state

import (
	"testing"

	"code-analyzer-be/pkg/analysis"

	"github.com/stretchr/testify/assert"
)

func TestWithMessageDoesNotMutateOriginal(t *testing.T) {
	base := New("thread-1").WithMessage(Message{Role: RoleUser, Content: "hello"})

	updated := base.WithMessage(Message{Role: RoleAssistant, Content: "hi"})

	assert.Len(t, base.Messages, 1)
	assert.Len(t, updated.Messages, 2)
}

func TestWithFileOverwriteClearsAnalysis(t *testing.T) {
	conv := New("t").WithFile("a.c", "int main() {}")
	conv = conv.WithAnalysis(0, AnalysisRecord{
		Metrics: analysis.StaticAnalysisResult{TotalLines: 1},
	})
	assert.NotNil(t, conv.Files[0].Analysis)

	conv = conv.WithFile("a.c", "int main() { return 1; }")

	assert.Len(t, conv.Files, 1)
	assert.Equal(t, "int main() { return 1; }", conv.Files[0].Code)
	assert.Nil(t, conv.Files[0].Analysis)
}

func TestWithFilePreservesInsertionOrder(t *testing.T) {
	conv := New("t").
		WithFile("b.c", "b").
		WithFile("a.c", "a").
		WithFile("c.c", "c")

	names := []string{conv.Files[0].Name, conv.Files[1].Name, conv.Files[2].Name}
	assert.Equal(t, []string{"b.c", "a.c", "c.c"}, names)
}

func TestPreviousUserMessage(t *testing.T) {
	conv := New("t").
		WithMessage(Message{Role: RoleUser, Content: "question what is malloc"}).
		WithMessage(Message{Role: RoleAssistant, Content: "an allocator"}).
		WithMessage(Message{Role: RoleUser, Content: "search again"})

	prev := conv.PreviousUserMessage()
	assert.NotNil(t, prev)
	assert.Equal(t, "question what is malloc", prev.Content)
}

func TestPreviousUserMessageMissing(t *testing.T) {
	conv := New("t").WithMessage(Message{Role: RoleUser, Content: "only one"})

	assert.Nil(t, conv.PreviousUserMessage())
}

func TestLastNamed(t *testing.T) {
	conv := New("t").
		WithMessage(Message{Role: RoleAssistant, Content: "old", Name: "market_news"}).
		WithMessage(Message{Role: RoleAssistant, Content: "new", Name: "market_news"}).
		WithMessage(Message{Role: RoleAssistant, Content: "other", Name: "company_profile"})

	m := conv.LastNamed("market_news")
	assert.NotNil(t, m)
	assert.Equal(t, "new", m.Content)
}

func TestFileIndexByCode(t *testing.T) {
	conv := New("t").WithFile("a.c", "code-a").WithFile("b.c", "code-b")

	assert.Equal(t, 1, conv.FileIndexByCode("code-b"))
	assert.Equal(t, -1, conv.FileIndexByCode("missing"))
}
