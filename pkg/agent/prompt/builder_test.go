package prompt

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestQuestionBuilder_IncludesContextAndQuestion(t *testing.T) {
	b := NewQuestionBuilder("what does main do?", []string{"int main() { return 0; }"})
	out := b.Build()

	assert.Contains(t, out, "<reference_material>")
	assert.Contains(t, out, "int main() { return 0; }")
	assert.Contains(t, out, "what does main do?")
}

func TestQuestionBuilder_NoContextOmitsReferenceBlock(t *testing.T) {
	b := NewQuestionBuilder("hello?", nil)
	out := b.Build()

	assert.NotContains(t, out, "<reference_material>")
	assert.Contains(t, out, "hello?")
}

func TestQuestionBuilder_NumbersSnippets(t *testing.T) {
	b := NewQuestionBuilder("q", []string{"a", "b"})
	out := b.Build()

	assert.Contains(t, out, "--- snippet 1 ---")
	assert.Contains(t, out, "--- snippet 2 ---")
	assert.Less(t, strings.Index(out, "--- snippet 1 ---"), strings.Index(out, "--- snippet 2 ---"))
}

func TestSummaryBuilder_NamesSections(t *testing.T) {
	b := NewSummaryBuilder("how is the market?", []Section{
		{Name: "market_news", Content: "stocks are up"},
		{Name: "company_profile", Content: "Acme builds widgets"},
	})
	out := b.Build()

	assert.Contains(t, out, "[market_news]")
	assert.Contains(t, out, "stocks are up")
	assert.Contains(t, out, "[company_profile]")
	assert.Contains(t, out, "how is the market?")
}
