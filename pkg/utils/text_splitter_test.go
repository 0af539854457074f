package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitTextShortInputIsSingleChunk(t *testing.T) {
	chunks := SplitText("int main() {}", 100, 10)

	assert.Equal(t, []string{"int main() {}"}, chunks)
}

func TestSplitTextOverlap(t *testing.T) {
	text := strings.Repeat("a", 25)

	chunks := SplitText(text, 10, 5)

	assert.Greater(t, len(chunks), 2)
	for _, c := range chunks {
		assert.LessOrEqual(t, len(c), 10)
	}
	// Consecutive chunks share the overlap region.
	assert.Equal(t, chunks[0][5:], chunks[1][:5])
}

func TestSplitTextDegenerateOverlap(t *testing.T) {
	chunks := SplitText(strings.Repeat("b", 30), 10, 10)

	assert.Equal(t, 3, len(chunks))
}
