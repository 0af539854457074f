package memo

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tempStore(t *testing.T) *FileStore {
	t.Helper()
	return NewFileStore(filepath.Join(t.TempDir(), "memory_saver.json"))
}

func TestFileStoreRoundTrip(t *testing.T) {
	store := tempStore(t)
	now := time.Now().Truncate(time.Second)

	memory := Memory{}
	memory.Put("thread-1", "Question What Is Malloc", "an allocator", now)
	require.NoError(t, store.Save(memory))

	loaded, err := store.Load()
	require.NoError(t, err)

	entry, ok := loaded.Lookup("thread-1", "question what is malloc")
	assert.True(t, ok)
	assert.Equal(t, "an allocator", entry.Answer)
	assert.True(t, entry.Timestamp.Equal(now))
}

func TestFileStoreMissingFileLoadsEmpty(t *testing.T) {
	store := tempStore(t)

	memory, err := store.Load()
	require.NoError(t, err)
	assert.Empty(t, memory)
}

func TestFileStoreCorruptFileLoadsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "memory_saver.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	memory, err := NewFileStore(path).Load()
	require.NoError(t, err)
	assert.Empty(t, memory)
}

func TestMemoryNormalizesQuestionKeys(t *testing.T) {
	memory := Memory{}
	memory.Put("t", "  Question ABOUT pointers  ", "answer", time.Now())

	_, ok := memory.Lookup("t", "question about pointers")
	assert.True(t, ok)
}

func TestMemoryPutReplacesEntry(t *testing.T) {
	memory := Memory{}
	memory.Put("t", "q", "first", time.Now())
	memory.Put("t", "q", "second", time.Now())

	entry, ok := memory.Lookup("t", "q")
	assert.True(t, ok)
	assert.Equal(t, "second", entry.Answer)
	assert.Len(t, memory["t"], 1)
}

func TestMemoryDelete(t *testing.T) {
	memory := Memory{}
	memory.Put("t", "q", "answer", time.Now())

	assert.True(t, memory.Delete("t", "Q"))
	assert.False(t, memory.Delete("t", "q"))
	_, ok := memory.Lookup("t", "q")
	assert.False(t, ok)
}

func TestMemoryDeleteIsThreadScoped(t *testing.T) {
	memory := Memory{}
	memory.Put("a", "q", "answer-a", time.Now())
	memory.Put("b", "q", "answer-b", time.Now())

	memory.Delete("a", "q")

	_, ok := memory.Lookup("b", "q")
	assert.True(t, ok)
}
