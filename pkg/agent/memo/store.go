package memo

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// Entry is one memoized answer.
type Entry struct {
	Answer    string    `json:"answer"`
	Timestamp time.Time `json:"ts"`
}

// Memory maps thread id to normalized question text to the stored answer.
// At most one entry exists per (thread, question) pair.
type Memory map[string]map[string]Entry

// Store persists the whole memory map. Implementations load at session start
// and save after every write; there is no partial-key access.
type Store interface {
	Load() (Memory, error)
	Save(Memory) error
}

// NormalizeQuestion is the canonical key form: trimmed, lowercased.
func NormalizeQuestion(question string) string {
	return strings.ToLower(strings.TrimSpace(question))
}

// Lookup returns the entry for a thread and question, keyed by the
// normalized question text.
func (m Memory) Lookup(threadID, question string) (Entry, bool) {
	thread, ok := m[threadID]
	if !ok {
		return Entry{}, false
	}
	entry, ok := thread[NormalizeQuestion(question)]
	return entry, ok
}

// Put stores an answer, replacing any previous entry for the same question.
func (m Memory) Put(threadID, question, answer string, now time.Time) {
	thread, ok := m[threadID]
	if !ok {
		thread = make(map[string]Entry)
		m[threadID] = thread
	}
	thread[NormalizeQuestion(question)] = Entry{Answer: answer, Timestamp: now}
}

// Delete removes the entry for a question. Reports whether one existed.
func (m Memory) Delete(threadID, question string) bool {
	thread, ok := m[threadID]
	if !ok {
		return false
	}
	key := NormalizeQuestion(question)
	if _, ok := thread[key]; !ok {
		return false
	}
	delete(thread, key)
	if len(thread) == 0 {
		delete(m, threadID)
	}
	return true
}

// FileStore keeps the memory map in a JSON file. Writes go through a temp
// file and rename so a crash mid-save never leaves a truncated file behind.
// The mutex serializes the load-modify-save window across goroutines; a
// single process owns the file.
type FileStore struct {
	path string
	mu   sync.Mutex
}

var _ Store = (*FileStore)(nil)

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Load reads the file. A missing or unparseable file yields an empty map:
// losing memoized answers only costs a recomputation, so corruption is not
// worth failing a session over.
func (s *FileStore) Load() (Memory, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		return Memory{}, nil
	}

	var memory Memory
	if err := json.Unmarshal(data, &memory); err != nil {
		return Memory{}, nil
	}
	if memory == nil {
		memory = Memory{}
	}
	return memory, nil
}

func (s *FileStore) Save(memory Memory) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.MarshalIndent(memory, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal memory: %w", err)
	}

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, ".memory-*.json")
	if err != nil {
		return fmt.Errorf("create temp memory file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write memory file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close memory file: %w", err)
	}

	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace memory file: %w", err)
	}
	return nil
}
