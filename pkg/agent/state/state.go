package state

import (
	"code-analyzer-be/pkg/analysis"
)

// Message roles. The assistant role covers every handler generated reply;
// Name records which handler produced it.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one entry of the conversation. Values are never mutated after
// creation.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
	Name    string `json:"name,omitempty"`
}

// AnalysisRecord is the immutable result of analyzing one snippet.
type AnalysisRecord struct {
	Metrics      analysis.StaticAnalysisResult `json:"metrics"`
	AntiPatterns []analysis.AntiPattern        `json:"anti_patterns"`
}

// UploadedFile pairs a snippet with its analysis. Analysis is nil until the
// analyzer handler has run for this code.
type UploadedFile struct {
	Name     string          `json:"name"`
	Code     string          `json:"code"`
	Analysis *AnalysisRecord `json:"analysis,omitempty"`
}

// Conversation is the state value threaded through the dispatcher and the
// handlers. Handlers receive a value and return an updated copy; the
// caller's value stays untouched, which keeps a failed turn from leaving a
// partial append behind.
type Conversation struct {
	ThreadID string         `json:"thread_id"`
	Step     int            `json:"step"`
	Messages []Message      `json:"messages"`
	Files    []UploadedFile `json:"files"`
}

// New creates an empty conversation scoped to the given thread.
func New(threadID string) Conversation {
	return Conversation{ThreadID: threadID}
}

// WithMessage returns a copy with the message appended.
func (c Conversation) WithMessage(m Message) Conversation {
	messages := make([]Message, 0, len(c.Messages)+1)
	messages = append(messages, c.Messages...)
	messages = append(messages, m)
	c.Messages = messages
	return c
}

// WithStep returns a copy with the pipeline progress marker set.
func (c Conversation) WithStep(step int) Conversation {
	c.Step = step
	return c
}

// WithFile returns a copy where the named file holds the given code.
// Re-uploading an existing name overwrites the code and clears its analysis;
// a new name is appended, preserving insertion order.
func (c Conversation) WithFile(name, code string) Conversation {
	files := make([]UploadedFile, len(c.Files))
	copy(files, c.Files)

	for i := range files {
		if files[i].Name == name {
			files[i].Code = code
			files[i].Analysis = nil
			c.Files = files
			return c
		}
	}

	c.Files = append(files, UploadedFile{Name: name, Code: code})
	return c
}

// WithAnalysis returns a copy where the file at the given index carries the
// record. Out-of-range indexes return the conversation unchanged.
func (c Conversation) WithAnalysis(index int, record AnalysisRecord) Conversation {
	if index < 0 || index >= len(c.Files) {
		return c
	}
	files := make([]UploadedFile, len(c.Files))
	copy(files, c.Files)
	files[index].Analysis = &record
	c.Files = files
	return c
}

// LastMessage returns a copy of the most recent message, or nil.
func (c Conversation) LastMessage() *Message {
	if len(c.Messages) == 0 {
		return nil
	}
	m := c.Messages[len(c.Messages)-1]
	return &m
}

// LastUserMessage returns a copy of the most recent user message, or nil.
func (c Conversation) LastUserMessage() *Message {
	for i := len(c.Messages) - 1; i >= 0; i-- {
		if c.Messages[i].Role == RoleUser {
			m := c.Messages[i]
			return &m
		}
	}
	return nil
}

// PreviousUserMessage returns the user message preceding the latest one.
// Used by the "search again" command to find which question to forget.
func (c Conversation) PreviousUserMessage() *Message {
	seenLatest := false
	for i := len(c.Messages) - 1; i >= 0; i-- {
		if c.Messages[i].Role != RoleUser {
			continue
		}
		if !seenLatest {
			seenLatest = true
			continue
		}
		m := c.Messages[i]
		return &m
	}
	return nil
}

// LastNamed returns the most recent message produced by the named handler.
func (c Conversation) LastNamed(name string) *Message {
	for i := len(c.Messages) - 1; i >= 0; i-- {
		if c.Messages[i].Name == name {
			m := c.Messages[i]
			return &m
		}
	}
	return nil
}

// FileIndexByCode finds a file holding exactly this code, or -1.
func (c Conversation) FileIndexByCode(code string) int {
	for i := range c.Files {
		if c.Files[i].Code == code {
			return i
		}
	}
	return -1
}

// FileIndexByName finds a file by name, or -1.
func (c Conversation) FileIndexByName(name string) int {
	for i := range c.Files {
		if c.Files[i].Name == name {
			return i
		}
	}
	return -1
}
