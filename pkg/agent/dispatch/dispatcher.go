package dispatch

import (
	"context"
	"fmt"
	"strings"
	"time"

	"code-analyzer-be/internal/pkg/logger"
	"code-analyzer-be/pkg/agent/memo"
	"code-analyzer-be/pkg/agent/prompt"
	"code-analyzer-be/pkg/agent/state"
	"code-analyzer-be/pkg/llm"
	"code-analyzer-be/pkg/retrieval"
)

// End is the terminal sentinel: the turn is over, no handler runs.
const End = "__end__"

// Handler names the dispatcher routes to.
const (
	HandlerAnalyzer       = "analyzer"
	HandlerReport         = "report"
	HandlerMarketNews     = "market_news"
	HandlerCompanyProfile = "company_profile"
)

// Decision is the outcome of one routing pass.
type Decision struct {
	Next         string
	Conversation state.Conversation
}

// Config tunes the optional routing behaviour.
type Config struct {
	// Pipeline is the fixed research hand-off order. Empty disables the
	// research path entirely.
	Pipeline []string
	// Keywords gate the research path; a question containing none of
	// them is refused.
	Keywords []string
	// TopK is the retrieval depth for the question path.
	TopK int
}

// DefaultConfig returns the routing defaults for the analysis chat.
func DefaultConfig() Config {
	return Config{
		TopK: 4,
	}
}

// ResearchConfig returns the routing configuration for the two-agent
// research variant.
func ResearchConfig() Config {
	return Config{
		Pipeline: []string{HandlerMarketNews, HandlerCompanyProfile},
		Keywords: []string{"stock", "price", "market"},
		TopK:     4,
	}
}

type Clock func() time.Time

// Dispatcher is the supervisor: it inspects the conversation and either
// answers directly (question path, memo replay) or hands off to a named
// handler. The memoizer is touched only here, never by handlers.
type Dispatcher struct {
	registry    *Registry
	store       memo.Store
	llmProvider llm.LLMProvider
	index       retrieval.Index
	logger      logger.ILogger
	config      Config
	clock       Clock
}

type Option func(*Dispatcher)

// WithClock overrides the time source. Tests use it to pin elapsed-time
// annotations.
func WithClock(c Clock) Option {
	return func(d *Dispatcher) {
		d.clock = c
	}
}

func NewDispatcher(
	registry *Registry,
	store memo.Store,
	llmProvider llm.LLMProvider,
	index retrieval.Index,
	log logger.ILogger,
	config Config,
	opts ...Option,
) *Dispatcher {
	if config.TopK <= 0 {
		config.TopK = 4
	}
	d := &Dispatcher{
		registry:    registry,
		store:       store,
		llmProvider: llmProvider,
		index:       index,
		logger:      log,
		config:      config,
		clock:       time.Now,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Registry exposes the closed handler set for the turn runner.
func (d *Dispatcher) Registry() *Registry {
	return d.registry
}

func terminal(conv state.Conversation) Decision {
	return Decision{Next: End, Conversation: conv}
}

// Route decides what happens next for the given conversation. First
// matching rule wins; command prefixes match case-insensitively on the
// trimmed first line of the latest message.
func (d *Dispatcher) Route(ctx context.Context, conv state.Conversation) (Decision, error) {
	last := conv.LastMessage()
	if last == nil {
		return terminal(conv), nil
	}

	if last.Role != state.RoleUser {
		// A handler just ran. Only an in-flight research pipeline
		// keeps the turn going.
		if len(d.config.Pipeline) == 0 || conv.Step == 0 {
			return terminal(conv), nil
		}
		return d.routeResearch(ctx, conv)
	}

	text := strings.TrimSpace(last.Content)
	firstLine := strings.ToLower(strings.TrimSpace(firstLineOf(text)))

	switch {
	case hasCommandPrefix(firstLine, "upload", "업로드"):
		return Decision{Next: HandlerAnalyzer, Conversation: conv}, nil
	case hasCommandPrefix(firstLine, "extract report", "분석 결과 추출"):
		return Decision{Next: HandlerReport, Conversation: conv}, nil
	case hasCommandPrefix(firstLine, "finish", "end", "종료"):
		d.logger.Info("dispatch", "user requested conversation end", map[string]interface{}{
			"thread_id": conv.ThreadID,
		})
		return terminal(conv), nil
	case hasCommandPrefix(firstLine, "question", "질문"):
		return d.routeQuestion(ctx, conv, text)
	}

	memory, err := d.store.Load()
	if err != nil {
		return Decision{}, err
	}

	key := memo.NormalizeQuestion(text)
	if entry, ok := memory.Lookup(conv.ThreadID, key); ok {
		conv = conv.WithMessage(state.Message{
			Role:    state.RoleAssistant,
			Content: d.replayMessage(entry),
		})
		return terminal(conv), nil
	}

	if strings.ToLower(text) == "search again" {
		return d.routeSearchAgain(conv, memory)
	}

	if len(d.config.Pipeline) > 0 {
		if !containsAnyKeyword(text, d.config.Keywords) {
			conv = conv.WithMessage(state.Message{
				Role:    state.RoleAssistant,
				Content: "I only answer questions related to the stock market.",
			})
			return terminal(conv), nil
		}
		return d.routeResearch(ctx, conv)
	}

	return terminal(conv), nil
}

// routeQuestion answers a prefixed question: memoized replay when the
// question was asked before, retrieval plus LLM otherwise.
func (d *Dispatcher) routeQuestion(ctx context.Context, conv state.Conversation, text string) (Decision, error) {
	question := stripCommandWord(text)
	if question == "" {
		question = text
	}
	key := memo.NormalizeQuestion(question)

	memory, err := d.store.Load()
	if err != nil {
		return Decision{}, err
	}

	if entry, ok := memory.Lookup(conv.ThreadID, key); ok {
		d.logger.Debug("dispatch", "memoized answer replayed", map[string]interface{}{
			"thread_id": conv.ThreadID,
		})
		conv = conv.WithMessage(state.Message{
			Role:    state.RoleAssistant,
			Content: d.replayMessage(entry),
		})
		return terminal(conv), nil
	}

	docs, err := d.index.SearchSimilar(ctx, conv.ThreadID, question, d.config.TopK)
	if err != nil {
		return Decision{}, fmt.Errorf("retrieval search failed: %w", err)
	}

	answer, err := d.llmProvider.Generate(ctx, prompt.NewQuestionBuilder(question, docs).Build())
	if err != nil {
		return Decision{}, fmt.Errorf("llm call failed: %w", err)
	}

	memory.Put(conv.ThreadID, key, answer, d.clock())
	if err := d.store.Save(memory); err != nil {
		return Decision{}, fmt.Errorf("memo save failed: %w", err)
	}

	conv = conv.WithMessage(state.Message{Role: state.RoleAssistant, Content: answer})
	return terminal(conv), nil
}

// routeSearchAgain drops the memo entry of the thread's previous user
// question so the next identical ask recomputes.
func (d *Dispatcher) routeSearchAgain(conv state.Conversation, memory memo.Memory) (Decision, error) {
	if prev := conv.PreviousUserMessage(); prev != nil {
		key := memoKeyFor(prev.Content)
		if memory.Delete(conv.ThreadID, key) {
			if err := d.store.Save(memory); err != nil {
				return Decision{}, fmt.Errorf("memo save failed: %w", err)
			}
		}
	}
	conv = conv.WithMessage(state.Message{
		Role:    state.RoleAssistant,
		Content: "Okay, I'll search again. Please ask your question.",
	})
	return terminal(conv), nil
}

// routeResearch drives the fixed hand-off order via the step counter,
// then summarizes the collected findings.
func (d *Dispatcher) routeResearch(ctx context.Context, conv state.Conversation) (Decision, error) {
	if conv.Step < len(d.config.Pipeline) {
		next := d.config.Pipeline[conv.Step]
		return Decision{Next: next, Conversation: conv.WithStep(conv.Step + 1)}, nil
	}

	var question string
	if m := conv.LastUserMessage(); m != nil {
		question = strings.TrimSpace(m.Content)
	}

	sections := make([]prompt.Section, 0, len(d.config.Pipeline))
	for _, name := range d.config.Pipeline {
		content := ""
		if m := conv.LastNamed(name); m != nil {
			content = m.Content
		}
		sections = append(sections, prompt.Section{Name: name, Content: content})
	}

	summary, err := d.llmProvider.Generate(ctx, prompt.NewSummaryBuilder(question, sections).Build())
	if err != nil {
		return Decision{}, fmt.Errorf("llm summary failed: %w", err)
	}

	memory, err := d.store.Load()
	if err != nil {
		return Decision{}, err
	}
	memory.Put(conv.ThreadID, memoKeyFor(question), summary, d.clock())
	if err := d.store.Save(memory); err != nil {
		return Decision{}, fmt.Errorf("memo save failed: %w", err)
	}

	conv = conv.WithMessage(state.Message{Role: state.RoleAssistant, Content: summary})
	return terminal(conv), nil
}

func (d *Dispatcher) replayMessage(entry memo.Entry) string {
	ago := int(d.clock().Sub(entry.Timestamp).Hours())
	return fmt.Sprintf(
		"You asked this %d hour(s) ago. My answer was:\n%s\nIf you want a new search, say 'search again'.",
		ago, entry.Answer,
	)
}

func firstLineOf(text string) string {
	if i := strings.IndexByte(text, '\n'); i >= 0 {
		return text[:i]
	}
	return text
}

func hasCommandPrefix(line string, prefixes ...string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(line, p) {
			return true
		}
	}
	return false
}

// stripCommandWord removes the leading command token ("question" or
// "질문") from the message, keeping the rest verbatim.
func stripCommandWord(text string) string {
	lower := strings.ToLower(text)
	for _, p := range []string{"question", "질문"} {
		if strings.HasPrefix(lower, p) {
			return strings.TrimSpace(text[len(p):])
		}
	}
	return strings.TrimSpace(text)
}

// memoKeyFor derives the memo key of a past user message: prefixed
// questions are keyed by their stripped body, anything else by the full
// text.
func memoKeyFor(text string) string {
	text = strings.TrimSpace(text)
	lower := strings.ToLower(text)
	if strings.HasPrefix(lower, "question") || strings.HasPrefix(lower, "질문") {
		return memo.NormalizeQuestion(stripCommandWord(text))
	}
	return memo.NormalizeQuestion(text)
}

func containsAnyKeyword(text string, keywords []string) bool {
	lower := strings.ToLower(text)
	for _, k := range keywords {
		if strings.Contains(lower, k) {
			return true
		}
	}
	return false
}
