package dispatch

import (
	"context"
	"errors"
	"testing"
	"time"

	"code-analyzer-be/internal/pkg/logger"
	"code-analyzer-be/pkg/agent/memo"
	"code-analyzer-be/pkg/agent/state"
	"code-analyzer-be/pkg/llm"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubStore struct {
	memory  memo.Memory
	saves   int
	saveErr error
}

func (s *stubStore) Load() (memo.Memory, error) {
	if s.memory == nil {
		s.memory = memo.Memory{}
	}
	return s.memory, nil
}

func (s *stubStore) Save(m memo.Memory) error {
	if s.saveErr != nil {
		return s.saveErr
	}
	s.memory = m
	s.saves++
	return nil
}

type stubLLM struct {
	response string
	err      error
	calls    int
	prompts  []string
}

func (f *stubLLM) Chat(ctx context.Context, history []llm.Message, options ...llm.Option) (string, error) {
	f.calls++
	return f.response, f.err
}

func (f *stubLLM) Generate(ctx context.Context, prompt string, options ...llm.Option) (string, error) {
	f.calls++
	f.prompts = append(f.prompts, prompt)
	return f.response, f.err
}

type stubIndex struct {
	documents []string
	err       error
	queries   []string
}

func (f *stubIndex) IndexSnippet(ctx context.Context, threadID, fileName, code string) error {
	return f.err
}

func (f *stubIndex) SearchSimilar(ctx context.Context, threadID, query string, k int) ([]string, error) {
	f.queries = append(f.queries, query)
	return f.documents, f.err
}

func fixedClock(t time.Time) Clock {
	return func() time.Time { return t }
}

func newTestDispatcher(store memo.Store, provider llm.LLMProvider, index *stubIndex, cfg Config, opts ...Option) *Dispatcher {
	if index == nil {
		index = &stubIndex{}
	}
	return NewDispatcher(NewRegistry(), store, provider, index, logger.NewNopLogger(), cfg, opts...)
}

func userTurn(threadID, text string) state.Conversation {
	return state.New(threadID).WithMessage(state.Message{Role: state.RoleUser, Content: text})
}

func TestRoute_EmptyConversationIsTerminal(t *testing.T) {
	d := newTestDispatcher(&stubStore{}, &stubLLM{}, nil, DefaultConfig())

	decision, err := d.Route(context.Background(), state.New("t1"))
	require.NoError(t, err)
	assert.Equal(t, End, decision.Next)
	assert.Empty(t, decision.Conversation.Messages)
}

func TestRoute_AssistantLastMessageIsTerminal(t *testing.T) {
	d := newTestDispatcher(&stubStore{}, &stubLLM{}, nil, DefaultConfig())

	conv := state.New("t1").WithMessage(state.Message{Role: state.RoleAssistant, Content: "hi"})
	decision, err := d.Route(context.Background(), conv)
	require.NoError(t, err)
	assert.Equal(t, End, decision.Next)
}

func TestRoute_UploadPrefixHandsOffToAnalyzer(t *testing.T) {
	d := newTestDispatcher(&stubStore{}, &stubLLM{}, nil, DefaultConfig())

	for _, text := range []string{"upload main.c\nint main(){}", "Upload main.c\ncode", "업로드 main.c\ncode"} {
		decision, err := d.Route(context.Background(), userTurn("t1", text))
		require.NoError(t, err)
		assert.Equal(t, HandlerAnalyzer, decision.Next, "text: %q", text)
	}
}

func TestRoute_ReportPrefixHandsOffToReport(t *testing.T) {
	d := newTestDispatcher(&stubStore{}, &stubLLM{}, nil, DefaultConfig())

	for _, text := range []string{"extract report", "Extract Report please", "분석 결과 추출"} {
		decision, err := d.Route(context.Background(), userTurn("t1", text))
		require.NoError(t, err)
		assert.Equal(t, HandlerReport, decision.Next, "text: %q", text)
	}
}

func TestRoute_FinishIsTerminalWithoutReply(t *testing.T) {
	d := newTestDispatcher(&stubStore{}, &stubLLM{}, nil, DefaultConfig())

	for _, text := range []string{"finish", "end", "종료", "FINISH"} {
		conv := userTurn("t1", text)
		decision, err := d.Route(context.Background(), conv)
		require.NoError(t, err)
		assert.Equal(t, End, decision.Next)
		assert.Len(t, decision.Conversation.Messages, 1, "no reply expected for %q", text)
	}
}

func TestRoute_QuestionCallsRetrievalAndLLMThenMemoizes(t *testing.T) {
	store := &stubStore{}
	provider := &stubLLM{response: "main sums two numbers"}
	index := &stubIndex{documents: []string{"int main(){return a+b;}"}}
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	d := newTestDispatcher(store, provider, index, DefaultConfig(), WithClock(fixedClock(now)))

	decision, err := d.Route(context.Background(), userTurn("t1", "question What does main do?"))
	require.NoError(t, err)
	assert.Equal(t, End, decision.Next)

	last := decision.Conversation.LastMessage()
	require.NotNil(t, last)
	assert.Equal(t, state.RoleAssistant, last.Role)
	assert.Equal(t, "main sums two numbers", last.Content)

	require.Len(t, index.queries, 1)
	assert.Equal(t, "What does main do?", index.queries[0])
	assert.Contains(t, provider.prompts[0], "int main(){return a+b;}")

	entry, ok := store.memory.Lookup("t1", memo.NormalizeQuestion("What does main do?"))
	require.True(t, ok)
	assert.Equal(t, "main sums two numbers", entry.Answer)
	assert.Equal(t, now, entry.Timestamp)
	assert.Equal(t, 1, store.saves)
}

func TestRoute_SecondIdenticalQuestionSkipsLLM(t *testing.T) {
	store := &stubStore{}
	provider := &stubLLM{response: "fresh answer"}
	asked := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	later := asked.Add(3 * time.Hour)
	d := newTestDispatcher(store, provider, nil, DefaultConfig(), WithClock(fixedClock(later)))

	store.memory = memo.Memory{}
	store.memory.Put("t1", "What does main do?", "cached answer", asked)

	decision, err := d.Route(context.Background(), userTurn("t1", "question What does main do?"))
	require.NoError(t, err)

	last := decision.Conversation.LastMessage()
	require.NotNil(t, last)
	assert.Contains(t, last.Content, "You asked this 3 hour(s) ago.")
	assert.Contains(t, last.Content, "cached answer")
	assert.Contains(t, last.Content, "search again")
	assert.Zero(t, provider.calls)
}

func TestRoute_MemoHitOnBareTextReplays(t *testing.T) {
	store := &stubStore{}
	asked := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	d := newTestDispatcher(store, &stubLLM{}, nil, DefaultConfig(), WithClock(fixedClock(asked.Add(time.Hour))))

	store.memory = memo.Memory{}
	store.memory.Put("t1", "how is samsung stock", "it went up", asked)

	decision, err := d.Route(context.Background(), userTurn("t1", "How is Samsung stock"))
	require.NoError(t, err)
	last := decision.Conversation.LastMessage()
	require.NotNil(t, last)
	assert.Contains(t, last.Content, "it went up")
	assert.Contains(t, last.Content, "1 hour(s) ago")
}

func TestRoute_SearchAgainDeletesPreviousQuestionEntry(t *testing.T) {
	store := &stubStore{}
	store.memory = memo.Memory{}
	key := memo.NormalizeQuestion("What does main do?")
	store.memory.Put("t1", key, "cached", time.Now())

	d := newTestDispatcher(store, &stubLLM{}, nil, DefaultConfig())

	conv := state.New("t1").
		WithMessage(state.Message{Role: state.RoleUser, Content: "question What does main do?"}).
		WithMessage(state.Message{Role: state.RoleAssistant, Content: "cached"}).
		WithMessage(state.Message{Role: state.RoleUser, Content: "search again"})

	decision, err := d.Route(context.Background(), conv)
	require.NoError(t, err)

	_, ok := store.memory.Lookup("t1", key)
	assert.False(t, ok, "entry should be deleted")
	assert.Equal(t, 1, store.saves)

	last := decision.Conversation.LastMessage()
	require.NotNil(t, last)
	assert.Equal(t, "Okay, I'll search again. Please ask your question.", last.Content)
}

func TestRoute_ResearchGateRefusesOffTopicQuestions(t *testing.T) {
	provider := &stubLLM{}
	d := newTestDispatcher(&stubStore{}, provider, nil, ResearchConfig())

	decision, err := d.Route(context.Background(), userTurn("t1", "what is the weather today"))
	require.NoError(t, err)
	assert.Equal(t, End, decision.Next)

	last := decision.Conversation.LastMessage()
	require.NotNil(t, last)
	assert.Equal(t, "I only answer questions related to the stock market.", last.Content)
	assert.Zero(t, provider.calls)
}

func TestRoute_ResearchPipelineStepsInOrder(t *testing.T) {
	d := newTestDispatcher(&stubStore{}, &stubLLM{}, nil, ResearchConfig())

	conv := userTurn("t1", "How is the stock market doing?")
	decision, err := d.Route(context.Background(), conv)
	require.NoError(t, err)
	assert.Equal(t, HandlerMarketNews, decision.Next)
	assert.Equal(t, 1, decision.Conversation.Step)

	conv = decision.Conversation.WithMessage(state.Message{
		Role: state.RoleAssistant, Name: HandlerMarketNews, Content: "news",
	})
	decision, err = d.Route(context.Background(), conv)
	require.NoError(t, err)
	assert.Equal(t, HandlerCompanyProfile, decision.Next)
	assert.Equal(t, 2, decision.Conversation.Step)
}

func TestRoute_ResearchSummaryMemoizesAndReplies(t *testing.T) {
	store := &stubStore{}
	provider := &stubLLM{response: "combined summary"}
	now := time.Date(2025, 6, 2, 8, 0, 0, 0, time.UTC)
	d := newTestDispatcher(store, provider, nil, ResearchConfig(), WithClock(fixedClock(now)))

	conv := userTurn("t1", "How is Samsung stock price?").
		WithStep(2).
		WithMessage(state.Message{Role: state.RoleAssistant, Name: HandlerMarketNews, Content: "political news"}).
		WithMessage(state.Message{Role: state.RoleAssistant, Name: HandlerCompanyProfile, Content: "samsung info"})

	decision, err := d.Route(context.Background(), conv)
	require.NoError(t, err)
	assert.Equal(t, End, decision.Next)

	last := decision.Conversation.LastMessage()
	require.NotNil(t, last)
	assert.Equal(t, "combined summary", last.Content)

	require.Len(t, provider.prompts, 1)
	assert.Contains(t, provider.prompts[0], "political news")
	assert.Contains(t, provider.prompts[0], "samsung info")

	entry, ok := store.memory.Lookup("t1", memo.NormalizeQuestion("How is Samsung stock price?"))
	require.True(t, ok)
	assert.Equal(t, "combined summary", entry.Answer)
}

func TestRoute_UnknownFreeTextIsSilentTerminal(t *testing.T) {
	d := newTestDispatcher(&stubStore{}, &stubLLM{}, nil, DefaultConfig())

	decision, err := d.Route(context.Background(), userTurn("t1", "hello there"))
	require.NoError(t, err)
	assert.Equal(t, End, decision.Next)
	assert.Len(t, decision.Conversation.Messages, 1)
}

func TestRoute_LLMFailurePropagates(t *testing.T) {
	provider := &stubLLM{err: errors.New("model offline")}
	d := newTestDispatcher(&stubStore{}, provider, &stubIndex{}, DefaultConfig())

	_, err := d.Route(context.Background(), userTurn("t1", "question anything?"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "model offline")
}

func TestRoute_RetrievalFailurePropagates(t *testing.T) {
	index := &stubIndex{err: errors.New("db down")}
	d := newTestDispatcher(&stubStore{}, &stubLLM{}, index, DefaultConfig())

	_, err := d.Route(context.Background(), userTurn("t1", "question anything?"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "db down")
}

func TestRegistry_UnknownHandler(t *testing.T) {
	r := NewRegistry()
	_, err := r.Resolve("nope")
	require.Error(t, err)

	var unknown *UnknownHandlerError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, "nope", unknown.Name)
}
