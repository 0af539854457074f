package research

import (
	"context"
	"errors"
	"testing"

	"code-analyzer-be/internal/pkg/logger"
	"code-analyzer-be/pkg/agent/state"
	"code-analyzer-be/pkg/llm"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubLLM struct {
	response string
	err      error
	prompts  []string
}

func (f *stubLLM) Chat(ctx context.Context, history []llm.Message, options ...llm.Option) (string, error) {
	return f.response, f.err
}

func (f *stubLLM) Generate(ctx context.Context, prompt string, options ...llm.Option) (string, error) {
	f.prompts = append(f.prompts, prompt)
	return f.response, f.err
}

func TestMarketNews_AppendsTaggedMessage(t *testing.T) {
	provider := &stubLLM{response: "markets rallied on the vote"}
	h := NewMarketNewsHandler(provider, logger.NewNopLogger())

	conv := state.New("t1").WithMessage(state.Message{Role: state.RoleUser, Content: "How is the stock market?"})
	out, err := h.Handle(context.Background(), conv)
	require.NoError(t, err)

	last := out.LastMessage()
	require.NotNil(t, last)
	assert.Equal(t, state.RoleAssistant, last.Role)
	assert.Equal(t, "market_news", last.Name)
	assert.Equal(t, "LLM web search result: markets rallied on the vote", last.Content)
}

func TestCompanyProfile_UsesCompanyFromQuestion(t *testing.T) {
	provider := &stubLLM{response: "stock is up"}
	h := NewCompanyProfileHandler(provider, logger.NewNopLogger())

	conv := state.New("t1").WithMessage(state.Message{Role: state.RoleUser, Content: "what is the stock price of Samsung today?"})
	out, err := h.Handle(context.Background(), conv)
	require.NoError(t, err)

	require.Len(t, provider.prompts, 1)
	assert.Contains(t, provider.prompts[0], "Samsung")

	last := out.LastMessage()
	require.NotNil(t, last)
	assert.Equal(t, "company_profile", last.Name)
}

func TestCompanyProfile_LLMFailurePropagates(t *testing.T) {
	provider := &stubLLM{err: errors.New("model offline")}
	h := NewCompanyProfileHandler(provider, logger.NewNopLogger())

	conv := state.New("t1").WithMessage(state.Message{Role: state.RoleUser, Content: "Samsung stock?"})
	_, err := h.Handle(context.Background(), conv)
	require.Error(t, err)
}

func TestGuessCompany(t *testing.T) {
	assert.Equal(t, "Samsung", GuessCompany("what is the stock price of Samsung today?"))
	assert.Equal(t, "Apple", GuessCompany("Apple market cap, please."))
	assert.Equal(t, "Unknown", GuessCompany("what is the stock price today?"))
	assert.Equal(t, "Unknown", GuessCompany(""))
	assert.Equal(t, "Unknown", GuessCompany("NVDA price?"))
}
