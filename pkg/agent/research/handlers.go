package research

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	"code-analyzer-be/internal/pkg/logger"
	"code-analyzer-be/pkg/agent/dispatch"
	"code-analyzer-be/pkg/agent/state"
	"code-analyzer-be/pkg/llm"
)

// MarketNewsHandler gathers the latest market-moving political news
// with a fixed query. Stateless; the dispatcher drives the order.
type MarketNewsHandler struct {
	llmProvider llm.LLMProvider
	logger      logger.ILogger
}

func NewMarketNewsHandler(llmProvider llm.LLMProvider, log logger.ILogger) *MarketNewsHandler {
	return &MarketNewsHandler{
		llmProvider: llmProvider,
		logger:      log,
	}
}

var _ dispatch.Handler = (*MarketNewsHandler)(nil)

func (h *MarketNewsHandler) Name() string {
	return dispatch.HandlerMarketNews
}

func (h *MarketNewsHandler) Handle(ctx context.Context, conv state.Conversation) (state.Conversation, error) {
	query := "Please search the web and summarize the latest political news that is moving the markets."
	result, err := h.llmProvider.Generate(ctx, query)
	if err != nil {
		return state.Conversation{}, fmt.Errorf("market news lookup failed: %w", err)
	}

	h.logger.Debug("research", "market news gathered", map[string]interface{}{
		"thread_id": conv.ThreadID,
	})

	return conv.WithMessage(state.Message{
		Role:    state.RoleAssistant,
		Name:    h.Name(),
		Content: "LLM web search result: " + result,
	}), nil
}

// CompanyProfileHandler looks up stock price and news for the company
// named in the user's question.
type CompanyProfileHandler struct {
	llmProvider llm.LLMProvider
	logger      logger.ILogger
}

func NewCompanyProfileHandler(llmProvider llm.LLMProvider, log logger.ILogger) *CompanyProfileHandler {
	return &CompanyProfileHandler{
		llmProvider: llmProvider,
		logger:      log,
	}
}

var _ dispatch.Handler = (*CompanyProfileHandler)(nil)

func (h *CompanyProfileHandler) Name() string {
	return dispatch.HandlerCompanyProfile
}

func (h *CompanyProfileHandler) Handle(ctx context.Context, conv state.Conversation) (state.Conversation, error) {
	question := ""
	if m := conv.LastUserMessage(); m != nil {
		question = m.Content
	}
	company := GuessCompany(question)

	query := fmt.Sprintf("Please search the web and summarize the latest stock price and news for %s.", company)
	result, err := h.llmProvider.Generate(ctx, query)
	if err != nil {
		return state.Conversation{}, fmt.Errorf("company profile lookup failed: %w", err)
	}

	h.logger.Debug("research", "company profile gathered", map[string]interface{}{
		"thread_id": conv.ThreadID,
		"company":   company,
	})

	return conv.WithMessage(state.Message{
		Role:    state.RoleAssistant,
		Name:    h.Name(),
		Content: "LLM web search result: " + result,
	}), nil
}

// GuessCompany picks the first title-case word of the question as the
// company name, "Unknown" when there is none.
func GuessCompany(text string) string {
	for _, w := range strings.Fields(text) {
		w = strings.Trim(w, ".,?!")
		if isTitleCase(w) {
			return w
		}
	}
	return "Unknown"
}

func isTitleCase(w string) bool {
	runes := []rune(w)
	if len(runes) == 0 || !unicode.IsUpper(runes[0]) {
		return false
	}
	for _, r := range runes[1:] {
		if unicode.IsUpper(r) {
			return false
		}
	}
	return true
}
