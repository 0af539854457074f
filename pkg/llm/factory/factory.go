package factory

import (
	"fmt"

	"code-analyzer-be/pkg/llm"
	"code-analyzer-be/pkg/llm/huggingface"
	"code-analyzer-be/pkg/llm/ollama"
)

// NewLLMProvider resolves a provider by name. Unknown names are a
// configuration error, not a fallback.
func NewLLMProvider(providerType, modelName, baseURL, hfApiKey string) (llm.LLMProvider, error) {
	switch providerType {
	case "ollama":
		if baseURL == "" {
			baseURL = "http://localhost:11434" // Default
		}
		return ollama.NewOllamaProvider(baseURL, modelName), nil
	case "huggingface":
		return huggingface.NewHuggingFaceProvider(hfApiKey, "", modelName), nil
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", providerType)
	}
}
