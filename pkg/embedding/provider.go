package embedding

// EmbeddingProvider generates a vector embedding for a piece of text.
// taskType distinguishes document indexing from query embedding for
// providers that care (Gemini); others ignore it.
type EmbeddingProvider interface {
	Generate(text string, taskType string) (*EmbeddingResponse, error)
}

// Task types understood by the Gemini API; passed through verbatim.
const (
	TaskTypeDocument = "RETRIEVAL_DOCUMENT"
	TaskTypeQuery    = "RETRIEVAL_QUERY"
)

type EmbeddingResponseEmbedding struct {
	Values []float32 `json:"values"`
}

type EmbeddingResponse struct {
	Embedding EmbeddingResponseEmbedding `json:"embedding"`
}
