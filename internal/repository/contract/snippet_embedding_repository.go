package contract

import (
	"context"

	"code-analyzer-be/internal/entity"
	"code-analyzer-be/internal/repository/specification"

	"github.com/google/uuid"
)

// ScoredSnippetEmbedding wraps SnippetEmbedding with its similarity score
type ScoredSnippetEmbedding struct {
	Embedding  *entity.SnippetEmbedding
	Similarity float64 // 0.0 to 1.0 (1.0 = identical)
}

type SnippetEmbeddingRepository interface {
	Create(ctx context.Context, embedding *entity.SnippetEmbedding) error
	CreateBulk(ctx context.Context, embeddings []*entity.SnippetEmbedding) error
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteBySnippetId(ctx context.Context, snippetId uuid.UUID) error
	DeleteByChatSessionId(ctx context.Context, sessionId uuid.UUID) error
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.SnippetEmbedding, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
	// SearchSimilar orders by cosine distance within a session
	SearchSimilar(ctx context.Context, embedding []float32, limit int, sessionId uuid.UUID) ([]*entity.SnippetEmbedding, error)
	// SearchSimilarWithScore returns embeddings with their similarity scores, filtered by threshold
	SearchSimilarWithScore(ctx context.Context, embedding []float32, limit int, sessionId uuid.UUID, threshold float64) ([]*ScoredSnippetEmbedding, error)
}
