package retrieval

import (
	"context"
	"fmt"

	"code-analyzer-be/internal/entity"
	"code-analyzer-be/internal/pkg/logger"
	"code-analyzer-be/internal/repository/specification"
	"code-analyzer-be/internal/repository/unitofwork"
	"code-analyzer-be/pkg/embedding"
	"code-analyzer-be/pkg/utils"

	"github.com/google/uuid"
)

// Index stores uploaded code for similarity search within a session.
type Index interface {
	IndexSnippet(ctx context.Context, threadID, fileName, code string) error
	SearchSimilar(ctx context.Context, threadID, query string, k int) ([]string, error)
}

// Config encapsulates chunking and search parameters
type Config struct {
	ChunkSize    int
	ChunkOverlap int
	Threshold    float64
}

// DefaultConfig returns default retrieval configuration
func DefaultConfig() Config {
	return Config{
		ChunkSize:    1500,
		ChunkOverlap: 200,
		Threshold:    0.0,
	}
}

// PgVectorIndex is the pgvector-backed Index implementation.
type PgVectorIndex struct {
	embeddingProvider embedding.EmbeddingProvider
	repoFactory       unitofwork.RepositoryFactory
	logger            logger.ILogger
	config            Config
}

func NewPgVectorIndex(
	embeddingProvider embedding.EmbeddingProvider,
	repoFactory unitofwork.RepositoryFactory,
	log logger.ILogger,
	config Config,
) *PgVectorIndex {
	return &PgVectorIndex{
		embeddingProvider: embeddingProvider,
		repoFactory:       repoFactory,
		logger:            log,
		config:            config,
	}
}

var _ Index = (*PgVectorIndex)(nil)

// IndexSnippet chunks the code, embeds each chunk and replaces any
// previous embeddings for the same file atomically.
func (x *PgVectorIndex) IndexSnippet(ctx context.Context, threadID, fileName, code string) error {
	sessionId, err := uuid.Parse(threadID)
	if err != nil {
		return fmt.Errorf("invalid session id %q: %w", threadID, err)
	}

	chunks := utils.SplitText(code, x.config.ChunkSize, x.config.ChunkOverlap)

	embeddings := make([]*entity.SnippetEmbedding, 0, len(chunks))
	for i, chunk := range chunks {
		res, err := x.embeddingProvider.Generate(chunk, embedding.TaskTypeDocument)
		if err != nil {
			return fmt.Errorf("embedding generation failed for chunk %d: %w", i, err)
		}
		embeddings = append(embeddings, &entity.SnippetEmbedding{
			Id:             uuid.New(),
			Document:       chunk,
			EmbeddingValue: res.Embedding.Values,
			ChunkIndex:     i,
		})
	}

	uow := x.repoFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	snippetRepo := uow.SnippetRepository()
	snippet, err := snippetRepo.FindOne(ctx,
		specification.ByChatSessionID{ChatSessionID: sessionId},
		specification.ByFileName{FileName: fileName},
	)
	if err != nil {
		return err
	}

	if snippet == nil {
		position, err := snippetRepo.Count(ctx, specification.ByChatSessionID{ChatSessionID: sessionId})
		if err != nil {
			return err
		}
		snippet = &entity.Snippet{
			Id:            uuid.New(),
			FileName:      fileName,
			Code:          code,
			Position:      int(position),
			ChatSessionId: sessionId,
		}
		if err := snippetRepo.Create(ctx, snippet); err != nil {
			return err
		}
	} else {
		snippet.Code = code
		snippet.Analysis = nil
		if err := snippetRepo.Update(ctx, snippet); err != nil {
			return err
		}
		if err := uow.SnippetEmbeddingRepository().DeleteBySnippetId(ctx, snippet.Id); err != nil {
			return err
		}
	}

	for _, e := range embeddings {
		e.SnippetId = snippet.Id
	}
	if err := uow.SnippetEmbeddingRepository().CreateBulk(ctx, embeddings); err != nil {
		return err
	}

	if err := uow.Commit(); err != nil {
		return err
	}

	x.logger.Info("retrieval", "snippet indexed", map[string]interface{}{
		"session_id": threadID,
		"file_name":  fileName,
		"chunks":     len(chunks),
	})
	return nil
}

// SearchSimilar embeds the query and returns the k closest chunks in
// similarity order. An empty index yields an empty result, not an error.
func (x *PgVectorIndex) SearchSimilar(ctx context.Context, threadID, query string, k int) ([]string, error) {
	sessionId, err := uuid.Parse(threadID)
	if err != nil {
		return nil, fmt.Errorf("invalid session id %q: %w", threadID, err)
	}

	res, err := x.embeddingProvider.Generate(query, embedding.TaskTypeQuery)
	if err != nil {
		return nil, fmt.Errorf("embedding generation failed: %w", err)
	}

	uow := x.repoFactory.NewUnitOfWork(ctx)
	scored, err := uow.SnippetEmbeddingRepository().SearchSimilarWithScore(
		ctx,
		res.Embedding.Values,
		k,
		sessionId,
		x.config.Threshold,
	)
	if err != nil {
		return nil, err
	}

	x.logger.Debug("retrieval", "similarity search", map[string]interface{}{
		"session_id": threadID,
		"hits":       len(scored),
	})

	documents := make([]string, 0, len(scored))
	for _, s := range scored {
		documents = append(documents, s.Embedding.Document)
	}
	return documents, nil
}
